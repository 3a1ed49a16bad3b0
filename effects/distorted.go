package effects

import (
	"fmt"
	"math"

	"github.com/RyanBlaney/sonido-fx/algorithms/filters"
	"github.com/RyanBlaney/sonido-fx/algorithms/temporal"
)

const (
	distortionDrive  = 3.0
	distortionFold   = 0.1
	distortionCutoff = 100.0 // Hz
)

// distorted soft clips, adds a level dependent sine fold and removes rumble
// with a zero-phase highpass
func (p *Pipeline) distorted(j *job) ([]float64, error) {
	y := temporal.SoftClip(j.samples, distortionDrive)

	scale := 2 * math.Pi * float64(j.sampleRate) / 1000
	for i, v := range y {
		y[i] = v + distortionFold*math.Sin(scale*v)
	}

	hp, err := filters.ButterworthHighpass(butterworthOrder, distortionCutoff, j.sampleRate)
	if err != nil {
		return nil, fmt.Errorf("rumble filter: %w", err)
	}
	return hp.FiltFilt(y)
}
