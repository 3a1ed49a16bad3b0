package effects

import (
	"github.com/RyanBlaney/sonido-fx/algorithms/spectral"
	"github.com/RyanBlaney/sonido-fx/algorithms/temporal"
)

const (
	cartoonShift       = 8.0
	cartoonStretchRate = 1.3
	cartoonWobbleRate  = 50.0 // Hz
	cartoonWobbleDepth = 0.3
)

// band is an inclusive frequency range with a magnitude factor
type band struct {
	lo, hi float64
	factor float64
}

// Applied in order; shared edges are scaled by both neighbours.
var cartoonBands = []band{
	{200, 1000, 1.2},
	{1000, 1800, 0.9},
	{1800, 2600, 1.1},
}

func scaleBands(magnitude [][]float64, freqs []float64, bands []band) {
	for _, b := range bands {
		spectral.ScaleBand(magnitude, freqs, b.lo, b.hi, b.factor)
	}
}

// cartoon raises pitch, reshapes the low formant region, speeds the clip
// up and adds a 50 Hz wobble
func (p *Pipeline) cartoon(j *job) ([]float64, error) {
	y, err := p.pv.PitchShift(j.samples, j.sampleRate, cartoonShift)
	if err != nil {
		return nil, err
	}
	if err := j.checkpoint(); err != nil {
		return nil, err
	}

	spec, err := p.spectrum(y, j.sampleRate)
	if err != nil {
		return nil, err
	}
	scaleBands(spec.Magnitude, spectral.BinFrequencies(spec.WindowSize, j.sampleRate), cartoonBands)

	y, err = p.resynthesize(spec.Magnitude, spec.Phase, len(j.samples))
	if err != nil {
		return nil, err
	}
	if err := j.checkpoint(); err != nil {
		return nil, err
	}

	y, err = p.pv.TimeStretch(y, cartoonStretchRate, j.sampleRate)
	if err != nil {
		return nil, err
	}

	return temporal.AmplitudeModulate(y, j.sampleRate, cartoonWobbleRate, cartoonWobbleDepth), nil
}
