package effects

import (
	"github.com/RyanBlaney/sonido-fx/algorithms/temporal"
)

const (
	roboticCarrier = 30.0 // Hz
	roboticDrive   = 3.0
)

// robotic ring modulates the voice and flattens every phase to -1, 0 or
// 1 radian, which removes natural phase movement and leaves a buzz.
func (p *Pipeline) robotic(j *job) ([]float64, error) {
	y := temporal.RingModulate(j.samples, j.sampleRate, roboticCarrier)

	spec, err := p.spectrum(y, j.sampleRate)
	if err != nil {
		return nil, err
	}
	if err := j.checkpoint(); err != nil {
		return nil, err
	}

	phase := make([][]float64, len(spec.Phase))
	for t, frame := range spec.Phase {
		flat := make([]float64, len(frame))
		for k, ph := range frame {
			flat[k] = sign(ph)
		}
		phase[t] = flat
	}

	y, err = p.resynthesize(spec.Magnitude, phase, len(j.samples))
	if err != nil {
		return nil, err
	}

	return temporal.Saturate(y, roboticDrive), nil
}

func sign(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return 0
	}
}
