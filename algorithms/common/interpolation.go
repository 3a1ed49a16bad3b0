package common

import (
	"math"
)

// InterpolationType defines interpolation method
type InterpolationType int

const (
	Linear InterpolationType = iota
	Cubic
)

// Interpolator reads a signal at fractional indices.
type Interpolator struct {
	method InterpolationType
}

// NewInterpolator creates a new interpolator
func NewInterpolator(method InterpolationType) *Interpolator {
	return &Interpolator{
		method: method,
	}
}

// Interpolate performs interpolation at fractional index
func (interp *Interpolator) Interpolate(data []float64, index float64) float64 {
	switch interp.method {
	case Cubic:
		return interp.cubicInterpolate(data, index)
	default:
		return interp.linearInterpolate(data, index)
	}
}

// linearInterpolate performs linear interpolation
func (interp *Interpolator) linearInterpolate(data []float64, index float64) float64 {
	if len(data) == 0 {
		return 0.0
	}

	if index <= 0 {
		return data[0]
	}
	if index >= float64(len(data)-1) {
		return data[len(data)-1]
	}

	i := int(index)
	frac := index - float64(i)

	return data[i] + frac*(data[i+1]-data[i])
}

// cubicInterpolate uses a Catmull-Rom spline through the four nearest samples.
func (interp *Interpolator) cubicInterpolate(data []float64, index float64) float64 {
	if len(data) < 4 {
		return interp.linearInterpolate(data, index)
	}

	if index <= 0 {
		return data[0]
	}
	if index >= float64(len(data)-1) {
		return data[len(data)-1]
	}

	i := int(math.Floor(index))
	frac := index - float64(i)

	at := func(k int) float64 {
		if k < 0 {
			return data[0]
		}
		if k >= len(data) {
			return data[len(data)-1]
		}
		return data[k]
	}

	y0 := at(i - 1)
	y1 := at(i)
	y2 := at(i + 1)
	y3 := at(i + 2)

	a0 := -0.5*y0 + 1.5*y1 - 1.5*y2 + 0.5*y3
	a1 := y0 - 2.5*y1 + 2*y2 - 0.5*y3
	a2 := -0.5*y0 + 0.5*y2
	a3 := y1

	return a0*frac*frac*frac + a1*frac*frac + a2*frac + a3
}

// ResampleLength stretches or squeezes signal onto exactly targetLength
// samples, reading it at evenly spaced positions from the first to the last
// sample.
func (interp *Interpolator) ResampleLength(signal []float64, targetLength int) []float64 {
	if targetLength <= 0 {
		return []float64{}
	}
	if len(signal) == 0 {
		return make([]float64, targetLength)
	}

	positions := Linspace(0, float64(len(signal)-1), targetLength)
	out := make([]float64, targetLength)
	for i, pos := range positions {
		out[i] = interp.Interpolate(signal, pos)
	}
	return out
}

// ResampleSignal converts signal between sample rates by interpolation.
func (interp *Interpolator) ResampleSignal(signal []float64, originalRate, targetRate float64) []float64 {
	if len(signal) == 0 || originalRate <= 0 || targetRate <= 0 {
		return signal
	}

	ratio := originalRate / targetRate
	outLen := int(math.Ceil(float64(len(signal)) / ratio))
	out := make([]float64, outLen)
	for i := range out {
		out[i] = interp.Interpolate(signal, float64(i)*ratio)
	}
	return out
}
