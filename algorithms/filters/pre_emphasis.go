package filters

import (
	"math"
)

// PreEmphasis is the first-order highpass y[n] = x[n] - a*x[n-1] used to
// lift the upper speech spectrum. x[-1] is taken as zero.
type PreEmphasis struct {
	coefficient float64
}

// NewPreEmphasis creates a filter with coefficient a. Values outside
// [0, 1) are clamped into range.
func NewPreEmphasis(coefficient float64) *PreEmphasis {
	return &PreEmphasis{coefficient: min(max(coefficient, 0), math.Nextafter(1, 0))}
}

// Coefficient returns a
func (pe *PreEmphasis) Coefficient() float64 {
	return pe.coefficient
}

// Apply filters signal into a new slice
func (pe *PreEmphasis) Apply(signal []float64) []float64 {
	out := make([]float64, len(signal))
	prev := 0.0
	for i, x := range signal {
		out[i] = x - pe.coefficient*prev
		prev = x
	}
	return out
}

// Blend returns (1-mix)*signal + mix*Apply(signal)
func (pe *PreEmphasis) Blend(signal []float64, mix float64) []float64 {
	out := pe.Apply(signal)
	for i, x := range signal {
		out[i] = (1-mix)*x + mix*out[i]
	}
	return out
}

// Response returns |H| = sqrt(1 + a^2 - 2a*cos(w)) at freq Hz
func (pe *PreEmphasis) Response(freq float64, sampleRate int) float64 {
	w := 2 * math.Pi * freq / float64(sampleRate)
	a := pe.coefficient
	return math.Sqrt(1 + a*a - 2*a*math.Cos(w))
}
