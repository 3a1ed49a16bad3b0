package filters

import (
	"fmt"
	"math/cmplx"
	"slices"

	"github.com/cwbudde/algo-dsp/dsp/filter/biquad"
)

// dcGain returns the section gain at 0 Hz
func dcGain(c biquad.Coefficients) float64 {
	den := 1 + c.A1 + c.A2
	if den == 0 {
		return 0
	}
	return (c.B0 + c.B1 + c.B2) / den
}

// steadyState returns the DF2T state reached after a long unit step.
func steadyState(c biquad.Coefficients) [2]float64 {
	y := dcGain(c)
	return [2]float64{y - c.B0, c.B2 - c.A2*y}
}

// Cascade is a chain of second-order sections. It holds only coefficients,
// so one Cascade can filter many signals concurrently.
type Cascade struct {
	sections []biquad.Coefficients
}

// NewCascade wraps sections in processing order
func NewCascade(sections []biquad.Coefficients) *Cascade {
	return &Cascade{sections: slices.Clone(sections)}
}

// Sections returns a copy of the section coefficients
func (c *Cascade) Sections() []biquad.Coefficients {
	return slices.Clone(c.sections)
}

// PadLength is the odd-extension length FiltFilt adds at each end,
// three times the length of the equivalent transfer-function polynomial.
func (c *Cascade) PadLength() int {
	return 3 * (2*len(c.sections) + 1)
}

// Filter runs signal through the cascade from a zero initial state
func (c *Cascade) Filter(signal []float64) []float64 {
	out := slices.Clone(signal)
	for _, s := range c.sections {
		biquad.NewSection(s).ProcessBlock(out)
	}
	return out
}

// FiltFilt filters signal forwards and backwards for zero phase
// distortion. The ends are extended by odd reflection and each pass starts
// from the steady state for its first sample, so edges do not ring. Signals
// no longer than PadLength are rejected.
func (c *Cascade) FiltFilt(signal []float64) ([]float64, error) {
	padLen := c.PadLength()
	if len(signal) <= padLen {
		return nil, fmt.Errorf("signal of %d samples too short for zero-phase filtering (needs more than %d)", len(signal), padLen)
	}

	ext := oddExtend(signal, padLen)

	c.filterFromSteadyState(ext)
	slices.Reverse(ext)
	c.filterFromSteadyState(ext)
	slices.Reverse(ext)

	return ext[padLen : padLen+len(signal)], nil
}

// filterFromSteadyState filters buf in place, initialising each section as
// if buf[0] had been applied forever.
func (c *Cascade) filterFromSteadyState(buf []float64) {
	level := buf[0]
	for _, s := range c.sections {
		z := steadyState(s)
		sec := biquad.NewSection(s)
		sec.SetState([2]float64{z[0] * level, z[1] * level})
		sec.ProcessBlock(buf)
		level *= dcGain(s)
	}
}

// Response returns the magnitude response of the cascade at freq Hz
func (c *Cascade) Response(freq float64, sampleRate int) float64 {
	h := complex(1, 0)
	for _, s := range c.sections {
		h *= s.Response(freq, float64(sampleRate))
	}
	return cmplx.Abs(h)
}

// oddExtend reflects padLen samples about each end point:
// 2*x[0] - x[padLen..1] and 2*x[n-1] - x[n-2..n-padLen-1].
func oddExtend(signal []float64, padLen int) []float64 {
	n := len(signal)
	ext := make([]float64, n+2*padLen)

	for i := range padLen {
		ext[i] = 2*signal[0] - signal[padLen-i]
		ext[padLen+n+i] = 2*signal[n-1] - signal[n-2-i]
	}
	copy(ext[padLen:], signal)

	return ext
}
