package filters

import (
	"github.com/cwbudde/algo-dsp/dsp/delay"
)

// FeedforwardComb adds one delayed, scaled copy of the input:
// y[n] = x[n] + gain*x[n-delay]. It is the FIR echo b = [1, 0, ..., 0, gain].
type FeedforwardComb struct {
	delay int
	gain  float64
}

// NewFeedforwardComb creates a comb with delay in samples
func NewFeedforwardComb(delay int, gain float64) *FeedforwardComb {
	return &FeedforwardComb{delay: max(delay, 0), gain: gain}
}

// Delay returns the delay in samples
func (fc *FeedforwardComb) Delay() int {
	return fc.delay
}

// Process filters signal and returns a new slice of the same length
func (fc *FeedforwardComb) Process(signal []float64) []float64 {
	out := make([]float64, len(signal))
	if fc.delay == 0 {
		for i, x := range signal {
			out[i] = x * (1 + fc.gain)
		}
		return out
	}

	// A line of exactly delay slots: the slot about to be overwritten holds
	// the sample written delay steps ago.
	line, err := delay.New(fc.delay)
	if err != nil {
		return out
	}
	for i, x := range signal {
		out[i] = x + fc.gain*line.Read(fc.delay)
		line.Write(x)
	}
	return out
}
