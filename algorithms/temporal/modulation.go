package temporal

import (
	"math"

	"github.com/RyanBlaney/sonido-fx/algorithms/common"
)

// TimeAxis returns n evenly spaced instants from 0 to n/sampleRate
// seconds, both ends included.
func TimeAxis(n, sampleRate int) []float64 {
	if n <= 0 || sampleRate <= 0 {
		return []float64{}
	}
	return common.Linspace(0, float64(n)/float64(sampleRate), n)
}

// RingModulate multiplies signal by a sine carrier of freq Hz
func RingModulate(signal []float64, sampleRate int, freq float64) []float64 {
	t := TimeAxis(len(signal), sampleRate)
	out := make([]float64, len(signal))
	for i, x := range signal {
		out[i] = x * math.Sin(2*math.Pi*freq*t[i])
	}
	return out
}

// AmplitudeModulate multiplies signal by 1 + depth*sin(2*pi*freq*t). Low
// rates give tremolo, audio rates add sidebands.
func AmplitudeModulate(signal []float64, sampleRate int, freq, depth float64) []float64 {
	t := TimeAxis(len(signal), sampleRate)
	out := make([]float64, len(signal))
	for i, x := range signal {
		out[i] = x * (1 + depth*math.Sin(2*math.Pi*freq*t[i]))
	}
	return out
}
