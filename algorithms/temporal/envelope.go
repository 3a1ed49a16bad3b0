package temporal

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Envelope extracts amplitude envelopes
type Envelope struct{}

// NewEnvelope creates an envelope extractor
func NewEnvelope() *Envelope {
	return &Envelope{}
}

// ComputeRMS returns the RMS of each full frame. Trailing samples that do
// not fill a frame are ignored.
func (e *Envelope) ComputeRMS(signal []float64, frameSize, hopSize int) []float64 {
	if frameSize <= 0 || hopSize <= 0 || len(signal) < frameSize {
		return []float64{}
	}

	rms := make([]float64, (len(signal)-frameSize)/hopSize+1)
	for i := range rms {
		frame := signal[i*hopSize : i*hopSize+frameSize]
		rms[i] = floats.Norm(frame, 2) / math.Sqrt(float64(frameSize))
	}
	return rms
}

// Follow tracks |x| sample by sample with one-pole smoothing, using the
// attack time constant (seconds) while the level rises and the release
// constant while it falls. The envelope starts from zero.
func (e *Envelope) Follow(signal []float64, attack, release float64, sampleRate int) []float64 {
	env := make([]float64, len(signal))
	if sampleRate <= 0 {
		return env
	}

	up := smoothing(attack, sampleRate)
	down := smoothing(release, sampleRate)

	for i := 1; i < len(signal); i++ {
		level := math.Abs(signal[i])
		c := down
		if level > env[i-1] {
			c = up
		}
		env[i] = c*env[i-1] + (1-c)*level
	}
	return env
}

// smoothing is the one-pole coefficient exp(-1/(t*sr)); zero time means no
// smoothing
func smoothing(seconds float64, sampleRate int) float64 {
	if seconds <= 0 {
		return 0
	}
	return math.Exp(-1 / (seconds * float64(sampleRate)))
}
