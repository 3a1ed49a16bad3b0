package temporal

import (
	"math"
)

// Compressor reduces the level of samples above a threshold by a ratio.
// Levels below the threshold pass unchanged.
type Compressor struct {
	threshold float64
	ratio     float64
}

// NewCompressor creates a compressor. Ratios below 1 are treated as 1.
func NewCompressor(threshold, ratio float64) *Compressor {
	return &Compressor{threshold: threshold, ratio: max(ratio, 1)}
}

// compressLevel maps a level above threshold to threshold + excess/ratio
func (c *Compressor) compressLevel(level float64) float64 {
	return c.threshold + (level-c.threshold)/c.ratio
}

// ProcessStatic applies the curve to each sample's own magnitude,
// keeping its sign.
func (c *Compressor) ProcessStatic(signal []float64) []float64 {
	out := make([]float64, len(signal))
	for i, x := range signal {
		if math.Abs(x) > c.threshold {
			out[i] = math.Copysign(c.compressLevel(math.Abs(x)), x)
		} else {
			out[i] = x
		}
	}
	return out
}

// ProcessEnvelope scales each sample by the gain the curve assigns to the
// envelope level at that sample. envelope must be as long as signal.
func (c *Compressor) ProcessEnvelope(signal, envelope []float64) []float64 {
	out := make([]float64, len(signal))
	for i, x := range signal {
		env := 0.0
		if i < len(envelope) {
			env = envelope[i]
		}

		if env > c.threshold && env > 0 {
			out[i] = x * c.compressLevel(env) / env
		} else {
			out[i] = x
		}
	}
	return out
}

// SoftClip saturates signal with tanh(drive*x)/drive, which keeps small
// signals at unity gain and bounds the output to 1/drive.
func SoftClip(signal []float64, drive float64) []float64 {
	if drive <= 0 {
		out := make([]float64, len(signal))
		copy(out, signal)
		return out
	}

	out := make([]float64, len(signal))
	for i, x := range signal {
		out[i] = math.Tanh(drive*x) / drive
	}
	return out
}

// Saturate applies tanh(drive*x) without makeup gain, bounding the output
// to (-1, 1).
func Saturate(signal []float64, drive float64) []float64 {
	out := make([]float64, len(signal))
	for i, x := range signal {
		out[i] = math.Tanh(drive * x)
	}
	return out
}
