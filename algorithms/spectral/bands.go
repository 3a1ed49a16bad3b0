package spectral

import (
	"math"

	"github.com/RyanBlaney/sonido-fx/algorithms/common"
)

// BinFrequencies returns the centre frequency in Hz of each of the
// windowSize/2+1 non-negative FFT bins.
func BinFrequencies(windowSize, sampleRate int) []float64 {
	if windowSize <= 0 || sampleRate <= 0 {
		return []float64{}
	}

	freqs := make([]float64, windowSize/2+1)
	for k := range freqs {
		freqs[k] = float64(k) * float64(sampleRate) / float64(windowSize)
	}
	return freqs
}

// ApplyGain multiplies every bin of every frame by gain(freq). The
// magnitude matrix is modified in place.
func ApplyGain(magnitude [][]float64, freqs []float64, gain func(freq float64) float64) {
	gains := make([]float64, len(freqs))
	for k, f := range freqs {
		gains[k] = gain(f)
	}

	for _, frame := range magnitude {
		for k := range min(len(frame), len(gains)) {
			frame[k] *= gains[k]
		}
	}
}

// ScaleBand multiplies bins with lo <= freq <= hi by factor, in place.
func ScaleBand(magnitude [][]float64, freqs []float64, lo, hi, factor float64) {
	ApplyGain(magnitude, freqs, func(f float64) float64 {
		if f >= lo && f <= hi {
			return factor
		}
		return 1.0
	})
}

// FormantShift moves the spectral envelope of every frame up by factor
// (down when factor < 1). Each output bin at frequency f reads the input
// magnitude at f*factor by linear interpolation; reads past the highest
// source frequency hold the last value. A new matrix is returned.
func FormantShift(magnitude [][]float64, freqs []float64, factor float64) [][]float64 {
	shifted := make([][]float64, len(magnitude))
	if factor <= 0 || len(freqs) == 0 {
		for i, frame := range magnitude {
			shifted[i] = append([]float64(nil), frame...)
		}
		return shifted
	}

	// Source bins land at freq/factor; only those still inside the band are usable
	nyquist := freqs[len(freqs)-1]
	var xp []float64
	var valid []int
	for k, f := range freqs {
		if f/factor <= nyquist {
			xp = append(xp, f/factor)
			valid = append(valid, k)
		}
	}

	fp := make([]float64, len(valid))
	for i, frame := range magnitude {
		for j, k := range valid {
			fp[j] = frame[k]
		}

		out := make([]float64, len(frame))
		for k := range min(len(frame), len(freqs)) {
			out[k] = common.Interpolate(xp, fp, freqs[k])
		}
		shifted[i] = out
	}

	return shifted
}

// SmoothFrequency blurs every frame along the frequency axis with a Gaussian
// kernel of the given sigma (in bins). The kernel is truncated at 4 sigma
// and edges are mirrored (half-sample symmetric). A new matrix is returned.
func SmoothFrequency(magnitude [][]float64, sigma float64) [][]float64 {
	smoothed := make([][]float64, len(magnitude))
	if sigma <= 0 {
		for i, frame := range magnitude {
			smoothed[i] = append([]float64(nil), frame...)
		}
		return smoothed
	}

	kernel := gaussianKernel(sigma)
	radius := len(kernel) / 2

	for i, frame := range magnitude {
		n := len(frame)
		out := make([]float64, n)
		for k := range n {
			var sum float64
			for j, w := range kernel {
				sum += w * frame[reflectIndex(k+j-radius, n)]
			}
			out[k] = sum
		}
		smoothed[i] = out
	}

	return smoothed
}

func gaussianKernel(sigma float64) []float64 {
	radius := int(4*sigma + 0.5)
	kernel := make([]float64, 2*radius+1)

	var sum float64
	for i := range kernel {
		x := float64(i - radius)
		kernel[i] = math.Exp(-0.5 * x * x / (sigma * sigma))
		sum += kernel[i]
	}
	for i := range kernel {
		kernel[i] /= sum
	}
	return kernel
}

// reflectIndex maps i into [0, n) by mirroring about the edges, repeating
// the edge sample (d c b a | a b c d | d c b a).
func reflectIndex(i, n int) int {
	if n == 1 {
		return 0
	}
	period := 2 * n
	i %= period
	if i < 0 {
		i += period
	}
	if i >= n {
		i = period - 1 - i
	}
	return i
}
