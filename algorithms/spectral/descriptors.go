package spectral

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// DefaultRolloffThreshold is the energy fraction below the rolloff frequency
const DefaultRolloffThreshold = 0.85

// Brightness summarises where the energy of a clip sits in frequency
type Brightness struct {
	Centroid float64 `json:"centroid"` // Mean spectral centroid (Hz)
	Rolloff  float64 `json:"rolloff"`  // Mean rolloff frequency (Hz)
}

// Centroid returns the magnitude weighted mean frequency of one frame
func Centroid(frame, freqs []float64) float64 {
	n := min(len(frame), len(freqs))
	total := floats.Sum(frame[:n])
	if total == 0 {
		return 0
	}
	return floats.Dot(frame[:n], freqs[:n]) / total
}

// Rolloff returns the lowest frequency below which threshold of the
// frame's energy lies
func Rolloff(frame, freqs []float64, threshold float64) float64 {
	n := min(len(frame), len(freqs))
	if n == 0 {
		return 0
	}

	total := floats.Dot(frame[:n], frame[:n])
	if total == 0 {
		return 0
	}

	target := threshold * total
	cumulative := 0.0
	for k := range n {
		cumulative += frame[k] * frame[k]
		if cumulative >= target {
			return freqs[k]
		}
	}
	return freqs[n-1]
}

// MeasureBrightness averages centroid and rolloff over the frames of an
// STFT, skipping silent frames
func MeasureBrightness(result *STFTResult) Brightness {
	if result == nil || result.TimeFrames == 0 {
		return Brightness{}
	}

	freqs := BinFrequencies(result.WindowSize, result.SampleRate)
	var centroids, rolloffs []float64
	for _, frame := range result.Magnitude {
		if floats.Max(frame) == 0 {
			continue
		}
		centroids = append(centroids, Centroid(frame, freqs))
		rolloffs = append(rolloffs, Rolloff(frame, freqs, DefaultRolloffThreshold))
	}

	if len(centroids) == 0 {
		return Brightness{}
	}
	return Brightness{
		Centroid: stat.Mean(centroids, nil),
		Rolloff:  stat.Mean(rolloffs, nil),
	}
}
