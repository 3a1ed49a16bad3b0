package common

import (
	"fmt"
	"math"

	resampling "github.com/tphakala/go-audio-resampling"

	"github.com/RyanBlaney/sonido-fx/logging"
)

// minResampleCoverage is the share of the expected output the polyphase
// resampler must deliver before its result is trusted. Very short clips can
// be swallowed by the filter latency.
const minResampleCoverage = 0.9

// Resample converts mono signal from originalRate to targetRate. Rates may be
// fractional. It uses the soxr-style polyphase resampler and falls back to
// cubic interpolation when that resampler rejects the input or returns too
// little audio.
func Resample(signal []float64, originalRate, targetRate float64) ([]float64, error) {
	if originalRate <= 0 || targetRate <= 0 || math.IsNaN(originalRate) || math.IsNaN(targetRate) {
		return nil, fmt.Errorf("invalid resample rates %.3f -> %.3f", originalRate, targetRate)
	}
	if len(signal) == 0 {
		return []float64{}, nil
	}
	if originalRate == targetRate {
		out := make([]float64, len(signal))
		copy(out, signal)
		return out, nil
	}

	logger := logging.WithFields(logging.Fields{
		"component": "resampler",
		"function":  "Resample",
		"from_rate": originalRate,
		"to_rate":   targetRate,
	})

	expected := float64(len(signal)) * targetRate / originalRate

	out, err := resamplePolyphase(signal, originalRate, targetRate)
	if err == nil && float64(len(out)) >= expected*minResampleCoverage {
		return out, nil
	}

	logger.Debug("Polyphase resample unusable, interpolating", logging.Fields{
		"error":    fmt.Sprint(err),
		"got":      len(out),
		"expected": expected,
	})

	return NewInterpolator(Cubic).ResampleSignal(signal, originalRate, targetRate), nil
}

func resamplePolyphase(signal []float64, originalRate, targetRate float64) ([]float64, error) {
	config := &resampling.Config{
		InputRate:  originalRate,
		OutputRate: targetRate,
		Channels:   1,
		Quality:    resampling.QualitySpec{Preset: resampling.QualityHigh},
	}

	r, err := resampling.New(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create resampler: %w", err)
	}

	out, err := r.Process(signal)
	if err != nil {
		return nil, fmt.Errorf("resample error: %w", err)
	}

	tail, err := r.Flush()
	if err != nil {
		return nil, fmt.Errorf("resample flush error: %w", err)
	}

	return append(out, tail...), nil
}
