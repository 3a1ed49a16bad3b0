package common

import (
	"math"
)

// DefaultCeiling is the peak level output buffers are scaled to.
const DefaultCeiling = 0.95

// silenceFloor is the peak below which a buffer counts as silent.
const silenceFloor = 1e-10

// NormalizationType defines normalization method
type NormalizationType int

const (
	// Peak always scales so the peak equals the ceiling.
	Peak NormalizationType = iota
	// Limit scales down only when the peak exceeds the ceiling.
	Limit
)

// Normalizer scrubs non-finite samples and rescales buffers to a ceiling.
type Normalizer struct {
	method  NormalizationType
	ceiling float64
}

// NewNormalizer creates a new normalizer. A ceiling outside (0, 1] falls
// back to DefaultCeiling.
func NewNormalizer(method NormalizationType, ceiling float64) *Normalizer {
	if ceiling <= 0 || ceiling > 1 || math.IsNaN(ceiling) {
		ceiling = DefaultCeiling
	}
	return &Normalizer{
		method:  method,
		ceiling: ceiling,
	}
}

// Normalize returns a sanitized, rescaled copy of signal.
func (n *Normalizer) Normalize(signal []float64) []float64 {
	clean := Sanitize(signal)

	switch n.method {
	case Limit:
		return n.limitInPlace(clean)
	default:
		return n.peakInPlace(clean)
	}
}

func (n *Normalizer) peakInPlace(signal []float64) []float64 {
	peak := MaxAbs(signal)
	if peak < silenceFloor {
		return signal // Return unchanged if no peak
	}

	gain := n.ceiling / peak
	for i := range signal {
		signal[i] *= gain
	}
	return signal
}

func (n *Normalizer) limitInPlace(signal []float64) []float64 {
	if MaxAbs(signal) <= n.ceiling {
		return signal
	}
	return n.peakInPlace(signal)
}

// Sanitize returns a copy of signal with NaN and ±Inf replaced by 0.
func Sanitize(signal []float64) []float64 {
	out := make([]float64, len(signal))
	for i, v := range signal {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		out[i] = v
	}
	return out
}

// IsSilent reports whether every sample sits below the silence floor
func IsSilent(signal []float64) bool {
	return MaxAbs(signal) < silenceFloor
}

// PeakNormalize scales a copy of signal so its peak equals ceiling. Silent
// buffers are returned unchanged.
func PeakNormalize(signal []float64, ceiling float64) []float64 {
	return NewNormalizer(Peak, ceiling).Normalize(signal)
}

// NormalizeOutput sanitizes signal and scales it down to ceiling when its
// peak exceeds the ceiling. Buffers already within range keep their level.
func NormalizeOutput(signal []float64, ceiling float64) []float64 {
	return NewNormalizer(Limit, ceiling).Normalize(signal)
}
