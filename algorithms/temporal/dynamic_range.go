package temporal

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// levelFloor stands in for silent frames when converting to dB
const levelFloor = 1e-10

// LevelStats summarises the loudness of a clip
type LevelStats struct {
	Peak           float64 `json:"peak"`             // Peak absolute sample
	RMS            float64 `json:"rms"`              // Overall RMS level
	CrestFactor    float64 `json:"crest_factor"`     // Peak / RMS
	DynamicRangeDB float64 `json:"dynamic_range_db"` // Frame RMS spread between the 10th and 90th percentiles
}

// DynamicRange analyzes amplitude dynamics and statistics
type DynamicRange struct {
	envelopeExtractor *Envelope
	frameSize         int
	hopSize           int
}

// NewDynamicRange creates a new dynamic range analyzer using 1024 sample
// frames with a 512 sample hop
func NewDynamicRange() *DynamicRange {
	return &DynamicRange{
		envelopeExtractor: NewEnvelope(),
		frameSize:         1024,
		hopSize:           512,
	}
}

// ComputeRange calculates dynamic range in dB between percentiles of the
// frame RMS levels
func (dr *DynamicRange) ComputeRange(signal []float64, lowPercentile, highPercentile float64) float64 {
	rmsValues := dr.envelopeExtractor.ComputeRMS(signal, dr.frameSize, dr.hopSize)
	if len(rmsValues) == 0 {
		return 0.0
	}

	slices.Sort(rmsValues)
	lowValue := max(stat.Quantile(lowPercentile, stat.Empirical, rmsValues, nil), levelFloor)
	highValue := stat.Quantile(highPercentile, stat.Empirical, rmsValues, nil)
	if highValue <= 0.0 {
		return 0.0
	}

	return 20.0 * math.Log10(highValue/lowValue)
}

// ComputeCrestFactor calculates crest factor (peak-to-RMS ratio)
func (dr *DynamicRange) ComputeCrestFactor(signal []float64) float64 {
	if len(signal) == 0 {
		return 0.0
	}

	rms := floats.Norm(signal, 2) / math.Sqrt(float64(len(signal)))
	if rms == 0.0 {
		return 0.0
	}

	return floats.Norm(signal, math.Inf(1)) / rms
}

// ComputeStatistics calculates peak, RMS, crest factor and dynamic range
func (dr *DynamicRange) ComputeStatistics(signal []float64) LevelStats {
	if len(signal) == 0 {
		return LevelStats{}
	}

	return LevelStats{
		Peak:           floats.Norm(signal, math.Inf(1)),
		RMS:            floats.Norm(signal, 2) / math.Sqrt(float64(len(signal))),
		CrestFactor:    dr.ComputeCrestFactor(signal),
		DynamicRangeDB: dr.ComputeRange(signal, 0.10, 0.90),
	}
}
