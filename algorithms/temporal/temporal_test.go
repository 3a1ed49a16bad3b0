package temporal

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeRMS(t *testing.T) {
	e := NewEnvelope()
	signal := []float64{1, -1, 1, -1, 0.5, -0.5, 0.5, -0.5}

	assert.InDeltaSlice(t, []float64{1, math.Sqrt(0.625), 0.5}, e.ComputeRMS(signal, 4, 2), 1e-12)
	assert.Empty(t, e.ComputeRMS(signal[:2], 4, 2))
}

func TestFollowAttackAndRelease(t *testing.T) {
	const sr = 1000
	signal := make([]float64, 2000)
	for i := range 1000 {
		signal[i] = 1
	}

	env := NewEnvelope().Follow(signal, 0.003, 0.1, sr)
	require.Len(t, env, len(signal))
	assert.Equal(t, 0.0, env[0])

	// Fast attack reaches the level within a few time constants
	assert.InDelta(t, 1, env[30], 1e-3)

	// Release after 0.1 s (one time constant) leaves about 1/e
	assert.InDelta(t, math.Exp(-1), env[1099], 0.01)
}

func TestCompressorStatic(t *testing.T) {
	c := NewCompressor(0.4, 2.5)
	out := c.ProcessStatic([]float64{0.2, 0.9, -0.9, -0.4})

	assert.InDeltaSlice(t, []float64{0.2, 0.6, -0.6, -0.4}, out, 1e-12)
}

func TestCompressorEnvelope(t *testing.T) {
	c := NewCompressor(0.3, 4)
	signal := []float64{0.5, 0.5, 0.1}
	envelope := []float64{0.7, 0.2, 0.7}

	out := c.ProcessEnvelope(signal, envelope)

	gain := (0.3 + 0.4/4) / 0.7
	assert.InDeltaSlice(t, []float64{0.5 * gain, 0.5, 0.1 * gain}, out, 1e-12)
}

func TestSoftClipAndSaturate(t *testing.T) {
	out := SoftClip([]float64{0, 0.001, 10}, 3)
	assert.Equal(t, 0.0, out[0])
	assert.InDelta(t, 0.001, out[1], 1e-6)
	assert.InDelta(t, 1.0/3, out[2], 1e-9)

	sat := Saturate([]float64{10, -10}, 3)
	assert.InDelta(t, 1, sat[0], 1e-9)
	assert.InDelta(t, -1, sat[1], 1e-9)
}

func TestModulation(t *testing.T) {
	axis := TimeAxis(5, 4)
	assert.InDeltaSlice(t, []float64{0, 0.3125, 0.625, 0.9375, 1.25}, axis, 1e-12)

	ones := []float64{1, 1, 1, 1, 1}
	ring := RingModulate(ones, 4, 0)
	assert.InDeltaSlice(t, []float64{0, 0, 0, 0, 0}, ring, 1e-12)

	am := AmplitudeModulate(ones, 1000, 5, 0.1)
	for _, v := range am {
		assert.LessOrEqual(t, v, 1.1+1e-12)
		assert.GreaterOrEqual(t, v, 0.9-1e-12)
	}
}

func TestDynamicRangeStatistics(t *testing.T) {
	signal := make([]float64, 4096)
	for i := range signal {
		signal[i] = math.Sin(2 * math.Pi * float64(i) / 64)
	}

	stats := NewDynamicRange().ComputeStatistics(signal)
	assert.InDelta(t, 1, stats.Peak, 1e-9)
	assert.InDelta(t, 1/math.Sqrt2, stats.RMS, 1e-3)
	assert.InDelta(t, math.Sqrt2, stats.CrestFactor, 1e-3)
	assert.InDelta(t, 0, stats.DynamicRangeDB, 0.1)

	assert.Equal(t, LevelStats{}, NewDynamicRange().ComputeStatistics(nil))
}
