package tonal

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sine(freq float64, sampleRate, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 0.5 * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate))
	}
	return out
}

func newTracker(t *testing.T, sampleRate int) *PitchTracker {
	t.Helper()
	pt, err := NewPitchTracker(DefaultPitchTrackerParams(sampleRate))
	require.NoError(t, err)
	return pt
}

func TestMeanF0OnSines(t *testing.T) {
	cases := []struct {
		name       string
		freq       float64
		sampleRate int
	}{
		{"low voice", 100, 22050},
		{"high voice", 250, 22050},
		{"mid voice at 16k", 180, 16000},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			pt := newTracker(t, tc.sampleRate)
			mean, voiced, err := pt.MeanF0(sine(tc.freq, tc.sampleRate, tc.sampleRate))
			require.NoError(t, err)
			assert.Greater(t, voiced, 0)
			assert.InDelta(t, tc.freq, mean, tc.freq*0.02)
		})
	}
}

func TestTrackSilenceIsUnvoiced(t *testing.T) {
	pt := newTracker(t, 16000)

	pitches, err := pt.Track(make([]float64, 16000))
	require.NoError(t, err)
	for _, f0 := range pitches {
		assert.Equal(t, 0.0, f0)
	}

	_, _, err = pt.MeanF0(make([]float64, 16000))
	assert.ErrorIs(t, err, ErrNoVoicedFrames)
}

func TestTrackShortSignal(t *testing.T) {
	pt := newTracker(t, 16000)

	pitches, err := pt.Track(sine(200, 16000, 500))
	require.NoError(t, err)
	assert.Len(t, pitches, 1)
}

func TestTrackRejectsBadInput(t *testing.T) {
	pt := newTracker(t, 16000)

	_, err := pt.Track(nil)
	assert.Error(t, err)

	_, err = pt.Track([]float64{0.1, math.NaN(), 0.2})
	assert.Error(t, err)
}

func TestFrameSizeGrowsForLowFrequencies(t *testing.T) {
	params := DefaultPitchTrackerParams(48000)
	params.FrameSize = 256

	pt, err := NewPitchTracker(params)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, pt.Params().FrameSize, 2*960+2)
}

func TestNewPitchTrackerValidation(t *testing.T) {
	bad := []func(p *PitchTrackerParams){
		func(p *PitchTrackerParams) { p.SampleRate = 0 },
		func(p *PitchTrackerParams) { p.MinFreq = 500 },
		func(p *PitchTrackerParams) { p.HopSize = 0 },
		func(p *PitchTrackerParams) { p.Threshold = 0 },
	}

	for i, mutate := range bad {
		p := DefaultPitchTrackerParams(16000)
		mutate(&p)
		_, err := NewPitchTracker(p)
		assert.Error(t, err, "case %d", i)
	}
}

func TestParabolicInterpolation(t *testing.T) {
	// Samples of (x-2.3)^2 around the discrete minimum at 2
	data := []float64{5.29, 1.69, 0.09, 0.49, 2.89}
	assert.InDelta(t, 2.3, parabolicInterpolation(data, 2), 1e-9)
	assert.Equal(t, 0.0, parabolicInterpolation(data, 0))
}
