package effects

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/RyanBlaney/sonido-fx/effects/config"
	"github.com/RyanBlaney/sonido-fx/logging"
)

const testRate = 22050

func sine(freq float64, sampleRate, n int, amp float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = amp * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate))
	}
	return out
}

func TestEstimateGender(t *testing.T) {
	low := EstimateGender(sine(100, testRate, testRate, 0.5), testRate)
	assert.Equal(t, GenderMale, low.Gender)
	assert.InDelta(t, 100, low.MeanF0, 2)
	assert.False(t, low.Fallback)
	assert.Positive(t, low.Voiced)

	high := EstimateGender(sine(250, testRate, testRate, 0.5), testRate)
	assert.Equal(t, GenderFemale, high.Gender)
	assert.InDelta(t, 250, high.MeanF0, 3)
}

func TestEstimateGenderFallback(t *testing.T) {
	cases := map[string][]float64{
		"empty":   {},
		"silence": make([]float64, testRate),
	}

	for name, samples := range cases {
		t.Run(name, func(t *testing.T) {
			est := EstimateGender(samples, testRate)
			assert.True(t, est.Fallback)
			assert.Equal(t, GenderFemale, est.Gender)
			assert.Equal(t, 200.0, est.MeanF0)
		})
	}

	// invalid sample rate fails tracker construction
	est := EstimateGender(sine(100, testRate, 4096, 0.5), 0)
	assert.True(t, est.Fallback)
}

func TestConfiguredFallbackGender(t *testing.T) {
	cfg := config.DefaultGenderConfig()
	cfg.FallbackGender = "Male"
	cfg.FallbackF0 = 120

	est := newGenderEstimator(cfg, &logging.NoOpLogger{}).estimate(nil, testRate)
	assert.Equal(t, GenderEstimate{Gender: GenderMale, MeanF0: 120, Fallback: true}, est)
	assert.Equal(t, "male", est.Gender.String())
}
