package effects

import (
	"context"
	"fmt"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyanBlaney/sonido-fx/algorithms/common"
	"github.com/RyanBlaney/sonido-fx/algorithms/tonal"
	"github.com/RyanBlaney/sonido-fx/effects/config"
	"github.com/RyanBlaney/sonido-fx/logging"
)

func newTestPipeline() *Pipeline {
	return New(nil, WithLogger(&logging.NoOpLogger{}))
}

// expectedLength is the output length of effect e for n input samples
func expectedLength(e Effect, n int) int {
	switch e {
	case Baby:
		return int(0.85 * float64(n))
	case Cartoon:
		return int(math.RoundToEven(float64(n) / 1.3))
	default:
		return n
	}
}

func TestApplyOutputLengths(t *testing.T) {
	in := sine(220, testRate, testRate, 0.5)
	n := len(in)

	p := newTestPipeline()
	for _, e := range Effects() {
		t.Run(e.String(), func(t *testing.T) {
			res, err := p.ApplyEffect(context.Background(), in, testRate, e)
			require.NoError(t, err)

			assert.False(t, res.Fallback, res.Note)
			assert.Equal(t, e, res.Effect)
			assert.Equal(t, testRate, res.SampleRate)
			assert.InDelta(t, expectedLength(e, n), len(res.Samples), 1)
			assert.True(t, common.AllFinite(res.Samples))
			assert.LessOrEqual(t, common.MaxAbs(res.Samples), 0.95+1e-9)
			assert.Greater(t, common.MaxAbs(res.Samples), 0.0)
		})
	}

	assert.Equal(t, sine(220, testRate, testRate, 0.5), in, "input must not be modified")
}

func TestApplyAtTelephoneRate(t *testing.T) {
	const rate = 8000
	in := sine(220, rate, rate, 0.5)

	p := newTestPipeline()
	for _, e := range Effects() {
		t.Run(e.String(), func(t *testing.T) {
			res, err := p.ApplyEffect(context.Background(), in, rate, e)
			require.NoError(t, err)
			assert.True(t, common.AllFinite(res.Samples))
			assert.LessOrEqual(t, common.MaxAbs(res.Samples), 0.95+1e-9)

			// The 2-4 kHz breath band reaches Nyquist at 8 kHz
			if e == Female {
				assert.True(t, res.Fallback)
				assert.Contains(t, res.Note, "effect female failed, original returned")
				assert.Contains(t, res.Note, "invalid for Nyquist 4000")
				assert.Len(t, res.Samples, len(in))
				return
			}
			assert.False(t, res.Fallback, res.Note)
			assert.InDelta(t, expectedLength(e, len(in)), len(res.Samples), 1)
		})
	}
}

func TestApplySilence(t *testing.T) {
	p := newTestPipeline()

	for _, n := range []int{4096, testRate} {
		silence := make([]float64, n)
		for _, e := range Effects() {
			t.Run(fmt.Sprintf("%s/%d", e, n), func(t *testing.T) {
				res, err := p.ApplyEffect(context.Background(), silence, testRate, e)
				require.NoError(t, err)
				require.True(t, common.AllFinite(res.Samples))
				assert.False(t, res.Fallback, res.Note)
				assert.InDelta(t, expectedLength(e, n), len(res.Samples), 1)
				assert.InDelta(t, 0, common.MaxAbs(res.Samples), 1e-9)
			})
		}
	}
}

func TestApplyContractErrors(t *testing.T) {
	p := newTestPipeline()
	ctx := context.Background()
	in := sine(220, testRate, 4096, 0.5)

	_, err := p.Apply(ctx, in, testRate, "martian")
	assert.ErrorIs(t, err, ErrUnknownEffect)

	_, err = p.ApplyEffect(ctx, in, testRate, numEffects)
	assert.ErrorIs(t, err, ErrUnknownEffect)

	_, err = p.Apply(ctx, in, 0, "echo")
	assert.ErrorIs(t, err, ErrInvalidSampleRate)

	bad := append([]float64{math.NaN()}, in...)
	_, err = p.Apply(ctx, bad, testRate, "echo")
	assert.ErrorIs(t, err, ErrNonFiniteInput)

	bad[0] = math.Inf(-1)
	_, err = p.Apply(ctx, bad, testRate, "echo")
	assert.ErrorIs(t, err, ErrNonFiniteInput)
}

func TestApplyEmptyInput(t *testing.T) {
	res, err := Apply([]float64{}, testRate, "robotic")
	require.NoError(t, err)
	assert.Empty(t, res.Samples)
	assert.NotNil(t, res.Samples)
	assert.False(t, res.Fallback)
}

func TestApplyCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestPipeline().Apply(ctx, sine(220, testRate, 4096, 0.5), testRate, "cartoon")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFallbackOnShortInput(t *testing.T) {
	in := []float64{0.1, -0.2, 0.3, -0.1, 0.05, 0, 0.2, -0.3, 0.1, 0}

	res, err := newTestPipeline().Apply(context.Background(), in, testRate, "distorted")
	require.NoError(t, err)

	assert.True(t, res.Fallback)
	assert.Contains(t, res.Note, "effect distorted failed, original returned")
	assert.Equal(t, in, res.Samples)
}

func TestFallbackIsNormalized(t *testing.T) {
	in := []float64{2, -4, 1}

	res, err := newTestPipeline().Apply(context.Background(), in, testRate, "anonymized")
	require.NoError(t, err)

	assert.True(t, res.Fallback)
	assert.InDelta(t, 0.95, common.MaxAbs(res.Samples), 1e-12)
	assert.Equal(t, []float64{2, -4, 1}, in)
}

func TestEchoAddsDelayedCopy(t *testing.T) {
	const rate = 100
	in := make([]float64, 50)
	in[0] = 0.5

	res, err := Apply(in, rate, "echo")
	require.NoError(t, err)

	assert.InDelta(t, 0.5, res.Samples[0], 1e-12)
	assert.InDelta(t, 0.25, res.Samples[30], 1e-12)
	assert.InDelta(t, 0, res.Samples[29], 1e-12)
}

func TestMaleLowersPitch(t *testing.T) {
	in := sine(440, testRate, testRate, 0.5)

	res, err := newTestPipeline().Apply(context.Background(), in, testRate, "male")
	require.NoError(t, err)
	require.False(t, res.Fallback, res.Note)
	require.NotNil(t, res.Gender)

	params := tonal.DefaultPitchTrackerParams(testRate)
	params.MinFreq = 100
	params.MaxFreq = 1000
	tracker, err := tonal.NewPitchTracker(params)
	require.NoError(t, err)

	f0, _, err := tracker.MeanF0(res.Samples)
	require.NoError(t, err)
	assert.Less(t, f0, 440*math.Pow(2, -2.0/12))
	assert.Greater(t, f0, 250.0)
}

func TestGenderIsReportedOnlyWhenUsed(t *testing.T) {
	p := newTestPipeline()
	in := sine(120, testRate, testRate, 0.5)

	res, err := p.Apply(context.Background(), in, testRate, "baby")
	require.NoError(t, err)
	require.NotNil(t, res.Gender)
	assert.Equal(t, GenderMale, res.Gender.Gender)

	res, err = p.Apply(context.Background(), in, testRate, "echo")
	require.NoError(t, err)
	assert.Nil(t, res.Gender)
}

func TestFemaleIsDeterministic(t *testing.T) {
	in := sine(180, testRate, testRate/2, 0.5)
	p := newTestPipeline()

	a, err := p.Apply(context.Background(), in, testRate, "female")
	require.NoError(t, err)
	b, err := p.Apply(context.Background(), in, testRate, "female")
	require.NoError(t, err)
	assert.Equal(t, a.Samples, b.Samples)

	cfg := config.DefaultPipelineConfig()
	cfg.NoiseSeed = 7
	c, err := New(cfg, WithLogger(&logging.NoOpLogger{})).Apply(context.Background(), in, testRate, "female")
	require.NoError(t, err)
	assert.NotEqual(t, a.Samples, c.Samples)
}

func TestConcurrentApply(t *testing.T) {
	p := newTestPipeline()
	in := sine(200, testRate, testRate/2, 0.5)

	want, err := p.Apply(context.Background(), in, testRate, "robotic")
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([][]float64, 4)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := p.Apply(context.Background(), in, testRate, "robotic")
			if err == nil {
				results[i] = res.Samples
			}
		}()
	}
	wg.Wait()

	for _, got := range results {
		assert.Equal(t, want.Samples, got)
	}
}

func TestAttemptRecoversPanic(t *testing.T) {
	p := newTestPipeline()
	j := &job{ctx: context.Background(), samples: []float64{1, 2}, sampleRate: 0}

	// the highpass design rejects a zero sample rate
	_, err := p.attempt(j, Distorted)
	assert.Error(t, err)

	broken := *p
	broken.pv = nil
	_, err = broken.attempt(&job{ctx: context.Background(), samples: make([]float64, 4096), sampleRate: testRate}, Cartoon)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panic")
}

func TestHelpers(t *testing.T) {
	assert.Equal(t, 1.0, sign(0.3))
	assert.Equal(t, -1.0, sign(-2))
	assert.Equal(t, 0.0, sign(0))

	assert.InDelta(t, 0.7, anonGain(4000.0001), 1e-6)
	assert.Equal(t, 1.05, anonGain(2000))
	assert.Equal(t, 1.0, anonGain(500))
}
