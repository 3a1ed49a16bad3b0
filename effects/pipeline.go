package effects

import (
	"context"
	"fmt"
	"runtime/debug"
	"slices"
	"time"

	"github.com/RyanBlaney/sonido-fx/algorithms/common"
	"github.com/RyanBlaney/sonido-fx/algorithms/spectral"
	"github.com/RyanBlaney/sonido-fx/effects/config"
	"github.com/RyanBlaney/sonido-fx/logging"
)

// Result is the output of one pipeline run
type Result struct {
	Samples    []float64       `json:"-"`
	SampleRate int             `json:"sample_rate"`
	Effect     Effect          `json:"-"`
	Fallback   bool            `json:"fallback"`       // The effect failed and the input was returned
	Note       string          `json:"note,omitempty"` // Why the fallback happened
	Gender     *GenderEstimate `json:"gender,omitempty"`
	Duration   time.Duration   `json:"duration"`
}

// Pipeline applies voice effects to mono waveforms. It holds only
// immutable configuration and is safe for concurrent use.
type Pipeline struct {
	config *config.PipelineConfig
	stft   *spectral.STFT
	pv     *spectral.PhaseVocoder
	gender *genderEstimator
	logger logging.Logger
}

// Option customizes a Pipeline
type Option func(*Pipeline)

// WithLogger replaces the pipeline logger
func WithLogger(logger logging.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// New creates a pipeline. A nil config selects DefaultPipelineConfig.
func New(cfg *config.PipelineConfig, opts ...Option) *Pipeline {
	if cfg == nil {
		cfg = config.DefaultPipelineConfig()
	}

	p := &Pipeline{
		config: cfg,
		stft:   spectral.NewSTFT(),
		pv:     spectral.NewPhaseVocoder(cfg.Spectral.WindowSize, cfg.Spectral.HopSize),
		logger: logging.WithFields(logging.Fields{
			"component": "effect_pipeline",
		}),
	}

	for _, opt := range opts {
		opt(p)
	}

	p.gender = newGenderEstimator(cfg.Gender, p.logger.WithFields(logging.Fields{
		"function": "estimateGender",
	}))

	return p
}

// Apply runs the default pipeline over samples with the named effect
func Apply(samples []float64, sampleRate int, name string) (*Result, error) {
	return New(nil).Apply(context.Background(), samples, sampleRate, name)
}

// Apply resolves name and runs the effect. See ApplyEffect.
func (p *Pipeline) Apply(ctx context.Context, samples []float64, sampleRate int, name string) (*Result, error) {
	effect, err := ParseEffect(name)
	if err != nil {
		return nil, err
	}
	return p.ApplyEffect(ctx, samples, sampleRate, effect)
}

// ApplyEffect transforms samples with effect. Contract violations (unknown
// effect, non-positive sample rate, NaN/Inf input) and cancellation are
// errors. Failures inside the transform are not: the result then carries a
// copy of the input with Fallback set. Every result is scrubbed of
// non-finite values and limited to the configured output ceiling.
func (p *Pipeline) ApplyEffect(ctx context.Context, samples []float64, sampleRate int, effect Effect) (*Result, error) {
	if !effect.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownEffect, int(effect))
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSampleRate, sampleRate)
	}
	if !common.AllFinite(samples) {
		return nil, ErrNonFiniteInput
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("effect %s: %w", effect, err)
	}

	start := time.Now()
	logger := p.logger.WithContext(ctx).WithFields(logging.Fields{
		"function": "ApplyEffect",
		"effect":   effect.String(),
	})

	result := &Result{
		SampleRate: sampleRate,
		Effect:     effect,
	}

	if len(samples) == 0 {
		result.Samples = []float64{}
		result.Duration = time.Since(start)
		return result, nil
	}

	j := &job{
		ctx:        ctx,
		samples:    samples,
		sampleRate: sampleRate,
	}

	out, err := p.attempt(j, effect)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("effect %s: %w", effect, ctxErr)
		}

		logger.Warn("Effect failed, returning original audio", logging.Fields{
			"error": err.Error(),
		})
		out = slices.Clone(samples)
		result.Fallback = true
		result.Note = fmt.Sprintf("effect %s failed, original returned: %v", effect, err)
	}

	result.Samples = common.NormalizeOutput(out, p.config.OutputCeiling)
	result.Gender = j.gender
	result.Duration = time.Since(start)

	logger.Debug("Effect applied", logging.Fields{
		"input_samples":  len(samples),
		"output_samples": len(result.Samples),
		"fallback":       result.Fallback,
		"duration_ms":    result.Duration.Milliseconds(),
	})

	return result, nil
}

// attempt runs a transform, turning a panic into an error
func (p *Pipeline) attempt(j *job, effect Effect) (out []float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Debug("Recovered panic in effect", logging.Fields{
				"effect": effect.String(),
				"stack":  string(debug.Stack()),
			})
			out, err = nil, fmt.Errorf("panic: %v", r)
		}
	}()

	out, err = transforms[effect](p, j)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("transform produced no samples")
	}
	return out, nil
}

// job is the per-call state shared by the stages of one transform
type job struct {
	ctx        context.Context
	samples    []float64
	sampleRate int
	gender     *GenderEstimate
}

// checkpoint reports cancellation between stages
func (j *job) checkpoint() error {
	return j.ctx.Err()
}

// estimateGender runs the estimator once per job
func (p *Pipeline) estimateGender(j *job) GenderEstimate {
	if j.gender == nil {
		est := p.gender.estimate(j.samples, j.sampleRate)
		j.gender = &est
	}
	return *j.gender
}

type transform func(p *Pipeline, j *job) ([]float64, error)

var transforms = [numEffects]transform{
	Robotic:    (*Pipeline).robotic,
	Male:       (*Pipeline).male,
	Female:     (*Pipeline).female,
	Baby:       (*Pipeline).baby,
	Cartoon:    (*Pipeline).cartoon,
	Echo:       (*Pipeline).echo,
	Distorted:  (*Pipeline).distorted,
	Anonymized: (*Pipeline).anonymized,
}

// spectrum is the STFT of signal with the configured analysis sizes
func (p *Pipeline) spectrum(signal []float64, sampleRate int) (*spectral.STFTResult, error) {
	return p.stft.Forward(signal, p.config.Spectral.WindowSize, p.config.Spectral.HopSize, sampleRate)
}

// resynthesize inverts an STFT to exactly length samples
func (p *Pipeline) resynthesize(magnitude, phase [][]float64, length int) ([]float64, error) {
	return p.stft.Inverse(magnitude, phase, p.config.Spectral.WindowSize, p.config.Spectral.HopSize, length)
}
