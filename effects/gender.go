package effects

import (
	"fmt"
	"math"
	"strings"

	"github.com/RyanBlaney/sonido-fx/algorithms/tonal"
	"github.com/RyanBlaney/sonido-fx/effects/config"
	"github.com/RyanBlaney/sonido-fx/logging"
)

// Gender is the coarse voice class used to pick pitch-shift amounts
type Gender int

const (
	GenderMale Gender = iota
	GenderFemale
)

func (g Gender) String() string {
	if g == GenderMale {
		return "male"
	}
	return "female"
}

// MarshalText encodes the gender by name
func (g Gender) MarshalText() ([]byte, error) {
	return []byte(g.String()), nil
}

// GenderEstimate is the result of pitch based gender estimation
type GenderEstimate struct {
	Gender   Gender  `json:"gender"`
	MeanF0   float64 `json:"mean_f0"`  // Hz
	Voiced   int     `json:"voiced"`   // Voiced frames behind MeanF0
	Fallback bool    `json:"fallback"` // No usable pitch; Gender and MeanF0 are the configured fallback
}

// EstimateGender classifies samples with the default configuration. It
// never fails: when no pitch can be measured the fallback estimate
// (female, 200 Hz) is returned with Fallback set.
func EstimateGender(samples []float64, sampleRate int) GenderEstimate {
	return newGenderEstimator(config.DefaultGenderConfig(), logging.WithFields(logging.Fields{
		"component": "gender_estimator",
	})).estimate(samples, sampleRate)
}

// EstimateGender classifies samples with the pipeline's gender settings
func (p *Pipeline) EstimateGender(samples []float64, sampleRate int) GenderEstimate {
	return p.gender.estimate(samples, sampleRate)
}

type genderEstimator struct {
	cfg    config.GenderConfig
	logger logging.Logger
}

func newGenderEstimator(cfg config.GenderConfig, logger logging.Logger) *genderEstimator {
	return &genderEstimator{cfg: cfg, logger: logger}
}

func (ge *genderEstimator) fallback(reason string) GenderEstimate {
	g := GenderFemale
	if strings.EqualFold(ge.cfg.FallbackGender, "male") {
		g = GenderMale
	}

	ge.logger.Debug("Gender estimate unavailable, using fallback", logging.Fields{
		"reason":      reason,
		"gender":      g.String(),
		"fallback_f0": ge.cfg.FallbackF0,
	})

	return GenderEstimate{Gender: g, MeanF0: ge.cfg.FallbackF0, Fallback: true}
}

func (ge *genderEstimator) estimate(samples []float64, sampleRate int) (est GenderEstimate) {
	defer func() {
		if r := recover(); r != nil {
			est = ge.fallback(fmt.Sprintf("panic: %v", r))
		}
	}()

	if len(samples) == 0 {
		return ge.fallback("empty input")
	}

	params := tonal.DefaultPitchTrackerParams(sampleRate)
	params.MinFreq = ge.cfg.MinFreq
	params.MaxFreq = ge.cfg.MaxFreq

	tracker, err := tonal.NewPitchTracker(params)
	if err != nil {
		return ge.fallback(err.Error())
	}

	meanF0, voiced, err := tracker.MeanF0(samples)
	if err != nil {
		return ge.fallback(err.Error())
	}
	if math.IsNaN(meanF0) || math.IsInf(meanF0, 0) {
		return ge.fallback("non-finite mean pitch")
	}

	g := GenderFemale
	if meanF0 < ge.cfg.Threshold {
		g = GenderMale
	}

	ge.logger.Debug("Gender estimated", logging.Fields{
		"gender":  g.String(),
		"mean_f0": meanF0,
		"voiced":  voiced,
	})

	return GenderEstimate{Gender: g, MeanF0: meanF0, Voiced: voiced}
}
