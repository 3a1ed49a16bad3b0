package effects

import (
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/RyanBlaney/sonido-fx/algorithms/common"
	"github.com/RyanBlaney/sonido-fx/algorithms/filters"
	"github.com/RyanBlaney/sonido-fx/algorithms/spectral"
	"github.com/RyanBlaney/sonido-fx/algorithms/temporal"
)

// Pitch shifts in semitones
const (
	maleShiftFromMale   = -2.0
	maleShiftFromFemale = -5.0
	femaleShift         = 5.0
	babyShiftFromFemale = 5.0
	babyShiftFromMale   = 7.0
)

const (
	femaleFormantFactor  = 1.2
	femaleNoiseSigma     = 0.002
	femaleBreathLow      = 2000.0 // Hz
	femaleBreathHigh     = 4000.0 // Hz
	femaleBreathGain     = 0.3
	femalePreEmphasis    = 0.9
	femalePreEmphasisMix = 0.2
	femaleCompThreshold  = 0.4
	femaleCompRatio      = 2.5

	babySpeedFactor  = 0.85
	babyTremoloRate  = 5.0 // Hz
	babyTremoloDepth = 0.1

	normalizedPeak   = 0.95
	butterworthOrder = 4
)

func (p *Pipeline) male(j *job) ([]float64, error) {
	shift := maleShiftFromFemale
	if p.estimateGender(j).Gender == GenderMale {
		shift = maleShiftFromMale
	}
	if err := j.checkpoint(); err != nil {
		return nil, err
	}
	return p.pv.PitchShift(j.samples, j.sampleRate, shift)
}

// female lifts pitch and formants, then adds breath noise and presence
func (p *Pipeline) female(j *job) ([]float64, error) {
	n := len(j.samples)

	y, err := p.pv.PitchShift(j.samples, j.sampleRate, femaleShift)
	if err != nil {
		return nil, err
	}
	if err := j.checkpoint(); err != nil {
		return nil, err
	}

	spec, err := p.spectrum(y, j.sampleRate)
	if err != nil {
		return nil, err
	}
	freqs := spectral.BinFrequencies(spec.WindowSize, j.sampleRate)
	mag := spectral.FormantShift(spec.Magnitude, freqs, femaleFormantFactor)
	y, err = p.resynthesize(mag, spec.Phase, n)
	if err != nil {
		return nil, err
	}
	if err := j.checkpoint(); err != nil {
		return nil, err
	}

	// Silence stays silent; breath noise would be normalised to full scale
	if common.IsSilent(y) {
		return y, nil
	}

	noise := distuv.Normal{
		Mu:    0,
		Sigma: femaleNoiseSigma,
		Src:   rand.NewPCG(p.config.NoiseSeed, p.config.NoiseSeed),
	}
	for i := range y {
		y[i] += noise.Rand()
	}

	breath, err := filters.ButterworthBandpass(butterworthOrder, femaleBreathLow, femaleBreathHigh, j.sampleRate)
	if err != nil {
		return nil, fmt.Errorf("breath band: %w", err)
	}
	band := breath.Filter(y)
	for i := range y {
		y[i] += femaleBreathGain * band[i]
	}

	y = filters.NewPreEmphasis(femalePreEmphasis).Blend(y, femalePreEmphasisMix)

	y = temporal.NewCompressor(femaleCompThreshold, femaleCompRatio).ProcessStatic(y)
	return common.PeakNormalize(y, normalizedPeak), nil
}

// baby raises pitch, speeds up by direct resampling and adds tremolo
func (p *Pipeline) baby(j *job) ([]float64, error) {
	shift := babyShiftFromMale
	if p.estimateGender(j).Gender == GenderFemale {
		shift = babyShiftFromFemale
	}
	if err := j.checkpoint(); err != nil {
		return nil, err
	}

	y, err := p.pv.PitchShift(j.samples, j.sampleRate, shift)
	if err != nil {
		return nil, err
	}

	if target := int(float64(len(y)) * babySpeedFactor); target > 0 {
		y = common.NewInterpolator(common.Linear).ResampleLength(y, target)
	}

	return temporal.AmplitudeModulate(y, j.sampleRate, babyTremoloRate, babyTremoloDepth), nil
}
