package effects

import (
	"fmt"
	"math"

	"github.com/RyanBlaney/sonido-fx/algorithms/common"
	"github.com/RyanBlaney/sonido-fx/algorithms/filters"
	"github.com/RyanBlaney/sonido-fx/algorithms/spectral"
	"github.com/RyanBlaney/sonido-fx/algorithms/temporal"
)

const (
	anonShift         = -6.0
	anonPhoneLow      = 300.0  // Hz
	anonPhoneHigh     = 3400.0 // Hz
	anonClipDrive     = 1.5
	anonAttack        = 0.003 // seconds
	anonRelease       = 0.1   // seconds
	anonCompThreshold = 0.3
	anonCompRatio     = 4.0
	anonSmoothSigma   = 0.5 // bins
	anonSmoothMix     = 0.15
)

var anonBands = []band{
	{200, 800, 0.85},
	{800, 1800, 1.1},
	{1800, 3200, 0.9},
}

// anonGain darkens the top end and adds a little presence
func anonGain(f float64) float64 {
	switch {
	case f > 4000:
		return 0.7 * math.Exp(-(f-4000)/2000)
	case f >= 1000 && f <= 3000:
		return 1.05
	default:
		return 1.0
	}
}

// anonymized lowers pitch, reshapes formants, band limits to telephone
// range, compresses and blurs the fine spectral detail that identifies a
// speaker while keeping speech intelligible
func (p *Pipeline) anonymized(j *job) ([]float64, error) {
	n := len(j.samples)

	y, err := p.pv.PitchShift(j.samples, j.sampleRate, anonShift)
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
	scaleBands(spec.Magnitude, freqs, anonBands)
	spectral.ApplyGain(spec.Magnitude, freqs, anonGain)

	y, err = p.resynthesize(spec.Magnitude, spec.Phase, n)
	if err != nil {
		return nil, err
	}
	if err := j.checkpoint(); err != nil {
		return nil, err
	}

	phone, err := filters.ButterworthBandpass(butterworthOrder, anonPhoneLow, anonPhoneHigh, j.sampleRate)
	if err != nil {
		return nil, fmt.Errorf("telephone band: %w", err)
	}
	y, err = phone.FiltFilt(y)
	if err != nil {
		return nil, fmt.Errorf("telephone band: %w", err)
	}

	y = temporal.SoftClip(y, anonClipDrive)
	env := temporal.NewEnvelope().Follow(y, anonAttack, anonRelease, j.sampleRate)
	y = temporal.NewCompressor(anonCompThreshold, anonCompRatio).ProcessEnvelope(y, env)
	if err := j.checkpoint(); err != nil {
		return nil, err
	}

	spec, err = p.spectrum(y, j.sampleRate)
	if err != nil {
		return nil, err
	}
	smoothed := spectral.SmoothFrequency(spec.Magnitude, anonSmoothSigma)
	for t, frame := range spec.Magnitude {
		for k := range frame {
			frame[k] = (1-anonSmoothMix)*frame[k] + anonSmoothMix*smoothed[t][k]
		}
	}

	y, err = p.resynthesize(spec.Magnitude, spec.Phase, n)
	if err != nil {
		return nil, err
	}

	return common.PeakNormalize(y, normalizedPeak), nil
}
