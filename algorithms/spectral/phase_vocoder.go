package spectral

import (
	"fmt"
	"math"

	"github.com/RyanBlaney/sonido-fx/algorithms/common"
	"github.com/RyanBlaney/sonido-fx/logging"
)

// PhaseVocoder changes duration and pitch of a signal through STFT-domain
// frame interpolation with phase propagation.
type PhaseVocoder struct {
	stft       *STFT
	windowSize int
	hopSize    int
	logger     logging.Logger
}

// NewPhaseVocoder creates a phase vocoder with the given analysis
// configuration. Non-positive sizes select the 2048/512 defaults.
func NewPhaseVocoder(windowSize, hopSize int) *PhaseVocoder {
	if windowSize <= 0 {
		windowSize = DefaultWindowSize
	}
	if hopSize <= 0 {
		hopSize = DefaultHopSize
	}

	return &PhaseVocoder{
		stft:       NewSTFT(),
		windowSize: windowSize,
		hopSize:    hopSize,
		logger: logging.WithFields(logging.Fields{
			"component": "phase_vocoder",
		}),
	}
}

// Stretch resamples the frames of an STFT by rate (>1 shortens). Frame t of
// the output interpolates the magnitudes of input frames floor(t*rate) and
// the one after it; phases advance by the measured per-bin instantaneous
// frequency so partials stay coherent.
func (pv *PhaseVocoder) Stretch(in *STFTResult, rate float64) (*STFTResult, error) {
	if in == nil || in.TimeFrames == 0 {
		return nil, fmt.Errorf("empty STFT")
	}
	if rate <= 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
		return nil, fmt.Errorf("invalid stretch rate %v", rate)
	}

	numFrames := in.TimeFrames
	bins := in.FreqBins
	hop := float64(in.HopSize)

	// Expected phase advance per hop for each bin centre frequency
	phiAdvance := make([]float64, bins)
	for k := range bins {
		phiAdvance[k] = 2 * math.Pi * hop * float64(k) / float64(in.WindowSize)
	}

	// Frames past the end read as silence (zero magnitude and phase)
	zero := make([]float64, bins)
	frameAt := func(idx int) ([]float64, []float64) {
		if idx < numFrames {
			return in.Magnitude[idx], in.Phase[idx]
		}
		return zero, zero
	}

	outFrames := int(math.Ceil(float64(numFrames) / rate))
	magnitude := make([][]float64, outFrames)
	phase := make([][]float64, outFrames)

	phaseAcc := make([]float64, bins)
	copy(phaseAcc, in.Phase[0])

	for t := range outFrames {
		step := float64(t) * rate
		idx := int(step)
		alpha := step - float64(idx)

		mag0, ph0 := frameAt(idx)
		mag1, ph1 := frameAt(idx + 1)

		magnitude[t] = make([]float64, bins)
		phase[t] = make([]float64, bins)

		for k := range bins {
			magnitude[t][k] = (1-alpha)*mag0[k] + alpha*mag1[k]
			phase[t][k] = phaseAcc[k]

			dphase := ph1[k] - ph0[k] - phiAdvance[k]
			dphase -= 2 * math.Pi * math.RoundToEven(dphase/(2*math.Pi))
			phaseAcc[k] += phiAdvance[k] + dphase
		}
	}

	out := *in
	out.Magnitude = magnitude
	out.Phase = phase
	out.TimeFrames = outFrames
	out.SignalLength = int(math.RoundToEven(float64(in.SignalLength) / rate))
	return &out, nil
}

// TimeStretch changes the duration of signal by 1/rate without changing its
// pitch. The output has round(len(signal)/rate) samples.
func (pv *PhaseVocoder) TimeStretch(signal []float64, rate float64, sampleRate int) ([]float64, error) {
	if len(signal) == 0 {
		return []float64{}, nil
	}

	analysis, err := pv.stft.Forward(signal, pv.windowSize, pv.hopSize, sampleRate)
	if err != nil {
		return nil, fmt.Errorf("time stretch analysis: %w", err)
	}

	stretched, err := pv.Stretch(analysis, rate)
	if err != nil {
		return nil, fmt.Errorf("time stretch: %w", err)
	}

	if stretched.SignalLength == 0 {
		return []float64{}, nil
	}

	out, err := pv.stft.InverseResult(stretched)
	if err != nil {
		return nil, fmt.Errorf("time stretch synthesis: %w", err)
	}

	pv.logger.Debug("Time stretch completed", logging.Fields{
		"rate":       rate,
		"input_len":  len(signal),
		"output_len": len(out),
	})

	return out, nil
}

// PitchShift moves the pitch of signal by semitones while keeping its
// length: the signal is time stretched by 2^(-semitones/12) and resampled
// back to its original duration.
func (pv *PhaseVocoder) PitchShift(signal []float64, sampleRate int, semitones float64) ([]float64, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate %d", sampleRate)
	}
	if len(signal) == 0 {
		return []float64{}, nil
	}
	if semitones == 0 {
		out := make([]float64, len(signal))
		copy(out, signal)
		return out, nil
	}

	rate := math.Pow(2, -semitones/12)

	stretched, err := pv.TimeStretch(signal, rate, sampleRate)
	if err != nil {
		return nil, fmt.Errorf("pitch shift by %.1f semitones: %w", semitones, err)
	}

	sr := float64(sampleRate)
	shifted, err := common.Resample(stretched, sr/rate, sr)
	if err != nil {
		return nil, fmt.Errorf("pitch shift by %.1f semitones: %w", semitones, err)
	}

	return common.FixLength(shifted, len(signal)), nil
}

// TimeStretch stretches signal with the default 2048/512 phase vocoder.
func TimeStretch(signal []float64, rate float64, sampleRate int) ([]float64, error) {
	return NewPhaseVocoder(DefaultWindowSize, DefaultHopSize).TimeStretch(signal, rate, sampleRate)
}

// PitchShift shifts signal with the default 2048/512 phase vocoder.
func PitchShift(signal []float64, sampleRate int, semitones float64) ([]float64, error) {
	return NewPhaseVocoder(DefaultWindowSize, DefaultHopSize).PitchShift(signal, sampleRate, semitones)
}
