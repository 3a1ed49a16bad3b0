package tonal

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/stat"

	"github.com/RyanBlaney/sonido-fx/algorithms/common"
	"github.com/RyanBlaney/sonido-fx/logging"
)

// ErrNoVoicedFrames is returned by MeanF0 when no frame carries a pitch.
var ErrNoVoicedFrames = errors.New("no voiced frames")

// silentFrameEnergy is the mean-square level below which a frame is treated
// as silence and reported unvoiced.
const silentFrameEnergy = 1e-10

// PitchTrackerParams contains parameters for frame-wise pitch tracking
type PitchTrackerParams struct {
	SampleRate int `json:"sample_rate" yaml:"sample_rate"`
	FrameSize  int `json:"frame_size" yaml:"frame_size"` // Analysis frame length in samples
	HopSize    int `json:"hop_size" yaml:"hop_size"`

	// Frequency range constraints
	MinFreq float64 `json:"min_freq" yaml:"min_freq"` // Minimum frequency (Hz)
	MaxFreq float64 `json:"max_freq" yaml:"max_freq"` // Maximum frequency (Hz)

	Threshold float64 `json:"threshold" yaml:"threshold"` // YIN absolute threshold (0.1-0.5)
}

// DefaultPitchTrackerParams returns speech-oriented settings: 50-400 Hz,
// 2048 sample frames, 512 sample hop, YIN threshold 0.1.
func DefaultPitchTrackerParams(sampleRate int) PitchTrackerParams {
	return PitchTrackerParams{
		SampleRate: sampleRate,
		FrameSize:  2048,
		HopSize:    512,
		MinFreq:    50.0,  // Low male voice
		MaxFreq:    400.0, // High female voice
		Threshold:  0.1,
	}
}

// PitchTracker estimates the fundamental frequency of successive frames
// with the YIN algorithm.
//
// References:
// - de Cheveigné, A., Kawahara, H. (2002). "YIN, a fundamental frequency estimator for speech and music"
//
// The difference function of each frame is built from an FFT
// cross-correlation and running energy sums, so a frame costs O(N log N)
// instead of O(N * maxLag).
type PitchTracker struct {
	params PitchTrackerParams

	minLag    int
	maxLag    int
	frameSize int
	window    int // integration window, frameSize/2
	fftSize   int

	logger logging.Logger
}

// NewPitchTracker validates params and creates a tracker. The frame size is
// grown when needed so a frame holds two periods of MinFreq.
func NewPitchTracker(params PitchTrackerParams) (*PitchTracker, error) {
	if params.SampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate %d", params.SampleRate)
	}
	if params.MinFreq <= 0 || params.MaxFreq <= params.MinFreq {
		return nil, fmt.Errorf("invalid frequency range %.1f-%.1f Hz", params.MinFreq, params.MaxFreq)
	}
	if params.HopSize <= 0 {
		return nil, fmt.Errorf("invalid hop size %d", params.HopSize)
	}
	if params.Threshold <= 0 || params.Threshold >= 1 {
		return nil, fmt.Errorf("invalid YIN threshold %.3f", params.Threshold)
	}

	sr := float64(params.SampleRate)
	minLag := max(2, int(math.Floor(sr/params.MaxFreq)))
	maxLag := int(math.Ceil(sr / params.MinFreq))

	frameSize := max(params.FrameSize, 2*maxLag+2)
	if frameSize%2 != 0 {
		frameSize++
	}
	window := frameSize / 2

	return &PitchTracker{
		params:    params,
		minLag:    minLag,
		maxLag:    maxLag,
		frameSize: frameSize,
		window:    window,
		fftSize:   common.NextPowerOfTwo(frameSize + window),
		logger: logging.WithFields(logging.Fields{
			"component": "pitch_tracker",
		}),
	}, nil
}

// Params returns the effective parameters, with the frame size actually used.
func (pt *PitchTracker) Params() PitchTrackerParams {
	p := pt.params
	p.FrameSize = pt.frameSize
	return p
}

// Track returns the fundamental frequency in Hz of every frame of signal, 0
// for unvoiced frames. Signals shorter than one frame are zero padded.
func (pt *PitchTracker) Track(signal []float64) ([]float64, error) {
	if len(signal) == 0 {
		return nil, fmt.Errorf("empty signal")
	}
	if !common.AllFinite(signal) {
		return nil, fmt.Errorf("signal contains non-finite samples")
	}

	padded := signal
	if len(padded) < pt.frameSize {
		padded = common.FixLength(signal, pt.frameSize)
	}

	numFrames := 1 + (len(padded)-pt.frameSize)/pt.params.HopSize
	pitches := make([]float64, numFrames)

	diff := make([]float64, pt.maxLag+2)
	cmndf := make([]float64, pt.maxLag+2)

	voiced := 0
	for i := range numFrames {
		start := i * pt.params.HopSize
		frame := padded[start : start+pt.frameSize]

		if !pt.difference(frame, diff) {
			continue
		}
		pt.cumulativeMeanNormalized(diff, cmndf)

		if f0 := pt.pickPitch(cmndf); f0 > 0 {
			pitches[i] = f0
			voiced++
		}
	}

	pt.logger.Debug("Pitch tracking completed", logging.Fields{
		"frames": numFrames,
		"voiced": voiced,
	})

	return pitches, nil
}

// MeanF0 returns the mean pitch over the voiced frames of signal and the
// number of voiced frames.
func (pt *PitchTracker) MeanF0(signal []float64) (float64, int, error) {
	pitches, err := pt.Track(signal)
	if err != nil {
		return 0, 0, err
	}

	voiced := make([]float64, 0, len(pitches))
	for _, f0 := range pitches {
		if f0 > 0 && !math.IsInf(f0, 0) && !math.IsNaN(f0) {
			voiced = append(voiced, f0)
		}
	}

	if len(voiced) == 0 {
		return 0, 0, ErrNoVoicedFrames
	}

	return stat.Mean(voiced, nil), len(voiced), nil
}

// difference fills diff[tau] = sum_{j<W} (x[j] - x[j+tau])^2 for
// tau <= maxLag+1. It reports false for silent frames.
func (pt *PitchTracker) difference(frame []float64, diff []float64) bool {
	w := pt.window

	// Prefix sums of squares give every lagged window energy in O(1)
	energy := make([]float64, len(frame)+1)
	for i, v := range frame {
		energy[i+1] = energy[i] + v*v
	}

	if energy[w]/float64(w) < silentFrameEnergy {
		return false
	}

	head := make([]complex128, pt.fftSize)
	full := make([]complex128, pt.fftSize)
	for i, v := range frame {
		full[i] = complex(v, 0)
		if i < w {
			head[i] = complex(v, 0)
		}
	}

	headSpec := fft.FFT(head)
	fullSpec := fft.FFT(full)
	for k := range headSpec {
		headSpec[k] = cmplx.Conj(headSpec[k]) * fullSpec[k]
	}
	corr := fft.IFFT(headSpec)

	for tau := range diff {
		lagged := energy[tau+w] - energy[tau]
		d := energy[w] + lagged - 2*real(corr[tau])
		diff[tau] = max(d, 0)
	}
	return true
}

// cumulativeMeanNormalized computes d'(tau) = d(tau) * tau / sum_{j=1..tau} d(j)
func (pt *PitchTracker) cumulativeMeanNormalized(diff, cmndf []float64) {
	cmndf[0] = 1.0
	runningSum := 0.0
	for tau := 1; tau < len(diff); tau++ {
		runningSum += diff[tau]
		if runningSum <= 0 {
			cmndf[tau] = 1.0
			continue
		}
		cmndf[tau] = diff[tau] * float64(tau) / runningSum
	}
}

// pickPitch finds the first lag in range whose normalised difference dips
// below the threshold, follows it down to the local minimum and refines it
// by parabolic interpolation. It returns 0 when no lag qualifies.
func (pt *PitchTracker) pickPitch(cmndf []float64) float64 {
	tau := -1
	for t := pt.minLag; t <= pt.maxLag; t++ {
		if cmndf[t] < pt.params.Threshold {
			for t+1 <= pt.maxLag && cmndf[t+1] < cmndf[t] {
				t++
			}
			tau = t
			break
		}
	}

	if tau < 0 {
		return 0
	}

	period := parabolicInterpolation(cmndf, tau)
	if period <= 0 {
		return 0
	}

	f0 := float64(pt.params.SampleRate) / period
	if f0 < pt.params.MinFreq*0.95 || f0 > pt.params.MaxFreq*1.05 {
		return 0
	}
	return f0
}

// parabolicInterpolation refines the position of the extremum at idx from
// its two neighbours.
func parabolicInterpolation(data []float64, idx int) float64 {
	if idx <= 0 || idx >= len(data)-1 {
		return float64(idx)
	}

	y1, y2, y3 := data[idx-1], data[idx], data[idx+1]
	denom := y1 - 2*y2 + y3
	if math.Abs(denom) < 1e-12 {
		return float64(idx)
	}

	offset := 0.5 * (y1 - y3) / denom
	if math.Abs(offset) > 1 {
		return float64(idx)
	}
	return float64(idx) + offset
}
