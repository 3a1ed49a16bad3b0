package spectral

import (
	"fmt"
	"math"
	"math/cmplx"
	"runtime"
	"sync"

	"github.com/RyanBlaney/sonido-fx/algorithms/windowing"
	"github.com/RyanBlaney/sonido-fx/logging"
)

// Reference analysis configuration shared by the voice effects.
const (
	DefaultWindowSize = 2048
	DefaultHopSize    = 512
)

// windowSumFloor marks samples the synthesis windows barely touch; they are
// left unscaled instead of being divided by a near-zero envelope.
const windowSumFloor = 1e-10

// STFT provides centred Short-Time Fourier Transform analysis and synthesis.
// Frame f is centred on input sample f*hop; the signal is zero padded by
// half a window on both sides.
type STFT struct {
	fft    *FFT
	logger logging.Logger
}

// STFTResult holds the result of STFT analysis
type STFTResult struct {
	Magnitude      [][]float64 `json:"magnitude"`       // Time x Frequency magnitude matrix
	Phase          [][]float64 `json:"phase"`           // Time x Frequency phase matrix
	TimeFrames     int         `json:"time_frames"`     // Number of time frames
	FreqBins       int         `json:"freq_bins"`       // Number of frequency bins
	SampleRate     int         `json:"sample_rate"`     // Sample rate
	WindowSize     int         `json:"window_size"`     // FFT window size
	HopSize        int         `json:"hop_size"`        // Hop size between frames
	SignalLength   int         `json:"signal_length"`   // Length of the analysed signal
	FreqResolution float64     `json:"freq_resolution"` // Frequency resolution (Hz/bin)
	TimeResolution float64     `json:"time_resolution"` // Time resolution (seconds/frame)
}

// NewSTFT creates a new STFT calculator
func NewSTFT() *STFT {
	return &STFT{
		fft: NewFFT(),
		logger: logging.WithFields(logging.Fields{
			"component": "stft",
		}),
	}
}

// Forward computes the centred STFT of signal with a periodic Hann window.
// The number of frames is 1 + len(signal)/hopSize.
func (s *STFT) Forward(signal []float64, windowSize, hopSize, sampleRate int) (*STFTResult, error) {
	if len(signal) == 0 {
		return nil, fmt.Errorf("empty signal")
	}

	if windowSize <= 0 || windowSize%2 != 0 {
		return nil, fmt.Errorf("window size must be positive and even, got %d", windowSize)
	}

	if hopSize <= 0 || hopSize > windowSize {
		return nil, fmt.Errorf("hop size must be in [1, %d], got %d", windowSize, hopSize)
	}

	pad := windowSize / 2
	padded := make([]float64, len(signal)+2*pad)
	copy(padded[pad:], signal)

	numFrames := 1 + len(signal)/hopSize
	freqBins := windowSize/2 + 1

	magnitude := make([][]float64, numFrames)
	phase := make([][]float64, numFrames)
	for i := range numFrames {
		magnitude[i] = make([]float64, freqBins)
		phase[i] = make([]float64, freqBins)
	}

	window := windowing.NewHann(windowSize, false)

	s.runFrames(numFrames, func() func(frameIdx int) {
		// Reuse frame buffer for this worker
		frameBuffer := make([]float64, windowSize)

		return func(frameIdx int) {
			start := frameIdx * hopSize
			copy(frameBuffer, padded[start:start+windowSize])

			// Sizes always match, the error can be ignored
			_ = window.ApplyInPlace(frameBuffer)

			fftResult := s.fft.Compute(frameBuffer)
			for k := range freqBins {
				magnitude[frameIdx][k] = cmplx.Abs(fftResult[k])
				phase[frameIdx][k] = cmplx.Phase(fftResult[k])
			}
		}
	})

	s.logger.Debug("STFT analysis completed", logging.Fields{
		"frames":      numFrames,
		"window_size": windowSize,
		"hop_size":    hopSize,
	})

	return &STFTResult{
		Magnitude:      magnitude,
		Phase:          phase,
		TimeFrames:     numFrames,
		FreqBins:       freqBins,
		SampleRate:     sampleRate,
		WindowSize:     windowSize,
		HopSize:        hopSize,
		SignalLength:   len(signal),
		FreqResolution: float64(sampleRate) / float64(windowSize),
		TimeResolution: float64(hopSize) / float64(sampleRate),
	}, nil
}

// Inverse resynthesises a signal from frame-major magnitude and phase by
// windowed overlap-add. When length > 0 the output is trimmed or zero padded
// to exactly length samples; otherwise it is hopSize*(frames-1) long.
func (s *STFT) Inverse(magnitude, phase [][]float64, windowSize, hopSize, length int) ([]float64, error) {
	numFrames := len(magnitude)
	if numFrames == 0 {
		return nil, fmt.Errorf("no frames to invert")
	}
	if len(phase) != numFrames {
		return nil, fmt.Errorf("magnitude has %d frames but phase has %d", numFrames, len(phase))
	}
	if windowSize <= 0 || windowSize%2 != 0 {
		return nil, fmt.Errorf("window size must be positive and even, got %d", windowSize)
	}
	if hopSize <= 0 || hopSize > windowSize {
		return nil, fmt.Errorf("hop size must be in [1, %d], got %d", windowSize, hopSize)
	}

	freqBins := windowSize/2 + 1
	for f := range numFrames {
		if len(magnitude[f]) != freqBins || len(phase[f]) != freqBins {
			return nil, fmt.Errorf("frame %d has %d/%d bins, expected %d", f, len(magnitude[f]), len(phase[f]), freqBins)
		}
	}

	window := windowing.NewHann(windowSize, false)
	coeffs := window.Coefficients()

	frames := make([][]float64, numFrames)
	s.runFrames(numFrames, func() func(frameIdx int) {
		spectrum := make([]complex128, freqBins)

		return func(frameIdx int) {
			for k := range freqBins {
				spectrum[k] = cmplx.Rect(magnitude[frameIdx][k], phase[frameIdx][k])
			}
			frame := s.fft.InverseHalfSpectrum(spectrum, windowSize)
			for i := range frame {
				frame[i] *= coeffs[i]
			}
			frames[frameIdx] = frame
		}
	})

	// Overlap-add is sequential so the sum order never changes
	output := make([]float64, windowSize+hopSize*(numFrames-1))
	for f, frame := range frames {
		offset := f * hopSize
		for i, v := range frame {
			output[offset+i] += v
		}
	}

	envelope := window.SumSquare(numFrames, hopSize)
	for i := range output {
		if envelope[i] > windowSumFloor {
			output[i] /= envelope[i]
		}
	}

	pad := windowSize / 2
	if length <= 0 {
		length = len(output) - 2*pad
	}

	result := make([]float64, length)
	end := min(pad+length, len(output))
	if end > pad {
		copy(result, output[pad:end])
	}

	for _, v := range result {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("inverse STFT produced non-finite samples")
		}
	}

	return result, nil
}

// InverseResult resynthesises an STFTResult to its original signal length.
func (s *STFT) InverseResult(result *STFTResult) ([]float64, error) {
	if result == nil {
		return nil, fmt.Errorf("nil STFT result")
	}
	return s.Inverse(result.Magnitude, result.Phase, result.WindowSize, result.HopSize, result.SignalLength)
}

// runFrames fans frame indices out to a bounded pool of workers. newWorker
// is called once per worker so each can own its scratch buffers.
func (s *STFT) runFrames(numFrames int, newWorker func() func(frameIdx int)) {
	numWorkers := s.getOptimalWorkerCount(numFrames)

	jobs := make(chan int, numFrames)
	for frameIdx := range numFrames {
		jobs <- frameIdx
	}
	close(jobs)

	var wg sync.WaitGroup
	for range numWorkers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			process := newWorker()
			for frameIdx := range jobs {
				process(frameIdx)
			}
		}()
	}
	wg.Wait()
}

// getOptimalWorkerCount determines the optimal number of workers based on workload
func (s *STFT) getOptimalWorkerCount(numFrames int) int {
	numCPU := runtime.NumCPU()

	// For small workloads, don't over-parallelize
	if numFrames < 100 {
		return max(1, min(numCPU/2, numFrames))
	}

	// For medium workloads, use most CPUs
	if numFrames < 1000 {
		return min(numCPU, 8)
	}

	return numCPU
}
