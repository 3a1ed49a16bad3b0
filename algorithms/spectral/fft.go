package spectral

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// FFT wraps mjibson/go-dsp for real frames. Any length is accepted;
// go-dsp falls back to Bluestein for sizes that are not powers of two.
type FFT struct{}

// NewFFT creates an FFT
func NewFFT() *FFT {
	return &FFT{}
}

// Compute returns the full complex spectrum of a real frame
func (f *FFT) Compute(frame []float64) []complex128 {
	if len(frame) == 0 {
		return []complex128{}
	}
	return fft.FFTReal(frame)
}

// InverseHalfSpectrum rebuilds the conjugate-symmetric spectrum of a real
// frame of length n from its n/2+1 non-negative bins and returns the real
// part of the inverse transform, scaled by 1/n.
func (f *FFT) InverseHalfSpectrum(half []complex128, n int) []float64 {
	if n <= 0 || len(half) == 0 {
		return []float64{}
	}

	full := make([]complex128, n)
	bins := min(len(half), n/2+1)
	copy(full, half[:bins])
	for k := 1; k < bins && n-k >= bins; k++ {
		full[n-k] = cmplx.Conj(half[k])
	}

	frame := make([]float64, n)
	for i, v := range fft.IFFT(full) {
		frame[i] = real(v)
	}
	return frame
}
