package filters

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/cwbudde/algo-dsp/dsp/filter/biquad"
)

// ButterworthBandpass designs an order-n Butterworth bandpass between low
// and high Hz. The result has n second-order sections (2n poles). This is
// the classic band transform of the lowpass prototype, unlike algo-dsp's
// band package whose Butterworth band is a peaking equaliser.
//
// The analog lowpass prototype is transformed to a bandpass around the
// prewarped edge frequencies and mapped to the z-plane with the bilinear
// transform. Every section then has zeros at z = 1 and z = -1 and one
// conjugate pole pair; the overall gain sits in the first section.
func ButterworthBandpass(order int, low, high float64, sampleRate int) (*Cascade, error) {
	if order <= 0 {
		return nil, fmt.Errorf("butterworth bandpass: invalid order %d", order)
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("butterworth bandpass: invalid sample rate %d", sampleRate)
	}
	nyquist := float64(sampleRate) / 2
	if low <= 0 || high <= low || high >= nyquist {
		return nil, fmt.Errorf("butterworth bandpass: band %.1f-%.1f Hz invalid for Nyquist %.1f Hz", low, high, nyquist)
	}

	fs2 := 2 * float64(sampleRate)
	w1 := fs2 * math.Tan(math.Pi*low/float64(sampleRate))
	w2 := fs2 * math.Tan(math.Pi*high/float64(sampleRate))
	bw := w2 - w1
	w0sq := complex(w1*w2, 0)

	// Lowpass prototype poles on the left half of the unit circle
	analog := make([]complex128, 0, 2*order)
	for k := range order {
		theta := math.Pi * float64(2*k+order+1) / float64(2*order)
		p := cmplx.Rect(1, theta)

		scaled := p * complex(bw/2, 0)
		root := cmplx.Sqrt(scaled*scaled - w0sq)
		analog = append(analog, scaled+root, scaled-root)
	}

	// Bilinear transform; n zeros at s=0 and n at infinity map to z=1 and z=-1
	gain := complex(math.Pow(bw*fs2, float64(order)), 0)
	digital := make([]complex128, 0, 2*order)
	for _, p := range analog {
		gain /= complex(fs2, 0) - p
		digital = append(digital, (complex(fs2, 0)+p)/(complex(fs2, 0)-p))
	}

	sections := make([]biquad.Coefficients, 0, order)
	var realPoles []float64
	for _, z := range digital {
		switch {
		case math.Abs(imag(z)) < 1e-12:
			realPoles = append(realPoles, real(z))
		case imag(z) > 0:
			sections = append(sections, biquad.Coefficients{
				B0: 1, B1: 0, B2: -1,
				A1: -2 * real(z),
				A2: real(z)*real(z) + imag(z)*imag(z),
			})
		}
	}

	// Wide bands on odd orders leave real poles; pair them up
	for i := 0; i+1 < len(realPoles); i += 2 {
		r1, r2 := realPoles[i], realPoles[i+1]
		sections = append(sections, biquad.Coefficients{
			B0: 1, B1: 0, B2: -1,
			A1: -(r1 + r2),
			A2: r1 * r2,
		})
	}

	if len(sections) != order {
		return nil, fmt.Errorf("butterworth bandpass: expected %d conjugate pole pairs, found %d", order, len(sections))
	}

	g := real(gain)
	sections[0].B0 *= g
	sections[0].B2 *= g

	return NewCascade(sections), nil
}
