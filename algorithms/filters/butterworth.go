package filters

import (
	"fmt"

	"github.com/cwbudde/algo-dsp/dsp/filter/design/pass"
)

// Butterworth lowpass and highpass cascades come from algo-dsp's RBJ
// biquads with Butterworth Q. Odd orders end in a first-order section.

// ButterworthLowpass designs an order-n lowpass Butterworth cascade
func ButterworthLowpass(order int, cutoff float64, sampleRate int) (*Cascade, error) {
	if err := checkCutoff(order, cutoff, sampleRate); err != nil {
		return nil, fmt.Errorf("butterworth lowpass: %w", err)
	}
	return NewCascade(pass.ButterworthLP(cutoff, order, float64(sampleRate))), nil
}

// ButterworthHighpass designs an order-n highpass Butterworth cascade
func ButterworthHighpass(order int, cutoff float64, sampleRate int) (*Cascade, error) {
	if err := checkCutoff(order, cutoff, sampleRate); err != nil {
		return nil, fmt.Errorf("butterworth highpass: %w", err)
	}
	return NewCascade(pass.ButterworthHP(cutoff, order, float64(sampleRate))), nil
}

// checkCutoff rejects designs pass would silently turn into empty or
// all-zero sections.
func checkCutoff(order int, cutoff float64, sampleRate int) error {
	if order <= 0 {
		return fmt.Errorf("invalid order %d", order)
	}
	if sampleRate <= 0 {
		return fmt.Errorf("invalid sample rate %d", sampleRate)
	}
	if cutoff <= 0 || cutoff >= float64(sampleRate)/2 {
		return fmt.Errorf("cutoff %.1f Hz outside (0, %.1f)", cutoff, float64(sampleRate)/2)
	}
	return nil
}
