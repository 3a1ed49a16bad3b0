package effects

import (
	"math"

	"github.com/RyanBlaney/sonido-fx/algorithms/filters"
)

const (
	echoDelay = 0.3 // seconds
	echoGain  = 0.5
)

// echo adds one copy of the voice 300 ms later at half level
func (p *Pipeline) echo(j *job) ([]float64, error) {
	delay := int(math.Round(echoDelay * float64(j.sampleRate)))
	return filters.NewFeedforwardComb(delay, echoGain).Process(j.samples), nil
}
