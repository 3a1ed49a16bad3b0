package transcode

import (
	"fmt"
	"io"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// DefaultBitDepth is the PCM resolution of written WAV files
const DefaultBitDepth = 16

// EncodeWAV writes mono samples in [-1, 1] as integer PCM WAV. Samples
// outside the range are clipped; non-finite samples are written as silence.
func EncodeWAV(w io.WriteSeeker, samples []float64, sampleRate, bitDepth int) error {
	if sampleRate <= 0 {
		return fmt.Errorf("invalid sample rate %d", sampleRate)
	}
	switch bitDepth {
	case 16, 24, 32:
	default:
		return fmt.Errorf("unsupported bit depth %d", bitDepth)
	}

	scale := math.Pow(2, float64(bitDepth-1)) - 1
	data := make([]int, len(samples))
	for i, s := range samples {
		if math.IsNaN(s) || math.IsInf(s, 0) {
			continue
		}
		data[i] = int(math.Round(max(-1, min(1, s)) * scale))
	}

	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: 1,
			SampleRate:  sampleRate,
		},
		Data:           data,
		SourceBitDepth: bitDepth,
	}

	encoder := wav.NewEncoder(w, sampleRate, bitDepth, 1, 1) // PCM format for 1 (WAV audio format)
	if err := encoder.Write(buf); err != nil {
		return fmt.Errorf("data writing error: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return fmt.Errorf("failed to finalize WAV header: %w", err)
	}
	return nil
}

// WriteWAVFile creates path and encodes samples into it
func WriteWAVFile(path string, samples []float64, sampleRate, bitDepth int) error {
	outFile, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("output file creation error: %w", err)
	}

	if err := EncodeWAV(outFile, samples, sampleRate, bitDepth); err != nil {
		outFile.Close()
		return err
	}
	return outFile.Close()
}
