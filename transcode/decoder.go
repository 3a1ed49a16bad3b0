package transcode

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/RyanBlaney/sonido-fx/algorithms/common"
	"github.com/RyanBlaney/sonido-fx/logging"
)

var (
	// ErrUnsupportedFormat is returned for files whose extension is not allowed
	ErrUnsupportedFormat = errors.New("unsupported audio format")

	// ErrFileTooLarge is returned for files above the configured size limit
	ErrFileTooLarge = errors.New("audio file too large")
)

// AudioData represents decoded mono audio
type AudioData struct {
	PCM        []float64      `json:"-"` // Mono samples in [-1, 1]
	SampleRate int            `json:"sample_rate"`
	Channels   int            `json:"channels"`
	Duration   time.Duration  `json:"duration"`
	Metadata   *AudioMetadata `json:"metadata,omitempty"`
}

// AudioMetadata holds properties of the source file
type AudioMetadata struct {
	SampleRate int     `json:"sample_rate"`
	Channels   int     `json:"channels"`
	BitDepth   int     `json:"bit_depth,omitempty"`
	Codec      string  `json:"codec"`
	Duration   float64 `json:"duration"`
	Bitrate    int     `json:"bitrate,omitempty"`
	Format     string  `json:"format"`
}

// DecoderConfig holds decoder configuration
type DecoderConfig struct {
	TargetSampleRate  int           `json:"target_sample_rate" yaml:"target_sample_rate"` // 0 keeps the native rate
	MaxFileSize       int64         `json:"max_file_size" yaml:"max_file_size"`           // Bytes, 0 disables the check
	AllowedExtensions []string      `json:"allowed_extensions" yaml:"allowed_extensions"`
	MaxDuration       time.Duration `json:"max_duration" yaml:"max_duration"`
	FFmpegPath        string        `json:"ffmpeg_path" yaml:"ffmpeg_path"`   // Path to ffmpeg binary
	FFprobePath       string        `json:"ffprobe_path" yaml:"ffprobe_path"` // Path to ffprobe binary
	Timeout           time.Duration `json:"timeout" yaml:"timeout"`           // Timeout for ffmpeg operations
}

// DefaultDecoderConfig returns default decoder configuration: WAV and MP3
// up to 50 MiB, decoded at their native rate
func DefaultDecoderConfig() *DecoderConfig {
	return &DecoderConfig{
		TargetSampleRate:  0,
		MaxFileSize:       50 * 1024 * 1024,
		AllowedExtensions: []string{".wav", ".mp3"},
		MaxDuration:       0, // No limit
		FFmpegPath:        "ffmpeg",  // Assume in PATH
		FFprobePath:       "ffprobe", // Assume in PATH
		Timeout:           30 * time.Second,
	}
}

// Decoder turns audio files into mono float64 PCM. WAV is decoded natively,
// everything else goes through FFmpeg.
type Decoder struct {
	config *DecoderConfig
}

// NewDecoder creates a new audio decoder
func NewDecoder(config *DecoderConfig) *Decoder {
	if config == nil {
		config = DefaultDecoderConfig()
	}
	return &Decoder{config: config}
}

// DecodeFile decodes an audio file and returns mono PCM data
func (d *Decoder) DecodeFile(filename string) (*AudioData, error) {
	return d.DecodeFileContext(context.Background(), filename)
}

// DecodeFileContext is DecodeFile with a caller supplied context bounding
// any FFmpeg work
func (d *Decoder) DecodeFileContext(ctx context.Context, filename string) (*AudioData, error) {
	logger := logging.WithFields(logging.Fields{
		"component": "audio_decoder",
		"function":  "DecodeFile",
		"filename":  filename,
	})

	logger.Debug("Starting audio file decode")

	if err := d.ValidateFile(filename); err != nil {
		return nil, err
	}

	var (
		data *AudioData
		err  error
	)
	if strings.EqualFold(filepath.Ext(filename), ".wav") {
		data, err = d.decodeWAV(filename)
	} else {
		data, err = d.decodeWithFFmpeg(ctx, filename)
	}
	if err != nil {
		logger.Error(err, "Audio decode failed")
		return nil, err
	}

	if d.config.TargetSampleRate > 0 && data.SampleRate != d.config.TargetSampleRate {
		resampled, err := common.Resample(data.PCM, float64(data.SampleRate), float64(d.config.TargetSampleRate))
		if err != nil {
			return nil, fmt.Errorf("failed to resample %s: %w", filename, err)
		}
		data.PCM = resampled
		data.SampleRate = d.config.TargetSampleRate
	}

	if d.config.MaxDuration > 0 {
		limit := int(d.config.MaxDuration.Seconds() * float64(data.SampleRate))
		if len(data.PCM) > limit {
			data.PCM = data.PCM[:limit]
		}
	}

	data.Duration = samplesToDuration(len(data.PCM), data.SampleRate)

	logger.Debug("Audio decode completed", logging.Fields{
		"sample_rate": data.SampleRate,
		"samples":     len(data.PCM),
		"duration":    data.Duration.Seconds(),
	})

	return data, nil
}

// ValidateFile checks extension and size limits before any decoding
func (d *Decoder) ValidateFile(filename string) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if len(d.config.AllowedExtensions) > 0 && !slices.Contains(d.config.AllowedExtensions, ext) {
		return fmt.Errorf("%w: %q (allowed: %s)", ErrUnsupportedFormat, ext, strings.Join(d.config.AllowedExtensions, ", "))
	}

	info, err := os.Stat(filename)
	if err != nil {
		return fmt.Errorf("cannot access audio file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", filename)
	}
	if d.config.MaxFileSize > 0 && info.Size() > d.config.MaxFileSize {
		return fmt.Errorf("%w: %d bytes exceeds %d", ErrFileTooLarge, info.Size(), d.config.MaxFileSize)
	}

	return nil
}

// decodeWAV reads a PCM WAV file and mixes it down to mono
func (d *Decoder) decodeWAV(filename string) (*AudioData, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("could not open file: %w", err)
	}
	defer file.Close()

	decoder := wav.NewDecoder(file)
	if !decoder.IsValidFile() {
		return nil, errors.New("invalid WAV file")
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("could not read PCM buffer: %w", err)
	}

	channels := int(decoder.NumChans)
	if buf.Format != nil && buf.Format.NumChannels > 0 {
		channels = buf.Format.NumChannels
	}
	bitDepth := int(decoder.BitDepth)
	if buf.SourceBitDepth > 0 {
		bitDepth = buf.SourceBitDepth
	}

	pcm, err := intBufferToMono(buf, channels, bitDepth)
	if err != nil {
		return nil, err
	}

	return &AudioData{
		PCM:        pcm,
		SampleRate: int(decoder.SampleRate),
		Channels:   1,
		Metadata: &AudioMetadata{
			SampleRate: int(decoder.SampleRate),
			Channels:   channels,
			BitDepth:   bitDepth,
			Codec:      "pcm",
			Duration:   float64(len(pcm)) / float64(max(decoder.SampleRate, 1)),
			Format:     "wav",
		},
	}, nil
}

// intBufferToMono averages interleaved integer frames into [-1, 1] floats
func intBufferToMono(buf *audio.IntBuffer, channels, bitDepth int) ([]float64, error) {
	if channels <= 0 {
		return nil, fmt.Errorf("invalid channel count: %d", channels)
	}
	if bitDepth <= 0 || bitDepth > 32 {
		return nil, fmt.Errorf("unsupported bit depth: %d", bitDepth)
	}

	scale := math.Pow(2, float64(bitDepth-1))
	if bitDepth == 8 {
		// 8-bit WAV is unsigned; the decoder hands the raw byte values through
		scale = 128
	}

	frames := len(buf.Data) / channels
	pcm := make([]float64, frames)
	for i := range frames {
		var sum float64
		for ch := range channels {
			v := float64(buf.Data[i*channels+ch])
			if bitDepth == 8 {
				v -= 128
			}
			sum += v
		}
		pcm[i] = sum / float64(channels) / scale
	}

	return pcm, nil
}

// decodeWithFFmpeg probes the file and pipes it through FFmpeg as mono f64le
func (d *Decoder) decodeWithFFmpeg(ctx context.Context, filename string) (*AudioData, error) {
	logger := logging.WithFields(logging.Fields{
		"component": "audio_decoder",
		"function":  "decodeWithFFmpeg",
		"filename":  filename,
	})

	if d.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.config.Timeout)
		defer cancel()
	}

	metadata, err := d.probeAudioFile(ctx, filename)
	if err != nil {
		return nil, err
	}

	logger.Debug("Audio metadata detected", logging.Fields{
		"input_sample_rate": metadata.SampleRate,
		"input_channels":    metadata.Channels,
		"input_codec":       metadata.Codec,
		"input_duration":    metadata.Duration,
		"input_bitrate":     metadata.Bitrate,
	})

	args := append([]string{"-i", filename}, d.buildFFmpegArgs(metadata)...)
	args = append(args, "pipe:1") // Output to stdout

	logger.Debug("Running ffmpeg command", logging.Fields{
		"args": strings.Join(args, " "),
	})

	output, err := exec.CommandContext(ctx, d.config.FFmpegPath, args...).Output()
	if err != nil {
		var exitError *exec.ExitError
		if errors.As(err, &exitError) {
			logger.Error(err, "Ffmpeg decode failed", logging.Fields{
				"stderr": string(exitError.Stderr),
			})
		}
		return nil, fmt.Errorf("ffmpeg decode failed: %w", err)
	}

	samples := bytesToFloat64(output)
	if len(samples) == 0 {
		return nil, fmt.Errorf("no audio samples decoded")
	}

	return &AudioData{
		PCM:        samples,
		SampleRate: metadata.SampleRate,
		Channels:   1,
		Metadata:   metadata,
	}, nil
}

func (d *Decoder) probeAudioFile(ctx context.Context, filename string) (*AudioMetadata, error) {
	args := []string{
		"-v", "quiet", // Suppress verbose output
		"-print_format", "json", // JSON output
		"-show_streams",          // Show stream info
		"-select_streams", "a:0", // First audio stream only
		filename,
	}

	output, err := exec.CommandContext(ctx, d.config.FFprobePath, args...).Output()
	if err != nil {
		var exitError *exec.ExitError
		if errors.As(err, &exitError) {
			return nil, fmt.Errorf("ffprobe failed: %w, stderr: %s", err, string(exitError.Stderr))
		}
		return nil, fmt.Errorf("ffprobe failed: %w", err)
	}

	return parseFFprobeOutput(output)
}

func parseFFprobeOutput(jsonData []byte) (*AudioMetadata, error) {
	var probe struct {
		Streams []struct {
			CodecType     string `json:"codec_type"`
			CodecName     string `json:"codec_name"`
			SampleRate    string `json:"sample_rate"`
			Channels      int    `json:"channels"`
			Duration      string `json:"duration"`
			BitRate       string `json:"bit_rate"`
			CodecLongName string `json:"codec_long_name"`
		} `json:"streams"`
	}

	if err := json.Unmarshal(jsonData, &probe); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	if len(probe.Streams) == 0 {
		return nil, fmt.Errorf("no audio streams found")
	}

	stream := probe.Streams[0]

	// Validate that this is an audio stream
	if stream.CodecType != "audio" {
		return nil, fmt.Errorf("stream is not audio type: %s", stream.CodecType)
	}

	sampleRate, err := strconv.Atoi(stream.SampleRate)
	if err != nil || sampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate %q", stream.SampleRate)
	}

	duration, err := strconv.ParseFloat(stream.Duration, 64)
	if err != nil {
		duration = 0
	}

	bitrate, err := strconv.Atoi(stream.BitRate)
	if err != nil {
		bitrate = 0
	}

	if stream.Channels <= 0 || stream.Channels > 8 {
		return nil, fmt.Errorf("invalid channel count: %d", stream.Channels)
	}

	return &AudioMetadata{
		SampleRate: sampleRate,
		Channels:   stream.Channels,
		Codec:      stream.CodecName,
		Duration:   duration,
		Bitrate:    bitrate,
		Format:     stream.CodecLongName,
	}, nil
}

// buildFFmpegArgs asks for mono float64 at the source rate; resampling,
// when configured, happens afterwards in-process
func (d *Decoder) buildFFmpegArgs(metadata *AudioMetadata) []string {
	args := []string{
		"-f", "f64le", // Output raw float64 little-endian
		"-ac", "1",
		"-ar", strconv.Itoa(metadata.SampleRate),
	}

	if d.config.MaxDuration > 0 {
		args = append(args, "-t", fmt.Sprintf("%.2f", d.config.MaxDuration.Seconds()))
	}

	// Suppress ffmpeg output
	return append(args, "-v", "error")
}

// bytesToFloat64 converts raw float64 bytes to []float64
func bytesToFloat64(data []byte) []float64 {
	// Trim to multiple of 8 bytes
	data = data[:len(data)-(len(data)%8)]
	if len(data) == 0 {
		return nil
	}

	samples := make([]float64, len(data)/8)
	for i := range samples {
		bits := binary.LittleEndian.Uint64(data[i*8 : i*8+8])
		samples[i] = math.Float64frombits(bits)
	}

	return samples
}

// ValidateConfig validates the decoder configuration
func (d *Decoder) ValidateConfig() error {
	if d.config.TargetSampleRate < 0 {
		return fmt.Errorf("target sample rate must not be negative: %d", d.config.TargetSampleRate)
	}
	if d.config.MaxFileSize < 0 {
		return fmt.Errorf("max file size must not be negative: %d", d.config.MaxFileSize)
	}
	if d.config.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative: %v", d.config.Timeout)
	}
	for _, ext := range d.config.AllowedExtensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("allowed extension %q must start with a dot", ext)
		}
	}
	return nil
}

// CheckFFmpeg reports whether ffmpeg and ffprobe can be executed
func (d *Decoder) CheckFFmpeg() error {
	if err := exec.Command(d.config.FFmpegPath, "-version").Run(); err != nil {
		return fmt.Errorf("ffmpeg not found at %s: %w", d.config.FFmpegPath, err)
	}
	if err := exec.Command(d.config.FFprobePath, "-version").Run(); err != nil {
		return fmt.Errorf("ffprobe not found at %s: %w", d.config.FFprobePath, err)
	}
	return nil
}

// GetSupportedFormats returns the extensions this decoder accepts
func (d *Decoder) GetSupportedFormats() []string {
	return slices.Clone(d.config.AllowedExtensions)
}

func samplesToDuration(samples, sampleRate int) time.Duration {
	if sampleRate <= 0 {
		return 0
	}
	return time.Duration(samples) * time.Second / time.Duration(sampleRate)
}
