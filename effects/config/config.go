package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/RyanBlaney/sonido-fx/logging"
	"github.com/RyanBlaney/sonido-fx/transcode"
)

// PipelineConfig configures the effect pipeline and the tools around it
type PipelineConfig struct {
	OutputCeiling float64 `json:"output_ceiling" yaml:"output_ceiling"` // Peak level results are scaled down to
	NoiseSeed     uint64  `json:"noise_seed" yaml:"noise_seed"`         // Seed of the breathiness noise

	Gender   GenderConfig            `json:"gender" yaml:"gender"`
	Spectral SpectralConfig          `json:"spectral" yaml:"spectral"`
	Logging  LoggingConfig           `json:"logging" yaml:"logging"`
	Decoder  transcode.DecoderConfig `json:"decoder" yaml:"decoder"`
}

// GenderConfig configures the pitch based gender estimate
type GenderConfig struct {
	MinFreq        float64 `json:"min_freq" yaml:"min_freq"`               // Lowest pitch searched (Hz)
	MaxFreq        float64 `json:"max_freq" yaml:"max_freq"`               // Highest pitch searched (Hz)
	Threshold      float64 `json:"threshold" yaml:"threshold"`             // Mean f0 below this is male (Hz)
	FallbackGender string  `json:"fallback_gender" yaml:"fallback_gender"` // "male" or "female"
	FallbackF0     float64 `json:"fallback_f0" yaml:"fallback_f0"`         // Reported when no pitch is found
}

// SpectralConfig sets the STFT used by the spectral effects
type SpectralConfig struct {
	WindowSize int `json:"window_size" yaml:"window_size"`
	HopSize    int `json:"hop_size" yaml:"hop_size"`
}

// LoggingConfig selects the log level and coloring
type LoggingConfig struct {
	Level   string `json:"level" yaml:"level"` // "debug", "info", "warn", "error"
	NoColor bool   `json:"no_color" yaml:"no_color"`
}

// DefaultPipelineConfig returns the reference configuration
func DefaultPipelineConfig() *PipelineConfig {
	return &PipelineConfig{
		OutputCeiling: 0.95,
		NoiseSeed:     1,
		Gender:        DefaultGenderConfig(),
		Spectral:      DefaultSpectralConfig(),
		Logging: LoggingConfig{
			Level: "info",
		},
		Decoder: *transcode.DefaultDecoderConfig(),
	}
}

// DefaultGenderConfig returns speech defaults: 50-400 Hz search, 165 Hz
// split, female at 200 Hz when no pitch is found
func DefaultGenderConfig() GenderConfig {
	return GenderConfig{
		MinFreq:        50.0,
		MaxFreq:        400.0,
		Threshold:      165.0,
		FallbackGender: "female",
		FallbackF0:     200.0,
	}
}

// DefaultSpectralConfig returns the 2048/512 STFT configuration
func DefaultSpectralConfig() SpectralConfig {
	return SpectralConfig{
		WindowSize: 2048,
		HopSize:    512,
	}
}

// Load reads a YAML file over the defaults. Keys absent from the file keep
// their default values.
func Load(path string) (*PipelineConfig, error) {
	cfg := DefaultPipelineConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	logging.Debug("Configuration loaded", logging.Fields{
		"component": "config",
		"path":      path,
	})

	return cfg, nil
}

// Validate checks ranges and cross-field constraints
func (c *PipelineConfig) Validate() error {
	if c.OutputCeiling <= 0 || c.OutputCeiling > 1 {
		return fmt.Errorf("output_ceiling must be in (0, 1], got %v", c.OutputCeiling)
	}

	if c.Gender.MinFreq <= 0 || c.Gender.MinFreq >= c.Gender.MaxFreq {
		return fmt.Errorf("gender frequency range %.1f-%.1f Hz is invalid", c.Gender.MinFreq, c.Gender.MaxFreq)
	}
	if c.Gender.Threshold <= 0 {
		return fmt.Errorf("gender threshold must be positive, got %v", c.Gender.Threshold)
	}
	switch strings.ToLower(c.Gender.FallbackGender) {
	case "male", "female":
	default:
		return fmt.Errorf("fallback_gender must be male or female, got %q", c.Gender.FallbackGender)
	}
	if c.Gender.FallbackF0 <= 0 {
		return fmt.Errorf("fallback_f0 must be positive, got %v", c.Gender.FallbackF0)
	}

	if c.Spectral.WindowSize <= 0 || c.Spectral.WindowSize%2 != 0 {
		return fmt.Errorf("spectral window_size must be positive and even, got %d", c.Spectral.WindowSize)
	}
	if c.Spectral.HopSize <= 0 || c.Spectral.HopSize > c.Spectral.WindowSize {
		return fmt.Errorf("spectral hop_size must be in [1, window_size], got %d", c.Spectral.HopSize)
	}

	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return err
	}

	if err := transcode.NewDecoder(&c.Decoder).ValidateConfig(); err != nil {
		return fmt.Errorf("decoder: %w", err)
	}

	return nil
}
