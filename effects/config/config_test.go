package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sonidofx.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultsAreValid(t *testing.T) {
	cfg := DefaultPipelineConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 0.95, cfg.OutputCeiling)
	assert.Equal(t, 165.0, cfg.Gender.Threshold)
	assert.Equal(t, "female", cfg.Gender.FallbackGender)
	assert.Equal(t, 2048, cfg.Spectral.WindowSize)
	assert.Equal(t, int64(50*1024*1024), cfg.Decoder.MaxFileSize)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
output_ceiling: 0.9
noise_seed: 42
gender:
  threshold: 170
spectral:
  hop_size: 256
logging:
  level: debug
decoder:
  target_sample_rate: 22050
  timeout: 5s
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 0.9, cfg.OutputCeiling)
	assert.Equal(t, uint64(42), cfg.NoiseSeed)
	assert.Equal(t, 170.0, cfg.Gender.Threshold)
	assert.Equal(t, 50.0, cfg.Gender.MinFreq, "untouched keys keep defaults")
	assert.Equal(t, 256, cfg.Spectral.HopSize)
	assert.Equal(t, 2048, cfg.Spectral.WindowSize)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 22050, cfg.Decoder.TargetSampleRate)
	assert.Equal(t, 5*time.Second, cfg.Decoder.Timeout)
	assert.Equal(t, []string{".wav", ".mp3"}, cfg.Decoder.AllowedExtensions)
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"ceiling":  "output_ceiling: 1.5\n",
		"range":    "gender:\n  min_freq: 500\n",
		"fallback": "gender:\n  fallback_gender: robot\n",
		"window":   "spectral:\n  window_size: 1023\n",
		"hop":      "spectral:\n  hop_size: 4096\n",
		"level":    "logging:\n  level: loud\n",
		"syntax":   "output_ceiling: [\n",
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
