package commands

import (
	"bytes"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyanBlaney/sonido-fx/transcode"
)

func writeTone(t *testing.T, dir string) string {
	t.Helper()
	const rate = 16000
	samples := make([]float64, rate/2)
	for i := range samples {
		samples[i] = 0.5 * math.Sin(2*math.Pi*120*float64(i)/rate)
	}
	path := filepath.Join(dir, "clip.wav")
	require.NoError(t, transcode.WriteWAVFile(path, samples, rate, 16))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cfgFile, logLevel, noColor, outputJSON = "", "error", true, false
	effectName, outputPath, bitDepth = "", "", transcode.DefaultBitDepth

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestApplyWritesUniqueOutputs(t *testing.T) {
	dir := t.TempDir()
	input := writeTone(t, dir)

	out, err := run(t, "apply", input, "--effect", "echo", "--log-level", "error")
	require.NoError(t, err)
	first := filepath.Join(dir, "clip_echo.wav")
	assert.Contains(t, out, first)
	assert.FileExists(t, first)

	_, err = run(t, "apply", input, "-e", "ECHO", "--log-level", "error")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "clip_echo_1.wav"))

	audio, err := transcode.NewDecoder(nil).DecodeFile(first)
	require.NoError(t, err)
	assert.Equal(t, 16000, audio.SampleRate)
	assert.Len(t, audio.PCM, 8000)
}

func TestApplyUnknownEffect(t *testing.T) {
	input := writeTone(t, t.TempDir())
	_, err := run(t, "apply", input, "--effect", "martian", "--log-level", "error")
	assert.ErrorContains(t, err, "unknown effect")
}

func TestApplyRejectsUnsupportedInput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))

	_, err := run(t, "apply", path, "--effect", "robotic", "--log-level", "error")
	assert.ErrorIs(t, err, transcode.ErrUnsupportedFormat)
}

func TestEffectsJSON(t *testing.T) {
	out, err := run(t, "effects", "--json", "--log-level", "error")
	require.NoError(t, err)

	var infos []map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &infos))
	require.Len(t, infos, 8)
	assert.Equal(t, "robotic", infos[0]["name"])
	assert.Equal(t, "Anonymized Voice", infos[7]["title"])
}

func TestAnalyze(t *testing.T) {
	input := writeTone(t, t.TempDir())

	out, err := run(t, "analyze", input, "--json", "--log-level", "error")
	require.NoError(t, err)

	var report struct {
		SampleRate int `json:"sample_rate"`
		Gender     struct {
			Gender string  `json:"gender"`
			MeanF0 float64 `json:"mean_f0"`
		} `json:"gender"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, 16000, report.SampleRate)
	assert.Equal(t, "male", report.Gender.Gender)
	assert.InDelta(t, 120, report.Gender.MeanF0, 3)
}

func TestInvalidLogLevel(t *testing.T) {
	_, err := run(t, "effects", "--log-level", "loud")
	assert.Error(t, err)
}

func TestEffectsTable(t *testing.T) {
	out, err := run(t, "effects", "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "Cartoon Voice")
	assert.Contains(t, out, "input formats: .wav, .mp3")
}
