package logging

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug":   DebugLevel,
		"INFO":    InfoLevel,
		"":        InfoLevel,
		"warning": WarnLevel,
		" error ": ErrorLevel,
		"fatal":   FatalLevel,
	}
	for name, want := range cases {
		got, err := ParseLevel(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}

	_, err := ParseLevel("verbose")
	assert.Error(t, err)
}

func TestDefaultLoggerRouting(t *testing.T) {
	var out, errOut bytes.Buffer
	l := NewDefaultLoggerWithWriters(&out, &errOut)

	l.Debug("hidden")
	l.Info("started", Fields{"effect": "echo"})
	l.Warn("fallback")
	l.Error(errors.New("boom"), "failed")

	assert.NotContains(t, out.String(), "hidden")
	assert.Contains(t, out.String(), "[INFO] started effect=echo")
	assert.Contains(t, errOut.String(), "[WARN] fallback")
	assert.Contains(t, errOut.String(), "[ERROR] failed: boom")
	assert.NotContains(t, errOut.String(), ColorReset, "buffers are not terminals")
}

func TestWithFieldsAndContext(t *testing.T) {
	var out bytes.Buffer
	l := NewDefaultLoggerWithWriters(&out, &out)
	l.SetLevel(DebugLevel)

	child := l.WithFields(Fields{"component": "stft"})
	ctx := ContextWithFields(context.Background(), Fields{"request": "r1"})
	child.WithContext(ctx).Debug("frame", Fields{"index": 3})

	assert.Contains(t, out.String(), "[DEBUG] frame component=stft index=3 request=r1")

	out.Reset()
	l.Debug("parent")
	assert.NotContains(t, out.String(), "component=stft")
}

func TestSetGlobalLoggerNil(t *testing.T) {
	prev := GetGlobalLogger()
	defer SetGlobalLogger(prev)

	SetGlobalLogger(nil)
	_, ok := GetGlobalLogger().(*NoOpLogger)
	assert.True(t, ok)
	Warn("discarded")
}
