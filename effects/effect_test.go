package effects

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEffect(t *testing.T) {
	for _, e := range Effects() {
		got, err := ParseEffect(e.String())
		require.NoError(t, err)
		assert.Equal(t, e, got)
	}

	got, err := ParseEffect("  Anonymized ")
	require.NoError(t, err)
	assert.Equal(t, Anonymized, got)

	_, err = ParseEffect("martian")
	assert.ErrorIs(t, err, ErrUnknownEffect)
	assert.Contains(t, err.Error(), "robotic")
}

func TestEffectNamesAndOrder(t *testing.T) {
	assert.Equal(t, []string{
		"robotic", "male", "female", "baby",
		"cartoon", "echo", "distorted", "anonymized",
	}, Names())
	assert.Len(t, Effects(), 8)
	assert.Equal(t, "effect(42)", Effect(42).String())
	assert.False(t, Effect(-1).Valid())
}

func TestDescribe(t *testing.T) {
	infos := Describe()
	require.Len(t, infos, 8)
	for i, info := range infos {
		assert.Equal(t, Effect(i), info.Effect)
		assert.NotEmpty(t, info.Title)
		assert.NotEmpty(t, info.Description)
	}

	infos[0].Title = "changed"
	info, err := Info(Robotic)
	require.NoError(t, err)
	assert.Equal(t, "Robotic Voice", info.Title)

	_, err = Info(numEffects)
	assert.ErrorIs(t, err, ErrUnknownEffect)
}

func TestEveryEffectHasTransform(t *testing.T) {
	for _, e := range Effects() {
		assert.NotNil(t, transforms[e], e.String())
	}
}
