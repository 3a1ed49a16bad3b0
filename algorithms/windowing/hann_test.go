package windowing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHannShapes(t *testing.T) {
	periodic := NewHann(8, false).Coefficients()
	symmetric := NewHann(8, true).Coefficients()

	assert.InDelta(t, 0.0, periodic[0], 1e-12)
	assert.InDelta(t, 1.0, periodic[4], 1e-12, "periodic window peaks at N/2")
	assert.InDelta(t, 0.0, symmetric[7], 1e-12, "symmetric window ends at zero")
	assert.Equal(t, 8, NewHann(8, true).Size())
	assert.True(t, NewHann(8, true).Symmetric())
	assert.Equal(t, []float64{1}, NewHann(1, false).Coefficients())
	assert.Empty(t, NewHann(-3, false).Coefficients())
}

func TestHannApply(t *testing.T) {
	h := NewHann(4, false)

	buf := []float64{1, 1, 1, 1}
	require.NoError(t, h.ApplyInPlace(buf))
	assert.Equal(t, h.Coefficients(), buf)

	assert.Error(t, h.ApplyInPlace([]float64{1}))
	assert.Nil(t, h.Apply([]float64{1, 2}))

	in := []float64{2, 2, 2, 2}
	out := h.Apply(in)
	assert.InDelta(t, 2.0, out[2], 1e-12)
	assert.Equal(t, []float64{2, 2, 2, 2}, in)
}

func TestSumSquareIsFlatAtQuarterHop(t *testing.T) {
	h := NewHann(64, false)
	env := h.SumSquare(20, 16)

	require.Len(t, env, 64+16*19)
	// Away from the edges a periodic Hann squared at 75% overlap sums to 1.5
	for i := 64; i < len(env)-64; i++ {
		assert.InDelta(t, 1.5, env[i], 1e-9)
	}
}
