package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaskSetAndCount(t *testing.T) {
	m := NewMask(4, 3)
	assert.Zero(t, m.Count())

	m.Set(0, 0, true)
	m.Set(3, 2, true)
	assert.True(t, m.At(0, 0))
	assert.True(t, m.At(3, 2))
	assert.False(t, m.At(1, 1))
	assert.Equal(t, 2, m.Count())

	m.Set(0, 0, false)
	assert.Equal(t, 1, m.Count())
}

func TestMaskOutOfBoundsIsSafe(t *testing.T) {
	m := NewMask(2, 2)
	m.Set(-1, 0, true)
	m.Set(5, 5, true)
	assert.Zero(t, m.Count())
	assert.False(t, m.At(-1, 0))
	assert.False(t, m.At(5, 5))
}

func TestMaskValidate(t *testing.T) {
	m := NewMask(10, 8)
	require.NoError(t, m.Validate(10, 8))
	assert.Error(t, m.Validate(8, 10))
	assert.Error(t, m.Validate(10, 9))

	truncated := Mask{Width: 10, Height: 8, Bits: make([]byte, 7)}
	assert.Error(t, truncated.Validate(10, 8))
}

func TestMaskCloneDoesNotShareBits(t *testing.T) {
	m := NewMask(2, 2)
	m.Set(1, 1, true)

	c := m.Clone()
	c.Set(0, 0, true)

	assert.False(t, m.At(0, 0))
	assert.True(t, c.At(0, 0))
	assert.True(t, c.At(1, 1))
}
