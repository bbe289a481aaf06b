package entropy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeededReplays(t *testing.T) {
	a, b := NewSeeded(7), NewSeeded(7)
	for i := 0; i < 100; i++ {
		assert.Equal(t, a.Float64(), b.Float64())
	}
	assert.Equal(t, int64(7), a.Seed())
}

func TestSeededZeroUsesClock(t *testing.T) {
	assert.NotZero(t, NewSeeded(0).Seed())
}

func TestSequence(t *testing.T) {
	s := NewSequence(0.1, 0.2)
	assert.Equal(t, 0.1, s.Float64())
	assert.Equal(t, 0.2, s.Float64())
	assert.Equal(t, 0.2, s.Float64())
	assert.Equal(t, 2, s.Used())

	empty := NewSequence()
	assert.Equal(t, empty.Fallback, empty.Float64())
	assert.Zero(t, empty.Used())
}

func TestSeededInRange(t *testing.T) {
	src := NewSeeded(3)
	for i := 0; i < 1000; i++ {
		v := src.Float64()
		assert.True(t, v >= 0 && v < 1, "%v", v)
	}
}
