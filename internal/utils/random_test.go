package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRollDieBounds(t *testing.T) {
	for i := 0; i < 200; i++ {
		result := RollDie(20)
		assert.GreaterOrEqual(t, result, 1)
		assert.LessOrEqual(t, result, 20)
	}
}

func TestRollDieDegenerateSides(t *testing.T) {
	assert.Equal(t, 1, RollDie(0))
	assert.Equal(t, 1, RollDie(-5))
	assert.Equal(t, 1, RollDie(1))
}

func TestRoll2D10Bounds(t *testing.T) {
	for i := 0; i < 100; i++ {
		dice := Roll2D10()
		for _, d := range dice {
			assert.GreaterOrEqual(t, d, 1)
			assert.LessOrEqual(t, d, 10)
		}
	}
}

func TestSecureRandIntn(t *testing.T) {
	assert.Equal(t, 0, SecureRandIntn(0))
	for i := 0; i < 100; i++ {
		result := SecureRandIntn(10)
		assert.GreaterOrEqual(t, result, 0)
		assert.Less(t, result, 10)
	}
}
