package shift

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestComputeDuration(t *testing.T) {
	in := time.Date(2026, 8, 3, 9, 0, 0, 0, time.UTC)

	assert.Equal(t, 480, ComputeDuration(in, in.Add(8*time.Hour)))
	assert.Equal(t, 0, ComputeDuration(in, in))

	// Partial minutes floor.
	assert.Equal(t, 90, ComputeDuration(in, in.Add(90*time.Minute+59*time.Second)))

	// Clock anomaly clamps instead of going negative.
	assert.Equal(t, 0, ComputeDuration(in, in.Add(-10*time.Minute)))
}

func TestApplyNightBonus(t *testing.T) {
	assert.Equal(t, 540, ApplyNightBonus(480, true, 60))
	assert.Equal(t, 480, ApplyNightBonus(480, false, 60))

	// Zero-duration night sessions still earn the bonus minutes.
	assert.Equal(t, 60, ApplyNightBonus(0, true, 60))
}
