package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/soar/padmap/internal/pad"
)

func TestDeadzoneNormRescales(t *testing.T) {
	assert.Zero(t, deadzoneNorm(0, 0.12))
	assert.Zero(t, deadzoneNorm(0.12, 0.12))
	assert.InDelta(t, 1.0, deadzoneNorm(1, 0.12), 1e-9)

	// Just past the edge maps to just past zero, not to a jump.
	assert.InDelta(t, 0.0, deadzoneNorm(0.121, 0.12), 0.01)

	mid := deadzoneNorm(0.56, 0.12)
	assert.InDelta(t, 0.5, mid, 1e-9)
}

func TestAccelCurve(t *testing.T) {
	assert.Zero(t, accelCurve(0, 1.6))
	assert.InDelta(t, 1.0, accelCurve(1, 1.6), 1e-9)

	// A sub-linear input shrinks under an exponent above one.
	assert.Less(t, accelCurve(0.5, 1.6), 0.5)

	// Exponent one is the identity.
	assert.InDelta(t, 0.37, accelCurve(0.37, 1), 1e-9)
}

func TestOnePoleAlphaBounds(t *testing.T) {
	assert.Equal(t, 1.0, onePoleAlpha(0, 0.01))
	assert.Equal(t, 1.0, onePoleAlpha(10, 0))

	a := onePoleAlpha(5, 1.0/120)
	assert.Greater(t, a, 0.0)
	assert.Less(t, a, 1.0)

	// Higher cutoff tracks faster.
	assert.Greater(t, onePoleAlpha(20, 1.0/120), onePoleAlpha(1, 1.0/120))
}

func TestStickFilterPrimesOnFirstSample(t *testing.T) {
	var f stickFilter
	set := pad.DefaultSettings()

	out := f.apply(pad.Vector{X: 0.8, Y: -0.2}, 1.0/120, set)
	assert.Equal(t, pad.Vector{X: 0.8, Y: -0.2}, out, "first sample passes through unfiltered")
}

func TestStickFilterLagsAtLowCutoff(t *testing.T) {
	var f stickFilter
	set := pad.DefaultSettings()
	set.FilterMinCutoff = 1
	set.FilterMaxCutoff = 1

	f.apply(pad.Vector{}, 1.0/120, set)
	out := f.apply(pad.Vector{X: 1, Y: 0}, 1.0/120, set)
	assert.Greater(t, out.X, 0.0)
	assert.Less(t, out.X, 0.5, "a 1 Hz cutoff cannot track a step in one tick")
}

func TestStickFilterConverges(t *testing.T) {
	var f stickFilter
	set := pad.DefaultSettings()

	f.apply(pad.Vector{}, 1.0/120, set)
	var out pad.Vector
	for i := 0; i < 240; i++ {
		out = f.apply(pad.Vector{X: 1, Y: 0}, 1.0/120, set)
	}
	assert.InDelta(t, 1.0, out.X, 0.01)
}

func TestAngularDistWraparound(t *testing.T) {
	assert.InDelta(t, 20.0, angularDist(170, -170), 1e-9)
	assert.InDelta(t, 0.0, angularDist(-180, 180), 1e-9)
	assert.InDelta(t, 90.0, angularDist(0, 90), 1e-9)
	assert.InDelta(t, 45.0, angularDist(-45, -90), 1e-9)
}

func TestSignAndClamp(t *testing.T) {
	assert.Equal(t, 1, sign(0.3))
	assert.Equal(t, -1, sign(-0.3))
	assert.Equal(t, 0, sign(0))

	assert.Equal(t, 1.0, clamp(5, -1, 1))
	assert.Equal(t, -1.0, clamp(-5, -1, 1))
	assert.Equal(t, 0.25, clamp01(0.25))
	assert.Equal(t, 0.0, clamp01(-3))
}

func TestDeadzoneNormNeverExceedsOne(t *testing.T) {
	assert.InDelta(t, 1.0, deadzoneNorm(math.Sqrt2, 0.12), 1e-9)
}
