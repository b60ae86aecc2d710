package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soar/padmap/internal/pad"
)

func focusSettings() pad.Settings {
	set := testSettings()
	set.FocusModifiers = []pad.Key{"lshift"}
	return set
}

func TestFocusModeTransitions(t *testing.T) {
	r := newTestRig(t)
	r.eng.SetSettings(focusSettings())

	r.exec.setHeld("lshift", true)
	r.tick()
	assert.Equal(t, 1, r.indicator.shows)
	assert.Equal(t, 1, r.haptics.count())
	assert.True(t, r.eng.Status().Focus)

	// Holding does not retrigger.
	r.tick()
	assert.Equal(t, 1, r.indicator.shows)
	assert.Equal(t, 1, r.haptics.count())

	r.exec.setHeld("lshift", false)
	r.tick()
	assert.Equal(t, 1, r.indicator.hides)
	assert.Equal(t, 2, r.haptics.count())
	assert.False(t, r.eng.Status().Focus)
}

func TestFocusSlowsPointerGradually(t *testing.T) {
	r := newTestRig(t)
	set := focusSettings()
	r.eng.SetSettings(set)
	dt := set.Interval().Seconds()

	r.src.set(func(s *fakeSource) { s.left = pad.Vector{X: 1, Y: 0} })
	r.tick()
	full := r.exec.lastMove().X
	require.InDelta(t, set.PointerSpeed*dt, full, full*0.05)

	r.exec.setHeld("lshift", true)
	r.tick()
	first := r.exec.lastMove().X
	assert.Less(t, first, full, "sensitivity starts ramping on the first focus tick")
	assert.Greater(t, first, full*set.FocusMultiplier, "the ramp is gradual, not a jump")

	// After ~1s the multiplier has settled at the focus target.
	for i := 0; i < 120; i++ {
		r.tick()
	}
	settled := r.exec.lastMove().X
	assert.InDelta(t, full*set.FocusMultiplier, settled, full*set.FocusMultiplier*0.05)
}

func TestFocusExitPausesPointer(t *testing.T) {
	r := newTestRig(t)
	set := focusSettings()
	r.eng.SetSettings(set)

	r.src.set(func(s *fakeSource) { s.left = pad.Vector{X: 1, Y: 0} })
	r.exec.setHeld("lshift", true)
	for i := 0; i < 20; i++ {
		r.tick()
	}
	r.exec.setHeld("lshift", false)

	// Every tick inside the exit pause is suppressed.
	before := r.exec.moveCount()
	pauseTicks := int(set.FocusExitPause / set.Interval())
	for i := 0; i < pauseTicks; i++ {
		r.tick()
	}
	assert.Equal(t, before, r.exec.moveCount())

	// Movement resumes once the pause elapses.
	r.tick()
	r.tick()
	assert.Greater(t, r.exec.moveCount(), before)
}

func TestSwipeModeToggleAndStroke(t *testing.T) {
	r := newTestRig(t)

	// Deep pull toggles the mode on; the same pull already counts as a
	// stroke press.
	r.src.set(func(s *fakeSource) { s.lt = 0.9 })
	r.tick()
	assert.True(t, r.eng.Status().Swipe)
	begins, _, ends := r.swipe.counts()
	assert.Equal(t, 1, begins)
	assert.Equal(t, 0, ends)

	// The left stick feeds the swipe cursor, not the pointer.
	r.src.set(func(s *fakeSource) {
		s.lt = 0.5
		s.left = pad.Vector{X: 0.6, Y: 0.3}
	})
	r.tick()
	_, updates, _ := r.swipe.counts()
	assert.Equal(t, 1, updates)
	assert.Zero(t, r.exec.moveCount())

	// A release has to persist three ticks before the stroke ends.
	r.src.set(func(s *fakeSource) { s.lt = 0.2; s.left = pad.Vector{} })
	r.tick()
	r.tick()
	_, _, ends = r.swipe.counts()
	assert.Equal(t, 0, ends)
	r.tick()
	_, _, ends = r.swipe.counts()
	assert.Equal(t, 1, ends)

	// Second deep pull toggles the mode back off.
	r.src.set(func(s *fakeSource) { s.lt = 0.9 })
	r.tick()
	assert.False(t, r.eng.Status().Swipe)
}

func TestSwipeToggleHysteresis(t *testing.T) {
	r := newTestRig(t)

	r.src.set(func(s *fakeSource) { s.lt = 0.9 })
	for i := 0; i < 10; i++ {
		r.tick()
	}
	assert.True(t, r.eng.Status().Swipe, "a sustained pull toggles exactly once")

	// Dropping to just above the hysteresis floor keeps the edge latched.
	r.src.set(func(s *fakeSource) { s.lt = 0.7 })
	r.tick()
	r.src.set(func(s *fakeSource) { s.lt = 0.9 })
	r.tick()
	assert.True(t, r.eng.Status().Swipe)

	// A full release re-arms the edge; the next pull toggles off.
	r.src.set(func(s *fakeSource) { s.lt = 0 })
	for i := 0; i < 5; i++ {
		r.tick()
	}
	r.src.set(func(s *fakeSource) { s.lt = 0.9 })
	r.tick()
	assert.False(t, r.eng.Status().Swipe)
}

func TestSwipeBounceDoesNotEndStroke(t *testing.T) {
	r := newTestRig(t)

	r.src.set(func(s *fakeSource) { s.lt = 0.9 })
	r.tick()

	// Two low ticks then pressure again: sensor bounce, stroke survives.
	r.src.set(func(s *fakeSource) { s.lt = 0.2 })
	r.tick()
	r.tick()
	r.src.set(func(s *fakeSource) { s.lt = 0.5 })
	r.tick()

	begins, _, ends := r.swipe.counts()
	assert.Equal(t, 1, begins)
	assert.Equal(t, 0, ends)
}

func TestSwipeModeOffEndsActiveStroke(t *testing.T) {
	r := newTestRig(t)

	r.src.set(func(s *fakeSource) { s.lt = 0.9 })
	r.tick()
	r.src.set(func(s *fakeSource) { s.lt = 0 })
	r.tick()
	// Stroke is still alive (release debounce); toggling the mode off must
	// close it immediately.
	r.src.set(func(s *fakeSource) { s.lt = 0.9 })
	r.tick()

	begins, _, ends := r.swipe.counts()
	assert.Equal(t, 1, begins)
	assert.Equal(t, 1, ends)
	assert.False(t, r.eng.Status().Swipe)
}
