package engine

import (
	"math"

	"github.com/soar/padmap/internal/pad"
)

// Focus mode and swipe-typing mode. Focus mode follows the live output-side
// modifier state; swipe mode toggles on a deep trigger pull and owns the left
// stick entirely while active.

// updateFocusLocked tracks focus-mode transitions and smooths the
// sensitivity multiplier toward its target so entering or leaving focus ramps
// instead of jumping.
func (e *Engine) updateFocusLocked(in tickInput, dt float64, d *dispatch) {
	set := e.settings
	f := &e.st.focus

	if in.focusHeld != f.active {
		f.active = in.focusHeld
		if f.active {
			d.add(func() {
				e.haptics.Pulse(0.6)
				e.indicator.ShowFocus()
			})
		} else {
			f.pauseUntil = in.now.Add(set.FocusExitPause)
			d.add(func() {
				e.haptics.Pulse(0.3)
				e.indicator.HideFocus()
			})
		}
	}

	target := 1.0
	if f.active {
		target = set.FocusMultiplier
	}
	f.mult += (target - f.mult) * (1 - math.Exp(-set.FocusRamp*dt))
}

// A release must persist this many consecutive ticks before it counts,
// rejecting sensor bounce.
const swipeReleaseTicks = 3

// updateSwipeModeLocked runs the swipe-typing trigger toggle and the
// press/release state machine.
func (e *Engine) updateSwipeModeLocked(in tickInput, d *dispatch) {
	set := e.settings
	sw := &e.st.swipeStroke

	pressure := in.lt
	if set.SwipeTrigger == pad.ButtonRT {
		pressure = in.rt
	}

	// Mode toggles on the rising edge past the toggle threshold, with
	// hysteresis so one pull toggles once.
	if !sw.triggerHigh && pressure >= set.SwipeToggleAt {
		sw.triggerHigh = true
		sw.modeActive = !sw.modeActive
		e.log.Debugw("swipe mode", "active", sw.modeActive)
		if !sw.modeActive && sw.strokeActive {
			sw.strokeActive = false
			sw.releaseTicks = 0
			d.add(func() { e.swipe.EndSwipe() })
		}
	} else if sw.triggerHigh && pressure < set.SwipeToggleAt*0.8 {
		sw.triggerHigh = false
	}

	if !sw.modeActive {
		return
	}

	if pressure >= set.SwipePressAt {
		sw.releaseTicks = 0
		if !sw.strokeActive {
			sw.strokeActive = true
			d.add(func() { e.swipe.BeginSwipe() })
		}
	} else if sw.strokeActive {
		sw.releaseTicks++
		if sw.releaseTicks >= swipeReleaseTicks {
			sw.strokeActive = false
			sw.releaseTicks = 0
			d.add(func() { e.swipe.EndSwipe() })
		}
	}
}
