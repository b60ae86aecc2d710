package engine

import (
	"math"
)

// Touchpad gestures: physical pan passes through as scroll, pinch accumulates
// into zoom with a direction lock, and a fast release turns into decaying
// momentum scroll.

func (e *Engine) updateTouchLocked(in tickInput, dt float64, d *dispatch) {
	if !in.touchOK {
		return
	}
	set := e.settings
	t := &e.st.touch
	ts := in.touch

	if ts.Touching {
		if !t.active {
			// New contact cancels any running momentum.
			t.active = true
			t.peakVel = 0
			t.highVelFor = 0
			t.pinchAccum = 0
			t.pinchLocked = 0
			t.momentum.X, t.momentum.Y = 0, 0
		}
		// Smoothed pan velocity with peak tracking for fling detection.
		a := onePoleAlpha(8, dt)
		t.vel.X += a * (ts.Pan.X/dt - t.vel.X)
		t.vel.Y += a * (ts.Pan.Y/dt - t.vel.Y)
		speed := math.Hypot(t.vel.X, t.vel.Y)
		if speed > t.peakVel {
			t.peakVel = speed
		}
		if speed >= set.FlingVelocity {
			t.highVelFor += dt
		} else {
			t.highVelFor = 0
		}

		if ts.Pan.X != 0 || ts.Pan.Y != 0 {
			dx, dy := ts.Pan.X, ts.Pan.Y
			d.add(func() { e.exec.Scroll(dx, dy) })
		}

		if ts.Pinch != 0 {
			t.pinchAccum += ts.Pinch
			if t.pinchLocked == 0 && math.Abs(t.pinchAccum) >= set.PinchThreshold {
				t.pinchLocked = sign(t.pinchAccum)
			}
			// Direction lock: jitter reversals right after a magnify starts
			// are dropped.
			if t.pinchLocked != 0 && sign(ts.Pinch) == t.pinchLocked {
				delta := ts.Pinch
				d.add(func() { e.exec.Zoom(delta) })
			}
		}
		return
	}

	if t.active {
		t.active = false
		if t.peakVel >= set.FlingVelocity && t.highVelFor >= set.FlingMinDuration.Seconds() {
			t.momentum = t.vel
		}
		t.vel.X, t.vel.Y = 0, 0
		t.pinchAccum = 0
		t.pinchLocked = 0
	}

	// Momentum: decay toward zero, scrolling the residual velocity.
	if t.momentum.X != 0 || t.momentum.Y != 0 {
		decay := math.Exp(-set.MomentumDecay * dt)
		t.momentum.X *= decay
		t.momentum.Y *= decay
		if math.Hypot(t.momentum.X, t.momentum.Y) < set.MomentumFloor {
			t.momentum.X, t.momentum.Y = 0, 0
			return
		}
		dx := t.momentum.X * dt
		dy := t.momentum.Y * dt
		d.add(func() { e.exec.Scroll(dx, dy) })
	}
}
