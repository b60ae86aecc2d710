package engine

import (
	"math"
	"time"

	"github.com/soar/padmap/internal/pad"
)

// tickInput is everything one sampler tick consumes, gathered before the
// engine lock is taken: the source snapshot and the live output-side
// modifier state.
type tickInput struct {
	now          time.Time
	left, right  pad.Vector
	lt, rt       float64
	pitch, roll  float64
	motionOK     bool
	touch        pad.TouchSample
	touchOK      bool
	focusHeld    bool
	wheelAltHeld bool
}

// Tick runs one sampler step. Run calls it at the configured rate; tests call
// it directly after advancing the mock clock.
func (e *Engine) Tick() {
	if e.src == nil {
		return
	}
	e.mu.Lock()
	if !e.readyLocked() {
		e.mu.Unlock()
		return
	}
	set := e.settings
	e.mu.Unlock()

	// External reads stay outside the lock: the source is a thread-safe
	// snapshot and the executor owns the live modifier state.
	in := tickInput{now: e.clk.Now()}
	in.left, in.right = e.src.Sticks()
	in.lt, in.rt = e.src.Triggers()
	in.pitch, in.roll, in.motionOK = e.src.Motion()
	in.touch, in.touchOK = e.src.Touchpad()
	if len(set.FocusModifiers) > 0 {
		in.focusHeld = e.exec.ModifiersHeld(set.FocusModifiers)
	}
	if len(set.WheelAltModifiers) > 0 {
		in.wheelAltHeld = e.exec.ModifiersHeld(set.WheelAltModifiers)
	}

	e.mu.Lock()
	var d dispatch
	e.tickLocked(in, &d)
	s, changed := e.statusLocked()
	e.mu.Unlock()
	d.run()
	if changed {
		e.publish(s)
	}
}

func (e *Engine) tickLocked(in tickInput, d *dispatch) {
	if !e.readyLocked() {
		return
	}
	set := e.settings

	// Real elapsed time, not the nominal tick: missed ticks must not skew
	// the filters.
	dt := set.Interval().Seconds()
	if !e.st.lastTick.IsZero() {
		dt = in.now.Sub(e.st.lastTick).Seconds()
	}
	e.st.lastTick = in.now
	if dt <= 0 {
		return
	}

	e.updateSwipeModeLocked(in, d)
	e.updateFocusLocked(in, dt, d)

	e.processStickLocked(&e.st.left, in.left, set.LeftStickRole, true, in, dt, d)
	e.processStickLocked(&e.st.right, in.right, set.RightStickRole, false, in, dt, d)

	e.updateTouchLocked(in, dt, d)
}

func (e *Engine) processStickLocked(f *stickFilter, raw pad.Vector, role pad.StickRole, isLeft bool, in tickInput, dt float64, d *dispatch) {
	set := e.settings
	pos := f.apply(raw, dt, set)

	// Swipe mode exclusively owns the left stick while active.
	if isLeft && e.st.swipeStroke.modeActive {
		if e.st.swipeStroke.strokeActive {
			cur := pad.Vector{X: clamp(pos.X, -1, 1), Y: clamp(pos.Y, -1, 1)}
			d.add(func() { e.swipe.UpdateSwipe(cur) })
		}
		return
	}

	// The command wheel takes over the pointer stick.
	if e.st.wheelActive && role == pad.RolePointer {
		cur := pos
		alt := in.wheelAltHeld
		d.add(func() { e.wheel.UpdateSelection(cur, alt) })
		return
	}

	switch role {
	case pad.RolePointer:
		e.pointerPathLocked(pos, in, dt, d)
	case pad.RoleScroll:
		e.scrollPathLocked(pos, in, dt, d)
	case pad.RoleArrows:
		e.directionKeysLocked(pos, set.ArrowKeys, d)
	case pad.RoleWASD:
		e.directionKeysLocked(pos, set.WASDKeys, d)
	}
}

func (e *Engine) pointerPathLocked(pos pad.Vector, in tickInput, dt float64, d *dispatch) {
	set := e.settings

	// Exit pause: briefly suppress movement after leaving focus mode so the
	// restored sensitivity does not produce a final-frame snap.
	if in.now.Before(e.st.focus.pauseUntil) {
		return
	}

	var dx, dy float64
	mag := math.Hypot(pos.X, pos.Y)
	norm := deadzoneNorm(mag, set.Deadzone)
	if norm > 0 {
		curved := accelCurve(norm, set.AccelExponent)
		speed := set.PointerSpeed * e.st.focus.mult
		dx = pos.X / mag * curved * speed * dt
		dy = pos.Y / mag * curved * speed * dt
	}

	// Gyro aiming stacks on top of the stick while focus mode is active,
	// each axis deadzoned on its own.
	if in.motionOK && e.st.focus.active {
		dx += axisDeadzone(in.roll, set.GyroDeadzone) * set.GyroScale * dt * e.st.focus.mult
		dy += axisDeadzone(in.pitch, set.GyroDeadzone) * set.GyroScale * dt * e.st.focus.mult
	}

	if set.InvertY {
		dy = -dy
	}
	if dx != 0 || dy != 0 {
		d.add(func() { e.exec.MoveMouse(dx, dy) })
	}
}

func (e *Engine) scrollPathLocked(pos pad.Vector, in tickInput, dt float64, d *dispatch) {
	set := e.settings

	mult := e.st.boost.update(pos, in.now, set)

	mag := math.Hypot(pos.X, pos.Y)
	norm := deadzoneNorm(mag, set.Deadzone)
	if norm == 0 {
		return
	}
	curved := accelCurve(norm, set.AccelExponent)
	speed := set.ScrollSpeed * mult
	dx := pos.X / mag * curved * speed * dt
	dy := pos.Y / mag * curved * speed * dt
	d.add(func() { e.exec.Scroll(dx, dy) })
}

// directionKeysLocked maps the stick to up/down/left/right virtual keys by
// angular sector, emitting only key transitions the held set does not already
// reflect.
func (e *Engine) directionKeysLocked(pos pad.Vector, keys pad.DirectionKeys, d *dispatch) {
	set := e.settings
	desired := make(map[pad.Key]struct{}, 2)
	if math.Hypot(pos.X, pos.Y) >= set.DirectionDeadzone {
		angle := math.Atan2(pos.Y, pos.X) * 180 / math.Pi
		sector := set.DirectionSectorDeg
		if angularDist(angle, 90) <= sector {
			desired[keys.Up] = struct{}{}
		}
		if angularDist(angle, -90) <= sector {
			desired[keys.Down] = struct{}{}
		}
		if angularDist(angle, 180) <= sector {
			desired[keys.Left] = struct{}{}
		}
		if angularDist(angle, 0) <= sector {
			desired[keys.Right] = struct{}{}
		}
	}
	for k := range e.st.dirHeld {
		if _, keep := desired[k]; !keep {
			delete(e.st.dirHeld, k)
			key := k
			d.add(func() { e.exec.KeyUp(key) })
		}
	}
	for k := range desired {
		if _, held := e.st.dirHeld[k]; !held {
			e.st.dirHeld[k] = struct{}{}
			key := k
			d.add(func() { e.exec.KeyDown(key) })
		}
	}
}

// axisDir is a scroll direction snapped to the dominant axis: exactly one of
// x or y is ±1, or both are zero inside the deadzone.
type axisDir struct {
	x, y int
}

func dominantDir(v pad.Vector) axisDir {
	if v.X == 0 && v.Y == 0 {
		return axisDir{}
	}
	if math.Abs(v.X) > math.Abs(v.Y) {
		return axisDir{x: sign(v.X)}
	}
	return axisDir{y: sign(v.Y)}
}

// boostState implements the double-tap scroll boost: two quick same-direction
// stick taps past the tap threshold arm the boost, the next sustained
// deflection in that direction scrolls boosted until the direction reverses
// or the stick re-enters the deadzone without a qualifying peak. Direction is
// the dominant axis, so horizontal flicks boost horizontal scrolling.
type boostState struct {
	outside  bool
	start    time.Time
	peak     float64
	dir      axisDir
	lastTap  time.Time
	tapDir   axisDir
	taps     int
	armed    bool
	active   bool
	boostDir axisDir
}

func (bs *boostState) update(pos pad.Vector, now time.Time, set pad.Settings) float64 {
	mag := math.Max(math.Abs(pos.X), math.Abs(pos.Y))
	dir := dominantDir(pos)

	if !bs.outside {
		if mag > set.Deadzone {
			bs.outside = true
			bs.start = now
			bs.peak = mag
			bs.dir = dir
			if bs.armed && dir == bs.tapDir {
				bs.active = true
				bs.boostDir = dir
				bs.armed = false
			}
		}
	} else {
		switch {
		case mag <= set.Deadzone:
			bs.outside = false
			qualifying := bs.peak >= set.TapThreshold && now.Sub(bs.start) <= set.TapMaxDuration
			if qualifying {
				if bs.taps > 0 && bs.tapDir == bs.dir && now.Sub(bs.lastTap) <= set.DoubleTapWindow {
					bs.taps++
				} else {
					bs.taps = 1
					bs.tapDir = bs.dir
				}
				bs.lastTap = now
				if bs.taps >= 2 {
					bs.armed = true
				}
			} else {
				bs.active = false
				bs.armed = false
				bs.taps = 0
			}
		case dir != (axisDir{}) && dir != bs.dir:
			// Direction change while deflected, including an axis switch.
			bs.active = false
			bs.armed = false
			bs.taps = 0
			bs.dir = dir
			bs.start = now
			bs.peak = mag
		default:
			if mag > bs.peak {
				bs.peak = mag
			}
		}
	}

	if bs.active && bs.outside && dir == bs.boostDir {
		return set.ScrollBoostFactor
	}
	return 1
}

func axisDeadzone(v, deadzone float64) float64 {
	if math.Abs(v) <= deadzone {
		return 0
	}
	return v
}

// angularDist returns the absolute distance between two angles in degrees,
// accounting for wraparound.
func angularDist(a, b float64) float64 {
	d := math.Mod(a-b, 360)
	if d < -180 {
		d += 360
	}
	if d > 180 {
		d -= 360
	}
	return math.Abs(d)
}
