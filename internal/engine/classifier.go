package engine

import (
	"time"

	"github.com/soar/padmap/internal/pad"
)

// ButtonDown handles one physical press transition. Duplicate presses while
// the button is already held are no-ops.
func (e *Engine) ButtonDown(b pad.Button) {
	e.mu.Lock()
	var d dispatch
	e.pressLocked(b, e.clk.Now(), &d)
	s, changed := e.statusLocked()
	e.mu.Unlock()
	d.run()
	if changed {
		e.publish(s)
	}
}

// ButtonUp handles one physical release transition. Releases of untracked
// buttons are no-ops.
func (e *Engine) ButtonUp(b pad.Button) {
	e.mu.Lock()
	var d dispatch
	e.releaseLocked(b, e.clk.Now(), &d)
	s, changed := e.statusLocked()
	e.mu.Unlock()
	d.run()
	if changed {
		e.publish(s)
	}
}

func (e *Engine) pressLocked(b pad.Button, now time.Time, d *dispatch) {
	if !e.readyLocked() {
		return
	}
	if _, dup := e.st.held[b]; dup {
		return
	}
	if _, open := e.st.pending[b]; open {
		// The button was tapped and released inside the still-open capture
		// window and is now down again: a fast double tap. Flush the pending
		// resolution first so the two taps never merge into a stale chord.
		e.resolveCaptureLocked(now, d)
	}
	e.st.held[b] = now
	e.st.pending[b] = struct{}{}
	e.st.capture = append(e.st.capture, b)
	e.armLocked(&e.st.chordTimer, e.settings.ChordWindow, func(d *dispatch) {
		e.resolveCaptureLocked(e.clk.Now(), d)
	})
}

func (e *Engine) releaseLocked(b pad.Button, now time.Time, d *dispatch) {
	if !e.readyLocked() {
		return
	}
	pressAt, ok := e.st.held[b]
	if !ok {
		return
	}
	duration := now.Sub(pressAt)
	delete(e.st.held, b)
	if _, unresolved := e.st.pending[b]; unresolved {
		// Classification has not settled; replay once it does.
		e.st.buffered = append(e.st.buffered, bufferedRelease{button: b, duration: duration})
		return
	}
	e.releaseResolvedLocked(b, duration, d)
}

// resolveCaptureLocked closes the capture window: two or more members form a
// chord, exactly one resolves as a single press. Buffered releases for the
// resolved buttons replay afterwards in arrival order.
func (e *Engine) resolveCaptureLocked(now time.Time, d *dispatch) {
	if len(e.st.capture) == 0 {
		return
	}
	buttons := e.st.capture
	e.st.capture = nil
	e.cancelLocked(&e.st.chordTimer)
	for _, b := range buttons {
		delete(e.st.pending, b)
	}

	if len(buttons) >= 2 {
		e.resolveChordLocked(buttons, d)
	} else {
		e.resolveSingleLocked(buttons[0], now, d)
	}

	if len(e.st.buffered) > 0 {
		resolved := make(map[pad.Button]struct{}, len(buttons))
		for _, b := range buttons {
			resolved[b] = struct{}{}
		}
		rest := e.st.buffered[:0]
		for _, br := range e.st.buffered {
			if _, ok := resolved[br.button]; ok {
				e.releaseResolvedLocked(br.button, br.duration, d)
			} else {
				rest = append(rest, br)
			}
		}
		e.st.buffered = rest
	}
}

func (e *Engine) resolveChordLocked(buttons []pad.Button, d *dispatch) {
	m := e.lookupChordLocked(buttons)
	ch := &chordHold{
		remaining: make(map[pad.Button]struct{}, len(buttons)),
		mapping:   m,
	}
	for _, b := range buttons {
		ch.remaining[b] = struct{}{}
	}
	e.st.chords = append(e.st.chords, ch)
	if m == nil {
		e.log.Debugw("unmapped chord", "chord", pad.ChordKey(buttons))
		return
	}
	switch {
	case m.Layer != "":
		if e.pushLayerLocked(m.Layer) {
			ch.layerPushed = true
		}
	case m.Hold:
		e.startHoldLocked(m, d)
	default:
		mapping := m
		d.add(func() { e.exec.ExecuteMapping(mapping) })
	}
}

func (e *Engine) resolveSingleLocked(b pad.Button, now time.Time, d *dispatch) {
	m := e.lookupButtonLocked(b)
	rp := &resolvedPress{mapping: m}
	e.st.resolved[b] = rp
	if m != nil {
		switch {
		case m.Layer != "":
			rp.layerPushed = e.pushLayerLocked(m.Layer)
		case m.Hold:
			e.startHoldLocked(m, d)
		case m.LongHold != nil:
			e.armLongHoldLocked(b, rp, m, now, d)
		default:
			mapping := m
			d.add(func() { e.exec.ExecuteMapping(mapping) })
		}
	}
	// Side channel: sequences advance on every resolved single press, mapped
	// or not, and never gate its dispatch.
	e.advanceSequencesLocked(b, now, d)
}

// armLongHoldLocked schedules the long-hold variant. The threshold counts
// from the physical press, not from window resolution, so the arm delay is
// whatever remains of it.
func (e *Engine) armLongHoldLocked(b pad.Button, rp *resolvedPress, m *pad.Mapping, now time.Time, d *dispatch) {
	pressAt, stillHeld := e.st.held[b]
	if !stillHeld {
		// Already released with the window open; the buffered release will
		// fire the normal tap.
		return
	}
	threshold := m.LongHoldAfter
	if threshold <= 0 {
		threshold = e.settings.LongHoldDefault
	}
	remaining := threshold - now.Sub(pressAt)
	if remaining < 0 {
		remaining = 0
	}
	e.armLocked(&rp.longHold, remaining, func(d *dispatch) {
		if e.st.resolved[b] != rp {
			return
		}
		if _, held := e.st.held[b]; !held {
			return
		}
		rp.longHoldFired = true
		long := m.LongHold
		d.add(func() { e.exec.ExecuteMapping(long) })
	})
}

// releaseResolvedLocked applies release semantics for a button whose press
// already classified. A chord member's release is owned by its chord until
// every member is up.
func (e *Engine) releaseResolvedLocked(b pad.Button, duration time.Duration, d *dispatch) {
	if ch := e.chordWithLocked(b); ch != nil {
		delete(ch.remaining, b)
		if len(ch.remaining) == 0 {
			e.removeChordLocked(ch)
			if m := ch.mapping; m != nil {
				switch {
				case ch.layerPushed:
					e.popLayerLocked(m.Layer)
				case m.Hold:
					e.stopHoldLocked(m, d)
				}
			}
		}
		return
	}

	rp, ok := e.st.resolved[b]
	if !ok {
		return
	}
	delete(e.st.resolved, b)
	e.cancelLocked(&rp.longHold)
	m := rp.mapping
	if m == nil {
		return
	}
	e.log.Debugw("release", "button", b, "held", duration)
	switch {
	case rp.layerPushed:
		e.popLayerLocked(m.Layer)
	case m.Hold:
		e.stopHoldLocked(m, d)
	case m.LongHold != nil && !rp.longHoldFired:
		// Released short of the threshold: the normal tap fires now.
		mapping := m
		d.add(func() { e.exec.ExecuteMapping(mapping) })
	case m.LongHold != nil && rp.longHoldFired:
		// Long-hold already fired; the normal action stays suppressed.
	}
}

func (e *Engine) chordWithLocked(b pad.Button) *chordHold {
	for _, ch := range e.st.chords {
		if _, ok := ch.remaining[b]; ok {
			return ch
		}
	}
	return nil
}

func (e *Engine) removeChordLocked(ch *chordHold) {
	for i, c := range e.st.chords {
		if c == ch {
			e.st.chords = append(e.st.chords[:i], e.st.chords[i+1:]...)
			return
		}
	}
}

func (e *Engine) startHoldLocked(m *pad.Mapping, d *dispatch) {
	if _, active := e.st.holds[m.ID]; active {
		return
	}
	e.st.holds[m.ID] = m
	mapping := m
	d.add(func() { e.exec.StartHold(mapping) })
}

func (e *Engine) stopHoldLocked(m *pad.Mapping, d *dispatch) {
	if _, active := e.st.holds[m.ID]; !active {
		return
	}
	delete(e.st.holds, m.ID)
	mapping := m
	d.add(func() { e.exec.StopHold(mapping) })
}
