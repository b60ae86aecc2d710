package engine

import (
	"time"

	"github.com/benbjohnson/clock"
)

// gtimer is a cancellable one-shot timer with a generation counter. Arming
// bumps the generation, so a callback from a previously-armed timer that
// races its Stop sees a mismatch and drops itself. The engine-wide generation
// is checked too, covering timers orphaned by a reset.
type gtimer struct {
	t   *clock.Timer
	gen uint64
}

// armLocked (re)arms gt to run fn after delay. Must be called with the engine
// lock held. fn runs with the lock held and must only append external calls
// to the dispatch it is given.
func (e *Engine) armLocked(gt *gtimer, delay time.Duration, fn func(d *dispatch)) {
	if gt.t != nil {
		gt.t.Stop()
	}
	gt.gen++
	tgen := gt.gen
	egen := e.gen
	gt.t = e.clk.AfterFunc(delay, func() {
		e.mu.Lock()
		if !e.enabled || e.gen != egen || gt.gen != tgen {
			e.mu.Unlock()
			return
		}
		var d dispatch
		fn(&d)
		s, changed := e.statusLocked()
		e.mu.Unlock()
		d.run()
		if changed {
			e.publish(s)
		}
	})
}

// cancelLocked stops gt and invalidates any callback already dispatched.
func (e *Engine) cancelLocked(gt *gtimer) {
	if gt.t != nil {
		gt.t.Stop()
		gt.t = nil
	}
	gt.gen++
}
