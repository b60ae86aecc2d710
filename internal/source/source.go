// Package source reads physical controllers and feeds the mapping engine: a
// normalized stream of button transitions plus thread-safe snapshots of the
// continuous axis state.
package source

import (
	"sync"

	"github.com/soar/padmap/internal/pad"
)

// Events receives discrete controller transitions. Calls arrive from the
// reader's polling thread; implementations must be safe for that.
type Events interface {
	ButtonDown(b pad.Button)
	ButtonUp(b pad.Button)
	Connected(name string)
	Disconnected()
}

// snapshot is the continuous state the engine sampler reads each tick.
type snapshot struct {
	left, right pad.Vector
	lt, rt      float64
}

// axes holds the snapshot under its own read-write lock so the polling
// thread never contends with the 120 Hz sampler for long.
type axes struct {
	mu   sync.RWMutex
	snap snapshot
}

func (a *axes) store(s snapshot) {
	a.mu.Lock()
	a.snap = s
	a.mu.Unlock()
}

func (a *axes) load() snapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.snap
}
