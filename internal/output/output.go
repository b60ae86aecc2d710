// Package output defines the dispatch boundary between the mapping engine and
// whatever synthesizes real keyboard/mouse/system events. The engine decides
// when an action fires; implementations of these interfaces decide what that
// means on the host.
package output

import "github.com/soar/padmap/internal/pad"

// Executor receives every resolved action. Calls arrive from engine
// goroutines with no engine lock held; implementations must be safe for
// concurrent use and must not call back into the engine synchronously.
type Executor interface {
	// ExecuteMapping fires a discrete action once.
	ExecuteMapping(m *pad.Mapping)

	// StartHold begins a continuous action; StopHold ends it. The engine
	// guarantees the two are balanced, including on disable.
	StartHold(m *pad.Mapping)
	StopHold(m *pad.Mapping)

	// MoveMouse and Scroll carry continuous deltas in output units.
	MoveMouse(dx, dy float64)
	Scroll(dx, dy float64)

	// Zoom carries a magnification delta (positive zooms in).
	Zoom(delta float64)

	// KeyDown and KeyUp synthesize a single virtual key transition.
	KeyDown(k pad.Key)
	KeyUp(k pad.Key)

	// ModifiersHeld reports whether every key in combo is currently held on
	// the output side. An empty combo is never held.
	ModifiersHeld(combo []pad.Key) bool
}

// Haptics is a fire-and-forget rumble sink.
type Haptics interface {
	Pulse(strength float64)
}

// Indicator shows and hides the focus-mode overlay.
type Indicator interface {
	ShowFocus()
	HideFocus()
}

// Wheel receives stick positions while the command wheel is open.
type Wheel interface {
	UpdateSelection(pos pad.Vector, alternate bool)
}

// Swipe receives the normalized cursor stream for the swipe-typing engine.
type Swipe interface {
	BeginSwipe()
	UpdateSwipe(pos pad.Vector)
	EndSwipe()
}
