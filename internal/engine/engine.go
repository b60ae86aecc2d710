// Package engine implements the real-time input-to-action mapping core: it
// ingests button transitions and continuous axis state from a controller
// source, classifies them against the active profile (taps, chords, holds,
// long-holds, sequences, layers) and dispatches resolved actions through the
// output boundary.
//
// Concurrency model: one mutex guards all transient state. Button callbacks,
// the fixed-rate sampler tick and every classification timer take that mutex,
// mutate state, and collect the external calls they produced; the calls run
// strictly after the mutex is released so a re-entrant collaborator can never
// deadlock the engine.
package engine

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/edaniels/golog"

	"github.com/soar/padmap/internal/output"
	"github.com/soar/padmap/internal/pad"
)

// InputSource supplies thread-safe point-in-time reads of continuous
// controller state. The sampler reads it once per tick, outside the lock.
type InputSource interface {
	// Sticks returns both stick positions, normalized -1..1 per axis,
	// +Y pointing up.
	Sticks() (left, right pad.Vector)

	// Triggers returns both trigger pressures, 0..1.
	Triggers() (lt, rt float64)

	// Motion returns pitch/roll rotation rates in rad/s; ok is false when
	// the controller has no motion sensor.
	Motion() (pitch, roll float64, ok bool)

	// Touchpad returns the pan/pinch deltas accumulated since the previous
	// call; ok is false when the controller has no touchpad.
	Touchpad() (sample pad.TouchSample, ok bool)
}

// Options configures a new Engine. Executor and Logger are required; nil
// collaborators default to no-ops and a nil Clock defaults to the real one.
type Options struct {
	Source    InputSource
	Executor  output.Executor
	Haptics   output.Haptics
	Indicator output.Indicator
	Wheel     output.Wheel
	Swipe     output.Swipe
	Clock     clock.Clock
	Logger    golog.Logger
}

// Status is a read-only snapshot of the engine for observers (overlay, tray).
type Status struct {
	Enabled bool     `json:"enabled"`
	Profile string   `json:"profile"`
	Layers  []string `json:"layers"`
	Focus   bool     `json:"focus"`
	Swipe   bool     `json:"swipe"`
	Wheel   bool     `json:"wheel"`
	Held    []string `json:"held"`
}

// Engine is the mapping engine. All exported methods are safe for concurrent
// use.
type Engine struct {
	mu  sync.Mutex
	clk clock.Clock
	log golog.Logger

	src       InputSource
	exec      output.Executor
	haptics   output.Haptics
	indicator output.Indicator
	wheel     output.Wheel
	swipe     output.Swipe

	enabled bool
	gen     uint64 // bumped on every reset; stale timer callbacks check it

	profile     *pad.Profile
	settings    pad.Settings
	hasSettings bool

	st state

	changes    chan Status
	lastStatus Status
	hasStatus  bool
}

// New constructs an Engine. The engine starts disabled.
func New(opts Options) *Engine {
	e := &Engine{
		clk:       opts.Clock,
		log:       opts.Logger,
		src:       opts.Source,
		exec:      opts.Executor,
		haptics:   opts.Haptics,
		indicator: opts.Indicator,
		wheel:     opts.Wheel,
		swipe:     opts.Swipe,
		changes:   make(chan Status, 16),
	}
	if e.clk == nil {
		e.clk = clock.New()
	}
	if e.haptics == nil {
		e.haptics = output.NopHaptics{}
	}
	if e.indicator == nil {
		e.indicator = nopIndicator{}
	}
	if e.wheel == nil {
		e.wheel = nopWheel{}
	}
	if e.swipe == nil {
		e.swipe = nopSwipe{}
	}
	e.st = newState()
	return e
}

// Changes returns the channel on which status snapshots are sent. Snapshots
// are dropped rather than blocking a producer when nobody drains the channel.
func (e *Engine) Changes() <-chan Status {
	return e.changes
}

// Enable starts processing input. A fresh session begins: all transient
// classification state is zero.
func (e *Engine) Enable() {
	e.mu.Lock()
	if e.enabled {
		e.mu.Unlock()
		return
	}
	e.enabled = true
	e.gen++
	e.st = newState()
	e.rebuildSequencesLocked()
	s, changed := e.statusLocked()
	e.mu.Unlock()
	if changed {
		e.publish(s)
	}
	e.log.Info("engine enabled")
}

// Disable stops processing and clears the session: every synthesized key is
// released, every active hold stopped, every timer cancelled. Timer callbacks
// already in flight see the generation bump and drop themselves.
func (e *Engine) Disable() {
	e.mu.Lock()
	if !e.enabled {
		e.mu.Unlock()
		return
	}
	var d dispatch
	e.resetLocked(&d)
	e.enabled = false
	s, changed := e.statusLocked()
	e.mu.Unlock()
	d.run()
	if changed {
		e.publish(s)
	}
	e.log.Info("engine disabled")
}

// Enabled reports whether the engine is processing input.
func (e *Engine) Enabled() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.enabled
}

// Reset clears all transient session state (on controller disconnect) while
// leaving the engine enabled and the configured profile/settings in place.
func (e *Engine) Reset() {
	e.mu.Lock()
	var d dispatch
	e.resetLocked(&d)
	s, changed := e.statusLocked()
	e.mu.Unlock()
	d.run()
	if changed {
		e.publish(s)
	}
}

// SetProfile publishes a new active profile snapshot. Transient state is
// reset so no pending classification fires against a stale mapping table.
func (e *Engine) SetProfile(p *pad.Profile) {
	e.mu.Lock()
	var d dispatch
	e.resetLocked(&d)
	e.profile = p
	e.rebuildSequencesLocked()
	s, changed := e.statusLocked()
	e.mu.Unlock()
	d.run()
	if changed {
		e.publish(s)
	}
	if p != nil {
		e.log.Infow("profile set", "profile", p.Name)
	} else {
		e.log.Info("profile cleared")
	}
}

// SetSettings publishes a new settings snapshot. Tuning changes apply on the
// next tick; in-flight classification keeps its already-armed windows.
func (e *Engine) SetSettings(s pad.Settings) {
	e.mu.Lock()
	e.settings = s
	e.hasSettings = true
	e.mu.Unlock()
}

// SetCommandWheelActive routes the pointer stick to the command-wheel
// collaborator while active.
func (e *Engine) SetCommandWheelActive(active bool) {
	e.mu.Lock()
	e.st.wheelActive = active
	s, changed := e.statusLocked()
	e.mu.Unlock()
	if changed {
		e.publish(s)
	}
}

// Status returns the current snapshot.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// Run drives the sampler at the configured rate until ctx is cancelled. A
// live settings reload that changes the sample rate retunes the ticker after
// the next tick.
func (e *Engine) Run(ctx context.Context) {
	interval := e.currentInterval()
	ticker := e.clk.Ticker(interval)
	defer func() { ticker.Stop() }()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.Tick()
			if next := e.currentInterval(); next != interval {
				ticker.Stop()
				interval = next
				ticker = e.clk.Ticker(interval)
			}
		}
	}
}

func (e *Engine) currentInterval() time.Duration {
	e.mu.Lock()
	interval := e.settings.Interval()
	e.mu.Unlock()
	if interval <= 0 {
		interval = pad.DefaultSettings().Interval()
	}
	return interval
}

// resetLocked cancels timers, releases everything the engine is synthetically
// holding, and zeroes transient state. Profile and settings survive: they are
// configuration, not session state.
func (e *Engine) resetLocked(d *dispatch) {
	e.gen++
	e.cancelLocked(&e.st.chordTimer)
	for _, rp := range e.st.resolved {
		e.cancelLocked(&rp.longHold)
	}
	for k := range e.st.dirHeld {
		key := k
		d.add(func() { e.exec.KeyUp(key) })
	}
	for _, m := range e.st.holds {
		held := m
		d.add(func() { e.exec.StopHold(held) })
	}
	if e.st.swipeStroke.strokeActive {
		d.add(func() { e.swipe.EndSwipe() })
	}
	if e.st.focus.active {
		d.add(func() { e.indicator.HideFocus() })
	}
	e.st = newState()
	e.rebuildSequencesLocked()
}

// readyLocked reports whether an entry point should process at all: the
// engine must be enabled and have both a profile and settings bound. Anything
// else degrades to a no-op, never an error.
func (e *Engine) readyLocked() bool {
	return e.enabled && e.profile != nil && e.hasSettings
}

func (e *Engine) snapshotLocked() Status {
	s := Status{
		Enabled: e.enabled,
		Focus:   e.st.focus.active,
		Swipe:   e.st.swipeStroke.modeActive,
		Wheel:   e.st.wheelActive,
	}
	if e.profile != nil {
		s.Profile = e.profile.Name
	}
	for _, id := range e.st.layers {
		s.Layers = append(s.Layers, id)
	}
	for b := range e.st.held {
		s.Held = append(s.Held, string(b))
	}
	return s
}

// statusLocked computes the current snapshot and reports whether it differs
// from the last published one.
func (e *Engine) statusLocked() (Status, bool) {
	s := e.snapshotLocked()
	if e.hasStatus && statusEqual(s, e.lastStatus) {
		return s, false
	}
	e.lastStatus = s
	e.hasStatus = true
	return s, true
}

func (e *Engine) publish(s Status) {
	select {
	case e.changes <- s:
	default:
		// Drop if nobody is draining; status is advisory.
	}
}

func statusEqual(a, b Status) bool {
	if a.Enabled != b.Enabled || a.Profile != b.Profile ||
		a.Focus != b.Focus || a.Swipe != b.Swipe || a.Wheel != b.Wheel {
		return false
	}
	if len(a.Layers) != len(b.Layers) || len(a.Held) != len(b.Held) {
		return false
	}
	for i := range a.Layers {
		if a.Layers[i] != b.Layers[i] {
			return false
		}
	}
	seen := make(map[string]int, len(a.Held))
	for _, h := range a.Held {
		seen[h]++
	}
	for _, h := range b.Held {
		seen[h]--
	}
	for _, n := range seen {
		if n != 0 {
			return false
		}
	}
	return true
}

// dispatch collects external calls produced under the lock; run executes them
// after the lock is released, in the order they were produced.
type dispatch struct {
	calls []func()
}

func (d *dispatch) add(f func()) {
	d.calls = append(d.calls, f)
}

func (d *dispatch) run() {
	for _, f := range d.calls {
		f()
	}
}

type nopIndicator struct{}

func (nopIndicator) ShowFocus() {}
func (nopIndicator) HideFocus() {}

type nopWheel struct{}

func (nopWheel) UpdateSelection(pad.Vector, bool) {}

type nopSwipe struct{}

func (nopSwipe) BeginSwipe()            {}
func (nopSwipe) UpdateSwipe(pad.Vector) {}
func (nopSwipe) EndSwipe()              {}
