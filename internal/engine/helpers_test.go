package engine

import (
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/edaniels/golog"

	"github.com/soar/padmap/internal/pad"
)

// fakeExec records every call the engine dispatches. Discrete calls land in
// calls as "kind:id" strings so tests can assert exact ordering.
type fakeExec struct {
	mu      sync.Mutex
	calls   []string
	moves   []pad.Vector
	scrolls []pad.Vector
	zooms   []float64
	held    map[pad.Key]bool
}

func newFakeExec() *fakeExec {
	return &fakeExec{held: make(map[pad.Key]bool)}
}

func (f *fakeExec) record(s string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, s)
}

func (f *fakeExec) ExecuteMapping(m *pad.Mapping) { f.record("exec:" + m.ID) }
func (f *fakeExec) StartHold(m *pad.Mapping)      { f.record("start:" + m.ID) }
func (f *fakeExec) StopHold(m *pad.Mapping)       { f.record("stop:" + m.ID) }
func (f *fakeExec) KeyDown(k pad.Key)             { f.record("down:" + string(k)) }
func (f *fakeExec) KeyUp(k pad.Key)               { f.record("up:" + string(k)) }

func (f *fakeExec) MoveMouse(dx, dy float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.moves = append(f.moves, pad.Vector{X: dx, Y: dy})
}

func (f *fakeExec) Scroll(dx, dy float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scrolls = append(f.scrolls, pad.Vector{X: dx, Y: dy})
}

func (f *fakeExec) Zoom(delta float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.zooms = append(f.zooms, delta)
}

func (f *fakeExec) ModifiersHeld(combo []pad.Key) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(combo) == 0 {
		return false
	}
	for _, k := range combo {
		if !f.held[k] {
			return false
		}
	}
	return true
}

func (f *fakeExec) setHeld(k pad.Key, held bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.held[k] = held
}

func (f *fakeExec) snapshot() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	copy(out, f.calls)
	return out
}

func (f *fakeExec) count(s string) int {
	n := 0
	for _, c := range f.snapshot() {
		if c == s {
			n++
		}
	}
	return n
}

func (f *fakeExec) moveCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.moves)
}

func (f *fakeExec) scrollCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.scrolls)
}

func (f *fakeExec) scrollAt(i int) pad.Vector {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.scrolls[i]
}

func (f *fakeExec) lastMove() pad.Vector {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.moves[len(f.moves)-1]
}

// fakeSource is a settable InputSource snapshot.
type fakeSource struct {
	mu       sync.Mutex
	left     pad.Vector
	right    pad.Vector
	lt, rt   float64
	pitch    float64
	roll     float64
	motionOK bool
	touch    pad.TouchSample
	touchOK  bool
}

func (s *fakeSource) Sticks() (pad.Vector, pad.Vector) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.left, s.right
}

func (s *fakeSource) Triggers() (float64, float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lt, s.rt
}

func (s *fakeSource) Motion() (float64, float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pitch, s.roll, s.motionOK
}

func (s *fakeSource) Touchpad() (pad.TouchSample, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.touch, s.touchOK
}

func (s *fakeSource) set(fn func(*fakeSource)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s)
}

type fakeHaptics struct {
	mu     sync.Mutex
	pulses []float64
}

func (h *fakeHaptics) Pulse(strength float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.pulses = append(h.pulses, strength)
}

func (h *fakeHaptics) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.pulses)
}

type fakeIndicator struct {
	mu    sync.Mutex
	shows int
	hides int
}

func (i *fakeIndicator) ShowFocus() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.shows++
}

func (i *fakeIndicator) HideFocus() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.hides++
}

type fakeWheel struct {
	mu      sync.Mutex
	updates []pad.Vector
	alts    []bool
}

func (w *fakeWheel) UpdateSelection(pos pad.Vector, alternate bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.updates = append(w.updates, pos)
	w.alts = append(w.alts, alternate)
}

func (w *fakeWheel) count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.updates)
}

type fakeSwipe struct {
	mu      sync.Mutex
	begins  int
	ends    int
	updates []pad.Vector
}

func (s *fakeSwipe) BeginSwipe() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.begins++
}

func (s *fakeSwipe) EndSwipe() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ends++
}

func (s *fakeSwipe) UpdateSwipe(pos pad.Vector) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates = append(s.updates, pos)
}

func (s *fakeSwipe) counts() (int, int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.begins, len(s.updates), s.ends
}

// testProfile covers plain taps, holds, long-holds, chords, a layer and a
// sequence.
func testProfile() *pad.Profile {
	return &pad.Profile{
		Name: "test",
		Buttons: map[pad.Button]*pad.Mapping{
			pad.ButtonA:  {ID: "act_a"},
			pad.ButtonB:  {ID: "act_b"},
			pad.ButtonX:  {ID: "drag", Hold: true},
			pad.ButtonY:  {ID: "tap_y", LongHold: &pad.Mapping{ID: "long_y"}},
			pad.ButtonLB: {ID: "to_shift", Layer: "shift"},
		},
		Chords: map[string]*pad.Mapping{
			pad.ChordKey([]pad.Button{pad.ButtonA, pad.ButtonB}):   {ID: "chord_ab"},
			pad.ChordKey([]pad.Button{pad.ButtonLB, pad.ButtonRB}): {ID: "chord_grip", Hold: true},
		},
		Layers: map[string]*pad.Layer{
			"shift": {
				ID:        "shift",
				Activator: pad.ButtonLB,
				Buttons: map[pad.Button]*pad.Mapping{
					pad.ButtonA: {ID: "shift_a"},
				},
			},
		},
		Sequences: []*pad.Sequence{
			{
				ID:          "combo",
				Steps:       []pad.Button{pad.DpadUp, pad.DpadUp, pad.DpadDown},
				StepTimeout: time.Second,
				Action:      &pad.Mapping{ID: "seq_fire"},
			},
		},
	}
}

// testSettings keeps defaults but makes the smoothing filter effectively
// transparent so tick assertions are exact.
func testSettings() pad.Settings {
	s := pad.DefaultSettings()
	s.FilterMinCutoff = 1000
	s.FilterMaxCutoff = 1000
	return s
}

type testRig struct {
	eng       *Engine
	clk       *clock.Mock
	exec      *fakeExec
	src       *fakeSource
	haptics   *fakeHaptics
	indicator *fakeIndicator
	wheel     *fakeWheel
	swipe     *fakeSwipe
}

func newTestRig(t *testing.T) *testRig {
	t.Helper()
	r := &testRig{
		clk:       clock.NewMock(),
		exec:      newFakeExec(),
		src:       &fakeSource{},
		haptics:   &fakeHaptics{},
		indicator: &fakeIndicator{},
		wheel:     &fakeWheel{},
		swipe:     &fakeSwipe{},
	}
	r.eng = New(Options{
		Source:    r.src,
		Executor:  r.exec,
		Haptics:   r.haptics,
		Indicator: r.indicator,
		Wheel:     r.wheel,
		Swipe:     r.swipe,
		Clock:     r.clk,
		Logger:    golog.NewTestLogger(t),
	})
	r.eng.SetSettings(testSettings())
	r.eng.SetProfile(testProfile())
	r.eng.Enable()
	return r
}

// advance moves the mock clock, firing due timers.
func (r *testRig) advance(d time.Duration) {
	r.clk.Add(d)
}

// tick advances one nominal sampler period and runs a tick.
func (r *testRig) tick() {
	r.clk.Add(testSettings().Interval())
	r.eng.Tick()
}
