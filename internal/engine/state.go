package engine

import (
	"time"

	"github.com/soar/padmap/internal/pad"
)

// state holds every transient field of a controller session. It is guarded by
// Engine.mu in its entirety; no field has its own lock. A reset replaces the
// whole struct.
type state struct {
	// Classifier.
	held       map[pad.Button]time.Time // press records for currently-down buttons
	pending    map[pad.Button]struct{}  // members of the open capture window
	capture    []pad.Button             // open capture window, arrival order
	chordTimer gtimer
	buffered   []bufferedRelease         // releases seen before classification resolved
	chords     []*chordHold              // resolved chords whose members are not all up
	resolved   map[pad.Button]*resolvedPress

	// Layers and sequences.
	layers []string // active layer ids, bottom to top
	seqs   []*seqProgress

	// Sampler.
	lastTick    time.Time
	left, right stickFilter
	dirHeld     map[pad.Key]struct{}
	boost       boostState
	focus       focusState
	touch       touchState
	swipeStroke swipeState
	wheelActive bool
	holds       map[string]*pad.Mapping // active continuous mappings, by id
}

type bufferedRelease struct {
	button   pad.Button
	duration time.Duration
}

// chordHold owns release semantics for its member buttons: no per-button
// release fires until every member is up.
type chordHold struct {
	remaining   map[pad.Button]struct{}
	mapping     *pad.Mapping
	layerPushed bool
}

// resolvedPress tracks a single button between classification and release.
type resolvedPress struct {
	mapping       *pad.Mapping
	layerPushed   bool
	longHold      gtimer
	longHoldFired bool
}

type seqProgress struct {
	seq     *pad.Sequence
	matched int
	last    time.Time
}

type focusState struct {
	active     bool
	mult       float64 // smoothed sensitivity multiplier
	pauseUntil time.Time
}

type swipeState struct {
	modeActive   bool
	triggerHigh  bool
	strokeActive bool
	releaseTicks int
}

type touchState struct {
	active      bool
	vel         pad.Vector // smoothed pan velocity, units/s
	peakVel     float64
	highVelFor  float64 // seconds spent above the fling velocity
	pinchAccum  float64
	pinchLocked int // 0 until the pinch threshold is crossed, then ±1
	momentum    pad.Vector
}

func newState() state {
	return state{
		held:     make(map[pad.Button]time.Time),
		pending:  make(map[pad.Button]struct{}),
		resolved: make(map[pad.Button]*resolvedPress),
		dirHeld:  make(map[pad.Key]struct{}),
		holds:    make(map[string]*pad.Mapping),
		focus:    focusState{mult: 1},
	}
}
