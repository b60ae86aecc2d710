package pad

import "time"

// Mapping describes an output action bound to a button, chord or sequence.
// The engine never interprets what a mapping does; it only consults the
// fields that decide when the action fires.
type Mapping struct {
	// ID names the action for the output executor and for logs.
	ID string

	// Hold marks a continuous mapping: the executor gets StartHold on
	// activation and StopHold on release instead of a one-shot execute.
	Hold bool

	// Layer, when non-empty, makes this mapping push the named layer while
	// the bound button (or chord) is held instead of producing output.
	Layer string

	// LongHold is the secondary action fired when the button stays down past
	// LongHoldAfter. A zero LongHoldAfter uses the profile-wide default.
	LongHold      *Mapping
	LongHoldAfter time.Duration
}

// Layer is a mapping-table override activated by holding its activator.
type Layer struct {
	ID        string
	Activator Button
	Buttons   map[Button]*Mapping
	Chords    map[string]*Mapping // keyed by ChordKey
}

// Sequence is an ordered multi-step button pattern matched passively.
type Sequence struct {
	ID          string
	Steps       []Button
	StepTimeout time.Duration
	Action      *Mapping
}

// Profile is the active mapping table. The engine receives profiles as
// read-only snapshots; it never mutates one.
type Profile struct {
	Name      string
	Buttons   map[Button]*Mapping
	Chords    map[string]*Mapping // keyed by ChordKey
	Layers    map[string]*Layer
	Sequences []*Sequence
}

// LayerByID returns the named layer, or nil.
func (p *Profile) LayerByID(id string) *Layer {
	if p == nil {
		return nil
	}
	return p.Layers[id]
}

// ProfileSet is the complete profile table: a default profile plus overrides
// keyed by an opaque foreground-application identity. Whoever tracks the
// frontmost application picks the effective profile with For and publishes it
// to the engine.
type ProfileSet struct {
	Default *Profile
	ByApp   map[string]*Profile
}

// For returns the profile overriding the given application identity, falling
// back to the default when none matches.
func (ps *ProfileSet) For(appID string) *Profile {
	if ps == nil {
		return nil
	}
	if p, ok := ps.ByApp[appID]; ok {
		return p
	}
	return ps.Default
}
