// Package pad defines the controller data model shared by the mapping engine:
// button identities, mapping descriptors, profiles, layers, sequences and the
// tunable settings the sampler and classifier consume.
package pad

import (
	"sort"
	"strings"
)

// Button identifies a physical control on the pad.
type Button string

// The full Xbox-style button set. Triggers appear here as buttons because the
// classifier treats a trigger crossing its press threshold like any other
// press; the analog pressure is read separately by the sampler.
const (
	ButtonA      Button = "a"
	ButtonB      Button = "b"
	ButtonX      Button = "x"
	ButtonY      Button = "y"
	ButtonLB     Button = "lb"
	ButtonRB     Button = "rb"
	ButtonLT     Button = "lt"
	ButtonRT     Button = "rt"
	ButtonLThumb Button = "l3"
	ButtonRThumb Button = "r3"
	ButtonView   Button = "view"
	ButtonMenu   Button = "menu"
	ButtonGuide  Button = "guide"
	ButtonShare  Button = "share"
	DpadUp       Button = "dpad_up"
	DpadDown     Button = "dpad_down"
	DpadLeft     Button = "dpad_left"
	DpadRight    Button = "dpad_right"
)

// Buttons lists every known button id.
var Buttons = []Button{
	ButtonA, ButtonB, ButtonX, ButtonY,
	ButtonLB, ButtonRB, ButtonLT, ButtonRT,
	ButtonLThumb, ButtonRThumb,
	ButtonView, ButtonMenu, ButtonGuide, ButtonShare,
	DpadUp, DpadDown, DpadLeft, DpadRight,
}

// Key is a virtual key name handed to the output executor (e.g. "w", "up",
// "cmd"). The engine never interprets key names.
type Key string

// Vector is a 2D stick or pan position.
type Vector struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ChordKey returns the canonical identity of a button combination:
// members sorted and joined with "+". The input slice is not modified.
func ChordKey(buttons []Button) string {
	names := make([]string, len(buttons))
	for i, b := range buttons {
		names[i] = string(b)
	}
	sort.Strings(names)
	return strings.Join(names, "+")
}
