package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/soar/padmap/internal/pad"
)

var buttonNames = func() map[string]pad.Button {
	m := make(map[string]pad.Button, len(pad.Buttons))
	for _, b := range pad.Buttons {
		m[string(b)] = b
	}
	return m
}()

func parseButton(name string) (pad.Button, error) {
	b, ok := buttonNames[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return "", fmt.Errorf("unknown button %q", name)
	}
	return b, nil
}

// parseChord turns "lb+a" into a canonical chord key.
func parseChord(combo string) (string, error) {
	parts := strings.Split(combo, "+")
	if len(parts) < 2 {
		return "", fmt.Errorf("chord %q needs at least two buttons", combo)
	}
	buttons := make([]pad.Button, 0, len(parts))
	for _, part := range parts {
		b, err := parseButton(part)
		if err != nil {
			return "", fmt.Errorf("chord %q: %w", combo, err)
		}
		buttons = append(buttons, b)
	}
	return pad.ChordKey(buttons), nil
}

func parseRole(name string) (pad.StickRole, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case string(pad.RolePointer):
		return pad.RolePointer, true
	case string(pad.RoleScroll):
		return pad.RoleScroll, true
	case string(pad.RoleArrows):
		return pad.RoleArrows, true
	case string(pad.RoleWASD):
		return pad.RoleWASD, true
	case string(pad.RoleOff):
		return pad.RoleOff, true
	}
	return "", false
}

// mergeDirectionKeys overlays the configured bindings on the defaults; keys
// left empty keep their default.
func mergeDirectionKeys(base pad.DirectionKeys, c directionKeysConfig) pad.DirectionKeys {
	if c.Up != "" {
		base.Up = pad.Key(strings.ToLower(strings.TrimSpace(c.Up)))
	}
	if c.Down != "" {
		base.Down = pad.Key(strings.ToLower(strings.TrimSpace(c.Down)))
	}
	if c.Left != "" {
		base.Left = pad.Key(strings.ToLower(strings.TrimSpace(c.Left)))
	}
	if c.Right != "" {
		base.Right = pad.Key(strings.ToLower(strings.TrimSpace(c.Right)))
	}
	return base
}

func parseSwipeTrigger(name string) (pad.Button, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case string(pad.ButtonLT):
		return pad.ButtonLT, true
	case string(pad.ButtonRT):
		return pad.ButtonRT, true
	}
	return "", false
}

func toKeys(names []string) []pad.Key {
	keys := make([]pad.Key, 0, len(names))
	for _, n := range names {
		keys = append(keys, pad.Key(strings.ToLower(strings.TrimSpace(n))))
	}
	return keys
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampDuration(v, lo, hi time.Duration) time.Duration {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
