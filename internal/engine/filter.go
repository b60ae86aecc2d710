package engine

import (
	"math"

	"github.com/soar/padmap/internal/pad"
)

// stickFilter is a one-pole low-pass whose cutoff rises with deflection
// magnitude: snappy at the rim, smooth near center.
type stickFilter struct {
	pos    pad.Vector
	primed bool
}

func (f *stickFilter) apply(raw pad.Vector, dt float64, s pad.Settings) pad.Vector {
	if !f.primed {
		f.pos = raw
		f.primed = true
		return f.pos
	}
	mag := clamp01(math.Hypot(raw.X, raw.Y))
	cutoff := s.FilterMinCutoff + (s.FilterMaxCutoff-s.FilterMinCutoff)*mag
	a := onePoleAlpha(cutoff, dt)
	f.pos.X += a * (raw.X - f.pos.X)
	f.pos.Y += a * (raw.Y - f.pos.Y)
	return f.pos
}

// onePoleAlpha converts a cutoff frequency and a real elapsed dt into the
// filter coefficient: alpha = 1 - exp(-2π·cutoff·dt).
func onePoleAlpha(cutoff, dt float64) float64 {
	if cutoff <= 0 || dt <= 0 {
		return 1
	}
	return 1 - math.Exp(-2*math.Pi*cutoff*dt)
}

// deadzoneNorm rescales a deflection magnitude so the deadzone edge maps to 0
// and full deflection to 1.
func deadzoneNorm(mag, deadzone float64) float64 {
	if mag <= deadzone {
		return 0
	}
	if deadzone >= 1 {
		return 0
	}
	return clamp01((mag - deadzone) / (1 - deadzone))
}

// accelCurve applies the power-curve acceleration to a normalized magnitude.
func accelCurve(norm, exponent float64) float64 {
	if norm <= 0 {
		return 0
	}
	if exponent <= 0 {
		return norm
	}
	return math.Pow(norm, exponent)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func sign(v float64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
