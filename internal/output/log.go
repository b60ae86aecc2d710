package output

import (
	"github.com/edaniels/golog"

	"github.com/soar/padmap/internal/pad"
)

// LogExecutor logs every dispatched action instead of synthesizing events.
// It is the default executor when no platform synthesizer is wired, and
// doubles as documentation of the call contract.
type LogExecutor struct {
	logger golog.Logger
}

// NewLogExecutor returns an executor that logs at debug level.
func NewLogExecutor(logger golog.Logger) *LogExecutor {
	return &LogExecutor{logger: logger}
}

func (l *LogExecutor) ExecuteMapping(m *pad.Mapping) {
	l.logger.Debugw("execute", "mapping", m.ID)
}

func (l *LogExecutor) StartHold(m *pad.Mapping) {
	l.logger.Debugw("start hold", "mapping", m.ID)
}

func (l *LogExecutor) StopHold(m *pad.Mapping) {
	l.logger.Debugw("stop hold", "mapping", m.ID)
}

func (l *LogExecutor) MoveMouse(dx, dy float64) {
	l.logger.Debugw("move mouse", "dx", dx, "dy", dy)
}

func (l *LogExecutor) Scroll(dx, dy float64) {
	l.logger.Debugw("scroll", "dx", dx, "dy", dy)
}

func (l *LogExecutor) Zoom(delta float64) {
	l.logger.Debugw("zoom", "delta", delta)
}

func (l *LogExecutor) KeyDown(k pad.Key) {
	l.logger.Debugw("key down", "key", k)
}

func (l *LogExecutor) KeyUp(k pad.Key) {
	l.logger.Debugw("key up", "key", k)
}

// ModifiersHeld always reports false: a log-only executor holds no keys.
func (l *LogExecutor) ModifiersHeld(combo []pad.Key) bool {
	return false
}

// NopHaptics discards pulses.
type NopHaptics struct{}

func (NopHaptics) Pulse(float64) {}
