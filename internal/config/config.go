// Package config loads engine settings and the active mapping profile from a
// config file and republishes them on change while the engine runs.
package config

import (
	"fmt"
	"time"

	"github.com/edaniels/golog"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/soar/padmap/internal/pad"
)

// file is the on-disk shape, decoded by viper. app_profiles overrides the
// default profile per foreground-application identity; the identity is an
// opaque string matched verbatim.
type file struct {
	Settings    settingsConfig           `mapstructure:"settings"`
	Profile     profileConfig            `mapstructure:"profile"`
	AppProfiles map[string]profileConfig `mapstructure:"app_profiles"`
}

type settingsConfig struct {
	ChordWindowMs      int                 `mapstructure:"chord_window_ms"`
	LongHoldMs         int                 `mapstructure:"long_hold_ms"`
	SampleRate         int                 `mapstructure:"sample_rate"`
	LeftStick          string              `mapstructure:"left_stick"`
	RightStick         string              `mapstructure:"right_stick"`
	FilterMinCutoff    float64             `mapstructure:"filter_min_cutoff"`
	FilterMaxCutoff    float64             `mapstructure:"filter_max_cutoff"`
	Deadzone           float64             `mapstructure:"deadzone"`
	AccelExponent      float64             `mapstructure:"accel_exponent"`
	PointerSpeed       float64             `mapstructure:"pointer_speed"`
	ScrollSpeed        float64             `mapstructure:"scroll_speed"`
	InvertY            bool                `mapstructure:"invert_y"`
	FocusModifiers     []string            `mapstructure:"focus_modifiers"`
	FocusMultiplier    float64             `mapstructure:"focus_multiplier"`
	FocusRamp          float64             `mapstructure:"focus_ramp"`
	FocusExitPauseMs   int                 `mapstructure:"focus_exit_pause_ms"`
	GyroDeadzone       float64             `mapstructure:"gyro_deadzone"`
	GyroScale          float64             `mapstructure:"gyro_scale"`
	TapThreshold       float64             `mapstructure:"tap_threshold"`
	TapMaxDurationMs   int                 `mapstructure:"tap_max_duration_ms"`
	DoubleTapWindowMs  int                 `mapstructure:"double_tap_window_ms"`
	ScrollBoostFactor  float64             `mapstructure:"scroll_boost_factor"`
	DirectionSectorDeg float64             `mapstructure:"direction_sector_deg"`
	DirectionDeadzone  float64             `mapstructure:"direction_deadzone"`
	ArrowKeys          directionKeysConfig `mapstructure:"arrow_keys"`
	WASDKeys           directionKeysConfig `mapstructure:"wasd_keys"`
	FlingVelocity      float64             `mapstructure:"fling_velocity"`
	FlingMinDurationMs int                 `mapstructure:"fling_min_duration_ms"`
	MomentumDecay      float64             `mapstructure:"momentum_decay"`
	MomentumFloor      float64             `mapstructure:"momentum_floor"`
	PinchThreshold     float64             `mapstructure:"pinch_threshold"`
	SwipeTrigger       string              `mapstructure:"swipe_trigger"`
	SwipeToggleAt      float64             `mapstructure:"swipe_toggle_at"`
	SwipePressAt       float64             `mapstructure:"swipe_press_at"`
	WheelAltModifiers  []string            `mapstructure:"wheel_alt_modifiers"`
}

type directionKeysConfig struct {
	Up    string `mapstructure:"up"`
	Down  string `mapstructure:"down"`
	Left  string `mapstructure:"left"`
	Right string `mapstructure:"right"`
}

type mappingConfig struct {
	Action     string         `mapstructure:"action"`
	Hold       bool           `mapstructure:"hold"`
	Layer      string         `mapstructure:"layer"`
	LongHold   *mappingConfig `mapstructure:"long_hold"`
	LongHoldMs int            `mapstructure:"long_hold_ms"`
}

type layerConfig struct {
	Activator string                   `mapstructure:"activator"`
	Buttons   map[string]mappingConfig `mapstructure:"buttons"`
	Chords    map[string]mappingConfig `mapstructure:"chords"`
}

type sequenceConfig struct {
	Steps         []string      `mapstructure:"steps"`
	StepTimeoutMs int           `mapstructure:"step_timeout_ms"`
	Action        mappingConfig `mapstructure:"action"`
}

type profileConfig struct {
	Name      string                    `mapstructure:"name"`
	Buttons   map[string]mappingConfig  `mapstructure:"buttons"`
	Chords    map[string]mappingConfig  `mapstructure:"chords"`
	Layers    map[string]layerConfig    `mapstructure:"layers"`
	Sequences map[string]sequenceConfig `mapstructure:"sequences"`
}

// Loader owns the viper instance for one config file.
type Loader struct {
	v      *viper.Viper
	logger golog.Logger
}

// NewLoader prepares a loader for the given file path.
func NewLoader(path string, logger golog.Logger) *Loader {
	v := viper.New()
	v.SetConfigFile(path)
	return &Loader{v: v, logger: logger}
}

// Load reads and validates the config file.
func (l *Loader) Load() (pad.Settings, *pad.ProfileSet, error) {
	if err := l.v.ReadInConfig(); err != nil {
		return pad.Settings{}, nil, fmt.Errorf("reading config: %w", err)
	}
	var f file
	if err := l.v.Unmarshal(&f); err != nil {
		return pad.Settings{}, nil, fmt.Errorf("decoding config: %w", err)
	}
	settings := buildSettings(f.Settings)
	def, err := buildProfile(f.Profile)
	if err != nil {
		return pad.Settings{}, nil, err
	}
	set := &pad.ProfileSet{Default: def}
	if len(f.AppProfiles) > 0 {
		set.ByApp = make(map[string]*pad.Profile, len(f.AppProfiles))
		for appID, pc := range f.AppProfiles {
			p, err := buildProfile(pc)
			if err != nil {
				return pad.Settings{}, nil, fmt.Errorf("app profile %q: %w", appID, err)
			}
			if p.Name == "" {
				p.Name = appID
			}
			set.ByApp[appID] = p
		}
	}
	return settings, set, nil
}

// Watch reloads on file change and hands the fresh snapshots to onChange.
// Decode errors keep the previous snapshots and are only logged.
func (l *Loader) Watch(onChange func(pad.Settings, *pad.ProfileSet)) {
	l.v.OnConfigChange(func(ev fsnotify.Event) {
		settings, profiles, err := l.Load()
		if err != nil {
			l.logger.Warnw("config reload failed", "file", ev.Name, "error", err)
			return
		}
		l.logger.Infow("config reloaded", "file", ev.Name)
		onChange(settings, profiles)
	})
	l.v.WatchConfig()
}

// buildSettings overlays the file on the defaults and clamps the values the
// engine is sensitive to.
func buildSettings(c settingsConfig) pad.Settings {
	s := pad.DefaultSettings()
	if c.ChordWindowMs > 0 {
		s.ChordWindow = clampDuration(time.Duration(c.ChordWindowMs)*time.Millisecond,
			20*time.Millisecond, 300*time.Millisecond)
	}
	if c.LongHoldMs > 0 {
		s.LongHoldDefault = clampDuration(time.Duration(c.LongHoldMs)*time.Millisecond,
			100*time.Millisecond, 5*time.Second)
	}
	if c.SampleRate > 0 {
		s.SampleRate = clampInt(c.SampleRate, 30, 480)
	}
	if r, ok := parseRole(c.LeftStick); ok {
		s.LeftStickRole = r
	}
	if r, ok := parseRole(c.RightStick); ok {
		s.RightStickRole = r
	}
	if c.Deadzone > 0 {
		s.Deadzone = clampFloat(c.Deadzone, 0.01, 0.9)
	}
	if c.AccelExponent > 0 {
		s.AccelExponent = clampFloat(c.AccelExponent, 0.5, 4)
	}
	if c.PointerSpeed > 0 {
		s.PointerSpeed = c.PointerSpeed
	}
	if c.ScrollSpeed > 0 {
		s.ScrollSpeed = c.ScrollSpeed
	}
	s.InvertY = c.InvertY
	if c.FilterMinCutoff > 0 {
		s.FilterMinCutoff = clampFloat(c.FilterMinCutoff, 0.1, 100)
	}
	if c.FilterMaxCutoff > 0 {
		s.FilterMaxCutoff = clampFloat(c.FilterMaxCutoff, 0.1, 100)
	}
	if s.FilterMaxCutoff < s.FilterMinCutoff {
		s.FilterMaxCutoff = s.FilterMinCutoff
	}
	if len(c.FocusModifiers) > 0 {
		s.FocusModifiers = toKeys(c.FocusModifiers)
	}
	if c.FocusMultiplier > 0 {
		s.FocusMultiplier = clampFloat(c.FocusMultiplier, 0.05, 1)
	}
	if c.FocusRamp > 0 {
		s.FocusRamp = clampFloat(c.FocusRamp, 1, 60)
	}
	if c.FocusExitPauseMs > 0 {
		s.FocusExitPause = clampDuration(time.Duration(c.FocusExitPauseMs)*time.Millisecond,
			10*time.Millisecond, time.Second)
	}
	if c.GyroDeadzone > 0 {
		s.GyroDeadzone = clampFloat(c.GyroDeadzone, 0.001, 0.5)
	}
	if c.GyroScale > 0 {
		s.GyroScale = c.GyroScale
	}
	if c.TapThreshold > 0 {
		s.TapThreshold = clampFloat(c.TapThreshold, 0.3, 1)
	}
	if c.TapMaxDurationMs > 0 {
		s.TapMaxDuration = clampDuration(time.Duration(c.TapMaxDurationMs)*time.Millisecond,
			50*time.Millisecond, 500*time.Millisecond)
	}
	if c.DoubleTapWindowMs > 0 {
		s.DoubleTapWindow = clampDuration(time.Duration(c.DoubleTapWindowMs)*time.Millisecond,
			100*time.Millisecond, time.Second)
	}
	if c.ScrollBoostFactor > 0 {
		s.ScrollBoostFactor = clampFloat(c.ScrollBoostFactor, 1, 10)
	}
	if c.DirectionSectorDeg > 0 {
		s.DirectionSectorDeg = clampFloat(c.DirectionSectorDeg, 45, 90)
	}
	if c.DirectionDeadzone > 0 {
		s.DirectionDeadzone = clampFloat(c.DirectionDeadzone, 0.1, 0.95)
	}
	s.ArrowKeys = mergeDirectionKeys(s.ArrowKeys, c.ArrowKeys)
	s.WASDKeys = mergeDirectionKeys(s.WASDKeys, c.WASDKeys)
	if c.FlingVelocity > 0 {
		s.FlingVelocity = c.FlingVelocity
	}
	if c.FlingMinDurationMs > 0 {
		s.FlingMinDuration = clampDuration(time.Duration(c.FlingMinDurationMs)*time.Millisecond,
			10*time.Millisecond, 500*time.Millisecond)
	}
	if c.MomentumDecay > 0 {
		s.MomentumDecay = clampFloat(c.MomentumDecay, 0.5, 20)
	}
	if c.MomentumFloor > 0 {
		s.MomentumFloor = c.MomentumFloor
	}
	if c.PinchThreshold > 0 {
		s.PinchThreshold = c.PinchThreshold
	}
	if t, ok := parseSwipeTrigger(c.SwipeTrigger); ok {
		s.SwipeTrigger = t
	}
	if c.SwipeToggleAt > 0 {
		s.SwipeToggleAt = clampFloat(c.SwipeToggleAt, 0.5, 1)
	}
	if c.SwipePressAt > 0 {
		s.SwipePressAt = clampFloat(c.SwipePressAt, 0.05, s.SwipeToggleAt)
	}
	if len(c.WheelAltModifiers) > 0 {
		s.WheelAltModifiers = toKeys(c.WheelAltModifiers)
	}
	return s
}

func buildProfile(c profileConfig) (*pad.Profile, error) {
	p := &pad.Profile{
		Name:    c.Name,
		Buttons: make(map[pad.Button]*pad.Mapping),
		Chords:  make(map[string]*pad.Mapping),
		Layers:  make(map[string]*pad.Layer),
	}
	for name, mc := range c.Buttons {
		b, err := parseButton(name)
		if err != nil {
			return nil, err
		}
		p.Buttons[b] = buildMapping(fmt.Sprintf("button:%s", name), mc)
	}
	for combo, mc := range c.Chords {
		key, err := parseChord(combo)
		if err != nil {
			return nil, err
		}
		p.Chords[key] = buildMapping(fmt.Sprintf("chord:%s", key), mc)
	}
	for id, lc := range c.Layers {
		layer := &pad.Layer{
			ID:      id,
			Buttons: make(map[pad.Button]*pad.Mapping),
			Chords:  make(map[string]*pad.Mapping),
		}
		if lc.Activator != "" {
			b, err := parseButton(lc.Activator)
			if err != nil {
				return nil, err
			}
			layer.Activator = b
		}
		for name, mc := range lc.Buttons {
			b, err := parseButton(name)
			if err != nil {
				return nil, err
			}
			layer.Buttons[b] = buildMapping(fmt.Sprintf("layer:%s:%s", id, name), mc)
		}
		for combo, mc := range lc.Chords {
			key, err := parseChord(combo)
			if err != nil {
				return nil, err
			}
			layer.Chords[key] = buildMapping(fmt.Sprintf("layer:%s:chord:%s", id, key), mc)
		}
		p.Layers[id] = layer
	}
	for id, sc := range c.Sequences {
		steps := make([]pad.Button, 0, len(sc.Steps))
		for _, name := range sc.Steps {
			b, err := parseButton(name)
			if err != nil {
				return nil, err
			}
			steps = append(steps, b)
		}
		if len(steps) < 2 {
			return nil, fmt.Errorf("sequence %q needs at least two steps", id)
		}
		timeout := 2 * time.Second
		if sc.StepTimeoutMs > 0 {
			timeout = time.Duration(sc.StepTimeoutMs) * time.Millisecond
		}
		action := buildMapping(fmt.Sprintf("sequence:%s", id), sc.Action)
		p.Sequences = append(p.Sequences, &pad.Sequence{
			ID:          id,
			Steps:       steps,
			StepTimeout: timeout,
			Action:      action,
		})
	}
	for id, layer := range p.Layers {
		if layer.Activator == "" {
			continue
		}
		if !pushesLayer(p, layer.Activator, id) {
			return nil, fmt.Errorf("layer %q: activator %q has no mapping that pushes the layer", id, layer.Activator)
		}
	}
	return p, nil
}

// pushesLayer reports whether holding b anywhere in the profile pushes the
// named layer. Activators reachable only from inside another layer count too.
func pushesLayer(p *pad.Profile, b pad.Button, id string) bool {
	if m, ok := p.Buttons[b]; ok && m.Layer == id {
		return true
	}
	for _, l := range p.Layers {
		if m, ok := l.Buttons[b]; ok && m.Layer == id {
			return true
		}
	}
	return false
}

func buildMapping(id string, c mappingConfig) *pad.Mapping {
	if c.Action != "" {
		id = c.Action
	}
	m := &pad.Mapping{
		ID:    id,
		Hold:  c.Hold,
		Layer: c.Layer,
	}
	if c.LongHold != nil {
		m.LongHold = buildMapping(id+":long", *c.LongHold)
		if c.LongHoldMs > 0 {
			m.LongHoldAfter = time.Duration(c.LongHoldMs) * time.Millisecond
		}
	}
	return m
}
