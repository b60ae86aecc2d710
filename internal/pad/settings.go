package pad

import "time"

// StickRole selects what a stick drives.
type StickRole string

const (
	RolePointer StickRole = "pointer"
	RoleScroll  StickRole = "scroll"
	RoleArrows  StickRole = "arrows"
	RoleWASD    StickRole = "wasd"
	RoleOff     StickRole = "off"
)

// DirectionKeys binds the four emulated direction keys.
type DirectionKeys struct {
	Up    Key
	Down  Key
	Left  Key
	Right Key
}

// Settings holds every tunable the engine consumes. Snapshots are published
// into the engine whole; individual fields are never mutated in place.
type Settings struct {
	// Classifier timing.
	ChordWindow     time.Duration
	LongHoldDefault time.Duration

	// Sampler cadence.
	SampleRate int // ticks per second

	// Stick roles.
	LeftStickRole  StickRole
	RightStickRole StickRole

	// Smoothing filter: cutoff interpolates between these frequencies (Hz)
	// as deflection magnitude goes 0..1.
	FilterMinCutoff float64
	FilterMaxCutoff float64

	// Pointer path.
	Deadzone      float64
	AccelExponent float64
	PointerSpeed  float64 // output units per second at full deflection
	InvertY       bool

	// Focus (precision) mode.
	FocusModifiers  []Key
	FocusMultiplier float64
	FocusRamp       float64 // per-second EMA rate toward the target multiplier
	FocusExitPause  time.Duration

	// Gyro aiming, layered on the pointer path while focus mode is active.
	GyroDeadzone float64 // rad/s, per axis
	GyroScale    float64

	// Scroll path.
	ScrollSpeed        float64
	TapThreshold       float64 // peak magnitude that counts as a stick tap
	TapMaxDuration     time.Duration
	DoubleTapWindow    time.Duration
	ScrollBoostFactor  float64
	DirectionSectorDeg float64 // half-width of each direction-key sector
	DirectionDeadzone  float64
	ArrowKeys          DirectionKeys
	WASDKeys           DirectionKeys

	// Touchpad gestures.
	FlingVelocity    float64 // units/s pan velocity that qualifies a fling
	FlingMinDuration time.Duration
	MomentumDecay    float64 // 1/s exponential decay rate
	MomentumFloor    float64 // velocity below which momentum stops
	PinchThreshold   float64

	// Swipe typing. The left stick drives the swipe cursor while active.
	SwipeTrigger  Button  // analog input whose pressure toggles swipe mode
	SwipeToggleAt float64 // pressure that toggles the mode on a rising edge
	SwipePressAt  float64 // pressure that begins/ends a swipe stroke

	// Command wheel.
	WheelAltModifiers []Key
}

// DefaultSettings returns the stock tuning. The chord window is deliberately
// between the two values seen in the wild (50 and 150 ms) and is plain
// configuration, not a constant.
func DefaultSettings() Settings {
	return Settings{
		ChordWindow:     80 * time.Millisecond,
		LongHoldDefault: 500 * time.Millisecond,

		SampleRate: 120,

		LeftStickRole:  RolePointer,
		RightStickRole: RoleScroll,

		FilterMinCutoff: 1.0,
		FilterMaxCutoff: 20.0,

		Deadzone:      0.12,
		AccelExponent: 1.6,
		PointerSpeed:  900,
		InvertY:       false,

		FocusMultiplier: 0.25,
		FocusRamp:       10,
		FocusExitPause:  120 * time.Millisecond,

		GyroDeadzone: 0.02,
		GyroScale:    220,

		ScrollSpeed:        220,
		TapThreshold:       0.8,
		TapMaxDuration:     180 * time.Millisecond,
		DoubleTapWindow:    350 * time.Millisecond,
		ScrollBoostFactor:  3.0,
		DirectionSectorDeg: 67.5,
		DirectionDeadzone:  0.5,
		ArrowKeys:          DirectionKeys{Up: "up", Down: "down", Left: "left", Right: "right"},
		WASDKeys:           DirectionKeys{Up: "w", Down: "s", Left: "a", Right: "d"},

		FlingVelocity:    2.5,
		FlingMinDuration: 60 * time.Millisecond,
		MomentumDecay:    4.0,
		MomentumFloor:    0.05,
		PinchThreshold:   0.04,

		SwipeTrigger:  ButtonLT,
		SwipeToggleAt: 0.85,
		SwipePressAt:  0.35,
	}
}

// Interval returns the sampler tick period.
func (s Settings) Interval() time.Duration {
	if s.SampleRate <= 0 {
		return 0
	}
	return time.Second / time.Duration(s.SampleRate)
}
