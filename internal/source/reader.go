package source

import (
	"context"
	"runtime"
	"sync"

	"github.com/edaniels/golog"
	"github.com/jupiterrider/purego-sdl3/sdl"

	"github.com/soar/padmap/internal/pad"
)

const (
	pollDelayNS = 4_000_000 // ~250 Hz; button latency feeds chord windows

	// Trigger pressures at which LT/RT count as button transitions, with
	// hysteresis so a pressure riding the threshold does not chatter.
	triggerPressOn  = 0.30
	triggerPressOff = 0.20

	hatUp    uint8 = 0x01
	hatRight uint8 = 0x02
	hatDown  uint8 = 0x04
	hatLeft  uint8 = 0x08
)

type joystickInfo struct {
	joystick *sdl.Joystick
	mapping  *DeviceMapping
	name     string
	id       sdl.JoystickID
}

// Reader reads controller input from the SDL3 Joystick API, emits button
// transitions to the Events sink, and keeps an axis snapshot for the engine
// sampler. It satisfies engine.InputSource.
type Reader struct {
	axes      axes
	events    Events
	logger    golog.Logger
	joysticks map[sdl.JoystickID]*joystickInfo
	activeID  sdl.JoystickID // the first connected joystick
	hasActive bool

	// down mirrors the transitions already reported to the sink; only set
	// differences emit events. Touched only from the polling thread.
	down map[pad.Button]bool

	closeOnce sync.Once
}

// NewReader creates a reader delivering transitions to events.
func NewReader(events Events, logger golog.Logger) *Reader {
	return &Reader{
		events:    events,
		logger:    logger,
		joysticks: make(map[sdl.JoystickID]*joystickInfo),
		down:      make(map[pad.Button]bool),
	}
}

// Sticks implements engine.InputSource.
func (r *Reader) Sticks() (left, right pad.Vector) {
	s := r.axes.load()
	return s.left, s.right
}

// Triggers implements engine.InputSource.
func (r *Reader) Triggers() (lt, rt float64) {
	s := r.axes.load()
	return s.lt, s.rt
}

// Motion implements engine.InputSource. The SDL joystick API exposes no
// motion sensor, so gyro aiming is unavailable through this reader.
func (r *Reader) Motion() (pitch, roll float64, ok bool) {
	return 0, 0, false
}

// Touchpad implements engine.InputSource. No touchpad through this reader.
func (r *Reader) Touchpad() (pad.TouchSample, bool) {
	return pad.TouchSample{}, false
}

// Run initializes SDL and runs the event+polling loop on the current thread.
// Must be called from a goroutine with the OS thread locked for SDL.
func (r *Reader) Run(ctx context.Context) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if !sdl.Init(sdl.InitJoystick) {
		r.logger.Errorw("SDL init failed", "error", sdl.GetError())
		return
	}
	defer sdl.Quit()

	r.logger.Info("SDL3 joystick subsystem initialized")

	for _, id := range sdl.GetJoysticks() {
		r.openJoystick(id)
	}

	for {
		select {
		case <-ctx.Done():
			r.closeAll()
			return
		default:
		}

		r.processEvents()
		r.pollState()
		sdl.DelayNS(pollDelayNS)
	}
}

func (r *Reader) processEvents() {
	var event sdl.Event
	for sdl.PollEvent(&event) {
		switch event.Type() {
		case sdl.EventJoystickAdded:
			r.openJoystick(event.JDevice().Which)
		case sdl.EventJoystickRemoved:
			r.removeJoystick(event.JDevice().Which)
		}
	}
}

func (r *Reader) openJoystick(instanceID sdl.JoystickID) {
	if _, exists := r.joysticks[instanceID]; exists {
		return
	}

	js := sdl.OpenJoystick(instanceID)
	if js == nil {
		r.logger.Warnw("failed to open joystick", "id", instanceID, "error", sdl.GetError())
		return
	}

	jsID := sdl.GetJoystickID(js)
	vendorID := sdl.GetJoystickVendor(js)
	productID := sdl.GetJoystickProduct(js)
	name := sdl.GetJoystickName(js)
	mapping := GetMapping(vendorID, productID)

	r.joysticks[jsID] = &joystickInfo{
		joystick: js,
		mapping:  mapping,
		name:     name,
		id:       jsID,
	}

	r.logger.Infow("controller connected",
		"name", name, "vendor", vendorID, "product", productID, "mapping", mapping.Name)

	// The first connected controller drives the engine.
	if !r.hasActive {
		r.activeID = jsID
		r.hasActive = true
		r.events.Connected(name)
	}
}

func (r *Reader) removeJoystick(instanceID sdl.JoystickID) {
	info, exists := r.joysticks[instanceID]
	if !exists {
		return
	}

	r.logger.Infow("controller disconnected", "name", info.name)
	sdl.CloseJoystick(info.joystick)
	delete(r.joysticks, instanceID)

	if !r.hasActive || r.activeID != instanceID {
		return
	}
	r.hasActive = false
	r.dropState()

	// Promote the next available controller.
	for id, js := range r.joysticks {
		if sdl.JoystickConnected(js.joystick) {
			r.activeID = id
			r.hasActive = true
			r.logger.Infow("active controller switched", "name", js.name)
			r.events.Connected(js.name)
			break
		}
	}
	if !r.hasActive {
		r.events.Disconnected()
	}
}

// dropState zeroes the snapshot and forgets reported button state. The
// engine's own reset re-issues key-ups for anything it synthesized.
func (r *Reader) dropState() {
	r.axes.store(snapshot{})
	r.down = make(map[pad.Button]bool)
}

func (r *Reader) closeAll() {
	r.closeOnce.Do(func() {
		for id, info := range r.joysticks {
			sdl.CloseJoystick(info.joystick)
			delete(r.joysticks, id)
		}
	})
}

func (r *Reader) pollState() {
	if !r.hasActive {
		return
	}
	info, exists := r.joysticks[r.activeID]
	if !exists || !sdl.JoystickConnected(info.joystick) {
		return
	}

	js := info.joystick
	mapping := info.mapping
	var snap snapshot

	for _, am := range mapping.Axes {
		raw := sdl.GetJoystickAxis(js, am.Index)
		if am.IsTrigger {
			val := NormalizeTrigger(raw, am.RawMin, am.RawMax)
			switch am.Target {
			case axisLT:
				snap.lt = val
			case axisRT:
				snap.rt = val
			}
			continue
		}
		val := NormalizeAxis(raw)
		if am.Invert {
			val = -val
		}
		switch am.Target {
		case axisLeftX:
			snap.left.X = val
		case axisLeftY:
			snap.left.Y = val
		case axisRightX:
			snap.right.X = val
		case axisRightY:
			snap.right.Y = val
		}
	}

	pressed := make(map[pad.Button]bool, len(mapping.Buttons)+6)
	numButtons := sdl.GetNumJoystickButtons(js)
	for _, bm := range mapping.Buttons {
		if bm.Index >= numButtons {
			continue
		}
		pressed[bm.Target] = sdl.GetJoystickButton(js, bm.Index)
	}

	if mapping.HasHat && sdl.GetNumJoystickHats(js) > 0 {
		hat := sdl.GetJoystickHat(js, 0)
		pressed[pad.DpadUp] = hat&hatUp != 0
		pressed[pad.DpadRight] = hat&hatRight != 0
		pressed[pad.DpadDown] = hat&hatDown != 0
		pressed[pad.DpadLeft] = hat&hatLeft != 0
	}

	// Triggers become buttons at the press threshold, with hysteresis.
	pressed[pad.ButtonLT] = triggerButton(r.down[pad.ButtonLT], snap.lt)
	pressed[pad.ButtonRT] = triggerButton(r.down[pad.ButtonRT], snap.rt)

	r.axes.store(snap)
	r.emitTransitions(pressed)
}

func triggerButton(wasDown bool, pressure float64) bool {
	if wasDown {
		return pressure > triggerPressOff
	}
	return pressure >= triggerPressOn
}

// emitTransitions reports only set differences, never redundant transitions.
func (r *Reader) emitTransitions(pressed map[pad.Button]bool) {
	for b, isDown := range pressed {
		if isDown && !r.down[b] {
			r.down[b] = true
			r.events.ButtonDown(b)
		} else if !isDown && r.down[b] {
			delete(r.down, b)
			r.events.ButtonUp(b)
		}
	}
}
