package source

import (
	"math"

	"github.com/soar/padmap/internal/pad"
)

// axisTarget identifies where a raw axis lands in the snapshot.
type axisTarget int

const (
	axisLeftX axisTarget = iota
	axisLeftY
	axisRightX
	axisRightY
	axisLT
	axisRT
)

// AxisMapping defines how a raw axis index maps to a snapshot field.
type AxisMapping struct {
	Index     int32
	Target    axisTarget
	IsTrigger bool
	Invert    bool
	// For triggers: raw range. Some devices use -32768..32767, others 0..32767.
	RawMin int16
	RawMax int16
}

// ButtonMapping defines how a raw button index maps to a pad button.
type ButtonMapping struct {
	Index  int32
	Target pad.Button
}

// DeviceMapping holds the complete mapping for a specific device type.
type DeviceMapping struct {
	Name    string
	Axes    []AxisMapping
	Buttons []ButtonMapping
	HasHat  bool
}

// NormalizeAxis converts a raw axis value (-32768..32767) to -1.0..1.0.
func NormalizeAxis(raw int16) float64 {
	v := float64(raw) / math.MaxInt16
	if v < -1.0 {
		v = -1.0
	}
	return v
}

// NormalizeTrigger converts a raw trigger value to 0.0..1.0.
func NormalizeTrigger(raw int16, rawMin, rawMax int16) float64 {
	if rawMax == rawMin {
		return 0
	}
	v := float64(raw-rawMin) / float64(rawMax-rawMin)
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	return v
}

// Built-in mappings for common controllers. Stick Y axes are inverted so the
// snapshot convention is +Y up.

var xboxMapping = &DeviceMapping{
	Name: "xbox",
	Axes: []AxisMapping{
		{Index: 0, Target: axisLeftX},
		{Index: 1, Target: axisLeftY, Invert: true},
		{Index: 2, Target: axisRightX},
		{Index: 3, Target: axisRightY, Invert: true},
		{Index: 4, Target: axisLT, IsTrigger: true, RawMin: -32768, RawMax: 32767},
		{Index: 5, Target: axisRT, IsTrigger: true, RawMin: -32768, RawMax: 32767},
	},
	Buttons: []ButtonMapping{
		{Index: 0, Target: pad.ButtonA},
		{Index: 1, Target: pad.ButtonB},
		{Index: 2, Target: pad.ButtonX},
		{Index: 3, Target: pad.ButtonY},
		{Index: 4, Target: pad.ButtonLB},
		{Index: 5, Target: pad.ButtonRB},
		{Index: 6, Target: pad.ButtonView},
		{Index: 7, Target: pad.ButtonMenu},
		{Index: 8, Target: pad.ButtonLThumb},
		{Index: 9, Target: pad.ButtonRThumb},
		{Index: 10, Target: pad.ButtonGuide},
		{Index: 11, Target: pad.ButtonShare},
	},
	HasHat: true,
}

var playstationMapping = &DeviceMapping{
	Name: "playstation",
	Axes: []AxisMapping{
		{Index: 0, Target: axisLeftX},
		{Index: 1, Target: axisLeftY, Invert: true},
		{Index: 2, Target: axisRightX},
		{Index: 3, Target: axisRightY, Invert: true},
		{Index: 4, Target: axisLT, IsTrigger: true, RawMin: -32768, RawMax: 32767},
		{Index: 5, Target: axisRT, IsTrigger: true, RawMin: -32768, RawMax: 32767},
	},
	Buttons: []ButtonMapping{
		{Index: 0, Target: pad.ButtonA},      // Cross
		{Index: 1, Target: pad.ButtonB},      // Circle
		{Index: 2, Target: pad.ButtonX},      // Square
		{Index: 3, Target: pad.ButtonY},      // Triangle
		{Index: 4, Target: pad.ButtonShare},  // Share / Create
		{Index: 5, Target: pad.ButtonGuide},  // PS button
		{Index: 6, Target: pad.ButtonMenu},   // Options
		{Index: 7, Target: pad.ButtonLThumb},
		{Index: 8, Target: pad.ButtonRThumb},
		{Index: 9, Target: pad.ButtonLB},  // L1
		{Index: 10, Target: pad.ButtonRB}, // R1
	},
	HasHat: true,
}

var switchProMapping = &DeviceMapping{
	Name: "switch_pro",
	Axes: []AxisMapping{
		{Index: 0, Target: axisLeftX},
		{Index: 1, Target: axisLeftY, Invert: true},
		{Index: 2, Target: axisRightX},
		{Index: 3, Target: axisRightY, Invert: true},
	},
	Buttons: []ButtonMapping{
		{Index: 0, Target: pad.ButtonA},
		{Index: 1, Target: pad.ButtonB},
		{Index: 2, Target: pad.ButtonX},
		{Index: 3, Target: pad.ButtonY},
		{Index: 4, Target: pad.ButtonLB},
		{Index: 5, Target: pad.ButtonRB},
		{Index: 6, Target: pad.ButtonView},
		{Index: 7, Target: pad.ButtonMenu},
		{Index: 8, Target: pad.ButtonLThumb},
		{Index: 9, Target: pad.ButtonRThumb},
		{Index: 10, Target: pad.ButtonGuide},
	},
	HasHat: true,
}

var genericMapping = &DeviceMapping{
	Name: "generic",
	Axes: []AxisMapping{
		{Index: 0, Target: axisLeftX},
		{Index: 1, Target: axisLeftY, Invert: true},
		{Index: 2, Target: axisRightX},
		{Index: 3, Target: axisRightY, Invert: true},
		{Index: 4, Target: axisLT, IsTrigger: true, RawMin: -32768, RawMax: 32767},
		{Index: 5, Target: axisRT, IsTrigger: true, RawMin: -32768, RawMax: 32767},
	},
	Buttons: []ButtonMapping{
		{Index: 0, Target: pad.ButtonA},
		{Index: 1, Target: pad.ButtonB},
		{Index: 2, Target: pad.ButtonX},
		{Index: 3, Target: pad.ButtonY},
		{Index: 4, Target: pad.ButtonLB},
		{Index: 5, Target: pad.ButtonRB},
		{Index: 6, Target: pad.ButtonView},
		{Index: 7, Target: pad.ButtonMenu},
		{Index: 8, Target: pad.ButtonLThumb},
		{Index: 9, Target: pad.ButtonRThumb},
		{Index: 10, Target: pad.ButtonGuide},
	},
	HasHat: true,
}

// Known vendor/product IDs.
type deviceKey struct {
	VendorID  uint16
	ProductID uint16
}

var knownDevices = map[deviceKey]*DeviceMapping{
	// Microsoft Xbox controllers
	{0x045E, 0x028E}: xboxMapping, // Xbox 360
	{0x045E, 0x02FF}: xboxMapping, // Xbox One
	{0x045E, 0x0B12}: xboxMapping, // Xbox Series X|S
	{0x045E, 0x0B13}: xboxMapping, // Xbox Series X|S (wireless)
	// Sony PlayStation controllers
	{0x054C, 0x0CE6}: playstationMapping, // DualSense
	{0x054C, 0x09CC}: playstationMapping, // DualShock 4 v2
	{0x054C, 0x05C4}: playstationMapping, // DualShock 4 v1
	// Nintendo Switch Pro Controller
	{0x057E, 0x2009}: switchProMapping,
}

// GetMapping returns the appropriate mapping for a device identified by
// vendor/product ID, falling back to the generic mapping.
func GetMapping(vendorID, productID uint16) *DeviceMapping {
	key := deviceKey{VendorID: vendorID, ProductID: productID}
	if m, ok := knownDevices[key]; ok {
		return m
	}
	return genericMapping
}
