package source

import (
	"math"

	"github.com/soar/padsignal/internal/gamepad"
)

const (
	hatUp    uint8 = 0x01
	hatRight uint8 = 0x02
	hatDown  uint8 = 0x04
	hatLeft  uint8 = 0x08
)

// AxisMapping defines how a raw axis index maps to a snapshot axis, or to a
// trigger button when IsTrigger is set.
type AxisMapping struct {
	Index     int32
	Axis      int // gamepad.AxisLeftX .. gamepad.AxisRightY
	IsTrigger bool
	Trigger   gamepad.ButtonID // LT or RT
	// For triggers: raw range. Some devices use -32768..32767, others 0..32767.
	RawMin int16
	RawMax int16
}

// ButtonMapping defines how a raw button index maps to a gamepad button.
type ButtonMapping struct {
	Index  int32
	Target gamepad.ButtonID
}

// DeviceMapping holds the complete mapping for a specific device type.
type DeviceMapping struct {
	Name    string
	Axes    []AxisMapping
	Buttons []ButtonMapping
	// HasHat reads the d-pad from hat 0.
	HasHat bool
	// HatAxes, when set, reads the d-pad from an x/y axis pair instead.
	HatAxes []int32
}

// RawDevice is the raw view of a joystick that a mapping reads from.
type RawDevice interface {
	NumButtons() int32
	Button(index int32) bool
	Axis(index int32) int16
	// Hat returns hat 0 and whether the device has one.
	Hat() (uint8, bool)
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
	v := (float64(raw) - float64(rawMin)) / (float64(rawMax) - float64(rawMin))
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	return v
}

// Read builds a snapshot from the device. Analog triggers count as pressed
// above triggerThreshold.
func (m *DeviceMapping) Read(d RawDevice, triggerThreshold float64) gamepad.Snapshot {
	var snap gamepad.Snapshot

	for _, am := range m.Axes {
		raw := d.Axis(am.Index)
		if am.IsTrigger {
			if NormalizeTrigger(raw, am.RawMin, am.RawMax) > triggerThreshold {
				snap.Buttons[am.Trigger] = true
			}
			continue
		}
		if am.Axis >= 0 && am.Axis < gamepad.AxisCount {
			snap.Axes[am.Axis] = NormalizeAxis(raw)
		}
	}

	numButtons := d.NumButtons()
	for _, bm := range m.Buttons {
		if bm.Index >= numButtons {
			continue
		}
		if d.Button(bm.Index) {
			snap.Buttons[bm.Target] = true
		}
	}

	switch {
	case len(m.HatAxes) == 2:
		x, y := d.Axis(m.HatAxes[0]), d.Axis(m.HatAxes[1])
		snap.Buttons[gamepad.Left] = x < 0
		snap.Buttons[gamepad.Right] = x > 0
		snap.Buttons[gamepad.Up] = y < 0
		snap.Buttons[gamepad.Down] = y > 0
	case m.HasHat:
		if hat, ok := d.Hat(); ok {
			snap.Buttons[gamepad.Up] = hat&hatUp != 0
			snap.Buttons[gamepad.Right] = hat&hatRight != 0
			snap.Buttons[gamepad.Down] = hat&hatDown != 0
			snap.Buttons[gamepad.Left] = hat&hatLeft != 0
		}
	}

	return snap
}

// Built-in mappings for common controllers.

var sticks = []AxisMapping{
	{Index: 0, Axis: gamepad.AxisLeftX},
	{Index: 1, Axis: gamepad.AxisLeftY},
	{Index: 2, Axis: gamepad.AxisRightX},
	{Index: 3, Axis: gamepad.AxisRightY},
}

var analogTriggers = []AxisMapping{
	{Index: 4, IsTrigger: true, Trigger: gamepad.LT, RawMin: -32768, RawMax: 32767},
	{Index: 5, IsTrigger: true, Trigger: gamepad.RT, RawMin: -32768, RawMax: 32767},
}

var xboxMapping = &DeviceMapping{
	Name: "xbox",
	Axes: append(append([]AxisMapping{}, sticks...), analogTriggers...),
	Buttons: []ButtonMapping{
		{Index: 0, Target: gamepad.A},
		{Index: 1, Target: gamepad.B},
		{Index: 2, Target: gamepad.X},
		{Index: 3, Target: gamepad.Y},
		{Index: 4, Target: gamepad.LB},
		{Index: 5, Target: gamepad.RB},
		{Index: 6, Target: gamepad.Back},
		{Index: 7, Target: gamepad.Start},
		{Index: 8, Target: gamepad.L3},
		{Index: 9, Target: gamepad.R3},
		{Index: 10, Target: gamepad.Center},
	},
	HasHat: true,
}

var playstationMapping = &DeviceMapping{
	Name: "playstation",
	Axes: append(append([]AxisMapping{}, sticks...), analogTriggers...),
	Buttons: []ButtonMapping{
		{Index: 0, Target: gamepad.A},      // Cross
		{Index: 1, Target: gamepad.B},      // Circle
		{Index: 2, Target: gamepad.X},      // Square
		{Index: 3, Target: gamepad.Y},      // Triangle
		{Index: 4, Target: gamepad.Back},   // Share / Create
		{Index: 5, Target: gamepad.Center}, // PS button
		{Index: 6, Target: gamepad.Start},  // Options
		{Index: 7, Target: gamepad.L3},
		{Index: 8, Target: gamepad.R3},
		{Index: 9, Target: gamepad.LB},  // L1
		{Index: 10, Target: gamepad.RB}, // R1
	},
	HasHat: true,
}

// Switch Pro triggers are digital.
var switchProMapping = &DeviceMapping{
	Name: "switch_pro",
	Axes: sticks,
	Buttons: []ButtonMapping{
		{Index: 0, Target: gamepad.A},
		{Index: 1, Target: gamepad.B},
		{Index: 2, Target: gamepad.X},
		{Index: 3, Target: gamepad.Y},
		{Index: 4, Target: gamepad.LB},
		{Index: 5, Target: gamepad.RB},
		{Index: 6, Target: gamepad.Back},
		{Index: 7, Target: gamepad.Start},
		{Index: 8, Target: gamepad.L3},
		{Index: 9, Target: gamepad.R3},
		{Index: 10, Target: gamepad.Center},
		{Index: 11, Target: gamepad.LT},
		{Index: 12, Target: gamepad.RT},
	},
	HasHat: true,
}

var genericMapping = &DeviceMapping{
	Name:    "generic",
	Axes:    xboxMapping.Axes,
	Buttons: xboxMapping.Buttons,
	HasHat:  true,
}

// joydevMapping follows the Linux xpad driver layout of /dev/input/js*:
// axes lx, ly, lt, rx, ry, rt, hat x, hat y.
var joydevMapping = &DeviceMapping{
	Name: "joydev",
	Axes: []AxisMapping{
		{Index: 0, Axis: gamepad.AxisLeftX},
		{Index: 1, Axis: gamepad.AxisLeftY},
		{Index: 2, IsTrigger: true, Trigger: gamepad.LT, RawMin: -32768, RawMax: 32767},
		{Index: 3, Axis: gamepad.AxisRightX},
		{Index: 4, Axis: gamepad.AxisRightY},
		{Index: 5, IsTrigger: true, Trigger: gamepad.RT, RawMin: -32768, RawMax: 32767},
	},
	Buttons: []ButtonMapping{
		{Index: 0, Target: gamepad.A},
		{Index: 1, Target: gamepad.B},
		{Index: 2, Target: gamepad.X},
		{Index: 3, Target: gamepad.Y},
		{Index: 4, Target: gamepad.LB},
		{Index: 5, Target: gamepad.RB},
		{Index: 6, Target: gamepad.Back},
		{Index: 7, Target: gamepad.Start},
		{Index: 8, Target: gamepad.Center},
		{Index: 9, Target: gamepad.L3},
		{Index: 10, Target: gamepad.R3},
	},
	HatAxes: []int32{6, 7},
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

// GetMapping returns the appropriate mapping for a device identified by vendor/product ID.
// Falls back to generic mapping if no specific mapping is found.
func GetMapping(vendorID, productID uint16) *DeviceMapping {
	key := deviceKey{VendorID: vendorID, ProductID: productID}
	if m, ok := knownDevices[key]; ok {
		return m
	}
	return genericMapping
}
