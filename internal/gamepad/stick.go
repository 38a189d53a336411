package gamepad

import (
	"encoding/json"
	"math"

	"github.com/pkg/errors"
)

type Stick uint8

const (
	LeftStick Stick = iota
	RightStick
)

func (s Stick) String() string {
	switch s {
	case LeftStick:
		return "lStick"
	case RightStick:
		return "rStick"
	}
	return "unknown"
}

func (s Stick) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Stick) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return errors.Wrap(err, "stick")
	}
	v, err := ParseStick(name)
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// ParseStick accepts "lStick" or "rStick".
func ParseStick(name string) (Stick, error) {
	switch name {
	case "lStick":
		return LeftStick, nil
	case "rStick":
		return RightStick, nil
	}
	return 0, errors.Errorf("unknown stick %q", name)
}

// axes returns the Snapshot.Axes indices of the stick's x and y axes.
func (s Stick) axes() (int, int) {
	if s == RightStick {
		return AxisRightX, AxisRightY
	}
	return AxisLeftX, AxisLeftY
}

// StickVector is a deadzone-filtered stick position.
type StickVector struct {
	Stick Stick   `json:"stick"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
}

// ApplyDeadzone returns 0 if the value is within the deadzone threshold.
// Values outside the deadzone are returned unchanged.
func ApplyDeadzone(v float64, threshold float64) float64 {
	if math.Abs(v) <= threshold {
		return 0
	}
	return v
}

// Normalize filters a raw axis pair for the given stick.
func Normalize(s Stick, x, y, threshold float64) StickVector {
	return StickVector{
		Stick: s,
		X:     ApplyDeadzone(x, threshold),
		Y:     ApplyDeadzone(y, threshold),
	}
}

// StickOf extracts and normalizes one stick from a snapshot.
func StickOf(snap *Snapshot, s Stick, threshold float64) StickVector {
	ix, iy := s.axes()
	return Normalize(s, snap.Axes[ix], snap.Axes[iy], threshold)
}
