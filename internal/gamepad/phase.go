package gamepad

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// Phase describes a button state transition.
type Phase uint8

const (
	PhaseDown Phase = iota
	PhaseUp
	PhasePress
	PhaseHold
	PhaseHoldRelease
)

const phaseCount = 5

var phaseNames = [phaseCount]string{"Down", "Up", "Press", "Hold", "HoldRelease"}

// Phases returns every Phase in dispatch order.
func Phases() [phaseCount]Phase {
	return [phaseCount]Phase{PhaseDown, PhaseUp, PhasePress, PhaseHold, PhaseHoldRelease}
}

func (p Phase) String() string {
	if int(p) >= phaseCount {
		return "Unknown"
	}
	return phaseNames[p]
}

func (p Phase) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

func (p *Phase) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return errors.Wrap(err, "phase")
	}
	v, err := ParsePhase(name)
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// ParsePhase returns the Phase with the given name, e.g. "HoldRelease".
func ParsePhase(name string) (Phase, error) {
	for i, n := range phaseNames {
		if n == name {
			return Phase(i), nil
		}
	}
	return 0, errors.Errorf("unknown phase %q", name)
}
