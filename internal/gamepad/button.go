package gamepad

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// ButtonID identifies one of the 17 buttons of a standard gamepad. The numeric
// value of each id is its index in Snapshot.Buttons.
type ButtonID uint8

const (
	A ButtonID = iota
	B
	X
	Y
	LB
	RB
	LT
	RT
	Back
	Start
	L3
	R3
	Up
	Down
	Left
	Right
	Center
)

// ButtonCount is the number of buttons in a Snapshot.
const ButtonCount = 17

var buttonNames = [ButtonCount]string{
	"a", "b", "x", "y",
	"lb", "rb", "lt", "rt",
	"back", "start",
	"l3", "r3",
	"up", "down", "left", "right",
	"center",
}

// Buttons returns every ButtonID in snapshot order.
func Buttons() [ButtonCount]ButtonID {
	var ids [ButtonCount]ButtonID
	for i := range ids {
		ids[i] = ButtonID(i)
	}
	return ids
}

func (b ButtonID) Valid() bool {
	return int(b) < ButtonCount
}

func (b ButtonID) String() string {
	if !b.Valid() {
		return "unknown"
	}
	return buttonNames[b]
}

func (b ButtonID) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.String())
}

func (b *ButtonID) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return errors.Wrap(err, "button")
	}
	id, err := ParseButtonID(name)
	if err != nil {
		return err
	}
	*b = id
	return nil
}

// ParseButtonID returns the ButtonID with the given lower-case name.
func ParseButtonID(name string) (ButtonID, error) {
	for i, n := range buttonNames {
		if n == name {
			return ButtonID(i), nil
		}
	}
	return 0, errors.Errorf("unknown button %q", name)
}
