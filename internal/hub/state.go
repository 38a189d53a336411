package hub

import (
	"math"

	"github.com/soar/padsignal/internal/gamepad"
)

// PadState is the client-facing view of the followed device, rebuilt from the
// event stream.
type PadState struct {
	Connected bool                   `json:"connected"`
	Device    int                    `json:"device"`
	Name      string                 `json:"name"`
	Profile   string                 `json:"profile"`
	Profiles  []string               `json:"profiles"`
	Pressed   []gamepad.ButtonID     `json:"pressed"`
	Held      []gamepad.ButtonID     `json:"held"`
	Sticks    [2]gamepad.StickVector `json:"sticks"`

	buttons [gamepad.ButtonCount]buttonStatus
}

func newPadState() PadState {
	return PadState{
		Pressed:  []gamepad.ButtonID{},
		Held:     []gamepad.ButtonID{},
		Profiles: []string{},
		Sticks:   [2]gamepad.StickVector{{Stick: gamepad.LeftStick}, {Stick: gamepad.RightStick}},
	}
}

type buttonStatus struct {
	down bool
	held bool
}

const analogThreshold = 0.01

func floatEqual(a, b float64) bool {
	return math.Abs(a-b) < analogThreshold
}

func stickEqual(a, b gamepad.StickVector) bool {
	return floatEqual(a.X, b.X) && floatEqual(a.Y, b.Y)
}

// apply folds msg into the state. It reports whether msg carries news for
// clients: stick messages that did not move beyond analogThreshold do not.
func (s *PadState) apply(msg *Message) bool {
	switch msg.Type {
	case TypeDevice:
		if msg.Device == nil {
			return false
		}
		profile, profiles := s.Profile, s.Profiles
		*s = newPadState()
		s.Profile, s.Profiles = profile, profiles
		s.Connected = msg.Device.Connected
		s.Device = msg.Device.Device
		s.Name = msg.Device.Name

	case TypeEvent:
		if msg.Button == nil || !msg.Button.Button.Valid() {
			return false
		}
		b := &s.buttons[msg.Button.Button]
		switch msg.Button.Phase {
		case gamepad.PhaseDown:
			b.down = true
		case gamepad.PhaseUp:
			b.down = false
		case gamepad.PhaseHold:
			b.held = true
		case gamepad.PhaseHoldRelease:
			b.held = false
		}
		s.rebuildLists()

	case TypeStick:
		if msg.Stick == nil || int(msg.Stick.Stick) >= len(s.Sticks) {
			return false
		}
		if stickEqual(s.Sticks[msg.Stick.Stick], *msg.Stick) {
			return false
		}
		s.Sticks[msg.Stick.Stick] = *msg.Stick

	case TypeProfileSelected:
		s.Profile = msg.Profile
		if msg.Profiles != nil {
			s.Profiles = msg.Profiles
		}

	default:
		return false
	}
	return true
}

func (s *PadState) rebuildLists() {
	s.Pressed = s.Pressed[:0]
	s.Held = s.Held[:0]
	for i, b := range s.buttons {
		if b.down {
			s.Pressed = append(s.Pressed, gamepad.ButtonID(i))
		}
		if b.held {
			s.Held = append(s.Held, gamepad.ButtonID(i))
		}
	}
}

// clone returns a copy safe to hand to another goroutine.
func (s *PadState) clone() *PadState {
	c := *s
	c.Pressed = append([]gamepad.ButtonID{}, s.Pressed...)
	c.Held = append([]gamepad.ButtonID{}, s.Held...)
	c.Profiles = append([]string{}, s.Profiles...)
	return &c
}
