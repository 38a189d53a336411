package hub

import (
	"time"

	"github.com/soar/padsignal/internal/gamepad"
)

// Message types.
const (
	TypeFull            = "full"
	TypeEvent           = "event"
	TypeStick           = "stick"
	TypeDevice          = "device"
	TypeProfileSelected = "profile_selected"
)

// ButtonPayload is a button event as sent to clients.
type ButtonPayload struct {
	Button gamepad.ButtonID `json:"button"`
	Phase  gamepad.Phase    `json:"phase"`
	HeldMs int64            `json:"heldMs,omitempty"`
}

// DevicePayload reports a device connect or disconnect.
type DevicePayload struct {
	Connected bool   `json:"connected"`
	Device    int    `json:"device"`
	Name      string `json:"name,omitempty"`
}

// Message represents a WebSocket message sent from server to client.
type Message struct {
	Type      string               `json:"type"`      // one of the Type* constants
	Seq       int64                `json:"seq"`       // Sequence number for ordering
	Timestamp int64                `json:"timestamp"` // Unix timestamp in milliseconds
	Button    *ButtonPayload       `json:"button,omitempty"`
	Stick     *gamepad.StickVector `json:"stick,omitempty"`
	Device    *DevicePayload       `json:"device,omitempty"`
	Data      *PadState            `json:"data,omitempty"`    // Full state for type "full"
	Profile   string               `json:"profile,omitempty"` // For type "profile_selected"
	Profiles  []string             `json:"profiles,omitempty"`
}

// NewFullMessage creates a "full" type message containing the complete pad state.
func NewFullMessage(seq int64, state *PadState) *Message {
	return &Message{
		Type:      TypeFull,
		Seq:       seq,
		Timestamp: time.Now().UnixMilli(),
		Data:      state,
	}
}

// NewButtonMessage creates an "event" type message for a button transition.
func NewButtonMessage(b gamepad.ButtonID, p gamepad.Phase, held time.Duration) *Message {
	return &Message{
		Type:      TypeEvent,
		Timestamp: time.Now().UnixMilli(),
		Button:    &ButtonPayload{Button: b, Phase: p, HeldMs: held.Milliseconds()},
	}
}

// NewStickMessage creates a "stick" type message.
func NewStickMessage(v gamepad.StickVector) *Message {
	return &Message{
		Type:      TypeStick,
		Timestamp: time.Now().UnixMilli(),
		Stick:     &v,
	}
}

// NewDeviceMessage creates a "device" type message for connects and disconnects.
func NewDeviceMessage(connected bool, device int, name string) *Message {
	return &Message{
		Type:      TypeDevice,
		Timestamp: time.Now().UnixMilli(),
		Device:    &DevicePayload{Connected: connected, Device: device, Name: name},
	}
}

// NewProfileSelectedMessage announces the active profile and, optionally,
// the profiles a client may switch to.
func NewProfileSelectedMessage(profile string, available ...string) *Message {
	return &Message{
		Type:      TypeProfileSelected,
		Timestamp: time.Now().UnixMilli(),
		Profile:   profile,
		Profiles:  available,
	}
}

// ClientMessage represents a message sent from the client to the server.
type ClientMessage struct {
	Type    string `json:"type"`
	Profile string `json:"profile,omitempty"`
}
