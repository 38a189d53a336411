package gamepad

import (
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// ButtonEvent is a derived button transition.
type ButtonEvent struct {
	Button ButtonID
	Phase  Phase
	At     time.Time
	// Held is set for PhaseHoldRelease only.
	Held time.Duration
}

func (e ButtonEvent) Key() EventKey {
	return EventKey{Button: e.Button, Phase: e.Phase}
}

func (e ButtonEvent) String() string {
	if e.Phase == PhaseHoldRelease {
		return fmt.Sprintf("%s held=%s", e.Key(), e.Held)
	}
	return e.Key().String()
}

// EventKey names the handler slot for a button transition.
type EventKey struct {
	Button ButtonID
	Phase  Phase
}

// String returns the textual key, e.g. "a.Down".
func (k EventKey) String() string {
	return k.Button.String() + "." + k.Phase.String()
}

// ParseEventKey parses a textual key such as "start.HoldRelease". It is meant
// for configuration loading; dispatch never goes through strings.
func ParseEventKey(s string) (EventKey, error) {
	name, phase, ok := strings.Cut(s, ".")
	if !ok {
		return EventKey{}, errors.Errorf("event key %q: missing phase", s)
	}
	b, err := ParseButtonID(name)
	if err != nil {
		return EventKey{}, errors.Wrapf(err, "event key %q", s)
	}
	p, err := ParsePhase(phase)
	if err != nil {
		return EventKey{}, errors.Wrapf(err, "event key %q", s)
	}
	return EventKey{Button: b, Phase: p}, nil
}
