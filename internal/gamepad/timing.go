package gamepad

import "time"

// timingRecord holds the phase timestamps of one button. A zero time.Time
// means the timestamp is unset.
type timingRecord struct {
	downAt        time.Time
	upAt          time.Time
	holdAt        time.Time
	holdReleaseAt time.Time
}

// maxTransitions is the most events one button yields in a tick: Up, Press
// and HoldRelease.
const maxTransitions = 3

// transitions derives the events for button b from its previous and current
// pressed state. It only reads the record; apply updates it per event.
func (r *timingRecord) transitions(b ButtonID, isPressed, wasPressed bool, now time.Time, hold time.Duration, out []ButtonEvent) []ButtonEvent {
	switch {
	case isPressed && !wasPressed:
		out = append(out, ButtonEvent{Button: b, Phase: PhaseDown, At: now})

	case !isPressed && wasPressed:
		out = append(out, ButtonEvent{Button: b, Phase: PhaseUp, At: now})

		// a press interval that reached Hold is never a tap
		if !r.downAt.IsZero() && r.holdAt.IsZero() && now.Sub(r.downAt) < hold {
			out = append(out, ButtonEvent{Button: b, Phase: PhasePress, At: now})
		}
		if !r.holdAt.IsZero() {
			out = append(out, ButtonEvent{Button: b, Phase: PhaseHoldRelease, At: now, Held: now.Sub(r.holdAt)})
		}

	case isPressed && wasPressed:
		if r.holdAt.IsZero() && !r.downAt.IsZero() && now.Sub(r.downAt) >= hold {
			out = append(out, ButtonEvent{Button: b, Phase: PhaseHold, At: now})
		}
	}
	return out
}

// apply records that ev has been dispatched.
func (r *timingRecord) apply(ev ButtonEvent) {
	switch ev.Phase {
	case PhaseDown:
		r.downAt = ev.At
		r.upAt = time.Time{}
	case PhaseUp:
		r.upAt = ev.At
	case PhasePress:
		// tap cycle complete
		r.downAt = time.Time{}
		r.upAt = time.Time{}
	case PhaseHold:
		r.holdAt = r.downAt
	case PhaseHoldRelease:
		r.holdReleaseAt = ev.At
		r.holdAt = time.Time{}
	}
}

