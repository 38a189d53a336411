package gamepad

import (
	"log"
	"time"
)

// dispatch invokes the configured handler for ev, then records ev on rec.
// Handler lookup uses the config active at the time of the call so that a
// config swapped by an earlier handler in the same tick is observed.
func (s *Session) dispatch(rec *timingRecord, ev ButtonEvent) {
	cfg := s.Config()

	if cfg.Debug {
		log.Printf("[DEBUG] device=%d %s at %s", s.device, ev, ev.At.Format("15:04:05.000"))
	}

	if h, ok := cfg.lookup(ev.Key()); ok {
		if !invokeButton(h, ev) && cfg.Debug {
			log.Printf("[DEBUG] device=%d handler for %s is not callable (%T), skipped", s.device, ev.Key(), h)
		}
	}

	rec.apply(ev)
}

// invokeButton calls h with the arguments for ev's phase. It reports false
// when h cannot handle the phase.
func invokeButton(h any, ev ButtonEvent) bool {
	if ev.Phase == PhaseHoldRelease {
		switch fn := h.(type) {
		case HoldReleaseHandler:
			if fn != nil {
				fn(ev.Held)
				return true
			}
		case func(time.Duration):
			if fn != nil {
				fn(ev.Held)
				return true
			}
		case ButtonHandler:
			if fn != nil {
				fn()
				return true
			}
		case func():
			if fn != nil {
				fn()
				return true
			}
		}
		return false
	}

	switch fn := h.(type) {
	case ButtonHandler:
		if fn != nil {
			fn()
			return true
		}
	case func():
		if fn != nil {
			fn()
			return true
		}
	}
	return false
}

// dispatchStick normalizes one stick of snap and hands it to its handler.
func (s *Session) dispatchStick(snap *Snapshot, stick Stick) {
	cfg := s.Config()
	h := cfg.stick(stick)
	if h == nil {
		return
	}

	v := StickOf(snap, stick, cfg.Deadzone())
	switch fn := h.(type) {
	case StickHandler:
		if fn != nil {
			fn(v)
		}
	case func(StickVector):
		if fn != nil {
			fn(v)
		}
	default:
		if cfg.Debug {
			log.Printf("[DEBUG] device=%d handler for %s is not callable (%T), skipped", s.device, stick, h)
		}
	}
}
