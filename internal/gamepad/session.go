package gamepad

import (
	"context"
	"log"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
)

// State of a Session.
type State int32

const (
	StateIdle State = iota
	StateRunning
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	}
	return "unknown"
}

// Session tracks one device's button timing across ticks and dispatches the
// derived events to the active HandlerConfig.
//
// Ticks must be driven from a single goroutine; Start belongs to that
// goroutine too. Stop, SetConfig, Config and State are safe to call from
// anywhere, including handlers.
type Session struct {
	device int
	source SnapshotSource
	now    func() time.Time

	config  atomic.Pointer[HandlerConfig]
	running atomic.Bool
	state   atomic.Int32

	prev    Snapshot
	records [ButtonCount]timingRecord
	events  []ButtonEvent
}

type SessionOption func(*Session)

// WithClock replaces time.Now as the session's tick clock.
func WithClock(now func() time.Time) SessionOption {
	return func(s *Session) {
		s.now = now
	}
}

// NewSession creates an idle session reading device from source.
func NewSession(device int, source SnapshotSource, opts ...SessionOption) *Session {
	s := &Session{
		device: device,
		source: source,
		now:    time.Now,
		events: make([]ButtonEvent, 0, maxTransitions),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.config.Store(NewHandlerConfig())
	return s
}

func (s *Session) Device() int {
	return s.device
}

func (s *Session) State() State {
	return State(s.state.Load())
}

// Running reports whether the running flag is set.
func (s *Session) Running() bool {
	return s.running.Load()
}

// Start arms the session with cfg. The first tick diffs against initial, or
// against an all-released snapshot when initial is nil, so buttons already
// down at start do not fire Down. A stopped session can be started again;
// its timing records are reset.
func (s *Session) Start(cfg *HandlerConfig, initial *Snapshot) error {
	if s.running.Load() {
		return errors.Wrapf(ErrSessionRunning, "device %d", s.device)
	}

	s.SetConfig(cfg)
	s.records = [ButtonCount]timingRecord{}
	s.prev = Snapshot{}
	if initial != nil {
		s.prev = *initial
	}

	s.state.Store(int32(StateRunning))
	s.running.Store(true)

	if s.Config().Debug {
		log.Printf("[DEBUG] session started: device=%d hold=%s deadzone=%.2f",
			s.device, s.Config().HoldThreshold(), s.Config().Deadzone())
	}
	return nil
}

// Stop clears the running flag. A tick in progress completes; the loop halts
// when it next observes the flag.
func (s *Session) Stop() {
	if s.running.Swap(false) && s.Config().Debug {
		log.Printf("[DEBUG] session stop requested: device=%d", s.device)
	}
}

// SetConfig replaces the active configuration. A nil cfg installs an empty one.
func (s *Session) SetConfig(cfg *HandlerConfig) {
	if cfg == nil {
		cfg = NewHandlerConfig()
	}
	s.config.Store(cfg)
}

func (s *Session) Config() *HandlerConfig {
	return s.config.Load()
}

// Tick runs one poll: read a snapshot, derive and dispatch button events in
// ButtonID order, dispatch both sticks, then cache the snapshot. It reports
// whether another tick should be scheduled.
//
// When the device cannot be read Tick returns ErrDeviceUnavailable and leaves
// the session untouched; retrying or stopping is up to the caller.
func (s *Session) Tick() (bool, error) {
	if !s.running.Load() {
		s.halt()
		return false, nil
	}

	snap, ok := s.source.Snapshot(s.device)
	if !ok {
		return false, errors.Wrapf(ErrDeviceUnavailable, "device %d", s.device)
	}

	now := s.now()
	s.checkButtons(&snap, now)
	s.dispatchStick(&snap, LeftStick)
	s.dispatchStick(&snap, RightStick)

	s.prev = snap

	if !s.running.Load() {
		s.halt()
		return false, nil
	}
	return true, nil
}

func (s *Session) halt() {
	if s.state.CompareAndSwap(int32(StateRunning), int32(StateStopped)) && s.Config().Debug {
		log.Printf("[DEBUG] session stopped: device=%d", s.device)
	}
}

func (s *Session) checkButtons(snap *Snapshot, now time.Time) {
	for i := range s.records {
		rec := &s.records[i]
		hold := s.Config().HoldThreshold()

		s.events = rec.transitions(ButtonID(i), snap.Buttons[i], s.prev.Buttons[i], now, hold, s.events[:0])
		for _, ev := range s.events {
			s.dispatch(rec, ev)
		}
	}
}

// Run drives the session: wait on pacer, tick, repeat. It returns nil when the
// session stops, the tick error when a tick fails, or the pacer's error.
func (s *Session) Run(ctx context.Context, pacer Pacer) error {
	for {
		if err := pacer.Wait(ctx); err != nil {
			return err
		}
		more, err := s.Tick()
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
	}
}
