package gamepad

import (
	"fmt"
	"time"
)

var epoch = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: epoch}
}

func (c *fakeClock) Now() time.Time {
	return c.t
}

// at moves the clock to ms milliseconds after epoch.
func (c *fakeClock) at(ms int) {
	c.t = epoch.Add(time.Duration(ms) * time.Millisecond)
}

type fakeDevice struct {
	snap      Snapshot
	available bool
	reads     int
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{available: true}
}

func (d *fakeDevice) Snapshot(int) (Snapshot, bool) {
	d.reads++
	return d.snap, d.available
}

func (d *fakeDevice) press(ids ...ButtonID) {
	for _, id := range ids {
		d.snap.Buttons[id] = true
	}
}

func (d *fakeDevice) release(ids ...ButtonID) {
	for _, id := range ids {
		d.snap.Buttons[id] = false
	}
}

// recorder collects dispatched events as "<key>@<ms>" strings; HoldRelease
// entries carry the held duration in ms.
type recorder struct {
	clock  *fakeClock
	events []string
}

func (r *recorder) ms() int64 {
	return r.clock.Now().Sub(epoch).Milliseconds()
}

// config returns a HandlerConfig with a recording handler for every key.
func (r *recorder) config() *HandlerConfig {
	cfg := NewHandlerConfig()
	for _, b := range Buttons() {
		for _, p := range Phases() {
			key := EventKey{Button: b, Phase: p}
			if p == PhaseHoldRelease {
				cfg.HandleHoldRelease(b, func(held time.Duration) {
					r.events = append(r.events, fmt.Sprintf("%s@%d held=%d", key, r.ms(), held.Milliseconds()))
				})
				continue
			}
			cfg.Handle(b, p, func() {
				r.events = append(r.events, fmt.Sprintf("%s@%d", key, r.ms()))
			})
		}
	}
	return cfg
}

func (r *recorder) take() []string {
	ev := r.events
	r.events = nil
	return ev
}

// newTestSession returns a running session on a fake device with a recording
// config.
func newTestSession() (*Session, *fakeDevice, *fakeClock, *recorder) {
	clock := newFakeClock()
	dev := newFakeDevice()
	rec := &recorder{clock: clock}
	s := NewSession(0, dev, WithClock(clock.Now))
	if err := s.Start(rec.config(), nil); err != nil {
		panic(err)
	}
	return s, dev, clock, rec
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
