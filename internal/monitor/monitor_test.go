package monitor

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/soar/padsignal/internal/config"
	"github.com/soar/padsignal/internal/gamepad"
	"github.com/soar/padsignal/internal/hub"
	"github.com/soar/padsignal/internal/source"
)

// fakeSource is driven by steps sent from the test. Each step runs on the
// monitor goroutine inside Wait, followed by one Poll and one Tick.
type fakeSource struct {
	steps chan func(*fakeSource)

	snap      gamepad.Snapshot
	available bool
	pending   []func(source.Lifecycle)

	opened bool
	closed bool
}

func newFakeSource() *fakeSource {
	return &fakeSource{steps: make(chan func(*fakeSource))}
}

func (f *fakeSource) Open() error {
	f.opened = true
	return nil
}

func (f *fakeSource) Close() {
	f.closed = true
}

func (f *fakeSource) Poll(l source.Lifecycle) {
	for _, fn := range f.pending {
		fn(l)
	}
	f.pending = nil
}

func (f *fakeSource) Snapshot(device int) (gamepad.Snapshot, bool) {
	return f.snap, f.available
}

func (f *fakeSource) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case step := <-f.steps:
		step(f)
		return nil
	}
}

func (f *fakeSource) connect(device int) {
	f.available = true
	f.pending = append(f.pending, func(l source.Lifecycle) {
		l.Connected(device, "fake pad", f.snap)
	})
}

func (f *fakeSource) disconnect(device int) {
	f.available = false
	f.pending = append(f.pending, func(l source.Lifecycle) {
		l.Disconnected(device)
	})
}

type recorder struct {
	mu   sync.Mutex
	msgs []*hub.Message
}

func (r *recorder) Publish(msg *hub.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
}

// lines formats everything except stick messages.
func (r *recorder) lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, m := range r.msgs {
		switch m.Type {
		case hub.TypeEvent:
			out = append(out, fmt.Sprintf("%s.%s", m.Button.Button, m.Button.Phase))
		case hub.TypeDevice:
			out = append(out, fmt.Sprintf("device %d %v", m.Device.Device, m.Device.Connected))
		case hub.TypeProfileSelected:
			out = append(out, "profile "+m.Profile)
		}
	}
	return out
}

func (r *recorder) sticks() []gamepad.StickVector {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []gamepad.StickVector
	for _, m := range r.msgs {
		if m.Type == hub.TypeStick {
			out = append(out, *m.Stick)
		}
	}
	return out
}

func (r *recorder) reset() {
	r.mu.Lock()
	r.msgs = nil
	r.mu.Unlock()
}

func testSettings() *config.Settings {
	return &config.Settings{
		PollInterval:  time.Millisecond,
		HoldMs:        300,
		StickDeadzone: 0.3,
		Profile:       config.DefaultProfile,
		Profiles: map[string]config.Profile{
			config.DefaultProfile: {Events: []string{config.AllEvents}, Sticks: true},
			"menu":                {Events: []string{"a.Press", "start.HoldRelease"}},
		},
	}
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

func TestBuildConfig(t *testing.T) {
	settings := testSettings()
	rec := &recorder{}

	cfg, err := BuildConfig(settings, "menu", rec)
	if err != nil {
		t.Fatalf("BuildConfig failed: %v", err)
	}
	if cfg.HoldThreshold() != 300*time.Millisecond || cfg.Deadzone() != 0.3 {
		t.Errorf("unexpected options hold=%s deadzone=%v", cfg.HoldThreshold(), cfg.Deadzone())
	}

	if _, err := BuildConfig(settings, "nope", rec); err == nil {
		t.Errorf("expected error for unknown profile")
	}

	settings.Profiles["broken"] = config.Profile{Events: []string{"a.Tap"}}
	if _, err := BuildConfig(settings, "broken", rec); err == nil {
		t.Errorf("expected error for bad event key")
	}
}

func TestProfileFiltersEvents(t *testing.T) {
	src := newFakeSource()
	rec := &recorder{}
	m, err := New(src, testSettings(), rec)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if !m.SetProfile("MENU") {
		t.Fatalf("SetProfile failed")
	}
	if m.Profile() != "menu" {
		t.Errorf("expected menu profile, got %s", m.Profile())
	}
	if m.SetProfile("missing") {
		t.Errorf("unknown profile must be rejected")
	}

	src.available = true
	m.Connected(0, "fake pad", gamepad.Snapshot{})
	rec.reset()

	src.snap.Buttons[gamepad.A] = true
	src.snap.Axes[gamepad.AxisLeftX] = 0.9
	m.tick()
	src.snap.Buttons[gamepad.A] = false
	m.tick()

	want := []string{"a.Press"}
	if got := rec.lines(); !equalStrings(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
	if len(rec.sticks()) != 0 {
		t.Errorf("menu profile does not forward sticks")
	}
}

func TestObserversAndApply(t *testing.T) {
	rec := &recorder{}
	m, err := New(newFakeSource(), testSettings(), rec)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	var seen []string
	var lists [][]string
	m.OnProfile(func(name string, profiles []string) {
		seen = append(seen, name)
		lists = append(lists, profiles)
	})

	m.SetProfile("menu")

	// a reload that keeps the file's profile keeps the selected one
	next := testSettings()
	next.HoldMs = 500
	m.Apply(next)
	if m.Profile() != "menu" {
		t.Errorf("expected selected profile to survive reload, got %s", m.Profile())
	}

	// a reload that changes the file's profile switches to it
	next = testSettings()
	next.Profiles["game"] = config.Profile{Events: []string{"b.Down"}}
	next.Profile = "game"
	m.Apply(next)
	if m.Profile() != "game" {
		t.Errorf("expected game profile, got %s", m.Profile())
	}

	// a reload dropping the selected profile falls back to the file's profile
	m.Apply(testSettings())
	if m.Profile() != config.DefaultProfile {
		t.Errorf("expected default profile, got %s", m.Profile())
	}

	want := []string{"menu", "game", "default"}
	if !equalStrings(seen, want) {
		t.Errorf("expected observers to see %v, got %v", want, seen)
	}
	// the tray learns about profiles added and removed by a reload
	if len(lists) != 3 || !slices.Contains(lists[1], "game") || slices.Contains(lists[2], "game") {
		t.Errorf("expected observers to get the reloaded profile lists, got %v", lists)
	}

	wantMsgs := []string{"profile default", "profile menu", "profile game", "profile default"}
	if got := rec.lines(); !equalStrings(got, wantMsgs) {
		t.Errorf("expected %v, got %v", wantMsgs, got)
	}
}

func TestApplySwapsLiveSession(t *testing.T) {
	src := newFakeSource()
	src.available = true
	m, err := New(src, testSettings(), &recorder{})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	m.Connected(1, "fake pad", gamepad.Snapshot{})

	next := testSettings()
	next.HoldMs = 800
	m.Apply(next)
	if got := m.Session().Config().HoldThreshold(); got != 800*time.Millisecond {
		t.Errorf("expected running session to get the new hold, got %s", got)
	}
}

func TestRunLifecycle(t *testing.T) {
	src := newFakeSource()
	rec := &recorder{}
	m, err := New(src, testSettings(), rec)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()

	step := func(fn func(*fakeSource)) { src.steps <- fn }
	noop := func(*fakeSource) {}

	// B is down when the device appears: no Down for it
	step(func(f *fakeSource) {
		f.snap.Buttons[gamepad.B] = true
		f.connect(2)
	})
	step(func(f *fakeSource) { f.snap.Buttons[gamepad.A] = true })
	step(func(f *fakeSource) { f.snap.Buttons[gamepad.A] = false })
	step(func(f *fakeSource) { f.disconnect(2) })
	step(noop)

	if s := m.Session(); s == nil || s.State() != gamepad.StateStopped {
		t.Errorf("expected stopped session after disconnect")
	}

	// reconnecting the same device re-arms the session
	step(func(f *fakeSource) {
		f.snap = gamepad.Snapshot{}
		f.connect(2)
	})
	first := m.Session()
	step(func(f *fakeSource) { f.snap.Buttons[gamepad.X] = true })
	step(noop)
	if m.Session() != first || first.State() != gamepad.StateRunning {
		t.Errorf("expected the same session to run again")
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Run returned %v", err)
	}
	if !src.opened || !src.closed {
		t.Errorf("source must be opened and closed")
	}

	want := []string{
		"profile default",
		"device 2 true",
		"a.Down", "a.Up", "a.Press",
		"device 2 false",
		"device 2 true",
		"x.Down",
	}
	if got := rec.lines(); !equalStrings(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestRunStopsOnDeviceLoss(t *testing.T) {
	src := newFakeSource()
	rec := &recorder{}
	m, err := New(src, testSettings(), rec)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()

	src.steps <- func(f *fakeSource) { f.connect(0) }
	// the device vanishes without a disconnect notification
	src.steps <- func(f *fakeSource) { f.available = false }
	src.steps <- func(*fakeSource) {}
	src.steps <- func(*fakeSource) {}

	if s := m.Session(); s.State() != gamepad.StateStopped {
		t.Errorf("expected stopped session, got %s", s.State())
	}

	cancel()
	<-done
}

func TestSticksPublished(t *testing.T) {
	src := newFakeSource()
	rec := &recorder{}
	m, err := New(src, testSettings(), rec)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	src.available = true
	m.Connected(0, "fake pad", gamepad.Snapshot{})

	src.snap.Axes[gamepad.AxisRightX] = 0.2
	src.snap.Axes[gamepad.AxisRightY] = -0.9
	m.tick()

	sticks := rec.sticks()
	if len(sticks) != 2 {
		t.Fatalf("expected both sticks, got %v", sticks)
	}
	r := sticks[1]
	if r.Stick != gamepad.RightStick || r.X != 0 || r.Y != -0.9 {
		t.Errorf("unexpected right stick %+v", r)
	}
}
