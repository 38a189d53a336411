// Package monitor drives a gamepad session from a device source and publishes
// the resulting events to clients.
package monitor

import (
	"context"
	"log"
	"runtime"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"

	"github.com/soar/padsignal/internal/config"
	"github.com/soar/padsignal/internal/gamepad"
	"github.com/soar/padsignal/internal/hub"
	"github.com/soar/padsignal/internal/source"
)

// Sink receives the messages produced by session handlers.
type Sink interface {
	Publish(msg *hub.Message)
}

// Monitor owns the session for the device the source reports. It implements
// source.Lifecycle.
type Monitor struct {
	src  source.Source
	sink Sink

	session atomic.Pointer[gamepad.Session]

	// mu serializes config rebuilds with session creation so a new session
	// never starts with a stale config.
	mu        sync.Mutex
	settings  *config.Settings
	profile   string
	cfg       *gamepad.HandlerConfig
	observers []func(profile string, profiles []string)
}

// New returns a Monitor using settings' active profile.
func New(src source.Source, settings *config.Settings, sink Sink) (*Monitor, error) {
	cfg, err := BuildConfig(settings, settings.Profile, sink)
	if err != nil {
		return nil, err
	}
	m := &Monitor{
		src:      src,
		sink:     sink,
		settings: settings,
		profile:  settings.Profile,
		cfg:      cfg,
	}
	sink.Publish(hub.NewProfileSelectedMessage(m.profile, settings.ProfileNames()...))
	return m, nil
}

// BuildConfig returns a HandlerConfig with the settings' options whose
// handlers publish the events and sticks selected by the named profile.
func BuildConfig(settings *config.Settings, profileName string, sink Sink) (*gamepad.HandlerConfig, error) {
	p, ok := settings.LookupProfile(profileName)
	if !ok {
		return nil, errors.Errorf("unknown profile %q", profileName)
	}

	cfg := settings.Options()
	for _, raw := range p.Events {
		if raw == config.AllEvents {
			for _, b := range gamepad.Buttons() {
				for _, ph := range gamepad.Phases() {
					bind(cfg, gamepad.EventKey{Button: b, Phase: ph}, sink)
				}
			}
			continue
		}
		key, err := gamepad.ParseEventKey(raw)
		if err != nil {
			return nil, errors.Wrapf(err, "profile %q", profileName)
		}
		bind(cfg, key, sink)
	}

	if p.Sticks {
		for _, s := range []gamepad.Stick{gamepad.LeftStick, gamepad.RightStick} {
			cfg.HandleStick(s, func(v gamepad.StickVector) {
				sink.Publish(hub.NewStickMessage(v))
			})
		}
	}
	return cfg, nil
}

func bind(cfg *gamepad.HandlerConfig, key gamepad.EventKey, sink Sink) {
	if key.Phase == gamepad.PhaseHoldRelease {
		cfg.HandleHoldRelease(key.Button, func(held time.Duration) {
			sink.Publish(hub.NewButtonMessage(key.Button, key.Phase, held))
		})
		return
	}
	cfg.Handle(key.Button, key.Phase, func() {
		sink.Publish(hub.NewButtonMessage(key.Button, key.Phase, 0))
	})
}

// Profile returns the active profile name.
func (m *Monitor) Profile() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.profile
}

// OnProfile registers fn to be called with the active profile and the
// configured profile names after every switch or change of the profile list.
func (m *Monitor) OnProfile(fn func(profile string, profiles []string)) {
	m.mu.Lock()
	m.observers = append(m.observers, fn)
	m.mu.Unlock()
}

// SetProfile switches to the named profile. It reports false for unknown
// profiles.
func (m *Monitor) SetProfile(name string) bool {
	m.mu.Lock()
	cfg, err := BuildConfig(m.settings, name, m.sink)
	if err != nil {
		m.mu.Unlock()
		return false
	}
	m.install(cfg, strings.ToLower(name))
	m.mu.Unlock()

	m.announce()
	return true
}

// Apply installs reloaded settings. The selected profile is kept while it
// still exists and the file's profile setting did not change.
func (m *Monitor) Apply(settings *config.Settings) {
	m.mu.Lock()
	profile := m.profile
	if settings.Profile != m.settings.Profile {
		profile = settings.Profile
	}
	if _, ok := settings.LookupProfile(profile); !ok {
		profile = settings.Profile
	}

	cfg, err := BuildConfig(settings, profile, m.sink)
	if err != nil {
		m.mu.Unlock()
		log.Printf("Config not applied: %v", err)
		return
	}
	changed := profile != m.profile || !slices.Equal(settings.ProfileNames(), m.settings.ProfileNames())
	m.settings = settings
	m.install(cfg, profile)
	m.mu.Unlock()

	log.Printf("Config applied: profile=%s hold=%s deadzone=%.2f", profile, cfg.HoldThreshold(), cfg.Deadzone())
	if changed {
		m.announce()
	}
}

// install must be called with mu held.
func (m *Monitor) install(cfg *gamepad.HandlerConfig, profile string) {
	m.cfg = cfg
	m.profile = profile
	if s := m.session.Load(); s != nil {
		s.SetConfig(cfg)
	}
}

func (m *Monitor) announce() {
	m.mu.Lock()
	profile := m.profile
	names := m.settings.ProfileNames()
	observers := slices.Clone(m.observers)
	m.mu.Unlock()

	m.sink.Publish(hub.NewProfileSelectedMessage(profile, names...))
	for _, fn := range observers {
		fn(profile, names)
	}
}

// Session returns the current session, or nil before the first device
// connected.
func (m *Monitor) Session() *gamepad.Session {
	return m.session.Load()
}

// Connected starts a session for device. A stopped session for the same
// device is re-armed.
func (m *Monitor) Connected(device int, name string, initial gamepad.Snapshot) {
	m.mu.Lock()
	s := m.session.Load()
	if s == nil || s.Device() != device {
		if s != nil {
			s.Stop()
		}
		s = gamepad.NewSession(device, m.src)
		m.session.Store(s)
	}
	err := s.Start(m.cfg, &initial)
	m.mu.Unlock()

	if err != nil {
		log.Printf("Session for device %d not started: %v", device, err)
		return
	}
	log.Printf("Following device %d: %s", device, name)
	m.sink.Publish(hub.NewDeviceMessage(true, device, name))
}

// Disconnected stops the session of device.
func (m *Monitor) Disconnected(device int) {
	s := m.session.Load()
	if s == nil || s.Device() != device {
		return
	}
	s.Stop()
	log.Printf("Device %d disconnected, session stopped", device)
	m.sink.Publish(hub.NewDeviceMessage(false, device, ""))
}

// Run opens the source and polls it until ctx is done. The source is paced by
// itself when it implements gamepad.Pacer, otherwise by the poll interval.
func (m *Monitor) Run(ctx context.Context) error {
	// SDL requires its calls to come from one OS thread.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if err := m.src.Open(); err != nil {
		return errors.Wrap(err, "open source")
	}
	defer m.src.Close()

	pacer, ok := m.src.(gamepad.Pacer)
	if !ok {
		m.mu.Lock()
		interval := m.settings.PollInterval
		m.mu.Unlock()
		tp := gamepad.NewTickerPacer(interval)
		defer tp.Stop()
		pacer = tp
	}

	defer func() {
		if s := m.session.Load(); s != nil {
			s.Stop()
		}
	}()

	for {
		if err := pacer.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		m.src.Poll(m)
		m.tick()
	}
}

func (m *Monitor) tick() {
	s := m.session.Load()
	if s == nil || s.State() != gamepad.StateRunning {
		return
	}
	if _, err := s.Tick(); err != nil {
		log.Printf("Stopping session: %v", err)
		s.Stop()
	}
}
