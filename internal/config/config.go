// Package config loads program settings from a config file, PADSIGNAL_*
// environment variables and command line flags.
package config

import (
	"log"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/soar/padsignal/internal/gamepad"
)

// DefaultProfile forwards every event and both sticks.
const DefaultProfile = "default"

// AllEvents in a profile's event list selects every button event.
const AllEvents = "*"

// Profile selects which events are forwarded to clients.
type Profile struct {
	// Events holds event keys such as "a.Press", or AllEvents.
	Events []string `mapstructure:"events"`
	Sticks bool     `mapstructure:"sticks"`
}

type Settings struct {
	Listen           string             `mapstructure:"listen"`
	Source           string             `mapstructure:"source"`
	JoydevPath       string             `mapstructure:"joydev_path"`
	PollInterval     time.Duration      `mapstructure:"poll_interval"`
	HoldMs           int                `mapstructure:"hold_ms"`
	StickDeadzone    float64            `mapstructure:"stick_deadzone"`
	TriggerThreshold float64            `mapstructure:"trigger_threshold"`
	Debug            bool               `mapstructure:"debug"`
	Tray             bool               `mapstructure:"tray"`
	Profile          string             `mapstructure:"profile"`
	Profiles         map[string]Profile `mapstructure:"profiles"`
}

// Hold returns the hold threshold as a duration.
func (s *Settings) Hold() time.Duration {
	return time.Duration(s.HoldMs) * time.Millisecond
}

// Options returns a HandlerConfig carrying the settings' options and no handlers.
func (s *Settings) Options() *gamepad.HandlerConfig {
	cfg := gamepad.NewHandlerConfig()
	cfg.Debug = s.Debug
	cfg.Hold = s.Hold()
	cfg.StickDeadzone = s.StickDeadzone
	return cfg
}

// LookupProfile returns the named profile. Names are case-insensitive.
func (s *Settings) LookupProfile(name string) (Profile, bool) {
	p, ok := s.Profiles[strings.ToLower(name)]
	return p, ok
}

// ProfileNames returns the configured profile names, sorted.
func (s *Settings) ProfileNames() []string {
	names := make([]string, 0, len(s.Profiles))
	for name := range s.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *Settings) Validate() error {
	if s.HoldMs <= 0 {
		return errors.Errorf("hold_ms must be positive, got %d", s.HoldMs)
	}
	// the session reads a zero deadzone as unset
	if s.StickDeadzone <= 0 || s.StickDeadzone >= 1 {
		return errors.Errorf("stick_deadzone must be in (0, 1), got %v", s.StickDeadzone)
	}
	if s.TriggerThreshold < 0 || s.TriggerThreshold >= 1 {
		return errors.Errorf("trigger_threshold must be in [0, 1), got %v", s.TriggerThreshold)
	}
	if s.PollInterval <= 0 {
		return errors.Errorf("poll_interval must be positive, got %s", s.PollInterval)
	}
	switch s.Source {
	case "sdl", "joydev":
	default:
		return errors.Errorf("unknown source %q", s.Source)
	}
	if _, ok := s.LookupProfile(s.Profile); !ok {
		return errors.Errorf("unknown profile %q", s.Profile)
	}
	for name, p := range s.Profiles {
		for _, key := range p.Events {
			if key == AllEvents {
				continue
			}
			if _, err := gamepad.ParseEventKey(key); err != nil {
				return errors.Wrapf(err, "profile %q", name)
			}
		}
	}
	return nil
}

// Loader reads Settings and watches the config file for changes.
type Loader struct {
	v     *viper.Viper
	flags *pflag.FlagSet

	mu       sync.Mutex
	onChange []func(*Settings)
}

// NewLoader parses args (without the program name) and prepares viper.
func NewLoader(args []string) (*Loader, error) {
	fs := pflag.NewFlagSet("padsignal", pflag.ContinueOnError)
	fs.StringP("config", "c", "", "config file (default: padsignal.yaml in . or $HOME/.config/padsignal)")
	fs.String("listen", ":8080", "HTTP listen address")
	fs.String("source", "sdl", "controller backend: sdl or joydev")
	fs.String("joydev-path", "/dev/input/js0", "joystick device for the joydev source")
	fs.Duration("poll-interval", 16*time.Millisecond, "controller poll interval")
	fs.Int("hold-ms", int(gamepad.DefaultHold/time.Millisecond), "milliseconds a button must be down to count as held")
	fs.Float64("stick-deadzone", gamepad.DefaultStickDeadzone, "stick axis deadzone")
	fs.Float64("trigger-threshold", 0.5, "analog trigger travel that counts as pressed")
	fs.BoolP("debug", "d", false, "log every dispatched event")
	fs.Bool("tray", runtime.GOOS == "windows", "show a system tray icon (windows only)")
	fs.StringP("profile", "p", DefaultProfile, "active event profile")

	if err := fs.Parse(args); err != nil {
		return nil, errors.Wrap(err, "parse flags")
	}

	v := viper.New()
	v.SetConfigName("padsignal")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/padsignal")
	if path, _ := fs.GetString("config"); path != "" {
		v.SetConfigFile(path)
	}

	v.SetEnvPrefix("PADSIGNAL")
	v.AutomaticEnv()

	bind := map[string]string{
		"listen":            "listen",
		"source":            "source",
		"joydev_path":       "joydev-path",
		"poll_interval":     "poll-interval",
		"hold_ms":           "hold-ms",
		"stick_deadzone":    "stick-deadzone",
		"trigger_threshold": "trigger-threshold",
		"debug":             "debug",
		"tray":              "tray",
		"profile":           "profile",
	}
	for key, flag := range bind {
		if err := v.BindPFlag(key, fs.Lookup(flag)); err != nil {
			return nil, errors.Wrapf(err, "bind flag %s", flag)
		}
	}

	return &Loader{v: v, flags: fs}, nil
}

// Load reads the config file, if any, and returns validated settings.
func (l *Loader) Load() (*Settings, error) {
	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "read config")
		}
	}

	var s Settings
	if err := l.v.Unmarshal(&s); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	if s.Profiles == nil {
		s.Profiles = make(map[string]Profile)
	}
	if _, ok := s.Profiles[DefaultProfile]; !ok {
		s.Profiles[DefaultProfile] = Profile{Events: []string{AllEvents}, Sticks: true}
	}
	s.Profile = strings.ToLower(s.Profile)

	if err := s.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	return &s, nil
}

// ConfigFile returns the config file in use, or "" when running on defaults.
func (l *Loader) ConfigFile() string {
	return l.v.ConfigFileUsed()
}

// Watch calls fn with freshly loaded settings whenever the config file
// changes. Invalid files are logged and ignored.
func (l *Loader) Watch(fn func(*Settings)) {
	l.mu.Lock()
	l.onChange = append(l.onChange, fn)
	first := len(l.onChange) == 1
	l.mu.Unlock()

	if !first || l.ConfigFile() == "" {
		return
	}
	l.v.OnConfigChange(l.changed)
	l.v.WatchConfig()
}

func (l *Loader) changed(e fsnotify.Event) {
	if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
		return
	}

	s, err := l.Load()
	if err != nil {
		log.Printf("Config reload failed, keeping previous settings: %v", err)
		return
	}
	log.Printf("Config reloaded from %s", e.Name)

	l.mu.Lock()
	fns := append([]func(*Settings){}, l.onChange...)
	l.mu.Unlock()
	for _, fn := range fns {
		fn(s)
	}
}
