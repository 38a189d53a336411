package gamepad

import (
	"time"
)

const (
	DefaultHold          = 300 * time.Millisecond
	DefaultStickDeadzone = 0.3
)

// ButtonHandler handles Down, Up, Press and Hold events.
type ButtonHandler func()

// HoldReleaseHandler receives how long the button was held.
type HoldReleaseHandler func(held time.Duration)

// StickHandler receives the filtered stick position every tick.
type StickHandler func(v StickVector)

// HandlerConfig maps event keys and sticks to handlers. A session swaps
// configs as a whole; a config must not be modified once handed to a session.
type HandlerConfig struct {
	// Debug enables [DEBUG] logging of dispatched events.
	Debug bool
	// Hold is how long a button must stay down to count as held.
	// Zero means DefaultHold.
	Hold time.Duration
	// StickDeadzone is the axis magnitude at or below which a stick axis reads
	// as zero. Zero means DefaultStickDeadzone.
	StickDeadzone float64

	buttons map[EventKey]any
	sticks  [2]any
}

func NewHandlerConfig() *HandlerConfig {
	return &HandlerConfig{
		buttons: make(map[EventKey]any),
	}
}

// Handle sets the handler for a Down, Up, Press or Hold event.
func (c *HandlerConfig) Handle(b ButtonID, p Phase, h ButtonHandler) *HandlerConfig {
	return c.Set(EventKey{Button: b, Phase: p}, h)
}

func (c *HandlerConfig) HandleHoldRelease(b ButtonID, h HoldReleaseHandler) *HandlerConfig {
	return c.Set(EventKey{Button: b, Phase: PhaseHoldRelease}, h)
}

func (c *HandlerConfig) HandleStick(s Stick, h StickHandler) *HandlerConfig {
	if int(s) < len(c.sticks) {
		c.sticks[s] = h
	}
	return c
}

// Set stores an arbitrary value under key. Values that do not fit the phase
// are kept but never invoked.
func (c *HandlerConfig) Set(key EventKey, handler any) *HandlerConfig {
	if c.buttons == nil {
		c.buttons = make(map[EventKey]any)
	}
	c.buttons[key] = handler
	return c
}

// SetStick stores an arbitrary value for a stick, see Set.
func (c *HandlerConfig) SetStick(s Stick, handler any) *HandlerConfig {
	if int(s) < len(c.sticks) {
		c.sticks[s] = handler
	}
	return c
}

func (c *HandlerConfig) lookup(key EventKey) (any, bool) {
	h, ok := c.buttons[key]
	return h, ok
}

func (c *HandlerConfig) stick(s Stick) any {
	if int(s) >= len(c.sticks) {
		return nil
	}
	return c.sticks[s]
}

// HoldThreshold returns Hold or its default.
func (c *HandlerConfig) HoldThreshold() time.Duration {
	if c == nil || c.Hold <= 0 {
		return DefaultHold
	}
	return c.Hold
}

// Deadzone returns StickDeadzone or its default.
func (c *HandlerConfig) Deadzone() float64 {
	if c == nil || c.StickDeadzone <= 0 {
		return DefaultStickDeadzone
	}
	return c.StickDeadzone
}
