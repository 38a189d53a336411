package gamepad

import "github.com/pkg/errors"

var (
	// ErrDeviceUnavailable is returned by Session.Tick when no snapshot could
	// be read for the session's device.
	ErrDeviceUnavailable = errors.New("device unavailable")
	// ErrSessionRunning is returned by Session.Start on a running session.
	ErrSessionRunning = errors.New("session already running")
)
