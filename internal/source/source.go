// Package source reads controllers and reports them as gamepad snapshots.
// Backends that load native libraries live in subpackages so importing
// source never does.
package source

import (
	"github.com/soar/padsignal/internal/gamepad"
)

// Lifecycle receives device connect/disconnect notifications.
type Lifecycle interface {
	Connected(device int, name string, initial gamepad.Snapshot)
	Disconnected(device int)
}

// Source is a device backend. Open, Poll, Snapshot and Close must all be
// called from the same goroutine.
type Source interface {
	gamepad.SnapshotSource

	Open() error
	// Poll processes pending device notifications and reports them to l.
	Poll(l Lifecycle)
	Close()
}
