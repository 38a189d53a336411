//go:build !linux

package source

import (
	"github.com/pkg/errors"

	"github.com/soar/padsignal/internal/gamepad"
)

// Joydev is only available on Linux.
type Joydev struct{}

func NewJoydev(path string, triggerThreshold float64) *Joydev {
	return &Joydev{}
}

func (j *Joydev) Open() error {
	return errors.New("joydev source is only supported on linux")
}

func (j *Joydev) Poll(Lifecycle) {}

func (j *Joydev) Snapshot(int) (gamepad.Snapshot, bool) {
	return gamepad.Snapshot{}, false
}

func (j *Joydev) Close() {}
