package source

import (
	"sync"

	"github.com/soar/padsignal/internal/gamepad"
)

// js_event type flags, see linux/joystick.h.
const (
	jsEventButton uint8 = 0x01
	jsEventAxis   uint8 = 0x02
	jsEventInit   uint8 = 0x80
)

const (
	maxJoydevButtons = 64
	maxJoydevAxes    = 16
)

// jsEvent mirrors struct js_event.
type jsEvent struct {
	Timestamp uint32
	Value     int16
	Type      uint8
	Index     uint8
}

// joydevState is the latest button/axis state of a joydev device, written by
// the reader goroutine and copied out by Snapshot.
type joydevState struct {
	mu      sync.Mutex
	buttons [maxJoydevButtons]bool
	axes    [maxJoydevAxes]int16
	ready   bool
	numBtn  int32
}

func (s *joydevState) apply(e jsEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch e.Type &^ jsEventInit {
	case jsEventButton:
		if int(e.Index) < len(s.buttons) {
			s.buttons[e.Index] = e.Value != 0
		}
	case jsEventAxis:
		if int(e.Index) < len(s.axes) {
			s.axes[e.Index] = e.Value
		}
	}
	s.ready = true
}

func (s *joydevState) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buttons = [maxJoydevButtons]bool{}
	s.axes = [maxJoydevAxes]int16{}
	s.ready = false
}

func (s *joydevState) isReady() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ready
}

// read copies the state and maps it to a snapshot.
func (s *joydevState) read(m *DeviceMapping, triggerThreshold float64) gamepad.Snapshot {
	s.mu.Lock()
	frozen := joydevFrozen{buttons: s.buttons, axes: s.axes, numBtn: s.numBtn}
	s.mu.Unlock()
	return m.Read(frozen, triggerThreshold)
}

// joydevFrozen is a copy of joydevState implementing RawDevice.
type joydevFrozen struct {
	buttons [maxJoydevButtons]bool
	axes    [maxJoydevAxes]int16
	numBtn  int32
}

func (f joydevFrozen) NumButtons() int32 {
	if f.numBtn == 0 {
		return maxJoydevButtons
	}
	return f.numBtn
}

func (f joydevFrozen) Button(index int32) bool {
	if index < 0 || int(index) >= len(f.buttons) {
		return false
	}
	return f.buttons[index]
}

func (f joydevFrozen) Axis(index int32) int16 {
	if index < 0 || int(index) >= len(f.axes) {
		return 0
	}
	return f.axes[index]
}

func (f joydevFrozen) Hat() (uint8, bool) {
	return 0, false
}
