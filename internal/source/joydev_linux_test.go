package source

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/soar/padsignal/internal/gamepad"
)

type lifecycleLog struct {
	connected    []int
	disconnected []int
}

func (l *lifecycleLog) Connected(device int, name string, initial gamepad.Snapshot) {
	l.connected = append(l.connected, device)
}

func (l *lifecycleLog) Disconnected(device int) {
	l.disconnected = append(l.disconnected, device)
}

// staleFile returns a file the read loop would already have closed.
func staleFile(t *testing.T) *os.File {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "js")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	return f
}

func TestJoydevReadFailsBeforeAnnounce(t *testing.T) {
	j := NewJoydev(filepath.Join(t.TempDir(), "js0"), 0.5)
	j.file = staleFile(t)
	var l lifecycleLog

	before := time.Now()
	j.Poll(&l)
	if j.file != nil {
		t.Fatalf("stale file should be dropped")
	}
	if !j.nextOpen.After(before) {
		t.Errorf("reopen should be scheduled, got %v", j.nextOpen)
	}
	if len(l.connected) != 0 || len(l.disconnected) != 0 {
		t.Errorf("unannounced device must not be reported: %+v", l)
	}

	// once the delay passed the device is tried again
	j.nextOpen = time.Time{}
	j.Poll(&l)
	if j.nextOpen.IsZero() {
		t.Errorf("failed reopen should schedule the next attempt")
	}
}

func TestJoydevReadFailsAfterAnnounce(t *testing.T) {
	j := NewJoydev(filepath.Join(t.TempDir(), "js0"), 0.5)
	j.file = staleFile(t)
	j.connected = true
	var l lifecycleLog

	j.Poll(&l)
	if j.file != nil || j.connected {
		t.Errorf("expected file dropped and device disconnected")
	}
	if len(l.disconnected) != 1 || l.disconnected[0] != joydevDevice {
		t.Errorf("expected one disconnect, got %v", l.disconnected)
	}

	j.Poll(&l)
	if len(l.disconnected) != 1 {
		t.Errorf("disconnect reported twice")
	}
}
