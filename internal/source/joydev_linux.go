//go:build linux

package source

import (
	"encoding/binary"
	"log"
	"os"
	"sync"
	"sync/atomic"
	"time"
	"unsafe"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"

	"github.com/soar/padsignal/internal/gamepad"
)

const (
	jsiocgName    = 0x80006a13 + (128 << 16)
	jsiocgButtons = 0x80016a12

	joydevDevice = 0
	reopenDelay  = time.Second
)

// Joydev reads a Linux joystick device such as /dev/input/js0. The device may
// be absent at Open; Poll keeps trying to open it.
type Joydev struct {
	path             string
	triggerThreshold float64

	state     joydevState
	file      *os.File
	name      string
	alive     atomic.Bool
	connected bool
	nextOpen  time.Time
	wg        sync.WaitGroup
}

func NewJoydev(path string, triggerThreshold float64) *Joydev {
	return &Joydev{
		path:             path,
		triggerThreshold: triggerThreshold,
	}
}

func (j *Joydev) Open() error {
	err := j.open()
	if errors.Is(err, os.ErrNotExist) {
		log.Printf("Waiting for joystick device %s", j.path)
		return nil
	}
	return err
}

func (j *Joydev) open() error {
	f, err := os.OpenFile(j.path, os.O_RDONLY, 0)
	if err != nil {
		return errors.Wrapf(err, "open %s", j.path)
	}

	name := make([]byte, 128)
	if err := ioctl(f, jsiocgName, unsafe.Pointer(&name[0])); err != nil {
		f.Close()
		return errors.Wrapf(err, "read name of %s", j.path)
	}
	var buttons uint8
	if err := ioctl(f, jsiocgButtons, unsafe.Pointer(&buttons)); err != nil {
		f.Close()
		return errors.Wrapf(err, "read button count of %s", j.path)
	}

	j.state.reset()
	j.state.mu.Lock()
	j.state.numBtn = int32(buttons)
	j.state.mu.Unlock()

	j.file = f
	j.name = cString(name)
	j.alive.Store(true)

	log.Printf("Joystick opened: %s (%s) buttons=%d", j.name, j.path, buttons)

	j.wg.Add(1)
	go j.readLoop(f)
	return nil
}

func (j *Joydev) readLoop(f *os.File) {
	defer j.wg.Done()
	for {
		var e jsEvent
		if err := binary.Read(f, binary.LittleEndian, &e); err != nil {
			if j.alive.Swap(false) {
				log.Printf("Joystick read failed: %s: %v", j.path, err)
			}
			f.Close()
			return
		}
		j.state.apply(e)
	}
}

func (j *Joydev) Poll(l Lifecycle) {
	alive := j.alive.Load()

	// The read loop closed the file, possibly before the device was
	// announced.
	if !alive && j.file != nil {
		j.file = nil
		j.nextOpen = time.Now().Add(reopenDelay)
		if j.connected {
			log.Printf("Joystick disconnected: %s", j.name)
			j.connected = false
			l.Disconnected(joydevDevice)
		}
		return
	}

	if !alive && j.file == nil && time.Now().After(j.nextOpen) {
		if err := j.open(); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				log.Printf("Joystick open failed: %v", err)
			}
			j.nextOpen = time.Now().Add(reopenDelay)
		}
		return
	}

	if alive && !j.connected && j.state.isReady() {
		j.connected = true
		l.Connected(joydevDevice, j.name, j.state.read(joydevMapping, j.triggerThreshold))
	}
}

func (j *Joydev) Snapshot(device int) (gamepad.Snapshot, bool) {
	if device != joydevDevice || !j.connected || !j.alive.Load() {
		return gamepad.Snapshot{}, false
	}
	return j.state.read(joydevMapping, j.triggerThreshold), true
}

func (j *Joydev) Close() {
	j.alive.Store(false)
	if j.file != nil {
		j.file.Close()
		j.file = nil
	}
	j.wg.Wait()
}

func ioctl(f *os.File, req uint, dest unsafe.Pointer) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, f.Fd(), uintptr(req), uintptr(dest))
	if errno != 0 {
		return errors.Wrapf(errno, "ioctl 0x%x", req)
	}
	return nil
}

func cString(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}
