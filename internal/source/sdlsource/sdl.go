// Package sdlsource reads joysticks through SDL3. Importing it requires the
// SDL3 shared library at startup.
package sdlsource

import (
	"context"
	"log"
	"time"

	"github.com/jupiterrider/purego-sdl3/sdl"
	"github.com/pkg/errors"

	"github.com/soar/padsignal/internal/gamepad"
	"github.com/soar/padsignal/internal/source"
)

var (
	_ source.Source = (*SDL)(nil)
	_ gamepad.Pacer = (*SDL)(nil)
)

type joystickInfo struct {
	joystick *sdl.Joystick
	mapping  *source.DeviceMapping
	name     string
	id       sdl.JoystickID
}

// SDL reads joysticks through the SDL3 joystick API. It follows one active
// joystick at a time; when it is removed the next connected one is promoted.
type SDL struct {
	triggerThreshold float64
	pollDelay        time.Duration
	debug            bool

	joysticks map[sdl.JoystickID]*joystickInfo
	activeID  sdl.JoystickID // the first connected joystick
	hasActive bool
	announced bool
}

func New(triggerThreshold float64, pollDelay time.Duration, debug bool) *SDL {
	return &SDL{
		triggerThreshold: triggerThreshold,
		pollDelay:        pollDelay,
		debug:            debug,
		joysticks:        make(map[sdl.JoystickID]*joystickInfo),
	}
}

// Open initializes SDL and opens already-connected joysticks. Must be called
// on a goroutine locked to its OS thread.
func (s *SDL) Open() error {
	if !sdl.Init(sdl.InitJoystick) {
		return errors.Errorf("SDL Init failed: %s", sdl.GetError())
	}
	log.Println("SDL3 Joystick subsystem initialized")

	for _, id := range sdl.GetJoysticks() {
		s.openJoystick(id)
	}
	return nil
}

func (s *SDL) Close() {
	for id, info := range s.joysticks {
		sdl.CloseJoystick(info.joystick)
		delete(s.joysticks, id)
	}
	sdl.Quit()
}

// Wait paces ticks with SDL's own delay.
func (s *SDL) Wait(ctx context.Context) error {
	sdl.DelayNS(uint64(s.pollDelay.Nanoseconds()))
	return ctx.Err()
}

func (s *SDL) Poll(l source.Lifecycle) {
	var event sdl.Event
	for sdl.PollEvent(&event) {
		switch event.Type() {
		case sdl.EventJoystickAdded:
			s.openJoystick(event.JDevice().Which)

		case sdl.EventJoystickRemoved:
			s.removeJoystick(event.JDevice().Which, l)

		case sdl.EventJoystickButtonDown:
			if s.debug {
				be := event.JButton()
				log.Printf("[DEBUG] Button DOWN: index=%d joystick=%d", be.Button, be.Which)
			}

		case sdl.EventJoystickButtonUp:
			if s.debug {
				be := event.JButton()
				log.Printf("[DEBUG] Button UP:   index=%d joystick=%d", be.Button, be.Which)
			}
		}
	}

	if s.hasActive && !s.announced {
		info := s.joysticks[s.activeID]
		snap, _ := s.Snapshot(int(s.activeID))
		s.announced = true
		l.Connected(int(s.activeID), info.name, snap)
	}
}

func (s *SDL) Snapshot(device int) (gamepad.Snapshot, bool) {
	if !s.hasActive || int(s.activeID) != device {
		return gamepad.Snapshot{}, false
	}
	info, exists := s.joysticks[s.activeID]
	if !exists || !sdl.JoystickConnected(info.joystick) {
		return gamepad.Snapshot{}, false
	}
	return info.mapping.Read(sdlDevice{info.joystick}, s.triggerThreshold), true
}

func (s *SDL) openJoystick(instanceID sdl.JoystickID) {
	if _, exists := s.joysticks[instanceID]; exists {
		return
	}

	js := sdl.OpenJoystick(instanceID)
	if js == nil {
		log.Printf("Failed to open joystick %d: %s", instanceID, sdl.GetError())
		return
	}

	jsID := sdl.GetJoystickID(js)
	vendorID := sdl.GetJoystickVendor(js)
	productID := sdl.GetJoystickProduct(js)
	name := sdl.GetJoystickName(js)
	mapping := source.GetMapping(vendorID, productID)

	s.joysticks[jsID] = &joystickInfo{
		joystick: js,
		mapping:  mapping,
		name:     name,
		id:       jsID,
	}

	log.Printf("Joystick connected: %s (VID=%04X PID=%04X) mapping=%s axes=%d buttons=%d hats=%d",
		name, vendorID, productID, mapping.Name,
		sdl.GetNumJoystickAxes(js), sdl.GetNumJoystickButtons(js), sdl.GetNumJoystickHats(js))

	if !s.hasActive {
		s.activate(jsID)
	}
}

func (s *SDL) activate(id sdl.JoystickID) {
	s.activeID = id
	s.hasActive = true
	s.announced = false
	log.Printf("Active joystick set: %s (ID=%d)", s.joysticks[id].name, id)
}

func (s *SDL) removeJoystick(instanceID sdl.JoystickID, l source.Lifecycle) {
	info, exists := s.joysticks[instanceID]
	if !exists {
		return
	}

	log.Printf("Joystick disconnected: %s", info.name)
	sdl.CloseJoystick(info.joystick)
	delete(s.joysticks, instanceID)

	if !s.hasActive || s.activeID != instanceID {
		return
	}

	s.hasActive = false
	if s.announced {
		l.Disconnected(int(instanceID))
	}

	// Promote the next available joystick
	for id, js := range s.joysticks {
		if sdl.JoystickConnected(js.joystick) {
			s.activate(id)
			break
		}
	}
}

// sdlDevice adapts an SDL joystick to source.RawDevice.
type sdlDevice struct {
	js *sdl.Joystick
}

func (d sdlDevice) NumButtons() int32 {
	return sdl.GetNumJoystickButtons(d.js)
}

func (d sdlDevice) Button(index int32) bool {
	return sdl.GetJoystickButton(d.js, index)
}

func (d sdlDevice) Axis(index int32) int16 {
	return sdl.GetJoystickAxis(d.js, index)
}

func (d sdlDevice) Hat() (uint8, bool) {
	if sdl.GetNumJoystickHats(d.js) == 0 {
		return 0, false
	}
	return sdl.GetJoystickHat(d.js, 0), true
}
