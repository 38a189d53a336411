//go:build nosdl

package main

import (
	"github.com/pkg/errors"

	"github.com/soar/padsignal/internal/config"
	"github.com/soar/padsignal/internal/source"
)

// Built with -tags nosdl: purego-sdl3 is not linked, so its init never looks
// for libSDL3.
func newSDLSource(s *config.Settings) (source.Source, error) {
	return nil, errors.Errorf("source %q unavailable: built without SDL support, use --source joydev", s.Source)
}
