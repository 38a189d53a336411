//go:build !nosdl

package main

import (
	"github.com/soar/padsignal/internal/config"
	"github.com/soar/padsignal/internal/source"
	"github.com/soar/padsignal/internal/source/sdlsource"
)

func newSDLSource(s *config.Settings) (source.Source, error) {
	return sdlsource.New(s.TriggerThreshold, s.PollInterval, s.Debug), nil
}
