//go:build nosdl

package main

import (
	"strings"
	"testing"

	"github.com/soar/padsignal/internal/config"
)

func TestNewSourceWithoutSDL(t *testing.T) {
	_, err := newSource(&config.Settings{Source: "sdl"})
	if err == nil || !strings.Contains(err.Error(), "joydev") {
		t.Errorf("expected an error pointing at joydev, got %v", err)
	}
}
