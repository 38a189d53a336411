package main

import (
	"context"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/soar/padsignal/internal/config"
	"github.com/soar/padsignal/internal/hub"
	"github.com/soar/padsignal/internal/monitor"
	"github.com/soar/padsignal/internal/server"
	"github.com/soar/padsignal/internal/source"
	"github.com/soar/padsignal/internal/tray"
)

// Cross-platform signal handling: use os.Interrupt on all platforms
// On Windows: os.Interrupt is sent when Ctrl+C is pressed
// On Unix: os.Interrupt is equivalent to syscall.SIGINT
var shutdownSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}

func newSource(s *config.Settings) (source.Source, error) {
	if s.Source == "joydev" {
		return source.NewJoydev(s.JoydevPath, s.TriggerThreshold), nil
	}
	return newSDLSource(s)
}

// browserURL turns a listen address such as ":8080" into a URL for the
// browser.
func browserURL(listen string) string {
	host, port, err := net.SplitHostPort(listen)
	if err != nil {
		return "http://" + listen
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, port)
}

func main() {
	loader, err := config.NewLoader(os.Args[1:])
	if err != nil {
		log.Fatalf("%v", err)
	}
	settings, err := loader.Load()
	if err != nil {
		log.Fatalf("%v", err)
	}
	if f := loader.ConfigFile(); f != "" {
		log.Printf("Using config file %s", f)
	}

	// Create cancellable context
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, shutdownSignals...)

	// Create and start hub
	h := hub.NewHub()
	go h.Run()

	broadcaster := hub.NewBroadcaster(h)
	go broadcaster.Run(ctx)

	src, err := newSource(settings)
	if err != nil {
		log.Fatalf("%v", err)
	}
	mon, err := monitor.New(src, settings, broadcaster)
	if err != nil {
		log.Fatalf("%v", err)
	}
	loader.Watch(mon.Apply)

	// Create and start HTTP server
	srv := server.New(h, broadcaster, mon, getFrontendFS(), settings.Listen)
	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- err
		}
	}()

	url := browserURL(settings.Listen)
	log.Printf("padsignal started: %s (source=%s profile=%s)", url, settings.Source, settings.Profile)

	// Channel for tray-triggered shutdown
	shutdownRequested := make(chan struct{})

	if settings.Tray {
		t := tray.New(url, settings.ProfileNames(), mon, func() {
			close(shutdownRequested)
		})
		mon.OnProfile(t.ProfileChanged)
		go t.Run(tray.Icon())
	} else {
		log.Println("Press Ctrl+C to exit")
	}

	// The monitor locks its goroutine to an OS thread for SDL.
	monitorDone := make(chan struct{})
	monitorErrCh := make(chan error, 1)
	go func() {
		defer close(monitorDone)
		if err := mon.Run(ctx); err != nil {
			monitorErrCh <- err
		}
	}()

	exitCode := 0
	select {
	case <-sigCh:
		log.Println("Shutting down...")
	case <-shutdownRequested:
		log.Println("Shutdown requested from tray")
	case err := <-serverErrCh:
		log.Printf("HTTP server error: %v", err)
		exitCode = 1
	case err := <-monitorErrCh:
		log.Printf("Controller source error: %v", err)
		exitCode = 1
	}
	cancel()

	<-monitorDone

	// Shutdown the HTTP server gracefully
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	log.Println("padsignal stopped")
	if exitCode != 0 {
		os.Exit(exitCode)
	}
}
