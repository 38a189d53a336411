// Package tray shows the system tray icon and menu.
package tray

import (
	"log"
	"os/exec"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"

	"fyne.io/systray"
)

// ShutdownFunc is called when "Exit" is clicked
type ShutdownFunc func()

// ProfileSwitcher selects the active event profile.
type ProfileSwitcher interface {
	Profile() string
	SetProfile(name string) bool
}

// Tray manages the system tray icon and menu
type Tray struct {
	url          string
	profiles     []string
	switcher     ProfileSwitcher
	shutdownFunc ShutdownFunc
	once         sync.Once
	shuttingDown atomic.Bool
	menuOpen     *systray.MenuItem
	menuExit     *systray.MenuItem

	mu           sync.Mutex
	menuProfile  *systray.MenuItem
	profileItems map[string]*systray.MenuItem
	shown        map[string]bool
}

// New creates a new Tray instance. url is opened by "Open Browser"; profiles
// fill the "Profile" submenu.
func New(url string, profiles []string, switcher ProfileSwitcher, shutdownFn ShutdownFunc) *Tray {
	return &Tray{
		url:          url,
		profiles:     profiles,
		switcher:     switcher,
		shutdownFunc: shutdownFn,
	}
}

// Run initializes and runs the system tray (blocks until Quit())
func (t *Tray) Run(iconData []byte) {
	systray.Run(func() {
		t.onReady(iconData)
	}, func() {
		t.onExit()
	})
}

func (t *Tray) onReady(iconData []byte) {
	if iconData != nil {
		systray.SetIcon(iconData)
	}
	systray.SetTitle("padsignal")
	systray.SetTooltip("padsignal - " + t.url)

	t.menuOpen = systray.AddMenuItem("Open Browser", "Open web interface")

	current := t.switcher.Profile()
	t.mu.Lock()
	t.menuProfile = systray.AddMenuItem("Profile", "Select which events are forwarded")
	t.profileItems = make(map[string]*systray.MenuItem, len(t.profiles))
	t.shown = make(map[string]bool, len(t.profiles))
	t.syncProfiles(current, t.profiles)
	t.mu.Unlock()

	systray.AddSeparator()
	t.menuExit = systray.AddMenuItem("Exit", "Quit application")

	// Handle menu clicks in separate goroutines to prevent blocking
	go t.handleMenuClicks()

	log.Println("System tray initialized")
}

func (t *Tray) handleMenuClicks() {
	for {
		select {
		case <-t.menuOpen.ClickedCh:
			if !t.shuttingDown.Load() {
				t.openBrowser()
			}
		case <-t.menuExit.ClickedCh:
			if t.shuttingDown.CompareAndSwap(false, true) {
				t.once.Do(t.shutdownFunc)
				systray.Quit()
				return
			}
		}
	}
}

func (t *Tray) handleProfileClicks(name string, item *systray.MenuItem) {
	for range item.ClickedCh {
		if t.shuttingDown.Load() {
			return
		}
		if !t.switcher.SetProfile(name) {
			log.Printf("Tray: profile %q is no longer configured", name)
		}
	}
}

// ProfileChanged updates the "Profile" submenu to profiles and moves the
// check mark to name. It is safe to call before the tray is ready.
func (t *Tray) ProfileChanged(name string, profiles []string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.profiles = profiles
	if t.menuProfile == nil {
		return
	}
	t.syncProfiles(name, profiles)
}

// syncProfiles must be called with mu held. Menu items cannot be removed on
// every platform, so profiles that went away are hidden and shown again if
// they come back.
func (t *Tray) syncProfiles(current string, profiles []string) {
	add, show, hide := menuChanges(t.shown, profiles)
	for _, name := range add {
		item := t.menuProfile.AddSubMenuItemCheckbox(name, "Switch to profile "+name, false)
		t.profileItems[name] = item
		go t.handleProfileClicks(name, item)
	}
	for _, name := range show {
		t.profileItems[name].Show()
	}
	for _, name := range hide {
		t.profileItems[name].Hide()
	}
	for _, name := range add {
		t.shown[name] = true
	}
	for _, name := range show {
		t.shown[name] = true
	}
	for _, name := range hide {
		t.shown[name] = false
	}

	for n, item := range t.profileItems {
		if n == current {
			item.Check()
		} else {
			item.Uncheck()
		}
	}
}

// menuChanges compares the submenu items, keyed by profile with their
// visibility, against profiles. It returns the profiles needing a new item,
// the hidden items to show again and the visible items to hide.
func menuChanges(items map[string]bool, profiles []string) (add, show, hide []string) {
	want := make(map[string]bool, len(profiles))
	for _, name := range profiles {
		want[name] = true
		visible, exists := items[name]
		switch {
		case !exists:
			add = append(add, name)
		case !visible:
			show = append(show, name)
		}
	}
	for name, visible := range items {
		if visible && !want[name] {
			hide = append(hide, name)
		}
	}
	sort.Strings(hide)
	return add, show, hide
}

func (t *Tray) onExit() {
	t.shuttingDown.Store(true)
	log.Println("System tray exiting")
}

// openBrowser opens the default web browser
func (t *Tray) openBrowser() {
	// Prevent multiple browser launches during shutdown
	if t.shuttingDown.Load() {
		return
	}

	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", t.url)
	case "darwin":
		cmd = exec.Command("open", t.url)
	default:
		cmd = exec.Command("xdg-open", t.url)
	}

	if err := cmd.Start(); err != nil {
		log.Printf("Failed to open browser: %v", err)
	}
}
