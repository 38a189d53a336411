package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/lxzan/gws"

	"github.com/soar/padsignal/internal/gamepad"
	"github.com/soar/padsignal/internal/hub"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name   string
		msg    *hub.Message
		sticks bool
		want   string
	}{
		{"press", hub.NewButtonMessage(gamepad.A, gamepad.PhasePress, 0), false, "a.Press"},
		{"hold release", hub.NewButtonMessage(gamepad.Start, gamepad.PhaseHoldRelease, 1500*time.Millisecond), false, "start.HoldRelease held=1500ms"},
		{"stick hidden", hub.NewStickMessage(gamepad.StickVector{Stick: gamepad.LeftStick, X: 0.5}), false, ""},
		{"stick shown", hub.NewStickMessage(gamepad.StickVector{Stick: gamepad.RightStick, X: 0.5, Y: -0.9}), true, "rStick x=0.50 y=-0.90"},
		{"connect", hub.NewDeviceMessage(true, 3, "Xbox Controller"), false, "device 3 connected: Xbox Controller"},
		{"disconnect", hub.NewDeviceMessage(false, 3, ""), false, "device 3 disconnected"},
		{"profile", hub.NewProfileSelectedMessage("menu"), false, "profile menu"},
		{"full", hub.NewFullMessage(1, &hub.PadState{}), true, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := format(tt.msg, tt.sticks)
			if tt.want == "" {
				if got != "" {
					t.Errorf("expected nothing, got %q", got)
				}
				return
			}
			if !strings.HasSuffix(got, " "+tt.want) {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestWSURL(t *testing.T) {
	tests := []struct {
		in, want string
		wantErr  bool
	}{
		{in: "localhost:8080", want: "ws://localhost:8080/ws"},
		{in: "http://10.0.0.2:9090", want: "ws://10.0.0.2:9090/ws"},
		{in: "https://pad.example", want: "wss://pad.example/ws"},
		{in: "ws://host/custom", want: "ws://host/custom"},
		{in: "ftp://host", wantErr: true},
	}
	for _, tt := range tests {
		got, err := wsURL(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("wsURL(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("wsURL(%q) = %q, %v; expected %q", tt.in, got, err, tt.want)
		}
	}
}

type lineWriter chan string

func (w lineWriter) Write(p []byte) (int, error) {
	w <- strings.TrimSpace(string(p))
	return len(p), nil
}

func TestWatcherSession(t *testing.T) {
	selected := make(chan hub.ClientMessage, 1)
	upgrader := websocket.Upgrader{}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		var cm hub.ClientMessage
		if err := conn.ReadJSON(&cm); err != nil {
			return
		}
		selected <- cm
		conn.WriteJSON(hub.NewProfileSelectedMessage(cm.Profile))
		conn.WriteJSON(hub.NewButtonMessage(gamepad.B, gamepad.PhaseDown, 0))
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		time.Sleep(100 * time.Millisecond)
	}))
	defer ts.Close()

	target, err := wsURL(ts.URL)
	if err != nil {
		t.Fatal(err)
	}
	out := make(lineWriter, 4)
	w := &watcher{out: out, profile: "menu", done: make(chan error, 1)}
	socket, _, err := gws.NewClient(w, &gws.ClientOption{Addr: target})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	go socket.ReadLoop()

	select {
	case cm := <-selected:
		if cm.Type != "select_profile" || cm.Profile != "menu" {
			t.Errorf("unexpected client message %+v", cm)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no profile selection received")
	}

	for _, want := range []string{"profile menu", "b.Down"} {
		select {
		case line := <-out:
			if !strings.HasSuffix(line, want) {
				t.Errorf("expected %q, got %q", want, line)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("missing line %q", want)
		}
	}

	select {
	case <-w.done:
	case <-time.After(2 * time.Second):
		t.Errorf("watcher not closed")
	}
}
