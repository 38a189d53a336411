// Command padwatch connects to a running padsignal server and prints the
// events it forwards.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/lxzan/gws"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"

	"github.com/soar/padsignal/internal/hub"
)

type watcher struct {
	gws.BuiltinEventHandler

	out     io.Writer
	profile string
	sticks  bool
	done    chan error
}

func (w *watcher) OnOpen(socket *gws.Conn) {
	if w.profile == "" {
		return
	}
	data, _ := json.Marshal(hub.ClientMessage{Type: "select_profile", Profile: w.profile})
	if err := socket.WriteMessage(gws.OpcodeText, data); err != nil {
		log.Printf("Failed to select profile: %v", err)
	}
}

func (w *watcher) OnClose(socket *gws.Conn, err error) {
	w.done <- err
}

func (w *watcher) OnMessage(socket *gws.Conn, message *gws.Message) {
	defer message.Close()

	var msg hub.Message
	if err := json.Unmarshal(message.Bytes(), &msg); err != nil {
		log.Printf("Bad message from server: %v", err)
		return
	}
	if line := format(&msg, w.sticks); line != "" {
		fmt.Fprintln(w.out, line)
	}
}

// format renders msg as one line, or "" for messages not worth printing.
func format(msg *hub.Message, sticks bool) string {
	ts := time.UnixMilli(msg.Timestamp).Format("15:04:05.000")

	switch msg.Type {
	case hub.TypeEvent:
		if msg.Button == nil {
			return ""
		}
		line := fmt.Sprintf("%s %s.%s", ts, msg.Button.Button, msg.Button.Phase)
		if msg.Button.HeldMs > 0 {
			line += fmt.Sprintf(" held=%dms", msg.Button.HeldMs)
		}
		return line

	case hub.TypeStick:
		if !sticks || msg.Stick == nil {
			return ""
		}
		return fmt.Sprintf("%s %s x=%.2f y=%.2f", ts, msg.Stick.Stick, msg.Stick.X, msg.Stick.Y)

	case hub.TypeDevice:
		if msg.Device == nil {
			return ""
		}
		if msg.Device.Connected {
			return fmt.Sprintf("%s device %d connected: %s", ts, msg.Device.Device, msg.Device.Name)
		}
		return fmt.Sprintf("%s device %d disconnected", ts, msg.Device.Device)

	case hub.TypeProfileSelected:
		return fmt.Sprintf("%s profile %s", ts, msg.Profile)

	case hub.TypeFull:
		// periodic syncs repeat what the events already said
		return ""
	}
	return ""
}

// wsURL accepts "host:port", "http://host:port" or a full ws:// URL.
func wsURL(addr string) (string, error) {
	if !strings.Contains(addr, "://") {
		addr = "ws://" + addr
	}
	u, err := url.Parse(addr)
	if err != nil {
		return "", errors.Wrapf(err, "bad address %q", addr)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", errors.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Path == "" || u.Path == "/" {
		u.Path = "/ws"
	}
	return u.String(), nil
}

func main() {
	fs := pflag.NewFlagSet("padwatch", pflag.ExitOnError)
	addr := fs.StringP("addr", "a", "localhost:8080", "padsignal server address")
	profile := fs.StringP("profile", "p", "", "switch the server to this profile on connect")
	sticks := fs.BoolP("sticks", "s", false, "print stick movement")
	fs.Parse(os.Args[1:])

	target, err := wsURL(*addr)
	if err != nil {
		log.Fatalf("%v", err)
	}

	w := &watcher{
		out:     os.Stdout,
		profile: *profile,
		sticks:  *sticks,
		done:    make(chan error, 1),
	}
	socket, _, err := gws.NewClient(w, &gws.ClientOption{Addr: target})
	if err != nil {
		log.Fatalf("Failed to connect to %s: %v", target, err)
	}
	log.Printf("Connected to %s", target)
	go socket.ReadLoop()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case <-ctx.Done():
		socket.WriteClose(1000, nil)
		select {
		case <-w.done:
		case <-time.After(time.Second):
		}
	case err := <-w.done:
		if err != nil && !errors.Is(err, io.EOF) {
			log.Printf("Connection closed: %v", err)
		}
	}
}
