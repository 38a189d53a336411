package hub

import (
	"encoding/json"
	"log"

	"github.com/gorilla/websocket"
)

// ProfileSwitcher switches the active event profile.
type ProfileSwitcher interface {
	SetProfile(name string) bool
}

// Client represents a connected WebSocket client.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// NewClient creates a new Client attached to the hub.
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		hub:  hub,
		conn: conn,
		send: make(chan []byte, 256),
	}
}

// WritePump sends messages from the send channel to the WebSocket connection.
func (c *Client) WritePump() {
	defer c.conn.Close()

	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			break
		}
	}
}

// ReadPumpWithHandler reads messages from the WebSocket and handles client
// commands. The switcher announces a successful profile change to every
// client.
func (c *Client) ReadPumpWithHandler(switcher ProfileSwitcher) {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			break
		}

		var clientMsg ClientMessage
		if err := json.Unmarshal(message, &clientMsg); err != nil {
			log.Printf("Error parsing client message: %v", err)
			continue
		}

		switch clientMsg.Type {
		case "select_profile":
			if switcher.SetProfile(clientMsg.Profile) {
				log.Printf("Client switched to profile %q", clientMsg.Profile)
			} else {
				log.Printf("Failed to switch to profile %q: unknown profile", clientMsg.Profile)
			}
		default:
			log.Printf("Unknown client message type %q", clientMsg.Type)
		}
	}
}
