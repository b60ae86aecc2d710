package hub

import (
	"encoding/json"

	"github.com/edaniels/golog"
	"github.com/gorilla/websocket"
)

// Controllable is the slice of the engine a client may drive.
type Controllable interface {
	Enable()
	Disable()
}

// Client represents a connected WebSocket client.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	logger golog.Logger
}

// NewClient creates a new Client attached to the hub.
func NewClient(hub *Hub, conn *websocket.Conn, logger golog.Logger) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, 256),
		logger: logger,
	}
}

// WritePump sends messages from the send channel to the WebSocket connection.
func (c *Client) WritePump() {
	defer func() {
		c.conn.Close()
	}()

	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			break
		}
	}
}

// ReadPump reads client commands and applies them to the engine.
func (c *Client) ReadPump(ctrl Controllable) {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			break
		}

		var cmd ClientMessage
		if err := json.Unmarshal(message, &cmd); err != nil {
			c.logger.Warnw("bad client message", "error", err)
			continue
		}

		switch cmd.Type {
		case "enable":
			ctrl.Enable()
		case "disable":
			ctrl.Disable()
		default:
			c.logger.Debugw("unknown client command", "type", cmd.Type)
		}
	}
}
