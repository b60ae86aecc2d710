package hub

import (
	"time"

	"github.com/soar/padmap/internal/engine"
)

// WSMessage is a server-to-client message.
type WSMessage struct {
	Type      string         `json:"type"` // "status" or "event"
	Seq       int64          `json:"seq"`
	Timestamp int64          `json:"timestamp"` // Unix milliseconds
	Status    *engine.Status `json:"status,omitempty"`
	Event     string         `json:"event,omitempty"`
}

// NewStatusMessage wraps an engine status snapshot.
func NewStatusMessage(seq int64, s engine.Status) *WSMessage {
	return &WSMessage{
		Type:      "status",
		Seq:       seq,
		Timestamp: time.Now().UnixMilli(),
		Status:    &s,
	}
}

// NewEventMessage wraps a named mode-transition event.
func NewEventMessage(seq int64, event string) *WSMessage {
	return &WSMessage{
		Type:      "event",
		Seq:       seq,
		Timestamp: time.Now().UnixMilli(),
		Event:     event,
	}
}

// ClientMessage is a client-to-server command.
type ClientMessage struct {
	Type string `json:"type"` // "enable" or "disable"
}
