package hub

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/edaniels/golog"

	"github.com/soar/padmap/internal/engine"
)

const fullSyncInterval = 5 * time.Second

// Broadcaster forwards engine status snapshots to the hub and doubles as the
// engine's indicator sink: focus-mode transitions go out as "event" messages
// for the overlay to render.
type Broadcaster struct {
	hub    *Hub
	logger golog.Logger
	seq    atomic.Int64

	mu        sync.Mutex
	lastState engine.Status
	hasState  bool
}

func NewBroadcaster(h *Hub, logger golog.Logger) *Broadcaster {
	return &Broadcaster{
		hub:    h,
		logger: logger,
	}
}

// Run forwards snapshots until the changes channel closes, resending the last
// one periodically so late or lossy clients converge.
func (b *Broadcaster) Run(changes <-chan engine.Status) {
	ticker := time.NewTicker(fullSyncInterval)
	defer ticker.Stop()

	for {
		select {
		case state, ok := <-changes:
			if !ok {
				return
			}
			b.mu.Lock()
			b.lastState = state
			b.hasState = true
			b.mu.Unlock()
			b.sendStatus(state)

		case <-ticker.C:
			b.mu.Lock()
			state, ok := b.lastState, b.hasState
			b.mu.Unlock()
			if ok {
				b.sendStatus(state)
			}
		}
	}
}

// SendInitialState sends the last known status to a newly connected client.
func (b *Broadcaster) SendInitialState(c *Client) {
	b.mu.Lock()
	state, ok := b.lastState, b.hasState
	b.mu.Unlock()
	if !ok {
		return
	}
	data, err := json.Marshal(NewStatusMessage(b.seq.Add(1), state))
	if err != nil {
		b.logger.Errorw("marshal initial status", "error", err)
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

// ShowFocus implements output.Indicator.
func (b *Broadcaster) ShowFocus() {
	b.sendEvent("focus_on")
}

// HideFocus implements output.Indicator.
func (b *Broadcaster) HideFocus() {
	b.sendEvent("focus_off")
}

func (b *Broadcaster) sendStatus(state engine.Status) {
	data, err := json.Marshal(NewStatusMessage(b.seq.Add(1), state))
	if err != nil {
		b.logger.Errorw("marshal status", "error", err)
		return
	}
	b.hub.Broadcast(data)
}

func (b *Broadcaster) sendEvent(event string) {
	data, err := json.Marshal(NewEventMessage(b.seq.Add(1), event))
	if err != nil {
		b.logger.Errorw("marshal event", "error", err)
		return
	}
	b.hub.Broadcast(data)
}
