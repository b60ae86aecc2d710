package hub

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/edaniels/golog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soar/padmap/internal/engine"
)

func newHubClient(h *Hub, buffer int) *Client {
	return &Client{hub: h, send: make(chan []byte, buffer)}
}

// waitClients blocks until the hub's run loop has registered n clients.
func waitClients(t *testing.T, h *Hub, n int) {
	t.Helper()
	require.Eventually(t, func() bool {
		h.mu.RLock()
		defer h.mu.RUnlock()
		return len(h.clients) == n
	}, time.Second, time.Millisecond)
}

func recvMessage(t *testing.T, c *Client) WSMessage {
	t.Helper()
	select {
	case data := <-c.send:
		var msg WSMessage
		require.NoError(t, json.Unmarshal(data, &msg))
		return msg
	case <-time.After(time.Second):
		t.Fatalf("no message received")
		return WSMessage{}
	}
}

func TestHubBroadcastReachesAllClients(t *testing.T) {
	h := NewHub(golog.NewTestLogger(t))
	go h.Run()

	c1 := newHubClient(h, 4)
	c2 := newHubClient(h, 4)
	h.Register(c1)
	h.Register(c2)
	waitClients(t, h, 2)

	h.Broadcast([]byte(`{"type":"event","event":"focus_on"}`))
	assert.Equal(t, "focus_on", recvMessage(t, c1).Event)
	assert.Equal(t, "focus_on", recvMessage(t, c2).Event)
}

func TestHubDropsClientWithFullBuffer(t *testing.T) {
	h := NewHub(golog.NewTestLogger(t))
	go h.Run()

	stuck := newHubClient(h, 1)
	h.Register(stuck)
	waitClients(t, h, 1)

	h.Broadcast([]byte(`{}`))
	h.Broadcast([]byte(`{}`))

	// The second broadcast found the buffer full; the hub closes the client
	// instead of blocking.
	select {
	case <-stuck.send:
	case <-time.After(time.Second):
		t.Fatalf("expected buffered message")
	}
	select {
	case _, open := <-stuck.send:
		assert.False(t, open, "send channel closes when the client is dropped")
	case <-time.After(time.Second):
		t.Fatalf("client was not dropped")
	}
}

func TestBroadcasterForwardsStatus(t *testing.T) {
	h := NewHub(golog.NewTestLogger(t))
	go h.Run()
	c := newHubClient(h, 4)
	h.Register(c)
	waitClients(t, h, 1)

	b := NewBroadcaster(h, golog.NewTestLogger(t))
	changes := make(chan engine.Status, 1)
	go b.Run(changes)

	changes <- engine.Status{Enabled: true, Profile: "desktop", Layers: []string{"media"}}

	msg := recvMessage(t, c)
	assert.Equal(t, "status", msg.Type)
	require.NotNil(t, msg.Status)
	assert.True(t, msg.Status.Enabled)
	assert.Equal(t, "desktop", msg.Status.Profile)
	assert.Equal(t, []string{"media"}, msg.Status.Layers)
	assert.Greater(t, msg.Seq, int64(0))
}

func TestBroadcasterSendsInitialState(t *testing.T) {
	h := NewHub(golog.NewTestLogger(t))
	go h.Run()

	b := NewBroadcaster(h, golog.NewTestLogger(t))
	changes := make(chan engine.Status, 1)
	go b.Run(changes)
	changes <- engine.Status{Enabled: true, Profile: "desktop"}

	// Wait for the broadcaster to record the snapshot.
	require.Eventually(t, func() bool {
		b.mu.Lock()
		defer b.mu.Unlock()
		return b.hasState
	}, time.Second, 5*time.Millisecond)

	late := newHubClient(h, 4)
	b.SendInitialState(late)
	msg := recvMessage(t, late)
	assert.Equal(t, "status", msg.Type)
	assert.Equal(t, "desktop", msg.Status.Profile)
}

func TestBroadcasterFocusEvents(t *testing.T) {
	h := NewHub(golog.NewTestLogger(t))
	go h.Run()
	c := newHubClient(h, 4)
	h.Register(c)
	waitClients(t, h, 1)

	b := NewBroadcaster(h, golog.NewTestLogger(t))
	b.ShowFocus()
	assert.Equal(t, "focus_on", recvMessage(t, c).Event)
	b.HideFocus()
	assert.Equal(t, "focus_off", recvMessage(t, c).Event)
}
