package hub

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teslashibe/go-finch/internal/log"
)

func newTestClient(h *Hub) *Client {
	c := &Client{hub: h, send: make(chan Message, sendBuffer)}
	c.joined = h.join(c)
	return c
}

func receive(t *testing.T, c *Client) Message {
	t.Helper()
	select {
	case m, ok := <-c.send:
		require.True(t, ok, "send channel closed")
		return m
	case <-time.After(2 * time.Second):
		t.Fatal("no message received")
		return Message{}
	}
}

func startHub(t *testing.T) (*Hub, context.CancelFunc) {
	t.Helper()
	h := New("test", log.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	go h.Run(ctx)
	t.Cleanup(cancel)
	return h, cancel
}

func TestHub_FanOut(t *testing.T) {
	h, _ := startHub(t)
	a, b := newTestClient(h), newTestClient(h)
	require.True(t, a.joined)
	require.True(t, b.joined)

	require.NoError(t, h.BroadcastJSON(map[string]int{"n": 1}))

	for _, c := range []*Client{a, b} {
		m := receive(t, c)
		assert.JSONEq(t, `{"n":1}`, string(m.Data))
	}
	assert.Eventually(t, func() bool { return h.ClientCount() == 2 }, time.Second, 10*time.Millisecond)
}

func TestHub_ReplaysLastMessage(t *testing.T) {
	h, _ := startHub(t)
	require.NoError(t, h.BroadcastJSON([]int{1, 2, 3}))

	// Let the run loop drain the broadcast with no one listening.
	assert.Eventually(t, func() bool { return len(h.broadcast) == 0 }, time.Second, 10*time.Millisecond)

	late := newTestClient(h)
	m := receive(t, late)
	assert.JSONEq(t, `[1,2,3]`, string(m.Data))
}

func TestHub_Unregister(t *testing.T) {
	h, _ := startHub(t)
	c := newTestClient(h)
	h.leave(c)

	_, ok := <-c.send
	assert.False(t, ok)
	assert.Eventually(t, func() bool { return h.ClientCount() == 0 }, time.Second, 10*time.Millisecond)
}

func TestHub_DropsSlowClient(t *testing.T) {
	h, _ := startHub(t)
	c := newTestClient(h)

	// Never read: the client's buffer fills and the hub gives up on it.
	for i := 0; i < sendBuffer+1; i++ {
		h.Broadcast(NewJSONMessage([]byte{'0' + byte(i%10)}))
		time.Sleep(time.Millisecond)
	}

	assert.Eventually(t, func() bool { return h.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
	n := 0
	for range c.send {
		n++
	}
	assert.Equal(t, sendBuffer, n)
}

func TestHub_Stop(t *testing.T) {
	h, cancel := startHub(t)
	c := newTestClient(h)
	assert.True(t, h.IsRunning())

	cancel()
	_, ok := <-c.send
	assert.False(t, ok)

	late := newTestClient(h)
	assert.False(t, late.joined)
}

func TestHub_BroadcastWithoutRun(t *testing.T) {
	h := New("idle", log.Nop())
	require.NoError(t, h.BroadcastJSON("x"))
	require.NotNil(t, h.Last())
	assert.Equal(t, []byte(`"x"`), h.Last().Data)
	assert.False(t, h.IsRunning())
}
