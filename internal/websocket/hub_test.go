package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"deepseek-chat-be/internal/pkg/logger"
	"deepseek-chat-be/pkg/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub(nil, time.Millisecond, logger.NewNopLogger())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return hub
}

func registered(t *testing.T, hub *Hub, userID string) *Client {
	t.Helper()
	c := NewClient(hub, nil, userID)
	hub.Register(c)
	require.Eventually(t, func() bool { return hub.ClientCount(userID) == 1 }, time.Second, time.Millisecond)
	return c
}

func next(t *testing.T, c *Client) Envelope {
	t.Helper()
	select {
	case raw := <-c.Send:
		var env Envelope
		require.NoError(t, json.Unmarshal(raw, &env))
		return env
	case <-time.After(time.Second):
		t.Fatal("no message delivered")
		return Envelope{}
	}
}

func TestSendOnlyReachesOwner(t *testing.T) {
	hub := startHub(t)
	alice := registered(t, hub, "alice")
	bob := registered(t, hub, "bob")

	hub.Send("alice", events.NewConversationEvent(events.ConversationRenamed, "alice", "c1", map[string]interface{}{"name": "x"}))

	env := next(t, alice)
	assert.Equal(t, events.ConversationRenamed, env.Type)
	assert.Len(t, bob.Send, 0)
}

func TestGeneratedEventPlaysReveal(t *testing.T) {
	hub := startHub(t)
	c := registered(t, hub, "alice")

	hub.Send("alice", events.NewConversationEvent(events.MessageGenerated, "alice", "c1", map[string]interface{}{"content": "Hi there"}))

	assert.Equal(t, events.MessageGenerated, next(t, c).Type)

	var frames []map[string]interface{}
	for i := 0; i < 3; i++ {
		env := next(t, c)
		require.Equal(t, TypeReveal, env.Type)
		frames = append(frames, env.Data.(map[string]interface{}))
	}
	assert.Equal(t, "Hi", frames[0]["content"])
	assert.Equal(t, "Hi there", frames[1]["content"])
	assert.Equal(t, true, frames[2]["done"])
	assert.Equal(t, "c1", frames[2]["chat_id"])
}

func TestUnregisterCancelsClient(t *testing.T) {
	hub := startHub(t)
	c := registered(t, hub, "alice")

	hub.Unregister(c)

	select {
	case <-c.Context().Done():
	case <-time.After(time.Second):
		t.Fatal("client context not cancelled")
	}
	assert.Equal(t, 0, hub.ClientCount("alice"))
	assert.False(t, c.enqueue([]byte("late")))
}

func TestRegisterAfterStopDoesNotBlock(t *testing.T) {
	hub := NewHub(nil, time.Millisecond, logger.NewNopLogger())
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()
	cancel()
	<-stopped

	c := NewClient(hub, nil, "alice")
	hub.Register(c)
	hub.Unregister(c)

	assert.Error(t, c.Context().Err())
	assert.Equal(t, 0, hub.ClientCount("alice"))
}

type warnCounter struct {
	mu    sync.Mutex
	warns []string
}

func (l *warnCounter) Debug(string, string, map[string]interface{}) {}
func (l *warnCounter) Info(string, string, map[string]interface{}) {}
func (l *warnCounter) Error(string, string, map[string]interface{}) {}
func (l *warnCounter) Sync() error { return nil }

func (l *warnCounter) Warn(_ string, message string, _ map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warns = append(l.warns, message)
}

func (l *warnCounter) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.warns)
}

func TestSendSkipsClosedClientQuietly(t *testing.T) {
	log := &warnCounter{}
	hub := NewHub(nil, time.Millisecond, log)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	gone := registered(t, hub, "alice")
	live := NewClient(hub, nil, "alice")
	hub.Register(live)
	require.Eventually(t, func() bool { return hub.ClientCount("alice") == 2 }, time.Second, time.Millisecond)
	gone.cancel()

	hub.Send("alice", events.NewConversationEvent(events.ConversationRenamed, "alice", "c1", nil))

	assert.Equal(t, events.ConversationRenamed, next(t, live).Type)
	assert.Len(t, gone.Send, 0)
	assert.Zero(t, log.count())
}
