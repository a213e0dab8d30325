package sse

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_PublishToSubscriber(t *testing.T) {
	hub := NewHub()

	ch, cleanup := hub.Subscribe("user-1")
	defer cleanup()

	delivered := hub.Publish("user-1", Event{Type: "notification", Data: map[string]string{"title": "hi"}})
	assert.Equal(t, 1, delivered)

	ev := <-ch
	assert.Equal(t, "notification", ev.Type)

	assert.Equal(t, 0, hub.Publish("user-2", Event{Type: "notification"}))
}

func TestHub_CleanupRemovesSubscriber(t *testing.T) {
	hub := NewHub()

	ch, cleanup := hub.Subscribe("user-1")
	assert.Equal(t, 1, hub.SubscriberCount("user-1"))

	cleanup()
	cleanup()

	assert.Equal(t, 0, hub.SubscriberCount("user-1"))
	_, open := <-ch
	assert.False(t, open)
}

func TestHub_FullBufferDrops(t *testing.T) {
	hub := NewHub()
	_, cleanup := hub.Subscribe("user-1")
	defer cleanup()

	for i := 0; i < bufferSize; i++ {
		require.Equal(t, 1, hub.Publish("user-1", Event{Type: "tick"}))
	}
	assert.Equal(t, 0, hub.Publish("user-1", Event{Type: "tick"}))
}

func TestEvent_Write(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Event{Type: "notification", Data: map[string]int{"n": 1}}.Write(&buf))
	assert.Equal(t, "event: notification\ndata: {\"n\":1}\n\n", buf.String())
}

func TestHub_CloseAll(t *testing.T) {
	hub := NewHub()

	first, cleanupFirst := hub.Subscribe("user-1")
	second, cleanupSecond := hub.Subscribe("user-2")

	hub.CloseAll()

	_, open := <-first
	assert.False(t, open)
	_, open = <-second
	assert.False(t, open)
	assert.Equal(t, 0, hub.SubscriberCount("user-1"))

	// Cleanup after CloseAll must not close the channel twice.
	assert.NotPanics(t, cleanupFirst)
	assert.NotPanics(t, cleanupSecond)
}
