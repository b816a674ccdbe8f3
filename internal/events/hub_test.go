package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
)

func TestDisabledHubIsNoOp(t *testing.T) {
	hub := NewHub(0, arbor.NewLogger())
	require.NoError(t, hub.Start())

	// Must not panic or block with no listener running.
	hub.Publish("info", "processing 1/3")
	assert.NoError(t, hub.Close())
}

func TestPublishSkipsSlowClients(t *testing.T) {
	hub := NewHub(0, arbor.NewLogger())
	hub.port = 1 // enable the publish path without a listener

	c := &client{send: make(chan Message, 1)}
	hub.clients[c] = struct{}{}

	hub.Publish("info", "first")
	hub.Publish("info", "second") // buffer full, must not block

	assert.Len(t, c.send, 1)
	msg := <-c.send
	assert.Equal(t, "first", msg.Message)
	assert.Equal(t, "info", msg.Level)
}
