package ws

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEnvelope(t *testing.T) {
	seed := uint64(7)
	msg, err := NewEnvelope(TypeRunRequest, RunRequestPayload{Hours: 24, Seed: &seed})
	require.NoError(t, err)

	var env Envelope
	require.NoError(t, json.Unmarshal(msg, &env))
	assert.Equal(t, TypeRunRequest, env.Type)

	var parsed RunRequestPayload
	require.NoError(t, json.Unmarshal(env.Payload, &parsed))
	assert.Equal(t, 24, parsed.Hours)
	require.NotNil(t, parsed.Seed)
	assert.Equal(t, uint64(7), *parsed.Seed)
}

func TestNewEnvelope_NoPayload(t *testing.T) {
	msg, err := NewEnvelope(TypeRunRequest, nil)
	require.NoError(t, err)

	var env Envelope
	require.NoError(t, json.Unmarshal(msg, &env))
	assert.Equal(t, TypeRunRequest, env.Type)
	assert.Nil(t, env.Payload)
}

func TestHub_RegisterUnregister(t *testing.T) {
	hub := NewHub()
	c := &Client{hub: hub, send: make(chan []byte, 16)}

	hub.Register(c)
	assert.Equal(t, 1, hub.ClientCount())

	hub.Unregister(c)
	assert.Equal(t, 0, hub.ClientCount())

	// second unregister is a no-op
	hub.Unregister(c)
	assert.Equal(t, 0, hub.ClientCount())
}

func TestHub_Broadcast(t *testing.T) {
	hub := NewHub()
	c1 := &Client{hub: hub, send: make(chan []byte, 16)}
	c2 := &Client{hub: hub, send: make(chan []byte, 16)}
	hub.Register(c1)
	hub.Register(c2)

	msg := []byte(`{"type":"test"}`)
	hub.Broadcast(msg)

	assert.Equal(t, msg, <-c1.send)
	assert.Equal(t, msg, <-c2.send)
}

func TestHub_BroadcastDropsWhenFull(t *testing.T) {
	hub := NewHub()
	c := &Client{hub: hub, send: make(chan []byte, 1)}
	hub.Register(c)

	hub.Broadcast([]byte("a"))
	hub.Broadcast([]byte("b"))

	assert.Equal(t, []byte("a"), <-c.send)
	assert.Empty(t, c.send)
}

func TestHub_Close(t *testing.T) {
	hub := NewHub()
	c := &Client{hub: hub, send: make(chan []byte, 1)}
	hub.Register(c)

	hub.Close()
	assert.Equal(t, 0, hub.ClientCount())
	_, open := <-c.send
	assert.False(t, open)
}

func TestHub_Send(t *testing.T) {
	hub := NewHub()
	c := &Client{hub: hub, send: make(chan []byte, 1)}
	hub.Register(c)

	assert.True(t, hub.Send(c, []byte("a")))
	assert.False(t, hub.Send(c, []byte("b")), "buffer full")
	assert.Equal(t, []byte("a"), <-c.send)
}

func TestHub_SendAfterClose(t *testing.T) {
	hub := NewHub()
	c := &Client{hub: hub, send: make(chan []byte, 1)}
	hub.Register(c)
	hub.Close()

	assert.NotPanics(t, func() {
		assert.False(t, hub.Send(c, []byte("late")))
	})

	// unregister from the read loop after Close must not close twice
	assert.NotPanics(t, func() { hub.Unregister(c) })
}

func TestMessageTypes(t *testing.T) {
	assert.Equal(t, "run:request", TypeRunRequest)
	assert.Equal(t, "records:range", TypeRecordsRange)
	assert.Equal(t, "record:at", TypeRecordAt)
	assert.Equal(t, "record:data", TypeRecord)
	assert.Equal(t, "run:result", TypeRunResult)
	assert.Equal(t, "records:data", TypeRecords)
	assert.Equal(t, "error", TypeError)
}
