package ws

import (
	"log"

	"building_twin/internal/store"
)

// RunSink receives every completed run.
type RunSink interface {
	OnRun(run store.Run)
}

// Bridge broadcasts completed runs to every dashboard client.
type Bridge struct {
	hub *Hub
}

func NewBridge(hub *Hub) *Bridge {
	return &Bridge{hub: hub}
}

func (b *Bridge) OnRun(run store.Run) {
	msg, err := NewEnvelope(TypeRunResult, RunResultFromStore(run))
	if err != nil {
		log.Printf("Error marshaling run result: %v", err)
		return
	}
	b.hub.Broadcast(msg)
}
