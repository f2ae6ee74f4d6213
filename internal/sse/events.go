// Package sse delivers live catalog snapshots to subscribers and streams them
// to browsers as Server-Sent Events.
package sse

import (
	"time"

	"github.com/hitorimeshi/hitori-server/internal/domain"
)

// EventType names an SSE event.
type EventType string

// Event types written to the stream.
const (
	EventConnected EventType = "connected"
	EventSnapshot  EventType = "snapshot"
	EventHeartbeat EventType = "heartbeat"
)

// Event is a single SSE message.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
	Type      EventType `json:"type"`
}

// Snapshot is the full catalog at a point in time, newest restaurant first.
// Each snapshot replaces the previous one wholesale.
type Snapshot struct {
	At          time.Time            `json:"at"`
	Restaurants []*domain.Restaurant `json:"restaurants"`
	Version     uint64               `json:"version"`
}

// NewSnapshotEvent wraps a snapshot for the stream.
func NewSnapshotEvent(s Snapshot) Event {
	return Event{Type: EventSnapshot, Timestamp: s.At, Data: s}
}

// NewHeartbeatEvent creates a keepalive event.
func NewHeartbeatEvent() Event {
	return Event{Type: EventHeartbeat, Timestamp: time.Now()}
}
