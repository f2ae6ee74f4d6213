package sse

import (
	"sync"
	"time"
)

// Subscription is a live view of the catalog. Receive snapshots from
// Snapshots() and call Unsubscribe when done.
type Subscription struct {
	ConnectedAt time.Time
	ID          string

	manager *Manager
	ch      chan Snapshot
	done    chan struct{}
	once    sync.Once
}

// Snapshots delivers the current catalog on subscribe and again after every change.
// The channel is closed after Unsubscribe or manager shutdown.
func (s *Subscription) Snapshots() <-chan Snapshot {
	return s.ch
}

// Done is closed once the subscription has ended.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Unsubscribe stops delivery. It is idempotent and safe for concurrent use.
func (s *Subscription) Unsubscribe() {
	s.manager.remove(s)
}

// offer delivers snap, replacing an undelivered older snapshot if the buffer is full.
// Callers hold the manager lock.
func (s *Subscription) offer(snap Snapshot) bool {
	select {
	case s.ch <- snap:
		return true
	default:
	}

	select {
	case <-s.ch:
	default:
	}

	select {
	case s.ch <- snap:
		return true
	default:
		return false
	}
}

// close ends the subscription. Callers hold the manager lock.
func (s *Subscription) close() {
	s.once.Do(func() {
		close(s.done)
		close(s.ch)
	})
}
