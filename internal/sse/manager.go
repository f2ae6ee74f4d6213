package sse

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hitorimeshi/hitori-server/internal/domain"
	"github.com/hitorimeshi/hitori-server/internal/store"
)

// ErrShutdown is returned by Subscribe after Shutdown.
var ErrShutdown = errors.New("subscription manager is shut down")

// Loader returns the full catalog, newest first.
type Loader func(ctx context.Context) ([]*domain.Restaurant, error)

// Manager fans catalog snapshots out to subscribers.
// It implements store.EventEmitter: every emitted store.Change schedules a
// reload, and bursts of changes collapse into one snapshot.
type Manager struct {
	load   Loader
	logger *slog.Logger

	subs    map[string]*Subscription
	mu      sync.Mutex
	version uint64

	// loadMu serializes snapshot loads so subscribers never receive an older
	// snapshot after a newer one.
	loadMu sync.Mutex

	pending chan struct{}
	stop    chan struct{}
	stopped bool
	wg      sync.WaitGroup
}

// NewManager creates a manager that reads snapshots with load.
func NewManager(load Loader, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Manager{
		load:    load,
		logger:  logger,
		subs:    make(map[string]*Subscription),
		pending: make(chan struct{}, 1),
		stop:    make(chan struct{}),
	}
}

// Start launches the refresh loop. It runs until ctx is canceled or Shutdown is called.
func (m *Manager) Start(ctx context.Context) {
	m.wg.Add(1)
	go m.run(ctx)
}

func (m *Manager) run(ctx context.Context) {
	defer m.wg.Done()

	m.logger.Info("subscription manager starting")

	for {
		select {
		case <-m.pending:
			m.refresh(ctx)
		case <-m.stop:
			m.logger.Info("subscription manager stopping")
			return
		case <-ctx.Done():
			m.logger.Info("subscription manager stopping")
			m.mu.Lock()
			m.stopped = true
			m.mu.Unlock()
			m.closeAll()
			return
		}
	}
}

// Shutdown stops the refresh loop and closes every subscription.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return nil
	}
	m.stopped = true
	close(m.stop)
	m.mu.Unlock()

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		m.logger.Warn("subscription manager shutdown timed out")
	}

	m.closeAll()
	m.logger.Info("subscription manager shutdown complete")
	return nil
}

// Emit implements store.EventEmitter. Non-change events are ignored.
func (m *Manager) Emit(event any) {
	change, ok := event.(store.Change)
	if !ok {
		return
	}

	m.logger.Debug("catalog changed",
		slog.String("kind", string(change.Kind)),
		slog.String("restaurant_id", change.RestaurantID))

	select {
	case m.pending <- struct{}{}:
	default:
		// A refresh is already queued and will include this change.
	}
}

// Subscribe registers a subscriber and delivers the current catalog to it.
// Canceling ctx unsubscribes.
func (m *Manager) Subscribe(ctx context.Context) (*Subscription, error) {
	m.loadMu.Lock()
	defer m.loadMu.Unlock()

	restaurants, err := m.load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	sub := &Subscription{
		ID:          uuid.NewString(),
		ConnectedAt: time.Now(),
		manager:     m,
		ch:          make(chan Snapshot, 1),
		done:        make(chan struct{}),
	}

	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return nil, ErrShutdown
	}
	m.subs[sub.ID] = sub
	sub.offer(Snapshot{At: time.Now(), Restaurants: restaurants, Version: m.version})
	total := len(m.subs)
	m.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
			sub.Unsubscribe()
		case <-sub.done:
		}
	}()

	m.logger.Info("subscriber connected",
		slog.String("subscription_id", sub.ID),
		slog.Int("total", total))
	return sub, nil
}

// SubscriberCount returns the number of live subscriptions.
func (m *Manager) SubscriberCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subs)
}

// Refresh reloads the catalog and broadcasts it immediately.
func (m *Manager) Refresh(ctx context.Context) {
	m.refresh(ctx)
}

func (m *Manager) refresh(ctx context.Context) {
	m.loadMu.Lock()
	defer m.loadMu.Unlock()

	restaurants, err := m.load(ctx)
	if err != nil {
		m.logger.Error("failed to load catalog snapshot", slog.String("error", err.Error()))
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.version++
	snap := Snapshot{At: time.Now(), Restaurants: restaurants, Version: m.version}

	var delivered, dropped int
	for _, sub := range m.subs {
		if sub.offer(snap) {
			delivered++
		} else {
			dropped++
		}
	}

	m.logger.Debug("snapshot broadcast",
		slog.Uint64("version", snap.Version),
		slog.Int("restaurants", len(restaurants)),
		slog.Group("stats",
			slog.Int("delivered", delivered),
			slog.Int("dropped", dropped)))
}

func (m *Manager) remove(sub *Subscription) {
	m.mu.Lock()
	_, ok := m.subs[sub.ID]
	delete(m.subs, sub.ID)
	sub.close()
	total := len(m.subs)
	m.mu.Unlock()

	if ok {
		m.logger.Info("subscriber disconnected",
			slog.String("subscription_id", sub.ID),
			slog.Duration("duration", time.Since(sub.ConnectedAt)),
			slog.Int("total", total))
	}
}

func (m *Manager) closeAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, sub := range m.subs {
		sub.close()
		delete(m.subs, id)
	}
}

var _ store.EventEmitter = (*Manager)(nil)
