// Package store persists restaurants. The default backend is an embedded
// Badger database; the sqlite and mongostore subpackages provide alternatives
// behind the same Repository interface.
package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"

	"github.com/hitorimeshi/hitori-server/internal/domain"
)

// Repository is the persistence contract every backend implements.
type Repository interface {
	// CreateRestaurant stores a new restaurant. ID and timestamps must already be set.
	CreateRestaurant(ctx context.Context, r *domain.Restaurant) error
	// UpdateRestaurant overwrites an existing restaurant. Returns ErrNotFound if missing.
	UpdateRestaurant(ctx context.Context, r *domain.Restaurant) error
	// GetRestaurant returns a restaurant by id. Returns ErrNotFound if missing.
	GetRestaurant(ctx context.Context, id string) (*domain.Restaurant, error)
	// ListRestaurants returns every restaurant, newest first, ties broken by id.
	ListRestaurants(ctx context.Context) ([]*domain.Restaurant, error)
	// Ping reports whether the backend is usable.
	Ping(ctx context.Context) error
	Close() error
}

// EventEmitter receives change notifications after successful writes.
// Store uses this to notify subscribers without depending on the sse package.
type EventEmitter interface {
	Emit(event any)
}

// NoopEmitter is a no-op implementation of EventEmitter.
type NoopEmitter struct{}

// Emit implements EventEmitter.Emit as a no-op.
func (NoopEmitter) Emit(_ any) {}

// NewNoopEmitter creates a new no-op emitter.
func NewNoopEmitter() EventEmitter {
	return NoopEmitter{}
}

// ChangeKind identifies what happened to a restaurant.
type ChangeKind string

// Change kinds.
const (
	ChangeCreated ChangeKind = "created"
	ChangeUpdated ChangeKind = "updated"
)

// Change is emitted after a restaurant is written.
type Change struct {
	Kind         ChangeKind
	RestaurantID string
}

// Store is the Badger-backed Repository.
type Store struct {
	db     *badger.DB
	logger *slog.Logger

	emitter EventEmitter

	restaurants *Entity[domain.Restaurant]
}

// New opens (or creates) a Badger database at path.
// Pass a nil emitter to disable change notifications.
func New(path string, logger *slog.Logger, emitter EventEmitter) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil            // Badger's own logger is noisy; we log lifecycle events ourselves
	opts.SyncWrites = true       // Sync writes to disk to avoid corruption on crashes
	opts.CompactL0OnClose = true // Faster startup next time

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	return newStore(db, logger, emitter, path), nil
}

// NewInMemory opens a Badger database that lives only in memory.
func NewInMemory(logger *slog.Logger, emitter EventEmitter) (*Store, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory badger db: %w", err)
	}

	return newStore(db, logger, emitter, ":memory:"), nil
}

func newStore(db *badger.DB, logger *slog.Logger, emitter EventEmitter, path string) *Store {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if emitter == nil {
		emitter = NewNoopEmitter()
	}

	s := &Store{
		db:      db,
		logger:  logger,
		emitter: emitter,
	}
	s.initRestaurants()

	logger.Info("badger database opened", "path", path)
	return s
}

// SetEmitter replaces the change emitter. Used to break the construction
// cycle between the store and the subscription manager.
func (s *Store) SetEmitter(emitter EventEmitter) {
	if emitter == nil {
		emitter = NewNoopEmitter()
	}
	s.emitter = emitter
}

// Ping reports an error once the database has been closed.
func (s *Store) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.db.IsClosed() {
		return ErrClosed
	}
	return nil
}

// Close gracefully closes the database.
func (s *Store) Close() error {
	s.logger.Info("closing badger database")
	return s.db.Close()
}

var _ Repository = (*Store)(nil)
