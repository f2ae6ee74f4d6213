package providers

import (
	"context"
	"fmt"

	"github.com/samber/do/v2"

	"github.com/hitorimeshi/hitori-server/internal/config"
	"github.com/hitorimeshi/hitori-server/internal/logger"
	"github.com/hitorimeshi/hitori-server/internal/sse"
	"github.com/hitorimeshi/hitori-server/internal/store"
	"github.com/hitorimeshi/hitori-server/internal/store/mongostore"
	"github.com/hitorimeshi/hitori-server/internal/store/sqlite"
)

// SSEManagerHandle wraps the subscription manager with its context for lifecycle management.
type SSEManagerHandle struct {
	*sse.Manager
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *SSEManagerHandle) Shutdown() error {
	h.cancel()
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Manager.Shutdown(ctx)
}

// ProvideSSEManager provides the live catalog subscription manager.
// Snapshots are loaded from the store, so the store is resolved first.
func ProvideSSEManager(i do.Injector) (*SSEManagerHandle, error) {
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)

	manager := sse.NewManager(storeHandle.ListRestaurants, log.Logger)
	storeHandle.setEmitter(manager)

	ctx, cancel := context.WithCancel(context.Background())
	manager.Start(ctx)

	log.Info("Subscription manager started")

	return &SSEManagerHandle{
		Manager: manager,
		cancel:  cancel,
	}, nil
}

// emitterSetter is implemented by every store backend.
type emitterSetter interface {
	SetEmitter(emitter store.EventEmitter)
}

// StoreHandle wraps the configured backend with shutdown capability.
type StoreHandle struct {
	store.Repository
}

func (h *StoreHandle) setEmitter(emitter store.EventEmitter) {
	if s, ok := h.Repository.(emitterSetter); ok {
		s.SetEmitter(emitter)
	}
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore opens the configured persistence backend.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	var (
		repo store.Repository
		err  error
	)
	switch cfg.Store.Backend {
	case config.BackendSQLite:
		repo, err = sqlite.Open(cfg.DatabasePath(), log.Logger)
	case config.BackendMongo:
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		repo, err = mongostore.Open(ctx, cfg.Store.MongoURI, cfg.Store.MongoDatabase, log.Logger)
	default:
		repo, err = store.New(cfg.DatabasePath(), log.Logger, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Store.Backend, err)
	}

	log.Info("Database initialized", "backend", cfg.Store.Backend, "path", cfg.DatabasePath())

	return &StoreHandle{Repository: repo}, nil
}
