package providers

import (
	"github.com/samber/do/v2"

	"github.com/hitorimeshi/hitori-server/internal/config"
	"github.com/hitorimeshi/hitori-server/internal/exchange"
	"github.com/hitorimeshi/hitori-server/internal/logger"
	"github.com/hitorimeshi/hitori-server/internal/media/images"
	"github.com/hitorimeshi/hitori-server/internal/service"
)

// ProvideCatalogService provides the read side: browse, pricing and subscriptions.
func ProvideCatalogService(i do.Injector) (*service.CatalogService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	rates := do.MustInvoke[*exchange.HTTPProvider](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewCatalogService(storeHandle.Repository, rates, sseHandle.Manager, cfg.App.Locale, log.Logger), nil
}

// ProvideRestaurantService provides the write side: create, update and search.
func ProvideRestaurantService(i do.Injector) (*service.RestaurantService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	uploader := do.MustInvoke[*images.Uploader](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewRestaurantService(storeHandle.Repository, uploader, indexHandle.Index, log.Logger), nil
}
