package api

import (
	"context"

	"github.com/hitorimeshi/hitori-server/internal/exchange"
	"github.com/hitorimeshi/hitori-server/internal/media/images"
	"github.com/hitorimeshi/hitori-server/internal/service"
	"github.com/hitorimeshi/hitori-server/internal/sse"
	"github.com/hitorimeshi/hitori-server/internal/store"
)

// Services groups the business services used by the API server.
type Services struct {
	Catalog     *service.CatalogService
	Restaurants *service.RestaurantService
}

// ExchangeRates is the part of the rate provider the API reads.
type ExchangeRates interface {
	Quote(ctx context.Context) exchange.Quote
	Cached() (exchange.Quote, bool)
}

// DocumentCounter reports the size of the search index.
type DocumentCounter interface {
	DocumentCount() (uint64, error)
}

// Infrastructure groups the components the API touches directly for health
// checks, image serving and streaming.
type Infrastructure struct {
	Store  store.Repository
	Search DocumentCounter
	Rates  ExchangeRates
	Images *images.Storage
	Stream *sse.Manager
}
