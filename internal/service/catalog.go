package service

import (
	"context"
	"log/slog"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/hitorimeshi/hitori-server/internal/catalog"
	"github.com/hitorimeshi/hitori-server/internal/domain"
	"github.com/hitorimeshi/hitori-server/internal/errors"
	"github.com/hitorimeshi/hitori-server/internal/exchange"
	"github.com/hitorimeshi/hitori-server/internal/sse"
	"github.com/hitorimeshi/hitori-server/internal/store"
)

// BrowseResult is everything the catalog page renders for one selection.
type BrowseResult struct {
	Selection   domain.FilterSelection     `json:"selection"`
	Restaurants []catalog.PricedRestaurant `json:"restaurants"`
	Cities      []string                   `json:"cities"`
	Chart       domain.ChartSeries         `json:"chart"`
	Rate        float64                    `json:"rate"`
}

// CatalogService serves read views of the catalog.
type CatalogService struct {
	repo          store.Repository
	rates         exchange.Provider
	formatter     *catalog.Formatter
	subscriptions *sse.Manager
	logger        *slog.Logger
}

// NewCatalogService creates a CatalogService. locale controls digit grouping in display prices.
func NewCatalogService(repo store.Repository, rates exchange.Provider, subscriptions *sse.Manager, locale string, logger *slog.Logger) *CatalogService {
	return &CatalogService{
		repo:          repo,
		rates:         rates,
		formatter:     catalog.NewFormatter(locale),
		subscriptions: subscriptions,
		logger:        logger,
	}
}

// Browse loads the catalog and the exchange rate concurrently, then filters,
// sorts and aggregates. The chart covers the filtered subset; cities cover the whole catalog.
func (s *CatalogService) Browse(ctx context.Context, sel domain.FilterSelection) (*BrowseResult, error) {
	var (
		restaurants []*domain.Restaurant
		rate        float64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		restaurants, err = s.repo.ListRestaurants(gctx)
		return err
	})
	g.Go(func() error {
		rate = s.rates.Rate(gctx)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, mapStoreError(err, "")
	}

	sel = sel.Normalize()
	filtered := catalog.ApplyFilters(restaurants, sel)

	return &BrowseResult{
		Selection:   sel,
		Restaurants: s.formatter.Price(filtered, rate),
		Cities:      catalog.VisibleCities(restaurants),
		Chart:       catalog.AggregateByCuisine(filtered, rate),
		Rate:        rate,
	}, nil
}

// Restaurant returns one restaurant priced at the current rate.
func (s *CatalogService) Restaurant(ctx context.Context, restaurantID string) (*catalog.PricedRestaurant, error) {
	r, err := s.repo.GetRestaurant(ctx, restaurantID)
	if err != nil {
		return nil, mapStoreError(err, restaurantID)
	}
	priced := s.formatter.Price([]*domain.Restaurant{r}, s.rates.Rate(ctx))
	return &priced[0], nil
}

// Cities returns the predefined cities followed by any other city in the
// catalog, in sorted order.
func (s *CatalogService) Cities(ctx context.Context) ([]string, error) {
	restaurants, err := s.repo.ListRestaurants(ctx)
	if err != nil {
		return nil, mapStoreError(err, "")
	}

	out := slices.Clone(domain.PredefinedCities)
	for _, c := range catalog.VisibleCities(restaurants) {
		if !slices.Contains(out, c) {
			out = append(out, c)
		}
	}
	return out, nil
}

// Subscribe returns a handle that receives the full catalog now and after every write.
func (s *CatalogService) Subscribe(ctx context.Context) (*sse.Subscription, error) {
	sub, err := s.subscriptions.Subscribe(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeUnavailable, "live updates are unavailable")
	}
	return sub, nil
}
