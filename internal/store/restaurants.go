package store

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/hitorimeshi/hitori-server/internal/domain"
)

const (
	restaurantPrefix = "restaurant:"

	// newestIndex orders restaurants newest first: the key is the inverted
	// creation time in nanoseconds, zero-padded, followed by the id.
	newestIndex = "newest"
)

func (s *Store) initRestaurants() {
	s.restaurants = NewEntity[domain.Restaurant](s, restaurantPrefix).
		WithIndex(newestIndex, func(r *domain.Restaurant) []string {
			return []string{NewestFirstKey(r)}
		})
}

// NewestFirstKey returns a key that sorts restaurants by CreatedAt descending, then ID ascending.
func NewestFirstKey(r *domain.Restaurant) string {
	n := r.CreatedAt.UnixNano()
	if r.CreatedAt.IsZero() || n < 0 {
		n = 0
	}
	inverted := uint64(math.MaxInt64 - n)
	return fmt.Sprintf("%020d:%s", inverted, r.ID)
}

// CreateRestaurant stores a new restaurant and emits a created change.
func (s *Store) CreateRestaurant(ctx context.Context, r *domain.Restaurant) error {
	if r == nil || strings.TrimSpace(r.ID) == "" {
		return fmt.Errorf("restaurant id is required: %w", ErrInvalidInput)
	}

	if err := s.restaurants.Create(ctx, r.ID, r); err != nil {
		return err
	}

	s.logger.Debug("restaurant created", "restaurant_id", r.ID, "name", r.Name)
	s.emitter.Emit(Change{Kind: ChangeCreated, RestaurantID: r.ID})
	return nil
}

// UpdateRestaurant overwrites a restaurant and emits an updated change.
func (s *Store) UpdateRestaurant(ctx context.Context, r *domain.Restaurant) error {
	if r == nil || strings.TrimSpace(r.ID) == "" {
		return fmt.Errorf("restaurant id is required: %w", ErrInvalidInput)
	}

	if err := s.restaurants.Update(ctx, r.ID, r); err != nil {
		return err
	}

	s.logger.Debug("restaurant updated", "restaurant_id", r.ID)
	s.emitter.Emit(Change{Kind: ChangeUpdated, RestaurantID: r.ID})
	return nil
}

// GetRestaurant returns a restaurant by id.
func (s *Store) GetRestaurant(ctx context.Context, id string) (*domain.Restaurant, error) {
	r, err := s.restaurants.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get restaurant %s: %w", id, err)
	}
	return r, nil
}

// ListRestaurants returns every restaurant, newest first.
func (s *Store) ListRestaurants(ctx context.Context) ([]*domain.Restaurant, error) {
	out := make([]*domain.Restaurant, 0)
	for r, err := range s.restaurants.ListByIndex(ctx, newestIndex) {
		if err != nil {
			return nil, fmt.Errorf("list restaurants: %w", err)
		}
		out = append(out, r)
	}
	return out, nil
}
