package sqlite

import (
	"context"
	"database/sql"
	"encoding/json/v2"
	"errors"
	"fmt"
	"strings"

	"github.com/hitorimeshi/hitori-server/internal/domain"
	"github.com/hitorimeshi/hitori-server/internal/store"
)

// restaurantColumns must match the scan order in scanRestaurant.
const restaurantColumns = `id, name, cities, cuisine, style, price, alcohol_type, alcohol_price,
	solo_rating, description, tags, image_urls, created_at, updated_at`

func scanRestaurant(scanner interface{ Scan(dest ...any) error }) (*domain.Restaurant, error) {
	var (
		r                       domain.Restaurant
		cities, tags, images    string
		createdAt, updatedAt    string
		cuisine, style, alcohol string
	)

	err := scanner.Scan(
		&r.ID,
		&r.Name,
		&cities,
		&cuisine,
		&style,
		&r.Price,
		&alcohol,
		&r.AlcoholPrice,
		&r.SoloRating,
		&r.Description,
		&tags,
		&images,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	r.Cuisine = domain.Cuisine(cuisine)
	r.Style = domain.Style(style)
	r.AlcoholType = domain.AlcoholType(alcohol)

	for _, col := range []struct {
		raw string
		dst *[]string
	}{
		{cities, &r.Cities},
		{tags, &r.Tags},
		{images, &r.ImageURLs},
	} {
		if err := json.Unmarshal([]byte(col.raw), col.dst); err != nil {
			return nil, fmt.Errorf("decode list column: %w", err)
		}
	}

	if r.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if r.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &r, nil
}

func encodeList(v []string) (string, error) {
	if v == nil {
		v = []string{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// restaurantArgs returns the column values in restaurantColumns order.
func restaurantArgs(r *domain.Restaurant) ([]any, error) {
	cities, err := encodeList(r.Cities)
	if err != nil {
		return nil, err
	}
	tags, err := encodeList(r.Tags)
	if err != nil {
		return nil, err
	}
	images, err := encodeList(r.ImageURLs)
	if err != nil {
		return nil, err
	}
	return []any{
		r.ID,
		r.Name,
		cities,
		string(r.Cuisine),
		string(r.Style),
		r.Price,
		string(r.AlcoholType),
		r.AlcoholPrice,
		r.SoloRating,
		r.Description,
		tags,
		images,
		formatTime(r.CreatedAt),
		formatTime(r.UpdatedAt),
	}, nil
}

// CreateRestaurant inserts a new restaurant.
// Returns store.ErrAlreadyExists on duplicate id.
func (s *Store) CreateRestaurant(ctx context.Context, r *domain.Restaurant) error {
	if r == nil || strings.TrimSpace(r.ID) == "" {
		return fmt.Errorf("restaurant id is required: %w", store.ErrInvalidInput)
	}

	args, err := restaurantArgs(r)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO restaurants (`+restaurantColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, args...)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
		if strings.Contains(err.Error(), "CHECK constraint failed") {
			return fmt.Errorf("%w: %v", store.ErrInvalidInput, err)
		}
		return err
	}

	s.emitter.Emit(store.Change{Kind: store.ChangeCreated, RestaurantID: r.ID})
	return nil
}

// UpdateRestaurant overwrites every column except created_at.
// Returns store.ErrNotFound if the restaurant does not exist.
func (s *Store) UpdateRestaurant(ctx context.Context, r *domain.Restaurant) error {
	if r == nil || strings.TrimSpace(r.ID) == "" {
		return fmt.Errorf("restaurant id is required: %w", store.ErrInvalidInput)
	}

	args, err := restaurantArgs(r)
	if err != nil {
		return err
	}

	// Every column but id and created_at, then updated_at, then the id for WHERE.
	updateArgs := append(append(args[1:12:12], args[13]), args[0])

	res, err := s.db.ExecContext(ctx, `
		UPDATE restaurants SET
			name = ?, cities = ?, cuisine = ?, style = ?, price = ?,
			alcohol_type = ?, alcohol_price = ?, solo_rating = ?,
			description = ?, tags = ?, image_urls = ?, updated_at = ?
		WHERE id = ?`, updateArgs...)
	if err != nil {
		if strings.Contains(err.Error(), "CHECK constraint failed") {
			return fmt.Errorf("%w: %v", store.ErrInvalidInput, err)
		}
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}

	s.emitter.Emit(store.Change{Kind: store.ChangeUpdated, RestaurantID: r.ID})
	return nil
}

// GetRestaurant retrieves a restaurant by id.
// Returns store.ErrNotFound if the restaurant does not exist.
func (s *Store) GetRestaurant(ctx context.Context, id string) (*domain.Restaurant, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+restaurantColumns+` FROM restaurants WHERE id = ?`, id)

	r, err := scanRestaurant(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

// ListRestaurants returns every restaurant, newest first, ties by id.
func (s *Store) ListRestaurants(ctx context.Context) ([]*domain.Restaurant, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+restaurantColumns+` FROM restaurants ORDER BY created_at DESC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*domain.Restaurant, 0)
	for rows.Next() {
		r, err := scanRestaurant(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
