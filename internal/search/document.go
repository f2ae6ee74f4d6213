// Package search provides full-text search over restaurants using Bleve.
package search

import (
	"strings"

	"github.com/hitorimeshi/hitori-server/internal/domain"
)

// Document is the indexed form of a restaurant.
// Text fields feed the analyzed query; the *_key fields hold exact values for filters and facets.
type Document struct {
	ID          string
	Name        string
	Description string
	Cuisine     string
	CuisineKey  string
	Style       string
	Alcohol     string
	Cities      []string
	Tags        []string
	Price       int64
	SoloRating  int
	CreatedAt   int64 // Unix millis
	UpdatedAt   int64 // Unix millis
}

// ToMap converts the document to a map with the field names used by the mapping.
func (d *Document) ToMap() map[string]any {
	m := map[string]any{
		"id":          d.ID,
		"name":        d.Name,
		"cuisine":     d.Cuisine,
		"cuisine_key": d.CuisineKey,
		"style":       d.Style,
		"alcohol":     d.Alcohol,
		"price":       d.Price,
		"solo_rating": d.SoloRating,
		"created_at":  d.CreatedAt,
		"updated_at":  d.UpdatedAt,
	}

	if d.Description != "" {
		m["description"] = d.Description
	}
	if len(d.Cities) > 0 {
		m["cities"] = d.Cities
		m["city_keys"] = d.Cities
	}
	if len(d.Tags) > 0 {
		m["tags"] = d.Tags
	}

	return m
}

// FromRestaurant converts a restaurant into a search document.
func FromRestaurant(r *domain.Restaurant) *Document {
	return &Document{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Cuisine:     r.Cuisine.String(),
		CuisineKey:  strings.ToLower(r.Cuisine.String()),
		Style:       string(r.Style),
		Alcohol:     string(r.AlcoholType),
		Cities:      r.Cities,
		Tags:        r.Tags,
		Price:       r.Price,
		SoloRating:  r.SoloRating,
		CreatedAt:   r.CreatedAt.UnixMilli(),
		UpdatedAt:   r.UpdatedAt.UnixMilli(),
	}
}
