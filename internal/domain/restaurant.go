package domain

import "time"

// Style describes how a restaurant serves food.
type Style string

// Serving styles.
const (
	StyleBuffet   Style = "Buffet"   // all-you-can-eat
	StyleAlaCarte Style = "AlaCarte" // order by dish
)

// Valid reports whether s is a known serving style.
func (s Style) Valid() bool {
	return s == StyleBuffet || s == StyleAlaCarte
}

// AlcoholType describes how drinks are charged.
type AlcoholType string

// Drink pricing models.
const (
	AlcoholNomihodai   AlcoholType = "Nomihodai"   // unlimited drinks included
	AlcoholPayPerGlass AlcoholType = "PayPerGlass" // charged per drink
)

// Valid reports whether a is a known drink pricing model.
func (a AlcoholType) Valid() bool {
	return a == AlcoholNomihodai || a == AlcoholPayPerGlass
}

// Restaurant is a single solo-dining venue in the catalog.
// Prices are stored in JPY and converted only for display.
type Restaurant struct {
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Cuisine      Cuisine     `json:"cuisine"`
	Style        Style       `json:"style"`
	AlcoholType  AlcoholType `json:"alcohol_type"`
	Description  string      `json:"description"`
	Cities       []string    `json:"cities"`
	Tags         []string    `json:"tags"`
	ImageURLs    []string    `json:"image_urls"`
	Price        int64       `json:"price"`
	AlcoholPrice int64       `json:"alcohol_price"`
	SoloRating   int         `json:"solo_rating"`
}

// InitTimestamps sets both CreatedAt and UpdatedAt to now.
func (r *Restaurant) InitTimestamps(now time.Time) {
	r.CreatedAt = now
	r.UpdatedAt = now
}

// Touch updates the UpdatedAt timestamp.
func (r *Restaurant) Touch(now time.Time) {
	r.UpdatedAt = now
}

// Thumbnail returns the first image URL, or "" when the restaurant has no images.
func (r *Restaurant) Thumbnail() string {
	if len(r.ImageURLs) == 0 {
		return ""
	}
	return r.ImageURLs[0]
}

// Clone returns a deep copy so callers can hand out snapshots without sharing slices.
func (r *Restaurant) Clone() *Restaurant {
	if r == nil {
		return nil
	}
	c := *r
	c.Cities = append([]string(nil), r.Cities...)
	c.Tags = append([]string(nil), r.Tags...)
	c.ImageURLs = append([]string(nil), r.ImageURLs...)
	return &c
}

// PredefinedCities are offered as filter and form options even before any restaurant uses them.
var PredefinedCities = []string{
	"Osaka",
	"Kyoto",
	"Kobe",
	"Nara",
	"Tokyo",
	"Fukuoka",
	"Hokkaido",
	"สะพานควาย",
	"อารีย์",
	"ห้าแยกลาดพร้าว",
}
