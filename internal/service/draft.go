package service

import (
	"log/slog"
	"slices"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"

	"github.com/hitorimeshi/hitori-server/internal/domain"
	"github.com/hitorimeshi/hitori-server/internal/errors"
)

// Description formats accepted on a draft.
const (
	DescriptionMarkdown = "markdown"
	DescriptionHTML     = "html"
)

// ErrNoCity is the validation error for a draft without any city.
var ErrNoCity = errors.ValidationWithDetails("Please select at least one city.",
	map[string]string{"cities": "Please select at least one city."})

// RestaurantDraft is the raw form input for creating or updating a restaurant.
type RestaurantDraft struct {
	Name              string   `json:"name" validate:"notblank,max=200"`
	SelectedCities    []string `json:"selected_cities"`
	CustomCity        string   `json:"custom_city"`
	Cuisine           string   `json:"cuisine" validate:"notblank,max=60"`
	Style             string   `json:"style" validate:"required,oneof=Buffet AlaCarte"`
	AlcoholType       string   `json:"alcohol_type" validate:"required,oneof=Nomihodai PayPerGlass"`
	Description       string   `json:"description" validate:"max=10000"`
	DescriptionFormat string   `json:"description_format" validate:"omitempty,oneof=markdown html"`
	TagsInput         string   `json:"tags_input"`
	ExistingImageURLs []string `json:"existing_image_urls"`
	Price             int64    `json:"price" validate:"gte=0"`
	AlcoholPrice      int64    `json:"alcohol_price" validate:"gte=0"`
	SoloRating        int      `json:"solo_rating" validate:"min=1,max=5"`
}

// MergeCities returns the selected cities followed by the trimmed custom city,
// de-duplicated keeping the first occurrence. Blank entries are dropped.
func MergeCities(selected []string, custom string) []string {
	out := make([]string, 0, len(selected)+1)
	for _, c := range append(slices.Clip(selected), custom) {
		c = strings.TrimSpace(c)
		if c == "" || slices.Contains(out, c) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// ParseTags splits comma-separated input, trims each entry and drops blanks.
// "Dotonbori, , วิวสวย" -> [Dotonbori วิวสวย].
func ParseTags(input string) []string {
	out := []string{}
	for _, t := range strings.Split(input, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// CleanImageURLs trims URLs and drops blanks, keeping order.
func CleanImageURLs(urls []string) []string {
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if u = strings.TrimSpace(u); u != "" {
			out = append(out, u)
		}
	}
	return out
}

// normalize turns a validated draft into restaurant fields. ID, timestamps and
// image URLs are left for the caller.
func (d *RestaurantDraft) normalize(logger *slog.Logger) *domain.Restaurant {
	description := strings.TrimSpace(d.Description)
	if d.DescriptionFormat == DescriptionHTML && description != "" {
		md, err := htmltomarkdown.ConvertString(description)
		if err != nil {
			logger.Warn("html description conversion failed, keeping source", "error", err)
		} else {
			description = strings.TrimSpace(md)
		}
	}

	cuisine, _ := domain.ParseCuisine(d.Cuisine)

	return &domain.Restaurant{
		Name:         strings.TrimSpace(d.Name),
		Cities:       MergeCities(d.SelectedCities, d.CustomCity),
		Cuisine:      cuisine,
		Style:        domain.Style(d.Style),
		AlcoholType:  domain.AlcoholType(d.AlcoholType),
		Description:  description,
		Tags:         ParseTags(d.TagsInput),
		ImageURLs:    CleanImageURLs(d.ExistingImageURLs),
		Price:        d.Price,
		AlcoholPrice: d.AlcoholPrice,
		SoloRating:   d.SoloRating,
	}
}
