package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/hitorimeshi/hitori-server/internal/catalog"
	"github.com/hitorimeshi/hitori-server/internal/domain"
	"github.com/hitorimeshi/hitori-server/internal/search"
	"github.com/hitorimeshi/hitori-server/internal/service"
)

func (s *Server) registerCatalogRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "browseRestaurants",
		Method:      http.MethodGet,
		Path:        "/api/v1/restaurants",
		Summary:     "Browse restaurants",
		Description: "Returns filtered and sorted restaurants with THB prices, the per-cuisine chart and every city in the catalog",
		Tags:        []string{"Restaurants"},
	}, s.handleBrowseRestaurants)

	huma.Register(s.api, huma.Operation{
		OperationID: "searchRestaurants",
		Method:      http.MethodGet,
		Path:        "/api/v1/restaurants/search",
		Summary:     "Search restaurants",
		Description: "Full-text search over name, description, tags, cities and cuisine",
		Tags:        []string{"Restaurants"},
	}, s.handleSearchRestaurants)

	huma.Register(s.api, huma.Operation{
		OperationID: "getRestaurant",
		Method:      http.MethodGet,
		Path:        "/api/v1/restaurants/{id}",
		Summary:     "Get restaurant",
		Description: "Returns a restaurant by ID with THB prices",
		Tags:        []string{"Restaurants"},
	}, s.handleGetRestaurant)

	huma.Register(s.api, huma.Operation{
		OperationID: "listCities",
		Method:      http.MethodGet,
		Path:        "/api/v1/cities",
		Summary:     "List cities",
		Description: "Returns the predefined cities followed by any other city used in the catalog",
		Tags:        []string{"Restaurants"},
	}, s.handleListCities)
}

// === DTOs ===

// BrowseInput contains the filter selection.
type BrowseInput struct {
	Cities  []string `query:"city,explode" doc:"Cities to include; a restaurant matches if it lists any of them"`
	Style   string   `query:"style" doc:"Buffet, AlaCarte or all"`
	Cuisine string   `query:"cuisine" doc:"Cuisine label or all"`
	Alcohol string   `query:"alcohol" doc:"Nomihodai, PayPerGlass or all"`
	Sort    string   `query:"sort" doc:"Price order: low or high (default high)"`
}

// BrowseOutput wraps the browse response for Huma.
type BrowseOutput struct {
	Body *service.BrowseResult
}

// GetRestaurantInput contains parameters for getting a restaurant.
type GetRestaurantInput struct {
	ID string `path:"id" doc:"Restaurant ID"`
}

// RestaurantOutput wraps a priced restaurant for Huma.
type RestaurantOutput struct {
	Body *catalog.PricedRestaurant
}

// SearchInput contains search parameters.
type SearchInput struct {
	Query   string `query:"q" maxLength:"200" doc:"Search text; empty lists the newest restaurants"`
	Cuisine string `query:"cuisine" doc:"Exact cuisine label"`
	Style   string `query:"style" doc:"Buffet or AlaCarte"`
	City    string `query:"city" doc:"Exact city"`
	Limit   int    `query:"limit" minimum:"0" maximum:"100" doc:"Maximum hits (default 20)"`
	Offset  int    `query:"offset" minimum:"0" doc:"Hits to skip"`
}

// SearchOutput wraps search results for Huma.
type SearchOutput struct {
	Body *search.Result
}

// CitiesResponse contains the city list.
type CitiesResponse struct {
	Cities []string `json:"cities" doc:"Predefined cities first, then the rest of the catalog's cities sorted"`
}

// CitiesOutput wraps the city list for Huma.
type CitiesOutput struct {
	Body CitiesResponse
}

// === Handlers ===

func (s *Server) handleBrowseRestaurants(ctx context.Context, input *BrowseInput) (*BrowseOutput, error) {
	sel := domain.FilterSelection{
		Cities:  input.Cities,
		Style:   input.Style,
		Cuisine: input.Cuisine,
		Alcohol: input.Alcohol,
		Sort:    domain.SortOrder(input.Sort),
	}

	result, err := s.services.Catalog.Browse(ctx, sel)
	if err != nil {
		return nil, err
	}
	return &BrowseOutput{Body: result}, nil
}

func (s *Server) handleGetRestaurant(ctx context.Context, input *GetRestaurantInput) (*RestaurantOutput, error) {
	r, err := s.services.Catalog.Restaurant(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &RestaurantOutput{Body: r}, nil
}

func (s *Server) handleSearchRestaurants(ctx context.Context, input *SearchInput) (*SearchOutput, error) {
	params := search.DefaultParams()
	params.Query = input.Query
	params.Cuisine = input.Cuisine
	params.Style = input.Style
	params.City = input.City
	params.Offset = input.Offset
	if input.Limit > 0 {
		params.Limit = input.Limit
	}

	result, err := s.services.Restaurants.Search(ctx, params)
	if err != nil {
		return nil, err
	}
	return &SearchOutput{Body: result}, nil
}

func (s *Server) handleListCities(ctx context.Context, _ *struct{}) (*CitiesOutput, error) {
	cities, err := s.services.Catalog.Cities(ctx)
	if err != nil {
		return nil, err
	}
	return &CitiesOutput{Body: CitiesResponse{Cities: cities}}, nil
}
