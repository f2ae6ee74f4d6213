package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/hitorimeshi/hitori-server/internal/exchange"
)

func (s *Server) registerExchangeRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getExchangeRate",
		Method:      http.MethodGet,
		Path:        "/api/v1/exchange-rate",
		Summary:     "Get exchange rate",
		Description: "Returns the JPY to THB rate used for display prices. fallback is true when the live rate could not be fetched.",
		Tags:        []string{"Exchange"},
	}, s.handleGetExchangeRate)
}

// ExchangeRateOutput wraps the current quote for Huma.
type ExchangeRateOutput struct {
	Body exchange.Quote
}

func (s *Server) handleGetExchangeRate(ctx context.Context, _ *struct{}) (*ExchangeRateOutput, error) {
	return &ExchangeRateOutput{Body: s.infra.Rates.Quote(ctx)}, nil
}
