package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hitorimeshi/hitori-server/internal/domain"
	"github.com/hitorimeshi/hitori-server/internal/exchange"
)

func TestHealthCheck_DegradedUntilRateFetched(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/health")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	env := decodeEnvelope[HealthResponse](t, resp.Body.Bytes())
	assert.Equal(t, statusDegraded, env.Data.Status)
	assert.Equal(t, statusHealthy, env.Data.Components["store"].Status)
	assert.Equal(t, statusHealthy, env.Data.Components["search"].Status)
	assert.Equal(t, "0 documents", env.Data.Components["search"].Message)
	assert.Equal(t, statusDegraded, env.Data.Components["exchange"].Status)

	// Fetching the rate fills the cache.
	resp = ts.api.Get("/api/v1/exchange-rate")
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Get("/health")
	env = decodeEnvelope[HealthResponse](t, resp.Body.Bytes())
	assert.Equal(t, statusHealthy, env.Data.Status)
	assert.Contains(t, env.Data.Components["exchange"].Message, "JPY/THB 0.25")
}

func TestHealthCheck_CountsDocuments(t *testing.T) {
	ts := setupTestServer(t)
	ts.seed(t, &domain.Restaurant{ID: "rst-a", Name: "A", Cuisine: domain.CuisineSushi,
		Style: domain.StyleAlaCarte, AlcoholType: domain.AlcoholPayPerGlass,
		Cities: []string{"Osaka"}, SoloRating: 3})

	resp := ts.api.Get("/health")
	env := decodeEnvelope[HealthResponse](t, resp.Body.Bytes())
	assert.Equal(t, "1 documents", env.Data.Components["search"].Message)
}

func TestFormatSubscriberStatus(t *testing.T) {
	assert.Equal(t, "no subscribers", formatSubscriberStatus(0))
	assert.Equal(t, "1 subscriber", formatSubscriberStatus(1))
	assert.Equal(t, "4 subscribers", formatSubscriberStatus(4))
}

func TestGetExchangeRate(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/exchange-rate")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	env := decodeEnvelope[exchange.Quote](t, resp.Body.Bytes())
	assert.True(t, env.Success)
	assert.Equal(t, "JPY", env.Data.Base)
	assert.Equal(t, "THB", env.Data.Quote)
	assert.Equal(t, 0.25, env.Data.Rate)
	assert.False(t, env.Data.Fallback)
	assert.False(t, env.Data.FetchedAt.IsZero())
}
