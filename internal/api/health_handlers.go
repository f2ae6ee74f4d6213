package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/danielgtaylor/huma/v2"
)

const (
	statusHealthy   = "healthy"
	statusDegraded  = "degraded"
	statusUnhealthy = "unhealthy"
)

func (s *Server) registerHealthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "healthCheck",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
		Description: "Returns server health status with component checks",
		Tags:        []string{"Health"},
	}, s.handleHealthCheck)
}

// ComponentHealth describes the health of a single component.
type ComponentHealth struct {
	Status  string `json:"status" doc:"Component status: healthy, degraded, or unhealthy"`
	Latency string `json:"latency,omitempty" doc:"Response time for this component"`
	Message string `json:"message,omitempty" doc:"Additional status information"`
}

// HealthResponse contains health check data in API responses.
type HealthResponse struct {
	Status     string                     `json:"status" doc:"Overall status: healthy, degraded, or unhealthy"`
	Components map[string]ComponentHealth `json:"components" doc:"Individual component statuses"`
}

// HealthOutput wraps the health response for Huma.
type HealthOutput struct {
	Body HealthResponse
}

func (s *Server) handleHealthCheck(ctx context.Context, _ *struct{}) (*HealthOutput, error) {
	components := map[string]ComponentHealth{
		"store":    s.checkStore(ctx),
		"search":   s.checkSearchIndex(),
		"exchange": s.checkExchange(),
		"stream":   s.checkStream(),
	}

	overall := statusHealthy
	for _, c := range components {
		switch {
		case c.Status == statusUnhealthy:
			overall = statusUnhealthy
		case c.Status == statusDegraded && overall == statusHealthy:
			overall = statusDegraded
		}
	}

	return &HealthOutput{
		Body: HealthResponse{
			Status:     overall,
			Components: components,
		},
	}, nil
}

// checkStore verifies the catalog store is reachable.
func (s *Server) checkStore(ctx context.Context) ComponentHealth {
	if s.infra.Store == nil {
		return ComponentHealth{Status: statusDegraded, Message: "store not configured"}
	}

	start := time.Now()
	err := s.infra.Store.Ping(ctx)
	latency := time.Since(start)

	if err != nil {
		return ComponentHealth{
			Status:  statusUnhealthy,
			Latency: latency.String(),
			Message: "store unreachable",
		}
	}
	return ComponentHealth{Status: statusHealthy, Latency: latency.String()}
}

// checkSearchIndex verifies the Bleve index is accessible.
// An empty index is fine: a new catalog has nothing to search.
func (s *Server) checkSearchIndex() ComponentHealth {
	if s.infra.Search == nil {
		return ComponentHealth{Status: statusDegraded, Message: "search not configured"}
	}

	start := time.Now()
	docCount, err := s.infra.Search.DocumentCount()
	latency := time.Since(start)

	if err != nil {
		return ComponentHealth{
			Status:  statusUnhealthy,
			Latency: latency.String(),
			Message: "search index unreachable",
		}
	}
	return ComponentHealth{
		Status:  statusHealthy,
		Latency: latency.String(),
		Message: strconv.FormatUint(docCount, 10) + " documents",
	}
}

// checkExchange reports whether a live rate is cached. Prices still render
// with the fallback rate, so a missing rate only degrades.
func (s *Server) checkExchange() ComponentHealth {
	if s.infra.Rates == nil {
		return ComponentHealth{Status: statusDegraded, Message: "exchange rates not configured"}
	}

	q, ok := s.infra.Rates.Cached()
	if !ok {
		return ComponentHealth{Status: statusDegraded, Message: "no live rate fetched yet"}
	}
	return ComponentHealth{
		Status:  statusHealthy,
		Message: fmt.Sprintf("%s/%s %g as of %s", q.Base, q.Quote, q.Rate, q.FetchedAt.UTC().Format(time.RFC3339)),
	}
}

// checkStream reports live subscription count.
func (s *Server) checkStream() ComponentHealth {
	if s.infra.Stream == nil {
		return ComponentHealth{Status: statusDegraded, Message: "live updates not configured"}
	}
	return ComponentHealth{
		Status:  statusHealthy,
		Message: formatSubscriberStatus(s.infra.Stream.SubscriberCount()),
	}
}

func formatSubscriberStatus(count int) string {
	switch count {
	case 0:
		return "no subscribers"
	case 1:
		return "1 subscriber"
	default:
		return strconv.Itoa(count) + " subscribers"
	}
}
