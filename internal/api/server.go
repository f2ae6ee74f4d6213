// Package api provides the HTTP API server and handlers for the Hitori catalog.
package api

import (
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/hitorimeshi/hitori-server/internal/auth"
	"github.com/hitorimeshi/hitori-server/internal/ratelimit"
	"github.com/hitorimeshi/hitori-server/internal/sse"
)

// Options configures the HTTP surface.
type Options struct {
	Version        string
	AllowedOrigins []string
	MaxUploadSize  int64
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	router          *chi.Mux
	api             huma.API
	services        *Services
	infra           Infrastructure
	gate            *auth.Gate
	stream          *sse.Handler
	mutationLimiter *ratelimit.KeyedRateLimiter
	logger          *slog.Logger
	opts            Options
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(services *Services, infra Infrastructure, gate *auth.Gate, opts Options, logger *slog.Logger) *Server {
	if opts.MaxUploadSize <= 0 {
		opts.MaxUploadSize = DefaultMaxUploadSize
	}
	if opts.Version == "" {
		opts.Version = "1.0.0"
	}

	s := &Server{
		router:          chi.NewRouter(),
		services:        services,
		infra:           infra,
		gate:            gate,
		mutationLimiter: ratelimit.PerMinute(mutationsPerMinute),
		logger:          logger,
		opts:            opts,
	}
	if infra.Stream != nil {
		s.stream = sse.NewHandler(infra.Stream, logger)
	}

	s.setupMiddleware()

	humaConfig := huma.DefaultConfig("Hitori API", opts.Version)
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "PASETO",
		},
	}
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)

	s.api = humachi.New(s.router, humaConfig)
	RegisterErrorHandler()

	s.registerHealthRoutes()
	s.registerCatalogRoutes()
	s.registerAuthRoutes()
	s.registerExchangeRoutes()
	s.setupRawRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close stops background work owned by the server.
func (s *Server) Close() {
	s.mutationLimiter.Stop()
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.opts.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"ETag"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
}

// setupRawRoutes registers the routes huma cannot describe: multipart
// mutations, the event stream and image blobs.
func (s *Server) setupRawRoutes() {
	if s.stream != nil {
		s.router.Get("/api/v1/restaurants/stream", s.stream.ServeHTTP)
	}

	if s.infra.Images != nil {
		s.router.Get("/images/*", s.handleGetImage)
	}

	s.router.Group(func(r chi.Router) {
		r.Use(RateLimitMiddleware(s.mutationLimiter, s.logger))
		r.Use(maxBodySize(s.opts.MaxUploadSize))

		// Anyone may add a restaurant; changing one needs the PIN.
		r.Post("/api/v1/restaurants", s.handleCreateRestaurant)
		r.With(s.requireEditToken).Put("/api/v1/restaurants/{id}", s.handleUpdateRestaurant)
	})
}
