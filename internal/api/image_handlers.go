package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitorimeshi/hitori-server/internal/http/response"
)

// handleGetImage serves a stored image at GET /images/{name}.
// Object names embed an upload timestamp and are never rewritten, so
// responses are cacheable forever.
func (s *Server) handleGetImage(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "*")

	if !s.infra.Images.Exists(name) {
		response.NotFound(w, "image not found", s.logger)
		return
	}

	etag, err := s.infra.Images.Hash(name)
	if err != nil {
		s.logger.Error("failed to read image", "name", name, "error", err)
		response.InternalError(w, "failed to read image", s.logger)
		return
	}

	path, err := s.infra.Images.Path(name)
	if err != nil {
		response.NotFound(w, "image not found", s.logger)
		return
	}

	w.Header().Set("ETag", `"`+etag+`"`)
	w.Header().Set("Cache-Control", CacheImmutable)

	// http.ServeFile handles If-None-Match against the ETag set above,
	// Range requests and the Content-Type from the .webp extension.
	http.ServeFile(w, r, path)
}
