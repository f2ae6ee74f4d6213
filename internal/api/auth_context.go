package api

import (
	"context"
	"net/http"

	"github.com/hitorimeshi/hitori-server/internal/auth"
	"github.com/hitorimeshi/hitori-server/internal/errors"
	"github.com/hitorimeshi/hitori-server/internal/http/response"
)

// ctxKey is the type for context keys to avoid collisions.
type ctxKey string

// editClaimsKey is the context key for verified edit token claims.
const editClaimsKey ctxKey = "editClaims"

// EditClaims returns the verified edit token claims from context, if any.
func EditClaims(ctx context.Context) (*auth.EditClaims, bool) {
	claims, ok := ctx.Value(editClaimsKey).(*auth.EditClaims)
	return claims, ok && claims != nil
}

// requireEditToken rejects requests without a valid edit token.
// The token comes from POST /api/v1/auth/pin.
func (s *Server) requireEditToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := auth.BearerToken(r.Header.Get("Authorization"))
		if !ok {
			response.HandleError(w, errors.Unauthorized("Enter the PIN to edit restaurants."), s.logger)
			return
		}

		claims, err := s.gate.Authorize(token)
		if err != nil {
			response.HandleError(w, err, s.logger)
			return
		}

		ctx := context.WithValue(r.Context(), editClaimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
