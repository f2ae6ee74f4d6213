package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
)

func (s *Server) registerAuthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "unlockEditing",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/pin",
		Summary:     "Unlock editing",
		Description: "Checks the admin PIN and returns a short-lived edit token for create and update",
		Tags:        []string{"Auth"},
	}, s.handleUnlock)
}

// === DTOs ===

// UnlockRequest is the request body for the PIN check.
type UnlockRequest struct {
	PIN string `json:"pin" minLength:"1" maxLength:"64" doc:"Admin PIN"`
}

// UnlockInput wraps the PIN request for Huma.
type UnlockInput struct {
	client string
	Body   UnlockRequest
}

// Resolve records the caller's address for attempt throttling.
func (i *UnlockInput) Resolve(ctx huma.Context) []error {
	r, _ := humachi.Unwrap(ctx)
	i.client = getClientIP(r)
	return nil
}

// EditTokenResponse contains the issued edit token.
type EditTokenResponse struct {
	ExpiresAt time.Time `json:"expires_at" doc:"Token expiry"`
	Token     string    `json:"token" doc:"Bearer token for create and update"`
}

// EditTokenOutput wraps the edit token for Huma.
type EditTokenOutput struct {
	Body EditTokenResponse
}

// === Handlers ===

func (s *Server) handleUnlock(_ context.Context, input *UnlockInput) (*EditTokenOutput, error) {
	grant, err := s.gate.Unlock(input.client, input.Body.PIN)
	if err != nil {
		return nil, err
	}
	return &EditTokenOutput{
		Body: EditTokenResponse{Token: grant.Token, ExpiresAt: grant.ExpiresAt},
	}, nil
}
