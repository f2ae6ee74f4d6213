package auth

import (
	"encoding/json/v2"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"aidanwoods.dev/go-paseto"

	"github.com/hitorimeshi/hitori-server/internal/errors"
	"github.com/hitorimeshi/hitori-server/internal/id"
)

const (
	tokenIssuer   = "hitori-server"
	tokenAudience = "hitori-editor"
	tokenSubject  = "admin"

	// ScopeEdit grants create and update on restaurants.
	ScopeEdit = "restaurants:edit"

	// DefaultEditTokenDuration is used when no duration is configured.
	DefaultEditTokenDuration = 30 * time.Minute
)

// TokenService issues and verifies PASETO v4.local edit tokens.
type TokenService struct {
	symmetricKey paseto.V4SymmetricKey
	duration     time.Duration
	now          func() time.Time
}

// NewTokenService creates a token service from a 32-byte key.
func NewTokenService(key []byte, duration time.Duration) (*TokenService, error) {
	if len(key) != keyLength {
		return nil, fmt.Errorf("PASETO v4 key must be exactly %d bytes, got %d", keyLength, len(key))
	}

	symmetricKey, err := paseto.V4SymmetricKeyFromBytes(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create PASETO symmetric key: %w", err)
	}

	if duration <= 0 {
		duration = DefaultEditTokenDuration
	}

	return &TokenService{
		symmetricKey: symmetricKey,
		duration:     duration,
		now:          time.Now,
	}, nil
}

// IssueEditToken creates an encrypted edit token and returns it with its expiry.
func (s *TokenService) IssueEditToken() (string, time.Time, error) {
	now := s.now()
	expires := now.Add(s.duration)

	token := paseto.NewToken()
	token.SetIssuer(tokenIssuer)
	token.SetSubject(tokenSubject)
	token.SetAudience(tokenAudience)
	token.SetIssuedAt(now)
	token.SetNotBefore(now)
	token.SetExpiration(expires)

	tokenID, err := id.Generate(id.PrefixEditToken)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("generate token ID: %w", err)
	}
	token.SetJti(tokenID)

	//nolint:errcheck // Token.Set only errors on unmarshalable values
	_ = token.Set("scope", ScopeEdit)

	return token.V4Encrypt(s.symmetricKey, nil), expires, nil
}

// VerifyEditToken decrypts and validates a token.
// Expired tokens yield errors.ErrTokenExpired; anything else invalid yields errors.ErrUnauthorized.
func (s *TokenService) VerifyEditToken(tokenString string) (*EditClaims, error) {
	parser := paseto.NewParserWithoutExpiryCheck()
	parser.AddRule(paseto.ForAudience(tokenAudience))
	parser.AddRule(paseto.IssuedBy(tokenIssuer))

	token, err := parser.ParseV4Local(s.symmetricKey, tokenString, nil)
	if err != nil {
		return nil, errors.ErrUnauthorized.WithCause(err)
	}

	var claims EditClaims
	if err := json.Unmarshal(token.ClaimsJSON(), &claims); err != nil {
		return nil, errors.ErrUnauthorized.WithCause(fmt.Errorf("parse claims: %w", err))
	}

	now := s.now()
	if !now.Before(claims.Expiration) {
		return nil, errors.ErrTokenExpired
	}
	if now.Before(claims.NotBefore) {
		return nil, errors.ErrUnauthorized.WithCause(stderrors.New("token not yet valid"))
	}
	if !claims.CanEdit() {
		return nil, errors.ErrUnauthorized.WithCause(stderrors.New("token lacks edit scope"))
	}

	return &claims, nil
}

// Duration returns the edit token lifetime.
func (s *TokenService) Duration() time.Duration {
	return s.duration
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header value.
func BearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
