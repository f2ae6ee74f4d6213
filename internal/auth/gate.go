package auth

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/hitorimeshi/hitori-server/internal/errors"
	"github.com/hitorimeshi/hitori-server/internal/ratelimit"
)

// EditGrant is returned after a correct PIN.
type EditGrant struct {
	ExpiresAt time.Time `json:"expires_at"`
	Token     string    `json:"token"`
}

// Gate checks PIN attempts and issues edit tokens.
type Gate struct {
	limiter *ratelimit.KeyedRateLimiter
	tokens  *TokenService
	logger  *slog.Logger
	pinHash string
}

// NewGate hashes the admin PIN once and returns a gate that allows
// attemptsPerMinute attempts per client.
func NewGate(pin string, attemptsPerMinute int, tokens *TokenService, logger *slog.Logger) (*Gate, error) {
	pinHash, err := HashPIN(pin)
	if err != nil {
		return nil, fmt.Errorf("hash admin PIN: %w", err)
	}

	return &Gate{
		limiter: ratelimit.PerMinute(attemptsPerMinute),
		tokens:  tokens,
		logger:  logger,
		pinHash: pinHash,
	}, nil
}

// Unlock checks pin for the given client and issues an edit token on success.
func (g *Gate) Unlock(client, pin string) (*EditGrant, error) {
	if !g.limiter.Allow(client) {
		g.logger.Warn("PIN attempts throttled", slog.String("client", client))
		return nil, errors.RateLimited("too many PIN attempts, try again in a minute")
	}

	if !CheckPIN(g.pinHash, pin) {
		g.logger.Info("incorrect PIN", slog.String("client", client))
		return nil, errors.ErrInvalidPIN
	}

	token, expires, err := g.tokens.IssueEditToken()
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "failed to issue edit token")
	}

	g.logger.Info("edit token issued", slog.String("client", client), slog.Time("expires_at", expires))
	return &EditGrant{Token: token, ExpiresAt: expires}, nil
}

// Authorize validates a bearer token for a mutation.
func (g *Gate) Authorize(token string) (*EditClaims, error) {
	return g.tokens.VerifyEditToken(token)
}

// Shutdown stops the attempt limiter's background sweep.
func (g *Gate) Shutdown() error {
	g.limiter.Stop()
	return nil
}
