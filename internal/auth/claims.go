package auth

import "time"

// EditClaims are the claims carried by an edit token.
// v4.local tokens are encrypted, so clients cannot read them.
type EditClaims struct {
	Scope string `json:"scope"`

	Issuer     string    `json:"iss"`
	Subject    string    `json:"sub"`
	Audience   string    `json:"aud"`
	Expiration time.Time `json:"exp"`
	NotBefore  time.Time `json:"nbf"`
	IssuedAt   time.Time `json:"iat"`
	TokenID    string    `json:"jti"`
}

// CanEdit reports whether the claims grant catalog mutations.
func (c *EditClaims) CanEdit() bool {
	return c != nil && c.Scope == ScopeEdit
}
