package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims is the typed payload of a session token. The registered claims carry
// sub, iat, exp and jti; Scopes and Extra are application claims. The jti and
// iat pair is kept so a revocation list can be layered on later without a
// protocol change.
type Claims struct {
	Scopes []string `json:"scopes,omitempty"`
	// Extra carries audit metadata stapled on at issuance (client ip, user agent).
	Extra map[string]string `json:"extra,omitempty"`
	jwt.RegisteredClaims
}

// UserID parses the subject claim.
func (c *Claims) UserID() (uuid.UUID, error) {
	return uuid.Parse(c.Subject)
}

// HasScope reports whether the token carries the given capability tag.
func (c *Claims) HasScope(scope string) bool {
	for _, s := range c.Scopes {
		if s == scope {
			return true
		}
	}

	return false
}

// TokenService issues and validates signed, expiring session tokens.
// This abstracts the details of token creation from the use cases.
type TokenService interface {
	// Issue builds and signs a token for the subject with the given scopes,
	// optional audit extras and time-to-live.
	Issue(subject uuid.UUID, scopes []string, extra map[string]string, ttl time.Duration) (string, error)

	// Validate verifies signature and expiry and returns the typed claims.
	// Required claims (sub, iat, jti) are checked for presence.
	Validate(token string) (*Claims, error)

	// AccessTokenTTL returns the configured default token lifetime.
	AccessTokenTTL() time.Duration
}
