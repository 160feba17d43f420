// Package auth provides concrete implementations for authentication-related domain services.
package auth

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"smartextract/config"
	domainerrors "smartextract/internal/domain/errors"
	"smartextract/internal/domain/service"
)

const defaultAccessTokenTTL = 7 * 24 * time.Hour

// jwtService is a concrete implementation of the TokenService interface using the JWT standard.
type jwtService struct {
	secret []byte        // Symmetric signing key (HS256).
	ttl    time.Duration // Default time-to-live for issued tokens.
}

// NewJWTService is the constructor for jwtService.
// It takes configuration values to create a new token service instance.
func NewJWTService(cfg *config.Config) (service.TokenService, error) {
	if cfg.SecretKey.Access == "" {
		return nil, errors.New("jwt secret must be provided")
	}

	ttl := defaultAccessTokenTTL
	if cfg.Auth != nil && cfg.Auth.AccessTokenTTL > 0 {
		ttl = cfg.Auth.AccessTokenTTL
	}

	return &jwtService{
		secret: []byte(cfg.SecretKey.Access),
		ttl:    ttl,
	}, nil
}

// Issue creates a signed token for the subject. Claims carry sub, iat, exp
// and a random 128-bit jti alongside the scope set and audit extras.
func (s *jwtService) Issue(subject uuid.UUID, scopes []string, extra map[string]string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = s.ttl
	}

	jti, err := newTokenID()
	if err != nil {
		return "", errors.Wrap(err, "failed to generate token id")
	}

	now := time.Now()
	claims := &service.Claims{
		Scopes: scopes,
		Extra:  extra,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        jti,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", errors.Wrap(err, "failed to sign token")
	}

	return signed, nil
}

// Validate verifies signature and expiry, then checks required claims.
func (s *jwtService) Validate(tokenString string) (*service.Claims, error) {
	claims := &service.Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		// Ensure the signing method is what we expect.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}

		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, domainerrors.ErrInvalidToken.WrapMessage("token signature, structure or expiry check failed")
	}

	// iat, jti and sub are mandatory so a revocation list can key on them.
	if claims.Subject == "" || claims.IssuedAt == nil || claims.ID == "" {
		return nil, domainerrors.ErrMissingClaim.WrapMessage("token lacks sub, iat or jti")
	}

	return claims, nil
}

// AccessTokenTTL returns the configured default token lifetime.
func (s *jwtService) AccessTokenTTL() time.Duration {
	return s.ttl
}

// newTokenID returns 128 bits of randomness, hex encoded.
func newTokenID() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}

	return hex.EncodeToString(buf), nil
}
