package middleware

import (
	"slices"
	"strings"

	domainerrors "smartextract/internal/domain/errors"
	"smartextract/internal/domain/repository"
	"smartextract/internal/domain/service"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// Context keys set by Authenticate for downstream handlers.
const (
	ContextKeyUserID = "userID"
	ContextKeyScopes = "scopes"
)

// AuthMiddleware provides middleware for bearer-token authentication and
// scope-based authorization.
type AuthMiddleware struct {
	tokenSvc service.TokenService
	userRepo repository.UserRepository
}

// NewAuthMiddleware is the constructor for AuthMiddleware.
func NewAuthMiddleware(tokenSvc service.TokenService, userRepo repository.UserRepository) *AuthMiddleware {
	return &AuthMiddleware{tokenSvc: tokenSvc, userRepo: userRepo}
}

// Authenticate validates the access token and resolves it to an active
// account. The user ID and token scopes are stored on the echo context.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			return domainerrors.ErrInvalidToken.WrapMessage("authorization header is missing")
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			return domainerrors.ErrInvalidToken.WrapMessage("authorization header must carry a bearer token")
		}

		claims, err := m.tokenSvc.Validate(tokenString)
		if err != nil {
			return err
		}

		userID, err := claims.UserID()
		if err != nil {
			return domainerrors.ErrInvalidToken.WrapMessage("token subject is not a valid user id")
		}

		// The token may outlive the account; re-check it on every request.
		user, err := m.userRepo.FindByID(c.Request().Context(), userID)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return domainerrors.ErrInvalidToken.WrapMessage("token subject no longer exists")
			}

			return errors.Wrap(err, "failed to resolve token subject")
		}
		if !user.IsActive {
			return domainerrors.ErrInactiveAccount.WrapMessage("account is deactivated")
		}

		c.Set(ContextKeyUserID, userID)
		c.Set(ContextKeyScopes, claims.Scopes)

		return next(c)
	}
}

// RequireScope is a middleware factory that checks the token carries a
// capability tag. It must be used AFTER Authenticate.
func (m *AuthMiddleware) RequireScope(requiredScope string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			scopes, ok := c.Get(ContextKeyScopes).([]string)
			if !ok {
				return domainerrors.ErrForbidden.WrapMessage("scope information missing from request")
			}

			if !slices.Contains(scopes, requiredScope) {
				return domainerrors.ErrForbidden.WrapMessage("token lacks the " + requiredScope + " scope")
			}

			return next(c)
		}
	}
}

// UserID extracts the authenticated user ID placed by Authenticate.
func UserID(c echo.Context) (uuid.UUID, error) {
	userID, ok := c.Get(ContextKeyUserID).(uuid.UUID)
	if !ok {
		return uuid.Nil, domainerrors.ErrInvalidToken.WrapMessage("request is not authenticated")
	}

	return userID, nil
}
