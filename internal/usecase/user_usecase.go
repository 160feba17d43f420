// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"

	"github.com/google/uuid"

	"smartextract/internal/domain/entity"
)

// --- Input DTOs ---

// RegisterInput defines the data required to register a new account.
type RegisterInput struct {
	Email    string
	Username string
	FullName string
	Password string
}

// LoginInput defines the data required to log in. IP and UserAgent are
// recorded inside the issued token for audit purposes.
type LoginInput struct {
	Username  string
	Password  string
	IP        string
	UserAgent string
}

// UpdateProfileInput carries the optional profile changes. Nil fields are
// left untouched.
type UpdateProfileInput struct {
	Email    *string
	FullName *string
	Password *string
}

// ListUsersInput pages through all accounts. Admin-only.
type ListUsersInput struct {
	Offset int
	Limit  int
}

// --- Output DTOs ---

// RegisterOutput returns the newly created account's basic information.
type RegisterOutput struct {
	User *entity.User
}

// LoginOutput returns the issued bearer token after a successful login.
type LoginOutput struct {
	AccessToken string
	TokenType   string
	User        *entity.User
}

// UserUsecase defines the interface for account-related business operations.
// This is the contract that the delivery layer (e.g., API handlers) will depend on.
type UserUsecase interface {
	Register(ctx context.Context, input *RegisterInput) (*RegisterOutput, error)
	Login(ctx context.Context, input *LoginInput) (*LoginOutput, error)
	GetProfile(ctx context.Context, userID uuid.UUID) (*entity.User, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, input *UpdateProfileInput) (*entity.User, error)
	ListUsers(ctx context.Context, input *ListUsersInput) ([]*entity.User, error)
}
