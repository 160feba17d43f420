// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"log/slog"
	"time"

	deliverycontext "smartextract/internal/delivery/context"
	"smartextract/internal/domain/entity"
	domainerrors "smartextract/internal/domain/errors"
	"smartextract/internal/domain/repository"
	"smartextract/internal/domain/service"
	"smartextract/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

const tokenTypeBearer = "bearer"

// userService implements the UserUsecase interface.
type userService struct {
	txManager    repository.TransactionManager
	userRepo     repository.UserRepository
	hasher       service.PasswordHasher
	tokenService service.TokenService
	logger       *slog.Logger
}

// UserServiceParams holds dependencies for UserService, injected by Fx.
type UserServiceParams struct {
	fx.In

	TxManager    repository.TransactionManager
	UserRepo     repository.UserRepository
	Hasher       service.PasswordHasher
	TokenService service.TokenService
	Logger       *slog.Logger
}

// NewUserService is the constructor for userService. It receives all dependencies as interfaces.
func NewUserService(params UserServiceParams) usecase.UserUsecase {
	return &userService{
		txManager:    params.TxManager,
		userRepo:     params.UserRepo,
		hasher:       params.Hasher,
		tokenService: params.TokenService,
		logger:       params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *userService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Register orchestrates the complete account registration process.
func (srv *userService) Register(ctx context.Context, input *usecase.RegisterInput) (*usecase.RegisterOutput, error) {
	srv.log(ctx).Info("Starting registration", slog.String("email", input.Email), slog.String("username", input.Username))

	if err := srv.hasher.ValidatePasswordStrength(input.Password); err != nil {
		srv.log(ctx).Warn("Password validation failed during registration", slog.String("email", input.Email), slog.Any("error", err))

		return nil, err
	}

	// Hash outside the transaction (bcrypt is CPU-bound).
	hashedPassword, err := srv.hasher.Hash(input.Password)
	if err != nil {
		srv.log(ctx).Error("Failed to hash password during registration", slog.Any("error", err))

		return nil, domainerrors.ErrPasswordHashFailed.WrapMessage("failed to hash password during registration")
	}

	var registeredUser *entity.User
	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.UserRepo()

		if _, err := userRepo.FindByEmail(ctx, input.Email); !errors.Is(err, repository.ErrUserNotFound) {
			if err != nil {
				return errors.Wrap(err, "failed to check email availability")
			}

			return domainerrors.ErrEmailTaken.WrapMessage("email already registered")
		}

		if _, err := userRepo.FindByUsername(ctx, input.Username); !errors.Is(err, repository.ErrUserNotFound) {
			if err != nil {
				return errors.Wrap(err, "failed to check username availability")
			}

			return domainerrors.ErrUsernameTaken.WrapMessage("username already registered")
		}

		newUser := &entity.User{
			Email:        input.Email,
			Username:     input.Username,
			FullName:     input.FullName,
			PasswordHash: hashedPassword,
			IsActive:     true,
		}

		if err := userRepo.Create(ctx, newUser); err != nil {
			return errors.Wrap(err, "failed to create user during registration")
		}

		registeredUser = newUser

		return nil
	})
	if err != nil {
		srv.log(ctx).Warn("Registration failed", slog.String("email", input.Email), slog.Any("error", err))

		return nil, err
	}

	srv.log(ctx).Debug("Registration completed", slog.Any("userID", registeredUser.ID))

	return &usecase.RegisterOutput{User: registeredUser}, nil
}

// Login verifies credentials and issues a bearer token whose claims carry the
// account's scopes plus the client IP and user agent for auditing.
func (srv *userService) Login(ctx context.Context, input *usecase.LoginInput) (*usecase.LoginOutput, error) {
	srv.log(ctx).Debug("Starting login", slog.String("username", input.Username))

	user, err := srv.userRepo.FindByUsername(ctx, input.Username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			srv.log(ctx).Warn("Login failed, unknown username", slog.String("username", input.Username))

			return nil, domainerrors.ErrInvalidCredentials.WrapMessage("login failed")
		}

		return nil, errors.Wrap(err, "failed to load user for login")
	}

	// Check password outside transaction (bcrypt is CPU-bound).
	if !srv.hasher.Check(input.Password, user.PasswordHash) {
		srv.log(ctx).Warn("Login failed, password mismatch", slog.String("username", input.Username))

		return nil, domainerrors.ErrInvalidCredentials.WrapMessage("login failed")
	}

	if !user.IsActive {
		srv.log(ctx).Warn("Login refused for inactive account", slog.Any("userID", user.ID))

		return nil, domainerrors.ErrInactiveAccount.WrapMessage("account is deactivated")
	}

	extra := map[string]string{}
	if input.IP != "" {
		extra["ip"] = input.IP
	}
	if input.UserAgent != "" {
		extra["user_agent"] = input.UserAgent
	}

	accessToken, err := srv.tokenService.Issue(user.ID, user.Scopes(), extra, 0)
	if err != nil {
		srv.log(ctx).Error("Failed to issue token", slog.Any("userID", user.ID), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to issue access token")
	}

	// Record the successful login. Best-effort: a failed timestamp update
	// must not block the login itself.
	now := time.Now()
	user.LastLogin = &now
	if err := srv.userRepo.Update(ctx, user); err != nil {
		srv.log(ctx).Warn("Failed to record last login", slog.Any("userID", user.ID), slog.Any("error", err))
	}

	srv.log(ctx).Debug("User logged in successfully", slog.Any("userID", user.ID))

	return &usecase.LoginOutput{
		AccessToken: accessToken,
		TokenType:   tokenTypeBearer,
		User:        user,
	}, nil
}

// GetProfile loads the caller's own account.
func (srv *userService) GetProfile(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	user, err := srv.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, domainerrors.ErrNotFound.WrapMessage("account not found")
		}

		return nil, errors.Wrap(err, "failed to load profile")
	}

	return user, nil
}

// UpdateProfile applies the provided changes to the caller's own account.
func (srv *userService) UpdateProfile(ctx context.Context, userID uuid.UUID, input *usecase.UpdateProfileInput) (*entity.User, error) {
	srv.log(ctx).Info("Updating profile", slog.Any("userID", userID))

	var hashedPassword string
	if input.Password != nil {
		if err := srv.hasher.ValidatePasswordStrength(*input.Password); err != nil {
			return nil, err
		}

		var err error
		hashedPassword, err = srv.hasher.Hash(*input.Password)
		if err != nil {
			return nil, domainerrors.ErrPasswordHashFailed.WrapMessage("failed to hash new password")
		}
	}

	var updatedUser *entity.User
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.UserRepo()

		user, err := userRepo.FindByID(ctx, userID)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return domainerrors.ErrNotFound.WrapMessage("account not found")
			}

			return errors.Wrap(err, "failed to load user for update")
		}

		if input.Email != nil && *input.Email != user.Email {
			if _, err := userRepo.FindByEmail(ctx, *input.Email); !errors.Is(err, repository.ErrUserNotFound) {
				if err != nil {
					return errors.Wrap(err, "failed to check email availability")
				}

				return domainerrors.ErrEmailTaken.WrapMessage("email already registered")
			}
			user.Email = *input.Email
		}
		if input.FullName != nil {
			user.FullName = *input.FullName
		}
		if hashedPassword != "" {
			user.PasswordHash = hashedPassword
		}

		if err := userRepo.Update(ctx, user); err != nil {
			return errors.Wrap(err, "failed to update profile")
		}

		updatedUser = user

		return nil
	})
	if err != nil {
		srv.log(ctx).Warn("Profile update failed", slog.Any("userID", userID), slog.Any("error", err))

		return nil, err
	}

	return updatedUser, nil
}

// ListUsers pages through all accounts. Authorization is enforced by the
// delivery layer's scope middleware.
func (srv *userService) ListUsers(ctx context.Context, input *usecase.ListUsersInput) ([]*entity.User, error) {
	users, err := srv.userRepo.List(ctx, input.Offset, normalizeLimit(input.Limit))
	if err != nil {
		return nil, errors.Wrap(err, "failed to list users")
	}

	return users, nil
}

const (
	defaultPageLimit = 50
	maxPageLimit     = 200
)

// normalizeLimit clamps page sizes into a sane range.
func normalizeLimit(limit int) int {
	if limit <= 0 {
		return defaultPageLimit
	}
	if limit > maxPageLimit {
		return maxPageLimit
	}

	return limit
}
