package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/platform/logger"
	"github.com/phrazzld/taskflow-api/internal/service/auth"
	"github.com/phrazzld/taskflow-api/internal/store"
)

const (
	passwordUpdatedMessage = "Your password has been updated."
	adminDisplayName       = "Administrator"
)

// LoginResult is the outcome of a successful login.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
}

// UserService provides account operations.
type UserService interface {
	// Register creates an unapproved account with the "user" role.
	Register(ctx context.Context, name, email, password string) (*domain.User, error)

	// Login verifies credentials and issues an access token for approved accounts.
	Login(ctx context.Context, email, password string) (*LoginResult, error)

	// ListUsers returns every account.
	ListUsers(ctx context.Context) ([]*domain.User, error)

	// Approve marks the account as approved. It does not emit a notification.
	Approve(ctx context.Context, email string) (*domain.User, error)

	// UpdatePassword replaces the account's password and emits a "profile" notification.
	UpdatePassword(ctx context.Context, email, password string) (*domain.User, error)

	// EnsureAdmin creates an approved admin account for email unless one exists.
	EnsureAdmin(ctx context.Context, email, password string) (*domain.User, error)
}

// UserServiceImpl implements the UserService interface
type UserServiceImpl struct {
	users         store.UserStore
	hasher        auth.PasswordHasher
	tokens        auth.JWTService
	notifications NotificationService
	logger        *slog.Logger
}

// NewUserService creates a new UserService
func NewUserService(
	users store.UserStore,
	hasher auth.PasswordHasher,
	tokens auth.JWTService,
	notifications NotificationService,
	logger *slog.Logger,
) UserService {
	if users == nil {
		panic("user store cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &UserServiceImpl{
		users:         users,
		hasher:        hasher,
		tokens:        tokens,
		notifications: notifications,
		logger:        logger.With("component", "user_service"),
	}
}

// Register implements UserService.
func (s *UserServiceImpl) Register(ctx context.Context, name, email, password string) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := domain.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := domain.ValidatePassword(password); err != nil {
		return nil, err
	}

	hashed, err := s.hasher.Hash(password)
	if err != nil {
		log.Error("failed to hash password", "error", err)
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	user, err := domain.NewUser(name, email, hashed)
	if err != nil {
		return nil, err
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			log.Debug("attempted to create user with existing email", "email", user.Email)
		} else {
			log.Error("failed to save user", "error", err, "email", user.Email)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	log.Info("user registered", "user_id", user.ID, "email", user.Email)
	return user, nil
}

// Login implements UserService.
func (s *UserServiceImpl) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.users.GetByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if store.IsNotFoundError(err) {
			log.Debug("login attempt for unknown email")
			return nil, ErrInvalidCredentials
		}
		log.Error("failed to look up user for login", "error", err)
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := s.hasher.Compare(user.HashedPassword, password); err != nil {
		if !errors.Is(err, auth.ErrPasswordMismatch) {
			log.Warn("password comparison failed", "error", err, "user_id", user.ID)
		}
		return nil, ErrInvalidCredentials
	}

	if !user.Approved {
		log.Debug("login attempt by unapproved user", "user_id", user.ID)
		return nil, domain.ErrNotApproved
	}

	token, expiresAt, err := s.tokens.GenerateToken(ctx, user)
	if err != nil {
		log.Error("failed to generate token", "error", err, "user_id", user.ID)
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	log.Info("user logged in", "user_id", user.ID)
	return &LoginResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// ListUsers implements UserService.
func (s *UserServiceImpl) ListUsers(ctx context.Context) ([]*domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list users", "error", err)
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// Approve implements UserService.
func (s *UserServiceImpl) Approve(ctx context.Context, email string) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := domain.ValidateEmail(email); err != nil {
		return nil, err
	}

	user, err := s.users.Approve(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if store.IsNotFoundError(err) || store.IsConflictError(err) {
			log.Debug("approval rejected", "error", err, "email", email)
		} else {
			log.Error("failed to approve user", "error", err, "email", email)
		}
		return nil, fmt.Errorf("failed to approve user: %w", err)
	}

	log.Info("user approved", "user_id", user.ID, "email", user.Email)
	return user, nil
}

// UpdatePassword implements UserService.
func (s *UserServiceImpl) UpdatePassword(ctx context.Context, email, password string) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	email = domain.NormalizeEmail(email)

	if _, err := s.users.GetByEmail(ctx, email); err != nil {
		if !store.IsNotFoundError(err) {
			log.Error("failed to look up user", "error", err, "email", email)
		}
		return nil, fmt.Errorf("failed to update password: %w", err)
	}

	if err := domain.ValidatePassword(password); err != nil {
		return nil, err
	}

	hashed, err := s.hasher.Hash(password)
	if err != nil {
		log.Error("failed to hash password", "error", err)
		return nil, fmt.Errorf("failed to update password: %w", err)
	}

	user, err := s.users.UpdatePassword(ctx, email, hashed)
	if err != nil {
		if !store.IsNotFoundError(err) {
			log.Error("failed to save password", "error", err, "email", email)
		}
		return nil, fmt.Errorf("failed to update password: %w", err)
	}

	log.Info("password updated", "user_id", user.ID)
	if s.notifications != nil {
		if _, err := s.notifications.Emit(ctx, user.ID, passwordUpdatedMessage, domain.NotificationTypeProfile); err != nil {
			log.Warn("profile notification failed", "error", err, "user_id", user.ID)
		}
	}
	return user, nil
}

// EnsureAdmin implements UserService.
func (s *UserServiceImpl) EnsureAdmin(ctx context.Context, email, password string) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	email = domain.NormalizeEmail(email)

	existing, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		if !existing.IsAdmin() {
			log.Warn("bootstrap admin email belongs to a non-admin account", "user_id", existing.ID)
		}
		return existing, nil
	}
	if !store.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to look up admin: %w", err)
	}

	if err := domain.ValidatePassword(password); err != nil {
		return nil, err
	}
	hashed, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash admin password: %w", err)
	}

	admin, err := domain.NewUser(adminDisplayName, email, hashed)
	if err != nil {
		return nil, err
	}
	admin.Role = domain.RoleAdmin
	admin.Approved = true

	if err := s.users.Create(ctx, admin); err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			// Another instance created it first.
			return s.users.GetByEmail(ctx, email)
		}
		return nil, fmt.Errorf("failed to create admin: %w", err)
	}

	log.Info("bootstrap admin created", "user_id", admin.ID, "email", admin.Email)
	return admin, nil
}
