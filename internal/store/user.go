package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/domain"
)

// UserStore defines the interface for user data persistence.
// Emails are stored and looked up in normalized (lowercase) form.
type UserStore interface {
	// Create saves a new user to the store.
	// Returns ErrEmailExists if the email is already taken.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their unique ID.
	// Returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByEmail retrieves a user by their email address.
	// Returns ErrUserNotFound if the user does not exist.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// List returns all users in registration order.
	List(ctx context.Context) ([]*domain.User, error)

	// Approve flips the approved flag of the user with email from false to true
	// as a single conditional update.
	// Returns ErrUserNotFound if no such user exists and ErrAlreadyApproved
	// if the user was already approved.
	Approve(ctx context.Context, email string) (*domain.User, error)

	// UpdatePassword replaces the stored password hash of the user with email.
	// Returns ErrUserNotFound if the user does not exist.
	UpdatePassword(ctx context.Context, email, hashedPassword string) (*domain.User, error)
}
