package store

import (
	"context"

	"github.com/phrazzld/memoria/internal/domain"
)

// UserStore defines the interface for account persistence.
type UserStore interface {
	// Create saves a new user, hashing user.Password into HashedPassword.
	// Returns ErrEmailExists if the email is already taken.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by ID. Returns ErrUserNotFound if absent.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// GetByEmail retrieves a user by email. Returns ErrUserNotFound if absent.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}
