package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/orderdesk/session-gateway/models"
)

// ErrNotFound is returned when a lookup matches no record
var ErrNotFound = errors.New("record not found")

// ErrDuplicate is returned when a write violates a uniqueness constraint
var ErrDuplicate = errors.New("record already exists")

// UserRepository handles user data operations
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *models.User) error

	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)

	// GetByEmail retrieves a user by email
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// GetByCPF retrieves a user by CPF
	GetByCPF(ctx context.Context, cpf string) (*models.User, error)

	// GetByCredentials retrieves a user by exact match on email and
	// password hash. Returns ErrNotFound when either does not match;
	// callers must not reveal which one.
	GetByCredentials(ctx context.Context, email, passwordHash string) (*models.User, error)

	// List retrieves users with pagination
	List(ctx context.Context, limit, offset int) ([]*models.User, error)

	// Update updates a user
	Update(ctx context.Context, user *models.User) error

	// Delete deletes a user
	Delete(ctx context.Context, id uuid.UUID) error
}
