package repositories

import (
	"context"
	"errors"

	"usermgmt/internal/models"
)

var (
	// ErrUserNotFound is returned when no record matched the given id or email.
	ErrUserNotFound = errors.New("user not found")
	// ErrDuplicateEmail is returned when the store rejects a second account for an email.
	ErrDuplicateEmail = errors.New("email already exists")
	// ErrStorageUnavailable wraps connectivity faults of the underlying store.
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// UserRepository defines the interface for user data access.
type UserRepository interface {
	GetAll(ctx context.Context) ([]models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, id, name, email string) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	Delete(ctx context.Context, id string) error
}
