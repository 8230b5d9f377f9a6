package repositories

import (
	"context"
	"errors"

	"contractors/internal/models"
)

// ErrNotFound is returned (wrapped) by repositories when no row matches.
var ErrNotFound = errors.New("record not found")

// UserRepository defines the interface for user data access.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id uint) (*models.User, error)
	Exists(ctx context.Context, id uint) (bool, error)
	// Delete removes the user together with their contractors and the
	// contractors' additional data in one transaction.
	Delete(ctx context.Context, id uint) error
}
