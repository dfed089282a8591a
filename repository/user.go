package repository

import (
	"context"

	"github.com/tasktracker/backend/domain"
)

// UserRepository is the credential store. Implementations enforce the
// uniqueness of username and email at commit time via schema
// constraints, so two racing registrations cannot both land.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) error
}
