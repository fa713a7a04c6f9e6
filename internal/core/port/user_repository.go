package port

import (
	"context"

	"github.com/kristinefung/personal-website-server/internal/core/domain"
)

// UserRepository exposes persistence behavior for the user directory.
// Lookups exclude soft-deleted rows.
type UserRepository interface {
	Create(ctx context.Context, user domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	Update(ctx context.Context, user domain.User) error
	SoftDelete(ctx context.Context, id string, deletedBy string) error
}
