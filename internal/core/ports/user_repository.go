package ports

import (
	"context"

	"github.com/sellos-g/web-gate/internal/core/domain"
)

// UserRepository defines persistence for identity-backend accounts.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	MarkVerified(ctx context.Context, id string) error
	// UpdateProfile applies the given field changes and returns the updated user.
	UpdateProfile(ctx context.Context, id string, changes ProfileChanges) (*domain.User, error)
}

// ProfileChanges carries the editable profile fields; nil means unchanged.
type ProfileChanges struct {
	Name  *string
	Email *string
	Phone *string
}

// Empty reports whether no field is set.
func (p ProfileChanges) Empty() bool {
	return p.Name == nil && p.Email == nil && p.Phone == nil
}
