package memory

import (
	"context"
	"sync"
	"time"

	"github.com/sellos-g/web-gate/internal/core/domain"
	"github.com/sellos-g/web-gate/internal/core/ports"
)

// UserRepository is an in-process ports.UserRepository used when the server
// runs without MongoDB.
type UserRepository struct {
	mu    sync.RWMutex
	users map[string]*domain.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	clone := *u
	return &clone
}

func (r *UserRepository) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *UserRepository) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *UserRepository) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; ok {
		return nil, domain.ErrUserExists
	}
	for _, u := range r.users {
		if u.Email == user.Email {
			return nil, domain.ErrUserExists
		}
	}
	r.users[user.ID] = cloneUser(user)
	return cloneUser(user), nil
}

func (r *UserRepository) UpdatePassword(_ context.Context, id, passwordHash string) error {
	return r.update(id, func(u *domain.User) error {
		u.PasswordHash = passwordHash
		return nil
	})
}

func (r *UserRepository) MarkVerified(_ context.Context, id string) error {
	return r.update(id, func(u *domain.User) error {
		u.Verified = true
		return nil
	})
}

func (r *UserRepository) UpdateProfile(_ context.Context, id string, changes ports.ProfileChanges) (*domain.User, error) {
	var out *domain.User
	err := r.update(id, func(u *domain.User) error {
		if changes.Email != nil && *changes.Email != u.Email {
			for _, other := range r.users {
				if other.Email == *changes.Email {
					return domain.ErrUserExists
				}
			}
			u.Email = *changes.Email
		}
		if changes.Name != nil {
			u.Name = *changes.Name
		}
		if changes.Phone != nil {
			u.Phone = *changes.Phone
		}
		out = cloneUser(u)
		return nil
	})
	return out, err
}

// update applies fn to a copy of the user and stores it only if fn succeeds.
func (r *UserRepository) update(id string, fn func(u *domain.User) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	next := cloneUser(u)
	if err := fn(next); err != nil {
		return err
	}
	next.UpdatedAt = time.Now().UTC()
	r.users[id] = next
	return nil
}
