// internal/adapters/memstore/users.go
package memstore

import (
	"context"

	"github.com/avashisht/boutique-be/internal/core/domain"
	"github.com/avashisht/boutique-be/internal/core/ports"
)

// UserStore implements ports.UserRepository over the in-memory store.
type UserStore struct {
	store *Store
}

var _ ports.UserRepository = (*UserStore)(nil)

func (u *UserStore) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	s := u.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[username]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *user
	return &cp, nil
}

func (u *UserStore) Save(ctx context.Context, user *domain.User) error {
	if err := user.Validate(); err != nil {
		return err
	}

	s := u.store
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *user
	s.users[user.Username] = &cp
	return nil
}
