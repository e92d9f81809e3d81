// internal/adapters/memstore/store.go

// Package memstore is the in-memory fallback store. It keeps the service
// usable when the persistent backend is unreachable: same contracts, same
// rejection semantics, no durability. All data is lost on restart.
package memstore

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/avashisht/boutique-be/internal/core/domain"
)

// Store holds the shared state behind the per-entity repositories. One
// RWMutex guards all three maps; contention is irrelevant at fallback scale.
type Store struct {
	mu           sync.RWMutex
	items        map[string]*domain.InventoryItem
	transactions map[string]*domain.Transaction
	users        map[string]*domain.User
	logger       *slog.Logger
}

// NewStore creates an empty in-memory store.
func NewStore(logger *slog.Logger) *Store {
	return &Store{
		items:        make(map[string]*domain.InventoryItem),
		transactions: make(map[string]*domain.Transaction),
		users:        make(map[string]*domain.User),
		logger:       logger.With(slog.String("store", "memory")),
	}
}

// Ledger returns the inventory view of the store.
func (s *Store) Ledger() *Ledger {
	return &Ledger{store: s}
}

// Transactions returns the transaction record view of the store.
func (s *Store) Transactions() *TransactionStore {
	return &TransactionStore{store: s}
}

// Users returns the identity view of the store.
func (s *Store) Users() *UserStore {
	return &UserStore{store: s}
}

// SeedAdmin creates the default admin identity so authentication keeps
// working in fallback mode. The password comes from configuration; an empty
// password skips seeding.
func (s *Store) SeedAdmin(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		s.logger.InfoContext(ctx, "admin seeding skipped, no credentials configured")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	user := &domain.User{
		Username:     username,
		PasswordHash: string(hash),
		Role:         "admin",
		CreatedAt:    time.Now(),
	}
	if err := s.Users().Save(ctx, user); err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}

	s.logger.InfoContext(ctx, "admin user seeded", slog.String("username", username))
	return nil
}

// copyItem returns an independent copy so callers can never mutate stored
// state through a returned pointer.
func copyItem(item *domain.InventoryItem) *domain.InventoryItem {
	cp := *item
	return &cp
}
