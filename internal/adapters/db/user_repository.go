// internal/adapters/db/user_repository.go
package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/avashisht/boutique-be/internal/core/domain"
	"github.com/avashisht/boutique-be/internal/core/ports"
)

// userRepository implements ports.UserRepository over postgres.
type userRepository struct {
	db     *Database
	logger *slog.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *Database, logger *slog.Logger) ports.UserRepository {
	return &userRepository{
		db:     db,
		logger: logger.With(slog.String("repository", "users")),
	}
}

var _ ports.UserRepository = (*userRepository)(nil)

// FindByUsername retrieves a stored identity
func (r *userRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	query := `SELECT username, password_hash, role, created_at FROM users WHERE username = $1`

	user := &domain.User{}
	err := r.db.QueryRow(ctx, query, username).Scan(
		&user.Username, &user.PasswordHash, &user.Role, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user %q: %w", username, classifyError(err))
	}
	return user, nil
}

// Save upserts a stored identity
func (r *userRepository) Save(ctx context.Context, user *domain.User) error {
	if err := user.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO users (username, password_hash, role, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (username) DO UPDATE SET
			password_hash = EXCLUDED.password_hash,
			role = EXCLUDED.role`

	_, err := r.db.Exec(ctx, query,
		user.Username, user.PasswordHash, user.Role, user.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save user: %w", classifyError(err))
	}

	r.logger.DebugContext(ctx, "user saved", slog.String("username", user.Username))
	return nil
}
