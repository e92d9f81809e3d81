// internal/adapters/db/errors.go
package db

import (
	"context"
	"errors"
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/avashisht/boutique-be/internal/core/domain"
)

// classifyError folds postgres driver errors into the domain error taxonomy.
// Unique violations become duplicate-key errors so callers can retry with a
// fresh identifier; connection-class failures become backend-unavailable so
// the store router can fail over.
func classifyError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == "23505":
			return domain.ErrDuplicateKey
		// Class 08: connection exceptions. Class 57: operator intervention
		// (shutdown, crash recovery).
		case strings.HasPrefix(pgErr.Code, "08"), strings.HasPrefix(pgErr.Code, "57"):
			return domain.ErrBackendUnavailable
		}
		return err
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return domain.ErrBackendUnavailable
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.ErrBackendUnavailable
	}
	if pgconn.Timeout(err) {
		return domain.ErrBackendUnavailable
	}
	// pgxpool surfaces dial failures as wrapped *net.OpError, but a closed
	// pool returns a plain error string.
	if strings.Contains(err.Error(), "closed pool") ||
		strings.Contains(err.Error(), "connection refused") {
		return domain.ErrBackendUnavailable
	}

	return err
}
