// internal/adapters/failover/router.go
package failover

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/avashisht/boutique-be/internal/core/domain"
	"github.com/avashisht/boutique-be/internal/core/ports"
)

// Pinger is the connectivity check the probe runs against the persistent
// backend. *db.Database satisfies it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Router implements ports.StoreRouter. When no database is configured the
// primary store set is absent and the router pins itself to fallback.
type Router struct {
	primary  ports.StoreSet
	fallback ports.StoreSet
	selector *Selector
	pinger   Pinger
	logger   *slog.Logger
}

var _ ports.StoreRouter = (*Router)(nil)

// NewRouter creates a store router. primary may be the zero StoreSet and
// pinger may be nil when the service runs without a persistent backend.
func NewRouter(primary, fallback ports.StoreSet, selector *Selector, pinger Pinger, logger *slog.Logger) *Router {
	return &Router{
		primary:  primary,
		fallback: fallback,
		selector: selector,
		pinger:   pinger,
		logger:   logger.With(slog.String("component", "store_router")),
	}
}

// Select returns the store set for a new request.
func (r *Router) Select() ports.StoreSet {
	if r.selector.Current() == ports.BackendFallback || r.pinger == nil {
		return r.fallback
	}
	return r.primary
}

// Fallback returns the fallback store set.
func (r *Router) Fallback() ports.StoreSet {
	return r.fallback
}

// Selector exposes the shared failover state.
func (r *Router) Selector() ports.StoreSelector {
	return r.selector
}

// Probe checks primary connectivity and updates the selector. A successful
// probe is the only automatic path back to the primary store.
func (r *Router) Probe(ctx context.Context) error {
	if r.pinger == nil {
		r.selector.RecordFailure()
		return fmt.Errorf("no persistent backend configured: %w", domain.ErrBackendUnavailable)
	}

	if err := r.pinger.Ping(ctx); err != nil {
		before := r.selector.Current()
		r.selector.RecordFailure()
		if before == ports.BackendPrimary {
			r.logger.WarnContext(ctx, "primary store demoted to fallback",
				slog.String("error", err.Error()))
		}
		return fmt.Errorf("primary store probe failed: %w", domain.ErrBackendUnavailable)
	}

	before := r.selector.Current()
	r.selector.RecordProbeSuccess()
	if before == ports.BackendFallback {
		r.logger.InfoContext(ctx, "primary store recovered, serving from primary")
	}
	return nil
}
