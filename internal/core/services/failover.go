// internal/core/services/failover.go
package services

import (
	"context"
	"log/slog"

	"github.com/avashisht/boutique-be/internal/core/domain"
	"github.com/avashisht/boutique-be/internal/core/ports"
)

// runWithFailover executes op against the currently selected store set. If
// the primary set fails with BackendUnavailable the selector is flipped and
// the op is retried exactly once against the fallback set. Any other error,
// and any error from the fallback itself, propagates unchanged.
func runWithFailover[T any](ctx context.Context, router ports.StoreRouter, logger *slog.Logger,
	op func(ports.StoreSet) (T, error)) (T, ports.Backend, error) {

	set := router.Select()
	result, err := op(set)
	if err == nil || set.Backend != ports.BackendPrimary || !domain.IsBackendUnavailable(err) {
		return result, set.Backend, err
	}

	router.Selector().RecordFailure()
	logger.WarnContext(ctx, "primary store unavailable, retrying against fallback",
		slog.String("error", err.Error()))

	set = router.Fallback()
	result, err = op(set)
	return result, set.Backend, err
}
