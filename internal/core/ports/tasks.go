// internal/core/ports/tasks.go
package ports

import "context"

// TaskEnqueuer hands failed stock adjustments to the background queue for
// replay. It is the durable compensation path for the reconciler's
// best-effort fan-out: the transaction record is already committed when a
// per-item adjustment fails, so the delta is queued instead of rolled back.
type TaskEnqueuer interface {
	EnqueueStockReconcile(ctx context.Context, delta ItemDelta) error
}
