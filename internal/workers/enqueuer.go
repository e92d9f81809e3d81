// internal/workers/enqueuer.go
package workers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/avashisht/boutique-be/internal/core/ports"
)

// Enqueuer implements ports.TaskEnqueuer over an asynq client.
type Enqueuer struct {
	client *asynq.Client
	logger *slog.Logger
}

var _ ports.TaskEnqueuer = (*Enqueuer)(nil)

// NewEnqueuer creates a new task enqueuer
func NewEnqueuer(client *asynq.Client, logger *slog.Logger) *Enqueuer {
	return &Enqueuer{
		client: client,
		logger: logger.With(slog.String("component", "enqueuer")),
	}
}

// EnqueueStockReconcile queues one failed stock delta for replay.
func (e *Enqueuer) EnqueueStockReconcile(ctx context.Context, delta ports.ItemDelta) error {
	task, err := NewStockReconcileTask(delta)
	if err != nil {
		return err
	}

	info, err := e.client.EnqueueContext(ctx, task)
	if err != nil {
		return fmt.Errorf("failed to enqueue stock reconcile task: %w", err)
	}

	e.logger.InfoContext(ctx, "stock reconcile task enqueued",
		slog.String("task_id", info.ID),
		slog.String("item_name", delta.ItemName),
		slog.String("direction", string(delta.Direction)),
		slog.Int("quantity", delta.Quantity))
	return nil
}

// Close releases the underlying asynq client.
func (e *Enqueuer) Close() error {
	return e.client.Close()
}
