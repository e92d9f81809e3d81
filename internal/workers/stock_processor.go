// internal/workers/stock_processor.go

// Package workers holds the asynq task definitions and processors. The
// stock reconcile queue is the durable compensation path for per-item
// adjustments that failed during a request.
package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/avashisht/boutique-be/internal/core/domain"
	"github.com/avashisht/boutique-be/internal/core/ports"
)

// TypeStockReconcile is the task type for replaying a failed stock delta.
const TypeStockReconcile = "stock:reconcile"

// StockReconcilePayload is the serialized task body.
type StockReconcilePayload struct {
	Delta      ports.ItemDelta `json:"delta"`
	EnqueuedAt time.Time       `json:"enqueued_at"`
}

// NewStockReconcileTask builds a stock reconcile task for one delta.
func NewStockReconcileTask(delta ports.ItemDelta) (*asynq.Task, error) {
	payload, err := json.Marshal(StockReconcilePayload{
		Delta:      delta,
		EnqueuedAt: time.Now(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal stock reconcile payload: %w", err)
	}
	return asynq.NewTask(TypeStockReconcile, payload,
		asynq.MaxRetry(10),
		asynq.Queue("reconcile"),
	), nil
}

// StockProcessor replays failed stock deltas against the primary ledger.
type StockProcessor struct {
	ledger ports.Ledger
	logger *slog.Logger
}

// NewStockProcessor creates a new stock reconcile processor. ledger must be
// the primary ledger: replaying into the fallback would be lost on restart.
func NewStockProcessor(ledger ports.Ledger, logger *slog.Logger) *StockProcessor {
	return &StockProcessor{
		ledger: ledger,
		logger: logger.With(slog.String("processor", "stock_reconcile")),
	}
}

// ProcessStockReconcile applies one queued delta. Insufficient stock is
// returned as a retryable error: a later purchase may add the stock the
// replay needs. Validation failures are terminal.
func (p *StockProcessor) ProcessStockReconcile(ctx context.Context, t *asynq.Task) error {
	var payload StockReconcilePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}

	item, err := p.ledger.ApplyDelta(ctx, payload.Delta)
	if err != nil {
		if domain.IsValidation(err) {
			p.logger.ErrorContext(ctx, "dropping invalid stock reconcile task",
				slog.String("item_name", payload.Delta.ItemName),
				slog.String("error", err.Error()))
			return fmt.Errorf("invalid delta: %v: %w", err, asynq.SkipRetry)
		}
		p.logger.WarnContext(ctx, "stock reconcile replay failed, will retry",
			slog.String("item_name", payload.Delta.ItemName),
			slog.String("direction", string(payload.Delta.Direction)),
			slog.Int("quantity", payload.Delta.Quantity),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to replay stock delta: %w", err)
	}

	p.logger.InfoContext(ctx, "stock reconcile replayed",
		slog.String("item_name", item.ItemName),
		slog.String("direction", string(payload.Delta.Direction)),
		slog.Int("quantity", payload.Delta.Quantity),
		slog.Int("current_stock", item.CurrentStock),
		slog.Duration("queued_for", time.Since(payload.EnqueuedAt)))
	return nil
}
