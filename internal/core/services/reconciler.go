// internal/core/services/reconciler.go
package services

import (
	"context"
	"log/slog"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/avashisht/boutique-be/internal/core/domain"
	"github.com/avashisht/boutique-be/internal/core/ports"
)

// AdjustmentFailure records one stock delta that could not be applied.
type AdjustmentFailure struct {
	Delta  ports.ItemDelta `json:"delta"`
	Reason string          `json:"reason"`
	Err    error           `json:"-"`
}

// AdjustmentResult is the outcome of one reconciler pass. Per-item failures
// are collected, not propagated: the caller decides whether partial failure
// blocks the transaction record write.
type AdjustmentResult struct {
	Succeeded []ports.ItemDelta   `json:"succeeded"`
	Failed    []AdjustmentFailure `json:"failed"`
}

// AllOK reports whether every delta in the pass was applied.
func (r AdjustmentResult) AllOK() bool {
	return len(r.Failed) == 0
}

// Merge combines the outcomes of two passes (reversal then forward).
func (r AdjustmentResult) Merge(other AdjustmentResult) AdjustmentResult {
	return AdjustmentResult{
		Succeeded: append(r.Succeeded, other.Succeeded...),
		Failed:    append(r.Failed, other.Failed...),
	}
}

// Reconciler translates transaction lifecycle events into stock ledger
// mutations. It is the only component permitted to mutate item stock as a
// side effect of transactions; direct inventory edits bypass it.
type Reconciler struct {
	logger *slog.Logger
}

// NewReconciler creates a new reconciler.
func NewReconciler(logger *slog.Logger) *Reconciler {
	return &Reconciler{
		logger: logger.With(slog.String("service", "reconciler")),
	}
}

// forwardDirection maps a transaction type to its stock effect: purchases
// increase stock, sales decrease it.
func forwardDirection(t domain.TransactionType) ports.StockDirection {
	if t == domain.TypePurchase {
		return ports.StockIncrease
	}
	return ports.StockDecrease
}

// ForwardDeltas builds the forward-application deltas for a transaction.
func ForwardDeltas(tx *domain.Transaction) []ports.ItemDelta {
	dir := forwardDirection(tx.Type)
	deltas := make([]ports.ItemDelta, len(tx.Items))
	for i, item := range tx.Items {
		deltas[i] = ports.ItemDelta{
			ItemName:  item.ItemName,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Category:  item.Category,
			Direction: dir,
		}
	}
	return deltas
}

// ReversalDeltas builds the deltas that undo a transaction's stock effect.
// A reversal moves quantity only: the deltas carry no unit price, so undoing
// a sale restores stock without overwriting the item's latest purchase price.
func ReversalDeltas(tx *domain.Transaction) []ports.ItemDelta {
	deltas := ForwardDeltas(tx)
	for i := range deltas {
		deltas[i].Direction = deltas[i].Direction.Opposite()
		deltas[i].UnitPrice = decimal.Zero
	}
	return deltas
}

// Apply performs the forward pass: each line item's quantity is applied to
// the ledger in the direction implied by the transaction type.
func (r *Reconciler) Apply(ctx context.Context, ledger ports.Ledger, tx *domain.Transaction) AdjustmentResult {
	return r.run(ctx, ledger, tx.TransactionID, "forward", ForwardDeltas(tx))
}

// Reverse performs the reversal pass, undoing a previously-applied
// transaction. Used before the forward pass on update and before record
// removal on delete.
func (r *Reconciler) Reverse(ctx context.Context, ledger ports.Ledger, tx *domain.Transaction) AdjustmentResult {
	return r.run(ctx, ledger, tx.TransactionID, "reversal", ReversalDeltas(tx))
}

// run fans the deltas out over the ledger and waits for every outcome.
// There is no early termination: a failure on one item never blocks the
// attempt on the others, and each failure is logged and collected rather
// than propagated. Stock drift is a recoverable reporting issue; the
// transaction record store remains the source of truth for what happened.
func (r *Reconciler) run(ctx context.Context, ledger ports.Ledger, txID, pass string, deltas []ports.ItemDelta) AdjustmentResult {
	errs := make([]error, len(deltas))

	var wg sync.WaitGroup
	for i := range deltas {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = ledger.ApplyDelta(ctx, deltas[i])
		}(i)
	}
	wg.Wait()

	var result AdjustmentResult
	for i, err := range errs {
		if err == nil {
			result.Succeeded = append(result.Succeeded, deltas[i])
			continue
		}
		result.Failed = append(result.Failed, AdjustmentFailure{
			Delta:  deltas[i],
			Reason: err.Error(),
			Err:    err,
		})
		r.logger.WarnContext(ctx, "stock adjustment failed",
			slog.String("transaction_id", txID),
			slog.String("pass", pass),
			slog.String("item_name", deltas[i].ItemName),
			slog.String("direction", string(deltas[i].Direction)),
			slog.Int("quantity", deltas[i].Quantity),
			slog.String("error", err.Error()))
	}

	r.logger.DebugContext(ctx, "reconciler pass complete",
		slog.String("transaction_id", txID),
		slog.String("pass", pass),
		slog.Int("succeeded", len(result.Succeeded)),
		slog.Int("failed", len(result.Failed)))

	return result
}
