// internal/core/services/transactions.go
package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/avashisht/boutique-be/internal/core/domain"
	"github.com/avashisht/boutique-be/internal/core/ports"
)

// TransactionResult is the outcome of a transaction lifecycle operation.
// StockWarnings carries the per-item adjustments that could not be applied;
// the record write itself already succeeded when warnings are present.
type TransactionResult struct {
	Transaction   *domain.Transaction `json:"transaction"`
	Backend       ports.Backend       `json:"backend"`
	StockWarnings []AdjustmentFailure `json:"stock_warnings,omitempty"`
}

// TransactionService owns the transaction lifecycle: record writes through
// the store router plus the reconciler passes that keep the stock ledger in
// step with them.
type TransactionService struct {
	router     ports.StoreRouter
	reconciler *Reconciler
	enqueuer   ports.TaskEnqueuer
	logger     *slog.Logger
}

// NewTransactionService creates a new transaction service. enqueuer may be
// nil when no background queue is configured; failed adjustments are then
// only logged and surfaced as warnings.
func NewTransactionService(router ports.StoreRouter, reconciler *Reconciler, enqueuer ports.TaskEnqueuer, logger *slog.Logger) *TransactionService {
	return &TransactionService{
		router:     router,
		reconciler: reconciler,
		enqueuer:   enqueuer,
		logger:     logger.With(slog.String("service", "transactions")),
	}
}

// Create persists a new transaction record and applies its stock effect.
// The record write is the commit point: once it succeeds, per-item stock
// failures downgrade to warnings and are queued for background replay.
func (s *TransactionService) Create(ctx context.Context, tx *domain.Transaction) (*TransactionResult, error) {
	set, backend, err := s.writeRecord(ctx, func(set ports.StoreSet) error {
		return set.Transactions.Create(ctx, tx)
	})
	if err != nil {
		return nil, err
	}

	adj := s.reconciler.Apply(ctx, set.Ledger, tx)
	s.enqueueFailures(ctx, adj.Failed)

	s.logger.InfoContext(ctx, "transaction created",
		slog.String("transaction_id", tx.TransactionID),
		slog.String("type", string(tx.Type)),
		slog.String("backend", string(backend)),
		slog.Int("stock_warnings", len(adj.Failed)))

	return &TransactionResult{
		Transaction:   tx,
		Backend:       backend,
		StockWarnings: adj.Failed,
	}, nil
}

// Get retrieves one transaction record.
func (s *TransactionService) Get(ctx context.Context, id string) (*domain.Transaction, ports.Backend, error) {
	return runWithFailover(ctx, s.router, s.logger, func(set ports.StoreSet) (*domain.Transaction, error) {
		return set.Transactions.FindByID(ctx, id)
	})
}

// List retrieves transaction records with filtering and pagination.
func (s *TransactionService) List(ctx context.Context, params ports.TransactionListParams) (*ports.TransactionListResult, ports.Backend, error) {
	return runWithFailover(ctx, s.router, s.logger, func(set ports.StoreSet) (*ports.TransactionListResult, error) {
		return set.Transactions.FindMany(ctx, params)
	})
}

// Update applies a partial update to a transaction record and reconciles the
// stock ledger: the old record's effect is reversed, the record is rewritten,
// and the new record's effect is applied. Net result for an unchanged item is
// the delta between old and new quantities.
func (s *TransactionService) Update(ctx context.Context, id string, patch ports.TransactionPatch) (*TransactionResult, error) {
	set := s.selectSet()

	existing, err := set.Transactions.FindByID(ctx, id)
	if err != nil && set.Backend == ports.BackendPrimary && domain.IsBackendUnavailable(err) {
		s.router.Selector().RecordFailure()
		set = s.router.Fallback()
		existing, err = set.Transactions.FindByID(ctx, id)
	}
	if err != nil {
		return nil, err
	}

	reversal := s.reconciler.Reverse(ctx, set.Ledger, existing)

	updated, err := set.Transactions.Update(ctx, id, patch)
	if err != nil {
		// The reversal already landed; restore the old effect before
		// reporting the failure.
		restore := s.reconciler.Apply(ctx, set.Ledger, existing)
		s.enqueueFailures(ctx, restore.Failed)
		return nil, err
	}

	forward := s.reconciler.Apply(ctx, set.Ledger, updated)
	adj := reversal.Merge(forward)
	s.enqueueFailures(ctx, adj.Failed)

	s.logger.InfoContext(ctx, "transaction updated",
		slog.String("transaction_id", id),
		slog.String("backend", string(set.Backend)),
		slog.Int("stock_warnings", len(adj.Failed)))

	return &TransactionResult{
		Transaction:   updated,
		Backend:       set.Backend,
		StockWarnings: adj.Failed,
	}, nil
}

// Delete reverses a transaction's stock effect and removes its record.
func (s *TransactionService) Delete(ctx context.Context, id string) (*TransactionResult, error) {
	set := s.selectSet()

	existing, err := set.Transactions.FindByID(ctx, id)
	if err != nil && set.Backend == ports.BackendPrimary && domain.IsBackendUnavailable(err) {
		s.router.Selector().RecordFailure()
		set = s.router.Fallback()
		existing, err = set.Transactions.FindByID(ctx, id)
	}
	if err != nil {
		return nil, err
	}

	reversal := s.reconciler.Reverse(ctx, set.Ledger, existing)
	s.enqueueFailures(ctx, reversal.Failed)

	if err := set.Transactions.Delete(ctx, id); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "transaction deleted",
		slog.String("transaction_id", id),
		slog.String("backend", string(set.Backend)),
		slog.Int("stock_warnings", len(reversal.Failed)))

	return &TransactionResult{
		Transaction:   existing,
		Backend:       set.Backend,
		StockWarnings: reversal.Failed,
	}, nil
}

// selectSet picks the store set a mutating request will run against. The
// whole operation stays on that set so reconciler passes and record writes
// cannot straddle backends.
func (s *TransactionService) selectSet() ports.StoreSet {
	return s.router.Select()
}

// writeRecord runs a record write with the single failover retry, returning
// the set the write actually landed on.
func (s *TransactionService) writeRecord(ctx context.Context, op func(ports.StoreSet) error) (ports.StoreSet, ports.Backend, error) {
	set := s.selectSet()
	err := op(set)
	if err == nil || set.Backend != ports.BackendPrimary || !domain.IsBackendUnavailable(err) {
		return set, set.Backend, err
	}

	s.router.Selector().RecordFailure()
	s.logger.WarnContext(ctx, "primary store unavailable, retrying against fallback",
		slog.String("error", err.Error()))

	set = s.router.Fallback()
	err = op(set)
	return set, set.Backend, err
}

// enqueueFailures hands failed stock adjustments to the background queue.
// Insufficient-stock failures are queued too: stock added by later purchases
// can make the replay succeed.
func (s *TransactionService) enqueueFailures(ctx context.Context, failures []AdjustmentFailure) {
	if s.enqueuer == nil || len(failures) == 0 {
		return
	}
	for _, f := range failures {
		if domain.IsValidation(f.Err) {
			continue
		}
		if err := s.enqueuer.EnqueueStockReconcile(ctx, f.Delta); err != nil {
			s.logger.ErrorContext(ctx, "failed to enqueue stock reconcile task",
				slog.String("item_name", f.Delta.ItemName),
				slog.String("error", fmt.Sprintf("%v", err)))
		}
	}
}
