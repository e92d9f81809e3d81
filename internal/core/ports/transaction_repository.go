// internal/core/ports/transaction_repository.go
package ports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/avashisht/boutique-be/internal/core/domain"
)

// TransactionPatch carries the fields present in a partial update. Nil
// pointers (and a nil Items slice) mean "leave unchanged"; the repository
// merges the patch over the stored record and re-validates the result.
type TransactionPatch struct {
	Date        *time.Time               `json:"date,omitempty"`
	Items       []domain.TransactionItem `json:"items,omitempty"`
	TotalAmount *decimal.Decimal         `json:"total_amount,omitempty"`
	Notes       *string                  `json:"notes,omitempty"`
	Supplier    *domain.Party            `json:"supplier,omitempty"`
	Customer    *domain.Party            `json:"customer,omitempty"`
}

// Apply merges the patch over tx in place.
func (p TransactionPatch) Apply(tx *domain.Transaction) {
	if p.Date != nil {
		tx.Date = *p.Date
	}
	if p.Items != nil {
		tx.Items = p.Items
	}
	if p.TotalAmount != nil {
		tx.TotalAmount = *p.TotalAmount
	}
	if p.Notes != nil {
		tx.Notes = *p.Notes
	}
	if p.Supplier != nil {
		tx.Supplier = p.Supplier
	}
	if p.Customer != nil {
		tx.Customer = p.Customer
	}
}

// TransactionRepository is the persistence port for transaction records.
// Read paths have no side effects on the ledger; the reconciler alone
// translates lifecycle events into stock mutations.
type TransactionRepository interface {
	// Create assigns a generated transaction ID, validates and recomputes
	// totals, and persists. Implementations retry ID generation a bounded
	// number of times on duplicate key.
	Create(ctx context.Context, tx *domain.Transaction) error

	// Update merges the patch over the stored record, re-validates the
	// combined record, recomputes totals, and persists. Returns the
	// updated record.
	Update(ctx context.Context, id string, patch TransactionPatch) (*domain.Transaction, error)

	// Delete removes the record. The reconciler completes the reversal
	// pass before the service calls this.
	Delete(ctx context.Context, id string) error

	FindByID(ctx context.Context, id string) (*domain.Transaction, error)
	FindMany(ctx context.Context, params TransactionListParams) (*TransactionListResult, error)
}

// UserRepository is the persistence port for stored identities.
type UserRepository interface {
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	Save(ctx context.Context, user *domain.User) error
}
