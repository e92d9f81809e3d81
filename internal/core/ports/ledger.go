// internal/core/ports/ledger.go
package ports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/avashisht/boutique-be/internal/core/domain"
)

// StockDirection is the direction of a stock delta.
type StockDirection string

const (
	StockIncrease StockDirection = "increase"
	StockDecrease StockDirection = "decrease"
)

// Opposite returns the reversing direction: the effect of a purchase item is
// undone by a decrease and the effect of a sale item by an increase.
func (d StockDirection) Opposite() StockDirection {
	if d == StockIncrease {
		return StockDecrease
	}
	return StockIncrease
}

// ItemDelta is one stock adjustment to apply to the ledger.
type ItemDelta struct {
	ItemName  string          `json:"item_name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Category  string          `json:"category,omitempty"`
	Direction StockDirection  `json:"direction"`
}

// Ledger is the inventory stock bookkeeping port. Both the persistent
// backend and the in-memory fallback implement it with identical semantics;
// their test suites assert the same delta and rejection behavior.
type Ledger interface {
	// ApplyDelta mutates a single item's stock. Increase creates the item
	// on first sight (stock 0, defaults applied) and records the supplied
	// unit price as the latest purchase price before adding the quantity.
	// Decrease fails with InsufficientStockError when the item is missing
	// or the quantity exceeds current stock, leaving state unchanged.
	// TotalValue and LastUpdated are recomputed before persisting.
	ApplyDelta(ctx context.Context, delta ItemDelta) (*domain.InventoryItem, error)

	// GetOrCreate returns the named item, creating it with zero stock,
	// the default minimum stock level, and the supplied category (or
	// "General" when empty) if it does not exist.
	GetOrCreate(ctx context.Context, name, category string) (*domain.InventoryItem, error)

	FindByName(ctx context.Context, name string) (*domain.InventoryItem, error)
	List(ctx context.Context, params LedgerListParams) (*LedgerListResult, error)
	Save(ctx context.Context, item *domain.InventoryItem) error
	Update(ctx context.Context, item *domain.InventoryItem) error
	Delete(ctx context.Context, name string) error
	Count(ctx context.Context) (int64, error)
}

// LedgerListParams holds filters for listing inventory.
type LedgerListParams struct {
	Search    string
	Category  string
	LowStock  bool
	SortBy    string // name, stock, value, updated
	SortOrder string // asc, desc
	Page      int
	PageSize  int
}

// LedgerListResult holds the result of listing inventory.
type LedgerListResult struct {
	Items      []*domain.InventoryItem `json:"items"`
	Page       int                     `json:"page"`
	PageSize   int                     `json:"page_size"`
	TotalCount int64                   `json:"total_count"`
	TotalPages int                     `json:"total_pages"`
}

// TransactionFilter narrows FindMany results.
type TransactionFilter struct {
	Type     domain.TransactionType
	DateFrom *time.Time
	DateTo   *time.Time
	Search   string // matches transaction id, notes, item and party names
}

// TransactionListParams holds filter, sort and pagination for FindMany.
// A PageSize <= 0 disables pagination and returns every match; the
// analytics aggregations rely on that.
type TransactionListParams struct {
	Filter    TransactionFilter
	SortBy    string // date, amount, id
	SortOrder string // asc, desc
	Page      int
	PageSize  int
}

// TransactionListResult holds the result of a FindMany call.
type TransactionListResult struct {
	Transactions []*domain.Transaction `json:"transactions"`
	Page         int                   `json:"page"`
	PageSize     int                   `json:"page_size"`
	TotalCount   int64                 `json:"total_count"`
	TotalPages   int                   `json:"total_pages"`
}
