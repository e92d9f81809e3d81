// internal/core/domain/inventory.go
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Defaults applied when an item is created implicitly by the first purchase
// transaction that references it.
const (
	DefaultCategory      = "General"
	DefaultMinStockLevel = 5
)

// InventoryItem is a single stock record. The item name is the identity:
// a case-sensitive exact key, unique across the ledger.
type InventoryItem struct {
	ItemName      string          `json:"item_name"`
	Category      string          `json:"category"`
	CurrentStock  int             `json:"current_stock"`
	MinStockLevel int             `json:"min_stock_level"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	TotalValue    decimal.Decimal `json:"total_value"`
	LastUpdated   time.Time       `json:"last_updated"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Validate performs domain validation on the inventory item.
func (i *InventoryItem) Validate() error {
	if i.ItemName == "" {
		return NewValidationError("item_name", "is required")
	}
	if i.CurrentStock < 0 {
		return NewValidationError("current_stock", "cannot be negative")
	}
	if i.MinStockLevel < 0 {
		return NewValidationError("min_stock_level", "cannot be negative")
	}
	if i.UnitPrice.IsNegative() {
		return NewValidationError("unit_price", "cannot be negative")
	}
	return nil
}

// RecomputeTotalValue derives total_value from current stock and unit price.
// total_value is never set independently; every mutation of stock or price
// must pass through here before persisting.
func (i *InventoryItem) RecomputeTotalValue() {
	i.TotalValue = MulQuantity(i.UnitPrice, i.CurrentStock)
}

// IsLowStock reports whether the item is at or below its minimum stock level.
func (i *InventoryItem) IsLowStock() bool {
	return i.CurrentStock <= i.MinStockLevel
}

// PrepareForStorage applies defaults, recomputes derived fields and stamps
// timestamps before the item is written.
func (i *InventoryItem) PrepareForStorage() {
	if i.Category == "" {
		i.Category = DefaultCategory
	}
	if i.MinStockLevel == 0 {
		i.MinStockLevel = DefaultMinStockLevel
	}

	i.RecomputeTotalValue()

	now := time.Now()
	if i.CreatedAt.IsZero() {
		i.CreatedAt = now
	}
	i.LastUpdated = now
}
