// internal/core/services/inventory.go
package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/avashisht/boutique-be/internal/core/domain"
	"github.com/avashisht/boutique-be/internal/core/ports"
)

// InventoryPatch carries the fields present in a partial inventory update.
// Nil pointers mean "leave unchanged".
type InventoryPatch struct {
	Category      *string          `json:"category,omitempty"`
	CurrentStock  *int             `json:"current_stock,omitempty"`
	MinStockLevel *int             `json:"min_stock_level,omitempty"`
	UnitPrice     *decimal.Decimal `json:"unit_price,omitempty"`
}

// InventoryService handles direct inventory edits. These bypass the
// reconciler on purpose: a manual stock correction is an operator statement
// about reality, not a transaction event, and total value is recomputed from
// the corrected numbers.
type InventoryService struct {
	router ports.StoreRouter
	logger *slog.Logger
}

// NewInventoryService creates a new inventory service
func NewInventoryService(router ports.StoreRouter, logger *slog.Logger) *InventoryService {
	return &InventoryService{
		router: router,
		logger: logger.With(slog.String("service", "inventory")),
	}
}

// Get retrieves a single inventory item by name.
func (s *InventoryService) Get(ctx context.Context, name string) (*domain.InventoryItem, ports.Backend, error) {
	return runWithFailover(ctx, s.router, s.logger, func(set ports.StoreSet) (*domain.InventoryItem, error) {
		return set.Ledger.FindByName(ctx, name)
	})
}

// List retrieves inventory items with filtering and pagination.
func (s *InventoryService) List(ctx context.Context, params ports.LedgerListParams) (*ports.LedgerListResult, ports.Backend, error) {
	return runWithFailover(ctx, s.router, s.logger, func(set ports.StoreSet) (*ports.LedgerListResult, error) {
		return set.Ledger.List(ctx, params)
	})
}

// Create validates and stores a new inventory item.
func (s *InventoryService) Create(ctx context.Context, item *domain.InventoryItem) (*domain.InventoryItem, ports.Backend, error) {
	if err := item.Validate(); err != nil {
		return nil, "", err
	}
	item.PrepareForStorage()

	_, backend, err := runWithFailover(ctx, s.router, s.logger, func(set ports.StoreSet) (struct{}, error) {
		return struct{}{}, set.Ledger.Save(ctx, item)
	})
	if err != nil {
		return nil, backend, err
	}

	s.logger.InfoContext(ctx, "inventory item created",
		slog.String("item_name", item.ItemName),
		slog.String("backend", string(backend)))
	return item, backend, nil
}

// Update merges the patch over the stored item, recomputes total value, and
// persists. The item name is the identity and cannot change.
func (s *InventoryService) Update(ctx context.Context, name string, patch InventoryPatch) (*domain.InventoryItem, ports.Backend, error) {
	return runWithFailover(ctx, s.router, s.logger, func(set ports.StoreSet) (*domain.InventoryItem, error) {
		item, err := set.Ledger.FindByName(ctx, name)
		if err != nil {
			return nil, err
		}

		if patch.Category != nil {
			item.Category = *patch.Category
		}
		if patch.CurrentStock != nil {
			item.CurrentStock = *patch.CurrentStock
		}
		if patch.MinStockLevel != nil {
			item.MinStockLevel = *patch.MinStockLevel
		}
		if patch.UnitPrice != nil {
			item.UnitPrice = *patch.UnitPrice
		}

		if err := item.Validate(); err != nil {
			return nil, err
		}
		item.RecomputeTotalValue()
		item.LastUpdated = time.Now()

		if err := set.Ledger.Update(ctx, item); err != nil {
			return nil, err
		}

		s.logger.InfoContext(ctx, "inventory item updated",
			slog.String("item_name", name),
			slog.String("backend", string(set.Backend)))
		return item, nil
	})
}

// Delete removes an inventory item from the ledger. Existing transaction
// records that reference the item are untouched; replaying them would
// recreate it.
func (s *InventoryService) Delete(ctx context.Context, name string) (ports.Backend, error) {
	_, backend, err := runWithFailover(ctx, s.router, s.logger, func(set ports.StoreSet) (struct{}, error) {
		return struct{}{}, set.Ledger.Delete(ctx, name)
	})
	if err == nil {
		s.logger.InfoContext(ctx, "inventory item deleted",
			slog.String("item_name", name),
			slog.String("backend", string(backend)))
	}
	return backend, err
}
