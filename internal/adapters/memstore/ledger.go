// internal/adapters/memstore/ledger.go
package memstore

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/avashisht/boutique-be/internal/core/domain"
	"github.com/avashisht/boutique-be/internal/core/ports"
)

// Ledger implements ports.Ledger over the in-memory store. Rejection
// semantics mirror the postgres ledger exactly: a decrease that exceeds
// available stock fails with the same insufficient-stock error and leaves
// state untouched. Fallback mode relaxes durability, never correctness.
type Ledger struct {
	store *Store
}

var _ ports.Ledger = (*Ledger)(nil)

// ApplyDelta applies a single stock movement to one item.
func (l *Ledger) ApplyDelta(ctx context.Context, delta ports.ItemDelta) (*domain.InventoryItem, error) {
	if delta.Quantity <= 0 {
		return nil, &domain.ValidationError{Field: "quantity", Reason: "must be positive"}
	}

	s := l.store
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[delta.ItemName]

	if delta.Direction == ports.StockDecrease {
		available := 0
		if ok {
			available = item.CurrentStock
		}
		if available < delta.Quantity {
			return nil, &domain.InsufficientStockError{
				ItemName:  delta.ItemName,
				Requested: delta.Quantity,
				Available: available,
			}
		}
		item.CurrentStock -= delta.Quantity
		item.RecomputeTotalValue()
		item.LastUpdated = time.Now()
		return copyItem(item), nil
	}

	if !ok {
		item = &domain.InventoryItem{
			ItemName: delta.ItemName,
			Category: delta.Category,
		}
		item.PrepareForStorage()
		s.items[delta.ItemName] = item
	}
	if delta.UnitPrice.IsPositive() {
		item.UnitPrice = delta.UnitPrice
	}
	item.CurrentStock += delta.Quantity
	item.RecomputeTotalValue()
	item.LastUpdated = time.Now()
	return copyItem(item), nil
}

// GetOrCreate returns the named item, creating a zero-stock record when absent.
func (l *Ledger) GetOrCreate(ctx context.Context, name, category string) (*domain.InventoryItem, error) {
	s := l.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if item, ok := s.items[name]; ok {
		return copyItem(item), nil
	}

	item := &domain.InventoryItem{
		ItemName: name,
		Category: category,
	}
	item.PrepareForStorage()
	s.items[name] = item
	return copyItem(item), nil
}

func (l *Ledger) FindByName(ctx context.Context, name string) (*domain.InventoryItem, error) {
	s := l.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.items[name]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return copyItem(item), nil
}

func (l *Ledger) List(ctx context.Context, params ports.LedgerListParams) (*ports.LedgerListResult, error) {
	s := l.store
	s.mu.RLock()

	var items []*domain.InventoryItem
	search := strings.ToLower(params.Search)
	for _, item := range s.items {
		if search != "" && !strings.Contains(strings.ToLower(item.ItemName), search) {
			continue
		}
		if params.Category != "" && item.Category != params.Category {
			continue
		}
		if params.LowStock && !item.IsLowStock() {
			continue
		}
		items = append(items, copyItem(item))
	}
	s.mu.RUnlock()

	sortItems(items, params.SortBy, params.SortOrder)

	totalCount := int64(len(items))
	page := params.Page
	if page < 1 {
		page = 1
	}
	pageSize := params.PageSize
	if pageSize > 0 {
		items = paginate(items, page, pageSize)
	}

	result := &ports.LedgerListResult{
		Items:      items,
		TotalCount: totalCount,
		Page:       page,
		PageSize:   pageSize,
	}
	if pageSize > 0 {
		result.TotalPages = int((totalCount + int64(pageSize) - 1) / int64(pageSize))
	} else if totalCount > 0 {
		result.TotalPages = 1
	}
	return result, nil
}

func (l *Ledger) Save(ctx context.Context, item *domain.InventoryItem) error {
	s := l.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[item.ItemName]; ok {
		return domain.ErrDuplicateKey
	}
	s.items[item.ItemName] = copyItem(item)
	return nil
}

func (l *Ledger) Update(ctx context.Context, item *domain.InventoryItem) error {
	s := l.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[item.ItemName]; !ok {
		return domain.ErrNotFound
	}
	s.items[item.ItemName] = copyItem(item)
	return nil
}

func (l *Ledger) Delete(ctx context.Context, name string) error {
	s := l.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[name]; !ok {
		return domain.ErrNotFound
	}
	delete(s.items, name)
	return nil
}

func (l *Ledger) Count(ctx context.Context) (int64, error) {
	s := l.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.items)), nil
}

func sortItems(items []*domain.InventoryItem, sortBy, sortOrder string) {
	desc := sortOrder == "desc"
	sort.Slice(items, func(i, j int) bool {
		var less bool
		switch sortBy {
		case "stock":
			less = items[i].CurrentStock < items[j].CurrentStock
		case "value":
			less = items[i].TotalValue.LessThan(items[j].TotalValue)
		case "updated":
			less = items[i].LastUpdated.Before(items[j].LastUpdated)
		default:
			less = items[i].ItemName < items[j].ItemName
		}
		if desc {
			return !less
		}
		return less
	})
}

func paginate[T any](in []T, page, pageSize int) []T {
	start := (page - 1) * pageSize
	if start >= len(in) {
		return nil
	}
	end := start + pageSize
	if end > len(in) {
		end = len(in)
	}
	return in[start:end]
}
