// internal/adapters/memstore/transactions.go
package memstore

import (
	"context"
	"sort"
	"strings"

	"github.com/avashisht/boutique-be/internal/core/domain"
	"github.com/avashisht/boutique-be/internal/core/ports"
)

// TransactionStore implements ports.TransactionRepository over the in-memory
// store.
type TransactionStore struct {
	store *Store
}

var _ ports.TransactionRepository = (*TransactionStore)(nil)

const maxIDAttempts = 3

// Create validates the record, assigns a generated ID, and stores it.
// A collision with an existing ID triggers regeneration, bounded to
// maxIDAttempts.
func (t *TransactionStore) Create(ctx context.Context, tx *domain.Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}
	tx.RecomputeTotals()
	tx.PrepareForStorage()

	s := t.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		if attempt > 0 {
			tx.TransactionID = domain.GenerateTransactionID(tx.Type, tx.Date)
		}
		if _, ok := s.transactions[tx.TransactionID]; !ok {
			s.transactions[tx.TransactionID] = tx.Clone()
			return nil
		}
	}
	return domain.ErrDuplicateKey
}

// Update merges the patch over the stored record, re-validates, recomputes
// totals, and stores the result.
func (t *TransactionStore) Update(ctx context.Context, id string, patch ports.TransactionPatch) (*domain.Transaction, error) {
	s := t.store
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.transactions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}

	tx := stored.Clone()
	patch.Apply(tx)
	if err := tx.Validate(); err != nil {
		return nil, err
	}
	tx.RecomputeTotals()
	tx.PrepareForStorage()

	s.transactions[id] = tx.Clone()
	return tx, nil
}

func (t *TransactionStore) Delete(ctx context.Context, id string) error {
	s := t.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.transactions[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.transactions, id)
	return nil
}

func (t *TransactionStore) FindByID(ctx context.Context, id string) (*domain.Transaction, error) {
	s := t.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	tx, ok := s.transactions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return tx.Clone(), nil
}

func (t *TransactionStore) FindMany(ctx context.Context, params ports.TransactionListParams) (*ports.TransactionListResult, error) {
	s := t.store
	s.mu.RLock()

	var matches []*domain.Transaction
	for _, tx := range s.transactions {
		if matchesFilter(tx, params.Filter) {
			matches = append(matches, tx.Clone())
		}
	}
	s.mu.RUnlock()

	sortTransactions(matches, params.SortBy, params.SortOrder)

	totalCount := int64(len(matches))
	page := params.Page
	if page < 1 {
		page = 1
	}
	pageSize := params.PageSize
	if pageSize > 0 {
		matches = paginate(matches, page, pageSize)
	}

	result := &ports.TransactionListResult{
		Transactions: matches,
		TotalCount:   totalCount,
		Page:         page,
		PageSize:     pageSize,
	}
	if pageSize > 0 {
		result.TotalPages = int((totalCount + int64(pageSize) - 1) / int64(pageSize))
	} else if totalCount > 0 {
		result.TotalPages = 1
	}
	return result, nil
}

func matchesFilter(tx *domain.Transaction, f ports.TransactionFilter) bool {
	if f.Type != "" && tx.Type != f.Type {
		return false
	}
	if f.DateFrom != nil && tx.Date.Before(*f.DateFrom) {
		return false
	}
	if f.DateTo != nil && tx.Date.After(*f.DateTo) {
		return false
	}
	if f.Search != "" {
		search := strings.ToLower(f.Search)
		if !transactionMatches(tx, search) {
			return false
		}
	}
	return true
}

func transactionMatches(tx *domain.Transaction, search string) bool {
	if strings.Contains(strings.ToLower(tx.TransactionID), search) {
		return true
	}
	if strings.Contains(strings.ToLower(tx.Notes), search) {
		return true
	}
	for _, item := range tx.Items {
		if strings.Contains(strings.ToLower(item.ItemName), search) {
			return true
		}
	}
	if tx.Supplier != nil && strings.Contains(strings.ToLower(tx.Supplier.Name), search) {
		return true
	}
	if tx.Customer != nil && strings.Contains(strings.ToLower(tx.Customer.Name), search) {
		return true
	}
	return false
}

func sortTransactions(txs []*domain.Transaction, sortBy, sortOrder string) {
	desc := sortOrder != "asc"
	sort.Slice(txs, func(i, j int) bool {
		var less bool
		switch sortBy {
		case "amount":
			less = txs[i].TotalAmount.LessThan(txs[j].TotalAmount)
		case "id":
			less = txs[i].TransactionID < txs[j].TransactionID
		default:
			if txs[i].Date.Equal(txs[j].Date) {
				// stable tiebreak matching the persistent store's ordering
				return txs[i].TransactionID < txs[j].TransactionID
			}
			less = txs[i].Date.Before(txs[j].Date)
		}
		if desc {
			return !less
		}
		return less
	})
}
