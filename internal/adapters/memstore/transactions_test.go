// internal/adapters/memstore/transactions_test.go
package memstore_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avashisht/boutique-be/internal/adapters/memstore"
	"github.com/avashisht/boutique-be/internal/core/domain"
	"github.com/avashisht/boutique-be/internal/core/ports"
	"github.com/avashisht/boutique-be/test/helpers"
)

func newTransactionStore(t *testing.T) *memstore.TransactionStore {
	t.Helper()
	return memstore.NewStore(helpers.TestLogger().Logger).Transactions()
}

func TestTransactionStore_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("assigns_id_and_recomputes_totals", func(t *testing.T) {
		store := newTransactionStore(t)
		tx := helpers.CreateTestPurchase(func(tx *domain.Transaction) {
			tx.TransactionID = ""
			tx.TotalAmount = decimal.Zero
		})

		require.NoError(t, store.Create(ctx, tx))
		assert.Regexp(t, domain.TransactionIDPattern, tx.TransactionID)
		assert.True(t, tx.TotalAmount.Equal(decimal.NewFromInt(1000)),
			"expected 10 x 100.00, got %s", tx.TotalAmount)
		assert.False(t, tx.CreatedAt.IsZero())

		stored, err := store.FindByID(ctx, tx.TransactionID)
		require.NoError(t, err)
		assert.Equal(t, tx.TransactionID, stored.TransactionID)
	})

	t.Run("rejects_invalid_transaction", func(t *testing.T) {
		store := newTransactionStore(t)
		tx := helpers.CreateTestPurchase(func(tx *domain.Transaction) {
			tx.Items = nil
		})

		err := store.Create(ctx, tx)
		require.Error(t, err)
		assert.True(t, domain.IsValidation(err))
	})

	t.Run("purchase_without_supplier_is_rejected", func(t *testing.T) {
		store := newTransactionStore(t)
		tx := helpers.CreateTestPurchase(func(tx *domain.Transaction) {
			tx.Supplier = nil
		})

		err := store.Create(ctx, tx)
		require.Error(t, err)
		assert.True(t, domain.IsValidation(err))
	})

	t.Run("sale_drops_supplier_on_storage", func(t *testing.T) {
		store := newTransactionStore(t)
		tx := helpers.CreateTestSale(func(tx *domain.Transaction) {
			tx.Supplier = &domain.Party{Name: "Should Be Dropped"}
		})

		require.NoError(t, store.Create(ctx, tx))
		stored, err := store.FindByID(ctx, tx.TransactionID)
		require.NoError(t, err)
		assert.Nil(t, stored.Supplier)
		require.NotNil(t, stored.Customer)
	})
}

func TestTransactionStore_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("merges_patch_and_recomputes", func(t *testing.T) {
		store := newTransactionStore(t)
		tx := helpers.CreateTestPurchase()
		require.NoError(t, store.Create(ctx, tx))

		notes := "corrected quantity"
		items := []domain.TransactionItem{{
			ItemName:  "Kurti-A",
			Quantity:  6,
			UnitPrice: decimal.NewFromInt(100),
		}}
		updated, err := store.Update(ctx, tx.TransactionID, ports.TransactionPatch{
			Notes: &notes,
			Items: items,
		})
		require.NoError(t, err)
		assert.Equal(t, notes, updated.Notes)
		assert.True(t, updated.TotalAmount.Equal(decimal.NewFromInt(600)))
		require.NotNil(t, updated.Supplier, "unpatched fields survive")
	})

	t.Run("nil_items_leaves_items_unchanged", func(t *testing.T) {
		store := newTransactionStore(t)
		tx := helpers.CreateTestPurchase()
		require.NoError(t, store.Create(ctx, tx))

		notes := "note only"
		updated, err := store.Update(ctx, tx.TransactionID, ports.TransactionPatch{Notes: &notes})
		require.NoError(t, err)
		assert.Len(t, updated.Items, len(tx.Items))
	})

	t.Run("invalid_patch_is_rejected", func(t *testing.T) {
		store := newTransactionStore(t)
		tx := helpers.CreateTestPurchase()
		require.NoError(t, store.Create(ctx, tx))

		_, err := store.Update(ctx, tx.TransactionID, ports.TransactionPatch{
			Items: []domain.TransactionItem{{ItemName: "", Quantity: 1}},
		})
		require.Error(t, err)
		assert.True(t, domain.IsValidation(err))

		// Stored record untouched.
		stored, err := store.FindByID(ctx, tx.TransactionID)
		require.NoError(t, err)
		assert.Len(t, stored.Items, len(tx.Items))
	})

	t.Run("unknown_id", func(t *testing.T) {
		store := newTransactionStore(t)
		_, err := store.Update(ctx, "PUR-20260101-ABCDEF", ports.TransactionPatch{})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestTransactionStore_Delete(t *testing.T) {
	ctx := context.Background()
	store := newTransactionStore(t)

	tx := helpers.CreateTestSale()
	require.NoError(t, store.Create(ctx, tx))

	require.NoError(t, store.Delete(ctx, tx.TransactionID))
	_, err := store.FindByID(ctx, tx.TransactionID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.ErrorIs(t, store.Delete(ctx, tx.TransactionID), domain.ErrNotFound)
}

func TestTransactionStore_FindMany(t *testing.T) {
	ctx := context.Background()
	store := newTransactionStore(t)

	now := time.Now()
	purchases := []*domain.Transaction{
		helpers.CreateTestPurchase(func(tx *domain.Transaction) {
			tx.Date = now.AddDate(0, 0, -10)
			tx.Notes = "old restock"
		}),
		helpers.CreateTestPurchase(func(tx *domain.Transaction) {
			tx.Date = now.AddDate(0, 0, -1)
			tx.Supplier = &domain.Party{Name: "Gupta Fabrics"}
		}),
	}
	sale := helpers.CreateTestSale(func(tx *domain.Transaction) {
		tx.Date = now
	})
	for _, tx := range append(purchases, sale) {
		require.NoError(t, store.Create(ctx, tx))
	}

	t.Run("type_filter", func(t *testing.T) {
		result, err := store.FindMany(ctx, ports.TransactionListParams{
			Filter: ports.TransactionFilter{Type: domain.TypePurchase},
		})
		require.NoError(t, err)
		assert.Equal(t, int64(2), result.TotalCount)
	})

	t.Run("date_range", func(t *testing.T) {
		from := now.AddDate(0, 0, -2)
		result, err := store.FindMany(ctx, ports.TransactionListParams{
			Filter: ports.TransactionFilter{DateFrom: &from},
		})
		require.NoError(t, err)
		assert.Equal(t, int64(2), result.TotalCount)
	})

	t.Run("search_matches_party_name", func(t *testing.T) {
		result, err := store.FindMany(ctx, ports.TransactionListParams{
			Filter: ports.TransactionFilter{Search: "gupta"},
		})
		require.NoError(t, err)
		require.Equal(t, int64(1), result.TotalCount)
		assert.Equal(t, "Gupta Fabrics", result.Transactions[0].Supplier.Name)
	})

	t.Run("default_sort_is_date_desc", func(t *testing.T) {
		result, err := store.FindMany(ctx, ports.TransactionListParams{})
		require.NoError(t, err)
		require.Len(t, result.Transactions, 3)
		assert.Equal(t, domain.TypeSale, result.Transactions[0].Type)
		assert.Equal(t, "old restock", result.Transactions[2].Notes)
	})

	t.Run("pagination", func(t *testing.T) {
		result, err := store.FindMany(ctx, ports.TransactionListParams{Page: 1, PageSize: 2})
		require.NoError(t, err)
		assert.Len(t, result.Transactions, 2)
		assert.Equal(t, int64(3), result.TotalCount)
		assert.Equal(t, 2, result.TotalPages)
	})
}
