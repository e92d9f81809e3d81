// internal/adapters/memstore/ledger_test.go
package memstore_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avashisht/boutique-be/internal/adapters/memstore"
	"github.com/avashisht/boutique-be/internal/core/domain"
	"github.com/avashisht/boutique-be/internal/core/ports"
	"github.com/avashisht/boutique-be/test/helpers"
)

func newLedger(t *testing.T) *memstore.Ledger {
	t.Helper()
	return memstore.NewStore(helpers.TestLogger().Logger).Ledger()
}

func TestLedger_ApplyDelta(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name          string
		seed          *domain.InventoryItem
		delta         ports.ItemDelta
		expectedError bool
		errorCheck    func(*testing.T, error)
		verify        func(*testing.T, *domain.InventoryItem)
	}{
		{
			name: "increase_creates_missing_item",
			delta: ports.ItemDelta{
				ItemName:  "Silk Saree - Red",
				Quantity:  5,
				UnitPrice: decimal.NewFromInt(2200),
				Category:  "Apparel",
				Direction: ports.StockIncrease,
			},
			verify: func(t *testing.T, item *domain.InventoryItem) {
				assert.Equal(t, 5, item.CurrentStock)
				assert.Equal(t, "Apparel", item.Category)
				assert.Equal(t, domain.DefaultMinStockLevel, item.MinStockLevel)
				assert.True(t, item.UnitPrice.Equal(decimal.NewFromInt(2200)))
				assert.True(t, item.TotalValue.Equal(decimal.NewFromInt(11000)))
			},
		},
		{
			name: "increase_updates_latest_purchase_price",
			seed: helpers.CreateTestItem(func(i *domain.InventoryItem) {
				i.CurrentStock = 10
				i.UnitPrice = decimal.NewFromInt(100)
			}),
			delta: ports.ItemDelta{
				ItemName:  "Kurti-A",
				Quantity:  4,
				UnitPrice: decimal.NewFromInt(120),
				Direction: ports.StockIncrease,
			},
			verify: func(t *testing.T, item *domain.InventoryItem) {
				assert.Equal(t, 14, item.CurrentStock)
				assert.True(t, item.UnitPrice.Equal(decimal.NewFromInt(120)))
				assert.True(t, item.TotalValue.Equal(decimal.NewFromInt(1680)))
			},
		},
		{
			name: "increase_with_zero_price_keeps_old_price",
			seed: helpers.CreateTestItem(func(i *domain.InventoryItem) {
				i.CurrentStock = 2
				i.UnitPrice = decimal.NewFromInt(100)
			}),
			delta: ports.ItemDelta{
				ItemName:  "Kurti-A",
				Quantity:  1,
				UnitPrice: decimal.Zero,
				Direction: ports.StockIncrease,
			},
			verify: func(t *testing.T, item *domain.InventoryItem) {
				assert.Equal(t, 3, item.CurrentStock)
				assert.True(t, item.UnitPrice.Equal(decimal.NewFromInt(100)))
			},
		},
		{
			name: "decrease_within_stock",
			seed: helpers.CreateTestItem(func(i *domain.InventoryItem) {
				i.CurrentStock = 10
				i.UnitPrice = decimal.NewFromInt(100)
			}),
			delta: ports.ItemDelta{
				ItemName:  "Kurti-A",
				Quantity:  4,
				Direction: ports.StockDecrease,
			},
			verify: func(t *testing.T, item *domain.InventoryItem) {
				assert.Equal(t, 6, item.CurrentStock)
				assert.True(t, item.TotalValue.Equal(decimal.NewFromInt(600)))
			},
		},
		{
			name: "decrease_exceeding_stock_is_rejected",
			seed: helpers.CreateTestItem(func(i *domain.InventoryItem) {
				i.CurrentStock = 3
			}),
			delta: ports.ItemDelta{
				ItemName:  "Kurti-A",
				Quantity:  5,
				Direction: ports.StockDecrease,
			},
			expectedError: true,
			errorCheck: func(t *testing.T, err error) {
				require.True(t, domain.IsInsufficientStock(err))
				var ise *domain.InsufficientStockError
				require.ErrorAs(t, err, &ise)
				assert.Equal(t, 5, ise.Requested)
				assert.Equal(t, 3, ise.Available)
			},
		},
		{
			name: "decrease_on_missing_item_reports_zero_available",
			delta: ports.ItemDelta{
				ItemName:  "Nonexistent",
				Quantity:  1,
				Direction: ports.StockDecrease,
			},
			expectedError: true,
			errorCheck: func(t *testing.T, err error) {
				var ise *domain.InsufficientStockError
				require.ErrorAs(t, err, &ise)
				assert.Equal(t, 0, ise.Available)
			},
		},
		{
			name: "zero_quantity_is_rejected",
			delta: ports.ItemDelta{
				ItemName:  "Kurti-A",
				Quantity:  0,
				Direction: ports.StockIncrease,
			},
			expectedError: true,
			errorCheck: func(t *testing.T, err error) {
				assert.True(t, domain.IsValidation(err))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ledger := newLedger(t)
			if tt.seed != nil {
				require.NoError(t, ledger.Save(ctx, tt.seed))
			}

			item, err := ledger.ApplyDelta(ctx, tt.delta)
			if tt.expectedError {
				require.Error(t, err)
				if tt.errorCheck != nil {
					tt.errorCheck(t, err)
				}
				return
			}
			require.NoError(t, err)
			require.NotNil(t, item)
			tt.verify(t, item)
		})
	}
}

func TestLedger_FailedDecreaseLeavesStateUnchanged(t *testing.T) {
	ctx := context.Background()
	ledger := newLedger(t)

	seed := helpers.CreateTestItem(func(i *domain.InventoryItem) {
		i.CurrentStock = 3
	})
	require.NoError(t, ledger.Save(ctx, seed))

	_, err := ledger.ApplyDelta(ctx, ports.ItemDelta{
		ItemName:  seed.ItemName,
		Quantity:  10,
		Direction: ports.StockDecrease,
	})
	require.Error(t, err)

	stored, err := ledger.FindByName(ctx, seed.ItemName)
	require.NoError(t, err)
	assert.Equal(t, 3, stored.CurrentStock)
}

func TestLedger_GetOrCreate(t *testing.T) {
	ctx := context.Background()
	ledger := newLedger(t)

	created, err := ledger.GetOrCreate(ctx, "Chiffon Dupatta", "")
	require.NoError(t, err)
	assert.Equal(t, 0, created.CurrentStock)
	assert.Equal(t, domain.DefaultCategory, created.Category)
	assert.Equal(t, domain.DefaultMinStockLevel, created.MinStockLevel)

	// Second call returns the existing record untouched.
	again, err := ledger.GetOrCreate(ctx, "Chiffon Dupatta", "Apparel")
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultCategory, again.Category)

	count, err := ledger.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestLedger_SaveUpdateDelete(t *testing.T) {
	ctx := context.Background()
	ledger := newLedger(t)

	item := helpers.CreateTestItem()
	require.NoError(t, ledger.Save(ctx, item))

	assert.ErrorIs(t, ledger.Save(ctx, item), domain.ErrDuplicateKey)

	item.CurrentStock = 42
	item.RecomputeTotalValue()
	require.NoError(t, ledger.Update(ctx, item))

	stored, err := ledger.FindByName(ctx, item.ItemName)
	require.NoError(t, err)
	assert.Equal(t, 42, stored.CurrentStock)

	require.NoError(t, ledger.Delete(ctx, item.ItemName))
	assert.ErrorIs(t, ledger.Delete(ctx, item.ItemName), domain.ErrNotFound)

	_, err = ledger.FindByName(ctx, item.ItemName)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = ledger.Update(ctx, item)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLedger_List(t *testing.T) {
	ctx := context.Background()
	ledger := newLedger(t)

	seeds := []*domain.InventoryItem{
		helpers.CreateTestItem(func(i *domain.InventoryItem) {
			i.ItemName = "Cotton Kurti"
			i.Category = "Apparel"
			i.CurrentStock = 20
		}),
		helpers.CreateTestItem(func(i *domain.InventoryItem) {
			i.ItemName = "Jhumka Earrings"
			i.Category = "Jewelry"
			i.CurrentStock = 2
			i.MinStockLevel = 5
		}),
		helpers.CreateTestItem(func(i *domain.InventoryItem) {
			i.ItemName = "Silk Saree"
			i.Category = "Apparel"
			i.CurrentStock = 8
		}),
	}
	for _, s := range seeds {
		require.NoError(t, ledger.Save(ctx, s))
	}

	t.Run("search_is_case_insensitive", func(t *testing.T) {
		result, err := ledger.List(ctx, ports.LedgerListParams{Search: "kurti"})
		require.NoError(t, err)
		require.Len(t, result.Items, 1)
		assert.Equal(t, "Cotton Kurti", result.Items[0].ItemName)
	})

	t.Run("category_filter", func(t *testing.T) {
		result, err := ledger.List(ctx, ports.LedgerListParams{Category: "Apparel"})
		require.NoError(t, err)
		assert.Len(t, result.Items, 2)
	})

	t.Run("low_stock_filter", func(t *testing.T) {
		result, err := ledger.List(ctx, ports.LedgerListParams{LowStock: true})
		require.NoError(t, err)
		require.Len(t, result.Items, 1)
		assert.Equal(t, "Jhumka Earrings", result.Items[0].ItemName)
	})

	t.Run("sort_by_stock_desc", func(t *testing.T) {
		result, err := ledger.List(ctx, ports.LedgerListParams{SortBy: "stock", SortOrder: "desc"})
		require.NoError(t, err)
		require.Len(t, result.Items, 3)
		assert.Equal(t, "Cotton Kurti", result.Items[0].ItemName)
		assert.Equal(t, "Jhumka Earrings", result.Items[2].ItemName)
	})

	t.Run("pagination", func(t *testing.T) {
		result, err := ledger.List(ctx, ports.LedgerListParams{Page: 2, PageSize: 2})
		require.NoError(t, err)
		assert.Len(t, result.Items, 1)
		assert.Equal(t, int64(3), result.TotalCount)
		assert.Equal(t, 2, result.TotalPages)
	})

	t.Run("no_pagination_returns_all", func(t *testing.T) {
		result, err := ledger.List(ctx, ports.LedgerListParams{})
		require.NoError(t, err)
		assert.Len(t, result.Items, 3)
		assert.Equal(t, 1, result.TotalPages)
	})
}

func TestLedger_ReturnedItemsAreCopies(t *testing.T) {
	ctx := context.Background()
	ledger := newLedger(t)

	item := helpers.CreateTestItem()
	require.NoError(t, ledger.Save(ctx, item))

	found, err := ledger.FindByName(ctx, item.ItemName)
	require.NoError(t, err)
	found.CurrentStock = 999

	stored, err := ledger.FindByName(ctx, item.ItemName)
	require.NoError(t, err)
	assert.Equal(t, item.CurrentStock, stored.CurrentStock)
}
