// internal/core/services/reconciler_test.go
package services_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/avashisht/boutique-be/internal/adapters/memstore"
	"github.com/avashisht/boutique-be/internal/core/domain"
	"github.com/avashisht/boutique-be/internal/core/ports"
	"github.com/avashisht/boutique-be/internal/core/services"
	"github.com/avashisht/boutique-be/test/helpers"
	"github.com/avashisht/boutique-be/test/mocks"
)

func multiItemPurchase() *domain.Transaction {
	return helpers.CreateTestPurchase(func(tx *domain.Transaction) {
		tx.Items = []domain.TransactionItem{
			{ItemName: "Kurti-A", Quantity: 10, UnitPrice: decimal.NewFromInt(100), Category: "Apparel"},
			{ItemName: "Saree-B", Quantity: 5, UnitPrice: decimal.NewFromInt(500), Category: "Apparel"},
			{ItemName: "Jhumka-C", Quantity: 20, UnitPrice: decimal.NewFromInt(80), Category: "Jewelry"},
		}
	})
}

func TestForwardDeltas(t *testing.T) {
	t.Run("purchase_increases_stock", func(t *testing.T) {
		deltas := services.ForwardDeltas(helpers.CreateTestPurchase())
		require.Len(t, deltas, 1)
		assert.Equal(t, ports.StockIncrease, deltas[0].Direction)
		assert.Equal(t, "Kurti-A", deltas[0].ItemName)
		assert.Equal(t, 10, deltas[0].Quantity)
	})

	t.Run("sale_decreases_stock", func(t *testing.T) {
		deltas := services.ForwardDeltas(helpers.CreateTestSale())
		require.Len(t, deltas, 1)
		assert.Equal(t, ports.StockDecrease, deltas[0].Direction)
	})
}

func TestReversalDeltas(t *testing.T) {
	t.Run("purchase_reversal_decreases", func(t *testing.T) {
		deltas := services.ReversalDeltas(helpers.CreateTestPurchase())
		require.Len(t, deltas, 1)
		assert.Equal(t, ports.StockDecrease, deltas[0].Direction)
		assert.True(t, deltas[0].UnitPrice.IsZero())
	})

	t.Run("sale_reversal_increases_without_price", func(t *testing.T) {
		deltas := services.ReversalDeltas(helpers.CreateTestSale())
		require.Len(t, deltas, 1)
		assert.Equal(t, ports.StockIncrease, deltas[0].Direction)
		assert.True(t, deltas[0].UnitPrice.IsZero(),
			"a reversed sale must not carry the sale price into the ledger")
	})
}

// Undoing a sale restores the quantity but must leave the item priced at
// its latest purchase price, not the sale price.
func TestReconciler_ReverseSaleKeepsPurchasePrice(t *testing.T) {
	ctx := context.Background()
	ledger := memstore.NewStore(helpers.TestLogger().Logger).Ledger()
	r := services.NewReconciler(helpers.TestLogger().Logger)

	purchase := helpers.CreateTestPurchase() // Kurti-A 10 @ 100
	sale := helpers.CreateTestSale()         // Kurti-A 4 @ 150

	require.True(t, r.Apply(ctx, ledger, purchase).AllOK())
	require.True(t, r.Apply(ctx, ledger, sale).AllOK())
	require.True(t, r.Reverse(ctx, ledger, sale).AllOK())

	item, err := ledger.FindByName(ctx, "Kurti-A")
	require.NoError(t, err)
	assert.Equal(t, 10, item.CurrentStock)
	assert.True(t, item.UnitPrice.Equal(decimal.NewFromInt(100)),
		"unit price should be the purchase price, got %s", item.UnitPrice)
	assert.True(t, item.TotalValue.Equal(decimal.NewFromInt(1000)))
}

func TestReconciler_Apply(t *testing.T) {
	ctx := context.Background()

	t.Run("applies_every_line_item", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		ledger := mocks.NewMockLedger(ctrl)
		ledger.EXPECT().
			ApplyDelta(gomock.Any(), gomock.Any()).
			Return(&domain.InventoryItem{}, nil).
			Times(3)

		r := services.NewReconciler(helpers.TestLogger().Logger)
		result := r.Apply(ctx, ledger, multiItemPurchase())

		assert.True(t, result.AllOK())
		assert.Len(t, result.Succeeded, 3)
	})

	t.Run("one_failure_never_blocks_the_others", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		ledger := mocks.NewMockLedger(ctrl)
		ledger.EXPECT().
			ApplyDelta(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, delta ports.ItemDelta) (*domain.InventoryItem, error) {
				if delta.ItemName == "Saree-B" {
					return nil, &domain.InsufficientStockError{
						ItemName:  delta.ItemName,
						Requested: delta.Quantity,
						Available: 0,
					}
				}
				return &domain.InventoryItem{ItemName: delta.ItemName}, nil
			}).
			Times(3)

		r := services.NewReconciler(helpers.TestLogger().Logger)
		result := r.Apply(ctx, ledger, multiItemPurchase())

		assert.False(t, result.AllOK())
		assert.Len(t, result.Succeeded, 2)
		require.Len(t, result.Failed, 1)
		assert.Equal(t, "Saree-B", result.Failed[0].Delta.ItemName)
		assert.True(t, domain.IsInsufficientStock(result.Failed[0].Err))
		assert.NotEmpty(t, result.Failed[0].Reason)
	})
}

func TestReconciler_Reverse(t *testing.T) {
	ctrl := gomock.NewController(t)
	ledger := mocks.NewMockLedger(ctrl)

	var seen []ports.StockDirection
	ledger.EXPECT().
		ApplyDelta(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, delta ports.ItemDelta) (*domain.InventoryItem, error) {
			seen = append(seen, delta.Direction)
			return &domain.InventoryItem{}, nil
		})

	r := services.NewReconciler(helpers.TestLogger().Logger)
	result := r.Reverse(context.Background(), ledger, helpers.CreateTestPurchase())

	assert.True(t, result.AllOK())
	require.Len(t, seen, 1)
	assert.Equal(t, ports.StockDecrease, seen[0])
}

func TestAdjustmentResult_Merge(t *testing.T) {
	a := services.AdjustmentResult{
		Succeeded: []ports.ItemDelta{{ItemName: "A"}},
		Failed:    []services.AdjustmentFailure{{Delta: ports.ItemDelta{ItemName: "B"}}},
	}
	b := services.AdjustmentResult{
		Succeeded: []ports.ItemDelta{{ItemName: "C"}},
	}

	merged := a.Merge(b)
	assert.Len(t, merged.Succeeded, 2)
	assert.Len(t, merged.Failed, 1)
	assert.False(t, merged.AllOK())
}
