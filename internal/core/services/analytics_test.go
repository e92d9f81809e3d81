// internal/core/services/analytics_test.go
package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/avashisht/boutique-be/internal/core/domain"
	"github.com/avashisht/boutique-be/internal/core/services"
	"github.com/avashisht/boutique-be/test/helpers"
	"github.com/avashisht/boutique-be/test/mocks"
)

// seedAnalyticsData loads a small trading history: two purchases totalling
// 1500 and two sales totalling 850.
func seedAnalyticsData(t *testing.T, store interface {
	Create(ctx context.Context, tx *domain.Transaction) error
}) {
	t.Helper()
	ctx := context.Background()
	now := time.Now()

	txs := []*domain.Transaction{
		helpers.CreateTestPurchase(func(tx *domain.Transaction) {
			tx.Date = now.AddDate(0, 0, -5)
		}),
		helpers.CreateTestPurchase(func(tx *domain.Transaction) {
			tx.Date = now.AddDate(0, 0, -3)
			tx.Items = []domain.TransactionItem{{
				ItemName:  "Jhumka Earrings",
				Quantity:  10,
				UnitPrice: decimal.NewFromInt(50),
				Category:  "Jewelry",
			}}
			tx.Supplier = &domain.Party{Name: "Mehta Jewels"}
		}),
		helpers.CreateTestSale(func(tx *domain.Transaction) {
			tx.Date = now.AddDate(0, 0, -1)
		}),
		helpers.CreateTestSale(func(tx *domain.Transaction) {
			tx.Date = now
			tx.Items = []domain.TransactionItem{{
				ItemName:  "Jhumka Earrings",
				Quantity:  5,
				UnitPrice: decimal.NewFromInt(50),
				Category:  "Jewelry",
			}}
		}),
	}
	for _, tx := range txs {
		require.NoError(t, store.Create(ctx, tx))
	}
}

func newAnalyticsService(t *testing.T) (*services.AnalyticsService, *services.InventoryService) {
	t.Helper()
	router, store := memRouter(t)
	seedAnalyticsData(t, store.Transactions())
	log := helpers.TestLogger().Logger
	return services.NewAnalyticsService(router, nil, log),
		services.NewInventoryService(router, log)
}

func TestAnalyticsService_Overview(t *testing.T) {
	ctx := context.Background()
	svc, inv := newAnalyticsService(t)

	_, _, err := inv.Create(ctx, helpers.CreateTestItem(func(i *domain.InventoryItem) {
		i.CurrentStock = 2 // below the default min of 5
	}))
	require.NoError(t, err)

	o, err := svc.Overview(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, o.SalesCount)
	assert.Equal(t, 2, o.PurchaseCount)
	assert.True(t, o.TotalPurchases.Equal(decimal.NewFromInt(1500)),
		"purchases: got %s", o.TotalPurchases)
	assert.True(t, o.TotalSales.Equal(decimal.NewFromInt(850)),
		"sales: got %s", o.TotalSales)
	assert.Equal(t, int64(1), o.InventoryCount)
	assert.Equal(t, 1, o.LowStockCount)
	assert.True(t, o.InventoryValue.Equal(decimal.NewFromInt(200)))
}

func TestAnalyticsService_SalesTrends(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAnalyticsService(t)

	trends, err := svc.SalesTrends(ctx, 30)
	require.NoError(t, err)
	require.Len(t, trends, 2, "two sales on two distinct days")

	// Chronological order, units counted per line item.
	assert.Less(t, trends[0].Date, trends[1].Date)
	assert.Equal(t, 4, trends[0].Units)
	assert.Equal(t, 5, trends[1].Units)
	assert.True(t, trends[1].Total.Equal(decimal.NewFromInt(250)))
}

func TestAnalyticsService_ProfitLoss(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAnalyticsService(t)

	t.Run("all_time", func(t *testing.T) {
		pl, err := svc.ProfitLoss(ctx, nil, nil)
		require.NoError(t, err)
		assert.True(t, pl.Revenue.Equal(decimal.NewFromInt(850)))
		assert.True(t, pl.Cost.Equal(decimal.NewFromInt(1500)))
		assert.True(t, pl.Profit.Equal(decimal.NewFromInt(-650)))
	})

	t.Run("window_excludes_out_of_range", func(t *testing.T) {
		from := time.Now().AddDate(0, 0, -2)
		pl, err := svc.ProfitLoss(ctx, &from, nil)
		require.NoError(t, err)
		assert.True(t, pl.Cost.IsZero(), "both purchases predate the window")
		assert.True(t, pl.Revenue.Equal(decimal.NewFromInt(850)))
	})

	t.Run("zero_revenue_zero_margin", func(t *testing.T) {
		future := time.Now().AddDate(1, 0, 0)
		pl, err := svc.ProfitLoss(ctx, &future, nil)
		require.NoError(t, err)
		assert.True(t, pl.Margin.IsZero())
	})
}

func TestAnalyticsService_PurchaseAnalytics(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAnalyticsService(t)

	pa, err := svc.PurchaseAnalytics(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, pa.Count)
	assert.True(t, pa.TotalSpent.Equal(decimal.NewFromInt(1500)))

	require.Len(t, pa.TopSuppliers, 2)
	assert.Equal(t, "Sharma Textiles", pa.TopSuppliers[0].Supplier,
		"suppliers ranked by spend")

	require.NotEmpty(t, pa.ByCategory)
	assert.Equal(t, "Apparel", pa.ByCategory[0].Category)
}

func TestAnalyticsService_InventoryInsights(t *testing.T) {
	ctx := context.Background()
	svc, inv := newAnalyticsService(t)

	_, _, err := inv.Create(ctx, helpers.CreateTestItem(func(i *domain.InventoryItem) {
		i.ItemName = "Silk Saree"
		i.CurrentStock = 8
		i.UnitPrice = decimal.NewFromInt(2000)
	}))
	require.NoError(t, err)
	_, _, err = inv.Create(ctx, helpers.CreateTestItem(func(i *domain.InventoryItem) {
		i.ItemName = "Bindi Pack"
		i.Category = "Cosmetics"
		i.CurrentStock = 1
		i.UnitPrice = decimal.NewFromInt(20)
	}))
	require.NoError(t, err)

	ii, err := svc.InventoryInsights(ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(2), ii.TotalItems)
	assert.True(t, ii.TotalValue.Equal(decimal.NewFromInt(16020)))
	require.Len(t, ii.LowStockItems, 1)
	assert.Equal(t, "Bindi Pack", ii.LowStockItems[0].ItemName)
	require.NotEmpty(t, ii.TopValueItems)
	assert.Equal(t, "Silk Saree", ii.TopValueItems[0].ItemName)
}

func TestAnalyticsService_ExportData(t *testing.T) {
	ctx := context.Background()
	svc, inv := newAnalyticsService(t)

	_, _, err := inv.Create(ctx, helpers.CreateTestItem())
	require.NoError(t, err)

	data, err := svc.ExportData(ctx)
	require.NoError(t, err)
	assert.Len(t, data.Items, 1)
	assert.Len(t, data.Transactions, 4)
	assert.False(t, data.GeneratedAt.IsZero())
}

func TestAnalyticsService_CacheDegradation(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	cache := mocks.NewMockCacheRepository(ctrl)

	router, store := memRouter(t)
	seedAnalyticsData(t, store.Transactions())
	svc := services.NewAnalyticsService(router, cache, helpers.TestLogger().Logger)

	// A broken cache never fails the request; the aggregation recomputes.
	cache.EXPECT().
		GetOrSet(gomock.Any(), "analytics:overview", gomock.Any(), gomock.Any(), gomock.Any()).
		Return(errors.New("redis down"))

	o, err := svc.Overview(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, o.SalesCount)
}

func TestAnalyticsService_InvalidateCache(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	cache := mocks.NewMockCacheRepository(ctrl)

	router, _ := memRouter(t)
	svc := services.NewAnalyticsService(router, cache, helpers.TestLogger().Logger)

	cache.EXPECT().DeletePattern(ctx, "analytics:*").Return(nil)
	svc.InvalidateCache(ctx)

	// A failed invalidation is logged, never propagated.
	cache.EXPECT().DeletePattern(ctx, "analytics:*").Return(errors.New("redis down"))
	svc.InvalidateCache(ctx)
}
