// internal/core/services/inventory_test.go
package services_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avashisht/boutique-be/internal/adapters/failover"
	"github.com/avashisht/boutique-be/internal/adapters/memstore"
	"github.com/avashisht/boutique-be/internal/core/domain"
	"github.com/avashisht/boutique-be/internal/core/ports"
	"github.com/avashisht/boutique-be/internal/core/services"
	"github.com/avashisht/boutique-be/test/helpers"
)

// memRouter builds a fallback-only router over a fresh in-memory store, the
// same wiring the service boots with when no database is configured.
func memRouter(t *testing.T) (ports.StoreRouter, *memstore.Store) {
	t.Helper()
	log := helpers.TestLogger().Logger
	store := memstore.NewStore(log)
	set := ports.StoreSet{
		Backend:      ports.BackendFallback,
		Transactions: store.Transactions(),
		Ledger:       store.Ledger(),
		Users:        store.Users(),
	}
	router := failover.NewRouter(ports.StoreSet{}, set, failover.NewSelector(true), nil, log)
	return router, store
}

func newInventoryService(t *testing.T) (*services.InventoryService, *memstore.Store) {
	t.Helper()
	router, store := memRouter(t)
	return services.NewInventoryService(router, helpers.TestLogger().Logger), store
}

func TestInventoryService_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	svc, _ := newInventoryService(t)

	created, backend, err := svc.Create(ctx, helpers.CreateTestItem())
	require.NoError(t, err)
	assert.Equal(t, ports.BackendFallback, backend)
	assert.True(t, created.TotalValue.Equal(decimal.NewFromInt(1000)))

	got, _, err := svc.Get(ctx, created.ItemName)
	require.NoError(t, err)
	helpers.CompareItems(t, created, got)
}

func TestInventoryService_CreateValidation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newInventoryService(t)

	tests := []struct {
		name string
		item *domain.InventoryItem
	}{
		{
			name: "missing_name",
			item: helpers.CreateTestItem(func(i *domain.InventoryItem) { i.ItemName = "" }),
		},
		{
			name: "negative_stock",
			item: helpers.CreateTestItem(func(i *domain.InventoryItem) { i.CurrentStock = -1 }),
		},
		{
			name: "negative_price",
			item: helpers.CreateTestItem(func(i *domain.InventoryItem) {
				i.UnitPrice = decimal.NewFromInt(-5)
			}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.Create(ctx, tt.item)
			require.Error(t, err)
			assert.True(t, domain.IsValidation(err))
		})
	}
}

func TestInventoryService_CreateDuplicate(t *testing.T) {
	ctx := context.Background()
	svc, _ := newInventoryService(t)

	_, _, err := svc.Create(ctx, helpers.CreateTestItem())
	require.NoError(t, err)

	_, _, err = svc.Create(ctx, helpers.CreateTestItem())
	assert.ErrorIs(t, err, domain.ErrDuplicateKey)
}

func TestInventoryService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("patch_recomputes_total_value", func(t *testing.T) {
		svc, _ := newInventoryService(t)
		item, _, err := svc.Create(ctx, helpers.CreateTestItem())
		require.NoError(t, err)

		stock := 7
		price := decimal.NewFromInt(130)
		updated, _, err := svc.Update(ctx, item.ItemName, services.InventoryPatch{
			CurrentStock: &stock,
			UnitPrice:    &price,
		})
		require.NoError(t, err)
		assert.Equal(t, 7, updated.CurrentStock)
		assert.True(t, updated.TotalValue.Equal(decimal.NewFromInt(910)),
			"total value must be rederived, got %s", updated.TotalValue)
	})

	t.Run("invalid_patch_is_rejected", func(t *testing.T) {
		svc, _ := newInventoryService(t)
		item, _, err := svc.Create(ctx, helpers.CreateTestItem())
		require.NoError(t, err)

		negative := -3
		_, _, err = svc.Update(ctx, item.ItemName, services.InventoryPatch{CurrentStock: &negative})
		require.Error(t, err)
		assert.True(t, domain.IsValidation(err))

		// Stored item unchanged.
		stored, _, err := svc.Get(ctx, item.ItemName)
		require.NoError(t, err)
		assert.Equal(t, item.CurrentStock, stored.CurrentStock)
	})

	t.Run("unknown_item", func(t *testing.T) {
		svc, _ := newInventoryService(t)
		stock := 5
		_, _, err := svc.Update(ctx, "Nonexistent", services.InventoryPatch{CurrentStock: &stock})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestInventoryService_Delete(t *testing.T) {
	ctx := context.Background()
	svc, _ := newInventoryService(t)

	item, _, err := svc.Create(ctx, helpers.CreateTestItem())
	require.NoError(t, err)

	_, err = svc.Delete(ctx, item.ItemName)
	require.NoError(t, err)

	_, _, err = svc.Get(ctx, item.ItemName)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.Delete(ctx, item.ItemName)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestInventoryService_List(t *testing.T) {
	ctx := context.Background()
	svc, _ := newInventoryService(t)

	for _, item := range helpers.CreateTestItems(5) {
		it := item
		_, _, err := svc.Create(ctx, &it)
		require.NoError(t, err)
	}

	result, backend, err := svc.List(ctx, ports.LedgerListParams{Page: 1, PageSize: 3})
	require.NoError(t, err)
	assert.Equal(t, ports.BackendFallback, backend)
	assert.Len(t, result.Items, 3)
	assert.Equal(t, int64(5), result.TotalCount)
	assert.Equal(t, 2, result.TotalPages)
}
