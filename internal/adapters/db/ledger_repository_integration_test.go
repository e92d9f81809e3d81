//go:build integration
// +build integration

package db_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/avashisht/boutique-be/internal/adapters/db"
	"github.com/avashisht/boutique-be/internal/core/domain"
	"github.com/avashisht/boutique-be/internal/core/ports"
	"github.com/avashisht/boutique-be/test/helpers"
)

type LedgerRepositorySuite struct {
	suite.Suite
	testDB *helpers.TestDB
	repo   ports.Ledger
	ctx    context.Context
}

func (s *LedgerRepositorySuite) SetupSuite() {
	s.testDB = helpers.SetupTestDB(s.T())
	s.repo = db.NewLedgerRepository(s.testDB.Database, helpers.TestLogger().Logger)
	s.ctx = context.Background()
}

func (s *LedgerRepositorySuite) SetupTest() {
	helpers.TruncateAllTables(s.T(), s.testDB.PgxPool)
}

func (s *LedgerRepositorySuite) TestSaveAndFind() {
	item := helpers.CreateTestItem()

	s.NoError(s.repo.Save(s.ctx, item))

	saved, err := s.repo.FindByName(s.ctx, item.ItemName)
	s.NoError(err)
	helpers.CompareItems(s.T(), item, saved)

	s.ErrorIs(s.repo.Save(s.ctx, item), domain.ErrDuplicateKey)
}

func (s *LedgerRepositorySuite) TestApplyDeltaIncrease() {
	item, err := s.repo.ApplyDelta(s.ctx, ports.ItemDelta{
		ItemName:  "Silk Saree",
		Quantity:  5,
		UnitPrice: decimal.NewFromInt(2200),
		Category:  "Apparel",
		Direction: ports.StockIncrease,
	})
	s.NoError(err)
	s.Equal(5, item.CurrentStock)
	s.Equal("Apparel", item.Category)
	s.True(item.TotalValue.Equal(decimal.NewFromInt(11000)))

	// Second increase updates the latest purchase price.
	item, err = s.repo.ApplyDelta(s.ctx, ports.ItemDelta{
		ItemName:  "Silk Saree",
		Quantity:  3,
		UnitPrice: decimal.NewFromInt(2500),
		Direction: ports.StockIncrease,
	})
	s.NoError(err)
	s.Equal(8, item.CurrentStock)
	s.True(item.UnitPrice.Equal(decimal.NewFromInt(2500)))
}

func (s *LedgerRepositorySuite) TestApplyDeltaDecrease() {
	seed := helpers.CreateTestItem()
	s.NoError(s.repo.Save(s.ctx, seed))

	item, err := s.repo.ApplyDelta(s.ctx, ports.ItemDelta{
		ItemName:  seed.ItemName,
		Quantity:  4,
		Direction: ports.StockDecrease,
	})
	s.NoError(err)
	s.Equal(6, item.CurrentStock)

	// Over-draw is rejected atomically.
	_, err = s.repo.ApplyDelta(s.ctx, ports.ItemDelta{
		ItemName:  seed.ItemName,
		Quantity:  100,
		Direction: ports.StockDecrease,
	})
	s.Error(err)
	s.True(domain.IsInsufficientStock(err))

	unchanged, err := s.repo.FindByName(s.ctx, seed.ItemName)
	s.NoError(err)
	s.Equal(6, unchanged.CurrentStock)
}

func (s *LedgerRepositorySuite) TestGetOrCreate() {
	created, err := s.repo.GetOrCreate(s.ctx, "Chiffon Dupatta", "Apparel")
	s.NoError(err)
	s.Equal(0, created.CurrentStock)
	s.Equal("Apparel", created.Category)

	again, err := s.repo.GetOrCreate(s.ctx, "Chiffon Dupatta", "Other")
	s.NoError(err)
	s.Equal("Apparel", again.Category, "existing record wins")

	count, err := s.repo.Count(s.ctx)
	s.NoError(err)
	s.Equal(int64(1), count)
}

func (s *LedgerRepositorySuite) TestUpdateAndDelete() {
	item := helpers.CreateTestItem()
	s.NoError(s.repo.Save(s.ctx, item))

	item.CurrentStock = 3
	item.RecomputeTotalValue()
	s.NoError(s.repo.Update(s.ctx, item))

	stored, err := s.repo.FindByName(s.ctx, item.ItemName)
	s.NoError(err)
	s.Equal(3, stored.CurrentStock)

	s.NoError(s.repo.Delete(s.ctx, item.ItemName))
	s.ErrorIs(s.repo.Delete(s.ctx, item.ItemName), domain.ErrNotFound)

	_, err = s.repo.FindByName(s.ctx, item.ItemName)
	s.ErrorIs(err, domain.ErrNotFound)
}

func (s *LedgerRepositorySuite) TestList() {
	for _, item := range helpers.CreateTestItems(7) {
		it := item
		s.NoError(s.repo.Save(s.ctx, &it))
	}

	result, err := s.repo.List(s.ctx, ports.LedgerListParams{Page: 1, PageSize: 5})
	s.NoError(err)
	s.Len(result.Items, 5)
	s.Equal(int64(7), result.TotalCount)
	s.Equal(2, result.TotalPages)

	filtered, err := s.repo.List(s.ctx, ports.LedgerListParams{Category: "Apparel"})
	s.NoError(err)
	s.NotEmpty(filtered.Items)
	for _, item := range filtered.Items {
		s.Equal("Apparel", item.Category)
	}
}

func TestLedgerRepositorySuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(LedgerRepositorySuite))
}
