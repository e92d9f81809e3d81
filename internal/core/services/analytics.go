// internal/core/services/analytics.go
package services

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/avashisht/boutique-be/internal/core/domain"
	"github.com/avashisht/boutique-be/internal/core/ports"
)

// Cache TTLs for analytics aggregations.
const (
	overviewCacheTTL  = 2 * time.Minute
	analyticsCacheTTL = 5 * time.Minute
)

// Overview is the headline aggregation across both stores.
type Overview struct {
	TotalSales     decimal.Decimal `json:"total_sales"`
	TotalPurchases decimal.Decimal `json:"total_purchases"`
	SalesCount     int             `json:"sales_count"`
	PurchaseCount  int             `json:"purchase_count"`
	InventoryCount int64           `json:"inventory_count"`
	InventoryValue decimal.Decimal `json:"inventory_value"`
	LowStockCount  int             `json:"low_stock_count"`
}

// TrendPoint is one day of aggregated sales or purchases.
type TrendPoint struct {
	Date  string          `json:"date"`
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
	Units int             `json:"units"`
}

// ProfitLoss summarizes revenue against cost for a date range.
type ProfitLoss struct {
	Revenue decimal.Decimal `json:"revenue"`
	Cost    decimal.Decimal `json:"cost"`
	Profit  decimal.Decimal `json:"profit"`
	Margin  decimal.Decimal `json:"margin_percent"`
}

// CategoryBreakdown aggregates amounts per item category.
type CategoryBreakdown struct {
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
	Units    int             `json:"units"`
}

// SupplierStat aggregates purchase volume per supplier.
type SupplierStat struct {
	Supplier string          `json:"supplier"`
	Total    decimal.Decimal `json:"total"`
	Count    int             `json:"count"`
}

// PurchaseAnalytics summarizes purchasing activity.
type PurchaseAnalytics struct {
	TotalSpent   decimal.Decimal     `json:"total_spent"`
	Count        int                 `json:"count"`
	TopSuppliers []SupplierStat      `json:"top_suppliers"`
	ByCategory   []CategoryBreakdown `json:"by_category"`
}

// InventoryInsights summarizes the current ledger state.
type InventoryInsights struct {
	TotalItems    int64                   `json:"total_items"`
	TotalValue    decimal.Decimal         `json:"total_value"`
	LowStockItems []*domain.InventoryItem `json:"low_stock_items"`
	TopValueItems []*domain.InventoryItem `json:"top_value_items"`
	ByCategory    []CategoryBreakdown     `json:"by_category"`
}

// AnalyticsService computes read-only aggregations over the transaction
// record store and the ledger. Results are cached when a cache is wired;
// every cache failure degrades to recomputing, never to a request failure.
type AnalyticsService struct {
	router ports.StoreRouter
	cache  ports.CacheRepository
	logger *slog.Logger
}

// NewAnalyticsService creates a new analytics service. cache may be nil.
func NewAnalyticsService(router ports.StoreRouter, cache ports.CacheRepository, logger *slog.Logger) *AnalyticsService {
	return &AnalyticsService{
		router: router,
		cache:  cache,
		logger: logger.With(slog.String("service", "analytics")),
	}
}

// cached wraps an aggregation with the optional cache.
func cached[T any](ctx context.Context, s *AnalyticsService, key string, ttl time.Duration,
	compute func() (T, error)) (T, error) {

	if s.cache == nil {
		return compute()
	}

	var result T
	err := s.cache.GetOrSet(ctx, key, &result, func() (interface{}, error) {
		v, err := compute()
		if err != nil {
			return nil, err
		}
		return v, nil
	}, ttl)
	if err != nil {
		// Degrade to direct computation on any cache-layer failure.
		s.logger.WarnContext(ctx, "analytics cache degraded",
			slog.String("key", key),
			slog.String("error", err.Error()))
		return compute()
	}
	return result, nil
}

// allTransactions loads every record matching the filter, with failover.
func (s *AnalyticsService) allTransactions(ctx context.Context, filter ports.TransactionFilter) ([]*domain.Transaction, error) {
	result, _, err := runWithFailover(ctx, s.router, s.logger, func(set ports.StoreSet) (*ports.TransactionListResult, error) {
		return set.Transactions.FindMany(ctx, ports.TransactionListParams{Filter: filter})
	})
	if err != nil {
		return nil, err
	}
	return result.Transactions, nil
}

// allItems loads the full ledger, with failover.
func (s *AnalyticsService) allItems(ctx context.Context) ([]*domain.InventoryItem, error) {
	result, _, err := runWithFailover(ctx, s.router, s.logger, func(set ports.StoreSet) (*ports.LedgerListResult, error) {
		return set.Ledger.List(ctx, ports.LedgerListParams{})
	})
	if err != nil {
		return nil, err
	}
	return result.Items, nil
}

// Overview returns the headline stats.
func (s *AnalyticsService) Overview(ctx context.Context) (*Overview, error) {
	return cached(ctx, s, "analytics:overview", overviewCacheTTL, func() (*Overview, error) {
		txs, err := s.allTransactions(ctx, ports.TransactionFilter{})
		if err != nil {
			return nil, err
		}
		items, err := s.allItems(ctx)
		if err != nil {
			return nil, err
		}

		o := &Overview{
			TotalSales:     decimal.Zero,
			TotalPurchases: decimal.Zero,
			InventoryValue: decimal.Zero,
			InventoryCount: int64(len(items)),
		}
		for _, tx := range txs {
			if tx.Type == domain.TypeSale {
				o.TotalSales = o.TotalSales.Add(tx.TotalAmount)
				o.SalesCount++
			} else {
				o.TotalPurchases = o.TotalPurchases.Add(tx.TotalAmount)
				o.PurchaseCount++
			}
		}
		for _, item := range items {
			o.InventoryValue = o.InventoryValue.Add(item.TotalValue)
			if item.IsLowStock() {
				o.LowStockCount++
			}
		}
		o.TotalSales = domain.RoundAmount(o.TotalSales)
		o.TotalPurchases = domain.RoundAmount(o.TotalPurchases)
		o.InventoryValue = domain.RoundAmount(o.InventoryValue)
		return o, nil
	})
}

// SalesTrends returns per-day sale totals for the trailing window.
func (s *AnalyticsService) SalesTrends(ctx context.Context, days int) ([]TrendPoint, error) {
	if days <= 0 {
		days = 30
	}
	key := "analytics:sales_trends:" + time.Now().Format("20060102")
	return cached(ctx, s, key, analyticsCacheTTL, func() ([]TrendPoint, error) {
		from := time.Now().AddDate(0, 0, -days)
		txs, err := s.allTransactions(ctx, ports.TransactionFilter{
			Type:     domain.TypeSale,
			DateFrom: &from,
		})
		if err != nil {
			return nil, err
		}
		return trendByDay(txs), nil
	})
}

// ProfitLoss aggregates revenue vs cost over an optional date range.
func (s *AnalyticsService) ProfitLoss(ctx context.Context, from, to *time.Time) (*ProfitLoss, error) {
	txs, err := s.allTransactions(ctx, ports.TransactionFilter{DateFrom: from, DateTo: to})
	if err != nil {
		return nil, err
	}

	pl := &ProfitLoss{Revenue: decimal.Zero, Cost: decimal.Zero}
	for _, tx := range txs {
		if tx.Type == domain.TypeSale {
			pl.Revenue = pl.Revenue.Add(tx.TotalAmount)
		} else {
			pl.Cost = pl.Cost.Add(tx.TotalAmount)
		}
	}
	pl.Revenue = domain.RoundAmount(pl.Revenue)
	pl.Cost = domain.RoundAmount(pl.Cost)
	pl.Profit = pl.Revenue.Sub(pl.Cost)
	if pl.Revenue.IsPositive() {
		pl.Margin = pl.Profit.Div(pl.Revenue).Mul(decimal.NewFromInt(100)).Round(2)
	} else {
		pl.Margin = decimal.Zero
	}
	return pl, nil
}

// PurchaseAnalytics summarizes purchasing activity.
func (s *AnalyticsService) PurchaseAnalytics(ctx context.Context) (*PurchaseAnalytics, error) {
	return cached(ctx, s, "analytics:purchases", analyticsCacheTTL, func() (*PurchaseAnalytics, error) {
		txs, err := s.allTransactions(ctx, ports.TransactionFilter{Type: domain.TypePurchase})
		if err != nil {
			return nil, err
		}

		pa := &PurchaseAnalytics{TotalSpent: decimal.Zero}
		suppliers := make(map[string]*SupplierStat)
		categories := make(map[string]*CategoryBreakdown)

		for _, tx := range txs {
			pa.TotalSpent = pa.TotalSpent.Add(tx.TotalAmount)
			pa.Count++

			if tx.Supplier != nil && tx.Supplier.Name != "" {
				stat, ok := suppliers[tx.Supplier.Name]
				if !ok {
					stat = &SupplierStat{Supplier: tx.Supplier.Name, Total: decimal.Zero}
					suppliers[tx.Supplier.Name] = stat
				}
				stat.Total = stat.Total.Add(tx.TotalAmount)
				stat.Count++
			}
			accumulateCategories(categories, tx)
		}

		pa.TotalSpent = domain.RoundAmount(pa.TotalSpent)
		for _, stat := range suppliers {
			stat.Total = domain.RoundAmount(stat.Total)
			pa.TopSuppliers = append(pa.TopSuppliers, *stat)
		}
		sort.Slice(pa.TopSuppliers, func(i, j int) bool {
			return pa.TopSuppliers[i].Total.GreaterThan(pa.TopSuppliers[j].Total)
		})
		if len(pa.TopSuppliers) > 10 {
			pa.TopSuppliers = pa.TopSuppliers[:10]
		}
		pa.ByCategory = sortedCategories(categories)
		return pa, nil
	})
}

// InventoryInsights summarizes the current ledger state.
func (s *AnalyticsService) InventoryInsights(ctx context.Context) (*InventoryInsights, error) {
	return cached(ctx, s, "analytics:inventory", analyticsCacheTTL, func() (*InventoryInsights, error) {
		items, err := s.allItems(ctx)
		if err != nil {
			return nil, err
		}

		ii := &InventoryInsights{
			TotalItems: int64(len(items)),
			TotalValue: decimal.Zero,
		}
		categories := make(map[string]*CategoryBreakdown)
		for _, item := range items {
			ii.TotalValue = ii.TotalValue.Add(item.TotalValue)
			if item.IsLowStock() {
				ii.LowStockItems = append(ii.LowStockItems, item)
			}
			cb, ok := categories[item.Category]
			if !ok {
				cb = &CategoryBreakdown{Category: item.Category, Total: decimal.Zero}
				categories[item.Category] = cb
			}
			cb.Total = cb.Total.Add(item.TotalValue)
			cb.Units += item.CurrentStock
		}
		ii.TotalValue = domain.RoundAmount(ii.TotalValue)

		sorted := make([]*domain.InventoryItem, len(items))
		copy(sorted, items)
		sort.Slice(sorted, func(i, j int) bool {
			return sorted[i].TotalValue.GreaterThan(sorted[j].TotalValue)
		})
		if len(sorted) > 10 {
			sorted = sorted[:10]
		}
		ii.TopValueItems = sorted
		ii.ByCategory = sortedCategories(categories)
		return ii, nil
	})
}

// ExportData bundles everything the xlsx export renders.
type ExportData struct {
	Items        []*domain.InventoryItem
	Transactions []*domain.Transaction
	GeneratedAt  time.Time
}

// ExportData loads the full dataset for the export workbook, uncached.
func (s *AnalyticsService) ExportData(ctx context.Context) (*ExportData, error) {
	items, err := s.allItems(ctx)
	if err != nil {
		return nil, err
	}
	txs, err := s.allTransactions(ctx, ports.TransactionFilter{})
	if err != nil {
		return nil, err
	}
	return &ExportData{
		Items:        items,
		Transactions: txs,
		GeneratedAt:  time.Now(),
	}, nil
}

// InvalidateCache drops cached analytics after a mutating operation.
func (s *AnalyticsService) InvalidateCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeletePattern(ctx, "analytics:*"); err != nil {
		s.logger.WarnContext(ctx, "failed to invalidate analytics cache",
			slog.String("error", err.Error()))
	}
}

func trendByDay(txs []*domain.Transaction) []TrendPoint {
	byDay := make(map[string]*TrendPoint)
	for _, tx := range txs {
		day := tx.Date.Format("2006-01-02")
		tp, ok := byDay[day]
		if !ok {
			tp = &TrendPoint{Date: day, Total: decimal.Zero}
			byDay[day] = tp
		}
		tp.Total = tp.Total.Add(tx.TotalAmount)
		tp.Count++
		for _, item := range tx.Items {
			tp.Units += item.Quantity
		}
	}

	points := make([]TrendPoint, 0, len(byDay))
	for _, tp := range byDay {
		tp.Total = domain.RoundAmount(tp.Total)
		points = append(points, *tp)
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date < points[j].Date })
	return points
}

func accumulateCategories(categories map[string]*CategoryBreakdown, tx *domain.Transaction) {
	for _, item := range tx.Items {
		category := item.Category
		if category == "" {
			category = domain.DefaultCategory
		}
		cb, ok := categories[category]
		if !ok {
			cb = &CategoryBreakdown{Category: category, Total: decimal.Zero}
			categories[category] = cb
		}
		cb.Total = cb.Total.Add(item.TotalPrice)
		cb.Units += item.Quantity
	}
}

func sortedCategories(categories map[string]*CategoryBreakdown) []CategoryBreakdown {
	out := make([]CategoryBreakdown, 0, len(categories))
	for _, cb := range categories {
		cb.Total = domain.RoundAmount(cb.Total)
		out = append(out, *cb)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Total.GreaterThan(out[j].Total)
	})
	return out
}
