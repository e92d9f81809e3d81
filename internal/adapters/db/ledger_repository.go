// internal/adapters/db/ledger_repository.go
package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/avashisht/boutique-be/internal/core/domain"
	"github.com/avashisht/boutique-be/internal/core/ports"
)

// ledgerRepository implements ports.Ledger over postgres.
type ledgerRepository struct {
	db     *Database
	logger *slog.Logger
}

// NewLedgerRepository creates a new stock ledger repository
func NewLedgerRepository(db *Database, logger *slog.Logger) ports.Ledger {
	return &ledgerRepository{
		db:     db,
		logger: logger.With(slog.String("repository", "ledger")),
	}
}

var _ ports.Ledger = (*ledgerRepository)(nil)

const ledgerColumns = `item_name, category, current_stock, min_stock_level,
	unit_price, total_value, last_updated, created_at`

// ApplyDelta applies a single stock movement to one item. Increases create
// the item when it does not exist yet; decreases below available stock are
// rejected with an insufficient-stock error and leave the row untouched.
// The decrease guard lives in the UPDATE's WHERE clause, so concurrent
// movements against the same item cannot drive stock negative.
func (r *ledgerRepository) ApplyDelta(ctx context.Context, delta ports.ItemDelta) (*domain.InventoryItem, error) {
	if delta.Quantity <= 0 {
		return nil, &domain.ValidationError{Field: "quantity", Reason: "must be positive"}
	}

	if delta.Direction == ports.StockDecrease {
		return r.applyDecrease(ctx, delta)
	}
	return r.applyIncrease(ctx, delta)
}

func (r *ledgerRepository) applyIncrease(ctx context.Context, delta ports.ItemDelta) (*domain.InventoryItem, error) {
	category := delta.Category
	if category == "" {
		category = domain.DefaultCategory
	}

	// Upsert keyed on item_name: a purchase of an unknown item creates it.
	// The latest purchase price becomes the item's unit price when one is
	// supplied; total_value is recomputed in SQL from the resulting row.
	query := `
		INSERT INTO inventory (
			item_name, category, current_stock, min_stock_level,
			unit_price, total_value, last_updated, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $3 * $5, NOW(), NOW()
		)
		ON CONFLICT (item_name) DO UPDATE SET
			current_stock = inventory.current_stock + EXCLUDED.current_stock,
			unit_price = CASE WHEN EXCLUDED.unit_price > 0
				THEN EXCLUDED.unit_price ELSE inventory.unit_price END,
			total_value = (inventory.current_stock + EXCLUDED.current_stock) *
				CASE WHEN EXCLUDED.unit_price > 0
					THEN EXCLUDED.unit_price ELSE inventory.unit_price END,
			last_updated = NOW()
		RETURNING ` + ledgerColumns

	row := r.db.QueryRow(ctx, query,
		delta.ItemName, category, delta.Quantity, domain.DefaultMinStockLevel, delta.UnitPrice)

	item, err := scanInventoryRow(row)
	if err != nil {
		return nil, fmt.Errorf("failed to apply stock increase for %q: %w", delta.ItemName, classifyError(err))
	}

	r.logger.DebugContext(ctx, "stock increased",
		slog.String("item_name", item.ItemName),
		slog.Int("quantity", delta.Quantity),
		slog.Int("current_stock", item.CurrentStock))

	return item, nil
}

func (r *ledgerRepository) applyDecrease(ctx context.Context, delta ports.ItemDelta) (*domain.InventoryItem, error) {
	query := `
		UPDATE inventory SET
			current_stock = current_stock - $2,
			total_value = (current_stock - $2) * unit_price,
			last_updated = NOW()
		WHERE item_name = $1 AND current_stock >= $2
		RETURNING ` + ledgerColumns

	row := r.db.QueryRow(ctx, query, delta.ItemName, delta.Quantity)
	item, err := scanInventoryRow(row)
	if err == nil {
		r.logger.DebugContext(ctx, "stock decreased",
			slog.String("item_name", item.ItemName),
			slog.Int("quantity", delta.Quantity),
			slog.Int("current_stock", item.CurrentStock))
		return item, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to apply stock decrease for %q: %w", delta.ItemName, classifyError(err))
	}

	// No row matched: either the item is missing or its stock is short.
	// Report how much was actually available.
	var available int
	err = r.db.QueryRow(ctx,
		`SELECT current_stock FROM inventory WHERE item_name = $1`,
		delta.ItemName).Scan(&available)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to read stock for %q: %w", delta.ItemName, classifyError(err))
	}

	return nil, &domain.InsufficientStockError{
		ItemName:  delta.ItemName,
		Requested: delta.Quantity,
		Available: available,
	}
}

// GetOrCreate returns the item, creating a zero-stock row when absent.
func (r *ledgerRepository) GetOrCreate(ctx context.Context, name, category string) (*domain.InventoryItem, error) {
	item, err := r.FindByName(ctx, name)
	if err == nil {
		return item, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	if category == "" {
		category = domain.DefaultCategory
	}

	query := `
		INSERT INTO inventory (
			item_name, category, current_stock, min_stock_level,
			unit_price, total_value, last_updated, created_at
		) VALUES ($1, $2, 0, $3, 0, 0, NOW(), NOW())
		ON CONFLICT (item_name) DO UPDATE SET last_updated = inventory.last_updated
		RETURNING ` + ledgerColumns

	row := r.db.QueryRow(ctx, query, name, category, domain.DefaultMinStockLevel)
	item, err = scanInventoryRow(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create inventory item %q: %w", name, classifyError(err))
	}
	return item, nil
}

// FindByName retrieves a single inventory item
func (r *ledgerRepository) FindByName(ctx context.Context, itemName string) (*domain.InventoryItem, error) {
	query := `SELECT ` + ledgerColumns + ` FROM inventory WHERE item_name = $1`

	item, err := scanInventoryRow(r.db.QueryRow(ctx, query, itemName))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find inventory item %q: %w", itemName, classifyError(err))
	}
	return item, nil
}

// List retrieves inventory items with filtering and pagination
func (r *ledgerRepository) List(ctx context.Context, params ports.LedgerListParams) (*ports.LedgerListResult, error) {
	applyFilters := func(qb squirrel.SelectBuilder) squirrel.SelectBuilder {
		if params.Search != "" {
			qb = qb.Where("item_name ILIKE ?", "%"+params.Search+"%")
		}
		if params.Category != "" {
			qb = qb.Where(squirrel.Eq{"category": params.Category})
		}
		if params.LowStock {
			qb = qb.Where("current_stock <= min_stock_level")
		}
		return qb
	}

	qb := applyFilters(squirrel.Select(
		"item_name", "category", "current_stock", "min_stock_level",
		"unit_price", "total_value", "last_updated", "created_at",
	).From("inventory").
		PlaceholderFormat(squirrel.Dollar))

	countQb := applyFilters(squirrel.Select("COUNT(*)").
		From("inventory").
		PlaceholderFormat(squirrel.Dollar))
	countSQL, countArgs, err := countQb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build count query: %w", err)
	}

	var totalCount int64
	err = r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&totalCount)
	if err != nil {
		return nil, fmt.Errorf("failed to count inventory items: %w", classifyError(err))
	}

	orderBy := "item_name ASC"
	direction := "ASC"
	if params.SortOrder == "desc" {
		direction = "DESC"
	}
	switch params.SortBy {
	case "stock":
		orderBy = fmt.Sprintf("current_stock %s", direction)
	case "value":
		orderBy = fmt.Sprintf("total_value %s", direction)
	case "updated":
		orderBy = fmt.Sprintf("last_updated %s", direction)
	case "", "name":
		orderBy = fmt.Sprintf("item_name %s", direction)
	default:
		orderBy = fmt.Sprintf("item_name %s", direction)
	}
	qb = qb.OrderBy(orderBy)

	page := params.Page
	if page < 1 {
		page = 1
	}
	pageSize := params.PageSize
	if pageSize > 0 {
		qb = qb.Limit(uint64(pageSize)).Offset(uint64((page - 1) * pageSize))
	}

	querySQL, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.db.Query(ctx, querySQL, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query inventory items: %w", classifyError(err))
	}
	defer rows.Close()

	var items []*domain.InventoryItem
	for rows.Next() {
		item, err := scanInventoryRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan inventory item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate inventory items: %w", classifyError(err))
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

// Save creates a new inventory item
func (r *ledgerRepository) Save(ctx context.Context, item *domain.InventoryItem) error {
	query := `
		INSERT INTO inventory (
			item_name, category, current_stock, min_stock_level,
			unit_price, total_value, last_updated, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.Exec(ctx, query,
		item.ItemName, item.Category, item.CurrentStock, item.MinStockLevel,
		item.UnitPrice, item.TotalValue, item.LastUpdated, item.CreatedAt)
	if err != nil {
		err = classifyError(err)
		if errors.Is(err, domain.ErrDuplicateKey) {
			return fmt.Errorf("inventory item %q: %w", item.ItemName, domain.ErrDuplicateKey)
		}
		return fmt.Errorf("failed to save inventory item: %w", err)
	}

	r.logger.DebugContext(ctx, "inventory item saved",
		slog.String("item_name", item.ItemName))
	return nil
}

// Update replaces the stored fields of an existing inventory item
func (r *ledgerRepository) Update(ctx context.Context, item *domain.InventoryItem) error {
	query := `
		UPDATE inventory SET
			category = $2,
			current_stock = $3,
			min_stock_level = $4,
			unit_price = $5,
			total_value = $6,
			last_updated = $7
		WHERE item_name = $1`

	tag, err := r.db.Exec(ctx, query,
		item.ItemName, item.Category, item.CurrentStock, item.MinStockLevel,
		item.UnitPrice, item.TotalValue, item.LastUpdated)
	if err != nil {
		return fmt.Errorf("failed to update inventory item: %w", classifyError(err))
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}

	r.logger.DebugContext(ctx, "inventory item updated",
		slog.String("item_name", item.ItemName))
	return nil
}

// Delete removes an inventory item
func (r *ledgerRepository) Delete(ctx context.Context, itemName string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM inventory WHERE item_name = $1`, itemName)
	if err != nil {
		return fmt.Errorf("failed to delete inventory item: %w", classifyError(err))
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}

	r.logger.DebugContext(ctx, "inventory item deleted",
		slog.String("item_name", itemName))
	return nil
}

// Count returns the number of inventory items
func (r *ledgerRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM inventory`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count inventory items: %w", classifyError(err))
	}
	return count, nil
}

// scanInventoryRow scans one inventory row in ledgerColumns order.
func scanInventoryRow(row pgx.Row) (*domain.InventoryItem, error) {
	item := &domain.InventoryItem{}
	err := row.Scan(
		&item.ItemName, &item.Category, &item.CurrentStock, &item.MinStockLevel,
		&item.UnitPrice, &item.TotalValue, &item.LastUpdated, &item.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return item, nil
}
