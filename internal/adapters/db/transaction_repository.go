// internal/adapters/db/transaction_repository.go
package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/avashisht/boutique-be/internal/core/domain"
	"github.com/avashisht/boutique-be/internal/core/ports"
)

// maxIDAttempts bounds retries when a generated transaction ID collides.
const maxIDAttempts = 3

// transactionRepository implements ports.TransactionRepository over postgres.
type transactionRepository struct {
	db     *Database
	logger *slog.Logger
}

// NewTransactionRepository creates a new transaction record repository
func NewTransactionRepository(db *Database, logger *slog.Logger) ports.TransactionRepository {
	return &transactionRepository{
		db:     db,
		logger: logger.With(slog.String("repository", "transactions")),
	}
}

var _ ports.TransactionRepository = (*transactionRepository)(nil)

const transactionColumns = `transaction_id, transaction_type, transaction_date,
	items, total_amount, supplier, customer, notes, created_at, updated_at`

// Create validates the record, assigns a generated ID, and persists it.
// On a duplicate ID a fresh one is generated, up to maxIDAttempts times.
func (r *transactionRepository) Create(ctx context.Context, tx *domain.Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}
	tx.RecomputeTotals()
	tx.PrepareForStorage()

	query := `
		INSERT INTO transactions (
			transaction_id, transaction_type, transaction_date,
			items, total_amount, supplier, customer, notes,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	var lastErr error
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		if attempt > 0 {
			tx.TransactionID = domain.GenerateTransactionID(tx.Type, tx.Date)
		}

		itemsJSON, supplierJSON, customerJSON, err := marshalTransactionJSON(tx)
		if err != nil {
			return err
		}

		_, err = r.db.Exec(ctx, query,
			tx.TransactionID, tx.Type, tx.Date,
			itemsJSON, tx.TotalAmount, supplierJSON, customerJSON, tx.Notes,
			tx.CreatedAt, tx.UpdatedAt)
		if err == nil {
			r.logger.DebugContext(ctx, "transaction saved",
				slog.String("transaction_id", tx.TransactionID),
				slog.String("type", string(tx.Type)))
			return nil
		}

		lastErr = classifyError(err)
		if !errors.Is(lastErr, domain.ErrDuplicateKey) {
			return fmt.Errorf("failed to save transaction: %w", lastErr)
		}
		r.logger.WarnContext(ctx, "transaction id collision, regenerating",
			slog.String("transaction_id", tx.TransactionID),
			slog.Int("attempt", attempt+1))
	}

	return fmt.Errorf("failed to save transaction after %d id attempts: %w", maxIDAttempts, lastErr)
}

// Update merges the patch over the stored record, re-validates, recomputes
// totals, and persists. The transaction ID and type never change.
func (r *transactionRepository) Update(ctx context.Context, id string, patch ports.TransactionPatch) (*domain.Transaction, error) {
	tx, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	patch.Apply(tx)
	if err := tx.Validate(); err != nil {
		return nil, err
	}
	tx.RecomputeTotals()
	tx.PrepareForStorage()

	itemsJSON, supplierJSON, customerJSON, err := marshalTransactionJSON(tx)
	if err != nil {
		return nil, err
	}

	query := `
		UPDATE transactions SET
			transaction_date = $2,
			items = $3,
			total_amount = $4,
			supplier = $5,
			customer = $6,
			notes = $7,
			updated_at = $8
		WHERE transaction_id = $1`

	tag, err := r.db.Exec(ctx, query,
		id, tx.Date, itemsJSON, tx.TotalAmount,
		supplierJSON, customerJSON, tx.Notes, tx.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to update transaction: %w", classifyError(err))
	}
	if tag.RowsAffected() == 0 {
		return nil, domain.ErrNotFound
	}

	r.logger.DebugContext(ctx, "transaction updated",
		slog.String("transaction_id", id))
	return tx, nil
}

// Delete removes a transaction record
func (r *transactionRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM transactions WHERE transaction_id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", classifyError(err))
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}

	r.logger.DebugContext(ctx, "transaction deleted",
		slog.String("transaction_id", id))
	return nil
}

// FindByID retrieves a single transaction record
func (r *transactionRepository) FindByID(ctx context.Context, id string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE transaction_id = $1`

	tx, err := scanTransactionRow(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find transaction %q: %w", id, classifyError(err))
	}
	return tx, nil
}

// FindMany retrieves transactions with filtering, sorting and pagination.
// A non-positive page size disables pagination and returns every match.
func (r *transactionRepository) FindMany(ctx context.Context, params ports.TransactionListParams) (*ports.TransactionListResult, error) {
	applyFilters := func(qb squirrel.SelectBuilder) squirrel.SelectBuilder {
		f := params.Filter
		if f.Type != "" {
			qb = qb.Where(squirrel.Eq{"transaction_type": f.Type})
		}
		if f.DateFrom != nil {
			qb = qb.Where("transaction_date >= ?", *f.DateFrom)
		}
		if f.DateTo != nil {
			qb = qb.Where("transaction_date <= ?", *f.DateTo)
		}
		if f.Search != "" {
			pattern := "%" + f.Search + "%"
			qb = qb.Where(squirrel.Or{
				squirrel.ILike{"transaction_id": pattern},
				squirrel.ILike{"notes": pattern},
				squirrel.Expr("items::text ILIKE ?", pattern),
				squirrel.Expr("supplier::text ILIKE ?", pattern),
				squirrel.Expr("customer::text ILIKE ?", pattern),
			})
		}
		return qb
	}

	qb := applyFilters(squirrel.Select(
		"transaction_id", "transaction_type", "transaction_date",
		"items", "total_amount", "supplier", "customer", "notes",
		"created_at", "updated_at",
	).From("transactions").
		PlaceholderFormat(squirrel.Dollar))

	countQb := applyFilters(squirrel.Select("COUNT(*)").
		From("transactions").
		PlaceholderFormat(squirrel.Dollar))
	countSQL, countArgs, err := countQb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build count query: %w", err)
	}

	var totalCount int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&totalCount); err != nil {
		return nil, fmt.Errorf("failed to count transactions: %w", classifyError(err))
	}

	direction := "DESC"
	if params.SortOrder == "asc" {
		direction = "ASC"
	}
	switch params.SortBy {
	case "amount":
		qb = qb.OrderBy(fmt.Sprintf("total_amount %s", direction))
	case "id":
		qb = qb.OrderBy(fmt.Sprintf("transaction_id %s", direction))
	default:
		qb = qb.OrderBy(fmt.Sprintf("transaction_date %s", direction), "transaction_id ASC")
	}

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
		return nil, fmt.Errorf("failed to query transactions: %w", classifyError(err))
	}
	defer rows.Close()

	var transactions []*domain.Transaction
	for rows.Next() {
		tx, err := scanTransactionRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", classifyError(err))
	}

	result := &ports.TransactionListResult{
		Transactions: transactions,
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

// marshalTransactionJSON encodes the JSONB columns. Nil parties become SQL
// NULL rather than the JSON literal null.
func marshalTransactionJSON(tx *domain.Transaction) (items, supplier, customer []byte, err error) {
	items, err = json.Marshal(tx.Items)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to marshal items: %w", err)
	}
	if tx.Supplier != nil {
		supplier, err = json.Marshal(tx.Supplier)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to marshal supplier: %w", err)
		}
	}
	if tx.Customer != nil {
		customer, err = json.Marshal(tx.Customer)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to marshal customer: %w", err)
		}
	}
	return items, supplier, customer, nil
}

// scanTransactionRow scans one row in transactionColumns order.
func scanTransactionRow(row pgx.Row) (*domain.Transaction, error) {
	tx := &domain.Transaction{}
	var itemsJSON []byte
	var supplierJSON, customerJSON []byte

	err := row.Scan(
		&tx.TransactionID, &tx.Type, &tx.Date,
		&itemsJSON, &tx.TotalAmount, &supplierJSON, &customerJSON, &tx.Notes,
		&tx.CreatedAt, &tx.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(itemsJSON) > 0 {
		if err := json.Unmarshal(itemsJSON, &tx.Items); err != nil {
			return nil, fmt.Errorf("failed to unmarshal items: %w", err)
		}
	}
	if len(supplierJSON) > 0 {
		tx.Supplier = &domain.Party{}
		if err := json.Unmarshal(supplierJSON, tx.Supplier); err != nil {
			return nil, fmt.Errorf("failed to unmarshal supplier: %w", err)
		}
	}
	if len(customerJSON) > 0 {
		tx.Customer = &domain.Party{}
		if err := json.Unmarshal(customerJSON, tx.Customer); err != nil {
			return nil, fmt.Errorf("failed to unmarshal customer: %w", err)
		}
	}
	return tx, nil
}
