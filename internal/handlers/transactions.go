// internal/handlers/transactions.go
package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/avashisht/boutique-be/internal/core/domain"
	"github.com/avashisht/boutique-be/internal/core/ports"
	"github.com/avashisht/boutique-be/internal/core/services"
)

// TransactionHandler handles transaction-related HTTP requests
type TransactionHandler struct {
	service   *services.TransactionService
	analytics *services.AnalyticsService
	logger    *slog.Logger
}

// NewTransactionHandler creates a new transaction handler. analytics may be
// nil; it is only used to drop cached aggregations after mutations.
func NewTransactionHandler(service *services.TransactionService, analytics *services.AnalyticsService, logger *slog.Logger) *TransactionHandler {
	return &TransactionHandler{
		service:   service,
		analytics: analytics,
		logger:    logger.With(slog.String("handler", "transactions")),
	}
}

// CreateTransaction handles POST /api/v1/transactions
func (h *TransactionHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "bad_request", "Invalid request body")
		return
	}

	if err := req.Validate(); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	tx := req.ToDomain()

	result, err := h.service.Create(ctx, tx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to create transaction",
			slog.String("type", string(tx.Type)),
			slog.String("error", err.Error()))
		respondDomainError(w, h.logger, err)
		return
	}

	h.invalidateAnalytics(r)
	respondJSON(w, h.logger, http.StatusCreated, result)
}

// GetTransaction handles GET /api/v1/transactions/{id}
func (h *TransactionHandler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")

	tx, backend, err := h.service.Get(ctx, id)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to get transaction",
			slog.String("transaction_id", id),
			slog.String("error", err.Error()))
		respondDomainError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, map[string]interface{}{
		"transaction": tx,
		"backend":     backend,
	})
}

// ListTransactions handles GET /api/v1/transactions
func (h *TransactionHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	params := h.parseListParams(r)

	result, backend, err := h.service.List(ctx, params)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list transactions",
			slog.String("error", err.Error()))
		respondDomainError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, map[string]interface{}{
		"transactions": result.Transactions,
		"page":         result.Page,
		"page_size":    result.PageSize,
		"total_count":  result.TotalCount,
		"total_pages":  result.TotalPages,
		"backend":      backend,
	})
}

// UpdateTransaction handles PUT /api/v1/transactions/{id}
func (h *TransactionHandler) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")

	var req UpdateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "bad_request", "Invalid request body")
		return
	}

	if err := req.Validate(); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	result, err := h.service.Update(ctx, id, req.ToPatch())
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to update transaction",
			slog.String("transaction_id", id),
			slog.String("error", err.Error()))
		respondDomainError(w, h.logger, err)
		return
	}

	h.invalidateAnalytics(r)
	respondJSON(w, h.logger, http.StatusOK, result)
}

// DeleteTransaction handles DELETE /api/v1/transactions/{id}
func (h *TransactionHandler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")

	result, err := h.service.Delete(ctx, id)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to delete transaction",
			slog.String("transaction_id", id),
			slog.String("error", err.Error()))
		respondDomainError(w, h.logger, err)
		return
	}

	h.invalidateAnalytics(r)
	respondJSON(w, h.logger, http.StatusOK, map[string]interface{}{
		"message":        "Transaction deleted successfully",
		"transaction_id": id,
		"backend":        result.Backend,
		"stock_warnings": result.StockWarnings,
	})
}

// parseListParams parses query parameters for listing transactions
func (h *TransactionHandler) parseListParams(r *http.Request) ports.TransactionListParams {
	params := ports.TransactionListParams{
		Page:      1,
		PageSize:  50,
		SortBy:    "date",
		SortOrder: "desc",
	}

	if page := r.URL.Query().Get("page"); page != "" {
		if p, err := strconv.Atoi(page); err == nil && p > 0 {
			params.Page = p
		}
	}

	if limit := r.URL.Query().Get("limit"); limit != "" {
		if l, err := strconv.Atoi(limit); err == nil && l > 0 {
			if l > 100 {
				params.PageSize = 100
			} else {
				params.PageSize = l
			}
		}
	}

	if txType := r.URL.Query().Get("type"); txType != "" {
		params.Filter.Type = domain.TransactionType(txType)
	}
	params.Filter.Search = r.URL.Query().Get("search")

	if from := r.URL.Query().Get("date_from"); from != "" {
		if t, err := time.Parse("2006-01-02", from); err == nil {
			params.Filter.DateFrom = &t
		}
	}
	if to := r.URL.Query().Get("date_to"); to != "" {
		if t, err := time.Parse("2006-01-02", to); err == nil {
			// Inclusive upper bound: the whole named day.
			end := t.AddDate(0, 0, 1).Add(-time.Nanosecond)
			params.Filter.DateTo = &end
		}
	}

	if sortBy := r.URL.Query().Get("sort"); sortBy != "" {
		params.SortBy = sortBy
	}
	if order := r.URL.Query().Get("order"); order == "asc" || order == "desc" {
		params.SortOrder = order
	}

	return params
}

// invalidateAnalytics drops cached aggregations after a mutation.
func (h *TransactionHandler) invalidateAnalytics(r *http.Request) {
	if h.analytics != nil {
		h.analytics.InvalidateCache(r.Context())
	}
}

// Request DTOs

// TransactionItemRequest represents one line item in a transaction request.
// TotalPrice may be supplied; it is kept when it matches Quantity*UnitPrice
// within the currency tolerance and re-derived otherwise.
type TransactionItemRequest struct {
	ItemName   string          `json:"item_name"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	TotalPrice decimal.Decimal `json:"total_price,omitempty"`
	Category   string          `json:"category,omitempty"`
}

// PartyRequest represents a supplier or customer in a transaction request
type PartyRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`
}

// CreateTransactionRequest represents the request body for creating a transaction
type CreateTransactionRequest struct {
	Type        string                   `json:"type"`
	Date        *time.Time               `json:"date,omitempty"`
	Items       []TransactionItemRequest `json:"items"`
	TotalAmount decimal.Decimal          `json:"total_amount,omitempty"`
	Notes       string                   `json:"notes,omitempty"`
	Supplier    *PartyRequest            `json:"supplier,omitempty"`
	Customer    *PartyRequest            `json:"customer,omitempty"`
}

// Validate validates the create transaction request
func (r *CreateTransactionRequest) Validate() error {
	txType := domain.TransactionType(r.Type)
	if !txType.Valid() {
		return fmt.Errorf("type must be purchase or sale")
	}
	if len(r.Items) == 0 {
		return fmt.Errorf("at least one item is required")
	}
	for i, item := range r.Items {
		if item.ItemName == "" {
			return fmt.Errorf("items[%d].item_name is required", i)
		}
		if item.Quantity <= 0 {
			return fmt.Errorf("items[%d].quantity must be positive", i)
		}
		if item.UnitPrice.IsNegative() {
			return fmt.Errorf("items[%d].unit_price cannot be negative", i)
		}
	}
	if txType == domain.TypePurchase && (r.Supplier == nil || r.Supplier.Name == "") {
		return fmt.Errorf("supplier is required for purchase transactions")
	}
	return nil
}

// ToDomain converts the request to a domain model. Supplied totals ride
// along; the domain keeps them when they are within tolerance of the derived
// values and re-derives them otherwise.
func (r *CreateTransactionRequest) ToDomain() *domain.Transaction {
	tx := &domain.Transaction{
		Type:        domain.TransactionType(r.Type),
		Items:       make([]domain.TransactionItem, len(r.Items)),
		TotalAmount: r.TotalAmount,
		Notes:       r.Notes,
	}

	if r.Date != nil {
		tx.Date = *r.Date
	} else {
		tx.Date = time.Now()
	}

	for i, item := range r.Items {
		tx.Items[i] = domain.TransactionItem{
			ItemName:   item.ItemName,
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice,
			TotalPrice: item.TotalPrice,
			Category:   item.Category,
		}
	}

	if r.Supplier != nil {
		tx.Supplier = &domain.Party{Name: r.Supplier.Name, Phone: r.Supplier.Phone, Email: r.Supplier.Email}
	}
	if r.Customer != nil {
		tx.Customer = &domain.Party{Name: r.Customer.Name, Phone: r.Customer.Phone, Email: r.Customer.Email}
	}

	return tx
}

// UpdateTransactionRequest represents the request body for a partial update.
// Absent fields are left unchanged; the transaction type and ID are fixed.
type UpdateTransactionRequest struct {
	Date     *time.Time               `json:"date,omitempty"`
	Items    []TransactionItemRequest `json:"items,omitempty"`
	Notes    *string                  `json:"notes,omitempty"`
	Supplier *PartyRequest            `json:"supplier,omitempty"`
	Customer *PartyRequest            `json:"customer,omitempty"`
}

// Validate validates the update transaction request
func (r *UpdateTransactionRequest) Validate() error {
	for i, item := range r.Items {
		if item.ItemName == "" {
			return fmt.Errorf("items[%d].item_name is required", i)
		}
		if item.Quantity <= 0 {
			return fmt.Errorf("items[%d].quantity must be positive", i)
		}
		if item.UnitPrice.IsNegative() {
			return fmt.Errorf("items[%d].unit_price cannot be negative", i)
		}
	}
	return nil
}

// ToPatch converts the request to a repository patch
func (r *UpdateTransactionRequest) ToPatch() ports.TransactionPatch {
	patch := ports.TransactionPatch{
		Date:  r.Date,
		Notes: r.Notes,
	}

	if r.Items != nil {
		patch.Items = make([]domain.TransactionItem, len(r.Items))
		for i, item := range r.Items {
			patch.Items[i] = domain.TransactionItem{
				ItemName:   item.ItemName,
				Quantity:   item.Quantity,
				UnitPrice:  item.UnitPrice,
				TotalPrice: item.TotalPrice,
				Category:   item.Category,
			}
		}
	}

	if r.Supplier != nil {
		patch.Supplier = &domain.Party{Name: r.Supplier.Name, Phone: r.Supplier.Phone, Email: r.Supplier.Email}
	}
	if r.Customer != nil {
		patch.Customer = &domain.Party{Name: r.Customer.Name, Phone: r.Customer.Phone, Email: r.Customer.Email}
	}

	return patch
}
