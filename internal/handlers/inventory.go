// internal/handlers/inventory.go
package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/avashisht/boutique-be/internal/core/domain"
	"github.com/avashisht/boutique-be/internal/core/ports"
	"github.com/avashisht/boutique-be/internal/core/services"
)

// InventoryHandler handles inventory-related HTTP requests. These endpoints
// edit the ledger directly, without a reconciler pass.
type InventoryHandler struct {
	service   *services.InventoryService
	analytics *services.AnalyticsService
	logger    *slog.Logger
}

// NewInventoryHandler creates a new inventory handler. analytics may be nil.
func NewInventoryHandler(service *services.InventoryService, analytics *services.AnalyticsService, logger *slog.Logger) *InventoryHandler {
	return &InventoryHandler{
		service:   service,
		analytics: analytics,
		logger:    logger.With(slog.String("handler", "inventory")),
	}
}

// GetItem handles GET /api/v1/inventory/{name}
func (h *InventoryHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name := r.PathValue("name")

	item, backend, err := h.service.Get(ctx, name)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to get inventory item",
			slog.String("item_name", name),
			slog.String("error", err.Error()))
		respondDomainError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, map[string]interface{}{
		"item":    item,
		"backend": backend,
	})
}

// ListItems handles GET /api/v1/inventory
func (h *InventoryHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	params := h.parseListParams(r)

	result, backend, err := h.service.List(ctx, params)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list inventory",
			slog.String("error", err.Error()))
		respondDomainError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, map[string]interface{}{
		"items":       result.Items,
		"page":        result.Page,
		"page_size":   result.PageSize,
		"total_count": result.TotalCount,
		"total_pages": result.TotalPages,
		"backend":     backend,
	})
}

// CreateItem handles POST /api/v1/inventory
func (h *InventoryHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "bad_request", "Invalid request body")
		return
	}

	if err := req.Validate(); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	item, backend, err := h.service.Create(ctx, req.ToDomain())
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to create inventory item",
			slog.String("item_name", req.ItemName),
			slog.String("error", err.Error()))
		respondDomainError(w, h.logger, err)
		return
	}

	h.invalidateAnalytics(r)
	respondJSON(w, h.logger, http.StatusCreated, map[string]interface{}{
		"item":    item,
		"backend": backend,
	})
}

// UpdateItem handles PUT /api/v1/inventory/{name}
func (h *InventoryHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name := r.PathValue("name")

	var patch services.InventoryPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "bad_request", "Invalid request body")
		return
	}

	item, backend, err := h.service.Update(ctx, name, patch)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to update inventory item",
			slog.String("item_name", name),
			slog.String("error", err.Error()))
		respondDomainError(w, h.logger, err)
		return
	}

	h.invalidateAnalytics(r)
	respondJSON(w, h.logger, http.StatusOK, map[string]interface{}{
		"item":    item,
		"backend": backend,
	})
}

// DeleteItem handles DELETE /api/v1/inventory/{name}
func (h *InventoryHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name := r.PathValue("name")

	backend, err := h.service.Delete(ctx, name)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to delete inventory item",
			slog.String("item_name", name),
			slog.String("error", err.Error()))
		respondDomainError(w, h.logger, err)
		return
	}

	h.invalidateAnalytics(r)
	respondJSON(w, h.logger, http.StatusOK, map[string]interface{}{
		"message":   "Inventory item deleted successfully",
		"item_name": name,
		"backend":   backend,
	})
}

// parseListParams parses query parameters for listing inventory
func (h *InventoryHandler) parseListParams(r *http.Request) ports.LedgerListParams {
	params := ports.LedgerListParams{
		Page:      1,
		PageSize:  50,
		SortBy:    "name",
		SortOrder: "asc",
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

	params.Search = r.URL.Query().Get("search")
	params.Category = r.URL.Query().Get("category")
	params.LowStock = r.URL.Query().Get("low_stock") == "true"

	if sortBy := r.URL.Query().Get("sort"); sortBy != "" {
		params.SortBy = sortBy
	}
	if order := r.URL.Query().Get("order"); order == "asc" || order == "desc" {
		params.SortOrder = order
	}

	return params
}

// invalidateAnalytics drops cached aggregations after a mutation.
func (h *InventoryHandler) invalidateAnalytics(r *http.Request) {
	if h.analytics != nil {
		h.analytics.InvalidateCache(r.Context())
	}
}

// Request DTOs

// CreateItemRequest represents the request body for creating an inventory item
type CreateItemRequest struct {
	ItemName      string          `json:"item_name"`
	Category      string          `json:"category,omitempty"`
	CurrentStock  int             `json:"current_stock"`
	MinStockLevel int             `json:"min_stock_level,omitempty"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
}

// Validate validates the create item request
func (r *CreateItemRequest) Validate() error {
	if r.ItemName == "" {
		return fmt.Errorf("item_name is required")
	}
	if r.CurrentStock < 0 {
		return fmt.Errorf("current_stock cannot be negative")
	}
	if r.MinStockLevel < 0 {
		return fmt.Errorf("min_stock_level cannot be negative")
	}
	if r.UnitPrice.IsNegative() {
		return fmt.Errorf("unit_price cannot be negative")
	}
	return nil
}

// ToDomain converts the request to a domain model
func (r *CreateItemRequest) ToDomain() *domain.InventoryItem {
	return &domain.InventoryItem{
		ItemName:      r.ItemName,
		Category:      r.Category,
		CurrentStock:  r.CurrentStock,
		MinStockLevel: r.MinStockLevel,
		UnitPrice:     r.UnitPrice,
	}
}
