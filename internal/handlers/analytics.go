// internal/handlers/analytics.go
package handlers

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/tealeg/xlsx/v3"

	"github.com/avashisht/boutique-be/internal/adapters/storage"
	"github.com/avashisht/boutique-be/internal/core/domain"
	"github.com/avashisht/boutique-be/internal/core/services"
)

// AnalyticsHandler handles the read-only aggregation endpoints and the xlsx
// export.
type AnalyticsHandler struct {
	service  *services.AnalyticsService
	archiver storage.Archiver
	logger   *slog.Logger
}

// NewAnalyticsHandler creates a new analytics handler. archiver may be nil;
// exports are then only streamed to the client, not archived.
func NewAnalyticsHandler(service *services.AnalyticsService, archiver storage.Archiver, logger *slog.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		service:  service,
		archiver: archiver,
		logger:   logger.With(slog.String("handler", "analytics")),
	}
}

// Overview handles GET /api/v1/analytics/overview
func (h *AnalyticsHandler) Overview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	overview, err := h.service.Overview(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to compute overview",
			slog.String("error", err.Error()))
		respondDomainError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, overview)
}

// SalesTrends handles GET /api/v1/analytics/sales-trends
func (h *AnalyticsHandler) SalesTrends(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	days := 30
	if d := r.URL.Query().Get("days"); d != "" {
		if parsed, err := strconv.Atoi(d); err == nil && parsed > 0 {
			if parsed > 365 {
				parsed = 365
			}
			days = parsed
		}
	}

	trends, err := h.service.SalesTrends(ctx, days)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to compute sales trends",
			slog.Int("days", days),
			slog.String("error", err.Error()))
		respondDomainError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, map[string]interface{}{
		"days":   days,
		"trends": trends,
	})
}

// ProfitLoss handles GET /api/v1/analytics/profit-loss
func (h *AnalyticsHandler) ProfitLoss(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var from, to *time.Time
	if f := r.URL.Query().Get("date_from"); f != "" {
		if t, err := time.Parse("2006-01-02", f); err == nil {
			from = &t
		}
	}
	if v := r.URL.Query().Get("date_to"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			end := t.AddDate(0, 0, 1).Add(-time.Nanosecond)
			to = &end
		}
	}

	pl, err := h.service.ProfitLoss(ctx, from, to)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to compute profit and loss",
			slog.String("error", err.Error()))
		respondDomainError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, pl)
}

// PurchaseAnalytics handles GET /api/v1/analytics/purchase-analytics
func (h *AnalyticsHandler) PurchaseAnalytics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	pa, err := h.service.PurchaseAnalytics(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to compute purchase analytics",
			slog.String("error", err.Error()))
		respondDomainError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, pa)
}

// InventoryInsights handles GET /api/v1/analytics/inventory-insights
func (h *AnalyticsHandler) InventoryInsights(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	insights, err := h.service.InventoryInsights(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to compute inventory insights",
			slog.String("error", err.Error()))
		respondDomainError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, insights)
}

// Export handles GET /api/v1/analytics/export
func (h *AnalyticsHandler) Export(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	data, err := h.service.ExportData(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to load export data",
			slog.String("error", err.Error()))
		respondDomainError(w, h.logger, err)
		return
	}

	workbook, err := h.generateWorkbook(data)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to generate export workbook",
			slog.String("error", err.Error()))
		respondError(w, h.logger, http.StatusInternalServerError, "internal_error", "Failed to generate export")
		return
	}

	filename := fmt.Sprintf("ledger_export_%s.xlsx", data.GeneratedAt.Format("20060102_150405"))

	h.archiveWorkbook(filename, workbook)

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(workbook)))
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")

	if _, err := w.Write(workbook); err != nil {
		h.logger.ErrorContext(ctx, "failed to write export response",
			slog.String("error", err.Error()))
		return
	}

	h.logger.InfoContext(ctx, "export completed",
		slog.Int("items", len(data.Items)),
		slog.Int("transactions", len(data.Transactions)),
		slog.String("filename", filename))
}

// generateWorkbook renders the export dataset as a two-sheet xlsx workbook.
func (h *AnalyticsHandler) generateWorkbook(data *services.ExportData) ([]byte, error) {
	file := xlsx.NewFile()

	if err := h.addInventorySheet(file, data.Items); err != nil {
		return nil, err
	}
	if err := h.addTransactionSheet(file, data.Transactions); err != nil {
		return nil, err
	}

	var buffer bytes.Buffer
	if err := file.Write(&buffer); err != nil {
		return nil, fmt.Errorf("failed to write workbook to buffer: %w", err)
	}

	return buffer.Bytes(), nil
}

func (h *AnalyticsHandler) addInventorySheet(file *xlsx.File, items []*domain.InventoryItem) error {
	sheet, err := file.AddSheet("Inventory")
	if err != nil {
		return fmt.Errorf("failed to add inventory sheet: %w", err)
	}

	headers := []string{
		"Item Name", "Category", "Current Stock", "Min Stock Level",
		"Unit Price", "Total Value", "Low Stock", "Last Updated",
	}
	headerRow := sheet.AddRow()
	for _, header := range headers {
		cell := headerRow.AddCell()
		cell.Value = header
		cell.GetStyle().Font.Bold = true
	}

	for _, item := range items {
		row := sheet.AddRow()
		values := []string{
			item.ItemName,
			item.Category,
			strconv.Itoa(item.CurrentStock),
			strconv.Itoa(item.MinStockLevel),
			item.UnitPrice.StringFixed(2),
			item.TotalValue.StringFixed(2),
			boolCell(item.IsLowStock()),
			item.LastUpdated.Format("2006-01-02 15:04:05"),
		}
		for _, value := range values {
			row.AddCell().Value = value
		}
	}

	for i := 0; i < len(headers); i++ {
		sheet.SetColWidth(i, i, 18)
	}
	return nil
}

func (h *AnalyticsHandler) addTransactionSheet(file *xlsx.File, txs []*domain.Transaction) error {
	sheet, err := file.AddSheet("Transactions")
	if err != nil {
		return fmt.Errorf("failed to add transactions sheet: %w", err)
	}

	headers := []string{
		"Transaction ID", "Type", "Date", "Item Name", "Quantity",
		"Unit Price", "Line Total", "Transaction Total", "Party", "Notes",
	}
	headerRow := sheet.AddRow()
	for _, header := range headers {
		cell := headerRow.AddCell()
		cell.Value = header
		cell.GetStyle().Font.Bold = true
	}

	// One row per line item; transaction-level fields repeat on each row.
	for _, tx := range txs {
		party := ""
		if tx.Supplier != nil {
			party = tx.Supplier.Name
		} else if tx.Customer != nil {
			party = tx.Customer.Name
		}

		for _, item := range tx.Items {
			row := sheet.AddRow()
			values := []string{
				tx.TransactionID,
				string(tx.Type),
				tx.Date.Format("2006-01-02"),
				item.ItemName,
				strconv.Itoa(item.Quantity),
				item.UnitPrice.StringFixed(2),
				item.TotalPrice.StringFixed(2),
				tx.TotalAmount.StringFixed(2),
				party,
				tx.Notes,
			}
			for _, value := range values {
				row.AddCell().Value = value
			}
		}
	}

	for i := 0; i < len(headers); i++ {
		sheet.SetColWidth(i, i, 18)
	}
	return nil
}

// archiveWorkbook pushes the generated workbook to the archive bucket in the
// background. Failures never affect the download.
func (h *AnalyticsHandler) archiveWorkbook(filename string, workbook []byte) {
	if h.archiver == nil {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		key := "exports/" + filename
		if _, err := h.archiver.Archive(ctx, key, bytes.NewReader(workbook),
			"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"); err != nil {
			h.logger.WarnContext(ctx, "failed to archive export",
				slog.String("key", key),
				slog.String("error", err.Error()))
		}
	}()
}

func boolCell(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}
