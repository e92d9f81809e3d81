package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/tealeg/xlsx/v3"

	"github.com/avashisht/boutique-be/internal/core/domain"
)

// CategoryClassifier infers a stock category from an item name when the
// workbook leaves the category column blank.
type CategoryClassifier struct {
	categoryKeywords map[string][]string
}

func NewCategoryClassifier() *CategoryClassifier {
	return &CategoryClassifier{
		categoryKeywords: map[string][]string{
			"Apparel": {"kurti", "saree", "sari", "lehenga", "dress", "top", "tunic",
				"blouse", "skirt", "gown", "salwar", "kameez", "dupatta", "shawl"},
			"Fabric": {"fabric", "cotton", "silk", "chiffon", "georgette", "linen",
				"rayon", "velvet", "brocade", "yard", "meter"},
			"Jewelry": {"earring", "necklace", "bangle", "bracelet", "ring", "anklet",
				"jhumka", "pendant", "chain", "nose pin"},
			"Footwear": {"sandal", "jutti", "mojari", "slipper", "heel", "flat",
				"shoe", "chappal"},
			"Accessories": {"bag", "clutch", "purse", "belt", "scarf", "stole",
				"hair clip", "bindi", "potli"},
			"Cosmetics": {"lipstick", "kajal", "mehendi", "henna", "sindoor",
				"cream", "lotion", "perfume", "attar"},
			"Home Decor": {"cushion", "curtain", "bedsheet", "rug", "wall hanging",
				"lamp", "diya", "toran", "tablecloth"},
		},
	}
}

// Classify scores each category by keyword hits and returns the best match,
// falling back to the ledger default when nothing matches.
func (c *CategoryClassifier) Classify(text string) string {
	textLower := strings.ToLower(text)

	category := domain.DefaultCategory
	maxScore := 0
	for cat, keywords := range c.categoryKeywords {
		score := 0
		for _, kw := range keywords {
			if strings.Contains(textLower, kw) {
				score++
			}
		}
		if score > maxScore {
			category = cat
			maxScore = score
		}
	}
	return category
}

// WorkbookImporter loads inventory and transaction rows from an Excel
// workbook and persists them through batched inserts.
type WorkbookImporter struct {
	classifier *CategoryClassifier
	logger     *slog.Logger
	db         *pgxpool.Pool
}

func NewWorkbookImporter(db *pgxpool.Pool, logger *slog.Logger) *WorkbookImporter {
	return &WorkbookImporter{
		classifier: NewCategoryClassifier(),
		logger:     logger,
		db:         db,
	}
}

// ImportResult summarizes one workbook import.
type ImportResult struct {
	Items        []domain.InventoryItem
	Transactions []*domain.Transaction
	SkippedRows  int
}

// Load reads the Inventory and Transactions sheets from the workbook.
// Sheet names are matched case-insensitively; a missing sheet is fine.
func (w *WorkbookImporter) Load(path string) (*ImportResult, error) {
	file, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	if len(file.Sheets) == 0 {
		return nil, fmt.Errorf("no sheets found in workbook")
	}

	result := &ImportResult{}
	for _, sheet := range file.Sheets {
		switch strings.ToLower(sheet.Name) {
		case "inventory", "stock":
			if err := w.loadInventorySheet(sheet, result); err != nil {
				return nil, fmt.Errorf("sheet %s: %w", sheet.Name, err)
			}
		case "transactions", "ledger":
			if err := w.loadTransactionSheet(sheet, result); err != nil {
				return nil, fmt.Errorf("sheet %s: %w", sheet.Name, err)
			}
		default:
			w.logger.Warn("skipping unrecognized sheet", slog.String("sheet", sheet.Name))
		}
	}

	w.logger.Info("loaded workbook",
		slog.String("file", path),
		slog.Int("items", len(result.Items)),
		slog.Int("transactions", len(result.Transactions)),
		slog.Int("skipped_rows", result.SkippedRows))
	return result, nil
}

// loadInventorySheet expects columns: Item Name, Category, Current Stock,
// Min Stock Level, Unit Price. The first row is a header.
func (w *WorkbookImporter) loadInventorySheet(sheet *xlsx.Sheet, result *ImportResult) error {
	rowIdx := 0
	return sheet.ForEachRow(func(r *xlsx.Row) error {
		if rowIdx == 0 {
			rowIdx++
			return nil
		}
		rowIdx++

		get := cellGetter(r)
		name := get(0)
		if name == "" {
			return nil
		}

		category := get(1)
		if category == "" {
			category = w.classifier.Classify(name)
		}

		stock, _ := strconv.Atoi(get(2))
		minLevel, _ := strconv.Atoi(get(3))
		price, err := parseAmount(get(4))
		if err != nil {
			w.logger.Warn("skipping inventory row with bad unit price",
				slog.Int("row", rowIdx), slog.String("item", name))
			result.SkippedRows++
			return nil
		}

		item := domain.InventoryItem{
			ItemName:      name,
			Category:      category,
			CurrentStock:  stock,
			MinStockLevel: minLevel,
			UnitPrice:     price,
		}
		item.PrepareForStorage()
		if err := item.Validate(); err != nil {
			w.logger.Warn("skipping invalid inventory row",
				slog.Int("row", rowIdx),
				slog.String("item", name),
				slog.String("error", err.Error()))
			result.SkippedRows++
			return nil
		}

		result.Items = append(result.Items, item)
		return nil
	})
}

// loadTransactionSheet expects columns: Type, Date, Item Name, Quantity,
// Unit Price, Party Name, Party Phone, Notes. One transaction per row.
func (w *WorkbookImporter) loadTransactionSheet(sheet *xlsx.Sheet, result *ImportResult) error {
	rowIdx := 0
	return sheet.ForEachRow(func(r *xlsx.Row) error {
		if rowIdx == 0 {
			rowIdx++
			return nil
		}
		rowIdx++

		get := cellGetter(r)
		txType := domain.TransactionType(strings.ToLower(get(0)))
		if get(0) == "" {
			return nil
		}

		date, err := parseDate(get(1))
		if err != nil {
			w.logger.Warn("skipping transaction row with bad date",
				slog.Int("row", rowIdx), slog.String("date", get(1)))
			result.SkippedRows++
			return nil
		}

		qty, _ := strconv.Atoi(get(3))
		price, err := parseAmount(get(4))
		if err != nil {
			w.logger.Warn("skipping transaction row with bad unit price",
				slog.Int("row", rowIdx), slog.String("item", get(2)))
			result.SkippedRows++
			return nil
		}

		tx := &domain.Transaction{
			Type: txType,
			Date: date,
			Items: []domain.TransactionItem{{
				ItemName:  get(2),
				Quantity:  qty,
				UnitPrice: price,
			}},
			Notes: get(7),
		}

		party := &domain.Party{Name: get(5), Phone: get(6)}
		switch txType {
		case domain.TypePurchase:
			tx.Supplier = party
		case domain.TypeSale:
			if party.Name != "" {
				tx.Customer = party
			}
		}

		tx.PrepareForStorage()
		if err := tx.Validate(); err != nil {
			w.logger.Warn("skipping invalid transaction row",
				slog.Int("row", rowIdx),
				slog.String("error", err.Error()))
			result.SkippedRows++
			return nil
		}

		result.Transactions = append(result.Transactions, tx)
		return nil
	})
}

// SaveItems persists inventory items inside one database transaction.
// Existing items are left untouched so re-running the seeder is safe.
func (w *WorkbookImporter) SaveItems(ctx context.Context, items []domain.InventoryItem) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := w.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, item := range items {
		batch.Queue(`
			INSERT INTO inventory (
				item_name, category, current_stock, min_stock_level,
				unit_price, total_value, last_updated, created_at
			) VALUES (
				$1, $2, $3, $4, $5, $6, $7, $8
			) ON CONFLICT (item_name) DO NOTHING`,
			item.ItemName, item.Category, item.CurrentStock, item.MinStockLevel,
			item.UnitPrice, item.TotalValue, item.LastUpdated, item.CreatedAt,
		)
	}

	br := tx.SendBatch(ctx, batch)
	for range items {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("failed to insert item: %w", err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to close batch results: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	w.logger.Info("saved inventory items", slog.Int("count", len(items)))
	return nil
}

// SaveTransactions persists transaction records inside one database
// transaction, serializing line items and parties to JSONB.
func (w *WorkbookImporter) SaveTransactions(ctx context.Context, txs []*domain.Transaction) error {
	if len(txs) == 0 {
		return nil
	}

	dbTx, err := w.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer dbTx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, t := range txs {
		itemsJSON, err := json.Marshal(t.Items)
		if err != nil {
			return fmt.Errorf("failed to marshal items for %s: %w", t.TransactionID, err)
		}
		supplierJSON, err := marshalParty(t.Supplier)
		if err != nil {
			return fmt.Errorf("failed to marshal supplier for %s: %w", t.TransactionID, err)
		}
		customerJSON, err := marshalParty(t.Customer)
		if err != nil {
			return fmt.Errorf("failed to marshal customer for %s: %w", t.TransactionID, err)
		}

		batch.Queue(`
			INSERT INTO transactions (
				transaction_id, transaction_type, transaction_date, items,
				total_amount, supplier, customer, notes, created_at, updated_at
			) VALUES (
				$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
			) ON CONFLICT (transaction_id) DO NOTHING`,
			t.TransactionID, string(t.Type), t.Date, itemsJSON,
			t.TotalAmount, supplierJSON, customerJSON, t.Notes, t.CreatedAt, t.UpdatedAt,
		)
	}

	br := dbTx.SendBatch(ctx, batch)
	for range txs {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("failed to insert transaction: %w", err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to close batch results: %w", err)
	}

	if err := dbTx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	w.logger.Info("saved transactions", slog.Int("count", len(txs)))
	return nil
}

func marshalParty(p *domain.Party) ([]byte, error) {
	if p == nil {
		return nil, nil
	}
	return json.Marshal(p)
}

// Helper functions

func cellGetter(r *xlsx.Row) func(int) string {
	return func(i int) string {
		c := r.GetCell(i)
		if c == nil {
			return ""
		}
		if s, err := c.FormattedValue(); err == nil {
			return strings.TrimSpace(s)
		}
		return strings.TrimSpace(c.String())
	}
}

func parseAmount(val string) (decimal.Decimal, error) {
	cleaned := strings.ReplaceAll(val, "₹", "")
	cleaned = strings.ReplaceAll(cleaned, "$", "")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(cleaned)
}

func parseDate(val string) (time.Time, error) {
	formats := []string{"2006-01-02", "02-01-2006", "01/02/2006", "2006-01-02 15:04:05", time.RFC3339}
	for _, f := range formats {
		if t, err := time.Parse(f, val); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", val)
}

// demoResult builds a small built-in dataset for local development when no
// workbook is supplied.
func demoResult() *ImportResult {
	price := func(s string) decimal.Decimal {
		d, _ := decimal.NewFromString(s)
		return d
	}

	items := []domain.InventoryItem{
		{ItemName: "Cotton Kurti - Blue", Category: "Apparel", CurrentStock: 20, MinStockLevel: 5, UnitPrice: price("450.00")},
		{ItemName: "Silk Saree - Red", Category: "Apparel", CurrentStock: 8, MinStockLevel: 3, UnitPrice: price("2200.00")},
		{ItemName: "Jhumka Earrings", Category: "Jewelry", CurrentStock: 30, MinStockLevel: 10, UnitPrice: price("180.00")},
		{ItemName: "Embroidered Clutch", Category: "Accessories", CurrentStock: 12, MinStockLevel: 4, UnitPrice: price("350.00")},
		{ItemName: "Chiffon Dupatta", Category: "Apparel", CurrentStock: 25, MinStockLevel: 8, UnitPrice: price("220.00")},
	}
	for i := range items {
		items[i].PrepareForStorage()
	}

	supplier := &domain.Party{Name: "Sharma Textiles", Phone: "9876500001"}
	txs := []*domain.Transaction{
		{
			Type: domain.TypePurchase,
			Date: time.Now().AddDate(0, 0, -7),
			Items: []domain.TransactionItem{
				{ItemName: "Cotton Kurti - Blue", Quantity: 20, UnitPrice: price("450.00")},
				{ItemName: "Chiffon Dupatta", Quantity: 25, UnitPrice: price("220.00")},
			},
			Supplier: supplier,
			Notes:    "Opening stock order",
		},
		{
			Type: domain.TypeSale,
			Date: time.Now().AddDate(0, 0, -2),
			Items: []domain.TransactionItem{
				{ItemName: "Cotton Kurti - Blue", Quantity: 2, UnitPrice: price("650.00")},
				{ItemName: "Jhumka Earrings", Quantity: 1, UnitPrice: price("250.00")},
			},
			Customer: &domain.Party{Name: "Walk-in"},
		},
	}
	for _, t := range txs {
		t.PrepareForStorage()
	}

	return &ImportResult{Items: items, Transactions: txs}
}

func main() {
	var (
		workbooksDir = flag.String("workbooks", "./seed", "Directory containing xlsx workbooks")
		stateFile    = flag.String("state", "./.seed_state.json", "State file for tracking progress")
		logLevel     = flag.String("log-level", "info", "Log level (debug, info, warn, error)")
		dryRun       = flag.Bool("dry-run", false, "Preview changes without modifying database")
		force        = flag.Bool("force", false, "Reprocess all workbooks")
		demo         = flag.Bool("demo", false, "Seed the built-in demo dataset instead of workbooks")
	)
	flag.Parse()

	var slogLevel slog.Level
	switch *logLevel {
	case "debug":
		slogLevel = slog.LevelDebug
	case "warn":
		slogLevel = slog.LevelWarn
	case "error":
		slogLevel = slog.LevelError
	default:
		slogLevel = slog.LevelInfo
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slogLevel}))
	slog.SetDefault(logger)

	dbURL := fmt.Sprintf("postgresql://%s:%s@%s:%s/%s?sslmode=%s",
		getEnv("DB_USER", "boutique"),
		getEnv("DB_PASSWORD", "boutique_dev_2026"),
		getEnv("DB_HOST", "localhost"),
		getEnv("DB_PORT", "5432"),
		getEnv("DB_NAME", "boutique_ledger"),
		getEnv("DB_SSL_MODE", "disable"),
	)

	ctx := context.Background()

	var db *pgxpool.Pool
	var err error

	if !*dryRun {
		db, err = pgxpool.New(ctx, dbURL)
		if err != nil {
			logger.Error("failed to connect to database", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer db.Close()
	}

	importer := NewWorkbookImporter(db, logger)

	if *demo {
		result := demoResult()
		if *dryRun {
			fmt.Printf("[DRY RUN] demo dataset: %d items, %d transactions\n",
				len(result.Items), len(result.Transactions))
			return
		}
		if err := importer.SaveItems(ctx, result.Items); err != nil {
			logger.Error("failed to save demo items", slog.String("error", err.Error()))
			os.Exit(1)
		}
		if err := importer.SaveTransactions(ctx, result.Transactions); err != nil {
			logger.Error("failed to save demo transactions", slog.String("error", err.Error()))
			os.Exit(1)
		}
		fmt.Printf("SUCCESS: seeded demo dataset - %d items, %d transactions\n",
			len(result.Items), len(result.Transactions))
		return
	}

	type SeederState struct {
		ProcessedWorkbooks []string  `json:"processed_workbooks"`
		ProcessedCount     int       `json:"processed_count"`
		LastUpdate         time.Time `json:"last_update"`
	}

	var state SeederState
	if !*force {
		if stateData, err := os.ReadFile(*stateFile); err == nil {
			json.Unmarshal(stateData, &state)
		}
	}

	workbooks, err := filepath.Glob(filepath.Join(*workbooksDir, "*.xlsx"))
	if err != nil {
		logger.Error("failed to find workbooks", slog.String("error", err.Error()))
		os.Exit(1)
	}

	totalProcessed := 0
	totalItems := 0
	totalTransactions := 0
	failedWorkbooks := []string{}

	for i, wb := range workbooks {
		name := filepath.Base(wb)
		fmt.Printf("PROGRESS: Processing %d/%d: %s\n", i+1, len(workbooks), name)

		if !*force {
			processed := false
			for _, p := range state.ProcessedWorkbooks {
				if p == name {
					processed = true
					break
				}
			}
			if processed {
				logger.Info("skipping already processed workbook", slog.String("workbook", name))
				continue
			}
		}

		result, err := importer.Load(wb)
		if err != nil {
			logger.Error("failed to load workbook",
				slog.String("workbook", name),
				slog.String("error", err.Error()))
			failedWorkbooks = append(failedWorkbooks, name)
			continue
		}

		if len(result.Items) == 0 && len(result.Transactions) == 0 {
			logger.Warn("no rows found in workbook", slog.String("workbook", name))
			failedWorkbooks = append(failedWorkbooks, fmt.Sprintf("%s (empty)", name))
			continue
		}

		if !*dryRun {
			if err := importer.SaveItems(ctx, result.Items); err != nil {
				logger.Error("failed to save items",
					slog.String("workbook", name),
					slog.String("error", err.Error()))
				failedWorkbooks = append(failedWorkbooks, name)
				continue
			}
			if err := importer.SaveTransactions(ctx, result.Transactions); err != nil {
				logger.Error("failed to save transactions",
					slog.String("workbook", name),
					slog.String("error", err.Error()))
				failedWorkbooks = append(failedWorkbooks, name)
				continue
			}
		}

		fmt.Printf("SUCCESS: Processed %s - %d items, %d transactions\n",
			name, len(result.Items), len(result.Transactions))

		totalProcessed++
		totalItems += len(result.Items)
		totalTransactions += len(result.Transactions)

		state.ProcessedWorkbooks = append(state.ProcessedWorkbooks, name)
		state.ProcessedCount = len(state.ProcessedWorkbooks)
		state.LastUpdate = time.Now()

		if !*dryRun {
			stateData, _ := json.MarshalIndent(state, "", "  ")
			os.WriteFile(*stateFile, stateData, 0644)
		}
	}

	fmt.Println("\n" + strings.Repeat("=", 60))
	fmt.Println("SEEDING OPERATION SUMMARY")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("Workbooks Processed: %d\n", totalProcessed)
	fmt.Printf("Items Created: %d\n", totalItems)
	fmt.Printf("Transactions Created: %d\n", totalTransactions)

	if len(failedWorkbooks) > 0 {
		fmt.Printf("\nFailed/Empty Workbooks (%d):\n", len(failedWorkbooks))
		for _, w := range failedWorkbooks {
			fmt.Printf("  - %s\n", w)
		}
	}

	logger.Info("seed operation completed",
		slog.Int("workbooks_processed", totalProcessed),
		slog.Int("items_created", totalItems),
		slog.Int("transactions_created", totalTransactions),
		slog.Int("failed_workbooks", len(failedWorkbooks)))

	if *dryRun {
		fmt.Println("\n[DRY RUN] No changes were made to the database")
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
