//go:build e2e
// +build e2e

package e2e_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/avashisht/boutique-be/internal/adapters/failover"
	"github.com/avashisht/boutique-be/internal/adapters/memstore"
	"github.com/avashisht/boutique-be/internal/core/ports"
	"github.com/avashisht/boutique-be/internal/core/services"
	"github.com/avashisht/boutique-be/internal/handlers"
	"github.com/avashisht/boutique-be/test/helpers"
)

// TransactionE2ESuite drives the full HTTP surface against the in-memory
// fallback store, the same wiring the API boots with when no database is
// configured.
type TransactionE2ESuite struct {
	suite.Suite
	server  *httptest.Server
	client  *http.Client
	baseURL string
}

func (s *TransactionE2ESuite) SetupTest() {
	s.server = s.startTestServer()
	s.client = &http.Client{Timeout: 10 * time.Second}
	s.baseURL = s.server.URL + "/api/v1"
}

func (s *TransactionE2ESuite) TearDownTest() {
	s.server.Close()
}

func (s *TransactionE2ESuite) TestPurchaseSaleLifecycle() {
	// 1. Record a purchase. Stock appears on the ledger as a side effect.
	purchase := map[string]interface{}{
		"type": "purchase",
		"items": []map[string]interface{}{
			{"item_name": "Cotton Kurti - Blue", "quantity": 10, "unit_price": "100", "category": "Apparel"},
		},
		"supplier": map[string]interface{}{"name": "Sharma Textiles", "phone": "9876500001"},
	}

	resp := s.makeRequest("POST", "/transactions", purchase)
	s.Equal(http.StatusCreated, resp.StatusCode)

	created := s.decodeData(resp)
	tx := created["transaction"].(map[string]interface{})
	purchaseID := tx["transaction_id"].(string)
	s.Regexp(`^PUR-\d{8}-[A-Z0-9]{6}$`, purchaseID)
	s.Empty(created["stock_warnings"])

	s.assertStock("Cotton Kurti - Blue", 10, "1000")

	// 2. Sell four units.
	sale := map[string]interface{}{
		"type": "sale",
		"items": []map[string]interface{}{
			{"item_name": "Cotton Kurti - Blue", "quantity": 4, "unit_price": "150"},
		},
		"customer": map[string]interface{}{"name": "Walk-in"},
	}

	resp = s.makeRequest("POST", "/transactions", sale)
	s.Equal(http.StatusCreated, resp.StatusCode)

	saleData := s.decodeData(resp)
	saleTx := saleData["transaction"].(map[string]interface{})
	saleID := saleTx["transaction_id"].(string)
	s.Regexp(`^SAL-`, saleID)

	s.assertStock("Cotton Kurti - Blue", 6, "600")

	// 3. Reads are side-effect free.
	resp = s.makeRequest("GET", "/transactions/"+purchaseID, nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	resp.Body.Close()
	s.assertStock("Cotton Kurti - Blue", 6, "600")

	// 4. Deleting the sale reverses its stock effect.
	resp = s.makeRequest("DELETE", "/transactions/"+saleID, nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	resp.Body.Close()
	s.assertStock("Cotton Kurti - Blue", 10, "1000")

	// 5. Shrinking the purchase nets the difference off the ledger.
	update := map[string]interface{}{
		"items": []map[string]interface{}{
			{"item_name": "Cotton Kurti - Blue", "quantity": 6, "unit_price": "100"},
		},
	}
	resp = s.makeRequest("PUT", "/transactions/"+purchaseID, update)
	s.Equal(http.StatusOK, resp.StatusCode)

	updated := s.decodeData(resp)
	updatedTx := updated["transaction"].(map[string]interface{})
	s.Equal(purchaseID, updatedTx["transaction_id"], "identifier survives updates")

	s.assertStock("Cotton Kurti - Blue", 6, "600")
}

func (s *TransactionE2ESuite) TestOversellIsRecordedWithWarning() {
	s.createPurchase("Silk Saree - Red", 3, "2200")

	sale := map[string]interface{}{
		"type": "sale",
		"items": []map[string]interface{}{
			{"item_name": "Silk Saree - Red", "quantity": 5, "unit_price": "2600"},
		},
	}

	// The record write is the commit point; the stock shortfall comes back
	// as a warning on the response, not as a failure.
	resp := s.makeRequest("POST", "/transactions", sale)
	s.Equal(http.StatusCreated, resp.StatusCode)

	data := s.decodeData(resp)
	warnings := data["stock_warnings"].([]interface{})
	s.Require().Len(warnings, 1)

	s.assertStock("Silk Saree - Red", 3, "6600")

	// The overselling sale is queryable like any other record.
	saleTx := data["transaction"].(map[string]interface{})
	resp = s.makeRequest("GET", "/transactions/"+saleTx["transaction_id"].(string), nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func (s *TransactionE2ESuite) TestValidationErrors() {
	cases := []struct {
		name string
		body map[string]interface{}
		code string
	}{
		{
			name: "unknown type",
			body: map[string]interface{}{
				"type":  "refund",
				"items": []map[string]interface{}{{"item_name": "X", "quantity": 1, "unit_price": "10"}},
			},
			code: "validation_error",
		},
		{
			name: "no items",
			body: map[string]interface{}{"type": "sale"},
			code: "validation_error",
		},
		{
			name: "purchase without supplier",
			body: map[string]interface{}{
				"type":  "purchase",
				"items": []map[string]interface{}{{"item_name": "X", "quantity": 1, "unit_price": "10"}},
			},
			code: "validation_error",
		},
	}

	for _, tc := range cases {
		s.Run(tc.name, func() {
			resp := s.makeRequest("POST", "/transactions", tc.body)
			s.Equal(http.StatusBadRequest, resp.StatusCode)

			env := s.decodeEnvelope(resp)
			s.False(env["success"].(bool))
			apiErr := env["error"].(map[string]interface{})
			s.Equal(tc.code, apiErr["code"])
		})
	}
}

func (s *TransactionE2ESuite) TestUnknownTransactionIs404() {
	resp := s.makeRequest("GET", "/transactions/SAL-20260101-ZZZZZZ", nil)
	s.Equal(http.StatusNotFound, resp.StatusCode)

	env := s.decodeEnvelope(resp)
	s.False(env["success"].(bool))
	s.Equal("not_found", env["error"].(map[string]interface{})["code"])
}

func (s *TransactionE2ESuite) TestDirectInventoryAdjustmentIs422WhenOverdrawn() {
	s.createPurchase("Jhumka Earrings", 2, "350")

	// PUT with a negative stock is a validation error; selling below zero
	// through the transaction path is the insufficient_stock case, checked
	// at the ledger.
	update := map[string]interface{}{"current_stock": -1}
	resp := s.makeRequest("PUT", "/inventory/Jhumka Earrings", update)
	s.Equal(http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func (s *TransactionE2ESuite) TestListFiltersAndPagination() {
	s.createPurchase("Item A", 1, "100")
	s.createPurchase("Item B", 1, "200")

	sale := map[string]interface{}{
		"type":  "sale",
		"items": []map[string]interface{}{{"item_name": "Item A", "quantity": 1, "unit_price": "150"}},
	}
	resp := s.makeRequest("POST", "/transactions", sale)
	s.Equal(http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = s.makeRequest("GET", "/transactions?type=purchase", nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	data := s.decodeData(resp)
	s.Equal(float64(2), data["total_count"])

	resp = s.makeRequest("GET", "/transactions?limit=2", nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	data = s.decodeData(resp)
	s.Equal(float64(2), data["total_pages"])
	s.Len(data["transactions"].([]interface{}), 2)
}

func (s *TransactionE2ESuite) TestAnalyticsReflectLedger() {
	s.createPurchase("Chiffon Dupatta", 5, "300")

	sale := map[string]interface{}{
		"type":  "sale",
		"items": []map[string]interface{}{{"item_name": "Chiffon Dupatta", "quantity": 2, "unit_price": "450"}},
	}
	resp := s.makeRequest("POST", "/transactions", sale)
	s.Equal(http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = s.makeRequest("GET", "/analytics/overview", nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	overview := s.decodeData(resp)
	s.Equal(float64(1), overview["sales_count"])
	s.Equal(float64(1), overview["purchase_count"])
	s.Equal(float64(1), overview["inventory_count"])
}

func (s *TransactionE2ESuite) TestHealthReportsFallbackBackend() {
	resp, err := s.client.Get(s.server.URL + "/health")
	s.Require().NoError(err)
	s.Equal(http.StatusOK, resp.StatusCode)

	// Health is the one endpoint outside the response envelope.
	var health map[string]interface{}
	s.decodeResponse(resp, &health)
	s.Equal("fallback", health["backend"])

	services := health["services"].(map[string]interface{})
	database := services["database"].(map[string]interface{})
	s.Equal("disabled", database["status"])
}

// Helper methods

func (s *TransactionE2ESuite) startTestServer() *httptest.Server {
	log := helpers.TestLogger().Logger

	store := memstore.NewStore(log)
	fallbackSet := ports.StoreSet{
		Backend:      ports.BackendFallback,
		Transactions: store.Transactions(),
		Ledger:       store.Ledger(),
		Users:        store.Users(),
	}

	// No primary, no pinger: the router stays pinned to the fallback.
	router := failover.NewRouter(ports.StoreSet{}, fallbackSet, failover.NewSelector(true), nil, log)

	reconciler := services.NewReconciler(log)
	transactionService := services.NewTransactionService(router, reconciler, nil, log)
	inventoryService := services.NewInventoryService(router, log)
	analyticsService := services.NewAnalyticsService(router, nil, log)

	transactionHandler := handlers.NewTransactionHandler(transactionService, analyticsService, log)
	inventoryHandler := handlers.NewInventoryHandler(inventoryService, analyticsService, log)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService, nil, log)
	healthHandler := handlers.NewHealthHandler(router, nil, nil, helpers.LoadTestConfig(), log)

	mux := http.NewServeMux()
	apiV1 := "/api/v1"

	mux.HandleFunc("GET /health", healthHandler.Health)

	mux.HandleFunc("POST "+apiV1+"/transactions", transactionHandler.CreateTransaction)
	mux.HandleFunc("GET "+apiV1+"/transactions", transactionHandler.ListTransactions)
	mux.HandleFunc("GET "+apiV1+"/transactions/{id}", transactionHandler.GetTransaction)
	mux.HandleFunc("PUT "+apiV1+"/transactions/{id}", transactionHandler.UpdateTransaction)
	mux.HandleFunc("DELETE "+apiV1+"/transactions/{id}", transactionHandler.DeleteTransaction)

	mux.HandleFunc("GET "+apiV1+"/inventory", inventoryHandler.ListItems)
	mux.HandleFunc("GET "+apiV1+"/inventory/{name}", inventoryHandler.GetItem)
	mux.HandleFunc("POST "+apiV1+"/inventory", inventoryHandler.CreateItem)
	mux.HandleFunc("PUT "+apiV1+"/inventory/{name}", inventoryHandler.UpdateItem)
	mux.HandleFunc("DELETE "+apiV1+"/inventory/{name}", inventoryHandler.DeleteItem)

	mux.HandleFunc("GET "+apiV1+"/analytics/overview", analyticsHandler.Overview)

	return httptest.NewServer(mux)
}

func (s *TransactionE2ESuite) createPurchase(itemName string, qty int, price string) {
	purchase := map[string]interface{}{
		"type": "purchase",
		"items": []map[string]interface{}{
			{"item_name": itemName, "quantity": qty, "unit_price": price},
		},
		"supplier": map[string]interface{}{"name": "Sharma Textiles"},
	}
	resp := s.makeRequest("POST", "/transactions", purchase)
	s.Require().Equal(http.StatusCreated, resp.StatusCode)
	resp.Body.Close()
}

func (s *TransactionE2ESuite) assertStock(itemName string, stock int, totalValue string) {
	s.T().Helper()

	resp := s.makeRequest("GET", "/inventory/"+itemName, nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	data := s.decodeData(resp)
	item, ok := data["item"].(map[string]interface{})
	s.Require().True(ok, "item payload should be an object")
	s.Equal(float64(stock), item["current_stock"])
	s.Equal(totalValue, fmt.Sprint(item["total_value"]))
}

func (s *TransactionE2ESuite) makeRequest(method, path string, body interface{}) *http.Response {
	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		s.Require().NoError(err)
		reqBody = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequest(method, s.baseURL+path, reqBody)
	s.Require().NoError(err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.Do(req)
	s.Require().NoError(err)
	return resp
}

func (s *TransactionE2ESuite) decodeEnvelope(resp *http.Response) map[string]interface{} {
	var env map[string]interface{}
	s.decodeResponse(resp, &env)
	return env
}

func (s *TransactionE2ESuite) decodeData(resp *http.Response) map[string]interface{} {
	env := s.decodeEnvelope(resp)
	s.Require().Equal(true, env["success"])
	data, ok := env["data"].(map[string]interface{})
	s.Require().True(ok, "response data should be an object")
	return data
}

func (s *TransactionE2ESuite) decodeResponse(resp *http.Response, v interface{}) {
	defer resp.Body.Close()
	err := json.NewDecoder(resp.Body).Decode(v)
	s.Require().NoError(err)
}

func TestTransactionE2ESuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping E2E tests in short mode")
	}
	suite.Run(t, new(TransactionE2ESuite))
}
