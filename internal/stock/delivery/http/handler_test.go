package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poslink/stock-service/internal/stock/domain"
	"github.com/poslink/stock-service/internal/stock/repository/memory"
	"github.com/poslink/stock-service/internal/stock/usecase/command"
	"github.com/poslink/stock-service/internal/stock/usecase/query"
	"github.com/poslink/stock-service/pkg/auth"
)

func newTestRouter(t *testing.T, repo *memory.Repository) *mux.Router {
	t.Helper()

	transferHandler := command.NewTransferInventoryHandler(repo.Stores(), repo.Products(), repo, repo, nil).
		WithClock(func() time.Time { return time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC) })

	handler := NewStockHandler(
		transferHandler,
		command.NewReceiveLotHandler(repo.Stores(), repo),
		query.NewAvailableStockHandler(repo),
		query.NewCheckAvailableStockHandler(repo, repo.Products()),
		query.NewListLotsHandler(repo),
		query.NewGetTransferHandler(repo.Transfers()),
		query.NewListTransfersHandler(repo.Transfers()),
	)

	router := mux.NewRouter()
	handler.RegisterRoutes(router)
	return router
}

func seedLedger(t *testing.T, repo *memory.Repository) {
	t.Helper()
	repo.SeedStore(domain.Store{ID: "store-a", TenantID: "tenant-1", Name: "Downtown"})
	repo.SeedStore(domain.Store{ID: "store-b", TenantID: "tenant-1", Name: "Riverside"})
	repo.SeedStore(domain.Store{ID: "store-x", TenantID: "tenant-2", Name: "Elsewhere"})
	repo.SeedProduct(domain.Product{ID: "prod-1", Name: "Espresso Beans"})
	repo.SeedLot(domain.PurchaseLot{
		ID:                uuid.NewString(),
		ProductID:         "prod-1",
		StoreID:           "store-a",
		ImportDate:        time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		OriginalQuantity:  10,
		RemainingQuantity: 10,
		UnitCost:          decimal.NewFromInt(5000),
		UnitID:            "unit-pcs",
	})
}

func bearerToken(t *testing.T) string {
	t.Helper()
	token, err := auth.GenerateToken("user-1", "alice", "tenant-1", "manager")
	require.NoError(t, err)
	return "Bearer " + token
}

func doTransfer(t *testing.T, router *mux.Router, token string, body string) (*httptest.ResponseRecorder, Response) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/inventory-transfer", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var resp Response
	if rec.Body.Len() > 0 {
		_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	}
	return rec, resp
}

func TestTransferEndpointRequiresAuth(t *testing.T) {
	repo := memory.New()
	seedLedger(t, repo)
	router := newTestRouter(t, repo)

	rec, _ := doTransfer(t, router, "", `{}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = doTransfer(t, router, "Bearer not-a-token", `{}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestTransferEndpointValidation(t *testing.T) {
	repo := memory.New()
	seedLedger(t, repo)
	router := newTestRouter(t, repo)
	token := bearerToken(t)

	t.Run("missing store ids", func(t *testing.T) {
		rec, resp := doTransfer(t, router, token, `{"items":[{"product_id":"prod-1","quantity":1,"unit_id":"unit-pcs"}]}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, CodeMissingStoreIDs, resp.Code)
	})

	t.Run("missing items", func(t *testing.T) {
		rec, resp := doTransfer(t, router, token, `{"source_store_id":"store-a","destination_store_id":"store-b"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, CodeMissingItems, resp.Code)
	})

	t.Run("invalid item", func(t *testing.T) {
		rec, resp := doTransfer(t, router, token, `{"source_store_id":"store-a","destination_store_id":"store-b","items":[{"product_id":"prod-1","quantity":0,"unit_id":"unit-pcs"}]}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, CodeInvalidItem, resp.Code)
	})

	t.Run("same store", func(t *testing.T) {
		rec, resp := doTransfer(t, router, token, `{"source_store_id":"store-a","destination_store_id":"store-a","items":[{"product_id":"prod-1","quantity":1,"unit_id":"unit-pcs"}]}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "SAME_STORE", resp.Code)
	})

	t.Run("unknown source store", func(t *testing.T) {
		rec, resp := doTransfer(t, router, token, `{"source_store_id":"store-ghost","destination_store_id":"store-b","items":[{"product_id":"prod-1","quantity":1,"unit_id":"unit-pcs"}]}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "SOURCE_STORE_NOT_FOUND", resp.Code)
	})

	t.Run("cross tenant", func(t *testing.T) {
		rec, resp := doTransfer(t, router, token, `{"source_store_id":"store-a","destination_store_id":"store-x","items":[{"product_id":"prod-1","quantity":1,"unit_id":"unit-pcs"}]}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "STORES_NOT_SAME_TENANT", resp.Code)
	})

	t.Run("insufficient stock", func(t *testing.T) {
		rec, resp := doTransfer(t, router, token, `{"source_store_id":"store-a","destination_store_id":"store-b","items":[{"product_id":"prod-1","quantity":999,"unit_id":"unit-pcs"}]}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, CodeInsufficientStock, resp.Code)
		assert.NotNil(t, resp.Details)
	})
}

func TestTransferEndpointSuccess(t *testing.T) {
	repo := memory.New()
	seedLedger(t, repo)
	router := newTestRouter(t, repo)

	rec, resp := doTransfer(t, router, bearerToken(t), `{"source_store_id":"store-a","destination_store_id":"store-b","items":[{"product_id":"prod-1","quantity":4,"unit_id":"unit-pcs"}],"notes":"restock"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.Success)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "TF2025010001", data["transfer_number"])

	// The authenticated username is recorded on the transfer.
	transfers, err := repo.Transfers().List(context.Background(), 10, 0, "")
	require.NoError(t, err)
	require.Len(t, transfers, 1)
	assert.Equal(t, "alice", transfers[0].CreatedBy)
}

func TestStockEndpoints(t *testing.T) {
	repo := memory.New()
	seedLedger(t, repo)
	router := newTestRouter(t, repo)

	t.Run("available stock", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/stock/store-a/prod-1", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var resp Response
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		data := resp.Data.(map[string]interface{})
		assert.Equal(t, float64(10), data["available_quantity"])
	})

	t.Run("list lots", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/stock/store-a/prod-1/lots", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var resp Response
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		lots := resp.Data.([]interface{})
		assert.Len(t, lots, 1)
	})

	t.Run("check stock", func(t *testing.T) {
		body := bytes.NewBufferString(`{"items":[{"product_id":"prod-1","quantity":99}]}`)
		req := httptest.NewRequest(http.MethodPost, "/api/stock/store-a/check", body)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var resp Response
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		data := resp.Data.(map[string]interface{})
		assert.Equal(t, false, data["sufficient"])
	})

	t.Run("transfer not found", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/transfers/"+uuid.NewString(), nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestReceiveLotEndpoint(t *testing.T) {
	repo := memory.New()
	seedLedger(t, repo)
	router := newTestRouter(t, repo)

	body := `{"store_id":"store-b","product_id":"prod-1","quantity":12,"unit_cost":"2500","unit_id":"unit-pcs","purchase_order_id":"po-9"}`
	req := httptest.NewRequest(http.MethodPost, "/api/lots", bytes.NewBufferString(body))
	req.Header.Set("Authorization", bearerToken(t))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	lots := repo.Lots("store-b", "prod-1")
	require.Len(t, lots, 1)
	assert.Equal(t, int64(12), lots[0].RemainingQuantity)
	assert.True(t, lots[0].UnitCost.Equal(decimal.NewFromInt(2500)))
}
