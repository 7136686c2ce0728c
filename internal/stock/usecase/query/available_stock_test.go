package query

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poslink/stock-service/internal/stock/domain"
	"github.com/poslink/stock-service/internal/stock/repository/memory"
)

func seedLot(repo *memory.Repository, storeID, productID string, imported time.Time, original, remaining int64) {
	repo.SeedLot(domain.PurchaseLot{
		ID:                uuid.NewString(),
		ProductID:         productID,
		StoreID:           storeID,
		ImportDate:        imported,
		OriginalQuantity:  original,
		RemainingQuantity: remaining,
		UnitCost:          decimal.NewFromInt(100),
		UnitID:            "unit-pcs",
	})
}

func TestAvailableStockAggregatesAcrossLots(t *testing.T) {
	repo := memory.New()
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	seedLot(repo, "store-a", "prod-1", base, 10, 4)
	seedLot(repo, "store-a", "prod-1", base.AddDate(0, 0, 1), 10, 10)
	// Exhausted lots and other scopes do not count.
	seedLot(repo, "store-a", "prod-1", base.AddDate(0, 0, 2), 10, 0)
	seedLot(repo, "store-a", "prod-2", base, 10, 7)
	seedLot(repo, "store-b", "prod-1", base, 10, 9)

	handler := NewAvailableStockHandler(repo)

	total, err := handler.Handle(context.Background(), AvailableStockQuery{StoreID: "store-a", ProductID: "prod-1"})
	require.NoError(t, err)
	assert.Equal(t, int64(14), total)

	total, err = handler.Handle(context.Background(), AvailableStockQuery{StoreID: "store-a", ProductID: "prod-none"})
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)

	_, err = handler.Handle(context.Background(), AvailableStockQuery{ProductID: "prod-1"})
	assert.Error(t, err)
}

func TestCheckAvailableStockReportsAllShortfalls(t *testing.T) {
	repo := memory.New()
	repo.SeedProduct(domain.Product{ID: "prod-1", Name: "Espresso Beans"})
	repo.SeedProduct(domain.Product{ID: "prod-2", Name: "Filter Paper"})
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	seedLot(repo, "store-a", "prod-1", base, 10, 10)
	seedLot(repo, "store-a", "prod-2", base, 10, 1)

	handler := NewCheckAvailableStockHandler(repo, repo.Products())

	shortfalls, err := handler.Handle(context.Background(), CheckAvailableStockQuery{
		StoreID: "store-a",
		Items: []StockRequest{
			{ProductID: "prod-1", Quantity: 5},
			{ProductID: "prod-2", Quantity: 3},
			{ProductID: "prod-unknown", Quantity: 2},
		},
	})
	require.NoError(t, err)

	require.Len(t, shortfalls, 2)
	assert.Equal(t, "prod-2", shortfalls[0].ProductID)
	assert.Equal(t, "Filter Paper", shortfalls[0].ProductName)
	assert.Equal(t, int64(3), shortfalls[0].RequestedQuantity)
	assert.Equal(t, int64(1), shortfalls[0].AvailableQuantity)
	assert.Equal(t, UnknownProductName, shortfalls[1].ProductName)
}

func TestCheckAvailableStockAllSufficient(t *testing.T) {
	repo := memory.New()
	seedLot(repo, "store-a", "prod-1", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), 10, 10)

	handler := NewCheckAvailableStockHandler(repo, repo.Products())

	shortfalls, err := handler.Handle(context.Background(), CheckAvailableStockQuery{
		StoreID: "store-a",
		Items:   []StockRequest{{ProductID: "prod-1", Quantity: 10}},
	})
	require.NoError(t, err)
	assert.Empty(t, shortfalls)
}
