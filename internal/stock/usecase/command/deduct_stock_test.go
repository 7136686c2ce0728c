package command

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poslink/stock-service/internal/stock/domain"
	"github.com/poslink/stock-service/internal/stock/repository/memory"
)

func TestDeductStockConsumesOldestFirst(t *testing.T) {
	repo := memory.New()
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	old := seedLot(repo, "store-a", "prod-1", base, 3, 100)
	recent := seedLot(repo, "store-a", "prod-1", base.AddDate(0, 0, 5), 10, 200)

	handler := NewDeductStockHandler(repo)

	result, err := handler.Handle(context.Background(), DeductStockCommand{
		StoreID:   "store-a",
		ProductID: "prod-1",
		Quantity:  5,
		Reference: "sale-42",
	})
	require.NoError(t, err)

	assert.Equal(t, int64(5), result.Quantity)
	assert.Equal(t, 2, result.LotsConsumed)
	// (3*100 + 2*200) / 5
	assert.True(t, result.WeightedAverageCost.Equal(decimal.NewFromInt(140)))

	assert.Equal(t, int64(0), repo.Lot(old).RemainingQuantity)
	assert.Equal(t, int64(8), repo.Lot(recent).RemainingQuantity)
}

func TestDeductStockInsufficientRollsBack(t *testing.T) {
	repo := memory.New()
	lotID := seedLot(repo, "store-a", "prod-1", time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), 3, 100)

	handler := NewDeductStockHandler(repo)

	_, err := handler.Handle(context.Background(), DeductStockCommand{
		StoreID:   "store-a",
		ProductID: "prod-1",
		Quantity:  4,
	})

	var insufficient *domain.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	require.Len(t, insufficient.Shortfalls, 1)
	assert.Equal(t, int64(4), insufficient.Shortfalls[0].RequestedQuantity)
	assert.Equal(t, int64(3), insufficient.Shortfalls[0].AvailableQuantity)

	assert.Equal(t, int64(3), repo.Lot(lotID).RemainingQuantity)
}

func TestDeductStockValidation(t *testing.T) {
	handler := NewDeductStockHandler(memory.New())

	_, err := handler.Handle(context.Background(), DeductStockCommand{ProductID: "p", Quantity: 1})
	assert.Error(t, err)

	_, err = handler.Handle(context.Background(), DeductStockCommand{StoreID: "s", Quantity: 1})
	assert.Error(t, err)

	_, err = handler.Handle(context.Background(), DeductStockCommand{StoreID: "s", ProductID: "p", Quantity: -2})
	assert.Error(t, err)
}
