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

func TestReceiveLotCreatesPurchasedLot(t *testing.T) {
	repo := memory.New()
	repo.SeedStore(domain.Store{ID: "store-a", TenantID: "tenant-1", Name: "Downtown"})

	handler := NewReceiveLotHandler(repo.Stores(), repo)
	imported := time.Date(2025, 4, 2, 0, 0, 0, 0, time.UTC)

	lot, err := handler.Handle(context.Background(), ReceiveLotCommand{
		StoreID:         "store-a",
		ProductID:       "prod-1",
		Quantity:        24,
		UnitCost:        decimal.NewFromInt(1500),
		UnitID:          "unit-box",
		PurchaseOrderID: "po-77",
		ImportDate:      imported,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, lot.ID)
	assert.Equal(t, int64(24), lot.OriginalQuantity)
	assert.Equal(t, int64(24), lot.RemainingQuantity)
	assert.Equal(t, imported, lot.ImportDate)
	assert.Equal(t, domain.OriginPurchased, lot.Origin().Kind)
	assert.Equal(t, "po-77", lot.Origin().RefID)
	assert.Nil(t, lot.SourceTransferID)

	stored := repo.Lot(lot.ID)
	require.NotNil(t, stored)
	assert.True(t, stored.UnitCost.Equal(decimal.NewFromInt(1500)))
}

func TestReceiveLotValidation(t *testing.T) {
	repo := memory.New()
	repo.SeedStore(domain.Store{ID: "store-a", TenantID: "tenant-1"})
	handler := NewReceiveLotHandler(repo.Stores(), repo)

	valid := ReceiveLotCommand{
		StoreID:   "store-a",
		ProductID: "prod-1",
		Quantity:  1,
		UnitCost:  decimal.NewFromInt(10),
		UnitID:    "unit-pcs",
	}

	t.Run("unknown store", func(t *testing.T) {
		cmd := valid
		cmd.StoreID = "store-ghost"
		_, err := handler.Handle(context.Background(), cmd)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("non-positive quantity", func(t *testing.T) {
		cmd := valid
		cmd.Quantity = 0
		_, err := handler.Handle(context.Background(), cmd)
		assert.Error(t, err)
	})

	t.Run("negative cost", func(t *testing.T) {
		cmd := valid
		cmd.UnitCost = decimal.NewFromInt(-1)
		_, err := handler.Handle(context.Background(), cmd)
		assert.Error(t, err)
	})

	t.Run("default import date", func(t *testing.T) {
		lot, err := handler.Handle(context.Background(), valid)
		require.NoError(t, err)
		assert.WithinDuration(t, time.Now(), lot.ImportDate, time.Minute)
	})
}
