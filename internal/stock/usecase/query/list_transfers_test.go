package query

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poslink/stock-service/internal/stock/domain"
	"github.com/poslink/stock-service/internal/stock/repository/memory"
)

func seedTransfer(t *testing.T, repo *memory.Repository, id, number string) {
	t.Helper()
	err := repo.Do(context.Background(), func(tx domain.TransferTx) error {
		return tx.CreateTransfer(&domain.Transfer{
			ID:                 id,
			TransferNumber:     number,
			SourceStoreID:      "store-a",
			DestinationStoreID: "store-b",
			TransferDate:       time.Now(),
			Status:             domain.TransferStatusCompleted,
		})
	})
	require.NoError(t, err)
}

func TestListTransfersMonthFilter(t *testing.T) {
	repo := memory.New()
	seedTransfer(t, repo, "t1", "TF2025010001")
	seedTransfer(t, repo, "t2", "TF2025010002")
	seedTransfer(t, repo, "t3", "TF2025020001")

	handler := NewListTransfersHandler(repo.Transfers())

	transfers, err := handler.Handle(context.Background(), ListTransfersQuery{Month: "2025-01"})
	require.NoError(t, err)
	require.Len(t, transfers, 2)
	assert.Equal(t, "TF2025010002", transfers[0].TransferNumber)
	assert.Equal(t, "TF2025010001", transfers[1].TransferNumber)

	transfers, err = handler.Handle(context.Background(), ListTransfersQuery{})
	require.NoError(t, err)
	assert.Len(t, transfers, 3)

	_, err = handler.Handle(context.Background(), ListTransfersQuery{Month: "January"})
	assert.Error(t, err)
}

func TestGetTransferWithItems(t *testing.T) {
	repo := memory.New()
	err := repo.Do(context.Background(), func(tx domain.TransferTx) error {
		if err := tx.CreateTransfer(&domain.Transfer{
			ID:             "t1",
			TransferNumber: "TF2025010001",
			SourceStoreID:  "store-a",
			Status:         domain.TransferStatusCompleted,
		}); err != nil {
			return err
		}
		return tx.CreateTransferItems([]domain.TransferItem{
			{ID: "i1", TransferID: "t1", ProductID: "prod-1", Quantity: 5, SourceLotID: "lot-1"},
			{ID: "i2", TransferID: "t1", ProductID: "prod-1", Quantity: 2, SourceLotID: "lot-2"},
		})
	})
	require.NoError(t, err)

	handler := NewGetTransferHandler(repo.Transfers())

	detail, err := handler.Handle(context.Background(), GetTransferQuery{ID: "t1"})
	require.NoError(t, err)
	assert.Equal(t, "TF2025010001", detail.Transfer.TransferNumber)
	assert.Len(t, detail.Items, 2)

	_, err = handler.Handle(context.Background(), GetTransferQuery{ID: "missing"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
