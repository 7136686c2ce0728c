package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransferNumberPrefix(t *testing.T) {
	at := time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)
	assert.Equal(t, "TF202501", TransferNumberPrefix(at))

	at = time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "TF202412", TransferNumberPrefix(at))
}

func TestNextTransferNumber(t *testing.T) {
	t.Run("starts a fresh month at 0001", func(t *testing.T) {
		number, err := NextTransferNumber("TF202501", "")
		require.NoError(t, err)
		assert.Equal(t, "TF2025010001", number)
	})

	t.Run("increments the last sequence", func(t *testing.T) {
		number, err := NextTransferNumber("TF202501", "TF2025010042")
		require.NoError(t, err)
		assert.Equal(t, "TF2025010043", number)
	})

	t.Run("keeps zero padding so string ordering stays correct", func(t *testing.T) {
		number, err := NextTransferNumber("TF202501", "TF2025010009")
		require.NoError(t, err)
		assert.Equal(t, "TF2025010010", number)
		assert.Greater(t, number, "TF2025010009")
	})

	t.Run("fails loudly past the monthly ceiling", func(t *testing.T) {
		_, err := NextTransferNumber("TF202501", "TF2025019999")
		assert.ErrorIs(t, err, ErrTransferSequenceExhausted)
	})

	t.Run("rejects a last number from another prefix", func(t *testing.T) {
		_, err := NextTransferNumber("TF202502", "TF2025010042")
		assert.Error(t, err)
	})

	t.Run("rejects a malformed suffix", func(t *testing.T) {
		_, err := NextTransferNumber("TF202501", "TF202501XXXX")
		assert.Error(t, err)
	})
}

func TestLotOrigin(t *testing.T) {
	t.Run("setting a purchase origin clears the transfer reference", func(t *testing.T) {
		lot := &PurchaseLot{ID: "lot-1"}
		require.NoError(t, lot.SetOrigin(TransferredIn("tr-1")))
		require.NoError(t, lot.SetOrigin(PurchasedFrom("po-1")))

		assert.Nil(t, lot.SourceTransferID)
		require.NotNil(t, lot.PurchaseOrderID)
		assert.Equal(t, "po-1", *lot.PurchaseOrderID)
		assert.Equal(t, OriginPurchased, lot.Origin().Kind)
		assert.Equal(t, "po-1", lot.Origin().RefID)
	})

	t.Run("setting a transfer origin clears the purchase reference", func(t *testing.T) {
		lot := &PurchaseLot{ID: "lot-1"}
		require.NoError(t, lot.SetOrigin(PurchasedFrom("po-1")))
		require.NoError(t, lot.SetOrigin(TransferredIn("tr-1")))

		assert.Nil(t, lot.PurchaseOrderID)
		require.NotNil(t, lot.SourceTransferID)
		assert.Equal(t, OriginTransferredIn, lot.Origin().Kind)
	})

	t.Run("rejects unknown origin kinds", func(t *testing.T) {
		lot := &PurchaseLot{ID: "lot-1"}
		assert.Error(t, lot.SetOrigin(LotOrigin{Kind: "mystery", RefID: "x"}))
	})
}

func TestPurchaseLotDeduct(t *testing.T) {
	lot := &PurchaseLot{ID: "lot-1", OriginalQuantity: 10, RemainingQuantity: 10}

	require.NoError(t, lot.Deduct(7))
	assert.Equal(t, int64(3), lot.RemainingQuantity)

	assert.Error(t, lot.Deduct(4), "deducting past remaining must fail")
	assert.Equal(t, int64(3), lot.RemainingQuantity)

	assert.Error(t, lot.Deduct(0))
	assert.False(t, lot.Exhausted())

	require.NoError(t, lot.Deduct(3))
	assert.True(t, lot.Exhausted())
}
