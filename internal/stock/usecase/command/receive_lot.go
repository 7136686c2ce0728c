package command

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/poslink/stock-service/internal/stock/domain"
)

// ReceiveLotCommand represents the command to receive purchased stock into a
// store as a new lot.
type ReceiveLotCommand struct {
	StoreID         string
	ProductID       string
	Quantity        int64
	UnitCost        decimal.Decimal
	UnitID          string
	PurchaseOrderID string
	ImportDate      time.Time
}

// ReceiveLotHandler handles lot receiving commands
type ReceiveLotHandler struct {
	stores domain.StoreRepository
	lots   domain.LotRepository
	now    func() time.Time
}

// NewReceiveLotHandler creates a new receive lot handler
func NewReceiveLotHandler(stores domain.StoreRepository, lots domain.LotRepository) *ReceiveLotHandler {
	return &ReceiveLotHandler{stores: stores, lots: lots, now: time.Now}
}

// Handle creates a fresh lot with a purchase-order origin. The import date
// establishes the lot's position in the FIFO order.
func (h *ReceiveLotHandler) Handle(ctx context.Context, cmd ReceiveLotCommand) (*domain.PurchaseLot, error) {
	if cmd.StoreID == "" {
		return nil, fmt.Errorf("store_id is required")
	}
	if cmd.ProductID == "" {
		return nil, fmt.Errorf("product_id is required")
	}
	if cmd.UnitID == "" {
		return nil, fmt.Errorf("unit_id is required")
	}
	if cmd.Quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive, got %d", cmd.Quantity)
	}
	if cmd.UnitCost.IsNegative() {
		return nil, fmt.Errorf("unit cost cannot be negative")
	}

	if _, err := h.stores.FindByID(ctx, cmd.StoreID); err != nil {
		return nil, fmt.Errorf("store %s: %w", cmd.StoreID, err)
	}

	importDate := cmd.ImportDate
	if importDate.IsZero() {
		importDate = h.now()
	}

	lot := domain.PurchaseLot{
		ID:                uuid.NewString(),
		ProductID:         cmd.ProductID,
		StoreID:           cmd.StoreID,
		ImportDate:        importDate,
		OriginalQuantity:  cmd.Quantity,
		RemainingQuantity: cmd.Quantity,
		UnitCost:          cmd.UnitCost,
		UnitID:            cmd.UnitID,
	}
	if cmd.PurchaseOrderID != "" {
		if err := lot.SetOrigin(domain.PurchasedFrom(cmd.PurchaseOrderID)); err != nil {
			return nil, err
		}
	}

	if err := h.lots.Create(ctx, &lot); err != nil {
		return nil, fmt.Errorf("failed to create lot: %w", err)
	}
	return &lot, nil
}
