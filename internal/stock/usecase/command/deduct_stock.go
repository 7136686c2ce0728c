package command

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/poslink/stock-service/internal/stock/domain"
	"github.com/poslink/stock-service/internal/stock/fifo"
	"github.com/poslink/stock-service/pkg/logger"
)

// DeductStockCommand represents the command to consume stock at one store,
// oldest lots first. This is the path sale events take through the ledger.
type DeductStockCommand struct {
	StoreID   string
	ProductID string
	Quantity  int64
	Reference string
}

// DeductStockResult reports what the deduction consumed.
type DeductStockResult struct {
	Quantity            int64
	WeightedAverageCost decimal.Decimal
	LotsConsumed        int
}

// DeductStockHandler handles FIFO stock deduction commands
type DeductStockHandler struct {
	uow domain.UnitOfWork
}

// NewDeductStockHandler creates a new deduct stock handler
func NewDeductStockHandler(uow domain.UnitOfWork) *DeductStockHandler {
	return &DeductStockHandler{uow: uow}
}

// Handle deducts the requested quantity inside one transaction. Lots are row
// locked before the walk; if they cannot cover the request the whole
// transaction rolls back, stock is never driven negative.
func (h *DeductStockHandler) Handle(ctx context.Context, cmd DeductStockCommand) (*DeductStockResult, error) {
	if cmd.StoreID == "" {
		return nil, fmt.Errorf("store_id is required")
	}
	if cmd.ProductID == "" {
		return nil, fmt.Errorf("product_id is required")
	}
	if cmd.Quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive, got %d", cmd.Quantity)
	}

	var out DeductStockResult
	err := h.uow.Do(ctx, func(tx domain.TransferTx) error {
		lots, err := tx.LockAvailableLots(cmd.StoreID, cmd.ProductID)
		if err != nil {
			return fmt.Errorf("failed to lock lots: %w", err)
		}

		result, err := fifo.Deduct(toFIFOLots(lots), cmd.Quantity)
		if err != nil {
			return err
		}
		if !result.FullyFulfilled() {
			return &domain.InsufficientStockError{Shortfalls: []domain.StockShortfall{{
				ProductID:         cmd.ProductID,
				ProductName:       "Unknown Product",
				RequestedQuantity: cmd.Quantity,
				AvailableQuantity: result.TotalQuantity,
			}}}
		}

		for _, d := range result.Deductions {
			if err := tx.UpdateLotRemaining(d.LotID, d.Remaining); err != nil {
				return fmt.Errorf("failed to update lot %s: %w", d.LotID, err)
			}
		}

		out = DeductStockResult{
			Quantity:            result.TotalQuantity,
			WeightedAverageCost: result.WeightedAverageCost,
			LotsConsumed:        len(result.Deductions),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Logger.Info().
		Str("store_id", cmd.StoreID).
		Str("product_id", cmd.ProductID).
		Int64("quantity", cmd.Quantity).
		Str("reference", cmd.Reference).
		Int("lots_consumed", out.LotsConsumed).
		Msg("Stock deducted")

	return &out, nil
}
