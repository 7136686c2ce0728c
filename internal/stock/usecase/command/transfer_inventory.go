package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/poslink/stock-service/internal/stock/domain"
	"github.com/poslink/stock-service/internal/stock/fifo"
	"github.com/poslink/stock-service/pkg/logger"
)

// TransferItemRequest is one requested product line of a transfer.
type TransferItemRequest struct {
	ProductID string
	Quantity  int64
	UnitID    string
}

// TransferInventoryCommand represents the command to move stock between two
// stores of the same tenant.
type TransferInventoryCommand struct {
	SourceStoreID      string
	DestinationStoreID string
	Items              []TransferItemRequest
	Notes              string
	CreatedBy          string
}

// TransferEventPublisher is notified after a transfer commits. Publishing is
// best-effort; a publish failure never affects the committed transfer.
type TransferEventPublisher interface {
	PublishTransferCompleted(ctx context.Context, transfer domain.Transfer, items []domain.TransferredItem) error
}

// TransferInventoryHandler orchestrates a cross-store transfer: tenant and
// store validation, batch stock sufficiency, then one atomic transaction that
// deducts source lots FIFO and creates destination lots with full cost
// traceability.
type TransferInventoryHandler struct {
	stores    domain.StoreRepository
	products  domain.ProductRepository
	lots      domain.LotRepository
	uow       domain.UnitOfWork
	publisher TransferEventPublisher
	now       func() time.Time
}

// NewTransferInventoryHandler creates a new transfer inventory handler
func NewTransferInventoryHandler(
	stores domain.StoreRepository,
	products domain.ProductRepository,
	lots domain.LotRepository,
	uow domain.UnitOfWork,
	publisher TransferEventPublisher,
) *TransferInventoryHandler {
	return &TransferInventoryHandler{
		stores:    stores,
		products:  products,
		lots:      lots,
		uow:       uow,
		publisher: publisher,
		now:       time.Now,
	}
}

// WithClock overrides the handler's clock. Used by tests to pin transfer
// dates and number prefixes.
func (h *TransferInventoryHandler) WithClock(now func() time.Time) *TransferInventoryHandler {
	h.now = now
	return h
}

// Handle executes the transfer command.
func (h *TransferInventoryHandler) Handle(ctx context.Context, cmd TransferInventoryCommand) (*domain.TransferResult, error) {
	if err := h.validateStores(ctx, cmd); err != nil {
		return nil, err
	}
	if len(cmd.Items) == 0 {
		return nil, fmt.Errorf("transfer requires at least one item")
	}

	productNames := h.resolveProductNames(ctx, cmd.Items)

	// Aggregate pre-check. Every item is checked before failing so the
	// caller sees all shortfalls at once; the authoritative check happens
	// again under row locks inside the transaction.
	shortfalls, err := h.checkStock(ctx, cmd, productNames)
	if err != nil {
		return nil, err
	}
	if len(shortfalls) > 0 {
		return nil, &domain.InsufficientStockError{Shortfalls: shortfalls}
	}

	transfer := domain.Transfer{
		ID:                 uuid.NewString(),
		SourceStoreID:      cmd.SourceStoreID,
		DestinationStoreID: cmd.DestinationStoreID,
		TransferDate:       h.now(),
		Status:             domain.TransferStatusCompleted,
		Notes:              cmd.Notes,
		CreatedBy:          cmd.CreatedBy,
	}

	var transferred []domain.TransferredItem
	run := func() error {
		return h.uow.Do(ctx, func(tx domain.TransferTx) error {
			transferred = nil

			number, err := tx.NextTransferNumber(transfer.TransferDate)
			if err != nil {
				return err
			}
			transfer.TransferNumber = number

			if err := tx.CreateTransfer(&transfer); err != nil {
				return fmt.Errorf("failed to create transfer: %w", err)
			}

			var items []domain.TransferItem
			for _, req := range cmd.Items {
				lots, err := tx.LockAvailableLots(cmd.SourceStoreID, req.ProductID)
				if err != nil {
					return fmt.Errorf("failed to lock lots for product %s: %w", req.ProductID, err)
				}

				result, err := fifo.Deduct(toFIFOLots(lots), req.Quantity)
				if err != nil {
					return err
				}
				// The pre-check passed, so a shortfall here means a
				// concurrent movement won the race. Fail the whole
				// transaction rather than under-deduct.
				if !result.FullyFulfilled() {
					return &domain.InsufficientStockError{Shortfalls: []domain.StockShortfall{{
						ProductID:         req.ProductID,
						ProductName:       productNames[req.ProductID],
						RequestedQuantity: req.Quantity,
						AvailableQuantity: result.TotalQuantity,
					}}}
				}

				for _, d := range result.Deductions {
					if err := tx.UpdateLotRemaining(d.LotID, d.Remaining); err != nil {
						return fmt.Errorf("failed to update lot %s: %w", d.LotID, err)
					}

					items = append(items, domain.TransferItem{
						ID:          uuid.NewString(),
						TransferID:  transfer.ID,
						ProductID:   req.ProductID,
						Quantity:    d.Quantity,
						Cost:        d.UnitCost,
						UnitID:      req.UnitID,
						SourceLotID: d.LotID,
					})

					// The destination lot restarts its FIFO age at the
					// transfer date; it does not inherit the source lot's
					// import date.
					destLot := domain.PurchaseLot{
						ID:                uuid.NewString(),
						ProductID:         req.ProductID,
						StoreID:           cmd.DestinationStoreID,
						ImportDate:        transfer.TransferDate,
						OriginalQuantity:  d.Quantity,
						RemainingQuantity: d.Quantity,
						UnitCost:          d.UnitCost,
						UnitID:            req.UnitID,
					}
					if err := destLot.SetOrigin(domain.TransferredIn(transfer.ID)); err != nil {
						return err
					}
					if err := tx.CreateLot(&destLot); err != nil {
						return fmt.Errorf("failed to create destination lot: %w", err)
					}
				}

				transferred = append(transferred, domain.TransferredItem{
					ProductID:   req.ProductID,
					ProductName: productNames[req.ProductID],
					Quantity:    result.TotalQuantity,
					Cost:        result.WeightedAverageCost,
					UnitID:      req.UnitID,
				})
			}

			return tx.CreateTransferItems(items)
		})
	}

	err = run()
	if errors.Is(err, domain.ErrDuplicateTransferNumber) {
		// Two first-of-month transfers find no existing row to lock on and
		// race to the same number; the loser retries once against the row
		// the winner just committed.
		logger.Logger.Warn().
			Str("transfer_number", transfer.TransferNumber).
			Msg("Transfer number taken by concurrent transfer, retrying")
		err = run()
	}
	if err != nil {
		return nil, err
	}

	h.publish(ctx, transfer, transferred)

	logger.Logger.Info().
		Str("transfer_id", transfer.ID).
		Str("transfer_number", transfer.TransferNumber).
		Str("source_store_id", cmd.SourceStoreID).
		Str("destination_store_id", cmd.DestinationStoreID).
		Int("items", len(transferred)).
		Msg("Inventory transfer completed")

	return &domain.TransferResult{
		Success:          true,
		TransferID:       transfer.ID,
		TransferNumber:   transfer.TransferNumber,
		Message:          "Inventory transferred successfully",
		TransferredItems: transferred,
	}, nil
}

func (h *TransferInventoryHandler) validateStores(ctx context.Context, cmd TransferInventoryCommand) error {
	if cmd.SourceStoreID == cmd.DestinationStoreID {
		return domain.ErrSameStore
	}

	source, err := h.stores.FindByID(ctx, cmd.SourceStoreID)
	if err != nil || source == nil {
		return domain.ErrSourceStoreNotFound
	}
	dest, err := h.stores.FindByID(ctx, cmd.DestinationStoreID)
	if err != nil || dest == nil {
		return domain.ErrDestStoreNotFound
	}
	if source.TenantID != dest.TenantID {
		return domain.ErrStoresNotSameTenant
	}
	return nil
}

func (h *TransferInventoryHandler) resolveProductNames(ctx context.Context, items []TransferItemRequest) map[string]string {
	names := make(map[string]string, len(items))
	for _, item := range items {
		if _, ok := names[item.ProductID]; ok {
			continue
		}
		product, err := h.products.FindByID(ctx, item.ProductID)
		if err != nil || product == nil {
			names[item.ProductID] = "Unknown Product"
			continue
		}
		names[item.ProductID] = product.Name
	}
	return names
}

func (h *TransferInventoryHandler) checkStock(ctx context.Context, cmd TransferInventoryCommand, productNames map[string]string) ([]domain.StockShortfall, error) {
	// Quantities are summed per product first, so a request that splits one
	// product across several lines is checked against the combined total.
	requested := make(map[string]int64, len(cmd.Items))
	var order []string
	for _, item := range cmd.Items {
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("quantity for product %s must be positive", item.ProductID)
		}
		if _, ok := requested[item.ProductID]; !ok {
			order = append(order, item.ProductID)
		}
		requested[item.ProductID] += item.Quantity
	}

	var shortfalls []domain.StockShortfall
	for _, productID := range order {
		available, err := h.lots.AvailableQuantity(ctx, cmd.SourceStoreID, productID)
		if err != nil {
			return nil, fmt.Errorf("failed to check stock for product %s: %w", productID, err)
		}
		if available >= requested[productID] {
			continue
		}
		shortfalls = append(shortfalls, domain.StockShortfall{
			ProductID:         productID,
			ProductName:       productNames[productID],
			RequestedQuantity: requested[productID],
			AvailableQuantity: available,
		})
	}
	return shortfalls, nil
}

func (h *TransferInventoryHandler) publish(ctx context.Context, transfer domain.Transfer, items []domain.TransferredItem) {
	if h.publisher == nil {
		return
	}
	if err := h.publisher.PublishTransferCompleted(ctx, transfer, items); err != nil {
		logger.Logger.Error().
			Err(err).
			Str("transfer_id", transfer.ID).
			Msg("Failed to publish transfer completed event")
	}
}

func toFIFOLots(lots []domain.PurchaseLot) []fifo.Lot {
	out := make([]fifo.Lot, len(lots))
	for i, lot := range lots {
		out[i] = fifo.Lot{
			ID:                lot.ID,
			ImportDate:        lot.ImportDate,
			RemainingQuantity: lot.RemainingQuantity,
			UnitCost:          lot.UnitCost,
		}
	}
	return out
}
