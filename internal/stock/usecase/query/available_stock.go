package query

import (
	"context"
	"fmt"

	"github.com/poslink/stock-service/internal/stock/domain"
)

// UnknownProductName is reported when product metadata cannot be resolved.
// A missing name never fails a stock check.
const UnknownProductName = "Unknown Product"

// AvailableStockQuery asks for the available quantity of one product at one
// store.
type AvailableStockQuery struct {
	StoreID   string
	ProductID string
}

// AvailableStockHandler handles available stock queries
type AvailableStockHandler struct {
	lots domain.LotRepository
}

// NewAvailableStockHandler creates a new available stock handler
func NewAvailableStockHandler(lots domain.LotRepository) *AvailableStockHandler {
	return &AvailableStockHandler{lots: lots}
}

// Handle sums the remaining quantity over all non-exhausted lots.
func (h *AvailableStockHandler) Handle(ctx context.Context, q AvailableStockQuery) (int64, error) {
	if q.StoreID == "" {
		return 0, fmt.Errorf("store_id is required")
	}
	if q.ProductID == "" {
		return 0, fmt.Errorf("product_id is required")
	}

	total, err := h.lots.AvailableQuantity(ctx, q.StoreID, q.ProductID)
	if err != nil {
		return 0, fmt.Errorf("failed to compute available stock: %w", err)
	}
	return total, nil
}

// StockRequest is one requested product line to validate.
type StockRequest struct {
	ProductID string
	Quantity  int64
}

// CheckAvailableStockQuery validates a batch of requested lines against the
// ledger.
type CheckAvailableStockQuery struct {
	StoreID string
	Items   []StockRequest
}

// CheckAvailableStockHandler handles batch stock sufficiency checks
type CheckAvailableStockHandler struct {
	lots     domain.LotRepository
	products domain.ProductRepository
}

// NewCheckAvailableStockHandler creates a new batch stock check handler
func NewCheckAvailableStockHandler(lots domain.LotRepository, products domain.ProductRepository) *CheckAvailableStockHandler {
	return &CheckAvailableStockHandler{lots: lots, products: products}
}

// Handle checks every requested line and returns all shortfalls found. It
// never short-circuits on the first insufficient product, so one response
// tells the caller everything that is missing.
func (h *CheckAvailableStockHandler) Handle(ctx context.Context, q CheckAvailableStockQuery) ([]domain.StockShortfall, error) {
	if q.StoreID == "" {
		return nil, fmt.Errorf("store_id is required")
	}

	var shortfalls []domain.StockShortfall
	for _, item := range q.Items {
		available, err := h.lots.AvailableQuantity(ctx, q.StoreID, item.ProductID)
		if err != nil {
			return nil, fmt.Errorf("failed to check stock for product %s: %w", item.ProductID, err)
		}
		if available >= item.Quantity {
			continue
		}
		shortfalls = append(shortfalls, domain.StockShortfall{
			ProductID:         item.ProductID,
			ProductName:       h.productName(ctx, item.ProductID),
			RequestedQuantity: item.Quantity,
			AvailableQuantity: available,
		})
	}
	return shortfalls, nil
}

func (h *CheckAvailableStockHandler) productName(ctx context.Context, productID string) string {
	product, err := h.products.FindByID(ctx, productID)
	if err != nil || product == nil {
		return UnknownProductName
	}
	return product.Name
}
