package query

import (
	"context"
	"fmt"

	"github.com/poslink/stock-service/internal/stock/domain"
)

// ListLotsQuery represents the query to list the lots of a (store, product)
type ListLotsQuery struct {
	StoreID   string
	ProductID string
	// IncludeExhausted keeps fully consumed lots in the listing; they are
	// retained in storage for audit.
	IncludeExhausted bool
}

// ListLotsHandler handles lot listing queries
type ListLotsHandler struct {
	lots domain.LotRepository
}

// NewListLotsHandler creates a new list lots handler
func NewListLotsHandler(lots domain.LotRepository) *ListLotsHandler {
	return &ListLotsHandler{lots: lots}
}

// Handle returns the lots oldest first, the order deductions consume them in.
func (h *ListLotsHandler) Handle(ctx context.Context, q ListLotsQuery) ([]domain.PurchaseLot, error) {
	if q.StoreID == "" {
		return nil, fmt.Errorf("store_id is required")
	}
	if q.ProductID == "" {
		return nil, fmt.Errorf("product_id is required")
	}

	if q.IncludeExhausted {
		return h.lots.FindByStoreAndProduct(ctx, q.StoreID, q.ProductID)
	}
	return h.lots.FindAvailableByStoreAndProduct(ctx, q.StoreID, q.ProductID)
}
