package query

import (
	"context"
	"fmt"

	"github.com/poslink/stock-service/internal/stock/domain"
)

// GetTransferQuery represents the query to get a transfer with its items
type GetTransferQuery struct {
	ID string
}

// TransferDetail is a transfer header with its per-lot items.
type TransferDetail struct {
	Transfer domain.Transfer       `json:"transfer"`
	Items    []domain.TransferItem `json:"items"`
}

// GetTransferHandler handles get transfer queries
type GetTransferHandler struct {
	transfers domain.TransferRepository
}

// NewGetTransferHandler creates a new get transfer handler
func NewGetTransferHandler(transfers domain.TransferRepository) *GetTransferHandler {
	return &GetTransferHandler{transfers: transfers}
}

// Handle executes the get transfer query
func (h *GetTransferHandler) Handle(ctx context.Context, q GetTransferQuery) (*TransferDetail, error) {
	if q.ID == "" {
		return nil, fmt.Errorf("id is required")
	}

	transfer, err := h.transfers.FindByID(ctx, q.ID)
	if err != nil {
		return nil, err
	}

	items, err := h.transfers.FindItems(ctx, q.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load transfer items: %w", err)
	}

	return &TransferDetail{Transfer: *transfer, Items: items}, nil
}
