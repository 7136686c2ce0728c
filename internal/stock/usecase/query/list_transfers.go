package query

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/poslink/stock-service/internal/stock/domain"
)

var monthPattern = regexp.MustCompile(`^\d{4}-\d{2}$`)

// ListTransfersQuery represents the query to list transfers
type ListTransfersQuery struct {
	Limit  int
	Offset int
	// Month optionally restricts the listing to one calendar month,
	// formatted "2006-01".
	Month string
}

// ListTransfersHandler handles list transfers queries
type ListTransfersHandler struct {
	transfers domain.TransferRepository
}

// NewListTransfersHandler creates a new list transfers handler
func NewListTransfersHandler(transfers domain.TransferRepository) *ListTransfersHandler {
	return &ListTransfersHandler{transfers: transfers}
}

// Handle executes the list transfers query
func (h *ListTransfersHandler) Handle(ctx context.Context, q ListTransfersQuery) ([]domain.Transfer, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = 20
	}

	prefix := ""
	if q.Month != "" {
		if !monthPattern.MatchString(q.Month) {
			return nil, fmt.Errorf("month must be formatted YYYY-MM")
		}
		at, err := time.Parse("2006-01", q.Month)
		if err != nil {
			return nil, fmt.Errorf("invalid month: %w", err)
		}
		prefix = domain.TransferNumberPrefix(at)
	}

	return h.transfers.List(ctx, limit, q.Offset, prefix)
}
