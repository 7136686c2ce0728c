package kafka

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransferredItemEvent is one product line of a completed transfer.
type TransferredItemEvent struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int64           `json:"quantity"`
	Cost        decimal.Decimal `json:"cost"`
	UnitID      string          `json:"unit_id"`
}

// StockTransferCompletedEvent is emitted after a cross-store transfer commits.
type StockTransferCompletedEvent struct {
	EventID            string                 `json:"event_id"`
	EventType          string                 `json:"event_type"`
	TransferID         string                 `json:"transfer_id"`
	TransferNumber     string                 `json:"transfer_number"`
	SourceStoreID      string                 `json:"source_store_id"`
	DestinationStoreID string                 `json:"destination_store_id"`
	Items              []TransferredItemEvent `json:"items"`
	Timestamp          time.Time              `json:"timestamp"`
}

// SaleCompletedEvent is consumed from the POS sales service; each completed
// sale line is deducted from the selling store's lots.
type SaleCompletedEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	SaleID    string    `json:"sale_id"`
	StoreID   string    `json:"store_id"`
	ProductID string    `json:"product_id"`
	Quantity  int64     `json:"quantity"`
	Timestamp time.Time `json:"timestamp"`
}

// Event types
const (
	EventTypeStockTransferCompleted = "stock.transfer.completed"
	EventTypeSaleCompleted          = "sale.completed"
)

// Kafka topics
const (
	TopicStockTransferCompleted = "stock-transfer-completed"
	TopicSaleCompleted          = "sale-completed"
)
