package domain

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TransferStatusCompleted is the only status a transfer can have: transfers
// are executed atomically, there is no pending or partial state.
const TransferStatusCompleted = "completed"

const (
	transferNumberTag       = "TF"
	transferSequenceDigits  = 4
	transferSequenceCeiling = 9999
)

// Transfer records one inventory movement between two stores of the same
// tenant. Append-only: never updated or deleted after creation.
type Transfer struct {
	ID                 string    `json:"id" gorm:"size:36;primaryKey"`
	SourceStoreID      string    `json:"source_store_id" gorm:"size:36;not null;index"`
	DestinationStoreID string    `json:"destination_store_id" gorm:"size:36;not null;index"`
	TransferNumber     string    `json:"transfer_number" gorm:"size:20;not null;uniqueIndex"`
	TransferDate       time.Time `json:"transfer_date" gorm:"not null;index"`
	Status             string    `json:"status" gorm:"size:20;not null"`
	Notes              string    `json:"notes" gorm:"type:text"`
	CreatedBy          string    `json:"created_by" gorm:"size:255"`
	CreatedAt          time.Time `json:"created_at"`
}

// TableName specifies the table name
func (Transfer) TableName() string {
	return "transfers"
}

// TransferItem is one source-lot deduction within a transfer. A single
// requested product line fans out into one item per source lot consumed, so
// the per-lot cost stays traceable.
type TransferItem struct {
	ID          string          `json:"id" gorm:"size:36;primaryKey"`
	TransferID  string          `json:"transfer_id" gorm:"size:36;not null;index"`
	ProductID   string          `json:"product_id" gorm:"size:36;not null;index"`
	Quantity    int64           `json:"quantity" gorm:"not null"`
	Cost        decimal.Decimal `json:"cost" gorm:"type:decimal(20,4);not null"`
	UnitID      string          `json:"unit_id" gorm:"size:36;not null"`
	SourceLotID string          `json:"source_lot_id" gorm:"size:36;not null;index"`
	CreatedAt   time.Time       `json:"created_at"`
}

// TableName specifies the table name
func (TransferItem) TableName() string {
	return "transfer_items"
}

// TransferredItem summarizes one requested product line of a completed
// transfer: total quantity moved and the weighted-average cost across the
// source lots consumed.
type TransferredItem struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int64           `json:"quantity"`
	Cost        decimal.Decimal `json:"cost"`
	UnitID      string          `json:"unit_id"`
}

// TransferResult is returned to the caller after a successful transfer.
type TransferResult struct {
	Success          bool              `json:"success"`
	TransferID       string            `json:"transfer_id"`
	TransferNumber   string            `json:"transfer_number"`
	Message          string            `json:"message"`
	TransferredItems []TransferredItem `json:"transferred_items"`
}

// TransferNumberPrefix returns the year-month prefix for transfer numbers
// generated at the given time, e.g. "TF202501".
func TransferNumberPrefix(at time.Time) string {
	return transferNumberTag + at.Format("200601")
}

// NextTransferNumber computes the number following lastNumber within the
// prefix's month. An empty lastNumber starts the month at sequence 1. The
// numeric suffix is fixed-width zero-padded; that is what keeps plain string
// ordering of transfer numbers correct, so the width is never relaxed. When
// the monthly sequence would pass 9999 the generator fails loudly instead of
// producing a wider, unsortable number.
func NextTransferNumber(prefix, lastNumber string) (string, error) {
	seq := 0
	if lastNumber != "" {
		if !strings.HasPrefix(lastNumber, prefix) {
			return "", fmt.Errorf("transfer number %q does not match prefix %q", lastNumber, prefix)
		}
		parsed, err := strconv.Atoi(lastNumber[len(prefix):])
		if err != nil {
			return "", fmt.Errorf("transfer number %q has malformed sequence: %w", lastNumber, err)
		}
		seq = parsed
	}
	if seq >= transferSequenceCeiling {
		return "", ErrTransferSequenceExhausted
	}
	return fmt.Sprintf("%s%0*d", prefix, transferSequenceDigits, seq+1), nil
}

// LotRepository is the read/write surface of the lot ledger outside a
// transfer transaction.
type LotRepository interface {
	Create(ctx context.Context, lot *PurchaseLot) error
	FindByStoreAndProduct(ctx context.Context, storeID, productID string) ([]PurchaseLot, error)
	FindAvailableByStoreAndProduct(ctx context.Context, storeID, productID string) ([]PurchaseLot, error)
	AvailableQuantity(ctx context.Context, storeID, productID string) (int64, error)
}

// StoreRepository resolves stores for tenant validation.
type StoreRepository interface {
	FindByID(ctx context.Context, id string) (*Store, error)
}

// ProductRepository resolves product metadata for reporting.
type ProductRepository interface {
	FindByID(ctx context.Context, id string) (*Product, error)
}

// TransferRepository is the read surface over completed transfers.
type TransferRepository interface {
	FindByID(ctx context.Context, id string) (*Transfer, error)
	FindItems(ctx context.Context, transferID string) ([]TransferItem, error)
	List(ctx context.Context, limit, offset int, numberPrefix string) ([]Transfer, error)
}

// TransferTx is the transaction-scoped surface the transfer engine and the
// sales deduction path mutate lots through. Every method runs inside the one
// transaction opened by UnitOfWork.Do; lots returned by LockAvailableLots are
// row-locked until commit or rollback.
type TransferTx interface {
	LockAvailableLots(storeID, productID string) ([]PurchaseLot, error)
	UpdateLotRemaining(lotID string, remaining int64) error
	CreateLot(lot *PurchaseLot) error
	CreateTransfer(transfer *Transfer) error
	CreateTransferItems(items []TransferItem) error
	NextTransferNumber(at time.Time) (string, error)
}

// UnitOfWork runs fn inside one atomic transaction: everything fn does
// through the TransferTx commits together or not at all.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(tx TransferTx) error) error
}
