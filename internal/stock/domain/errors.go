package domain

import (
	"errors"
	"fmt"
)

// TransferError is a validation failure with a stable code the HTTP boundary
// maps onto responses.
type TransferError struct {
	Code    string
	Message string
}

func (e *TransferError) Error() string {
	return e.Message
}

var (
	// ErrSameStore rejects transfers where source and destination match.
	ErrSameStore = &TransferError{Code: "SAME_STORE", Message: "source and destination store must differ"}
	// ErrSourceStoreNotFound means the source store does not exist.
	ErrSourceStoreNotFound = &TransferError{Code: "SOURCE_STORE_NOT_FOUND", Message: "source store not found"}
	// ErrDestStoreNotFound means the destination store does not exist.
	ErrDestStoreNotFound = &TransferError{Code: "DEST_STORE_NOT_FOUND", Message: "destination store not found"}
	// ErrStoresNotSameTenant rejects cross-tenant transfers.
	ErrStoresNotSameTenant = &TransferError{Code: "STORES_NOT_SAME_TENANT", Message: "stores do not belong to the same tenant"}
)

// ErrTransferSequenceExhausted is returned when a month's transfer sequence
// would pass 9999. Widening the suffix would break the string ordering of
// existing numbers, so the generator refuses instead.
var ErrTransferSequenceExhausted = errors.New("transfer number sequence exhausted for this month")

// ErrNotFound is the generic not-found for read endpoints.
var ErrNotFound = errors.New("record not found")

// ErrDuplicateTransferNumber means another transaction committed the same
// transfer number first. The unique index catches the case where the locked
// read found no row to serialize on, such as the first transfer of a month;
// callers retry the allocation once.
var ErrDuplicateTransferNumber = errors.New("transfer number already taken")

// StockShortfall describes one product that cannot cover the requested
// quantity.
type StockShortfall struct {
	ProductID         string `json:"product_id"`
	ProductName       string `json:"product_name"`
	RequestedQuantity int64  `json:"requested_quantity"`
	AvailableQuantity int64  `json:"available_quantity"`
}

// InsufficientStockError carries every shortfall found in a request, not just
// the first, so a caller can correct the whole request in one round trip.
type InsufficientStockError struct {
	Shortfalls []StockShortfall
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %d product(s)", len(e.Shortfalls))
}
