package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OriginKind identifies how a purchase lot entered a store.
type OriginKind string

const (
	// OriginPurchased marks a lot created by receiving a purchase order.
	OriginPurchased OriginKind = "purchase_order"
	// OriginTransferredIn marks a lot created at the destination of a transfer.
	OriginTransferredIn OriginKind = "transfer"
)

// LotOrigin is the provenance of a purchase lot. A lot originates from exactly
// one of a purchase order or an inbound transfer, never both.
type LotOrigin struct {
	Kind  OriginKind
	RefID string
}

// PurchasedFrom builds the origin for a lot received against a purchase order.
func PurchasedFrom(purchaseOrderID string) LotOrigin {
	return LotOrigin{Kind: OriginPurchased, RefID: purchaseOrderID}
}

// TransferredIn builds the origin for a lot created by an inbound transfer.
func TransferredIn(transferID string) LotOrigin {
	return LotOrigin{Kind: OriginTransferredIn, RefID: transferID}
}

// PurchaseLot is the atomic unit of stock: one received batch of a product at
// one store. Exhausted lots (remaining_quantity = 0) are kept for audit and
// cost traceability, never deleted.
type PurchaseLot struct {
	ID                string          `json:"id" gorm:"size:36;primaryKey"`
	ProductID         string          `json:"product_id" gorm:"size:36;not null;index:idx_lots_store_product,priority:2"`
	StoreID           string          `json:"store_id" gorm:"size:36;not null;index:idx_lots_store_product,priority:1"`
	ImportDate        time.Time       `json:"import_date" gorm:"not null;index"`
	OriginalQuantity  int64           `json:"original_quantity" gorm:"not null"`
	RemainingQuantity int64           `json:"remaining_quantity" gorm:"not null"`
	UnitCost          decimal.Decimal `json:"unit_cost" gorm:"type:decimal(20,4);not null"`
	UnitID            string          `json:"unit_id" gorm:"size:36;not null"`
	PurchaseOrderID   *string         `json:"purchase_order_id,omitempty" gorm:"size:36;index"`
	SourceTransferID  *string         `json:"source_transfer_id,omitempty" gorm:"size:36;index"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// TableName specifies the table name
func (PurchaseLot) TableName() string {
	return "purchase_lots"
}

// Origin returns the lot's provenance as a tagged value.
func (l *PurchaseLot) Origin() LotOrigin {
	switch {
	case l.SourceTransferID != nil:
		return TransferredIn(*l.SourceTransferID)
	case l.PurchaseOrderID != nil:
		return PurchasedFrom(*l.PurchaseOrderID)
	default:
		return LotOrigin{}
	}
}

// SetOrigin stores the lot's provenance, clearing the other reference so the
// mutual exclusivity holds at the storage level too.
func (l *PurchaseLot) SetOrigin(origin LotOrigin) error {
	switch origin.Kind {
	case OriginPurchased:
		ref := origin.RefID
		l.PurchaseOrderID = &ref
		l.SourceTransferID = nil
	case OriginTransferredIn:
		ref := origin.RefID
		l.SourceTransferID = &ref
		l.PurchaseOrderID = nil
	default:
		return fmt.Errorf("unknown lot origin kind %q", origin.Kind)
	}
	return nil
}

// Exhausted reports whether the lot has no remaining stock.
func (l *PurchaseLot) Exhausted() bool {
	return l.RemainingQuantity <= 0
}

// Deduct lowers the remaining quantity. Remaining quantity must never go
// negative; callers are expected to have sized the deduction from a locked
// read of the lot.
func (l *PurchaseLot) Deduct(quantity int64) error {
	if quantity <= 0 {
		return fmt.Errorf("deduction quantity must be positive, got %d", quantity)
	}
	if quantity > l.RemainingQuantity {
		return fmt.Errorf("lot %s: cannot deduct %d, only %d remaining", l.ID, quantity, l.RemainingQuantity)
	}
	l.RemainingQuantity -= quantity
	return nil
}

// BeforeSave validates the lot invariants before any insert or update.
func (l *PurchaseLot) BeforeSave(tx *gorm.DB) error {
	if l.RemainingQuantity < 0 {
		return fmt.Errorf("lot %s: remaining quantity %d is negative", l.ID, l.RemainingQuantity)
	}
	if l.RemainingQuantity > l.OriginalQuantity {
		return fmt.Errorf("lot %s: remaining quantity %d exceeds original %d", l.ID, l.RemainingQuantity, l.OriginalQuantity)
	}
	if l.PurchaseOrderID != nil && l.SourceTransferID != nil {
		return fmt.Errorf("lot %s: purchase order and source transfer are mutually exclusive", l.ID)
	}
	return nil
}

// Store is a tenant-owned location holding stock. Consulted for tenant
// validation, never mutated by this service.
type Store struct {
	ID       string `json:"id" gorm:"size:36;primaryKey"`
	TenantID string `json:"tenant_id" gorm:"size:36;not null;index"`
	Name     string `json:"name" gorm:"size:255;not null"`
}

// TableName specifies the table name
func (Store) TableName() string {
	return "stores"
}

// Product carries the metadata this service needs for reporting. Owned by the
// catalog service; read-only here.
type Product struct {
	ID   string `json:"id" gorm:"size:36;primaryKey"`
	Name string `json:"name" gorm:"size:255;not null"`
}

// TableName specifies the table name
func (Product) TableName() string {
	return "products"
}
