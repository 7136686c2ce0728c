package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/poslink/stock-service/internal/stock/domain"
)

// AutoMigrate creates the ledger tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.Store{},
		&domain.Product{},
		&domain.PurchaseLot{},
		&domain.Transfer{},
		&domain.TransferItem{},
	)
}

type GormLotRepository struct {
	db *gorm.DB
}

func NewGormLotRepository(db *gorm.DB) *GormLotRepository {
	return &GormLotRepository{db: db}
}

func (r *GormLotRepository) Create(ctx context.Context, lot *domain.PurchaseLot) error {
	return r.db.WithContext(ctx).Create(lot).Error
}

func (r *GormLotRepository) FindByStoreAndProduct(ctx context.Context, storeID, productID string) ([]domain.PurchaseLot, error) {
	var lots []domain.PurchaseLot
	err := r.db.WithContext(ctx).
		Where("store_id = ? AND product_id = ?", storeID, productID).
		Order("import_date ASC, id ASC").
		Find(&lots).Error
	return lots, err
}

func (r *GormLotRepository) FindAvailableByStoreAndProduct(ctx context.Context, storeID, productID string) ([]domain.PurchaseLot, error) {
	var lots []domain.PurchaseLot
	err := r.db.WithContext(ctx).
		Where("store_id = ? AND product_id = ? AND remaining_quantity > 0", storeID, productID).
		Order("import_date ASC, id ASC").
		Find(&lots).Error
	return lots, err
}

func (r *GormLotRepository) AvailableQuantity(ctx context.Context, storeID, productID string) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&domain.PurchaseLot{}).
		Where("store_id = ? AND product_id = ? AND remaining_quantity > 0", storeID, productID).
		Select("COALESCE(SUM(remaining_quantity), 0)").
		Scan(&total).Error
	return total, err
}

type GormStoreRepository struct {
	db *gorm.DB
}

func NewGormStoreRepository(db *gorm.DB) *GormStoreRepository {
	return &GormStoreRepository{db: db}
}

func (r *GormStoreRepository) FindByID(ctx context.Context, id string) (*domain.Store, error) {
	var store domain.Store
	err := r.db.WithContext(ctx).First(&store, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &store, nil
}

type GormProductRepository struct {
	db *gorm.DB
}

func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

func (r *GormProductRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	var product domain.Product
	err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

type GormTransferRepository struct {
	db *gorm.DB
}

func NewGormTransferRepository(db *gorm.DB) *GormTransferRepository {
	return &GormTransferRepository{db: db}
}

func (r *GormTransferRepository) FindByID(ctx context.Context, id string) (*domain.Transfer, error) {
	var transfer domain.Transfer
	err := r.db.WithContext(ctx).First(&transfer, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &transfer, nil
}

func (r *GormTransferRepository) FindItems(ctx context.Context, transferID string) ([]domain.TransferItem, error) {
	var items []domain.TransferItem
	err := r.db.WithContext(ctx).
		Where("transfer_id = ?", transferID).
		Order("created_at ASC, id ASC").
		Find(&items).Error
	return items, err
}

func (r *GormTransferRepository) List(ctx context.Context, limit, offset int, numberPrefix string) ([]domain.Transfer, error) {
	var transfers []domain.Transfer
	q := r.db.WithContext(ctx).Order("transfer_number DESC").Limit(limit).Offset(offset)
	if numberPrefix != "" {
		q = q.Where("transfer_number LIKE ?", numberPrefix+"%")
	}
	err := q.Find(&transfers).Error
	return transfers, err
}

// GormUnitOfWork wraps the transfer transaction: all lot mutations, lot and
// item insertions and the transfer header commit together or roll back
// together.
type GormUnitOfWork struct {
	db *gorm.DB
}

func NewGormUnitOfWork(db *gorm.DB) *GormUnitOfWork {
	return &GormUnitOfWork{db: db}
}

func (u *GormUnitOfWork) Do(ctx context.Context, fn func(tx domain.TransferTx) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransferTx{tx: tx})
	})
}

type gormTransferTx struct {
	tx *gorm.DB
}

// LockAvailableLots row-locks the candidate lots for the FIFO walk. The lock
// serializes concurrent transfers and sales on the same (store, product) and
// makes the in-transaction sufficiency re-check authoritative.
func (t *gormTransferTx) LockAvailableLots(storeID, productID string) ([]domain.PurchaseLot, error) {
	var lots []domain.PurchaseLot
	err := t.tx.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("store_id = ? AND product_id = ? AND remaining_quantity > 0", storeID, productID).
		Order("import_date ASC, id ASC").
		Find(&lots).Error
	return lots, err
}

func (t *gormTransferTx) UpdateLotRemaining(lotID string, remaining int64) error {
	result := t.tx.Model(&domain.PurchaseLot{}).
		Where("id = ?", lotID).
		Update("remaining_quantity", remaining)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (t *gormTransferTx) CreateLot(lot *domain.PurchaseLot) error {
	return t.tx.Create(lot).Error
}

func (t *gormTransferTx) CreateTransfer(transfer *domain.Transfer) error {
	err := t.tx.Create(transfer).Error
	if isDuplicateKey(err) {
		return domain.ErrDuplicateTransferNumber
	}
	return err
}

// isDuplicateKey recognizes a unique constraint violation. The string match
// covers postgres drivers that do not surface gorm.ErrDuplicatedKey.
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "duplicate key value violates unique constraint")
}

func (t *gormTransferTx) CreateTransferItems(items []domain.TransferItem) error {
	if len(items) == 0 {
		return nil
	}
	return t.tx.Create(&items).Error
}

// NextTransferNumber allocates the next monthly sequence number. The greatest
// existing number for the month is read under a row lock so two transfers in
// the same commit window cannot allocate the same sequence. String ordering is
// correct because the suffix is fixed-width zero-padded.
func (t *gormTransferTx) NextTransferNumber(at time.Time) (string, error) {
	prefix := domain.TransferNumberPrefix(at)

	var last domain.Transfer
	err := t.tx.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("transfer_number LIKE ?", prefix+"%").
		Order("transfer_number DESC").
		First(&last).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}
	return domain.NextTransferNumber(prefix, last.TransferNumber)
}
