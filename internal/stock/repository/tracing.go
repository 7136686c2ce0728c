package repository

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	"github.com/poslink/stock-service/internal/stock/domain"
)

var tracer = otel.Tracer("stock-repository")

// GormLotRepositoryWithTracing wraps GormLotRepository with tracing
type GormLotRepositoryWithTracing struct {
	*GormLotRepository
}

// NewGormLotRepositoryWithTracing creates a new lot repository with tracing
func NewGormLotRepositoryWithTracing(db *gorm.DB) *GormLotRepositoryWithTracing {
	return &GormLotRepositoryWithTracing{
		GormLotRepository: NewGormLotRepository(db),
	}
}

// Create with tracing
func (r *GormLotRepositoryWithTracing) Create(ctx context.Context, lot *domain.PurchaseLot) error {
	ctx, span := tracer.Start(ctx, "repository.CreateLot")
	span.SetAttributes(
		attribute.String("lot.store_id", lot.StoreID),
		attribute.String("lot.product_id", lot.ProductID),
		attribute.Int64("lot.original_quantity", lot.OriginalQuantity),
	)
	defer span.End()

	err := r.GormLotRepository.Create(ctx, lot)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	span.SetAttributes(attribute.String("lot.id", lot.ID))
	return nil
}

// FindAvailableByStoreAndProduct with tracing
func (r *GormLotRepositoryWithTracing) FindAvailableByStoreAndProduct(ctx context.Context, storeID, productID string) ([]domain.PurchaseLot, error) {
	ctx, span := tracer.Start(ctx, "repository.FindAvailableLots")
	span.SetAttributes(
		attribute.String("lot.store_id", storeID),
		attribute.String("lot.product_id", productID),
	)
	defer span.End()

	lots, err := r.GormLotRepository.FindAvailableByStoreAndProduct(ctx, storeID, productID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("result.count", len(lots)))
	return lots, nil
}

// AvailableQuantity with tracing
func (r *GormLotRepositoryWithTracing) AvailableQuantity(ctx context.Context, storeID, productID string) (int64, error) {
	ctx, span := tracer.Start(ctx, "repository.AvailableQuantity")
	span.SetAttributes(
		attribute.String("lot.store_id", storeID),
		attribute.String("lot.product_id", productID),
	)
	defer span.End()

	total, err := r.GormLotRepository.AvailableQuantity(ctx, storeID, productID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}

	span.SetAttributes(attribute.Int64("result.available", total))
	return total, nil
}
