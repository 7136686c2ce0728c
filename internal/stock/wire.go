//go:build wireinject
// +build wireinject

package stock

import (
	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/poslink/stock-service/internal/stock/cache"
	"github.com/poslink/stock-service/internal/stock/delivery/http"
	"github.com/poslink/stock-service/internal/stock/domain"
	"github.com/poslink/stock-service/internal/stock/repository"
	"github.com/poslink/stock-service/internal/stock/usecase/command"
	"github.com/poslink/stock-service/internal/stock/usecase/query"
)

// ProvideLotRepository provides the traced lot repository
func ProvideLotRepository(db *gorm.DB) domain.LotRepository {
	return repository.NewGormLotRepositoryWithTracing(db)
}

// ProvideStoreRepository provides the store repository
func ProvideStoreRepository(db *gorm.DB) domain.StoreRepository {
	return repository.NewGormStoreRepository(db)
}

// ProvideProductRepository provides the product repository behind the Redis cache
func ProvideProductRepository(db *gorm.DB, redisClient *redis.Client) domain.ProductRepository {
	return cache.NewProductCache(repository.NewGormProductRepository(db), redisClient)
}

// ProvideTransferRepository provides the transfer repository
func ProvideTransferRepository(db *gorm.DB) domain.TransferRepository {
	return repository.NewGormTransferRepository(db)
}

// ProvideUnitOfWork provides the transactional unit of work
func ProvideUnitOfWork(db *gorm.DB) domain.UnitOfWork {
	return repository.NewGormUnitOfWork(db)
}

// Wire sets
var RepositorySet = wire.NewSet(
	ProvideLotRepository,
	ProvideStoreRepository,
	ProvideProductRepository,
	ProvideTransferRepository,
	ProvideUnitOfWork,
)

var CommandHandlerSet = wire.NewSet(
	command.NewTransferInventoryHandler,
	command.NewReceiveLotHandler,
	command.NewDeductStockHandler,
)

var QueryHandlerSet = wire.NewSet(
	query.NewAvailableStockHandler,
	query.NewCheckAvailableStockHandler,
	query.NewListLotsHandler,
	query.NewGetTransferHandler,
	query.NewListTransfersHandler,
)

// InitializeStockHandler initializes the HTTP handler with all dependencies
func InitializeStockHandler(db *gorm.DB, redisClient *redis.Client, publisher command.TransferEventPublisher) (*http.StockHandler, error) {
	wire.Build(
		RepositorySet,
		CommandHandlerSet,
		QueryHandlerSet,
		http.NewStockHandler,
	)
	return nil, nil
}

// InitializeDeductStockHandler initializes the sale deduction handler consumed
// by the Kafka sale-completed subscription
func InitializeDeductStockHandler(db *gorm.DB) (*command.DeductStockHandler, error) {
	wire.Build(
		ProvideUnitOfWork,
		command.NewDeductStockHandler,
	)
	return nil, nil
}
