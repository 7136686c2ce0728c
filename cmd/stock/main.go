package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"gorm.io/gorm"

	_ "github.com/poslink/stock-service/docs"
	"github.com/poslink/stock-service/internal/stock"
	httpDelivery "github.com/poslink/stock-service/internal/stock/delivery/http"
	"github.com/poslink/stock-service/internal/stock/repository"
	"github.com/poslink/stock-service/internal/stock/usecase/command"
	"github.com/poslink/stock-service/kafka"
	"github.com/poslink/stock-service/pkg/database"
	"github.com/poslink/stock-service/pkg/logger"
	"github.com/poslink/stock-service/pkg/tracing"
)

func main() {
	// Initialize logger
	serviceName := getEnv("OTEL_SERVICE_NAME", "stock-service")
	isDevelopment := getEnv("ENVIRONMENT", "development") == "development"
	logger.Init(serviceName, isDevelopment)

	logLevel := getEnv("LOG_LEVEL", "info")
	logger.SetLevel(logLevel)

	logger.Logger.Info().
		Str("service", serviceName).
		Str("environment", getEnv("ENVIRONMENT", "development")).
		Str("log_level", logLevel).
		Msg("Starting stock service")

	// Initialize tracing
	tp, err := tracing.InitTracer(serviceName)
	if err != nil {
		logger.Logger.Warn().Err(err).Msg("Failed to initialize tracer, continuing without tracing")
	} else {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tracing.Shutdown(ctx, tp); err != nil {
				logger.Logger.Error().Err(err).Msg("Failed to shutdown tracer")
			}
		}()
	}

	// Load database configuration
	dbConfig := database.Config{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", "postgres"),
		DBName:   getEnv("DB_NAME", "stockdb"),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}

	// Connect to database
	db, err := database.NewGormConnection(dbConfig)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to connect to database")
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to get database instance")
	}
	defer sqlDB.Close()

	// Run migrations
	if err := repository.AutoMigrate(db); err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to run migrations")
	}

	logger.Logger.Info().Msg("Database initialized successfully")

	// Connect to Redis for catalog caching (optional)
	redisClient := newRedisClient()

	// Initialize Kafka publisher (optional)
	var publisher command.TransferEventPublisher
	var kafkaPublisher *kafka.Publisher
	brokers := strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ",")
	kafkaEnabled := getEnv("KAFKA_ENABLED", "true") == "true"
	if kafkaEnabled {
		kafkaPublisher, err = kafka.NewPublisher(brokers)
		if err != nil {
			logger.Logger.Warn().Err(err).Msg("Failed to create Kafka publisher, transfer events disabled")
		} else {
			publisher = kafkaPublisher
			defer kafkaPublisher.Close()
		}
	}

	// Initialize handler with Wire DI
	handler, err := stock.InitializeStockHandler(db, redisClient, publisher)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to initialize handler")
	}

	// Start the sale-completed consumer; each sale line is deducted from the
	// selling store's lots, oldest first.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if kafkaEnabled {
		startSaleConsumer(ctx, db, brokers)
	}

	// Start HTTP server
	httpPort := getEnv("HTTP_PORT", "8086")
	startHTTPServer(handler, sqlDB, httpPort)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info().Msg("Shutting down server...")
}

func newRedisClient() *redis.Client {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		logger.Logger.Info().Msg("REDIS_ADDR not set, catalog caching disabled")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Logger.Warn().Err(err).Msg("Redis unavailable, catalog caching disabled")
		return nil
	}

	logger.Logger.Info().Str("addr", addr).Msg("Connected to Redis")
	return client
}

func startSaleConsumer(ctx context.Context, db *gorm.DB, brokers []string) {
	deductHandler, err := stock.InitializeDeductStockHandler(db)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to initialize deduct stock handler")
	}

	groupID := getEnv("KAFKA_GROUP_ID", "stock-service")
	consumer, err := kafka.NewConsumer(brokers, groupID, []string{kafka.TopicSaleCompleted})
	if err != nil {
		logger.Logger.Warn().Err(err).Msg("Failed to create Kafka consumer, sale deduction disabled")
		return
	}

	consumer.RegisterHandler(kafka.EventTypeSaleCompleted, func(ctx context.Context, event kafka.SaleCompletedEvent) error {
		_, err := deductHandler.Handle(ctx, command.DeductStockCommand{
			StoreID:   event.StoreID,
			ProductID: event.ProductID,
			Quantity:  event.Quantity,
			Reference: event.SaleID,
		})
		return err
	})

	if err := consumer.Start(ctx); err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to start Kafka consumer")
	}
}

func startHTTPServer(handler *httpDelivery.StockHandler, db *sql.DB, port string) {
	// Setup router
	router := mux.NewRouter()

	// Middlewares
	middlewareConfig := httpDelivery.DefaultMiddlewareConfig()
	httpDelivery.RegisterMiddlewares(router, middlewareConfig)

	// Register routes
	handler.RegisterRoutes(router)

	// Health check endpoint
	handler.RegisterHealthCheck(router, db)

	// Swagger documentation
	httpDelivery.RegisterSwaggerDocs(router, httpSwagger.Handler())

	// Prometheus metrics endpoint
	router.Handle("/metrics", promhttp.Handler())

	// CORS middleware
	corsHandler := httpDelivery.SetupCORS(middlewareConfig)

	logger.Logger.Info().
		Str("port", port).
		Str("metrics_endpoint", "/metrics").
		Str("swagger_endpoint", "/swagger/").
		Msg("HTTP server started")

	go func() {
		if err := http.ListenAndServe(":"+port, corsHandler(router)); err != nil {
			logger.Logger.Fatal().Err(err).Msg("Failed to start HTTP server")
		}
	}()
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
