package main

// @title Stock Service API
// @version 1.0
// @description FIFO lot-based stock ledger and inventory transfer API with full observability (logging, tracing, metrics)
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url http://github.com/poslink/stock-service
// @contact.email support@example.com

// @license.name MIT
// @license.url https://github.com/poslink/stock-service/blob/main/LICENSE

// @host localhost:8086
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @tag.name Stock
// @tag.description Stock query endpoints

// @tag.name Lots
// @tag.description Purchase lot endpoints

// @tag.name Transfers
// @tag.description Inventory transfer endpoints

// @tag.name Health
// @tag.description Health check endpoints

// @tag.name Swagger
// @tag.description Swagger documentation endpoints
