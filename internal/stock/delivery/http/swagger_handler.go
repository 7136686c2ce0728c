package http

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RegisterSwaggerDocs registers Swagger documentation routes
// @Summary Swagger documentation
// @Description Swagger API documentation for Stock Service
// @Tags Swagger
// @Success 200 {string} string "Swagger UI"
// @Router /swagger/ [get]
func RegisterSwaggerDocs(router *mux.Router, swaggerHandler http.Handler) {
	// Swagger UI
	router.PathPrefix("/swagger/").Handler(swaggerHandler)
}

// TransferInventory godoc
// @Summary Transfer inventory between stores
// @Description Atomically move stock between two stores of the same tenant, consuming source lots oldest first
// @Tags Transfers
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body object{source_store_id=string,destination_store_id=string,items=array,notes=string} true "Transfer request"
// @Success 200 {object} object{success=bool,message=string,data=object}
// @Failure 400 {object} object{success=bool,error=string,code=string,details=array}
// @Failure 500 {object} object{success=bool,error=string,code=string}
// @Router /api/inventory-transfer [post]
func (h *StockHandler) TransferInventoryDoc() {}

// ReceiveLot godoc
// @Summary Receive a purchase lot
// @Description Record purchased stock arriving at a store as a new lot
// @Tags Lots
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body object{store_id=string,product_id=string,quantity=int,unit_cost=string,unit_id=string,purchase_order_id=string,import_date=string} true "Lot data"
// @Success 201 {object} object{success=bool,message=string,data=object}
// @Failure 400 {object} object{success=bool,error=string}
// @Failure 404 {object} object{success=bool,error=string}
// @Router /api/lots [post]
func (h *StockHandler) ReceiveLotDoc() {}

// GetAvailableStock godoc
// @Summary Get available stock
// @Description Get the total remaining quantity for a product at a store
// @Tags Stock
// @Produce json
// @Param store_id path string true "Store ID"
// @Param product_id path string true "Product ID"
// @Success 200 {object} object{success=bool,data=object{store_id=string,product_id=string,available_quantity=int}}
// @Failure 400 {object} object{success=bool,error=string}
// @Router /api/stock/{store_id}/{product_id} [get]
func (h *StockHandler) GetAvailableStockDoc() {}

// ListLots godoc
// @Summary List lots
// @Description List the purchase lots of a product at a store, oldest first
// @Tags Stock
// @Produce json
// @Param store_id path string true "Store ID"
// @Param product_id path string true "Product ID"
// @Param include_exhausted query bool false "Include fully consumed lots"
// @Success 200 {object} object{success=bool,data=array}
// @Failure 400 {object} object{success=bool,error=string}
// @Router /api/stock/{store_id}/{product_id}/lots [get]
func (h *StockHandler) ListLotsDoc() {}

// CheckStock godoc
// @Summary Check stock sufficiency
// @Description Validate a batch of requested quantities against available stock; reports every shortfall
// @Tags Stock
// @Accept json
// @Produce json
// @Param store_id path string true "Store ID"
// @Param request body object{items=array} true "Requested items"
// @Success 200 {object} object{success=bool,data=object{sufficient=bool,shortfalls=array}}
// @Failure 400 {object} object{success=bool,error=string}
// @Router /api/stock/{store_id}/check [post]
func (h *StockHandler) CheckStockDoc() {}

// GetTransfer godoc
// @Summary Get transfer by ID
// @Description Get a transfer with its per-lot items
// @Tags Transfers
// @Produce json
// @Param id path string true "Transfer ID"
// @Success 200 {object} object{success=bool,data=object}
// @Failure 404 {object} object{success=bool,error=string}
// @Router /api/transfers/{id} [get]
func (h *StockHandler) GetTransferDoc() {}

// ListTransfers godoc
// @Summary List transfers
// @Description List transfers newest first, optionally filtered by month
// @Tags Transfers
// @Produce json
// @Param limit query int false "Limit"
// @Param offset query int false "Offset"
// @Param month query string false "Calendar month filter (YYYY-MM)"
// @Success 200 {object} object{success=bool,data=array}
// @Failure 400 {object} object{success=bool,error=string}
// @Router /api/transfers [get]
func (h *StockHandler) ListTransfersDoc() {}

// HealthCheck godoc
// @Summary Health check
// @Description Check service health and database connectivity
// @Tags Health
// @Produce json
// @Success 200 {object} object{success=bool,message=string}
// @Failure 503 {object} object{success=bool,error=string}
// @Router /health [get]
func (h *StockHandler) HealthCheckDoc() {}
