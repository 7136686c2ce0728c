package http

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"

	"github.com/poslink/stock-service/internal/stock/domain"
	"github.com/poslink/stock-service/internal/stock/usecase/command"
	"github.com/poslink/stock-service/internal/stock/usecase/query"
	"github.com/poslink/stock-service/pkg/logger"
)

// Error codes returned in the response envelope.
const (
	CodeMissingStoreIDs   = "MISSING_STORE_IDS"
	CodeMissingItems      = "MISSING_ITEMS"
	CodeInvalidItem       = "INVALID_ITEM"
	CodeInsufficientStock = "INSUFFICIENT_STOCK"
	CodeTransferFailed    = "TRANSFER_FAILED"
)

var (
	requestCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stock_service_requests_total",
			Help: "Total number of requests to stock service",
		},
		[]string{"method", "endpoint", "status"},
	)

	requestLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "stock_service_request_duration_seconds",
			Help:    "Duration of stock service requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	transferCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stock_service_transfers_total",
			Help: "Total number of inventory transfers by outcome",
		},
		[]string{"outcome"},
	)
)

// StockHandler handles HTTP requests for the stock ledger
type StockHandler struct {
	// Command handlers
	transferHandler   *command.TransferInventoryHandler
	receiveLotHandler *command.ReceiveLotHandler

	// Query handlers
	availableHandler     *query.AvailableStockHandler
	checkHandler         *query.CheckAvailableStockHandler
	listLotsHandler      *query.ListLotsHandler
	getTransferHandler   *query.GetTransferHandler
	listTransfersHandler *query.ListTransfersHandler
}

// NewStockHandler creates a new stock handler
func NewStockHandler(
	transferHandler *command.TransferInventoryHandler,
	receiveLotHandler *command.ReceiveLotHandler,
	availableHandler *query.AvailableStockHandler,
	checkHandler *query.CheckAvailableStockHandler,
	listLotsHandler *query.ListLotsHandler,
	getTransferHandler *query.GetTransferHandler,
	listTransfersHandler *query.ListTransfersHandler,
) *StockHandler {
	return &StockHandler{
		transferHandler:      transferHandler,
		receiveLotHandler:    receiveLotHandler,
		availableHandler:     availableHandler,
		checkHandler:         checkHandler,
		listLotsHandler:      listLotsHandler,
		getTransferHandler:   getTransferHandler,
		listTransfersHandler: listTransfersHandler,
	}
}

type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Code    string      `json:"code,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// metricsMiddleware wraps handlers with Prometheus metrics
func (h *StockHandler) metricsMiddleware(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		requestLatency.WithLabelValues(r.Method, endpoint).Observe(duration)
		requestCounter.WithLabelValues(r.Method, endpoint, strconv.Itoa(rw.statusCode)).Inc()
	}
}

type transferItemPayload struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
	UnitID    string `json:"unit_id"`
}

type transferRequest struct {
	SourceStoreID      string                `json:"source_store_id"`
	DestinationStoreID string                `json:"destination_store_id"`
	Items              []transferItemPayload `json:"items"`
	Notes              string                `json:"notes"`
}

// TransferInventory handles POST /api/inventory-transfer
func (h *StockHandler) TransferInventory(w http.ResponseWriter, r *http.Request) {
	var req transferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "Invalid request body",
		})
		return
	}

	if req.SourceStoreID == "" || req.DestinationStoreID == "" {
		respondJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "source_store_id and destination_store_id are required",
			Code:    CodeMissingStoreIDs,
		})
		return
	}
	if len(req.Items) == 0 {
		respondJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "at least one item is required",
			Code:    CodeMissingItems,
		})
		return
	}

	items := make([]command.TransferItemRequest, 0, len(req.Items))
	for _, item := range req.Items {
		if item.ProductID == "" || item.UnitID == "" || item.Quantity <= 0 {
			respondJSON(w, http.StatusBadRequest, Response{
				Success: false,
				Error:   "each item needs product_id, unit_id and a positive quantity",
				Code:    CodeInvalidItem,
			})
			return
		}
		items = append(items, command.TransferItemRequest{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitID:    item.UnitID,
		})
	}

	result, err := h.transferHandler.Handle(r.Context(), command.TransferInventoryCommand{
		SourceStoreID:      req.SourceStoreID,
		DestinationStoreID: req.DestinationStoreID,
		Items:              items,
		Notes:              req.Notes,
		CreatedBy:          UsernameFromContext(r.Context()),
	})
	if err != nil {
		h.respondTransferError(w, err)
		return
	}

	transferCounter.WithLabelValues("completed").Inc()
	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: result.Message,
		Data:    result,
	})
}

// respondTransferError maps engine failures onto the envelope. Every
// validation-class rejection, including insufficient stock, is a 400; only
// unexpected failures surface as 500.
func (h *StockHandler) respondTransferError(w http.ResponseWriter, err error) {
	var transferErr *domain.TransferError
	if errors.As(err, &transferErr) {
		transferCounter.WithLabelValues("rejected").Inc()
		respondJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   transferErr.Message,
			Code:    transferErr.Code,
		})
		return
	}

	var insufficient *domain.InsufficientStockError
	if errors.As(err, &insufficient) {
		transferCounter.WithLabelValues("insufficient_stock").Inc()
		respondJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   insufficient.Error(),
			Code:    CodeInsufficientStock,
			Details: insufficient.Shortfalls,
		})
		return
	}

	transferCounter.WithLabelValues("failed").Inc()
	logger.Logger.Error().Err(err).Msg("Inventory transfer failed")
	respondJSON(w, http.StatusInternalServerError, Response{
		Success: false,
		Error:   "Failed to transfer inventory",
		Code:    CodeTransferFailed,
	})
}

// GetAvailableStock handles GET /api/stock/{store_id}/{product_id}
func (h *StockHandler) GetAvailableStock(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	total, err := h.availableHandler.Handle(r.Context(), query.AvailableStockQuery{
		StoreID:   vars["store_id"],
		ProductID: vars["product_id"],
	})
	if err != nil {
		respondJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   err.Error(),
		})
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data: map[string]interface{}{
			"store_id":           vars["store_id"],
			"product_id":         vars["product_id"],
			"available_quantity": total,
		},
	})
}

// ListLots handles GET /api/stock/{store_id}/{product_id}/lots
func (h *StockHandler) ListLots(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	includeExhausted, _ := strconv.ParseBool(r.URL.Query().Get("include_exhausted"))

	lots, err := h.listLotsHandler.Handle(r.Context(), query.ListLotsQuery{
		StoreID:          vars["store_id"],
		ProductID:        vars["product_id"],
		IncludeExhausted: includeExhausted,
	})
	if err != nil {
		respondJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   err.Error(),
		})
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    lots,
	})
}

type receiveLotRequest struct {
	StoreID         string          `json:"store_id"`
	ProductID       string          `json:"product_id"`
	Quantity        int64           `json:"quantity"`
	UnitCost        decimal.Decimal `json:"unit_cost"`
	UnitID          string          `json:"unit_id"`
	PurchaseOrderID string          `json:"purchase_order_id"`
	ImportDate      time.Time       `json:"import_date"`
}

// ReceiveLot handles POST /api/lots
func (h *StockHandler) ReceiveLot(w http.ResponseWriter, r *http.Request) {
	var req receiveLotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "Invalid request body",
		})
		return
	}

	lot, err := h.receiveLotHandler.Handle(r.Context(), command.ReceiveLotCommand{
		StoreID:         req.StoreID,
		ProductID:       req.ProductID,
		Quantity:        req.Quantity,
		UnitCost:        req.UnitCost,
		UnitID:          req.UnitID,
		PurchaseOrderID: req.PurchaseOrderID,
		ImportDate:      req.ImportDate,
	})
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, domain.ErrNotFound) {
			status = http.StatusNotFound
		}
		respondJSON(w, status, Response{
			Success: false,
			Error:   err.Error(),
		})
		return
	}

	respondJSON(w, http.StatusCreated, Response{
		Success: true,
		Message: "Lot received successfully",
		Data:    lot,
	})
}

// GetTransfer handles GET /api/transfers/{id}
func (h *StockHandler) GetTransfer(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	detail, err := h.getTransferHandler.Handle(r.Context(), query.GetTransferQuery{ID: vars["id"]})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			respondJSON(w, http.StatusNotFound, Response{
				Success: false,
				Error:   "Transfer not found",
			})
			return
		}
		respondJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   err.Error(),
		})
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    detail,
	})
}

// ListTransfers handles GET /api/transfers
func (h *StockHandler) ListTransfers(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	month := r.URL.Query().Get("month")

	transfers, err := h.listTransfersHandler.Handle(r.Context(), query.ListTransfersQuery{
		Limit:  limit,
		Offset: offset,
		Month:  month,
	})
	if err != nil {
		respondJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   err.Error(),
		})
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    transfers,
	})
}

// CheckStock handles POST /api/stock/{store_id}/check
func (h *StockHandler) CheckStock(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	var req struct {
		Items []struct {
			ProductID string `json:"product_id"`
			Quantity  int64  `json:"quantity"`
		} `json:"items"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "Invalid request body",
		})
		return
	}

	items := make([]query.StockRequest, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, query.StockRequest{ProductID: item.ProductID, Quantity: item.Quantity})
	}

	shortfalls, err := h.checkHandler.Handle(r.Context(), query.CheckAvailableStockQuery{
		StoreID: vars["store_id"],
		Items:   items,
	})
	if err != nil {
		respondJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   err.Error(),
		})
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data: map[string]interface{}{
			"sufficient": len(shortfalls) == 0,
			"shortfalls": shortfalls,
		},
	})
}

// RegisterRoutes registers all stock routes
func (h *StockHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/inventory-transfer",
		AuthMiddleware(h.metricsMiddleware("transfer_inventory", h.TransferInventory))).Methods("POST")
	router.HandleFunc("/api/lots",
		AuthMiddleware(h.metricsMiddleware("receive_lot", h.ReceiveLot))).Methods("POST")
	router.HandleFunc("/api/stock/{store_id}/{product_id}",
		h.metricsMiddleware("get_available_stock", h.GetAvailableStock)).Methods("GET")
	router.HandleFunc("/api/stock/{store_id}/{product_id}/lots",
		h.metricsMiddleware("list_lots", h.ListLots)).Methods("GET")
	router.HandleFunc("/api/stock/{store_id}/check",
		h.metricsMiddleware("check_stock", h.CheckStock)).Methods("POST")
	router.HandleFunc("/api/transfers",
		h.metricsMiddleware("list_transfers", h.ListTransfers)).Methods("GET")
	router.HandleFunc("/api/transfers/{id}",
		h.metricsMiddleware("get_transfer", h.GetTransfer)).Methods("GET")
}

// RegisterHealthCheck registers health check endpoint
func (h *StockHandler) RegisterHealthCheck(router *mux.Router, db *sql.DB) {
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(); err != nil {
			respondJSON(w, http.StatusServiceUnavailable, Response{
				Success: false,
				Error:   "Database unavailable",
			})
			return
		}

		respondJSON(w, http.StatusOK, Response{
			Success: true,
			Message: "Stock service is healthy",
		})
	}).Methods("GET")
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
