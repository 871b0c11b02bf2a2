package httppresentation

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	appBatch "github.com/eccennah/AuditStock/internal/application/batch"
	appCatalog "github.com/eccennah/AuditStock/internal/application/catalog"
	appOrder "github.com/eccennah/AuditStock/internal/application/order"
	"github.com/eccennah/AuditStock/internal/domain/auth"
	domainBatch "github.com/eccennah/AuditStock/internal/domain/batch"
	domainLedger "github.com/eccennah/AuditStock/internal/domain/ledger"
	domainOrder "github.com/eccennah/AuditStock/internal/domain/order"
	domainProduct "github.com/eccennah/AuditStock/internal/domain/product"
	"github.com/eccennah/AuditStock/internal/observability"
	"github.com/eccennah/AuditStock/internal/observability/logctx"
)

const (
	componentHTTPHandler = "http_server"
	headerIdentity       = "X-Identity"
)

type Handler struct {
	catalog *appCatalog.Service
	orders  *appOrder.Service
	batches *appBatch.Service
	ledger  domainLedger.Reader
	log     observability.Logger
	tel     observability.Observability
}

func NewHandler(
	catalog *appCatalog.Service,
	orders *appOrder.Service,
	batches *appBatch.Service,
	ledger domainLedger.Reader,
	logger observability.Logger,
	tel observability.Observability,
) *Handler {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &Handler{
		catalog: catalog,
		orders:  orders,
		batches: batches,
		ledger:  ledger,
		log:     logger.With(observability.F("component", componentHTTPHandler)),
		tel:     tel,
	}
}

func (h *Handler) Router() http.Handler {
	mux := http.NewServeMux()

	h.muxHandle(mux, http.MethodPost, "/products", h.handleRegisterProduct)
	h.muxHandle(mux, http.MethodPost, "/products/restock", h.handleRestock)
	h.muxHandle(mux, http.MethodGet, "/products/get", h.handleGetProduct)
	h.muxHandle(mux, http.MethodPost, "/orders", h.handleCreateOrder)
	h.muxHandle(mux, http.MethodPost, "/orders/finalize", h.handleFinalizeOrder)
	h.muxHandle(mux, http.MethodGet, "/orders/get", h.handleGetOrder)
	h.muxHandle(mux, http.MethodPost, "/batches", h.handleCreateBatch)
	h.muxHandle(mux, http.MethodPost, "/batches/finalize", h.handleFinalizeBatch)
	h.muxHandle(mux, http.MethodGet, "/batches/get", h.handleGetBatch)
	h.muxHandle(mux, http.MethodGet, "/batches/items", h.handleGetBatchItem)
	h.muxHandle(mux, http.MethodGet, "/ledger", h.handleLedger)
	h.muxHandle(mux, http.MethodGet, "/health", h.handleHealth)

	return mux
}

// muxHandle wires a route with the middleware chain:
// Trace -> request logger + HTTP metrics -> access log -> handler.
func (h *Handler) muxHandle(mux *http.ServeMux, method, route string, handler http.HandlerFunc) {
	mux.HandleFunc(route, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		ctx := contextWithRoute(r.Context(), route)
		r = r.WithContext(ctx)

		wrapped := TraceMiddleware(
			ObservabilityMiddleware(h.log, h.tel)(
				h.withAccessLog(handler),
			),
		)
		wrapped.ServeHTTP(w, r)
	})
}

func identityFrom(r *http.Request) auth.Identity {
	return auth.Identity(r.Header.Get(headerIdentity))
}

type registerProductRequest struct {
	Name  string `json:"name"`
	Price int64  `json:"price"`
	Stock int64  `json:"stock"`
}

type registerProductResponse struct {
	ProductID uint64 `json:"product_id"`
}

func (h *Handler) handleRegisterProduct(w http.ResponseWriter, r *http.Request) {
	var req registerProductRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	id, err := h.catalog.Register(r.Context(), identityFrom(r), req.Name, req.Price, req.Stock)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, registerProductResponse{ProductID: id})
}

type restockRequest struct {
	ProductID uint64 `json:"product_id"`
	Quantity  int64  `json:"quantity"`
}

type restockResponse struct {
	ProductID uint64 `json:"product_id"`
	Stock     int64  `json:"stock"`
}

func (h *Handler) handleRestock(w http.ResponseWriter, r *http.Request) {
	var req restockRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	stock, err := h.catalog.Restock(r.Context(), identityFrom(r), req.ProductID, req.Quantity)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, restockResponse{ProductID: req.ProductID, Stock: stock})
}

type productResponse struct {
	ProductID uint64 `json:"product_id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Stock     int64  `json:"stock"`
}

func (h *Handler) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := queryID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	p, err := h.catalog.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, productResponse{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Stock:     p.Stock,
	})
}

type createOrderRequest struct {
	ProductID uint64 `json:"product_id"`
	Quantity  int64  `json:"quantity"`
}

type createOrderResponse struct {
	OrderID uint64 `json:"order_id"`
}

func (h *Handler) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	id, err := h.orders.Create(r.Context(), identityFrom(r), req.ProductID, req.Quantity)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, createOrderResponse{OrderID: id})
}

type finalizeOrderRequest struct {
	OrderID uint64 `json:"order_id"`
}

type finalizeOrderResponse struct {
	OrderID   uint64 `json:"order_id"`
	Finalized bool   `json:"finalized"`
}

func (h *Handler) handleFinalizeOrder(w http.ResponseWriter, r *http.Request) {
	var req finalizeOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := h.orders.Finalize(r.Context(), identityFrom(r), req.OrderID); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, finalizeOrderResponse{OrderID: req.OrderID, Finalized: true})
}

type orderResponse struct {
	OrderID   uint64 `json:"order_id"`
	ProductID uint64 `json:"product_id"`
	Quantity  int64  `json:"quantity"`
	CreatedBy string `json:"created_by"`
	CreatedAt uint64 `json:"created_at"`
	Finalized bool   `json:"finalized"`
}

func (h *Handler) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := queryID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	o, err := h.orders.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orderResponse{
		OrderID:   o.ID,
		ProductID: o.ProductID,
		Quantity:  o.Quantity,
		CreatedBy: string(o.CreatedBy),
		CreatedAt: o.CreatedAt,
		Finalized: o.Finalized,
	})
}

type batchItemRequest struct {
	ProductID uint64 `json:"product_id"`
	Quantity  int64  `json:"quantity"`
}

type createBatchRequest struct {
	Items []batchItemRequest `json:"items"`
}

type createBatchResponse struct {
	BatchID uint64 `json:"batch_id"`
}

func (h *Handler) handleCreateBatch(w http.ResponseWriter, r *http.Request) {
	var req createBatchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	items := make([]domainBatch.LineItem, len(req.Items))
	for i, it := range req.Items {
		items[i] = domainBatch.LineItem{ProductID: it.ProductID, Quantity: it.Quantity}
	}

	id, err := h.batches.Create(r.Context(), identityFrom(r), items)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, createBatchResponse{BatchID: id})
}

type finalizeBatchRequest struct {
	BatchID uint64 `json:"batch_id"`
}

type finalizeBatchResponse struct {
	BatchID   uint64 `json:"batch_id"`
	Finalized bool   `json:"finalized"`
}

func (h *Handler) handleFinalizeBatch(w http.ResponseWriter, r *http.Request) {
	var req finalizeBatchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := h.batches.Finalize(r.Context(), identityFrom(r), req.BatchID); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, finalizeBatchResponse{BatchID: req.BatchID, Finalized: true})
}

type batchResponse struct {
	BatchID   uint64 `json:"batch_id"`
	CreatedBy string `json:"created_by"`
	CreatedAt uint64 `json:"created_at"`
	Finalized bool   `json:"finalized"`
	ItemCount int    `json:"item_count"`
}

func (h *Handler) handleGetBatch(w http.ResponseWriter, r *http.Request) {
	id, err := queryID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	b, err := h.batches.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, batchResponse{
		BatchID:   b.ID,
		CreatedBy: string(b.CreatedBy),
		CreatedAt: b.CreatedAt,
		Finalized: b.Finalized,
		ItemCount: b.ItemCount,
	})
}

type batchItemResponse struct {
	BatchID   uint64 `json:"batch_id"`
	Index     int    `json:"index"`
	ProductID uint64 `json:"product_id"`
	Quantity  int64  `json:"quantity"`
}

func (h *Handler) handleGetBatchItem(w http.ResponseWriter, r *http.Request) {
	batchID, err := queryID(r, "batch_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	index, err := strconv.Atoi(r.URL.Query().Get("index"))
	if err != nil || index < 0 {
		writeError(w, http.StatusBadRequest, errors.New("index must be a non-negative integer"))
		return
	}
	it, err := h.batches.GetItem(r.Context(), batchID, index)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, batchItemResponse{
		BatchID:   it.BatchID,
		Index:     it.Index,
		ProductID: it.ProductID,
		Quantity:  it.Quantity,
	})
}

type ledgerEntryResponse struct {
	Seq        uint64 `json:"seq"`
	Kind       string `json:"kind"`
	Actor      string `json:"actor"`
	ProductID  uint64 `json:"product_id,omitempty"`
	EntityID   uint64 `json:"entity_id,omitempty"`
	StockDelta int64  `json:"stock_delta"`
	Stock      int64  `json:"stock"`
}

func (h *Handler) handleLedger(w http.ResponseWriter, r *http.Request) {
	var (
		entries []domainLedger.Entry
		err     error
	)
	if raw := r.URL.Query().Get("product_id"); raw != "" {
		var productID uint64
		productID, err = strconv.ParseUint(raw, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, errors.New("product_id must be an unsigned integer"))
			return
		}
		entries, err = h.ledger.ByProduct(r.Context(), productID)
	} else {
		entries, err = h.ledger.All(r.Context())
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	out := make([]ledgerEntryResponse, len(entries))
	for i, e := range entries {
		out[i] = ledgerEntryResponse{
			Seq:        e.Seq,
			Kind:       string(e.Kind),
			Actor:      string(e.Actor),
			ProductID:  e.ProductID,
			EntityID:   e.EntityID,
			StockDelta: e.StockDelta,
			Stock:      e.Stock,
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// withAccessLog writes a single access log after the handler completes,
// using the request-scoped logger injected by ObservabilityMiddleware.
func (h *Handler) withAccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(lrw, r)

		logctx.FromOr(r.Context(), h.log).Info("http_access",
			observability.F("method", r.Method),
			observability.F("route", routeFromContext(r.Context())),
			observability.F("path", r.URL.Path),
			observability.F("status", lrw.status),
			observability.F("latency_ms", time.Since(start).Milliseconds()),
		)
	})
}

func queryID(r *http.Request, key string) (uint64, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, errors.New(key + " is required")
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, errors.New(key + " must be an unsigned integer")
	}
	return id, nil
}

func decodeJSON(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auth.ErrNotAuthorized):
		writeError(w, http.StatusForbidden, err)
	case errors.Is(err, domainProduct.ErrNotFound),
		errors.Is(err, domainOrder.ErrNotFound),
		errors.Is(err, domainBatch.ErrNotFound),
		errors.Is(err, domainBatch.ErrItemNotFound):
		writeError(w, http.StatusNotFound, err)
	case errors.Is(err, domainProduct.ErrInsufficientStock),
		errors.Is(err, domainOrder.ErrAlreadyFinalized),
		errors.Is(err, domainBatch.ErrAlreadyFinalized):
		writeError(w, http.StatusConflict, err)
	case errors.Is(err, domainProduct.ErrInvalidQuantity),
		errors.Is(err, domainProduct.ErrInvalidName),
		errors.Is(err, domainProduct.ErrInvalidPrice),
		errors.Is(err, domainProduct.ErrInvalidStock),
		errors.Is(err, domainOrder.ErrInvalidQuantity),
		errors.Is(err, domainBatch.ErrEmpty),
		errors.Is(err, domainBatch.ErrTooManyItems):
		writeError(w, http.StatusBadRequest, err)
	default:
		writeError(w, http.StatusInternalServerError, err)
	}
}
