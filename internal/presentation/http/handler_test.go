package httppresentation

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	appBatch "github.com/eccennah/AuditStock/internal/application/batch"
	appCatalog "github.com/eccennah/AuditStock/internal/application/catalog"
	appOrder "github.com/eccennah/AuditStock/internal/application/order"
	"github.com/eccennah/AuditStock/internal/domain/auth"
	"github.com/eccennah/AuditStock/internal/infrastructure/clock"
	"github.com/eccennah/AuditStock/internal/infrastructure/id"
	"github.com/eccennah/AuditStock/internal/infrastructure/memory"
	"github.com/eccennah/AuditStock/internal/infrastructure/serial"
	"github.com/eccennah/AuditStock/internal/observability"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	roles := memory.NewRoleStore("owner")
	require.NoError(t, roles.Grant(context.Background(), "owner", "carol", auth.RoleCashier))

	products := memory.NewProductRepository()
	gate := serial.NewGate()
	heights := clock.NewLogical()
	tel := observability.Nop()

	catalog := appCatalog.NewService(products, roles, id.NewAllocator(1), gate, nil, tel)
	orders := appOrder.NewService(memory.NewOrderRepository(), products, roles, id.NewAllocator(1), heights, gate, nil, tel)
	batches := appBatch.NewService(memory.NewBatchRepository(), products, roles, id.NewAllocator(1), heights, gate, nil, tel)

	h := NewHandler(catalog, orders, batches, memory.NewLedger(), observability.NopLogger(), tel)
	return h.Router()
}

func doJSON(t *testing.T, router http.Handler, method, path, identity string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if identity != "" {
		req.Header.Set(headerIdentity, identity)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHTTPFlow(t *testing.T) {
	router := newTestRouter(t)

	// Admin registers a product.
	rec := doJSON(t, router, http.MethodPost, "/products", "owner",
		map[string]any{"name": "Widget", "price": 100, "stock": 10})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created struct {
		ProductID uint64 `json:"product_id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.Equal(t, uint64(1), created.ProductID)

	// Non-admin restock is forbidden.
	rec = doJSON(t, router, http.MethodPost, "/products/restock", "carol",
		map[string]any{"product_id": 1, "quantity": 5})
	require.Equal(t, http.StatusForbidden, rec.Code)

	// Admin restock succeeds.
	rec = doJSON(t, router, http.MethodPost, "/products/restock", "owner",
		map[string]any{"product_id": 1, "quantity": 5})
	require.Equal(t, http.StatusOK, rec.Code)
	var restocked struct {
		Stock int64 `json:"stock"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &restocked))
	require.Equal(t, int64(15), restocked.Stock)

	// Cashier creates and finalizes an order.
	rec = doJSON(t, router, http.MethodPost, "/orders", "carol",
		map[string]any{"product_id": 1, "quantity": 5})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/orders/finalize", "carol",
		map[string]any{"order_id": 1})
	require.Equal(t, http.StatusOK, rec.Code)

	// Second finalize conflicts.
	rec = doJSON(t, router, http.MethodPost, "/orders/finalize", "carol",
		map[string]any{"order_id": 1})
	require.Equal(t, http.StatusConflict, rec.Code)

	// Stock settled at 10.
	rec = doJSON(t, router, http.MethodGet, "/products/get?id=1", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var prod struct {
		Stock int64 `json:"stock"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &prod))
	require.Equal(t, int64(10), prod.Stock)
}

func TestHTTPBatchFlow(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/products", "owner",
		map[string]any{"name": "Widget", "price": 100, "stock": 10})
	require.Equal(t, http.StatusCreated, rec.Code)

	// Oversubscribed batch is rejected at creation.
	rec = doJSON(t, router, http.MethodPost, "/batches", "carol",
		map[string]any{"items": []map[string]any{
			{"product_id": 1, "quantity": 5},
			{"product_id": 1, "quantity": 20},
		}})
	require.Equal(t, http.StatusConflict, rec.Code)

	// Valid batch settles.
	rec = doJSON(t, router, http.MethodPost, "/batches", "carol",
		map[string]any{"items": []map[string]any{
			{"product_id": 1, "quantity": 3},
			{"product_id": 1, "quantity": 4},
		}})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created struct {
		BatchID uint64 `json:"batch_id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = doJSON(t, router, http.MethodPost, "/batches/finalize", "carol",
		map[string]any{"batch_id": created.BatchID})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/batches/items?batch_id=1&index=1", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var item struct {
		ProductID uint64 `json:"product_id"`
		Quantity  int64  `json:"quantity"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &item))
	require.Equal(t, uint64(1), item.ProductID)
	require.Equal(t, int64(4), item.Quantity)
}

func TestHTTPErrors(t *testing.T) {
	router := newTestRouter(t)

	// Unknown product.
	rec := doJSON(t, router, http.MethodGet, "/products/get?id=9", "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	// Missing identity header.
	rec = doJSON(t, router, http.MethodPost, "/products", "",
		map[string]any{"name": "Widget", "price": 100, "stock": 10})
	require.Equal(t, http.StatusForbidden, rec.Code)

	// Wrong method.
	rec = doJSON(t, router, http.MethodGet, "/products", "", nil)
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	// Malformed body.
	req := httptest.NewRequest(http.MethodPost, "/orders", bytes.NewBufferString("{"))
	req.Header.Set(headerIdentity, "carol")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)

	// Empty batch.
	rec = doJSON(t, router, http.MethodPost, "/batches", "carol",
		map[string]any{"items": []map[string]any{}})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	// Request id is echoed.
	rec = doJSON(t, router, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, rec.Header().Get(headerRequestID))
}
