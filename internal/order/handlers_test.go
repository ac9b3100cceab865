package order

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/antonminaichev/gophershop/internal/middleware"
	"github.com/antonminaichev/gophershop/internal/types/user"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(store *fakeStore) (chi.Router, *user.User) {
	h := NewHandler(NewService(store))
	caller := &user.User{ID: uuid.New(), Name: "Alice", Roles: []string{user.RoleUser, user.RoleAdmin}}

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(middleware.ContextWithUser(req.Context(), caller)))
		})
	})
	r.Post("/api/orders", h.PlaceOrder)
	r.Get("/api/orders/{id}", h.GetOrder)
	r.Patch("/api/orders/{id}", h.UpdateStatus)
	r.Patch("/api/orders/{id}/cancel", h.CancelOrder)
	r.Delete("/api/orders/{id}", h.RemoveOrder)
	return r, caller
}

func orderBody(productID uuid.UUID, qty int) string {
	return fmt.Sprintf(`{
		"shipping": {"phone":"+79990001122","address":"Tverskaya 1","city":"Moscow","post_code":"125009","state":"Moscow","country":"RU"},
		"ordered_products": [{"product_id":%q,"unit_price":"5.00","quantity":%d}]
	}`, productID, qty)
}

func TestPlaceOrderHandler(t *testing.T) {
	store := newFakeStore()
	pid := store.addProduct("5.00", 3)
	r, _ := newTestRouter(store)

	tests := []struct {
		name     string
		body     string
		wantCode int
	}{
		{"created", orderBody(pid, 2), http.StatusCreated},
		{"insufficient stock", orderBody(pid, 99), http.StatusBadRequest},
		{"unknown product", orderBody(uuid.New(), 1), http.StatusNotFound},
		{"zero quantity", orderBody(pid, 0), http.StatusBadRequest},
		{"broken json", `{"shipping":`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/orders", bytes.NewBufferString(tt.body))
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.wantCode, w.Code, w.Body.String())
		})
	}
}

func TestOrderStatusHandler(t *testing.T) {
	store := newFakeStore()
	pid := store.addProduct("5.00", 10)
	r, caller := newTestRouter(store)

	svc := NewService(store)
	o := placeOrder(t, svc, caller.ID, item(pid, "5.00", 1))

	patch := func(id, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPatch, "/api/orders/"+id, bytes.NewBufferString(body))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusOK, patch(o.ID.String(), `{"status":"shipped"}`).Code)
	// shipped -> processing запрещён
	assert.Equal(t, http.StatusBadRequest, patch(o.ID.String(), `{"status":"processing"}`).Code)
	assert.Equal(t, http.StatusBadRequest, patch(o.ID.String(), `{"status":"lost"}`).Code)
	assert.Equal(t, http.StatusNotFound, patch(uuid.New().String(), `{"status":"shipped"}`).Code)
	assert.Equal(t, http.StatusBadRequest, patch("not-a-uuid", `{"status":"shipped"}`).Code)
}

func TestCancelAndRemoveHandlers(t *testing.T) {
	store := newFakeStore()
	pid := store.addProduct("5.00", 10)
	r, caller := newTestRouter(store)

	svc := NewService(store)
	o := placeOrder(t, svc, caller.ID, item(pid, "5.00", 2))

	req := httptest.NewRequest(http.MethodPatch, "/api/orders/"+o.ID.String()+"/cancel", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 10, store.products[pid].Stock)

	// отменённый заказ нельзя отменить повторно
	req = httptest.NewRequest(http.MethodPatch, "/api/orders/"+o.ID.String()+"/cancel", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req = httptest.NewRequest(http.MethodDelete, "/api/orders/"+o.ID.String(), nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/orders/"+o.ID.String(), nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
