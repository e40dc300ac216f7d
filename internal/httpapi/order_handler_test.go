package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopkit/storefront/internal/catalog"
	"github.com/shopkit/storefront/internal/domain"
	"github.com/shopkit/storefront/internal/events"
	"github.com/shopkit/storefront/internal/order"
)

// --- helpers ---

func newOrderFixture(t *testing.T) (*OrderHandler, *order.Service, *catalog.MemoryRepository) {
	t.Helper()
	products := catalog.NewMemoryRepository()
	svc := order.NewService(order.NewMemoryRepository(), products, events.NopPublisher{})
	return NewOrderHandler(svc), svc, products
}

func seedProduct(t *testing.T, products *catalog.MemoryRepository, name string, price float64, stock int) int64 {
	t.Helper()
	p := &domain.Product{Name: name, Price: price, Stock: stock}
	if err := products.CreateProduct(context.Background(), p); err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return p.ID
}

func asUser(r *http.Request, userID string) *http.Request {
	return r.WithContext(withIdentity(r.Context(), &Identity{UserID: userID, Role: "USER"}))
}

func asAdmin(r *http.Request) *http.Request {
	return r.WithContext(withIdentity(r.Context(), &Identity{UserID: "admin-1", Role: RoleAdmin}))
}

func withOrderID(r *http.Request, id string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("order_id", id)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func decodeError(t *testing.T, recorder *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	if err := json.NewDecoder(recorder.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	return resp
}

// --- CreateOrder tests ---

func TestCreateOrder_Success(t *testing.T) {
	handler, _, products := newOrderFixture(t)
	productID := seedProduct(t, products, "Laptop", 1299.99, 10)

	body := `{"items":[{"productId":` + jsonInt(productID) + `,"quantity":2}]}`
	recorder := httptest.NewRecorder()
	request := asUser(httptest.NewRequest("POST", "/api/v1/orders", strings.NewReader(body)), "user-1")

	handler.CreateOrder(recorder, request)

	if recorder.Code != http.StatusCreated {
		t.Fatalf("expected %d, got %d: %s", http.StatusCreated, recorder.Code, recorder.Body.String())
	}

	var response OrderResponseDTO
	if err := json.NewDecoder(recorder.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.UserID != "user-1" {
		t.Errorf("expected userId 'user-1', got '%s'", response.UserID)
	}
	if response.Status != "PENDING" {
		t.Errorf("expected status PENDING, got '%s'", response.Status)
	}
	if len(response.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(response.Items))
	}
	if response.Items[0].Quantity != 2 {
		t.Errorf("expected quantity 2, got %d", response.Items[0].Quantity)
	}
}

func TestCreateOrder_EmptyItems(t *testing.T) {
	handler, _, _ := newOrderFixture(t)

	recorder := httptest.NewRecorder()
	request := asUser(httptest.NewRequest("POST", "/api/v1/orders", strings.NewReader(`{"items":[]}`)), "user-1")

	handler.CreateOrder(recorder, request)

	if recorder.Code != http.StatusBadRequest {
		t.Errorf("expected %d, got %d", http.StatusBadRequest, recorder.Code)
	}
	if resp := decodeError(t, recorder); resp.Code != "empty_order" {
		t.Errorf("expected code 'empty_order', got '%s'", resp.Code)
	}
}

func TestCreateOrder_InvalidQuantity(t *testing.T) {
	handler, _, _ := newOrderFixture(t)

	body := `{"items":[{"productId":1,"quantity":0}]}`
	recorder := httptest.NewRecorder()
	request := asUser(httptest.NewRequest("POST", "/api/v1/orders", strings.NewReader(body)), "user-1")

	handler.CreateOrder(recorder, request)

	if recorder.Code != http.StatusBadRequest {
		t.Errorf("expected %d, got %d", http.StatusBadRequest, recorder.Code)
	}
	if resp := decodeError(t, recorder); resp.Code != "invalid_quantity" {
		t.Errorf("expected code 'invalid_quantity', got '%s'", resp.Code)
	}
}

func TestCreateOrder_InsufficientStock(t *testing.T) {
	handler, _, products := newOrderFixture(t)
	productID := seedProduct(t, products, "Mouse", 24.50, 1)

	body := `{"items":[{"productId":` + jsonInt(productID) + `,"quantity":5}]}`
	recorder := httptest.NewRecorder()
	request := asUser(httptest.NewRequest("POST", "/api/v1/orders", strings.NewReader(body)), "user-1")

	handler.CreateOrder(recorder, request)

	if recorder.Code != http.StatusBadRequest {
		t.Errorf("expected %d, got %d", http.StatusBadRequest, recorder.Code)
	}
	if resp := decodeError(t, recorder); resp.Code != "insufficient_stock" {
		t.Errorf("expected code 'insufficient_stock', got '%s'", resp.Code)
	}
}

func TestCreateOrder_UnknownProduct(t *testing.T) {
	handler, _, _ := newOrderFixture(t)

	body := `{"items":[{"productId":999,"quantity":1}]}`
	recorder := httptest.NewRecorder()
	request := asUser(httptest.NewRequest("POST", "/api/v1/orders", strings.NewReader(body)), "user-1")

	handler.CreateOrder(recorder, request)

	if recorder.Code != http.StatusNotFound {
		t.Errorf("expected %d, got %d", http.StatusNotFound, recorder.Code)
	}
}

func TestCreateOrder_InvalidJSON(t *testing.T) {
	handler, _, _ := newOrderFixture(t)

	recorder := httptest.NewRecorder()
	request := asUser(httptest.NewRequest("POST", "/api/v1/orders", strings.NewReader("{not json")), "user-1")

	handler.CreateOrder(recorder, request)

	if recorder.Code != http.StatusBadRequest {
		t.Errorf("expected %d, got %d", http.StatusBadRequest, recorder.Code)
	}
}

// --- GetOrder tests ---

func TestGetOrder_Owner(t *testing.T) {
	handler, svc, products := newOrderFixture(t)
	productID := seedProduct(t, products, "Keyboard", 79.99, 5)
	created := mustCreateOrder(t, svc, "user-1", productID, 1)

	recorder := httptest.NewRecorder()
	request := asUser(httptest.NewRequest("GET", "/api/v1/orders/"+created.ID.String(), nil), "user-1")
	request = withOrderID(request, created.ID.String())

	handler.GetOrder(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected %d, got %d: %s", http.StatusOK, recorder.Code, recorder.Body.String())
	}

	var response OrderResponseDTO
	if err := json.NewDecoder(recorder.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.ID != created.ID.String() {
		t.Errorf("expected id '%s', got '%s'", created.ID, response.ID)
	}
}

func TestGetOrder_ForbiddenForStranger(t *testing.T) {
	handler, svc, products := newOrderFixture(t)
	productID := seedProduct(t, products, "Keyboard", 79.99, 5)
	created := mustCreateOrder(t, svc, "user-1", productID, 1)

	recorder := httptest.NewRecorder()
	request := asUser(httptest.NewRequest("GET", "/api/v1/orders/"+created.ID.String(), nil), "user-2")
	request = withOrderID(request, created.ID.String())

	handler.GetOrder(recorder, request)

	if recorder.Code != http.StatusForbidden {
		t.Errorf("expected %d, got %d", http.StatusForbidden, recorder.Code)
	}
}

func TestGetOrder_InvalidID(t *testing.T) {
	handler, _, _ := newOrderFixture(t)

	recorder := httptest.NewRecorder()
	request := asUser(httptest.NewRequest("GET", "/api/v1/orders/not-a-uuid", nil), "user-1")
	request = withOrderID(request, "not-a-uuid")

	handler.GetOrder(recorder, request)

	if recorder.Code != http.StatusBadRequest {
		t.Errorf("expected %d, got %d", http.StatusBadRequest, recorder.Code)
	}
	if resp := decodeError(t, recorder); resp.Code != "invalid_order_id" {
		t.Errorf("expected code 'invalid_order_id', got '%s'", resp.Code)
	}
}

// --- CancelOrder tests ---

func TestCancelOrder_Success(t *testing.T) {
	handler, svc, products := newOrderFixture(t)
	productID := seedProduct(t, products, "Monitor", 349.00, 3)
	created := mustCreateOrder(t, svc, "user-1", productID, 2)

	recorder := httptest.NewRecorder()
	request := asUser(httptest.NewRequest("PUT", "/api/v1/orders/"+created.ID.String()+"/cancel", nil), "user-1")
	request = withOrderID(request, created.ID.String())

	handler.CancelOrder(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected %d, got %d: %s", http.StatusOK, recorder.Code, recorder.Body.String())
	}

	var response OrderResponseDTO
	if err := json.NewDecoder(recorder.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.Status != "CANCELLED" {
		t.Errorf("expected status CANCELLED, got '%s'", response.Status)
	}

	product, err := products.GetProduct(context.Background(), productID)
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if product.Stock != 3 {
		t.Errorf("expected stock restored to 3, got %d", product.Stock)
	}
}

func TestCancelOrder_NonPending(t *testing.T) {
	handler, svc, products := newOrderFixture(t)
	productID := seedProduct(t, products, "Monitor", 349.00, 3)
	created := mustCreateOrder(t, svc, "user-1", productID, 1)
	if _, err := svc.UpdateStatus(context.Background(), created.ID, "SHIPPED"); err != nil {
		t.Fatalf("update status: %v", err)
	}

	recorder := httptest.NewRecorder()
	request := asUser(httptest.NewRequest("PUT", "/api/v1/orders/"+created.ID.String()+"/cancel", nil), "user-1")
	request = withOrderID(request, created.ID.String())

	handler.CancelOrder(recorder, request)

	if recorder.Code != http.StatusBadRequest {
		t.Errorf("expected %d, got %d", http.StatusBadRequest, recorder.Code)
	}
	if resp := decodeError(t, recorder); resp.Code != "order_not_cancellable" {
		t.Errorf("expected code 'order_not_cancellable', got '%s'", resp.Code)
	}
}

// --- UpdateStatus tests ---

func TestUpdateStatus_Success(t *testing.T) {
	handler, svc, products := newOrderFixture(t)
	productID := seedProduct(t, products, "Desk", 199.00, 4)
	created := mustCreateOrder(t, svc, "user-1", productID, 1)

	recorder := httptest.NewRecorder()
	request := asAdmin(httptest.NewRequest("PUT", "/api/v1/orders/"+created.ID.String()+"/status", strings.NewReader(`{"status":"SHIPPED"}`)))
	request = withOrderID(request, created.ID.String())

	handler.UpdateStatus(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected %d, got %d: %s", http.StatusOK, recorder.Code, recorder.Body.String())
	}

	var response OrderResponseDTO
	if err := json.NewDecoder(recorder.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.Status != "SHIPPED" {
		t.Errorf("expected status SHIPPED, got '%s'", response.Status)
	}
}

func TestUpdateStatus_InvalidStatus(t *testing.T) {
	handler, svc, products := newOrderFixture(t)
	productID := seedProduct(t, products, "Desk", 199.00, 4)
	created := mustCreateOrder(t, svc, "user-1", productID, 1)

	recorder := httptest.NewRecorder()
	request := asAdmin(httptest.NewRequest("PUT", "/api/v1/orders/"+created.ID.String()+"/status", strings.NewReader(`{"status":"TELEPORTED"}`)))
	request = withOrderID(request, created.ID.String())

	handler.UpdateStatus(recorder, request)

	if recorder.Code != http.StatusBadRequest {
		t.Errorf("expected %d, got %d", http.StatusBadRequest, recorder.Code)
	}
	if resp := decodeError(t, recorder); resp.Code != "invalid_status" {
		t.Errorf("expected code 'invalid_status', got '%s'", resp.Code)
	}
}

// --- ListMyOrders tests ---

func TestListMyOrders_ScopedToCaller(t *testing.T) {
	handler, svc, products := newOrderFixture(t)
	productID := seedProduct(t, products, "Lamp", 35.00, 10)
	mustCreateOrder(t, svc, "user-1", productID, 1)
	mustCreateOrder(t, svc, "user-2", productID, 1)

	recorder := httptest.NewRecorder()
	request := asUser(httptest.NewRequest("GET", "/api/v1/orders/my-orders", nil), "user-1")

	handler.ListMyOrders(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected %d, got %d", http.StatusOK, recorder.Code)
	}

	var response []OrderResponseDTO
	if err := json.NewDecoder(recorder.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(response) != 1 {
		t.Fatalf("expected 1 order, got %d", len(response))
	}
	if response[0].UserID != "user-1" {
		t.Errorf("expected userId 'user-1', got '%s'", response[0].UserID)
	}
}

func TestListMyOrders_EmptyIsArray(t *testing.T) {
	handler, _, _ := newOrderFixture(t)

	recorder := httptest.NewRecorder()
	request := asUser(httptest.NewRequest("GET", "/api/v1/orders/my-orders", nil), "user-1")

	handler.ListMyOrders(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected %d, got %d", http.StatusOK, recorder.Code)
	}

	// Must be a JSON array, not null
	var raw json.RawMessage
	if err := json.Unmarshal(recorder.Body.Bytes(), &raw); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if !strings.HasPrefix(strings.TrimSpace(string(raw)), "[") {
		t.Errorf("expected JSON array, got %s", raw)
	}
}

func mustCreateOrder(t *testing.T, svc *order.Service, userID string, productID int64, quantity int) *domain.Order {
	t.Helper()
	created, err := svc.CreateOrder(context.Background(), userID, []order.NewOrderLine{{ProductID: productID, Quantity: quantity}})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	return created
}

func jsonInt(v int64) string {
	return strconv.FormatInt(v, 10)
}
