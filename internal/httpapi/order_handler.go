package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopkit/storefront/internal/domain"
	"github.com/shopkit/storefront/internal/order"
)

type OrderHandler struct {
	orders *order.Service
}

func NewOrderHandler(orders *order.Service) *OrderHandler {
	return &OrderHandler{orders: orders}
}

type CreateOrderItemDTO struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

type CreateOrderRequestDTO struct {
	Items []CreateOrderItemDTO `json:"items"`
}

type UpdateStatusRequestDTO struct {
	Status string `json:"status"`
}

type OrderLineDTO struct {
	ProductID int64   `json:"productId"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
}

type OrderResponseDTO struct {
	ID        string         `json:"id"`
	UserID    string         `json:"userId"`
	Status    string         `json:"status"`
	Total     float64        `json:"total"`
	Items     []OrderLineDTO `json:"items"`
	CreatedAt string         `json:"createdAt"`
}

func convertOrder(o *domain.Order) OrderResponseDTO {
	items := make([]OrderLineDTO, 0, len(o.Items))
	for _, line := range o.Items {
		items = append(items, OrderLineDTO{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
		})
	}

	return OrderResponseDTO{
		ID:        o.ID.String(),
		UserID:    o.UserID,
		Status:    o.Status.String(),
		Total:     o.Total,
		Items:     items,
		CreatedAt: o.CreatedAt.Format(time.RFC3339),
	}
}

// POST /api/v1/orders
func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	identity := identityFromContext(r.Context())
	if identity == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	var req CreateOrderRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	lines := make([]order.NewOrderLine, 0, len(req.Items))
	for _, item := range req.Items {
		if item.ProductID <= 0 {
			respondError(w, http.StatusBadRequest, "invalid_product_id", "productId must be positive")
			return
		}
		if item.Quantity <= 0 {
			respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be positive")
			return
		}
		lines = append(lines, order.NewOrderLine{ProductID: item.ProductID, Quantity: item.Quantity})
	}

	created, err := h.orders.CreateOrder(r.Context(), identity.UserID, lines)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, convertOrder(created))
}

// GET /api/v1/orders/my-orders
func (h *OrderHandler) ListMyOrders(w http.ResponseWriter, r *http.Request) {
	identity := identityFromContext(r.Context())
	if identity == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	orders, err := h.orders.ListUserOrders(r.Context(), identity.UserID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, convertOrders(orders))
}

// GET /api/v1/orders (admin)
func (h *OrderHandler) ListAllOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListAllOrders(r.Context())
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, convertOrders(orders))
}

func convertOrders(orders []*domain.Order) []OrderResponseDTO {
	dtos := make([]OrderResponseDTO, 0, len(orders))
	for _, o := range orders {
		dtos = append(dtos, convertOrder(o))
	}
	return dtos
}

// GET /api/v1/orders/{order_id}
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	identity := identityFromContext(r.Context())
	if identity == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	orderID, ok := parseOrderID(w, r)
	if !ok {
		return
	}

	got, err := h.orders.GetOrder(r.Context(), orderID, requesterFrom(identity))
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, convertOrder(got))
}

// PUT /api/v1/orders/{order_id}/status (admin)
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	orderID, ok := parseOrderID(w, r)
	if !ok {
		return
	}

	var req UpdateStatusRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	updated, err := h.orders.UpdateStatus(r.Context(), orderID, req.Status)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, convertOrder(updated))
}

// PUT /api/v1/orders/{order_id}/cancel
func (h *OrderHandler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	identity := identityFromContext(r.Context())
	if identity == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	orderID, ok := parseOrderID(w, r)
	if !ok {
		return
	}

	cancelled, err := h.orders.CancelOrder(r.Context(), orderID, requesterFrom(identity))
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, convertOrder(cancelled))
}

func parseOrderID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw := chi.URLParam(r, "order_id")
	if raw == "" {
		respondError(w, http.StatusBadRequest, "missing_order_id", "order_id is required")
		return uuid.Nil, false
	}
	orderID, err := uuid.Parse(raw)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_order_id", "order_id must be a UUID")
		return uuid.Nil, false
	}
	return orderID, true
}

func requesterFrom(identity *Identity) order.Requester {
	return order.Requester{UserID: identity.UserID, Admin: identity.IsAdmin()}
}
