// Package checkout places orders against the storefront API on behalf of a
// cart. Calls go through a circuit breaker so a struggling order backend
// fails fast instead of piling up requests.
package checkout

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopkit/storefront/internal/cart"
	"github.com/shopkit/storefront/internal/domain"
	"github.com/sony/gobreaker/v2"
)

// APIError is a rejection from the order API that has no matching domain
// sentinel. It carries the response's error envelope.
type APIError struct {
	Status  int
	Code    string
	Details string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("order API rejected request: %d %s: %s", e.Status, e.Code, e.Details)
}

// upstreamError marks failures the circuit breaker should count: transport
// errors and 5xx responses. Client-side rejections pass through untouched.
type upstreamError struct {
	err error
}

func (e *upstreamError) Error() string { return e.err.Error() }
func (e *upstreamError) Unwrap() error { return e.err }

type Client struct {
	baseURL string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[*domain.Order]
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}

	settings := gobreaker.Settings{
		Name:        "order-api",
		MaxRequests: 3,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			_, upstream := err.(*upstreamError)
			return !upstream
		},
	}

	return &Client{
		baseURL: baseURL,
		http:    httpClient,
		breaker: gobreaker.NewCircuitBreaker[*domain.Order](settings),
	}
}

type orderItemPayload struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

type orderPayload struct {
	Items []orderItemPayload `json:"items"`
}

type orderLineResponse struct {
	ProductID int64   `json:"productId"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
}

type orderResponse struct {
	ID        string              `json:"id"`
	UserID    string              `json:"userId"`
	Status    string              `json:"status"`
	Total     float64             `json:"total"`
	Items     []orderLineResponse `json:"items"`
	CreatedAt string              `json:"createdAt"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details string `json:"details"`
}

// PlaceOrder submits the cart's current lines as an order. The cart is
// cleared only after the API confirms creation; any rejection leaves the
// cart intact so the user can retry.
func (c *Client) PlaceOrder(ctx context.Context, token string, store *cart.Store) (*domain.Order, error) {
	lines := store.Items()
	if len(lines) == 0 {
		return nil, domain.ErrEmptyOrder
	}

	payload := orderPayload{Items: make([]orderItemPayload, 0, len(lines))}
	for _, line := range lines {
		payload.Items = append(payload.Items, orderItemPayload{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
		})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode order payload: %w", err)
	}

	created, err := c.breaker.Execute(func() (*domain.Order, error) {
		return c.submit(ctx, token, body)
	})
	if err != nil {
		return nil, err
	}

	store.Clear(ctx)
	return created, nil
}

func (c *Client) submit(ctx context.Context, token string, body []byte) (*domain.Order, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/orders", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build order request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &upstreamError{err: fmt.Errorf("order API unreachable: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, &upstreamError{err: fmt.Errorf("order API returned %d", resp.StatusCode)}
	}

	if resp.StatusCode != http.StatusCreated {
		return nil, decodeRejection(resp)
	}

	var dto orderResponse
	if err := json.NewDecoder(resp.Body).Decode(&dto); err != nil {
		return nil, &upstreamError{err: fmt.Errorf("failed to decode order response: %w", err)}
	}
	return convertResponse(dto)
}

func decodeRejection(resp *http.Response) error {
	var envelope errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return &APIError{Status: resp.StatusCode, Code: "unknown", Details: "unreadable error response"}
	}

	switch envelope.Code {
	case "empty_order":
		return domain.ErrEmptyOrder
	case "product_not_found":
		return domain.ErrProductNotFound
	case "order_not_found":
		return domain.ErrOrderNotFound
	case "invalid_status":
		return domain.ErrInvalidStatus
	case "order_not_cancellable":
		return domain.ErrOrderNotCancellable
	case "forbidden":
		return domain.ErrNotOrderOwner
	default:
		return &APIError{Status: resp.StatusCode, Code: envelope.Code, Details: envelope.Details}
	}
}

func convertResponse(dto orderResponse) (*domain.Order, error) {
	id, err := uuid.Parse(dto.ID)
	if err != nil {
		return nil, &upstreamError{err: fmt.Errorf("order API returned invalid order id %q: %w", dto.ID, err)}
	}

	status, err := domain.ParseOrderStatus(dto.Status)
	if err != nil {
		return nil, &upstreamError{err: fmt.Errorf("order API returned invalid status %q: %w", dto.Status, err)}
	}

	createdAt, err := time.Parse(time.RFC3339, dto.CreatedAt)
	if err != nil {
		createdAt = time.Now()
	}

	items := make([]domain.OrderLine, 0, len(dto.Items))
	for _, line := range dto.Items {
		items = append(items, domain.OrderLine{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
		})
	}

	return &domain.Order{
		ID:        id,
		UserID:    dto.UserID,
		Status:    status,
		Total:     dto.Total,
		Items:     items,
		CreatedAt: createdAt,
	}, nil
}
