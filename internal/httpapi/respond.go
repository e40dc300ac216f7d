package httpapi

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/shopkit/storefront/internal/domain"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, details string) {
	respondJSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Code:    code,
		Details: details,
	})
}

// respondDomainError maps the error taxonomy onto HTTP status codes.
func respondDomainError(w http.ResponseWriter, err error) {
	var stockErr *domain.InsufficientStockError
	if errors.As(err, &stockErr) {
		respondError(w, http.StatusBadRequest, "insufficient_stock", stockErr.Error())
		return
	}

	switch {
	case errors.Is(err, domain.ErrEmptyOrder):
		respondError(w, http.StatusBadRequest, "empty_order", err.Error())
	case errors.Is(err, domain.ErrInvalidStatus):
		respondError(w, http.StatusBadRequest, "invalid_status", err.Error())
	case errors.Is(err, domain.ErrOrderNotCancellable):
		respondError(w, http.StatusBadRequest, "order_not_cancellable", err.Error())
	case errors.Is(err, domain.ErrOrderNotFound):
		respondError(w, http.StatusNotFound, "order_not_found", err.Error())
	case errors.Is(err, domain.ErrProductNotFound):
		respondError(w, http.StatusNotFound, "product_not_found", err.Error())
	case errors.Is(err, domain.ErrCategoryNotFound):
		respondError(w, http.StatusNotFound, "category_not_found", err.Error())
	case errors.Is(err, domain.ErrNotOrderOwner):
		respondError(w, http.StatusForbidden, "forbidden", err.Error())
	default:
		log.Printf("internal error: %v", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "unexpected error")
	}
}
