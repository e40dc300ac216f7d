package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopkit/storefront/internal/catalog"
	"github.com/shopkit/storefront/internal/domain"
)

type CategoryHandler struct {
	categories catalog.CategoryRepository
}

func NewCategoryHandler(categories catalog.CategoryRepository) *CategoryHandler {
	return &CategoryHandler{categories: categories}
}

type CategoryRequestDTO struct {
	Name string `json:"name"`
}

// GET /api/v1/categories
func (h *CategoryHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categories.ListCategories(r.Context())
	if err != nil {
		respondDomainError(w, err)
		return
	}

	if categories == nil {
		categories = []*domain.Category{}
	}
	respondJSON(w, http.StatusOK, categories)
}

// POST /api/v1/categories (admin)
func (h *CategoryHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "invalid_name", "name is required")
		return
	}

	category := &domain.Category{Name: req.Name}
	if err := h.categories.CreateCategory(r.Context(), category); err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, category)
}

// DELETE /api/v1/categories/{category_id} (admin)
func (h *CategoryHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "category_id")
	categoryID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || categoryID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_category_id", "category_id must be a positive integer")
		return
	}

	if err := h.categories.DeleteCategory(r.Context(), categoryID); err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "category deleted"})
}
