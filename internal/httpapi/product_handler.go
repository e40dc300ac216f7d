package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopkit/storefront/internal/catalog"
	"github.com/shopkit/storefront/internal/domain"
	"github.com/shopkit/storefront/internal/review"
)

type ProductHandler struct {
	products catalog.ProductRepository
	reader   catalog.ProductReader
	reviews  review.ReviewRepository
}

func NewProductHandler(products catalog.ProductRepository, reader catalog.ProductReader, reviews review.ReviewRepository) *ProductHandler {
	return &ProductHandler{
		products: products,
		reader:   reader,
		reviews:  reviews,
	}
}

type ProductRequestDTO struct {
	CategoryID  int64   `json:"categoryId"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
	ImageURL    string  `json:"imageUrl"`
}

type AddReviewRequestDTO struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// GET /api/v1/products
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	var (
		products []*domain.Product
		err      error
	)
	if raw := r.URL.Query().Get("category_id"); raw != "" {
		categoryID, parseErr := strconv.ParseInt(raw, 10, 64)
		if parseErr != nil {
			respondError(w, http.StatusBadRequest, "invalid_category_id", "category_id must be an integer")
			return
		}
		products, err = h.products.ListByCategory(r.Context(), categoryID)
	} else {
		products, err = h.products.ListProducts(r.Context())
	}
	if err != nil {
		respondDomainError(w, err)
		return
	}

	if products == nil {
		products = []*domain.Product{}
	}
	respondJSON(w, http.StatusOK, products)
}

// GET /api/v1/products/{product_id}
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	productID, ok := parseProductID(w, r)
	if !ok {
		return
	}

	product, err := h.reader.GetProduct(r.Context(), productID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, product)
}

// POST /api/v1/products (admin)
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeProductRequest(w, r)
	if !ok {
		return
	}

	product := &domain.Product{
		CategoryID:  req.CategoryID,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		ImageURL:    req.ImageURL,
	}
	if err := h.products.CreateProduct(r.Context(), product); err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, product)
}

// PUT /api/v1/products/{product_id} (admin)
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	productID, ok := parseProductID(w, r)
	if !ok {
		return
	}
	req, ok := decodeProductRequest(w, r)
	if !ok {
		return
	}

	product := &domain.Product{
		ID:          productID,
		CategoryID:  req.CategoryID,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		ImageURL:    req.ImageURL,
	}
	if err := h.products.UpdateProduct(r.Context(), product); err != nil {
		respondDomainError(w, err)
		return
	}

	h.reader.Invalidate(r.Context(), productID)
	respondJSON(w, http.StatusOK, product)
}

// DELETE /api/v1/products/{product_id} (admin)
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	productID, ok := parseProductID(w, r)
	if !ok {
		return
	}

	if err := h.products.DeleteProduct(r.Context(), productID); err != nil {
		respondDomainError(w, err)
		return
	}

	h.reader.Invalidate(r.Context(), productID)
	respondJSON(w, http.StatusOK, map[string]string{"message": "product deleted"})
}

// POST /api/v1/products/{product_id}/reviews
func (h *ProductHandler) AddReview(w http.ResponseWriter, r *http.Request) {
	identity := identityFromContext(r.Context())
	if identity == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	productID, ok := parseProductID(w, r)
	if !ok {
		return
	}

	var req AddReviewRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Rating < 1 || req.Rating > 5 {
		respondError(w, http.StatusBadRequest, "invalid_rating", "rating must be between 1 and 5")
		return
	}

	// Review targets must exist in the catalog.
	if _, err := h.reader.GetProduct(r.Context(), productID); err != nil {
		respondDomainError(w, err)
		return
	}

	rv := &domain.Review{
		ProductID: productID,
		UserID:    identity.UserID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	}
	if err := h.reviews.AddReview(r.Context(), rv); err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, rv)
}

// GET /api/v1/products/{product_id}/reviews
func (h *ProductHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	productID, ok := parseProductID(w, r)
	if !ok {
		return
	}

	reviews, err := h.reviews.ListByProduct(r.Context(), productID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	if reviews == nil {
		reviews = []*domain.Review{}
	}
	respondJSON(w, http.StatusOK, reviews)
}

func parseProductID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "product_id")
	productID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || productID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be a positive integer")
		return 0, false
	}
	return productID, true
}

func decodeProductRequest(w http.ResponseWriter, r *http.Request) (*ProductRequestDTO, bool) {
	var req ProductRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return nil, false
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "invalid_name", "name is required")
		return nil, false
	}
	if req.Price < 0 {
		respondError(w, http.StatusBadRequest, "invalid_price", "price must not be negative")
		return nil, false
	}
	if req.Stock < 0 {
		respondError(w, http.StatusBadRequest, "invalid_stock", "stock must not be negative")
		return nil, false
	}
	return &req, true
}
