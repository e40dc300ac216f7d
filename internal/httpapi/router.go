package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// RouterConfig carries the handlers and middleware dependencies the
// route tree is assembled from.
type RouterConfig struct {
	Orders     *OrderHandler
	Products   *ProductHandler
	Categories *CategoryHandler
	Verifier   TokenVerifier
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		// Public catalog surface.
		r.Get("/products", cfg.Products.ListProducts)
		r.Get("/products/{product_id}", cfg.Products.GetProduct)
		r.Get("/products/{product_id}/reviews", cfg.Products.ListReviews)
		r.Get("/categories", cfg.Categories.ListCategories)

		// Everything below requires a valid bearer token.
		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware(cfg.Verifier))

			r.Post("/products/{product_id}/reviews", cfg.Products.AddReview)

			r.Post("/orders", cfg.Orders.CreateOrder)
			r.Get("/orders/my-orders", cfg.Orders.ListMyOrders)
			r.Get("/orders/{order_id}", cfg.Orders.GetOrder)
			r.Put("/orders/{order_id}/cancel", cfg.Orders.CancelOrder)

			// Admin-only management surface.
			r.Group(func(r chi.Router) {
				r.Use(RequireAdmin)

				r.Get("/orders", cfg.Orders.ListAllOrders)
				r.Put("/orders/{order_id}/status", cfg.Orders.UpdateStatus)

				r.Post("/products", cfg.Products.CreateProduct)
				r.Put("/products/{product_id}", cfg.Products.UpdateProduct)
				r.Delete("/products/{product_id}", cfg.Products.DeleteProduct)

				r.Post("/categories", cfg.Categories.CreateCategory)
				r.Delete("/categories/{category_id}", cfg.Categories.DeleteCategory)
			})
		})
	})

	return r
}
