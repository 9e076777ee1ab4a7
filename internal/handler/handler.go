// Package handler exposes the HTTP surface: auth, catalog and order routes.
// It owns request decoding/validation, identity extraction and the mapping of
// domain errors to status codes; all business rules live in the domain
// services.
package handler

import (
	"github.com/go-chi/chi/v5"

	"github.com/jitterlabs/order-api/internal/auth"
	"github.com/jitterlabs/order-api/internal/domain/order"
	"github.com/jitterlabs/order-api/internal/domain/product"
)

// Handler bundles the services behind the HTTP routes.
type Handler struct {
	auth     *auth.Service
	products product.Repository
	orders   *order.Service
}

// New constructs a Handler with the required dependencies.
func New(authSvc *auth.Service, products product.Repository, orders *order.Service) *Handler {
	return &Handler{
		auth:     authSvc,
		products: products,
		orders:   orders,
	}
}

// Routes builds the router. Order routes and /auth/me require a bearer token;
// registration, login and the catalog are public.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.register)
		r.Post("/login", h.login)
		r.With(h.requireAuth).Get("/me", h.me)
	})

	r.Get("/product/list", h.listProducts)

	r.Route("/order", func(r chi.Router) {
		r.Use(h.requireAuth)
		r.Post("/", h.createOrder)
		r.Get("/list", h.listOrders)
		r.Get("/{code}", h.getOrder)
		r.Patch("/{code}", h.updateOrder)
		r.Delete("/{code}", h.deleteOrder)
	})

	return r
}
