package transport

import (
	"errors"
	"net/http"

	"electra/internal/cart"
	"electra/internal/domain"
	"electra/internal/middleware"
	"electra/internal/repository"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// AddItemRequest represents the add-to-cart payload
type AddItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity"`
}

// SetQuantityRequest represents the quantity update payload
type SetQuantityRequest struct {
	Quantity int `json:"quantity" validate:"required"`
}

// CartResponse represents the cart contents with derived totals
type CartResponse struct {
	Items    []domain.CartItem `json:"items"`
	Subtotal float64           `json:"subtotal"`
	Count    int               `json:"count"`
}

// CartHandler handles HTTP requests for cart operations. Each authenticated
// user gets a durable cart keyed by their user id.
type CartHandler struct {
	carts    *cart.Registry
	products repository.ProductRepository
	logger   *zap.Logger
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(carts *cart.Registry, products repository.ProductRepository, logger *zap.Logger) *CartHandler {
	return &CartHandler{
		carts:    carts,
		products: products,
		logger:   logger,
	}
}

// RegisterRoutes registers all cart routes. Every route requires auth.
func (h *CartHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/cart", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/", h.Get)
		r.Delete("/", h.Clear)
		r.Post("/items", h.AddItem)
		r.Put("/items/{productID}", h.SetQuantity)
		r.Delete("/items/{productID}", h.RemoveItem)
	})
}

// Get returns the caller's cart
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	store, ok := h.store(w, r)
	if !ok {
		return
	}
	h.respondCart(w, store)
}

// AddItem adds a product to the cart, merging quantities when the product is
// already present. The priced snapshot comes from the catalog at add time.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	store, ok := h.store(w, r)
	if !ok {
		return
	}

	var req AddItemRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	product, err := h.products.FindByID(r.Context(), req.ProductID)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}
		h.logger.Error("Failed to load product for cart", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to add item")
		return
	}

	if err := store.AddItem(r.Context(), *product, req.Quantity); err != nil {
		h.logger.Error("Failed to persist cart", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to add item")
		return
	}

	h.respondCart(w, store)
}

// SetQuantity updates the quantity of a cart line. Values below one clamp to
// one; removal is an explicit separate operation.
func (h *CartHandler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	store, ok := h.store(w, r)
	if !ok {
		return
	}

	var req SetQuantityRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	productID := chi.URLParam(r, "productID")
	if err := store.SetQuantity(r.Context(), productID, req.Quantity); err != nil {
		h.logger.Error("Failed to persist cart", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update quantity")
		return
	}

	h.respondCart(w, store)
}

// RemoveItem removes a cart line
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	store, ok := h.store(w, r)
	if !ok {
		return
	}

	productID := chi.URLParam(r, "productID")
	if err := store.RemoveItem(r.Context(), productID); err != nil {
		h.logger.Error("Failed to persist cart", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to remove item")
		return
	}

	h.respondCart(w, store)
}

// Clear empties the cart
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	store, ok := h.store(w, r)
	if !ok {
		return
	}

	if err := store.Clear(r.Context()); err != nil {
		h.logger.Error("Failed to persist cart", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to clear cart")
		return
	}

	h.respondCart(w, store)
}

func (h *CartHandler) store(w http.ResponseWriter, r *http.Request) (*cart.Store, bool) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return nil, false
	}
	return h.carts.Get(r.Context(), userID), true
}

func (h *CartHandler) respondCart(w http.ResponseWriter, store *cart.Store) {
	c := store.Cart()
	middleware.RespondWithJSON(w, http.StatusOK, CartResponse{
		Items:    c.Items,
		Subtotal: c.Subtotal(),
		Count:    c.Count(),
	})
}
