package transport

import (
	"errors"
	"net/http"

	"electra/internal/cart"
	"electra/internal/checkout"
	"electra/internal/domain"
	"electra/internal/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CheckoutRequest carries the shipping address for order placement
type CheckoutRequest struct {
	Name   string `json:"name" validate:"required"`
	Street string `json:"street" validate:"required"`
	City   string `json:"city" validate:"required"`
	Zip    string `json:"zip" validate:"required"`
}

// PendingResponse reports the startup reconciliation result: the referenced
// order when one is outstanding, or pending=false when the slot is clean.
type PendingResponse struct {
	Pending bool          `json:"pending"`
	Order   *domain.Order `json:"order,omitempty"`
}

// CheckoutHandler handles order placement and pending-order reconciliation
type CheckoutHandler struct {
	reconciler *checkout.Reconciler
	carts      *cart.Registry
	logger     *zap.Logger
}

// NewCheckoutHandler creates a new CheckoutHandler
func NewCheckoutHandler(reconciler *checkout.Reconciler, carts *cart.Registry, logger *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		reconciler: reconciler,
		carts:      carts,
		logger:     logger,
	}
}

// RegisterRoutes registers checkout routes. Every route requires auth.
func (h *CheckoutHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/checkout", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Post("/", h.PlaceOrder)
		r.Get("/pending", h.Pending)
	})
}

// PlaceOrder runs the checkout transaction for the caller's cart. On success
// the cart is empty, the order is persisted as pending, and the response
// carries the hosted payment URL. On failure the cart is unchanged.
func (h *CheckoutHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req CheckoutRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	email, _ := middleware.GetUserEmail(r.Context())
	role, _ := middleware.GetUserRole(r.Context())
	sess := domain.Session{
		State:  domain.SessionAuthenticated,
		UserID: userID,
		Email:  email,
		Role:   domain.Role(role),
	}

	store := h.carts.Get(r.Context(), userID)
	addr := domain.ShippingAddress{
		Name:   req.Name,
		Street: req.Street,
		City:   req.City,
		Zip:    req.Zip,
	}

	result, err := h.reconciler.PlaceOrder(r.Context(), store, sess, userID, addr)
	if err != nil {
		switch {
		case errors.Is(err, checkout.ErrNotAuthenticated):
			middleware.RespondWithError(w, http.StatusUnauthorized, "checkout requires an authenticated session")
		case errors.Is(err, checkout.ErrEmptyCart):
			middleware.RespondWithError(w, http.StatusBadRequest, "cart is empty")
		case domain.IsRetryable(err):
			h.logger.Warn("Checkout persistence timed out", zap.Error(err))
			middleware.RespondWithError(w, http.StatusServiceUnavailable, "order could not be placed, please retry")
		default:
			h.logger.Error("Checkout failed", zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, "failed to place order")
		}
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, result)
}

// Pending reports whether the caller has an order awaiting payment from a
// previous checkout. Clients call this on startup to pick the flow back up
// after the payment redirect.
func (h *CheckoutHandler) Pending(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	order, err := h.reconciler.ResolvePending(r.Context(), userID)
	if err != nil {
		h.logger.Error("Pending order resolution failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to resolve pending order")
		return
	}

	resp := PendingResponse{}
	if order != nil && order.Status == domain.OrderStatusPending {
		resp.Pending = true
		resp.Order = order
	} else if order != nil {
		resp.Order = order
	}

	middleware.RespondWithJSON(w, http.StatusOK, resp)
}
