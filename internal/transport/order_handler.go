package transport

import (
	"errors"
	"net/http"

	"electra/internal/domain"
	"electra/internal/middleware"
	"electra/internal/repository"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UpdateStatusRequest represents the admin status change payload
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// OrderListResponse represents an order history response
type OrderListResponse struct {
	Orders []domain.Order `json:"orders"`
	Count  int            `json:"count"`
}

// OrderHandler handles HTTP requests for order history and administration
type OrderHandler struct {
	orders repository.OrderRepository
	logger *zap.Logger
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orders repository.OrderRepository, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		orders: orders,
		logger: logger,
	}
}

// RegisterRoutes registers order routes. History is scoped to the caller;
// the admin surface sees all orders and drives status transitions.
func (h *OrderHandler) RegisterRoutes(r chi.Router, authMiddleware, adminMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/orders", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/", h.ListMine)
		r.Get("/{id}", h.Get)
	})

	r.Route("/api/admin/orders", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Use(adminMiddleware)
		r.Get("/", h.ListAll)
		r.Patch("/{id}/status", h.UpdateStatus)
	})
}

// ListMine returns the caller's orders, newest first
func (h *OrderHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.callerID(w, r)
	if !ok {
		return
	}

	orders, err := h.orders.ListByUser(r.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to list orders", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list orders")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, OrderListResponse{Orders: orders, Count: len(orders)})
}

// Get returns a single order. Customers can only read their own orders;
// admins can read any.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.callerID(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	order, err := h.orders.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "order not found")
			return
		}
		h.logger.Error("Failed to get order", zap.String("order_id", id), zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to get order")
		return
	}

	role, _ := middleware.GetUserRole(r.Context())
	if order.UserID != userID && domain.Role(role) != domain.RoleAdmin {
		// Not-found keeps order ids unguessable across accounts.
		middleware.RespondWithError(w, http.StatusNotFound, "order not found")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, order)
}

// ListAll returns every order, newest first
func (h *OrderHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListAll(r.Context())
	if err != nil {
		h.logger.Error("Failed to list all orders", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list orders")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, OrderListResponse{Orders: orders, Count: len(orders)})
}

// UpdateStatus advances an order through the fulfilment lifecycle. Statuses
// only move forward; cancellation is allowed from any non-terminal state.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateStatusRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	status := domain.OrderStatus(req.Status)
	if !status.Valid() {
		middleware.RespondWithError(w, http.StatusBadRequest, "unknown order status")
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.orders.UpdateStatus(r.Context(), id, status); err != nil {
		switch {
		case errors.Is(err, repository.ErrOrderNotFound):
			middleware.RespondWithError(w, http.StatusNotFound, "order not found")
		case errors.Is(err, repository.ErrInvalidOrderTransition):
			middleware.RespondWithError(w, http.StatusConflict, "invalid status transition")
		default:
			h.logger.Error("Failed to update order status", zap.String("order_id", id), zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update order status")
		}
		return
	}

	order, err := h.orders.FindByID(r.Context(), id)
	if err != nil {
		h.logger.Error("Failed to reload order after status update", zap.Error(err))
		middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "status updated"})
		return
	}

	h.logger.Info("Order status updated",
		zap.String("order_id", id),
		zap.String("status", string(status)),
	)
	middleware.RespondWithJSON(w, http.StatusOK, order)
}

func (h *OrderHandler) callerID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userIDStr, ok := middleware.GetUserID(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return uuid.Nil, false
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid user ID")
		return uuid.Nil, false
	}
	return userID, true
}
