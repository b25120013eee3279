package transport

import (
	"errors"
	"net/http"
	"time"

	"electra/internal/catalog"
	"electra/internal/domain"
	"electra/internal/middleware"
	"electra/internal/repository"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ProductRequest represents the admin upsert payload
type ProductRequest struct {
	ID          string            `json:"id" validate:"required"`
	Brand       string            `json:"brand" validate:"required"`
	Name        string            `json:"name" validate:"required"`
	Price       float64           `json:"price" validate:"required,gt=0"`
	Category    string            `json:"category" validate:"required"`
	Stock       int               `json:"stock" validate:"gte=0"`
	Images      []string          `json:"images"`
	Description string            `json:"description"`
	Specs       map[string]string `json:"specs"`
}

// ProductListResponse represents the filtered catalog response
type ProductListResponse struct {
	Products []domain.Product `json:"products"`
	Count    int              `json:"count"`
}

// ProductHandler handles HTTP requests for the catalog
type ProductHandler struct {
	products repository.ProductRepository
	logger   *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(products repository.ProductRepository, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		products: products,
		logger:   logger,
	}
}

// RegisterRoutes registers catalog routes. Browsing is public; mutation
// lives under /api/admin and requires the admin role.
func (h *ProductHandler) RegisterRoutes(r chi.Router, authMiddleware, adminMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/categories", h.Categories)
		r.Get("/{id}", h.Get)
	})

	r.Route("/api/admin/products", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Use(adminMiddleware)
		r.Put("/", h.Upsert)
		r.Delete("/{id}", h.Delete)
	})
}

// List returns the catalog filtered by search text and category and ordered
// by the requested sort criterion. Unknown sort values fall back to catalog
// order; filtering and sorting never error.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	all, err := h.products.List(r.Context())
	if err != nil {
		h.logger.Error("Failed to list products", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list products")
		return
	}

	q := r.URL.Query()
	visible := catalog.Visible(all, q.Get("search"), domain.Category(q.Get("category")))
	sorted := catalog.Sorted(visible, catalog.ParseSort(q.Get("sort")))

	middleware.RespondWithJSON(w, http.StatusOK, ProductListResponse{
		Products: sorted,
		Count:    len(sorted),
	})
}

// Categories returns the fixed category set used for filtering
func (h *ProductHandler) Categories(w http.ResponseWriter, r *http.Request) {
	middleware.RespondWithJSON(w, http.StatusOK, domain.Categories())
}

// Get returns a single product by id
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	product, err := h.products.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}
		h.logger.Error("Failed to get product", zap.String("product_id", id), zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to get product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// Upsert creates or replaces a product
func (h *ProductHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Product validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	category := domain.Category(req.Category)
	if !category.Valid() {
		middleware.RespondWithError(w, http.StatusBadRequest, "unknown category")
		return
	}

	now := time.Now()
	product := &domain.Product{
		ID:          req.ID,
		Brand:       req.Brand,
		Name:        req.Name,
		Price:       req.Price,
		Category:    category,
		Stock:       req.Stock,
		Images:      req.Images,
		Description: req.Description,
		Specs:       req.Specs,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := h.products.Upsert(r.Context(), product); err != nil {
		h.logger.Error("Failed to upsert product", zap.String("product_id", req.ID), zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to save product")
		return
	}

	h.logger.Info("Product saved", zap.String("product_id", product.ID))
	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// Delete removes a product from the catalog
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.products.Delete(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}
		h.logger.Error("Failed to delete product", zap.String("product_id", id), zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to delete product")
		return
	}

	h.logger.Info("Product deleted", zap.String("product_id", id))
	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "product deleted"})
}
