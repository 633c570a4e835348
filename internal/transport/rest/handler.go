// Package rest provides HTTP handlers for product catalog operations.
package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"

	apperrors "github.com/akulikov/gocatalog/internal/errors"
	"github.com/akulikov/gocatalog/internal/product"
	"github.com/akulikov/gocatalog/pkg/web"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
)

const (
	defaultPage     = 1
	defaultPageSize = 10
	maxPageSize     = 100
)

type Handler struct {
	products product.LifecycleService
	query    product.Searcher
	validate *validator.Validate
	logger   *slog.Logger
}

// NewHandler creates a new product API with the provided services.
func NewHandler(products product.LifecycleService, query product.Searcher, logger *slog.Logger) *Handler {
	return &Handler{
		products: products,
		query:    query,
		validate: validator.New(),
		logger:   logger.With("component", "rest"),
	}
}

// RegisterRoutes registers the HTTP routes for the catalog service.
func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", h.Search)
		r.Post("/", h.Create)

		r.Route("/{uuid}", func(r chi.Router) {
			r.Get("/", h.Get)
			r.Put("/", h.Update)
			r.Delete("/", h.Delete)
		})
	})

	r.Get("/healthz", h.HealthCheck)
}

// Create handles the creation of a new product.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	var dto product.ProductCreateDto
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		mLogger.ErrorContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !h.validateStruct(w, r, mLogger, dto) {
		return
	}

	mLogger.DebugContext(r.Context(), "Received request to create product", "product_uuid", dto.ProductUUID)
	created, err := h.products.Create(r.Context(), dto)
	if err != nil {
		h.respondServiceError(w, r, mLogger, err, dto.ProductUUID)
		return
	}
	mLogger.InfoContext(r.Context(), "Product created successfully", "product_uuid", dto.ProductUUID)
	web.RespondJSON(w, mLogger, http.StatusOK, created)
}

// Update handles a partial update of an existing product.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	uuid, ok := web.ParseKey(w, r, mLogger, "uuid")
	if !ok {
		return
	}
	var dto product.ProductUpdateDto
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		mLogger.ErrorContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !h.validateStruct(w, r, mLogger, dto) {
		return
	}

	mLogger.DebugContext(r.Context(), "Received request to update product", "product_uuid", uuid)
	updated, err := h.products.Update(r.Context(), uuid, dto.Partial())
	if err != nil {
		h.respondServiceError(w, r, mLogger, err, uuid)
		return
	}
	mLogger.InfoContext(r.Context(), "Product updated successfully", "product_uuid", uuid)
	web.RespondJSON(w, mLogger, http.StatusOK, updated)
}

// Delete removes a product by its uuid.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	uuid, ok := web.ParseKey(w, r, mLogger, "uuid")
	if !ok {
		return
	}
	mLogger.DebugContext(r.Context(), "Received request to delete product", "product_uuid", uuid)
	if err := h.products.Delete(r.Context(), uuid); err != nil {
		h.respondServiceError(w, r, mLogger, err, uuid)
		return
	}
	mLogger.InfoContext(r.Context(), "Product deleted successfully", "product_uuid", uuid)
	web.RespondJSON(w, mLogger, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Product %s deleted successfully", uuid),
	})
}

// Get retrieves a product by its uuid.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	uuid, ok := web.ParseKey(w, r, mLogger, "uuid")
	if !ok {
		return
	}
	mLogger.DebugContext(r.Context(), "Received request to find product", "product_uuid", uuid)
	found, err := h.products.Get(r.Context(), uuid)
	if err != nil {
		h.respondServiceError(w, r, mLogger, err, uuid)
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, found)
}

// Search executes a filtered, sorted, paginated product search.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)

	page, ok := web.ParseIntInRange(r, w, mLogger, "page", defaultPage, 1, math.MaxInt)
	if !ok {
		return
	}
	size, ok := web.ParseIntInRange(r, w, mLogger, "page_size", defaultPageSize, 1, maxPageSize)
	if !ok {
		return
	}
	minPrice, ok := web.ParseOptionalFloat(r, w, mLogger, "min_price")
	if !ok {
		return
	}
	maxPrice, ok := web.ParseOptionalFloat(r, w, mLogger, "max_price")
	if !ok {
		return
	}

	filters := product.Filters{
		Query:    r.URL.Query().Get("q"),
		Category: r.URL.Query().Get("category"),
		Brand:    r.URL.Query().Get("brand"),
		MinPrice: minPrice,
		MaxPrice: maxPrice,
	}
	sortBy := r.URL.Query().Get("sort_by")

	mLogger.DebugContext(r.Context(), "Received search request", "page", page, "size", size, "sort_by", sortBy)
	result, err := h.query.Search(r.Context(), filters, page, size, sortBy)
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error searching products", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, err.Error())
		return
	}
	mLogger.DebugContext(r.Context(), "Search completed", "total", result.Total, "count", len(result.Items))
	web.RespondJSON(w, mLogger, http.StatusOK, result)
}

// HealthCheck is a simple health check endpoint.
func (h *Handler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// validateStruct validates a decoded request body and responds with a 422
// carrying field-level failures when validation does not pass.
func (h *Handler) validateStruct(w http.ResponseWriter, r *http.Request, mLogger *slog.Logger, v any) bool {
	err := h.validate.Struct(v)
	if err == nil {
		return true
	}
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		errorResponse := make(map[string]string)
		for _, fieldErr := range validationErrors {
			errorResponse[fieldErr.Field()] = "failed on rule: " + fieldErr.Tag()
		}
		mLogger.WarnContext(r.Context(), "Validation errors occurred", "errors", errorResponse)
		web.RespondJSON(w, mLogger, http.StatusUnprocessableEntity, map[string]any{"validation_errors": errorResponse})
		return false
	}
	mLogger.ErrorContext(r.Context(), "Error validating request body", "error", err)
	web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
	return false
}

// respondServiceError maps taxonomy errors onto HTTP statuses: missing
// documents to 404, store and sequence failures to 400 with the underlying
// message, anything unanticipated to a bare 500.
func (h *Handler) respondServiceError(w http.ResponseWriter, r *http.Request, mLogger *slog.Logger, err error, uuid string) {
	var storeErr *apperrors.StoreError
	var seqErr *apperrors.SequenceError
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		mLogger.WarnContext(r.Context(), "Product not found", "product_uuid", uuid)
		web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Product with uuid %s not found", uuid))
	case errors.As(err, &storeErr):
		mLogger.ErrorContext(r.Context(), "Store error", "product_uuid", uuid, "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, storeErr.Error())
	case errors.As(err, &seqErr):
		mLogger.ErrorContext(r.Context(), "Sequence error", "product_uuid", uuid, "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, seqErr.Error())
	default:
		mLogger.ErrorContext(r.Context(), "Unexpected error", "product_uuid", uuid, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Internal server error")
	}
}

// loggerWithReqID creates a logger with the request ID from the context.
func (h *Handler) loggerWithReqID(r *http.Request) *slog.Logger {
	reqID := middleware.GetReqID(r.Context())
	return h.logger.With("request_id", reqID)
}
