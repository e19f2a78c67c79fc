package handlers

import (
	"math"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/smart-todo/smart-todo-list/internal/database"
	logpkg "github.com/smart-todo/smart-todo-list/internal/logger"
	"github.com/smart-todo/smart-todo-list/internal/models"
	"github.com/smart-todo/smart-todo-list/internal/request"
	"github.com/smart-todo/smart-todo-list/internal/services/stats"
	"go.uber.org/zap"
)

const (
	// DefaultPopularLimit is how many categories /popular returns by default
	DefaultPopularLimit = 10
	// MaxPopularLimit caps the /popular limit parameter
	MaxPopularLimit = 50
)

// CategoryHandler handles category requests
type CategoryHandler struct {
	categories database.CategoryRepositoryInterface
	logger     *zap.Logger
}

// NewCategoryHandler creates a new category handler
func NewCategoryHandler(categories database.CategoryRepositoryInterface, logger *zap.Logger) *CategoryHandler {
	return &CategoryHandler{categories: categories, logger: logger}
}

// RegisterRoutes registers category routes on a router already scoped to /categories
func (h *CategoryHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/statistics", h.Statistics).Methods("GET")
	r.HandleFunc("/popular", h.Popular).Methods("GET")
	r.HandleFunc("", h.ListCategories).Methods("GET")
	r.HandleFunc("", h.CreateCategory).Methods("POST")
	r.HandleFunc("/{id}", h.GetCategory).Methods("GET")
	r.HandleFunc("/{id}", h.UpdateCategory).Methods("PUT", "PATCH")
	r.HandleFunc("/{id}", h.DeleteCategory).Methods("DELETE")
	r.HandleFunc("/{id}/reset-usage", h.ResetUsage).Methods("POST")
}

// ListCategories lists categories by usage, most used first
func (h *CategoryHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	q := newQueryParser(r)

	filter := models.CategoryFilter{
		IsActive: q.optionalBool("is_active"),
		MinUsage: q.optionalInt("min_usage", 0, math.MaxInt32),
		Search:   q.str("search"),
	}
	filter.Skip, filter.Limit = q.page()
	if !q.done(w, r, h.logger) {
		return
	}

	categories, err := h.categories.List(r.Context(), filter)
	if err != nil {
		respondStoreError(w, r, err, "Category", "retrieve categories", h.logger)
		return
	}
	respondJSON(w, http.StatusOK, categories)
}

// CreateCategory creates a new category. Names are unique.
func (h *CategoryHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req models.CategoryCreate
	if !decodeAndValidate(w, r, &req, h.logger) {
		return
	}

	category := req.ToCategory()
	if err := h.categories.Create(r.Context(), category); err != nil {
		respondStoreError(w, r, err, "Category", "create category", h.logger)
		return
	}

	h.logger.Info("category_created",
		zap.String("category_id", category.ID.String()),
		zap.String("name", logpkg.SanitizeString(category.Name, logpkg.MaxGeneralStringLength)),
		zap.String("request_id", request.RequestID(r)),
	)

	respondJSON(w, http.StatusCreated, category)
}

// GetCategory retrieves a single category
func (h *CategoryHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, h.logger)
	if !ok {
		return
	}

	category, err := h.categories.GetByID(r.Context(), id)
	if err != nil {
		respondStoreError(w, r, err, "Category", "retrieve category", h.logger)
		return
	}
	respondJSON(w, http.StatusOK, category)
}

// UpdateCategory merges the supplied fields into a category
func (h *CategoryHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, h.logger)
	if !ok {
		return
	}

	var req models.CategoryUpdate
	if !decodeAndValidate(w, r, &req, h.logger) {
		return
	}

	category, err := h.categories.GetByID(r.Context(), id)
	if err != nil {
		respondStoreError(w, r, err, "Category", "retrieve category", h.logger)
		return
	}

	req.Apply(category)

	if err := h.categories.Update(r.Context(), category); err != nil {
		respondStoreError(w, r, err, "Category", "update category", h.logger)
		return
	}
	respondJSON(w, http.StatusOK, category)
}

// DeleteCategory hard-deletes a category. Tasks keep their category text.
func (h *CategoryHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, h.logger)
	if !ok {
		return
	}

	if err := h.categories.Delete(r.Context(), id); err != nil {
		respondStoreError(w, r, err, "Category", "delete category", h.logger)
		return
	}

	h.logger.Info("category_deleted",
		zap.String("category_id", id.String()),
		zap.String("request_id", request.RequestID(r)),
	)

	respondJSON(w, http.StatusOK, map[string]string{"message": "Category deleted successfully"})
}

// ResetUsage sets a category's usage counter back to zero
func (h *CategoryHandler) ResetUsage(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, h.logger)
	if !ok {
		return
	}

	category, err := h.categories.ResetUsage(r.Context(), id)
	if err != nil {
		respondStoreError(w, r, err, "Category", "reset category usage", h.logger)
		return
	}

	h.logger.Info("category_usage_reset",
		zap.String("category_id", id.String()),
		zap.String("request_id", request.RequestID(r)),
	)

	respondJSON(w, http.StatusOK, category)
}

// Statistics aggregates over all categories
func (h *CategoryHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categories.ListAll(r.Context())
	if err != nil {
		respondStoreError(w, r, err, "Category", "compute category statistics", h.logger)
		return
	}
	respondJSON(w, http.StatusOK, stats.ComputeCategoryStatistics(categories))
}

// Popular returns active categories that have been used, most used first
func (h *CategoryHandler) Popular(w http.ResponseWriter, r *http.Request) {
	q := newQueryParser(r)
	limit := q.intRange("limit", DefaultPopularLimit, 1, MaxPopularLimit)
	if !q.done(w, r, h.logger) {
		return
	}

	categories, err := h.categories.Popular(r.Context(), limit)
	if err != nil {
		respondStoreError(w, r, err, "Category", "retrieve popular categories", h.logger)
		return
	}
	respondJSON(w, http.StatusOK, categories)
}
