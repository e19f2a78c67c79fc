package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/smart-todo/smart-todo-list/internal/database"
	logpkg "github.com/smart-todo/smart-todo-list/internal/logger"
	"github.com/smart-todo/smart-todo-list/internal/middleware"
	"github.com/smart-todo/smart-todo-list/internal/models"
	"github.com/smart-todo/smart-todo-list/internal/request"
	"github.com/smart-todo/smart-todo-list/internal/validation"
	"go.uber.org/zap"
)

const (
	// DefaultPageSize is the default page size for list endpoints
	DefaultPageSize = 100
	// MaxPageSize is the maximum page size for list endpoints
	MaxPageSize = 1000
)

// respondJSON sends data as a flat JSON response
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// respondError sends the standard error envelope
func respondError(w http.ResponseWriter, r *http.Request, status int, errorType, message string, logger *zap.Logger) {
	middleware.WriteError(w, r, status, errorType, message, nil, logger)
}

// respondValidationError sends a 422 with one detail per invalid field
func respondValidationError(w http.ResponseWriter, r *http.Request, verr *validation.Error, logger *zap.Logger) {
	middleware.WriteError(w, r, http.StatusUnprocessableEntity, "Validation Error", "Request validation failed", verr.Fields, logger)
}

// decodeAndValidate reads a JSON body into dst and validates it. On failure
// it writes the response and returns false.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any, logger *zap.Logger) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondDecodeError(w, r, err, logger)
		return false
	}

	if err := validation.Struct(dst); err != nil {
		var verr *validation.Error
		if errors.As(err, &verr) {
			respondValidationError(w, r, verr, logger)
			return false
		}
		logger.Error("request_validation_failed", zap.Error(err))
		respondError(w, r, http.StatusInternalServerError, "Internal Server Error", "Failed to validate request", logger)
		return false
	}
	return true
}

// respondDecodeError maps JSON decoding failures onto the error taxonomy
func respondDecodeError(w http.ResponseWriter, r *http.Request, err error, logger *zap.Logger) {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		respondError(w, r, http.StatusRequestEntityTooLarge, "Request Entity Too Large",
			fmt.Sprintf("Request body exceeds maximum size of %d bytes", maxBytesErr.Limit), logger)
		return
	}

	var tsErr *models.InvalidTimestampError
	if errors.As(err, &tsErr) {
		respondValidationError(w, r, validation.NewError("deadline", "must be an ISO-8601 timestamp"), logger)
		return
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		respondValidationError(w, r, validation.NewError(typeErr.Field, "must be of type "+typeErr.Type.String()), logger)
		return
	}

	if errors.Is(err, io.EOF) {
		respondError(w, r, http.StatusBadRequest, "Bad Request", "Request body is required", logger)
		return
	}

	respondError(w, r, http.StatusBadRequest, "Bad Request", "Invalid JSON in request body", logger)
}

// respondStoreError maps repository errors. Anything other than not-found or
// duplicate is logged and reported as a generic 500.
func respondStoreError(w http.ResponseWriter, r *http.Request, err error, entity, action string, logger *zap.Logger) {
	switch {
	case errors.Is(err, database.ErrNotFound):
		respondError(w, r, http.StatusNotFound, "Not Found", entity+" not found", logger)
	case errors.Is(err, database.ErrDuplicate):
		respondError(w, r, http.StatusConflict, "Conflict", entity+" with this name already exists", logger)
	default:
		logger.Error("store_operation_failed",
			zap.String("entity", entity),
			zap.String("action", action),
			zap.String("error", logpkg.SanitizeError(err)),
			zap.String("request_id", request.RequestID(r)),
		)
		respondError(w, r, http.StatusInternalServerError, "Internal Server Error", "Failed to "+action, logger)
	}
}

// parseID reads the {id} path variable. On failure it writes a 400.
func parseID(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (uuid.UUID, bool) {
	raw := mux.Vars(r)["id"]
	id, err := uuid.Parse(raw)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "Bad Request", "Invalid ID format", logger)
		return uuid.Nil, false
	}
	return id, true
}

// queryParser collects query parameter errors so a request reports all of
// them at once.
type queryParser struct {
	values url.Values
	errs   []validation.FieldError
}

func newQueryParser(r *http.Request) *queryParser {
	return &queryParser{values: r.URL.Query()}
}

func (p *queryParser) fail(name, message string) {
	p.errs = append(p.errs, validation.FieldError{Field: name, Message: message})
}

// intRange returns def when the parameter is absent.
func (p *queryParser) intRange(name string, def, minVal, maxVal int) int {
	v := p.optionalInt(name, minVal, maxVal)
	if v == nil {
		return def
	}
	return *v
}

func (p *queryParser) optionalInt(name string, minVal, maxVal int) *int {
	raw := strings.TrimSpace(p.values.Get(name))
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		p.fail(name, "must be an integer")
		return nil
	}
	if n < minVal || n > maxVal {
		p.fail(name, fmt.Sprintf("must be between %d and %d", minVal, maxVal))
		return nil
	}
	return &n
}

func (p *queryParser) optionalFloat(name string, minVal, maxVal float64) *float64 {
	raw := strings.TrimSpace(p.values.Get(name))
	if raw == "" {
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		p.fail(name, "must be a number")
		return nil
	}
	if f < minVal || f > maxVal {
		p.fail(name, fmt.Sprintf("must be between %g and %g", minVal, maxVal))
		return nil
	}
	return &f
}

func (p *queryParser) optionalBool(name string) *bool {
	raw := strings.TrimSpace(p.values.Get(name))
	if raw == "" {
		return nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		p.fail(name, "must be true or false")
		return nil
	}
	return &b
}

// oneOf returns def when the parameter is absent.
func (p *queryParser) oneOf(name, def string, allowed ...string) string {
	raw := strings.TrimSpace(p.values.Get(name))
	if raw == "" {
		return def
	}
	for _, a := range allowed {
		if raw == a {
			return raw
		}
	}
	p.fail(name, "must be one of "+strings.Join(allowed, ", "))
	return def
}

func (p *queryParser) str(name string) string {
	return strings.TrimSpace(p.values.Get(name))
}

func (p *queryParser) page() (skip, limit int) {
	skip = p.intRange("skip", 0, 0, math.MaxInt32)
	limit = p.intRange("limit", DefaultPageSize, 1, MaxPageSize)
	return skip, limit
}

// done writes a 400 listing every bad parameter and reports whether parsing succeeded.
func (p *queryParser) done(w http.ResponseWriter, r *http.Request, logger *zap.Logger) bool {
	if len(p.errs) == 0 {
		return true
	}
	middleware.WriteError(w, r, http.StatusBadRequest, "Bad Request", "Invalid query parameters", p.errs, logger)
	return false
}
