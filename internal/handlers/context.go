package handlers

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/smart-todo/smart-todo-list/internal/database"
	"github.com/smart-todo/smart-todo-list/internal/models"
	"github.com/smart-todo/smart-todo-list/internal/request"
	"go.uber.org/zap"
)

// ContextAnalyzer analyses context text. A failing model degrades to local
// heuristics instead of returning an error.
type ContextAnalyzer interface {
	AnalyzeContext(ctx context.Context, content string, source models.SourceType, opts models.AnalysisOptions) *models.ContextAnalysisResult
}

// ContextHandler handles context entry requests
type ContextHandler struct {
	entries         database.ContextEntryRepositoryInterface
	analyzer        ContextAnalyzer
	analyzeOnCreate bool
	logger          *zap.Logger
}

// NewContextHandler creates a new context handler. When analyzeOnCreate is
// set, new entries are analysed before they are stored.
func NewContextHandler(entries database.ContextEntryRepositoryInterface, analyzer ContextAnalyzer, analyzeOnCreate bool, logger *zap.Logger) *ContextHandler {
	return &ContextHandler{
		entries:         entries,
		analyzer:        analyzer,
		analyzeOnCreate: analyzeOnCreate,
		logger:          logger,
	}
}

// RegisterRoutes registers context routes on a router already scoped to /context
func (h *ContextHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/analyze", h.Analyze).Methods("POST")
	r.HandleFunc("", h.ListEntries).Methods("GET")
	r.HandleFunc("", h.CreateEntry).Methods("POST")
	r.HandleFunc("/{id}", h.GetEntry).Methods("GET")
	r.HandleFunc("/{id}", h.UpdateEntry).Methods("PUT", "PATCH")
	r.HandleFunc("/{id}", h.DeleteEntry).Methods("DELETE")
	r.HandleFunc("/{id}/analyze", h.AnalyzeEntry).Methods("POST")
}

// ListEntries lists context entries, newest first
func (h *ContextHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	q := newQueryParser(r)

	filter := models.ContextFilter{
		IsProcessed:  q.optionalBool("is_processed"),
		MinRelevance: q.optionalFloat("min_relevance", 0, 1),
	}
	if s := q.str("source_type"); s != "" {
		source := models.SourceType(s)
		if source.Valid() {
			filter.SourceType = &source
		} else {
			q.fail("source_type", "must be one of email, whatsapp, notes, calendar")
		}
	}
	filter.Skip, filter.Limit = q.page()
	if !q.done(w, r, h.logger) {
		return
	}

	entries, err := h.entries.List(r.Context(), filter)
	if err != nil {
		respondStoreError(w, r, err, "Context entry", "retrieve context entries", h.logger)
		return
	}

	out := make([]models.ContextEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, models.NewContextEntryResponse(e))
	}
	respondJSON(w, http.StatusOK, out)
}

// CreateEntry stores a new context entry, analysing it first when enabled
func (h *ContextHandler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	var req models.ContextEntryCreate
	if !decodeAndValidate(w, r, &req, h.logger) {
		return
	}

	entry := req.ToEntry()
	if h.analyzeOnCreate {
		result := h.analyzer.AnalyzeContext(r.Context(), entry.Content, entry.SourceType, models.AllAnalysis)
		entry.ApplyAnalysis(result)
	}

	if err := h.entries.Create(r.Context(), entry); err != nil {
		respondStoreError(w, r, err, "Context entry", "create context entry", h.logger)
		return
	}

	h.logger.Info("context_entry_created",
		zap.String("context_id", entry.ID.String()),
		zap.String("source_type", string(entry.SourceType)),
		zap.Bool("is_processed", entry.IsProcessed),
		zap.String("request_id", request.RequestID(r)),
	)

	respondJSON(w, http.StatusCreated, models.NewContextEntryResponse(entry))
}

// GetEntry retrieves a single context entry
func (h *ContextHandler) GetEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, h.logger)
	if !ok {
		return
	}

	entry, err := h.entries.GetByID(r.Context(), id)
	if err != nil {
		respondStoreError(w, r, err, "Context entry", "retrieve context entry", h.logger)
		return
	}

	respondJSON(w, http.StatusOK, models.NewContextEntryResponse(entry))
}

// UpdateEntry merges the supplied fields, including analysis fields, into an entry
func (h *ContextHandler) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, h.logger)
	if !ok {
		return
	}

	var req models.ContextEntryUpdate
	if !decodeAndValidate(w, r, &req, h.logger) {
		return
	}

	entry, err := h.entries.GetByID(r.Context(), id)
	if err != nil {
		respondStoreError(w, r, err, "Context entry", "retrieve context entry", h.logger)
		return
	}

	req.Apply(entry)

	if err := h.entries.Update(r.Context(), entry); err != nil {
		respondStoreError(w, r, err, "Context entry", "update context entry", h.logger)
		return
	}

	respondJSON(w, http.StatusOK, models.NewContextEntryResponse(entry))
}

// DeleteEntry removes a context entry. Tasks referencing it keep the stale id.
func (h *ContextHandler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, h.logger)
	if !ok {
		return
	}

	if err := h.entries.Delete(r.Context(), id); err != nil {
		respondStoreError(w, r, err, "Context entry", "delete context entry", h.logger)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Context entry deleted successfully"})
}

// Analyze runs an ad-hoc analysis without storing anything
func (h *ContextHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req models.ContextAnalysisRequest
	if !decodeAndValidate(w, r, &req, h.logger) {
		return
	}

	result := h.analyzer.AnalyzeContext(r.Context(), req.Content, req.SourceType, req.Options())
	respondJSON(w, http.StatusOK, result)
}

// AnalyzeEntry analyses a stored entry and persists the result
func (h *ContextHandler) AnalyzeEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, h.logger)
	if !ok {
		return
	}

	entry, err := h.entries.GetByID(r.Context(), id)
	if err != nil {
		respondStoreError(w, r, err, "Context entry", "retrieve context entry", h.logger)
		return
	}

	result := h.analyzer.AnalyzeContext(r.Context(), entry.Content, entry.SourceType, models.AllAnalysis)
	entry.ApplyAnalysis(result)

	if err := h.entries.Update(r.Context(), entry); err != nil {
		respondStoreError(w, r, err, "Context entry", "store analysis", h.logger)
		return
	}

	h.logger.Info("context_entry_analyzed",
		zap.String("context_id", entry.ID.String()),
		zap.Bool("degraded", result.Degraded),
		zap.String("request_id", request.RequestID(r)),
	)

	respondJSON(w, http.StatusOK, models.NewContextEntryResponse(entry))
}
