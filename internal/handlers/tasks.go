package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/smart-todo/smart-todo-list/internal/database"
	logpkg "github.com/smart-todo/smart-todo-list/internal/logger"
	"github.com/smart-todo/smart-todo-list/internal/models"
	"github.com/smart-todo/smart-todo-list/internal/request"
	"github.com/smart-todo/smart-todo-list/internal/services/stats"
	"go.uber.org/zap"
)

// recentContextLimit is how many stored entries feed a suggestion when the
// client asks for recent context without sending any
const recentContextLimit = 5

// TaskSuggester produces AI task suggestions. It never fails: model errors
// yield a fallback suggestion.
type TaskSuggester interface {
	SuggestTask(ctx context.Context, req *models.AITaskSuggestionRequest) *models.AITaskSuggestion
}

// TaskHandler handles task-related requests
type TaskHandler struct {
	tasks      database.TaskRepositoryInterface
	categories database.CategoryRepositoryInterface
	contexts   database.ContextEntryRepositoryInterface
	suggester  TaskSuggester
	logger     *zap.Logger
	now        func() time.Time
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(
	tasks database.TaskRepositoryInterface,
	categories database.CategoryRepositoryInterface,
	contexts database.ContextEntryRepositoryInterface,
	suggester TaskSuggester,
	logger *zap.Logger,
) *TaskHandler {
	return &TaskHandler{
		tasks:      tasks,
		categories: categories,
		contexts:   contexts,
		suggester:  suggester,
		logger:     logger,
		now:        time.Now,
	}
}

// RegisterRoutes registers task routes on a router already scoped to /tasks.
// Fixed paths are registered before /{id} so they are not captured by it.
func (h *TaskHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/ai-suggestions", h.Suggest).Methods("POST")
	r.HandleFunc("/statistics", h.Statistics).Methods("GET")
	r.HandleFunc("", h.ListTasks).Methods("GET")
	r.HandleFunc("", h.CreateTask).Methods("POST")
	r.HandleFunc("/{id}", h.GetTask).Methods("GET")
	r.HandleFunc("/{id}", h.UpdateTask).Methods("PUT", "PATCH")
	r.HandleFunc("/{id}", h.DeleteTask).Methods("DELETE")
	r.HandleFunc("/{id}/context", h.TaskContext).Methods("GET")
}

// ListTasks lists tasks with filters, sorting and pagination
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	q := newQueryParser(r)

	filter := models.TaskFilter{
		Category: q.str("category"),
		Priority: q.optionalInt("priority", models.MinPriority, models.MaxPriority),
		Overdue:  q.optionalBool("overdue"),
		SortBy: q.oneOf("sort_by", models.SortByCreatedAt,
			models.SortByCreatedAt, models.SortByUpdatedAt, models.SortByPriority, models.SortByDeadline, models.SortByTitle),
		Descending: q.oneOf("order", "asc", "asc", "desc") == "desc",
		Now:        h.now().UTC(),
	}
	if s := q.str("status"); s != "" {
		status := models.TaskStatus(s)
		if status.Valid() {
			filter.Status = &status
		} else {
			q.fail("status", "must be one of pending, in_progress, completed, cancelled")
		}
	}
	filter.Skip, filter.Limit = q.page()
	if !q.done(w, r, h.logger) {
		return
	}

	tasks, err := h.tasks.List(r.Context(), filter)
	if err != nil {
		respondStoreError(w, r, err, "Task", "retrieve tasks", h.logger)
		return
	}

	now := h.now()
	out := make([]models.TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, models.NewTaskResponse(t, now))
	}
	respondJSON(w, http.StatusOK, out)
}

// CreateTask creates a new task
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req models.TaskCreate
	if !decodeAndValidate(w, r, &req, h.logger) {
		return
	}

	task := req.ToTask()
	if err := h.tasks.Create(r.Context(), task); err != nil {
		respondStoreError(w, r, err, "Task", "create task", h.logger)
		return
	}

	if task.Category != "" {
		h.recordCategoryUsage(r, task.Category)
	}

	h.logger.Info("task_created",
		zap.String("task_id", task.ID.String()),
		zap.String("title", logpkg.Preview(task.Title, logpkg.MaxTitlePreviewLength)),
		zap.Int("priority_score", task.PriorityScore),
		zap.String("request_id", request.RequestID(r)),
	)

	respondJSON(w, http.StatusCreated, models.NewTaskResponse(task, h.now()))
}

// GetTask retrieves a single task
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, h.logger)
	if !ok {
		return
	}

	task, err := h.tasks.GetByID(r.Context(), id)
	if err != nil {
		respondStoreError(w, r, err, "Task", "retrieve task", h.logger)
		return
	}

	respondJSON(w, http.StatusOK, models.NewTaskResponse(task, h.now()))
}

// UpdateTask merges the supplied fields into an existing task. PUT and PATCH
// behave the same.
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, h.logger)
	if !ok {
		return
	}

	var req models.TaskUpdate
	if !decodeAndValidate(w, r, &req, h.logger) {
		return
	}

	task, err := h.tasks.GetByID(r.Context(), id)
	if err != nil {
		respondStoreError(w, r, err, "Task", "retrieve task", h.logger)
		return
	}

	categoryChanged := req.Apply(task)

	if err := h.tasks.Update(r.Context(), task); err != nil {
		respondStoreError(w, r, err, "Task", "update task", h.logger)
		return
	}

	if categoryChanged {
		h.recordCategoryUsage(r, task.Category)
	}

	h.logger.Info("task_updated",
		zap.String("task_id", task.ID.String()),
		zap.String("request_id", request.RequestID(r)),
	)

	respondJSON(w, http.StatusOK, models.NewTaskResponse(task, h.now()))
}

// DeleteTask removes a task
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, h.logger)
	if !ok {
		return
	}

	if err := h.tasks.Delete(r.Context(), id); err != nil {
		respondStoreError(w, r, err, "Task", "delete task", h.logger)
		return
	}

	h.logger.Info("task_deleted",
		zap.String("task_id", id.String()),
		zap.String("request_id", request.RequestID(r)),
	)

	respondJSON(w, http.StatusOK, map[string]string{"message": "Task deleted successfully"})
}

// TaskContext returns the stored context entries referenced by a task
func (h *TaskHandler) TaskContext(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, h.logger)
	if !ok {
		return
	}

	task, err := h.tasks.GetByID(r.Context(), id)
	if err != nil {
		respondStoreError(w, r, err, "Task", "retrieve task", h.logger)
		return
	}

	entries, err := h.contexts.ListByIDs(r.Context(), task.ContextReferences)
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

// Suggest runs the suggestion adapter. Once the input is valid it always
// answers 200, with a fallback suggestion if the model could not help.
func (h *TaskHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	var req models.AITaskSuggestionRequest
	if !decodeAndValidate(w, r, &req, h.logger) {
		return
	}

	if req.UseRecentContext && len(req.ContextData) == 0 {
		entries, err := h.contexts.ListRecent(r.Context(), recentContextLimit)
		if err != nil {
			respondStoreError(w, r, err, "Context entry", "load recent context", h.logger)
			return
		}
		req.ContextData = models.SnippetsFromEntries(entries)
	}

	suggestion := h.suggester.SuggestTask(r.Context(), &req)
	respondJSON(w, http.StatusOK, suggestion)
}

// Statistics aggregates over the full task set on every call
func (h *TaskHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.tasks.ListAll(r.Context())
	if err != nil {
		respondStoreError(w, r, err, "Task", "compute task statistics", h.logger)
		return
	}

	respondJSON(w, http.StatusOK, stats.ComputeTaskStatistics(tasks, h.now()))
}

// recordCategoryUsage bumps the usage counter of the named category. Failures
// are logged and do not fail the task write.
func (h *TaskHandler) recordCategoryUsage(r *http.Request, name string) {
	matched, err := h.categories.IncrementUsage(r.Context(), name)
	if err != nil {
		h.logger.Warn("category_usage_increment_failed",
			zap.String("category", logpkg.SanitizeString(name, logpkg.MaxGeneralStringLength)),
			zap.String("error", logpkg.SanitizeError(err)),
			zap.String("request_id", request.RequestID(r)),
		)
		return
	}
	if matched {
		h.logger.Debug("category_usage_incremented",
			zap.String("category", logpkg.SanitizeString(name, logpkg.MaxGeneralStringLength)),
		)
	}
}
