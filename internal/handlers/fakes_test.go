package handlers

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/smart-todo/smart-todo-list/internal/database"
	"github.com/smart-todo/smart-todo-list/internal/middleware"
	"github.com/smart-todo/smart-todo-list/internal/models"
	"github.com/smart-todo/smart-todo-list/internal/services/ai"
	"go.uber.org/zap"
)

// In-memory repositories implementing the database interfaces. They mirror
// the SQL semantics the handlers rely on: ErrNotFound, ErrDuplicate and the
// documented list orderings.

type fakeTaskRepo struct {
	mu    sync.Mutex
	tasks []*models.Task
	err   error
}

func (f *fakeTaskRepo) Create(_ context.Context, task *models.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}
	now := time.Now().UTC()
	task.CreatedAt, task.UpdatedAt = now, now
	cp := *task
	f.tasks = append(f.tasks, &cp)
	return nil
}

func (f *fakeTaskRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, t := range f.tasks {
		if t.ID == id {
			cp := *t
			return &cp, nil
		}
	}
	return nil, database.ErrNotFound
}

func (f *fakeTaskRepo) List(_ context.Context, filter models.TaskFilter) ([]*models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := []*models.Task{}
	for _, t := range f.tasks {
		if filter.Status != nil && t.Status != *filter.Status {
			continue
		}
		if filter.Category != "" && !strings.EqualFold(t.Category, filter.Category) {
			continue
		}
		if filter.Priority != nil && t.PriorityScore != *filter.Priority {
			continue
		}
		if filter.Overdue != nil && t.IsOverdue(filter.Now) != *filter.Overdue {
			continue
		}
		cp := *t
		out = append(out, &cp)
	}
	if filter.SortBy == models.SortByPriority {
		sort.SliceStable(out, func(i, j int) bool {
			if filter.Descending {
				return out[i].PriorityScore > out[j].PriorityScore
			}
			return out[i].PriorityScore < out[j].PriorityScore
		})
	}
	return page(out, filter.Skip, filter.Limit), nil
}

func (f *fakeTaskRepo) ListAll(ctx context.Context) ([]*models.Task, error) {
	return f.List(ctx, models.TaskFilter{})
}

func (f *fakeTaskRepo) Update(_ context.Context, task *models.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	for i, t := range f.tasks {
		if t.ID == task.ID {
			task.UpdatedAt = time.Now().UTC()
			cp := *task
			f.tasks[i] = &cp
			return nil
		}
	}
	return database.ErrNotFound
}

func (f *fakeTaskRepo) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	for i, t := range f.tasks {
		if t.ID == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return database.ErrNotFound
}

type fakeCategoryRepo struct {
	mu         sync.Mutex
	categories []*models.Category
	err        error
}

func (f *fakeCategoryRepo) Create(_ context.Context, c *models.Category) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	for _, existing := range f.categories {
		if existing.Name == c.Name {
			return database.ErrDuplicate
		}
	}
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	now := time.Now().UTC()
	c.CreatedAt, c.UpdatedAt = now, now
	cp := *c
	f.categories = append(f.categories, &cp)
	return nil
}

func (f *fakeCategoryRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, c := range f.categories {
		if c.ID == id {
			cp := *c
			return &cp, nil
		}
	}
	return nil, database.ErrNotFound
}

func (f *fakeCategoryRepo) List(_ context.Context, filter models.CategoryFilter) ([]*models.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := []*models.Category{}
	for _, c := range f.categories {
		if filter.IsActive != nil && c.IsActive != *filter.IsActive {
			continue
		}
		if filter.MinUsage != nil && c.UsageFrequency < *filter.MinUsage {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(c.Name), strings.ToLower(filter.Search)) {
			continue
		}
		cp := *c
		out = append(out, &cp)
	}
	sortByUsage(out)
	return page(out, filter.Skip, filter.Limit), nil
}

func (f *fakeCategoryRepo) ListAll(ctx context.Context) ([]*models.Category, error) {
	return f.List(ctx, models.CategoryFilter{})
}

func (f *fakeCategoryRepo) Popular(ctx context.Context, limit int) ([]*models.Category, error) {
	active := true
	minUsage := 1
	return f.List(ctx, models.CategoryFilter{IsActive: &active, MinUsage: &minUsage, Limit: limit})
}

func (f *fakeCategoryRepo) Update(_ context.Context, c *models.Category) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	idx := -1
	for i, existing := range f.categories {
		if existing.ID == c.ID {
			idx = i
		} else if existing.Name == c.Name {
			return database.ErrDuplicate
		}
	}
	if idx < 0 {
		return database.ErrNotFound
	}
	c.UsageFrequency = f.categories[idx].UsageFrequency
	c.UpdatedAt = time.Now().UTC()
	cp := *c
	f.categories[idx] = &cp
	return nil
}

func (f *fakeCategoryRepo) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	for i, c := range f.categories {
		if c.ID == id {
			f.categories = append(f.categories[:i], f.categories[i+1:]...)
			return nil
		}
	}
	return database.ErrNotFound
}

func (f *fakeCategoryRepo) IncrementUsage(_ context.Context, name string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	for _, c := range f.categories {
		if c.Name == name {
			c.UsageFrequency++
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeCategoryRepo) ResetUsage(_ context.Context, id uuid.UUID) (*models.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, c := range f.categories {
		if c.ID == id {
			c.UsageFrequency = 0
			cp := *c
			return &cp, nil
		}
	}
	return nil, database.ErrNotFound
}

func (f *fakeCategoryRepo) usage(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.categories {
		if c.Name == name {
			return c.UsageFrequency
		}
	}
	return -1
}

type fakeContextRepo struct {
	mu      sync.Mutex
	entries []*models.ContextEntry
	err     error
}

func (f *fakeContextRepo) Create(_ context.Context, e *models.ContextEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	e.CreatedAt = time.Now().UTC()
	cp := *e
	f.entries = append(f.entries, &cp)
	return nil
}

func (f *fakeContextRepo) GetByID(_ context.Context, id uuid.UUID) (*models.ContextEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, e := range f.entries {
		if e.ID == id {
			cp := *e
			return &cp, nil
		}
	}
	return nil, database.ErrNotFound
}

// List returns newest first, i.e. reverse insertion order
func (f *fakeContextRepo) List(_ context.Context, filter models.ContextFilter) ([]*models.ContextEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := []*models.ContextEntry{}
	for i := len(f.entries) - 1; i >= 0; i-- {
		e := f.entries[i]
		if filter.SourceType != nil && e.SourceType != *filter.SourceType {
			continue
		}
		if filter.IsProcessed != nil && e.IsProcessed != *filter.IsProcessed {
			continue
		}
		if filter.MinRelevance != nil && e.RelevanceScore < *filter.MinRelevance {
			continue
		}
		cp := *e
		out = append(out, &cp)
	}
	return page(out, filter.Skip, filter.Limit), nil
}

func (f *fakeContextRepo) ListRecent(ctx context.Context, n int) ([]*models.ContextEntry, error) {
	return f.List(ctx, models.ContextFilter{Limit: n})
}

func (f *fakeContextRepo) ListByIDs(_ context.Context, ids []uuid.UUID) ([]*models.ContextEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := []*models.ContextEntry{}
	for _, id := range ids {
		for _, e := range f.entries {
			if e.ID == id {
				cp := *e
				out = append(out, &cp)
			}
		}
	}
	return out, nil
}

func (f *fakeContextRepo) Update(_ context.Context, e *models.ContextEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	for i, existing := range f.entries {
		if existing.ID == e.ID {
			cp := *e
			f.entries[i] = &cp
			return nil
		}
	}
	return database.ErrNotFound
}

func (f *fakeContextRepo) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	for i, e := range f.entries {
		if e.ID == id {
			f.entries = append(f.entries[:i], f.entries[i+1:]...)
			return nil
		}
	}
	return database.ErrNotFound
}

func page[T any](items []T, skip, limit int) []T {
	if skip >= len(items) {
		return items[:0]
	}
	items = items[skip:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

func sortByUsage(cs []*models.Category) {
	sort.SliceStable(cs, func(i, j int) bool {
		if cs[i].UsageFrequency != cs[j].UsageFrequency {
			return cs[i].UsageFrequency > cs[j].UsageFrequency
		}
		return cs[i].Name < cs[j].Name
	})
}

// recordingSuggester captures the request it receives
type recordingSuggester struct {
	mu  sync.Mutex
	got *models.AITaskSuggestionRequest
}

func (s *recordingSuggester) SuggestTask(_ context.Context, req *models.AITaskSuggestionRequest) *models.AITaskSuggestion {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *req
	s.got = &cp
	return ai.FallbackSuggestion(req, "test")
}

// degradedAnalyzer reports every analysis as degraded
type degradedAnalyzer struct{}

func (degradedAnalyzer) AnalyzeContext(_ context.Context, content string, source models.SourceType, opts models.AnalysisOptions) *models.ContextAnalysisResult {
	result := ai.Analyzer{}.Analyze(content, source, opts)
	result.Degraded = true
	return result
}

type testEnv struct {
	router     *mux.Router
	tasks      *fakeTaskRepo
	categories *fakeCategoryRepo
	contexts   *fakeContextRepo
}

type envOption func(*envConfig)

type envConfig struct {
	suggester       TaskSuggester
	analyzer        ContextAnalyzer
	analyzeOnCreate bool
}

func withSuggester(s TaskSuggester) envOption {
	return func(c *envConfig) { c.suggester = s }
}

func withAnalyzer(a ContextAnalyzer) envOption {
	return func(c *envConfig) { c.analyzer = a }
}

func withAnalyzeOnCreate(on bool) envOption {
	return func(c *envConfig) { c.analyzeOnCreate = on }
}

// newTestEnv wires the API handlers over in-memory repositories. The AI
// service runs without a provider, so suggestions fall back and analyses use
// local heuristics.
func newTestEnv(opts ...envOption) *testEnv {
	logger := zap.NewNop()
	service := ai.NewService(nil, 0, logger)
	cfg := envConfig{suggester: service, analyzer: service, analyzeOnCreate: true}
	for _, opt := range opts {
		opt(&cfg)
	}

	env := &testEnv{
		router:     mux.NewRouter(),
		tasks:      &fakeTaskRepo{},
		categories: &fakeCategoryRepo{},
		contexts:   &fakeContextRepo{},
	}
	env.router.Use(middleware.RequestID)

	api := env.router.PathPrefix("/api/v1").Subrouter()
	NewTaskHandler(env.tasks, env.categories, env.contexts, cfg.suggester, logger).
		RegisterRoutes(api.PathPrefix("/tasks").Subrouter())
	NewContextHandler(env.contexts, cfg.analyzer, cfg.analyzeOnCreate, logger).
		RegisterRoutes(api.PathPrefix("/context").Subrouter())
	NewCategoryHandler(env.categories, logger).
		RegisterRoutes(api.PathPrefix("/categories").Subrouter())

	return env
}
