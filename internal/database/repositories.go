package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/smart-todo/smart-todo-list/internal/models"
)

// TaskRepositoryInterface defines the interface for task repository operations
// This interface enables better testability by allowing mock implementations
type TaskRepositoryInterface interface {
	Create(ctx context.Context, task *models.Task) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error)
	List(ctx context.Context, filter models.TaskFilter) ([]*models.Task, error)
	ListAll(ctx context.Context) ([]*models.Task, error)
	Update(ctx context.Context, task *models.Task) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ContextEntryRepositoryInterface defines the interface for context entry repository operations
type ContextEntryRepositoryInterface interface {
	Create(ctx context.Context, entry *models.ContextEntry) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.ContextEntry, error)
	List(ctx context.Context, filter models.ContextFilter) ([]*models.ContextEntry, error)
	ListRecent(ctx context.Context, n int) ([]*models.ContextEntry, error)
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.ContextEntry, error)
	Update(ctx context.Context, entry *models.ContextEntry) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// CategoryRepositoryInterface defines the interface for category repository operations
type CategoryRepositoryInterface interface {
	Create(ctx context.Context, category *models.Category) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
	List(ctx context.Context, filter models.CategoryFilter) ([]*models.Category, error)
	ListAll(ctx context.Context) ([]*models.Category, error)
	Popular(ctx context.Context, limit int) ([]*models.Category, error)
	Update(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, id uuid.UUID) error
	IncrementUsage(ctx context.Context, name string) (bool, error)
	ResetUsage(ctx context.Context, id uuid.UUID) (*models.Category, error)
}

// Ensure concrete types implement the interfaces
var (
	_ TaskRepositoryInterface         = (*TaskRepository)(nil)
	_ ContextEntryRepositoryInterface = (*ContextEntryRepository)(nil)
	_ CategoryRepositoryInterface     = (*CategoryRepository)(nil)
)
