package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/smart-todo/smart-todo-list/internal/models"
)

const taskColumns = `id, title, description, category, priority_score, deadline, status,
	ai_enhanced_description, ai_suggested_tags, context_references, created_at, updated_at`

// overdueCondition matches open tasks whose deadline is before the bound parameter
const overdueCondition = "(deadline IS NOT NULL AND deadline < $%d AND status IN ('pending', 'in_progress'))"

var taskSortColumns = map[string]string{
	models.SortByCreatedAt: "created_at",
	models.SortByUpdatedAt: "updated_at",
	models.SortByPriority:  "priority_score",
	models.SortByDeadline:  "deadline",
	models.SortByTitle:     "title",
}

// TaskRepository handles task database operations
type TaskRepository struct {
	db  *DB
	now func() time.Time
}

// NewTaskRepository creates a new task repository
func NewTaskRepository(db *DB) *TaskRepository {
	return &TaskRepository{db: db, now: time.Now}
}

// Create inserts a new task, assigning an id when the caller did not
func (r *TaskRepository) Create(ctx context.Context, task *models.Task) error {
	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}

	tagsJSON, refsJSON, err := marshalTaskLists(task)
	if err != nil {
		return err
	}

	now := r.now().UTC()
	query := `
		INSERT INTO tasks (id, title, description, category, priority_score, deadline, status,
			ai_enhanced_description, ai_suggested_tags, context_references, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at
	`
	err = r.db.QueryRowContext(ctx, query,
		task.ID,
		task.Title,
		task.Description,
		task.Category,
		task.PriorityScore,
		task.Deadline,
		task.Status,
		task.AIEnhancedDescription,
		tagsJSON,
		refsJSON,
		now,
		now,
	).Scan(&task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}

	return nil
}

// GetByID retrieves a task by ID
func (r *TaskRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`

	task, err := scanTask(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return task, nil
}

// List returns tasks matching the filter. Without an explicit sort the
// result is in insertion order.
func (r *TaskRepository) List(ctx context.Context, filter models.TaskFilter) ([]*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE 1=1`
	args := []any{}
	argIndex := 1

	if filter.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argIndex)
		args = append(args, string(*filter.Status))
		argIndex++
	}

	if filter.Category != "" {
		query += fmt.Sprintf(" AND LOWER(category) = LOWER($%d)", argIndex)
		args = append(args, filter.Category)
		argIndex++
	}

	if filter.Priority != nil {
		query += fmt.Sprintf(" AND priority_score = $%d", argIndex)
		args = append(args, *filter.Priority)
		argIndex++
	}

	if filter.Overdue != nil {
		now := filter.Now
		if now.IsZero() {
			now = r.now()
		}
		cond := fmt.Sprintf(overdueCondition, argIndex)
		if *filter.Overdue {
			query += " AND " + cond
		} else {
			query += " AND NOT " + cond
		}
		args = append(args, now.UTC())
		argIndex++
	}

	query += " ORDER BY " + taskOrderClause(filter)

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIndex)
		args = append(args, filter.Limit)
		argIndex++
	}
	if filter.Skip > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argIndex)
		args = append(args, filter.Skip)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	tasks := []*models.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tasks: %w", err)
	}

	return tasks, nil
}

// ListAll returns every task, used for statistics over the full set
func (r *TaskRepository) ListAll(ctx context.Context) ([]*models.Task, error) {
	return r.List(ctx, models.TaskFilter{})
}

// Update writes every mutable column of task and refreshes updated_at
func (r *TaskRepository) Update(ctx context.Context, task *models.Task) error {
	tagsJSON, refsJSON, err := marshalTaskLists(task)
	if err != nil {
		return err
	}

	query := `
		UPDATE tasks
		SET title = $2, description = $3, category = $4, priority_score = $5, deadline = $6,
			status = $7, ai_enhanced_description = $8, ai_suggested_tags = $9,
			context_references = $10, updated_at = GREATEST($11, created_at)
		WHERE id = $1
		RETURNING updated_at
	`
	err = r.db.QueryRowContext(ctx, query,
		task.ID,
		task.Title,
		task.Description,
		task.Category,
		task.PriorityScore,
		task.Deadline,
		task.Status,
		task.AIEnhancedDescription,
		tagsJSON,
		refsJSON,
		r.now().UTC(),
	).Scan(&task.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}

	return nil
}

// Delete removes a task
func (r *TaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

func taskOrderClause(filter models.TaskFilter) string {
	column, ok := taskSortColumns[filter.SortBy]
	if !ok {
		column = "created_at"
	}
	direction := "ASC"
	if filter.Descending {
		direction = "DESC"
	}
	clause := column + " " + direction
	if column == "deadline" {
		clause += " NULLS LAST"
	}
	return clause + ", id " + direction
}

func marshalTaskLists(task *models.Task) ([]byte, []byte, error) {
	tags := task.AISuggestedTags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal tags: %w", err)
	}
	refs := task.ContextReferences
	if refs == nil {
		refs = []uuid.UUID{}
	}
	refsJSON, err := json.Marshal(refs)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal context references: %w", err)
	}
	return tagsJSON, refsJSON, nil
}

func scanTask(row rowScanner) (*models.Task, error) {
	task := &models.Task{}
	var deadline sql.NullTime
	var tagsJSON, refsJSON []byte

	err := row.Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&task.Category,
		&task.PriorityScore,
		&deadline,
		&task.Status,
		&task.AIEnhancedDescription,
		&tagsJSON,
		&refsJSON,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if deadline.Valid {
		d := deadline.Time
		task.Deadline = &d
	}
	task.AISuggestedTags = []string{}
	if len(tagsJSON) > 0 {
		if err := json.Unmarshal(tagsJSON, &task.AISuggestedTags); err != nil {
			return nil, fmt.Errorf("failed to unmarshal tags: %w", err)
		}
	}
	task.ContextReferences = []uuid.UUID{}
	if len(refsJSON) > 0 {
		if err := json.Unmarshal(refsJSON, &task.ContextReferences); err != nil {
			return nil, fmt.Errorf("failed to unmarshal context references: %w", err)
		}
	}

	return task, nil
}
