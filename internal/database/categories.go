package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/smart-todo/smart-todo-list/internal/models"
)

const categoryColumns = `id, name, description, usage_frequency, color, is_active, created_at, updated_at`

// CategoryRepository handles category database operations
type CategoryRepository struct {
	db  *DB
	now func() time.Time
}

// NewCategoryRepository creates a new category repository
func NewCategoryRepository(db *DB) *CategoryRepository {
	return &CategoryRepository{db: db, now: time.Now}
}

// Create inserts a new category. A duplicate name yields ErrDuplicate.
func (r *CategoryRepository) Create(ctx context.Context, category *models.Category) error {
	if category.ID == uuid.Nil {
		category.ID = uuid.New()
	}

	now := r.now().UTC()
	query := `
		INSERT INTO categories (id, name, description, usage_frequency, color, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		category.ID,
		category.Name,
		category.Description,
		category.UsageFrequency,
		category.Color,
		category.IsActive,
		now,
		now,
	).Scan(&category.CreatedAt, &category.UpdatedAt)
	if isUniqueViolation(err) {
		return fmt.Errorf("category %q: %w", category.Name, ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

// GetByID retrieves a category by ID
func (r *CategoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE id = $1`
	category, err := scanCategory(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return category, nil
}

// List returns categories matching the filter, most used first
func (r *CategoryRepository) List(ctx context.Context, filter models.CategoryFilter) ([]*models.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE 1=1`
	args := []any{}
	argIndex := 1

	if filter.IsActive != nil {
		query += fmt.Sprintf(" AND is_active = $%d", argIndex)
		args = append(args, *filter.IsActive)
		argIndex++
	}
	if filter.MinUsage != nil {
		query += fmt.Sprintf(" AND usage_frequency >= $%d", argIndex)
		args = append(args, *filter.MinUsage)
		argIndex++
	}
	if filter.Search != "" {
		query += fmt.Sprintf(" AND name ILIKE $%d", argIndex)
		args = append(args, "%"+escapeLike(filter.Search)+"%")
		argIndex++
	}

	query += " ORDER BY usage_frequency DESC, name ASC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIndex)
		args = append(args, filter.Limit)
		argIndex++
	}
	if filter.Skip > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argIndex)
		args = append(args, filter.Skip)
	}

	return r.query(ctx, query, args...)
}

// ListAll returns every category, used for statistics
func (r *CategoryRepository) ListAll(ctx context.Context) ([]*models.Category, error) {
	return r.List(ctx, models.CategoryFilter{})
}

// Popular returns active categories that have been used at least once
func (r *CategoryRepository) Popular(ctx context.Context, limit int) ([]*models.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories
		WHERE usage_frequency > 0 AND is_active = TRUE
		ORDER BY usage_frequency DESC, name ASC
		LIMIT $1`
	return r.query(ctx, query, limit)
}

// Update writes the editable columns of category
func (r *CategoryRepository) Update(ctx context.Context, category *models.Category) error {
	query := `
		UPDATE categories
		SET name = $2, description = $3, color = $4, is_active = $5, updated_at = GREATEST($6, created_at)
		WHERE id = $1
		RETURNING usage_frequency, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		category.ID,
		category.Name,
		category.Description,
		category.Color,
		category.IsActive,
		r.now().UTC(),
	).Scan(&category.UsageFrequency, &category.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if isUniqueViolation(err) {
		return fmt.Errorf("category %q: %w", category.Name, ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("failed to update category: %w", err)
	}
	return nil
}

// Delete removes a category. Tasks keep their category text.
func (r *CategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
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

// IncrementUsage bumps usage_frequency of the category with the given name.
// It reports whether a category matched; no match is not an error.
func (r *CategoryRepository) IncrementUsage(ctx context.Context, name string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE categories
		SET usage_frequency = usage_frequency + 1, updated_at = GREATEST($2, created_at)
		WHERE name = $1
	`, name, r.now().UTC())
	if err != nil {
		return false, fmt.Errorf("failed to increment category usage: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

// ResetUsage sets usage_frequency back to zero and returns the updated row
func (r *CategoryRepository) ResetUsage(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	query := `
		UPDATE categories
		SET usage_frequency = 0, updated_at = GREATEST($2, created_at)
		WHERE id = $1
		RETURNING ` + categoryColumns
	category, err := scanCategory(r.db.QueryRowContext(ctx, query, id, r.now().UTC()))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to reset category usage: %w", err)
	}
	return category, nil
}

// ResetAllUsage zeroes usage_frequency for every category and returns how many changed
func (r *CategoryRepository) ResetAllUsage(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE categories SET usage_frequency = 0, updated_at = GREATEST($1, created_at)
		WHERE usage_frequency <> 0
	`, r.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to reset category usage: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}

func (r *CategoryRepository) query(ctx context.Context, query string, args ...any) ([]*models.Category, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	categories := []*models.Category{}
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, category)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}
	return categories, nil
}

func scanCategory(row rowScanner) (*models.Category, error) {
	c := &models.Category{}
	err := row.Scan(
		&c.ID,
		&c.Name,
		&c.Description,
		&c.UsageFrequency,
		&c.Color,
		&c.IsActive,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// escapeLike escapes LIKE wildcards so search terms match literally
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
