package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/smart-todo/smart-todo-list/internal/models"
)

const contextEntryColumns = `id, content, source_type, processed_insights, metadata, is_processed,
	relevance_score, extracted_keywords, created_at`

// ContextEntryRepository handles context entry database operations
type ContextEntryRepository struct {
	db  *DB
	now func() time.Time
}

// NewContextEntryRepository creates a new context entry repository
func NewContextEntryRepository(db *DB) *ContextEntryRepository {
	return &ContextEntryRepository{db: db, now: time.Now}
}

// Create inserts a new context entry
func (r *ContextEntryRepository) Create(ctx context.Context, entry *models.ContextEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}

	keywordsJSON, err := marshalKeywords(entry.ExtractedKeywords)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO context_entries (id, content, source_type, processed_insights, metadata,
			is_processed, relevance_score, extracted_keywords, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at
	`
	err = r.db.QueryRowContext(ctx, query,
		entry.ID,
		entry.Content,
		entry.SourceType,
		entry.ProcessedInsights,
		entry.Metadata,
		entry.IsProcessed,
		entry.RelevanceScore,
		keywordsJSON,
		r.now().UTC(),
	).Scan(&entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create context entry: %w", err)
	}

	return nil
}

// GetByID retrieves a context entry by ID
func (r *ContextEntryRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.ContextEntry, error) {
	query := `SELECT ` + contextEntryColumns + ` FROM context_entries WHERE id = $1`

	entry, err := scanContextEntry(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get context entry: %w", err)
	}
	return entry, nil
}

// List returns context entries matching the filter, newest first
func (r *ContextEntryRepository) List(ctx context.Context, filter models.ContextFilter) ([]*models.ContextEntry, error) {
	query := `SELECT ` + contextEntryColumns + ` FROM context_entries WHERE 1=1`
	args := []any{}
	argIndex := 1

	if filter.SourceType != nil {
		query += fmt.Sprintf(" AND source_type = $%d", argIndex)
		args = append(args, string(*filter.SourceType))
		argIndex++
	}
	if filter.IsProcessed != nil {
		query += fmt.Sprintf(" AND is_processed = $%d", argIndex)
		args = append(args, *filter.IsProcessed)
		argIndex++
	}
	if filter.MinRelevance != nil {
		query += fmt.Sprintf(" AND relevance_score >= $%d", argIndex)
		args = append(args, *filter.MinRelevance)
		argIndex++
	}

	query += " ORDER BY created_at DESC, id DESC"

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

// ListRecent returns the n most recently created entries
func (r *ContextEntryRepository) ListRecent(ctx context.Context, n int) ([]*models.ContextEntry, error) {
	return r.List(ctx, models.ContextFilter{Limit: n})
}

// ListByIDs returns the entries with the given ids. Unknown ids are skipped.
func (r *ContextEntryRepository) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.ContextEntry, error) {
	if len(ids) == 0 {
		return []*models.ContextEntry{}, nil
	}
	strIDs := make([]string, 0, len(ids))
	for _, id := range ids {
		strIDs = append(strIDs, id.String())
	}
	query := `SELECT ` + contextEntryColumns + ` FROM context_entries
		WHERE id = ANY($1::uuid[]) ORDER BY created_at DESC, id DESC`
	return r.query(ctx, query, pq.Array(strIDs))
}

// Update writes every mutable column of entry
func (r *ContextEntryRepository) Update(ctx context.Context, entry *models.ContextEntry) error {
	keywordsJSON, err := marshalKeywords(entry.ExtractedKeywords)
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx, `
		UPDATE context_entries
		SET content = $2, source_type = $3, processed_insights = $4, metadata = $5,
			is_processed = $6, relevance_score = $7, extracted_keywords = $8
		WHERE id = $1
	`,
		entry.ID,
		entry.Content,
		entry.SourceType,
		entry.ProcessedInsights,
		entry.Metadata,
		entry.IsProcessed,
		entry.RelevanceScore,
		keywordsJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to update context entry: %w", err)
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

// Delete removes a context entry
func (r *ContextEntryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM context_entries WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete context entry: %w", err)
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

func (r *ContextEntryRepository) query(ctx context.Context, query string, args ...any) ([]*models.ContextEntry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query context entries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	entries := []*models.ContextEntry{}
	for rows.Next() {
		entry, err := scanContextEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan context entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating context entries: %w", err)
	}
	return entries, nil
}

func marshalKeywords(keywords []string) ([]byte, error) {
	if keywords == nil {
		keywords = []string{}
	}
	data, err := json.Marshal(keywords)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal keywords: %w", err)
	}
	return data, nil
}

func scanContextEntry(row rowScanner) (*models.ContextEntry, error) {
	entry := &models.ContextEntry{}
	var keywordsJSON []byte

	err := row.Scan(
		&entry.ID,
		&entry.Content,
		&entry.SourceType,
		&entry.ProcessedInsights,
		&entry.Metadata,
		&entry.IsProcessed,
		&entry.RelevanceScore,
		&keywordsJSON,
		&entry.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	entry.ExtractedKeywords = []string{}
	if len(keywordsJSON) > 0 {
		if err := json.Unmarshal(keywordsJSON, &entry.ExtractedKeywords); err != nil {
			return nil, fmt.Errorf("failed to unmarshal keywords: %w", err)
		}
	}
	return entry, nil
}
