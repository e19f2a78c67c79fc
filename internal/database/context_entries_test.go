package database

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/smart-todo/smart-todo-list/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var contextEntryRowColumns = []string{
	"id", "content", "source_type", "processed_insights", "metadata", "is_processed",
	"relevance_score", "extracted_keywords", "created_at",
}

func newTestContextRepo(t *testing.T) (*ContextEntryRepository, sqlmock.Sqlmock) {
	db, mock := newMockDB(t)
	repo := NewContextEntryRepository(db)
	repo.now = func() time.Time { return fixedNow }
	return repo, mock
}

func TestContextEntryRepository_Create(t *testing.T) {
	t.Parallel()
	repo, mock := newTestContextRepo(t)

	entry := (&models.ContextEntryCreate{
		Content:    "Client meeting tomorrow at 3 PM",
		SourceType: models.SourceTypeEmail,
	}).ToEntry()

	mock.ExpectQuery(`INSERT INTO context_entries`).
		WithArgs(
			sqlmock.AnyArg(), "Client meeting tomorrow at 3 PM", "email",
			[]byte(`{}`), []byte(`{}`), false, 0.0, []byte(`[]`), fixedNow,
		).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(fixedNow))

	err := repo.Create(context.Background(), entry)

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, entry.ID)
	assert.Equal(t, fixedNow, entry.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContextEntryRepository_GetByID(t *testing.T) {
	t.Parallel()
	repo, mock := newTestContextRepo(t)

	id := uuid.New()
	mock.ExpectQuery(`FROM context_entries WHERE id = \$1`).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(contextEntryRowColumns).AddRow(
			id.String(), "Deadline moved to Friday", "notes",
			[]byte(`{"sentiment":"negative"}`), []byte(`{"from":"boss"}`), true,
			0.7, []byte(`["deadline","friday"]`), fixedNow,
		))

	entry, err := repo.GetByID(context.Background(), id)

	require.NoError(t, err)
	assert.Equal(t, models.SourceTypeNotes, entry.SourceType)
	assert.Equal(t, "negative", entry.ProcessedInsights["sentiment"])
	assert.Equal(t, "boss", entry.Metadata["from"])
	assert.True(t, entry.IsProcessed)
	assert.InDelta(t, 0.7, entry.RelevanceScore, 1e-9)
	assert.Equal(t, []string{"deadline", "friday"}, entry.ExtractedKeywords)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContextEntryRepository_List_Filters(t *testing.T) {
	t.Parallel()
	repo, mock := newTestContextRepo(t)

	source := models.SourceTypeEmail
	processed := false
	minRelevance := 0.5

	mock.ExpectQuery(`AND source_type = \$1 AND is_processed = \$2 AND relevance_score >= \$3 ORDER BY created_at DESC, id DESC LIMIT \$4`).
		WithArgs("email", false, 0.5, 20).
		WillReturnRows(sqlmock.NewRows(contextEntryRowColumns))

	entries, err := repo.List(context.Background(), models.ContextFilter{
		SourceType:   &source,
		IsProcessed:  &processed,
		MinRelevance: &minRelevance,
		Limit:        20,
	})

	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContextEntryRepository_ListByIDs(t *testing.T) {
	t.Parallel()
	repo, mock := newTestContextRepo(t)

	id := uuid.New()
	mock.ExpectQuery(`WHERE id = ANY\(\$1::uuid\[\]\)`).
		WithArgs(pq.Array([]string{id.String()})).
		WillReturnRows(sqlmock.NewRows(contextEntryRowColumns).AddRow(
			id.String(), "Call mom", "whatsapp", []byte(`{}`), []byte(`{}`), false, 0.0, []byte(`[]`), fixedNow,
		))

	entries, err := repo.ListByIDs(context.Background(), []uuid.UUID{id})

	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, id, entries[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContextEntryRepository_ListByIDs_Empty(t *testing.T) {
	t.Parallel()
	repo, mock := newTestContextRepo(t)

	entries, err := repo.ListByIDs(context.Background(), nil)

	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContextEntryRepository_Update_NotFound(t *testing.T) {
	t.Parallel()
	repo, mock := newTestContextRepo(t)

	mock.ExpectExec(`UPDATE context_entries`).WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), &models.ContextEntry{ID: uuid.New(), SourceType: models.SourceTypeNotes})

	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
