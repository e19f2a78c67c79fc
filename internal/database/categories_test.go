package database

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/smart-todo/smart-todo-list/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var categoryRowColumns = []string{
	"id", "name", "description", "usage_frequency", "color", "is_active", "created_at", "updated_at",
}

func newTestCategoryRepo(t *testing.T) (*CategoryRepository, sqlmock.Sqlmock) {
	db, mock := newMockDB(t)
	repo := NewCategoryRepository(db)
	repo.now = func() time.Time { return fixedNow }
	return repo, mock
}

func TestCategoryRepository_Create(t *testing.T) {
	t.Parallel()
	repo, mock := newTestCategoryRepo(t)

	category := (&models.CategoryCreate{Name: "Work"}).ToCategory()

	mock.ExpectQuery(`INSERT INTO categories`).
		WithArgs(sqlmock.AnyArg(), "Work", "", 0, "#3B82F6", true, fixedNow, fixedNow).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(fixedNow, fixedNow))

	err := repo.Create(context.Background(), category)

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, category.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryRepository_Create_Duplicate(t *testing.T) {
	t.Parallel()
	repo, mock := newTestCategoryRepo(t)

	mock.ExpectQuery(`INSERT INTO categories`).
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"})

	err := repo.Create(context.Background(), &models.Category{Name: "Work"})

	assert.ErrorIs(t, err, ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryRepository_List_Filters(t *testing.T) {
	t.Parallel()
	repo, mock := newTestCategoryRepo(t)

	active := true
	minUsage := 2

	mock.ExpectQuery(`AND is_active = \$1 AND usage_frequency >= \$2 AND name ILIKE \$3 ORDER BY usage_frequency DESC, name ASC LIMIT \$4`).
		WithArgs(true, 2, `%50\%%`, 100).
		WillReturnRows(sqlmock.NewRows(categoryRowColumns).
			AddRow(uuid.New().String(), "50% effort", "", 5, "#000000", true, fixedNow, fixedNow))

	categories, err := repo.List(context.Background(), models.CategoryFilter{
		IsActive: &active,
		MinUsage: &minUsage,
		Search:   "50%",
		Limit:    100,
	})

	require.NoError(t, err)
	require.Len(t, categories, 1)
	assert.Equal(t, 5, categories[0].UsageFrequency)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryRepository_Popular(t *testing.T) {
	t.Parallel()
	repo, mock := newTestCategoryRepo(t)

	mock.ExpectQuery(`WHERE usage_frequency > 0 AND is_active = TRUE ORDER BY usage_frequency DESC, name ASC LIMIT \$1`).
		WithArgs(10).
		WillReturnRows(sqlmock.NewRows(categoryRowColumns))

	categories, err := repo.Popular(context.Background(), 10)

	require.NoError(t, err)
	assert.Empty(t, categories)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryRepository_IncrementUsage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		affected int64
		matched  bool
	}{
		{"existing category", 1, true},
		{"unknown category is a no-op", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			repo, mock := newTestCategoryRepo(t)

			mock.ExpectExec(`SET usage_frequency = usage_frequency \+ 1`).
				WithArgs("Work", fixedNow).
				WillReturnResult(sqlmock.NewResult(0, tt.affected))

			matched, err := repo.IncrementUsage(context.Background(), "Work")

			require.NoError(t, err)
			assert.Equal(t, tt.matched, matched)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestCategoryRepository_ResetUsage(t *testing.T) {
	t.Parallel()
	repo, mock := newTestCategoryRepo(t)

	id := uuid.New()
	mock.ExpectQuery(`SET usage_frequency = 0`).
		WithArgs(id, fixedNow).
		WillReturnRows(sqlmock.NewRows(categoryRowColumns).
			AddRow(id.String(), "Work", "", 0, "#3B82F6", true, fixedNow, fixedNow))

	category, err := repo.ResetUsage(context.Background(), id)

	require.NoError(t, err)
	assert.Equal(t, 0, category.UsageFrequency)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryRepository_ResetUsage_NotFound(t *testing.T) {
	t.Parallel()
	repo, mock := newTestCategoryRepo(t)

	mock.ExpectQuery(`SET usage_frequency = 0`).WillReturnError(sql.ErrNoRows)

	_, err := repo.ResetUsage(context.Background(), uuid.New())

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCategoryRepository_Update_Duplicate(t *testing.T) {
	t.Parallel()
	repo, mock := newTestCategoryRepo(t)

	mock.ExpectQuery(`UPDATE categories`).WillReturnError(&pq.Error{Code: "23505"})

	err := repo.Update(context.Background(), &models.Category{ID: uuid.New(), Name: "Home"})

	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestEscapeLike(t *testing.T) {
	t.Parallel()

	assert.Equal(t, `a\%b\_c\\d`, escapeLike(`a%b_c\d`))
}
