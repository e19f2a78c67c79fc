package handlers

import (
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/smart-todo/smart-todo-list/internal/middleware"
	"github.com/smart-todo/smart-todo-list/internal/models"
)

func categoryNames(cs []models.Category) string {
	names := make([]string, 0, len(cs))
	for _, c := range cs {
		names = append(names, c.Name)
	}
	return strings.Join(names, ",")
}

func TestCreateCategory(t *testing.T) {
	t.Parallel()
	env := newTestEnv()

	w := do(t, env, "POST", "/api/v1/categories", `{"name": " Work ", "description": "Office tasks"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", w.Code, w.Body.String())
	}
	got := decode[models.Category](t, w)
	if got.Name != "Work" {
		t.Errorf("Expected trimmed name, got %q", got.Name)
	}
	if got.Color != models.DefaultCategoryColor {
		t.Errorf("Expected default color, got %q", got.Color)
	}
	if !got.IsActive || got.UsageFrequency != 0 {
		t.Errorf("Expected active category with zero usage, got %+v", got)
	}

	w = do(t, env, "POST", "/api/v1/categories", `{"name": "Work"}`)
	if w.Code != http.StatusConflict {
		t.Fatalf("Expected status 409 for duplicate name, got %d", w.Code)
	}
	body := decode[middleware.ErrorResponse](t, w)
	if body.Message != "Category with this name already exists" {
		t.Errorf("Expected duplicate message, got %q", body.Message)
	}
}

func TestCreateCategory_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		body      string
		wantField string
	}{
		{"missing name", `{"color": "#FFFFFF"}`, "name"},
		{"name too long", `{"name": "` + strings.Repeat("n", 101) + `"}`, "name"},
		{"color without hash", `{"name": "Home", "color": "FFFFFF"}`, "color"},
		{"short color", `{"name": "Home", "color": "#FFF"}`, "color"},
		{"color not hex", `{"name": "Home", "color": "#GGGGGG"}`, "color"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			env := newTestEnv()

			w := do(t, env, "POST", "/api/v1/categories", tt.body)
			if w.Code != http.StatusUnprocessableEntity {
				t.Fatalf("Expected status 422, got %d", w.Code)
			}
			if fields := errorFields(t, w); len(fields) == 0 || fields[0] != tt.wantField {
				t.Errorf("Expected error on %q, got %v", tt.wantField, fields)
			}
		})
	}
}

func TestUpdateCategory(t *testing.T) {
	t.Parallel()
	env := newTestEnv()
	work := seedCategory(t, env, "Work", 4, true)
	seedCategory(t, env, "Home", 0, true)
	path := "/api/v1/categories/" + work.ID.String()

	w := do(t, env, "PATCH", path, `{"color": "#10b981", "is_active": false}`)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	got := decode[models.Category](t, w)
	if got.Color != "#10b981" || got.IsActive {
		t.Errorf("Expected color and is_active to change, got %+v", got)
	}
	if got.UsageFrequency != 4 {
		t.Errorf("Expected usage to be preserved, got %d", got.UsageFrequency)
	}

	if w := do(t, env, "PUT", path, `{"name": "Home"}`); w.Code != http.StatusConflict {
		t.Errorf("Expected 409 renaming onto an existing name, got %d", w.Code)
	}
	if w := do(t, env, "PATCH", "/api/v1/categories/"+uuid.NewString(), `{"name": "X"}`); w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown category, got %d", w.Code)
	}
}

func TestDeleteCategory(t *testing.T) {
	t.Parallel()
	env := newTestEnv()
	c := seedCategory(t, env, "Errands", 1, true)
	path := "/api/v1/categories/" + c.ID.String()

	w := do(t, env, "DELETE", path, "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if msg := decode[map[string]string](t, w)["message"]; msg != "Category deleted successfully" {
		t.Errorf("Expected delete message, got %q", msg)
	}
	if w := do(t, env, "DELETE", path, ""); w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 on second delete, got %d", w.Code)
	}
}

func TestListCategories(t *testing.T) {
	t.Parallel()
	env := newTestEnv()
	seedCategory(t, env, "Work", 5, true)
	seedCategory(t, env, "Home", 2, true)
	seedCategory(t, env, "Homework", 2, false)
	seedCategory(t, env, "Archive", 0, false)

	tests := []struct {
		name       string
		query      string
		wantStatus int
		want       string
	}{
		{"usage order with name tie-break", "", http.StatusOK, "Work,Home,Homework,Archive"},
		{"active only", "?is_active=true", http.StatusOK, "Work,Home"},
		{"min usage", "?min_usage=2", http.StatusOK, "Work,Home,Homework"},
		{"search is case-insensitive", "?search=HOME", http.StatusOK, "Home,Homework"},
		{"paged", "?skip=1&limit=2", http.StatusOK, "Home,Homework"},
		{"negative min usage", "?min_usage=-1", http.StatusBadRequest, ""},
		{"bad boolean", "?is_active=yes-please", http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w := do(t, env, "GET", "/api/v1/categories"+tt.query, "")
			if w.Code != tt.wantStatus {
				t.Fatalf("Expected status %d, got %d: %s", tt.wantStatus, w.Code, w.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			if got := categoryNames(decode[[]models.Category](t, w)); got != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestPopularCategories(t *testing.T) {
	t.Parallel()
	env := newTestEnv()
	seedCategory(t, env, "Work", 9, true)
	seedCategory(t, env, "Home", 3, true)
	seedCategory(t, env, "Hidden", 20, false)
	seedCategory(t, env, "Unused", 0, true)

	tests := []struct {
		name       string
		query      string
		wantStatus int
		want       string
	}{
		{"default limit", "", http.StatusOK, "Work,Home"},
		{"limit one", "?limit=1", http.StatusOK, "Work"},
		{"limit zero", "?limit=0", http.StatusBadRequest, ""},
		{"limit above max", "?limit=51", http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w := do(t, env, "GET", "/api/v1/categories/popular"+tt.query, "")
			if w.Code != tt.wantStatus {
				t.Fatalf("Expected status %d, got %d", tt.wantStatus, w.Code)
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			if got := categoryNames(decode[[]models.Category](t, w)); got != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestResetUsage(t *testing.T) {
	t.Parallel()
	env := newTestEnv()
	c := seedCategory(t, env, "Work", 7, true)

	w := do(t, env, "POST", "/api/v1/categories/"+c.ID.String()+"/reset-usage", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if got := decode[models.Category](t, w); got.UsageFrequency != 0 {
		t.Errorf("Expected usage 0, got %d", got.UsageFrequency)
	}
	if got := env.categories.usage("Work"); got != 0 {
		t.Errorf("Expected stored usage 0, got %d", got)
	}
	if w := do(t, env, "POST", "/api/v1/categories/"+uuid.NewString()+"/reset-usage", ""); w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown category, got %d", w.Code)
	}
}

func TestCategoryStatistics(t *testing.T) {
	t.Parallel()

	t.Run("empty", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv()

		w := do(t, env, "GET", "/api/v1/categories/statistics", "")
		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", w.Code)
		}
		got := decode[models.CategoryStatistics](t, w)
		if got.MostUsedCategory != models.NoCategoryUsage || got.LeastUsedCategory != models.NoCategoryUsage {
			t.Errorf("Expected N/A for most and least used, got %+v", got)
		}
		if got.TotalCategories != 0 || got.AverageUsage != 0 {
			t.Errorf("Expected zero totals, got %+v", got)
		}
	})

	t.Run("populated", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv()
		seedCategory(t, env, "Work", 6, true)
		seedCategory(t, env, "Home", 2, true)
		seedCategory(t, env, "Old", 0, false)

		got := decode[models.CategoryStatistics](t, do(t, env, "GET", "/api/v1/categories/statistics", ""))
		if got.TotalCategories != 3 || got.ActiveCategories != 2 {
			t.Errorf("Unexpected counts: %+v", got)
		}
		if got.MostUsedCategory != "Work" || got.LeastUsedCategory != "Home" {
			t.Errorf("Expected Work/Home, got %s/%s", got.MostUsedCategory, got.LeastUsedCategory)
		}
		if got.AverageUsage != 2.67 {
			t.Errorf("Expected average usage 2.67, got %v", got.AverageUsage)
		}
	})
}
