package validation

import (
	"errors"
	"strings"
	"testing"

	"github.com/smart-todo/smart-todo-list/internal/models"
)

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

func fieldsOf(t *testing.T, err error) map[string]string {
	t.Helper()
	var verr *Error
	if !errors.As(err, &verr) {
		t.Fatalf("Expected *validation.Error, got %T (%v)", err, err)
	}
	out := make(map[string]string, len(verr.Fields))
	for _, f := range verr.Fields {
		out[f.Field] = f.Message
	}
	return out
}

func TestStruct_TaskCreate(t *testing.T) {
	t.Parallel()

	status := models.TaskStatus("archived")

	tests := []struct {
		name      string
		input     models.TaskCreate
		wantField string
	}{
		{name: "valid", input: models.TaskCreate{Title: "Write report"}},
		{name: "missing title", input: models.TaskCreate{}, wantField: "title"},
		{name: "whitespace title", input: models.TaskCreate{Title: "   "}, wantField: "title"},
		{name: "control characters only title", input: models.TaskCreate{Title: " \x00\x07 "}, wantField: "title"},
		{name: "title too long", input: models.TaskCreate{Title: strings.Repeat("x", 201)}, wantField: "title"},
		{name: "priority too high", input: models.TaskCreate{Title: "t", PriorityScore: intPtr(11)}, wantField: "priority_score"},
		{name: "priority too low", input: models.TaskCreate{Title: "t", PriorityScore: intPtr(0)}, wantField: "priority_score"},
		{name: "unknown status", input: models.TaskCreate{Title: "t", Status: &status}, wantField: "status"},
		{name: "category too long", input: models.TaskCreate{Title: "t", Category: strings.Repeat("c", 101)}, wantField: "category"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			input := tt.input
			err := Struct(&input)
			if tt.wantField == "" {
				if err != nil {
					t.Errorf("Expected no error, got %v", err)
				}
				return
			}
			fields := fieldsOf(t, err)
			if _, ok := fields[tt.wantField]; !ok {
				t.Errorf("Expected error on field %q, got %v", tt.wantField, fields)
			}
		})
	}
}

func TestStruct_SanitizesText(t *testing.T) {
	t.Parallel()

	task := models.TaskCreate{Title: "a\x00\x07b", Category: " Work\x1b "}
	if err := Struct(&task); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if task.Title != "ab" {
		t.Errorf("Expected title %q, got %q", "ab", task.Title)
	}
	if task.Category != "Work" {
		t.Errorf("Expected category %q, got %q", "Work", task.Category)
	}

	category := models.CategoryCreate{Name: "Home\x00"}
	if err := Struct(&category); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if category.Name != "Home" {
		t.Errorf("Expected name %q, got %q", "Home", category.Name)
	}
}

func TestStruct_TaskUpdateEmptyTitleRejected(t *testing.T) {
	t.Parallel()

	u := models.TaskUpdate{Title: strPtr("  ")}
	fields := fieldsOf(t, Struct(&u))
	if _, ok := fields["title"]; !ok {
		t.Errorf("Expected title error, got %v", fields)
	}
}

func TestStruct_CategoryColor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		color string
		valid bool
	}{
		{"#3B82F6", true},
		{"#abcdef", true},
		{"3B82F6", false},
		{"#3B82F", false},
		{"#GGGGGG", false},
	}

	for _, tt := range tests {
		t.Run(tt.color, func(t *testing.T) {
			t.Parallel()
			c := models.CategoryCreate{Name: "Work", Color: strPtr(tt.color)}
			err := Struct(&c)
			if tt.valid && err != nil {
				t.Errorf("Expected %s to be valid, got %v", tt.color, err)
			}
			if !tt.valid {
				fields := fieldsOf(t, err)
				if fields["color"] != "must be a hex color like #3B82F6" {
					t.Errorf("Expected color message, got %v", fields)
				}
			}
		})
	}
}

func TestStruct_SuggestionContextDive(t *testing.T) {
	t.Parallel()

	req := models.AITaskSuggestionRequest{
		Title: "Plan trip",
		ContextData: []models.ContextSnippet{
			{Content: "ok", SourceType: models.SourceTypeEmail},
			{Content: "", SourceType: "fax"},
		},
	}
	fields := fieldsOf(t, Struct(&req))
	if _, ok := fields["context_data[1].content"]; !ok {
		t.Errorf("Expected nested content error, got %v", fields)
	}
	if _, ok := fields["context_data[1].source_type"]; !ok {
		t.Errorf("Expected nested source_type error, got %v", fields)
	}
}

func TestStruct_RelevanceBounds(t *testing.T) {
	t.Parallel()

	for _, v := range []float64{-0.1, 1.5} {
		score := v
		u := models.ContextEntryUpdate{RelevanceScore: &score}
		fields := fieldsOf(t, Struct(&u))
		if _, ok := fields["relevance_score"]; !ok {
			t.Errorf("Expected relevance_score error for %v, got %v", v, fields)
		}
	}

	zero := 0.0
	u := models.ContextEntryUpdate{RelevanceScore: &zero}
	if err := Struct(&u); err != nil {
		t.Errorf("Expected 0 to be valid, got %v", err)
	}
}
