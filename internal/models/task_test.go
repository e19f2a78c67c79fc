package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestTaskStatus_Valid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value TaskStatus
		valid bool
	}{
		{"pending", TaskStatusPending, true},
		{"in_progress", TaskStatusInProgress, true},
		{"completed", TaskStatusCompleted, true},
		{"cancelled", TaskStatusCancelled, true},
		{"processing", TaskStatus("processing"), false},
		{"empty", TaskStatus(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.value.Valid(); got != tt.valid {
				t.Errorf("Expected Valid() = %v for %q, got %v", tt.valid, tt.value, got)
			}
		})
	}
}

func TestTask_IsOverdue(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	tests := []struct {
		name     string
		deadline *time.Time
		status   TaskStatus
		expected bool
	}{
		{"no deadline", nil, TaskStatusPending, false},
		{"past pending", &past, TaskStatusPending, true},
		{"past in progress", &past, TaskStatusInProgress, true},
		{"past completed", &past, TaskStatusCompleted, false},
		{"past cancelled", &past, TaskStatusCancelled, false},
		{"future pending", &future, TaskStatusPending, false},
		{"exactly now", &now, TaskStatusPending, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			task := &Task{Deadline: tt.deadline, Status: tt.status}
			if got := task.IsOverdue(now); got != tt.expected {
				t.Errorf("Expected IsOverdue() = %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestPriorityLabel(t *testing.T) {
	t.Parallel()

	expected := map[int]string{
		1: "Low", 3: "Low",
		4: "Medium", 6: "Medium",
		7: "High", 8: "High",
		9: "Critical", 10: "Critical",
	}
	for score, label := range expected {
		if got := PriorityLabel(score); got != label {
			t.Errorf("Expected PriorityLabel(%d) = %s, got %s", score, label, got)
		}
	}
}

func TestTaskCreate_ToTaskDefaults(t *testing.T) {
	t.Parallel()

	c := TaskCreate{Title: "  Prepare presentation  "}
	c.Normalize()
	task := c.ToTask()

	if task.Title != "Prepare presentation" {
		t.Errorf("Expected trimmed title, got %q", task.Title)
	}
	if task.PriorityScore != DefaultPriority {
		t.Errorf("Expected priority %d, got %d", DefaultPriority, task.PriorityScore)
	}
	if task.Status != TaskStatusPending {
		t.Errorf("Expected status pending, got %s", task.Status)
	}
	if task.Deadline != nil {
		t.Errorf("Expected nil deadline, got %v", task.Deadline)
	}
	if task.AISuggestedTags == nil || task.ContextReferences == nil {
		t.Error("Expected empty, non-nil collections")
	}
}

func TestTaskUpdate_ApplyOnlySuppliedFields(t *testing.T) {
	t.Parallel()

	deadline := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	original := Task{
		Title:         "Original",
		Description:   "Desc",
		Category:      "Work",
		PriorityScore: 3,
		Deadline:      &deadline,
		Status:        TaskStatusPending,
	}

	var u TaskUpdate
	if err := json.Unmarshal([]byte(`{"priority_score": 9}`), &u); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	task := original
	changed := u.Apply(&task)

	if changed {
		t.Error("Expected category unchanged")
	}
	if task.PriorityScore != 9 {
		t.Errorf("Expected priority 9, got %d", task.PriorityScore)
	}
	if task.Title != original.Title || task.Description != original.Description || task.Category != original.Category {
		t.Error("Expected untouched text fields to be preserved")
	}
	if task.Deadline == nil || !task.Deadline.Equal(deadline) {
		t.Errorf("Expected deadline preserved, got %v", task.Deadline)
	}
}

func TestTaskUpdate_DeadlineNullClears(t *testing.T) {
	t.Parallel()

	deadline := time.Now()
	task := Task{Deadline: &deadline}

	var u TaskUpdate
	if err := json.Unmarshal([]byte(`{"deadline": null}`), &u); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !u.Deadline.Set || u.Deadline.Valid {
		t.Fatalf("Expected explicit null, got %+v", u.Deadline)
	}
	u.Apply(&task)
	if task.Deadline != nil {
		t.Errorf("Expected deadline cleared, got %v", task.Deadline)
	}
}

func TestTaskUpdate_CategoryChange(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		from     string
		to       string
		expected bool
	}{
		{"new category", "Work", "Personal", true},
		{"same category", "Work", "Work", false},
		{"cleared", "Work", "", false},
		{"from empty", "", "Work", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			task := Task{Category: tt.from}
			to := tt.to
			u := TaskUpdate{Category: &to}
			if got := u.Apply(&task); got != tt.expected {
				t.Errorf("Expected categoryChanged = %v, got %v", tt.expected, got)
			}
			if task.Category != tt.to {
				t.Errorf("Expected category %q, got %q", tt.to, task.Category)
			}
		})
	}
}

func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected time.Time
		wantErr  bool
	}{
		{"2025-03-04T10:30:00Z", time.Date(2025, 3, 4, 10, 30, 0, 0, time.UTC), false},
		{"2025-03-04T10:30:00+02:00", time.Date(2025, 3, 4, 8, 30, 0, 0, time.UTC), false},
		{"2025-03-04T10:30:00", time.Date(2025, 3, 4, 10, 30, 0, 0, time.UTC), false},
		{"2025-03-04", time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC), false},
		{"next tuesday", time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			got, err := ParseTimestamp(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("Expected error for %q", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if !got.Equal(tt.expected) {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestTaskResponse_JSON(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-24 * time.Hour)
	task := &Task{Title: "Late", PriorityScore: 8, Status: TaskStatusPending, Deadline: &past}

	data, err := json.Marshal(NewTaskResponse(task, now))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if decoded["is_overdue"] != true {
		t.Errorf("Expected is_overdue true, got %v", decoded["is_overdue"])
	}
	if decoded["priority_label"] != "High" {
		t.Errorf("Expected priority_label High, got %v", decoded["priority_label"])
	}
	if _, ok := decoded["ai_suggested_tags"].([]any); !ok {
		t.Errorf("Expected ai_suggested_tags to be a list, got %T", decoded["ai_suggested_tags"])
	}
}
