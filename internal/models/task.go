package models

import (
	"time"

	"github.com/google/uuid"
)

// TaskStatus represents the lifecycle state of a task
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusCancelled  TaskStatus = "cancelled"
)

// Valid reports whether s is one of the known statuses.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted, TaskStatusCancelled:
		return true
	}
	return false
}

// Open reports whether a task in this status still counts toward overdue work.
func (s TaskStatus) Open() bool {
	return s == TaskStatusPending || s == TaskStatusInProgress
}

const (
	MinPriority       = 1
	MaxPriority       = 10
	DefaultPriority   = 5
	HighPriority      = 7
	MaxTitleLength    = 200
	MaxCategoryLength = 100
)

// Task represents a todo item
type Task struct {
	ID                    uuid.UUID   `json:"id"`
	Title                 string      `json:"title"`
	Description           string      `json:"description"`
	Category              string      `json:"category"`
	PriorityScore         int         `json:"priority_score"`
	Deadline              *time.Time  `json:"deadline"`
	Status                TaskStatus  `json:"status"`
	AIEnhancedDescription string      `json:"ai_enhanced_description"`
	AISuggestedTags       []string    `json:"ai_suggested_tags"`
	ContextReferences     []uuid.UUID `json:"context_references"`
	CreatedAt             time.Time   `json:"created_at"`
	UpdatedAt             time.Time   `json:"updated_at"`
}

// IsOverdue reports whether the deadline has passed while the task is still open.
func (t *Task) IsOverdue(now time.Time) bool {
	if t.Deadline == nil {
		return false
	}
	return t.Status.Open() && t.Deadline.Before(now)
}

// PriorityLabel buckets a 1-10 score into a human readable label.
func PriorityLabel(score int) string {
	switch {
	case score <= 3:
		return "Low"
	case score <= 6:
		return "Medium"
	case score <= 8:
		return "High"
	default:
		return "Critical"
	}
}

// TaskResponse is a Task plus the fields derived at read time.
type TaskResponse struct {
	Task
	IsOverdue     bool   `json:"is_overdue"`
	PriorityLabel string `json:"priority_label"`
}

// NewTaskResponse computes derived fields against now.
func NewTaskResponse(t *Task, now time.Time) TaskResponse {
	resp := TaskResponse{
		Task:          *t,
		IsOverdue:     t.IsOverdue(now),
		PriorityLabel: PriorityLabel(t.PriorityScore),
	}
	if resp.AISuggestedTags == nil {
		resp.AISuggestedTags = []string{}
	}
	if resp.ContextReferences == nil {
		resp.ContextReferences = []uuid.UUID{}
	}
	return resp
}

// TaskCreate is the request body for creating a task
type TaskCreate struct {
	Title                 string       `json:"title" validate:"required,max=200"`
	Description           string       `json:"description"`
	Category              string       `json:"category" validate:"max=100"`
	PriorityScore         *int         `json:"priority_score" validate:"omitempty,min=1,max=10"`
	Deadline              NullableTime `json:"deadline"`
	Status                *TaskStatus  `json:"status" validate:"omitempty,task_status"`
	AIEnhancedDescription string       `json:"ai_enhanced_description"`
	AISuggestedTags       []string     `json:"ai_suggested_tags" validate:"omitempty,max=20,dive,max=50"`
	ContextReferences     []uuid.UUID  `json:"context_references"`
}

// Normalize sanitizes free-text identifiers before validation.
func (c *TaskCreate) Normalize() {
	c.Title = SanitizeText(c.Title)
	c.Category = SanitizeText(c.Category)
}

// ToTask builds a new Task applying defaults for omitted fields.
func (c *TaskCreate) ToTask() *Task {
	task := &Task{
		Title:                 c.Title,
		Description:           c.Description,
		Category:              c.Category,
		PriorityScore:         DefaultPriority,
		Deadline:              c.Deadline.Ptr(),
		Status:                TaskStatusPending,
		AIEnhancedDescription: c.AIEnhancedDescription,
		AISuggestedTags:       c.AISuggestedTags,
		ContextReferences:     c.ContextReferences,
	}
	if c.PriorityScore != nil {
		task.PriorityScore = *c.PriorityScore
	}
	if c.Status != nil {
		task.Status = *c.Status
	}
	if task.AISuggestedTags == nil {
		task.AISuggestedTags = []string{}
	}
	if task.ContextReferences == nil {
		task.ContextReferences = []uuid.UUID{}
	}
	return task
}

// TaskUpdate is a merge patch: nil fields are left unchanged.
type TaskUpdate struct {
	Title                 *string      `json:"title" validate:"omitempty,min=1,max=200"`
	Description           *string      `json:"description"`
	Category              *string      `json:"category" validate:"omitempty,max=100"`
	PriorityScore         *int         `json:"priority_score" validate:"omitempty,min=1,max=10"`
	Deadline              NullableTime `json:"deadline"`
	Status                *TaskStatus  `json:"status" validate:"omitempty,task_status"`
	AIEnhancedDescription *string      `json:"ai_enhanced_description"`
	AISuggestedTags       []string     `json:"ai_suggested_tags" validate:"omitempty,max=20,dive,max=50"`
	ContextReferences     []uuid.UUID  `json:"context_references"`
}

// Normalize trims whitespace from free-text identifiers before validation.
func (u *TaskUpdate) Normalize() {
	u.Title = sanitizeOptional(u.Title)
	u.Category = sanitizeOptional(u.Category)
}

// Apply merges the supplied fields into t. It reports whether the category
// changed to a different non-empty value.
func (u *TaskUpdate) Apply(t *Task) (categoryChanged bool) {
	if u.Title != nil {
		t.Title = *u.Title
	}
	if u.Description != nil {
		t.Description = *u.Description
	}
	if u.Category != nil {
		categoryChanged = *u.Category != "" && *u.Category != t.Category
		t.Category = *u.Category
	}
	if u.PriorityScore != nil {
		t.PriorityScore = *u.PriorityScore
	}
	if u.Deadline.Set {
		t.Deadline = u.Deadline.Ptr()
	}
	if u.Status != nil {
		t.Status = *u.Status
	}
	if u.AIEnhancedDescription != nil {
		t.AIEnhancedDescription = *u.AIEnhancedDescription
	}
	if u.AISuggestedTags != nil {
		t.AISuggestedTags = u.AISuggestedTags
	}
	if u.ContextReferences != nil {
		t.ContextReferences = u.ContextReferences
	}
	return categoryChanged
}

// Task sort columns accepted by list queries.
const (
	SortByCreatedAt = "created_at"
	SortByUpdatedAt = "updated_at"
	SortByPriority  = "priority_score"
	SortByDeadline  = "deadline"
	SortByTitle     = "title"
)

// TaskFilter narrows a task listing. Zero values mean no constraint.
type TaskFilter struct {
	Status     *TaskStatus
	Category   string
	Priority   *int
	Overdue    *bool
	SortBy     string
	Descending bool
	Skip       int
	Limit      int
	Now        time.Time
}
