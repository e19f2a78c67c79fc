package models

import "time"

// ContextSnippet is inline context supplied with a suggestion request.
type ContextSnippet struct {
	Content    string     `json:"content" validate:"required"`
	SourceType SourceType `json:"source_type" validate:"omitempty,source_type"`
}

// AITaskSuggestionRequest asks the suggestion adapter to enrich a task draft
type AITaskSuggestionRequest struct {
	Title            string           `json:"title" validate:"required,max=200"`
	Description      string           `json:"description"`
	Category         string           `json:"category" validate:"max=100"`
	ContextData      []ContextSnippet `json:"context_data" validate:"omitempty,max=50,dive"`
	UserPreferences  JSONMap          `json:"user_preferences"`
	CurrentWorkload  int              `json:"current_workload" validate:"min=0"`
	UseRecentContext bool             `json:"use_recent_context"`
}

// Normalize sanitizes the title and category.
func (r *AITaskSuggestionRequest) Normalize() {
	r.Title = SanitizeText(r.Title)
	r.Category = SanitizeText(r.Category)
}

// SnippetsFromEntries converts stored entries into inline context snippets.
func SnippetsFromEntries(entries []*ContextEntry) []ContextSnippet {
	out := make([]ContextSnippet, 0, len(entries))
	for _, e := range entries {
		out = append(out, ContextSnippet{Content: e.Content, SourceType: e.SourceType})
	}
	return out
}

// Suggestion sources.
const (
	SuggestionSourceModel    = "model"
	SuggestionSourceFallback = "fallback"
)

// AITaskSuggestion is the normalized suggestion returned to clients.
// Fallback is true when the deterministic default was used instead of a model reply.
type AITaskSuggestion struct {
	PriorityScore       int        `json:"priority_score"`
	SuggestedDeadline   *time.Time `json:"suggested_deadline"`
	EnhancedDescription string     `json:"enhanced_description"`
	SuggestedCategory   string     `json:"suggested_category"`
	AISuggestedTags     []string   `json:"ai_suggested_tags"`
	Reasoning           string     `json:"reasoning"`
	EstimatedDuration   string     `json:"estimated_duration"`
	ContextInsights     []string   `json:"context_insights"`
	Fallback            bool       `json:"fallback"`
	Source              string     `json:"source"`
}
