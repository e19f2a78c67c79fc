package ai

import (
	"strings"

	"github.com/smart-todo/smart-todo-list/internal/models"
)

// DefaultFallbackCategory is suggested when neither the model nor the
// request supplies a category.
const DefaultFallbackCategory = "General"

var (
	urgentKeywords   = []string{"urgent", "asap", "emergency", "critical", "deadline", "immediately"}
	workKeywords     = []string{"work", "office", "client", "boss", "manager", "project"}
	personalKeywords = []string{"personal", "family", "health", "doctor", "appointment"}
)

// FallbackSuggestion builds the deterministic suggestion returned when the
// model is unavailable or its reply cannot be used. Priority and deadline
// stay neutral. Tags, duration and insights come from keyword matching on
// the title and description.
func FallbackSuggestion(req *models.AITaskSuggestionRequest, reason string) *models.AITaskSuggestion {
	category := req.Category
	if category == "" {
		category = DefaultFallbackCategory
	}

	reasoning := "Fallback suggestion using keyword analysis (AI service unavailable)"
	if reason != "" {
		reasoning = clip(reasoning+": "+reason, MaxReasoningLength)
	}

	text := strings.ToLower(req.Title + " " + req.Description)

	return &models.AITaskSuggestion{
		PriorityScore:       models.DefaultPriority,
		SuggestedDeadline:   nil,
		EnhancedDescription: clip(req.Description, MaxEnhancedDescriptionLength),
		SuggestedCategory:   clip(category, MaxSuggestedCategoryLength),
		AISuggestedTags:     fallbackTags(text),
		Reasoning:           reasoning,
		EstimatedDuration:   estimateDuration(text),
		ContextInsights:     fallbackInsights(text),
		Fallback:            true,
		Source:              models.SuggestionSourceFallback,
	}
}

func fallbackTags(text string) []string {
	tags := []string{"general"}
	if containsAny(text, workKeywords) {
		tags = append(tags, "work")
	}
	if containsAny(text, personalKeywords) {
		tags = append(tags, "personal")
	}
	if containsAny(text, urgentKeywords) {
		tags = append(tags, "urgent")
	}
	return tags
}

func estimateDuration(text string) string {
	switch {
	case containsAny(text, []string{"quick", "brief", "short", "simple"}):
		return "15-30 minutes"
	case containsAny(text, []string{"meeting", "call", "review"}):
		return "30-60 minutes"
	case containsAny(text, []string{"project", "research", "analysis", "write", "create"}):
		return "2-4 hours"
	case containsAny(text, []string{"complex", "detailed", "comprehensive"}):
		return "4-8 hours"
	default:
		return "1-2 hours"
	}
}

func fallbackInsights(text string) []string {
	insights := []string{}
	if len(strings.Fields(text)) > 20 {
		insights = append(insights, "Consider breaking this into smaller subtasks")
	}
	if containsAny(text, []string{"meeting", "call", "discussion"}) {
		insights = append(insights, "Prepare agenda or talking points in advance")
	}
	if containsAny(text, []string{"deadline", "urgent", "asap"}) {
		insights = append(insights, "Time-sensitive task, prioritize accordingly")
	}
	if len(insights) == 0 {
		insights = append(insights, "Set clear success criteria for this task")
	}
	return insights
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}
