package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/smart-todo/smart-todo-list/internal/models"
)

const (
	// MaxPromptSnippets is the number of context snippets included in a prompt
	MaxPromptSnippets = 5
	// MaxSnippetLength caps each snippet included in a prompt
	MaxSnippetLength = 200
	// MaxAnalysisContentLength caps the content sent for context analysis
	MaxAnalysisContentLength = 4000

	suggestionTemperature = 0.3
	suggestionMaxTokens   = 1500
	analysisTemperature   = 0.2
	analysisMaxTokens     = 600
)

const suggestionSystemPrompt = "You are an AI assistant specialized in task management and productivity. " +
	"You help users prioritize tasks, suggest deadlines, and enhance task descriptions based on context analysis. " +
	"Always respond with valid JSON only."

const analysisSystemPrompt = "You analyze short pieces of personal context such as emails, chat messages, notes and calendar entries " +
	"to help a task manager decide what matters. Always respond with valid JSON only."

const suggestionResponseFormat = `Respond with this exact JSON structure:

{
    "priority_score": <integer between 1-10>,
    "suggested_deadline": "<ISO datetime string or null>",
    "enhanced_description": "<enhanced description with context>",
    "suggested_category": "<category suggestion>",
    "ai_suggested_tags": ["<tag1>", "<tag2>", "<tag3>"],
    "reasoning": "<explanation of priority and deadline reasoning>",
    "estimated_duration": "<estimated time to complete>",
    "context_insights": ["<insight1>", "<insight2>", "<insight3>"]
}

PRIORITY SCORING GUIDELINES:
- 1-3: Low priority, can be done anytime
- 4-6: Medium priority, should be done within a week
- 7-8: High priority, should be done within 2-3 days
- 9-10: Critical/Urgent, needs immediate attention

For suggested_deadline, use ISO format like "2024-01-15T10:00:00" or null if no specific deadline is needed.

Respond with valid JSON only, no other text.`

const analysisResponseFormat = `Respond with this exact JSON structure:

{
    "sentiment": "<positive|negative|neutral>",
    "extracted_keywords": ["<keyword1>", "<keyword2>"],
    "relevance_score": <number between 0 and 1, how relevant this is to task management>,
    "insights": ["<insight1>", "<insight2>"]
}

Respond with valid JSON only, no other text.`

// BuildContextSummary formats at most MaxPromptSnippets snippets, each
// truncated to MaxSnippetLength runes, as a numbered list.
func BuildContextSummary(snippets []models.ContextSnippet) string {
	if len(snippets) == 0 {
		return "No additional context available."
	}

	var b strings.Builder
	b.WriteString("Recent context information:\n")
	for i, s := range snippets {
		if i >= MaxPromptSnippets {
			break
		}
		source := string(s.SourceType)
		if source == "" {
			source = "unknown"
		}
		fmt.Fprintf(&b, "%d. [%s] %s\n", i+1, source, clip(s.Content, MaxSnippetLength))
	}
	return b.String()
}

// BuildSuggestionPrompt renders the user prompt for a task suggestion.
func BuildSuggestionPrompt(req *models.AITaskSuggestionRequest) string {
	category := req.Category
	if category == "" {
		category = "Not specified"
	}

	preferences := "None specified"
	if len(req.UserPreferences) > 0 {
		if raw, err := json.MarshalIndent(req.UserPreferences, "", "  "); err == nil {
			preferences = string(raw)
		}
	}

	var b strings.Builder
	b.WriteString("Analyze this task and provide intelligent suggestions. You must respond with valid JSON only.\n\n")
	b.WriteString("TASK DETAILS:\n")
	fmt.Fprintf(&b, "- Title: %s\n", req.Title)
	fmt.Fprintf(&b, "- Description: %s\n", req.Description)
	fmt.Fprintf(&b, "- Category: %s\n", category)
	fmt.Fprintf(&b, "- Current workload: %d pending tasks\n\n", req.CurrentWorkload)
	b.WriteString("CONTEXT:\n")
	b.WriteString(BuildContextSummary(req.ContextData))
	b.WriteString("\nUSER PREFERENCES:\n")
	b.WriteString(preferences)
	b.WriteString("\n\n")
	b.WriteString(suggestionResponseFormat)
	return b.String()
}

// BuildAnalysisPrompt renders the user prompt for a context analysis.
func BuildAnalysisPrompt(content string, source models.SourceType) string {
	var b strings.Builder
	b.WriteString("Analyze the following context entry.\n\n")
	fmt.Fprintf(&b, "SOURCE: %s\n", source)
	b.WriteString("CONTENT:\n")
	b.WriteString(clip(content, MaxAnalysisContentLength))
	b.WriteString("\n\n")
	b.WriteString(analysisResponseFormat)
	return b.String()
}
