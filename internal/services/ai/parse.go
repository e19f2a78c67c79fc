package ai

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/smart-todo/smart-todo-list/internal/models"
)

// Limits applied to model output before it reaches clients.
const (
	MaxEnhancedDescriptionLength = 1000
	MaxSuggestedCategoryLength   = 100
	MaxReasoningLength           = 500
	MaxDurationLength            = 100
	MaxSuggestedTags             = 5
	MaxTagLength                 = 50
	MaxInsights                  = 5
	MaxInsightLength             = 200
	MaxKeywords                  = 10
)

// rawSuggestion mirrors the JSON a model is asked to produce. Scalar fields
// are decoded loosely since models do not always honor the requested types.
type rawSuggestion struct {
	PriorityScore       json.RawMessage `json:"priority_score"`
	SuggestedDeadline   json.RawMessage `json:"suggested_deadline"`
	EnhancedDescription json.RawMessage `json:"enhanced_description"`
	SuggestedCategory   json.RawMessage `json:"suggested_category"`
	AISuggestedTags     json.RawMessage `json:"ai_suggested_tags"`
	Reasoning           json.RawMessage `json:"reasoning"`
	EstimatedDuration   json.RawMessage `json:"estimated_duration"`
	ContextInsights     json.RawMessage `json:"context_insights"`
}

type rawAnalysis struct {
	Sentiment         json.RawMessage `json:"sentiment"`
	ExtractedKeywords json.RawMessage `json:"extracted_keywords"`
	RelevanceScore    json.RawMessage `json:"relevance_score"`
	Insights          json.RawMessage `json:"insights"`
}

// ExtractJSONObject strips markdown code fences and returns the outermost
// {...} span of the reply.
func ExtractJSONObject(content string) (string, error) {
	cleaned := strings.TrimSpace(content)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```JSON")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start == -1 || end == -1 || end < start {
		return "", ErrNoJSONObject
	}
	return cleaned[start : end+1], nil
}

// ParseSuggestion turns a model reply into a normalized suggestion. The
// request supplies the defaults for empty description and category.
func ParseSuggestion(content string, req *models.AITaskSuggestionRequest, now time.Time) (*models.AITaskSuggestion, error) {
	jsonStr, err := ExtractJSONObject(content)
	if err != nil {
		return nil, err
	}

	var raw rawSuggestion
	if err := json.Unmarshal([]byte(jsonStr), &raw); err != nil {
		return nil, fmt.Errorf("failed to decode model response: %w", err)
	}

	suggestion := &models.AITaskSuggestion{
		PriorityScore:       normalizePriority(raw.PriorityScore),
		SuggestedDeadline:   normalizeDeadline(raw.SuggestedDeadline, now),
		EnhancedDescription: clip(rawString(raw.EnhancedDescription), MaxEnhancedDescriptionLength),
		SuggestedCategory:   clip(rawString(raw.SuggestedCategory), MaxSuggestedCategoryLength),
		AISuggestedTags:     normalizeList(raw.AISuggestedTags, MaxSuggestedTags, MaxTagLength),
		Reasoning:           clip(rawString(raw.Reasoning), MaxReasoningLength),
		EstimatedDuration:   clip(rawString(raw.EstimatedDuration), MaxDurationLength),
		ContextInsights:     normalizeList(raw.ContextInsights, MaxInsights, MaxInsightLength),
		Source:              models.SuggestionSourceModel,
	}
	if suggestion.EnhancedDescription == "" {
		suggestion.EnhancedDescription = clip(req.Description, MaxEnhancedDescriptionLength)
	}
	if suggestion.SuggestedCategory == "" {
		suggestion.SuggestedCategory = clip(req.Category, MaxSuggestedCategoryLength)
	}
	return suggestion, nil
}

// ParseAnalysis turns a model reply into a normalized context analysis.
// Steps that were not requested are left at their zero value.
func ParseAnalysis(content string, opts models.AnalysisOptions) (*models.ContextAnalysisResult, error) {
	jsonStr, err := ExtractJSONObject(content)
	if err != nil {
		return nil, err
	}

	var raw rawAnalysis
	if err := json.Unmarshal([]byte(jsonStr), &raw); err != nil {
		return nil, fmt.Errorf("failed to decode model response: %w", err)
	}

	result := &models.ContextAnalysisResult{
		ExtractedKeywords: []string{},
		Sentiment:         models.SentimentNeutral,
		Insights:          normalizeList(raw.Insights, MaxInsights, MaxInsightLength),
	}
	if opts.Sentiment {
		result.Sentiment = normalizeSentiment(rawString(raw.Sentiment))
	}
	if opts.Keywords {
		result.ExtractedKeywords = normalizeKeywords(normalizeList(raw.ExtractedKeywords, MaxKeywords, MaxTagLength))
	}
	if opts.Relevance {
		if f, ok := rawNumber(raw.RelevanceScore); ok {
			result.RelevanceScore = clampFloat(f, 0, 1)
		}
	}
	return result, nil
}

func normalizePriority(raw json.RawMessage) int {
	f, ok := rawNumber(raw)
	if !ok {
		return models.DefaultPriority
	}
	// Clamp before converting; out-of-range floats do not convert to int.
	return int(clampFloat(math.Round(f), models.MinPriority, models.MaxPriority))
}

// deadlineLayouts are tried in order. Values without a zone are UTC.
var deadlineLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
}

func normalizeDeadline(raw json.RawMessage, now time.Time) *time.Time {
	s := strings.TrimSpace(rawString(raw))
	switch strings.ToLower(s) {
	case "", "null", "none":
		return nil
	}

	var deadline time.Time
	parsed := false
	for _, layout := range deadlineLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			deadline, parsed = t.UTC(), true
			break
		}
	}
	if !parsed {
		d, err := time.Parse("2006-01-02", s)
		if err != nil {
			return nil
		}
		deadline = d.Add(12 * time.Hour).UTC()
	}

	if !deadline.After(now) {
		return nil
	}
	return &deadline
}

func normalizeSentiment(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case models.SentimentPositive:
		return models.SentimentPositive
	case models.SentimentNegative:
		return models.SentimentNegative
	default:
		return models.SentimentNeutral
	}
}

func normalizeKeywords(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, k := range in {
		k = strings.ToLower(k)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return out
}

// normalizeList accepts a JSON array of scalars and keeps at most maxItems
// non-empty entries, each clipped to maxLen. Anything else yields an empty list.
func normalizeList(raw json.RawMessage, maxItems, maxLen int) []string {
	out := []string{}
	var items []json.RawMessage
	if len(raw) == 0 || json.Unmarshal(raw, &items) != nil {
		return out
	}
	for _, item := range items {
		if len(out) >= maxItems {
			break
		}
		s := strings.TrimSpace(rawString(item))
		if s == "" {
			continue
		}
		out = append(out, clip(s, maxLen))
	}
	return out
}

// rawString decodes a JSON string, or renders numbers and booleans as text.
// null and structured values yield "".
func rawString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	var f float64
	if json.Unmarshal(raw, &f) == nil {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	var b bool
	if json.Unmarshal(raw, &b) == nil {
		return strconv.FormatBool(b)
	}
	return ""
}

// rawNumber decodes a JSON number or a numeric string.
func rawNumber(raw json.RawMessage) (float64, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, false
	}
	var f float64
	if json.Unmarshal(raw, &f) == nil {
		return f, !math.IsNaN(f) && !math.IsInf(f, 0)
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			return f, true
		}
	}
	return 0, false
}

func clampFloat(f, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, f))
}
