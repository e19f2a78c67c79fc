package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SourceType identifies where a context snippet came from
type SourceType string

const (
	SourceTypeEmail    SourceType = "email"
	SourceTypeWhatsApp SourceType = "whatsapp"
	SourceTypeNotes    SourceType = "notes"
	SourceTypeCalendar SourceType = "calendar"
)

// Valid reports whether s is one of the known source types.
func (s SourceType) Valid() bool {
	switch s {
	case SourceTypeEmail, SourceTypeWhatsApp, SourceTypeNotes, SourceTypeCalendar:
		return true
	}
	return false
}

// ContentPreviewLength is the number of characters kept in content_preview.
const ContentPreviewLength = 100

// JSONMap is a free-form JSON object stored in a JSONB column.
type JSONMap map[string]any

// Value implements driver.Valuer.
func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner.
func (m *JSONMap) Scan(src any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*m = JSONMap{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type for JSONMap: %T", src)
	}
	out := JSONMap{}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &out); err != nil {
			return fmt.Errorf("failed to unmarshal JSONMap: %w", err)
		}
	}
	*m = out
	return nil
}

// ContextEntry is a stored snippet of external text used as planning context
type ContextEntry struct {
	ID                uuid.UUID  `json:"id"`
	Content           string     `json:"content"`
	SourceType        SourceType `json:"source_type"`
	ProcessedInsights JSONMap    `json:"processed_insights"`
	Metadata          JSONMap    `json:"metadata"`
	IsProcessed       bool       `json:"is_processed"`
	RelevanceScore    float64    `json:"relevance_score"`
	ExtractedKeywords []string   `json:"extracted_keywords"`
	CreatedAt         time.Time  `json:"created_at"`
}

// ContentPreview returns the first 100 characters of the content, with an
// ellipsis when truncated.
func (e *ContextEntry) ContentPreview() string {
	r := []rune(e.Content)
	if len(r) <= ContentPreviewLength {
		return e.Content
	}
	return string(r[:ContentPreviewLength]) + "..."
}

// ApplyAnalysis stores an analysis result on the entry. The entry is only
// marked processed when the analysis was not degraded.
func (e *ContextEntry) ApplyAnalysis(result *ContextAnalysisResult) {
	e.ExtractedKeywords = result.ExtractedKeywords
	e.RelevanceScore = result.RelevanceScore
	if e.ProcessedInsights == nil {
		e.ProcessedInsights = JSONMap{}
	}
	e.ProcessedInsights["sentiment"] = result.Sentiment
	e.ProcessedInsights["insights"] = result.Insights
	if !result.Degraded {
		e.IsProcessed = true
	}
}

// ContextEntryResponse adds derived fields to a ContextEntry.
type ContextEntryResponse struct {
	ContextEntry
	ContentPreview string `json:"content_preview"`
}

// NewContextEntryResponse fills in derived fields and empty collections.
func NewContextEntryResponse(e *ContextEntry) ContextEntryResponse {
	resp := ContextEntryResponse{ContextEntry: *e, ContentPreview: e.ContentPreview()}
	if resp.ProcessedInsights == nil {
		resp.ProcessedInsights = JSONMap{}
	}
	if resp.Metadata == nil {
		resp.Metadata = JSONMap{}
	}
	if resp.ExtractedKeywords == nil {
		resp.ExtractedKeywords = []string{}
	}
	return resp
}

// ContextEntryCreate is the request body for creating a context entry
type ContextEntryCreate struct {
	Content    string     `json:"content" validate:"required"`
	SourceType SourceType `json:"source_type" validate:"required,source_type"`
	Metadata   JSONMap    `json:"metadata"`
}

// Normalize sanitizes the content, keeping line breaks.
func (c *ContextEntryCreate) Normalize() {
	c.Content = SanitizeText(c.Content)
}

// ToEntry builds an unprocessed entry with empty analysis fields.
func (c *ContextEntryCreate) ToEntry() *ContextEntry {
	metadata := c.Metadata
	if metadata == nil {
		metadata = JSONMap{}
	}
	return &ContextEntry{
		Content:           c.Content,
		SourceType:        c.SourceType,
		ProcessedInsights: JSONMap{},
		Metadata:          metadata,
		ExtractedKeywords: []string{},
	}
}

// ContextEntryUpdate is a merge patch for a context entry, including direct
// edits of the analysis fields.
type ContextEntryUpdate struct {
	Content           *string     `json:"content" validate:"omitempty,min=1"`
	SourceType        *SourceType `json:"source_type" validate:"omitempty,source_type"`
	Metadata          JSONMap     `json:"metadata"`
	ProcessedInsights JSONMap     `json:"processed_insights"`
	IsProcessed       *bool       `json:"is_processed"`
	RelevanceScore    *float64    `json:"relevance_score" validate:"omitempty,min=0,max=1"`
	ExtractedKeywords []string    `json:"extracted_keywords" validate:"omitempty,dive,max=100"`
}

// Normalize sanitizes the content, keeping line breaks.
func (u *ContextEntryUpdate) Normalize() {
	u.Content = sanitizeOptional(u.Content)
}

// Apply merges the supplied fields into e.
func (u *ContextEntryUpdate) Apply(e *ContextEntry) {
	if u.Content != nil {
		e.Content = *u.Content
	}
	if u.SourceType != nil {
		e.SourceType = *u.SourceType
	}
	if u.Metadata != nil {
		e.Metadata = u.Metadata
	}
	if u.ProcessedInsights != nil {
		e.ProcessedInsights = u.ProcessedInsights
	}
	if u.IsProcessed != nil {
		e.IsProcessed = *u.IsProcessed
	}
	if u.RelevanceScore != nil {
		e.RelevanceScore = *u.RelevanceScore
	}
	if u.ExtractedKeywords != nil {
		e.ExtractedKeywords = u.ExtractedKeywords
	}
}

// ContextFilter narrows a context entry listing.
type ContextFilter struct {
	SourceType   *SourceType
	IsProcessed  *bool
	MinRelevance *float64
	Skip         int
	Limit        int
}

// Sentiment values produced by context analysis.
const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
)

// AnalysisOptions selects which parts of a context analysis are computed.
type AnalysisOptions struct {
	Sentiment bool
	Keywords  bool
	Relevance bool
}

// AllAnalysis enables every analysis step.
var AllAnalysis = AnalysisOptions{Sentiment: true, Keywords: true, Relevance: true}

// ContextAnalysisRequest is the request body for ad-hoc context analysis
type ContextAnalysisRequest struct {
	Content            string     `json:"content" validate:"required"`
	SourceType         SourceType `json:"source_type" validate:"required,source_type"`
	AnalyzeSentiment   *bool      `json:"analyze_sentiment"`
	ExtractKeywords    *bool      `json:"extract_keywords"`
	CalculateRelevance *bool      `json:"calculate_relevance"`
}

// Options returns the requested steps, each defaulting to enabled.
func (r *ContextAnalysisRequest) Options() AnalysisOptions {
	opts := AllAnalysis
	if r.AnalyzeSentiment != nil {
		opts.Sentiment = *r.AnalyzeSentiment
	}
	if r.ExtractKeywords != nil {
		opts.Keywords = *r.ExtractKeywords
	}
	if r.CalculateRelevance != nil {
		opts.Relevance = *r.CalculateRelevance
	}
	return opts
}

// ContextAnalysisResult is the normalized outcome of a context analysis.
// Degraded is set when the model call failed and local heuristics were used.
type ContextAnalysisResult struct {
	ExtractedKeywords []string `json:"extracted_keywords"`
	RelevanceScore    float64  `json:"relevance_score"`
	Sentiment         string   `json:"sentiment"`
	Insights          []string `json:"insights"`
	Degraded          bool     `json:"degraded"`
}
