package ai

import (
	"regexp"
	"sort"
	"strings"

	"github.com/smart-todo/smart-todo-list/internal/models"
)

var wordPattern = regexp.MustCompile(`\b[a-zA-Z]{3,}\b`)

var stopWords = map[string]bool{
	"the": true, "and": true, "but": true, "for": true, "with": true,
	"are": true, "was": true, "were": true, "been": true, "have": true,
	"has": true, "had": true, "does": true, "did": true, "will": true,
	"would": true, "could": true, "should": true, "may": true, "might": true,
	"must": true, "can": true, "this": true, "that": true, "these": true,
	"those": true, "they": true, "you": true, "him": true, "her": true,
	"them": true, "your": true, "his": true, "our": true, "their": true,
}

// relevanceKeywords are matched as substrings. The first ten weigh double.
var relevanceKeywords = []string{
	"task", "todo", "deadline", "urgent", "important", "meeting",
	"project", "work", "complete", "finish", "priority", "schedule",
	"appointment", "reminder", "follow", "action", "deliver",
}

const relevanceHeavyKeywords = 10

var positiveWords = []string{
	"good", "great", "excellent", "happy", "pleased", "satisfied",
	"love", "like", "amazing", "wonderful", "perfect", "awesome",
	"fantastic", "brilliant", "outstanding", "superb",
}

var negativeWords = []string{
	"bad", "terrible", "awful", "hate", "dislike", "disappointed",
	"frustrated", "angry", "upset", "problem", "issue", "difficult",
	"challenging", "struggle", "fail", "wrong",
}

// Analyzer computes context analysis locally with keyword heuristics. It is
// used when no provider is configured and as the fallback when one fails.
type Analyzer struct{}

// Analyze runs the requested heuristic steps over content.
func (Analyzer) Analyze(content string, source models.SourceType, opts models.AnalysisOptions) *models.ContextAnalysisResult {
	result := &models.ContextAnalysisResult{
		ExtractedKeywords: []string{},
		Sentiment:         models.SentimentNeutral,
		Insights:          ExtractInsights(content, source),
	}
	if opts.Keywords {
		result.ExtractedKeywords = ExtractKeywords(content)
	}
	if opts.Relevance {
		result.RelevanceScore = RelevanceScore(content)
	}
	if opts.Sentiment {
		result.Sentiment = Sentiment(content)
	}
	return result
}

// ExtractKeywords returns up to ten lowercase words of three or more letters,
// most frequent first. Ties keep first-appearance order.
func ExtractKeywords(content string) []string {
	counts := make(map[string]int)
	order := []string{}
	for _, w := range wordPattern.FindAllString(strings.ToLower(content), -1) {
		if stopWords[w] {
			continue
		}
		if counts[w] == 0 {
			order = append(order, w)
		}
		counts[w]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > MaxKeywords {
		order = order[:MaxKeywords]
	}
	return order
}

// RelevanceScore estimates how task-related content is, in [0,1].
func RelevanceScore(content string) float64 {
	lower := strings.ToLower(content)
	score, maxScore := 0, 0
	for i, k := range relevanceKeywords {
		weight := 1
		if i < relevanceHeavyKeywords {
			weight = 2
		}
		maxScore += weight
		if strings.Contains(lower, k) {
			score += weight
		}
	}
	return clampFloat(float64(score)/float64(maxScore), 0, 1)
}

// Sentiment classifies content by counting positive and negative words.
func Sentiment(content string) string {
	lower := strings.ToLower(content)
	positive, negative := 0, 0
	for _, w := range positiveWords {
		if strings.Contains(lower, w) {
			positive++
		}
	}
	for _, w := range negativeWords {
		if strings.Contains(lower, w) {
			negative++
		}
	}
	switch {
	case positive > negative:
		return models.SentimentPositive
	case negative > positive:
		return models.SentimentNegative
	default:
		return models.SentimentNeutral
	}
}

// ExtractInsights returns up to five observations based on the source type
// and a few generic phrases.
func ExtractInsights(content string, source models.SourceType) []string {
	lower := strings.ToLower(content)
	insights := []string{}
	add := func(cond bool, insight string) {
		if cond {
			insights = append(insights, insight)
		}
	}

	switch source {
	case models.SourceTypeEmail:
		add(strings.Contains(lower, "meeting") || strings.Contains(lower, "call"), "Contains meeting or call information")
		add(strings.Contains(lower, "deadline") || strings.Contains(lower, "due"), "Contains deadline information")
		add(strings.Contains(lower, "attached") || strings.Contains(lower, "attachment"), "Contains file attachments")
	case models.SourceTypeWhatsApp:
		add(strings.Contains(lower, "urgent") || strings.Contains(content, "!!"), "Marked as urgent")
		add(strings.Contains(content, "?"), "Contains questions needing response")
		add(strings.Contains(lower, "meeting"), "Discussion about meeting")
	case models.SourceTypeNotes:
		add(strings.Contains(lower, "todo") || strings.Contains(lower, "task"), "Contains task-related notes")
		add(strings.Contains(lower, "remember"), "Contains reminder information")
		add(strings.Contains(lower, "idea"), "Contains ideas or suggestions")
	case models.SourceTypeCalendar:
		add(strings.Contains(lower, "meeting") || strings.Contains(lower, "call"), "Scheduled meeting or call")
		add(strings.Contains(lower, "prepare") || strings.Contains(lower, "agenda"), "Requires preparation beforehand")
	}

	add(strings.Contains(lower, "follow up"), "Requires follow-up action")
	add(strings.Contains(lower, "review"), "Involves review or feedback")

	if len(insights) > MaxInsights {
		insights = insights[:MaxInsights]
	}
	return insights
}
