package ai

import (
	"context"
	"errors"
	"time"

	"github.com/smart-todo/smart-todo-list/internal/config"
	logpkg "github.com/smart-todo/smart-todo-list/internal/logger"
	"github.com/smart-todo/smart-todo-list/internal/models"
	"github.com/smart-todo/smart-todo-list/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// DefaultCallTimeout bounds one model call including the fallback model.
const DefaultCallTimeout = 20 * time.Second

// Status describes the AI integration for health output.
type Status struct {
	Enabled      bool           `json:"enabled"`
	Provider     string         `json:"provider,omitempty"`
	CircuitState string         `json:"circuit_state,omitempty"`
	Metrics      BreakerMetrics `json:"metrics"`
}

// Service produces task suggestions and context analyses. Both operations
// always return a usable result: provider failures degrade to deterministic
// local output and are only visible in logs and the result flags.
type Service struct {
	provider AIProvider
	breaker  *Breaker
	analyzer Analyzer
	timeout  time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

// NewService creates a service around provider. A nil provider disables
// model calls. The timeout is capped at config.MaxAITimeout.
func NewService(provider AIProvider, timeout time.Duration, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = DefaultCallTimeout
	}
	if timeout > config.MaxAITimeout {
		timeout = config.MaxAITimeout
	}
	s := &Service{
		provider: provider,
		timeout:  timeout,
		logger:   logger,
		now:      time.Now,
	}
	if provider != nil {
		s.breaker = NewBreaker(provider.Name(), DefaultBreakerConfig(), logger)
	}
	return s
}

// NewServiceFromConfig builds the provider named in cfg. Missing credentials
// leave the service running without a provider.
func NewServiceFromConfig(cfg *config.Config, registry *ProviderRegistry, logger *zap.Logger) (*Service, error) {
	if !cfg.AIEnabled() {
		logger.Warn("ai_provider_disabled", zap.String("reason", "no API key configured"))
		return NewService(nil, cfg.AITimeout, logger), nil
	}

	provider, err := registry.GetProvider(cfg.AIProvider, ProviderConfig{
		APIKey:        cfg.AIAPIKey,
		BaseURL:       cfg.AIBaseURL,
		Model:         cfg.AIModel,
		FallbackModel: cfg.AIFallbackModel,
		Logger:        logger,
		DebugMode:     cfg.ServerDebugMode,
	})
	if err != nil {
		return nil, err
	}

	logger.Info("ai_provider_configured",
		zap.String("provider", provider.Name()),
		zap.String("api_key", SanitizeAPIKey(cfg.AIAPIKey)),
		zap.Duration("timeout", cfg.AITimeout),
	)
	return NewService(provider, cfg.AITimeout, logger), nil
}

// Enabled reports whether a provider is configured.
func (s *Service) Enabled() bool {
	return s.provider != nil
}

// Status reports the provider and breaker state.
func (s *Service) Status() Status {
	if s.provider == nil {
		return Status{Enabled: false}
	}
	return Status{
		Enabled:      true,
		Provider:     s.provider.Name(),
		CircuitState: s.breaker.State(),
		Metrics:      s.breaker.Metrics(),
	}
}

// SuggestTask asks the model to enrich a task draft. Any failure yields
// FallbackSuggestion.
func (s *Service) SuggestTask(ctx context.Context, req *models.AITaskSuggestionRequest) *models.AITaskSuggestion {
	if s.provider == nil {
		return FallbackSuggestion(req, "no AI provider configured")
	}

	content, err := s.complete(ctx, CompletionRequest{
		Operation:   "suggest_task",
		System:      suggestionSystemPrompt,
		Prompt:      BuildSuggestionPrompt(req),
		Temperature: suggestionTemperature,
		MaxTokens:   suggestionMaxTokens,
		JSONMode:    true,
	})
	if err != nil {
		s.logger.Warn("ai_suggestion_fallback",
			zap.String("title", logpkg.Preview(req.Title, logpkg.MaxTitlePreviewLength)),
			zap.String("reason", failureReason(err)),
			zap.Error(err),
			zap.String("request_id", ExtractRequestID(ctx)),
		)
		return FallbackSuggestion(req, failureReason(err))
	}

	suggestion, err := ParseSuggestion(content, req, s.now())
	if err != nil {
		s.logger.Warn("ai_suggestion_unparseable",
			zap.Error(err),
			zap.String("response_preview", SanitizeResponse(content, false)),
			zap.String("request_id", ExtractRequestID(ctx)),
		)
		return FallbackSuggestion(req, "model response could not be parsed")
	}

	s.logger.Info("ai_suggestion_generated",
		zap.Int("priority_score", suggestion.PriorityScore),
		zap.Int("tag_count", len(suggestion.AISuggestedTags)),
		zap.Bool("has_deadline", suggestion.SuggestedDeadline != nil),
		zap.String("request_id", ExtractRequestID(ctx)),
	)
	return suggestion
}

// AnalyzeContext extracts keywords, relevance, sentiment and insights from a
// context entry. Without a provider the local heuristics are the intended
// result. With a provider that fails, the heuristics are returned with
// Degraded set.
func (s *Service) AnalyzeContext(ctx context.Context, content string, source models.SourceType, opts models.AnalysisOptions) *models.ContextAnalysisResult {
	if s.provider == nil {
		return s.analyzer.Analyze(content, source, opts)
	}

	reply, err := s.complete(ctx, CompletionRequest{
		Operation:   "analyze_context",
		System:      analysisSystemPrompt,
		Prompt:      BuildAnalysisPrompt(content, source),
		Temperature: analysisTemperature,
		MaxTokens:   analysisMaxTokens,
		JSONMode:    true,
	})
	if err == nil {
		var result *models.ContextAnalysisResult
		result, err = ParseAnalysis(reply, opts)
		if err == nil {
			if len(result.Insights) == 0 {
				result.Insights = ExtractInsights(content, source)
			}
			return result
		}
	}

	s.logger.Warn("ai_analysis_degraded",
		zap.String("source_type", string(source)),
		zap.String("reason", failureReason(err)),
		zap.Error(err),
		zap.String("request_id", ExtractRequestID(ctx)),
	)
	result := s.analyzer.Analyze(content, source, opts)
	result.Degraded = true
	return result
}

func (s *Service) complete(ctx context.Context, req CompletionRequest) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	ctx, span := telemetry.StartSpan(ctx, "ai.complete",
		attribute.String("ai.operation", req.Operation),
		attribute.String("ai.provider", s.provider.Name()),
	)
	content, err := s.breaker.Execute(ctx, func() (string, error) {
		return s.provider.Complete(ctx, req)
	})
	telemetry.EndSpan(span, err)
	return content, err
}

func failureReason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrCircuitOpen):
		return "AI service temporarily unavailable"
	case errors.Is(err, context.DeadlineExceeded):
		return "AI request timed out"
	case errors.Is(err, context.Canceled):
		return "request cancelled"
	case IsQuotaError(err):
		return "AI quota exceeded"
	case IsRateLimitError(err):
		return "AI rate limit reached"
	case errors.Is(err, ErrNoJSONObject):
		return "model response could not be parsed"
	default:
		return "AI request failed"
	}
}
