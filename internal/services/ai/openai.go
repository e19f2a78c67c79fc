package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
	"go.uber.org/zap"
)

const (
	// DefaultOpenAIModel is the default model to use
	DefaultOpenAIModel = "gpt-4o-mini"
	// DefaultOpenAIBaseURL is the default OpenAI API base URL
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"

	// DefaultGroqModel is the primary model used with Groq
	DefaultGroqModel = "llama-3.1-70b-versatile"
	// DefaultGroqFallbackModel is tried when the primary Groq model fails
	DefaultGroqFallbackModel = "llama-3.1-8b-instant"
	// DefaultGroqBaseURL is Groq's OpenAI compatible endpoint
	DefaultGroqBaseURL = "https://api.groq.com/openai/v1"

	// DefaultTimeout bounds a single HTTP round trip to the provider
	DefaultTimeout = 30 * time.Second

	// ErrNoChoicesInResponse is returned when the API response has no choices
	ErrNoChoicesInResponse = "no choices in response"
)

// OpenAIProvider implements AIProvider against any OpenAI compatible
// chat completions API. Each call tries the primary model first and then
// the fallback model, if one is configured.
type OpenAIProvider struct {
	client    openai.Client
	name      string
	models    []string
	logger    *zap.Logger
	debugMode bool
}

// NewOpenAIProviderWithConfig creates a provider for an OpenAI compatible API
func NewOpenAIProviderWithConfig(name string, cfg ProviderConfig) *OpenAIProvider {
	model := cfg.Model
	if model == "" {
		model = DefaultOpenAIModel
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultOpenAIBaseURL
	}

	httpClient := &http.Client{
		Timeout: DefaultTimeout,
	}

	client := openai.NewClient(
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(baseURL),
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(1),
	)

	models := []string{model}
	if cfg.FallbackModel != "" && cfg.FallbackModel != model {
		models = append(models, cfg.FallbackModel)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &OpenAIProvider{
		client:    client,
		name:      name,
		models:    models,
		logger:    logger,
		debugMode: cfg.DebugMode,
	}
}

// Name returns the registry name of the provider
func (p *OpenAIProvider) Name() string {
	return p.name
}

// Models returns the models tried in order
func (p *OpenAIProvider) Models() []string {
	return append([]string(nil), p.models...)
}

// Complete sends the request to each configured model in turn and returns
// the first non-empty reply. A cancelled or expired context stops the loop.
func (p *OpenAIProvider) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	var lastErr error
	for i, model := range p.models {
		content, err := p.complete(ctx, model, req)
		if err == nil {
			return content, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
		if i < len(p.models)-1 {
			p.logger.Warn("llm_model_failed_trying_fallback",
				zap.String("operation", req.Operation),
				zap.String("model", model),
				zap.String("fallback_model", p.models[i+1]),
				zap.Bool("rate_limited", IsRateLimitError(err)),
				zap.Error(err),
			)
		}
	}
	return "", lastErr
}

func (p *OpenAIProvider) complete(ctx context.Context, model string, req CompletionRequest) (string, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	messages = append(messages, openai.UserMessage(req.Prompt))

	params := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(model),
		Messages: messages,
	}
	if req.Temperature > 0 {
		params.Temperature = openai.Float(req.Temperature)
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}
	if req.JSONMode {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}
	}

	requestID := ExtractRequestID(ctx)
	if p.debugMode {
		p.logger.Debug("llm_api_request",
			zap.String("operation", req.Operation),
			zap.String("provider", p.name),
			zap.String("model", model),
			zap.Int("prompt_length", len(req.Prompt)),
			zap.Int("message_count", len(messages)),
			zap.String("prompt_preview", SanitizePrompt(req.Prompt, true)),
			zap.String("request_id", requestID),
		)
	}

	start := time.Now()
	resp, err := p.client.Chat.Completions.New(ctx, params)
	latency := time.Since(start)
	if err != nil {
		p.logger.Debug("llm_api_error",
			zap.String("operation", req.Operation),
			zap.String("model", model),
			zap.Error(err),
			zap.String("request_id", requestID),
			zap.Int64("latency_ms", latency.Milliseconds()),
		)
		if apiErr := ExtractAPIError(err); apiErr != nil {
			return "", fmt.Errorf("%s completion with %s failed: %w", p.name, model, apiErr)
		}
		return "", fmt.Errorf("%s completion with %s failed: %w", p.name, model, err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New(ErrNoChoicesInResponse)
	}

	content := resp.Choices[0].Message.Content
	if p.debugMode {
		p.logger.Debug("llm_api_response",
			zap.String("operation", req.Operation),
			zap.String("model", model),
			zap.Int("response_length", len(content)),
			zap.String("response_preview", SanitizeResponse(content, true)),
			zap.String("request_id", requestID),
			zap.Int64("latency_ms", latency.Milliseconds()),
		)
	}
	if content == "" {
		return "", ErrEmptyResponse
	}
	return content, nil
}

// RegisterOpenAI registers the OpenAI provider
func RegisterOpenAI(registry *ProviderRegistry) {
	registry.Register("openai", func(cfg ProviderConfig) (AIProvider, error) {
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("openai: api key is required")
		}
		return NewOpenAIProviderWithConfig("openai", cfg), nil
	})
}

// RegisterGroq registers Groq through its OpenAI compatible endpoint
func RegisterGroq(registry *ProviderRegistry) {
	registry.Register("groq", func(cfg ProviderConfig) (AIProvider, error) {
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("groq: api key is required")
		}
		if cfg.BaseURL == "" {
			cfg.BaseURL = DefaultGroqBaseURL
		}
		if cfg.Model == "" {
			cfg.Model = DefaultGroqModel
			if cfg.FallbackModel == "" {
				cfg.FallbackModel = DefaultGroqFallbackModel
			}
		}
		return NewOpenAIProviderWithConfig("groq", cfg), nil
	})
}
