package ai

import (
	"context"
	"sort"

	"go.uber.org/zap"
)

// CompletionRequest is a single prompt sent to a text generation model
type CompletionRequest struct {
	// Operation names the calling feature in logs, e.g. "suggest_task"
	Operation   string
	System      string
	Prompt      string
	Temperature float64
	MaxTokens   int
	// JSONMode asks the provider to constrain the reply to a JSON object
	JSONMode bool
}

// AIProvider is the interface for AI providers
type AIProvider interface {
	// Complete sends the prompt and returns the raw text of the first choice
	Complete(ctx context.Context, req CompletionRequest) (string, error)

	// Name identifies the provider in logs and health output
	Name() string
}

// ProviderConfig carries the settings used to construct a provider
type ProviderConfig struct {
	APIKey        string
	BaseURL       string
	Model         string
	FallbackModel string
	Logger        *zap.Logger
	DebugMode     bool
}

// ProviderFactory creates an AI provider based on the provider type
type ProviderFactory func(config ProviderConfig) (AIProvider, error)

// ProviderRegistry stores available AI providers
type ProviderRegistry struct {
	providers map[string]ProviderFactory
}

// NewProviderRegistry creates a new provider registry
func NewProviderRegistry() *ProviderRegistry {
	return &ProviderRegistry{
		providers: make(map[string]ProviderFactory),
	}
}

// NewDefaultRegistry returns a registry with every built-in provider registered
func NewDefaultRegistry() *ProviderRegistry {
	registry := NewProviderRegistry()
	RegisterOpenAI(registry)
	RegisterGroq(registry)
	return registry
}

// Register registers a provider factory
func (r *ProviderRegistry) Register(name string, factory ProviderFactory) {
	r.providers[name] = factory
}

// GetProvider gets a provider by name
func (r *ProviderRegistry) GetProvider(name string, config ProviderConfig) (AIProvider, error) {
	factory, ok := r.providers[name]
	if !ok {
		return nil, &ErrProviderNotFound{Name: name}
	}

	return factory(config)
}

// Names returns the registered provider names in sorted order
func (r *ProviderRegistry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ErrProviderNotFound is returned when a provider is not found
type ErrProviderNotFound struct {
	Name string
}

func (e *ErrProviderNotFound) Error() string {
	return "AI provider not found: " + e.Name
}
