// Package llm hosts the optional language-model collaborators: the
// extractor that turns free-text proposals into structured claims, and
// the explainer that narrates finished reports. The costing core never
// depends on this package; both adapters sit at the pipeline boundary
// and the pipeline runs fine without them.
package llm

import "context"

// Provider is a minimal completion interface over a hosted or local model.
type Provider interface {
	// Name returns the provider name
	Name() string

	// Complete generates a single completion
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)

	// IsAvailable checks if the provider is properly configured and reachable
	IsAvailable(ctx context.Context) bool
}

// CompletionRequest is one prompt for the model.
type CompletionRequest struct {
	// System steers the model role; may be empty
	System string

	// Prompt is the user content
	Prompt string

	// Model overrides the configured model for this call
	Model string

	// MaxTokens limits the response length
	MaxTokens int

	// Temperature near zero keeps extraction reproducible
	Temperature float32
}

// CompletionResponse contains the model output
type CompletionResponse struct {
	// Text is the completion with surrounding whitespace trimmed
	Text string

	// Model is the model that generated the response
	Model string

	// TokensUsed tracks token consumption
	TokensUsed int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "anthropic", "ollama", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for hosted providers
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama)
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// StrictSources fails a narrative that cites an unregistered source id
	StrictSources bool

	// MaxTokens for response generation
	MaxTokens int

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:      "", // Disabled by default
		Model:         "",
		Timeout:       30,
		StrictSources: true,
		MaxTokens:     1500,
	}
}
