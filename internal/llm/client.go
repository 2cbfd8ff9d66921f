package llm

import (
	"context"
	"fmt"
)

// Client is the interface for generative model providers. The runtime
// uses it in exactly two places: the classifier fallback and the chat
// handler.
type Client interface {
	Complete(ctx context.Context, req *Request) (*Response, error)
	Health(ctx context.Context) error
}

// Request represents one completion request.
type Request struct {
	Model  string
	System string
	Prompt string
	// JSONOnly asks the provider for a JSON-object response where the
	// API supports it; callers still validate the shape themselves.
	JSONOnly bool
}

// Response represents a completion response.
type Response struct {
	Content    string
	Model      string
	TokensUsed int
}

// NewClient creates a provider client by name.
func NewClient(provider, baseURL, apiKey, model string) (Client, error) {
	switch provider {
	case "openai-compatible":
		return NewOpenAIClient(&OpenAIConfig{BaseURL: baseURL, APIKey: apiKey, Model: model})
	case "ollama":
		return NewOllamaClient(&OllamaConfig{URL: baseURL, DefaultModel: model})
	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", provider)
	}
}
