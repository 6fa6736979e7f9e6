// Package llmclient wraps concrete model-provider SDKs behind one small
// completion interface. It knows nothing about prompts, retries or
// deadlines — that policy lives in internal/llmgw. It only knows how to
// turn a Request into a Response for a specific provider.
package llmclient

import "context"

// Config holds provider credentials and model selection.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
}

// Message is a single turn in a chat-style completion request.
type Message struct {
	Role    string // "system", "user", "assistant"
	Content string
}

// Request is a single structured-output completion request.
type Request struct {
	Messages    []Message
	Temperature *float64
	MaxTokens   int
}

// Response is the raw text returned by the model, before any
// fence-stripping or JSON parsing.
type Response struct {
	Content          string
	PromptTokens     int
	CompletionTokens int
}

// Provider completes chat requests against a single concrete model.
// Both the OpenAI and Anthropic implementations satisfy this so the
// Gateway can assign either one to the Fast or Deep role.
type Provider interface {
	Complete(ctx context.Context, req Request) (*Response, error)
	Model() string
}
