// Package llm wraps text-generation providers behind one interface.
package llm

import "context"

// Provider generates text from a prompt.
type Provider interface {
	// Generate sends the request and returns the model's text output.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// Request describes a single-turn generation.
type Request struct {
	// System sets the model's role and constraints.
	System string

	// Prompt is the user message.
	Prompt string

	// MaxTokens caps the response length. Zero leaves the provider default.
	MaxTokens int

	// Temperature controls randomness, 0.0 - 1.0.
	Temperature float64
}

// Response holds the generated text.
type Response struct {
	Text string

	Usage Usage

	// Model is the model that served the request.
	Model string

	StopReason StopReason
}

// StopReason says why a provider stopped generating.
type StopReason string

// Stop reasons shared by every provider.
const (
	StopEnd       StopReason = "end"
	StopMaxTokens StopReason = "max_tokens"
	StopBlocked   StopReason = "blocked"
)

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// resolveModel maps a friendly model name to a provider model ID. Unknown
// names pass through unchanged.
func resolveModel(name string, models map[string]string) string {
	if id, ok := models[name]; ok {
		return id
	}
	return name
}
