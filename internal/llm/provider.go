package llm

import "context"

// Provider is the single chokepoint for all text-generation calls.
// Nothing category-specific crosses this boundary: callers describe the
// request and receive trimmed text plus token usage.
type Provider interface {
	// Generate sends a prompt to the LLM and returns the response.
	// When the request carries a Schema, the provider uses its native
	// structured output mechanism and the response Content is the
	// validated JSON document. Otherwise Content is plain text with
	// surrounding whitespace trimmed.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the default model identifier this provider is
	// configured to use.
	ModelID() string
}

// Request describes what to send to the LLM.
type Request struct {
	// System is the system prompt. Sets the LLM's role and constraints.
	System string

	// Messages is the conversation history. For single-turn generation
	// (the common case here) this contains one user message.
	Messages []Message

	// Model overrides the provider's default model when non-empty.
	// Teachers carry a tariff-selected model that rides on each request.
	Model string

	// Schema is the JSON Schema the response must conform to.
	// Only the diagnostic-test path uses structured output.
	Schema *Schema

	// MaxTokens is the maximum number of tokens in the response.
	MaxTokens int

	// Temperature controls randomness. Range: 0.0 - 1.0.
	Temperature float64
}

// Message represents a single message in the conversation.
type Message struct {
	Role    Role
	Content string
}

// Role is the message sender role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema defines the JSON structure expected from the LLM.
type Schema struct {
	// Name identifies this schema. Kebab-case, e.g. "diagnostic-test".
	Name string

	// Description is sent to the LLM to guide generation.
	Description string

	// Definition is the JSON Schema definition as a map.
	Definition map[string]any
}

// Response holds the LLM's output.
type Response struct {
	// Content is the generated output: trimmed plain text, or the
	// validated JSON document when the request carried a Schema.
	Content string

	// Usage reports token consumption for this request.
	Usage Usage

	// Model is the actual model that served the request.
	Model string

	// StopReason indicates why generation stopped.
	// Normalized to: "end", "max_tokens"
	StopReason string
}

// Usage tracks token consumption for a single request.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}
