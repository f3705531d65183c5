package driven

import "context"

// LLMService is the chat-completion transport used for QA generation.
// The generator is agnostic to the provider behind it: messages in,
// text out.
//
// Implementations may include:
//   - OpenAI-compatible endpoints (OpenAI, DeepSeek)
//   - Anthropic (Claude)
//   - Ollama (local models)
type LLMService interface {
	// Chat sends a conversation and returns the completion text.
	Chat(ctx context.Context, messages []ChatMessage, opts ChatOptions) (string, error)

	// ModelName returns the name of the model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight
	// test request. Used by the settings wizard before committing a
	// provider configuration.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// ChatMessage represents a single message in a conversation.
type ChatMessage struct {
	// Role is one of "system", "user", or "assistant".
	Role string

	// Content is the message text.
	Content string
}

// ChatOptions configures chat behaviour.
type ChatOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64
}

// Message role constants.
const (
	// RoleSystem is the system message role.
	RoleSystem = "system"

	// RoleUser is the user message role.
	RoleUser = "user"

	// RoleAssistant is the assistant message role.
	RoleAssistant = "assistant"
)
