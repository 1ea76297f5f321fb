package agent

import (
	"context"
	"fmt"

	"github.com/hikawa/kotori/pkg/tools"
)

// LLMProvider is the model API behind the engine.
type LLMProvider interface {
	// Call makes one model API call.
	Call(ctx context.Context, request LLMRequest) (*LLMResponse, error)

	// Provider returns the provider name.
	Provider() string
}

// Message is one conversation turn as seen by the model. Role is one of
// user, assistant or tool.
type Message struct {
	Role       string     `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

// ToolCall is a tool invocation requested by the model.
type ToolCall struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Parameters map[string]any `json:"parameters"`
}

// TokenUsage tracks token consumption per call.
type TokenUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// LLMRequest contains the parameters for one model call.
type LLMRequest struct {
	Model        string
	Messages     []Message
	Tools        []tools.Declaration
	Temperature  float64
	MaxTokens    int
	SystemPrompt string
}

// LLMResponse contains the model's reply.
type LLMResponse struct {
	Content   string
	ToolCalls []ToolCall
	Usage     *TokenUsage
}

// Credentials selects and authenticates a model provider.
type Credentials struct {
	Provider string
	APIKey   string
}

// NewProvider creates a model provider from credentials.
func NewProvider(creds Credentials) (LLMProvider, error) {
	switch creds.Provider {
	case "anthropic":
		return NewAnthropicProvider(creds.APIKey), nil
	case "openai":
		return NewOpenAIProvider(creds.APIKey), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", creds.Provider)
	}
}
