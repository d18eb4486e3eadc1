// Package agent implements guess-sources backed by language models: chat
// APIs (OpenAI-compatible, Anthropic) and agent CLIs (claude, codex).
package agent

import "context"

// Message is one turn of a conversation with a model
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Usage represents token usage statistics
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Add accumulates other into u
func (u *Usage) Add(other Usage) {
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
}

// Completion is a single model reply
type Completion struct {
	Text  string
	Usage Usage
}

// Backend sends a whole conversation to a model and returns its reply
type Backend interface {
	// Name returns the provider name for display purposes
	Name() string
	// Model returns the model being used by this backend
	Model() string
	// Complete returns the model's reply to the conversation so far
	Complete(ctx context.Context, messages []Message) (Completion, error)
}

// streamMessage is the envelope of a claude stream-json line
type streamMessage struct {
	Type    string `json:"type"`
	Subtype string `json:"subtype,omitempty"`
}

// streamResult is the final line of a claude stream-json run
type streamResult struct {
	Type    string `json:"type"`
	Subtype string `json:"subtype"`
	IsError bool   `json:"is_error"`
	Result  string `json:"result"`
	Usage   Usage  `json:"usage"`
}

// streamAssistant carries assistant content blocks
type streamAssistant struct {
	Type    string `json:"type"`
	Message struct {
		Content []contentBlock `json:"content"`
	} `json:"message"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// codexEvent is the envelope of a codex --json line
type codexEvent struct {
	Type string `json:"type"`
}

type codexItemEvent struct {
	Type string `json:"type"`
	Item struct {
		ID   string `json:"id"`
		Type string `json:"type"`
		Text string `json:"text,omitempty"`
	} `json:"item"`
}

type codexTurnCompleted struct {
	Type  string `json:"type"`
	Usage struct {
		InputTokens       int `json:"input_tokens"`
		CachedInputTokens int `json:"cached_input_tokens"`
		OutputTokens      int `json:"output_tokens"`
	} `json:"usage"`
}

type codexError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}
