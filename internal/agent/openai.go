package agent

import (
	"context"
	"fmt"
	"os"

	"github.com/sashabaranov/go-openai"
)

const defaultOpenAIModel = "gpt-4o-mini"

// OpenAIBackend talks to any OpenAI-compatible chat completions endpoint
type OpenAIBackend struct {
	client    *openai.Client
	model     string
	maxTokens int
}

// NewOpenAIBackend builds a backend from opts, falling back to OPENAI_API_KEY,
// OPENAI_BASE_URL and OPENAI_MODEL.
func NewOpenAIBackend(opts Options) (*OpenAIBackend, error) {
	apiKey := opts.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY not set")
	}

	model := opts.Model
	if model == "" {
		model = os.Getenv("OPENAI_MODEL")
	}
	if model == "" {
		model = defaultOpenAIModel
	}

	cfg := openai.DefaultConfig(apiKey)
	apiBase := opts.APIBase
	if apiBase == "" {
		apiBase = os.Getenv("OPENAI_BASE_URL")
	}
	if apiBase != "" {
		cfg.BaseURL = apiBase
	}
	cfg.HTTPClient = opts.httpClient()

	return &OpenAIBackend{
		client:    openai.NewClientWithConfig(cfg),
		model:     model,
		maxTokens: opts.maxTokens(),
	}, nil
}

// Name returns the provider name
func (b *OpenAIBackend) Name() string {
	return string(AgentOpenAI)
}

// Model returns the model being used
func (b *OpenAIBackend) Model() string {
	return b.model
}

// Complete sends the conversation as a chat completion request
func (b *OpenAIBackend) Complete(ctx context.Context, messages []Message) (Completion, error) {
	req := openai.ChatCompletionRequest{
		Model:               b.model,
		Messages:            make([]openai.ChatCompletionMessage, len(messages)),
		MaxCompletionTokens: b.maxTokens,
	}
	for i, msg := range messages {
		role := openai.ChatMessageRoleUser
		if msg.Role == RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		req.Messages[i] = openai.ChatCompletionMessage{Role: role, Content: msg.Content}
	}

	resp, err := b.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return Completion{}, fmt.Errorf("OpenAI API call failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Completion{}, fmt.Errorf("OpenAI returned no choices")
	}

	return Completion{
		Text: resp.Choices[0].Message.Content,
		Usage: Usage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
		},
	}, nil
}
