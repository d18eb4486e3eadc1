package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
)

const (
	defaultAnthropicModel = "claude-sonnet-4-20250514"
	defaultAnthropicBase  = "https://api.anthropic.com"
	anthropicVersion      = "2023-06-01"
)

// AnthropicBackend calls the Anthropic Messages API
type AnthropicBackend struct {
	apiKey    string
	apiBase   string
	model     string
	maxTokens int
	client    *http.Client
}

// NewAnthropicBackend builds a backend from opts, falling back to
// ANTHROPIC_API_KEY.
func NewAnthropicBackend(opts Options) (*AnthropicBackend, error) {
	apiKey := opts.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("ANTHROPIC_API_KEY not set")
	}

	apiBase := opts.APIBase
	if apiBase == "" {
		apiBase = defaultAnthropicBase
	}
	model := opts.Model
	if model == "" {
		model = defaultAnthropicModel
	}

	return &AnthropicBackend{
		apiKey:    apiKey,
		apiBase:   strings.TrimRight(apiBase, "/"),
		model:     model,
		maxTokens: opts.maxTokens(),
		client:    opts.httpClient(),
	}, nil
}

// Name returns the provider name
func (b *AnthropicBackend) Name() string {
	return string(AgentAnthropic)
}

// Model returns the model being used
func (b *AnthropicBackend) Model() string {
	return b.model
}

// Complete posts the conversation to /v1/messages
func (b *AnthropicBackend) Complete(ctx context.Context, messages []Message) (Completion, error) {
	reqBody := anthropicRequest{
		Model:     b.model,
		MaxTokens: b.maxTokens,
		Messages:  make([]anthropicMessage, len(messages)),
	}
	for i, msg := range messages {
		reqBody.Messages[i] = anthropicMessage{
			Role:    msg.Role,
			Content: msg.Content,
		}
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return Completion{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.apiBase+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return Completion{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", b.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := b.client.Do(req)
	if err != nil {
		return Completion{}, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return Completion{}, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return Completion{}, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var apiResp anthropicResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return Completion{}, fmt.Errorf("failed to parse response: %w", err)
	}

	var text strings.Builder
	for _, block := range apiResp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	return Completion{
		Text: text.String(),
		Usage: Usage{
			InputTokens:  apiResp.Usage.InputTokens,
			OutputTokens: apiResp.Usage.OutputTokens,
		},
	}, nil
}

// Anthropic API types
type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system,omitempty"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []contentBlock `json:"content"`
	Usage   Usage          `json:"usage"`
}
