package agent

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// AgentProvider names a family of model backends
type AgentProvider string

const (
	AgentOpenAI    AgentProvider = "openai"
	AgentAnthropic AgentProvider = "anthropic"
	AgentClaude    AgentProvider = "claude"
	AgentCodex     AgentProvider = "codex"
)

// DefaultAgent is used when no agent is configured
const DefaultAgent = AgentOpenAI

// DefaultMaxTokens bounds a single reply from the chat APIs
const DefaultMaxTokens = 4096

// DefaultTimeout bounds a single model call
const DefaultTimeout = 5 * time.Minute

// Providers lists every supported agent in display order
func Providers() []AgentProvider {
	return []AgentProvider{AgentOpenAI, AgentAnthropic, AgentClaude, AgentCodex}
}

// ValidateAgentProvider validates and returns the agent provider
func ValidateAgentProvider(agent string) (AgentProvider, error) {
	switch AgentProvider(strings.ToLower(strings.TrimSpace(agent))) {
	case AgentOpenAI:
		return AgentOpenAI, nil
	case AgentAnthropic:
		return AgentAnthropic, nil
	case AgentClaude:
		return AgentClaude, nil
	case AgentCodex:
		return AgentCodex, nil
	default:
		return "", fmt.Errorf("invalid agent provider %q: must be one of openai, anthropic, claude, codex", agent)
	}
}

// Options configures a backend
type Options struct {
	// Model is the model name passed to the provider. Empty selects the
	// provider's default.
	Model string
	// APIKey overrides the provider's API key environment variable
	APIKey string
	// APIBase overrides the provider's API endpoint
	APIBase   string
	Timeout   time.Duration
	MaxTokens int
}

func (o Options) timeout() time.Duration {
	if o.Timeout <= 0 {
		return DefaultTimeout
	}
	return o.Timeout
}

func (o Options) maxTokens() int {
	if o.MaxTokens <= 0 {
		return DefaultMaxTokens
	}
	return o.MaxTokens
}

func (o Options) httpClient() *http.Client {
	return &http.Client{Timeout: o.timeout()}
}

// NewBackend creates a new Backend instance based on the agent type
func NewBackend(agent AgentProvider, opts Options) (Backend, error) {
	switch agent {
	case AgentOpenAI:
		return NewOpenAIBackend(opts)
	case AgentAnthropic:
		return NewAnthropicBackend(opts)
	case AgentClaude:
		return NewClaudeBackend(opts), nil
	case AgentCodex:
		return NewCodexBackend(opts), nil
	default:
		return nil, fmt.Errorf("unknown agent provider: %s", agent)
	}
}
