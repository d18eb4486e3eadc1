package agent

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var conversation = []Message{
	{Role: RoleUser, Content: "start"},
	{Role: RoleAssistant, Content: "first guess"},
	{Role: RoleUser, Content: "Incorrect."},
}

func TestAnthropicBackend_Complete(t *testing.T) {
	var got anthropicRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"second "},{"type":"text","text":"guess"}],"usage":{"input_tokens":30,"output_tokens":4}}`))
	}))
	defer server.Close()

	backend, err := NewAnthropicBackend(Options{APIKey: "secret", APIBase: server.URL + "/", MaxTokens: 100})
	require.NoError(t, err)

	completion, err := backend.Complete(context.Background(), conversation)
	require.NoError(t, err)

	assert.Equal(t, "second guess", completion.Text)
	assert.Equal(t, Usage{InputTokens: 30, OutputTokens: 4}, completion.Usage)
	assert.Equal(t, defaultAnthropicModel, got.Model)
	assert.Equal(t, 100, got.MaxTokens)
	require.Len(t, got.Messages, 3)
	assert.Equal(t, "assistant", got.Messages[1].Role)
}

func TestAnthropicBackend_StatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"overloaded"}`, http.StatusServiceUnavailable)
	}))
	defer server.Close()

	backend, err := NewAnthropicBackend(Options{APIKey: "secret", APIBase: server.URL})
	require.NoError(t, err)

	_, err = backend.Complete(context.Background(), conversation)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 503")
}

func TestOpenAIBackend_Complete(t *testing.T) {
	var got struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"model": "gpt-4o-mini",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "second guess"}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 21, "completion_tokens": 3, "total_tokens": 24}
		}`))
	}))
	defer server.Close()

	backend, err := NewOpenAIBackend(Options{APIKey: "secret", APIBase: server.URL + "/v1", Model: "gpt-4o-mini"})
	require.NoError(t, err)

	completion, err := backend.Complete(context.Background(), conversation)
	require.NoError(t, err)

	assert.Equal(t, "second guess", completion.Text)
	assert.Equal(t, Usage{InputTokens: 21, OutputTokens: 3}, completion.Usage)
	assert.Equal(t, "gpt-4o-mini", got.Model)
	require.Len(t, got.Messages, 3)
	assert.Equal(t, "user", got.Messages[0].Role)
	assert.Equal(t, "assistant", got.Messages[1].Role)
}

func TestOpenAIBackend_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": "chatcmpl-1", "choices": []}`))
	}))
	defer server.Close()

	backend, err := NewOpenAIBackend(Options{APIKey: "secret", APIBase: server.URL + "/v1"})
	require.NoError(t, err)

	_, err = backend.Complete(context.Background(), conversation)
	assert.Error(t, err)
}
