package agent

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClaudeStream(t *testing.T) {
	t.Run("result line carries the reply", func(t *testing.T) {
		stream := strings.Join([]string{
			`{"type":"system","subtype":"init"}`,
			`not json`,
			`{"type":"assistant","message":{"content":[{"type":"text","text":"partial"}]}}`,
			`{"type":"result","subtype":"success","is_error":false,"result":"final answer","usage":{"input_tokens":12,"output_tokens":7}}`,
		}, "\n")

		got, err := parseClaudeStream(strings.NewReader(stream))
		require.NoError(t, err)
		assert.Equal(t, "final answer", got.Text)
		assert.Equal(t, Usage{InputTokens: 12, OutputTokens: 7}, got.Usage)
	})

	t.Run("assistant text without result", func(t *testing.T) {
		stream := `{"type":"assistant","message":{"content":[{"type":"text","text":"a"},{"type":"tool_use"},{"type":"text","text":"b"}]}}`

		got, err := parseClaudeStream(strings.NewReader(stream))
		require.NoError(t, err)
		assert.Equal(t, "ab", got.Text)
	})

	t.Run("error result", func(t *testing.T) {
		stream := `{"type":"result","subtype":"error_max_turns","is_error":true,"result":"boom"}`

		_, err := parseClaudeStream(strings.NewReader(stream))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "boom")
	})

	t.Run("empty stream", func(t *testing.T) {
		_, err := parseClaudeStream(strings.NewReader(""))
		assert.Error(t, err)
	})
}

func TestParseCodexStream(t *testing.T) {
	t.Run("agent messages and usage", func(t *testing.T) {
		stream := strings.Join([]string{
			`{"type":"thread.started"}`,
			`{"type":"item.completed","item":{"id":"1","type":"reasoning","text":"thinking"}}`,
			`{"type":"item.completed","item":{"id":"2","type":"agent_message","text":"line one"}}`,
			`{"type":"item.completed","item":{"id":"3","type":"agent_message","text":"line two"}}`,
			`{"type":"turn.completed","usage":{"input_tokens":10,"cached_input_tokens":5,"output_tokens":3}}`,
		}, "\n")

		got, err := parseCodexStream(strings.NewReader(stream))
		require.NoError(t, err)
		assert.Equal(t, "line one\nline two", got.Text)
		assert.Equal(t, Usage{InputTokens: 15, OutputTokens: 3}, got.Usage)
	})

	t.Run("error event", func(t *testing.T) {
		stream := strings.Join([]string{
			`{"type":"error","message":"rate limited"}`,
			`{"type":"turn.failed"}`,
		}, "\n")

		_, err := parseCodexStream(strings.NewReader(stream))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "rate limited")
	})

	t.Run("turn failed without message", func(t *testing.T) {
		_, err := parseCodexStream(strings.NewReader(`{"type":"turn.failed"}`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "turn failed")
	})
}

func TestRenderTranscript(t *testing.T) {
	t.Run("single user message passes through", func(t *testing.T) {
		got := RenderTranscript([]Message{{Role: RoleUser, Content: "hello"}})
		assert.Equal(t, "hello", got)
	})

	t.Run("conversation is labeled", func(t *testing.T) {
		got := RenderTranscript([]Message{
			{Role: RoleUser, Content: "start"},
			{Role: RoleAssistant, Content: "guess"},
			{Role: RoleUser, Content: "Incorrect."},
		})
		assert.Equal(t, "[USER]\nstart\n\n[ASSISTANT]\nguess\n\n[USER]\nIncorrect.\n\n[ASSISTANT]\n", got)
	})
}
