package agent

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// CLIBackend drives an agent CLI in non-interactive mode. Agent CLIs are
// single-shot, so the whole conversation is rendered into one prompt and
// written to stdin on every call.
type CLIBackend struct {
	name    string
	model   string
	command string
	args    []string
	parse   func(r io.Reader) (Completion, error)
	opts    Options
}

// NewClaudeBackend runs `claude -p` with stream-json output
func NewClaudeBackend(opts Options) *CLIBackend {
	args := []string{"-p", "--output-format=stream-json", "--verbose"}
	if opts.Model != "" {
		args = append(args, "--model", opts.Model)
	}
	return &CLIBackend{
		name:    string(AgentClaude),
		model:   modelOrDefault(opts.Model, "claude-sonnet-4-20250514"),
		command: "claude",
		args:    args,
		parse:   parseClaudeStream,
		opts:    opts,
	}
}

// NewCodexBackend runs `codex exec --json` reading the prompt from stdin
func NewCodexBackend(opts Options) *CLIBackend {
	args := []string{"exec", "--json", "--sandbox", "read-only"}
	if opts.Model != "" {
		args = append(args, "--model", opts.Model)
	}
	args = append(args, "-")
	return &CLIBackend{
		name:    string(AgentCodex),
		model:   modelOrDefault(opts.Model, "codex-mini-latest"),
		command: "codex",
		args:    args,
		parse:   parseCodexStream,
		opts:    opts,
	}
}

func modelOrDefault(model, def string) string {
	if model == "" {
		return def
	}
	return model
}

// Name returns the provider name
func (b *CLIBackend) Name() string {
	return b.name
}

// Model returns the model being used
func (b *CLIBackend) Model() string {
	return b.model
}

// Args returns the command line the backend runs
func (b *CLIBackend) Args() []string {
	return append([]string{b.command}, b.args...)
}

// Complete runs the CLI once with the rendered conversation on stdin
func (b *CLIBackend) Complete(ctx context.Context, messages []Message) (Completion, error) {
	ctx, cancel := context.WithTimeout(ctx, b.opts.timeout())
	defer cancel()

	cmd := exec.CommandContext(ctx, b.command, b.args...)
	cmd.Stdin = strings.NewReader(RenderTranscript(messages))

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return Completion{}, fmt.Errorf("failed to create stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return Completion{}, fmt.Errorf("failed to start %s: %w", b.command, err)
	}

	completion, parseErr := b.parse(stdout)
	// drain so Wait does not block on a full pipe
	_, _ = io.Copy(io.Discard, stdout)

	if err := cmd.Wait(); err != nil {
		if ctx.Err() != nil {
			return Completion{}, ctx.Err()
		}
		return Completion{}, fmt.Errorf("%s exited: %w: %s", b.command, err, strings.TrimSpace(stderr.String()))
	}
	if parseErr != nil {
		return Completion{}, fmt.Errorf("failed to parse %s output: %w", b.command, parseErr)
	}
	return completion, nil
}

// RenderTranscript flattens a conversation into a single prompt. A lone user
// message is passed through unchanged.
func RenderTranscript(messages []Message) string {
	if len(messages) == 1 && messages[0].Role == RoleUser {
		return messages[0].Content
	}
	var sb strings.Builder
	for i, msg := range messages {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		label := "USER"
		if msg.Role == RoleAssistant {
			label = "ASSISTANT"
		}
		fmt.Fprintf(&sb, "[%s]\n%s", label, msg.Content)
	}
	sb.WriteString("\n\n[ASSISTANT]\n")
	return sb.String()
}

func newLineScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	// Increase buffer size for large JSON lines
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)
	return scanner
}

// parseClaudeStream reads claude's stream-json output. The final result line
// carries the reply; assistant text blocks are the fallback.
func parseClaudeStream(r io.Reader) (Completion, error) {
	scanner := newLineScanner(r)

	var text strings.Builder
	var result *streamResult

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var msg streamMessage
		if err := json.Unmarshal(line, &msg); err != nil {
			// Not valid JSON, skip
			continue
		}

		switch msg.Type {
		case "result":
			var res streamResult
			if err := json.Unmarshal(line, &res); err != nil {
				continue
			}
			result = &res
		case "assistant":
			var am streamAssistant
			if err := json.Unmarshal(line, &am); err != nil {
				continue
			}
			for _, block := range am.Message.Content {
				if block.Type == "text" {
					text.WriteString(block.Text)
				}
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return Completion{}, err
	}

	if result == nil {
		if text.Len() == 0 {
			return Completion{}, fmt.Errorf("no result in stream")
		}
		return Completion{Text: text.String()}, nil
	}
	if result.IsError {
		return Completion{}, fmt.Errorf("claude reported an error (%s): %s", result.Subtype, result.Result)
	}
	reply := result.Result
	if reply == "" {
		reply = text.String()
	}
	return Completion{Text: reply, Usage: result.Usage}, nil
}

// parseCodexStream reads codex's --json event stream. Agent messages form the
// reply; turn.completed events carry usage.
func parseCodexStream(r io.Reader) (Completion, error) {
	scanner := newLineScanner(r)

	var text strings.Builder
	var usage Usage
	var errMsg string
	var failed bool

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var event codexEvent
		if err := json.Unmarshal(line, &event); err != nil {
			continue
		}

		switch event.Type {
		case "turn.completed":
			var turn codexTurnCompleted
			if err := json.Unmarshal(line, &turn); err == nil {
				usage.InputTokens += turn.Usage.InputTokens + turn.Usage.CachedInputTokens
				usage.OutputTokens += turn.Usage.OutputTokens
			}
		case "turn.failed":
			failed = true
		case "error":
			failed = true
			var e codexError
			if err := json.Unmarshal(line, &e); err == nil && e.Message != "" {
				errMsg = e.Message
			}
		case "item.completed":
			var item codexItemEvent
			if err := json.Unmarshal(line, &item); err != nil {
				continue
			}
			if item.Item.Type == "agent_message" && item.Item.Text != "" {
				if text.Len() > 0 {
					text.WriteString("\n")
				}
				text.WriteString(item.Item.Text)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return Completion{}, err
	}

	if failed {
		if errMsg == "" {
			errMsg = "turn failed"
		}
		return Completion{}, fmt.Errorf("codex reported an error: %s", errMsg)
	}
	return Completion{Text: text.String(), Usage: usage}, nil
}
