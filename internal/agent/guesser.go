package agent

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/itsmostafa/connections-eval/internal/episode"
	"github.com/itsmostafa/connections-eval/internal/game"
)

// Guesser is a GuessSource that holds one conversation with a model. The
// start prompt opens the conversation and every later request carries the
// feedback for the previous guess.
type Guesser struct {
	backend  Backend
	prompt   *Prompt
	log      zerolog.Logger
	messages []Message
	usage    Usage
	// note explains why the last reply could not be parsed
	note string

	// OnReply, if set, is called with every raw model reply
	OnReply func(view episode.View, reply string)
}

// NewGuesser creates a guesser. A nil prompt selects the built-in one.
func NewGuesser(backend Backend, prompt *Prompt, logger zerolog.Logger) *Guesser {
	if prompt == nil {
		prompt = DefaultPrompt()
	}
	return &Guesser{
		backend: backend,
		prompt:  prompt,
		log:     logger.With().Str("agent", backend.Name()).Str("model", backend.Model()).Logger(),
	}
}

// RequestGuess implements episode.GuessSource. Replies that cannot be parsed
// come back as an empty guess, which the referee rejects as wrong_count.
func (g *Guesser) RequestGuess(ctx context.Context, view episode.View) (game.Guess, error) {
	var content string
	if len(g.messages) == 0 {
		start, err := g.prompt.Start(view)
		if err != nil {
			return game.Guess{}, err
		}
		content = start
	} else {
		content = Feedback(view, g.note)
	}

	g.messages = append(g.messages, Message{Role: RoleUser, Content: content})
	completion, err := g.backend.Complete(ctx, g.messages)
	if err != nil {
		// keep the conversation well-formed for the retry
		g.messages = g.messages[:len(g.messages)-1]
		return game.Guess{}, err
	}
	g.messages = append(g.messages, Message{Role: RoleAssistant, Content: completion.Text})
	g.usage.Add(completion.Usage)

	if g.OnReply != nil {
		g.OnReply(view, completion.Text)
	}

	guess, err := ParseGuess(completion.Text)
	if err != nil {
		g.note = err.Error()
		g.log.Warn().Int("turn", view.Turn).Err(err).Msg("unparseable reply")
		return game.Guess{}, nil
	}
	g.note = ""

	g.log.Debug().Int("turn", view.Turn).Str("category", guess.Category).Strs("words", guess.Words).Msg("guess parsed")
	return guess, nil
}

// Messages returns a copy of the conversation so far
func (g *Guesser) Messages() []Message {
	out := make([]Message, len(g.messages))
	copy(out, g.messages)
	return out
}

// Usage returns the accumulated token usage
func (g *Guesser) Usage() Usage {
	return g.usage
}

// Backend returns the backend the guesser talks to
func (g *Guesser) Backend() Backend {
	return g.backend
}

// PromptHash returns the hash of the start prompt template
func (g *Guesser) PromptHash() string {
	return g.prompt.Hash()
}
