package episode

import (
	"context"

	"github.com/itsmostafa/connections-eval/internal/game"
	"github.com/itsmostafa/connections-eval/internal/puzzle"
)

// GuessSource produces one candidate guess per call. Malformed guesses are
// handled by the referee; a returned error counts as a failed attempt.
type GuessSource interface {
	RequestGuess(ctx context.Context, view View) (game.Guess, error)
}

// GuessSourceFunc adapts a function to GuessSource.
type GuessSourceFunc func(ctx context.Context, view View) (game.Guess, error)

// RequestGuess calls f.
func (f GuessSourceFunc) RequestGuess(ctx context.Context, view View) (game.Guess, error) {
	return f(ctx, view)
}

// Sink receives the final report of an episode.
type Sink interface {
	Record(ctx context.Context, report *Report) error
}

// Feedback describes the immediately preceding guess only. It never says
// which word was wrong.
type Feedback struct {
	Kind   game.OutcomeKind   `json:"kind"`
	Reason game.InvalidReason `json:"reason,omitempty"`
}

// View is everything the guess-source is allowed to see on a turn.
type View struct {
	Turn         int            `json:"turn"`
	Words        []puzzle.Word  `json:"words"`
	Mistakes     int            `json:"mistakes"`
	MistakeLimit int            `json:"mistake_limit"`
	Solved       []puzzle.Group `json:"solved"`
	// Previous is nil on the first request
	Previous *Feedback `json:"previous,omitempty"`
}

// RemainingMistakes returns how many more misses the guess-source can afford.
func (v View) RemainingMistakes() int {
	if n := v.MistakeLimit - v.Mistakes; n > 0 {
		return n
	}
	return 0
}
