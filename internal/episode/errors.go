package episode

import (
	"errors"
	"fmt"
)

// ErrGuessSourceFailure marks an episode aborted because the guess-source
// kept failing. It is an infrastructure failure, not a lost game.
var ErrGuessSourceFailure = errors.New("guess source failure")

// ErrInvalidGuesses is the cause of a GuessSourceError when the source kept
// answering, but with guesses that could not be scored.
var ErrInvalidGuesses = errors.New("invalid guess")

// ErrFinished is returned when a guess is submitted to a finished episode.
var ErrFinished = errors.New("episode already finished")

// GuessSourceError carries the attempt count and the last cause.
type GuessSourceError struct {
	Attempts int
	Err      error
}

func (e *GuessSourceError) Error() string {
	return fmt.Sprintf("guess source failed after %d attempts: %v", e.Attempts, e.Err)
}

// Unwrap exposes both ErrGuessSourceFailure and the last cause.
func (e *GuessSourceError) Unwrap() []error {
	return []error{ErrGuessSourceFailure, e.Err}
}
