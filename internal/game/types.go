// Package game is the referee for a single Connections episode: it classifies
// proposed groups of four words against the puzzle and applies the result to
// the game state.
package game

import (
	"fmt"

	"github.com/itsmostafa/connections-eval/internal/puzzle"
)

// OutcomeKind classifies a submitted guess
type OutcomeKind int

const (
	KindInvalid OutcomeKind = iota
	KindCorrect
	KindPartialMatch
	KindIncorrect
)

var kindNames = map[OutcomeKind]string{
	KindInvalid:      "invalid",
	KindCorrect:      "correct",
	KindPartialMatch: "three_of_four",
	KindIncorrect:    "incorrect",
}

func (k OutcomeKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("outcome_kind(%d)", int(k))
}

// MarshalText encodes the kind by name
func (k OutcomeKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name
func (k *OutcomeKind) UnmarshalText(text []byte) error {
	for kind, name := range kindNames {
		if name == string(text) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown outcome kind: %q", text)
}

// InvalidReason explains why a guess was rejected without scoring it
type InvalidReason string

const (
	ReasonWrongCount      InvalidReason = "wrong_count"
	ReasonDuplicateWord   InvalidReason = "duplicate_word"
	ReasonUnknownWord     InvalidReason = "unknown_word"
	ReasonRepeatedGuess   InvalidReason = "repeated_guess"
	ReasonWordAlreadyUsed InvalidReason = "word_already_used"
)

// Guess is one proposed group as submitted by a guess-source. Words are raw
// tokens and are not validated.
type Guess struct {
	Words []string `json:"words"`
	// Category is the connection the guess-source proposed; informational only
	Category string `json:"category,omitempty"`
}

// Outcome is the classification of a single guess
type Outcome struct {
	Kind OutcomeKind `json:"kind"`
	// Reason is set for KindInvalid
	Reason InvalidReason `json:"reason,omitempty"`
	// Group is the solved group for KindCorrect
	Group *puzzle.Group `json:"group,omitempty"`
	// Shared is the number of words in common with the matched group for KindPartialMatch
	Shared int `json:"shared,omitempty"`
}

// Correct builds a KindCorrect outcome
func Correct(g puzzle.Group) Outcome {
	return Outcome{Kind: KindCorrect, Group: &g}
}

// PartialMatch builds a KindPartialMatch outcome
func PartialMatch(shared int) Outcome {
	return Outcome{Kind: KindPartialMatch, Shared: shared}
}

// Incorrect builds a KindIncorrect outcome
func Incorrect() Outcome {
	return Outcome{Kind: KindIncorrect}
}

// Invalid builds a KindInvalid outcome
func Invalid(reason InvalidReason) Outcome {
	return Outcome{Kind: KindInvalid, Reason: reason}
}

// Counts reports whether the outcome is a scored attempt
func (o Outcome) Counts() bool {
	return o.Kind != KindInvalid
}

// IsMistake reports whether the outcome is charged against the mistake budget
func (o Outcome) IsMistake() bool {
	return o.Kind == KindIncorrect || o.Kind == KindPartialMatch
}

func (o Outcome) String() string {
	switch o.Kind {
	case KindInvalid:
		return fmt.Sprintf("invalid(%s)", o.Reason)
	case KindPartialMatch:
		return fmt.Sprintf("partial_match(%d)", o.Shared)
	default:
		return o.Kind.String()
	}
}

// Entry is one line of the guess log
type Entry struct {
	Guess   Guess   `json:"guess"`
	Outcome Outcome `json:"outcome"`
}

// Status is the episode state derived from the game state
type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusWon        Status = "won"
	StatusLost       Status = "lost"
)

// Terminal reports whether no more guesses are accepted
func (s Status) Terminal() bool {
	return s == StatusWon || s == StatusLost
}
