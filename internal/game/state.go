package game

import (
	"fmt"

	"github.com/itsmostafa/connections-eval/internal/puzzle"
)

// State is the mutable referee state of one episode. Apply is its only
// mutator; every accessor returns a copy.
type State struct {
	puzzle    *puzzle.Puzzle
	resolved  []puzzle.Group
	remaining []puzzle.Word
	mistakes  int
	log       []Entry
}

// NewState creates a fresh state with every puzzle word remaining.
func NewState(p *puzzle.Puzzle) *State {
	return &State{
		puzzle:    p,
		remaining: p.AllWords(),
	}
}

// Puzzle returns the ground truth the state refers to.
func (s *State) Puzzle() *puzzle.Puzzle {
	return s.puzzle
}

// Resolved returns the solved groups in the order they were solved.
func (s *State) Resolved() []puzzle.Group {
	out := make([]puzzle.Group, len(s.resolved))
	for i, g := range s.resolved {
		out[i] = g
		out[i].Members = append([]puzzle.Word(nil), g.Members...)
	}
	return out
}

// Remaining returns the words not yet assigned to a solved group.
func (s *State) Remaining() []puzzle.Word {
	return append([]puzzle.Word(nil), s.remaining...)
}

// Mistakes returns the number of scored guesses that were not correct.
func (s *State) Mistakes() int {
	return s.mistakes
}

// Log returns the full guess history, invalid guesses included.
func (s *State) Log() []Entry {
	out := make([]Entry, len(s.log))
	copy(out, s.log)
	return out
}

// Attempts returns the number of scored (non-invalid) guesses.
func (s *State) Attempts() int {
	n := 0
	for _, e := range s.log {
		if e.Outcome.Counts() {
			n++
		}
	}
	return n
}

// Status derives the episode status. Won takes precedence over Lost.
func (s *State) Status(mistakeLimit int) Status {
	if len(s.remaining) == 0 {
		return StatusWon
	}
	if s.mistakes >= mistakeLimit {
		return StatusLost
	}
	return StatusInProgress
}

// Clone returns an independent copy sharing only the immutable puzzle.
func (s *State) Clone() *State {
	return &State{
		puzzle:    s.puzzle,
		resolved:  s.Resolved(),
		remaining: s.Remaining(),
		mistakes:  s.mistakes,
		log:       s.Log(),
	}
}

func (s *State) isResolvedWord(w puzzle.Word) bool {
	for _, g := range s.resolved {
		if g.Has(w) {
			return true
		}
	}
	return false
}

func (s *State) unresolvedGroups() []puzzle.Group {
	var out []puzzle.Group
	for _, g := range s.puzzle.Groups() {
		if !s.isResolvedWord(g.Members[0]) {
			out = append(out, g)
		}
	}
	return out
}

// Apply records the guess and its outcome. Correct moves the group out of
// the remaining words, Incorrect and PartialMatch cost one mistake, and
// Invalid only appends to the log.
func Apply(s *State, g Guess, o Outcome) error {
	switch o.Kind {
	case KindCorrect:
		if o.Group == nil {
			return fmt.Errorf("correct outcome without a group")
		}
		if s.isResolvedWord(o.Group.Members[0]) {
			return fmt.Errorf("group %q is already resolved", o.Group.Label)
		}
		grp := *o.Group
		grp.Members = append([]puzzle.Word(nil), o.Group.Members...)
		s.resolved = append(s.resolved, grp)

		kept := s.remaining[:0]
		for _, w := range s.remaining {
			if !grp.Has(w) {
				kept = append(kept, w)
			}
		}
		s.remaining = kept
	case KindIncorrect, KindPartialMatch:
		s.mistakes++
	case KindInvalid:
	default:
		return fmt.Errorf("unknown outcome kind: %v", o.Kind)
	}

	g.Words = append([]string(nil), g.Words...)
	s.log = append(s.log, Entry{Guess: g, Outcome: o})
	return nil
}

// Submit evaluates g and applies it to a copy of s. The input state is
// left untouched.
func Submit(s *State, g Guess) (Outcome, *State) {
	o := Evaluate(s.puzzle, s, g)
	next := s.Clone()
	if err := Apply(next, g, o); err != nil {
		// Evaluate only produces outcomes Apply accepts.
		panic(err)
	}
	return o, next
}
