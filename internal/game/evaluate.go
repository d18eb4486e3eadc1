package game

import (
	"sort"
	"strings"

	"github.com/itsmostafa/connections-eval/internal/puzzle"
)

// Evaluate classifies g against the puzzle and the current state without
// mutating either. Rules are checked in order and the first match wins:
//
//  1. wrong number of tokens
//  2. duplicate token
//  3. token not in the puzzle
//  4. same four-word set as an earlier log entry
//  5. token from an already resolved group
//  6. exact match with an unresolved group
//  7. exactly three words shared with an unresolved group (first in declared order)
//  8. incorrect
func Evaluate(p *puzzle.Puzzle, s *State, g Guess) Outcome {
	if len(g.Words) != puzzle.GroupSize {
		return Invalid(ReasonWrongCount)
	}

	words, ok := uniqueWords(g.Words)
	if !ok {
		return Invalid(ReasonDuplicateWord)
	}

	for _, w := range words {
		if !p.Contains(w) {
			return Invalid(ReasonUnknownWord)
		}
	}

	key := setKey(words)
	for _, e := range s.log {
		if prev, ok := uniqueWords(e.Guess.Words); ok && len(prev) == puzzle.GroupSize && setKey(prev) == key {
			return Invalid(ReasonRepeatedGuess)
		}
	}

	for _, w := range words {
		if s.isResolvedWord(w) {
			return Invalid(ReasonWordAlreadyUsed)
		}
	}

	unresolved := s.unresolvedGroups()
	for _, grp := range unresolved {
		if shared(grp, words) == puzzle.GroupSize {
			return Correct(grp)
		}
	}
	for _, grp := range unresolved {
		if n := shared(grp, words); n == puzzle.GroupSize-1 {
			return PartialMatch(n)
		}
	}

	return Incorrect()
}

// uniqueWords normalizes tokens and reports false if any two collide.
func uniqueWords(tokens []string) ([]puzzle.Word, bool) {
	seen := make(map[puzzle.Word]bool, len(tokens))
	out := make([]puzzle.Word, 0, len(tokens))
	for _, t := range tokens {
		w := puzzle.Normalize(t)
		if seen[w] {
			return nil, false
		}
		seen[w] = true
		out = append(out, w)
	}
	return out, true
}

// setKey is an order-independent identity for a set of words.
func setKey(words []puzzle.Word) string {
	parts := make([]string, len(words))
	for i, w := range words {
		parts[i] = string(w)
	}
	sort.Strings(parts)
	return strings.Join(parts, "\x00")
}

func shared(g puzzle.Group, words []puzzle.Word) int {
	n := 0
	for _, w := range words {
		if g.Has(w) {
			n++
		}
	}
	return n
}
