// Package puzzle holds the immutable ground truth of a Connections puzzle:
// sixteen unique words partitioned into four labelled groups of four.
package puzzle

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// NumGroups is the number of groups in a puzzle
	NumGroups = 4
	// GroupSize is the number of words in each group
	GroupSize = 4
	// NumWords is the total number of words in a puzzle
	NumWords = NumGroups * GroupSize
)

// ErrMalformedPuzzle is returned when ground-truth data breaks the
// four groups of four unique words invariant.
var ErrMalformedPuzzle = errors.New("malformed puzzle")

// Word is a normalized puzzle token.
type Word string

// Normalize trims surrounding whitespace and folds the token to upper case.
func Normalize(token string) Word {
	return Word(strings.ToUpper(strings.TrimSpace(token)))
}

// Group is one hidden category of the puzzle.
type Group struct {
	// Label is the category name; informational only
	Label string `json:"label"`
	// Members are the four words of the group
	Members []Word `json:"members"`
	// Level is the difficulty tier (0 easiest, 3 hardest)
	Level int `json:"level"`
}

// Has reports whether w is a member of the group.
func (g Group) Has(w Word) bool {
	for _, m := range g.Members {
		if m == w {
			return true
		}
	}
	return false
}

func (g Group) clone() Group {
	g.Members = append([]Word(nil), g.Members...)
	return g
}

// Puzzle is the validated ground truth. It is never mutated after New.
type Puzzle struct {
	groups []Group
	owner  map[Word]int
}

// New normalizes and validates groups. It fails with ErrMalformedPuzzle when
// the group or word counts are wrong, a word is blank, or a word repeats.
func New(groups []Group) (*Puzzle, error) {
	if len(groups) != NumGroups {
		return nil, fmt.Errorf("%w: expected %d groups, got %d", ErrMalformedPuzzle, NumGroups, len(groups))
	}

	p := &Puzzle{
		groups: make([]Group, 0, NumGroups),
		owner:  make(map[Word]int, NumWords),
	}
	for i, g := range groups {
		if len(g.Members) != GroupSize {
			return nil, fmt.Errorf("%w: group %q has %d words, want %d", ErrMalformedPuzzle, g.Label, len(g.Members), GroupSize)
		}
		members := make([]Word, 0, GroupSize)
		for _, m := range g.Members {
			w := Normalize(string(m))
			if w == "" {
				return nil, fmt.Errorf("%w: group %q has a blank word", ErrMalformedPuzzle, g.Label)
			}
			if prev, dup := p.owner[w]; dup {
				return nil, fmt.Errorf("%w: word %q appears in %q and %q", ErrMalformedPuzzle, w, p.labelAt(prev, groups), g.Label)
			}
			p.owner[w] = i
			members = append(members, w)
		}
		p.groups = append(p.groups, Group{Label: g.Label, Members: members, Level: g.Level})
	}

	return p, nil
}

func (p *Puzzle) labelAt(i int, raw []Group) string {
	if i < len(p.groups) {
		return p.groups[i].Label
	}
	return raw[i].Label
}

// Groups returns the groups in declared order.
func (p *Puzzle) Groups() []Group {
	out := make([]Group, len(p.groups))
	for i, g := range p.groups {
		out[i] = g.clone()
	}
	return out
}

// AllWords returns the sixteen words, grouped in declared order.
func (p *Puzzle) AllWords() []Word {
	out := make([]Word, 0, NumWords)
	for _, g := range p.groups {
		out = append(out, g.Members...)
	}
	return out
}

// Contains reports whether w is one of the puzzle's words.
func (p *Puzzle) Contains(w Word) bool {
	_, ok := p.owner[w]
	return ok
}

// GroupContaining returns the group owning w, or false if w is not a puzzle word.
func (p *Puzzle) GroupContaining(w Word) (Group, bool) {
	i, ok := p.owner[w]
	if !ok {
		return Group{}, false
	}
	return p.groups[i].clone(), true
}

// GroupIndex returns the declared position of the group owning w, or -1.
func (p *Puzzle) GroupIndex(w Word) int {
	i, ok := p.owner[w]
	if !ok {
		return -1
	}
	return i
}
