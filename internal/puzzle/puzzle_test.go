package puzzle

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want Word
	}{
		{"brick", "BRICK"},
		{"  Ruby\t", "RUBY"},
		{"SPOT", "SPOT"},
		{"   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNew_Valid(t *testing.T) {
	p, err := New(exampleGroups)
	require.NoError(t, err)

	words := p.AllWords()
	assert.Len(t, words, NumWords)
	assert.Len(t, p.Groups(), NumGroups)

	seen := make(map[Word]bool)
	for _, w := range words {
		assert.False(t, seen[w], "duplicate word %s", w)
		seen[w] = true
	}
}

func TestNew_NormalizesWords(t *testing.T) {
	groups := []Group{
		{Label: "a", Members: []Word{"brick", " cherry", "Rose ", "RUBY"}},
		{Label: "b", Members: []Word{"drop", "splash", "spot", "sprinkle"}},
		{Label: "c", Members: []Word{"bird", "bubble", "mud", "sponge"}},
		{Label: "d", Members: []Word{"best", "cream", "pick", "top"}},
	}

	p, err := New(groups)
	require.NoError(t, err)
	assert.True(t, p.Contains("CHERRY"))
	assert.True(t, p.Contains("ROSE"))
	assert.False(t, p.Contains("cherry"))
}

func TestNew_Malformed(t *testing.T) {
	valid := func() []Group {
		out := make([]Group, len(exampleGroups))
		for i, g := range exampleGroups {
			out[i] = g.clone()
		}
		return out
	}

	tests := []struct {
		name   string
		mutate func([]Group) []Group
	}{
		{
			name:   "too few groups",
			mutate: func(g []Group) []Group { return g[:3] },
		},
		{
			name: "too many groups",
			mutate: func(g []Group) []Group {
				return append(g, Group{Label: "extra", Members: []Word{"W", "X", "Y", "Z"}})
			},
		},
		{
			name: "group with three words",
			mutate: func(g []Group) []Group {
				g[1].Members = g[1].Members[:3]
				return g
			},
		},
		{
			name: "group with five words",
			mutate: func(g []Group) []Group {
				g[2].Members = append(g[2].Members, "EXTRA")
				return g
			},
		},
		{
			name: "duplicate across groups",
			mutate: func(g []Group) []Group {
				g[3].Members[0] = "BRICK"
				return g
			},
		},
		{
			name: "duplicate within group after normalization",
			mutate: func(g []Group) []Group {
				g[0].Members[1] = "brick "
				return g
			},
		},
		{
			name: "blank word",
			mutate: func(g []Group) []Group {
				g[0].Members[3] = "  "
				return g
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.mutate(valid()))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedPuzzle), "got %v", err)
		})
	}
}

func TestGroupContaining_TotalOverAllWords(t *testing.T) {
	p := Example()

	for _, w := range p.AllWords() {
		g, ok := p.GroupContaining(w)
		require.True(t, ok, "word %s has no group", w)
		assert.True(t, g.Has(w))
		assert.Equal(t, g.Label, p.Groups()[p.GroupIndex(w)].Label)
	}

	for _, w := range []Word{"", "APPLE", "brick", "BRICKS"} {
		_, ok := p.GroupContaining(w)
		assert.False(t, ok, "unexpected group for %q", w)
		assert.Equal(t, -1, p.GroupIndex(w))
	}
}

func TestPuzzle_Immutable(t *testing.T) {
	p := Example()

	groups := p.Groups()
	groups[0].Members[0] = "CHANGED"
	groups[0].Label = "changed"

	g, ok := p.GroupContaining("BRICK")
	require.True(t, ok)
	g.Members[1] = "CHANGED"

	assert.Equal(t, "Shades of red", p.Groups()[0].Label)
	assert.Equal(t, Word("BRICK"), p.Groups()[0].Members[0])
	assert.Equal(t, Word("CHERRY"), p.Groups()[0].Members[1])
	assert.False(t, p.Contains("CHANGED"))
}
