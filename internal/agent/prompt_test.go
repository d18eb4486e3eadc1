package agent

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itsmostafa/connections-eval/internal/episode"
	"github.com/itsmostafa/connections-eval/internal/game"
	"github.com/itsmostafa/connections-eval/internal/puzzle"
)

func startView() episode.View {
	return episode.View{
		Turn:         1,
		Words:        puzzle.Example().AllWords(),
		MistakeLimit: 4,
	}
}

func TestPrompt_Start(t *testing.T) {
	text, err := DefaultPrompt().Start(startView())
	require.NoError(t, err)

	for _, w := range puzzle.Example().AllWords() {
		assert.Contains(t, text, string(w)+"\n")
	}
	assert.Contains(t, text, "at most 4 incorrect guesses")
	assert.Contains(t, text, "- Shades of red: BRICK, CHERRY, ROSE, RUBY")
	assert.Contains(t, text, "<scratchpad>")
	assert.NotContains(t, text, "{{")
}

func TestPrompt_Hash(t *testing.T) {
	a := DefaultPrompt().Hash()
	assert.Len(t, a, 64)
	assert.Equal(t, a, DefaultPrompt().Hash())

	other, err := ParsePrompt("Words: {{range .Words}}{{.}} {{end}}")
	require.NoError(t, err)
	assert.NotEqual(t, a, other.Hash())
}

func TestLoadPrompt(t *testing.T) {
	t.Run("empty path selects default", func(t *testing.T) {
		p, err := LoadPrompt("")
		require.NoError(t, err)
		assert.Equal(t, DefaultPrompt().Hash(), p.Hash())
	})

	t.Run("custom file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "prompt.txt")
		require.NoError(t, os.WriteFile(path, []byte("Limit {{.MistakeLimit}}: {{join .Words \",\"}}"), 0644))

		p, err := LoadPrompt(path)
		require.NoError(t, err)

		view := startView()
		view.Words = view.Words[:2]
		text, err := p.Start(view)
		require.NoError(t, err)
		assert.Equal(t, "Limit 4: BRICK,CHERRY", text)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadPrompt(filepath.Join(t.TempDir(), "nope.txt"))
		assert.Error(t, err)
	})

	t.Run("bad template", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.txt")
		require.NoError(t, os.WriteFile(path, []byte("{{.Words"), 0644))
		_, err := LoadPrompt(path)
		assert.Error(t, err)
	})
}

func TestFeedback(t *testing.T) {
	p := puzzle.Example()
	red := p.Groups()[0]
	all := p.AllWords()

	tests := []struct {
		name string
		view episode.View
		note string
		want []string
	}{
		{
			name: "correct",
			view: episode.View{
				Words: all[4:], MistakeLimit: 4, Solved: []puzzle.Group{red},
				Previous: &episode.Feedback{Kind: game.KindCorrect},
			},
			want: []string{
				"Correct! You've guessed 1/4 groups.",
				"You have 4 incorrect guesses remaining.",
				"Correct guesses so far:\n- BRICK, CHERRY, ROSE, RUBY",
				"Remaining words: DROP, SPLASH",
			},
		},
		{
			name: "three of four",
			view: episode.View{
				Words: all, Mistakes: 3, MistakeLimit: 4,
				Previous: &episode.Feedback{Kind: game.KindPartialMatch},
			},
			want: []string{
				"Incorrect, but three out of four words belong to the same category.",
				"You have 1 incorrect guess remaining.",
			},
		},
		{
			name: "incorrect",
			view: episode.View{
				Words: all, Mistakes: 1, MistakeLimit: 4,
				Previous: &episode.Feedback{Kind: game.KindIncorrect},
			},
			want: []string{"Incorrect.", "You have 3 incorrect guesses remaining."},
		},
		{
			name: "invalid reason",
			view: episode.View{
				Words: all, MistakeLimit: 4,
				Previous: &episode.Feedback{Kind: game.KindInvalid, Reason: game.ReasonWordAlreadyUsed},
			},
			want: []string{"Your guess was invalid. You cannot use a word in more than one category."},
		},
		{
			name: "parse note wins over reason",
			view: episode.View{
				Words: all, MistakeLimit: 4,
				Previous: &episode.Feedback{Kind: game.KindInvalid, Reason: game.ReasonWrongCount},
			},
			note: ErrNoCodeFence.Error(),
			want: []string{"Your guess was invalid. Your guess was not between code fences."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Feedback(tt.view, tt.note)
			for _, want := range tt.want {
				assert.Contains(t, got, want)
			}
			assert.False(t, strings.HasPrefix(got, " "))
		})
	}
}
