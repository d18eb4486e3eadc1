package agent

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"sort"
	"strings"
	"text/template"

	"github.com/itsmostafa/connections-eval/internal/episode"
	"github.com/itsmostafa/connections-eval/internal/game"
	"github.com/itsmostafa/connections-eval/internal/puzzle"
)

const defaultPromptText = `"Connections" is a word categorization game. I will give you {{.NumWords}} words and your goal is to find {{.NumGroups}} groups of {{.GroupSize}} words that share a common category. Every word belongs to exactly one category in the solution. Watch out for words that look like they fit more than one category; solving the obvious groups first narrows down the rest. You may make at most {{.MistakeLimit}} incorrect guesses.

You will propose one group of {{.GroupSize}} words at a time together with the category that connects them. I will tell you whether the group is correct. The category name does not need to be exact; only the words matter. If three of your four words belong to the same category I will say so, otherwise I will just say correct or incorrect.

Invalid guesses do not cost you a mistake, so keep trying if one is rejected.

The connection between words is never vague. It is clear and unambiguous, though not always obvious at first glance.

Categories are sometimes "outside the box". Some examples in the form ` + "`Category: WORD1, WORD2, WORD3, WORD4`" + `:

- Starts of planet names: EAR, MAR, MER, SAT
- Second ___: FIDDLE, GUESS, NATURE, WIND
- Associated with "stub": CIGARETTE, PENCIL, TICKET, TOE
- ___ Dream: AMERICAN, FEVER, LUCID, PIPE

Here is a fully solved example puzzle.

Words:

{{range .ExampleWords}}{{.}}
{{end}}
Solution:

{{range .Example}}- {{.Label}}: {{join .Words ", "}}
{{end}}
Here are the {{.NumWords}} words:

{{range .Words}}{{.}}
{{end}}
First think inside <scratchpad> tags. Make loose groupings and look for one of the easier groups. Then make your first guess.

Output each guess in the following format inside the backticks:

` + "```" + `
{"<category>": ["<word_1>", "<word_2>", "<word_3>", "<word_4>"]}
` + "```" + `

For example:

` + "```" + `
{"Types of fish": ["SALMON", "TROUT", "BASS", "STURGEON"]}
` + "```" + `

Good luck!
`

// PromptGroup is a solved group rendered in the worked example
type PromptGroup struct {
	Label string
	Words []string
}

// PromptData is the data available to a start prompt template
type PromptData struct {
	Words        []string
	MistakeLimit int
	Example      []PromptGroup
	ExampleWords []string
	NumWords     int
	NumGroups    int
	GroupSize    int
}

// Prompt renders the opening message of an episode
type Prompt struct {
	source string
	tmpl   *template.Template
}

var promptFuncs = template.FuncMap{"join": strings.Join}

// DefaultPrompt returns the built-in start prompt
func DefaultPrompt() *Prompt {
	p, err := ParsePrompt(defaultPromptText)
	if err != nil {
		panic(err)
	}
	return p
}

// ParsePrompt compiles a start prompt template
func ParsePrompt(text string) (*Prompt, error) {
	tmpl, err := template.New("prompt").Funcs(promptFuncs).Parse(text)
	if err != nil {
		return nil, fmt.Errorf("failed to parse prompt template: %w", err)
	}
	return &Prompt{source: text, tmpl: tmpl}, nil
}

// LoadPrompt reads a prompt template from path. An empty path selects the
// built-in prompt.
func LoadPrompt(path string) (*Prompt, error) {
	if path == "" {
		return DefaultPrompt(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompt file: %w", err)
	}
	return ParsePrompt(string(data))
}

// Hash identifies the prompt template in result file names
func (p *Prompt) Hash() string {
	sum := sha256.Sum256([]byte(p.source))
	return hex.EncodeToString(sum[:])
}

// Start renders the opening message for view
func (p *Prompt) Start(view episode.View) (string, error) {
	data := PromptData{
		Words:        wordStrings(view.Words),
		MistakeLimit: view.MistakeLimit,
		NumWords:     puzzle.NumWords,
		NumGroups:    puzzle.NumGroups,
		GroupSize:    puzzle.GroupSize,
	}
	for _, g := range puzzle.Example().Groups() {
		words := wordStrings(g.Members)
		data.Example = append(data.Example, PromptGroup{Label: g.Label, Words: words})
		data.ExampleWords = append(data.ExampleWords, words...)
	}
	sort.Strings(data.ExampleWords)

	var buf bytes.Buffer
	if err := p.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render prompt: %w", err)
	}
	return buf.String(), nil
}

// Feedback builds the message sent after a guess. note replaces the generic
// explanation of an invalid guess when the reply could not be parsed.
func Feedback(view episode.View, note string) string {
	var sb strings.Builder

	if fb := view.Previous; fb != nil {
		switch fb.Kind {
		case game.KindCorrect:
			fmt.Fprintf(&sb, "Correct! You've guessed %d/%d groups.", len(view.Solved), puzzle.NumGroups)
		case game.KindPartialMatch:
			sb.WriteString("Incorrect, but three out of four words belong to the same category.")
		case game.KindIncorrect:
			sb.WriteString("Incorrect.")
		case game.KindInvalid:
			reason := note
			if reason == "" {
				reason = invalidExplanation(fb.Reason)
			}
			fmt.Fprintf(&sb, "Your guess was invalid. %s.", capitalize(reason))
		}
	}

	remaining := view.RemainingMistakes()
	plural := "es"
	if remaining == 1 {
		plural = ""
	}
	fmt.Fprintf(&sb, " You have %d incorrect guess%s remaining.", remaining, plural)

	if len(view.Solved) > 0 {
		sb.WriteString("\nCorrect guesses so far:")
		for _, g := range view.Solved {
			fmt.Fprintf(&sb, "\n- %s", strings.Join(wordStrings(g.Members), ", "))
		}
	}
	if len(view.Words) > 0 && len(view.Words) < puzzle.NumWords {
		fmt.Fprintf(&sb, "\nRemaining words: %s", strings.Join(wordStrings(view.Words), ", "))
	}

	return strings.TrimSpace(sb.String())
}

func invalidExplanation(reason game.InvalidReason) string {
	switch reason {
	case game.ReasonWrongCount:
		return fmt.Sprintf("your guess must contain %d words", puzzle.GroupSize)
	case game.ReasonDuplicateWord:
		return fmt.Sprintf("your guess must contain %d different words", puzzle.GroupSize)
	case game.ReasonUnknownWord:
		return "your guess contained a word that is not in the puzzle"
	case game.ReasonRepeatedGuess:
		return "you have already guessed this group of words"
	case game.ReasonWordAlreadyUsed:
		return "you cannot use a word in more than one category"
	default:
		return string(reason)
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func wordStrings(words []puzzle.Word) []string {
	out := make([]string, len(words))
	for i, w := range words {
		out[i] = string(w)
	}
	return out
}
