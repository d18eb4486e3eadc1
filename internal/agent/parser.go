package agent

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/itsmostafa/connections-eval/internal/game"
)

var (
	// Pattern for the model's private reasoning, removed before parsing
	scratchpadPattern = regexp.MustCompile(`(?s)<scratchpad>.*?</scratchpad>`)

	// Pattern for the first fenced block, with an optional language tag
	codeFencePattern = regexp.MustCompile("(?s)```(?:json)?(.*?)```")
)

var (
	ErrNoCodeFence = errors.New("your guess was not between code fences")
	ErrBadJSON     = errors.New("your guess JSON was incorrectly formatted")
	ErrEmptyGuess  = errors.New("your guess did not contain a category")
)

// ParseGuess extracts a guess of the form {"<category>": ["W1", "W2", "W3", "W4"]}
// from the first fenced block of a model response. Scratchpad sections are
// ignored. Only the first key of the object is used.
func ParseGuess(response string) (game.Guess, error) {
	response = scratchpadPattern.ReplaceAllString(response, "")

	match := codeFencePattern.FindStringSubmatch(response)
	if len(match) < 2 {
		return game.Guess{}, ErrNoCodeFence
	}
	body := strings.TrimSpace(match[1])

	dec := json.NewDecoder(strings.NewReader(body))
	tok, err := dec.Token()
	if err != nil || tok != json.Delim('{') {
		return game.Guess{}, ErrBadJSON
	}
	if !dec.More() {
		return game.Guess{}, ErrEmptyGuess
	}
	keyTok, err := dec.Token()
	if err != nil {
		return game.Guess{}, ErrBadJSON
	}
	category, _ := keyTok.(string)

	var words []string
	if err := dec.Decode(&words); err != nil {
		return game.Guess{}, fmt.Errorf("%w: %v", ErrBadJSON, err)
	}

	return game.Guess{Words: words, Category: category}, nil
}

// FormatGuess renders a guess in the format ParseGuess accepts.
func FormatGuess(g game.Guess) string {
	data, _ := json.Marshal(map[string][]string{g.Category: g.Words})
	return "```\n" + string(data) + "\n```"
}
