package eval

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/itsmostafa/connections-eval/internal/agent"
	"github.com/itsmostafa/connections-eval/internal/episode"
	"github.com/itsmostafa/connections-eval/internal/game"
	"github.com/itsmostafa/connections-eval/internal/puzzle"
)

var (
	// titleStyle for bold headers
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99"))

	// dimStyle for muted metadata text
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	// successStyle for correct guesses and wins
	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	// warnStyle for three-of-four and invalid guesses
	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("220"))

	// errorStyle for misses, losses and aborts
	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	// wordStyle for puzzle words
	wordStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255")).
			Width(12)

	// boxStyle for summary box with rounded border
	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("99")).
			Padding(0, 1)

	// headerBoxStyle for the header
	headerBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("99")).
			Padding(0, 1)

	// turnBannerStyle for turn banners
	turnBannerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("255")).
			Background(lipgloss.Color("99")).
			Padding(0, 2)
)

// Emoji per group in declared order, as in the published share format
var levelEmoji = []string{"🟩", "🟨", "🟦", "🟪"}

// Header describes an episode before it starts
type Header struct {
	Model        string
	Agent        string
	Date         string
	MistakeLimit int
	PromptHash   string
}

// FormatHeader renders the episode header
func FormatHeader(w io.Writer, h Header) {
	puzzleLine := h.Date
	if n, err := puzzle.Number(h.Date); err == nil {
		puzzleLine = fmt.Sprintf("#%d (%s)", n, h.Date)
	}

	hash := h.PromptHash
	if len(hash) > 12 {
		hash = hash[:12]
	}

	content := fmt.Sprintf("%s %s  %s %s\n%s %s\n%s %d  %s %s",
		dimStyle.Render("Model:"), titleStyle.Render(h.Model),
		dimStyle.Render("Agent:"), titleStyle.Render(h.Agent),
		dimStyle.Render("Puzzle:"), puzzleLine,
		dimStyle.Render("Mistakes allowed:"), h.MistakeLimit,
		dimStyle.Render("Prompt:"), hash,
	)

	fmt.Fprintln(w, headerBoxStyle.Render(content))
}

// FormatTurnBanner renders the turn banner and the remaining words
func FormatTurnBanner(w io.Writer, view episode.View) {
	banner := fmt.Sprintf(" TURN %d ", view.Turn)
	fmt.Fprintln(w)
	fmt.Fprintln(w, turnBannerStyle.Render(banner))

	for i := 0; i < len(view.Words); i += puzzle.GroupSize {
		end := min(i+puzzle.GroupSize, len(view.Words))
		cells := make([]string, 0, puzzle.GroupSize)
		for _, word := range view.Words[i:end] {
			cells = append(cells, wordStyle.Render(string(word)))
		}
		fmt.Fprintln(w, strings.Join(cells, " "))
	}
	fmt.Fprintln(w, dimStyle.Render(fmt.Sprintf("Mistakes: %d/%d", view.Mistakes, view.MistakeLimit)))
}

// FormatGuess renders a proposed guess
func FormatGuess(w io.Writer, g game.Guess) {
	if len(g.Words) == 0 {
		fmt.Fprintln(w, warnStyle.Render("No guess found in reply"))
		return
	}
	category := g.Category
	if category == "" {
		category = "?"
	}
	fmt.Fprintf(w, "%s %s %s %s\n",
		dimStyle.Render("Guess:"), titleStyle.Render(category),
		dimStyle.Render("->"), strings.Join(g.Words, ", "))
}

// FormatFeedback renders the outcome of the previous guess
func FormatFeedback(w io.Writer, fb episode.Feedback) {
	var line string
	switch fb.Kind {
	case game.KindCorrect:
		line = successStyle.Render("Correct")
	case game.KindPartialMatch:
		line = warnStyle.Render("One away")
	case game.KindIncorrect:
		line = errorStyle.Render("Incorrect")
	default:
		line = warnStyle.Render(fmt.Sprintf("Invalid (%s)", fb.Reason))
	}
	fmt.Fprintln(w, line)
}

// FormatSourceError renders a failed request to the guess-source
func FormatSourceError(w io.Writer, err error) {
	fmt.Fprintln(w, errorStyle.Render("Error: "+err.Error()))
}

// FormatSummary renders the episode summary box and the share grid
func FormatSummary(w io.Writer, t *Transcript) {
	duration := float64(t.DurationMs) / 1000.0

	var status string
	switch t.Outcome {
	case episode.OutcomeWon:
		status = successStyle.Render("WON")
	case episode.OutcomeLost:
		status = errorStyle.Render("LOST")
	default:
		status = errorStyle.Render(strings.ToUpper(string(t.Outcome)))
	}

	line1 := fmt.Sprintf("%s %d/%d  %s %d/%d  %s %d  %s %.1fs",
		dimStyle.Render("Solved:"), t.GroupsSolved, puzzle.NumGroups,
		dimStyle.Render("Mistakes:"), t.Mistakes, t.MistakeLimit,
		dimStyle.Render("Guesses:"), t.Attempts,
		dimStyle.Render("Duration:"), duration,
	)

	line2 := fmt.Sprintf("%s %s in %s %s out  %s",
		dimStyle.Render("Tokens:"), formatNumber(t.Usage.InputTokens),
		dimStyle.Render("->"), formatNumber(t.Usage.OutputTokens),
		status,
	)

	content := titleStyle.Render("Episode Complete") + "\n" + line1 + "\n" + line2
	if t.Error != "" {
		content += "\n" + errorStyle.Render(t.Error)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, boxStyle.Render(content))
	fmt.Fprintln(w)
	fmt.Fprintln(w, ShareGrid(t.Labels[LabelModel], t.Labels[LabelDate], t.Report))
}

// ShareGrid renders the scored guesses as rows of colored squares, one per
// word, colored by the group the word belongs to. Invalid guesses are
// omitted.
func ShareGrid(model, date string, report *episode.Report) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🤖 Connections (%s)\n", model)
	if n, err := puzzle.Number(date); err == nil {
		fmt.Fprintf(&sb, "Puzzle #%d\n", n)
	}

	groupOf := make(map[puzzle.Word]int)
	for i, g := range report.Groups {
		for _, m := range g.Members {
			groupOf[m] = i
		}
	}

	for _, entry := range report.Log {
		if !entry.Outcome.Counts() {
			continue
		}
		words := make([]string, len(entry.Guess.Words))
		for i, tok := range entry.Guess.Words {
			words[i] = string(puzzle.Normalize(tok))
		}
		sort.Strings(words)
		for _, word := range words {
			if i, ok := groupOf[puzzle.Word(word)]; ok && i < len(levelEmoji) {
				sb.WriteString(levelEmoji[i])
			}
		}
		sb.WriteString("\n")
	}
	return strings.TrimSpace(sb.String())
}

// BatchSummary counts the episodes of an eval run
type BatchSummary struct {
	Model   string
	Played  int
	Skipped int
	Won     int
	Lost    int
	Aborted int
	Failed  int
	Usage   agent.Usage
}

// WinRate returns the share of played episodes that were won
func (s BatchSummary) WinRate() float64 {
	if s.Played == 0 {
		return 0
	}
	return float64(s.Won) / float64(s.Played)
}

// FormatBatchSummary renders the eval run summary box
func FormatBatchSummary(w io.Writer, s BatchSummary, resultsPath string) {
	line1 := fmt.Sprintf("%s %d  %s %d  %s %s  %s %s  %s %s",
		dimStyle.Render("Played:"), s.Played,
		dimStyle.Render("Skipped:"), s.Skipped,
		dimStyle.Render("Won:"), successStyle.Render(fmt.Sprint(s.Won)),
		dimStyle.Render("Lost:"), errorStyle.Render(fmt.Sprint(s.Lost)),
		dimStyle.Render("Aborted:"), warnStyle.Render(fmt.Sprint(s.Aborted+s.Failed)),
	)
	line2 := fmt.Sprintf("%s %.1f%%  %s %s in %s %s out",
		dimStyle.Render("Win rate:"), s.WinRate()*100,
		dimStyle.Render("Tokens:"), formatNumber(s.Usage.InputTokens),
		dimStyle.Render("->"), formatNumber(s.Usage.OutputTokens),
	)
	line3 := fmt.Sprintf("%s %s", dimStyle.Render("Results:"), resultsPath)

	content := titleStyle.Render("Evaluation Complete: "+s.Model) + "\n" + line1 + "\n" + line2 + "\n" + line3
	fmt.Fprintln(w, boxStyle.Render(content))
}

// formatNumber adds commas to large numbers for readability
func formatNumber(n int) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	if n < 1000000 {
		return fmt.Sprintf("%d,%03d", n/1000, n%1000)
	}
	return fmt.Sprintf("%d,%03d,%03d", n/1000000, (n/1000)%1000, n%1000)
}

// displaySource prints each turn as it is requested
type displaySource struct {
	inner episode.GuessSource
	w     io.Writer
}

func (d *displaySource) RequestGuess(ctx context.Context, view episode.View) (game.Guess, error) {
	if view.Previous != nil {
		FormatFeedback(d.w, *view.Previous)
	}
	FormatTurnBanner(d.w, view)

	g, err := d.inner.RequestGuess(ctx, view)
	if err != nil {
		FormatSourceError(d.w, err)
		return g, err
	}
	FormatGuess(d.w, g)
	return g, nil
}
