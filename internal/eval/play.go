// Package eval plays episodes against model backends and records the
// results: one puzzle at a time or a whole archive in parallel.
package eval

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/itsmostafa/connections-eval/internal/agent"
	"github.com/itsmostafa/connections-eval/internal/episode"
	"github.com/itsmostafa/connections-eval/internal/puzzle"
)

// BackendFactory creates a fresh backend for each episode
type BackendFactory func() (agent.Backend, error)

// Runner plays episodes. Results and Transcripts are optional.
type Runner struct {
	Puzzles     puzzle.Source
	NewBackend  BackendFactory
	Prompt      *agent.Prompt
	Episode     episode.Config
	Results     *ResultStore
	Transcripts *TranscriptStore
	Logger      zerolog.Logger
	// Output receives the styled turn-by-turn display; nil disables it
	Output io.Writer
}

// Play runs one episode for the puzzle of date. The returned transcript is
// non-nil whenever the episode started, even if it was aborted.
func (r *Runner) Play(ctx context.Context, date string) (*Transcript, error) {
	p, err := r.Puzzles.Load(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("failed to load puzzle %s: %w", date, err)
	}

	backend, err := r.NewBackend()
	if err != nil {
		return nil, fmt.Errorf("failed to create backend: %w", err)
	}

	prompt := r.Prompt
	if prompt == nil {
		prompt = agent.DefaultPrompt()
	}

	log := r.Logger.With().Str("date", date).Logger()
	guesser := agent.NewGuesser(backend, prompt, log)

	cfg := r.Episode
	cfg.Logger = &log
	cfg.Labels = map[string]string{
		LabelModel:      backend.Model(),
		LabelAgent:      backend.Name(),
		LabelDate:       date,
		LabelPromptHash: prompt.Hash(),
	}

	var source episode.GuessSource = guesser
	if r.Output != nil {
		source = &displaySource{inner: guesser, w: r.Output}
	}

	ctrl, err := episode.New(p, source, cfg)
	if err != nil {
		return nil, err
	}

	if r.Output != nil {
		FormatHeader(r.Output, Header{
			Model:        backend.Model(),
			Agent:        backend.Name(),
			Date:         date,
			MistakeLimit: ctrl.View().MistakeLimit,
			PromptHash:   prompt.Hash(),
		})
	}

	report, runErr := ctrl.Run(ctx)
	t := &Transcript{
		Report:   report,
		Messages: guesser.Messages(),
		Usage:    guesser.Usage(),
	}

	if r.Output != nil {
		FormatSummary(r.Output, t)
	}

	if err := r.record(ctx, t, runErr); err != nil {
		return t, err
	}
	return t, runErr
}

// record persists a finished episode. Aborts caused by infrastructure
// failures or cancellation leave no result so the date is retried on the
// next run; aborts caused by invalid guesses are scored.
func (r *Runner) record(ctx context.Context, t *Transcript, runErr error) error {
	if r.Transcripts != nil {
		if err := r.Transcripts.Save(t); err != nil {
			return err
		}
	}
	if r.Results == nil || !Scored(t.Report, runErr) {
		return nil
	}
	return r.Results.Record(ctx, t.Report)
}

// Scored reports whether an episode's outcome belongs in the results file
func Scored(report *episode.Report, runErr error) bool {
	switch report.Outcome {
	case episode.OutcomeWon, episode.OutcomeLost:
		return true
	case episode.OutcomeAborted:
		return errors.Is(runErr, episode.ErrInvalidGuesses)
	default:
		return false
	}
}
