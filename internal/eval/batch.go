package eval

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/itsmostafa/connections-eval/internal/episode"
)

// DefaultParallelism is the number of episodes played at once
const DefaultParallelism = 10

// RunBatch plays every date concurrently, at most parallelism at a time.
// Dates that already have a result are skipped. A failed episode is logged
// and counted; only a failure to persist results stops the batch.
func (r *Runner) RunBatch(ctx context.Context, dates []string, parallelism int) (BatchSummary, error) {
	if parallelism <= 0 {
		parallelism = DefaultParallelism
	}

	var summary BatchSummary
	if r.Results != nil {
		summary.Model = r.Results.Model()
	}

	// concurrent episodes must not share the terminal
	worker := *r
	worker.Output = nil

	var mu sync.Mutex
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)

	for _, date := range dates {
		if r.Results != nil && r.Results.Has(r.Results.Model(), date) {
			r.Logger.Debug().Str("date", date).Msg("result exists, skipping")
			mu.Lock()
			summary.Skipped++
			mu.Unlock()
			continue
		}
		if gCtx.Err() != nil {
			break
		}

		g.Go(func() error {
			t, err := worker.Play(gCtx, date)

			mu.Lock()
			defer mu.Unlock()

			if t != nil {
				summary.Usage.Add(t.Usage)
			}

			switch {
			case t == nil:
				summary.Failed++
				r.Logger.Error().Str("date", date).Err(err).Msg("episode failed to start")
				return nil
			case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
				return err
			case err != nil && !errors.Is(err, episode.ErrGuessSourceFailure):
				// persisting the episode failed
				return fmt.Errorf("episode %s: %w", date, err)
			}

			summary.Played++
			switch t.Outcome {
			case episode.OutcomeWon:
				summary.Won++
			case episode.OutcomeLost:
				summary.Lost++
			default:
				summary.Aborted++
			}
			r.Logger.Info().
				Str("date", date).
				Str("outcome", string(t.Outcome)).
				Int("mistakes", t.Mistakes).
				Int("solved", t.GroupsSolved).
				Msg("episode complete")
			return nil
		})
	}

	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	return summary, err
}
