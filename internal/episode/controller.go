// Package episode drives one evaluation episode: it asks a guess-source for
// guesses, referees them with the game package and decides when to stop.
package episode

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/itsmostafa/connections-eval/internal/game"
	"github.com/itsmostafa/connections-eval/internal/puzzle"
)

const (
	DefaultMistakeLimit = 4
	DefaultRetryCap     = 3
	DefaultSeed         = 42
)

// Config holds per-episode limits
type Config struct {
	// MistakeLimit is the number of misses that loses the game (default 4)
	MistakeLimit int
	// RetryCap is how many times a turn is re-requested after a failed
	// attempt before the episode aborts (default 3)
	RetryCap int
	// Seed fixes the display order of the words (default 42)
	Seed uint64
	// Logger defaults to a no-op logger
	Logger *zerolog.Logger
	// Labels are copied into every report, e.g. model and puzzle date
	Labels map[string]string
}

func (c Config) withDefaults() (Config, error) {
	if c.MistakeLimit < 0 {
		return c, fmt.Errorf("mistake limit must be positive, got %d", c.MistakeLimit)
	}
	if c.RetryCap < 0 {
		return c, fmt.Errorf("retry cap must not be negative, got %d", c.RetryCap)
	}
	if c.MistakeLimit == 0 {
		c.MistakeLimit = DefaultMistakeLimit
	}
	if c.RetryCap == 0 {
		c.RetryCap = DefaultRetryCap
	}
	if c.Seed == 0 {
		c.Seed = DefaultSeed
	}
	if c.Logger == nil {
		nop := zerolog.Nop()
		c.Logger = &nop
	}
	return c, nil
}

// Controller owns the state of a single episode. It is not safe for
// concurrent use; independent episodes share nothing.
type Controller struct {
	id       string
	puzzle   *puzzle.Puzzle
	source   GuessSource
	cfg      Config
	log      zerolog.Logger
	state    *game.State
	order    []puzzle.Word
	previous *Feedback
	status   game.Status
	turn     int
	err      error
	started  time.Time
	ended    time.Time
}

// New creates a controller for p. The words are shuffled once into a fixed
// display order derived from cfg.Seed.
func New(p *puzzle.Puzzle, src GuessSource, cfg Config) (*Controller, error) {
	if p == nil {
		return nil, fmt.Errorf("puzzle is required")
	}
	if src == nil {
		return nil, fmt.Errorf("guess source is required")
	}
	cfg, err := cfg.withDefaults()
	if err != nil {
		return nil, err
	}

	order := p.AllWords()
	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed))
	rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

	id := uuid.New().String()
	return &Controller{
		id:     id,
		puzzle: p,
		source: src,
		cfg:    cfg,
		log:    cfg.Logger.With().Str("episode", id).Logger(),
		state:  game.NewState(p),
		order:  order,
		status: game.StatusInProgress,
	}, nil
}

// ID returns the episode identifier.
func (c *Controller) ID() string {
	return c.id
}

// Status returns the current episode status.
func (c *Controller) Status() game.Status {
	return c.status
}

// View returns what the guess-source may see for the current turn.
func (c *Controller) View() View {
	remaining := make(map[puzzle.Word]bool)
	for _, w := range c.state.Remaining() {
		remaining[w] = true
	}
	words := make([]puzzle.Word, 0, len(remaining))
	for _, w := range c.order {
		if remaining[w] {
			words = append(words, w)
		}
	}

	v := View{
		Turn:         c.turn + 1,
		Words:        words,
		Mistakes:     c.state.Mistakes(),
		MistakeLimit: c.cfg.MistakeLimit,
		Solved:       c.state.Resolved(),
	}
	if c.previous != nil {
		fb := *c.previous
		v.Previous = &fb
	}
	return v
}

// Submit referees one guess and applies it. Invalid outcomes leave the
// status unchanged; scored outcomes re-evaluate won/lost.
func (c *Controller) Submit(g game.Guess) (game.Outcome, error) {
	if c.status.Terminal() || c.err != nil {
		return game.Outcome{}, ErrFinished
	}
	if c.started.IsZero() {
		c.started = time.Now()
	}

	o := game.Evaluate(c.puzzle, c.state, g)
	if err := game.Apply(c.state, g, o); err != nil {
		return o, fmt.Errorf("failed to apply guess: %w", err)
	}
	c.previous = &Feedback{Kind: o.Kind, Reason: o.Reason}

	event := c.log.Info()
	if !o.Counts() {
		event = c.log.Warn()
	}
	event.Int("turn", c.turn+1).
		Strs("words", g.Words).
		Str("outcome", o.String()).
		Int("mistakes", c.state.Mistakes()).
		Msg("guess evaluated")

	if o.Counts() {
		c.turn++
		c.status = c.state.Status(c.cfg.MistakeLimit)
		if c.status.Terminal() {
			c.ended = time.Now()
			c.log.Info().
				Str("status", string(c.status)).
				Int("mistakes", c.state.Mistakes()).
				Int("solved", len(c.state.Resolved())).
				Msg("episode finished")
		}
	}
	return o, nil
}

// Run requests and referees guesses until the game is won or lost. A turn is
// re-requested after an invalid guess or a guess-source error; more than
// RetryCap consecutive failures abort with ErrGuessSourceFailure. Context
// cancellation aborts between guesses. The report is returned in every case.
func (c *Controller) Run(ctx context.Context) (*Report, error) {
	if c.status.Terminal() || c.err != nil {
		return c.Report(), ErrFinished
	}
	if c.started.IsZero() {
		c.started = time.Now()
	}
	c.log.Info().
		Int("mistake_limit", c.cfg.MistakeLimit).
		Int("retry_cap", c.cfg.RetryCap).
		Msg("episode started")

	for !c.status.Terminal() {
		failures := 0
		for {
			if err := ctx.Err(); err != nil {
				return c.abort(err)
			}

			g, err := c.source.RequestGuess(ctx, c.View())
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return c.abort(ctxErr)
				}
				failures++
				c.log.Warn().Err(err).Int("attempt", failures).Msg("guess source error")
				if failures > c.cfg.RetryCap {
					return c.abort(&GuessSourceError{Attempts: failures, Err: err})
				}
				continue
			}

			o, err := c.Submit(g)
			if err != nil {
				return c.abort(err)
			}
			if o.Counts() {
				break
			}

			failures++
			if failures > c.cfg.RetryCap {
				return c.abort(&GuessSourceError{
					Attempts: failures,
					Err:      fmt.Errorf("%w: %s", ErrInvalidGuesses, o.Reason),
				})
			}
		}
	}

	return c.Report(), nil
}

func (c *Controller) abort(err error) (*Report, error) {
	c.err = err
	c.ended = time.Now()
	c.log.Error().Err(err).Int("mistakes", c.state.Mistakes()).Msg("episode aborted")
	return c.Report(), err
}
