package episode

import (
	"time"

	"github.com/itsmostafa/connections-eval/internal/game"
	"github.com/itsmostafa/connections-eval/internal/puzzle"
)

// Outcome is the final result of an episode
type Outcome string

const (
	OutcomeInProgress Outcome = "in_progress"
	OutcomeWon        Outcome = "won"
	OutcomeLost       Outcome = "lost"
	OutcomeAborted    Outcome = "aborted"
)

// Report is a read-only snapshot of an episode, final or partial.
type Report struct {
	EpisodeID    string            `json:"episode_id"`
	Outcome      Outcome           `json:"outcome"`
	Mistakes     int               `json:"mistakes"`
	MistakeLimit int               `json:"mistake_limit"`
	GroupsSolved int               `json:"groups_solved"`
	Attempts     int               `json:"attempts"`
	Solved       []puzzle.Group    `json:"solved"`
	Groups       []puzzle.Group    `json:"groups"`
	Log          []game.Entry      `json:"log"`
	Error        string            `json:"error,omitempty"`
	Labels       map[string]string `json:"labels,omitempty"`
	StartedAt    time.Time         `json:"started_at"`
	DurationMs   int64             `json:"duration_ms"`
}

// Won reports whether every group was solved.
func (r *Report) Won() bool {
	return r.Outcome == OutcomeWon
}

// LevelsSolved maps each difficulty level to whether its group was solved.
func (r *Report) LevelsSolved() map[int]bool {
	levels := make(map[int]bool, len(r.Groups))
	for _, g := range r.Groups {
		levels[g.Level] = false
	}
	for _, g := range r.Solved {
		levels[g.Level] = true
	}
	return levels
}

// Report returns a snapshot of the episode. It can be called at any point;
// the log up to that point is always complete.
func (c *Controller) Report() *Report {
	r := &Report{
		EpisodeID:    c.id,
		Outcome:      c.outcome(),
		Mistakes:     c.state.Mistakes(),
		MistakeLimit: c.cfg.MistakeLimit,
		Attempts:     c.state.Attempts(),
		Solved:       c.state.Resolved(),
		Groups:       c.puzzle.Groups(),
		Log:          c.state.Log(),
		StartedAt:    c.started,
	}
	if len(c.cfg.Labels) > 0 {
		r.Labels = make(map[string]string, len(c.cfg.Labels))
		for k, v := range c.cfg.Labels {
			r.Labels[k] = v
		}
	}
	r.GroupsSolved = len(r.Solved)
	if c.err != nil {
		r.Error = c.err.Error()
	}
	if !c.started.IsZero() {
		end := c.ended
		if end.IsZero() {
			end = time.Now()
		}
		r.DurationMs = end.Sub(c.started).Milliseconds()
	}
	return r
}

func (c *Controller) outcome() Outcome {
	switch {
	case c.err != nil:
		return OutcomeAborted
	case c.status == game.StatusWon:
		return OutcomeWon
	case c.status == game.StatusLost:
		return OutcomeLost
	default:
		return OutcomeInProgress
	}
}
