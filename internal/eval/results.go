package eval

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/itsmostafa/connections-eval/internal/episode"
)

// Report labels set by the runner
const (
	LabelModel      = "model"
	LabelAgent      = "agent"
	LabelDate       = "game_date"
	LabelPromptHash = "prompt_hash"
)

// Result is one line of a results file
type Result struct {
	Model      string          `json:"model"`
	PromptHash string          `json:"prompt_hash"`
	GameDate   string          `json:"game_date"`
	Outcome    episode.Outcome `json:"outcome"`
	Mistakes   int             `json:"mistakes"`
	Levels     map[int]bool    `json:"levels"`
	EpisodeID  string          `json:"episode_id,omitempty"`
}

// Won reports whether the episode solved every group
func (r Result) Won() bool {
	return r.Outcome == episode.OutcomeWon
}

// NewResult summarizes a report using its labels
func NewResult(report *episode.Report) Result {
	return Result{
		Model:      report.Labels[LabelModel],
		PromptHash: report.Labels[LabelPromptHash],
		GameDate:   report.Labels[LabelDate],
		Outcome:    report.Outcome,
		Mistakes:   report.Mistakes,
		Levels:     report.LevelsSolved(),
		EpisodeID:  report.EpisodeID,
	}
}

// ResultFileName returns the results file for a model and prompt. Path
// separators in model names are replaced.
func ResultFileName(model, promptHash string) string {
	safe := strings.NewReplacer("/", "_", "\\", "_", ":", "_").Replace(model)
	return fmt.Sprintf("%s_%s.jsonl", safe, promptHash)
}

// ResultStore is an append-only JSONL file of results, one per model and
// puzzle date. It is safe for concurrent use.
type ResultStore struct {
	path  string
	model string

	mu   sync.Mutex
	seen map[string]bool
}

// OpenResultStore opens or creates the results file for model and prompt
// under dir and indexes the entries already present.
func OpenResultStore(dir, model, promptHash string) (*ResultStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create results directory: %w", err)
	}

	s := &ResultStore{
		path:  filepath.Join(dir, ResultFileName(model, promptHash)),
		model: model,
		seen:  make(map[string]bool),
	}

	results, err := s.Results()
	if err != nil {
		return nil, err
	}
	for _, r := range results {
		s.seen[resultKey(r.Model, r.GameDate)] = true
	}
	return s, nil
}

func resultKey(model, date string) string {
	return model + "\x00" + date
}

// Path returns the results file path
func (s *ResultStore) Path() string {
	return s.path
}

// Model returns the model the store was opened for
func (s *ResultStore) Model() string {
	return s.model
}

// Has reports whether a result for model and date is already stored
func (s *ResultStore) Has(model, date string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seen[resultKey(model, date)]
}

// Append writes r unless a result for the same model and date exists.
// It returns false when r was skipped.
func (s *ResultStore) Append(r Result) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := resultKey(r.Model, r.GameDate)
	if s.seen[key] {
		return false, nil
	}

	data, err := json.Marshal(r)
	if err != nil {
		return false, fmt.Errorf("failed to marshal result: %w", err)
	}

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return false, fmt.Errorf("failed to open results file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return false, fmt.Errorf("failed to write result: %w", err)
	}

	s.seen[key] = true
	return true, nil
}

// Record implements episode.Sink
func (s *ResultStore) Record(ctx context.Context, report *episode.Report) error {
	_, err := s.Append(NewResult(report))
	return err
}

// Results reads every stored result
func (s *ResultStore) Results() ([]Result, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open results file: %w", err)
	}
	defer f.Close()

	var results []Result
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var r Result
		if err := json.Unmarshal(line, &r); err != nil {
			return nil, fmt.Errorf("failed to parse results file %s: %w", s.path, err)
		}
		results = append(results, r)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read results file: %w", err)
	}
	return results, nil
}
