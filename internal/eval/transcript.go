package eval

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/itsmostafa/connections-eval/internal/agent"
	"github.com/itsmostafa/connections-eval/internal/episode"
)

// Transcript is the full record of one episode
type Transcript struct {
	*episode.Report
	Messages []agent.Message `json:"messages,omitempty"`
	Usage    agent.Usage     `json:"usage"`
}

// HistoryEntry is one line of history.jsonl
type HistoryEntry struct {
	Timestamp time.Time       `json:"timestamp"`
	EpisodeID string          `json:"episode_id"`
	Model     string          `json:"model,omitempty"`
	GameDate  string          `json:"game_date,omitempty"`
	Outcome   episode.Outcome `json:"outcome"`
	Mistakes  int             `json:"mistakes"`
	Solved    int             `json:"solved"`
	Path      string          `json:"path"`
}

// TranscriptStore writes one JSON file per episode under
// <dir>/<game date>/<episode id>.json and indexes them in history.jsonl.
// It is safe for concurrent use.
type TranscriptStore struct {
	baseDir string
	mu      sync.Mutex
}

// NewTranscriptStore creates a new TranscriptStore
func NewTranscriptStore(baseDir string) *TranscriptStore {
	return &TranscriptStore{baseDir: baseDir}
}

// Path returns the file a transcript for report is written to
func (ts *TranscriptStore) Path(report *episode.Report) string {
	date := report.Labels[LabelDate]
	if date == "" {
		date = "undated"
	}
	return filepath.Join(ts.baseDir, date, report.EpisodeID+".json")
}

// Save writes the transcript and appends it to the history
func (ts *TranscriptStore) Save(t *Transcript) error {
	if t.Report == nil {
		return fmt.Errorf("transcript has no report")
	}
	path := ts.Path(t.Report)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create transcript directory: %w", err)
	}

	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal transcript: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write transcript: %w", err)
	}

	return ts.appendHistory(HistoryEntry{
		EpisodeID: t.EpisodeID,
		Model:     t.Labels[LabelModel],
		GameDate:  t.Labels[LabelDate],
		Outcome:   t.Outcome,
		Mistakes:  t.Mistakes,
		Solved:    t.GroupsSolved,
		Path:      path,
	})
}

// Record implements episode.Sink for reports without a conversation
func (ts *TranscriptStore) Record(ctx context.Context, report *episode.Report) error {
	return ts.Save(&Transcript{Report: report})
}

// Load reads a transcript written by Save
func (ts *TranscriptStore) Load(path string) (*Transcript, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read transcript: %w", err)
	}

	t := &Transcript{Report: &episode.Report{}}
	if err := json.Unmarshal(data, t); err != nil {
		return nil, fmt.Errorf("failed to parse transcript: %w", err)
	}
	return t, nil
}

// appendHistory appends a history entry to the history file
func (ts *TranscriptStore) appendHistory(entry HistoryEntry) error {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	entry.Timestamp = time.Now()
	path := filepath.Join(ts.baseDir, "history.jsonl")

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open history file: %w", err)
	}
	defer f.Close()

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal history entry: %w", err)
	}

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write history entry: %w", err)
	}

	return nil
}

// History reads every entry of history.jsonl
func (ts *TranscriptStore) History() ([]HistoryEntry, error) {
	path := filepath.Join(ts.baseDir, "history.jsonl")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read history: %w", err)
	}

	var entries []HistoryEntry
	dec := json.NewDecoder(bytes.NewReader(data))
	for dec.More() {
		var e HistoryEntry
		if err := dec.Decode(&e); err != nil {
			return nil, fmt.Errorf("failed to parse history: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
