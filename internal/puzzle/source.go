package puzzle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	// DateLayout is the layout of puzzle identifiers
	DateLayout = "2006-01-02"
	// FirstGameDate is the date of puzzle #1
	FirstGameDate = "2023-06-12"
	// DefaultURLTemplate is the remote archive location; {date} is replaced
	DefaultURLTemplate = "https://www.nytimes.com/svc/connections/v2/{date}.json"
)

// Source supplies the puzzle for a given date.
type Source interface {
	Load(ctx context.Context, date string) (*Puzzle, error)
}

// Archive is the on-disk and over-the-wire puzzle document.
type Archive struct {
	Status     string            `json:"status,omitempty"`
	PrintDate  string            `json:"print_date,omitempty"`
	Categories []ArchiveCategory `json:"categories"`
}

// ArchiveCategory is one category of an Archive.
type ArchiveCategory struct {
	Title string        `json:"title"`
	Cards []ArchiveCard `json:"cards"`
}

// ArchiveCard is a single word card with its starting board position.
type ArchiveCard struct {
	Content  string `json:"content"`
	Position int    `json:"position"`
}

// Decode parses an archive document into a validated Puzzle.
func Decode(data []byte) (*Puzzle, error) {
	var a Archive
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("failed to parse puzzle archive: %w", err)
	}
	return a.Puzzle()
}

// Puzzle converts the archive into a validated Puzzle. A group's level is
// the board row of its first card.
func (a Archive) Puzzle() (*Puzzle, error) {
	groups := make([]Group, 0, len(a.Categories))
	for _, c := range a.Categories {
		g := Group{Label: c.Title}
		for _, card := range c.Cards {
			g.Members = append(g.Members, Word(card.Content))
		}
		if len(c.Cards) > 0 {
			g.Level = c.Cards[0].Position / GroupSize
		}
		groups = append(groups, g)
	}
	return New(groups)
}

// Number returns the puzzle number for date, counting FirstGameDate as 1.
func Number(date string) (int, error) {
	first, _ := time.Parse(DateLayout, FirstGameDate)
	d, err := time.Parse(DateLayout, date)
	if err != nil {
		return 0, fmt.Errorf("invalid puzzle date %q: %w", date, err)
	}
	return int(d.Sub(first).Hours()/24) + 1, nil
}

// Dates returns every puzzle date from start to end inclusive.
func Dates(start, end string) ([]string, error) {
	s, err := time.Parse(DateLayout, start)
	if err != nil {
		return nil, fmt.Errorf("invalid start date %q: %w", start, err)
	}
	e, err := time.Parse(DateLayout, end)
	if err != nil {
		return nil, fmt.Errorf("invalid end date %q: %w", end, err)
	}
	var out []string
	for d := s; !d.After(e); d = d.AddDate(0, 0, 1) {
		out = append(out, d.Format(DateLayout))
	}
	return out, nil
}

// FileSource reads archives from <Dir>/<date>.json.
type FileSource struct {
	Dir string
}

// Path returns the archive path for date.
func (s FileSource) Path(date string) string {
	return filepath.Join(s.Dir, date+".json")
}

// Load reads and validates the archive for date.
func (s FileSource) Load(ctx context.Context, date string) (*Puzzle, error) {
	data, err := os.ReadFile(s.Path(date))
	if err != nil {
		return nil, fmt.Errorf("failed to read puzzle for %s: %w", date, err)
	}
	p, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("puzzle %s: %w", date, err)
	}
	return p, nil
}

// HTTPSource downloads archives from a URL template containing {date}.
type HTTPSource struct {
	URLTemplate string
	Client      *http.Client
}

// NewHTTPSource creates an HTTPSource for the default archive location.
func NewHTTPSource(timeout time.Duration) *HTTPSource {
	return &HTTPSource{
		URLTemplate: DefaultURLTemplate,
		Client:      &http.Client{Timeout: timeout},
	}
}

// Fetch returns the raw archive document for date.
func (s *HTTPSource) Fetch(ctx context.Context, date string) ([]byte, error) {
	url := strings.ReplaceAll(s.URLTemplate, "{date}", date)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("archive error (status %d) for %s", resp.StatusCode, date)
	}
	return body, nil
}

// Load downloads and validates the archive for date.
func (s *HTTPSource) Load(ctx context.Context, date string) (*Puzzle, error) {
	data, err := s.Fetch(ctx, date)
	if err != nil {
		return nil, err
	}
	p, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("puzzle %s: %w", date, err)
	}
	return p, nil
}

// ChainSource tries each source in order and returns the first puzzle
// found. A malformed puzzle stops the search.
type ChainSource []Source

// Load implements Source.
func (c ChainSource) Load(ctx context.Context, date string) (*Puzzle, error) {
	if len(c) == 0 {
		return nil, fmt.Errorf("no puzzle source configured")
	}
	var errs []error
	for _, src := range c {
		p, err := src.Load(ctx, date)
		if err == nil {
			return p, nil
		}
		if errors.Is(err, ErrMalformedPuzzle) || ctx.Err() != nil {
			return nil, err
		}
		errs = append(errs, err)
	}
	return nil, errors.Join(errs...)
}
