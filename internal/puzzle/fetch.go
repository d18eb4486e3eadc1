package puzzle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog"
)

// Fetcher mirrors the remote archive into a local directory.
type Fetcher struct {
	Remote *HTTPSource
	Local  FileSource
	Logger zerolog.Logger
}

// FetchSummary counts what a Fetch run did.
type FetchSummary struct {
	Downloaded int
	Skipped    int
	Failed     int
}

// Fetch walks dates from end back to start, downloading every archive not
// already present locally. A failed date is logged and counted, not fatal.
func (f *Fetcher) Fetch(ctx context.Context, start, end string) (FetchSummary, error) {
	var sum FetchSummary

	dates, err := Dates(start, end)
	if err != nil {
		return sum, err
	}
	if err := os.MkdirAll(f.Local.Dir, 0755); err != nil {
		return sum, fmt.Errorf("failed to create data directory: %w", err)
	}

	for i := len(dates) - 1; i >= 0; i-- {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		date := dates[i]
		path := f.Local.Path(date)

		if _, err := os.Stat(path); err == nil {
			f.Logger.Debug().Str("date", date).Msg("archive exists, skipping")
			sum.Skipped++
			continue
		}

		f.Logger.Info().Str("date", date).Msg("fetching archive")
		data, err := f.Remote.Fetch(ctx, date)
		if err != nil {
			f.Logger.Warn().Err(err).Str("date", date).Msg("fetch failed")
			sum.Failed++
			continue
		}

		var pretty bytes.Buffer
		if err := json.Indent(&pretty, data, "", "  "); err != nil {
			f.Logger.Warn().Err(err).Str("date", date).Msg("archive is not valid JSON")
			sum.Failed++
			continue
		}
		if err := os.WriteFile(path, pretty.Bytes(), 0644); err != nil {
			return sum, fmt.Errorf("failed to write archive: %w", err)
		}
		sum.Downloaded++
	}

	return sum, nil
}
