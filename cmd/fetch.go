package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/itsmostafa/connections-eval/internal/puzzle"
)

const defaultFetchTimeout = 30 * time.Second

var fetchStart string
var fetchEnd string

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download the puzzle archive",
	Long: `Download every puzzle from --end (default today) back to --start into
--data-dir. Files that already exist are left alone.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		end := fetchEnd
		if end == "" {
			end = today()
		}

		remote := remoteSource()
		if !cmd.Flags().Changed("timeout") {
			remote.Client.Timeout = defaultFetchTimeout
		}
		fetcher := &puzzle.Fetcher{
			Remote: remote,
			Local:  puzzle.FileSource{Dir: cfg.DataDir},
			Logger: logger,
		}
		summary, err := fetcher.Fetch(cmd.Context(), fetchStart, end)
		fmt.Fprintf(cmd.OutOrStdout(), "Downloaded %d, skipped %d, failed %d\n",
			summary.Downloaded, summary.Skipped, summary.Failed)
		return err
	},
}

func init() {
	fetchCmd.Flags().StringVar(&fetchStart, "start", puzzle.FirstGameDate, "First puzzle date (YYYY-MM-DD)")
	fetchCmd.Flags().StringVar(&fetchEnd, "end", "", "Last puzzle date (YYYY-MM-DD, default today)")
	fetchCmd.Flags().DurationVar(&flagValues.timeout, "timeout", defaultFetchTimeout, "Timeout for a single download")
	addArchiveFlags(fetchCmd)

	rootCmd.AddCommand(fetchCmd)
}
