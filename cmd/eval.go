package cmd

import (
	"github.com/spf13/cobra"

	"github.com/itsmostafa/connections-eval/internal/eval"
	"github.com/itsmostafa/connections-eval/internal/puzzle"
)

var evalStart string
var evalEnd string
var evalRemote bool

var evalCmd = &cobra.Command{
	Use:   "eval [model]",
	Short: "Evaluate a model on every puzzle in a date range",
	Long: `Play every puzzle from --start (default the first puzzle) to --end (default
today) in parallel. Dates that already have a result for the model and prompt
are skipped, so an interrupted evaluation can be resumed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var model string
		if len(args) == 1 {
			model = args[0]
		}

		end := evalEnd
		if end == "" {
			end = today()
		}
		dates, err := puzzle.Dates(evalStart, end)
		if err != nil {
			return err
		}

		var sources puzzle.Source = puzzle.FileSource{Dir: cfg.DataDir}
		if evalRemote {
			sources = puzzle.ChainSource{sources, remoteSource()}
		}

		runner, err := newRunner(model, sources, true)
		if err != nil {
			return err
		}

		logger.Info().
			Str("model", runner.Results.Model()).
			Int("dates", len(dates)).
			Int("parallelism", cfg.Parallelism).
			Msg("starting evaluation")

		summary, err := runner.RunBatch(cmd.Context(), dates, cfg.Parallelism)
		eval.FormatBatchSummary(cmd.OutOrStdout(), summary, runner.Results.Path())
		return err
	},
}

func init() {
	evalCmd.Flags().StringVar(&evalStart, "start", puzzle.FirstGameDate, "First puzzle date (YYYY-MM-DD)")
	evalCmd.Flags().StringVar(&evalEnd, "end", "", "Last puzzle date (YYYY-MM-DD, default today)")
	evalCmd.Flags().BoolVar(&evalRemote, "remote", false, "Download puzzles missing from --data-dir")
	evalCmd.Flags().IntVarP(&flagValues.parallelism, "parallelism", "p", eval.DefaultParallelism, "Number of episodes played at once")
	addAgentFlags(evalCmd)
	addArchiveFlags(evalCmd)

	rootCmd.AddCommand(evalCmd)
}
