package cmd

import (
	"github.com/spf13/cobra"

	"github.com/itsmostafa/connections-eval/internal/puzzle"
)

var playDate string
var noRecord bool

var playCmd = &cobra.Command{
	Use:   "play [model]",
	Short: "Play one puzzle with a model",
	Long: `Play the puzzle for --date (default today) with a model and show every turn.
The puzzle is read from --data-dir and downloaded when it is not there.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var model string
		if len(args) == 1 {
			model = args[0]
		}

		date := playDate
		if date == "" {
			date = today()
		}

		sources := puzzle.ChainSource{puzzle.FileSource{Dir: cfg.DataDir}, remoteSource()}
		runner, err := newRunner(model, sources, !noRecord)
		if err != nil {
			return err
		}
		runner.Output = cmd.OutOrStdout()

		_, err = runner.Play(cmd.Context(), date)
		return err
	},
}

func init() {
	playCmd.Flags().StringVar(&playDate, "date", "", "Puzzle date (YYYY-MM-DD, default today)")
	playCmd.Flags().BoolVar(&noRecord, "no-record", false, "Do not write results or transcripts")
	addAgentFlags(playCmd)
	addArchiveFlags(playCmd)

	rootCmd.AddCommand(playCmd)
}
