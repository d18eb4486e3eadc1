package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/itsmostafa/connections-eval/internal/config"
	"github.com/itsmostafa/connections-eval/internal/version"
)

var (
	configFile string
	logLevel   string

	// cfg and logger are ready once PersistentPreRunE has run
	cfg    config.Config
	logger zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "connections",
	Short: "Evaluate language models on Connections word puzzles",
	Long: `Connections plays the "Connections" word-grouping puzzle against a language
model: the model proposes one group of four words at a time and a referee scores
each guess until all four groups are found or the mistake budget runs out.

Models are reached through the OpenAI or Anthropic APIs, or by driving the
claude and codex CLIs.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.Version = version.Version
	rootCmd.SetVersionTemplate(fmt.Sprintf("connections %s\n", version.String()))

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default "+config.DefaultFile+" if present)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
}

// setup loads .env, the config file, the environment and flags, in
// increasing order of precedence, and configures logging.
func setup(cmd *cobra.Command, args []string) error {
	// a missing .env file is fine
	_ = godotenv.Load()

	loaded, err := config.Load(configFile)
	if err != nil {
		return err
	}
	loaded.ApplyEnv()
	if cmd.Flags().Changed("log-level") {
		loaded.LogLevel = logLevel
	}
	applyFlags(cmd, &loaded)

	if err := loaded.Validate(); err != nil {
		return err
	}

	if lvl, err := zerolog.ParseLevel(loaded.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		With().Timestamp().Logger()

	cfg = loaded
	return nil
}

// Execute runs the root command
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
