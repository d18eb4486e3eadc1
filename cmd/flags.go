package cmd

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/itsmostafa/connections-eval/internal/agent"
	"github.com/itsmostafa/connections-eval/internal/config"
	"github.com/itsmostafa/connections-eval/internal/eval"
	"github.com/itsmostafa/connections-eval/internal/puzzle"
)

// Flag values shared by the subcommands. Only flags set on the command line
// override the config.
var flagValues struct {
	agent         string
	prompt        string
	apiBase       string
	mistakes      int
	retries       int
	seed          uint64
	parallelism   int
	timeout       time.Duration
	dataDir       string
	resultsDir    string
	transcriptDir string
	archiveURL    string
}

func addAgentFlags(cmd *cobra.Command) {
	f := cmd.Flags()

	// Agent provider flag with env var fallback
	defaultAgent := string(agent.DefaultAgent)
	if envAgent := os.Getenv("CONNECTIONS_AGENT"); envAgent != "" {
		defaultAgent = envAgent
	}
	f.StringVar(&flagValues.agent, "agent", defaultAgent, "Agent provider to use (openai, anthropic, claude, codex)")
	f.StringVar(&flagValues.prompt, "prompt", "", "Start prompt template file (default built-in)")
	f.StringVar(&flagValues.apiBase, "api-base", "", "Override the provider API endpoint")
	f.DurationVar(&flagValues.timeout, "timeout", agent.DefaultTimeout, "Timeout for a single model call")
	f.IntVar(&flagValues.mistakes, "mistakes", 4, "Incorrect guesses allowed before the game is lost")
	f.IntVar(&flagValues.retries, "retries", 3, "Re-requests allowed per turn after invalid guesses or errors")
	f.Uint64Var(&flagValues.seed, "seed", 42, "Seed for the order the words are shown in")
	f.StringVar(&flagValues.resultsDir, "results-dir", "results", "Directory for results files")
	f.StringVar(&flagValues.transcriptDir, "transcript-dir", ".connections/transcripts", "Directory for episode transcripts")
}

func addArchiveFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&flagValues.dataDir, "data-dir", "connections_data", "Directory of puzzle archive files")
	f.StringVar(&flagValues.archiveURL, "archive-url", puzzle.DefaultURLTemplate, "Remote archive URL template, {date} is replaced")
}

func applyFlags(cmd *cobra.Command, c *config.Config) {
	f := cmd.Flags()
	if f.Changed("agent") {
		c.Agent = flagValues.agent
	}
	if f.Changed("prompt") {
		c.PromptFile = flagValues.prompt
	}
	if f.Changed("api-base") {
		c.APIBase = flagValues.apiBase
	}
	if f.Changed("timeout") {
		c.Timeout = flagValues.timeout
	}
	if f.Changed("mistakes") {
		c.MistakeLimit = flagValues.mistakes
	}
	if f.Changed("retries") {
		c.RetryCap = flagValues.retries
	}
	if f.Changed("seed") {
		c.Seed = flagValues.seed
	}
	if f.Changed("parallelism") {
		c.Parallelism = flagValues.parallelism
	}
	if f.Changed("data-dir") {
		c.DataDir = flagValues.dataDir
	}
	if f.Changed("results-dir") {
		c.ResultsDir = flagValues.resultsDir
	}
	if f.Changed("transcript-dir") {
		c.TranscriptDir = flagValues.transcriptDir
	}
	if f.Changed("archive-url") {
		c.ArchiveURL = flagValues.archiveURL
	}
}

func remoteSource() *puzzle.HTTPSource {
	src := puzzle.NewHTTPSource(cfg.Timeout)
	src.URLTemplate = cfg.ArchiveURL
	return src
}

func today() string {
	return time.Now().Format(puzzle.DateLayout)
}

// newRunner builds an eval.Runner from cfg. It creates one backend up front
// so missing API keys fail before any puzzle is played.
func newRunner(model string, sources puzzle.Source, record bool) (*eval.Runner, error) {
	if model != "" {
		cfg.Model = model
	}

	provider, err := agent.ValidateAgentProvider(cfg.Agent)
	if err != nil {
		return nil, err
	}

	prompt, err := agent.LoadPrompt(cfg.PromptFile)
	if err != nil {
		return nil, err
	}

	opts := cfg.AgentOptions()
	newBackend := func() (agent.Backend, error) {
		return agent.NewBackend(provider, opts)
	}
	probe, err := newBackend()
	if err != nil {
		return nil, err
	}

	r := &eval.Runner{
		Puzzles:    sources,
		NewBackend: newBackend,
		Prompt:     prompt,
		Episode:    cfg.EpisodeConfig(nil),
		Logger:     logger,
	}
	if record {
		results, err := eval.OpenResultStore(cfg.ResultsDir, probe.Model(), prompt.Hash())
		if err != nil {
			return nil, err
		}
		r.Results = results
		r.Transcripts = eval.NewTranscriptStore(cfg.TranscriptDir)
	}
	return r, nil
}
