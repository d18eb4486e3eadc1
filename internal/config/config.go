// Package config loads evaluation settings from connections.yaml and the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/itsmostafa/connections-eval/internal/agent"
	"github.com/itsmostafa/connections-eval/internal/episode"
	"github.com/itsmostafa/connections-eval/internal/puzzle"
)

// DefaultFile is read from the working directory when no path is given
const DefaultFile = "connections.yaml"

// Config holds everything a play or eval run needs
type Config struct {
	Agent         string        `yaml:"agent"`
	Model         string        `yaml:"model"`
	MistakeLimit  int           `yaml:"mistake_limit"`
	RetryCap      int           `yaml:"retry_cap"`
	Seed          uint64        `yaml:"seed"`
	DataDir       string        `yaml:"data_dir"`
	ResultsDir    string        `yaml:"results_dir"`
	TranscriptDir string        `yaml:"transcript_dir"`
	PromptFile    string        `yaml:"prompt_file"`
	ArchiveURL    string        `yaml:"archive_url"`
	Parallelism   int           `yaml:"parallelism"`
	Timeout       time.Duration `yaml:"timeout"`
	MaxTokens     int           `yaml:"max_tokens"`
	APIBase       string        `yaml:"api_base"`
	LogLevel      string        `yaml:"log_level"`
}

// Default returns the built-in settings
func Default() Config {
	return Config{
		Agent:         string(agent.DefaultAgent),
		MistakeLimit:  episode.DefaultMistakeLimit,
		RetryCap:      episode.DefaultRetryCap,
		Seed:          episode.DefaultSeed,
		DataDir:       "connections_data",
		ResultsDir:    "results",
		TranscriptDir: ".connections/transcripts",
		ArchiveURL:    puzzle.DefaultURLTemplate,
		Parallelism:   10,
		Timeout:       agent.DefaultTimeout,
		MaxTokens:     agent.DefaultMaxTokens,
		LogLevel:      "info",
	}
}

// Load reads path over the defaults. An empty path reads DefaultFile if it
// exists; an explicit path must exist.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overrides fields from CONNECTIONS_* variables and LOG_LEVEL
func (c *Config) ApplyEnv() {
	setString := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setString(&c.Agent, "CONNECTIONS_AGENT")
	setString(&c.Model, "CONNECTIONS_MODEL")
	setString(&c.DataDir, "CONNECTIONS_DATA_DIR")
	setString(&c.ResultsDir, "CONNECTIONS_RESULTS_DIR")
	setString(&c.TranscriptDir, "CONNECTIONS_TRANSCRIPT_DIR")
	setString(&c.PromptFile, "CONNECTIONS_PROMPT")
	setString(&c.APIBase, "CONNECTIONS_API_BASE")
	setString(&c.LogLevel, "LOG_LEVEL")
}

// Validate reports the first invalid setting
func (c Config) Validate() error {
	if _, err := agent.ValidateAgentProvider(c.Agent); err != nil {
		return err
	}
	if c.MistakeLimit <= 0 {
		return fmt.Errorf("mistake_limit must be positive, got %d", c.MistakeLimit)
	}
	if c.RetryCap <= 0 {
		return fmt.Errorf("retry_cap must be positive, got %d", c.RetryCap)
	}
	if c.Parallelism <= 0 {
		return fmt.Errorf("parallelism must be positive, got %d", c.Parallelism)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative, got %s", c.Timeout)
	}
	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log_level %q: %w", c.LogLevel, err)
	}
	return nil
}

// AgentOptions returns the backend options for a model
func (c Config) AgentOptions() agent.Options {
	return agent.Options{
		Model:     c.Model,
		APIBase:   c.APIBase,
		Timeout:   c.Timeout,
		MaxTokens: c.MaxTokens,
	}
}

// EpisodeConfig returns the per-episode limits
func (c Config) EpisodeConfig(logger *zerolog.Logger) episode.Config {
	return episode.Config{
		MistakeLimit: c.MistakeLimit,
		RetryCap:     c.RetryCap,
		Seed:         c.Seed,
		Logger:       logger,
	}
}
