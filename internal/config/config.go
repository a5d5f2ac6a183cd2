// Package config provides configuration loading for issuepilot.
//
// Configuration is loaded from a YAML file and overridden by environment
// variables. Secrets (GitHub and LLM API tokens) are only accepted from the
// environment or the config file, never from command-line flags.
package config

import (
	"fmt"
	"strings"
)

// Config holds the complete issuepilot configuration.
type Config struct {
	GitHub  GitHubConfig  `koanf:"github"`
	LLM     LLMConfig     `koanf:"llm"`
	Run     RunConfig     `koanf:"run"`
	Logging LoggingConfig `koanf:"logging"`
}

// GitHubConfig holds GitHub API client configuration.
type GitHubConfig struct {
	Token Secret `koanf:"token"`
	// BaseURL overrides the API endpoint, e.g. for GitHub Enterprise.
	// Empty means api.github.com.
	BaseURL string `koanf:"base_url"`
	// RequestsPerSecond caps client-side request rate against the API.
	RequestsPerSecond float64 `koanf:"requests_per_second"`
	// MaxRetries bounds retry attempts for transient API failures.
	MaxRetries int `koanf:"max_retries"`
}

// LLMConfig holds reasoning backend configuration.
type LLMConfig struct {
	APIKey Secret `koanf:"api_key"`
	// BaseURL overrides the completion endpoint (e.g. a local proxy).
	BaseURL string `koanf:"base_url"`
	Model   string `koanf:"model"`
	// Temperature for completions. Zero means provider default.
	Temperature float64 `koanf:"temperature"`
}

// RunConfig holds per-run pipeline options. These are read once at run start
// and treated as immutable for the run's duration.
type RunConfig struct {
	// MaxReviewCycles bounds the review/revision loop. A value of N allows
	// the initial proposal plus up to N re-proposals.
	MaxReviewCycles int `koanf:"max_review_cycles"`
	// Reviewers lists review aspects in veto order. Each entry becomes one
	// reviewer capability; any one of them can force a revision.
	Reviewers []string `koanf:"reviewers"`
	// ShowTokenUsage includes token/cost accounting in the summary comment.
	ShowTokenUsage bool `koanf:"show_token_usage"`
	// CommentOnFailure posts a diagnostic comment when the run fails.
	CommentOnFailure bool `koanf:"comment_on_failure"`
}

// LoggingConfig holds basic logging knobs mapped onto the logging package.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// DefaultReviewers returns the default review aspects in veto order.
func DefaultReviewers() []string {
	return []string{
		"technical correctness and efficiency",
		"code style and readability",
	}
}

// NewDefaultConfig returns the built-in defaults. Unmarshaling merges the
// config file and environment over this struct field by field, so an
// explicit zero (e.g. max_review_cycles: 0) survives loading.
func NewDefaultConfig() *Config {
	return &Config{
		GitHub: GitHubConfig{
			RequestsPerSecond: 5,
			MaxRetries:        3,
		},
		LLM: LLMConfig{
			Model: "gpt-4o",
		},
		Run: RunConfig{
			MaxReviewCycles: 3,
			Reviewers:       DefaultReviewers(),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Validate checks configuration consistency. It does not require secrets to
// be set; those are checked at client construction so read-only commands
// still work without credentials.
func (c *Config) Validate() error {
	if c.GitHub.RequestsPerSecond < 0 {
		return fmt.Errorf("github.requests_per_second cannot be negative")
	}
	if c.GitHub.MaxRetries < 0 {
		return fmt.Errorf("github.max_retries cannot be negative")
	}
	if c.Run.MaxReviewCycles < 0 {
		return fmt.Errorf("run.max_review_cycles cannot be negative")
	}
	for i, r := range c.Run.Reviewers {
		if strings.TrimSpace(r) == "" {
			return fmt.Errorf("run.reviewers[%d] is empty", i)
		}
	}
	if c.Logging.Format != "" && c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("logging.format must be 'json' or 'console', got %q", c.Logging.Format)
	}
	return nil
}
