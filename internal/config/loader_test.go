package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// setupTestHome points HOME at a temp directory so the loader's allowed-dir
// validation resolves against it.
func setupTestHome(t *testing.T) string {
	t.Helper()
	tmpHome := t.TempDir()
	t.Setenv("HOME", tmpHome)
	return tmpHome
}

func writeConfigFile(t *testing.T, home, content string) string {
	t.Helper()
	configDir := filepath.Join(home, ".config", "issuepilot")
	if err := os.MkdirAll(configDir, 0700); err != nil {
		t.Fatalf("failed to create config dir: %v", err)
	}
	configPath := filepath.Join(configDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return configPath
}

func TestLoadWithFile_ValidYAML(t *testing.T) {
	home := setupTestHome(t)
	configPath := writeConfigFile(t, home, `github:
  token: ghp_test123
  requests_per_second: 2

llm:
  model: gpt-4o-mini

run:
  max_review_cycles: 5
  show_token_usage: true
`)

	cfg, err := LoadWithFile(configPath)
	if err != nil {
		t.Fatalf("LoadWithFile failed: %v", err)
	}

	if cfg.GitHub.Token.Value() != "ghp_test123" {
		t.Errorf("GitHub.Token: got %q, want %q", cfg.GitHub.Token.Value(), "ghp_test123")
	}
	if cfg.GitHub.RequestsPerSecond != 2 {
		t.Errorf("GitHub.RequestsPerSecond: got %v, want 2", cfg.GitHub.RequestsPerSecond)
	}
	if cfg.LLM.Model != "gpt-4o-mini" {
		t.Errorf("LLM.Model: got %q, want %q", cfg.LLM.Model, "gpt-4o-mini")
	}
	if cfg.Run.MaxReviewCycles != 5 {
		t.Errorf("Run.MaxReviewCycles: got %d, want 5", cfg.Run.MaxReviewCycles)
	}
	if !cfg.Run.ShowTokenUsage {
		t.Error("Run.ShowTokenUsage: got false, want true")
	}
}

func TestLoadWithFile_MissingFileUsesDefaults(t *testing.T) {
	home := setupTestHome(t)
	configPath := filepath.Join(home, ".config", "issuepilot", "config.yaml")

	cfg, err := LoadWithFile(configPath)
	if err != nil {
		t.Fatalf("LoadWithFile failed: %v", err)
	}

	if cfg.Run.MaxReviewCycles != 3 {
		t.Errorf("default MaxReviewCycles: got %d, want 3", cfg.Run.MaxReviewCycles)
	}
	if len(cfg.Run.Reviewers) != 2 {
		t.Errorf("default Reviewers: got %d entries, want 2", len(cfg.Run.Reviewers))
	}
	if cfg.GitHub.MaxRetries != 3 {
		t.Errorf("default GitHub.MaxRetries: got %d, want 3", cfg.GitHub.MaxRetries)
	}
	if cfg.LLM.Model != "gpt-4o" {
		t.Errorf("default LLM.Model: got %q, want %q", cfg.LLM.Model, "gpt-4o")
	}
}

func TestLoadWithFile_ExplicitZeroCyclesKept(t *testing.T) {
	home := setupTestHome(t)
	configPath := writeConfigFile(t, home, `run:
  max_review_cycles: 0
`)

	cfg, err := LoadWithFile(configPath)
	if err != nil {
		t.Fatalf("LoadWithFile failed: %v", err)
	}

	if cfg.Run.MaxReviewCycles != 0 {
		t.Errorf("explicit zero MaxReviewCycles: got %d, want 0", cfg.Run.MaxReviewCycles)
	}
	// Untouched sections still carry defaults.
	if cfg.GitHub.MaxRetries != 3 {
		t.Errorf("default GitHub.MaxRetries: got %d, want 3", cfg.GitHub.MaxRetries)
	}
}

func TestLoadWithFile_EnvOverridesFile(t *testing.T) {
	home := setupTestHome(t)
	configPath := writeConfigFile(t, home, `run:
  max_review_cycles: 2
`)
	t.Setenv("ISSUEPILOT_RUN_MAX_REVIEW_CYCLES", "7")
	t.Setenv("ISSUEPILOT_GITHUB_TOKEN", "ghp_from_env")

	cfg, err := LoadWithFile(configPath)
	if err != nil {
		t.Fatalf("LoadWithFile failed: %v", err)
	}

	if cfg.Run.MaxReviewCycles != 7 {
		t.Errorf("env override MaxReviewCycles: got %d, want 7", cfg.Run.MaxReviewCycles)
	}
	if cfg.GitHub.Token.Value() != "ghp_from_env" {
		t.Errorf("env override GitHub.Token: got %q, want %q", cfg.GitHub.Token.Value(), "ghp_from_env")
	}
}

func TestLoadWithFile_RejectsInsecurePermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission checks disabled on windows")
	}
	home := setupTestHome(t)
	configPath := writeConfigFile(t, home, "run:\n  max_review_cycles: 1\n")
	if err := os.Chmod(configPath, 0644); err != nil {
		t.Fatalf("chmod failed: %v", err)
	}

	if _, err := LoadWithFile(configPath); err == nil {
		t.Error("expected error for world-readable config file")
	}
}

func TestLoadWithFile_RejectsPathOutsideAllowedDirs(t *testing.T) {
	setupTestHome(t)
	outside := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(outside, []byte("github:\n  token: x\n"), 0600); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	if _, err := LoadWithFile(outside); err == nil {
		t.Error("expected error for config path outside allowed directories")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults are valid", func(c *Config) {}, false},
		{"negative cycles", func(c *Config) { c.Run.MaxReviewCycles = -1 }, true},
		{"negative retries", func(c *Config) { c.GitHub.MaxRetries = -1 }, true},
		{"blank reviewer", func(c *Config) { c.Run.Reviewers = []string{"technical", " "} }, true},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
