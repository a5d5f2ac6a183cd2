// Package main implements the issuepilot CLI, which drives the automated
// resolution pipeline for a single repository issue.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/issuepilot/internal/capabilities"
	"github.com/fyrsmithlabs/issuepilot/internal/config"
	"github.com/fyrsmithlabs/issuepilot/internal/llm"
	"github.com/fyrsmithlabs/issuepilot/internal/logging"
	"github.com/fyrsmithlabs/issuepilot/internal/repohost"
	"github.com/fyrsmithlabs/issuepilot/internal/telemetry"
	"github.com/fyrsmithlabs/issuepilot/internal/workflow"
)

var (
	// version information
	version = "dev"

	configPath      string
	targetFiles     []string
	maxReviewCycles int
	showTokenUsage  bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "issuepilot",
	Short: "Automated issue resolution for GitHub repositories",
	Long: `issuepilot triages a GitHub issue, plans a fix, proposes code changes,
runs them through a bounded multi-reviewer revision loop, and commits the
approved changes to a working branch with a summary comment on the issue.`,
	Version: version,
}

var solveCmd = &cobra.Command{
	Use:   "solve <owner>/<repo> <issue-number>",
	Short: "Resolve a single issue end to end",
	Long: `Solve runs the full pipeline against one issue.

Examples:
  # Let the pipeline identify the target files
  issuepilot solve acme/widgets 42

  # Pin the target files and skip identification
  issuepilot solve acme/widgets 42 -f parser/parse.go -f parser/lex.go

  # Allow only one revision cycle and report token usage
  issuepilot solve acme/widgets 42 --max-review-cycles 1 --show-token-usage`,
	Args: cobra.ExactArgs(2),
	RunE: runSolve,
}

func init() {
	solveCmd.Flags().StringVarP(&configPath, "config", "c", "", "config file path (default ~/.config/issuepilot/config.yaml)")
	solveCmd.Flags().StringSliceVarP(&targetFiles, "target-file", "f", nil, "target file path, repeatable; skips file identification")
	solveCmd.Flags().IntVar(&maxReviewCycles, "max-review-cycles", -1, "override the configured review cycle budget")
	solveCmd.Flags().BoolVar(&showTokenUsage, "show-token-usage", false, "include token accounting in the summary comment")
	rootCmd.AddCommand(solveCmd)
}

func runSolve(cmd *cobra.Command, args []string) error {
	owner, repoName, err := splitRepoArg(args[0])
	if err != nil {
		return err
	}
	issueNumber, err := strconv.Atoi(args[1])
	if err != nil || issueNumber <= 0 {
		return fmt.Errorf("invalid issue number %q", args[1])
	}

	cfg, err := config.LoadWithFile(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if maxReviewCycles >= 0 {
		cfg.Run.MaxReviewCycles = maxReviewCycles
	}
	if showTokenUsage {
		cfg.Run.ShowTokenUsage = true
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tel, err := telemetry.New(ctx, telemetry.FromEnv())
	if err != nil {
		return fmt.Errorf("configuring telemetry: %w", err)
	}
	defer func() { _ = tel.Shutdown(context.Background()) }()

	logger, err := buildLogger(cfg, tel)
	if err != nil {
		return fmt.Errorf("configuring logging: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	repo, err := repohost.NewGitHubService(ctx, cfg.GitHub, logger)
	if err != nil {
		return fmt.Errorf("creating GitHub client: %w", err)
	}
	model, err := llm.NewOpenAIClient(cfg.LLM)
	if err != nil {
		return fmt.Errorf("creating LLM client: %w", err)
	}
	meter, err := llm.NewUsageMeter(tel.Meter("github.com/fyrsmithlabs/issuepilot/internal/llm"))
	if err != nil {
		return fmt.Errorf("creating usage meter: %w", err)
	}

	deps := capabilities.Deps{
		Repo:   repo,
		LLM:    model,
		Usage:  meter,
		Logger: logger,
	}
	caps := capabilities.Set(deps, cfg.Run.Reviewers, cfg.Run.ShowTokenUsage)

	controller, err := workflow.NewOrchestratorController(caps, logger)
	if err != nil {
		return fmt.Errorf("building pipeline: %w", err)
	}

	rc := workflow.NewContext(workflow.IssueRef{
		Owner:  owner,
		Repo:   repoName,
		Number: issueNumber,
	}, cfg.Run.MaxReviewCycles)
	rc.SetTargetFiles(targetFiles)

	report, runErr := controller.Run(ctx, rc)
	printReport(cmd, report)

	if runErr != nil {
		if cfg.Run.CommentOnFailure {
			postFailureComment(ctx, repo, logger, report)
		}
		return fmt.Errorf("run %s failed at %s: %w", report.RunID, report.LastCompleted, runErr)
	}
	return nil
}

func splitRepoArg(arg string) (string, string, error) {
	parts := strings.Split(arg, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("repository must be <owner>/<repo>, got %q", arg)
	}
	return parts[0], parts[1], nil
}

func buildLogger(cfg *config.Config, tel *telemetry.Telemetry) (*logging.Logger, error) {
	level, err := logging.LevelFromString(cfg.Logging.Level)
	if err != nil {
		return nil, err
	}
	logCfg := logging.NewDefaultConfig()
	logCfg.Level = level
	logCfg.Format = cfg.Logging.Format
	return logging.NewLogger(logCfg, tel.LoggerProvider())
}

func printReport(cmd *cobra.Command, report *workflow.Report) {
	out := cmd.OutOrStdout()
	rc := report.Context

	fmt.Fprintf(out, "\nRun %s finished: %s\n", report.RunID, report.Terminal)
	if report.Terminal == workflow.StageDone {
		fmt.Fprintf(out, "  branch:       %s\n", rc.BranchName)
		fmt.Fprintf(out, "  files:        %d committed\n", len(rc.CommitResults))
		fmt.Fprintf(out, "  review cycles: %d\n", rc.ReviewCycle)
		return
	}

	fmt.Fprintf(out, "  failure kind:   %s\n", report.FailureKind)
	fmt.Fprintf(out, "  last completed: %s\n", report.LastCompleted)
	if len(rc.ReviewHistory) > 0 {
		fmt.Fprintf(out, "  review history:\n")
		for _, record := range rc.ReviewHistory {
			fmt.Fprintf(out, "    cycle %d, %s: %s\n", record.Cycle, record.Reviewer, record.Outcome)
		}
	}
}

// postFailureComment leaves a diagnostic trail on the issue so a human
// can pick up where the run stopped. Best effort. The run context is
// often already canceled when the run has failed (SIGINT, deadline), so
// the post runs on a detached context with its own timeout.
func postFailureComment(ctx context.Context, repo repohost.Service, logger *logging.Logger, report *workflow.Report) {
	postCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
	defer cancel()

	rc := report.Context
	var b strings.Builder
	fmt.Fprintf(&b, "Automated processing for issue #%d stopped.\n\n", rc.IssueRef.Number)
	fmt.Fprintf(&b, "**Failure:** %s\n", report.FailureKind)
	fmt.Fprintf(&b, "**Last completed stage:** %s\n", report.LastCompleted)
	if len(rc.ReviewHistory) > 0 {
		b.WriteString("\n**Review history:**\n")
		for _, record := range rc.ReviewHistory {
			fmt.Fprintf(&b, "- cycle %d, %s: %s\n", record.Cycle, record.Reviewer, record.Outcome)
		}
	}

	if err := repo.PostComment(postCtx, rc.IssueRef.Owner, rc.IssueRef.Repo, rc.IssueRef.Number, b.String()); err != nil {
		logger.Warn(postCtx, "could not post failure comment", zap.Error(err))
	}
}
