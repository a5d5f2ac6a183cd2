package capabilities

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/issuepilot/internal/workflow"
)

// Comment posts the run summary back to the issue: triage assessment,
// plan, target files, review outcome, branch, commits, and per-file
// explanations, plus token accounting when enabled.
type Comment struct {
	deps           Deps
	showTokenUsage bool
}

func NewComment(deps Deps, showTokenUsage bool) *Comment {
	return &Comment{deps: deps, showTokenUsage: showTokenUsage}
}

func (c *Comment) Name() string { return "comment" }

func (c *Comment) Invoke(ctx context.Context, rc *workflow.Context) (*workflow.StepResult, error) {
	body := c.render(rc)

	err := c.deps.Repo.PostComment(ctx, rc.IssueRef.Owner, rc.IssueRef.Repo, rc.IssueRef.Number, body)
	if err != nil {
		return nil, workflow.NewError(hostErrorKind(err), workflow.StageCommented, err)
	}

	c.deps.Logger.Info(ctx, "summary comment posted",
		zap.Int("length", len(body)),
	)
	return &workflow.StepResult{Capability: c.Name(), Output: body}, nil
}

func (c *Comment) render(rc *workflow.Context) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Automated processing for issue #%d ('%s'):\n", rc.IssueRef.Number, rc.Issue.Title)

	fmt.Fprintf(&b, "\n**Triage Summary:**\n%s\n", rc.TriageSummary)

	if len(rc.Plan) > 0 {
		b.WriteString("\n**Plan:**\n")
		for i, step := range rc.Plan {
			fmt.Fprintf(&b, "%d. %s\n", i+1, step)
		}
	}

	if rc.TargetFilesPreset {
		fmt.Fprintf(&b, "\n**File Identification:**\nCaller specified the target files: %s.\n", backtickList(rc.TargetFiles))
	} else {
		fmt.Fprintf(&b, "\n**File Identification:**\nIdentified %s as the target files for the fix.\n", backtickList(rc.TargetFiles))
	}

	if len(rc.ReviewHistory) > 0 {
		fmt.Fprintf(&b, "\n**Review:** approved after %d cycle(s), %d verdicts recorded.\n",
			rc.ReviewCycle+1, len(rc.ReviewHistory))
		for _, record := range rc.ReviewHistory {
			fmt.Fprintf(&b, "- cycle %d, %s: %s\n", record.Cycle, record.Reviewer, record.Outcome)
		}
	} else {
		b.WriteString("\n**Review:** no changes proposed, review skipped.\n")
	}

	if len(rc.ApprovedOps) > 0 {
		b.WriteString("\n**Final Solution:**\n")
		b.WriteString(proposalBlock(rc.ApprovedOps))
	} else {
		b.WriteString("\n**Final Solution:** no code changes were needed.\n")
	}

	if rc.BranchName != "" {
		fmt.Fprintf(&b, "\n**Branch:** `%s`\n", rc.BranchName)
	}
	if len(rc.CommitResults) > 0 {
		b.WriteString("\n**Commits:**\n")
		for _, commit := range rc.CommitResults {
			fmt.Fprintf(&b, "- `%s`: %s\n", commit.Path, commit.CommitSHA)
		}
	}

	if len(rc.Explanations) > 0 {
		b.WriteString("\n**Change Explanations:**\n")
		for _, explanation := range rc.Explanations {
			fmt.Fprintf(&b, "\n`%s`:\n%s\n", explanation.Path, explanation.Text)
		}
	}

	if c.showTokenUsage && c.deps.Usage != nil {
		if report := c.deps.Usage.Report(); report != "" {
			b.WriteString("\n")
			b.WriteString(report)
		}
	}

	return b.String()
}

func backtickList(paths []string) string {
	if len(paths) == 0 {
		return "(none)"
	}
	quoted := make([]string, 0, len(paths))
	for _, p := range paths {
		quoted = append(quoted, "`"+p+"`")
	}
	return strings.Join(quoted, ", ")
}
