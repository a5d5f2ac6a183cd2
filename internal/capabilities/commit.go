package capabilities

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/issuepilot/internal/repohost"
	"github.com/fyrsmithlabs/issuepilot/internal/workflow"
)

// Commit applies every approved operation to the working branch. It
// writes Context.CommitResults. An empty approved set is a successful
// no-op so "no changes needed" runs can still reach the comment step.
type Commit struct {
	deps Deps
}

func NewCommit(deps Deps) *Commit {
	return &Commit{deps: deps}
}

func (c *Commit) Name() string { return "commit" }

func (c *Commit) Invoke(ctx context.Context, rc *workflow.Context) (*workflow.StepResult, error) {
	if len(rc.ApprovedOps) == 0 {
		c.deps.Logger.Info(ctx, "no approved operations, skipping commit")
		return &workflow.StepResult{Capability: c.Name(), Output: "no changes to commit"}, nil
	}

	message := CommitMessage(rc.IssueRef.Number, rc.Issue.Title)
	changes := make([]repohost.FileChange, 0, len(rc.ApprovedOps))
	for _, op := range rc.ApprovedOps {
		changes = append(changes, repohost.FileChange{
			Path:    op.Path,
			Action:  repohost.FileAction(op.Action),
			Content: op.Content,
		})
	}

	committed, err := c.deps.Repo.CommitChanges(ctx, rc.IssueRef.Owner, rc.IssueRef.Repo, rc.BranchName, message, changes)
	if err != nil {
		return nil, workflow.NewError(hostErrorKind(err), workflow.StageCommitted, err)
	}

	results := make([]workflow.CommitResult, 0, len(committed))
	for _, file := range committed {
		results = append(results, workflow.CommitResult{Path: file.Path, CommitSHA: file.CommitSHA})
	}
	rc.CommitResults = results

	c.deps.Logger.Info(ctx, "approved operations committed",
		zap.String("branch", rc.BranchName),
		zap.Int("files", len(results)),
	)

	output := fmt.Sprintf("committed %d files to %s", len(results), rc.BranchName)
	return &workflow.StepResult{Capability: c.Name(), Output: output}, nil
}

// CommitMessage is the commit message used for every file in a run.
func CommitMessage(issueNumber int, title string) string {
	return fmt.Sprintf("Propose solution for issue #%d: %s", issueNumber, title)
}
