package capabilities

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/issuepilot/internal/workflow"
)

// CreateBranch makes sure the working branch for the fix exists, named
// after the issue with a prefix derived from its labels. It writes
// Context.BranchName. A branch left over from an earlier run of the same
// issue is reused.
type CreateBranch struct {
	deps Deps
}

func NewCreateBranch(deps Deps) *CreateBranch {
	return &CreateBranch{deps: deps}
}

func (c *CreateBranch) Name() string { return "create_branch" }

func (c *CreateBranch) Invoke(ctx context.Context, rc *workflow.Context) (*workflow.StepResult, error) {
	branch := BranchName(rc.Issue.Labels, rc.IssueRef.Number)

	err := c.deps.Repo.CreateBranch(ctx, rc.IssueRef.Owner, rc.IssueRef.Repo, branch, rc.IssueRef.DefaultBranch)
	if err != nil {
		return nil, workflow.NewError(hostErrorKind(err), workflow.StageBranchCreated, err)
	}

	rc.BranchName = branch
	c.deps.Logger.Info(ctx, "working branch ready",
		zap.String("branch", branch),
		zap.String("base", rc.IssueRef.DefaultBranch),
	)

	return &workflow.StepResult{Capability: c.Name(), Output: branch}, nil
}

// BranchName derives the branch name from the issue labels and number.
// Enhancement-labeled issues get a feature branch, chore-labeled ones a
// chore branch, everything else a fix branch.
func BranchName(labels []string, issueNumber int) string {
	prefix := "fix"
	for _, label := range labels {
		lowered := strings.ToLower(label)
		if strings.Contains(lowered, "enhancement") {
			prefix = "feature"
			break
		}
		if strings.Contains(lowered, "chore") {
			prefix = "chore"
		}
	}
	return fmt.Sprintf("%s/issue-%d", prefix, issueNumber)
}
