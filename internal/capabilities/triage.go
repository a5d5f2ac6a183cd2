package capabilities

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/issuepilot/internal/llm"
	"github.com/fyrsmithlabs/issuepilot/internal/workflow"
)

// Triage fetches the issue from the repository host and produces a
// structured assessment of it. It writes Issue, TriageSummary, and the
// repository's default branch.
type Triage struct {
	deps Deps
}

func NewTriage(deps Deps) *Triage {
	return &Triage{deps: deps}
}

func (t *Triage) Name() string { return "triage" }

func (t *Triage) Invoke(ctx context.Context, rc *workflow.Context) (*workflow.StepResult, error) {
	issue, err := t.deps.Repo.FetchIssue(ctx, rc.IssueRef.Owner, rc.IssueRef.Repo, rc.IssueRef.Number)
	if err != nil {
		return nil, workflow.NewError(hostErrorKind(err), workflow.StageTriaged, err)
	}

	rc.Issue = &workflow.IssueDetails{
		Title:  issue.Title,
		Body:   issue.Body,
		Labels: issue.Labels,
	}
	rc.IssueRef.DefaultBranch = issue.DefaultBranch

	resp, err := t.deps.complete(ctx, t.Name(), workflow.StageTriaged, llm.Request{
		System: triageSystemPrompt,
		Prompt: fmt.Sprintf("Please triage the following issue.\n\n%s", issueHeader(rc)),
	})
	if err != nil {
		return nil, err
	}

	rc.TriageSummary = resp.Text
	t.deps.Logger.Debug(ctx, "issue triaged",
		zap.String("title", issue.Title),
		zap.Strings("labels", issue.Labels),
	)

	return &workflow.StepResult{Capability: t.Name(), Output: resp.Text, Usage: resp.Usage}, nil
}
