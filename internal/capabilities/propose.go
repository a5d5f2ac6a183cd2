package capabilities

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/issuepilot/internal/llm"
	"github.com/fyrsmithlabs/issuepilot/internal/workflow"
)

// Propose generates the candidate file operations. On the first
// invocation it works from the issue, plan, and fetched contents; during
// revision cycles it additionally receives the revise verdicts from the
// last review cycle and the proposal they rejected. It replaces
// Context.ProposedOps on every invocation.
type Propose struct {
	deps Deps
}

func NewPropose(deps Deps) *Propose {
	return &Propose{deps: deps}
}

func (p *Propose) Name() string { return "propose" }

func (p *Propose) Invoke(ctx context.Context, rc *workflow.Context) (*workflow.StepResult, error) {
	// An empty identification answer scopes the run to no changes. The
	// empty proposal is approved without review and nothing is committed.
	if len(rc.TargetFiles) == 0 {
		rc.ProposedOps = nil
		p.deps.Logger.Info(ctx, "no target files, proposing no changes")
		return &workflow.StepResult{Capability: p.Name(), Output: "No changes needed."}, nil
	}

	var prompt string
	if len(rc.RevisionFeedback) > 0 {
		prompt = p.revisionPrompt(rc)
	} else {
		prompt = p.initialPrompt(rc)
	}

	resp, err := p.deps.complete(ctx, p.Name(), workflow.StageProposed, llm.Request{
		System: proposeSystemPrompt,
		Prompt: prompt,
	})
	if err != nil {
		return nil, err
	}

	ops, err := parseProposal(resp.Text, rc.TargetFiles, rc.OriginalContents)
	if err != nil {
		return nil, err
	}

	rc.ProposedOps = ops
	p.deps.Logger.Info(ctx, "proposal generated",
		zap.Int("operations", len(ops)),
		zap.Int("cycle", rc.ReviewCycle),
		zap.Bool("revision", len(rc.RevisionFeedback) > 0),
	)

	return &workflow.StepResult{Capability: p.Name(), Output: resp.Text, Usage: resp.Usage}, nil
}

func (p *Propose) initialPrompt(rc *workflow.Context) string {
	var b strings.Builder
	b.WriteString("Please propose a code solution for the following issue.\n\n")
	b.WriteString(issueHeader(rc))
	b.WriteString("\n")
	b.WriteString(planBlock(rc))
	b.WriteString("\nTarget files:\n")
	for _, path := range rc.TargetFiles {
		fmt.Fprintf(&b, "- %s\n", path)
	}
	b.WriteString("\n")
	b.WriteString(originalsBlock(rc))
	return b.String()
}

func (p *Propose) revisionPrompt(rc *workflow.Context) string {
	var b strings.Builder
	fmt.Fprintf(&b, "The following changes were proposed for issue #%d ('%s'):\n\n",
		rc.IssueRef.Number, rc.Issue.Title)
	b.WriteString(proposalBlock(rc.ProposedOps))
	b.WriteString("The proposal received the following review feedback:\n")
	for i, feedback := range rc.RevisionFeedback {
		fmt.Fprintf(&b, "\nReview %d:\n%s\n", i+1, feedback)
	}
	b.WriteString("\nPlease provide a revised solution addressing this feedback for the same target files.\n")
	return b.String()
}
