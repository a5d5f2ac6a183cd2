package capabilities

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/issuepilot/internal/llm"
	"github.com/fyrsmithlabs/issuepilot/internal/workflow"
)

// Explain produces one natural-language description per committed file,
// each built from that file's before and after content. It writes
// Context.Explanations.
type Explain struct {
	deps Deps
}

func NewExplain(deps Deps) *Explain {
	return &Explain{deps: deps}
}

func (e *Explain) Name() string { return "explain" }

func (e *Explain) Invoke(ctx context.Context, rc *workflow.Context) (*workflow.StepResult, error) {
	for _, op := range rc.ApprovedOps {
		resp, err := e.deps.complete(ctx, e.Name(), workflow.StageExplained, llm.Request{
			System: explainSystemPrompt,
			Prompt: e.prompt(rc, op),
		})
		if err != nil {
			return nil, err
		}
		rc.Explanations = append(rc.Explanations, workflow.Explanation{
			Path: op.Path,
			Text: strings.TrimSpace(resp.Text),
		})
	}

	e.deps.Logger.Debug(ctx, "change explanations produced",
		zap.Int("files", len(rc.Explanations)),
	)

	output := fmt.Sprintf("explained %d file changes", len(rc.Explanations))
	return &workflow.StepResult{Capability: e.Name(), Output: output}, nil
}

func (e *Explain) prompt(rc *workflow.Context, op workflow.FileOperation) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Issue #%d: %s\n\n", rc.IssueRef.Number, rc.Issue.Title)

	before := "(file did not exist)"
	if snapshot, ok := rc.OriginalContents[op.Path]; ok && snapshot.Exists {
		before = snapshot.Content
	}

	switch op.Action {
	case workflow.ActionDelete:
		fmt.Fprintf(&b, "The file `%s` is being deleted. Its content was:\n```\n%s\n```\n", op.Path, before)
	default:
		fmt.Fprintf(&b, "File: `%s`\n\nBefore:\n```\n%s\n```\n\nAfter:\n```\n%s\n```\n", op.Path, before, op.Content)
	}
	return b.String()
}
