package capabilities

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/fyrsmithlabs/issuepilot/internal/llm"
	"github.com/fyrsmithlabs/issuepilot/internal/workflow"
)

// Reviewer judges the current proposal from one configured aspect, such
// as "technical correctness and efficiency" or "code style and
// readability". It writes nothing to the context; the review loop owns
// verdict recording.
type Reviewer struct {
	deps   Deps
	aspect string
	name   string
}

func NewReviewer(deps Deps, aspect string) *Reviewer {
	return &Reviewer{
		deps:   deps,
		aspect: aspect,
		name:   "review_" + slug(aspect),
	}
}

func (r *Reviewer) Name() string { return r.name }

func (r *Reviewer) Invoke(ctx context.Context, rc *workflow.Context) (*workflow.StepResult, error) {
	var b strings.Builder
	b.WriteString(issueHeader(rc))
	b.WriteString("\n")
	b.WriteString(planBlock(rc))
	b.WriteString("\nProposed changes:\n")
	b.WriteString(proposalBlock(rc.ProposedOps))

	resp, err := r.deps.complete(ctx, r.name, workflow.StageReviewing, llm.Request{
		System: reviewerSystemPrompt(r.aspect),
		Prompt: b.String(),
	})
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(resp.Text) == "" {
		return nil, workflow.NewError(workflow.KindMalformedOutput, workflow.StageReviewing,
			fmt.Errorf("reviewer %s returned an empty verdict", r.name))
	}

	return &workflow.StepResult{Capability: r.name, Output: resp.Text, Usage: resp.Usage}, nil
}

// slug converts an aspect description to a stable identifier.
func slug(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else if b.Len() > 0 && !strings.HasSuffix(b.String(), "_") {
			b.WriteRune('_')
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}
