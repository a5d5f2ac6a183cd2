package capabilities

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/issuepilot/internal/llm"
	"github.com/fyrsmithlabs/issuepilot/internal/workflow"
)

// Plan turns the triaged issue into an ordered resolution plan. It
// writes Context.Plan.
type Plan struct {
	deps Deps
}

func NewPlan(deps Deps) *Plan {
	return &Plan{deps: deps}
}

func (p *Plan) Name() string { return "plan" }

func (p *Plan) Invoke(ctx context.Context, rc *workflow.Context) (*workflow.StepResult, error) {
	resp, err := p.deps.complete(ctx, p.Name(), workflow.StagePlanned, llm.Request{
		System: planSystemPrompt,
		Prompt: fmt.Sprintf("%s\nTriage Summary:\n%s\n", issueHeader(rc), rc.TriageSummary),
	})
	if err != nil {
		return nil, err
	}

	steps := parsePlan(resp.Text)
	if len(steps) == 0 {
		return nil, workflow.NewError(workflow.KindMalformedOutput, workflow.StagePlanned,
			fmt.Errorf("planner produced no plan steps"))
	}

	rc.Plan = steps
	p.deps.Logger.Debug(ctx, "resolution plan created", zap.Int("steps", len(steps)))

	return &workflow.StepResult{Capability: p.Name(), Output: resp.Text, Usage: resp.Usage}, nil
}
