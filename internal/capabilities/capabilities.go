// Package capabilities implements the concrete pipeline steps: each one
// binds a reasoning prompt and/or repository-host calls to the uniform
// capability contract the workflow controllers drive.
package capabilities

import (
	"context"
	"errors"

	"github.com/fyrsmithlabs/issuepilot/internal/llm"
	"github.com/fyrsmithlabs/issuepilot/internal/logging"
	"github.com/fyrsmithlabs/issuepilot/internal/repohost"
	"github.com/fyrsmithlabs/issuepilot/internal/workflow"
)

// Deps holds the collaborators every capability may need.
type Deps struct {
	Repo   repohost.Service
	LLM    llm.Client
	Usage  *llm.UsageMeter
	Logger *logging.Logger
}

// Set builds the full capability set for a run.
func Set(deps Deps, reviewerAspects []string, showTokenUsage bool) workflow.Capabilities {
	reviewers := make([]workflow.Capability, 0, len(reviewerAspects))
	for _, aspect := range reviewerAspects {
		reviewers = append(reviewers, NewReviewer(deps, aspect))
	}
	return workflow.Capabilities{
		Triage:        NewTriage(deps),
		Plan:          NewPlan(deps),
		IdentifyFiles: NewIdentifyFiles(deps),
		FetchContents: NewFetchContents(deps),
		Propose:       NewPropose(deps),
		Reviewers:     reviewers,
		CreateBranch:  NewCreateBranch(deps),
		Commit:        NewCommit(deps),
		Explain:       NewExplain(deps),
		Comment:       NewComment(deps, showTokenUsage),
	}
}

// complete runs one LLM call, records token usage under the capability
// name, and maps transport failures to the external-unavailable kind.
func (d Deps) complete(ctx context.Context, capability string, stage workflow.Stage, req llm.Request) (*llm.Response, error) {
	resp, err := d.LLM.Complete(ctx, req)
	if err != nil {
		return nil, workflow.NewError(workflow.KindUnavailable, stage, err)
	}
	if d.Usage != nil {
		d.Usage.Record(ctx, capability, resp.Usage)
	}
	return resp, nil
}

// hostErrorKind maps repository-host failures to workflow failure kinds.
func hostErrorKind(err error) workflow.Kind {
	switch {
	case errors.Is(err, repohost.ErrNotFound):
		return workflow.KindNotFound
	case errors.Is(err, repohost.ErrAuth):
		return workflow.KindAuth
	default:
		return workflow.KindUnavailable
	}
}
