package capabilities

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/issuepilot/internal/workflow"
)

// FetchContents retrieves the current content of every target file so
// the proposer and explainer can see the before state. Missing files are
// recorded as absent, not treated as failures, since a fix may create
// them. It writes Context.OriginalContents.
type FetchContents struct {
	deps Deps
}

func NewFetchContents(deps Deps) *FetchContents {
	return &FetchContents{deps: deps}
}

func (f *FetchContents) Name() string { return "fetch_contents" }

func (f *FetchContents) Invoke(ctx context.Context, rc *workflow.Context) (*workflow.StepResult, error) {
	fetched := 0
	for _, path := range rc.TargetFiles {
		content, err := f.deps.Repo.FetchFile(ctx, rc.IssueRef.Owner, rc.IssueRef.Repo, path, rc.IssueRef.DefaultBranch)
		if err != nil {
			return nil, workflow.NewError(hostErrorKind(err), workflow.StageContentFetched, err)
		}
		rc.OriginalContents[path] = workflow.FileSnapshot{
			Content: content.Content,
			Exists:  content.Exists,
		}
		if content.Exists {
			fetched++
		}
	}

	f.deps.Logger.Debug(ctx, "fetched original file contents",
		zap.Int("targets", len(rc.TargetFiles)),
		zap.Int("existing", fetched),
	)

	output := fmt.Sprintf("fetched %d of %d target files", fetched, len(rc.TargetFiles))
	return &workflow.StepResult{Capability: f.Name(), Output: output}, nil
}
