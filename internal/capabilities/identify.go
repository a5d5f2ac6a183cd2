package capabilities

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/issuepilot/internal/llm"
	"github.com/fyrsmithlabs/issuepilot/internal/workflow"
)

// IdentifyFiles selects the target files for the fix by showing the
// repository's file listing to the reasoning backend. It writes
// Context.TargetFiles. The controller skips this step entirely when the
// caller supplied target files.
type IdentifyFiles struct {
	deps Deps
}

func NewIdentifyFiles(deps Deps) *IdentifyFiles {
	return &IdentifyFiles{deps: deps}
}

func (f *IdentifyFiles) Name() string { return "identify_files" }

func (f *IdentifyFiles) Invoke(ctx context.Context, rc *workflow.Context) (*workflow.StepResult, error) {
	listing, err := f.deps.Repo.ListFiles(ctx, rc.IssueRef.Owner, rc.IssueRef.Repo, rc.IssueRef.DefaultBranch)
	if err != nil {
		return nil, workflow.NewError(hostErrorKind(err), workflow.StageFilesIdentified, err)
	}

	resp, err := f.deps.complete(ctx, f.Name(), workflow.StageFilesIdentified, llm.Request{
		System: identifySystemPrompt,
		Prompt: fmt.Sprintf("%s\n%s\nRepository files:\n%s\n",
			issueHeader(rc), planBlock(rc), strings.Join(listing, "\n")),
	})
	if err != nil {
		return nil, err
	}

	paths := parseFileList(resp.Text)

	// Unknown paths are kept so a fix can introduce new files, but they
	// are worth flagging since the identifier was shown the listing.
	known := make(map[string]struct{}, len(listing))
	for _, p := range listing {
		known[p] = struct{}{}
	}
	for _, p := range paths {
		if _, ok := known[p]; !ok {
			f.deps.Logger.Warn(ctx, "identified file not present in repository listing",
				zap.String("path", p),
			)
		}
	}

	rc.TargetFiles = paths
	f.deps.Logger.Info(ctx, "target files identified",
		zap.Strings("paths", paths),
	)

	return &workflow.StepResult{Capability: f.Name(), Output: resp.Text, Usage: resp.Usage}, nil
}
