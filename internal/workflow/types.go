// Package workflow implements the issue-resolution pipeline: a top-level
// controller that sequences reasoning steps over a shared run context, and
// a nested review loop that drives bounded propose/review cycles until a
// proposal is approved or the revision budget runs out.
package workflow

import (
	"github.com/google/uuid"
)

// Stage represents a distinct pipeline stage.
type Stage string

const (
	// StageInit is the starting stage before any capability has run.
	StageInit Stage = "init"

	// StageTriaged means issue metadata has been fetched and summarized.
	StageTriaged Stage = "triaged"

	// StagePlanned means a step-by-step resolution plan exists.
	StagePlanned Stage = "planned"

	// StageFilesIdentified means the target file set is known.
	StageFilesIdentified Stage = "files_identified"

	// StageContentFetched means original contents of the target files
	// have been retrieved.
	StageContentFetched Stage = "content_fetched"

	// StageProposed means an initial set of file operations exists.
	StageProposed Stage = "proposed"

	// StageReviewing means control is inside the review loop.
	StageReviewing Stage = "reviewing"

	// StageApproved means the review loop accepted a proposal.
	StageApproved Stage = "approved"

	// StageBranchCreated means the working branch exists on the host.
	StageBranchCreated Stage = "branch_created"

	// StageCommitted means all approved operations have been committed.
	StageCommitted Stage = "committed"

	// StageExplained means per-file explanations have been produced.
	StageExplained Stage = "explained"

	// StageCommented means the summary comment has been posted.
	StageCommented Stage = "commented"

	// StageDone is the successful terminal stage.
	StageDone Stage = "done"

	// StageFailed is the absorbing failure stage, reachable from any
	// other stage.
	StageFailed Stage = "failed"
)

// IssueRef identifies the issue a run is solving. Immutable after
// creation except for DefaultBranch, which triage fills in.
type IssueRef struct {
	Owner         string
	Repo          string
	Number        int
	DefaultBranch string
}

// IssueDetails holds the issue text triage retrieved.
type IssueDetails struct {
	Title  string
	Body   string
	Labels []string
}

// FileAction is the kind of change a proposal applies to a file.
type FileAction string

const (
	ActionModify FileAction = "modify"
	ActionCreate FileAction = "create"
	ActionDelete FileAction = "delete"
)

// FileOperation is one proposed change to a repository file. Content is
// empty for delete operations.
type FileOperation struct {
	Path    string
	Action  FileAction
	Content string
}

// FileSnapshot is the original content of a target file. Exists is false
// when the file did not exist when fetched, meaning the proposal creates it.
type FileSnapshot struct {
	Content string
	Exists  bool
}

// VerdictOutcome is a reviewer's judgment normalized to a binary tag.
type VerdictOutcome string

const (
	VerdictApprove VerdictOutcome = "approve"
	VerdictRevise  VerdictOutcome = "revise"
)

// ReviewRecord is one reviewer's verdict in one cycle. Records are only
// ever appended, never rewritten, so the history is a full audit trail.
type ReviewRecord struct {
	Cycle    int
	Reviewer string
	Verdict  string
	Outcome  VerdictOutcome
}

// CommitResult records one committed file.
type CommitResult struct {
	Path      string
	CommitSHA string
}

// Explanation is the natural-language description of one file's change.
type Explanation struct {
	Path string
	Text string
}

// Context is the single mutable state container for one run. It is owned
// by the controller for the run's duration and handed by reference to each
// capability. Each field has exactly one writer:
//
//	IssueRef.DefaultBranch, Issue  - triage
//	Plan                           - plan
//	TargetFiles                    - file identification (or the caller)
//	OriginalContents               - content fetch
//	ProposedOps, RevisionFeedback  - propose
//	ReviewHistory, ReviewCycle,
//	ApprovedOps                    - review loop
//	BranchName                     - branch creation
//	CommitResults                  - commit
//	Explanations                   - explain
//	Stage, FailureKind             - controllers
type Context struct {
	RunID string

	IssueRef IssueRef
	Issue    *IssueDetails

	// TriageSummary is the triage step's free-text assessment, carried
	// into the final comment.
	TriageSummary string

	Plan []string

	// TargetFiles is the set of files the proposal may touch. When
	// TargetFilesPreset is true the caller supplied them and the file
	// identification step is skipped.
	TargetFiles       []string
	TargetFilesPreset bool

	OriginalContents map[string]FileSnapshot

	// ProposedOps always holds the latest proposal. Earlier proposals
	// are not kept; earlier verdicts are, in ReviewHistory.
	ProposedOps []FileOperation

	// RevisionFeedback carries the revise verdicts from the most recent
	// review cycle into the next proposal.
	RevisionFeedback []string

	ReviewHistory   []ReviewRecord
	ReviewCycle     int
	MaxReviewCycles int

	// ApprovedOps is set exactly once, on approval. A nil value means
	// the run never reached approval.
	ApprovedOps []FileOperation

	BranchName    string
	CommitResults []CommitResult
	Explanations  []Explanation

	Stage       Stage
	FailureKind Kind
}

// NewContext creates the context for one run.
func NewContext(ref IssueRef, maxReviewCycles int) *Context {
	return &Context{
		RunID:            uuid.NewString(),
		IssueRef:         ref,
		OriginalContents: make(map[string]FileSnapshot),
		MaxReviewCycles:  maxReviewCycles,
		Stage:            StageInit,
	}
}

// SetTargetFiles records caller-supplied target files, which makes the
// file identification step a no-op.
func (c *Context) SetTargetFiles(paths []string) {
	if len(paths) == 0 {
		return
	}
	c.TargetFiles = append([]string(nil), paths...)
	c.TargetFilesPreset = true
}
