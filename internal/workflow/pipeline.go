package workflow

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/issuepilot/internal/logging"
)

// Capabilities is the full set of steps the pipeline runs, resolved once
// at run start. Reviewers are invoked in slice order.
type Capabilities struct {
	Triage        Capability
	Plan          Capability
	IdentifyFiles Capability
	FetchContents Capability
	Propose       Capability
	Reviewers     []Capability
	CreateBranch  Capability
	Commit        Capability
	Explain       Capability
	Comment       Capability
}

// Validate checks that every required capability is present.
func (c *Capabilities) Validate() error {
	required := map[string]Capability{
		"triage":         c.Triage,
		"plan":           c.Plan,
		"identify_files": c.IdentifyFiles,
		"fetch_contents": c.FetchContents,
		"propose":        c.Propose,
		"create_branch":  c.CreateBranch,
		"commit":         c.Commit,
		"explain":        c.Explain,
		"comment":        c.Comment,
	}
	for name, capability := range required {
		if capability == nil {
			return fmt.Errorf("missing capability: %s", name)
		}
	}
	if len(c.Reviewers) == 0 {
		return fmt.Errorf("at least one reviewer is required")
	}
	return nil
}

// Report is what a run returns to the caller: the terminal stage and the
// full context, plus failure details when the run did not finish.
type Report struct {
	RunID string

	// Terminal is StageDone on success and StageFailed otherwise.
	Terminal Stage

	// LastCompleted is the last stage that finished successfully.
	LastCompleted Stage

	// FailureKind is set only when Terminal is StageFailed.
	FailureKind Kind

	// Err is the failure that ended the run, nil on success.
	Err error

	Context *Context
}

// OrchestratorController drives the linear pipeline and hands off to the
// review loop between the initial proposal and the branch/commit tail.
type OrchestratorController struct {
	caps   Capabilities
	logger *logging.Logger
}

// NewOrchestratorController creates the top-level controller.
func NewOrchestratorController(caps Capabilities, logger *logging.Logger) (*OrchestratorController, error) {
	if err := caps.Validate(); err != nil {
		return nil, fmt.Errorf("invalid capability set: %w", err)
	}
	return &OrchestratorController{caps: caps, logger: logger}, nil
}

// step pairs a pipeline stage with the capability that completes it.
type step struct {
	stage Stage
	cap   Capability

	// skip reports whether the stage should be entered without
	// invoking the capability.
	skip func(rc *Context) bool
}

// Run executes the pipeline for one issue. The returned Report is always
// non-nil; the error mirrors Report.Err for callers that only check one.
func (o *OrchestratorController) Run(ctx context.Context, rc *Context) (*Report, error) {
	start := time.Now()
	ctx = logging.WithRunID(ctx, rc.RunID)
	ctx = logging.WithIssue(ctx, fmt.Sprintf("%s/%s#%d", rc.IssueRef.Owner, rc.IssueRef.Repo, rc.IssueRef.Number))

	o.logger.Info(ctx, "starting issue-resolution run",
		zap.Int("max_review_cycles", rc.MaxReviewCycles),
		zap.Bool("target_files_preset", rc.TargetFilesPreset),
	)

	head := []step{
		{stage: StageTriaged, cap: o.caps.Triage},
		{stage: StagePlanned, cap: o.caps.Plan},
		{stage: StageFilesIdentified, cap: o.caps.IdentifyFiles, skip: func(rc *Context) bool {
			return rc.TargetFilesPreset
		}},
		{stage: StageContentFetched, cap: o.caps.FetchContents},
		{stage: StageProposed, cap: o.caps.Propose},
	}
	for _, s := range head {
		if err := o.runStep(ctx, rc, s); err != nil {
			return o.fail(ctx, rc, s.stage, rc.Stage, err, start)
		}
	}

	// Handoff: the review loop owns control until it approves the
	// proposal or gives up. The pipeline resumes right here either way.
	rc.Stage = StageReviewing
	review := NewReviewLoopController(o.caps.Propose, o.caps.Reviewers, o.logger)
	if err := review.Run(ctx, rc); err != nil {
		return o.fail(ctx, rc, StageReviewing, StageProposed, err, start)
	}
	rc.Stage = StageApproved
	recordStage(ctx, StageApproved)

	tail := []step{
		{stage: StageBranchCreated, cap: o.caps.CreateBranch},
		{stage: StageCommitted, cap: o.caps.Commit},
		{stage: StageExplained, cap: o.caps.Explain},
		{stage: StageCommented, cap: o.caps.Comment},
	}
	for _, s := range tail {
		if err := o.runStep(ctx, rc, s); err != nil {
			return o.fail(ctx, rc, s.stage, rc.Stage, err, start)
		}
	}

	rc.Stage = StageDone
	recordRun(ctx, StageDone, time.Since(start).Seconds())
	o.logger.Info(ctx, "run completed",
		zap.Int("review_cycles", rc.ReviewCycle),
		zap.Int("operations", len(rc.ApprovedOps)),
		zap.String("branch", rc.BranchName),
		zap.Duration("duration", time.Since(start)),
	)

	return &Report{
		RunID:         rc.RunID,
		Terminal:      StageDone,
		LastCompleted: StageDone,
		Context:       rc,
	}, nil
}

// runStep advances the pipeline by one stage. Cancellation is honored at
// the stage boundary; an in-flight capability call is left to finish or
// fail on its own.
func (o *OrchestratorController) runStep(ctx context.Context, rc *Context, s step) error {
	if err := ctx.Err(); err != nil {
		return NewError(KindCanceled, s.stage, err)
	}

	if s.skip != nil && s.skip(rc) {
		o.logger.Debug(ctx, "stage satisfied by caller input, skipping capability",
			zap.String("stage", string(s.stage)),
		)
		rc.Stage = s.stage
		recordStage(ctx, s.stage)
		return nil
	}

	ctx = logging.WithCapability(ctx, s.cap.Name())
	o.logger.Debug(ctx, "invoking capability", zap.String("stage", string(s.stage)))

	start := time.Now()
	result, err := s.cap.Invoke(ctx, rc)
	recordCapability(ctx, s.cap.Name(), time.Since(start).Seconds(), err)
	if err != nil {
		return err
	}

	rc.Stage = s.stage
	recordStage(ctx, s.stage)
	o.logger.Info(ctx, "stage completed",
		zap.String("stage", string(s.stage)),
		zap.Duration("duration", time.Since(start)),
		zap.Int("output_length", len(result.Output)),
	)
	return nil
}

// fail moves the run into the absorbing failure stage. The context keeps
// everything accumulated so far so a human can diagnose without rerunning.
func (o *OrchestratorController) fail(ctx context.Context, rc *Context, at, lastCompleted Stage, err error, start time.Time) (*Report, error) {
	kind := KindOf(err)

	rc.Stage = StageFailed
	rc.FailureKind = kind
	recordRun(ctx, StageFailed, time.Since(start).Seconds())

	o.logger.Error(ctx, "run failed",
		zap.String("failed_stage", string(at)),
		zap.String("last_completed", string(lastCompleted)),
		zap.String("kind", string(kind)),
		zap.Int("review_history", len(rc.ReviewHistory)),
		zap.Error(err),
	)

	report := &Report{
		RunID:         rc.RunID,
		Terminal:      StageFailed,
		LastCompleted: lastCompleted,
		FailureKind:   kind,
		Err:           err,
		Context:       rc,
	}
	return report, err
}
