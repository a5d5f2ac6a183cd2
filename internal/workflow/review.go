package workflow

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/issuepilot/internal/logging"
)

// ReviewLoopController runs the bounded propose/review cycle. Reviewers
// are invoked in a fixed order each cycle; each one can veto the proposal.
// A vetoed cycle triggers a re-proposal until Context.MaxReviewCycles
// revisions have been spent, after which the loop fails.
type ReviewLoopController struct {
	proposer  Capability
	reviewers []Capability
	logger    *logging.Logger
}

// NewReviewLoopController creates the review loop. The reviewer slice
// order is the veto order and is fixed for the run.
func NewReviewLoopController(proposer Capability, reviewers []Capability, logger *logging.Logger) *ReviewLoopController {
	return &ReviewLoopController{
		proposer:  proposer,
		reviewers: reviewers,
		logger:    logger,
	}
}

// Run drives review cycles until approval or exhaustion. On approval it
// sets rc.ApprovedOps and returns nil. On failure it returns an *Error
// with kind KindReviewExhausted or KindReproposalFailed; rc.ProposedOps
// keeps the last proposal for diagnostics, and rc.ApprovedOps stays unset.
//
// The propose capability runs at most MaxReviewCycles times here, once
// per revision; the initial proposal happened before the handoff.
func (c *ReviewLoopController) Run(ctx context.Context, rc *Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return NewError(KindCanceled, StageReviewing, err)
		}

		// Nothing to review means nothing to veto.
		if len(rc.ProposedOps) == 0 {
			c.logger.Info(ctx, "proposal is empty, approving without review",
				zap.Int("cycle", rc.ReviewCycle),
			)
			rc.ApprovedOps = []FileOperation{}
			return nil
		}

		reviseVerdicts := c.collectVerdicts(ctx, rc)

		if len(reviseVerdicts) == 0 {
			rc.ApprovedOps = rc.ProposedOps
			c.logger.Info(ctx, "proposal approved by all reviewers",
				zap.Int("cycle", rc.ReviewCycle),
				zap.Int("operations", len(rc.ApprovedOps)),
			)
			return nil
		}

		if rc.ReviewCycle >= rc.MaxReviewCycles {
			c.logger.Warn(ctx, "review cycle budget exhausted without approval",
				zap.Int("cycles", rc.ReviewCycle+1),
				zap.Int("max_review_cycles", rc.MaxReviewCycles),
			)
			return NewError(KindReviewExhausted, StageReviewing,
				fmt.Errorf("no approval after %d review cycles", rc.ReviewCycle+1))
		}

		rc.ReviewCycle++
		rc.RevisionFeedback = reviseVerdicts
		recordReviewCycle(ctx, rc.ReviewCycle)

		c.logger.Info(ctx, "revision requested, re-proposing",
			zap.Int("cycle", rc.ReviewCycle),
			zap.Int("revise_verdicts", len(reviseVerdicts)),
		)

		start := time.Now()
		_, err := c.proposer.Invoke(ctx, rc)
		recordCapability(ctx, c.proposer.Name(), time.Since(start).Seconds(), err)
		if err != nil {
			return NewError(KindReproposalFailed, StageReviewing,
				fmt.Errorf("re-proposal in cycle %d: %w", rc.ReviewCycle, err))
		}
	}
}

// collectVerdicts invokes every reviewer in order, appends all verdicts
// to the history, and returns the revise verdict texts from this cycle.
// A reviewer that fails outright counts as a revise with a synthetic
// verdict: review never fails open.
func (c *ReviewLoopController) collectVerdicts(ctx context.Context, rc *Context) []string {
	var reviseVerdicts []string

	for _, reviewer := range c.reviewers {
		start := time.Now()
		result, err := reviewer.Invoke(ctx, rc)
		recordCapability(ctx, reviewer.Name(), time.Since(start).Seconds(), err)

		var verdict string
		var outcome VerdictOutcome
		if err != nil {
			verdict = fmt.Sprintf("reviewer could not produce a verdict: %v", err)
			outcome = VerdictRevise
			c.logger.Warn(ctx, "reviewer failed, treating as revision request",
				zap.String("reviewer", reviewer.Name()),
				zap.Int("cycle", rc.ReviewCycle),
				zap.Error(err),
			)
		} else {
			verdict = result.Output
			outcome = ClassifyVerdict(verdict)
		}

		rc.ReviewHistory = append(rc.ReviewHistory, ReviewRecord{
			Cycle:    rc.ReviewCycle,
			Reviewer: reviewer.Name(),
			Verdict:  verdict,
			Outcome:  outcome,
		})
		recordVerdict(ctx, reviewer.Name(), outcome)

		c.logger.Debug(ctx, "reviewer verdict recorded",
			zap.String("reviewer", reviewer.Name()),
			zap.Int("cycle", rc.ReviewCycle),
			zap.String("outcome", string(outcome)),
		)

		if outcome == VerdictRevise {
			reviseVerdicts = append(reviseVerdicts, verdict)
		}
	}

	return reviseVerdicts
}
