package workflow

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestReviewLoopApprovesWhenAllReviewersApprove(t *testing.T) {
	rc := testContext(3)

	technical := newMockCapability("review_technical")
	technical.On("Invoke", mock.Anything, rc).Return(okResult("review_technical", "LGTM"), nil).Once()
	style := newMockCapability("review_style")
	style.On("Invoke", mock.Anything, rc).Return(okResult("review_style", "Approved, clean and readable."), nil).Once()
	proposer := newMockCapability("propose")

	loop := NewReviewLoopController(proposer, []Capability{technical, style}, testLogger())
	err := loop.Run(context.Background(), rc)

	require.NoError(t, err)
	assert.Equal(t, rc.ProposedOps, rc.ApprovedOps)
	assert.Equal(t, 0, rc.ReviewCycle)
	require.Len(t, rc.ReviewHistory, 2)
	assert.Equal(t, VerdictApprove, rc.ReviewHistory[0].Outcome)
	assert.Equal(t, VerdictApprove, rc.ReviewHistory[1].Outcome)
	proposer.AssertNotCalled(t, "Invoke", mock.Anything, mock.Anything)
	technical.AssertExpectations(t)
	style.AssertExpectations(t)
}

func TestReviewLoopSingleVetoForcesRevision(t *testing.T) {
	rc := testContext(0)
	lastProposal := rc.ProposedOps

	technical := newMockCapability("review_technical")
	technical.On("Invoke", mock.Anything, rc).Return(okResult("review_technical", "Approved"), nil).Once()
	style := newMockCapability("review_style")
	style.On("Invoke", mock.Anything, rc).Return(okResult("review_style", "Rename the helper, too cryptic."), nil).Once()
	proposer := newMockCapability("propose")

	loop := NewReviewLoopController(proposer, []Capability{technical, style}, testLogger())
	err := loop.Run(context.Background(), rc)

	require.Error(t, err)
	assert.Equal(t, KindReviewExhausted, KindOf(err))
	assert.Nil(t, rc.ApprovedOps)
	assert.Equal(t, lastProposal, rc.ProposedOps)
	require.Len(t, rc.ReviewHistory, 2)
	assert.Equal(t, VerdictApprove, rc.ReviewHistory[0].Outcome)
	assert.Equal(t, VerdictRevise, rc.ReviewHistory[1].Outcome)
}

func TestReviewLoopBoundedByCycleBudget(t *testing.T) {
	const maxCycles = 2
	rc := testContext(maxCycles)

	reviewer := newMockCapability("review_technical")
	reviewer.On("Invoke", mock.Anything, rc).Return(okResult("review_technical", "Still missing input validation."), nil)
	proposer := newMockCapability("propose")
	proposer.On("Invoke", mock.Anything, rc).Run(func(args mock.Arguments) {
		rc.ProposedOps = []FileOperation{
			{Path: "pkg/widgets/frob.go", Action: ActionModify, Content: "package widgets\n// revised\n"},
		}
	}).Return(okResult("propose", "revised"), nil)

	loop := NewReviewLoopController(proposer, []Capability{reviewer}, testLogger())
	err := loop.Run(context.Background(), rc)

	require.Error(t, err)
	assert.Equal(t, KindReviewExhausted, KindOf(err))
	assert.Equal(t, maxCycles, rc.ReviewCycle)

	// One revision proposal per spent cycle, one reviewer call per cycle
	// including the final exhausted one.
	proposer.AssertNumberOfCalls(t, "Invoke", maxCycles)
	reviewer.AssertNumberOfCalls(t, "Invoke", maxCycles+1)
	assert.Len(t, rc.ReviewHistory, maxCycles+1)
}

func TestReviewLoopFailedReviewerCountsAsRevise(t *testing.T) {
	rc := testContext(0)

	reviewer := newMockCapability("review_technical")
	reviewer.On("Invoke", mock.Anything, rc).Return(nil, errors.New("backend timeout")).Once()
	proposer := newMockCapability("propose")

	loop := NewReviewLoopController(proposer, []Capability{reviewer}, testLogger())
	err := loop.Run(context.Background(), rc)

	require.Error(t, err)
	assert.Equal(t, KindReviewExhausted, KindOf(err))
	require.Len(t, rc.ReviewHistory, 1)
	assert.Equal(t, VerdictRevise, rc.ReviewHistory[0].Outcome)
	assert.Contains(t, rc.ReviewHistory[0].Verdict, "could not produce a verdict")
	assert.Nil(t, rc.ApprovedOps)
}

func TestReviewLoopEmptyProposalShortCircuits(t *testing.T) {
	rc := testContext(3)
	rc.ProposedOps = nil

	reviewer := newMockCapability("review_technical")
	proposer := newMockCapability("propose")

	loop := NewReviewLoopController(proposer, []Capability{reviewer}, testLogger())
	err := loop.Run(context.Background(), rc)

	require.NoError(t, err)
	assert.NotNil(t, rc.ApprovedOps)
	assert.Empty(t, rc.ApprovedOps)
	assert.Empty(t, rc.ReviewHistory)
	reviewer.AssertNotCalled(t, "Invoke", mock.Anything, mock.Anything)
}

func TestReviewLoopReproposalFailure(t *testing.T) {
	rc := testContext(2)

	reviewer := newMockCapability("review_technical")
	reviewer.On("Invoke", mock.Anything, rc).Return(okResult("review_technical", "Handle the empty slice case."), nil).Once()
	proposer := newMockCapability("propose")
	proposer.On("Invoke", mock.Anything, rc).Return(nil, errors.New("backend unreachable")).Once()

	loop := NewReviewLoopController(proposer, []Capability{reviewer}, testLogger())
	err := loop.Run(context.Background(), rc)

	require.Error(t, err)
	assert.Equal(t, KindReproposalFailed, KindOf(err))
	assert.Equal(t, 1, rc.ReviewCycle)
	assert.Nil(t, rc.ApprovedOps)
}

func TestReviewLoopRevisionThenApproval(t *testing.T) {
	rc := testContext(1)
	revised := []FileOperation{
		{Path: "pkg/widgets/frob.go", Action: ActionModify, Content: "package widgets\n// revised\n"},
	}

	technical := newMockCapability("review_technical")
	technical.On("Invoke", mock.Anything, rc).Return(okResult("review_technical", "Off-by-one in the loop bound."), nil).Once()
	technical.On("Invoke", mock.Anything, rc).Return(okResult("review_technical", "Approved"), nil).Once()
	style := newMockCapability("review_style")
	style.On("Invoke", mock.Anything, rc).Return(okResult("review_style", "Naming needs work."), nil).Once()
	style.On("Invoke", mock.Anything, rc).Return(okResult("review_style", "LGTM"), nil).Once()
	proposer := newMockCapability("propose")
	proposer.On("Invoke", mock.Anything, rc).Run(func(args mock.Arguments) {
		rc.ProposedOps = revised
	}).Return(okResult("propose", "revised"), nil).Once()

	loop := NewReviewLoopController(proposer, []Capability{technical, style}, testLogger())
	err := loop.Run(context.Background(), rc)

	require.NoError(t, err)
	assert.Equal(t, 1, rc.ReviewCycle)
	assert.Equal(t, revised, rc.ApprovedOps)

	require.Len(t, rc.ReviewHistory, 4)
	cycles := []int{rc.ReviewHistory[0].Cycle, rc.ReviewHistory[1].Cycle, rc.ReviewHistory[2].Cycle, rc.ReviewHistory[3].Cycle}
	assert.Equal(t, []int{0, 0, 1, 1}, cycles)

	// The re-proposal sees both revise verdicts from the failed cycle.
	assert.Equal(t, []string{"Off-by-one in the loop bound.", "Naming needs work."}, rc.RevisionFeedback)

	technical.AssertExpectations(t)
	style.AssertExpectations(t)
	proposer.AssertExpectations(t)
}

func TestReviewLoopEmptyReproposalApprovesWithoutReview(t *testing.T) {
	rc := testContext(1)

	reviewer := newMockCapability("review_technical")
	reviewer.On("Invoke", mock.Anything, rc).Return(okResult("review_technical", "Drop this change entirely."), nil).Once()
	proposer := newMockCapability("propose")
	proposer.On("Invoke", mock.Anything, rc).Run(func(args mock.Arguments) {
		rc.ProposedOps = nil
	}).Return(okResult("propose", "no changes needed"), nil).Once()

	loop := NewReviewLoopController(proposer, []Capability{reviewer}, testLogger())
	err := loop.Run(context.Background(), rc)

	require.NoError(t, err)
	assert.NotNil(t, rc.ApprovedOps)
	assert.Empty(t, rc.ApprovedOps)
	reviewer.AssertNumberOfCalls(t, "Invoke", 1)
	assert.Len(t, rc.ReviewHistory, 1)
}

func TestReviewLoopHonorsCancellation(t *testing.T) {
	rc := testContext(3)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	reviewer := newMockCapability("review_technical")
	proposer := newMockCapability("propose")

	loop := NewReviewLoopController(proposer, []Capability{reviewer}, testLogger())
	err := loop.Run(ctx, rc)

	require.Error(t, err)
	assert.Equal(t, KindCanceled, KindOf(err))
	reviewer.AssertNotCalled(t, "Invoke", mock.Anything, mock.Anything)
}
