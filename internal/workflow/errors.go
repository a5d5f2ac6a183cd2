package workflow

import (
	"errors"
	"fmt"
)

// Kind classifies run failures for callers and the final report.
type Kind string

const (
	// KindNotFound means an issue, file, or branch was absent.
	KindNotFound Kind = "not_found"

	// KindAuth means the repository host rejected our credentials or
	// permissions.
	KindAuth Kind = "auth_error"

	// KindMalformedOutput means a capability's result could not be
	// parsed into its expected structure.
	KindMalformedOutput Kind = "malformed_output"

	// KindReviewExhausted means the review loop hit its cycle budget
	// without approval.
	KindReviewExhausted Kind = "review_exhausted"

	// KindReproposalFailed means the propose capability itself errored
	// during a revision cycle.
	KindReproposalFailed Kind = "reproposal_failed"

	// KindUnavailable means the repository host or reasoning backend
	// was unreachable.
	KindUnavailable Kind = "external_unavailable"

	// KindCanceled means the run was aborted at a stage boundary.
	KindCanceled Kind = "canceled"
)

// Error is a structured pipeline failure. Stage is the stage whose
// capability failed, not the last completed one.
type Error struct {
	Kind  Kind
	Stage Stage
	Err   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s failed (%s): %v", e.Stage, e.Kind, e.Err)
}

// Unwrap allows errors.Is and errors.As to reach the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a structured pipeline failure.
func NewError(kind Kind, stage Stage, err error) *Error {
	return &Error{Kind: kind, Stage: stage, Err: err}
}

// KindOf extracts the failure kind from an error chain. Errors that do
// not carry a kind are treated as external failures, since capability
// errors without structure almost always come from a collaborator.
func KindOf(err error) Kind {
	var wErr *Error
	if errors.As(err, &wErr) {
		return wErr.Kind
	}
	return KindUnavailable
}
