package workflow

import (
	"context"

	"github.com/fyrsmithlabs/issuepilot/internal/llm"
)

// StepResult is the successful outcome of one capability invocation.
// Capabilities write their structured outputs directly into the run
// Context; Output carries the step's raw text for logging and for
// verdict classification.
type StepResult struct {
	Capability string
	Output     string
	Usage      llm.Usage
}

// Capability is one unit of pipeline work. Implementations must only
// write the Context fields they own, and must be safe to re-invoke with
// the same context shape, since the review loop re-runs the propose
// capability on every revision cycle.
type Capability interface {
	// Name returns a stable identifier used in logs, metrics, and the
	// review history.
	Name() string

	// Invoke performs the step against the run context. A non-nil
	// error should be an *Error carrying the failure kind.
	Invoke(ctx context.Context, rc *Context) (*StepResult, error)
}
