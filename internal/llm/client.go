// Package llm provides the reasoning backend client for issuepilot.
//
// Capabilities in the pipeline delegate their natural-language reasoning to a
// Client. The package wraps langchaingo so multiple OpenAI-compatible
// providers (including local proxies) can serve completions, and keeps
// per-run token accounting in a UsageMeter.
package llm

import (
	"context"
)

// Request is a single completion request.
type Request struct {
	// System is the system prompt establishing the capability's role.
	System string
	// Prompt is the user-turn payload (issue details, code, feedback).
	Prompt string
}

// Usage reports token consumption for one completion.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Add accumulates another usage sample.
func (u *Usage) Add(other Usage) {
	u.PromptTokens += other.PromptTokens
	u.CompletionTokens += other.CompletionTokens
	u.TotalTokens += other.TotalTokens
}

// Response is a completion result.
type Response struct {
	Text  string
	Usage Usage
}

// Client abstracts the reasoning backend. Implementations must be safe for
// sequential reuse across capabilities within a run.
type Client interface {
	// Complete sends one request and returns the model's text response.
	// Blocking; honors ctx cancellation between retries but an in-flight
	// HTTP call completes or fails naturally.
	Complete(ctx context.Context, req Request) (*Response, error)
}
