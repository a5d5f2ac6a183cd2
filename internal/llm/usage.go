package llm

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// UsageMeter accumulates per-capability token usage across a run and
// mirrors the counts into OpenTelemetry counters.
type UsageMeter struct {
	mu      sync.Mutex
	byLabel map[string]Usage
	total   Usage

	promptTokens     metric.Int64Counter
	completionTokens metric.Int64Counter
}

// NewUsageMeter creates a meter. The OTEL meter may be nil, in which case
// only in-process accumulation happens.
func NewUsageMeter(meter metric.Meter) (*UsageMeter, error) {
	m := &UsageMeter{byLabel: make(map[string]Usage)}

	if meter != nil {
		var err error
		m.promptTokens, err = meter.Int64Counter(
			"issuepilot.llm.prompt_tokens",
			metric.WithDescription("Prompt tokens consumed by LLM calls"),
		)
		if err != nil {
			return nil, fmt.Errorf("creating prompt token counter: %w", err)
		}
		m.completionTokens, err = meter.Int64Counter(
			"issuepilot.llm.completion_tokens",
			metric.WithDescription("Completion tokens produced by LLM calls"),
		)
		if err != nil {
			return nil, fmt.Errorf("creating completion token counter: %w", err)
		}
	}

	return m, nil
}

// Record adds usage under a label, typically the capability name.
func (m *UsageMeter) Record(ctx context.Context, label string, u Usage) {
	m.mu.Lock()
	cur := m.byLabel[label]
	cur.Add(u)
	m.byLabel[label] = cur
	m.total.Add(u)
	m.mu.Unlock()

	attrs := metric.WithAttributes(attribute.String("capability", label))
	if m.promptTokens != nil {
		m.promptTokens.Add(ctx, int64(u.PromptTokens), attrs)
	}
	if m.completionTokens != nil {
		m.completionTokens.Add(ctx, int64(u.CompletionTokens), attrs)
	}
}

// Total returns the accumulated usage across all labels.
func (m *UsageMeter) Total() Usage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.total
}

// ByLabel returns a copy of the per-label breakdown.
func (m *UsageMeter) ByLabel() map[string]Usage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]Usage, len(m.byLabel))
	for k, v := range m.byLabel {
		out[k] = v
	}
	return out
}

// Report renders a markdown table of token usage, suitable for appending
// to an issue comment.
func (m *UsageMeter) Report() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.byLabel) == 0 {
		return ""
	}

	labels := make([]string, 0, len(m.byLabel))
	for k := range m.byLabel {
		labels = append(labels, k)
	}
	sort.Strings(labels)

	var b strings.Builder
	b.WriteString("### Token Usage\n\n")
	b.WriteString("| Step | Prompt | Completion | Total |\n")
	b.WriteString("|------|--------|------------|-------|\n")
	for _, label := range labels {
		u := m.byLabel[label]
		fmt.Fprintf(&b, "| %s | %d | %d | %d |\n", label, u.PromptTokens, u.CompletionTokens, u.TotalTokens)
	}
	fmt.Fprintf(&b, "| **total** | %d | %d | %d |\n", m.total.PromptTokens, m.total.CompletionTokens, m.total.TotalTokens)
	return b.String()
}
