package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsageAdd(t *testing.T) {
	u := Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15}
	u.Add(Usage{PromptTokens: 3, CompletionTokens: 2, TotalTokens: 5})

	assert.Equal(t, 13, u.PromptTokens)
	assert.Equal(t, 7, u.CompletionTokens)
	assert.Equal(t, 20, u.TotalTokens)
}

func TestUsageMeterRecord(t *testing.T) {
	m, err := NewUsageMeter(nil)
	require.NoError(t, err)

	ctx := context.Background()
	m.Record(ctx, "triage", Usage{PromptTokens: 100, CompletionTokens: 20, TotalTokens: 120})
	m.Record(ctx, "triage", Usage{PromptTokens: 50, CompletionTokens: 10, TotalTokens: 60})
	m.Record(ctx, "plan", Usage{PromptTokens: 200, CompletionTokens: 40, TotalTokens: 240})

	total := m.Total()
	assert.Equal(t, 350, total.PromptTokens)
	assert.Equal(t, 70, total.CompletionTokens)
	assert.Equal(t, 420, total.TotalTokens)

	byLabel := m.ByLabel()
	assert.Equal(t, 180, byLabel["triage"].TotalTokens)
	assert.Equal(t, 240, byLabel["plan"].TotalTokens)
}

func TestUsageMeterReport(t *testing.T) {
	m, err := NewUsageMeter(nil)
	require.NoError(t, err)

	assert.Empty(t, m.Report())

	m.Record(context.Background(), "propose", Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15})

	report := m.Report()
	assert.Contains(t, report, "### Token Usage")
	assert.Contains(t, report, "| propose | 10 | 5 | 15 |")
	assert.Contains(t, report, "| **total** | 10 | 5 | 15 |")
}

func TestUsageFromGenerationInfo(t *testing.T) {
	tests := []struct {
		name string
		info map[string]any
		want Usage
	}{
		{
			name: "ints",
			info: map[string]any{"PromptTokens": 12, "CompletionTokens": 8, "TotalTokens": 20},
			want: Usage{PromptTokens: 12, CompletionTokens: 8, TotalTokens: 20},
		},
		{
			name: "floats from json decoding",
			info: map[string]any{"PromptTokens": float64(7), "CompletionTokens": float64(3), "TotalTokens": float64(10)},
			want: Usage{PromptTokens: 7, CompletionTokens: 3, TotalTokens: 10},
		},
		{
			name: "missing total derived",
			info: map[string]any{"PromptTokens": 4, "CompletionTokens": 6},
			want: Usage{PromptTokens: 4, CompletionTokens: 6, TotalTokens: 10},
		},
		{
			name: "nil info",
			info: nil,
			want: Usage{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, usageFromGenerationInfo(tt.info))
		})
	}
}
