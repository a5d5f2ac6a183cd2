package capabilities

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/issuepilot/internal/workflow"
)

func TestExtractCodeBlock(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "plain fence",
			text: "Here you go:\n```\nfoo := 1\n```\n",
			want: "foo := 1",
		},
		{
			name: "language tag",
			text: "```go\npackage main\n\nfunc main() {}\n```",
			want: "package main\n\nfunc main() {}",
		},
		{
			name: "first of several",
			text: "```\nfirst\n```\ntext\n```\nsecond\n```",
			want: "first",
		},
		{
			name: "no fence",
			text: "just prose, no code here",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractCodeBlock(tt.text))
		})
	}
}

func TestParsePlan(t *testing.T) {
	text := "1. Identify affected file(s).\n2. Draft code changes.\n\n3) Review solution.\n"
	assert.Equal(t, []string{
		"Identify affected file(s).",
		"Draft code changes.",
		"Review solution.",
	}, parsePlan(text))

	assert.Empty(t, parsePlan("   \n\n"))
}

func TestParseFileList(t *testing.T) {
	assert.Equal(t, []string{"src/parse.go", "src/lex.go"}, parseFileList("src/parse.go\n`src/lex.go`\n"))
	assert.Nil(t, parseFileList("None"))
	assert.Nil(t, parseFileList("none\n"))
	assert.Empty(t, parseFileList(""))
}

func TestParseProposalMultiFile(t *testing.T) {
	originals := map[string]workflow.FileSnapshot{
		"parser/parse.go": {Content: "old", Exists: true},
	}
	text := "Changes for `parser/parse.go`:\n```go\npackage parser\n\nfunc Parse() {}\n```\n\n" +
		"Changes for `parser/parse_test.go`:\n```go\npackage parser\n```\n\n" +
		"Delete `parser/legacy.go`.\n"

	ops, err := parseProposal(text, []string{"parser/parse.go", "parser/parse_test.go", "parser/legacy.go"}, originals)
	require.NoError(t, err)
	require.Len(t, ops, 3)

	assert.Equal(t, workflow.FileOperation{
		Path:    "parser/parse.go",
		Action:  workflow.ActionModify,
		Content: "package parser\n\nfunc Parse() {}",
	}, ops[0])
	assert.Equal(t, workflow.ActionCreate, ops[1].Action)
	assert.Equal(t, workflow.FileOperation{
		Path:   "parser/legacy.go",
		Action: workflow.ActionDelete,
	}, ops[2])
}

func TestParseProposalNoChangesNeeded(t *testing.T) {
	ops, err := parseProposal("No changes needed for `parser/parse.go`.", []string{"parser/parse.go"}, nil)
	require.NoError(t, err)
	assert.Empty(t, ops)
}

func TestParseProposalSingleTargetFallback(t *testing.T) {
	ops, err := parseProposal("Here is the fix:\n```go\npackage parser\n```\n", []string{"parser/parse.go"}, nil)
	require.NoError(t, err)
	require.Len(t, ops, 1)
	assert.Equal(t, "parser/parse.go", ops[0].Path)
	assert.Equal(t, workflow.ActionCreate, ops[0].Action)
	assert.Equal(t, "package parser", ops[0].Content)
}

func TestParseProposalMalformed(t *testing.T) {
	_, err := parseProposal("I am not sure what to do here.", []string{"a.go", "b.go"}, nil)
	require.Error(t, err)

	var wErr *workflow.Error
	require.True(t, errors.As(err, &wErr))
	assert.Equal(t, workflow.KindMalformedOutput, wErr.Kind)
}

func TestParseProposalHeaderWithoutCodeBlock(t *testing.T) {
	_, err := parseProposal("Changes for `a.go`:\nno fence here", []string{"a.go"}, nil)
	require.Error(t, err)
	assert.Equal(t, workflow.KindMalformedOutput, workflow.KindOf(err))
}
