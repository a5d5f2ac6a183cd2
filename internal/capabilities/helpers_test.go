package capabilities

import (
	"context"
	"fmt"

	"github.com/fyrsmithlabs/issuepilot/internal/llm"
	"github.com/fyrsmithlabs/issuepilot/internal/logging"
	"github.com/fyrsmithlabs/issuepilot/internal/repohost"
	"github.com/fyrsmithlabs/issuepilot/internal/workflow"
)

// scriptedLLM returns queued responses in order and records requests.
type scriptedLLM struct {
	responses []*llm.Response
	errs      []error
	requests  []llm.Request
}

func (s *scriptedLLM) Complete(_ context.Context, req llm.Request) (*llm.Response, error) {
	s.requests = append(s.requests, req)
	i := len(s.requests) - 1
	if i < len(s.errs) && s.errs[i] != nil {
		return nil, s.errs[i]
	}
	if i < len(s.responses) {
		return s.responses[i], nil
	}
	return nil, fmt.Errorf("unexpected llm call %d", i)
}

func textResponse(text string) *llm.Response {
	return &llm.Response{Text: text, Usage: llm.Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15}}
}

// fakeRepo implements repohost.Service with overridable functions.
type fakeRepo struct {
	fetchIssue    func(ctx context.Context, owner, repo string, number int) (*repohost.Issue, error)
	listFiles     func(ctx context.Context, owner, repo, ref string) ([]string, error)
	fetchFile     func(ctx context.Context, owner, repo, path, ref string) (*repohost.FileContent, error)
	createBranch  func(ctx context.Context, owner, repo, branch, baseRef string) error
	commitChanges func(ctx context.Context, owner, repo, branch, message string, changes []repohost.FileChange) ([]repohost.CommittedFile, error)
	postComment   func(ctx context.Context, owner, repo string, number int, body string) error
}

func (f *fakeRepo) FetchIssue(ctx context.Context, owner, repo string, number int) (*repohost.Issue, error) {
	return f.fetchIssue(ctx, owner, repo, number)
}

func (f *fakeRepo) ListFiles(ctx context.Context, owner, repo, ref string) ([]string, error) {
	return f.listFiles(ctx, owner, repo, ref)
}

func (f *fakeRepo) FetchFile(ctx context.Context, owner, repo, path, ref string) (*repohost.FileContent, error) {
	return f.fetchFile(ctx, owner, repo, path, ref)
}

func (f *fakeRepo) CreateBranch(ctx context.Context, owner, repo, branch, baseRef string) error {
	return f.createBranch(ctx, owner, repo, branch, baseRef)
}

func (f *fakeRepo) CommitChanges(ctx context.Context, owner, repo, branch, message string, changes []repohost.FileChange) ([]repohost.CommittedFile, error) {
	return f.commitChanges(ctx, owner, repo, branch, message, changes)
}

func (f *fakeRepo) PostComment(ctx context.Context, owner, repo string, number int, body string) error {
	return f.postComment(ctx, owner, repo, number, body)
}

func testDeps(llmClient llm.Client, repo repohost.Service) Deps {
	meter, _ := llm.NewUsageMeter(nil)
	return Deps{
		Repo:   repo,
		LLM:    llmClient,
		Usage:  meter,
		Logger: logging.NewTestLogger().Logger,
	}
}

func solvedContext() *workflow.Context {
	rc := workflow.NewContext(workflow.IssueRef{
		Owner: "acme", Repo: "widgets", Number: 42, DefaultBranch: "main",
	}, 3)
	rc.Issue = &workflow.IssueDetails{
		Title:  "Crash when parsing empty input",
		Body:   "Parsing an empty string panics instead of returning an error.",
		Labels: []string{"bug"},
	}
	rc.TriageSummary = "Bug, high priority: parser panics on empty input."
	rc.Plan = []string{"Identify affected file(s).", "Draft code changes.", "Review solution."}
	rc.TargetFiles = []string{"parser/parse.go"}
	rc.OriginalContents["parser/parse.go"] = workflow.FileSnapshot{
		Content: "package parser\n",
		Exists:  true,
	}
	return rc
}
