package workflow

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/fyrsmithlabs/issuepilot/internal/logging"
)

// mockCapability is a testify mock for the Capability interface.
type mockCapability struct {
	mock.Mock
	name string
}

func newMockCapability(name string) *mockCapability {
	return &mockCapability{name: name}
}

func (m *mockCapability) Name() string {
	return m.name
}

func (m *mockCapability) Invoke(ctx context.Context, rc *Context) (*StepResult, error) {
	args := m.Called(ctx, rc)
	if res := args.Get(0); res != nil {
		return res.(*StepResult), args.Error(1)
	}
	return nil, args.Error(1)
}

func okResult(name, output string) *StepResult {
	return &StepResult{Capability: name, Output: output}
}

func testLogger() *logging.Logger {
	return logging.NewTestLogger().Logger
}

func testContext(maxCycles int) *Context {
	rc := NewContext(IssueRef{Owner: "acme", Repo: "widgets", Number: 42}, maxCycles)
	rc.ProposedOps = []FileOperation{
		{Path: "pkg/widgets/frob.go", Action: ActionModify, Content: "package widgets\n"},
	}
	return rc
}
