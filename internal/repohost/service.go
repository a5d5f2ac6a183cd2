// Package repohost provides access to the repository hosting service that
// owns the issue being solved. All repository reads and writes go through
// the host's API so no local clone is required.
package repohost

import "context"

// Issue holds the metadata the solving pipeline needs from an issue.
type Issue struct {
	Number        int
	Title         string
	Body          string
	Labels        []string
	DefaultBranch string
}

// FileContent is the content of a single repository file at a ref.
// Exists is false when the path does not exist at that ref, which is a
// normal outcome when a proposal creates a new file.
type FileContent struct {
	Path    string
	Content string
	SHA     string
	Exists  bool
}

// FileAction is the kind of change applied to a repository file.
type FileAction string

const (
	ActionCreate FileAction = "create"
	ActionModify FileAction = "modify"
	ActionDelete FileAction = "delete"
)

// FileChange is a single file mutation to commit.
type FileChange struct {
	Path    string
	Action  FileAction
	Content string
}

// CommittedFile records the result of committing one file change.
type CommittedFile struct {
	Path      string
	CommitSHA string
}

// Service is the repository host contract the pipeline depends on.
type Service interface {
	// FetchIssue retrieves issue metadata, including the repository's
	// default branch.
	FetchIssue(ctx context.Context, owner, repo string, number int) (*Issue, error)

	// ListFiles returns all file paths in the repository tree at ref.
	ListFiles(ctx context.Context, owner, repo, ref string) ([]string, error)

	// FetchFile retrieves one file's content at ref. A missing path
	// returns a FileContent with Exists false, not an error.
	FetchFile(ctx context.Context, owner, repo, path, ref string) (*FileContent, error)

	// CreateBranch creates a branch at the head of baseRef. An existing
	// branch with the same name is not an error.
	CreateBranch(ctx context.Context, owner, repo, branch, baseRef string) error

	// CommitChanges applies each change as a commit on branch using the
	// contents API, looking up the current blob SHA per file.
	CommitChanges(ctx context.Context, owner, repo, branch, message string, changes []FileChange) ([]CommittedFile, error)

	// PostComment adds a comment to the issue.
	PostComment(ctx context.Context, owner, repo string, number int, body string) error
}
