package repohost

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/go-github/v57/github"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/fyrsmithlabs/issuepilot/internal/config"
	"github.com/fyrsmithlabs/issuepilot/internal/logging"
)

// GitHubService implements Service against the GitHub REST API.
type GitHubService struct {
	client  *github.Client
	limiter *rate.Limiter
	retry   *RetryConfig
	logger  *logging.Logger
}

// NewGitHubService creates a GitHub-backed Service with authentication,
// client-side rate limiting, and retry on transient failures.
func NewGitHubService(ctx context.Context, cfg config.GitHubConfig, logger *logging.Logger) (*GitHubService, error) {
	if !cfg.Token.IsSet() {
		return nil, fmt.Errorf("GitHub token not set")
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token.Value()})
	tc := oauth2.NewClient(ctx, ts)
	client := github.NewClient(tc)
	if cfg.BaseURL != "" {
		var err error
		client, err = client.WithEnterpriseURLs(cfg.BaseURL, cfg.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("configuring GitHub base URL: %w", err)
		}
	}

	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 5
	}

	return &GitHubService{
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
		retry:   &RetryConfig{MaxRetries: cfg.MaxRetries},
		logger:  logger,
	}, nil
}

// call runs one API operation behind the rate limiter and retry policy,
// then classifies any remaining error.
func (s *GitHubService) call(ctx context.Context, operation func() (*github.Response, error)) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}
	resp, err := retryOperation(ctx, s.retry, s.logger, operation)
	return classifyError(err, resp)
}

// FetchIssue implements Service.
func (s *GitHubService) FetchIssue(ctx context.Context, owner, repo string, number int) (*Issue, error) {
	var ghIssue *github.Issue
	err := s.call(ctx, func() (*github.Response, error) {
		var resp *github.Response
		var err error
		ghIssue, resp, err = s.client.Issues.Get(ctx, owner, repo, number)
		return resp, err
	})
	if err != nil {
		return nil, fmt.Errorf("fetching issue #%d: %w", number, err)
	}

	var ghRepo *github.Repository
	err = s.call(ctx, func() (*github.Response, error) {
		var resp *github.Response
		var err error
		ghRepo, resp, err = s.client.Repositories.Get(ctx, owner, repo)
		return resp, err
	})
	if err != nil {
		return nil, fmt.Errorf("fetching repository %s/%s: %w", owner, repo, err)
	}

	labels := make([]string, 0, len(ghIssue.Labels))
	for _, l := range ghIssue.Labels {
		labels = append(labels, l.GetName())
	}

	issue := &Issue{
		Number:        ghIssue.GetNumber(),
		Title:         ghIssue.GetTitle(),
		Body:          ghIssue.GetBody(),
		Labels:        labels,
		DefaultBranch: ghRepo.GetDefaultBranch(),
	}

	s.logger.Debug(ctx, "fetched issue",
		zap.Int("number", issue.Number),
		zap.String("title", issue.Title),
		zap.Strings("labels", issue.Labels),
		zap.String("default_branch", issue.DefaultBranch),
	)
	return issue, nil
}

// ListFiles implements Service using a recursive git tree read.
func (s *GitHubService) ListFiles(ctx context.Context, owner, repo, ref string) ([]string, error) {
	var tree *github.Tree
	err := s.call(ctx, func() (*github.Response, error) {
		var resp *github.Response
		var err error
		tree, resp, err = s.client.Git.GetTree(ctx, owner, repo, ref, true)
		return resp, err
	})
	if err != nil {
		return nil, fmt.Errorf("listing repository tree at %s: %w", ref, err)
	}

	paths := make([]string, 0, len(tree.Entries))
	for _, entry := range tree.Entries {
		if entry.GetType() == "blob" {
			paths = append(paths, entry.GetPath())
		}
	}

	if tree.GetTruncated() {
		s.logger.Warn(ctx, "repository tree listing truncated by API",
			zap.Int("paths", len(paths)),
		)
	}
	return paths, nil
}

// FetchFile implements Service. A 404 yields Exists false rather than an
// error so proposals can target new files.
func (s *GitHubService) FetchFile(ctx context.Context, owner, repo, path, ref string) (*FileContent, error) {
	var file *github.RepositoryContent
	err := s.call(ctx, func() (*github.Response, error) {
		var resp *github.Response
		var err error
		file, _, resp, err = s.client.Repositories.GetContents(ctx, owner, repo, path,
			&github.RepositoryContentGetOptions{Ref: ref})
		return resp, err
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return &FileContent{Path: path, Exists: false}, nil
		}
		return nil, fmt.Errorf("fetching %s: %w", path, err)
	}
	if file == nil {
		return nil, fmt.Errorf("fetching %s: path is a directory", path)
	}

	content, err := file.GetContent()
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}

	return &FileContent{
		Path:    path,
		Content: content,
		SHA:     file.GetSHA(),
		Exists:  true,
	}, nil
}

// CreateBranch implements Service. A branch that already exists is
// treated as success so reruns against the same issue do not fail.
func (s *GitHubService) CreateBranch(ctx context.Context, owner, repo, branch, baseRef string) error {
	var base *github.Reference
	err := s.call(ctx, func() (*github.Response, error) {
		var resp *github.Response
		var err error
		base, resp, err = s.client.Git.GetRef(ctx, owner, repo, "refs/heads/"+baseRef)
		return resp, err
	})
	if err != nil {
		return fmt.Errorf("resolving base branch %s: %w", baseRef, err)
	}

	newRef := &github.Reference{
		Ref:    github.String("refs/heads/" + branch),
		Object: &github.GitObject{SHA: base.Object.SHA},
	}
	err = s.call(ctx, func() (*github.Response, error) {
		_, resp, err := s.client.Git.CreateRef(ctx, owner, repo, newRef)
		return resp, err
	})
	if err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			s.logger.Info(ctx, "branch already exists, reusing it",
				zap.String("branch", branch),
			)
			return nil
		}
		return fmt.Errorf("creating branch %s: %w", branch, err)
	}

	s.logger.Info(ctx, "created branch",
		zap.String("branch", branch),
		zap.String("base", baseRef),
	)
	return nil
}

// CommitChanges implements Service. Each change becomes one commit via
// the contents API, with the current blob SHA looked up per file.
func (s *GitHubService) CommitChanges(ctx context.Context, owner, repo, branch, message string, changes []FileChange) ([]CommittedFile, error) {
	committed := make([]CommittedFile, 0, len(changes))

	for _, change := range changes {
		existing, err := s.FetchFile(ctx, owner, repo, change.Path, branch)
		if err != nil {
			return committed, fmt.Errorf("looking up %s on %s: %w", change.Path, branch, err)
		}

		switch change.Action {
		case ActionDelete:
			if !existing.Exists {
				s.logger.Warn(ctx, "skipping delete of missing file",
					zap.String("path", change.Path),
				)
				continue
			}
			sha, err := s.deleteFile(ctx, owner, repo, branch, message, change.Path, existing.SHA)
			if err != nil {
				return committed, err
			}
			committed = append(committed, CommittedFile{Path: change.Path, CommitSHA: sha})

		case ActionCreate, ActionModify:
			opts := &github.RepositoryContentFileOptions{
				Message: github.String(message),
				Content: []byte(change.Content),
				Branch:  github.String(branch),
			}
			if existing.Exists {
				opts.SHA = github.String(existing.SHA)
			}
			sha, err := s.putFile(ctx, owner, repo, change.Path, existing.Exists, opts)
			if err != nil {
				return committed, err
			}
			committed = append(committed, CommittedFile{Path: change.Path, CommitSHA: sha})

		default:
			return committed, fmt.Errorf("unknown file action %q for %s", change.Action, change.Path)
		}
	}

	s.logger.Info(ctx, "committed changes",
		zap.String("branch", branch),
		zap.Int("files", len(committed)),
	)
	return committed, nil
}

func (s *GitHubService) putFile(ctx context.Context, owner, repo, path string, update bool, opts *github.RepositoryContentFileOptions) (string, error) {
	var result *github.RepositoryContentResponse
	err := s.call(ctx, func() (*github.Response, error) {
		var resp *github.Response
		var err error
		if update {
			result, resp, err = s.client.Repositories.UpdateFile(ctx, owner, repo, path, opts)
		} else {
			result, resp, err = s.client.Repositories.CreateFile(ctx, owner, repo, path, opts)
		}
		return resp, err
	})
	if err != nil {
		return "", fmt.Errorf("committing %s: %w", path, err)
	}
	return result.Commit.GetSHA(), nil
}

func (s *GitHubService) deleteFile(ctx context.Context, owner, repo, branch, message, path, sha string) (string, error) {
	opts := &github.RepositoryContentFileOptions{
		Message: github.String(message),
		Branch:  github.String(branch),
		SHA:     github.String(sha),
	}
	var result *github.RepositoryContentResponse
	err := s.call(ctx, func() (*github.Response, error) {
		var resp *github.Response
		var err error
		result, resp, err = s.client.Repositories.DeleteFile(ctx, owner, repo, path, opts)
		return resp, err
	})
	if err != nil {
		return "", fmt.Errorf("deleting %s: %w", path, err)
	}
	return result.Commit.GetSHA(), nil
}

// PostComment implements Service.
func (s *GitHubService) PostComment(ctx context.Context, owner, repo string, number int, body string) error {
	comment := &github.IssueComment{Body: github.String(body)}
	err := s.call(ctx, func() (*github.Response, error) {
		_, resp, err := s.client.Issues.CreateComment(ctx, owner, repo, number, comment)
		return resp, err
	})
	if err != nil {
		return fmt.Errorf("posting comment on issue #%d: %w", number, err)
	}

	s.logger.Info(ctx, "posted issue comment",
		zap.Int("issue", number),
		zap.Int("length", len(body)),
	)
	return nil
}

// compile-time interface check
var _ Service = (*GitHubService)(nil)
