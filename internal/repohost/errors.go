package repohost

import (
	"errors"
	"net/http"

	"github.com/google/go-github/v57/github"
)

// Sentinel errors for callers that need to branch on failure class without
// depending on the GitHub client types.
var (
	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrAuth indicates the request was rejected for credential reasons.
	ErrAuth = errors.New("authentication failed")

	// ErrUnavailable indicates the host could not be reached or returned
	// a server-side failure after retries.
	ErrUnavailable = errors.New("host unavailable")

	// ErrAlreadyExists indicates the resource already exists. Branch
	// creation treats this as success.
	ErrAlreadyExists = errors.New("resource already exists")
)

// classifyError wraps a GitHub API error with the matching sentinel so
// callers can use errors.Is. The original error remains in the chain.
func classifyError(err error, resp *github.Response) error {
	if err == nil {
		return nil
	}

	code := 0
	if resp != nil && resp.Response != nil {
		code = resp.Response.StatusCode
	} else {
		var ghErr *github.ErrorResponse
		if errors.As(err, &ghErr) && ghErr.Response != nil {
			code = ghErr.Response.StatusCode
		}
	}

	switch {
	case code == http.StatusNotFound:
		return errors.Join(ErrNotFound, err)
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return errors.Join(ErrAuth, err)
	case code == http.StatusUnprocessableEntity && isReferenceExists(err):
		return errors.Join(ErrAlreadyExists, err)
	case code >= 500 || code == 0:
		// Transport-level failures carry no status code.
		return errors.Join(ErrUnavailable, err)
	default:
		return err
	}
}

// isReferenceExists detects the 422 the git refs API returns when a
// branch with the requested name already exists.
func isReferenceExists(err error) bool {
	var ghErr *github.ErrorResponse
	if !errors.As(err, &ghErr) {
		return false
	}
	if ghErr.Message == "Reference already exists" {
		return true
	}
	for _, e := range ghErr.Errors {
		if e.Code == "already_exists" {
			return true
		}
	}
	return false
}
