package gateway

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/google/go-github/v62/github"
	"github.com/naka-gawa/repo-lifecycle/internal/domain"
)

// NotFoundError is returned when the repository reference does not resolve.
type NotFoundError struct {
	Repository string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("repository not found: %s", e.Repository)
}

// UpstreamError is returned for any other non-200 answer to the repository metadata call.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("GitHub API error: %d - %s", e.StatusCode, e.Body)
}

// classifyRepositoryError maps a failed Repositories.Get into NotFoundError,
// UpstreamError, or a wrapped transport error when no response arrived.
func classifyRepositoryError(ref domain.RepositoryReference, resp *github.Response, err error) error {
	var httpResp *http.Response
	var errResp *github.ErrorResponse
	switch {
	case errors.As(err, &errResp) && errResp.Response != nil:
		httpResp = errResp.Response
	case resp != nil && resp.Response != nil:
		httpResp = resp.Response
	default:
		return fmt.Errorf("failed to fetch repository %s: %w", ref, err)
	}

	if httpResp.StatusCode == http.StatusNotFound {
		return &NotFoundError{Repository: ref.Raw}
	}

	body := readBody(httpResp)
	if body == "" && errResp != nil {
		body = errResp.Message
	}
	return &UpstreamError{StatusCode: httpResp.StatusCode, Body: body}
}

// readBody returns whatever go-github left in the response body after
// decoding the error; it re-populates the body for exactly this purpose.
func readBody(resp *http.Response) string {
	if resp.Body == nil {
		return ""
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return ""
	}
	return string(data)
}
