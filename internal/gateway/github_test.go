package gateway

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/google/go-github/v62/github"
	"github.com/naka-gawa/repo-lifecycle/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testRef = domain.RepositoryReference{Owner: "octo", Name: "hello", Raw: "https://github.com/octo/hello"}

// setupTestGateway creates a GitHubGateway that communicates with a mock HTTP server.
func setupTestGateway(t *testing.T, handler http.Handler) (*GitHubGateway, *httptest.Server) {
	server := httptest.NewServer(handler)

	restClient := github.NewClient(server.Client())
	baseURL, err := url.Parse(server.URL + "/")
	require.NoError(t, err)
	restClient.BaseURL = baseURL

	gateway := &GitHubGateway{
		restClient: restClient,
		logger:     log.New(io.Discard, "", 0),
	}
	return gateway, server
}

func TestGitHubGateway_FetchRepository(t *testing.T) {
	testCases := []struct {
		name           string
		status         int
		body           string
		expected       *domain.RepositorySnapshot
		expectNotFound bool
		expectUpstream *UpstreamError
	}{
		{
			name:   "happy path - parses repository metadata",
			status: http.StatusOK,
			body:   `{"name":"hello","owner":{"login":"octo"},"description":"demo","stargazers_count":42,"forks_count":7,"html_url":"https://github.com/octo/hello","default_branch":"main"}`,
			expected: &domain.RepositorySnapshot{
				Name: "hello", Owner: "octo", Description: "demo", Stars: 42, Forks: 7,
				HTMLURL: "https://github.com/octo/hello", DefaultBranch: "main",
			},
		},
		{
			name:           "not found - names the original repository string",
			status:         http.StatusNotFound,
			body:           `{"message":"Not Found"}`,
			expectNotFound: true,
		},
		{
			name:           "server error - carries status and raw body",
			status:         http.StatusInternalServerError,
			body:           `{"message":"boom"}`,
			expectUpstream: &UpstreamError{StatusCode: http.StatusInternalServerError, Body: `{"message":"boom"}`},
		},
		{
			name:           "unauthorized - carries status and raw body",
			status:         http.StatusUnauthorized,
			body:           `{"message":"Bad credentials","documentation_url":"https://docs.github.com/rest"}`,
			expectUpstream: &UpstreamError{StatusCode: http.StatusUnauthorized, Body: `{"message":"Bad credentials","documentation_url":"https://docs.github.com/rest"}`},
		},
		{
			name:           "bad gateway - non-JSON body kept verbatim",
			status:         http.StatusBadGateway,
			body:           "upstream unavailable\n",
			expectUpstream: &UpstreamError{StatusCode: http.StatusBadGateway, Body: "upstream unavailable\n"},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			handler := func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/repos/octo/hello", r.URL.Path)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tc.status)
				fmt.Fprint(w, tc.body)
			}
			gateway, server := setupTestGateway(t, http.HandlerFunc(handler))
			defer server.Close()

			snapshot, err := gateway.FetchRepository(context.Background(), testRef)

			switch {
			case tc.expectNotFound:
				var notFound *NotFoundError
				require.True(t, errors.As(err, &notFound), "expected NotFoundError, got %v", err)
				assert.Equal(t, testRef.Raw, notFound.Repository)
				assert.Nil(t, snapshot)
			case tc.expectUpstream != nil:
				var upstream *UpstreamError
				require.True(t, errors.As(err, &upstream), "expected UpstreamError, got %v", err)
				assert.Equal(t, tc.expectUpstream.StatusCode, upstream.StatusCode)
				assert.Equal(t, tc.expectUpstream.Body, upstream.Body)
				assert.Nil(t, snapshot)
			default:
				require.NoError(t, err)
				assert.Equal(t, tc.expected, snapshot)
			}
		})
	}
}

func TestGitHubGateway_ListEndpoints(t *testing.T) {
	testCases := []struct {
		name        string
		path        string
		status      int
		body        string
		fetchLen    func(g *GitHubGateway) (int, bool)
		expectedLen int
		partial     bool
	}{
		{
			name:   "commits - happy path",
			path:   "/repos/octo/hello/commits",
			status: http.StatusOK,
			body:   `[{"sha":"a","commit":{"message":"one"}},{"sha":"b","commit":{"message":"two"}}]`,
			fetchLen: func(g *GitHubGateway) (int, bool) {
				l := g.FetchCommits(context.Background(), testRef)
				return l.Len(), l.Partial
			},
			expectedLen: 2,
		},
		{
			name:   "commits - conflict on empty repository soft-fails",
			path:   "/repos/octo/hello/commits",
			status: http.StatusConflict,
			body:   `{"message":"Git Repository is empty."}`,
			fetchLen: func(g *GitHubGateway) (int, bool) {
				l := g.FetchCommits(context.Background(), testRef)
				return l.Len(), l.Partial
			},
			partial: true,
		},
		{
			name:   "issues - happy path includes pull requests",
			path:   "/repos/octo/hello/issues",
			status: http.StatusOK,
			body:   `[{"number":1,"title":"bug"},{"number":2,"title":"pr","pull_request":{"url":"x"}},{"number":3}]`,
			fetchLen: func(g *GitHubGateway) (int, bool) {
				l := g.FetchIssues(context.Background(), testRef)
				return l.Len(), l.Partial
			},
			expectedLen: 3,
		},
		{
			name:   "issues - server error soft-fails",
			path:   "/repos/octo/hello/issues",
			status: http.StatusInternalServerError,
			body:   `{"message":"boom"}`,
			fetchLen: func(g *GitHubGateway) (int, bool) {
				l := g.FetchIssues(context.Background(), testRef)
				return l.Len(), l.Partial
			},
			partial: true,
		},
		{
			name:   "branches - happy path",
			path:   "/repos/octo/hello/branches",
			status: http.StatusOK,
			body:   `[{"name":"main","protected":true}]`,
			fetchLen: func(g *GitHubGateway) (int, bool) {
				l := g.FetchBranches(context.Background(), testRef)
				return l.Len(), l.Partial
			},
			expectedLen: 1,
		},
		{
			name:   "branches - not found soft-fails",
			path:   "/repos/octo/hello/branches",
			status: http.StatusNotFound,
			body:   `{"message":"Not Found"}`,
			fetchLen: func(g *GitHubGateway) (int, bool) {
				l := g.FetchBranches(context.Background(), testRef)
				return l.Len(), l.Partial
			},
			partial: true,
		},
		{
			name:   "review comments - forbidden soft-fails",
			path:   "/repos/octo/hello/pulls/5/comments",
			status: http.StatusForbidden,
			body:   `{"message":"Resource not accessible"}`,
			fetchLen: func(g *GitHubGateway) (int, bool) {
				l := g.FetchReviewComments(context.Background(), testRef, 5)
				return l.Len(), l.Partial
			},
			partial: true,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			handler := func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, tc.path, r.URL.Path)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tc.status)
				fmt.Fprint(w, tc.body)
			}
			gateway, server := setupTestGateway(t, http.HandlerFunc(handler))
			defer server.Close()

			length, partial := tc.fetchLen(gateway)
			assert.Equal(t, tc.expectedLen, length)
			assert.Equal(t, tc.partial, partial)
		})
	}
}

func TestGitHubGateway_FetchPullRequests(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/octo/hello/pulls", r.URL.Path)
		assert.Equal(t, "all", r.URL.Query().Get("state"))
		fmt.Fprint(w, `[
			{"number":1,"state":"closed","user":{"login":"dev1"},"review_comments":3,"created_at":"2024-01-01T00:00:00Z","closed_at":"2024-01-03T00:00:00Z"},
			{"number":2,"state":"open","user":{"login":"dev2"},"created_at":"2024-01-05T00:00:00Z"}
		]`)
	}
	gateway, server := setupTestGateway(t, http.HandlerFunc(handler))
	defer server.Close()

	listing := gateway.FetchPullRequests(context.Background(), testRef)
	require.False(t, listing.Partial)
	require.Len(t, listing.Items, 2)

	closedAt := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, domain.PullRequestRecord{
		Number: 1, State: "closed", Author: "dev1", ReviewComments: 3,
		CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		ClosedAt:  &closedAt,
	}, listing.Items[0])
	assert.Nil(t, listing.Items[1].ClosedAt)
	assert.Equal(t, 0, listing.Items[1].ReviewComments)
}

func TestGitHubGateway_FetchReviewComments(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/octo/hello/pulls/7/comments", r.URL.Path)
		fmt.Fprint(w, `[{"id":1,"user":{"login":"alice"}},{"id":2,"user":{"login":"bob"}},{"id":3,"user":{"login":"alice"}}]`)
	}
	gateway, server := setupTestGateway(t, http.HandlerFunc(handler))
	defer server.Close()

	listing := gateway.FetchReviewComments(context.Background(), testRef, 7)
	assert.False(t, listing.Partial)
	assert.Equal(t, []domain.ReviewComment{
		{ID: 1, Author: "alice"},
		{ID: 2, Author: "bob"},
		{ID: 3, Author: "alice"},
	}, listing.Items)
}

func TestNewGitHubGateway_SendsBearerToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret-token", r.Header.Get("Authorization"))
		assert.Equal(t, "/api/v3/repos/octo/hello", r.URL.Path)
		fmt.Fprint(w, `{"name":"hello","owner":{"login":"octo"}}`)
	}))
	defer server.Close()

	gateway, err := NewGitHubGateway("secret-token", Options{
		BaseURL:           server.URL + "/api/v3",
		RequestsPerSecond: 100,
	}, log.New(io.Discard, "", 0))
	require.NoError(t, err)

	snapshot, err := gateway.FetchRepository(context.Background(), testRef)
	require.NoError(t, err)
	assert.Equal(t, "hello", snapshot.Name)
	assert.Equal(t, "octo", snapshot.Owner)
}

func TestNewGitHubGateway_InvalidBaseURL(t *testing.T) {
	_, err := NewGitHubGateway("tok", Options{BaseURL: "://bad"}, log.New(io.Discard, "", 0))
	assert.Error(t, err)
}
