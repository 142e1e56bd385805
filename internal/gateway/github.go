// Package gateway provides a gateway to the GitHub REST API,
// converting go-github types into domain records.
package gateway

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v62/github"
	"github.com/naka-gawa/repo-lifecycle/internal/domain"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"
)

// Fetcher defines the behavior of a gateway for fetching repository data from GitHub.
//
// FetchRepository is the only call that fails loudly. List calls never return
// an error: a failed fetch yields an empty Listing with Partial set.
type Fetcher interface {
	FetchRepository(ctx context.Context, ref domain.RepositoryReference) (*domain.RepositorySnapshot, error)
	FetchCommits(ctx context.Context, ref domain.RepositoryReference) domain.Listing[domain.Commit]
	FetchIssues(ctx context.Context, ref domain.RepositoryReference) domain.Listing[domain.Issue]
	FetchBranches(ctx context.Context, ref domain.RepositoryReference) domain.Listing[domain.Branch]
	FetchPullRequests(ctx context.Context, ref domain.RepositoryReference) domain.Listing[domain.PullRequestRecord]
	FetchReviewComments(ctx context.Context, ref domain.RepositoryReference, number int) domain.Listing[domain.ReviewComment]
}

// Options configures NewGitHubGateway.
type Options struct {
	// BaseURL overrides the REST API root, e.g. for GitHub Enterprise.
	BaseURL string
	// RequestsPerSecond paces outgoing requests when positive.
	RequestsPerSecond float64
}

// GitHubGateway is the concrete implementation of the Fetcher interface.
type GitHubGateway struct {
	restClient *github.Client
	limiter    *rate.Limiter
	logger     *log.Logger
}

// NewGitHubGateway is a constructor that creates a new instance of GitHubGateway.
func NewGitHubGateway(token string, opts Options, logger *log.Logger) (*GitHubGateway, error) {
	rateLimitWaiter, err := github_ratelimit.NewRateLimitWaiter(nil, github_ratelimit.WithSingleSleepLimit(1*time.Hour, nil))
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit waiter: %w", err)
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	httpClient := &http.Client{
		Transport: &oauth2.Transport{
			Base:   rateLimitWaiter,
			Source: ts,
		},
	}

	restClient := github.NewClient(httpClient)
	if opts.BaseURL != "" {
		baseURL, err := parseBaseURL(opts.BaseURL)
		if err != nil {
			return nil, err
		}
		restClient.BaseURL = baseURL
	}

	var limiter *rate.Limiter
	if opts.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}

	return &GitHubGateway{
		restClient: restClient,
		limiter:    limiter,
		logger:     logger,
	}, nil
}

func parseBaseURL(raw string) (*url.URL, error) {
	if !strings.HasSuffix(raw, "/") {
		raw += "/"
	}
	baseURL, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid API base URL %q: %w", raw, err)
	}
	return baseURL, nil
}

func (g *GitHubGateway) wait(ctx context.Context) error {
	if g.limiter == nil {
		return nil
	}
	if err := g.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter error: %w", err)
	}
	return nil
}

func (g *GitHubGateway) FetchRepository(ctx context.Context, ref domain.RepositoryReference) (*domain.RepositorySnapshot, error) {
	g.logger.Printf("Fetching repository metadata for %s...", ref)
	if err := g.wait(ctx); err != nil {
		return nil, err
	}
	repo, resp, err := g.restClient.Repositories.Get(ctx, ref.Owner, ref.Name)
	if err != nil {
		return nil, classifyRepositoryError(ref, resp, err)
	}
	return convertRepository(repo), nil
}

func (g *GitHubGateway) FetchCommits(ctx context.Context, ref domain.RepositoryReference) domain.Listing[domain.Commit] {
	g.logger.Println("[1/3] Fetching commits...")
	if err := g.wait(ctx); err != nil {
		return softFail(g.logger, "commits", ref, err, domain.FailedListing[domain.Commit]())
	}
	commits, _, err := g.restClient.Repositories.ListCommits(ctx, ref.Owner, ref.Name, nil)
	if err != nil {
		return softFail(g.logger, "commits", ref, err, domain.FailedListing[domain.Commit]())
	}
	items := make([]domain.Commit, 0, len(commits))
	for _, c := range commits {
		items = append(items, domain.Commit{
			SHA:     c.GetSHA(),
			Author:  c.GetAuthor().GetLogin(),
			Message: c.GetCommit().GetMessage(),
			Date:    c.GetCommit().GetAuthor().GetDate().Time,
		})
	}
	return domain.Listing[domain.Commit]{Items: items}
}

func (g *GitHubGateway) FetchIssues(ctx context.Context, ref domain.RepositoryReference) domain.Listing[domain.Issue] {
	g.logger.Println("[2/3] Fetching issues...")
	if err := g.wait(ctx); err != nil {
		return softFail(g.logger, "issues", ref, err, domain.FailedListing[domain.Issue]())
	}
	issues, _, err := g.restClient.Issues.ListByRepo(ctx, ref.Owner, ref.Name, nil)
	if err != nil {
		return softFail(g.logger, "issues", ref, err, domain.FailedListing[domain.Issue]())
	}
	items := make([]domain.Issue, 0, len(issues))
	for _, i := range issues {
		items = append(items, domain.Issue{
			Number:        i.GetNumber(),
			Title:         i.GetTitle(),
			State:         i.GetState(),
			IsPullRequest: i.IsPullRequest(),
		})
	}
	return domain.Listing[domain.Issue]{Items: items}
}

func (g *GitHubGateway) FetchBranches(ctx context.Context, ref domain.RepositoryReference) domain.Listing[domain.Branch] {
	g.logger.Println("[3/3] Fetching branches...")
	if err := g.wait(ctx); err != nil {
		return softFail(g.logger, "branches", ref, err, domain.FailedListing[domain.Branch]())
	}
	branches, _, err := g.restClient.Repositories.ListBranches(ctx, ref.Owner, ref.Name, nil)
	if err != nil {
		return softFail(g.logger, "branches", ref, err, domain.FailedListing[domain.Branch]())
	}
	items := make([]domain.Branch, 0, len(branches))
	for _, b := range branches {
		items = append(items, domain.Branch{Name: b.GetName(), Protected: b.GetProtected()})
	}
	return domain.Listing[domain.Branch]{Items: items}
}

func (g *GitHubGateway) FetchPullRequests(ctx context.Context, ref domain.RepositoryReference) domain.Listing[domain.PullRequestRecord] {
	g.logger.Println("Fetching pull requests (state=all)...")
	if err := g.wait(ctx); err != nil {
		return softFail(g.logger, "pull requests", ref, err, domain.FailedListing[domain.PullRequestRecord]())
	}
	opts := &github.PullRequestListOptions{State: "all"}
	prs, _, err := g.restClient.PullRequests.List(ctx, ref.Owner, ref.Name, opts)
	if err != nil {
		return softFail(g.logger, "pull requests", ref, err, domain.FailedListing[domain.PullRequestRecord]())
	}
	items := make([]domain.PullRequestRecord, 0, len(prs))
	for _, pr := range prs {
		items = append(items, convertPullRequest(pr))
	}
	return domain.Listing[domain.PullRequestRecord]{Items: items}
}

func (g *GitHubGateway) FetchReviewComments(ctx context.Context, ref domain.RepositoryReference, number int) domain.Listing[domain.ReviewComment] {
	g.logger.Printf("  Fetching review comments for PR #%d...", number)
	if err := g.wait(ctx); err != nil {
		return softFail(g.logger, fmt.Sprintf("review comments for PR #%d", number), ref, err, domain.FailedListing[domain.ReviewComment]())
	}
	comments, _, err := g.restClient.PullRequests.ListComments(ctx, ref.Owner, ref.Name, number, nil)
	if err != nil {
		return softFail(g.logger, fmt.Sprintf("review comments for PR #%d", number), ref, err, domain.FailedListing[domain.ReviewComment]())
	}
	items := make([]domain.ReviewComment, 0, len(comments))
	for _, c := range comments {
		items = append(items, domain.ReviewComment{ID: c.GetID(), Author: c.GetUser().GetLogin()})
	}
	return domain.Listing[domain.ReviewComment]{Items: items}
}

// softFail logs a failed list fetch and hands back the empty substitute.
func softFail[T any](logger *log.Logger, what string, ref domain.RepositoryReference, err error, empty domain.Listing[T]) domain.Listing[T] {
	logger.Printf("  Could not fetch %s for %s, continuing with none: %v", what, ref, err)
	return empty
}
