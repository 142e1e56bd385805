package gateway

import (
	"github.com/google/go-github/v62/github"
	"github.com/naka-gawa/repo-lifecycle/internal/domain"
)

func convertRepository(repo *github.Repository) *domain.RepositorySnapshot {
	return &domain.RepositorySnapshot{
		Name:          repo.GetName(),
		Owner:         repo.GetOwner().GetLogin(),
		Description:   repo.GetDescription(),
		Stars:         repo.GetStargazersCount(),
		Forks:         repo.GetForksCount(),
		HTMLURL:       repo.GetHTMLURL(),
		DefaultBranch: repo.GetDefaultBranch(),
	}
}

func convertPullRequest(pr *github.PullRequest) domain.PullRequestRecord {
	record := domain.PullRequestRecord{
		Number:         pr.GetNumber(),
		State:          pr.GetState(),
		Author:         pr.GetUser().GetLogin(),
		ReviewComments: pr.GetReviewComments(),
		CreatedAt:      pr.GetCreatedAt().Time,
	}
	if pr.ClosedAt != nil {
		t := pr.ClosedAt.Time
		record.ClosedAt = &t
	}
	return record
}
