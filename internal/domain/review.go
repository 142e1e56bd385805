package domain

import (
	"encoding/json"
	"sort"
	"time"
)

// PullRequestRecord is the subset of a pull request used by review analysis.
type PullRequestRecord struct {
	Number         int        `json:"number"`
	State          string     `json:"state"`
	Author         string     `json:"author"`
	ReviewComments int        `json:"review_comments"`
	CreatedAt      time.Time  `json:"created_at"`
	ClosedAt       *time.Time `json:"closed_at,omitempty"`
}

// ReviewComment is a single review comment on a pull request.
type ReviewComment struct {
	ID     int64  `json:"id"`
	Author string `json:"author"`
}

// ReviewMetrics accumulates statistics over pull requests.
// AvgReviewTime is in days.
type ReviewMetrics struct {
	TotalPRs      int                 `json:"total_prs"`
	ReviewedPRs   int                 `json:"reviewed_prs"`
	TotalComments int                 `json:"total_comments"`
	AvgReviewTime float64             `json:"avg_review_time"`
	Reviewers     map[string]struct{} `json:"-"`
}

// NewReviewMetrics returns zeroed metrics with an initialised reviewer set.
func NewReviewMetrics() ReviewMetrics {
	return ReviewMetrics{Reviewers: make(map[string]struct{})}
}

// AddReviewer records a reviewer login; duplicates collapse.
func (m *ReviewMetrics) AddReviewer(login string) {
	if m.Reviewers == nil {
		m.Reviewers = make(map[string]struct{})
	}
	m.Reviewers[login] = struct{}{}
}

// ReviewerLogins returns the reviewer set sorted by login.
func (m ReviewMetrics) ReviewerLogins() []string {
	logins := make([]string, 0, len(m.Reviewers))
	for login := range m.Reviewers {
		logins = append(logins, login)
	}
	sort.Strings(logins)
	return logins
}

func (m ReviewMetrics) MarshalJSON() ([]byte, error) {
	type alias ReviewMetrics
	return json.Marshal(struct {
		alias
		Reviewers []string `json:"reviewers"`
	}{alias: alias(m), Reviewers: m.ReviewerLogins()})
}

// ReviewAnalysis wraps ReviewMetrics with a status/details pair.
type ReviewAnalysis struct {
	Status      string        `json:"status"`
	Details     string        `json:"details"`
	Metrics     ReviewMetrics `json:"metrics"`
	PartialData bool          `json:"partial_data"`
}

// StageResult drops the metrics so the analysis can sit alongside the static stages.
func (r ReviewAnalysis) StageResult() StageResult {
	return StageResult{Status: r.Status, Details: r.Details}
}
