// Package report renders analysis results as plain text.
// Every function here is a pure string builder.
package report

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/naka-gawa/repo-lifecycle/internal/domain"
)

const (
	titleRule   = 50
	sectionRule = 20
)

// GenerateReport renders the stage results followed by git metrics and the security checklist.
func GenerateReport(repoURL string, results *domain.AnalysisResults, git domain.GitMetrics, security domain.SecurityAnalysis) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Software Lifecycle Analysis Report for %s\n", repoURL)
	b.WriteString(strings.Repeat("=", titleRule) + "\n\n")

	if results != nil {
		for _, stage := range results.Stages() {
			result, _ := results.Get(stage)
			b.WriteString(StageLine(stage, result) + "\n")
		}
	}

	fmt.Fprintf(&b, "\nGit Metrics:\n%s\n", strings.Repeat("-", sectionRule))
	fmt.Fprintf(&b, "Commits: %d\n", git.CommitFrequency)
	fmt.Fprintf(&b, "Branches: %d\n", git.BranchCount)
	fmt.Fprintf(&b, "Issues: %d\n", git.IssueCount)
	if git.PartialData {
		b.WriteString("(some lists could not be fetched; counts may be incomplete)\n")
	}

	fmt.Fprintf(&b, "\nSecurity Analysis:\n%s\n", strings.Repeat("-", sectionRule))
	fmt.Fprintf(&b, "Status: %s\n", security.Status)
	b.WriteString("Recommended checks:\n")
	for _, check := range security.Checks {
		fmt.Fprintf(&b, "- %s\n", check)
	}

	return strings.TrimSpace(b.String())
}

// StageLine renders one stage as "<Stage>: <status> - <details>".
func StageLine(stage string, result domain.StageResult) string {
	return fmt.Sprintf("%s: %s - %s", capitalize(stage), result.Status, result.Details)
}

// ParseStageLine splits a line produced by StageLine back into its parts.
// The stage label comes back capitalized. Statuses must not contain " - ".
func ParseStageLine(line string) (label string, result domain.StageResult, ok bool) {
	label, rest, found := strings.Cut(line, ": ")
	if !found {
		return "", domain.StageResult{}, false
	}
	status, details, found := strings.Cut(rest, " - ")
	if !found {
		return "", domain.StageResult{}, false
	}
	return label, domain.StageResult{Status: status, Details: details}, true
}

// capitalize upper-cases the first rune and lower-cases the rest.
func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}

// GenerateReviewReport renders the code review metrics on their own.
func GenerateReviewReport(review domain.ReviewAnalysis) string {
	m := review.Metrics
	var b strings.Builder
	b.WriteString("Code Review Analysis\n")
	b.WriteString(strings.Repeat("=", sectionRule) + "\n")
	fmt.Fprintf(&b, "Total Pull Requests: %d\n", m.TotalPRs)
	fmt.Fprintf(&b, "Reviewed PRs: %d\n", m.ReviewedPRs)
	fmt.Fprintf(&b, "Total Review Comments: %d\n", m.TotalComments)
	fmt.Fprintf(&b, "Average Review Time: %.1f days\n", m.AvgReviewTime)
	fmt.Fprintf(&b, "Number of Reviewers: %d\n", len(m.Reviewers))
	if review.PartialData {
		b.WriteString("(some pull request data could not be fetched)\n")
	}
	return b.String()
}

// GenerateSummary renders the repository details shown before the report.
func GenerateSummary(repoURL string, repo domain.RepositorySnapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Analyzing repository: %s\n", repoURL)
	b.WriteString("Repository details:\n")
	fmt.Fprintf(&b, "- Name: %s\n", orNA(repo.Name))
	fmt.Fprintf(&b, "- Owner: %s\n", orNA(repo.Owner))
	fmt.Fprintf(&b, "- Description: %s\n", orNA(repo.Description))
	fmt.Fprintf(&b, "- Stars: %d\n", repo.Stars)
	fmt.Fprintf(&b, "- Forks: %d\n", repo.Forks)
	return b.String()
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

// FormatOutput is the flat key/value dump printed by the CLI.
func FormatOutput(report string, recommendations []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "report: %s\n", report)
	b.WriteString("recommendations:")
	if len(recommendations) == 0 {
		b.WriteString(" none")
	}
	for _, r := range recommendations {
		fmt.Fprintf(&b, "\n- %s", r)
	}
	return b.String()
}

// Document is the JSON form of a full run.
type Document struct {
	Repository      domain.RepositorySnapshot      `json:"repository"`
	Stages          *domain.AnalysisResults        `json:"stages"`
	GitMetrics      domain.GitMetrics              `json:"git_metrics"`
	CiCd            domain.CiCdAnalysis            `json:"ci_cd"`
	CodeQuality     domain.CodeQualityAnalysis     `json:"code_quality"`
	TestingCoverage domain.TestingCoverageAnalysis `json:"testing_coverage"`
	Security        domain.SecurityAnalysis        `json:"security"`
	Recommendations []string                       `json:"recommendations"`
}
