package domain

import "encoding/json"

// StageResult is the status/details pair produced by every stage analysis.
type StageResult struct {
	Status  string `json:"status"`
	Details string `json:"details"`
}

// AnalysisResults maps stage names to their results and remembers insertion
// order, which the report relies on.
type AnalysisResults struct {
	order   []string
	results map[string]StageResult
}

// NewAnalysisResults returns an empty result set.
func NewAnalysisResults() *AnalysisResults {
	return &AnalysisResults{results: make(map[string]StageResult)}
}

// Set stores the result for a stage. Re-setting a stage keeps its original position.
func (a *AnalysisResults) Set(stage string, result StageResult) {
	if _, ok := a.results[stage]; !ok {
		a.order = append(a.order, stage)
	}
	a.results[stage] = result
}

// Get returns the result for a stage and whether it was present.
func (a *AnalysisResults) Get(stage string) (StageResult, bool) {
	r, ok := a.results[stage]
	return r, ok
}

// Stages returns the stage names in insertion order.
func (a *AnalysisResults) Stages() []string {
	out := make([]string, len(a.order))
	copy(out, a.order)
	return out
}

// Len returns the number of stages.
func (a *AnalysisResults) Len() int {
	return len(a.order)
}

// Flags reports every stage with a non-empty status as present.
// This is the view the recommendation engine consumes.
func (a *AnalysisResults) Flags() map[string]bool {
	flags := make(map[string]bool, len(a.order))
	for _, stage := range a.order {
		flags[stage] = a.results[stage].Status != ""
	}
	return flags
}

// NamedStage is one entry of AnalysisResults in JSON form.
type NamedStage struct {
	Stage string `json:"stage"`
	StageResult
}

// MarshalJSON encodes the results as an ordered list.
func (a *AnalysisResults) MarshalJSON() ([]byte, error) {
	stages := make([]NamedStage, 0, len(a.order))
	for _, stage := range a.order {
		stages = append(stages, NamedStage{Stage: stage, StageResult: a.results[stage]})
	}
	return json.Marshal(stages)
}

// GitMetrics is the result of the git metrics analysis.
type GitMetrics struct {
	Status          string `json:"status"`
	Details         string `json:"details"`
	CommitFrequency int    `json:"commit_frequency"`
	BranchCount     int    `json:"branch_count"`
	IssueCount      int    `json:"issue_count"`
	PartialData     bool   `json:"partial_data"`
}

// CiCdAnalysis reports whether workflow files were found.
type CiCdAnalysis struct {
	Status  string `json:"status"`
	Details string `json:"details"`
}

// CodeQualityAnalysis names external tools; it is never computed.
type CodeQualityAnalysis struct {
	Status         string   `json:"status"`
	Details        string   `json:"details"`
	SuggestedTools []string `json:"suggested_tools"`
}

// SecurityAnalysis lists recommended checks.
type SecurityAnalysis struct {
	Status  string   `json:"status"`
	Details string   `json:"details"`
	Checks  []string `json:"checks"`
}

// CoverageMetrics is always reported with an unknown percentage.
type CoverageMetrics struct {
	TestFiles          int    `json:"test_files"`
	CoveragePercentage string `json:"coverage_percentage"`
}

type TestingCoverageAnalysis struct {
	Status          string          `json:"status"`
	Details         string          `json:"details"`
	CoverageMetrics CoverageMetrics `json:"coverage_metrics"`
}
