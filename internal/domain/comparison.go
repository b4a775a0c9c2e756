package domain

import "time"

// Diff is the generated tradeoff analysis between two branches.
type Diff struct {
	Tradeoffs        []string `json:"tradeoffs"`
	MergeConflicts   []string `json:"mergeConflicts"`
	RecommendedMerge string   `json:"recommendedMerge"`
	ConfidenceImpact string   `json:"confidenceImpact"`
}

// Comparison records one comparison request. Repeated requests create
// repeated records; there is no deduplication.
type Comparison struct {
	ComparisonID     string    `json:"comparisonId"`
	DecisionID       string    `json:"decisionId"`
	BranchesCompared []string  `json:"branchesCompared"`
	GeneratedDiff    Diff      `json:"generatedDiff"`
	CreatedAt        time.Time `json:"createdAt"`
}
