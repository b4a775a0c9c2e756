package domain

import "time"

// Branch is one candidate path under a decision. LastSimulatedAt is stamped
// each time a simulation completes for the branch; comparison eligibility
// requires it to be set.
type Branch struct {
	BranchID        string     `json:"branchId"`
	DecisionID      string     `json:"decisionId"`
	Name            string     `json:"name"`
	Description     string     `json:"description"`
	CreatedAt       time.Time  `json:"createdAt"`
	LastSimulatedAt *time.Time `json:"lastSimulatedAt,omitempty"`
}

// Simulated reports whether this branch has at least one completed simulation.
func (b *Branch) Simulated() bool {
	return b.LastSimulatedAt != nil
}
