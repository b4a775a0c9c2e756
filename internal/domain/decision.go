// Package domain contains the core types for decision journaling.
package domain

import (
	"strings"
	"time"
)

// DecisionState captures the decision lifecycle. ACTIVE is never stored: a
// decision is displayed as ACTIVE once it has at least one branch. COMMITTED
// and RESOLVED are terminal.
type DecisionState string

const (
	StateDraft     DecisionState = "DRAFT"
	StateActive    DecisionState = "ACTIVE"
	StateCommitted DecisionState = "COMMITTED"
	StateResolved  DecisionState = "RESOLVED"
)

// DefaultPreConfidence is applied when a decision is created without one.
const DefaultPreConfidence = 3

// Decision is the root life-choice record a user is trying to resolve.
// Decisions form a forest: resolving with a sub-decision links the child via
// ParentDecisionID and ParentBranchID.
type Decision struct {
	DecisionID       string        `json:"decisionId"`
	UserID           string        `json:"userId"`
	Title            string        `json:"title"`
	Description      string        `json:"description"`
	PreConfidence    int           `json:"preConfidence"`
	PostConfidence   int           `json:"postConfidence,omitempty"`
	State            DecisionState `json:"state"`
	ParentDecisionID string        `json:"parentDecisionId,omitempty"`
	ParentBranchID   string        `json:"parentBranchId,omitempty"`
	IsRootDecision   bool          `json:"isRootDecision"`
	CreatedAt        time.Time     `json:"createdAt"`
	UpdatedAt        *time.Time    `json:"updatedAt,omitempty"`
	ResolvedAt       *time.Time    `json:"resolvedAt,omitempty"`
}

// IsTerminal reports whether the decision has been finalized. Terminal
// decisions never transition again.
func (d *Decision) IsTerminal() bool {
	return d.State == StateCommitted || d.State == StateResolved
}

// titlePrefix is the literal prefix stripped from incoming titles. The strip
// removes exactly len("life branch") leading characters plus surrounding
// whitespace, matching the historical normalization rule.
const titlePrefix = "life branch"

// NormalizeTitle trims the title and removes a leading "life branch" prefix,
// case-insensitively. Returns the empty string when nothing remains.
func NormalizeTitle(title string) string {
	title = strings.TrimSpace(title)
	if len(title) >= len(titlePrefix) && strings.EqualFold(title[:len(titlePrefix)], titlePrefix) {
		title = strings.TrimSpace(title[len(titlePrefix):])
	}
	return title
}

// ValidConfidence reports whether a confidence score is inside the accepted
// 1..5 range.
func ValidConfidence(c int) bool {
	return c >= 1 && c <= 5
}
