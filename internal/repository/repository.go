// Package repository defines the storage contract for decision journaling.
// Implementations live in subpackages; the service layer depends only on
// this interface so it stays storage-agnostic.
package repository

import (
	"context"
	"time"

	"branchpoint-backend/internal/domain"
)

// Repository is the document-store contract. Find methods return (nil, nil)
// when the record does not exist; callers translate that into a not-found
// error with whatever context they have.
type Repository interface {
	// Decisions. FindDecision is owner-scoped: a decision is only visible
	// through its (userID, decisionID) pair.
	CreateDecision(ctx context.Context, d domain.Decision) error
	FindDecision(ctx context.Context, userID, decisionID string) (*domain.Decision, error)
	ListDecisions(ctx context.Context, userID string) ([]domain.Decision, error)
	SaveDecision(ctx context.Context, d domain.Decision) error

	// Branches are keyed by their own ID and owned by one decision.
	CreateBranch(ctx context.Context, b domain.Branch) error
	FindBranch(ctx context.Context, branchID string) (*domain.Branch, error)
	ListBranches(ctx context.Context, decisionID string) ([]domain.Branch, error)
	MarkBranchSimulated(ctx context.Context, branchID string, at time.Time) error

	// Conversations are immutable once written.
	CreateConversation(ctx context.Context, c domain.Conversation) error
	ListConversations(ctx context.Context, branchID string) ([]domain.Conversation, error)

	CreateComparison(ctx context.Context, c domain.Comparison) error

	CreateGroup(ctx context.Context, g domain.DecisionGroup) error
	ListGroups(ctx context.Context, userID string) ([]domain.DecisionGroup, error)

	// AppendEvent writes an audit record. Events are never read back.
	AppendEvent(ctx context.Context, e domain.Event) error
}
