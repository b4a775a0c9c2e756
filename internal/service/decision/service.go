// Package decision implements the decision lifecycle: creation, branching,
// simulation, comparison, and the terminal commit/resolve operations.
package decision

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"branchpoint-backend/internal/domain"
	"branchpoint-backend/internal/repository"
	"branchpoint-backend/internal/service/narrative"
	appErrors "branchpoint-backend/pkg/errors"
)

// Service drives the decision state machine against an injected store and
// the narrative generation service.
type Service struct {
	repo      repository.Repository
	narrative *narrative.Service
	logger    *zap.Logger
}

// NewService wires the decision service.
func NewService(repo repository.Repository, narrativeSvc *narrative.Service, logger *zap.Logger) *Service {
	return &Service{
		repo:      repo,
		narrative: narrativeSvc,
		logger:    logger,
	}
}

// Narrative exposes the generation service for the stateless generation
// endpoints that don't touch stored decisions.
func (s *Service) Narrative() *narrative.Service {
	return s.narrative
}

func newID(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, uuid.NewString())
}

// CreateDecisionInput carries validated request fields into CreateDecision.
type CreateDecisionInput struct {
	Title         string
	Description   string
	PreConfidence int
}

// CreateDecision normalizes the title, applies the pre-confidence default,
// and persists a DRAFT decision. An empty normalized title is rejected
// before anything is written.
func (s *Service) CreateDecision(ctx context.Context, userID string, input CreateDecisionInput) (*domain.Decision, error) {
	title := domain.NormalizeTitle(input.Title)
	if title == "" {
		return nil, appErrors.NewValidation("Title is required")
	}

	preConfidence := input.PreConfidence
	if preConfidence == 0 {
		preConfidence = domain.DefaultPreConfidence
	}
	if !domain.ValidConfidence(preConfidence) {
		return nil, appErrors.NewValidation("Pre-confidence must be between 1 and 5")
	}

	d := domain.Decision{
		DecisionID:     newID("decision"),
		UserID:         userID,
		Title:          title,
		Description:    input.Description,
		PreConfidence:  preConfidence,
		State:          domain.StateDraft,
		IsRootDecision: true,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.repo.CreateDecision(ctx, d); err != nil {
		return nil, appErrors.Wrap(err, "failed to create decision")
	}

	s.logger.Info("decision created",
		zap.String("decisionId", d.DecisionID),
		zap.String("userId", userID),
	)
	return &d, nil
}

// ListDecisions returns the caller's decisions, newest first.
func (s *Service) ListDecisions(ctx context.Context, userID string) ([]domain.Decision, error) {
	decisions, err := s.repo.ListDecisions(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, "failed to list decisions")
	}
	sort.SliceStable(decisions, func(i, j int) bool {
		return decisions[i].CreatedAt.After(decisions[j].CreatedAt)
	})
	return decisions, nil
}

// BranchDetail is a branch with its persisted conversations attached.
type BranchDetail struct {
	domain.Branch
	Conversations []domain.Conversation `json:"conversations"`
}

// DecisionDetail is the full read model for one decision.
type DecisionDetail struct {
	Decision domain.Decision `json:"decision"`
	Branches []BranchDetail  `json:"branches"`
}

// GetDecision loads a decision with its branches and their conversations.
func (s *Service) GetDecision(ctx context.Context, userID, decisionID string) (*DecisionDetail, error) {
	decision, err := s.repo.FindDecision(ctx, userID, decisionID)
	if err != nil {
		return nil, appErrors.Wrap(err, "failed to load decision")
	}
	if decision == nil {
		return nil, appErrors.NewNotFound("Decision not found")
	}

	branches, err := s.repo.ListBranches(ctx, decisionID)
	if err != nil {
		return nil, appErrors.Wrap(err, "failed to list branches")
	}

	detail := &DecisionDetail{
		Decision: *decision,
		Branches: make([]BranchDetail, 0, len(branches)),
	}
	for _, branch := range branches {
		conversations, err := s.repo.ListConversations(ctx, branch.BranchID)
		if err != nil {
			return nil, appErrors.Wrap(err, "failed to list conversations")
		}
		detail.Branches = append(detail.Branches, BranchDetail{
			Branch:        branch,
			Conversations: conversations,
		})
	}
	return detail, nil
}

// CreateBranch adds a candidate path to a decision the caller owns.
func (s *Service) CreateBranch(ctx context.Context, userID, decisionID, name, description string) (*domain.Branch, error) {
	if name == "" {
		return nil, appErrors.NewValidation("Branch name is required")
	}

	decision, err := s.repo.FindDecision(ctx, userID, decisionID)
	if err != nil {
		return nil, appErrors.Wrap(err, "failed to load decision")
	}
	if decision == nil {
		return nil, appErrors.NewNotFound("Decision not found")
	}

	b := domain.Branch{
		BranchID:    newID("branch"),
		DecisionID:  decisionID,
		Name:        name,
		Description: description,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.repo.CreateBranch(ctx, b); err != nil {
		return nil, appErrors.Wrap(err, "failed to create branch")
	}

	s.logger.Info("branch created",
		zap.String("branchId", b.BranchID),
		zap.String("decisionId", decisionID),
	)
	return &b, nil
}
