package decision

import (
	"context"
	"time"

	"go.uber.org/zap"

	"branchpoint-backend/internal/domain"
	appErrors "branchpoint-backend/pkg/errors"
)

// CommitResult reports a finalized decision and its confidence movement.
type CommitResult struct {
	Status          string `json:"status"`
	DecisionID      string `json:"decisionId"`
	FinalBranchID   string `json:"finalBranchId"`
	PreConfidence   int    `json:"preConfidence"`
	PostConfidence  int    `json:"postConfidence"`
	ConfidenceDelta int    `json:"confidenceDelta"`
}

// SubDecisionSummary identifies the DRAFT decision spawned by a resolve.
type SubDecisionSummary struct {
	DecisionID string    `json:"decisionId"`
	Title      string    `json:"title"`
	CreatedAt  time.Time `json:"createdAt"`
}

// ResolveResult is CommitResult plus the optional sub-decision.
type ResolveResult struct {
	CommitResult
	SubDecision *SubDecisionSummary `json:"subDecision"`
}

// ResolveInput carries the optional sub-decision request into Resolve.
type ResolveInput struct {
	FinalBranchID          string
	PostConfidence         int
	CreateSubDecision      bool
	SubDecisionTitle       string
	SubDecisionDescription string
}

// Commit finalizes a decision on the chosen branch. The decision moves to
// COMMITTED and a METRIC event records the confidence delta.
func (s *Service) Commit(ctx context.Context, userID, decisionID, finalBranchID string, postConfidence int) (*CommitResult, error) {
	decision, finalBranch, err := s.loadForFinalize(ctx, userID, decisionID, finalBranchID, postConfidence)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	decision.State = domain.StateCommitted
	decision.PostConfidence = postConfidence
	decision.UpdatedAt = &now
	if err := s.repo.SaveDecision(ctx, *decision); err != nil {
		return nil, appErrors.Wrap(err, "failed to save decision")
	}

	delta := postConfidence - decision.PreConfidence
	s.appendMetricEvent(ctx, userID, map[string]interface{}{
		"event":           "commit",
		"decisionId":      decisionID,
		"finalBranchId":   finalBranchID,
		"preConfidence":   decision.PreConfidence,
		"postConfidence":  postConfidence,
		"confidenceDelta": delta,
		"decisionTitle":   decision.Title,
		"finalBranchName": finalBranch.Name,
	})

	s.logger.Info("decision committed",
		zap.String("decisionId", decisionID),
		zap.String("finalBranchId", finalBranchID),
		zap.Int("confidenceDelta", delta),
	)
	return &CommitResult{
		Status:          "committed",
		DecisionID:      decisionID,
		FinalBranchID:   finalBranchID,
		PreConfidence:   decision.PreConfidence,
		PostConfidence:  postConfidence,
		ConfidenceDelta: delta,
	}, nil
}

// Resolve finalizes a decision like Commit, and can additionally spawn one
// DRAFT sub-decision linked to the resolved decision and chosen branch.
func (s *Service) Resolve(ctx context.Context, userID, decisionID string, input ResolveInput) (*ResolveResult, error) {
	decision, finalBranch, err := s.loadForFinalize(ctx, userID, decisionID, input.FinalBranchID, input.PostConfidence)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	decision.State = domain.StateResolved
	decision.PostConfidence = input.PostConfidence
	decision.ResolvedAt = &now
	decision.UpdatedAt = &now
	if err := s.repo.SaveDecision(ctx, *decision); err != nil {
		return nil, appErrors.Wrap(err, "failed to save decision")
	}

	var summary *SubDecisionSummary
	if input.CreateSubDecision && input.SubDecisionTitle != "" {
		sub := domain.Decision{
			DecisionID:       newID("decision"),
			UserID:           userID,
			Title:            input.SubDecisionTitle,
			Description:      input.SubDecisionDescription,
			PreConfidence:    domain.DefaultPreConfidence,
			State:            domain.StateDraft,
			ParentDecisionID: decisionID,
			ParentBranchID:   input.FinalBranchID,
			IsRootDecision:   false,
			CreatedAt:        now,
		}
		if err := s.repo.CreateDecision(ctx, sub); err != nil {
			return nil, appErrors.Wrap(err, "failed to create sub-decision")
		}
		summary = &SubDecisionSummary{
			DecisionID: sub.DecisionID,
			Title:      sub.Title,
			CreatedAt:  sub.CreatedAt,
		}
	}

	delta := input.PostConfidence - decision.PreConfidence
	s.appendMetricEvent(ctx, userID, map[string]interface{}{
		"event":              "resolve",
		"decisionId":         decisionID,
		"finalBranchId":      input.FinalBranchID,
		"preConfidence":      decision.PreConfidence,
		"postConfidence":     input.PostConfidence,
		"confidenceDelta":    delta,
		"decisionTitle":      decision.Title,
		"finalBranchName":    finalBranch.Name,
		"subDecisionCreated": summary != nil,
	})

	s.logger.Info("decision resolved",
		zap.String("decisionId", decisionID),
		zap.Bool("subDecisionCreated", summary != nil),
	)
	return &ResolveResult{
		CommitResult: CommitResult{
			Status:          "resolved",
			DecisionID:      decisionID,
			FinalBranchID:   input.FinalBranchID,
			PreConfidence:   decision.PreConfidence,
			PostConfidence:  input.PostConfidence,
			ConfidenceDelta: delta,
		},
		SubDecision: summary,
	}, nil
}

// loadForFinalize runs the shared commit/resolve checks: decision
// ownership, terminal state, confidence range, and that the final branch
// belongs to this decision.
func (s *Service) loadForFinalize(ctx context.Context, userID, decisionID, finalBranchID string, postConfidence int) (*domain.Decision, *domain.Branch, error) {
	if finalBranchID == "" {
		return nil, nil, appErrors.NewValidation("Final branch ID is required")
	}
	if !domain.ValidConfidence(postConfidence) {
		return nil, nil, appErrors.NewValidation("Post-confidence must be between 1 and 5")
	}

	decision, err := s.repo.FindDecision(ctx, userID, decisionID)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, "failed to load decision")
	}
	if decision == nil {
		return nil, nil, appErrors.NewNotFound("Decision not found")
	}
	if decision.IsTerminal() {
		return nil, nil, appErrors.NewValidation("Decision has already been finalized")
	}

	finalBranch, err := s.repo.FindBranch(ctx, finalBranchID)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, "failed to load branch")
	}
	if finalBranch == nil || finalBranch.DecisionID != decisionID {
		return nil, nil, appErrors.NewNotFound("Final branch not found or does not belong to this decision")
	}
	return decision, finalBranch, nil
}

// appendMetricEvent writes an audit event. Events are best-effort: a
// storage failure here is logged, not surfaced, since the decision itself
// has already been saved.
func (s *Service) appendMetricEvent(ctx context.Context, userID string, payload map[string]interface{}) {
	event := domain.Event{
		EventID:   newID("event"),
		UserID:    userID,
		Type:      domain.EventTypeMetric,
		Payload:   payload,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.AppendEvent(ctx, event); err != nil {
		s.logger.Error("failed to append metric event",
			zap.String("userId", userID),
			zap.Error(err),
		)
	}
}
