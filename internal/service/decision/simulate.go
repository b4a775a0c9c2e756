package decision

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"branchpoint-backend/internal/domain"
	"branchpoint-backend/internal/service/narrative"
	appErrors "branchpoint-backend/pkg/errors"
)

// SimulateResult is returned to the caller after a simulation run.
type SimulateResult struct {
	ConversationID   string                  `json:"conversationId"`
	SimulationOutput domain.SimulationOutput `json:"simulationOutput"`
	Messages         []domain.Message        `json:"messages"`
}

// Simulate runs a future-self narrative for one branch, persists the
// resulting conversation, and stamps the branch's simulation time. The
// narrative layer never fails, so after the ownership checks the only
// error paths are storage errors.
func (s *Service) Simulate(ctx context.Context, userID, branchID string, persona domain.PersonaStyle) (*SimulateResult, error) {
	branch, err := s.repo.FindBranch(ctx, branchID)
	if err != nil {
		return nil, appErrors.Wrap(err, "failed to load branch")
	}
	if branch == nil {
		return nil, appErrors.NewNotFound("Branch not found")
	}

	decision, err := s.repo.FindDecision(ctx, userID, branch.DecisionID)
	if err != nil {
		return nil, appErrors.Wrap(err, "failed to load decision")
	}
	if decision == nil {
		return nil, appErrors.NewNotFound("Decision not found")
	}

	output := s.narrative.Simulate(ctx, decision.Title, branch.Name, branch.Description, persona, decision.Description)

	now := time.Now().UTC()
	conversation := domain.Conversation{
		ConversationID:   newID("conv"),
		BranchID:         branchID,
		Messages:         simulationMessages(decision, branch, output, now),
		SimulationOutput: output,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.repo.CreateConversation(ctx, conversation); err != nil {
		return nil, appErrors.Wrap(err, "failed to save conversation")
	}
	if err := s.repo.MarkBranchSimulated(ctx, branchID, now); err != nil {
		return nil, appErrors.Wrap(err, "failed to update branch")
	}

	s.logger.Info("simulation completed",
		zap.String("branchId", branchID),
		zap.String("conversationId", conversation.ConversationID),
		zap.String("personaStyle", string(output.PersonaStyle)),
	)
	return &SimulateResult{
		ConversationID:   conversation.ConversationID,
		SimulationOutput: output,
		Messages:         conversation.Messages,
	}, nil
}

// simulationMessages renders the simulation output as a five-message
// future-you monologue.
func simulationMessages(decision *domain.Decision, branch *domain.Branch, output domain.SimulationOutput, now time.Time) []domain.Message {
	texts := []string{
		fmt.Sprintf("I'm Future-You, one year from now. I chose the %q path for %q. Let me share what I learned...", branch.Name, decision.Title),
		fmt.Sprintf("Here are some questions that would have helped me make this choice: %s", strings.Join(output.Questions, ", ")),
		fmt.Sprintf("Optimistic scenario: %s", output.OptimisticScenario),
		fmt.Sprintf("Challenging scenario: %s", output.ChallengingScenario),
		fmt.Sprintf("Summary: %s", output.Summary),
	}
	messages := make([]domain.Message, len(texts))
	for i, text := range texts {
		messages[i] = domain.Message{
			MessageID: newID("msg"),
			Sender:    domain.SenderFutureYou,
			Text:      text,
			CreatedAt: now,
		}
	}
	return messages
}

// CompareResult carries the comparison and exactly the two branches it
// covered.
type CompareResult struct {
	ComparisonID  string          `json:"comparisonId"`
	GeneratedDiff domain.Diff     `json:"generatedDiff"`
	Branches      []domain.Branch `json:"branches"`
}

// Compare analyzes the first two simulated branches of a decision. Each
// branch's most recent simulation output is passed to the narrative layer
// as context.
func (s *Service) Compare(ctx context.Context, userID, decisionID string) (*CompareResult, error) {
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

	var simulated []domain.Branch
	for _, branch := range branches {
		if branch.Simulated() {
			simulated = append(simulated, branch)
		}
	}
	if len(simulated) < 2 {
		return nil, appErrors.NewValidation("At least 2 branches must be simulated before comparison")
	}
	compared := simulated[:2]

	inputs := make([]narrative.ComparisonInput, len(compared))
	for i, branch := range compared {
		var simulation interface{}
		conversations, err := s.repo.ListConversations(ctx, branch.BranchID)
		if err != nil {
			return nil, appErrors.Wrap(err, "failed to list conversations")
		}
		if len(conversations) > 0 {
			simulation = conversations[len(conversations)-1].SimulationOutput
		}
		inputs[i] = narrative.ComparisonInput{
			Name:        branch.Name,
			Description: branch.Description,
			Simulation:  simulation,
		}
	}

	diff := s.narrative.Compare(ctx, decision.Title, inputs)

	comparison := domain.Comparison{
		ComparisonID:     newID("comp"),
		DecisionID:       decisionID,
		BranchesCompared: []string{compared[0].BranchID, compared[1].BranchID},
		GeneratedDiff:    diff,
		CreatedAt:        time.Now().UTC(),
	}
	if err := s.repo.CreateComparison(ctx, comparison); err != nil {
		return nil, appErrors.Wrap(err, "failed to save comparison")
	}

	return &CompareResult{
		ComparisonID:  comparison.ComparisonID,
		GeneratedDiff: diff,
		Branches:      compared,
	}, nil
}
