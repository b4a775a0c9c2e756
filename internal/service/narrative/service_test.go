package narrative

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"branchpoint-backend/internal/domain"
)

func newTestService(provider Provider) *Service {
	return NewService(provider, "model-main", "model-branch", zap.NewNop())
}

func TestSimulateWithMockProvider(t *testing.T) {
	svc := newTestService(NewMockProvider())

	out := svc.Simulate(context.Background(), "Should I take the job?", "Accept offer", "Take the new role", domain.PersonaAnalytical, "")

	assert.Len(t, out.Questions, 5)
	assert.NotEmpty(t, out.OptimisticScenario)
	assert.NotEmpty(t, out.ChallengingScenario)
	assert.NotEmpty(t, out.Summary)
	assert.Equal(t, domain.PersonaAnalytical, out.PersonaStyle)
	assert.NotZero(t, out.ConfidenceDeltaRecommendation)
}

func TestSimulateFallbackWhenProviderDown(t *testing.T) {
	provider := NewMockProvider()
	provider.SetAvailable(false)
	svc := newTestService(provider)

	fallbacks := 0
	svc.OnFallback(func() { fallbacks++ })

	out := svc.Simulate(context.Background(), "Should I take the job?", "Accept offer", "", domain.PersonaEmpathetic, "")

	assert.Len(t, out.Questions, 5)
	assert.Contains(t, out.OptimisticScenario, "Accept offer")
	assert.Equal(t, domain.PersonaEmpathetic, out.PersonaStyle)
	assert.Equal(t, 0.5, out.ConfidenceDeltaRecommendation)
	assert.Equal(t, 1, fallbacks)
}

func TestSimulateDefaultsPersona(t *testing.T) {
	svc := newTestService(NewMockProvider())

	out := svc.Simulate(context.Background(), "Title", "Branch", "", "", "")

	assert.Equal(t, domain.PersonaAnalytical, out.PersonaStyle)
}

func TestCompareTradeoffsReferenceBothBranches(t *testing.T) {
	svc := newTestService(NewMockProvider())

	diff := svc.Compare(context.Background(), "Should I take the job?", []ComparisonInput{
		{Name: "Accept offer", Description: "take it"},
		{Name: "Decline offer", Description: "stay put"},
	})

	require.NotEmpty(t, diff.Tradeoffs)
	found := false
	for _, tradeoff := range diff.Tradeoffs {
		if containsBoth(tradeoff, "Accept offer", "Decline offer") {
			found = true
			break
		}
	}
	assert.True(t, found, "expected a tradeoff mentioning both branch names, got %v", diff.Tradeoffs)
	assert.NotEmpty(t, diff.RecommendedMerge)
	assert.NotEmpty(t, diff.ConfidenceImpact)
}

func TestCompareFallbackStillNamesBranches(t *testing.T) {
	provider := NewMockProvider()
	provider.SetAvailable(false)
	svc := newTestService(provider)

	diff := svc.Compare(context.Background(), "Title", []ComparisonInput{
		{Name: "Path A"},
		{Name: "Path B"},
	})

	require.NotEmpty(t, diff.Tradeoffs)
	assert.True(t, containsBoth(diff.Tradeoffs[0], "Path A", "Path B"))
	assert.NotEmpty(t, diff.MergeConflicts)
}

func TestGenerateBranchesSucceeds(t *testing.T) {
	svc := newTestService(NewMockProvider())

	branches, err := svc.GenerateBranches(context.Background(), "Should I move to Lisbon?", "remote work is an option")

	require.NoError(t, err)
	require.Len(t, branches, 2)
	assert.NotEmpty(t, branches[0].Name)
	assert.NotEmpty(t, branches[1].Name)
	assert.NotEqual(t, branches[0].Name, branches[1].Name)
}

func TestGenerateBranchesPropagatesFailure(t *testing.T) {
	provider := NewMockProvider()
	provider.SetAvailable(false)
	svc := newTestService(provider)

	_, err := svc.GenerateBranches(context.Background(), "Should I move?", "")

	assert.Error(t, err)
}

func TestFollowUpDecisionsNeverFails(t *testing.T) {
	for _, available := range []bool{true, false} {
		provider := NewMockProvider()
		provider.SetAvailable(available)
		svc := newTestService(provider)

		result := svc.FollowUpDecisions(context.Background(), "Should I take the job?", "Accept offer", nil)

		assert.NotEmpty(t, result.Storyline)
		assert.GreaterOrEqual(t, len(result.FollowUpDecisions), 3)
	}
}

func TestSpecificFollowUpsFallbackByCategory(t *testing.T) {
	provider := NewMockProvider()
	provider.SetAvailable(false)
	svc := newTestService(provider)

	result := svc.SpecificFollowUpDecisions(context.Background(), "decision", "path", "Pivot Strategy", nil)

	require.NotEmpty(t, result.SpecificDecisions)
	assert.Equal(t, "Adjust Timeline and Expectations", result.SpecificDecisions[0].Name)

	result = svc.SpecificFollowUpDecisions(context.Background(), "decision", "path", "Something Else", nil)
	assert.Equal(t, "Reflect and Reassess", result.SpecificDecisions[0].Name)
}

func TestCheckClarificationConservativeFallback(t *testing.T) {
	provider := NewMockProvider()
	provider.SetAvailable(false)
	svc := newTestService(provider)

	result := svc.CheckClarification(context.Background(), "Should I move?", "")

	assert.True(t, result.NeedsClarification)
	assert.NotEmpty(t, result.Reason)
}

func TestClarifyingQuestionsAlwaysReturnsQuestions(t *testing.T) {
	for _, available := range []bool{true, false} {
		provider := NewMockProvider()
		provider.SetAvailable(available)
		svc := newTestService(provider)

		result := svc.ClarifyingQuestions(context.Background(), "Should I move?", "")

		assert.GreaterOrEqual(t, len(result.Questions), 3)
	}
}

func TestDecisionSummaryFallbackKeepsOriginalDescription(t *testing.T) {
	provider := NewMockProvider()
	provider.SetAvailable(false)
	svc := newTestService(provider)

	result := svc.DecisionSummary(context.Background(), "Should I move?", "original description", []QA{
		{Question: "Where to?", Answer: "Lisbon"},
	})

	assert.Equal(t, "original description", result.EnhancedDescription)
	assert.NotEmpty(t, result.Summary)
}

func TestPathForwardAllFieldsPopulated(t *testing.T) {
	for _, available := range []bool{true, false} {
		provider := NewMockProvider()
		provider.SetAvailable(available)
		svc := newTestService(provider)

		result := svc.PathForward(context.Background(), "decision", "Develop New Skills", "learn accounting")

		assert.NotEmpty(t, result.ActionPlan)
		assert.NotEmpty(t, result.PotentialOutcomes)
		assert.NotEmpty(t, result.NextSteps)
		assert.NotEmpty(t, result.Timeline)
		assert.NotEmpty(t, result.Resources)
	}
}

func TestFollowUpSimulationAllFieldsPopulated(t *testing.T) {
	for _, available := range []bool{true, false} {
		provider := NewMockProvider()
		provider.SetAvailable(available)
		svc := newTestService(provider)

		result := svc.FollowUpSimulation(context.Background(), "Start a company", "Hire first engineer", "share the build")

		assert.NotEmpty(t, result.ActionPlan)
		assert.NotEmpty(t, result.PotentialOutcomes)
		assert.NotEmpty(t, result.NextSteps)
		assert.NotEmpty(t, result.Timeline)
		assert.NotEmpty(t, result.Resources)
	}
}

func TestFollowUpSimulationFallbackNamesAction(t *testing.T) {
	provider := NewMockProvider()
	provider.SetAvailable(false)
	svc := newTestService(provider)

	result := svc.FollowUpSimulation(context.Background(), "Start a company", "Hire first engineer", "")

	assert.Contains(t, result.ActionPlan, "Hire first engineer")
}

func TestSetModelsSwapsRouting(t *testing.T) {
	svc := newTestService(NewMockProvider())

	svc.SetModels("new-main", "new-branch")
	main, branch := svc.models()
	assert.Equal(t, "new-main", main)
	assert.Equal(t, "new-branch", branch)

	// Empty values leave the current routing untouched.
	svc.SetModels("", "")
	main, branch = svc.models()
	assert.Equal(t, "new-main", main)
	assert.Equal(t, "new-branch", branch)
}

func containsBoth(s, a, b string) bool {
	return strings.Contains(s, a) && strings.Contains(s, b)
}
