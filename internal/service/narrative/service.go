package narrative

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"branchpoint-backend/internal/domain"
)

// ComparisonInput carries one branch into a comparison prompt.
type ComparisonInput struct {
	Name        string
	Description string
	Simulation  interface{}
}

// QA is one answered clarifying question.
type QA struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// FollowUpResult is a storyline plus the broad follow-up options it sets up.
type FollowUpResult struct {
	Storyline         string         `json:"storyline"`
	FollowUpDecisions []BranchOption `json:"followUpDecisions"`
}

// SpecificFollowUpsResult narrows a broad follow-up category into
// concrete decisions.
type SpecificFollowUpsResult struct {
	SpecificDecisions []BranchOption `json:"specificDecisions"`
}

// ClarificationResult reports whether a decision needs more detail before
// simulation is worthwhile.
type ClarificationResult struct {
	NeedsClarification bool   `json:"needsClarification"`
	Reason             string `json:"reason"`
}

// QuestionsResult holds generated clarifying questions.
type QuestionsResult struct {
	Questions []string `json:"questions"`
}

// SummaryResult is a synthesized restatement of the decision after the
// user answered clarifying questions.
type SummaryResult struct {
	Summary             string `json:"summary"`
	EnhancedDescription string `json:"enhancedDescription"`
}

// PathForwardResult is an action plan for a chosen follow-up path.
type PathForwardResult struct {
	ActionPlan        string `json:"actionPlan"`
	PotentialOutcomes string `json:"potentialOutcomes"`
	NextSteps         string `json:"nextSteps"`
	Timeline          string `json:"timeline"`
	Resources         string `json:"resources"`
}

// Service runs generation prompts against a Provider. Apart from
// GenerateBranches, every method absorbs provider and parse failures and
// returns fixed fallback content, so callers have no error path to handle.
type Service struct {
	provider Provider
	logger   *zap.Logger

	mu            sync.RWMutex
	modelID       string
	branchModelID string

	// FallbackUsed is incremented (when set) each time a method serves
	// fallback content instead of a model response.
	onFallback func()
}

// NewService wires a provider with the initial model routing.
func NewService(provider Provider, modelID, branchModelID string, logger *zap.Logger) *Service {
	return &Service{
		provider:      provider,
		logger:        logger,
		modelID:       modelID,
		branchModelID: branchModelID,
	}
}

// SetModels swaps the model identifiers at runtime. Wired to the config
// overrides watcher.
func (s *Service) SetModels(modelID, branchModelID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if modelID != "" {
		s.modelID = modelID
	}
	if branchModelID != "" {
		s.branchModelID = branchModelID
	}
}

// OnFallback registers a hook called whenever fallback content is served.
func (s *Service) OnFallback(fn func()) {
	s.onFallback = fn
}

func (s *Service) models() (string, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.modelID, s.branchModelID
}

func (s *Service) fellBack(op string, err error) {
	s.logger.Warn("serving fallback content", zap.String("operation", op), zap.Error(err))
	if s.onFallback != nil {
		s.onFallback()
	}
}

func (s *Service) complete(ctx context.Context, prompt, modelID string) (string, error) {
	if s.provider == nil || !s.provider.IsAvailable() {
		return "", fmt.Errorf("narrative provider is not available")
	}
	return s.provider.Complete(ctx, prompt, CompletionOptions{ModelID: modelID})
}

// GenerateBranches asks the model for exactly two candidate branches.
// Unlike the other methods it propagates failure: the HTTP layer owns the
// rule-table fallback for this path.
func (s *Service) GenerateBranches(ctx context.Context, title, description string) ([]BranchOption, error) {
	_, branchModel := s.models()
	response, err := s.complete(ctx, buildBranchesPrompt(title, description), branchModel)
	if err != nil {
		return nil, fmt.Errorf("branch generation failed: %w", err)
	}

	var parsed struct {
		Branches []BranchOption `json:"branches"`
	}
	if err := ExtractJSON(response, &parsed); err != nil {
		return nil, fmt.Errorf("branch generation returned no parseable result: %w", err)
	}
	if len(parsed.Branches) != 2 {
		return nil, fmt.Errorf("branch generation returned %d branches, want 2", len(parsed.Branches))
	}
	return parsed.Branches, nil
}

// Simulate produces a future-self narrative for one branch. The result
// always carries five questions, both scenarios, a summary, and a
// confidence delta, whether or not the model cooperated.
func (s *Service) Simulate(ctx context.Context, decisionTitle, branchName, branchDescription string, persona domain.PersonaStyle, decisionDescription string) domain.SimulationOutput {
	if persona == "" {
		persona = domain.PersonaAnalytical
	}
	fallback := domain.SimulationOutput{
		Questions: []string{
			"What are the key benefits of this choice?",
			"What challenges might I face?",
			"How will this impact my long-term goals?",
			"What support will I need?",
			"How will I measure success?",
		},
		OptimisticScenario:            fmt.Sprintf("In one year, after choosing %q, I found that this path provided the structure and direction I needed.", branchName),
		ChallengingScenario:           fmt.Sprintf("In one year, after choosing %q, I faced some unexpected challenges that required adaptation.", branchName),
		Summary:                       "Major tradeoffs: Structure vs. flexibility, planning vs. spontaneity.",
		PersonaStyle:                  persona,
		ConfidenceDeltaRecommendation: 0.5,
	}

	model, _ := s.models()
	prompt := buildSimulationPrompt(decisionTitle, branchName, branchDescription, persona, decisionDescription)
	response, err := s.complete(ctx, prompt, model)
	if err != nil {
		s.fellBack("simulate", err)
		return fallback
	}

	var parsed struct {
		Questions                     []string `json:"questions"`
		OptimisticScenario            string   `json:"optimistic_scenario"`
		ChallengingScenario           string   `json:"challenging_scenario"`
		Summary                       string   `json:"summary"`
		ConfidenceDeltaRecommendation float64  `json:"confidence_delta_recommendation"`
	}
	if err := ExtractJSON(response, &parsed); err != nil {
		s.fellBack("simulate", err)
		return fallback
	}

	out := domain.SimulationOutput{
		Questions:                     parsed.Questions,
		OptimisticScenario:            parsed.OptimisticScenario,
		ChallengingScenario:           parsed.ChallengingScenario,
		Summary:                       parsed.Summary,
		PersonaStyle:                  persona,
		ConfidenceDeltaRecommendation: parsed.ConfidenceDeltaRecommendation,
	}
	if len(out.Questions) == 0 {
		out.Questions = fallback.Questions
	}
	if out.OptimisticScenario == "" {
		out.OptimisticScenario = fallback.OptimisticScenario
	}
	if out.ChallengingScenario == "" {
		out.ChallengingScenario = fallback.ChallengingScenario
	}
	if out.Summary == "" {
		out.Summary = fallback.Summary
	}
	if out.ConfidenceDeltaRecommendation == 0 {
		out.ConfidenceDeltaRecommendation = fallback.ConfidenceDeltaRecommendation
	}
	return out
}

// Compare analyzes the tradeoffs between two simulated branches. The
// fallback weaves both branch names into its tradeoff text so degraded
// comparisons still read as specific to the decision.
func (s *Service) Compare(ctx context.Context, decisionTitle string, branches []ComparisonInput) domain.Diff {
	first, second := "the first option", "the second option"
	if len(branches) > 0 {
		first = branches[0].Name
	}
	if len(branches) > 1 {
		second = branches[1].Name
	}
	fallback := domain.Diff{
		Tradeoffs: []string{
			fmt.Sprintf("%s offers more structure and predictability, while %s provides flexibility and spontaneity", first, second),
			fmt.Sprintf("Time investment: %s requires more upfront planning, %s allows for more organic growth", first, second),
			fmt.Sprintf("Risk tolerance: %s is lower risk with steady progress, %s has higher potential but more uncertainty", first, second),
		},
		MergeConflicts: []string{
			fmt.Sprintf("Conflicting time commitments between %s and %s", first, second),
			"Different approaches to decision-making that may create internal tension",
		},
		RecommendedMerge: fmt.Sprintf("Based on the analysis, I recommend a hybrid approach that combines the structured planning from %s with the flexibility of %s.", first, second),
		ConfidenceImpact: "This decision will likely increase your confidence in your chosen path.",
	}

	model, _ := s.models()
	response, err := s.complete(ctx, buildComparisonPrompt(decisionTitle, branches), model)
	if err != nil {
		s.fellBack("compare", err)
		return fallback
	}

	var parsed domain.Diff
	if err := ExtractJSON(response, &parsed); err != nil {
		s.fellBack("compare", err)
		return fallback
	}
	if len(parsed.Tradeoffs) == 0 {
		parsed.Tradeoffs = fallback.Tradeoffs
	}
	if len(parsed.MergeConflicts) == 0 {
		parsed.MergeConflicts = fallback.MergeConflicts
	}
	if parsed.RecommendedMerge == "" {
		parsed.RecommendedMerge = fallback.RecommendedMerge
	}
	if parsed.ConfidenceImpact == "" {
		parsed.ConfidenceImpact = fallback.ConfidenceImpact
	}
	return parsed
}

// FollowUpDecisions narrates life after a chosen path and proposes the
// next broad decisions.
func (s *Service) FollowUpDecisions(ctx context.Context, originalDecision, chosenPath string, simulationResult interface{}) FollowUpResult {
	fallback := FollowUpResult{
		Storyline: fmt.Sprintf("After choosing %q, your life takes an interesting turn. The decision brings both expected and unexpected changes, opening new doors while presenting fresh challenges. You find yourself at a crossroads, ready to make the next important choice in your journey.", chosenPath),
		FollowUpDecisions: []BranchOption{
			{Name: "Continue Current Path", Description: "Stay committed to your chosen direction and see where it leads"},
			{Name: "Pivot Strategy", Description: "Adjust your approach based on new information and experiences"},
			{Name: "Explore New Opportunities", Description: "Look for additional options that have emerged from your choice"},
		},
	}

	model, _ := s.models()
	response, err := s.complete(ctx, buildFollowUpPrompt(originalDecision, chosenPath, simulationResult), model)
	if err != nil {
		s.fellBack("follow_up_decisions", err)
		return fallback
	}

	var parsed FollowUpResult
	if err := ExtractJSON(response, &parsed); err != nil {
		s.fellBack("follow_up_decisions", err)
		return fallback
	}
	if parsed.Storyline == "" {
		parsed.Storyline = "Your journey continues..."
	}
	if len(parsed.FollowUpDecisions) == 0 {
		parsed.FollowUpDecisions = fallback.FollowUpDecisions
	}
	return parsed
}

// SpecificFollowUpDecisions narrows a broad follow-up category into 3-4
// concrete decisions. The fallback is keyed by category.
func (s *Service) SpecificFollowUpDecisions(ctx context.Context, originalDecision, chosenPath, broadCategory string, simulationResult interface{}) SpecificFollowUpsResult {
	model, _ := s.models()
	prompt := buildSpecificFollowUpsPrompt(originalDecision, chosenPath, broadCategory, simulationResult)
	response, err := s.complete(ctx, prompt, model)
	if err != nil {
		s.fellBack("specific_follow_ups", err)
		return SpecificFollowUpsResult{SpecificDecisions: fallbackSpecificDecisions(broadCategory)}
	}

	var parsed SpecificFollowUpsResult
	if err := ExtractJSON(response, &parsed); err != nil {
		s.fellBack("specific_follow_ups", err)
		return SpecificFollowUpsResult{SpecificDecisions: fallbackSpecificDecisions(broadCategory)}
	}
	if len(parsed.SpecificDecisions) == 0 {
		parsed.SpecificDecisions = fallbackSpecificDecisions(broadCategory)
	}
	return parsed
}

// CheckClarification decides whether a decision is specific enough to
// simulate. On failure it conservatively asks for clarification.
func (s *Service) CheckClarification(ctx context.Context, title, description string) ClarificationResult {
	fallback := ClarificationResult{
		NeedsClarification: true,
		Reason:             "Unable to analyze decision context",
	}

	model, _ := s.models()
	response, err := s.complete(ctx, buildClarificationCheckPrompt(title, description), model)
	if err != nil {
		s.fellBack("check_clarification", err)
		return fallback
	}

	var parsed ClarificationResult
	if err := ExtractJSON(response, &parsed); err != nil {
		s.fellBack("check_clarification", err)
		return fallback
	}
	if parsed.Reason == "" {
		parsed.Reason = "Insufficient context for realistic simulation"
	}
	return parsed
}

// ClarifyingQuestions produces 3-5 questions that would sharpen the
// decision before simulation.
func (s *Service) ClarifyingQuestions(ctx context.Context, title, description string) QuestionsResult {
	fallback := QuestionsResult{
		Questions: []string{
			"What's the main reason you're considering this decision right now?",
			"What are the most important factors you're weighing?",
			"What would success look like for you in this situation?",
			"What concerns or fears do you have about this decision?",
			"How does this decision fit into your broader life goals?",
		},
	}

	model, _ := s.models()
	response, err := s.complete(ctx, buildClarifyingQuestionsPrompt(title, description), model)
	if err != nil {
		s.fellBack("clarifying_questions", err)
		return fallback
	}

	var parsed QuestionsResult
	if err := ExtractJSON(response, &parsed); err != nil {
		s.fellBack("clarifying_questions", err)
		return fallback
	}
	if len(parsed.Questions) == 0 {
		parsed.Questions = fallback.Questions
	}
	return parsed
}

// DecisionSummary synthesizes answered clarifying questions into an
// enhanced description. The fallback preserves the original description.
func (s *Service) DecisionSummary(ctx context.Context, title, originalDescription string, responses []QA) SummaryResult {
	fallback := SummaryResult{
		Summary:             "Here's what I understand about your situation...",
		EnhancedDescription: originalDescription,
	}

	model, _ := s.models()
	response, err := s.complete(ctx, buildDecisionSummaryPrompt(title, originalDescription, responses), model)
	if err != nil {
		s.fellBack("decision_summary", err)
		return fallback
	}

	var parsed SummaryResult
	if err := ExtractJSON(response, &parsed); err != nil {
		s.fellBack("decision_summary", err)
		return fallback
	}
	if parsed.Summary == "" {
		parsed.Summary = fallback.Summary
	}
	if parsed.EnhancedDescription == "" {
		parsed.EnhancedDescription = originalDescription
	}
	return parsed
}

// PathForward builds an action plan for a chosen follow-up path.
func (s *Service) PathForward(ctx context.Context, originalDecision, chosenPath, pathDescription string) PathForwardResult {
	fallback := PathForwardResult{
		ActionPlan:        fmt.Sprintf("Create a detailed plan for %q by researching best practices and setting specific goals.", chosenPath),
		PotentialOutcomes: fmt.Sprintf("By pursuing %q, you'll likely see positive changes within 3-6 months.", chosenPath),
		NextSteps:         "1) Research and gather information 2) Set specific goals 3) Create a timeline 4) Take action 5) Monitor progress",
		Timeline:          "Month 1-2: Planning and preparation. Month 3-4: Active implementation. Month 5-6: Evaluation and adjustment.",
		Resources:         "Educational materials, mentors, professional networks, and relevant tools for your chosen path.",
	}

	model, _ := s.models()
	response, err := s.complete(ctx, buildPathForwardPrompt(originalDecision, chosenPath, pathDescription), model)
	if err != nil {
		s.fellBack("path_forward", err)
		return fallback
	}

	var parsed PathForwardResult
	if err := ExtractJSON(response, &parsed); err != nil {
		s.fellBack("path_forward", err)
		return fallback
	}
	if parsed.ActionPlan == "" {
		parsed.ActionPlan = fallback.ActionPlan
	}
	if parsed.PotentialOutcomes == "" {
		parsed.PotentialOutcomes = fallback.PotentialOutcomes
	}
	if parsed.NextSteps == "" {
		parsed.NextSteps = fallback.NextSteps
	}
	if parsed.Timeline == "" {
		parsed.Timeline = fallback.Timeline
	}
	if parsed.Resources == "" {
		parsed.Resources = fallback.Resources
	}
	return parsed
}

// FollowUpSimulation builds a personalized action plan for a follow-up
// action the user has already picked. Same shape as PathForward, different
// framing.
func (s *Service) FollowUpSimulation(ctx context.Context, originalDecision, followUpName, followUpDescription string) PathForwardResult {
	fallback := PathForwardResult{
		ActionPlan:        fmt.Sprintf("Here's a detailed plan for %q: Start by breaking this down into smaller, manageable steps that you can take immediately.", followUpName),
		PotentialOutcomes: "By choosing this path, you'll likely see positive changes in your situation within the next 3-6 months.",
		NextSteps:         "Begin by taking one small action today that moves you in this direction.",
		Timeline:          "You can expect to see initial results within 1-2 months, with more significant progress by 6 months.",
		Resources:         "Consider what resources, skills, or support you'll need to succeed in this direction.",
	}

	model, _ := s.models()
	response, err := s.complete(ctx, buildFollowUpSimulationPrompt(originalDecision, followUpName, followUpDescription), model)
	if err != nil {
		s.fellBack("followup_simulation", err)
		return fallback
	}

	var parsed PathForwardResult
	if err := ExtractJSON(response, &parsed); err != nil {
		s.fellBack("followup_simulation", err)
		return fallback
	}
	if parsed.ActionPlan == "" {
		parsed.ActionPlan = "Create a step-by-step plan to move forward with this direction."
	}
	if parsed.PotentialOutcomes == "" {
		parsed.PotentialOutcomes = "This path will likely lead to positive changes in your situation."
	}
	if parsed.NextSteps == "" {
		parsed.NextSteps = "Start by taking small, concrete actions that align with your goals."
	}
	if parsed.Timeline == "" {
		parsed.Timeline = "You can expect to see progress within 1-3 months."
	}
	if parsed.Resources == "" {
		parsed.Resources = "Consider what skills, support, or resources you might need."
	}
	return parsed
}

// fallbackSpecificDecisions maps the three broad follow-up categories to
// fixed specific options.
func fallbackSpecificDecisions(broadCategory string) []BranchOption {
	switch broadCategory {
	case "Continue Current Path":
		return []BranchOption{
			{Name: "Double Down on Current Approach", Description: "Invest more time and energy into your current strategy to maximize results and build momentum"},
			{Name: "Seek Mentorship and Guidance", Description: "Find experienced mentors who can help you navigate your current path more effectively"},
			{Name: "Track Progress and Optimize", Description: "Implement systems to monitor your progress and make data-driven improvements to your approach"},
			{Name: "Build Support Systems", Description: "Create networks and systems that will help you succeed in your chosen direction"},
		}
	case "Pivot Strategy":
		return []BranchOption{
			{Name: "Adjust Timeline and Expectations", Description: "Modify your timeline and expectations based on new information and experiences"},
			{Name: "Change Tactics While Keeping Goals", Description: "Maintain your core objectives but change the methods you use to achieve them"},
			{Name: "Seek Alternative Approaches", Description: "Explore different ways to reach the same destination with a fresh perspective"},
			{Name: "Test New Strategies", Description: "Experiment with small changes to see what works better for your situation"},
		}
	case "Explore New Opportunities":
		return []BranchOption{
			{Name: "Research Emerging Options", Description: "Investigate new opportunities that have become available since your decision"},
			{Name: "Network and Build Connections", Description: "Expand your network to discover new possibilities and pathways"},
			{Name: "Develop New Skills", Description: "Acquire new capabilities that open up additional opportunities and career paths"},
			{Name: "Explore Side Projects", Description: "Start small experiments or side projects to test new directions without major commitment"},
		}
	default:
		return []BranchOption{
			{Name: "Reflect and Reassess", Description: "Take time to think about your situation and consider your options carefully"},
			{Name: "Seek Additional Information", Description: "Gather more data and insights to make better-informed decisions"},
			{Name: "Consult with Others", Description: "Get advice and perspectives from trusted friends, family, or professionals"},
		}
	}
}
