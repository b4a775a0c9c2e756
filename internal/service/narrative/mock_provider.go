package narrative

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// MockProvider answers generation prompts deterministically for local
// development and tests. It dispatches on distinctive phrases in the
// prompt templates and echoes names it finds in the prompt so responses
// read as specific to the request.
type MockProvider struct {
	available bool
}

var _ Provider = (*MockProvider)(nil)

// NewMockProvider returns an available mock provider.
func NewMockProvider() *MockProvider {
	return &MockProvider{available: true}
}

// SetAvailable toggles availability; tests use this to force fallbacks.
func (m *MockProvider) SetAvailable(available bool) {
	m.available = available
}

func (m *MockProvider) IsAvailable() bool {
	return m.available
}

func (m *MockProvider) Complete(ctx context.Context, prompt string, options CompletionOptions) (string, error) {
	if !m.available {
		return "", fmt.Errorf("mock provider is not available")
	}

	switch {
	case strings.Contains(prompt, "You are Future-You"):
		return m.mockSimulation(prompt)
	case strings.Contains(prompt, "generate exactly 2 meaningful"):
		return m.mockBranches(prompt)
	case strings.Contains(prompt, "Compare these two life decision branches"):
		return m.mockComparison(prompt)
	case strings.Contains(prompt, "create a compelling storyline"):
		return m.mockFollowUp(prompt)
	case strings.Contains(prompt, "within that category"):
		return m.mockSpecificFollowUps(prompt)
	case strings.Contains(prompt, "determine if there's enough context"):
		return m.mockClarificationCheck(prompt)
	case strings.Contains(prompt, "generates clarifying questions"):
		return m.mockClarifyingQuestions()
	case strings.Contains(prompt, "comprehensive decision summaries"):
		return m.mockDecisionSummary(prompt)
	case strings.Contains(prompt, "Your Path Forward"):
		return m.mockPathForward(prompt)
	case strings.Contains(prompt, "personalized action plan"):
		return m.mockFollowUpSimulation(prompt)
	}
	return "", fmt.Errorf("unsupported prompt type")
}

func (m *MockProvider) mockSimulation(prompt string) (string, error) {
	branchName := quotedAfter(prompt, "choosing ")
	if branchName == "" {
		branchName = "this path"
	}
	return toJSON(map[string]interface{}{
		"questions": []string{
			fmt.Sprintf("What would make %s feel like the right call a year from now?", branchName),
			"What am I giving up by taking this path?",
			"Who else is affected by this choice?",
			"What's my plan if the first six months go badly?",
			"How will I know it's working?",
		},
		"optimistic_scenario":             fmt.Sprintf("In one year, after choosing %s, things have settled into a rhythm that feels earned. The early uncertainty gave way to steady progress.", branchName),
		"challenging_scenario":            fmt.Sprintf("In one year, after choosing %s, the adjustment was harder than expected and I had to renegotiate my expectations more than once.", branchName),
		"summary":                         fmt.Sprintf("Major tradeoffs: momentum and clarity from committing to %s, against the options it closes off.", branchName),
		"confidence_delta_recommendation": 0.5,
	})
}

func (m *MockProvider) mockBranches(prompt string) (string, error) {
	title := quotedAfter(prompt, "Decision Title: ")
	if title == "" {
		title = "this decision"
	}
	return toJSON(map[string]interface{}{
		"branches": []map[string]string{
			{
				"name":        fmt.Sprintf("Commit to %s", title),
				"description": "Move forward decisively and put your energy behind making this work.",
			},
			{
				"name":        "Hold Off for Now",
				"description": "Keep your current situation while you gather more information and keep options open.",
			},
		},
	})
}

// mockComparison pulls both branch names out of the prompt so tradeoff
// strings reference them, matching what a real comparison returns.
func (m *MockProvider) mockComparison(prompt string) (string, error) {
	first := lineAfter(prompt, "Branch 1: ")
	second := lineAfter(prompt, "Branch 2: ")
	if first == "" {
		first = "the first option"
	}
	if second == "" {
		second = "the second option"
	}
	return toJSON(map[string]interface{}{
		"tradeoffs": []string{
			fmt.Sprintf("%s offers certainty and a clear next step, while %s preserves flexibility at the cost of momentum", first, second),
			fmt.Sprintf("Financially, %s pays off sooner; %s has a higher ceiling but a slower start", first, second),
		},
		"mergeConflicts": []string{
			fmt.Sprintf("You can't fully pursue %s and %s at the same time without splitting your attention", first, second),
		},
		"recommendedMerge": fmt.Sprintf("Based on the analysis, I recommend leading with %s while keeping the door open to elements of %s.", first, second),
		"confidenceImpact": "This decision will likely increase your confidence once the ambiguity between the two paths is resolved.",
	})
}

func (m *MockProvider) mockFollowUp(prompt string) (string, error) {
	chosenPath := quotedAfter(prompt, "Chosen Path: ")
	if chosenPath == "" {
		chosenPath = "your chosen path"
	}
	return toJSON(map[string]interface{}{
		"storyline": fmt.Sprintf("Six months after choosing %s, the shape of your days has changed. The first weeks were a scramble of logistics and second-guessing, but by spring the decision stopped feeling like a question. Now a new set of choices is coming into focus.", chosenPath),
		"followUpDecisions": []map[string]string{
			{"name": "Continue Current Path", "description": "Stay committed to your chosen direction and see where it leads"},
			{"name": "Pivot Strategy", "description": "Adjust your approach based on new information and experiences"},
			{"name": "Explore New Opportunities", "description": "Look for additional options that have emerged from your choice"},
		},
	})
}

func (m *MockProvider) mockSpecificFollowUps(prompt string) (string, error) {
	category := quotedAfter(prompt, "Broad Category: ")
	if category == "" {
		category = "your chosen category"
	}
	return toJSON(map[string]interface{}{
		"specificDecisions": []map[string]string{
			{"name": fmt.Sprintf("Set a 90-day milestone for %s", category), "description": "Pick one measurable outcome and commit to reviewing it in three months."},
			{"name": "Find one accountability partner", "description": "Share the plan with someone who will ask you about it regularly."},
			{"name": "Budget the transition", "description": "Work out the real cost of this direction before committing further."},
		},
	})
}

func (m *MockProvider) mockClarificationCheck(prompt string) (string, error) {
	description := quotedAfter(prompt, "Description: ")
	// Short descriptions are treated as under-specified.
	if len(description) < 40 {
		return toJSON(map[string]interface{}{
			"needsClarification": true,
			"reason":             "The decision lacks specifics about the options, constraints, and stakes involved",
		})
	}
	return toJSON(map[string]interface{}{
		"needsClarification": false,
		"reason":             "The decision includes enough specifics to simulate each path realistically",
	})
}

func (m *MockProvider) mockClarifyingQuestions() (string, error) {
	return toJSON(map[string]interface{}{
		"questions": []string{
			"What are the specific options you're choosing between?",
			"What's your timeline for making this decision?",
			"What constraints - financial, family, location - matter most here?",
			"What would have to be true for you to regret this choice?",
			"Which of your long-term goals does this decision serve?",
		},
	})
}

func (m *MockProvider) mockDecisionSummary(prompt string) (string, error) {
	title := quotedAfter(prompt, "Title: ")
	return toJSON(map[string]interface{}{
		"summary":             fmt.Sprintf("Here's what I understand about your situation: you're weighing %q and your answers show the stakes are real on both sides.", title),
		"enhancedDescription": fmt.Sprintf("A decision about %q, enriched with the constraints, priorities, and context gathered from your clarifying answers.", title),
	})
}

func (m *MockProvider) mockPathForward(prompt string) (string, error) {
	chosenPath := quotedAfter(prompt, "Chosen Follow-up Path: ")
	if chosenPath == "" {
		chosenPath = "your chosen path"
	}
	return toJSON(map[string]interface{}{
		"actionPlan":        fmt.Sprintf("Start %s with a concrete first commitment this week, then build a repeatable routine around it.", chosenPath),
		"potentialOutcomes": "Expect visible progress within three months and a clear verdict on the direction within six.",
		"nextSteps":         "1) Write down the single outcome that defines success 2) Block time for it weekly 3) Tell someone your plan 4) Review progress monthly 5) Adjust the plan after the first review",
		"timeline":          "Month 1: setup and first commitments. Months 2-3: execution. Months 4-6: evaluate and adjust.",
		"resources":         "A calendar you actually use, one person who will hold you to the plan, and notes from your simulation.",
	})
}

func (m *MockProvider) mockFollowUpSimulation(prompt string) (string, error) {
	action := quotedAfter(prompt, "Follow-up Action: ")
	if action == "" {
		action = "this action"
	}
	return toJSON(map[string]interface{}{
		"actionPlan":        fmt.Sprintf("Break %s into three concrete commitments and schedule the first one this week.", action),
		"potentialOutcomes": "Done consistently, this should produce a clear result you can evaluate within a quarter.",
		"nextSteps":         "Pick the smallest useful version of the first commitment and do it today.",
		"timeline":          "First signs of progress in 1-2 months, a real verdict by month 6.",
		"resources":         "Time on your calendar, one accountability partner, and whatever tooling the action itself requires.",
	})
}

// quotedAfter returns the contents of the first double-quoted string that
// follows marker in s.
func quotedAfter(s, marker string) string {
	idx := strings.Index(s, marker)
	if idx < 0 {
		return ""
	}
	rest := s[idx+len(marker):]
	open := strings.IndexByte(rest, '"')
	if open < 0 {
		return ""
	}
	rest = rest[open+1:]
	end := strings.IndexByte(rest, '"')
	if end < 0 {
		return ""
	}
	return rest[:end]
}

// lineAfter returns the remainder of the line that starts with marker.
func lineAfter(s, marker string) string {
	idx := strings.Index(s, marker)
	if idx < 0 {
		return ""
	}
	rest := s[idx+len(marker):]
	if end := strings.IndexByte(rest, '\n'); end >= 0 {
		rest = rest[:end]
	}
	return strings.TrimSpace(rest)
}

func toJSON(v interface{}) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
