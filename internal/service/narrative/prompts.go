package narrative

import (
	"encoding/json"
	"fmt"
	"strings"

	"branchpoint-backend/internal/domain"
)

// Prompt builders. Each ends with the exact output schema the parser
// expects; the mock provider keys off distinctive phrases in these
// templates.

func buildSimulationPrompt(decisionTitle, branchName, branchDescription string, persona domain.PersonaStyle, decisionDescription string) string {
	personaHint := "Focus on data, metrics, and logical analysis"
	if persona == domain.PersonaEmpathetic {
		personaHint = "Focus on emotions, relationships, and personal impact"
	}
	if decisionDescription == "" {
		decisionDescription = "No additional context provided"
	}

	return fmt.Sprintf(`You are Future-You one year from now. You experienced choosing "%s" for the decision "%s".

Decision Context: %s

Branch Description: %s

Speak from first-person and be reflective. Produce 5 probing questions that would have helped you make this choice, an optimistic scenario (short paragraph), a challenging scenario (short paragraph), and a short summary of the major tradeoffs.

Persona Style: %s

Output JSON matching this exact schema:
{
  "questions": ["question1", "question2", "question3", "question4", "question5"],
  "optimistic_scenario": "In one year, after choosing this path...",
  "challenging_scenario": "In one year, after choosing this path, the challenges...",
  "summary": "Major tradeoffs: ...",
  "confidence_delta_recommendation": 0.5
}`, branchName, decisionTitle, decisionDescription, branchDescription, personaHint)
}

func buildBranchesPrompt(decisionTitle, decisionDescription string) string {
	return fmt.Sprintf(`You are an AI decision-making assistant. Given a decision title and description, generate exactly 2 meaningful, specific choices that represent the main paths forward for this decision.

Decision Title: "%s"
Decision Description: "%s"

Extract the actual specific options mentioned in the decision and create choices based on those exact options. Each choice should be clear, actionable, and represent genuinely different paths forward.

Output JSON matching this exact schema:
{
  "branches": [
    {"name": "Specific Choice 1", "description": "Clear description of what this choice involves"},
    {"name": "Specific Choice 2", "description": "Clear description of what this choice involves"}
  ]
}`, decisionTitle, decisionDescription)
}

func buildComparisonPrompt(decisionTitle string, branches []ComparisonInput) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Compare these two life decision branches for %q:\n", decisionTitle)
	for i, branch := range branches {
		sim, _ := json.MarshalIndent(branch.Simulation, "", "  ")
		fmt.Fprintf(&b, "\nBranch %d: %s\nDescription: %s\nSimulation: %s\n", i+1, branch.Name, branch.Description, sim)
	}
	b.WriteString(`
Generate a comparison analysis in JSON format:
{
  "tradeoffs": ["tradeoff1", "tradeoff2", "tradeoff3"],
  "mergeConflicts": ["conflict1", "conflict2"],
  "recommendedMerge": "Based on the analysis, I recommend...",
  "confidenceImpact": "This decision will likely..."
}`)
	return b.String()
}

func buildFollowUpPrompt(originalDecision, chosenPath string, simulationResult interface{}) string {
	sim, _ := json.MarshalIndent(simulationResult, "", "  ")
	return fmt.Sprintf(`You are a life simulation AI. Based on the user's original decision, their chosen path, and the simulation results, create a compelling storyline of their life journey and generate specific follow-up decisions.

Original Decision: "%s"
Chosen Path: "%s"
Simulation Results: %s

Create a detailed, specific storyline (2-3 paragraphs) showing how their life unfolds over 6-12 months after making this choice. Then generate 3-4 specific follow-up decisions that naturally arise from this storyline.

Output JSON matching this exact schema:
{
  "storyline": "Your detailed, specific storyline here...",
  "followUpDecisions": [
    {"name": "Specific decision 1", "description": "Detailed description of what this involves"},
    {"name": "Specific decision 2", "description": "Detailed description of what this involves"},
    {"name": "Specific decision 3", "description": "Detailed description of what this involves"}
  ]
}`, originalDecision, chosenPath, sim)
}

func buildSpecificFollowUpsPrompt(originalDecision, chosenPath, broadCategory string, simulationResult interface{}) string {
	sim, _ := json.MarshalIndent(simulationResult, "", "  ")
	return fmt.Sprintf(`You are a life coaching AI. Based on the user's original decision, their chosen path, the broad category they selected, and the simulation results, generate 3-4 specific, actionable follow-up decisions within that category.

Original Decision: "%s"
Chosen Path: "%s"
Broad Category: "%s"
Simulation Results: %s

These should be specific and actionable, directly related to their situation, realistic, and represent different approaches within the category.

Output JSON matching this exact schema:
{
  "specificDecisions": [
    {"name": "Specific Decision 1", "description": "Detailed description of this specific follow-up decision"},
    {"name": "Specific Decision 2", "description": "Detailed description of this specific follow-up decision"},
    {"name": "Specific Decision 3", "description": "Detailed description of this specific follow-up decision"}
  ]
}`, originalDecision, chosenPath, broadCategory, sim)
}

func buildClarificationCheckPrompt(decisionTitle, decisionDescription string) string {
	return fmt.Sprintf(`You are an AI assistant that analyzes decisions to determine if there's enough context for realistic simulation.

The user has shared this decision:
Title: "%s"
Description: "%s"

Determine if this decision has enough specific details to create a meaningful, realistic simulation of the different choice paths. Consider specificity of the options, background context, constraints like timeline or budget, and whether the stakes of each choice are clear.

Output JSON matching this exact schema:
{
  "needsClarification": true,
  "reason": "Brief explanation of why clarification is or isn't needed"
}`, decisionTitle, decisionDescription)
}

func buildClarifyingQuestionsPrompt(decisionTitle, decisionDescription string) string {
	return fmt.Sprintf(`You are a helpful AI assistant that generates clarifying questions to enable realistic decision simulation.

The user has shared this decision:
Title: "%s"
Description: "%s"

Generate 3-5 specific, thoughtful clarifying questions that would help create a realistic simulation of each choice path. Focus on details essential for simulating what life would be like 1 year after making each choice: specifics of each option, personal context, and constraints.

Output JSON matching this exact schema:
{
  "questions": ["question1", "question2", "question3", "question4", "question5"]
}`, decisionTitle, decisionDescription)
}

func buildDecisionSummaryPrompt(decisionTitle, originalDescription string, responses []QA) string {
	var lines []string
	for i, r := range responses {
		lines = append(lines, fmt.Sprintf("Q%d: %s\nA%d: %s", i+1, r.Question, i+1, r.Answer))
	}
	return fmt.Sprintf(`You are a helpful AI assistant that creates clear, comprehensive decision summaries.

Original Decision:
Title: "%s"
Description: "%s"

User's Clarifying Responses:
%s

Create a conversational summary that starts with "Here's what I understand about your situation..." and an enhanced description that incorporates all the context from their responses while maintaining their voice.

Output JSON matching this exact schema:
{
  "summary": "Here's what I understand about your situation...",
  "enhancedDescription": "Enhanced description incorporating all context..."
}`, decisionTitle, originalDescription, strings.Join(lines, "\n\n"))
}

func buildFollowUpSimulationPrompt(originalDecision, followUpName, followUpDescription string) string {
	return fmt.Sprintf(`You are a life coaching AI. Based on the user's original decision and their chosen follow-up action, create a detailed, personalized action plan.

Original Decision: "%s"
Follow-up Action: "%s"
Description: "%s"

Create a comprehensive action plan that is specific and actionable rather than generic, personalized to their situation, realistic about challenges, and focused on practical next steps. Cover the action plan itself, potential outcomes, immediate next steps, a realistic timeline, and the resources they'll need.

Output JSON matching this exact schema:
{
  "actionPlan": "Your detailed action plan here...",
  "potentialOutcomes": "What they can expect to achieve...",
  "nextSteps": "Immediate actions they can take...",
  "timeline": "Realistic timeline for progress...",
  "resources": "What they'll need to succeed..."
}`, originalDecision, followUpName, followUpDescription)
}

func buildPathForwardPrompt(originalDecision, chosenPath, pathDescription string) string {
	return fmt.Sprintf(`You are a life coaching AI. Based on the user's original decision and their chosen follow-up path, create a detailed, actionable "Your Path Forward" plan.

Original Decision: "%s"
Chosen Follow-up Path: "%s"
Path Description: "%s"

Create a comprehensive, specific plan with an action plan, realistic potential outcomes, 5 numbered next steps they can start immediately, a timeline with milestones, and concrete resources.

Output JSON matching this exact schema:
{
  "actionPlan": "Your detailed action plan here...",
  "potentialOutcomes": "Your potential outcomes here...",
  "nextSteps": "1) First step 2) Second step 3) Third step 4) Fourth step 5) Fifth step",
  "timeline": "Your timeline with specific milestones...",
  "resources": "Your specific resources and tools..."
}`, originalDecision, chosenPath, pathDescription)
}
