package api

// CreateDecisionRequest is the expected body for POST /decisions.
// Title is checked in the service layer because the "life branch" prefix
// strip can empty it.
type CreateDecisionRequest struct {
	Title         string `json:"title"`
	Description   string `json:"description"`
	PreConfidence int    `json:"preConfidence" validate:"omitempty,min=1,max=5"`
}

// CreateDecisionResponse is returned with HTTP 201.
type CreateDecisionResponse struct {
	DecisionID string `json:"decisionId"`
	CreatedAt  string `json:"createdAt"`
}

// CreateBranchRequest is the expected body for POST /decisions/{id}/branches.
type CreateBranchRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

// CreateBranchResponse is returned with HTTP 201.
type CreateBranchResponse struct {
	BranchID   string `json:"branchId"`
	DecisionID string `json:"decisionId"`
	CreatedAt  string `json:"createdAt"`
}

// SimulateRequest is the expected body for POST /simulate.
type SimulateRequest struct {
	BranchID     string `json:"branchId" validate:"required"`
	PersonaStyle string `json:"personaStyle" validate:"omitempty,oneof=analytical empathetic"`
}

// CommitRequest is the expected body for POST /decisions/{id}/commit.
type CommitRequest struct {
	FinalBranchID  string `json:"finalBranchId" validate:"required"`
	PostConfidence int    `json:"postConfidence" validate:"required,min=1,max=5"`
}

// ResolveRequest is the expected body for POST /decisions/{id}/resolve.
type ResolveRequest struct {
	FinalBranchID          string `json:"finalBranchId" validate:"required"`
	PostConfidence         int    `json:"postConfidence" validate:"required,min=1,max=5"`
	CreateSubDecision      bool   `json:"createSubDecision"`
	SubDecisionTitle       string `json:"subDecisionTitle"`
	SubDecisionDescription string `json:"subDecisionDescription"`
}

// GroupDecisionsRequest is the expected body for POST /decisions/group.
type GroupDecisionsRequest struct {
	DecisionIDs      []string `json:"decisionIds" validate:"min=2"`
	GroupName        string   `json:"groupName" validate:"required"`
	GroupDescription string   `json:"groupDescription"`
}

// GenerateBranchesRequest is the expected body for POST /generate-branches.
type GenerateBranchesRequest struct {
	DecisionTitle       string `json:"decisionTitle" validate:"required"`
	DecisionDescription string `json:"decisionDescription"`
}

// FollowUpDecisionsRequest is the expected body for POST /generate-followup-decisions.
type FollowUpDecisionsRequest struct {
	OriginalDecision string      `json:"originalDecision" validate:"required"`
	ChosenPath       string      `json:"chosenPath" validate:"required"`
	SimulationResult interface{} `json:"simulationResult"`
}

// SpecificFollowUpsRequest is the expected body for POST /generate-specific-followup-decisions.
type SpecificFollowUpsRequest struct {
	OriginalDecision string      `json:"originalDecision" validate:"required"`
	ChosenPath       string      `json:"chosenPath" validate:"required"`
	BroadCategory    string      `json:"broadCategory" validate:"required"`
	SimulationResult interface{} `json:"simulationResult"`
}

// PathForwardRequest is the expected body for POST /generate-path-forward.
type PathForwardRequest struct {
	OriginalDecision string `json:"originalDecision" validate:"required"`
	ChosenPath       string `json:"chosenPath" validate:"required"`
	PathDescription  string `json:"pathDescription" validate:"required"`
}

// FollowUpSimulationRequest is the expected body for POST /generate-followup-simulation.
type FollowUpSimulationRequest struct {
	OriginalDecision    string `json:"originalDecision" validate:"required"`
	FollowUpName        string `json:"followUpName" validate:"required"`
	FollowUpDescription string `json:"followUpDescription"`
}

// ClarificationRequest is the shared body for POST /check-clarification-needed
// and POST /generate-clarifying-questions.
type ClarificationRequest struct {
	DecisionTitle       string `json:"decisionTitle" validate:"required"`
	DecisionDescription string `json:"decisionDescription"`
}

// QAResponse is one answered clarifying question.
type QAResponse struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// DecisionSummaryRequest is the expected body for POST /generate-decision-summary.
type DecisionSummaryRequest struct {
	DecisionTitle       string       `json:"decisionTitle" validate:"required"`
	OriginalDescription string       `json:"originalDescription"`
	UserResponses       []QAResponse `json:"userResponses" validate:"required,min=1"`
}

// ErrorResponse is a standardized error message for API responses.
type ErrorResponse struct {
	Error string `json:"error"`
}
