package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"branchpoint-backend/internal/service/narrative"
	"branchpoint-backend/pkg/api"
	"branchpoint-backend/pkg/observability"
)

// GenerateHandler serves the stateless content-generation endpoints. They
// read nothing from the store; every response comes from the narrative
// service or its fallbacks.
type GenerateHandler struct {
	narrative *narrative.Service
	metrics   *observability.Metrics
	logger    *zap.Logger
}

// NewGenerateHandler wires the handler.
func NewGenerateHandler(narrativeSvc *narrative.Service, metrics *observability.Metrics, logger *zap.Logger) *GenerateHandler {
	return &GenerateHandler{
		narrative: narrativeSvc,
		metrics:   metrics,
		logger:    logger,
	}
}

// generatedBranch is a branch option with a client-side placeholder ID.
type generatedBranch struct {
	BranchID    string `json:"branchId"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// GenerateBranches handles POST /generate-branches. Generation failures
// fall back to the deterministic rule table instead of erroring, so this
// endpoint always returns two branches.
func (h *GenerateHandler) GenerateBranches(w http.ResponseWriter, r *http.Request) {
	var req api.GenerateBranchesRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, h.logger, err)
		return
	}
	if err := api.Validate(req); err != nil {
		respondError(w, h.logger, err)
		return
	}

	idPrefix := "ai"
	options, err := h.narrative.GenerateBranches(r.Context(), req.DecisionTitle, req.DecisionDescription)
	if err != nil {
		h.logger.Warn("branch generation failed, using rule table",
			zap.String("decisionTitle", req.DecisionTitle),
			zap.Error(err),
		)
		h.metrics.AdapterFallbacks.Inc()
		options = narrative.FallbackBranches(req.DecisionTitle, req.DecisionDescription)
		idPrefix = "fallback"
	}

	branches := make([]generatedBranch, len(options))
	for i, option := range options {
		branches[i] = generatedBranch{
			BranchID:    idPrefix + "_" + uuid.NewString(),
			Name:        option.Name,
			Description: option.Description,
		}
	}

	api.Success(w, http.StatusOK, map[string]interface{}{"branches": branches})
}

// FollowUpDecisions handles POST /generate-followup-decisions.
func (h *GenerateHandler) FollowUpDecisions(w http.ResponseWriter, r *http.Request) {
	var req api.FollowUpDecisionsRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, h.logger, err)
		return
	}
	if err := api.Validate(req); err != nil {
		respondError(w, h.logger, err)
		return
	}

	result := h.narrative.FollowUpDecisions(r.Context(), req.OriginalDecision, req.ChosenPath, req.SimulationResult)
	api.Success(w, http.StatusOK, result)
}

// SpecificFollowUps handles POST /generate-specific-followup-decisions.
func (h *GenerateHandler) SpecificFollowUps(w http.ResponseWriter, r *http.Request) {
	var req api.SpecificFollowUpsRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, h.logger, err)
		return
	}
	if err := api.Validate(req); err != nil {
		respondError(w, h.logger, err)
		return
	}

	result := h.narrative.SpecificFollowUpDecisions(r.Context(), req.OriginalDecision, req.ChosenPath, req.BroadCategory, req.SimulationResult)
	api.Success(w, http.StatusOK, result)
}

// PathForward handles POST /generate-path-forward.
func (h *GenerateHandler) PathForward(w http.ResponseWriter, r *http.Request) {
	var req api.PathForwardRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, h.logger, err)
		return
	}
	if err := api.Validate(req); err != nil {
		respondError(w, h.logger, err)
		return
	}

	result := h.narrative.PathForward(r.Context(), req.OriginalDecision, req.ChosenPath, req.PathDescription)
	api.Success(w, http.StatusOK, map[string]interface{}{"pathForward": result})
}

// FollowUpSimulation handles POST /generate-followup-simulation.
func (h *GenerateHandler) FollowUpSimulation(w http.ResponseWriter, r *http.Request) {
	var req api.FollowUpSimulationRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, h.logger, err)
		return
	}
	if err := api.Validate(req); err != nil {
		respondError(w, h.logger, err)
		return
	}

	result := h.narrative.FollowUpSimulation(r.Context(), req.OriginalDecision, req.FollowUpName, req.FollowUpDescription)
	api.Success(w, http.StatusOK, map[string]interface{}{"simulation": result})
}

// CheckClarification handles POST /check-clarification-needed.
func (h *GenerateHandler) CheckClarification(w http.ResponseWriter, r *http.Request) {
	var req api.ClarificationRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, h.logger, err)
		return
	}
	if err := api.Validate(req); err != nil {
		respondError(w, h.logger, err)
		return
	}

	result := h.narrative.CheckClarification(r.Context(), req.DecisionTitle, req.DecisionDescription)
	api.Success(w, http.StatusOK, result)
}

// ClarifyingQuestions handles POST /generate-clarifying-questions.
func (h *GenerateHandler) ClarifyingQuestions(w http.ResponseWriter, r *http.Request) {
	var req api.ClarificationRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, h.logger, err)
		return
	}
	if err := api.Validate(req); err != nil {
		respondError(w, h.logger, err)
		return
	}

	result := h.narrative.ClarifyingQuestions(r.Context(), req.DecisionTitle, req.DecisionDescription)
	api.Success(w, http.StatusOK, result)
}

// DecisionSummary handles POST /generate-decision-summary.
func (h *GenerateHandler) DecisionSummary(w http.ResponseWriter, r *http.Request) {
	var req api.DecisionSummaryRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, h.logger, err)
		return
	}
	if err := api.Validate(req); err != nil {
		respondError(w, h.logger, err)
		return
	}

	responses := make([]narrative.QA, len(req.UserResponses))
	for i, qa := range req.UserResponses {
		responses[i] = narrative.QA{Question: qa.Question, Answer: qa.Answer}
	}
	result := h.narrative.DecisionSummary(r.Context(), req.DecisionTitle, req.OriginalDescription, responses)
	api.Success(w, http.StatusOK, result)
}
