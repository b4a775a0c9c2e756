package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"branchpoint-backend/internal/domain"
	"branchpoint-backend/internal/middleware"
	"branchpoint-backend/internal/service/decision"
	"branchpoint-backend/pkg/api"
	"branchpoint-backend/pkg/observability"
)

// DecisionHandler serves everything that touches stored decisions.
type DecisionHandler struct {
	service *decision.Service
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewDecisionHandler wires the handler.
func NewDecisionHandler(service *decision.Service, metrics *observability.Metrics, logger *zap.Logger) *DecisionHandler {
	return &DecisionHandler{
		service: service,
		metrics: metrics,
		logger:  logger,
	}
}

// CreateDecision handles POST /decisions.
func (h *DecisionHandler) CreateDecision(w http.ResponseWriter, r *http.Request) {
	var req api.CreateDecisionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, h.logger, err)
		return
	}
	if err := api.Validate(req); err != nil {
		respondError(w, h.logger, err)
		return
	}

	d, err := h.service.CreateDecision(r.Context(), middleware.UserID(r.Context()), decision.CreateDecisionInput{
		Title:         req.Title,
		Description:   req.Description,
		PreConfidence: req.PreConfidence,
	})
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	h.metrics.DecisionsCreated.Inc()
	api.Success(w, http.StatusCreated, api.CreateDecisionResponse{
		DecisionID: d.DecisionID,
		CreatedAt:  d.CreatedAt.Format(time.RFC3339Nano),
	})
}

// ListDecisions handles GET /decisions.
func (h *DecisionHandler) ListDecisions(w http.ResponseWriter, r *http.Request) {
	decisions, err := h.service.ListDecisions(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	api.Success(w, http.StatusOK, map[string]interface{}{
		"decisions": decisions,
		"count":     len(decisions),
	})
}

// GetDecision handles GET /decisions/{decisionID}.
func (h *DecisionHandler) GetDecision(w http.ResponseWriter, r *http.Request) {
	decisionID := chi.URLParam(r, "decisionID")

	detail, err := h.service.GetDecision(r.Context(), middleware.UserID(r.Context()), decisionID)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	api.Success(w, http.StatusOK, detail)
}

// CreateBranch handles POST /decisions/{decisionID}/branches.
func (h *DecisionHandler) CreateBranch(w http.ResponseWriter, r *http.Request) {
	decisionID := chi.URLParam(r, "decisionID")

	var req api.CreateBranchRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, h.logger, err)
		return
	}
	if err := api.Validate(req); err != nil {
		respondError(w, h.logger, err)
		return
	}

	b, err := h.service.CreateBranch(r.Context(), middleware.UserID(r.Context()), decisionID, req.Name, req.Description)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	h.metrics.BranchesCreated.Inc()
	api.Success(w, http.StatusCreated, api.CreateBranchResponse{
		BranchID:   b.BranchID,
		DecisionID: b.DecisionID,
		CreatedAt:  b.CreatedAt.Format(time.RFC3339Nano),
	})
}

// Simulate handles POST /simulate.
func (h *DecisionHandler) Simulate(w http.ResponseWriter, r *http.Request) {
	var req api.SimulateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, h.logger, err)
		return
	}
	if err := api.Validate(req); err != nil {
		respondError(w, h.logger, err)
		return
	}

	result, err := h.service.Simulate(r.Context(), middleware.UserID(r.Context()), req.BranchID, domain.PersonaStyle(req.PersonaStyle))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	h.metrics.SimulationsRun.Inc()
	api.Success(w, http.StatusOK, result)
}

// Compare handles GET /decisions/{decisionID}/comparison.
func (h *DecisionHandler) Compare(w http.ResponseWriter, r *http.Request) {
	decisionID := chi.URLParam(r, "decisionID")

	result, err := h.service.Compare(r.Context(), middleware.UserID(r.Context()), decisionID)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	api.Success(w, http.StatusOK, result)
}

// Commit handles POST /decisions/{decisionID}/commit.
func (h *DecisionHandler) Commit(w http.ResponseWriter, r *http.Request) {
	decisionID := chi.URLParam(r, "decisionID")

	var req api.CommitRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, h.logger, err)
		return
	}
	if err := api.Validate(req); err != nil {
		respondError(w, h.logger, err)
		return
	}

	result, err := h.service.Commit(r.Context(), middleware.UserID(r.Context()), decisionID, req.FinalBranchID, req.PostConfidence)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	h.metrics.DecisionsFinalized.WithLabelValues("commit").Inc()
	api.Success(w, http.StatusOK, result)
}

// Resolve handles POST /decisions/{decisionID}/resolve.
func (h *DecisionHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	decisionID := chi.URLParam(r, "decisionID")

	var req api.ResolveRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, h.logger, err)
		return
	}
	if err := api.Validate(req); err != nil {
		respondError(w, h.logger, err)
		return
	}

	result, err := h.service.Resolve(r.Context(), middleware.UserID(r.Context()), decisionID, decision.ResolveInput{
		FinalBranchID:          req.FinalBranchID,
		PostConfidence:         req.PostConfidence,
		CreateSubDecision:      req.CreateSubDecision,
		SubDecisionTitle:       req.SubDecisionTitle,
		SubDecisionDescription: req.SubDecisionDescription,
	})
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	h.metrics.DecisionsFinalized.WithLabelValues("resolve").Inc()
	api.Success(w, http.StatusOK, result)
}

// Tree handles GET /decisions/tree.
func (h *DecisionHandler) Tree(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.BuildTree(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	api.Success(w, http.StatusOK, result)
}

// GroupDecisions handles POST /decisions/group.
func (h *DecisionHandler) GroupDecisions(w http.ResponseWriter, r *http.Request) {
	var req api.GroupDecisionsRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, h.logger, err)
		return
	}
	if err := api.Validate(req); err != nil {
		respondError(w, h.logger, err)
		return
	}

	group, err := h.service.GroupDecisions(r.Context(), middleware.UserID(r.Context()), req.DecisionIDs, req.GroupName, req.GroupDescription)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	api.Success(w, http.StatusOK, map[string]interface{}{
		"groupId":     group.GroupID,
		"name":        group.Name,
		"description": group.Description,
		"decisionIds": group.DecisionIDs,
		"createdAt":   group.CreatedAt,
	})
}

// ListGroups handles GET /decisions/groups.
func (h *DecisionHandler) ListGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := h.service.ListGroups(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	api.Success(w, http.StatusOK, map[string]interface{}{
		"groups": groups,
		"count":  len(groups),
	})
}
