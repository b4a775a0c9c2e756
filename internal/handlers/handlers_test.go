package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"branchpoint-backend/internal/repository/memory"
	"branchpoint-backend/internal/service/decision"
	"branchpoint-backend/internal/service/narrative"
	"branchpoint-backend/pkg/observability"
)

type testServer struct {
	handler  http.Handler
	repo     *memory.Repository
	provider *narrative.MockProvider
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := zap.NewNop()
	repo := memory.NewRepository()
	provider := narrative.NewMockProvider()
	narrativeSvc := narrative.NewService(provider, "test-model", "test-branch-model", logger)
	decisionSvc := decision.NewService(repo, narrativeSvc, logger)
	metrics := observability.NewMetrics()
	narrativeSvc.OnFallback(metrics.AdapterFallbacks.Inc)

	router := NewRouter(
		NewDecisionHandler(decisionSvc, metrics, logger),
		NewGenerateHandler(narrativeSvc, metrics, logger),
		metrics,
		logger,
	)
	return &testServer{handler: router.Handler(), repo: repo, provider: provider}
}

func (ts *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-user-id", "user-test")
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func (ts *testServer) createDecision(t *testing.T, title string) string {
	t.Helper()

	rec := ts.do(t, http.MethodPost, "/decisions", map[string]interface{}{
		"title":         title,
		"preConfidence": 4,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	return decodeBody(t, rec)["decisionId"].(string)
}

func (ts *testServer) createBranch(t *testing.T, decisionID, name string) string {
	t.Helper()

	rec := ts.do(t, http.MethodPost, "/decisions/"+decisionID+"/branches", map[string]interface{}{
		"name": name,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	return decodeBody(t, rec)["branchId"].(string)
}

func (ts *testServer) simulate(t *testing.T, branchID string) {
	t.Helper()

	rec := ts.do(t, http.MethodPost, "/simulate", map[string]interface{}{"branchId": branchID})
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decodeBody(t, rec)["status"])
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)

	ts.createDecision(t, "Metrics check")
	rec := ts.do(t, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "decisions_created_total")
}

func TestCreateDecision(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/decisions", map[string]interface{}{
		"title":       "Life Branch: Move to Berlin",
		"description": "Relocation offer on the table",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	body := decodeBody(t, rec)
	assert.NotEmpty(t, body["decisionId"])
	assert.NotEmpty(t, body["createdAt"])

	list := decodeBody(t, ts.do(t, http.MethodGet, "/decisions", nil))
	assert.Equal(t, float64(1), list["count"])
	first := list["decisions"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "Move to Berlin", first["title"])
	assert.Equal(t, "DRAFT", first["state"])
	assert.Equal(t, float64(3), first["preConfidence"])
}

func TestCreateDecisionEmptyTitle(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/decisions", map[string]interface{}{"title": "   "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	list := decodeBody(t, ts.do(t, http.MethodGet, "/decisions", nil))
	assert.Equal(t, float64(0), list["count"])
}

func TestGetDecisionNotFound(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/decisions/dec_missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetDecisionIncludesBranches(t *testing.T) {
	ts := newTestServer(t)

	decisionID := ts.createDecision(t, "Change jobs")
	ts.createBranch(t, decisionID, "Stay")
	ts.createBranch(t, decisionID, "Leave")

	rec := ts.do(t, http.MethodGet, "/decisions/"+decisionID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Len(t, body["branches"], 2)
}

func TestSimulateReturnsConversation(t *testing.T) {
	ts := newTestServer(t)

	decisionID := ts.createDecision(t, "Buy a house")
	branchID := ts.createBranch(t, decisionID, "Buy now")

	rec := ts.do(t, http.MethodPost, "/simulate", map[string]interface{}{"branchId": branchID})
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.NotEmpty(t, body["conversationId"])

	output := body["simulationOutput"].(map[string]interface{})
	assert.Len(t, output["questions"], 5)
	assert.NotEmpty(t, output["summary"])

	messages := body["messages"].([]interface{})
	assert.Len(t, messages, 5)
}

func TestSimulateUnknownBranch(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/simulate", map[string]interface{}{"branchId": "br_missing"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCompareRequiresTwoSimulatedBranches(t *testing.T) {
	ts := newTestServer(t)

	decisionID := ts.createDecision(t, "Pick a city")
	first := ts.createBranch(t, decisionID, "Lisbon")
	ts.createBranch(t, decisionID, "Oslo")
	ts.simulate(t, first)

	rec := ts.do(t, http.MethodGet, "/decisions/"+decisionID+"/comparison", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "At least 2 branches must be simulated")
}

func TestCompareNamesBothBranches(t *testing.T) {
	ts := newTestServer(t)

	decisionID := ts.createDecision(t, "Pick a city")
	first := ts.createBranch(t, decisionID, "Lisbon")
	second := ts.createBranch(t, decisionID, "Oslo")
	ts.simulate(t, first)
	ts.simulate(t, second)

	rec := ts.do(t, http.MethodGet, "/decisions/"+decisionID+"/comparison", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.NotEmpty(t, body["comparisonId"])

	diff := body["generatedDiff"].(map[string]interface{})
	tradeoffs := fmt.Sprintf("%v", diff["tradeoffs"])
	assert.Contains(t, tradeoffs, "Lisbon")
	assert.Contains(t, tradeoffs, "Oslo")
	assert.Len(t, body["branches"], 2)
}

func TestCommitFlow(t *testing.T) {
	ts := newTestServer(t)

	decisionID := ts.createDecision(t, "Adopt a dog")
	branchID := ts.createBranch(t, decisionID, "Adopt")

	rec := ts.do(t, http.MethodPost, "/decisions/"+decisionID+"/commit", map[string]interface{}{
		"finalBranchId":  branchID,
		"postConfidence": 5,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "committed", body["status"])
	assert.Equal(t, float64(1), body["confidenceDelta"])

	// A committed decision cannot be finalized again.
	again := ts.do(t, http.MethodPost, "/decisions/"+decisionID+"/commit", map[string]interface{}{
		"finalBranchId":  branchID,
		"postConfidence": 2,
	})
	assert.Equal(t, http.StatusBadRequest, again.Code)
	assert.Contains(t, again.Body.String(), "already been finalized")
}

func TestCommitForeignBranch(t *testing.T) {
	ts := newTestServer(t)

	decisionID := ts.createDecision(t, "Adopt a dog")
	otherID := ts.createDecision(t, "Adopt a cat")
	foreignBranch := ts.createBranch(t, otherID, "Adopt")

	rec := ts.do(t, http.MethodPost, "/decisions/"+decisionID+"/commit", map[string]interface{}{
		"finalBranchId":  foreignBranch,
		"postConfidence": 4,
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCommitConfidenceOutOfRange(t *testing.T) {
	ts := newTestServer(t)

	decisionID := ts.createDecision(t, "Adopt a dog")
	branchID := ts.createBranch(t, decisionID, "Adopt")

	rec := ts.do(t, http.MethodPost, "/decisions/"+decisionID+"/commit", map[string]interface{}{
		"finalBranchId":  branchID,
		"postConfidence": 9,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestResolveSpawnsSubDecision(t *testing.T) {
	ts := newTestServer(t)

	decisionID := ts.createDecision(t, "Start a company")
	branchID := ts.createBranch(t, decisionID, "Bootstrap")

	rec := ts.do(t, http.MethodPost, "/decisions/"+decisionID+"/resolve", map[string]interface{}{
		"finalBranchId":     branchID,
		"postConfidence":    4,
		"createSubDecision": true,
		"subDecisionTitle":  "Hire first engineer",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "resolved", body["status"])

	sub := body["subDecision"].(map[string]interface{})
	assert.Equal(t, "Hire first engineer", sub["title"])

	tree := decodeBody(t, ts.do(t, http.MethodGet, "/decisions/tree", nil))
	assert.Equal(t, float64(2), tree["maxDepth"])
}

func TestTreeEmpty(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/decisions/tree", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, float64(0), body["maxDepth"])
	assert.Empty(t, body["nodes"])
}

func TestGroupDecisions(t *testing.T) {
	ts := newTestServer(t)

	first := ts.createDecision(t, "Decision one")
	second := ts.createDecision(t, "Decision two")

	rec := ts.do(t, http.MethodPost, "/decisions/group", map[string]interface{}{
		"decisionIds": []string{first, second},
		"groupName":   "Career moves",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, decodeBody(t, rec)["groupId"])

	groups := decodeBody(t, ts.do(t, http.MethodGet, "/decisions/groups", nil))
	assert.Equal(t, float64(1), groups["count"])
}

func TestGroupRejectsUnknownDecision(t *testing.T) {
	ts := newTestServer(t)

	first := ts.createDecision(t, "Decision one")

	rec := ts.do(t, http.MethodPost, "/decisions/group", map[string]interface{}{
		"decisionIds": []string{first, "dec_missing"},
		"groupName":   "Broken",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGenerateBranches(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/generate-branches", map[string]interface{}{
		"decisionTitle": "Accept the Google offer or stay?",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	branches := decodeBody(t, rec)["branches"].([]interface{})
	require.Len(t, branches, 2)
	for _, raw := range branches {
		branch := raw.(map[string]interface{})
		assert.True(t, strings.HasPrefix(branch["branchId"].(string), "ai_"))
		assert.NotEmpty(t, branch["name"])
	}
}

func TestGenerateBranchesFallback(t *testing.T) {
	ts := newTestServer(t)
	ts.provider.SetAvailable(false)

	rec := ts.do(t, http.MethodPost, "/generate-branches", map[string]interface{}{
		"decisionTitle": "Should I take the new job at Google?",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	branches := decodeBody(t, rec)["branches"].([]interface{})
	require.Len(t, branches, 2)

	first := branches[0].(map[string]interface{})
	assert.True(t, strings.HasPrefix(first["branchId"].(string), "fallback_"))
	assert.Contains(t, first["name"], "Google")
}

func TestGenerateBranchesMissingTitle(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/generate-branches", map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPathForwardWrapped(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/generate-path-forward", map[string]interface{}{
		"originalDecision": "Start a company",
		"chosenPath":       "Bootstrap",
		"pathDescription":  "Grow slowly without outside funding",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)

	pathForward := body["pathForward"].(map[string]interface{})
	assert.NotEmpty(t, pathForward["actionPlan"])
	assert.NotEmpty(t, pathForward["nextSteps"])
}

func TestFollowUpSimulationWrapped(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/generate-followup-simulation", map[string]interface{}{
		"originalDecision":    "Start a company",
		"followUpName":        "Hire first engineer",
		"followUpDescription": "Bring on a founding engineer to share the build",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)

	simulation := body["simulation"].(map[string]interface{})
	assert.NotEmpty(t, simulation["actionPlan"])
	assert.NotEmpty(t, simulation["timeline"])
	assert.NotEmpty(t, simulation["resources"])
}

func TestFollowUpSimulationRequiresName(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/generate-followup-simulation", map[string]interface{}{
		"originalDecision": "Start a company",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestClarificationCheckFallsBackConservatively(t *testing.T) {
	ts := newTestServer(t)
	ts.provider.SetAvailable(false)

	rec := ts.do(t, http.MethodPost, "/check-clarification-needed", map[string]interface{}{
		"decisionTitle": "Move",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["needsClarification"])
}

func TestDecisionSummary(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/generate-decision-summary", map[string]interface{}{
		"decisionTitle": "Move abroad",
		"userResponses": []map[string]string{
			{"question": "Why now?", "answer": "New role opened up"},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.NotEmpty(t, body["summary"])
	assert.NotEmpty(t, body["enhancedDescription"])
}

func TestDecisionSummaryRequiresResponses(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/generate-decision-summary", map[string]interface{}{
		"decisionTitle": "Move abroad",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFollowUpDecisions(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/generate-followup-decisions", map[string]interface{}{
		"originalDecision": "Change careers",
		"chosenPath":       "Go back to school",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.NotEmpty(t, body["storyline"])
	assert.NotEmpty(t, body["followUpDecisions"])
}

func TestIdentityFallbackWithoutHeader(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/decisions", nil)
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(0), decodeBody(t, rec)["count"])
}

func TestUsersAreIsolated(t *testing.T) {
	ts := newTestServer(t)

	ts.createDecision(t, "Mine")

	req := httptest.NewRequest(http.MethodGet, "/decisions", nil)
	req.Header.Set("x-user-id", "someone-else")
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(0), decodeBody(t, rec)["count"])
}

func TestInvalidJSONBody(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/decisions", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-user-id", "user-test")
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid JSON body")
}

func TestStorageFailureMapsTo500(t *testing.T) {
	ts := newTestServer(t)
	ts.repo.SetError(fmt.Errorf("connection reset"))

	rec := ts.do(t, http.MethodGet, "/decisions", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Internal server error")
}
