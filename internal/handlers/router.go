package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"branchpoint-backend/internal/middleware"
	"branchpoint-backend/pkg/observability"
)

// Router assembles the full HTTP surface: stored-decision routes,
// stateless generation routes, health, and metrics.
type Router struct {
	decisions *DecisionHandler
	generate  *GenerateHandler
	metrics   *observability.Metrics
	logger    *zap.Logger
}

// NewRouter wires the router. The same handler tree serves both the
// standalone server and the Lambda entrypoint.
func NewRouter(decisions *DecisionHandler, generate *GenerateHandler, metrics *observability.Metrics, logger *zap.Logger) *Router {
	return &Router{
		decisions: decisions,
		generate:  generate,
		metrics:   metrics,
		logger:    logger,
	}
}

// Handler builds the chi mux with the middleware chain applied.
func (rt *Router) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logger(rt.logger))
	r.Use(rt.metrics.Middleware)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID", "x-user-id"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Use(middleware.Identity)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Method(http.MethodGet, "/metrics", rt.metrics.Handler())

	r.Route("/decisions", func(r chi.Router) {
		r.Post("/", rt.decisions.CreateDecision)
		r.Get("/", rt.decisions.ListDecisions)

		// Static routes must be registered above the {decisionID} subtree
		// so chi matches them first.
		r.Get("/tree", rt.decisions.Tree)
		r.Get("/groups", rt.decisions.ListGroups)
		r.Post("/group", rt.decisions.GroupDecisions)

		r.Route("/{decisionID}", func(r chi.Router) {
			r.Get("/", rt.decisions.GetDecision)
			r.Post("/branches", rt.decisions.CreateBranch)
			r.Get("/comparison", rt.decisions.Compare)
			r.Post("/commit", rt.decisions.Commit)
			r.Post("/resolve", rt.decisions.Resolve)
		})
	})

	r.Post("/simulate", rt.decisions.Simulate)

	r.Post("/generate-branches", rt.generate.GenerateBranches)
	r.Post("/generate-followup-decisions", rt.generate.FollowUpDecisions)
	r.Post("/generate-specific-followup-decisions", rt.generate.SpecificFollowUps)
	r.Post("/generate-followup-simulation", rt.generate.FollowUpSimulation)
	r.Post("/generate-path-forward", rt.generate.PathForward)
	r.Post("/check-clarification-needed", rt.generate.CheckClarification)
	r.Post("/generate-clarifying-questions", rt.generate.ClarifyingQuestions)
	r.Post("/generate-decision-summary", rt.generate.DecisionSummary)

	return r
}
