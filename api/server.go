/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. RealIP:     Client address from X-Forwarded-For
  3. Logger:     logrus request logging (middleware.go)
  4. Recoverer:  Panic recovery (500 instead of crash)
  5. Metrics:    Prometheus request counters (metrics.go), when enabled
  6. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/providers/*        Providers (社会福祉法人 etc.)
  /api/facilities/*       Facilities, their positions, staff, wage tables,
                          career-path requirements I-III
  /api/positions/*        Single positions, their wage table and requirement I
  /api/staff/*            Staff records, evaluations, promotions and checks
  /api/training-plans/*   Delivered training sessions
  /api/initiatives        Workplace-environment catalog
  /api/plans/*            Treatment-improvement plans
  /api/evaluate           Stateless tier + amount evaluation
  /api/scenarios/*        Demo scenarios
  /metrics                Prometheus (path configurable)

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/carepath: Server startup
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// RouterOptions are the deployment-specific router settings.
type RouterOptions struct {
	AllowedOrigins []string
	// MetricsPath mounts the Prometheus handler; empty disables it.
	MetricsPath string
}

// DefaultAllowedOrigins are the local frontend dev servers.
var DefaultAllowedOrigins = []string{"http://localhost:5173", "http://localhost:8080"}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, opts RouterOptions) *chi.Mux {
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = DefaultAllowedOrigins
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(h.log))
	r.Use(middleware.Recoverer)
	if h.Metrics != nil {
		r.Use(h.Metrics.Instrument)
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
	}))

	if h.Metrics != nil && opts.MetricsPath != "" {
		r.Method(http.MethodGet, opts.MetricsPath, h.Metrics.Handler())
	}

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health)

		r.Route("/providers", func(r chi.Router) {
			r.Get("/", h.ListProviders)
			r.Post("/", h.CreateProvider)
			r.Get("/{id}", h.GetProvider)
			r.Get("/{id}/facilities", h.ListProviderFacilities)
		})

		r.Route("/facilities", func(r chi.Router) {
			r.Get("/", h.ListFacilities)
			r.Post("/", h.CreateFacility)
			r.Get("/{id}", h.GetFacility)
			r.Get("/{id}/positions", h.ListPositions)
			r.Post("/{id}/positions", h.CreatePosition)
			r.Get("/{id}/staff", h.ListStaff)
			r.Post("/{id}/staff", h.CreateStaff)
			r.Get("/{id}/training-plans", h.ListTrainingPlans)
			r.Post("/{id}/training-plans", h.CreateTrainingPlan)
			r.Get("/{id}/requirements", h.GetRequirements)
			r.Get("/{id}/requirement-one", h.ListRequirementOne)
			r.Get("/{id}/salary-increase-system", h.GetSalaryIncreaseSystem)
			r.Put("/{id}/salary-increase-system", h.PutSalaryIncreaseSystem)
			r.Get("/{id}/wage-tables", h.GetWageGrid)
			r.Get("/{id}/wage-tables/suggestions", h.ListWageSuggestions)
			r.Post("/{id}/wage-tables/suggestions", h.SaveWageSuggestions)
			r.Get("/{id}/wage-tables/export", h.ExportWageGrid)
		})

		r.Route("/positions", func(r chi.Router) {
			r.Get("/{id}", h.GetPosition)
			r.Get("/{id}/wage-table", h.GetWageTable)
			r.Put("/{id}/wage-table", h.PutWageTable)
			r.Get("/{id}/requirement-one", h.GetRequirementOne)
			r.Put("/{id}/requirement-one", h.PutRequirementOne)
		})

		r.Route("/staff", func(r chi.Router) {
			r.Get("/{id}", h.GetStaff)
			r.Put("/{id}", h.UpdateStaff)
			r.Get("/{id}/promotion-check", h.CheckPromotion)
			r.Get("/{id}/evaluations", h.ListEvaluations)
			r.Post("/{id}/evaluations", h.CreateEvaluation)
			r.Get("/{id}/promotions", h.ListPromotions)
			r.Post("/{id}/promotions", h.RecordPromotion)
		})

		r.Route("/training-plans", func(r chi.Router) {
			r.Get("/{id}/records", h.ListTrainingRecords)
			r.Post("/{id}/records", h.CreateTrainingRecord)
		})

		r.Post("/promotion-criteria", h.SavePromotionCriteria)
		r.Get("/initiatives", h.ListInitiatives)
		r.Post("/evaluate", h.Evaluate)

		r.Route("/plans", func(r chi.Router) {
			r.Get("/", h.ListPlans)
			r.Post("/", h.CreatePlan)
			r.Get("/{id}", h.GetPlan)
			r.Put("/{id}", h.UpdatePlan)
			r.Post("/{id}/reevaluate", h.ReevaluatePlan)
			r.Post("/{id}/transition", h.TransitionPlan)
		})

		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.Post("/load", h.LoadScenario)
			r.Post("/reset", h.ResetDatabase)
		})
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(`<!DOCTYPE html>
<html>
<head><title>carepath</title></head>
<body style="font-family: system-ui; max-width: 800px; margin: 50px auto; padding: 20px;">
<h1>carepath API</h1>
<p>キャリアパス・賃金テーブル・処遇改善加算の管理 API</p>
<h2>API Endpoints</h2>
<ul>
<li><a href="/api/providers">/api/providers</a> - List providers</li>
<li><a href="/api/facilities">/api/facilities</a> - List facilities</li>
<li><a href="/api/initiatives">/api/initiatives</a> - Workplace initiative catalog</li>
<li><a href="/api/plans">/api/plans</a> - Improvement plans</li>
<li><a href="/api/scenarios">/api/scenarios</a> - List scenarios</li>
</ul>
</body>
</html>`))
	})

	return r
}
