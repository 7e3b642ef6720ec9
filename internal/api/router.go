package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/nikhilbhutani/casebrief/internal/api/handlers"
	"github.com/nikhilbhutani/casebrief/internal/api/middleware"
	"github.com/nikhilbhutani/casebrief/internal/auth"
	"github.com/nikhilbhutani/casebrief/internal/brief"
	"github.com/nikhilbhutani/casebrief/internal/config"
	"github.com/nikhilbhutani/casebrief/internal/document"
	"github.com/nikhilbhutani/casebrief/internal/llm"
	"github.com/nikhilbhutani/casebrief/internal/queue"
)

// Services are built by the caller so the router stays free of
// provider and storage setup.
type Services struct {
	Briefs    *brief.Service
	Documents *document.Service
	Gateway   llm.Gateway
	Jobs      handlers.Enqueuer
	Tracker   *queue.Tracker
	Resolver  *auth.Resolver
	// BreakerState reports the summarizer circuit breaker, if any.
	BreakerState func() string
}

type Router struct {
	mux   *chi.Mux
	db    *pgxpool.Pool
	redis *redis.Client
	cfg   *config.Config
	svc   Services
	rl    *middleware.RateLimiter
}

func NewRouter(db *pgxpool.Pool, rdb *redis.Client, cfg *config.Config, svc Services) *Router {
	if svc.Resolver == nil {
		svc.Resolver = auth.NewResolver(cfg.Auth.JWTSecret, cfg.Auth.PremiumTokens)
	}
	return &Router{
		mux:   chi.NewRouter(),
		db:    db,
		redis: rdb,
		cfg:   cfg,
		svc:   svc,
		rl:    middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst),
	}
}

func (rt *Router) Setup() http.Handler {
	r := rt.mux

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(rt.cfg.Server.CORSOrigins))
	r.Use(rt.rl.Limit)

	// Health endpoints (no auth)
	health := handlers.NewHealthHandler(rt.db, rt.redis)
	if rt.svc.BreakerState != nil {
		health.AddStatus("summarizer", rt.svc.BreakerState)
	}
	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(rt.svc.Resolver.Middleware)

		modelsH := handlers.NewModelsHandler(rt.svc.Gateway, rt.svc.BreakerState)
		r.Get("/models", modelsH.Models)

		sumH := handlers.NewSummarizeHandler(rt.svc.Briefs)
		r.Post("/summarize", sumH.Summarize)

		caseH := handlers.NewCaseHandler(rt.svc.Briefs, rt.svc.Documents, rt.svc.Jobs, rt.svc.Tracker)
		r.Route("/cases", func(r chi.Router) {
			r.Post("/", caseH.Create)
			r.Get("/", caseH.List)
			r.Post("/jobs", caseH.Enqueue)
			r.Get("/jobs/{id}", caseH.JobStatus)
			r.Get("/{id}", caseH.Get)
			r.Delete("/{id}", caseH.Delete)
			r.Post("/{id}/ask", caseH.Ask)
		})
	})

	return r
}

// Close stops background work started by the router.
func (rt *Router) Close() {
	rt.rl.Stop()
}
