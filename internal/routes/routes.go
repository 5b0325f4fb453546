package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/AnshRaj112/ai-journal-backend/internal/handlers"
	"github.com/AnshRaj112/ai-journal-backend/internal/metrics"
	"github.com/AnshRaj112/ai-journal-backend/internal/middleware"
)

// Dependencies are the constructed handlers and cross-cutting collaborators.
type Dependencies struct {
	Auth    *handlers.AuthHandler
	Journal *handlers.JournalHandler
	Health  *handlers.HealthHandler

	Tokens      middleware.TokenVerifier
	AuthLimiter middleware.Limiter
	Metrics     *metrics.Metrics
	Logger      *zap.Logger

	AllowedOrigins []string
	TrustProxy     bool
	// Production enables security headers, the host check and the global limiter.
	Production    bool
	AllowedHost   string
	GlobalLimiter *middleware.IPLimiter
}

// NewRouter serves every API route under /api and mirrored at the root.
func NewRouter(deps Dependencies) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	if deps.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(chimw.Recoverer)
	if deps.Metrics != nil {
		r.Use(deps.Metrics.InstrumentHandler)
	}
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.CORS(deps.AllowedOrigins))

	if deps.Production {
		for _, mw := range middleware.ProductionSecurity(deps.AllowedHost, deps.GlobalLimiter) {
			r.Use(mw)
		}
	}

	r.Get("/health", deps.Health.Health)
	r.Get("/ready", deps.Health.Ready)
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())
	}

	r.Route("/api", func(api chi.Router) {
		mountAPI(api, deps)
	})
	r.Group(func(root chi.Router) {
		mountAPI(root, deps)
	})

	return r
}

func mountAPI(r chi.Router, deps Dependencies) {
	r.Route("/auth", func(auth chi.Router) {
		if deps.AuthLimiter != nil {
			auth.Use(middleware.RateLimit(deps.AuthLimiter, deps.Logger))
		}
		auth.Post("/signup", deps.Auth.Signup)
		auth.Post("/login", deps.Auth.Login)
	})

	r.Route("/journal", func(journal chi.Router) {
		journal.Use(middleware.Authenticate(deps.Tokens, deps.Logger))
		journal.Post("/create", deps.Journal.Create)
		journal.Get("/all", deps.Journal.List)
		journal.Put("/edit/{id}", deps.Journal.Edit)
		journal.Delete("/delete/{id}", deps.Journal.Delete)
		journal.Get("/moods", deps.Journal.Moods)
	})
}
