package router

import (
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Prashu2024/form-builder-backend/internal/auth"
	"github.com/Prashu2024/form-builder-backend/internal/handler"
	"github.com/Prashu2024/form-builder-backend/internal/metrics"
	mw "github.com/Prashu2024/form-builder-backend/internal/middleware"
)

type Handlers struct {
	Schema     *handler.SchemaHandler
	Submission *handler.SubmissionHandler
	Admin      *handler.AdminHandler
	Auth       *handler.AuthHandler
	Health     *handler.HealthHandler
}

type Options struct {
	JWTSecret  string
	CORSOrigin string
	Log        *zap.Logger
	Metrics    *metrics.Metrics
	Gatherer   prometheus.Gatherer
}

func New(opts Options, h Handlers) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(mw.Logger(opts.Log))
	r.Use(mw.Metrics(opts.Metrics))
	// Inside Logger and Metrics so a recovered panic is logged and counted
	// as the 500 it turns into.
	r.Use(mw.Recovery(opts.Log))
	r.Use(mw.CORS(opts.CORSOrigin))

	r.Get("/health", h.Health.Health)
	r.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		// Public routes
		r.Get("/form-schema", h.Schema.Get)
		r.Get("/submissions", h.Submission.List)
		r.Post("/submissions", h.Submission.Create)

		r.Route("/admin", func(r chi.Router) {
			r.Post("/login", h.Auth.Login)

			// Protected routes
			r.Group(func(r chi.Router) {
				r.Use(auth.Middleware(opts.JWTSecret))
				r.Get("/submissions", h.Admin.List)
				r.Get("/submissions/{id}", h.Admin.Get)
			})
		})
	})

	return r
}
