package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/kova/internal/http/expense"
	"github.com/MrJamesThe3rd/kova/internal/http/middleware"
	"github.com/MrJamesThe3rd/kova/internal/http/payment"
	"github.com/MrJamesThe3rd/kova/internal/http/project"
	"github.com/MrJamesThe3rd/kova/internal/http/public"
	"github.com/MrJamesThe3rd/kova/internal/http/respond"
	"github.com/MrJamesThe3rd/kova/internal/http/template"
)

type Options struct {
	Logger         *zap.Logger
	Tokens         middleware.TokenParser
	AllowedOrigins []string
	// Limiter guards the public share route. Nil disables limiting.
	Limiter middleware.Allower
	// Ping reports whether the database is reachable. Nil skips the check.
	Ping func(ctx context.Context) error
}

type Handlers struct {
	Projects  *project.Handler
	Expenses  *expense.Handler
	Payments  *payment.Handler
	Templates *template.Handler
	Public    *public.Handler
}

func New(opts Options, h Handlers) http.Handler {
	router := chi.NewRouter()

	router.Use(chimw.RequestID)
	router.Use(chimw.RealIP)
	router.Use(middleware.RequestLogger(opts.Logger))
	router.Use(chimw.Recoverer)
	router.Use(middleware.Metrics)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	router.Get("/healthz", healthz(opts))
	router.Handle("/metrics", promhttp.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/public/projects", func(r chi.Router) {
			if opts.Limiter != nil {
				r.Use(middleware.RateLimit(opts.Limiter, opts.Logger))
			}

			h.Public.Routes(r)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(opts.Tokens, opts.Logger))

			r.Route("/templates", h.Templates.Routes)

			r.Route("/projects", func(r chi.Router) {
				h.Projects.Routes(r)
				r.Route("/{id}/expenses", h.Expenses.Routes)
			})

			r.Route("/milestones/{id}/payments", h.Payments.Routes)
		})
	})

	return router
}

func healthz(opts Options) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if opts.Ping != nil {
			if err := opts.Ping(r.Context()); err != nil {
				opts.Logger.Warn("health check failed", zap.Error(err))
				respond.JSON(w, opts.Logger, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})

				return
			}
		}

		respond.JSON(w, opts.Logger, http.StatusOK, map[string]string{"status": "ok"})
	}
}
