// Package router wires every HTTP endpoint onto the chi router.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dosewise/dosewise-platform/internal/http/handlers"
	httpmiddleware "github.com/dosewise/dosewise-platform/internal/http/middleware"
	"github.com/dosewise/dosewise-platform/internal/meds"
	"github.com/dosewise/dosewise-platform/internal/routine"
	"github.com/dosewise/dosewise-platform/pkg/logging"
)

// Config holds router configuration.
type Config struct {
	Logger              *logging.Logger
	MedsHandler         *meds.Handler
	RoutineHandler      *routine.Handler
	ScheduleHandler     *handlers.ScheduleHandler
	InteractionsHandler *handlers.InteractionsHandler
	JobStatusHandler    *handlers.JobStatusHandler
	MetricsHandler      http.Handler
	AdminAuthSecret     string
	CORSAllowedOrigins  []string
}

// New creates a chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", handlers.Health)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	if cfg.InteractionsHandler != nil {
		r.With(httpmiddleware.RateLimit(10, 20)).Post("/interactions/check", cfg.InteractionsHandler.Check)
	}

	r.Route("/patients/{patientID}", func(patient chi.Router) {
		if cfg.MedsHandler != nil {
			patient.Route("/meds", func(r chi.Router) {
				r.Get("/", cfg.MedsHandler.List)
				r.Post("/", cfg.MedsHandler.Create)
				r.Get("/{medID}", cfg.MedsHandler.Get)
				r.Put("/{medID}", cfg.MedsHandler.Update)
				r.Delete("/{medID}", cfg.MedsHandler.Archive)
			})
		}
		if cfg.RoutineHandler != nil {
			patient.Get("/routine", cfg.RoutineHandler.Get)
			patient.Put("/routine", cfg.RoutineHandler.Put)
		}
		if cfg.ScheduleHandler != nil {
			patient.Get("/schedule", cfg.ScheduleHandler.Get)
		}
	})

	if cfg.JobStatusHandler != nil {
		r.Group(func(admin chi.Router) {
			admin.Use(httpmiddleware.AdminJWT(cfg.AdminAuthSecret))
			admin.Get("/admin/jobs/{jobID}", cfg.JobStatusHandler.Get)
		})
	}

	return r
}
