package app

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	bookinghttp "github.com/oohdesk/oohdesk/internal/booking/http"
	"github.com/oohdesk/oohdesk/internal/observability"
	"github.com/oohdesk/oohdesk/internal/platform/httpx"
	"github.com/oohdesk/oohdesk/jobs"
)

// Pinger checks a backing service.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

// Ping implements Pinger.
func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	BookingHandler *bookinghttp.Handler
	JobHandler     *jobs.Handler
	Metrics        *observability.Metrics
	Readiness      map[string]Pinger
}

// NewRouter constructs the chi.Router with the API defaults.
func NewRouter(params RouterParams) http.Handler {
	logger := params.Logger
	if logger == nil {
		logger = slog.Default()
	}
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}
	r.Use(requestLogger(logger))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		checks := make(map[string]string, len(params.Readiness))
		status := http.StatusOK
		for name, p := range params.Readiness {
			if p == nil {
				continue
			}
			if err := p.Ping(r.Context()); err != nil {
				logger.Warn("readiness check", slog.String("dependency", name), slog.Any("error", err))
				checks[name] = "down"
				status = http.StatusServiceUnavailable
				continue
			}
			checks[name] = "ok"
		}
		httpx.JSON(w, status, checks)
	})

	if params.Metrics != nil {
		r.Handle("/metrics", params.Metrics.Handler())
	}
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.BookingHandler != nil {
		r.Route("/api/v1", params.BookingHandler.MountRoutes)
	}
	return r
}
