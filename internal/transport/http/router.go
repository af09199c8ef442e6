// Package httptransport assembles the public HTTP surface: middleware stack,
// operational endpoints, and module handlers.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"vaxtrack/internal/platform/health"
	"vaxtrack/pkg/platform/middleware/auth"
	"vaxtrack/pkg/platform/middleware/request"
	"vaxtrack/pkg/platform/middleware/requesttime"
	"vaxtrack/pkg/platform/validation"
)

// RequestTimeout bounds every request handled by the router.
const RequestTimeout = 30 * time.Second

// Registrar is implemented by every module handler.
type Registrar interface {
	Register(r chi.Router)
}

// Dependencies lists what the router mounts. Public handlers are served
// without a token; Protected handlers sit behind bearer authentication.
type Dependencies struct {
	Logger    *slog.Logger
	Verifier  auth.Verifier
	Health    *health.Handler
	Latency   *request.Metrics
	Public    []Registrar
	Protected []Registrar
}

// NewRouter wires all endpoints with the shared middleware stack.
func NewRouter(deps Dependencies) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(request.Recovery(logger))
	r.Use(request.RequestID)
	r.Use(request.ClientIP)
	r.Use(requesttime.Middleware)
	r.Use(request.Logger(logger))
	r.Use(request.LatencyMiddleware(deps.Latency))
	r.Use(request.Timeout(RequestTimeout))
	r.Use(request.BodyLimit(validation.MaxBodySize))
	r.Use(request.ContentTypeJSON)

	if deps.Health != nil {
		deps.Health.Register(r)
	}
	r.Handle("/metrics", promhttp.Handler())

	for _, h := range deps.Public {
		h.Register(r)
	}

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(deps.Verifier, logger))
		for _, h := range deps.Protected {
			h.Register(r)
		}
	})

	return r
}
