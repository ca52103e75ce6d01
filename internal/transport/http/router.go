package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	middlewareChi "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tonsky/tonsky.me/internal/transport/http/middleware"
)

// NewRouter serves the local diagnostics endpoints. A nil gatherer disables
// /metrics.
func NewRouter(h *Handler, gatherer prometheus.Gatherer, log *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middlewareChi.RequestID)
	r.Use(middlewareChi.RealIP)
	r.Use(middleware.WithRequestLogger(log))
	r.Use(middleware.RequestLogger)
	r.Use(middlewareChi.Recoverer)

	r.Get("/healthz", h.Healthz)
	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Group(func(qr chi.Router) {
		qr.Use(middlewareChi.Timeout(5 * time.Second))
		qr.Get("/status", h.Status)
		qr.Get("/roster", h.Roster)
		qr.Get("/cursors", h.Cursors)
	})

	return r
}
