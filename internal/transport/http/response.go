package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/tonsky/tonsky.me/internal/domain"
	"github.com/tonsky/tonsky.me/internal/transport/http/middleware"
)

type envelope map[string]any

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		middleware.L(ctx).Error("write json response failed", "err", err)
	}
}

func ok(ctx context.Context, w http.ResponseWriter, data any) {
	writeJSON(ctx, w, http.StatusOK, envelope{"data": data})
}

func fail(ctx context.Context, w http.ResponseWriter, err error) {
	status := statusFor(err)
	middleware.L(ctx).Warn("diagnostics query failed", "status", status, "err", err)
	writeJSON(ctx, w, status, envelope{"error": envelope{"message": err.Error()}})
}

// statusFor maps query errors: a stopped loop or an abandoned request means the
// page is going away.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrClosed):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
