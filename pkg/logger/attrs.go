package logger

import (
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
)

// ensureInstanceID falls back to host plus a short random suffix so that two
// clients on one machine stay distinguishable in aggregated logs.
func ensureInstanceID(v string) string {
	if v != "" {
		return v
	}

	hn, _ := os.Hostname()
	return hn + "-" + uuid.New().String()[:8]
}

func commonAttr(cfg Config) []slog.Attr {
	attrs := []slog.Attr{
		slog.String("service", cfg.Service),
		slog.String("env", string(cfg.Env)),
		slog.String("instance_id", cfg.InstanceID),
		slog.Time("started_at", time.Now()),
	}
	if cfg.Version != "" {
		attrs = append(attrs, slog.String("version", cfg.Version))
	}
	if cfg.Session.PeerID != "" {
		attrs = append(attrs, slog.Group("session",
			slog.String("peer", cfg.Session.PeerID),
			slog.Int64("handle", cfg.Session.Handle),
			slog.String("page", cfg.Session.Page),
		))
	}
	return attrs
}
