package logger_test

import (
	"log/slog"
	"strings"
	"testing"

	"github.com/tonsky/tonsky.me/pkg/logger"
)

func TestInit_DevStd_TextOutput(t *testing.T) {
	cfg := logger.Config{
		Service:   "demo",
		Version:   "v0.0.1",
		Env:       logger.EnvDev,
		Backend:   logger.BackendStd,
		Level:     slog.LevelDebug,
		AddSource: true,
	}

	out := captureStdOut(func() {
		logger.Init(cfg)
		logger.Component("roster").Info("peer inserted")
	})

	if strings.HasPrefix(strings.TrimSpace(out), "{") {
		t.Fatalf("expected text output in dev/std, got JSON: %s", out)
	}
	if !strings.Contains(out, "peer inserted") {
		t.Fatalf("message missing: %s", out)
	}
	if !strings.Contains(out, "service=demo") {
		t.Fatalf("service attr missing: %s", out)
	}
	if !strings.Contains(out, "env=dev") {
		t.Fatalf("env attr missing: %s", out)
	}
	if !strings.Contains(out, "component=roster") {
		t.Fatalf("component attr missing: %s", out)
	}
}

func TestInit_SessionAttrs(t *testing.T) {
	out := captureStdOut(func() {
		logger.Init(logger.Config{
			Service: "demo",
			Env:     logger.EnvDev,
			Backend: logger.BackendStd,
			Session: logger.Session{PeerID: "p-1", Handle: 4242, Page: "https://tonsky.me/"},
		})
		logger.L().Info("joined")
	})

	for _, want := range []string{"session.peer=p-1", "session.handle=4242", "session.page=https://tonsky.me/"} {
		if !strings.Contains(out, want) {
			t.Fatalf("%s missing: %s", want, out)
		}
	}
	if strings.Contains(out, "version=") {
		t.Fatalf("empty version should be omitted: %s", out)
	}
}
