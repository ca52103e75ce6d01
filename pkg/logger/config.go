package logger

import "log/slog"

type Backend string

const (
	BackendStd Backend = "std" // text in dev
	BackendZap Backend = "zap" // slog-zap JSON in stage/prod
)

type Config struct {
	// Метаданные для логгера
	Service    string
	Version    string
	InstanceID string

	// Session is attached to every record when PeerID is set.
	Session Session

	Level   slog.Level
	Env     Env
	Backend Backend // default: zap for stage/prod, std for dev
	Debug   bool

	// Zap sampling
	SampleInitial    int
	SampleThereafter int

	AddSource bool
}

// Session identifies the local participant of one page session.
type Session struct {
	PeerID string
	Handle int64
	Page   string
}
