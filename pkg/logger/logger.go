package logger

import "log/slog"

var def *slog.Logger

// Init настраивает slog в зависимости от среды
func Init(cfg Config) {
	if cfg.Env == "" {
		cfg.Env = DetectEnv()
	}
	if cfg.Service == "" {
		cfg.Service = "presence"
	}
	cfg.InstanceID = ensureInstanceID(cfg.InstanceID)

	if cfg.Backend == "" {
		if cfg.Env == EnvDev {
			cfg.Backend = BackendStd
		} else {
			cfg.Backend = BackendZap
		}
	}

	var h slog.Handler
	switch cfg.Backend {
	case BackendZap:
		h = newZapHandler(cfg)
	default:
		h = newStdHandler(cfg)
	}

	h = h.WithAttrs(commonAttr(cfg))

	base := slog.New(h)
	slog.SetDefault(base)
	def = base
}

func L() *slog.Logger {
	if def != nil {
		return def
	}

	Init(Config{})
	return def
}

// Component returns the default logger tagged with component=name.
func Component(name string) *slog.Logger {
	return L().With(slog.String("component", name))
}
