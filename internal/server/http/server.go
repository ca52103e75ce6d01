package http

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"
)

type Config struct {
	Addr            string        // "127.0.0.1:8081"
	ReadTimeout     time.Duration // 5s
	WriteTimeout    time.Duration // 10s
	IdleTimeout     time.Duration // 60s
	ShutdownTimeout time.Duration // 5s
}

type Server struct {
	cfg Config
	srv *http.Server
	log *slog.Logger
}

func New(cfg Config, handler http.Handler, log *slog.Logger) *Server {
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = 5 * time.Second
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = 60 * time.Second
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 5 * time.Second
	}
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		cfg: cfg,
		log: log,
		srv: &http.Server{
			Addr:         cfg.Addr,
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		},
	}
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	lis, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, lis)
}

func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	errCh := make(chan error, 1)

	go func() {
		s.log.Info("http listen", "addr", lis.Addr().String())
		if err := s.srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		return s.srv.Shutdown(shCtx)
	case err := <-errCh:
		return err
	}
}
