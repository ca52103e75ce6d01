package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/tonsky/tonsky.me/config"
	"github.com/tonsky/tonsky.me/internal/cursor"
	"github.com/tonsky/tonsky.me/internal/geo"
	"github.com/tonsky/tonsky.me/internal/loop"
	"github.com/tonsky/tonsky.me/internal/metrics"
	"github.com/tonsky/tonsky.me/internal/page"
	"github.com/tonsky/tonsky.me/internal/relay"
	"github.com/tonsky/tonsky.me/internal/room"
	"github.com/tonsky/tonsky.me/internal/roster"
	serverhttp "github.com/tonsky/tonsky.me/internal/server/http"
	httpx "github.com/tonsky/tonsky.me/internal/transport/http"
	"github.com/tonsky/tonsky.me/internal/transport/ws"
	"github.com/tonsky/tonsky.me/pkg/logger"
)

func main() {
	// --- config ---
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	level, err := logger.ParseLevel(cfg.Logging.Level)
	if err != nil {
		log.Fatalf("logging.level: %v", err)
	}
	peerID := uuid.NewString()
	handle := 1000 + rand.Int64N(9000)
	logger.Init(logger.Config{
		Env:       logger.ParseEnv(cfg.Logging.Env),
		Service:   cfg.Logging.Service,
		Version:   cfg.Logging.Version,
		Backend:   logger.Backend(cfg.Logging.Backend),
		Level:     level,
		AddSource: cfg.Logging.AddSource,
		Debug:     cfg.Logging.Debug,
		Session:   logger.Session{PeerID: peerID, Handle: handle, Page: cfg.Page.URL},
	})

	slog.Info("starting presence client")

	roomID, err := room.ID(cfg.Page.URL)
	if err != nil {
		log.Fatalf("room id: %v", err)
	}

	// --- metrics ---
	var reg *prometheus.Registry
	if cfg.HTTP.Addr != "" {
		reg = prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}
	var rec metrics.Recorder = metrics.Noop{}
	if reg != nil {
		rec = metrics.New(reg)
	}

	// --- loop ---
	lp := loop.New(nil, 256, logger.Component("loop"))

	// --- collaborators ---
	var pg *page.Page
	roomClient := room.NewClient(
		ws.NewDialer(ws.Options{PingEvery: 15 * time.Second}, nil),
		room.Options{URL: cfg.Room.URL, RoomID: roomID, ReconnectDelay: cfg.Room.ReconnectDelay},
		func(p room.Presence) { pg.OnPresence(p) },
		logger.Component("room"),
	)

	var locator page.Locator
	if cfg.Geo.Enabled {
		locator = geo.NewLocator(
			geo.Options{Endpoint: cfg.Geo.Endpoint, Timeout: cfg.Geo.Timeout},
			geo.NewCache(0), logger.Component("geo"), rec)
	}

	platform, ok := cfg.Platform()
	if !ok {
		platform = ""
	}
	relayDialer := relay.WebSocket(ws.NewDialer(ws.Options{
		HandshakeTimeout: cfg.Relay.DialTimeout,
		PingEvery:        cfg.Relay.PingEvery,
	}, nil))

	pg, err = page.New(page.Options{
		PageURL:      cfg.Page.URL,
		PeerID:       peerID,
		Handle:       handle,
		Platform:     platform,
		Viewport:     cursor.Viewport{Width: cfg.Page.Width, Height: cfg.Page.Height},
		RemovalGrace: cfg.Roster.RemovalGrace,
		RenderJitter: cfg.Cursor.RenderJitter,
		Relay: relay.Options{
			URL:             cfg.Relay.URL,
			SendInterval:    cfg.Relay.SendInterval,
			ReconnectDelay:  cfg.Relay.ReconnectDelay,
			ReconnectJitter: cfg.Relay.ReconnectJitter,
			DialTimeout:     cfg.Relay.DialTimeout,
		},
	}, page.Deps{
		Loop:           lp,
		Room:           roomClient,
		RelayDialer:    relayDialer,
		Locator:        locator,
		RosterRenderer: roster.LogRenderer{Log: logger.Component("roster")},
		CursorRenderer: cursor.LogRenderer{Log: logger.Component("cursor")},
		Metrics:        rec,
		Log:            logger.L(),
	})
	if err != nil {
		log.Fatalf("page: %v", err)
	}

	// --- run ---
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loopCtx, stopLoop := context.WithCancel(context.Background())
	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		_ = lp.Run(loopCtx)
	}()

	errCh := make(chan error, 2)
	go func() {
		if err := roomClient.Run(ctx); err != nil && ctx.Err() == nil {
			errCh <- fmt.Errorf("room: %w", err)
		}
	}()

	if cfg.HTTP.Addr != "" {
		var gatherer prometheus.Gatherer
		if reg != nil {
			gatherer = reg
		}
		router := httpx.NewRouter(httpx.NewHandler(pg), gatherer, logger.Component("http"))
		srv := serverhttp.New(serverhttp.Config{Addr: cfg.HTTP.Addr}, router, logger.Component("http"))
		go func() {
			if err := srv.Run(ctx); err != nil {
				errCh <- fmt.Errorf("http: %w", err)
			}
		}()
	}

	pg.Start(ctx)
	go console(ctx, os.Stdin, pg, stop)

	select {
	case <-ctx.Done():
		slog.Info("shutdown signal")
	case err := <-errCh:
		slog.Error("fatal error", "err", err)
	}

	// --- graceful shutdown ---
	pg.Leave()
	flushCtx, cancel := context.WithTimeout(context.Background(), cfg.Roster.RemovalGrace+time.Second)
	defer cancel()
	time.Sleep(cfg.Roster.RemovalGrace)
	_ = lp.Call(flushCtx, func() {})
	stopLoop()
	<-loopDone
	slog.Info("stopped")
}

// console drives the page from stdin, one command per line:
//
//	move X Y    pointer position in viewport pixels
//	resize W H  viewport size
//	hide, show  visibility transitions
//	quit
func console(ctx context.Context, in io.Reader, pg *page.Page, quit func()) {
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		if ctx.Err() != nil {
			return
		}
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}

		switch cmd := fields[0]; cmd {
		case "move", "resize":
			a, b, err := twoInts(fields[1:])
			if err != nil {
				slog.Warn("bad command", "cmd", cmd, "err", err)
				continue
			}
			if cmd == "move" {
				pg.OnInput(a, b)
			} else {
				pg.SetViewport(cursor.Viewport{Width: a, Height: b})
			}
		case "hide":
			pg.OnVisibility(false)
		case "show":
			pg.OnVisibility(true)
		case "quit", "exit":
			quit()
			return
		default:
			slog.Warn("unknown command", "cmd", cmd)
		}
	}
}

func twoInts(args []string) (int, int, error) {
	if len(args) != 2 {
		return 0, 0, fmt.Errorf("want 2 numbers, got %d", len(args))
	}
	a, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, 0, err
	}
	b, err := strconv.Atoi(args[1])
	if err != nil {
		return 0, 0, err
	}
	return a, b, nil
}
