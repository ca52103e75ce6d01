// Package page wires the presence roster and the pointer relay of one page
// around a single event loop.
package page

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tonsky/tonsky.me/internal/cursor"
	"github.com/tonsky/tonsky.me/internal/domain"
	"github.com/tonsky/tonsky.me/internal/loop"
	"github.com/tonsky/tonsky.me/internal/metrics"
	"github.com/tonsky/tonsky.me/internal/relay"
	"github.com/tonsky/tonsky.me/internal/room"
	"github.com/tonsky/tonsky.me/internal/roster"
)

// Executor is the loop the page runs on.
type Executor interface {
	loop.Scheduler
	Call(ctx context.Context, fn func()) error
}

type Locator interface {
	Lookup(ctx context.Context) domain.Location
}

type Options struct {
	PageURL  string
	PeerID   string
	Handle   int64
	Platform domain.Platform
	Viewport cursor.Viewport

	RemovalGrace time.Duration
	RenderJitter time.Duration
	Relay        relay.Options
}

type Deps struct {
	Loop           Executor
	Room           room.Sink
	RelayDialer    relay.Dialer
	Locator        Locator
	RosterRenderer roster.Renderer
	CursorRenderer cursor.Renderer
	Metrics        metrics.Recorder
	Log            *slog.Logger
	Now            func() time.Time
}

// Page owns all per-page state. Its exported methods may be called from any
// goroutine: they post onto the loop.
type Page struct {
	loop    Executor
	log     *slog.Logger
	metrics metrics.Recorder
	locator Locator

	publisher *room.Publisher
	view      *roster.View
	tracker   *cursor.Tracker
	overlay   *cursor.Overlay
	relay     *relay.Manager
}

func New(opts Options, deps Deps) (*Page, error) {
	if deps.Loop == nil || deps.Room == nil || deps.RosterRenderer == nil {
		return nil, fmt.Errorf("page: loop, room and roster renderer are required")
	}
	log := deps.Log
	if log == nil {
		log = slog.Default()
	}
	m := metrics.OrNoop(deps.Metrics)

	p := &Page{
		loop:      deps.Loop,
		log:       log,
		metrics:   m,
		locator:   deps.Locator,
		publisher: room.NewPublisher(deps.Room, opts.PeerID, deps.Now, log.With("component", "publisher"), m),
		view:      roster.NewView(deps.Loop, deps.RosterRenderer, opts.RemovalGrace, log.With("component", "roster")),
	}

	if opts.Platform == "" || deps.RelayDialer == nil || deps.CursorRenderer == nil {
		log.Info("cursor sharing disabled", "platform", string(opts.Platform))
		return p, nil
	}

	relayOpts := opts.Relay
	url, err := relay.PageURL(opts.PageURL, relayOpts.URL, opts.Handle, opts.Platform)
	if err != nil {
		return nil, err
	}
	relayOpts.URL = url

	p.tracker = cursor.NewTracker(opts.Handle)
	p.overlay = cursor.NewOverlay(deps.Loop, deps.CursorRenderer, opts.RenderJitter, log.With("component", "cursor"))
	p.overlay.SetViewport(opts.Viewport)
	p.relay = relay.NewManager(deps.Loop, deps.RelayDialer, relayOpts, p.onRelayMessage, log.With("component", "relay"), m)
	return p, nil
}

// Start resolves the location off-loop and joins the room with it.
func (p *Page) Start(ctx context.Context) {
	go func() {
		loc := domain.UnknownLocation
		if p.locator != nil {
			loc = p.locator.Lookup(ctx)
		}
		p.loop.Post(func() {
			if err := p.publisher.Join(loc); err != nil {
				p.log.Warn("join failed", "err", err)
			}
		})
	}()
}

// OnPresence handles a room snapshot.
func (p *Page) OnPresence(pr room.Presence) {
	p.loop.Post(func() { p.applyPresence(pr) })
}

func (p *Page) applyPresence(pr room.Presence) {
	p.metrics.IncSnapshots("roster")

	local := pr.User
	if local == nil && p.publisher.Joined() {
		self := p.publisher.Local()
		local = &self
	}

	ops := p.view.Apply(roster.Snapshot(pr.Peers, local))
	var inserts, removes int
	for _, op := range ops {
		switch op.Kind {
		case roster.OpInsert:
			inserts++
		case roster.OpRemove:
			removes++
		}
	}
	p.metrics.AddRosterOps("insert", inserts)
	p.metrics.AddRosterOps("remove", removes)
	p.metrics.SetRosterSize(len(p.view.Elements()))
}

func (p *Page) onRelayMessage(data []byte) {
	entries, skipped, err := relay.DecodeSnapshot(data)
	if err != nil {
		p.log.Debug("relay message dropped", "err", err)
		return
	}
	if skipped > 0 {
		p.log.Debug("relay tuples skipped", "count", skipped)
	}

	p.metrics.IncSnapshots("cursor")
	p.overlay.Apply(p.tracker.ApplySnapshot(entries))
	p.metrics.SetLiveCursors(len(p.tracker.Live()))
}

// OnVisibility handles the page going to the foreground or background.
func (p *Page) OnVisibility(visible bool) {
	p.loop.Post(func() {
		if err := p.publisher.OnVisibility(visible); err != nil {
			p.log.Debug("visibility publish", "err", err)
		}
		if p.relay != nil {
			p.relay.SetVisible(visible)
		}
	})
}

// OnInput handles a local pointer position in viewport pixels.
func (p *Page) OnInput(px, py int) {
	p.loop.Post(func() {
		if p.relay == nil {
			return
		}
		x, y := p.overlay.Viewport().Sample(px, py)
		p.relay.Input(x, y)
	})
}

func (p *Page) SetViewport(vp cursor.Viewport) {
	p.loop.Post(func() {
		if p.overlay != nil {
			p.overlay.SetViewport(vp)
		}
	})
}

// Leave fades the roster out and drops the relay, as when the page unloads.
func (p *Page) Leave() {
	p.loop.Post(func() {
		p.view.Clear()
		if p.relay != nil {
			p.relay.Close()
			p.overlay.Clear(p.tracker.Reset())
		}
	})
}

// CursorsEnabled reports whether this platform shares pointers.
func (p *Page) CursorsEnabled() bool { return p.relay != nil }

func (p *Page) Roster(ctx context.Context) ([]domain.PeerRecord, error) {
	var out []domain.PeerRecord
	err := p.loop.Call(ctx, func() { out = p.view.Peers() })
	return out, err
}

func (p *Page) Cursors(ctx context.Context) ([]domain.CursorSample, error) {
	var out []domain.CursorSample
	if p.tracker == nil {
		return out, nil
	}
	err := p.loop.Call(ctx, func() { out = p.tracker.Live() })
	return out, err
}

// Status is a point-in-time summary for diagnostics.
type Status struct {
	PeerID       string `json:"peer_id"`
	Handle       int64  `json:"handle,omitempty"`
	Visible      bool   `json:"visible"`
	Joined       bool   `json:"joined"`
	RosterSize   int    `json:"roster_size"`
	LiveCursors  int    `json:"live_cursors"`
	RelayState   string `json:"relay_state,omitempty"`
	RelayURL     string `json:"relay_url,omitempty"`
	PendingMoves int    `json:"pending_moves,omitempty"`
}

func (p *Page) Status(ctx context.Context) (Status, error) {
	var st Status
	err := p.loop.Call(ctx, func() {
		local := p.publisher.Local()
		st = Status{
			PeerID:     local.ID,
			Visible:    local.Visible,
			Joined:     p.publisher.Joined(),
			RosterSize: len(p.view.Peers()),
		}
		if p.relay != nil {
			st.Handle = p.tracker.SelfID()
			st.LiveCursors = len(p.tracker.Live())
			st.RelayState = p.relay.State().String()
			st.RelayURL = p.relay.URL()
			st.PendingMoves = p.overlay.PendingMoves()
		}
	})
	return st, err
}
