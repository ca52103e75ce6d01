// Package relay keeps the pointer relay connection alive while the page is
// visible and streams the local pointer position to it.
package relay

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/tonsky/tonsky.me/internal/loop"
	"github.com/tonsky/tonsky.me/internal/metrics"
)

type State int

const (
	Disconnected State = iota
	Connecting
	Open
)

func (s State) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Open:
		return "open"
	default:
		return "disconnected"
	}
}

const (
	DefaultSendInterval   = time.Second
	DefaultReconnectDelay = time.Second
	DefaultDialTimeout    = 10 * time.Second
)

type Options struct {
	URL             string
	SendInterval    time.Duration
	ReconnectDelay  time.Duration
	ReconnectJitter time.Duration
	DialTimeout     time.Duration
}

func (o Options) withDefaults() Options {
	if o.SendInterval <= 0 {
		o.SendInterval = DefaultSendInterval
	}
	if o.ReconnectDelay <= 0 {
		o.ReconnectDelay = DefaultReconnectDelay
	}
	if o.DialTimeout <= 0 {
		o.DialTimeout = DefaultDialTimeout
	}
	return o
}

// Manager owns the relay connection. Every method must run on the loop that
// sched belongs to; dials and reads happen on helper goroutines that post
// their results back.
//
// Each connection attempt gets a generation number. Results from an older
// generation are stale: their transport is closed and nothing else changes.
type Manager struct {
	sched     loop.Scheduler
	dialer    Dialer
	opts      Options
	onMessage func(data []byte)
	log       *slog.Logger
	metrics   metrics.Recorder
	randN     func(n int64) int64

	state   State
	visible bool
	closed  bool
	gen     uint64

	conn           Conn
	cancelDial     context.CancelFunc
	sendTimer      loop.Timer
	reconnectTimer loop.Timer

	x, y         int
	dirty        bool
	sent         bool
	sentX, sentY int
}

// NewManager starts visible and disconnected. onMessage receives every relay
// message verbatim while the connection is open.
func NewManager(sched loop.Scheduler, dialer Dialer, opts Options, onMessage func([]byte), log *slog.Logger, m metrics.Recorder) *Manager {
	if log == nil {
		log = slog.Default()
	}
	mgr := &Manager{
		sched:     sched,
		dialer:    dialer,
		opts:      opts.withDefaults(),
		onMessage: onMessage,
		log:       log,
		metrics:   metrics.OrNoop(m),
		randN:     rand.Int64N,
		visible:   true,
	}
	mgr.metrics.SetRelayState(Disconnected.String())
	return mgr
}

// SetRand replaces the reconnect jitter source.
func (m *Manager) SetRand(fn func(n int64) int64) { m.randN = fn }

func (m *Manager) State() State { return m.state }

// URL is the relay endpoint the manager dials.
func (m *Manager) URL() string { return m.opts.URL }

// Input records the latest normalized pointer position. The first input while
// visible and idle opens the connection.
func (m *Manager) Input(x, y int) {
	if m.closed {
		return
	}
	m.x, m.y = x, y
	m.dirty = !m.sent || x != m.sentX || y != m.sentY
	if m.visible && m.state == Disconnected && m.reconnectTimer == nil {
		m.connect()
	}
}

// SetVisible(true) only records the state; the next Input reconnects.
// SetVisible(false) drops the connection and any pending reconnect.
func (m *Manager) SetVisible(v bool) {
	m.visible = v
	if v {
		return
	}
	m.stopReconnect()
	if m.state != Disconnected {
		m.log.Debug("relay hidden, closing", "state", m.state.String())
		m.gen++
		m.teardown()
		m.setState(Disconnected)
	}
}

func (m *Manager) Close() {
	if m.closed {
		return
	}
	m.closed = true
	m.gen++
	m.stopReconnect()
	m.teardown()
	m.setState(Disconnected)
}

func (m *Manager) connect() {
	m.gen++
	gen := m.gen
	m.setState(Connecting)

	ctx, cancel := context.WithTimeout(context.Background(), m.opts.DialTimeout)
	m.cancelDial = cancel
	url := m.opts.URL
	m.log.Debug("relay connecting", "url", url)

	go func() {
		conn, err := m.dialer.Dial(ctx, url)
		cancel()
		if !m.sched.Post(func() { m.onDialed(gen, conn, err) }) && conn != nil {
			_ = conn.Close()
		}
	}()
}

func (m *Manager) onDialed(gen uint64, conn Conn, err error) {
	if gen != m.gen {
		if conn != nil {
			_ = conn.Close()
		}
		return
	}
	m.cancelDial = nil

	if err != nil {
		m.log.Debug("relay dial failed", "err", err)
		m.setState(Disconnected)
		m.scheduleReconnect()
		return
	}

	m.conn = conn
	m.setState(Open)
	m.log.Info("relay connected", "url", m.opts.URL)
	m.sendTimer = m.sched.Every(m.opts.SendInterval, m.tick)
	go m.readLoop(gen, conn)
}

func (m *Manager) readLoop(gen uint64, conn Conn) {
	for {
		data, err := conn.Read()
		if err != nil {
			m.sched.Post(func() { m.onClosed(gen, err) })
			return
		}
		if !m.sched.Post(func() { m.onFrame(gen, conn, data) }) {
			_ = conn.Close()
			return
		}
	}
}

func (m *Manager) onFrame(gen uint64, conn Conn, data []byte) {
	if gen != m.gen || m.state != Open {
		_ = conn.Close()
		return
	}
	if !m.visible {
		m.SetVisible(false)
		return
	}
	if m.onMessage != nil {
		m.onMessage(data)
	}
}

func (m *Manager) onClosed(gen uint64, err error) {
	if gen != m.gen {
		return
	}
	m.log.Debug("relay closed", "err", err)
	m.teardown()
	m.setState(Disconnected)
	m.scheduleReconnect()
}

// tick is the send timer. It sends at most one sample per interval and only
// when the position changed since the last send.
func (m *Manager) tick() {
	if m.state != Open {
		return
	}
	if !m.visible {
		m.SetVisible(false)
		return
	}
	if !m.dirty {
		return
	}

	data, err := EncodeSample(m.x, m.y)
	if err != nil {
		m.log.Error("relay encode sample", "err", err)
		return
	}
	if err := m.conn.Send(data); err != nil {
		m.log.Debug("relay send failed", "err", err)
		m.gen++
		m.onClosed(m.gen, err)
		return
	}
	m.dirty = false
	m.sent, m.sentX, m.sentY = true, m.x, m.y
	m.metrics.IncSamplesSent()
}

func (m *Manager) scheduleReconnect() {
	if !m.visible || m.closed {
		return
	}
	delay := m.opts.ReconnectDelay
	if m.opts.ReconnectJitter > 0 {
		delay += time.Duration(m.randN(int64(m.opts.ReconnectJitter)))
	}
	m.metrics.IncReconnects()
	m.log.Debug("relay reconnect scheduled", "delay", delay)
	m.reconnectTimer = m.sched.AfterFunc(delay, func() {
		m.reconnectTimer = nil
		if m.visible && !m.closed && m.state == Disconnected {
			m.connect()
		}
	})
}

func (m *Manager) stopReconnect() {
	if m.reconnectTimer != nil {
		m.reconnectTimer.Stop()
		m.reconnectTimer = nil
	}
}

func (m *Manager) teardown() {
	if m.sendTimer != nil {
		m.sendTimer.Stop()
		m.sendTimer = nil
	}
	if m.cancelDial != nil {
		m.cancelDial()
		m.cancelDial = nil
	}
	if m.conn != nil {
		_ = m.conn.Close()
		m.conn = nil
	}
}

func (m *Manager) setState(s State) {
	if m.state == s {
		return
	}
	m.state = s
	m.metrics.SetRelayState(s.String())
}
