// Package room talks to the pub/sub presence room: it subscribes to roster
// snapshots and publishes the local peer record.
package room

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/tonsky/tonsky.me/internal/domain"
	"github.com/tonsky/tonsky.me/internal/transport/ws"
)

const DefaultReconnectDelay = 2 * time.Second

// Presence is one roster snapshot. User is the room's echo of the local record
// and may be nil before the first publish is acknowledged.
type Presence struct {
	Peers map[string]domain.PeerRecord
	User  *domain.PeerRecord
}

type Options struct {
	URL            string
	RoomID         string
	ReconnectDelay time.Duration
}

// ID derives the room id from a page URL: origin plus path, no query.
func ID(pageURL string) (string, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("parse page url: %w", err)
	}
	return u.Scheme + "://" + u.Host + u.Path, nil
}

// Client keeps one room subscription alive. The last published record is
// replayed after every reconnect so the room re-admits us.
type Client struct {
	dialer     *ws.Dialer
	opts       Options
	onPresence func(Presence)
	log        *slog.Logger

	mu   sync.Mutex
	conn *ws.Conn
	last *domain.PeerRecord
}

func NewClient(dialer *ws.Dialer, opts Options, onPresence func(Presence), log *slog.Logger) *Client {
	if opts.ReconnectDelay <= 0 {
		opts.ReconnectDelay = DefaultReconnectDelay
	}
	if log == nil {
		log = slog.Default()
	}
	return &Client{dialer: dialer, opts: opts, onPresence: onPresence, log: log}
}

func (c *Client) endpoint() (string, error) {
	u, err := url.Parse(c.opts.URL)
	if err != nil {
		return "", fmt.Errorf("parse room url: %w", err)
	}
	q := u.Query()
	q.Set("room", c.opts.RoomID)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Run connects and reconnects until ctx is done.
func (c *Client) Run(ctx context.Context) error {
	endpoint, err := c.endpoint()
	if err != nil {
		return err
	}

	for {
		if err := c.session(ctx, endpoint); err != nil && ctx.Err() == nil {
			c.log.Info("room disconnected", "err", err, "retry_in", c.opts.ReconnectDelay)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.opts.ReconnectDelay):
		}
	}
}

func (c *Client) session(ctx context.Context, endpoint string) error {
	conn, err := c.dialer.Dial(ctx, endpoint)
	if err != nil {
		return err
	}
	defer c.detach(conn)

	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	if err := c.attach(conn); err != nil {
		return err
	}
	c.log.Info("room joined", "room", c.opts.RoomID)

	for {
		data, err := conn.Read()
		if err != nil {
			return err
		}
		msg, err := ws.Decode(data)
		if err != nil {
			c.log.Debug("room message dropped", "err", err)
			continue
		}
		if msg.Type != ws.TypePresence {
			continue
		}

		var p ws.PresencePayload
		if err := msg.DecodePayload(&p); err != nil {
			c.log.Debug("room presence dropped", "err", fmt.Errorf("%w: %v", domain.ErrMalformedMessage, err))
			continue
		}
		if c.onPresence != nil {
			c.onPresence(Presence{Peers: p.Peers, User: p.User})
		}
	}
}

func (c *Client) attach(conn *ws.Conn) error {
	join, err := ws.Encode(ws.TypeJoin, ws.JoinPayload{RoomID: c.opts.RoomID})
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := conn.Send(join); err != nil {
		return err
	}
	if c.last != nil {
		if err := c.send(conn, *c.last); err != nil {
			return err
		}
	}
	c.conn = conn
	return nil
}

func (c *Client) detach(conn *ws.Conn) {
	c.mu.Lock()
	if c.conn == conn {
		c.conn = nil
	}
	c.mu.Unlock()
	_ = conn.Close()
}

// Publish sends rec to the room. Without a live connection the record is only
// remembered for the next join and ErrNotConnected is returned.
func (c *Client) Publish(rec domain.PeerRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.last = &rec
	if c.conn == nil {
		return domain.ErrNotConnected
	}
	return c.send(c.conn, rec)
}

func (c *Client) send(conn *ws.Conn, rec domain.PeerRecord) error {
	data, err := ws.Encode(ws.TypePublish, rec)
	if err != nil {
		return err
	}
	if err := conn.Send(data); err != nil {
		if errors.Is(err, domain.ErrClosed) {
			return domain.ErrNotConnected
		}
		return fmt.Errorf("room publish: %w", err)
	}
	return nil
}

func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}
