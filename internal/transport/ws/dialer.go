package ws

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

type Options struct {
	HandshakeTimeout time.Duration
	WriteTimeout     time.Duration
	PingEvery        time.Duration
	ReadLimit        int64
	Outbox           int
}

func (o Options) withDefaults() Options {
	if o.HandshakeTimeout <= 0 {
		o.HandshakeTimeout = 10 * time.Second
	}
	if o.WriteTimeout <= 0 {
		o.WriteTimeout = 5 * time.Second
	}
	if o.ReadLimit <= 0 {
		o.ReadLimit = 1 << 20
	}
	if o.Outbox <= 0 {
		o.Outbox = 16
	}
	return o
}

type Dialer struct {
	opts   Options
	dialer websocket.Dialer
	header http.Header
}

func NewDialer(opts Options, header http.Header) *Dialer {
	opts = opts.withDefaults()
	return &Dialer{
		opts:   opts,
		header: header,
		dialer: websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: opts.HandshakeTimeout,
			ReadBufferSize:   1024,
			WriteBufferSize:  1024,
		},
	}
}

func (d *Dialer) Dial(ctx context.Context, url string) (*Conn, error) {
	c, resp, err := d.dialer.DialContext(ctx, url, d.header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("ws dial %s: %s: %w", url, resp.Status, err)
		}
		return nil, fmt.Errorf("ws dial %s: %w", url, err)
	}
	return newConn(c, d.opts), nil
}
