package relay

import (
	"context"

	"github.com/tonsky/tonsky.me/internal/transport/ws"
)

type Conn interface {
	Read() ([]byte, error)
	Send(data []byte) error
	Close() error
}

type Dialer interface {
	Dial(ctx context.Context, url string) (Conn, error)
}

type DialerFunc func(ctx context.Context, url string) (Conn, error)

func (f DialerFunc) Dial(ctx context.Context, url string) (Conn, error) { return f(ctx, url) }

// WebSocket adapts a ws.Dialer.
func WebSocket(d *ws.Dialer) Dialer {
	return DialerFunc(func(ctx context.Context, url string) (Conn, error) {
		c, err := d.Dial(ctx, url)
		if err != nil {
			return nil, err
		}
		return c, nil
	})
}
