// Package ws is the WebSocket client transport shared by the room and the
// pointer relay.
package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tonsky/tonsky.me/internal/domain"
)

// Conn serializes writes through one writer goroutine so Send never blocks
// the caller.
type Conn struct {
	conn         *websocket.Conn
	outbox       chan []byte
	closed       chan struct{}
	closeOnce    sync.Once
	writeTimeout time.Duration
	pingEvery    time.Duration
}

func newConn(c *websocket.Conn, opts Options) *Conn {
	wc := &Conn{
		conn:         c,
		outbox:       make(chan []byte, opts.Outbox),
		closed:       make(chan struct{}),
		writeTimeout: opts.WriteTimeout,
		pingEvery:    opts.PingEvery,
	}

	if opts.ReadLimit > 0 {
		c.SetReadLimit(opts.ReadLimit)
	}
	if wc.pingEvery > 0 {
		_ = c.SetReadDeadline(time.Now().Add(2 * wc.pingEvery))
		c.SetPongHandler(func(string) error {
			return c.SetReadDeadline(time.Now().Add(2 * wc.pingEvery))
		})
	}

	go wc.writeLoop()
	return wc
}

// Send queues a text frame.
func (c *Conn) Send(data []byte) error {
	select {
	case <-c.closed:
		return domain.ErrClosed
	default:
	}
	select {
	case c.outbox <- data:
		return nil
	default:
		return domain.ErrQueueFull
	}
}

// Read blocks for the next data frame. Only one goroutine may read.
func (c *Conn) Read() ([]byte, error) {
	_, data, err := c.conn.ReadMessage()
	return data, err
}

func (c *Conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.closed)
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		err = c.conn.Close()
	})
	return err
}

// Done is closed once Close has been called.
func (c *Conn) Done() <-chan struct{} { return c.closed }

func (c *Conn) writeLoop() {
	var ping <-chan time.Time
	if c.pingEvery > 0 {
		ticker := time.NewTicker(c.pingEvery)
		defer ticker.Stop()
		ping = ticker.C
	}

	for {
		select {
		case data := <-c.outbox:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				_ = c.Close()
				return
			}
		case <-ping:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(c.writeTimeout)); err != nil {
				_ = c.Close()
				return
			}
		case <-c.closed:
			return
		}
	}
}
