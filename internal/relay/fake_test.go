package relay

import (
	"context"
	"errors"
	"io"
	"sync"
)

type fakeConn struct {
	in     chan []byte
	remote chan struct{}
	closed chan struct{}

	mu       sync.Mutex
	sent     []string
	sendErr  error
	dropOnce sync.Once
	once     sync.Once
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		in:     make(chan []byte, 8),
		remote: make(chan struct{}),
		closed: make(chan struct{}),
	}
}

func (c *fakeConn) Read() ([]byte, error) {
	select {
	case data := <-c.in:
		return data, nil
	case <-c.remote:
		return nil, io.EOF
	case <-c.closed:
		return nil, errors.New("use of closed connection")
	}
}

func (c *fakeConn) Send(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sendErr != nil {
		return c.sendErr
	}
	c.sent = append(c.sent, string(data))
	return nil
}

func (c *fakeConn) Close() error {
	c.once.Do(func() { close(c.closed) })
	return nil
}

// drop simulates the relay going away.
func (c *fakeConn) drop() { c.dropOnce.Do(func() { close(c.remote) }) }

func (c *fakeConn) isClosed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}

func (c *fakeConn) sentFrames() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.sent...)
}

type dialResult struct {
	conn *fakeConn
	err  error
}

type fakeDialer struct {
	mu      sync.Mutex
	urls    []string
	results []dialResult
	conns   []*fakeConn
}

func (d *fakeDialer) fail(err error) {
	d.mu.Lock()
	d.results = append(d.results, dialResult{err: err})
	d.mu.Unlock()
}

func (d *fakeDialer) Dial(_ context.Context, url string) (Conn, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.urls = append(d.urls, url)
	if len(d.results) > 0 {
		r := d.results[0]
		d.results = d.results[1:]
		if r.err != nil {
			return nil, r.err
		}
		d.conns = append(d.conns, r.conn)
		return r.conn, nil
	}
	c := newFakeConn()
	d.conns = append(d.conns, c)
	return c, nil
}

func (d *fakeDialer) dials() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.urls)
}

func (d *fakeDialer) last() *fakeConn {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.conns) == 0 {
		return nil
	}
	return d.conns[len(d.conns)-1]
}
