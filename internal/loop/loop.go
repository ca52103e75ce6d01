// Package loop runs every handler of a page on one goroutine. Network readers
// and timers never touch component state directly: they Post closures here.
package loop

import (
	"context"
	"log/slog"
	"runtime/debug"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/tonsky/tonsky.me/internal/domain"
)

type Timer interface {
	Stop() bool
}

// Scheduler is what components use to defer work. Callbacks always run on the
// loop goroutine.
type Scheduler interface {
	Post(fn func()) bool
	AfterFunc(d time.Duration, fn func()) Timer
	Every(d time.Duration, fn func()) Timer
}

type Loop struct {
	clock clock.Clock
	queue chan func()
	done  chan struct{}
	log   *slog.Logger

	running atomic.Bool
}

func New(clk clock.Clock, size int, log *slog.Logger) *Loop {
	if clk == nil {
		clk = clock.New()
	}
	if size <= 0 {
		size = 256
	}
	if log == nil {
		log = slog.Default()
	}
	return &Loop{
		clock: clk,
		queue: make(chan func(), size),
		done:  make(chan struct{}),
		log:   log,
	}
}

// Post enqueues fn. It returns false once the loop has stopped.
func (l *Loop) Post(fn func()) bool {
	select {
	case <-l.done:
		return false
	default:
	}
	select {
	case l.queue <- fn:
		return true
	case <-l.done:
		return false
	}
}

// Call runs fn on the loop and waits for it.
func (l *Loop) Call(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	if !l.Post(func() {
		defer close(finished)
		fn()
	}) {
		return domain.ErrClosed
	}
	select {
	case <-finished:
		return nil
	case <-l.done:
		return domain.ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

type timer struct {
	stopped atomic.Bool
	stop    func()
}

func (t *timer) Stop() bool {
	if t.stopped.Swap(true) {
		return false
	}
	t.stop()
	return true
}

func (l *Loop) AfterFunc(d time.Duration, fn func()) Timer {
	t := &timer{}
	ct := l.clock.AfterFunc(d, func() {
		l.Post(func() {
			if t.stopped.Swap(true) {
				return
			}
			fn()
		})
	})
	t.stop = func() { ct.Stop() }
	return t
}

func (l *Loop) Every(d time.Duration, fn func()) Timer {
	t := &timer{}
	ticker := l.clock.Ticker(d)
	quit := make(chan struct{})
	t.stop = func() {
		ticker.Stop()
		close(quit)
	}
	go func() {
		for {
			select {
			case <-ticker.C:
				l.Post(func() {
					if t.stopped.Load() {
						return
					}
					fn()
				})
			case <-quit:
				return
			case <-l.done:
				ticker.Stop()
				return
			}
		}
	}()
	return t
}

// Run executes posted closures until ctx is done.
func (l *Loop) Run(ctx context.Context) error {
	if !l.running.CompareAndSwap(false, true) {
		return domain.ErrClosed
	}
	defer close(l.done)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-l.queue:
			l.exec(fn)
		}
	}
}

func (l *Loop) exec(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.log.Error("loop handler panic",
				"panic", r,
				"stack", string(debug.Stack()))
		}
	}()
	fn()
}
