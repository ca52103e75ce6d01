// Package testutil holds deterministic fakes shared by package tests.
package testutil

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/tonsky/tonsky.me/internal/loop"
)

// Scheduler is a manual loop.Scheduler. Posted closures and due timers run on
// the goroutine that calls RunPending, Advance or Await.
type Scheduler struct {
	mu     sync.Mutex
	now    time.Duration
	seq    int
	queue  []func()
	timers []*manualTimer
	notify chan struct{}
}

var _ loop.Scheduler = (*Scheduler)(nil)

type manualTimer struct {
	s       *Scheduler
	at      time.Duration
	period  time.Duration
	seq     int
	fn      func()
	stopped bool
}

func (t *manualTimer) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if t.stopped {
		return false
	}
	t.stopped = true
	return true
}

func NewScheduler() *Scheduler {
	return &Scheduler{notify: make(chan struct{}, 1)}
}

func (s *Scheduler) Post(fn func()) bool {
	s.mu.Lock()
	s.queue = append(s.queue, fn)
	s.mu.Unlock()
	select {
	case s.notify <- struct{}{}:
	default:
	}
	return true
}

func (s *Scheduler) AfterFunc(d time.Duration, fn func()) loop.Timer {
	return s.add(d, 0, fn)
}

func (s *Scheduler) Every(d time.Duration, fn func()) loop.Timer {
	return s.add(d, d, fn)
}

func (s *Scheduler) add(d, period time.Duration, fn func()) *manualTimer {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	t := &manualTimer{s: s, at: s.now + d, period: period, seq: s.seq, fn: fn}
	s.timers = append(s.timers, t)
	return t
}

// Call runs fn and everything queued before it on the calling goroutine.
func (s *Scheduler) Call(_ context.Context, fn func()) error {
	s.Post(fn)
	s.RunPending()
	return nil
}

// Now is the virtual time elapsed since the scheduler was created.
func (s *Scheduler) Now() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// ActiveTimers counts timers that are neither stopped nor fired.
func (s *Scheduler) ActiveTimers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.timers {
		if !t.stopped {
			n++
		}
	}
	return n
}

// RunPending drains posted closures, including ones posted while draining.
func (s *Scheduler) RunPending() int {
	n := 0
	for {
		s.mu.Lock()
		if len(s.queue) == 0 {
			s.mu.Unlock()
			return n
		}
		fn := s.queue[0]
		s.queue = s.queue[1:]
		s.mu.Unlock()
		fn()
		n++
	}
}

// Advance moves virtual time forward, firing due timers in deadline order.
func (s *Scheduler) Advance(d time.Duration) {
	s.mu.Lock()
	target := s.now + d
	s.mu.Unlock()

	for {
		s.RunPending()

		s.mu.Lock()
		t := s.nextDue(target)
		if t == nil {
			s.now = target
			s.mu.Unlock()
			s.RunPending()
			return
		}
		s.now = t.at
		if t.period > 0 {
			t.at += t.period
		} else {
			t.stopped = true
		}
		fn := t.fn
		s.mu.Unlock()

		fn()
	}
}

func (s *Scheduler) nextDue(target time.Duration) *manualTimer {
	live := s.timers[:0]
	for _, t := range s.timers {
		if !t.stopped {
			live = append(live, t)
		}
	}
	s.timers = live
	sort.SliceStable(s.timers, func(i, j int) bool {
		if s.timers[i].at != s.timers[j].at {
			return s.timers[i].at < s.timers[j].at
		}
		return s.timers[i].seq < s.timers[j].seq
	})
	if len(s.timers) == 0 || s.timers[0].at > target {
		return nil
	}
	return s.timers[0]
}

// Await blocks until something is posted (by another goroutine) and runs it.
func (s *Scheduler) Await(timeout time.Duration) bool {
	deadline := time.After(timeout)
	for {
		if s.RunPending() > 0 {
			return true
		}
		select {
		case <-s.notify:
		case <-deadline:
			return false
		}
	}
}

// DiscardLogger is a logger for tests that do not assert on log output.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
