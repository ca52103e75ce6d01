package cursor

import (
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/tonsky/tonsky.me/internal/domain"
	"github.com/tonsky/tonsky.me/internal/loop"
)

const DefaultRenderJitter = time.Second

// Renderer draws floating pointer overlays.
type Renderer interface {
	Show(id int64, platform domain.Platform)
	Move(id int64, left, top int)
	Hide(id int64)
}

type pendingMove struct {
	seq   uint64
	timer loop.Timer
}

// Overlay applies tracker results to a Renderer. Moves are delayed by a random
// amount below the jitter bound to smooth the once-a-second relay cadence. A
// delayed move never overwrites a position from a later snapshot.
type Overlay struct {
	sched    loop.Scheduler
	renderer Renderer
	jitter   time.Duration
	randN    func(n int64) int64
	log      *slog.Logger

	viewport Viewport
	seq      uint64
	applied  map[int64]uint64
	pending  map[int64][]pendingMove
}

func NewOverlay(sched loop.Scheduler, renderer Renderer, jitter time.Duration, log *slog.Logger) *Overlay {
	if log == nil {
		log = slog.Default()
	}
	return &Overlay{
		sched:    sched,
		renderer: renderer,
		jitter:   jitter,
		randN:    rand.Int64N,
		log:      log,
		applied:  make(map[int64]uint64),
		pending:  make(map[int64][]pendingMove),
	}
}

// SetRand replaces the jitter source.
func (o *Overlay) SetRand(fn func(n int64) int64) { o.randN = fn }

func (o *Overlay) SetViewport(vp Viewport) { o.viewport = vp }

func (o *Overlay) Viewport() Viewport { return o.viewport }

func (o *Overlay) Apply(res Result) {
	for _, id := range res.Evicted {
		o.evict(id)
	}

	created := make(map[int64]bool, len(res.Created))
	for _, id := range res.Created {
		created[id] = true
	}

	for _, s := range res.Updated {
		if created[s.ID] {
			o.renderer.Show(s.ID, s.Platform)
		}
		o.schedule(s)
	}
}

func (o *Overlay) schedule(s domain.CursorSample) {
	o.seq++
	seq := o.seq
	id, x, y := s.ID, s.X, s.Y

	if o.jitter <= 0 {
		o.move(id, seq, x, y)
		return
	}

	delay := time.Duration(o.randN(int64(o.jitter)))
	t := o.sched.AfterFunc(delay, func() {
		o.dropPending(id, seq)
		o.move(id, seq, x, y)
	})
	o.pending[id] = append(o.pending[id], pendingMove{seq: seq, timer: t})
}

func (o *Overlay) move(id int64, seq uint64, x, y int) {
	if seq <= o.applied[id] {
		o.log.Debug("cursor move superseded", "cursor", id)
		return
	}
	o.applied[id] = seq
	left, top := o.viewport.Place(x, y)
	o.renderer.Move(id, left, top)
}

func (o *Overlay) dropPending(id int64, seq uint64) {
	moves := o.pending[id]
	for i, m := range moves {
		if m.seq == seq {
			moves = append(moves[:i], moves[i+1:]...)
			break
		}
	}
	if len(moves) == 0 {
		delete(o.pending, id)
		return
	}
	o.pending[id] = moves
}

func (o *Overlay) evict(id int64) {
	for _, m := range o.pending[id] {
		m.timer.Stop()
	}
	delete(o.pending, id)
	delete(o.applied, id)
	o.renderer.Hide(id)
}

// Clear hides the given cursors, see Tracker.Reset.
func (o *Overlay) Clear(ids []int64) {
	for _, id := range ids {
		o.evict(id)
	}
}

// PendingMoves counts delayed moves not yet applied.
func (o *Overlay) PendingMoves() int {
	n := 0
	for _, m := range o.pending {
		n += len(m)
	}
	return n
}
