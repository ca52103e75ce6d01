package roster

import (
	"log/slog"
	"time"

	"github.com/tonsky/tonsky.me/internal/domain"
	"github.com/tonsky/tonsky.me/internal/loop"
)

const DefaultRemovalGrace = 500 * time.Millisecond

// ElementID identifies a rendered roster entry. It is distinct from the peer id:
// a peer that leaves and comes back within the exit transition is rendered by
// two elements for a moment.
type ElementID uint64

// Renderer is the rendering layer for the roster list.
type Renderer interface {
	// Insert places a new element in front of before, or at the end when before is 0.
	Insert(id ElementID, peer domain.PeerRecord, before ElementID)
	// Update replaces the data shown by an element that keeps its position.
	Update(id ElementID, peer domain.PeerRecord)
	// Settle flips a freshly inserted element from its entrance state to steady state.
	Settle(id ElementID)
	MarkRemoving(id ElementID)
	Delete(id ElementID)
}

// View owns the rendered roster: the element order and the side table of the
// last record applied to each element.
type View struct {
	sched    loop.Scheduler
	renderer Renderer
	grace    time.Duration
	log      *slog.Logger

	nextID   ElementID
	order    []ElementID
	records  map[ElementID]domain.PeerRecord
	removing map[ElementID]bool
}

func NewView(sched loop.Scheduler, renderer Renderer, grace time.Duration, log *slog.Logger) *View {
	if grace <= 0 {
		grace = DefaultRemovalGrace
	}
	if log == nil {
		log = slog.Default()
	}
	return &View{
		sched:    sched,
		renderer: renderer,
		grace:    grace,
		log:      log,
		records:  make(map[ElementID]domain.PeerRecord),
		removing: make(map[ElementID]bool),
	}
}

// Elements is the rendered sequence, including elements in their exit transition.
func (v *View) Elements() []Element {
	out := make([]Element, len(v.order))
	for i, id := range v.order {
		out[i] = Element{Peer: v.records[id], Removing: v.removing[id]}
	}
	return out
}

// Peers lists the rendered peers that are not leaving.
func (v *View) Peers() []domain.PeerRecord {
	out := make([]domain.PeerRecord, 0, len(v.order))
	for _, id := range v.order {
		if !v.removing[id] {
			out = append(out, v.records[id])
		}
	}
	return out
}

// Apply reconciles the rendered roster against sorted and drives the renderer.
func (v *View) Apply(sorted []domain.PeerRecord) []Op {
	old := v.order
	ops := Reconcile(sorted, v.Elements())

	next := make([]ElementID, 0, len(old)+len(sorted))
	cursor := 0
	flush := func(to int) {
		next = append(next, old[cursor:to]...)
		cursor = to
	}

	for _, op := range ops {
		switch op.Kind {
		case OpKeep:
			flush(op.At + 1)
			id := old[op.At]
			if v.records[id] != op.Peer {
				v.records[id] = op.Peer
				v.renderer.Update(id, op.Peer)
			}
		case OpRemove:
			flush(op.At + 1)
			v.startRemoval(old[op.At])
		case OpInsert:
			flush(op.At)
			var before ElementID
			if op.At < len(old) {
				before = old[op.At]
			}
			next = append(next, v.insert(op.Peer, before))
		}
	}
	flush(len(old))
	v.order = next

	if n := Mutations(ops); n > 0 {
		v.log.Debug("roster reconciled", "mutations", n, "rendered", len(v.order))
	}
	return ops
}

func (v *View) insert(peer domain.PeerRecord, before ElementID) ElementID {
	v.nextID++
	id := v.nextID
	v.records[id] = peer
	v.renderer.Insert(id, peer, before)

	v.sched.AfterFunc(0, func() {
		if _, ok := v.records[id]; ok && !v.removing[id] {
			v.renderer.Settle(id)
		}
	})
	return id
}

// startRemoval begins the exit transition. The element is physically deleted
// after the grace interval; a re-insert of the same peer does not cancel it.
func (v *View) startRemoval(id ElementID) {
	v.removing[id] = true
	v.renderer.MarkRemoving(id)
	v.sched.AfterFunc(v.grace, func() { v.delete(id) })
}

func (v *View) delete(id ElementID) {
	for i, e := range v.order {
		if e == id {
			v.order = append(v.order[:i:i], v.order[i+1:]...)
			break
		}
	}
	delete(v.records, id)
	delete(v.removing, id)
	v.renderer.Delete(id)
}

// Clear starts the exit transition of every element, as when the room is left.
func (v *View) Clear() []Op {
	return v.Apply(nil)
}
