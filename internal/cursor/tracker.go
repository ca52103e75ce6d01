// Package cursor tracks remote pointers delivered by the relay and places them
// on the local viewport.
package cursor

import (
	"cmp"
	"slices"

	"github.com/tonsky/tonsky.me/internal/domain"
)

// Entry is one tuple of a relay snapshot.
type Entry struct {
	ID       int64
	X        int
	Y        int
	Platform domain.Platform
}

type Result struct {
	Epoch   uint64
	Updated []domain.CursorSample
	Created []int64
	Evicted []int64
}

// Tracker applies relay snapshots with mark-and-sweep eviction: every snapshot
// advances the epoch, entries present are stamped with it, and whatever still
// carries an older epoch afterwards has left.
type Tracker struct {
	selfID  int64
	epoch   uint64
	samples map[int64]*domain.CursorSample
}

func NewTracker(selfID int64) *Tracker {
	return &Tracker{
		selfID:  selfID,
		samples: make(map[int64]*domain.CursorSample),
	}
}

func (t *Tracker) SelfID() int64 { return t.selfID }

func (t *Tracker) Epoch() uint64 { return t.epoch }

// ApplySnapshot must be called once per snapshot, in delivery order.
func (t *Tracker) ApplySnapshot(entries []Entry) Result {
	t.epoch++
	res := Result{Epoch: t.epoch}

	seen := make(map[int64]int, len(entries))
	for _, e := range entries {
		if e.ID == t.selfID {
			continue
		}
		s, ok := t.samples[e.ID]
		if !ok {
			s = &domain.CursorSample{ID: e.ID}
			t.samples[e.ID] = s
			res.Created = append(res.Created, e.ID)
		}
		s.X = domain.ClampCoord(e.X)
		s.Y = domain.ClampCoord(e.Y)
		s.Platform = e.Platform
		s.Epoch = t.epoch

		if idx, dup := seen[e.ID]; dup {
			res.Updated[idx] = *s
			continue
		}
		seen[e.ID] = len(res.Updated)
		res.Updated = append(res.Updated, *s)
	}

	for id, s := range t.samples {
		if s.Epoch < t.epoch {
			delete(t.samples, id)
			res.Evicted = append(res.Evicted, id)
		}
	}
	slices.Sort(res.Evicted)
	return res
}

// Live lists the tracked cursors ordered by id.
func (t *Tracker) Live() []domain.CursorSample {
	out := make([]domain.CursorSample, 0, len(t.samples))
	for _, s := range t.samples {
		out = append(out, *s)
	}
	slices.SortFunc(out, func(a, b domain.CursorSample) int { return cmp.Compare(a.ID, b.ID) })
	return out
}

// Reset forgets every cursor and returns their ids. The epoch keeps counting.
func (t *Tracker) Reset() []int64 {
	ids := make([]int64, 0, len(t.samples))
	for id := range t.samples {
		ids = append(ids, id)
	}
	clear(t.samples)
	slices.Sort(ids)
	return ids
}
