package roster

import (
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tonsky/tonsky.me/internal/domain"
	"github.com/tonsky/tonsky.me/internal/testutil"
)

type fakeNode struct {
	id       ElementID
	peer     domain.PeerRecord
	entering bool
	removing bool
}

// fakeDOM is a recording Renderer keeping nodes in document order.
type fakeDOM struct {
	t       *testing.T
	nodes   []*fakeNode
	updates int
	deletes []ElementID
}

func (d *fakeDOM) index(id ElementID) int {
	return slices.IndexFunc(d.nodes, func(n *fakeNode) bool { return n.id == id })
}

func (d *fakeDOM) Insert(id ElementID, peer domain.PeerRecord, before ElementID) {
	n := &fakeNode{id: id, peer: peer, entering: true}
	if before == 0 {
		d.nodes = append(d.nodes, n)
		return
	}
	idx := d.index(before)
	require.GreaterOrEqual(d.t, idx, 0, "insert before unknown element %d", before)
	d.nodes = slices.Insert(d.nodes, idx, n)
}

func (d *fakeDOM) Update(id ElementID, peer domain.PeerRecord) {
	d.nodes[d.index(id)].peer = peer
	d.updates++
}

func (d *fakeDOM) Settle(id ElementID) {
	d.nodes[d.index(id)].entering = false
}

func (d *fakeDOM) MarkRemoving(id ElementID) {
	d.nodes[d.index(id)].removing = true
}

func (d *fakeDOM) Delete(id ElementID) {
	idx := d.index(id)
	require.GreaterOrEqual(d.t, idx, 0)
	d.nodes = slices.Delete(d.nodes, idx, idx+1)
	d.deletes = append(d.deletes, id)
}

func (d *fakeDOM) visibleIDs() []string {
	var out []string
	for _, n := range d.nodes {
		if !n.removing {
			out = append(out, n.peer.ID)
		}
	}
	return out
}

func newTestView(t *testing.T) (*View, *fakeDOM, *testutil.Scheduler) {
	sched := testutil.NewScheduler()
	dom := &fakeDOM{t: t}
	return NewView(sched, dom, 300*time.Millisecond, testutil.DiscardLogger()), dom, sched
}

func peer(id, cc string, joined int64) domain.PeerRecord {
	return domain.PeerRecord{ID: id, CountryCode: cc, TimeJoined: joined, Visible: true}
}

func TestView_ApplyRendersSortedRoster(t *testing.T) {
	v, dom, sched := newTestView(t)

	remote := map[string]domain.PeerRecord{
		"a": peer("a", "US", 100),
		"b": peer("b", "DE", 50),
	}
	local := peer("c", "FR", 75)
	v.Apply(Snapshot(remote, &local))

	assert.Equal(t, []string{"b", "c", "a"}, dom.visibleIDs())
	for _, n := range dom.nodes {
		assert.True(t, n.entering)
	}

	sched.Advance(0)
	for _, n := range dom.nodes {
		assert.False(t, n.entering, "element %d should settle after one tick", n.id)
	}
	assert.Equal(t, []string{"b", "c", "a"}, IDs(v.Peers()))
}

func TestView_SecondApplyIsNoop(t *testing.T) {
	v, dom, _ := newTestView(t)
	snap := Sort([]domain.PeerRecord{peer("a", "DE", 1), peer("b", "US", 2)})

	v.Apply(snap)
	ops := v.Apply(snap)
	assert.Equal(t, 0, Mutations(ops))
	assert.Equal(t, 0, dom.updates)
	assert.Len(t, dom.nodes, 2)
}

func TestView_RemovalIsDeferredByGrace(t *testing.T) {
	v, dom, sched := newTestView(t)
	v.Apply(Sort([]domain.PeerRecord{peer("a", "DE", 1), peer("b", "US", 2)}))

	v.Apply([]domain.PeerRecord{peer("a", "DE", 1)})
	assert.Equal(t, []string{"a"}, dom.visibleIDs())
	assert.Len(t, dom.nodes, 2, "leaving element stays until grace elapses")

	// Re-running before the grace interval must not remove b again.
	ops := v.Apply([]domain.PeerRecord{peer("a", "DE", 1)})
	assert.Equal(t, 0, Mutations(ops))

	sched.Advance(299 * time.Millisecond)
	assert.Len(t, dom.nodes, 2)
	sched.Advance(time.Millisecond)
	assert.Len(t, dom.nodes, 1)
	assert.Len(t, dom.deletes, 1)
	assert.Len(t, v.Elements(), 1)
}

func TestView_ReturningPeerWithinGraceFlickers(t *testing.T) {
	v, dom, sched := newTestView(t)
	b := peer("b", "US", 2)
	v.Apply(Sort([]domain.PeerRecord{peer("a", "DE", 1), b}))

	v.Apply([]domain.PeerRecord{peer("a", "DE", 1)})
	ops := v.Apply(Sort([]domain.PeerRecord{peer("a", "DE", 1), b}))
	require.Equal(t, 1, Mutations(ops))
	assert.Equal(t, []string{"a", "b"}, dom.visibleIDs())
	assert.Len(t, dom.nodes, 3, "old element finishes its exit while the new one enters")

	sched.Advance(300 * time.Millisecond)
	assert.Len(t, dom.nodes, 2)
	assert.Equal(t, []string{"a", "b"}, dom.visibleIDs())
	assert.Equal(t, []string{"a", "b"}, IDs(v.Peers()))
}

func TestView_KeepUpdatesSideTable(t *testing.T) {
	v, dom, _ := newTestView(t)
	p := peer("a", "DE", 1)
	v.Apply([]domain.PeerRecord{p})

	p.City = "Berlin"
	v.Apply([]domain.PeerRecord{p})
	assert.Equal(t, 1, dom.updates)
	assert.Equal(t, "Berlin", v.Peers()[0].City)
	assert.Equal(t, "Berlin", dom.nodes[0].peer.City)
}

func TestView_InsertsBetweenExistingAndLeavingElements(t *testing.T) {
	v, dom, sched := newTestView(t)
	v.Apply(Sort([]domain.PeerRecord{peer("a", "DE", 10), peer("b", "DE", 20), peer("d", "DE", 40)}))

	v.Apply(Sort([]domain.PeerRecord{peer("a", "DE", 10), peer("d", "DE", 40)}))
	v.Apply(Sort([]domain.PeerRecord{peer("a", "DE", 10), peer("c", "DE", 30), peer("d", "DE", 40)}))
	assert.Equal(t, []string{"a", "c", "d"}, dom.visibleIDs())

	sched.Advance(time.Second)
	assert.Equal(t, []string{"a", "c", "d"}, dom.visibleIDs())
	assert.Len(t, dom.nodes, 3)
}

func TestView_ClearRemovesEverything(t *testing.T) {
	v, dom, sched := newTestView(t)
	v.Apply(Sort([]domain.PeerRecord{peer("a", "DE", 1), peer("b", "US", 2)}))

	v.Clear()
	assert.Empty(t, dom.visibleIDs())
	sched.Advance(time.Second)
	assert.Empty(t, dom.nodes)
	assert.Empty(t, v.Elements())
}

func TestView_RemovedBeforeSettleStaysLeaving(t *testing.T) {
	v, dom, sched := newTestView(t)
	v.Apply([]domain.PeerRecord{peer("a", "DE", 1)})
	v.Apply(nil)

	sched.Advance(0)
	require.Len(t, dom.nodes, 1)
	assert.True(t, dom.nodes[0].entering, "leaving element is never settled")
	assert.True(t, dom.nodes[0].removing)
}
