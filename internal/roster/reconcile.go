package roster

import (
	"fmt"

	"github.com/tonsky/tonsky.me/internal/domain"
)

type OpKind int

const (
	OpKeep OpKind = iota
	OpInsert
	OpRemove
)

func (k OpKind) String() string {
	switch k {
	case OpKeep:
		return "keep"
	case OpInsert:
		return "insert"
	case OpRemove:
		return "remove"
	default:
		return fmt.Sprintf("op(%d)", int(k))
	}
}

// Op is one step of turning the rendered sequence into the target sequence.
// At indexes the rendered input: the element kept or removed, or, for inserts,
// the element the new one goes in front of (len(rendered) means append).
type Op struct {
	Kind   OpKind
	ID     string
	Peer   domain.PeerRecord
	Before string
	At     int
}

func (o Op) String() string {
	switch o.Kind {
	case OpInsert:
		if o.Before == "" {
			return "insert " + o.ID + " at end"
		}
		return "insert " + o.ID + " before " + o.Before
	default:
		return o.Kind.String() + " " + o.ID
	}
}

// Element is one rendered roster entry. Removing elements are in their exit
// transition and no longer take part in reconciliation.
type Element struct {
	Peer     domain.PeerRecord
	Removing bool
}

// Reconcile merges two sequences sorted by domain.Compare and returns the ops
// that turn rendered into sorted. Applying inserts in emission order yields
// exactly sorted. sorted is not re-sorted.
func Reconcile(sorted []domain.PeerRecord, rendered []Element) []Op {
	ops := make([]Op, 0, len(sorted)+len(rendered))

	i, j := 0, 0
	for {
		for i < len(rendered) && rendered[i].Removing {
			i++
		}
		if i >= len(rendered) && j >= len(sorted) {
			return ops
		}

		switch {
		case i < len(rendered) && j < len(sorted) && domain.Compare(rendered[i].Peer, sorted[j]) == 0:
			ops = append(ops, Op{Kind: OpKeep, ID: sorted[j].ID, Peer: sorted[j], At: i})
			i++
			j++
		case i < len(rendered) && (j >= len(sorted) || domain.Compare(rendered[i].Peer, sorted[j]) < 0):
			ops = append(ops, Op{Kind: OpRemove, ID: rendered[i].Peer.ID, At: i})
			i++
		default:
			op := Op{Kind: OpInsert, ID: sorted[j].ID, Peer: sorted[j], At: len(rendered)}
			if i < len(rendered) {
				op.Before = rendered[i].Peer.ID
				op.At = i
			}
			ops = append(ops, op)
			j++
		}
	}
}

// Mutations counts the ops that change the rendered sequence.
func Mutations(ops []Op) int {
	n := 0
	for _, op := range ops {
		if op.Kind != OpKeep {
			n++
		}
	}
	return n
}
