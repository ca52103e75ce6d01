// Package roster turns room presence snapshots into ordered render operations.
package roster

import (
	"slices"

	"github.com/samber/lo"

	"github.com/tonsky/tonsky.me/internal/domain"
)

// Merge combines the remote peers with the local participant. The local copy
// replaces any remote echo of itself and is flagged Self. Records without an id
// and records explicitly hidden are dropped. The result is keyed by record id,
// so two remote entries carrying the same id collapse into the earliest one.
func Merge(remote map[string]domain.PeerRecord, local *domain.PeerRecord) []domain.PeerRecord {
	byID := make(map[string]domain.PeerRecord, len(remote)+1)
	for _, p := range remote {
		if prev, ok := byID[p.ID]; ok && domain.Compare(prev, p) <= 0 {
			continue
		}
		byID[p.ID] = p
	}
	if local != nil {
		self := *local
		self.Self = true
		byID[self.ID] = self
	}

	return lo.Filter(lo.Values(byID), func(p domain.PeerRecord, _ int) bool {
		return p.ID != "" && p.Visible
	})
}

// Sort orders peers in place by (TimeJoined, CountryCode, ID).
func Sort(peers []domain.PeerRecord) []domain.PeerRecord {
	slices.SortFunc(peers, domain.Compare)
	return peers
}

// Snapshot is Merge with location defaults applied, sorted for Reconcile.
func Snapshot(remote map[string]domain.PeerRecord, local *domain.PeerRecord) []domain.PeerRecord {
	merged := lo.Map(Merge(remote, local), func(p domain.PeerRecord, _ int) domain.PeerRecord {
		return p.WithDefaults()
	})
	return Sort(merged)
}

// IDs lists peer ids in order.
func IDs(peers []domain.PeerRecord) []string {
	return lo.Map(peers, func(p domain.PeerRecord, _ int) string { return p.ID })
}
