package roster

import (
	"log/slog"

	"github.com/tonsky/tonsky.me/internal/domain"
)

// LogRenderer renders the roster as log lines. It is the headless client's list.
type LogRenderer struct {
	Log *slog.Logger
}

func (r LogRenderer) Insert(id ElementID, peer domain.PeerRecord, before ElementID) {
	flag, _ := domain.FlagEmoji(peer.CountryCode)
	r.Log.Info("peer joined",
		"element", id,
		"before", before,
		"peer", peer.ID,
		"self", peer.Self,
		"title", domain.Title(peer),
		"animal", domain.AnimalFor(peer.ID).Emoji,
		"flag", flag)
}

func (r LogRenderer) Update(id ElementID, peer domain.PeerRecord) {
	r.Log.Debug("peer updated", "element", id, "peer", peer.ID, "title", domain.Title(peer))
}

func (r LogRenderer) Settle(id ElementID) {}

func (r LogRenderer) MarkRemoving(id ElementID) {
	r.Log.Info("peer leaving", "element", id)
}

func (r LogRenderer) Delete(id ElementID) {
	r.Log.Debug("peer element deleted", "element", id)
}
