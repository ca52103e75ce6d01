package cursor

import (
	"log/slog"

	"github.com/tonsky/tonsky.me/internal/domain"
)

// LogRenderer prints overlay changes; used by the headless client.
type LogRenderer struct {
	Log *slog.Logger
}

func (r LogRenderer) Show(id int64, platform domain.Platform) {
	r.Log.Info("cursor appeared", "cursor", id, "platform", string(platform))
}

func (r LogRenderer) Move(id int64, left, top int) {
	r.Log.Debug("cursor moved", "cursor", id, "left", left, "top", top)
}

func (r LogRenderer) Hide(id int64) {
	r.Log.Info("cursor gone", "cursor", id)
}
