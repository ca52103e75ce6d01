package room

import (
	"errors"
	"log/slog"
	"time"

	"github.com/tonsky/tonsky.me/internal/domain"
	"github.com/tonsky/tonsky.me/internal/metrics"
)

type Sink interface {
	Publish(rec domain.PeerRecord) error
}

// Publisher owns the local peer record and republishes it on every visibility
// transition.
type Publisher struct {
	sink    Sink
	now     func() time.Time
	log     *slog.Logger
	metrics metrics.Recorder

	local  domain.PeerRecord
	joined bool
}

func NewPublisher(sink Sink, id string, now func() time.Time, log *slog.Logger, m metrics.Recorder) *Publisher {
	if now == nil {
		now = time.Now
	}
	if log == nil {
		log = slog.Default()
	}
	return &Publisher{
		sink:    sink,
		now:     now,
		log:     log,
		metrics: metrics.OrNoop(m),
		local:   domain.PeerRecord{ID: id, Visible: true},
	}
}

// Local is the current local record, flagged as self.
func (p *Publisher) Local() domain.PeerRecord {
	rec := p.local
	rec.Self = true
	return rec
}

func (p *Publisher) Joined() bool { return p.joined }

// Join stamps the join time and location and publishes the first record.
func (p *Publisher) Join(loc domain.Location) error {
	p.local = p.local.WithLocation(loc)
	p.local.TimeJoined = p.now().UnixMilli()
	p.joined = true
	return p.deliver(p.publish())
}

// OnVisibility republishes the record with the new visibility. Hidden
// publishes are best effort since the room may already be gone; visible ones
// go out even if nothing changed so peers that dropped us re-admit us.
func (p *Publisher) OnVisibility(visible bool) error {
	p.local.Visible = visible
	if !p.joined {
		return nil
	}
	err := p.publish()
	if err != nil && !visible {
		p.log.Debug("hidden presence not delivered", "err", err)
		return nil
	}
	return p.deliver(err)
}

func (p *Publisher) publish() error {
	err := p.sink.Publish(p.local)
	p.metrics.IncPublishes(p.local.Visible, err == nil)
	if err == nil {
		p.log.Debug("presence published", "visible", p.local.Visible)
	}
	return err
}

// deliver reports a visible publish. A record that missed the connection is
// replayed by the client on its next join, so that case is not an error.
func (p *Publisher) deliver(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrNotConnected):
		p.log.Debug("presence deferred until the room connects")
		return nil
	default:
		p.log.Warn("presence publish failed", "visible", p.local.Visible, "err", err)
		return err
	}
}
