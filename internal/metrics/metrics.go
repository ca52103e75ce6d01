// Package metrics exposes client counters in Prometheus format.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Recorder interface {
	IncSnapshots(kind string)
	AddRosterOps(kind string, n int)
	SetRosterSize(n int)
	SetLiveCursors(n int)
	SetRelayState(state string)
	IncReconnects()
	IncSamplesSent()
	IncPublishes(visible bool, ok bool)
	IncGeoLookups(result string)
}

// relay states exported as a one-hot gauge
var relayStates = []string{"disconnected", "connecting", "open"}

type Prometheus struct {
	snapshots   *prometheus.CounterVec
	rosterOps   *prometheus.CounterVec
	rosterSize  prometheus.Gauge
	liveCursors prometheus.Gauge
	relayState  *prometheus.GaugeVec
	reconnects  prometheus.Counter
	samplesSent prometheus.Counter
	publishes   *prometheus.CounterVec
	geoLookups  *prometheus.CounterVec
}

// New registers the collectors on reg. A nil reg yields a Recorder that drops
// everything.
func New(reg prometheus.Registerer) Recorder {
	if reg == nil {
		return Noop{}
	}
	f := promauto.With(reg)
	return &Prometheus{
		snapshots: f.NewCounterVec(prometheus.CounterOpts{
			Name: "presence_snapshots_total",
			Help: "Snapshots received, by source",
		}, []string{"kind"}),
		rosterOps: f.NewCounterVec(prometheus.CounterOpts{
			Name: "presence_roster_ops_total",
			Help: "Roster mutations applied, by kind",
		}, []string{"kind"}),
		rosterSize: f.NewGauge(prometheus.GaugeOpts{
			Name: "presence_roster_size",
			Help: "Rendered roster entries including ones fading out",
		}),
		liveCursors: f.NewGauge(prometheus.GaugeOpts{
			Name: "presence_live_cursors",
			Help: "Remote cursors currently tracked",
		}),
		relayState: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "presence_relay_state",
			Help: "1 for the current relay connection state",
		}, []string{"state"}),
		reconnects: f.NewCounter(prometheus.CounterOpts{
			Name: "presence_relay_reconnects_total",
			Help: "Scheduled relay reconnects",
		}),
		samplesSent: f.NewCounter(prometheus.CounterOpts{
			Name: "presence_relay_samples_sent_total",
			Help: "Pointer samples sent to the relay",
		}),
		publishes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "presence_publishes_total",
			Help: "Presence publishes, by visibility and outcome",
		}, []string{"visible", "result"}),
		geoLookups: f.NewCounterVec(prometheus.CounterOpts{
			Name: "presence_geo_lookups_total",
			Help: "Geolocation lookups, by result",
		}, []string{"result"}),
	}
}

func (m *Prometheus) IncSnapshots(kind string) { m.snapshots.WithLabelValues(kind).Inc() }

func (m *Prometheus) AddRosterOps(kind string, n int) {
	if n > 0 {
		m.rosterOps.WithLabelValues(kind).Add(float64(n))
	}
}

func (m *Prometheus) SetRosterSize(n int) { m.rosterSize.Set(float64(n)) }

func (m *Prometheus) SetLiveCursors(n int) { m.liveCursors.Set(float64(n)) }

func (m *Prometheus) SetRelayState(state string) {
	for _, s := range relayStates {
		v := 0.0
		if s == state {
			v = 1
		}
		m.relayState.WithLabelValues(s).Set(v)
	}
}

func (m *Prometheus) IncReconnects() { m.reconnects.Inc() }

func (m *Prometheus) IncSamplesSent() { m.samplesSent.Inc() }

func (m *Prometheus) IncPublishes(visible bool, ok bool) {
	v, r := "false", "ok"
	if visible {
		v = "true"
	}
	if !ok {
		r = "error"
	}
	m.publishes.WithLabelValues(v, r).Inc()
}

func (m *Prometheus) IncGeoLookups(result string) { m.geoLookups.WithLabelValues(result).Inc() }

// Noop is used when metrics are disabled.
type Noop struct{}

func (Noop) IncSnapshots(string)      {}
func (Noop) AddRosterOps(string, int) {}
func (Noop) SetRosterSize(int)        {}
func (Noop) SetLiveCursors(int)       {}
func (Noop) SetRelayState(string)     {}
func (Noop) IncReconnects()           {}
func (Noop) IncSamplesSent()          {}
func (Noop) IncPublishes(bool, bool)  {}
func (Noop) IncGeoLookups(string)     {}

// OrNoop returns r, or Noop when r is nil.
func OrNoop(r Recorder) Recorder {
	if r == nil {
		return Noop{}
	}
	return r
}
