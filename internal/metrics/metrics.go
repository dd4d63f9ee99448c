// Package metrics exports bus traffic as Prometheus metrics.
package metrics

import (
	"io"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/common/expfmt"

	"github.com/Iron-Ham/stagehand/internal/event"
	"github.com/Iron-Ham/stagehand/internal/logging"
)

// Transition outcomes recorded by the transitions counter.
const (
	OutcomeStarted   = "started"
	OutcomeCompleted = "completed"
	OutcomeCanceled  = "canceled"
	OutcomeUnloaded  = "unloaded"
)

// Collector observes every event on a bus and keeps a private registry, so
// several collectors can coexist in one process.
type Collector struct {
	bus    *event.Bus
	logger *logging.Logger
	reg    *prometheus.Registry

	EventsTotal      *prometheus.CounterVec
	TransitionsTotal *prometheus.CounterVec
	ViewChangesTotal *prometheus.CounterVec
	LoadProgress     *prometheus.GaugeVec
	ActiveViews      prometheus.Gauge

	mu    sync.Mutex
	subID string
}

// NewCollector creates a collector for bus. Call Start to begin observing.
func NewCollector(bus *event.Bus, logger *logging.Logger) *Collector {
	if logger == nil {
		logger = logging.NopLogger()
	}
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Collector{
		bus:    bus,
		logger: logger.WithComponent("metrics"),
		reg:    reg,

		EventsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stagehand_events_total",
				Help: "Total number of events published, by type",
			},
			[]string{"type"},
		),
		TransitionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stagehand_scene_transitions_total",
				Help: "Scene transitions by scene and outcome",
			},
			[]string{"scene", "outcome"},
		),
		ViewChangesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stagehand_view_changes_total",
				Help: "Views shown and hidden, by screen",
			},
			[]string{"screen", "action"},
		),
		LoadProgress: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "stagehand_scene_load_progress",
				Help: "Last reported load progress of each loading scene",
			},
			[]string{"scene"},
		),
		ActiveViews: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "stagehand_active_views",
				Help: "Number of views currently shown",
			},
		),
	}
}

// Registry returns the collector's private registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.reg
}

// Start subscribes to every event on the bus. Calling it twice is a no-op.
func (c *Collector) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.subID != "" {
		return
	}
	c.subID = c.bus.SubscribeAll(c.observe)
}

// Stop unsubscribes from the bus. Recorded values are kept.
func (c *Collector) Stop() {
	c.mu.Lock()
	id := c.subID
	c.subID = ""
	c.mu.Unlock()
	if id != "" {
		c.bus.Unsubscribe(id)
	}
}

func (c *Collector) observe(e event.Event) {
	c.EventsTotal.WithLabelValues(e.EventType()).Inc()

	switch e := e.(type) {
	case event.SceneLoadStarted:
		c.TransitionsTotal.WithLabelValues(e.Scene, OutcomeStarted).Inc()
		c.LoadProgress.WithLabelValues(e.Scene).Set(0)
	case event.SceneLoadProgress:
		c.LoadProgress.WithLabelValues(e.Scene).Set(e.Progress)
	case event.SceneLoadCompleted:
		c.TransitionsTotal.WithLabelValues(e.Scene, OutcomeCompleted).Inc()
		c.LoadProgress.DeleteLabelValues(e.Scene)
	case event.SceneLoadCanceled:
		c.TransitionsTotal.WithLabelValues(e.Scene, OutcomeCanceled).Inc()
		c.LoadProgress.DeleteLabelValues(e.Scene)
	case event.SceneUnloadCompleted:
		c.TransitionsTotal.WithLabelValues(e.Scene, OutcomeUnloaded).Inc()
	case event.ViewShown:
		c.ViewChangesTotal.WithLabelValues(e.Screen, "shown").Inc()
		c.ActiveViews.Inc()
	case event.ViewHidden:
		c.ViewChangesTotal.WithLabelValues(e.Screen, "hidden").Inc()
		c.ActiveViews.Dec()
	}
}

// WriteText writes every metric in the Prometheus text exposition format.
func (c *Collector) WriteText(w io.Writer) error {
	families, err := c.reg.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	c.logger.Debug("metrics written", "families", len(families))
	return nil
}
