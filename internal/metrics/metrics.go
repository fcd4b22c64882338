// Package metrics records table events as Prometheus metrics.
package metrics

import (
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"github.com/theflywheel/dhash"
)

// Collector is a dhash.Observer backed by its own registry.
type Collector struct {
	registry *prometheus.Registry

	resizes  *prometheus.CounterVec
	capacity prometheus.Gauge
	carried  prometheus.Counter
	dropped  prometheus.Counter
	probes   *prometheus.HistogramVec
}

var _ dhash.Observer = (*Collector)(nil)

// New registers the dhash metrics on a fresh registry.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		resizes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dhash_resizes_total",
			Help: "Table rebuilds by direction.",
		}, []string{"direction"}),
		capacity: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dhash_capacity",
			Help: "Bucket count after the most recent rebuild.",
		}),
		carried: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dhash_rehashed_entries_total",
			Help: "Live entries re-inserted by rebuilds.",
		}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dhash_dropped_tombstones_total",
			Help: "Tombstones discarded by rebuilds.",
		}),
		probes: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dhash_probe_length",
			Help:    "Buckets examined per operation.",
			Buckets: []float64{1, 2, 3, 4, 6, 8, 12, 16, 32, 64},
		}, []string{"op"}),
	}

	c.registry.MustRegister(c.resizes, c.capacity, c.carried, c.dropped, c.probes)
	return c
}

// Resized implements dhash.Observer.
func (c *Collector) Resized(ev dhash.ResizeEvent) {
	direction := "shrink"
	if ev.Grow {
		direction = "grow"
	}
	c.resizes.WithLabelValues(direction).Inc()
	c.capacity.Set(float64(ev.NewCapacity))
	c.carried.Add(float64(ev.Live))
	c.dropped.Add(float64(ev.Dropped))
}

// Probed implements dhash.Observer.
func (c *Collector) Probed(op dhash.Op, attempts int) {
	c.probes.WithLabelValues(op.String()).Observe(float64(attempts))
}

// Registry exposes the underlying registry, e.g. for an HTTP handler.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// WriteText writes every metric in the Prometheus text exposition format.
func (c *Collector) WriteText(w io.Writer) error {
	families, err := c.registry.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}

	encoder := expfmt.NewEncoder(w, expfmt.FmtText)
	for _, mf := range families {
		if err := encoder.Encode(mf); err != nil {
			return fmt.Errorf("failed to encode metrics: %w", err)
		}
	}
	return nil
}
