// Package metrics exports media ingestion and reorder metrics to Prometheus
package metrics

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sitepanel/backend/internal/media"
	"github.com/sitepanel/backend/internal/ordering"
)

const defaultNamespace = "sitepanel"

// Collector implements media.Observer and ordering.Observer
type Collector struct {
	ingestDuration *prometheus.HistogramVec
	ingestBytes    prometheus.Counter
	reorders       *prometheus.CounterVec
	reorderItems   *prometheus.CounterVec
	gatherer       prometheus.Gatherer
}

// NewCollector registers the collectors on reg, reusing collectors that are already registered.
// A nil reg registers on the default registry.
func NewCollector(namespace string, reg prometheus.Registerer) (*Collector, error) {
	if namespace == "" {
		namespace = defaultNamespace
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	c := &Collector{
		ingestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "media",
			Name:      "ingest_duration_seconds",
			Help:      "Latency of image ingestion by result.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"result"}),
		ingestBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "media",
			Name:      "stored_bytes_total",
			Help:      "Cumulative size of published image artifacts.",
		}),
		reorders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ordering",
			Name:      "reorders_total",
			Help:      "Count of processed reorder requests by target.",
		}, []string{"target"}),
		reorderItems: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ordering",
			Name:      "items_total",
			Help:      "Count of submitted reorder items by target and outcome.",
		}, []string{"target", "outcome"}),
		gatherer: prometheus.DefaultGatherer,
	}
	if g, ok := reg.(prometheus.Gatherer); ok {
		c.gatherer = g
	}

	var err error
	if c.ingestDuration, err = register(reg, c.ingestDuration); err != nil {
		return nil, fmt.Errorf("register ingest histogram: %w", err)
	}
	if c.ingestBytes, err = register(reg, c.ingestBytes); err != nil {
		return nil, fmt.Errorf("register stored bytes counter: %w", err)
	}
	if c.reorders, err = register(reg, c.reorders); err != nil {
		return nil, fmt.Errorf("register reorder counter: %w", err)
	}
	if c.reorderItems, err = register(reg, c.reorderItems); err != nil {
		return nil, fmt.Errorf("register reorder items counter: %w", err)
	}
	return c, nil
}

// register registers collector or returns the equal collector registered before
func register[T prometheus.Collector](reg prometheus.Registerer, collector T) (T, error) {
	err := reg.Register(collector)
	if err == nil {
		return collector, nil
	}
	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		if existing, ok := are.ExistingCollector.(T); ok {
			return existing, nil
		}
	}
	return collector, err
}

// ObserveIngest records one image ingestion
func (c *Collector) ObserveIngest(result string, duration time.Duration, bytes int64) {
	if c == nil {
		return
	}
	c.ingestDuration.WithLabelValues(result).Observe(duration.Seconds())
	if result == media.ResultSuccess {
		c.ingestBytes.Add(float64(bytes))
	}
}

// ObserveReorder records one reorder request
func (c *Collector) ObserveReorder(target string, ranked, skipped int) {
	if c == nil {
		return
	}
	c.reorders.WithLabelValues(target).Inc()
	c.reorderItems.WithLabelValues(target, "ranked").Add(float64(ranked))
	c.reorderItems.WithLabelValues(target, "skipped").Add(float64(skipped))
}

// Handler serves the metrics of the registry the collector was registered on
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}

var (
	_ media.Observer    = (*Collector)(nil)
	_ ordering.Observer = (*Collector)(nil)
)
