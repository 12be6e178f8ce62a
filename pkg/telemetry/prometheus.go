package telemetry

import (
	"context"
	"net/http"

	"github.com/goliatone/go-dashboard-builder/components/dashboard/commands"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Prometheus counts events per name and tracks configuration activity.
type Prometheus struct {
	registry *prometheus.Registry
	events   *prometheus.CounterVec
	items    prometheus.Histogram
	imported prometheus.Counter
}

// NewPrometheus builds a sink on its own registry, including the Go and
// process collectors.
func NewPrometheus(namespace string) *Prometheus {
	if namespace == "" {
		namespace = "dashboard"
	}
	p := &Prometheus{
		registry: prometheus.NewRegistry(),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Dashboard events recorded, by event name.",
		}, []string{"event"}),
		items: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "saved_items",
			Help:      "Number of items in saved dashboard configurations.",
			Buckets:   []float64{0, 1, 2, 4, 8, 16, 32},
		}),
		imported: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "imported_configs_total",
			Help:      "Dashboard configurations created or updated by imports.",
		}),
	}
	p.registry.MustRegister(
		p.events,
		p.items,
		p.imported,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return p
}

// Record implements dashboard.Telemetry.
func (p *Prometheus) Record(_ context.Context, event string, payload map[string]any) {
	p.events.WithLabelValues(event).Inc()
	if n, ok := payload["items"].(int); ok {
		p.items.Observe(float64(n))
	}
	if n, ok := payload["configs"].(int); ok && event == commands.EventImport {
		p.imported.Add(float64(n))
	}
}

// Registry exposes the underlying registry.
func (p *Prometheus) Registry() *prometheus.Registry {
	return p.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{Registry: p.registry})
}
