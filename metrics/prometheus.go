package metrics

import (
	"errors"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusProvider adapts Provider to client_golang collectors registered on reg.
// Instrument attributes become constant labels, so each attribute set is its own
// collector under a shared metric name.
// Counters map to prometheus.Counter, up/down counters to prometheus.Gauge and
// histograms to prometheus.Histogram with the default buckets.
type PrometheusProvider struct {
	reg prometheus.Registerer

	mu         sync.Mutex
	collectors map[string]prometheus.Collector
}

// NewPrometheusProvider returns a provider registering on reg.
// A nil reg means prometheus.DefaultRegisterer.
func NewPrometheusProvider(reg prometheus.Registerer) *PrometheusProvider {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	return &PrometheusProvider{reg: reg, collectors: make(map[string]prometheus.Collector)}
}

func (p *PrometheusProvider) Counter(name string, opts ...InstrumentOption) Counter {
	cfg := buildConfig(opts)
	c := p.register(identity(name, cfg.Attributes), func() prometheus.Collector {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Name:        name,
			Help:        help(name, cfg),
			ConstLabels: cfg.Attributes,
		})
	})
	if pc, ok := c.(prometheus.Counter); ok {
		return promCounter{pc}
	}
	return noop{}
}

func (p *PrometheusProvider) UpDownCounter(name string, opts ...InstrumentOption) UpDownCounter {
	cfg := buildConfig(opts)
	c := p.register(identity(name, cfg.Attributes), func() prometheus.Collector {
		return prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        name,
			Help:        help(name, cfg),
			ConstLabels: cfg.Attributes,
		})
	})
	if g, ok := c.(prometheus.Gauge); ok {
		return promGauge{g}
	}
	return noop{}
}

func (p *PrometheusProvider) Histogram(name string, opts ...InstrumentOption) Histogram {
	cfg := buildConfig(opts)
	c := p.register(identity(name, cfg.Attributes), func() prometheus.Collector {
		return prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:        name,
			Help:        help(name, cfg),
			ConstLabels: cfg.Attributes,
			Buckets:     prometheus.DefBuckets,
		})
	})
	if h, ok := c.(prometheus.Histogram); ok {
		return promHistogram{h}
	}
	return noop{}
}

// register returns the collector cached under id, creating and registering it
// on first use. A collector with the same descriptor already registered on reg,
// e.g. by another provider, is reused.
func (p *PrometheusProvider) register(id string, newFn func() prometheus.Collector) prometheus.Collector {
	p.mu.Lock()
	defer p.mu.Unlock()

	if c, ok := p.collectors[id]; ok {
		return c
	}

	c := newFn()
	if err := p.reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			// conflicting descriptor: record into an unregistered collector
			p.collectors[id] = c
			return c
		}
		c = are.ExistingCollector
	}
	p.collectors[id] = c
	return c
}

func help(name string, cfg InstrumentConfig) string {
	if cfg.Description != "" {
		return cfg.Description
	}
	return name
}

type promCounter struct{ c prometheus.Counter }

func (c promCounter) Add(n int64) {
	if n > 0 {
		c.c.Add(float64(n))
	}
}

type promGauge struct{ g prometheus.Gauge }

func (g promGauge) Add(n int64) { g.g.Add(float64(n)) }

type promHistogram struct{ h prometheus.Histogram }

func (h promHistogram) Record(v float64) { h.h.Observe(v) }
