package metrics

import (
	"sync"
	"sync/atomic"
)

// BasicProvider keeps instruments in memory so that tests can read them back.
// Instruments are created on first use; the readback methods take the same
// options as the instrument constructors to select the attribute set.
type BasicProvider struct {
	mu         sync.Mutex
	counters   map[string]*BasicCounter
	updowns    map[string]*BasicUpDownCounter
	histograms map[string]*BasicHistogram
	meta       map[string]InstrumentConfig
}

// NewBasicProvider constructs an empty BasicProvider.
func NewBasicProvider() *BasicProvider {
	return &BasicProvider{
		counters:   make(map[string]*BasicCounter),
		updowns:    make(map[string]*BasicUpDownCounter),
		histograms: make(map[string]*BasicHistogram),
		meta:       make(map[string]InstrumentConfig),
	}
}

// lookup returns the instrument registered under name and the attributes in
// opts, creating it with newFn when absent. p.mu must be held.
func lookup[T any](p *BasicProvider, m map[string]*T, name string, opts []InstrumentOption, newFn func() *T) *T {
	cfg := buildConfig(opts)
	id := identity(name, cfg.Attributes)
	if v, ok := m[id]; ok {
		return v
	}
	p.meta[id] = cfg
	v := newFn()
	m[id] = v
	return v
}

func key(name string, opts []InstrumentOption) string {
	return identity(name, buildConfig(opts).Attributes)
}

func (p *BasicProvider) Counter(name string, opts ...InstrumentOption) Counter {
	p.mu.Lock()
	defer p.mu.Unlock()
	return lookup(p, p.counters, name, opts, func() *BasicCounter { return &BasicCounter{} })
}

func (p *BasicProvider) UpDownCounter(name string, opts ...InstrumentOption) UpDownCounter {
	p.mu.Lock()
	defer p.mu.Unlock()
	return lookup(p, p.updowns, name, opts, func() *BasicUpDownCounter { return &BasicUpDownCounter{} })
}

func (p *BasicProvider) Histogram(name string, opts ...InstrumentOption) Histogram {
	p.mu.Lock()
	defer p.mu.Unlock()
	return lookup(p, p.histograms, name, opts, func() *BasicHistogram { return &BasicHistogram{} })
}

// CounterValue returns the value of the selected counter, or 0 if it was never created.
func (p *BasicProvider) CounterValue(name string, opts ...InstrumentOption) int64 {
	p.mu.Lock()
	c := p.counters[key(name, opts)]
	p.mu.Unlock()
	if c == nil {
		return 0
	}
	return c.Snapshot()
}

// UpDownValue returns the value of the selected up/down counter, or 0 if it was never created.
func (p *BasicProvider) UpDownValue(name string, opts ...InstrumentOption) int64 {
	p.mu.Lock()
	u := p.updowns[key(name, opts)]
	p.mu.Unlock()
	if u == nil {
		return 0
	}
	return u.Snapshot()
}

// HistogramSnapshot returns the state of the selected histogram, or a zero snapshot.
func (p *BasicProvider) HistogramSnapshot(name string, opts ...InstrumentOption) HistSnapshot {
	p.mu.Lock()
	h := p.histograms[key(name, opts)]
	p.mu.Unlock()
	if h == nil {
		return HistSnapshot{}
	}
	return h.Snapshot()
}

// Config returns the metadata the selected instrument was created with.
func (p *BasicProvider) Config(name string, opts ...InstrumentOption) (InstrumentConfig, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	cfg, ok := p.meta[key(name, opts)]
	return cfg, ok
}

// BasicCounter is a concurrency-safe monotonic counter.
type BasicCounter struct{ val atomic.Int64 }

func (c *BasicCounter) Add(n int64) { c.val.Add(n) }

// Snapshot returns the current value.
func (c *BasicCounter) Snapshot() int64 { return c.val.Load() }

// BasicUpDownCounter is a concurrency-safe up/down counter.
type BasicUpDownCounter struct{ val atomic.Int64 }

func (u *BasicUpDownCounter) Add(n int64) { u.val.Add(n) }

// Snapshot returns the current value.
func (u *BasicUpDownCounter) Snapshot() int64 { return u.val.Load() }

// BasicHistogram tracks count, sum, min and max. It keeps no buckets.
type BasicHistogram struct {
	mu   sync.Mutex
	snap HistSnapshot
}

// HistSnapshot is a copy of a BasicHistogram's state.
type HistSnapshot struct {
	Count int64
	Sum   float64
	Min   float64
	Max   float64
	Mean  float64
}

func (h *BasicHistogram) Record(v float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	s := &h.snap
	if s.Count == 0 || v < s.Min {
		s.Min = v
	}
	if s.Count == 0 || v > s.Max {
		s.Max = v
	}
	s.Count++
	s.Sum += v
	s.Mean = s.Sum / float64(s.Count)
}

// Snapshot returns the histogram state at the time of the call.
func (h *BasicHistogram) Snapshot() HistSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.snap
}
