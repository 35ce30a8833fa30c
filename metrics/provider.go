// Package metrics defines the instruments a pool records into and ships three
// providers: a no-op default, an in-memory provider for tests, and a Prometheus
// adapter.
//
// An instrument is identified by its name together with its attribute set. A
// pool passes its name as the "pool" attribute, so several pools can share one
// Provider and still record into separate series. Description and unit are
// metadata only: the first registration of an identity fixes them.
package metrics

import (
	"sort"
	"strings"
)

// Provider hands out instruments. Two calls with the same name and equal
// attributes return the same instrument; any difference in attributes yields
// a distinct one. Implementations must be safe for concurrent use.
type Provider interface {
	Counter(name string, opts ...InstrumentOption) Counter
	UpDownCounter(name string, opts ...InstrumentOption) UpDownCounter
	Histogram(name string, opts ...InstrumentOption) Histogram
}

// Counter only grows. Negative deltas may be ignored by the implementation.
type Counter interface {
	Add(n int64)
}

// UpDownCounter tracks a level, such as live workers or queued jobs.
type UpDownCounter interface {
	Add(n int64)
}

// Histogram aggregates observations, such as job durations in seconds.
type Histogram interface {
	Record(v float64)
}

// InstrumentConfig is what the options of one Counter/UpDownCounter/Histogram
// call resolve to.
type InstrumentConfig struct {
	Description string
	Unit        string
	// Attributes are part of the instrument identity. Keep values bounded.
	Attributes map[string]string
}

// InstrumentOption mutates InstrumentConfig.
type InstrumentOption func(*InstrumentConfig)

func WithDescription(desc string) InstrumentOption {
	return func(c *InstrumentConfig) { c.Description = desc }
}

func WithUnit(unit string) InstrumentOption {
	return func(c *InstrumentConfig) { c.Unit = unit }
}

// WithAttributes merges attrs into the instrument attributes. attrs is copied.
func WithAttributes(attrs map[string]string) InstrumentOption {
	return func(c *InstrumentConfig) {
		if len(attrs) == 0 {
			return
		}
		if c.Attributes == nil {
			c.Attributes = make(map[string]string, len(attrs))
		}
		for k, v := range attrs {
			c.Attributes[k] = v
		}
	}
}

func buildConfig(opts []InstrumentOption) InstrumentConfig {
	var cfg InstrumentConfig
	for _, o := range opts {
		if o != nil {
			o(&cfg)
		}
	}
	return cfg
}

// identity renders name and attrs as `name{k1="v1",k2="v2"}` with sorted keys.
func identity(name string, attrs map[string]string) string {
	if len(attrs) == 0 {
		return name
	}
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(name)
	b.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(k)
		b.WriteString(`="`)
		b.WriteString(attrs[k])
		b.WriteByte('"')
	}
	b.WriteByte('}')
	return b.String()
}
