package cache

import "github.com/prometheus/client_golang/prometheus"

type metrics struct {
	hits        prometheus.Counter
	misses      prometheus.Counter
	adds        prometheus.Counter
	duplicates  prometheus.Counter
	removals    prometheus.Counter
	expirations prometheus.Counter
	entries     prometheus.Gauge
}

// newMetrics returns nil when reg is nil; every method tolerates a nil receiver.
func newMetrics(reg prometheus.Registerer, name string) *metrics {
	if reg == nil {
		return nil
	}
	labels := prometheus.Labels{"cache": name}
	counter := func(n, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "kitsu",
			Subsystem:   "cache",
			Name:        n,
			Help:        help,
			ConstLabels: labels,
		})
	}
	m := &metrics{
		hits:        counter("hits_total", "Lookups that found an entry."),
		misses:      counter("misses_total", "Lookups that found nothing."),
		adds:        counter("adds_total", "Entries inserted."),
		duplicates:  counter("duplicate_adds_total", "Adds that returned an existing entry."),
		removals:    counter("removals_total", "Entries deleted by Remove or Clear."),
		expirations: counter("expirations_total", "Entries deleted by their expiry timer."),
		entries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "kitsu",
			Subsystem:   "cache",
			Name:        "entries",
			Help:        "Entries currently stored.",
			ConstLabels: labels,
		}),
	}
	reg.MustRegister(m.hits, m.misses, m.adds, m.duplicates, m.removals, m.expirations, m.entries)
	return m
}

func (m *metrics) hit() {
	if m != nil {
		m.hits.Inc()
	}
}

func (m *metrics) miss() {
	if m != nil {
		m.misses.Inc()
	}
}

func (m *metrics) duplicate() {
	if m != nil {
		m.duplicates.Inc()
	}
}

func (m *metrics) added(n int) {
	if m != nil {
		m.adds.Inc()
		m.entries.Set(float64(n))
	}
}

func (m *metrics) removed(n int) {
	if m != nil {
		m.removals.Inc()
		m.entries.Set(float64(n))
	}
}

func (m *metrics) cleared(dropped int) {
	if m != nil {
		m.removals.Add(float64(dropped))
		m.entries.Set(0)
	}
}

func (m *metrics) expired(n int) {
	if m != nil {
		m.expirations.Inc()
		m.entries.Set(float64(n))
	}
}
