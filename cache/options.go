package cache

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/adeilh/go-kitsu/internal/logging"
)

type options struct {
	generational bool
	registerer   prometheus.Registerer
	name         string
	logger       logging.Logger
}

func (o options) withDefaults() options {
	if o.name == "" {
		o.name = "default"
	}
	if o.logger == nil {
		o.logger = logging.Nop()
	}
	return o
}

// Option configures a Cache.
type Option func(*options)

// WithGenerationalExpiry ties each scheduled expiry to the entry that was
// inserted with it. Without this option an expiry removes whatever entry
// currently sits under its key, so a key removed and added again inside the
// window is dropped early by the first entry's timer.
func WithGenerationalExpiry() Option {
	return func(o *options) { o.generational = true }
}

// WithMetrics registers the cache's Prometheus collectors on reg. name is
// attached as the "cache" label so several caches can share a registry.
func WithMetrics(reg prometheus.Registerer, name string) Option {
	return func(o *options) {
		o.registerer = reg
		if name != "" {
			o.name = name
		}
	}
}

// WithLogger sets the logger used for debug records on add, clear and expiry.
func WithLogger(l logging.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}
