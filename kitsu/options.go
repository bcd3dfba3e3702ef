package kitsu

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/adeilh/go-kitsu/auth"
	"github.com/adeilh/go-kitsu/internal/logging"
)

const (
	// DefaultBaseURL is Kitsu's JSON:API root.
	DefaultBaseURL = "https://kitsu.io/api/edge"
	// DefaultCacheExpiry is how long entity and search results stay cached.
	DefaultCacheExpiry = 300 * time.Second
	// DefaultUserAgent identifies the library to Kitsu.
	DefaultUserAgent = "go-kitsu (https://github.com/adeilh/go-kitsu)"

	maxPageLimit = 20
)

type Options struct {
	BaseURL            string
	Tokens             auth.TokenSource
	CacheExpiry        time.Duration
	HTTPTimeout        time.Duration
	UserAgent          string
	Logger             logging.Logger
	Registerer         prometheus.Registerer
	TracerProvider     trace.TracerProvider
	GenerationalExpiry bool
}

type Option func(*Options)

func defaultOptions() Options {
	return Options{
		BaseURL:        DefaultBaseURL,
		CacheExpiry:    DefaultCacheExpiry,
		HTTPTimeout:    10 * time.Second,
		UserAgent:      DefaultUserAgent,
		Logger:         logging.Nop(),
		TracerProvider: otel.GetTracerProvider(),
	}
}

func WithBaseURL(url string) Option {
	return func(o *Options) {
		if url != "" {
			o.BaseURL = url
		}
	}
}

// WithToken authenticates every request with a fixed bearer token.
func WithToken(token string) Option {
	return func(o *Options) {
		if token != "" {
			o.Tokens = auth.StaticToken(token)
		}
	}
}

// WithTokenSource authenticates requests with tokens from src, for example
// an auth.PasswordGrant.
func WithTokenSource(src auth.TokenSource) Option {
	return func(o *Options) { o.Tokens = src }
}

// WithCacheExpiry sets the session default expiry for entity and search
// results. Zero or a negative duration keeps them until the cache is cleared.
func WithCacheExpiry(d time.Duration) Option {
	return func(o *Options) { o.CacheExpiry = d }
}

func WithHTTPTimeout(d time.Duration) Option {
	return func(o *Options) {
		if d > 0 {
			o.HTTPTimeout = d
		}
	}
}

func WithUserAgent(ua string) Option {
	return func(o *Options) {
		if ua != "" {
			o.UserAgent = ua
		}
	}
}

func WithLogger(l logging.Logger) Option {
	return func(o *Options) {
		if l != nil {
			o.Logger = l
		}
	}
}

// WithMetrics registers the client's collectors, including those of its
// response cache, on reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(o *Options) { o.Registerer = reg }
}

func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *Options) {
		if tp != nil {
			o.TracerProvider = tp
		}
	}
}

// WithGenerationalExpiry makes a cached entry's expiry apply only to that
// entry, never to a later entry stored under the same key.
func WithGenerationalExpiry() Option {
	return func(o *Options) { o.GenerationalExpiry = true }
}
