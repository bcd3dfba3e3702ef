// Package kitsu is a client for the Kitsu anime and manga catalog API.
//
// Every lookup goes through a per-client response cache: the first request
// for a key hits the network and later ones are served from memory until the
// entry expires. Concurrent misses on the same key share a single request.
package kitsu

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"github.com/adeilh/go-kitsu/auth"
	"github.com/adeilh/go-kitsu/cache"
	"github.com/adeilh/go-kitsu/httpx"
	"github.com/adeilh/go-kitsu/internal/logging"
)

const tracerName = "github.com/adeilh/go-kitsu/kitsu"

// Client is safe for concurrent use. Call Close when done to stop pending
// cache expiries.
type Client struct {
	http   *httpx.Client
	cache  *cache.Cache[any]
	expiry time.Duration
	// fetchTimeout bounds a detached fetch: a token grant plus one request.
	fetchTimeout time.Duration
	tokens       auth.TokenSource
	group        singleflight.Group
	tracer       trace.Tracer
	log          logging.Logger
	requests     *prometheus.CounterVec
}

func New(opts ...Option) *Client {
	cfg := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	log := cfg.Logger.With("component", "kitsu")
	cacheOpts := []cache.Option{
		cache.WithLogger(log.With("component", "cache")),
		cache.WithMetrics(cfg.Registerer, "responses"),
	}
	if cfg.GenerationalExpiry {
		cacheOpts = append(cacheOpts, cache.WithGenerationalExpiry())
	}

	c := &Client{
		http: httpx.NewClient(
			httpx.WithBaseURL(cfg.BaseURL),
			httpx.WithClientTimeout(cfg.HTTPTimeout),
			httpx.WithUserAgent(cfg.UserAgent),
			httpx.WithClientLogger(log),
		),
		cache:        cache.New[any](cacheOpts...),
		expiry:       cfg.CacheExpiry,
		fetchTimeout: 2 * cfg.HTTPTimeout,
		tokens:       cfg.Tokens,
		tracer:       cfg.TracerProvider.Tracer(tracerName),
		log:          log,
	}
	if cfg.Registerer != nil {
		c.requests = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kitsu",
			Subsystem: "client",
			Name:      "requests_total",
			Help:      "Requests sent to the Kitsu API by outcome.",
		}, []string{"outcome"})
		cfg.Registerer.MustRegister(c.requests)
	}
	return c
}

// Close stops every pending cache expiry. Cached entries stay readable.
func (c *Client) Close() {
	c.cache.Close()
}

// ClearCache drops every cached response.
func (c *Client) ClearCache() {
	c.cache.Clear()
}

// CacheLen reports how many responses are cached.
func (c *Client) CacheLen() int { return c.cache.Len() }

// memoize returns the value cached under key or, on a miss, runs fetch once
// per key across concurrent callers and caches its result for expiry. The
// fetch is detached from the caller that started it, so one caller giving
// up does not fail the others; each caller still returns as soon as its own
// ctx is done.
func memoize[T any](ctx context.Context, c *Client, key string, expiry time.Duration, fetch func(context.Context) (T, error)) (T, error) {
	var zero T
	if res := c.cache.Get(key); res != nil {
		if v, ok := res.Value.(T); ok {
			return v, nil
		}
		return zero, fmt.Errorf("kitsu: cached %s holds %T", key, res.Value)
	}

	ch := c.group.DoChan(key, func() (any, error) {
		if res := c.cache.Get(key); res != nil {
			return res.Value, nil
		}
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.fetchTimeout)
		defer cancel()
		fctx, span := c.tracer.Start(fctx, "kitsu.fetch", trace.WithAttributes(attribute.String("kitsu.cache.key", key)))
		defer span.End()

		val, err := fetch(fctx)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		return c.cache.Add(key, val, expiry).Value, nil
	})

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return zero, r.Err
		}
		out, ok := r.Val.(T)
		if !ok {
			return zero, fmt.Errorf("kitsu: cached %s holds %T", key, r.Val)
		}
		return out, nil
	}
}

// get performs one API request and decodes the JSON:API document.
func (c *Client) get(ctx context.Context, path string, query map[string]string) (*document, error) {
	opts := []httpx.RequestOption{httpx.WithQuery(query)}
	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return nil, err
		}
		opts = append(opts, httpx.WithBearer(token))
	}

	trace.SpanFromContext(ctx).SetAttributes(attribute.String("kitsu.path", path))

	var doc document
	_, err := c.http.Get(ctx, path, &doc, opts...)
	c.count(err)
	if err != nil {
		if errors.Is(err, httpx.ErrUnauthorized) {
			if inv, ok := c.tokens.(auth.Invalidator); ok {
				inv.Invalidate()
			}
		}
		if errors.Is(err, httpx.ErrNotFound) {
			return nil, fmt.Errorf("%w: %w", ErrNotFound, err)
		}
		c.log.Warn("kitsu request failed", "path", path, "err", err)
		return nil, err
	}
	return &doc, nil
}

func (c *Client) count(err error) {
	if c.requests == nil {
		return
	}
	outcome := "ok"
	switch {
	case err == nil:
	case errors.Is(err, httpx.ErrNotFound):
		outcome = "not_found"
	case errors.Is(err, httpx.ErrUnauthorized):
		outcome = "unauthorized"
	case errors.Is(err, httpx.ErrRateLimited):
		outcome = "rate_limited"
	default:
		outcome = "error"
	}
	c.requests.WithLabelValues(outcome).Inc()
}

func clampLimit(limit int) int {
	if limit < 1 {
		return 1
	}
	if limit > maxPageLimit {
		return maxPageLimit
	}
	return limit
}
