package auth

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/adeilh/go-kitsu/internal/logging"
)

type grantOptions struct {
	tokenURL     string
	clientID     string
	clientSecret string
	skew         time.Duration
	timeout      time.Duration
	logger       logging.Logger
	registerer   prometheus.Registerer
}

func (o grantOptions) withDefaults() grantOptions {
	if o.tokenURL == "" {
		o.tokenURL = DefaultTokenURL
	}
	if o.skew <= 0 {
		o.skew = time.Minute
	}
	if o.timeout <= 0 {
		o.timeout = 10 * time.Second
	}
	if o.logger == nil {
		o.logger = logging.Nop()
	}
	return o
}

// GrantOption configures a PasswordGrant.
type GrantOption func(*grantOptions)

func WithTokenURL(url string) GrantOption {
	return func(o *grantOptions) { o.tokenURL = url }
}

// WithClientCredentials sends an OAuth client id and secret with the grant.
func WithClientCredentials(id, secret string) GrantOption {
	return func(o *grantOptions) {
		o.clientID = id
		o.clientSecret = secret
	}
}

// WithExpirySkew sets how long before the reported expiry the token is dropped.
func WithExpirySkew(d time.Duration) GrantOption {
	return func(o *grantOptions) { o.skew = d }
}

func WithGrantTimeout(d time.Duration) GrantOption {
	return func(o *grantOptions) { o.timeout = d }
}

func WithGrantLogger(l logging.Logger) GrantOption {
	return func(o *grantOptions) { o.logger = l }
}

// WithGrantMetrics registers the token cache's collectors on reg.
func WithGrantMetrics(reg prometheus.Registerer) GrantOption {
	return func(o *grantOptions) { o.registerer = reg }
}
