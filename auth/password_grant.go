package auth

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/adeilh/go-kitsu/cache"
	"github.com/adeilh/go-kitsu/httpx"
	"github.com/adeilh/go-kitsu/internal/logging"
)

// DefaultTokenURL is Kitsu's OAuth2 base; tokens are issued at DefaultTokenURL + "/token".
const DefaultTokenURL = "https://kitsu.io/api/oauth"

// PasswordGrant exchanges a username and password for an access token and
// keeps it until shortly before Kitsu says it expires.
type PasswordGrant struct {
	client       *httpx.Client
	username     string
	password     string
	clientID     string
	clientSecret string
	skew         time.Duration

	tokens *cache.Cache[string]
	mu     sync.Mutex
	log    logging.Logger
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
	Scope        string `json:"scope"`
	CreatedAt    int64  `json:"created_at"`
}

// NewPasswordGrant builds a grant for the given credentials.
func NewPasswordGrant(username, password string, opts ...GrantOption) (*PasswordGrant, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrNoCredentials
	}
	cfg := grantOptions{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	cfg = cfg.withDefaults()

	return &PasswordGrant{
		client: httpx.NewClient(
			httpx.WithBaseURL(cfg.tokenURL),
			httpx.WithClientTimeout(cfg.timeout),
			httpx.WithHeaders(map[string]string{"Accept": "application/json"}),
			httpx.WithClientLogger(cfg.logger),
		),
		username:     username,
		password:     password,
		clientID:     cfg.clientID,
		clientSecret: cfg.clientSecret,
		skew:         cfg.skew,
		tokens:       cache.New[string](cache.WithGenerationalExpiry(), cache.WithLogger(cfg.logger), cache.WithMetrics(cfg.registerer, "tokens")),
		log:          cfg.logger,
	}, nil
}

// Token returns the memoized access token, requesting a new one when none
// is cached.
func (g *PasswordGrant) Token(ctx context.Context) (string, error) {
	key := g.key()
	if res := g.tokens.Get(key); res != nil {
		return res.Value, nil
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if res := g.tokens.Get(key); res != nil {
		return res.Value, nil
	}

	form := map[string]string{
		"grant_type": "password",
		"username":   g.username,
		"password":   g.password,
	}
	if g.clientID != "" {
		form["client_id"] = g.clientID
	}
	if g.clientSecret != "" {
		form["client_secret"] = g.clientSecret
	}

	var out tokenResponse
	if _, err := g.client.Post(ctx, "/token", nil, &out, httpx.WithFormData(form)); err != nil {
		return "", fmt.Errorf("auth: password grant for %q: %w", g.username, err)
	}
	if out.AccessToken == "" {
		return "", ErrEmptyToken
	}

	ttl := time.Duration(out.ExpiresIn)*time.Second - g.skew
	if ttl <= 0 {
		// Too close to expiry to be worth keeping.
		g.log.Warn("token expires within skew, not caching", "expires_in", out.ExpiresIn)
		return out.AccessToken, nil
	}
	g.tokens.Add(key, out.AccessToken, ttl)
	g.log.Debug("issued access token", "user", g.username, "ttl", ttl)
	return out.AccessToken, nil
}

// Invalidate forgets the memoized token so the next call to Token fetches a fresh one.
func (g *PasswordGrant) Invalidate() {
	g.tokens.Remove(g.key())
}

// Close stops the pending expiry of the memoized token.
func (g *PasswordGrant) Close() {
	g.tokens.Close()
}

func (g *PasswordGrant) key() string { return cache.Key("token", g.username) }
