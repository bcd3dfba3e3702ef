// Package config loads the kitsu CLI configuration from an optional TOML
// file and the environment.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Duration reads TOML strings such as "90s" or "5m".
type Duration time.Duration

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(b)))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// AuthConfig holds credentials for Kitsu's OAuth password grant.
type AuthConfig struct {
	Username     string `toml:"username"`
	Password     string `toml:"password"`
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	TokenURL     string `toml:"token_url"`
}

// Enabled reports whether a password grant is configured.
func (a AuthConfig) Enabled() bool { return a.Username != "" || a.Password != "" }

// Config mirrors the kitsu.toml schema.
type Config struct {
	BaseURL     string     `toml:"base_url"`
	Token       string     `toml:"token"`
	UserAgent   string     `toml:"user_agent"`
	CacheExpiry Duration   `toml:"cache_expiry"`
	Timeout     Duration   `toml:"timeout"`
	Verbose     bool       `toml:"verbose"`
	JSONLogs    bool       `toml:"json_logs"`
	Auth        AuthConfig `toml:"auth"`
}

// Defaults match the kitsu package defaults.
func Defaults() Config {
	return Config{
		BaseURL:     "https://kitsu.io/api/edge",
		CacheExpiry: Duration(300 * time.Second),
		Timeout:     Duration(10 * time.Second),
	}
}

// LoadOptions tunes config loading behavior.
type LoadOptions struct {
	// Strict turns unknown keys into an error instead of a warning.
	Strict bool
	// Lookup reads environment variables; nil means os.LookupEnv.
	Lookup func(string) (string, bool)
}

// Result wraps a loaded config alongside any non-fatal warnings.
type Result struct {
	Config   Config
	Warnings []string
}

// Load starts from Defaults, overlays the TOML file at path when path is
// not empty and finally applies KITSU_* environment overrides.
func Load(path string, opts LoadOptions) (Result, error) {
	res := Result{Config: Defaults()}

	if path != "" {
		data, err := os.ReadFile(filepath.Clean(path))
		if err != nil {
			return res, fmt.Errorf("read %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, &res.Config); err != nil {
			return res, fmt.Errorf("%s: %w", path, err)
		}

		unknown, err := collectUnknownKeys(data)
		if err != nil {
			return res, fmt.Errorf("%s: %w", path, err)
		}
		if len(unknown) > 0 {
			message := fmt.Sprintf("%s: unknown configuration keys: %s", path, strings.Join(unknown, ", "))
			if opts.Strict {
				return res, errors.New(message)
			}
			res.Warnings = append(res.Warnings, message)
		}
	}

	lookup := opts.Lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if err := applyEnv(&res.Config, lookup); err != nil {
		return res, err
	}
	if err := res.Config.Validate(); err != nil {
		if path != "" {
			return res, fmt.Errorf("%s: %w", path, err)
		}
		return res, err
	}
	return res, nil
}

// Validate checks the fields the client cannot default on its own.
func (c Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("base_url %q is not an absolute URL", c.BaseURL)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	if c.Auth.Enabled() && (c.Auth.Username == "" || c.Auth.Password == "") {
		return fmt.Errorf("auth needs both username and password")
	}
	if c.Auth.Enabled() && c.Token != "" {
		return fmt.Errorf("token and auth are mutually exclusive")
	}
	return nil
}

var envOverrides = []struct {
	name  string
	apply func(*Config, string) error
}{
	{"KITSU_BASE_URL", func(c *Config, v string) error { c.BaseURL = v; return nil }},
	{"KITSU_TOKEN", func(c *Config, v string) error { c.Token = v; return nil }},
	{"KITSU_USERNAME", func(c *Config, v string) error { c.Auth.Username = v; return nil }},
	{"KITSU_PASSWORD", func(c *Config, v string) error { c.Auth.Password = v; return nil }},
	{"KITSU_CACHE_EXPIRY", func(c *Config, v string) error { return c.CacheExpiry.UnmarshalText([]byte(v)) }},
	{"KITSU_TIMEOUT", func(c *Config, v string) error { return c.Timeout.UnmarshalText([]byte(v)) }},
}

func applyEnv(c *Config, lookup func(string) (string, bool)) error {
	for _, o := range envOverrides {
		v, ok := lookup(o.name)
		if !ok || strings.TrimSpace(v) == "" {
			continue
		}
		if err := o.apply(c, strings.TrimSpace(v)); err != nil {
			return fmt.Errorf("%s: %w", o.name, err)
		}
	}
	return nil
}

func collectUnknownKeys(data []byte) ([]string, error) {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	known := map[string]struct{}{
		"base_url":     {},
		"token":        {},
		"user_agent":   {},
		"cache_expiry": {},
		"timeout":      {},
		"verbose":      {},
		"json_logs":    {},
		"auth":         {},
	}
	knownAuth := map[string]struct{}{
		"username":      {},
		"password":      {},
		"client_id":     {},
		"client_secret": {},
		"token_url":     {},
	}

	unknown := make([]string, 0)
	for key, value := range raw {
		if _, ok := known[key]; !ok {
			unknown = append(unknown, key)
			continue
		}
		if key != "auth" {
			continue
		}
		section, ok := value.(map[string]any)
		if !ok {
			continue
		}
		for sub := range section {
			if _, ok := knownAuth[sub]; !ok {
				unknown = append(unknown, "auth."+sub)
			}
		}
	}
	slices.Sort(unknown)
	return unknown, nil
}
