// Package config loads the service configuration from a YAML file.
//
// Secrets are referenced with ${ENV_VAR} placeholders and expanded at load
// time, so the file itself can be committed while client secrets and the
// session signing key stay in the environment (.env in dev). The resulting
// Config is immutable: it is built once in main and passed by value/pointer
// into the components that need it.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Provider holds the OAuth2 client settings for one external provider.
type Provider struct {
	ClientID        string   `yaml:"client_id"`
	ClientSecret    string   `yaml:"client_secret"`
	RedirectURI     string   `yaml:"redirect_uri"`
	AuthorizeURL    string   `yaml:"authorize_url"`
	TokenURL        string   `yaml:"token_url"`
	ProfileURL      string   `yaml:"profile_url"`
	Scopes          []string `yaml:"scopes"`
	TimeoutDuration string   `yaml:"timeout"`
}

// Enabled reports whether the provider has credentials configured.
func (p Provider) Enabled() bool {
	return p.ClientID != "" && p.ClientSecret != ""
}

// Timeout returns the per-call HTTP timeout for this provider.
func (p Provider) Timeout() time.Duration {
	if d, err := time.ParseDuration(p.TimeoutDuration); err == nil && d > 0 {
		return d
	}
	return 10 * time.Second
}

type Config struct {
	App struct {
		// dev | prod
		Env      string `yaml:"env"`
		LogLevel string `yaml:"log_level"`
	} `yaml:"app"`

	Server struct {
		Addr    string `yaml:"addr"`
		BaseURL string `yaml:"base_url"`
	} `yaml:"server"`

	Storage struct {
		// memory | postgres
		Driver   string `yaml:"driver"`
		DSN      string `yaml:"dsn"`
		Postgres struct {
			MaxOpenConns    int    `yaml:"max_open_conns"`
			MinIdleConns    int    `yaml:"min_idle_conns"`
			ConnMaxLifetime string `yaml:"conn_max_lifetime"`
		} `yaml:"postgres"`
	} `yaml:"storage"`

	State struct {
		// memory | redis
		Kind string `yaml:"kind"`
		TTL  string `yaml:"ttl"`

		Redis struct {
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix"`
		} `yaml:"redis"`
	} `yaml:"state"`

	Session struct {
		Issuer string `yaml:"issuer"`
		Secret string `yaml:"secret"`
		TTL    string `yaml:"ttl"`
	} `yaml:"session"`

	Providers struct {
		Google    Provider `yaml:"google"`
		Facebook  Provider `yaml:"facebook"`
		Instagram Provider `yaml:"instagram"`
	} `yaml:"providers"`

	Rate struct {
		Enabled bool `yaml:"enabled"`
		Login   struct {
			Limit  int    `yaml:"limit"`
			Window string `yaml:"window"`
		} `yaml:"login"`
	} `yaml:"rate"`

	AI struct {
		BaseURL string `yaml:"base_url"`
		APIKey  string `yaml:"api_key"`
		Model   string `yaml:"model"`
		Timeout string `yaml:"timeout"`
	} `yaml:"ai"`
}

// StateTTL returns the authorization-state lifetime.
func (c *Config) StateTTL() time.Duration {
	if d, err := time.ParseDuration(c.State.TTL); err == nil && d > 0 {
		return d
	}
	return 5 * time.Minute
}

// SessionTTL returns the session token lifetime.
func (c *Config) SessionTTL() time.Duration {
	if d, err := time.ParseDuration(c.Session.TTL); err == nil && d > 0 {
		return d
	}
	return 30 * time.Minute
}

// Load reads, expands and validates the configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(b)
}

// Parse builds a Config from raw YAML bytes. Split out of Load for tests.
func Parse(b []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(b))), &c); err != nil {
		return nil, err
	}

	// sane defaults
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.BaseURL == "" {
		c.Server.BaseURL = "http://localhost:8080"
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "memory"
	}
	if c.State.Kind == "" {
		c.State.Kind = "memory"
	}
	if c.State.TTL == "" {
		c.State.TTL = "5m"
	}
	if c.State.Redis.Prefix == "" {
		c.State.Redis.Prefix = "authstate"
	}
	if c.Session.Issuer == "" {
		c.Session.Issuer = strings.TrimRight(c.Server.BaseURL, "/")
	}
	if c.Session.TTL == "" {
		c.Session.TTL = "30m"
	}
	if c.Rate.Login.Limit == 0 {
		c.Rate.Login.Limit = 10
	}
	if c.Rate.Login.Window == "" {
		c.Rate.Login.Window = "1m"
	}
	if c.AI.Model == "" {
		c.AI.Model = "gpt-3.5-turbo"
	}
	if c.AI.Timeout == "" {
		c.AI.Timeout = "30s"
	}

	applyProviderDefaults(&c)

	if c.Session.Secret == "" {
		return nil, fmt.Errorf("config: session.secret is required")
	}
	if len(c.Session.Secret) < 32 {
		return nil, fmt.Errorf("config: session.secret must be at least 32 bytes")
	}
	return &c, nil
}

// applyProviderDefaults fills the well-known endpoints and scope sets so the
// file only has to carry credentials. Endpoints stay overridable for tests
// and for API version bumps.
func applyProviderDefaults(c *Config) {
	g := &c.Providers.Google
	if g.AuthorizeURL == "" {
		g.AuthorizeURL = "https://accounts.google.com/o/oauth2/v2/auth"
	}
	if g.TokenURL == "" {
		g.TokenURL = "https://oauth2.googleapis.com/token"
	}
	if g.ProfileURL == "" {
		g.ProfileURL = "https://openidconnect.googleapis.com/v1/userinfo"
	}
	if len(g.Scopes) == 0 {
		g.Scopes = []string{"openid", "email", "profile"}
	}

	f := &c.Providers.Facebook
	if f.AuthorizeURL == "" {
		f.AuthorizeURL = "https://www.facebook.com/dialog/oauth"
	}
	if f.TokenURL == "" {
		f.TokenURL = "https://graph.facebook.com/oauth/access_token"
	}
	if f.ProfileURL == "" {
		f.ProfileURL = "https://graph.facebook.com/me"
	}
	if len(f.Scopes) == 0 {
		f.Scopes = []string{"email", "public_profile"}
	}

	i := &c.Providers.Instagram
	if i.AuthorizeURL == "" {
		i.AuthorizeURL = "https://api.instagram.com/oauth/authorize"
	}
	if i.TokenURL == "" {
		i.TokenURL = "https://api.instagram.com/oauth/access_token"
	}
	if i.ProfileURL == "" {
		i.ProfileURL = "https://graph.instagram.com/me"
	}
	if len(i.Scopes) == 0 {
		i.Scopes = []string{"user_profile"}
	}
}
