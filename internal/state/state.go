// Package state stores pending authorization states for in-flight login
// attempts.
//
// Backends:
//   - Memory (in-process, for development/testing)
//   - Redis (distributed, for production)
//
// Both provide atomic consume semantics: for any stored token, exactly one
// Consume call wins; every other caller observes ErrNotFound. Entries are
// retained past their logical expiry (twice the TTL) so a late callback can
// be told "expired" instead of "unknown".
package state

import (
	"context"
	"errors"
	"time"
)

// Auth is one pending login attempt, created at start and consumed exactly
// once by the matching callback.
type Auth struct {
	// Token is the opaque anti-forgery value round-tripped through the
	// provider. Unguessable: 256 bits of entropy.
	Token     string    `json:"token"`
	Provider  string    `json:"provider"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the attempt is past its logical TTL.
func (a *Auth) Expired(now time.Time) bool {
	return now.After(a.ExpiresAt)
}

// ErrNotFound is returned by Consume when the token was never stored, was
// already consumed, or has been evicted.
var ErrNotFound = errors.New("state: not found")

// Store persists pending authorization states.
type Store interface {
	// Save stores a fresh state. The backend keeps it for twice its logical
	// TTL, then evicts it.
	Save(ctx context.Context, a *Auth) error

	// Consume atomically removes and returns the state for token. A second
	// concurrent Consume for the same token gets ErrNotFound, never the
	// state; this is what enforces single-use.
	Consume(ctx context.Context, token string) (*Auth, error)

	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}

// Config selects and configures a backend.
type Config struct {
	Kind string // "memory" | "redis"

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string
}

// New creates a Store for the configured backend.
func New(cfg Config) (Store, error) {
	switch cfg.Kind {
	case "redis":
		return NewRedis(cfg)
	case "memory", "":
		return NewMemory(), nil
	default:
		return NewMemory(), nil
	}
}

// retention is how long a state outlives its logical expiry so expiry can be
// reported distinctly from replay.
func retention(a *Auth, now time.Time) time.Duration {
	ttl := a.ExpiresAt.Sub(a.CreatedAt)
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	d := a.ExpiresAt.Add(ttl).Sub(now)
	if d <= 0 {
		d = time.Second
	}
	return d
}
