// Package authflow orchestrates the browser-facing login flow: anti-forgery
// state issuance, the provider round-trips, identity normalization, account
// upsert and session issuance.
package authflow

import (
	"context"
	"errors"
	"time"

	"github.com/Lalman888/ai-social-backend/internal/oauth"
	"github.com/Lalman888/ai-social-backend/internal/session"
	"github.com/Lalman888/ai-social-backend/internal/state"
	"github.com/Lalman888/ai-social-backend/internal/store/core"
)

var (
	// ErrUnknownProvider means the path parameter named no registered adapter.
	ErrUnknownProvider = errors.New("authflow: unknown provider")

	// ErrStateMismatch means the callback state is absent, unknown, already
	// consumed, or bound to a different provider.
	ErrStateMismatch = errors.New("authflow: state mismatch")

	// ErrStateExpired means the state was genuine but its TTL had elapsed.
	ErrStateExpired = errors.New("authflow: state expired")
)

// Session is the successful callback result.
type Session struct {
	Token     string `json:"session_token"`
	TokenType string `json:"token_type"`
	ExpiresIn int64  `json:"expires_in"`
	UserID    string `json:"-"`
}

// Me is the authenticated view of an account, for the profile endpoint.
type Me struct {
	User       *core.User      `json:"user"`
	Identities []core.Identity `json:"identities"`
}

// Service drives the full authorization flow.
type Service interface {
	// StartLogin creates and stores a single-use state and returns the
	// provider URL the browser should be redirected to.
	StartLogin(ctx context.Context, provider string) (string, error)

	// HandleCallback consumes the state, exchanges the code, fetches and
	// normalizes the profile, upserts the account and issues a session.
	// The state is consumed before any provider call: a failed exchange does
	// not make the state reusable.
	HandleCallback(ctx context.Context, provider, code, stateToken string) (*Session, error)

	// Authenticate verifies a bearer session token and loads its account.
	Authenticate(ctx context.Context, token string) (*Me, error)
}

// Deps wires the orchestrator's collaborators.
type Deps struct {
	Providers oauth.Registry
	States    state.Store
	Users     core.Repository
	Sessions  *session.Issuer
	StateTTL  time.Duration
}

// New creates the Service. StateTTL defaults to 5 minutes.
func New(d Deps) Service {
	if d.StateTTL <= 0 {
		d.StateTTL = 5 * time.Minute
	}
	return &service{d: d, now: time.Now}
}
