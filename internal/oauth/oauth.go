// Package oauth defines the contract every external login provider
// implements and the typed failures the rest of the service relies on.
//
// The three supported providers differ in token-exchange payload shape,
// profile endpoint shape and field availability. Everything
// provider-specific lives behind the Adapter interface; adding a provider
// means adding one implementation package, never touching the flow logic.
package oauth

import (
	"context"
	"errors"
)

// Adapter is the capability set one provider exposes.
// Implementations return identity facts only; they never create users,
// issue sessions or make auth decisions.
type Adapter interface {
	// Name returns the provider identifier ("google", "facebook", "instagram").
	Name() string

	// BuildAuthorizeURL returns the provider authorization URL carrying the
	// given anti-forgery state. Deterministic for a fixed state; all
	// parameters are URL-encoded. The client secret never appears here.
	BuildAuthorizeURL(state string) string

	// ExchangeCode trades an authorization code for a token set.
	// Fails with ErrInvalidGrant when the provider rejects the code,
	// ErrProviderUnavailable on network errors or 5xx, and
	// ErrMalformedResponse when the payload does not parse.
	ExchangeCode(ctx context.Context, code string) (*TokenSet, error)

	// FetchProfile fetches the raw identity payload for an access token.
	// Fails with ErrUnauthorized when the token is invalid or expired,
	// ErrProviderUnavailable on network errors or 5xx, and
	// ErrMalformedResponse when the payload does not parse.
	FetchProfile(ctx context.Context, accessToken string) (*Profile, error)
}

// TokenSet is the normalized result of a code exchange.
type TokenSet struct {
	AccessToken  string
	TokenType    string
	ExpiresIn    int
	RefreshToken string

	// ProviderUserID is set by providers whose token response already names
	// the user (Instagram Basic Display). Empty otherwise.
	ProviderUserID string
}

// Profile is the raw, provider-shaped identity payload. Field extraction
// into a canonical identity happens in the identity package; adapters only
// guarantee the payload parsed as a JSON object.
type Profile struct {
	Provider string
	Raw      map[string]any
}

// Typed adapter failures. Wrapped with context by implementations; callers
// match with errors.Is.
var (
	// ErrInvalidGrant: the code is expired, already used, or was issued for
	// a different redirect URI.
	ErrInvalidGrant = errors.New("oauth: invalid grant")

	// ErrProviderUnavailable: network failure or provider 5xx.
	ErrProviderUnavailable = errors.New("oauth: provider unavailable")

	// ErrMalformedResponse: the provider payload could not be parsed into
	// the expected shape.
	ErrMalformedResponse = errors.New("oauth: malformed provider response")

	// ErrUnauthorized: the provider access token was rejected.
	ErrUnauthorized = errors.New("oauth: provider token unauthorized")
)

// Registry maps provider names to adapters. The flow logic looks up by the
// path segment; unknown names are simply absent.
type Registry map[string]Adapter

// Lookup returns the adapter for name, if registered.
func (r Registry) Lookup(name string) (Adapter, bool) {
	a, ok := r[name]
	return a, ok
}

// Names returns the registered provider names.
func (r Registry) Names() []string {
	out := make([]string, 0, len(r))
	for name := range r {
		out = append(out, name)
	}
	return out
}
