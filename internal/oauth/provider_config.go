package oauth

import "time"

// Config carries everything one adapter needs. Loaded once at process start
// and treated as immutable; adapters copy what they use.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	AuthorizeURL string
	TokenURL     string
	ProfileURL   string
	Scopes       []string
	Timeout      time.Duration
}
