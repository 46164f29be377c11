// Package instagram implements the Instagram Basic Display login flow.
//
// Basic Display is the odd one out: the token response carries the numeric
// user_id alongside the access token, the profile endpoint returns no data
// at all without an explicit fields selection, and there is no email in any
// payload. Callers must treat the missing email as expected.
package instagram

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/Lalman888/ai-social-backend/internal/oauth"
)

const ProviderName = "instagram"

// profileFields is required; Basic Display returns an empty object without it.
const profileFields = "id,username"

type Adapter struct {
	clientID     string
	clientSecret string
	redirectURI  string
	authorizeURL string
	tokenURL     string
	profileURL   string
	scopes       []string

	http *http.Client
}

// New creates the Instagram adapter.
func New(cfg oauth.Config) (*Adapter, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, fmt.Errorf("instagram: client_id and client_secret required")
	}
	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = []string{"user_profile"}
	}
	return &Adapter{
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		redirectURI:  cfg.RedirectURI,
		authorizeURL: cfg.AuthorizeURL,
		tokenURL:     cfg.TokenURL,
		profileURL:   cfg.ProfileURL,
		scopes:       scopes,
		http:         oauth.NewHTTPClient(cfg.Timeout),
	}, nil
}

func (a *Adapter) Name() string { return ProviderName }

func (a *Adapter) BuildAuthorizeURL(state string) string {
	u, _ := url.Parse(a.authorizeURL)
	q := u.Query()
	q.Set("response_type", "code")
	q.Set("client_id", a.clientID)
	q.Set("redirect_uri", a.redirectURI)
	// Basic Display expects comma-separated scopes.
	q.Set("scope", strings.Join(a.scopes, ","))
	q.Set("state", state)
	u.RawQuery = q.Encode()
	return u.String()
}

type tokenResponse struct {
	AccessToken string          `json:"access_token"`
	UserID      json.Number     `json:"user_id"`
	ErrorType   string          `json:"error_type,omitempty"`
	ErrorMsg    json.RawMessage `json:"error_message,omitempty"`
}

func (a *Adapter) ExchangeCode(ctx context.Context, code string) (*oauth.TokenSet, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("client_id", a.clientID)
	form.Set("client_secret", a.clientSecret)
	form.Set("redirect_uri", a.redirectURI)

	status, body, err := oauth.PostForm(ctx, a.http, a.tokenURL, form)
	if err != nil {
		return nil, err
	}
	if status >= 500 {
		return nil, fmt.Errorf("%w: instagram token http %d", oauth.ErrProviderUnavailable, status)
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, fmt.Errorf("%w: instagram token response: %v", oauth.ErrMalformedResponse, err)
	}
	if status >= 400 || tr.ErrorType != "" {
		return nil, fmt.Errorf("%w: instagram code rejected", oauth.ErrInvalidGrant)
	}
	if tr.AccessToken == "" {
		return nil, fmt.Errorf("%w: instagram token response missing access_token", oauth.ErrMalformedResponse)
	}
	return &oauth.TokenSet{
		AccessToken:    tr.AccessToken,
		TokenType:      "bearer",
		ProviderUserID: tr.UserID.String(),
	}, nil
}

func (a *Adapter) FetchProfile(ctx context.Context, accessToken string) (*oauth.Profile, error) {
	u, _ := url.Parse(a.profileURL)
	q := u.Query()
	q.Set("fields", profileFields)
	q.Set("access_token", accessToken)
	u.RawQuery = q.Encode()

	status, body, err := oauth.Get(ctx, a.http, u.String(), "")
	if err != nil {
		return nil, err
	}
	switch {
	case status == http.StatusUnauthorized || status == http.StatusBadRequest:
		return nil, fmt.Errorf("%w: instagram profile http %d", oauth.ErrUnauthorized, status)
	case status >= 500:
		return nil, fmt.Errorf("%w: instagram profile http %d", oauth.ErrProviderUnavailable, status)
	case status != http.StatusOK:
		return nil, fmt.Errorf("%w: instagram profile http %d", oauth.ErrMalformedResponse, status)
	}

	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: instagram profile: %v", oauth.ErrMalformedResponse, err)
	}
	return &oauth.Profile{Provider: ProviderName, Raw: raw}, nil
}
