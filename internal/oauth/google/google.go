// Package google implements the Google authorization-code flow.
//
// Google is the closest of the three providers to plain OAuth2/OIDC: form
// POST to the token endpoint, JSON token response, and a userinfo endpoint
// that honors bearer auth without extra query parameters.
package google

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/Lalman888/ai-social-backend/internal/oauth"
)

const ProviderName = "google"

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

// New creates the Google adapter.
func New(cfg oauth.Config) (*Adapter, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, fmt.Errorf("google: client_id and client_secret required")
	}
	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = []string{"openid", "email", "profile"}
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
	q.Set("scope", strings.Join(a.scopes, " "))
	q.Set("state", state)
	q.Set("include_granted_scopes", "true")
	u.RawQuery = q.Encode()
	return u.String()
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"refresh_token,omitempty"`
	IDToken      string `json:"id_token,omitempty"`
	Error        string `json:"error,omitempty"`
	ErrorDesc    string `json:"error_description,omitempty"`
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
		return nil, fmt.Errorf("%w: google token http %d", oauth.ErrProviderUnavailable, status)
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, fmt.Errorf("%w: google token response: %v", oauth.ErrMalformedResponse, err)
	}
	if status >= 400 || tr.Error != "" {
		return nil, fmt.Errorf("%w: google: %s", oauth.ErrInvalidGrant, tr.Error)
	}
	if tr.AccessToken == "" {
		return nil, fmt.Errorf("%w: google token response missing access_token", oauth.ErrMalformedResponse)
	}
	return &oauth.TokenSet{
		AccessToken:  tr.AccessToken,
		TokenType:    tr.TokenType,
		ExpiresIn:    tr.ExpiresIn,
		RefreshToken: tr.RefreshToken,
	}, nil
}

func (a *Adapter) FetchProfile(ctx context.Context, accessToken string) (*oauth.Profile, error) {
	status, body, err := oauth.Get(ctx, a.http, a.profileURL, accessToken)
	if err != nil {
		return nil, err
	}
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return nil, fmt.Errorf("%w: google userinfo http %d", oauth.ErrUnauthorized, status)
	case status >= 500:
		return nil, fmt.Errorf("%w: google userinfo http %d", oauth.ErrProviderUnavailable, status)
	case status != http.StatusOK:
		return nil, fmt.Errorf("%w: google userinfo http %d", oauth.ErrMalformedResponse, status)
	}

	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: google userinfo: %v", oauth.ErrMalformedResponse, err)
	}
	return &oauth.Profile{Provider: ProviderName, Raw: raw}, nil
}
