// Package facebook implements the Facebook Graph API login flow.
//
// Graph API quirks relative to plain OAuth2: the profile endpoint returns an
// empty object unless fields are requested explicitly, the avatar lives in a
// nested picture.data.url structure, and users can hide their email, so an
// absent email is a normal outcome.
package facebook

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/Lalman888/ai-social-backend/internal/oauth"
)

const ProviderName = "facebook"

// profileFields is the field selection requested from /me.
const profileFields = "id,name,email,picture"

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

// New creates the Facebook adapter.
func New(cfg oauth.Config) (*Adapter, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, fmt.Errorf("facebook: client_id and client_secret required")
	}
	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = []string{"email", "public_profile"}
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
	// Facebook expects comma-separated scopes.
	q.Set("scope", strings.Join(a.scopes, ","))
	q.Set("state", state)
	u.RawQuery = q.Encode()
	return u.String()
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	Error       *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    int    `json:"code"`
	} `json:"error,omitempty"`
}

func (a *Adapter) ExchangeCode(ctx context.Context, code string) (*oauth.TokenSet, error) {
	form := url.Values{}
	form.Set("code", code)
	form.Set("client_id", a.clientID)
	form.Set("client_secret", a.clientSecret)
	form.Set("redirect_uri", a.redirectURI)

	status, body, err := oauth.PostForm(ctx, a.http, a.tokenURL, form)
	if err != nil {
		return nil, err
	}
	if status >= 500 {
		return nil, fmt.Errorf("%w: facebook token http %d", oauth.ErrProviderUnavailable, status)
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, fmt.Errorf("%w: facebook token response: %v", oauth.ErrMalformedResponse, err)
	}
	if status >= 400 || tr.Error != nil {
		return nil, fmt.Errorf("%w: facebook code rejected", oauth.ErrInvalidGrant)
	}
	if tr.AccessToken == "" {
		return nil, fmt.Errorf("%w: facebook token response missing access_token", oauth.ErrMalformedResponse)
	}
	return &oauth.TokenSet{
		AccessToken: tr.AccessToken,
		TokenType:   tr.TokenType,
		ExpiresIn:   tr.ExpiresIn,
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
		// Graph reports expired tokens as 400 with an error object.
		return nil, fmt.Errorf("%w: facebook profile http %d", oauth.ErrUnauthorized, status)
	case status >= 500:
		return nil, fmt.Errorf("%w: facebook profile http %d", oauth.ErrProviderUnavailable, status)
	case status != http.StatusOK:
		return nil, fmt.Errorf("%w: facebook profile http %d", oauth.ErrMalformedResponse, status)
	}

	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: facebook profile: %v", oauth.ErrMalformedResponse, err)
	}
	return &oauth.Profile{Provider: ProviderName, Raw: raw}, nil
}
