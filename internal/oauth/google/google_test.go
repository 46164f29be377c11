package google

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/Lalman888/ai-social-backend/internal/oauth"
)

func newAdapter(t *testing.T, tokenURL, profileURL string) *Adapter {
	t.Helper()
	a, err := New(oauth.Config{
		ClientID:     "client-1",
		ClientSecret: "secret-1",
		RedirectURI:  "https://app.example.com/auth/google/callback",
		AuthorizeURL: "https://accounts.google.com/o/oauth2/v2/auth",
		TokenURL:     tokenURL,
		ProfileURL:   profileURL,
	})
	if err != nil {
		t.Fatalf("new adapter: %v", err)
	}
	return a
}

func TestNewRequiresCredentials(t *testing.T) {
	if _, err := New(oauth.Config{ClientID: "only-id"}); err == nil {
		t.Fatal("expected error without client_secret")
	}
}

func TestBuildAuthorizeURL(t *testing.T) {
	a := newAdapter(t, "http://token", "http://profile")
	raw := a.BuildAuthorizeURL("state-xyz")
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	q := u.Query()
	if q.Get("response_type") != "code" {
		t.Fatalf("response_type = %q", q.Get("response_type"))
	}
	if q.Get("client_id") != "client-1" {
		t.Fatalf("client_id = %q", q.Get("client_id"))
	}
	if q.Get("redirect_uri") == "" || q.Get("state") != "state-xyz" {
		t.Fatalf("query = %v", q)
	}
	// Google wants space-separated scopes.
	if !strings.Contains(q.Get("scope"), " ") {
		t.Fatalf("scope = %q, want space-separated", q.Get("scope"))
	}
}

func TestExchangeCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if r.PostForm.Get("grant_type") != "authorization_code" {
			t.Errorf("grant_type = %q", r.PostForm.Get("grant_type"))
		}
		if r.PostForm.Get("code") != "code-1" {
			t.Errorf("code = %q", r.PostForm.Get("code"))
		}
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "at-1", "token_type": "Bearer", "expires_in": 3599,
		})
	}))
	defer srv.Close()

	a := newAdapter(t, srv.URL, "http://unused")
	ts, err := a.ExchangeCode(context.Background(), "code-1")
	if err != nil {
		t.Fatalf("exchange: %v", err)
	}
	if ts.AccessToken != "at-1" || ts.ExpiresIn != 3599 {
		t.Fatalf("token set = %+v", ts)
	}
}

func TestExchangeCodeInvalidGrant(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{"error": "invalid_grant"})
	}))
	defer srv.Close()

	a := newAdapter(t, srv.URL, "http://unused")
	if _, err := a.ExchangeCode(context.Background(), "bad"); !errors.Is(err, oauth.ErrInvalidGrant) {
		t.Fatalf("err = %v, want ErrInvalidGrant", err)
	}
}

func TestExchangeCodeServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	a := newAdapter(t, srv.URL, "http://unused")
	if _, err := a.ExchangeCode(context.Background(), "c"); !errors.Is(err, oauth.ErrProviderUnavailable) {
		t.Fatalf("err = %v, want ErrProviderUnavailable", err)
	}
}

func TestExchangeCodeUnreachable(t *testing.T) {
	a := newAdapter(t, "http://127.0.0.1:1", "http://unused")
	if _, err := a.ExchangeCode(context.Background(), "c"); !errors.Is(err, oauth.ErrProviderUnavailable) {
		t.Fatalf("err = %v, want ErrProviderUnavailable", err)
	}
}

func TestExchangeCodeGarbageBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer srv.Close()

	a := newAdapter(t, srv.URL, "http://unused")
	if _, err := a.ExchangeCode(context.Background(), "c"); !errors.Is(err, oauth.ErrMalformedResponse) {
		t.Fatalf("err = %v, want ErrMalformedResponse", err)
	}
}

func TestExchangeCodeMissingAccessToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"token_type": "Bearer"})
	}))
	defer srv.Close()

	a := newAdapter(t, srv.URL, "http://unused")
	if _, err := a.ExchangeCode(context.Background(), "c"); !errors.Is(err, oauth.ErrMalformedResponse) {
		t.Fatalf("err = %v, want ErrMalformedResponse", err)
	}
}

func TestFetchProfile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer at-1" {
			t.Errorf("authorization = %q", got)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"sub": "g-123", "name": "Ada", "email": "ada@example.com",
		})
	}))
	defer srv.Close()

	a := newAdapter(t, "http://unused", srv.URL)
	p, err := a.FetchProfile(context.Background(), "at-1")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if p.Raw["sub"] != "g-123" {
		t.Fatalf("profile = %+v", p.Raw)
	}
}

func TestFetchProfileUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	a := newAdapter(t, "http://unused", srv.URL)
	if _, err := a.FetchProfile(context.Background(), "stale"); !errors.Is(err, oauth.ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
}
