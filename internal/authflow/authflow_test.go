package authflow

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Lalman888/ai-social-backend/internal/oauth"
	"github.com/Lalman888/ai-social-backend/internal/session"
	"github.com/Lalman888/ai-social-backend/internal/state"
	"github.com/Lalman888/ai-social-backend/internal/store/memory"
)

type fakeAdapter struct {
	name        string
	exchangeErr error
	profileErr  error
	profile     map[string]any
	providerUID string

	mu        sync.Mutex
	exchanges int
}

func (f *fakeAdapter) Name() string { return f.name }

func (f *fakeAdapter) BuildAuthorizeURL(stateToken string) string {
	v := url.Values{}
	v.Set("client_id", "client-1")
	v.Set("redirect_uri", "https://app.example.com/auth/"+f.name+"/callback")
	v.Set("state", stateToken)
	return "https://provider.example.com/authorize?" + v.Encode()
}

func (f *fakeAdapter) ExchangeCode(ctx context.Context, code string) (*oauth.TokenSet, error) {
	f.mu.Lock()
	f.exchanges++
	f.mu.Unlock()
	if f.exchangeErr != nil {
		return nil, f.exchangeErr
	}
	return &oauth.TokenSet{AccessToken: "at-" + code, TokenType: "bearer", ProviderUserID: f.providerUID}, nil
}

func (f *fakeAdapter) FetchProfile(ctx context.Context, accessToken string) (*oauth.Profile, error) {
	if f.profileErr != nil {
		return nil, f.profileErr
	}
	raw := make(map[string]any, len(f.profile))
	for k, v := range f.profile {
		raw[k] = v
	}
	return &oauth.Profile{Provider: f.name, Raw: raw}, nil
}

func newTestService(t *testing.T, adapters ...oauth.Adapter) (*service, state.Store) {
	t.Helper()
	reg := oauth.Registry{}
	for _, a := range adapters {
		reg[a.Name()] = a
	}
	states := state.NewMemory()
	t.Cleanup(func() { states.Close() })
	svc := &service{
		d: Deps{
			Providers: reg,
			States:    states,
			Users:     memory.New(),
			Sessions:  session.NewIssuer("authsvc-test", []byte("0123456789abcdef0123456789abcdef"), 30*time.Minute),
			StateTTL:  5 * time.Minute,
		},
		now: time.Now,
	}
	return svc, states
}

func googleFake() *fakeAdapter {
	return &fakeAdapter{
		name: "google",
		profile: map[string]any{
			"sub":   "g-123",
			"name":  "Ada Lovelace",
			"email": "ada@example.com",
		},
	}
}

func stateFromURL(t *testing.T, rawURL string) string {
	t.Helper()
	u, err := url.Parse(rawURL)
	if err != nil {
		t.Fatalf("parse authorize url: %v", err)
	}
	return u.Query().Get("state")
}

func TestStartLoginBuildsAuthorizeURL(t *testing.T) {
	svc, _ := newTestService(t, googleFake())

	redirect, err := svc.StartLogin(context.Background(), "google")
	if err != nil {
		t.Fatalf("start login: %v", err)
	}
	for _, want := range []string{"client_id=", "redirect_uri=", "state="} {
		if !strings.Contains(redirect, want) {
			t.Fatalf("authorize url missing %q: %s", want, redirect)
		}
	}
	if st := stateFromURL(t, redirect); len(st) < 32 {
		t.Fatalf("state too short: %q", st)
	}
}

func TestStartLoginUnknownProvider(t *testing.T) {
	svc, _ := newTestService(t, googleFake())
	if _, err := svc.StartLogin(context.Background(), "myspace"); !errors.Is(err, ErrUnknownProvider) {
		t.Fatalf("err = %v, want ErrUnknownProvider", err)
	}
}

func TestCallbackHappyPath(t *testing.T) {
	svc, _ := newTestService(t, googleFake())
	ctx := context.Background()

	redirect, err := svc.StartLogin(ctx, "google")
	if err != nil {
		t.Fatalf("start login: %v", err)
	}
	sess, err := svc.HandleCallback(ctx, "google", "code-1", stateFromURL(t, redirect))
	if err != nil {
		t.Fatalf("callback: %v", err)
	}
	if sess.TokenType != "bearer" {
		t.Fatalf("token_type = %q", sess.TokenType)
	}
	if sess.ExpiresIn <= 0 {
		t.Fatalf("expires_in = %d", sess.ExpiresIn)
	}
	uid, err := svc.d.Sessions.Verify(sess.Token)
	if err != nil {
		t.Fatalf("verify session: %v", err)
	}
	if uid != sess.UserID {
		t.Fatalf("session subject = %q, want %q", uid, sess.UserID)
	}
}

func TestCallbackStateIsSingleUse(t *testing.T) {
	svc, _ := newTestService(t, googleFake())
	ctx := context.Background()

	redirect, _ := svc.StartLogin(ctx, "google")
	st := stateFromURL(t, redirect)

	if _, err := svc.HandleCallback(ctx, "google", "code-1", st); err != nil {
		t.Fatalf("first callback: %v", err)
	}
	if _, err := svc.HandleCallback(ctx, "google", "code-2", st); !errors.Is(err, ErrStateMismatch) {
		t.Fatalf("replay err = %v, want ErrStateMismatch", err)
	}
}

func TestCallbackConcurrentReplaySingleSession(t *testing.T) {
	svc, _ := newTestService(t, googleFake())
	ctx := context.Background()

	redirect, _ := svc.StartLogin(ctx, "google")
	st := stateFromURL(t, redirect)

	const n = 16
	var sessions int64
	var mu sync.Mutex
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if _, err := svc.HandleCallback(ctx, "google", "code", st); err == nil {
				mu.Lock()
				sessions++
				mu.Unlock()
			}
		}()
	}
	close(start)
	wg.Wait()
	if sessions != 1 {
		t.Fatalf("sessions issued = %d, want exactly 1", sessions)
	}
}

func TestCallbackUnknownState(t *testing.T) {
	svc, _ := newTestService(t, googleFake())
	if _, err := svc.HandleCallback(context.Background(), "google", "code", "forged"); !errors.Is(err, ErrStateMismatch) {
		t.Fatalf("err = %v, want ErrStateMismatch", err)
	}
}

func TestCallbackMissingState(t *testing.T) {
	svc, _ := newTestService(t, googleFake())
	if _, err := svc.HandleCallback(context.Background(), "google", "code", ""); !errors.Is(err, ErrStateMismatch) {
		t.Fatalf("err = %v, want ErrStateMismatch", err)
	}
}

func TestCallbackExpiredState(t *testing.T) {
	svc, _ := newTestService(t, googleFake())
	ctx := context.Background()

	redirect, _ := svc.StartLogin(ctx, "google")
	st := stateFromURL(t, redirect)

	svc.now = func() time.Time { return time.Now().Add(6 * time.Minute) }
	if _, err := svc.HandleCallback(ctx, "google", "code", st); !errors.Is(err, ErrStateExpired) {
		t.Fatalf("err = %v, want ErrStateExpired", err)
	}
	// Expiry consumed it too.
	svc.now = time.Now
	if _, err := svc.HandleCallback(ctx, "google", "code", st); !errors.Is(err, ErrStateMismatch) {
		t.Fatalf("after expiry err = %v, want ErrStateMismatch", err)
	}
}

func TestCallbackProviderMismatchConsumesState(t *testing.T) {
	fb := &fakeAdapter{name: "facebook", profile: map[string]any{"id": "fb-1", "name": "Ada"}}
	svc, _ := newTestService(t, googleFake(), fb)
	ctx := context.Background()

	redirect, _ := svc.StartLogin(ctx, "google")
	st := stateFromURL(t, redirect)

	if _, err := svc.HandleCallback(ctx, "facebook", "code", st); !errors.Is(err, ErrStateMismatch) {
		t.Fatalf("cross-provider err = %v, want ErrStateMismatch", err)
	}
	if _, err := svc.HandleCallback(ctx, "google", "code", st); !errors.Is(err, ErrStateMismatch) {
		t.Fatalf("state survived cross-provider use: err = %v", err)
	}
}

func TestCallbackInvalidGrantLeavesStateConsumed(t *testing.T) {
	g := googleFake()
	g.exchangeErr = oauth.ErrInvalidGrant
	svc, _ := newTestService(t, g)
	ctx := context.Background()

	redirect, _ := svc.StartLogin(ctx, "google")
	st := stateFromURL(t, redirect)

	if _, err := svc.HandleCallback(ctx, "google", "bad-code", st); !errors.Is(err, oauth.ErrInvalidGrant) {
		t.Fatalf("err = %v, want ErrInvalidGrant", err)
	}
	if g.exchanges != 1 {
		t.Fatalf("exchanges = %d, want 1 (no retries)", g.exchanges)
	}
	// The failed exchange must not re-arm the state.
	g.exchangeErr = nil
	if _, err := svc.HandleCallback(ctx, "google", "good-code", st); !errors.Is(err, ErrStateMismatch) {
		t.Fatalf("after invalid grant err = %v, want ErrStateMismatch", err)
	}
}

func TestCallbackProviderUnavailable(t *testing.T) {
	g := googleFake()
	g.exchangeErr = oauth.ErrProviderUnavailable
	svc, _ := newTestService(t, g)
	ctx := context.Background()

	redirect, _ := svc.StartLogin(ctx, "google")
	if _, err := svc.HandleCallback(ctx, "google", "code", stateFromURL(t, redirect)); !errors.Is(err, oauth.ErrProviderUnavailable) {
		t.Fatalf("err = %v, want ErrProviderUnavailable", err)
	}
}

func TestCallbackInstagramNilEmail(t *testing.T) {
	ig := &fakeAdapter{
		name:        "instagram",
		profile:     map[string]any{"id": "ig-42", "username": "adalovelace"},
		providerUID: "ig-42",
	}
	svc, _ := newTestService(t, ig)
	ctx := context.Background()

	redirect, _ := svc.StartLogin(ctx, "instagram")
	sess, err := svc.HandleCallback(ctx, "instagram", "code", stateFromURL(t, redirect))
	if err != nil {
		t.Fatalf("callback: %v", err)
	}
	me, err := svc.Authenticate(ctx, sess.Token)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if me.User.Email != nil {
		t.Fatalf("instagram user email = %q, want nil", *me.User.Email)
	}
	if me.User.DisplayName == nil || *me.User.DisplayName != "adalovelace" {
		t.Fatalf("display name = %v, want adalovelace", me.User.DisplayName)
	}
}

func TestCallbackSameAccountSameUser(t *testing.T) {
	svc, _ := newTestService(t, googleFake())
	ctx := context.Background()

	r1, _ := svc.StartLogin(ctx, "google")
	s1, err := svc.HandleCallback(ctx, "google", "c1", stateFromURL(t, r1))
	if err != nil {
		t.Fatalf("first login: %v", err)
	}
	r2, _ := svc.StartLogin(ctx, "google")
	s2, err := svc.HandleCallback(ctx, "google", "c2", stateFromURL(t, r2))
	if err != nil {
		t.Fatalf("second login: %v", err)
	}
	if s1.UserID != s2.UserID {
		t.Fatalf("same external account produced two users: %q vs %q", s1.UserID, s2.UserID)
	}
}

func TestAuthenticateRejectsTamperedToken(t *testing.T) {
	svc, _ := newTestService(t, googleFake())
	ctx := context.Background()

	redirect, _ := svc.StartLogin(ctx, "google")
	sess, err := svc.HandleCallback(ctx, "google", "code", stateFromURL(t, redirect))
	if err != nil {
		t.Fatalf("callback: %v", err)
	}
	tampered := sess.Token[:len(sess.Token)-2] + "xx"
	if _, err := svc.Authenticate(ctx, tampered); !errors.Is(err, session.ErrSignatureInvalid) {
		t.Fatalf("err = %v, want ErrSignatureInvalid", err)
	}
}
