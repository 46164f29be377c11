package session

import (
	"errors"
	"strings"
	"testing"
	"time"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func TestIssueVerifyRoundTrip(t *testing.T) {
	i := NewIssuer("authsvc", testSecret, 30*time.Minute)

	tok, err := i.Issue("user-123")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	sub, err := i.Verify(tok.Value)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if sub != "user-123" {
		t.Fatalf("subject = %q, want user-123", sub)
	}
}

func TestExpiresIn(t *testing.T) {
	now := time.Now()
	i := NewIssuer("authsvc", testSecret, 30*time.Minute).WithClock(func() time.Time { return now })

	tok, err := i.Issue("u")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	got := tok.ExpiresIn(now)
	if got < 29*60 || got > 30*60 {
		t.Fatalf("expires_in = %d, want ~1800", got)
	}
}

func TestVerifyExpired(t *testing.T) {
	start := time.Now()
	i := NewIssuer("authsvc", testSecret, time.Minute).WithClock(func() time.Time { return start })

	tok, err := i.Issue("u")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	i.WithClock(func() time.Time { return start.Add(2 * time.Minute) })
	if _, err := i.Verify(tok.Value); !errors.Is(err, ErrExpired) {
		t.Fatalf("err = %v, want ErrExpired", err)
	}
}

func TestVerifyTamperedSignature(t *testing.T) {
	i := NewIssuer("authsvc", testSecret, time.Minute)
	tok, err := i.Issue("u")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	parts := strings.Split(tok.Value, ".")
	if len(parts) != 3 {
		t.Fatalf("token parts = %d", len(parts))
	}
	// Flip one character of the signature.
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)
	if _, err := i.Verify(tampered); !errors.Is(err, ErrSignatureInvalid) {
		t.Fatalf("err = %v, want ErrSignatureInvalid", err)
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	a := NewIssuer("authsvc", testSecret, time.Minute)
	b := NewIssuer("authsvc", []byte("another-secret-another-secret-32"), time.Minute)

	tok, err := a.Issue("u")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := b.Verify(tok.Value); !errors.Is(err, ErrSignatureInvalid) {
		t.Fatalf("err = %v, want ErrSignatureInvalid", err)
	}
}

func TestVerifyWrongIssuer(t *testing.T) {
	a := NewIssuer("service-a", testSecret, time.Minute)
	b := NewIssuer("service-b", testSecret, time.Minute)

	tok, err := a.Issue("u")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := b.Verify(tok.Value); !errors.Is(err, ErrSignatureInvalid) {
		t.Fatalf("err = %v, want ErrSignatureInvalid", err)
	}
}

func TestVerifyGarbage(t *testing.T) {
	i := NewIssuer("authsvc", testSecret, time.Minute)
	for _, tok := range []string{"", "not-a-jwt", "a.b", "a.b.c.d"} {
		if _, err := i.Verify(tok); !errors.Is(err, ErrMalformed) {
			t.Fatalf("Verify(%q) err = %v, want ErrMalformed", tok, err)
		}
	}
}

func TestVerifyMissingSubject(t *testing.T) {
	i := NewIssuer("authsvc", testSecret, time.Minute)
	tok, err := i.Issue("")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := i.Verify(tok.Value); !errors.Is(err, ErrMalformed) {
		t.Fatalf("err = %v, want ErrMalformed", err)
	}
}
