package tokens

import (
	"strings"
	"testing"
)

func TestGenerateOpaqueTokenLengthAndUniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		tok, err := GenerateOpaqueToken(32)
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		// 32 bytes base64url without padding is 43 chars.
		if len(tok) != 43 {
			t.Fatalf("len = %d, want 43", len(tok))
		}
		if strings.ContainsAny(tok, "+/=") {
			t.Fatalf("token not url-safe: %q", tok)
		}
		if seen[tok] {
			t.Fatalf("duplicate token: %q", tok)
		}
		seen[tok] = true
	}
}

func TestSHA256Base64URLDeterministic(t *testing.T) {
	a := SHA256Base64URL("hello")
	b := SHA256Base64URL("hello")
	if a != b {
		t.Fatalf("not deterministic: %q vs %q", a, b)
	}
	if a == SHA256Base64URL("hello2") {
		t.Fatal("different inputs collided")
	}
	if len(a) != 43 {
		t.Fatalf("len = %d, want 43", len(a))
	}
}
