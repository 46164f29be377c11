// Package session mints and verifies the broker's session credential.
//
// Tokens are self-contained: subject, issue and expiry times plus an HMAC
// signature over them, so verification is pure recomputation with the
// server-held secret. No server-side session store exists and there is no
// revocation; an issued token stays valid until it expires.
package session

import (
	"errors"
	"fmt"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

// Verification failures. HMAC comparison inside the JWT library is
// constant-time, so a wrong signature and an almost-right signature are
// indistinguishable by timing.
var (
	ErrSignatureInvalid = errors.New("session: signature invalid")
	ErrExpired          = errors.New("session: token expired")
	ErrMalformed        = errors.New("session: token malformed")
)

// Token is an issued session credential.
type Token struct {
	Value     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// ExpiresIn returns the remaining lifetime in whole seconds, for the
// token_type/expires_in response shape.
func (t Token) ExpiresIn(now time.Time) int64 {
	d := t.ExpiresAt.Sub(now)
	if d < 0 {
		return 0
	}
	return int64(d / time.Second)
}

// Issuer signs session tokens with a single symmetric secret (HS256).
type Issuer struct {
	iss    string
	secret []byte
	ttl    time.Duration

	// now is swappable for tests.
	now func() time.Time
}

// NewIssuer creates an Issuer. ttl is the configured session lifetime.
func NewIssuer(iss string, secret []byte, ttl time.Duration) *Issuer {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Issuer{
		iss:    iss,
		secret: secret,
		ttl:    ttl,
		now:    time.Now,
	}
}

// WithClock overrides the time source. Test hook.
func (i *Issuer) WithClock(now func() time.Time) *Issuer {
	i.now = now
	return i
}

// Issue mints a token for the given internal user id. CPU-bound signing
// only; no external state is touched.
func (i *Issuer) Issue(userID string) (Token, error) {
	now := i.now().UTC().Truncate(time.Second)
	exp := now.Add(i.ttl)

	claims := jwtv5.MapClaims{
		"iss": i.iss,
		"sub": userID,
		"iat": now.Unix(),
		"nbf": now.Unix(),
		"exp": exp.Unix(),
	}
	tk := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims)
	tk.Header["typ"] = "JWT"

	signed, err := tk.SignedString(i.secret)
	if err != nil {
		return Token{}, fmt.Errorf("session: sign: %w", err)
	}
	return Token{Value: signed, IssuedAt: now, ExpiresAt: exp}, nil
}

// Verify recomputes the signature and validates the time claims, returning
// the subject user id. It never queries external state.
func (i *Issuer) Verify(token string) (string, error) {
	parser := jwtv5.NewParser(
		jwtv5.WithValidMethods([]string{"HS256"}),
		jwtv5.WithIssuer(i.iss),
		jwtv5.WithTimeFunc(i.now),
		jwtv5.WithExpirationRequired(),
	)
	tk, err := parser.Parse(token, func(*jwtv5.Token) (any, error) {
		return i.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwtv5.ErrTokenMalformed):
			return "", ErrMalformed
		case errors.Is(err, jwtv5.ErrTokenExpired):
			return "", ErrExpired
		case errors.Is(err, jwtv5.ErrTokenSignatureInvalid):
			return "", ErrSignatureInvalid
		default:
			// Wrong issuer, nbf in the future, unexpected alg: none of these
			// deserve a distinct client-visible kind.
			return "", ErrSignatureInvalid
		}
	}
	claims, ok := tk.Claims.(jwtv5.MapClaims)
	if !ok {
		return "", ErrMalformed
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", ErrMalformed
	}
	return sub, nil
}

// TTL returns the configured session lifetime.
func (i *Issuer) TTL() time.Duration { return i.ttl }
