package identity

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/Lalman888/ai-social-backend/internal/oauth"
)

// ErrNoExternalID is returned when a provider payload carries no usable
// subject identifier. That is always a provider contract violation, never a
// normal state.
var ErrNoExternalID = errors.New("identity: profile has no external id")

// Normalize maps a raw provider profile into a canonical identity.
//
// Pure: no I/O, no side effects. Field extraction is provider-specific:
//
//	google    sub + name + email (flat userinfo claims)
//	facebook  id + name + email? + picture.data.url (nested)
//	instagram id + username, never an email
//
// An email the provider did not supply stays nil; it is never fabricated.
func Normalize(provider string, p *oauth.Profile) (Canonical, error) {
	if p == nil || p.Raw == nil {
		return Canonical{}, ErrNoExternalID
	}
	switch provider {
	case "google":
		return normalizeGoogle(p.Raw)
	case "facebook":
		return normalizeFacebook(p.Raw)
	case "instagram":
		return normalizeInstagram(p.Raw)
	default:
		return Canonical{}, fmt.Errorf("identity: unknown provider %q", provider)
	}
}

func normalizeGoogle(raw map[string]any) (Canonical, error) {
	sub := rawString(raw, "sub")
	if sub == "" {
		return Canonical{}, fmt.Errorf("%w: google sub missing", ErrNoExternalID)
	}
	return Canonical{
		Provider:    "google",
		ExternalID:  sub,
		Email:       optString(rawString(raw, "email")),
		DisplayName: optString(rawString(raw, "name")),
		Picture:     optString(rawString(raw, "picture")),
	}, nil
}

func normalizeFacebook(raw map[string]any) (Canonical, error) {
	id := rawString(raw, "id")
	if id == "" {
		return Canonical{}, fmt.Errorf("%w: facebook id missing", ErrNoExternalID)
	}
	c := Canonical{
		Provider:    "facebook",
		ExternalID:  id,
		Email:       optString(rawString(raw, "email")),
		DisplayName: optString(rawString(raw, "name")),
	}
	// picture.data.url nesting is specific to the Graph API.
	if pic, ok := raw["picture"].(map[string]any); ok {
		if data, ok := pic["data"].(map[string]any); ok {
			c.Picture = optString(rawString(data, "url"))
		}
	}
	return c, nil
}

func normalizeInstagram(raw map[string]any) (Canonical, error) {
	id := rawString(raw, "id")
	if id == "" {
		return Canonical{}, fmt.Errorf("%w: instagram id missing", ErrNoExternalID)
	}
	// Basic Display supplies username instead of a full name and no email at
	// all. Email stays nil on purpose.
	return Canonical{
		Provider:    "instagram",
		ExternalID:  id,
		DisplayName: optString(rawString(raw, "username")),
	}, nil
}

// rawString extracts a string field, tolerating the numeric IDs some Graph
// payloads produce.
func rawString(m map[string]any, key string) string {
	switch v := m[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatInt(int64(v), 10)
	default:
		return ""
	}
}

func optString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
