// Package identity defines the provider-independent representation of "who
// logged in" and the pure mapping from raw provider payloads into it.
package identity

// Canonical is the broker's canonical identity record.
//
// (Provider, ExternalID) is the stable external key. Email is advisory only
// and must never be used for identity resolution: some providers (Instagram)
// never supply one, so a nil Email is a valid, expected state.
type Canonical struct {
	Provider    string  `json:"provider"`
	ExternalID  string  `json:"external_id"`
	Email       *string `json:"email,omitempty"`
	DisplayName *string `json:"display_name,omitempty"`
	Picture     *string `json:"picture,omitempty"`
}

// Key returns the (provider, external_id) pair as a single lookup key.
func (c Canonical) Key() string {
	return c.Provider + ":" + c.ExternalID
}
