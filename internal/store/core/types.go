package core

import "time"

// User is a local account. One user can hold several linked identities, one
// per provider. Email is optional: Instagram never supplies one.
type User struct {
	ID          string     `json:"id"`
	Email       *string    `json:"email,omitempty"`
	DisplayName *string    `json:"display_name,omitempty"`
	Picture     *string    `json:"picture,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DisabledAt  *time.Time `json:"disabled_at,omitempty"`
}

// Identity links a user to one external provider account. (Provider,
// ProviderUserID) is unique across the whole store.
type Identity struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	Provider       string    `json:"provider"`
	ProviderUserID string    `json:"provider_user_id"`
	Email          *string   `json:"email,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	LastLoginAt    time.Time `json:"last_login_at"`
}
