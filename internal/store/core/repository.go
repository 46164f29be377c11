package core

import "context"

// UpsertIdentityInput carries the normalized profile used to create or
// refresh an identity link. Email, DisplayName and Picture stay nil when the
// provider did not supply them.
type UpsertIdentityInput struct {
	Provider       string
	ProviderUserID string
	Email          *string
	DisplayName    *string
	Picture        *string
}

// Repository persists users and their linked provider identities.
type Repository interface {
	Ping(ctx context.Context) error
	Close()

	// UpsertIdentity finds the identity for (provider, provider_user_id) and
	// refreshes its profile data, or creates a new user plus identity when
	// none exists. Idempotent: repeated logins for the same external account
	// always land on the same user.
	UpsertIdentity(ctx context.Context, in UpsertIdentityInput) (*User, *Identity, error)

	// GetUserByID returns the user or ErrNotFound.
	GetUserByID(ctx context.Context, id string) (*User, error)

	// ListIdentities returns the identities linked to a user, newest first.
	ListIdentities(ctx context.Context, userID string) ([]Identity, error)
}
