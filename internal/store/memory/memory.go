// Package memory is an in-process Repository for development and tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Lalman888/ai-social-backend/internal/store/core"
)

type Store struct {
	mu         sync.RWMutex
	users      map[string]*core.User
	identities map[string]*core.Identity // keyed by provider + "\x00" + provider_user_id
}

func New() *Store {
	return &Store{
		users:      make(map[string]*core.User),
		identities: make(map[string]*core.Identity),
	}
}

func identityKey(provider, providerUserID string) string {
	return provider + "\x00" + providerUserID
}

func (s *Store) Ping(ctx context.Context) error { return nil }

func (s *Store) Close() {}

func (s *Store) UpsertIdentity(ctx context.Context, in core.UpsertIdentityInput) (*core.User, *core.Identity, error) {
	if in.Provider == "" || in.ProviderUserID == "" {
		return nil, nil, core.ErrInvalid
	}
	now := time.Now().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()

	key := identityKey(in.Provider, in.ProviderUserID)
	if id, ok := s.identities[key]; ok {
		u := s.users[id.UserID]
		id.Email = in.Email
		id.LastLoginAt = now
		if in.Email != nil && u.Email == nil {
			u.Email = in.Email
		}
		if in.DisplayName != nil {
			u.DisplayName = in.DisplayName
		}
		if in.Picture != nil {
			u.Picture = in.Picture
		}
		u.UpdatedAt = now
		uc, ic := *u, *id
		return &uc, &ic, nil
	}

	u := &core.User{
		ID:          uuid.NewString(),
		Email:       in.Email,
		DisplayName: in.DisplayName,
		Picture:     in.Picture,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	id := &core.Identity{
		ID:             uuid.NewString(),
		UserID:         u.ID,
		Provider:       in.Provider,
		ProviderUserID: in.ProviderUserID,
		Email:          in.Email,
		CreatedAt:      now,
		LastLoginAt:    now,
	}
	s.users[u.ID] = u
	s.identities[key] = id
	uc, ic := *u, *id
	return &uc, &ic, nil
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	uc := *u
	return &uc, nil
}

func (s *Store) ListIdentities(ctx context.Context, userID string) ([]core.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []core.Identity
	for _, id := range s.identities {
		if id.UserID == userID {
			out = append(out, *id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
