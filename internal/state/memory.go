package state

import (
	"context"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Memory is an in-process Store. Single-node only; pending logins are lost
// on restart, which just means those users start over.
type Memory struct {
	mu sync.Mutex
	c  *gocache.Cache
}

// NewMemory creates an in-process state store.
func NewMemory() *Memory {
	return &Memory{
		c: gocache.New(10*time.Minute, time.Minute),
	}
}

func (m *Memory) Save(ctx context.Context, a *Auth) error {
	cp := *a
	m.mu.Lock()
	m.c.Set(a.Token, &cp, retention(a, time.Now()))
	m.mu.Unlock()
	return nil
}

func (m *Memory) Consume(ctx context.Context, token string) (*Auth, error) {
	// go-cache has no atomic get-and-delete, so the pair runs under a lock.
	m.mu.Lock()
	v, ok := m.c.Get(token)
	if ok {
		m.c.Delete(token)
	}
	m.mu.Unlock()
	if !ok {
		return nil, ErrNotFound
	}
	a := v.(*Auth)
	cp := *a
	return &cp, nil
}

func (m *Memory) Ping(ctx context.Context) error { return nil }

func (m *Memory) Close() error {
	m.mu.Lock()
	m.c.Flush()
	m.mu.Unlock()
	return nil
}
