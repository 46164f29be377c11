package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Lalman888/ai-social-backend/internal/security/tokens"
)

// Redis is a Store backed by a Redis server. Safe across replicas: GETDEL
// guarantees a single winner for every token no matter which instance
// handles the callback.
type Redis struct {
	rdb    *redis.Client
	prefix string
}

// NewRedis connects to the configured Redis server.
func NewRedis(cfg Config) (*Redis, error) {
	if cfg.RedisAddr == "" {
		return nil, errors.New("state: redis addr is required")
	}
	prefix := cfg.RedisPrefix
	if prefix == "" {
		prefix = "authstate"
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	return &Redis{rdb: rdb, prefix: prefix}, nil
}

// key hashes the token so the raw value never lands in Redis.
func (r *Redis) key(token string) string {
	return fmt.Sprintf("%s:%s", r.prefix, tokens.SHA256Base64URL(token))
}

func (r *Redis) Save(ctx context.Context, a *Auth) error {
	b, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("state: marshal: %w", err)
	}
	if err := r.rdb.Set(ctx, r.key(a.Token), b, retention(a, time.Now())).Err(); err != nil {
		return fmt.Errorf("state: redis set: %w", err)
	}
	return nil
}

func (r *Redis) Consume(ctx context.Context, token string) (*Auth, error) {
	b, err := r.rdb.GetDel(ctx, r.key(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("state: redis getdel: %w", err)
	}
	var a Auth
	if err := json.Unmarshal(b, &a); err != nil {
		return nil, fmt.Errorf("state: unmarshal: %w", err)
	}
	return &a, nil
}

func (r *Redis) Ping(ctx context.Context) error {
	return r.rdb.Ping(ctx).Err()
}

func (r *Redis) Close() error {
	return r.rdb.Close()
}
