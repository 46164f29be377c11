// Package store selects a Repository driver from configuration.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/Lalman888/ai-social-backend/internal/store/core"
	"github.com/Lalman888/ai-social-backend/internal/store/memory"
	"github.com/Lalman888/ai-social-backend/internal/store/pg"
)

// Config selects and configures a Repository driver.
type Config struct {
	Kind string // "memory" | "postgres"
	DSN  string

	MaxConns        int
	MinConns        int
	ConnMaxLifetime time.Duration
}

// New creates the configured Repository.
func New(ctx context.Context, cfg Config) (core.Repository, error) {
	switch cfg.Kind {
	case "postgres":
		return pg.New(ctx, cfg.DSN, pg.Tuning{
			MaxConns:        cfg.MaxConns,
			MinConns:        cfg.MinConns,
			ConnMaxLifetime: cfg.ConnMaxLifetime,
		})
	case "memory", "":
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("store: unknown driver %q", cfg.Kind)
	}
}
