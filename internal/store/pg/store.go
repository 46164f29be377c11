// Package pg is the PostgreSQL Repository, backed by a pgxpool.Pool.
package pg

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Lalman888/ai-social-backend/internal/store/core"
)

type Store struct{ pool *pgxpool.Pool }

// Tuning configures pool limits. Zero values keep pgxpool defaults.
type Tuning struct {
	MaxConns        int
	MinConns        int
	ConnMaxLifetime time.Duration
}

func New(ctx context.Context, dsn string, t Tuning) (*Store, error) {
	pcfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("pg: parse dsn: %w", err)
	}
	if t.MaxConns > 0 {
		pcfg.MaxConns = int32(t.MaxConns)
	}
	if t.MinConns > 0 {
		pcfg.MinConns = int32(t.MinConns)
	}
	if t.ConnMaxLifetime > 0 {
		pcfg.MaxConnLifetime = t.ConnMaxLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, fmt.Errorf("pg: new pool: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Pool exposes the underlying pool for metrics and migrations.
func (s *Store) Pool() *pgxpool.Pool { return s.pool }

func (s *Store) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }

func (s *Store) Close() {
	if s != nil && s.pool != nil {
		s.pool.Close()
	}
}

const identityCols = `id, user_id, provider, provider_user_id, email, created_at, last_login_at`
const userCols = `id, email, display_name, picture, created_at, updated_at, disabled_at`

func scanIdentity(row pgx.Row) (*core.Identity, error) {
	var i core.Identity
	if err := row.Scan(&i.ID, &i.UserID, &i.Provider, &i.ProviderUserID, &i.Email, &i.CreatedAt, &i.LastLoginAt); err != nil {
		return nil, err
	}
	return &i, nil
}

func scanUser(row pgx.Row) (*core.User, error) {
	var u core.User
	if err := row.Scan(&u.ID, &u.Email, &u.DisplayName, &u.Picture, &u.CreatedAt, &u.UpdatedAt, &u.DisabledAt); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Store) UpsertIdentity(ctx context.Context, in core.UpsertIdentityInput) (*core.User, *core.Identity, error) {
	if in.Provider == "" || in.ProviderUserID == "" {
		return nil, nil, core.ErrInvalid
	}

	// A concurrent first login for the same external account makes the
	// identity insert conflict; the whole transaction is retried once and
	// the second attempt lands on the refresh path.
	for attempt := 0; ; attempt++ {
		u, i, err := s.upsertIdentityOnce(ctx, in)
		if err == nil {
			return u, i, nil
		}
		if !errors.Is(err, core.ErrConflict) || attempt > 0 {
			return nil, nil, err
		}
	}
}

func (s *Store) upsertIdentityOnce(ctx context.Context, in core.UpsertIdentityInput) (*core.User, *core.Identity, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, nil, fmt.Errorf("pg: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	u, i, err := upsertIdentityTx(ctx, tx, in)
	if err != nil {
		return nil, nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, nil, fmt.Errorf("pg: commit: %w", err)
	}
	return u, i, nil
}

func upsertIdentityTx(ctx context.Context, tx pgx.Tx, in core.UpsertIdentityInput) (*core.User, *core.Identity, error) {
	const qFind = `SELECT ` + identityCols + ` FROM identity
		WHERE provider = $1 AND provider_user_id = $2 FOR UPDATE`

	ident, err := scanIdentity(tx.QueryRow(ctx, qFind, in.Provider, in.ProviderUserID))
	switch {
	case err == nil:
		return refreshIdentityTx(ctx, tx, ident, in)
	case errors.Is(err, pgx.ErrNoRows):
		return createIdentityTx(ctx, tx, in)
	default:
		return nil, nil, fmt.Errorf("pg: find identity: %w", err)
	}
}

func refreshIdentityTx(ctx context.Context, tx pgx.Tx, ident *core.Identity, in core.UpsertIdentityInput) (*core.User, *core.Identity, error) {
	const qTouch = `UPDATE identity SET email = $2, last_login_at = now()
		WHERE id = $1 RETURNING ` + identityCols
	ident, err := scanIdentity(tx.QueryRow(ctx, qTouch, ident.ID, in.Email))
	if err != nil {
		return nil, nil, fmt.Errorf("pg: touch identity: %w", err)
	}

	const qUser = `UPDATE app_user SET
			email = COALESCE(email, $2),
			display_name = COALESCE($3, display_name),
			picture = COALESCE($4, picture),
			updated_at = now()
		WHERE id = $1 RETURNING ` + userCols
	u, err := scanUser(tx.QueryRow(ctx, qUser, ident.UserID, in.Email, in.DisplayName, in.Picture))
	if err != nil {
		return nil, nil, fmt.Errorf("pg: refresh user: %w", err)
	}
	return u, ident, nil
}

func createIdentityTx(ctx context.Context, tx pgx.Tx, in core.UpsertIdentityInput) (*core.User, *core.Identity, error) {
	const qUser = `INSERT INTO app_user (email, display_name, picture)
		VALUES ($1, $2, $3) RETURNING ` + userCols
	u, err := scanUser(tx.QueryRow(ctx, qUser, in.Email, in.DisplayName, in.Picture))
	if err != nil {
		return nil, nil, fmt.Errorf("pg: create user: %w", err)
	}

	const qIdent = `INSERT INTO identity (user_id, provider, provider_user_id, email)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (provider, provider_user_id) DO NOTHING
		RETURNING ` + identityCols
	ident, err := scanIdentity(tx.QueryRow(ctx, qIdent, u.ID, in.Provider, in.ProviderUserID, in.Email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, core.ErrConflict
		}
		return nil, nil, fmt.Errorf("pg: create identity: %w", err)
	}
	return u, ident, nil
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*core.User, error) {
	const q = `SELECT ` + userCols + ` FROM app_user WHERE id = $1`
	u, err := scanUser(s.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, core.ErrNotFound
		}
		return nil, fmt.Errorf("pg: get user: %w", err)
	}
	return u, nil
}

func (s *Store) ListIdentities(ctx context.Context, userID string) ([]core.Identity, error) {
	const q = `SELECT ` + identityCols + ` FROM identity
		WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := s.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("pg: list identities: %w", err)
	}
	defer rows.Close()

	var out []core.Identity
	for rows.Next() {
		var i core.Identity
		if err := rows.Scan(&i.ID, &i.UserID, &i.Provider, &i.ProviderUserID, &i.Email, &i.CreatedAt, &i.LastLoginAt); err != nil {
			return nil, fmt.Errorf("pg: scan identity: %w", err)
		}
		out = append(out, i)
	}
	return out, rows.Err()
}
