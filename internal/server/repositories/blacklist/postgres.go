// Package blacklist provides a PostgreSQL-backed repository for the token
// revocation ledger, keyed by jti.
package blacklist

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/saasbackend/authcore/internal/common"
	"github.com/saasbackend/authcore/internal/dbx"
	"github.com/saasbackend/authcore/internal/server/models"
)

// PostgresRepository implements Repository over dbx.DBTX (satisfied by
// *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Upsert records jti as revoked until expiresAt, replacing any previous
// entry for the same jti.
func (r *PostgresRepository) Upsert(ctx context.Context, jti string, expiresAt time.Time) error {
	query := `
		INSERT INTO token_blacklist (jti, expires_at)
		VALUES ($1, $2)
		ON CONFLICT (jti) DO UPDATE SET expires_at = EXCLUDED.expires_at
	`
	if _, err := r.db.ExecContext(ctx, query, jti, expiresAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Find returns the ledger entry for jti.
// If no entry exists, it returns common.ErrorNotFound.
func (r *PostgresRepository) Find(ctx context.Context, jti string) (*models.BlacklistEntry, error) {
	query := `
		SELECT jti, expires_at
		FROM token_blacklist
		WHERE jti = $1
	`
	entry := &models.BlacklistEntry{}
	if err := r.db.QueryRowContext(ctx, query, jti).Scan(&entry.JTI, &entry.ExpiresAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return entry, nil
}

// Delete removes the entry for jti. Deleting an absent entry is not an error.
func (r *PostgresRepository) Delete(ctx context.Context, jti string) error {
	query := `
		DELETE FROM token_blacklist
		WHERE jti = $1
	`
	if _, err := r.db.ExecContext(ctx, query, jti); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
