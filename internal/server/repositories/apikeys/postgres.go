// Package apikeys provides a PostgreSQL-backed repository for per-user
// API keys. The schema keeps one key per user; writes are last-write-wins.
package apikeys

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

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

// Upsert stores the key for userID, replacing any previous key.
func (r *PostgresRepository) Upsert(ctx context.Context, userID string, key string) error {
	query := `
		INSERT INTO api_keys (user_id, api_key)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET api_key = EXCLUDED.api_key, created_at = now()
	`
	if _, err := r.db.ExecContext(ctx, query, userID, key); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Get returns the key row for userID.
// If the user has no key, it returns common.ErrorNotFound.
func (r *PostgresRepository) Get(ctx context.Context, userID string) (*models.APIKey, error) {
	query := `
		SELECT user_id, api_key
		FROM api_keys
		WHERE user_id = $1
	`
	key := &models.APIKey{}
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&key.UserID, &key.Key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return key, nil
}

// Delete removes the key for userID in a single statement and reports prior
// existence: zero affected rows yield common.ErrorNotFound, so there is no
// exists-check/delete window.
func (r *PostgresRepository) Delete(ctx context.Context, userID string) error {
	query := `
		DELETE FROM api_keys
		WHERE user_id = $1
	`
	res, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return common.ErrorNotFound
	}
	return nil
}
