package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/saasbackend/authcore/internal/common"
	"github.com/saasbackend/authcore/internal/dbx"
	"github.com/saasbackend/authcore/internal/server/auth"
	"github.com/saasbackend/authcore/internal/server/config"
	"github.com/saasbackend/authcore/internal/server/models"
	"github.com/saasbackend/authcore/internal/server/repositories/repomanager"
)

// RevocationStatus is the three-valued outcome of a ledger check. It is
// returned as data rather than surfaced through an error, so callers decide
// the control flow themselves.
type RevocationStatus int

const (
	// StatusNotRevoked: no ledger entry, or an entry whose expires_at has
	// already passed.
	StatusNotRevoked RevocationStatus = iota
	// StatusRevoked: a ledger entry with expires_at in the future.
	StatusRevoked
	// StatusUnknown: the ledger could not be consulted; accompanied by an error.
	StatusUnknown
)

// TokenService owns the revocation ledger and resolves bearer tokens back to
// user identities. Every protected request re-verifies the signature and
// re-queries the ledger; there is no in-memory cache, so a revocation on one
// node is honored by any node reading the shared store.
type TokenService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	jwtSecret   []byte
}

// NewTokenService constructs a TokenService using repositories and server config.
func NewTokenService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *TokenService {
	return &TokenService{
		db:          db,
		repomanager: m,
		jwtSecret:   []byte(cfg.SecretKey),
	}
}

// Status reports whether jti is currently revoked. Only an entry whose
// expires_at lies in the future counts as an active revocation; pure passage
// of time flips the outcome back to StatusNotRevoked without any write.
func (s *TokenService) Status(ctx context.Context, jti string) (RevocationStatus, error) {
	return s.status(ctx, s.db, jti)
}

func (s *TokenService) status(ctx context.Context, db dbx.DBTX, jti string) (RevocationStatus, error) {
	entry, err := s.repomanager.Blacklist(db).Find(ctx, jti)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return StatusNotRevoked, nil
		}
		return StatusUnknown, fmt.Errorf("error consulting revocation ledger: %w", err)
	}

	if entry.ExpiresAt.After(time.Now()) {
		return StatusRevoked, nil
	}
	return StatusNotRevoked, nil
}

// Revoke marks jti as revoked until expiresAt.
func (s *TokenService) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	if err := s.repomanager.Blacklist(s.db).Upsert(ctx, jti, expiresAt); err != nil {
		return fmt.Errorf("error revoking token: %w", err)
	}
	return nil
}

// Remove drops the ledger entry for jti unconditionally. Used when a token
// has no record worth keeping, e.g. it already died of natural expiry.
func (s *TokenService) Remove(ctx context.Context, jti string) error {
	if err := s.repomanager.Blacklist(s.db).Delete(ctx, jti); err != nil {
		return fmt.Errorf("error removing ledger entry: %w", err)
	}
	return nil
}

// ResolveFromToken decodes a bearer token (raw or "Bearer "-prefixed),
// consults the revocation ledger, and loads the underlying user. Failures
// keep their kind: common.ErrTokenExpired, common.ErrInvalidToken,
// common.ErrTokenRevoked, common.ErrUserNotFound.
func (s *TokenService) ResolveFromToken(ctx context.Context, bearer string) (*models.User, error) {
	claims, err := auth.ParseToken(auth.ExtractBearer(bearer), s.jwtSecret)
	if err != nil {
		return nil, err
	}

	status, err := s.Status(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if status == StatusRevoked {
		return nil, common.ErrTokenRevoked
	}

	return s.userByClaims(ctx, s.db, claims)
}

// Logout revokes the session token carried in bearer. The ledger entry stays
// active until the token's own expiry, after which it is inert. An expired
// token is logged out by dropping its ledger record; a revoked one is a
// no-op, keeping the call idempotent. Undecodable tokens fail with
// common.ErrInvalidToken.
func (s *TokenService) Logout(ctx context.Context, bearer string) error {
	claims, err := auth.ParseToken(auth.ExtractBearer(bearer), s.jwtSecret)
	switch {
	case err == nil:
	case errors.Is(err, common.ErrTokenExpired) && claims != nil && claims.ID != "":
		return s.Remove(ctx, claims.ID)
	default:
		return common.ErrInvalidToken
	}

	// The status check and the revocation write share one transaction, so a
	// concurrent logout of the same jti cannot interleave between them.
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		status, err := s.status(ctx, tx, claims.ID)
		if err != nil {
			return err
		}
		if status == StatusRevoked {
			return nil
		}

		if _, err := s.userByClaims(ctx, tx, claims); err != nil {
			return err
		}

		if err := s.repomanager.Blacklist(tx).Upsert(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
			return fmt.Errorf("error revoking token: %w", err)
		}
		return nil
	})
}

func (s *TokenService) userByClaims(ctx context.Context, db dbx.DBTX, claims *auth.Claims) (*models.User, error) {
	user, err := s.repomanager.Users(db).GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrUserNotFound
		}
		return nil, fmt.Errorf("error loading user: %w", err)
	}
	return user, nil
}
