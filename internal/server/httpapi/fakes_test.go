package httpapi

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/saasbackend/authcore/internal/common"
	"github.com/saasbackend/authcore/internal/dbx"
	"github.com/saasbackend/authcore/internal/logging"
	"github.com/saasbackend/authcore/internal/server/config"
	"github.com/saasbackend/authcore/internal/server/models"
	apikeysrepo "github.com/saasbackend/authcore/internal/server/repositories/apikeys"
	blacklistrepo "github.com/saasbackend/authcore/internal/server/repositories/blacklist"
	usersrepo "github.com/saasbackend/authcore/internal/server/repositories/users"
	"github.com/saasbackend/authcore/internal/server/services"
)

// memUsersRepo is a stateful in-memory account store so the end-to-end tests
// can register and then log in with the same credentials.
type memUsersRepo struct {
	byUsername map[string]*models.User
	byID       map[string]*models.User
}

func newMemUsersRepo() *memUsersRepo {
	return &memUsersRepo{
		byUsername: map[string]*models.User{},
		byID:       map[string]*models.User{},
	}
}

func (r *memUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if _, ok := r.byUsername[u.Username]; ok {
		return nil, common.ErrorAlreadyExists
	}

	stored := *u
	stored.ID = uuid.NewString()
	stored.Credits = 5
	stored.CreatedAt = time.Now()

	r.byUsername[stored.Username] = &stored
	r.byID[stored.ID] = &stored
	return &stored, nil
}

func (r *memUsersRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	if u, ok := r.byUsername[username]; ok {
		return u, nil
	}
	return nil, common.ErrorNotFound
}

func (r *memUsersRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := r.byID[id]; ok {
		return u, nil
	}
	return nil, common.ErrorNotFound
}

type memAPIKeysRepo struct {
	keys map[string]string

	deleteErr error
}

func (r *memAPIKeysRepo) Upsert(ctx context.Context, userID, key string) error {
	r.keys[userID] = key
	return nil
}

func (r *memAPIKeysRepo) Get(ctx context.Context, userID string) (*models.APIKey, error) {
	key, ok := r.keys[userID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &models.APIKey{UserID: userID, Key: key}, nil
}

func (r *memAPIKeysRepo) Delete(ctx context.Context, userID string) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	if _, ok := r.keys[userID]; !ok {
		return common.ErrorNotFound
	}
	delete(r.keys, userID)
	return nil
}

type memBlacklistRepo struct {
	entries map[string]time.Time
}

func (r *memBlacklistRepo) Upsert(ctx context.Context, jti string, expiresAt time.Time) error {
	r.entries[jti] = expiresAt
	return nil
}

func (r *memBlacklistRepo) Find(ctx context.Context, jti string) (*models.BlacklistEntry, error) {
	exp, ok := r.entries[jti]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &models.BlacklistEntry{JTI: jti, ExpiresAt: exp}, nil
}

func (r *memBlacklistRepo) Delete(ctx context.Context, jti string) error {
	delete(r.entries, jti)
	return nil
}

type memRepoManager struct {
	u *memUsersRepo
	k *memAPIKeysRepo
	b *memBlacklistRepo
}

func newMemRepoManager() *memRepoManager {
	return &memRepoManager{
		u: newMemUsersRepo(),
		k: &memAPIKeysRepo{keys: map[string]string{}},
		b: &memBlacklistRepo{entries: map[string]time.Time{}},
	}
}

func (m *memRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }

func (m *memRepoManager) Users(db dbx.DBTX) usersrepo.Repository { return m.u }

func (m *memRepoManager) APIKeys(db dbx.DBTX) apikeysrepo.Repository { return m.k }

func (m *memRepoManager) Blacklist(db dbx.DBTX) blacklistrepo.Repository { return m.b }

func newTestServer(t *testing.T) (*Server, *memRepoManager, *config.Config) {
	t.Helper()
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	return newTestServerWithLogger(t, logger)
}

func newTestServerWithLogger(t *testing.T, logger logging.Logger) (*Server, *memRepoManager, *config.Config) {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("sql.Open error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	cfg := &config.Config{
		SecretKey:                   "test-secret",
		AccessTokenValidityDuration: time.Hour,
	}

	m := newMemRepoManager()

	us := services.NewUserService(db, m, cfg)
	ts := services.NewTokenService(db, m, cfg)
	ks := services.NewAPIKeyService(db, m, nil)

	srv, err := NewServer(":0", logger, us, ts, ks)
	if err != nil {
		t.Fatalf("NewServer error: %v", err)
	}

	return srv, m, cfg
}
