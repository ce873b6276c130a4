package services

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/saasbackend/authcore/internal/common"
	"github.com/saasbackend/authcore/internal/dbx"
	"github.com/saasbackend/authcore/internal/server/config"
	"github.com/saasbackend/authcore/internal/server/models"
	apikeysrepo "github.com/saasbackend/authcore/internal/server/repositories/apikeys"
	blacklistrepo "github.com/saasbackend/authcore/internal/server/repositories/blacklist"
	usersrepo "github.com/saasbackend/authcore/internal/server/repositories/users"
)

// The services hand the *sql.DB through to the repository manager and Logout
// opens a real transaction on it, so an in-memory sqlite handle backs the
// fake-backed tests.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("sql.Open error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func testConfig() *config.Config {
	return &config.Config{
		SecretKey:                   "test-secret",
		AccessTokenValidityDuration: time.Hour,
	}
}

type fakeUsersRepo struct {
	createOut *models.User
	createErr error

	byUsername map[string]*models.User
	byID       map[string]*models.User

	getErr error
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.createOut, nil
}

func (f *fakeUsersRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if u, ok := f.byUsername[username]; ok {
		return u, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, common.ErrorNotFound
}

type fakeAPIKeysRepo struct {
	keys map[string]string

	upsertErr error
	getErr    error
	deleteErr error
}

func newFakeAPIKeysRepo() *fakeAPIKeysRepo {
	return &fakeAPIKeysRepo{keys: map[string]string{}}
}

func (f *fakeAPIKeysRepo) Upsert(ctx context.Context, userID, key string) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.keys[userID] = key
	return nil
}

func (f *fakeAPIKeysRepo) Get(ctx context.Context, userID string) (*models.APIKey, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	key, ok := f.keys[userID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &models.APIKey{UserID: userID, Key: key}, nil
}

func (f *fakeAPIKeysRepo) Delete(ctx context.Context, userID string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.keys[userID]; !ok {
		return common.ErrorNotFound
	}
	delete(f.keys, userID)
	return nil
}

type fakeBlacklistRepo struct {
	entries map[string]time.Time

	upsertErr error
	findErr   error
	deleteErr error
}

func newFakeBlacklistRepo() *fakeBlacklistRepo {
	return &fakeBlacklistRepo{entries: map[string]time.Time{}}
}

func (f *fakeBlacklistRepo) Upsert(ctx context.Context, jti string, expiresAt time.Time) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.entries[jti] = expiresAt
	return nil
}

func (f *fakeBlacklistRepo) Find(ctx context.Context, jti string) (*models.BlacklistEntry, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	exp, ok := f.entries[jti]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &models.BlacklistEntry{JTI: jti, ExpiresAt: exp}, nil
}

func (f *fakeBlacklistRepo) Delete(ctx context.Context, jti string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.entries, jti)
	return nil
}

type fakeRepoManager struct {
	u *fakeUsersRepo
	k *fakeAPIKeysRepo
	b *fakeBlacklistRepo
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{
		u: &fakeUsersRepo{byUsername: map[string]*models.User{}, byID: map[string]*models.User{}},
		k: newFakeAPIKeysRepo(),
		b: newFakeBlacklistRepo(),
	}
}

func (m *fakeRepoManager) addUser(u *models.User) {
	m.u.byUsername[u.Username] = u
	m.u.byID[u.ID] = u
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }

func (m *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository { return m.u }

func (m *fakeRepoManager) APIKeys(db dbx.DBTX) apikeysrepo.Repository { return m.k }

func (m *fakeRepoManager) Blacklist(db dbx.DBTX) blacklistrepo.Repository { return m.b }
