package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/saasbackend/authcore/internal/common"
	"github.com/saasbackend/authcore/internal/server/models"
	"github.com/saasbackend/authcore/internal/server/repositories/repomanager"
)

// KeyGenerator mints opaque API key material. The indirection keeps a future
// hashed-key scheme a drop-in replacement for the current plaintext storage.
type KeyGenerator interface {
	Generate() (string, error)
}

type randomHexKeyGenerator struct{}

func (randomHexKeyGenerator) Generate() (string, error) {
	return common.MakeRandHexString(16)
}

// APIKeyService manages the per-user long-lived credential, independent of
// session tokens.
type APIKeyService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	keygen      KeyGenerator
}

// NewAPIKeyService constructs an APIKeyService. A nil gen selects the
// default random-hex generator.
func NewAPIKeyService(db *sql.DB, m repomanager.RepositoryManager, gen KeyGenerator) *APIKeyService {
	if gen == nil {
		gen = randomHexKeyGenerator{}
	}
	return &APIKeyService{db: db, repomanager: m, keygen: gen}
}

// Create mints a fresh key for the user and stores it, replacing any
// previous key (last-write-wins). The raw key is returned exactly once.
func (s *APIKeyService) Create(ctx context.Context, user *models.User) (string, error) {
	key, err := s.keygen.Generate()
	if err != nil {
		return "", common.ErrorInternal
	}

	if err := s.repomanager.APIKeys(s.db).Upsert(ctx, user.ID, key); err != nil {
		return "", fmt.Errorf("error storing api key: %w", err)
	}

	return key, nil
}

// Get returns the user's current key, or common.ErrAPIKeyNotFound.
func (s *APIKeyService) Get(ctx context.Context, user *models.User) (string, error) {
	key, err := s.repomanager.APIKeys(s.db).Get(ctx, user.ID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrAPIKeyNotFound
		}
		return "", fmt.Errorf("error loading api key: %w", err)
	}
	return key.Key, nil
}

// Delete removes the user's key. Absence yields common.ErrAPIKeyNotFound; a
// store fault during the delete keeps its wrapped error so the transport can
// report a server-side failure distinctly.
func (s *APIKeyService) Delete(ctx context.Context, user *models.User) error {
	if err := s.repomanager.APIKeys(s.db).Delete(ctx, user.ID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrAPIKeyNotFound
		}
		return fmt.Errorf("error deleting api key: %w", err)
	}
	return nil
}
