// Package services contains the server-side business logic: registration and
// authentication, token lifecycle, and API key management.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/saasbackend/authcore/internal/common"
	"github.com/saasbackend/authcore/internal/cryptox"
	"github.com/saasbackend/authcore/internal/server/auth"
	"github.com/saasbackend/authcore/internal/server/config"
	"github.com/saasbackend/authcore/internal/server/models"
	"github.com/saasbackend/authcore/internal/server/repositories/repomanager"
)

// UserService handles registration and credential authentication, and issues
// session tokens on login.
type UserService struct {
	db                          *sql.DB
	repomanager                 repomanager.RepositoryManager
	jwtSecret                   []byte
	accessTokenValidityDuration time.Duration
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	return &UserService{
		db:                          db,
		repomanager:                 m,
		jwtSecret:                   []byte(cfg.SecretKey),
		accessTokenValidityDuration: cfg.AccessTokenValidityDuration,
	}
}

// Register creates a new account with the deterministic digest of password.
// A duplicate username surfaces as common.ErrorAlreadyExists, detected only
// through the store's unique constraint.
func (s *UserService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	user := &models.User{
		Username:       username,
		Email:          email,
		HashedPassword: cryptox.HashPassword(password),
	}

	repo := s.repomanager.Users(s.db)

	user, err := repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	return user, nil
}

// Authenticate verifies username and password. Unknown user and wrong
// password both yield common.ErrInvalidCredentials.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("error loading user: %w", err)
	}

	if !cryptox.VerifyPassword(password, user.HashedPassword) {
		return nil, common.ErrInvalidCredentials
	}

	return user, nil
}

// Login authenticates the credentials and issues a signed session token with
// the configured lifetime.
func (s *UserService) Login(ctx context.Context, username, password string) (string, *models.User, error) {
	user, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return "", nil, err
	}

	token, err := auth.GenerateToken(user, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return "", nil, fmt.Errorf("error issuing token: %w", err)
	}

	return token, user, nil
}
