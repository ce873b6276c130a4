package blacklist

import (
	"context"
	"time"

	"github.com/saasbackend/authcore/internal/server/models"
)

type Repository interface {
	Upsert(ctx context.Context, jti string, expiresAt time.Time) error
	Find(ctx context.Context, jti string) (*models.BlacklistEntry, error)
	Delete(ctx context.Context, jti string) error
}
