package apikeys

import (
	"context"

	"github.com/saasbackend/authcore/internal/server/models"
)

type Repository interface {
	Upsert(ctx context.Context, userID string, key string) error
	Get(ctx context.Context, userID string) (*models.APIKey, error)
	Delete(ctx context.Context, userID string) error
}
