package repomanager

import (
	"context"
	"database/sql"

	"github.com/saasbackend/authcore/internal/dbx"
	"github.com/saasbackend/authcore/internal/server/repositories/apikeys"
	"github.com/saasbackend/authcore/internal/server/repositories/blacklist"
	"github.com/saasbackend/authcore/internal/server/repositories/users"
)

// RepositoryManager vends repository implementations bound to a DBTX, so
// services can run a repository against the pooled connection or inside a
// transaction with the same code.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	APIKeys(db dbx.DBTX) apikeys.Repository
	Blacklist(db dbx.DBTX) blacklist.Repository
}
