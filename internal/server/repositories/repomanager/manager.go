package repomanager

import (
	"context"
	"database/sql"

	"github.com/aquidolado/aqui/internal/dbx"
	"github.com/aquidolado/aqui/internal/server/repositories/actiontokens"
	"github.com/aquidolado/aqui/internal/server/repositories/ads"
	"github.com/aquidolado/aqui/internal/server/repositories/communities"
	"github.com/aquidolado/aqui/internal/server/repositories/moderation"
	"github.com/aquidolado/aqui/internal/server/repositories/users"
)

// RepositoryManager vends repository implementations bound to either a
// *sql.DB or an open transaction, so services can compose multi-repo
// operations inside dbx.WithTx.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	ActionTokens(db dbx.DBTX) actiontokens.Repository
	Communities(db dbx.DBTX) communities.Repository
	Ads(db dbx.DBTX) ads.Repository
	Moderation(db dbx.DBTX) moderation.Repository
}
