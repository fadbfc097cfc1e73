// Package repomanager vends repositories bound to a database handle or an
// open transaction, so services can choose the scope of each call.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/minibank/internal/dbx"
	"github.com/dmitrijs2005/minibank/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/minibank/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/minibank/internal/server/repositories/transfers"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Accounts(db dbx.DBTX) accounts.Repository
	Sessions(db dbx.DBTX) sessions.Repository
	Transfers(db dbx.DBTX) transfers.Repository
}
