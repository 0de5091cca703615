package repomanager

import (
	"context"
	"database/sql"

	"github.com/aequatio-app/aequatio/internal/dbx"
	"github.com/aequatio-app/aequatio/internal/server/repositories/expenses"
	"github.com/aequatio-app/aequatio/internal/server/repositories/outbox"
	"github.com/aequatio-app/aequatio/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Expenses(db dbx.DBTX) expenses.Repository
	Outbox(db dbx.DBTX) outbox.Repository
}
