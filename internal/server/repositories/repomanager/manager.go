package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/procman/internal/dbx"
	"github.com/dmitrijs2005/procman/internal/server/repositories/processes"
	"github.com/dmitrijs2005/procman/internal/server/repositories/tasklists"
	"github.com/dmitrijs2005/procman/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Processes(db dbx.DBTX) processes.Repository
	TaskLists(db dbx.DBTX) tasklists.Repository
}
