// Package repomanager provides a concrete RepositoryManager for PostgreSQL,
// wiring together repository constructors and database migrations (via goose).
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/procman/internal/dbx"
	"github.com/dmitrijs2005/procman/internal/server/migrations"
	"github.com/dmitrijs2005/procman/internal/server/repositories/processes"
	"github.com/dmitrijs2005/procman/internal/server/repositories/tasklists"
	"github.com/dmitrijs2005/procman/internal/server/repositories/users"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// PostgresRepositoryManager vends PostgreSQL-backed repository implementations
// and exposes a schema migration hook.
type PostgresRepositoryManager struct{}

// Users returns a users.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

// Processes returns a processes.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Processes(db dbx.DBTX) processes.Repository {
	return processes.NewPostgresRepository(db)
}

// TaskLists returns a tasklists.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) TaskLists(db dbx.DBTX) tasklists.Repository {
	return tasklists.NewPostgresRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations sets up goose with the embedded migrations and runs them
// against the provided database connection.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	goose.SetDialect("pgx")
	if err := gooseUpContext(ctx, db, "."); err != nil {
		return err
	}
	return nil
}

// NewPostgresRepositoryManager constructs a PostgreSQL-backed RepositoryManager.
func NewPostgresRepositoryManager() (RepositoryManager, error) {
	return &PostgresRepositoryManager{}, nil
}
