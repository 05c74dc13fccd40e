package processes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/procman/internal/common"
	"github.com/dmitrijs2005/procman/internal/dbx"
	"github.com/dmitrijs2005/procman/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, process *models.Process) (*models.Process, error) {

	query :=
		`INSERT INTO processes (owner_id, parent_id, title, description)
         VALUES ($1, $2, $3, $4)
		 RETURNING id, completed, created_at, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		process.OwnerID, process.ParentID, process.Title, process.Description).
		Scan(&process.ID, &process.Completed, &process.CreatedAt, &process.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return process, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id, ownerID int64) (*models.Process, error) {
	query :=
		`SELECT id, owner_id, parent_id, title, description, completed, created_at, updated_at
		 FROM processes
		 WHERE id = $1 AND owner_id = $2
		 `

	return r.scanOne(r.db.QueryRowContext(ctx, query, id, ownerID))
}

func (r *PostgresRepository) ListChildren(ctx context.Context, ownerID int64, parentID *int64, skip, limit int) ([]*models.Process, error) {

	// NULLIF turns a non-positive limit into LIMIT NULL, i.e. no limit.
	var (
		rows *sql.Rows
		err  error
	)
	if parentID == nil {
		query :=
			`SELECT id, owner_id, parent_id, title, description, completed, created_at, updated_at
			 FROM processes
			 WHERE owner_id = $1 AND parent_id IS NULL
			 ORDER BY id
			 OFFSET $2 LIMIT NULLIF($3, 0)
			 `
		rows, err = r.db.QueryContext(ctx, query, ownerID, skip, max(limit, 0))
	} else {
		query :=
			`SELECT id, owner_id, parent_id, title, description, completed, created_at, updated_at
			 FROM processes
			 WHERE owner_id = $1 AND parent_id = $2
			 ORDER BY id
			 OFFSET $3 LIMIT NULLIF($4, 0)
			 `
		rows, err = r.db.QueryContext(ctx, query, ownerID, *parentID, skip, max(limit, 0))
	}

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Process
	for rows.Next() {
		process := &models.Process{}
		if err := rows.Scan(&process.ID, &process.OwnerID, &process.ParentID, &process.Title,
			&process.Description, &process.Completed, &process.CreatedAt, &process.UpdatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, process)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) Update(ctx context.Context, process *models.Process) (*models.Process, error) {
	query :=
		`UPDATE processes
		 SET title = $1, description = $2, parent_id = $3, updated_at = now()
		 WHERE id = $4 AND owner_id = $5
		 RETURNING id, owner_id, parent_id, title, description, completed, created_at, updated_at
		 `

	return r.scanOne(r.db.QueryRowContext(ctx, query,
		process.Title, process.Description, process.ParentID, process.ID, process.OwnerID))
}

func (r *PostgresRepository) ToggleComplete(ctx context.Context, id, ownerID int64) (*models.Process, error) {
	query :=
		`UPDATE processes
		 SET completed = NOT completed, updated_at = now()
		 WHERE id = $1 AND owner_id = $2
		 RETURNING id, owner_id, parent_id, title, description, completed, created_at, updated_at
		 `

	return r.scanOne(r.db.QueryRowContext(ctx, query, id, ownerID))
}

func (r *PostgresRepository) Delete(ctx context.Context, id, ownerID int64) (*models.Process, error) {
	// Children go with the row via ON DELETE CASCADE on parent_id.
	query :=
		`DELETE FROM processes
		 WHERE id = $1 AND owner_id = $2
		 RETURNING id, owner_id, parent_id, title, description, completed, created_at, updated_at
		 `

	return r.scanOne(r.db.QueryRowContext(ctx, query, id, ownerID))
}

func (r *PostgresRepository) scanOne(row *sql.Row) (*models.Process, error) {
	process := &models.Process{}
	err := row.Scan(&process.ID, &process.OwnerID, &process.ParentID, &process.Title,
		&process.Description, &process.Completed, &process.CreatedAt, &process.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return process, nil
}
