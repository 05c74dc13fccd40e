package tasklists

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

func (r *PostgresRepository) Save(ctx context.Context, userID int64, data []byte) (*models.TaskList, error) {

	query :=
		`INSERT INTO task_lists (user_id, data, updated_at)
		 VALUES ($1, $2, now())
		 ON CONFLICT (user_id) DO UPDATE SET data = EXCLUDED.data, updated_at = now()
		 RETURNING user_id, data, updated_at
		 `

	list := &models.TaskList{}
	err := r.db.QueryRowContext(ctx, query, userID, data).
		Scan(&list.UserID, &list.Data, &list.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return list, nil
}

func (r *PostgresRepository) Get(ctx context.Context, userID int64) (*models.TaskList, error) {
	query :=
		`SELECT user_id, data, updated_at FROM task_lists
		 WHERE user_id = $1
		 `

	list := &models.TaskList{}
	err := r.db.QueryRowContext(ctx, query, userID).
		Scan(&list.UserID, &list.Data, &list.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return list, nil
}
