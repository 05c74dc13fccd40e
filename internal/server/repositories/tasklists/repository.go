package tasklists

import (
	"context"

	"github.com/dmitrijs2005/procman/internal/server/models"
)

type Repository interface {
	Save(ctx context.Context, userID int64, data []byte) (*models.TaskList, error)
	Get(ctx context.Context, userID int64) (*models.TaskList, error)
}
