package processes

import (
	"context"

	"github.com/dmitrijs2005/procman/internal/server/models"
)

// Repository persists Process rows. All reads and writes are scoped by
// owner id; a row owned by another user is reported as common.ErrorNotFound.
// The repository performs no completion-gating validation, that is the
// service's job.
type Repository interface {
	Create(ctx context.Context, process *models.Process) (*models.Process, error)
	Get(ctx context.Context, id, ownerID int64) (*models.Process, error)

	// ListChildren returns the processes whose parent is parentID, ordered
	// by id. A nil parentID selects root-level processes (parent_id IS NULL),
	// not processes with any parent. limit <= 0 means no limit.
	ListChildren(ctx context.Context, ownerID int64, parentID *int64, skip, limit int) ([]*models.Process, error)

	Update(ctx context.Context, process *models.Process) (*models.Process, error)
	ToggleComplete(ctx context.Context, id, ownerID int64) (*models.Process, error)
	Delete(ctx context.Context, id, ownerID int64) (*models.Process, error)
}
