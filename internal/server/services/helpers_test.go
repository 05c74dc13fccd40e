package services

import (
	"context"
	"database/sql"
	"sort"
	"time"

	"github.com/dmitrijs2005/procman/internal/common"
	"github.com/dmitrijs2005/procman/internal/dbx"
	"github.com/dmitrijs2005/procman/internal/server/models"
	processesrepo "github.com/dmitrijs2005/procman/internal/server/repositories/processes"
	tasklistsrepo "github.com/dmitrijs2005/procman/internal/server/repositories/tasklists"
	usersrepo "github.com/dmitrijs2005/procman/internal/server/repositories/users"
)

// --- fake repository manager ---

type fakeRepoManager struct {
	users     usersrepo.Repository
	processes processesrepo.Repository
	tasklists tasklistsrepo.Repository
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }

func (m *fakeRepoManager) Users(dbx.DBTX) usersrepo.Repository { return m.users }

func (m *fakeRepoManager) Processes(dbx.DBTX) processesrepo.Repository { return m.processes }

func (m *fakeRepoManager) TaskLists(dbx.DBTX) tasklistsrepo.Repository { return m.tasklists }

// --- in-memory users repository ---

type memUsersRepo struct {
	nextID int64
	byName map[string]*models.User
}

func newMemUsersRepo() *memUsersRepo {
	return &memUsersRepo{byName: make(map[string]*models.User)}
}

func (r *memUsersRepo) Create(ctx context.Context, user *models.User) (*models.User, error) {
	r.nextID++
	stored := *user
	stored.ID = r.nextID
	stored.IsActive = true
	stored.CreatedAt = time.Now()
	r.byName[stored.Username] = &stored
	out := stored
	return &out, nil
}

func (r *memUsersRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	user, ok := r.byName[username]
	if !ok {
		return nil, common.ErrorNotFound
	}
	out := *user
	return &out, nil
}

func (r *memUsersRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	for _, user := range r.byName {
		if user.ID == id {
			out := *user
			return &out, nil
		}
	}
	return nil, common.ErrorNotFound
}

// --- in-memory processes repository ---

type memProcessRepo struct {
	nextID int64
	items  map[int64]*models.Process
}

func newMemProcessRepo() *memProcessRepo {
	return &memProcessRepo{items: make(map[int64]*models.Process)}
}

func (r *memProcessRepo) Create(ctx context.Context, process *models.Process) (*models.Process, error) {
	r.nextID++
	stored := *process
	if process.ParentID != nil {
		parentID := *process.ParentID
		stored.ParentID = &parentID
	}
	stored.ID = r.nextID
	stored.Completed = false
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	r.items[stored.ID] = &stored
	out := stored
	return &out, nil
}

func (r *memProcessRepo) Get(ctx context.Context, id, ownerID int64) (*models.Process, error) {
	process, ok := r.items[id]
	if !ok || process.OwnerID != ownerID {
		return nil, common.ErrorNotFound
	}
	out := *process
	return &out, nil
}

func (r *memProcessRepo) ListChildren(ctx context.Context, ownerID int64, parentID *int64, skip, limit int) ([]*models.Process, error) {
	var result []*models.Process
	for _, process := range r.items {
		if process.OwnerID != ownerID {
			continue
		}
		switch {
		case parentID == nil:
			if process.ParentID != nil {
				continue
			}
		case process.ParentID == nil || *process.ParentID != *parentID:
			continue
		}
		out := *process
		result = append(result, &out)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })

	if skip >= len(result) {
		return nil, nil
	}
	result = result[skip:]
	if limit > 0 && limit < len(result) {
		result = result[:limit]
	}
	return result, nil
}

func (r *memProcessRepo) bumpUpdatedAt(process *models.Process) {
	now := time.Now()
	if !now.After(process.UpdatedAt) {
		now = process.UpdatedAt.Add(time.Nanosecond)
	}
	process.UpdatedAt = now
}

func (r *memProcessRepo) Update(ctx context.Context, update *models.Process) (*models.Process, error) {
	process, ok := r.items[update.ID]
	if !ok || process.OwnerID != update.OwnerID {
		return nil, common.ErrorNotFound
	}
	process.Title = update.Title
	process.Description = update.Description
	process.ParentID = update.ParentID
	r.bumpUpdatedAt(process)
	out := *process
	return &out, nil
}

func (r *memProcessRepo) ToggleComplete(ctx context.Context, id, ownerID int64) (*models.Process, error) {
	process, ok := r.items[id]
	if !ok || process.OwnerID != ownerID {
		return nil, common.ErrorNotFound
	}
	process.Completed = !process.Completed
	r.bumpUpdatedAt(process)
	out := *process
	return &out, nil
}

func (r *memProcessRepo) Delete(ctx context.Context, id, ownerID int64) (*models.Process, error) {
	process, ok := r.items[id]
	if !ok || process.OwnerID != ownerID {
		return nil, common.ErrorNotFound
	}
	r.deleteSubtree(id)
	out := *process
	return &out, nil
}

func (r *memProcessRepo) deleteSubtree(id int64) {
	delete(r.items, id)
	for childID, child := range r.items {
		if child.ParentID != nil && *child.ParentID == id {
			r.deleteSubtree(childID)
		}
	}
}

// --- in-memory task list repository ---

type memTaskListRepo struct {
	byUser map[int64]*models.TaskList
}

func newMemTaskListRepo() *memTaskListRepo {
	return &memTaskListRepo{byUser: make(map[int64]*models.TaskList)}
}

func (r *memTaskListRepo) Save(ctx context.Context, userID int64, data []byte) (*models.TaskList, error) {
	list := &models.TaskList{UserID: userID, Data: append([]byte(nil), data...), UpdatedAt: time.Now()}
	r.byUser[userID] = list
	out := *list
	return &out, nil
}

func (r *memTaskListRepo) Get(ctx context.Context, userID int64) (*models.TaskList, error) {
	list, ok := r.byUser[userID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	out := *list
	return &out, nil
}
