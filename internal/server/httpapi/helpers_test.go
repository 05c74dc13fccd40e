package httpapi

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/procman/internal/common"
	"github.com/dmitrijs2005/procman/internal/dbx"
	"github.com/dmitrijs2005/procman/internal/logging"
	"github.com/dmitrijs2005/procman/internal/server/config"
	"github.com/dmitrijs2005/procman/internal/server/models"
	processesrepo "github.com/dmitrijs2005/procman/internal/server/repositories/processes"
	tasklistsrepo "github.com/dmitrijs2005/procman/internal/server/repositories/tasklists"
	usersrepo "github.com/dmitrijs2005/procman/internal/server/repositories/users"
	"github.com/dmitrijs2005/procman/internal/server/services"
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

// --- test environment ---

const testSecret = "test-secret"

type testEnv struct {
	router http.Handler
}

// newTestEnv wires the full API over in-memory repositories. The sqlmock db
// only backs transaction begin/commit/rollback; every expectation is
// registered up front and matched out of order.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	mock.MatchExpectationsInOrder(false)
	for i := 0; i < 16; i++ {
		mock.ExpectBegin()
		mock.ExpectCommit()
		mock.ExpectRollback()
	}

	cfg := &config.Config{
		SecretKey:                   testSecret,
		AccessTokenValidityDuration: time.Hour,
	}

	rm := &fakeRepoManager{
		users:     newMemUsersRepo(),
		processes: newMemProcessRepo(),
		tasklists: newMemTaskListRepo(),
	}

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(io.Discard, nil)))

	api := NewAPI(logger,
		services.NewUserService(db, rm, cfg),
		services.NewProcessService(db, rm),
		services.NewTaskListService(db, rm, cfg),
		cfg.SecretKey)

	return &testEnv{router: api.Router()}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(out); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, w.Body.String())
	}
}

// registerAndLogin creates a user over the public endpoints and returns a
// bearer token for it.
func (e *testEnv) registerAndLogin(t *testing.T, username string) string {
	t.Helper()

	w := e.do(t, http.MethodPost, "/users/", "", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "s3cretpass",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("create user: status %d body %s", w.Code, w.Body.String())
	}

	form := url.Values{"username": {username}, "password": {"s3cretpass"}}
	req := httptest.NewRequest(http.MethodPost, "/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("token: status %d body %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	decodeBody(t, rec, &resp)
	if resp.TokenType != "bearer" || resp.AccessToken == "" {
		t.Fatalf("unexpected token response: %+v", resp)
	}
	return resp.AccessToken
}

func (e *testEnv) createProcess(t *testing.T, token, title string, parentID *int64) int64 {
	t.Helper()

	body := map[string]any{"title": title}
	if parentID != nil {
		body["parent_id"] = *parentID
	}
	w := e.do(t, http.MethodPost, "/processes/", token, body)
	if w.Code != http.StatusOK {
		t.Fatalf("create process %q: status %d body %s", title, w.Code, w.Body.String())
	}

	var resp struct {
		ID int64 `json:"id"`
	}
	decodeBody(t, w, &resp)
	return resp.ID
}
