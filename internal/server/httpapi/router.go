// Package httpapi exposes the process manager over HTTP/JSON. Route strings
// match the historical API, so existing clients keep working.
package httpapi

import (
	"github.com/dmitrijs2005/procman/internal/logging"
	"github.com/dmitrijs2005/procman/internal/server/services"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
)

type API struct {
	logger    logging.Logger
	users     *services.UserService
	processes *services.ProcessService
	tasklists *services.TaskListService
	secret    []byte
	validate  *validator.Validate
}

func NewAPI(logger logging.Logger, us *services.UserService, ps *services.ProcessService, ts *services.TaskListService, secretKey string) *API {
	return &API{
		logger:    logger.With("module", "httpapi"),
		users:     us,
		processes: ps,
		tasklists: ts,
		secret:    []byte(secretKey),
		validate:  validator.New(),
	}
}

func (a *API) Router() *mux.Router {
	r := mux.NewRouter()

	// public
	r.Handle("/token", a.wrap(a.handleToken)).Methods("POST")
	r.Handle("/users/", a.wrap(a.handleCreateUser)).Methods("POST")

	// auth required
	r.Handle("/users/me/", a.protected(a.handleCurrentUser)).Methods("GET")

	r.Handle("/processes/", a.protected(a.handleCreateProcess)).Methods("POST")
	r.Handle("/processes/", a.protected(a.handleListProcesses)).Methods("GET")
	r.Handle("/processes/{id}", a.protected(a.handleGetProcess)).Methods("GET")
	r.Handle("/processes/{id}", a.protected(a.handleUpdateProcess)).Methods("PUT")
	r.Handle("/processes/{id}", a.protected(a.handleDeleteProcess)).Methods("DELETE")
	r.Handle("/processes/{id}/toggle", a.protected(a.handleToggleProcess)).Methods("POST")

	r.Handle("/users/me/tasklist", a.protected(a.handleGetTaskList)).Methods("GET")
	r.Handle("/users/me/tasklist", a.protected(a.handleSaveTaskList)).Methods("PUT")
	r.Handle("/users/me/tasklist/archive", a.protected(a.handleArchiveUpload)).Methods("POST")
	r.Handle("/users/me/tasklist/archive", a.protected(a.handleArchiveDownload)).Methods("GET")

	return r
}
