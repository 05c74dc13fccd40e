package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/procman/internal/common"
	"github.com/gorilla/mux"
)

const defaultListLimit = 100

func processIDFromRequest(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid process id", common.ErrorValidation)
	}
	return id, nil
}

func (a *API) decodeProcessRequest(r *http.Request) (*processCreateRequest, error) {
	var req processCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, fmt.Errorf("%w: invalid request body", common.ErrorValidation)
	}
	if err := a.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorValidation, err)
	}
	return &req, nil
}

// handleCreateProcess implements POST /processes/.
func (a *API) handleCreateProcess(w http.ResponseWriter, r *http.Request) error {

	userID, err := userIDFromContext(r.Context())
	if err != nil {
		return err
	}

	req, err := a.decodeProcessRequest(r)
	if err != nil {
		return err
	}

	process, err := a.processes.Create(r.Context(), userID, req.Title, req.Description, req.ParentID)
	if err != nil {
		return err
	}

	return a.respond(w, http.StatusOK, toProcessResponse(process))
}

// handleListProcesses implements GET /processes/?parent_id=&skip=&limit=.
// The response is tree-shaped: each process at the requested level carries
// its resolved descendants.
func (a *API) handleListProcesses(w http.ResponseWriter, r *http.Request) error {

	userID, err := userIDFromContext(r.Context())
	if err != nil {
		return err
	}

	query := r.URL.Query()

	var parentID *int64
	if raw := query.Get("parent_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: invalid parent_id", common.ErrorValidation)
		}
		parentID = &id
	}

	skip, err := queryInt(query.Get("skip"), 0)
	if err != nil {
		return err
	}
	limit, err := queryInt(query.Get("limit"), defaultListLimit)
	if err != nil {
		return err
	}

	nodes, err := a.processes.Tree(r.Context(), userID, parentID, skip, limit)
	if err != nil {
		return err
	}

	out := make([]*processTreeResponse, 0, len(nodes))
	for _, node := range nodes {
		out = append(out, toProcessTreeResponse(node))
	}

	return a.respond(w, http.StatusOK, out)
}

// handleGetProcess implements GET /processes/{id}.
func (a *API) handleGetProcess(w http.ResponseWriter, r *http.Request) error {

	userID, err := userIDFromContext(r.Context())
	if err != nil {
		return err
	}

	id, err := processIDFromRequest(r)
	if err != nil {
		return err
	}

	node, err := a.processes.Subtree(r.Context(), id, userID)
	if err != nil {
		return err
	}

	return a.respond(w, http.StatusOK, toProcessTreeResponse(node))
}

// handleUpdateProcess implements PUT /processes/{id}: a full replace of
// title, description and parent_id.
func (a *API) handleUpdateProcess(w http.ResponseWriter, r *http.Request) error {

	userID, err := userIDFromContext(r.Context())
	if err != nil {
		return err
	}

	id, err := processIDFromRequest(r)
	if err != nil {
		return err
	}

	req, err := a.decodeProcessRequest(r)
	if err != nil {
		return err
	}

	process, err := a.processes.Update(r.Context(), id, userID, req.Title, req.Description, req.ParentID)
	if err != nil {
		return err
	}

	return a.respond(w, http.StatusOK, toProcessResponse(process))
}

// handleToggleProcess implements POST /processes/{id}/toggle.
func (a *API) handleToggleProcess(w http.ResponseWriter, r *http.Request) error {

	userID, err := userIDFromContext(r.Context())
	if err != nil {
		return err
	}

	id, err := processIDFromRequest(r)
	if err != nil {
		return err
	}

	process, err := a.processes.Toggle(r.Context(), id, userID)
	if err != nil {
		return err
	}

	return a.respond(w, http.StatusOK, toProcessResponse(process))
}

// handleDeleteProcess implements DELETE /processes/{id}.
func (a *API) handleDeleteProcess(w http.ResponseWriter, r *http.Request) error {

	userID, err := userIDFromContext(r.Context())
	if err != nil {
		return err
	}

	id, err := processIDFromRequest(r)
	if err != nil {
		return err
	}

	process, err := a.processes.Delete(r.Context(), id, userID)
	if err != nil {
		return err
	}

	return a.respond(w, http.StatusOK, toProcessResponse(process))
}

func queryInt(raw string, fallback int) (int, error) {
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return 0, fmt.Errorf("%w: invalid pagination parameter", common.ErrorValidation)
	}
	return value, nil
}
