package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/procman/internal/common"
)

// handleGetTaskList implements GET /users/me/tasklist.
func (a *API) handleGetTaskList(w http.ResponseWriter, r *http.Request) error {

	userID, err := userIDFromContext(r.Context())
	if err != nil {
		return err
	}

	list, err := a.tasklists.Get(r.Context(), userID)
	if err != nil {
		return err
	}

	return a.respond(w, http.StatusOK, taskListResponse{
		UserID:    list.UserID,
		Data:      json.RawMessage(list.Data),
		UpdatedAt: list.UpdatedAt,
	})
}

// handleSaveTaskList implements PUT /users/me/tasklist: stores an arbitrary
// JSON document for the current user, replacing any previous one.
func (a *API) handleSaveTaskList(w http.ResponseWriter, r *http.Request) error {

	userID, err := userIDFromContext(r.Context())
	if err != nil {
		return err
	}

	var req taskListRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return fmt.Errorf("%w: invalid request body", common.ErrorValidation)
	}
	if len(req.Data) == 0 {
		return fmt.Errorf("%w: data is required", common.ErrorValidation)
	}

	list, err := a.tasklists.Save(r.Context(), userID, req.Data)
	if err != nil {
		return err
	}

	return a.respond(w, http.StatusOK, taskListResponse{
		UserID:    list.UserID,
		Data:      json.RawMessage(list.Data),
		UpdatedAt: list.UpdatedAt,
	})
}

// handleArchiveUpload implements POST /users/me/tasklist/archive: returns a
// presigned PUT URL and its storage key.
func (a *API) handleArchiveUpload(w http.ResponseWriter, r *http.Request) error {

	userID, err := userIDFromContext(r.Context())
	if err != nil {
		return err
	}

	key, url, err := a.tasklists.ArchiveUploadURL(r.Context(), userID)
	if err != nil {
		return err
	}

	return a.respond(w, http.StatusOK, archiveUploadResponse{Key: key, UploadURL: url})
}

// handleArchiveDownload implements GET /users/me/tasklist/archive?key=.
func (a *API) handleArchiveDownload(w http.ResponseWriter, r *http.Request) error {

	if _, err := userIDFromContext(r.Context()); err != nil {
		return err
	}

	key := r.URL.Query().Get("key")
	if key == "" {
		return fmt.Errorf("%w: key is required", common.ErrorValidation)
	}

	url, err := a.tasklists.ArchiveDownloadURL(r.Context(), key)
	if err != nil {
		return err
	}

	return a.respond(w, http.StatusOK, archiveDownloadResponse{DownloadURL: url})
}
