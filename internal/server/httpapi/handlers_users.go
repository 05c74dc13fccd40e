package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/procman/internal/common"
)

// handleToken implements POST /token: form-encoded username/password exchange
// for a bearer access token.
func (a *API) handleToken(w http.ResponseWriter, r *http.Request) error {

	if err := r.ParseForm(); err != nil {
		return fmt.Errorf("%w: invalid form body", common.ErrorValidation)
	}

	username := r.PostFormValue("username")
	password := r.PostFormValue("password")

	user, err := a.users.Authenticate(r.Context(), username, password)
	if err != nil {
		return err
	}

	token, err := a.users.IssueToken(user)
	if err != nil {
		return err
	}

	return a.respond(w, http.StatusOK, tokenResponse{AccessToken: token, TokenType: "bearer"})
}

// handleCreateUser implements POST /users/.
func (a *API) handleCreateUser(w http.ResponseWriter, r *http.Request) error {

	var req userCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return fmt.Errorf("%w: invalid request body", common.ErrorValidation)
	}
	if err := a.validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %v", common.ErrorValidation, err)
	}

	user, err := a.users.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		return err
	}

	return a.respond(w, http.StatusOK, toUserResponse(user))
}

// handleCurrentUser implements GET /users/me/.
func (a *API) handleCurrentUser(w http.ResponseWriter, r *http.Request) error {

	userID, err := userIDFromContext(r.Context())
	if err != nil {
		return err
	}

	user, err := a.users.GetByID(r.Context(), userID)
	if err != nil {
		return err
	}

	return a.respond(w, http.StatusOK, toUserResponse(user))
}

func (a *API) respond(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}
