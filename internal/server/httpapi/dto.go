package httpapi

import (
	"encoding/json"
	"time"

	"github.com/dmitrijs2005/procman/internal/server/models"
)

type userCreateRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type processCreateRequest struct {
	Title       string  `json:"title" validate:"required,max=255"`
	Description *string `json:"description"`
	ParentID    *int64  `json:"parent_id"`
}

type taskListRequest struct {
	Data json.RawMessage `json:"data" validate:"required"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type userResponse struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

type processResponse struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Completed   bool      `json:"completed"`
	ParentID    *int64    `json:"parent_id"`
	OwnerID     int64     `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type processTreeResponse struct {
	processResponse
	Children []*processTreeResponse `json:"children"`
}

type taskListResponse struct {
	UserID    int64           `json:"user_id"`
	Data      json.RawMessage `json:"data"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type archiveUploadResponse struct {
	Key       string `json:"key"`
	UploadURL string `json:"upload_url"`
}

type archiveDownloadResponse struct {
	DownloadURL string `json:"download_url"`
}

func toUserResponse(user *models.User) *userResponse {
	return &userResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		IsActive:  user.IsActive,
		CreatedAt: user.CreatedAt,
	}
}

func toProcessResponse(process *models.Process) *processResponse {
	return &processResponse{
		ID:          process.ID,
		Title:       process.Title,
		Description: process.Description,
		Completed:   process.Completed,
		ParentID:    process.ParentID,
		OwnerID:     process.OwnerID,
		CreatedAt:   process.CreatedAt,
		UpdatedAt:   process.UpdatedAt,
	}
}

func toProcessTreeResponse(node *models.ProcessNode) *processTreeResponse {
	out := &processTreeResponse{
		processResponse: *toProcessResponse(&node.Process),
		Children:        make([]*processTreeResponse, 0, len(node.Children)),
	}
	for _, child := range node.Children {
		out.Children = append(out.Children, toProcessTreeResponse(child))
	}
	return out
}
