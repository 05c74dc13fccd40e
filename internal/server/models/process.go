package models

import "time"

// Process is a single node in a user's task tree. ParentID is nil for
// root-level processes.
type Process struct {
	ID          int64
	OwnerID     int64
	ParentID    *int64
	Title       string
	Description *string
	Completed   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ProcessNode is a Process with its resolved children, as served by the
// tree-shaped read endpoints.
type ProcessNode struct {
	Process
	Children []*ProcessNode
}
