package models

import "time"

// TaskList is an opaque per-user JSON document, stored independently of the
// Process tree.
type TaskList struct {
	UserID    int64
	Data      []byte
	UpdatedAt time.Time
}
