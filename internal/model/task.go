package model

import "time"

// Task represents a row in the `tasks` table. Every task belongs to
// exactly one owner and is only reachable through that owner's identity.
type Task struct {
	ID          uint64    `json:"id"`          // tasks.id
	OwnerID     uint64    `json:"owner_id"`    // tasks.owner_id
	Description string    `json:"description"` // tasks.description
	Completed   bool      `json:"completed"`   // tasks.completed
	CreatedAt   time.Time `json:"created_at"`  // tasks.created_at
	UpdatedAt   time.Time `json:"updated_at"`  // tasks.updated_at
}

// TaskQuery describes the optional filter, sort and pagination settings of
// a task listing. Zero values impose no constraint: a nil Completed returns
// both states, an empty SortField leaves the order unspecified, and a zero
// Limit returns every matching row.
type TaskQuery struct {
	Completed *bool  // filter on the completed flag when non-nil
	SortField string // one of createdAt, updatedAt, description, completed
	SortDesc  bool   // descending order when true
	Limit     int    // max rows to return; 0 means no limit
	Skip      int    // rows to skip before the first result
}
