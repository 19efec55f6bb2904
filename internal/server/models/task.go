package models

import "time"

const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
)

// ValidStatus reports whether s is one of the known task statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Task is a to-do item. Every task has exactly one owner.
type Task struct {
	ID            int64      `json:"id"`
	OwnerID       int64      `json:"owner_id"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Status        string     `json:"status"`
	Completed     bool       `json:"completed"`
	CompletedAt   *time.Time `json:"completed_at"`
	AttachmentKey *string    `json:"-"`
	HasAttachment bool       `json:"has_attachment"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// TaskInput carries the fields accepted when a task is created.
type TaskInput struct {
	Title       string
	Description string
	Status      string
}

// TaskPatch is a partial update: nil fields are left unchanged. Completed is
// an alias for Status (true means completed, false means pending) and is
// ignored when Status is also set.
type TaskPatch struct {
	Title       *string
	Description *string
	Status      *string
	Completed   *bool
}

// Empty reports whether the patch changes nothing.
func (p TaskPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Status == nil && p.Completed == nil
}

// EffectiveStatus resolves Status and the Completed alias into one value.
func (p TaskPatch) EffectiveStatus() *string {
	if p.Status != nil {
		return p.Status
	}
	if p.Completed != nil {
		s := StatusPending
		if *p.Completed {
			s = StatusCompleted
		}
		return &s
	}
	return nil
}
