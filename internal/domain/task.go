package domain

import "time"

// Task is a to-do item tracked by the system.
type Task struct {
	ID          int64
	Title       string
	Description *string
	Completed   bool
	UserID      *int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TaskPatch carries a partial task update. Nil fields are left untouched.
// Description is only applied when SetDescription is true, which allows an
// explicit null to clear it.
type TaskPatch struct {
	Title          *string
	Description    *string
	SetDescription bool
	Completed      *bool
}

// Empty reports whether the patch changes nothing.
func (p TaskPatch) Empty() bool {
	return p.Title == nil && !p.SetDescription && p.Completed == nil
}

// Apply copies the supplied fields onto task.
func (p TaskPatch) Apply(task *Task) {
	if p.Title != nil {
		task.Title = *p.Title
	}
	if p.SetDescription {
		task.Description = p.Description
	}
	if p.Completed != nil {
		task.Completed = *p.Completed
	}
}

// TaskStats aggregates completion counts over all tasks.
type TaskStats struct {
	Total     int64
	Completed int64
	Pending   int64
}
