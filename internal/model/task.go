package model

import (
	"time"

	"github.com/google/uuid"
)

const DefaultTaskTitle = "Untitled Task"

type Task struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ProjectID uuid.UUID  `gorm:"type:uuid;not null" json:"projectId"`
	Title     string     `gorm:"not null" json:"title"`
	Notes     string     `json:"notes"`
	Status    TaskStatus `gorm:"not null" json:"status"`
	Assignee  string     `json:"assignee"`
	StartDate *string    `json:"startDate"`
	DueDate   *string    `json:"dueDate"`
	Order     int        `gorm:"column:position;not null" json:"order"`
	CreatedAt time.Time  `gorm:"autoCreateTime:false" json:"createdAt"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime:false" json:"updatedAt"`
}

// TaskInput carries the user-editable fields for create and replace.
// Order is only honoured on replace; new tasks always go to the end of
// their column.
type TaskInput struct {
	ProjectID uuid.UUID  `json:"projectId"`
	Title     string     `json:"title,omitempty"`
	Notes     string     `json:"notes,omitempty"`
	Status    TaskStatus `json:"status,omitempty"`
	Assignee  string     `json:"assignee,omitempty"`
	StartDate *string    `json:"startDate,omitempty"`
	DueDate   *string    `json:"dueDate,omitempty"`
	Order     *int       `json:"order,omitempty"`
}

func (in TaskInput) Validate() error {
	if in.Status != "" && !in.Status.Valid() {
		return ErrInvalidStatus
	}
	if err := validateOptionalDate(in.StartDate); err != nil {
		return err
	}
	if err := validateOptionalDate(in.DueDate); err != nil {
		return err
	}
	if in.Order != nil && *in.Order < 0 {
		return ErrInvalidField
	}
	return nil
}

type TaskFilter struct {
	ProjectID *uuid.UUID
	Status    *TaskStatus
	// ActiveOnly drops archived tasks, as the kanban, list and calendar views do.
	ActiveOnly bool
}

// Match reports whether the task passes the filter.
func (f TaskFilter) Match(t Task) bool {
	if f.ProjectID != nil && t.ProjectID != *f.ProjectID {
		return false
	}
	if f.Status != nil && t.Status != *f.Status {
		return false
	}
	if f.ActiveOnly && t.Status == TaskStatusArchived {
		return false
	}
	return true
}

// TaskMove is a drag of one task from a position in one column to a
// position in another (or the same) column of its project.
type TaskMove struct {
	TaskID     uuid.UUID  `json:"taskId"`
	FromStatus TaskStatus `json:"fromStatus,omitempty"`
	ToStatus   TaskStatus `json:"toStatus"`
	FromIndex  int        `json:"fromIndex"`
	ToIndex    int        `json:"toIndex"`
}

// Progress summarises the subtasks of a task.
type Progress struct {
	Done  int `json:"done"`
	Total int `json:"total"`
}
