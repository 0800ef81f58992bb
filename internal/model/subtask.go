package model

import (
	"time"

	"github.com/google/uuid"
)

const DefaultSubtaskTitle = "Untitled Subtask"

type Subtask struct {
	ID        uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	TaskID    uuid.UUID     `gorm:"type:uuid;not null" json:"taskId"`
	Title     string        `gorm:"not null" json:"title"`
	Notes     string        `json:"notes"`
	Status    SubtaskStatus `gorm:"not null" json:"status"`
	Assignee  string        `json:"assignee"`
	StartDate *string       `json:"startDate"`
	DueDate   *string       `json:"dueDate"`
	Order     int           `gorm:"column:position;not null" json:"order"`
	CreatedAt time.Time     `gorm:"autoCreateTime:false" json:"createdAt"`
	UpdatedAt time.Time     `gorm:"autoUpdateTime:false" json:"updatedAt"`
}

type SubtaskInput struct {
	TaskID    uuid.UUID     `json:"taskId"`
	Title     string        `json:"title,omitempty"`
	Notes     string        `json:"notes,omitempty"`
	Status    SubtaskStatus `json:"status,omitempty"`
	Assignee  string        `json:"assignee,omitempty"`
	StartDate *string       `json:"startDate,omitempty"`
	DueDate   *string       `json:"dueDate,omitempty"`
	Order     *int          `json:"order,omitempty"`
}

func (in SubtaskInput) Validate() error {
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

type SubtaskFilter struct {
	TaskID *uuid.UUID
}

func (f SubtaskFilter) Match(s Subtask) bool {
	return f.TaskID == nil || s.TaskID == *f.TaskID
}

// SubtaskMove drags a subtask within its task or over to another task.
// A nil ToTaskID keeps the subtask on its current task.
type SubtaskMove struct {
	SubtaskID uuid.UUID  `json:"subtaskId"`
	ToTaskID  *uuid.UUID `json:"toTaskId,omitempty"`
	FromIndex int        `json:"fromIndex"`
	ToIndex   int        `json:"toIndex"`
}
