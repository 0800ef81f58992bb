package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	DefaultProjectName  = "Untitled Project"
	DefaultProjectColor = "#8B5CF6"
)

type Project struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"not null" json:"name"`
	Description string    `json:"description"`
	Color       string    `gorm:"not null" json:"color"`
	Archived    bool      `gorm:"not null" json:"archived"`
	CreatedAt   time.Time `gorm:"autoCreateTime:false" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime:false" json:"updatedAt"`
}

// ProjectInput carries the user-editable fields for create and replace.
type ProjectInput struct {
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	Color       string `json:"color,omitempty"`
	Archived    bool   `json:"archived,omitempty"`
}

type ProjectFilter struct {
	Archived *bool
}

// Cascade counts the rows removed by a delete.
type Cascade struct {
	Projects int64 `json:"projects"`
	Tasks    int64 `json:"tasks"`
	Subtasks int64 `json:"subtasks"`
}
