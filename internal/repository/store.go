package repository

import (
	"context"
	"time"

	"tracker/internal/model"

	"github.com/google/uuid"
)

type ProjectStore interface {
	List(ctx context.Context, filter model.ProjectFilter) ([]model.Project, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Project, error)
	Create(ctx context.Context, project *model.Project) error
	Update(ctx context.Context, project *model.Project) error
	// Delete removes the project with all of its tasks and their subtasks.
	Delete(ctx context.Context, id uuid.UUID) (model.Cascade, error)
}

type TaskStore interface {
	List(ctx context.Context, filter model.TaskFilter) ([]model.Task, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Task, error)
	Create(ctx context.Context, task *model.Task) error
	Update(ctx context.Context, task *model.Task) error
	// Delete removes the task and its subtasks.
	Delete(ctx context.Context, id uuid.UUID) (model.Cascade, error)
	// MaxOrder returns the highest order in the (project, status) group, or -1.
	MaxOrder(ctx context.Context, projectID uuid.UUID, status model.TaskStatus) (int, error)
	// BatchReorder applies every record whose id resolves and reports how
	// many were applied. Unknown ids are skipped.
	BatchReorder(ctx context.Context, updates []model.TaskReorder, at time.Time) (int, error)
}

type SubtaskStore interface {
	List(ctx context.Context, filter model.SubtaskFilter) ([]model.Subtask, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Subtask, error)
	Create(ctx context.Context, subtask *model.Subtask) error
	Update(ctx context.Context, subtask *model.Subtask) error
	Delete(ctx context.Context, id uuid.UUID) error
	// MaxOrder returns the highest order among the subtasks of taskID, or -1.
	MaxOrder(ctx context.Context, taskID uuid.UUID) (int, error)
	BatchReorder(ctx context.Context, updates []model.SubtaskReorder, at time.Time) (int, error)
}

// Stores bundles one backend's entity stores.
type Stores struct {
	Projects ProjectStore
	Tasks    TaskStore
	Subtasks SubtaskStore
}
