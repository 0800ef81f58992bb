package handler

import (
	"context"

	"github.com/google/uuid"

	"tracker/internal/model"
)

type ProjectService interface {
	List(ctx context.Context, filter model.ProjectFilter) ([]model.Project, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Project, error)
	Create(ctx context.Context, in model.ProjectInput) (*model.Project, error)
	Replace(ctx context.Context, id uuid.UUID, in model.ProjectInput) (*model.Project, error)
	Patch(ctx context.Context, id uuid.UUID, patch model.ProjectPatch) (*model.Project, error)
	Archive(ctx context.Context, id uuid.UUID) (*model.Project, error)
	Restore(ctx context.Context, id uuid.UUID) (*model.Project, error)
	Delete(ctx context.Context, id uuid.UUID) (model.Cascade, error)
}

type TaskService interface {
	List(ctx context.Context, filter model.TaskFilter) ([]model.Task, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Task, error)
	Create(ctx context.Context, in model.TaskInput) (*model.Task, error)
	Replace(ctx context.Context, id uuid.UUID, in model.TaskInput) (*model.Task, error)
	Patch(ctx context.Context, id uuid.UUID, patch model.TaskPatch) (*model.Task, error)
	Archive(ctx context.Context, id uuid.UUID) (*model.Task, error)
	Restore(ctx context.Context, id uuid.UUID, requested *model.TaskStatus) (*model.Task, error)
	Delete(ctx context.Context, id uuid.UUID) (model.Cascade, error)
	Move(ctx context.Context, m model.TaskMove) ([]model.TaskReorder, error)
	BatchReorder(ctx context.Context, updates []model.TaskReorder) (int, error)
	Progress(ctx context.Context, id uuid.UUID) (model.Progress, error)
}

type SubtaskService interface {
	List(ctx context.Context, filter model.SubtaskFilter) ([]model.Subtask, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Subtask, error)
	Create(ctx context.Context, in model.SubtaskInput) (*model.Subtask, error)
	Replace(ctx context.Context, id uuid.UUID, in model.SubtaskInput) (*model.Subtask, error)
	Patch(ctx context.Context, id uuid.UUID, patch model.SubtaskPatch) (*model.Subtask, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Move(ctx context.Context, m model.SubtaskMove) ([]model.SubtaskReorder, error)
	BatchReorder(ctx context.Context, updates []model.SubtaskReorder) (int, error)
}
