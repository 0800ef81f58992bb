package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tracker/internal/model"
	"tracker/internal/ordering"
	"tracker/internal/repository"
)

// TaskService handles task-related operations
type TaskService struct {
	tasks    repository.TaskStore
	projects repository.ProjectStore
	subtasks repository.SubtaskStore
	logger   *zap.Logger
	settings
}

// NewTaskService creates a new task service
func NewTaskService(stores repository.Stores, logger *zap.Logger, opts ...Option) *TaskService {
	return &TaskService{
		tasks:    stores.Tasks,
		projects: stores.Projects,
		subtasks: stores.Subtasks,
		logger:   logger,
		settings: newSettings(opts),
	}
}

func (s *TaskService) List(ctx context.Context, filter model.TaskFilter) ([]model.Task, error) {
	return s.tasks.List(ctx, filter)
}

func (s *TaskService) Get(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	return s.tasks.GetByID(ctx, id)
}

// Create appends a new task to the end of its (project, status) column.
func (s *TaskService) Create(ctx context.Context, in model.TaskInput) (*model.Task, error) {
	s.fillTaskDefaults(&in)
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.projects.GetByID(ctx, in.ProjectID); err != nil {
		return nil, err
	}

	highest, err := s.tasks.MaxOrder(ctx, in.ProjectID, in.Status)
	if err != nil {
		return nil, fmt.Errorf("failed to compute order: %w", err)
	}

	now := s.timestamp()
	task := &model.Task{
		ID:        uuid.New(),
		ProjectID: in.ProjectID,
		Title:     in.Title,
		Notes:     in.Notes,
		Status:    in.Status,
		Assignee:  in.Assignee,
		StartDate: in.StartDate,
		DueDate:   in.DueDate,
		Order:     highest + 1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.logger.Info("Task created",
		zap.String("task_id", task.ID.String()),
		zap.String("status", string(task.Status)),
		zap.Int("order", task.Order),
	)
	return task, nil
}

// Replace overwrites the editable fields of a task. The order is kept unless
// the input names one.
func (s *TaskService) Replace(ctx context.Context, id uuid.UUID, in model.TaskInput) (*model.Task, error) {
	if in.Status == "" {
		in.Status = model.TaskStatusTodo
	}
	if strings.TrimSpace(in.Title) == "" {
		in.Title = model.DefaultTaskTitle
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := model.CheckTaskTransition(task.Status, in.Status, model.TriggerEdit); err != nil {
		return nil, err
	}
	if in.ProjectID != task.ProjectID {
		if _, err := s.projects.GetByID(ctx, in.ProjectID); err != nil {
			return nil, err
		}
	}

	task.ProjectID = in.ProjectID
	task.Title = in.Title
	task.Notes = in.Notes
	task.Status = in.Status
	task.Assignee = in.Assignee
	task.StartDate = in.StartDate
	task.DueDate = in.DueDate
	if in.Order != nil {
		task.Order = *in.Order
	}
	return s.save(ctx, task)
}

// Patch applies the present fields of patch. A status change keeps the
// task's order value.
func (s *TaskService) Patch(ctx context.Context, id uuid.UUID, patch model.TaskPatch) (*model.Task, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.Status != nil {
		if err := model.CheckTaskTransition(task.Status, *patch.Status, model.TriggerEdit); err != nil {
			return nil, err
		}
	}
	if patch.ProjectID != nil && *patch.ProjectID != task.ProjectID {
		if _, err := s.projects.GetByID(ctx, *patch.ProjectID); err != nil {
			return nil, err
		}
	}

	patch.Apply(task)
	return s.save(ctx, task)
}

func (s *TaskService) Archive(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := model.CheckTaskTransition(task.Status, model.TaskStatusArchived, model.TriggerArchive); err != nil {
		return nil, err
	}

	task.Status = model.TaskStatusArchived
	return s.save(ctx, task)
}

// Restore brings an archived task back to requested, or to done when
// requested is nil.
func (s *TaskService) Restore(ctx context.Context, id uuid.UUID, requested *model.TaskStatus) (*model.Task, error) {
	target, err := model.RestoreTarget(requested)
	if err != nil {
		return nil, err
	}

	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := model.CheckTaskTransition(task.Status, target, model.TriggerRestore); err != nil {
		return nil, err
	}

	task.Status = target
	return s.save(ctx, task)
}

func (s *TaskService) Delete(ctx context.Context, id uuid.UUID) (model.Cascade, error) {
	cascade, err := s.tasks.Delete(ctx, id)
	if err != nil {
		return model.Cascade{}, err
	}

	s.logger.Info("Task deleted", zap.String("task_id", id.String()), zap.Int64("subtasks", cascade.Subtasks))
	return cascade, nil
}

// Move drags a task to a position in a column of its project and persists
// the renumbered columns as one batch. A no-op move writes nothing.
func (s *TaskService) Move(ctx context.Context, m model.TaskMove) ([]model.TaskReorder, error) {
	task, err := s.tasks.GetByID(ctx, m.TaskID)
	if err != nil {
		return nil, err
	}
	if m.FromStatus != "" && m.FromStatus != task.Status {
		s.logger.Debug("Move source column is stale",
			zap.String("task_id", task.ID.String()),
			zap.String("client", string(m.FromStatus)),
			zap.String("stored", string(task.Status)),
		)
	}

	siblings, err := s.tasks.List(ctx, model.TaskFilter{ProjectID: &task.ProjectID})
	if err != nil {
		return nil, err
	}

	updates, err := ordering.PlanTaskMove(siblings, m)
	if err != nil {
		return nil, err
	}
	if len(updates) == 0 {
		return updates, nil
	}

	if _, err := s.tasks.BatchReorder(ctx, updates, s.timestamp()); err != nil {
		return nil, fmt.Errorf("failed to apply move: %w", err)
	}
	return updates, nil
}

// BatchReorder applies a list of {id, status?, order?} records. Unknown ids
// are skipped; malformed values reject the whole batch before any write.
func (s *TaskService) BatchReorder(ctx context.Context, updates []model.TaskReorder) (int, error) {
	for _, u := range updates {
		if u.Status != nil && !u.Status.Valid() {
			return 0, fmt.Errorf("%w: %q", model.ErrInvalidStatus, *u.Status)
		}
		if u.Order != nil && *u.Order < 0 {
			return 0, fmt.Errorf("%w: order", model.ErrInvalidField)
		}
	}

	applied, err := s.tasks.BatchReorder(ctx, updates, s.timestamp())
	if err != nil {
		return 0, err
	}
	if skipped := len(updates) - applied; skipped > 0 {
		s.logger.Debug("Batch reorder skipped unknown tasks", zap.Int("skipped", skipped))
	}
	return applied, nil
}

// Progress counts the done subtasks of a task.
func (s *TaskService) Progress(ctx context.Context, id uuid.UUID) (model.Progress, error) {
	if _, err := s.tasks.GetByID(ctx, id); err != nil {
		return model.Progress{}, err
	}

	subtasks, err := s.subtasks.List(ctx, model.SubtaskFilter{TaskID: &id})
	if err != nil {
		return model.Progress{}, err
	}

	progress := model.Progress{Total: len(subtasks)}
	for _, st := range subtasks {
		if st.Status == model.SubtaskStatusDone {
			progress.Done++
		}
	}
	return progress, nil
}

func (s *TaskService) fillTaskDefaults(in *model.TaskInput) {
	if strings.TrimSpace(in.Title) == "" {
		in.Title = model.DefaultTaskTitle
	}
	if in.Status == "" {
		in.Status = model.TaskStatusTodo
	}
	if in.Assignee == "" {
		in.Assignee = s.defaultAssignee
	}
}

func (s *TaskService) save(ctx context.Context, task *model.Task) (*model.Task, error) {
	task.UpdatedAt = s.timestamp()
	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}
