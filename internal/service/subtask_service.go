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

type SubtaskService struct {
	subtasks repository.SubtaskStore
	tasks    repository.TaskStore
	logger   *zap.Logger
	settings
}

func NewSubtaskService(stores repository.Stores, logger *zap.Logger, opts ...Option) *SubtaskService {
	return &SubtaskService{
		subtasks: stores.Subtasks,
		tasks:    stores.Tasks,
		logger:   logger,
		settings: newSettings(opts),
	}
}

func (s *SubtaskService) List(ctx context.Context, filter model.SubtaskFilter) ([]model.Subtask, error) {
	return s.subtasks.List(ctx, filter)
}

func (s *SubtaskService) Get(ctx context.Context, id uuid.UUID) (*model.Subtask, error) {
	return s.subtasks.GetByID(ctx, id)
}

func (s *SubtaskService) Create(ctx context.Context, in model.SubtaskInput) (*model.Subtask, error) {
	if strings.TrimSpace(in.Title) == "" {
		in.Title = model.DefaultSubtaskTitle
	}
	if in.Status == "" {
		in.Status = model.SubtaskStatusTodo
	}
	if in.Assignee == "" {
		in.Assignee = s.defaultAssignee
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.tasks.GetByID(ctx, in.TaskID); err != nil {
		return nil, err
	}

	highest, err := s.subtasks.MaxOrder(ctx, in.TaskID)
	if err != nil {
		return nil, fmt.Errorf("failed to compute order: %w", err)
	}

	now := s.timestamp()
	subtask := &model.Subtask{
		ID:        uuid.New(),
		TaskID:    in.TaskID,
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
	if err := s.subtasks.Create(ctx, subtask); err != nil {
		return nil, fmt.Errorf("failed to create subtask: %w", err)
	}

	s.logger.Info("Subtask created", zap.String("subtask_id", subtask.ID.String()), zap.String("task_id", subtask.TaskID.String()))
	return subtask, nil
}

func (s *SubtaskService) Replace(ctx context.Context, id uuid.UUID, in model.SubtaskInput) (*model.Subtask, error) {
	if in.Status == "" {
		in.Status = model.SubtaskStatusTodo
	}
	if strings.TrimSpace(in.Title) == "" {
		in.Title = model.DefaultSubtaskTitle
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	subtask, err := s.subtasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := model.CheckSubtaskTransition(subtask.Status, in.Status); err != nil {
		return nil, err
	}
	if in.TaskID != subtask.TaskID {
		if _, err := s.tasks.GetByID(ctx, in.TaskID); err != nil {
			return nil, err
		}
	}

	subtask.TaskID = in.TaskID
	subtask.Title = in.Title
	subtask.Notes = in.Notes
	subtask.Status = in.Status
	subtask.Assignee = in.Assignee
	subtask.StartDate = in.StartDate
	subtask.DueDate = in.DueDate
	if in.Order != nil {
		subtask.Order = *in.Order
	}
	return s.save(ctx, subtask)
}

func (s *SubtaskService) Patch(ctx context.Context, id uuid.UUID, patch model.SubtaskPatch) (*model.Subtask, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	subtask, err := s.subtasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.Status != nil {
		if err := model.CheckSubtaskTransition(subtask.Status, *patch.Status); err != nil {
			return nil, err
		}
	}
	if patch.TaskID != nil && *patch.TaskID != subtask.TaskID {
		if _, err := s.tasks.GetByID(ctx, *patch.TaskID); err != nil {
			return nil, err
		}
	}

	patch.Apply(subtask)
	return s.save(ctx, subtask)
}

func (s *SubtaskService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.subtasks.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Subtask deleted", zap.String("subtask_id", id.String()))
	return nil
}

// Move reorders a subtask inside its task or carries it over to another task.
func (s *SubtaskService) Move(ctx context.Context, m model.SubtaskMove) ([]model.SubtaskReorder, error) {
	subtask, err := s.subtasks.GetByID(ctx, m.SubtaskID)
	if err != nil {
		return nil, err
	}

	siblings, err := s.subtasks.List(ctx, model.SubtaskFilter{TaskID: &subtask.TaskID})
	if err != nil {
		return nil, err
	}
	if m.ToTaskID != nil && *m.ToTaskID != subtask.TaskID {
		if _, err := s.tasks.GetByID(ctx, *m.ToTaskID); err != nil {
			return nil, err
		}
		destination, err := s.subtasks.List(ctx, model.SubtaskFilter{TaskID: m.ToTaskID})
		if err != nil {
			return nil, err
		}
		siblings = append(siblings, destination...)
	}

	updates, err := ordering.PlanSubtaskMove(siblings, m)
	if err != nil {
		return nil, err
	}
	if len(updates) == 0 {
		return updates, nil
	}

	if _, err := s.subtasks.BatchReorder(ctx, updates, s.timestamp()); err != nil {
		return nil, fmt.Errorf("failed to apply move: %w", err)
	}
	return updates, nil
}

// BatchReorder applies the records as one unit. Every parent a record moves
// a subtask to must exist before anything is written.
func (s *SubtaskService) BatchReorder(ctx context.Context, updates []model.SubtaskReorder) (int, error) {
	parents := make(map[uuid.UUID]struct{})
	for _, u := range updates {
		if u.Order != nil && *u.Order < 0 {
			return 0, fmt.Errorf("%w: order", model.ErrInvalidField)
		}
		if u.TaskID == nil {
			continue
		}
		taskID, err := uuid.Parse(*u.TaskID)
		if err != nil {
			return 0, fmt.Errorf("%w: taskId", model.ErrInvalidField)
		}
		parents[taskID] = struct{}{}
	}
	for taskID := range parents {
		if _, err := s.tasks.GetByID(ctx, taskID); err != nil {
			return 0, err
		}
	}
	return s.subtasks.BatchReorder(ctx, updates, s.timestamp())
}

func (s *SubtaskService) save(ctx context.Context, subtask *model.Subtask) (*model.Subtask, error) {
	subtask.UpdatedAt = s.timestamp()
	if err := s.subtasks.Update(ctx, subtask); err != nil {
		return nil, err
	}
	return subtask, nil
}
