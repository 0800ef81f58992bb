package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tracker/internal/model"
	"tracker/internal/repository"
)

// ProjectService handles project-related operations
type ProjectService struct {
	projects repository.ProjectStore
	logger   *zap.Logger
	settings
}

// NewProjectService creates a new project service
func NewProjectService(projects repository.ProjectStore, logger *zap.Logger, opts ...Option) *ProjectService {
	return &ProjectService{
		projects: projects,
		logger:   logger,
		settings: newSettings(opts),
	}
}

func (s *ProjectService) List(ctx context.Context, filter model.ProjectFilter) ([]model.Project, error) {
	return s.projects.List(ctx, filter)
}

func (s *ProjectService) Get(ctx context.Context, id uuid.UUID) (*model.Project, error) {
	return s.projects.GetByID(ctx, id)
}

func (s *ProjectService) Create(ctx context.Context, in model.ProjectInput) (*model.Project, error) {
	if err := normalizeProject(&in); err != nil {
		return nil, err
	}

	now := s.timestamp()
	project := &model.Project{
		ID:          uuid.New(),
		Name:        in.Name,
		Description: in.Description,
		Color:       in.Color,
		Archived:    in.Archived,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.projects.Create(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	s.logger.Info("Project created", zap.String("project_id", project.ID.String()), zap.String("name", project.Name))
	return project, nil
}

// Replace overwrites every editable field, keeping id and createdAt.
func (s *ProjectService) Replace(ctx context.Context, id uuid.UUID, in model.ProjectInput) (*model.Project, error) {
	if err := normalizeProject(&in); err != nil {
		return nil, err
	}

	project, err := s.projects.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	project.Name = in.Name
	project.Description = in.Description
	project.Color = in.Color
	project.Archived = in.Archived
	return s.save(ctx, project)
}

func (s *ProjectService) Patch(ctx context.Context, id uuid.UUID, patch model.ProjectPatch) (*model.Project, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	project, err := s.projects.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	patch.Apply(project)
	return s.save(ctx, project)
}

func (s *ProjectService) Archive(ctx context.Context, id uuid.UUID) (*model.Project, error) {
	return s.setArchived(ctx, id, true)
}

func (s *ProjectService) Restore(ctx context.Context, id uuid.UUID) (*model.Project, error) {
	return s.setArchived(ctx, id, false)
}

// Delete removes the project together with its tasks and their subtasks.
func (s *ProjectService) Delete(ctx context.Context, id uuid.UUID) (model.Cascade, error) {
	cascade, err := s.projects.Delete(ctx, id)
	if err != nil {
		return model.Cascade{}, err
	}

	s.logger.Info("Project deleted",
		zap.String("project_id", id.String()),
		zap.Int64("tasks", cascade.Tasks),
		zap.Int64("subtasks", cascade.Subtasks),
	)
	return cascade, nil
}

func (s *ProjectService) setArchived(ctx context.Context, id uuid.UUID, archived bool) (*model.Project, error) {
	project, err := s.projects.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	project.Archived = archived
	return s.save(ctx, project)
}

func (s *ProjectService) save(ctx context.Context, project *model.Project) (*model.Project, error) {
	project.UpdatedAt = s.timestamp()
	if err := s.projects.Update(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

func normalizeProject(in *model.ProjectInput) error {
	if strings.TrimSpace(in.Name) == "" {
		in.Name = model.DefaultProjectName
	}
	if in.Color == "" {
		in.Color = model.DefaultProjectColor
	}
	if !model.ValidColor(in.Color) {
		return fmt.Errorf("%w: color", model.ErrInvalidField)
	}
	return nil
}
