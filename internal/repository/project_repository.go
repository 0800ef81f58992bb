package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"tracker/internal/model"
)

type ProjectRepository struct {
	db *gorm.DB
}

var _ ProjectStore = (*ProjectRepository)(nil)

func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

func (r *ProjectRepository) List(ctx context.Context, filter model.ProjectFilter) ([]model.Project, error) {
	var projects []model.Project
	q := r.db.WithContext(ctx)
	if filter.Archived != nil {
		q = q.Where("archived = ?", *filter.Archived)
	}
	if err := q.Order("created_at").Order("id").Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

func (r *ProjectRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Project, error) {
	var project model.Project
	if err := r.db.WithContext(ctx).First(&project, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	return &project, nil
}

func (r *ProjectRepository) Create(ctx context.Context, project *model.Project) error {
	return r.db.WithContext(ctx).Create(project).Error
}

func (r *ProjectRepository) Update(ctx context.Context, project *model.Project) error {
	result := r.db.WithContext(ctx).Model(project).Select("*").Updates(project)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrProjectNotFound
	}
	return nil
}

// Delete removes subtasks, tasks and the project in one transaction.
func (r *ProjectRepository) Delete(ctx context.Context, id uuid.UUID) (model.Cascade, error) {
	var cascade model.Cascade
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var taskIDs []uuid.UUID
		if err := tx.Model(&model.Task{}).Where("project_id = ?", id).Pluck("id", &taskIDs).Error; err != nil {
			return err
		}

		if len(taskIDs) > 0 {
			subtasks := tx.Where("task_id IN ?", taskIDs).Delete(&model.Subtask{})
			if subtasks.Error != nil {
				return subtasks.Error
			}
			cascade.Subtasks = subtasks.RowsAffected

			tasks := tx.Where("project_id = ?", id).Delete(&model.Task{})
			if tasks.Error != nil {
				return tasks.Error
			}
			cascade.Tasks = tasks.RowsAffected
		}

		project := tx.Delete(&model.Project{}, "id = ?", id)
		if project.Error != nil {
			return project.Error
		}
		if project.RowsAffected == 0 {
			return ErrProjectNotFound
		}
		cascade.Projects = project.RowsAffected
		return nil
	})
	if err != nil {
		return model.Cascade{}, err
	}
	return cascade, nil
}
