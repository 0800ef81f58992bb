package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"tracker/internal/model"
)

type TaskRepository struct {
	db *gorm.DB
}

var _ TaskStore = (*TaskRepository)(nil)

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// List returns tasks matching filter, ordered by position within each group
func (r *TaskRepository) List(ctx context.Context, filter model.TaskFilter) ([]model.Task, error) {
	var tasks []model.Task
	q := r.db.WithContext(ctx)
	if filter.ProjectID != nil {
		q = q.Where("project_id = ?", *filter.ProjectID)
	}
	if filter.Status != nil {
		q = q.Where("status = ?", *filter.Status)
	}
	if filter.ActiveOnly {
		q = q.Where("status <> ?", model.TaskStatusArchived)
	}
	result := q.Order("position").Order("created_at").Order("id").Find(&tasks)
	if result.Error != nil {
		return nil, result.Error
	}
	return tasks, nil
}

// GetByID retrieves a task by its ID
func (r *TaskRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	var task model.Task
	result := r.db.WithContext(ctx).First(&task, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, result.Error
	}
	return &task, nil
}

// Create adds a new task to the database
func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

// Update writes every column of an existing task
func (r *TaskRepository) Update(ctx context.Context, task *model.Task) error {
	// Save would fall back to an upsert when nothing matches.
	result := r.db.WithContext(ctx).Model(task).Select("*").Updates(task)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// Delete removes a task and its subtasks
func (r *TaskRepository) Delete(ctx context.Context, id uuid.UUID) (model.Cascade, error) {
	var cascade model.Cascade
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		subtasks := tx.Where("task_id = ?", id).Delete(&model.Subtask{})
		if subtasks.Error != nil {
			return subtasks.Error
		}

		task := tx.Delete(&model.Task{}, "id = ?", id)
		if task.Error != nil {
			return task.Error
		}
		if task.RowsAffected == 0 {
			return ErrTaskNotFound
		}

		cascade.Tasks = task.RowsAffected
		cascade.Subtasks = subtasks.RowsAffected
		return nil
	})
	if err != nil {
		return model.Cascade{}, err
	}
	return cascade, nil
}

func (r *TaskRepository) MaxOrder(ctx context.Context, projectID uuid.UUID, status model.TaskStatus) (int, error) {
	var maxPosition struct {
		Max int
	}
	err := r.db.WithContext(ctx).Model(&model.Task{}).
		Select("COALESCE(MAX(position), -1) AS max").
		Where("project_id = ? AND status = ?", projectID, status).
		Scan(&maxPosition).Error

	return maxPosition.Max, err
}

// BatchReorder applies status and position updates in a single transaction.
// Records whose id does not resolve to a task are skipped.
func (r *TaskRepository) BatchReorder(ctx context.Context, updates []model.TaskReorder, at time.Time) (int, error) {
	applied := 0
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, update := range updates {
			id, err := uuid.Parse(update.ID)
			if err != nil {
				continue
			}

			values := map[string]interface{}{"updated_at": at}
			if update.Status != nil {
				values["status"] = string(*update.Status)
			}
			if update.Order != nil {
				values["position"] = *update.Order
			}

			result := tx.Model(&model.Task{}).Where("id = ?", id).Updates(values)
			if result.Error != nil {
				return result.Error
			}
			applied += int(result.RowsAffected)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return applied, nil
}
