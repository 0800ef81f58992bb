package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"tracker/internal/model"
)

type SubtaskRepository struct {
	db *gorm.DB
}

var _ SubtaskStore = (*SubtaskRepository)(nil)

func NewSubtaskRepository(db *gorm.DB) *SubtaskRepository {
	return &SubtaskRepository{db: db}
}

func (r *SubtaskRepository) List(ctx context.Context, filter model.SubtaskFilter) ([]model.Subtask, error) {
	var subtasks []model.Subtask
	q := r.db.WithContext(ctx)
	if filter.TaskID != nil {
		q = q.Where("task_id = ?", *filter.TaskID)
	}
	if err := q.Order("position").Order("created_at").Order("id").Find(&subtasks).Error; err != nil {
		return nil, err
	}
	return subtasks, nil
}

func (r *SubtaskRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Subtask, error) {
	var subtask model.Subtask
	if err := r.db.WithContext(ctx).First(&subtask, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubtaskNotFound
		}
		return nil, err
	}
	return &subtask, nil
}

func (r *SubtaskRepository) Create(ctx context.Context, subtask *model.Subtask) error {
	return r.db.WithContext(ctx).Create(subtask).Error
}

func (r *SubtaskRepository) Update(ctx context.Context, subtask *model.Subtask) error {
	result := r.db.WithContext(ctx).Model(subtask).Select("*").Updates(subtask)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSubtaskNotFound
	}
	return nil
}

func (r *SubtaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&model.Subtask{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSubtaskNotFound
	}
	return nil
}

func (r *SubtaskRepository) MaxOrder(ctx context.Context, taskID uuid.UUID) (int, error) {
	var maxPosition struct {
		Max int
	}
	err := r.db.WithContext(ctx).Model(&model.Subtask{}).
		Select("COALESCE(MAX(position), -1) AS max").
		Where("task_id = ?", taskID).
		Scan(&maxPosition).Error

	return maxPosition.Max, err
}

func (r *SubtaskRepository) BatchReorder(ctx context.Context, updates []model.SubtaskReorder, at time.Time) (int, error) {
	applied := 0
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, update := range updates {
			id, err := uuid.Parse(update.ID)
			if err != nil {
				continue
			}

			values := map[string]interface{}{"updated_at": at}
			if update.TaskID != nil {
				taskID, err := uuid.Parse(*update.TaskID)
				if err != nil {
					continue
				}
				values["task_id"] = taskID
			}
			if update.Order != nil {
				values["position"] = *update.Order
			}

			result := tx.Model(&model.Subtask{}).Where("id = ?", id).Updates(values)
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

// NewGormStores wires the postgres-backed stores.
func NewGormStores(db *gorm.DB) Stores {
	return Stores{
		Projects: NewProjectRepository(db),
		Tasks:    NewTaskRepository(db),
		Subtasks: NewSubtaskRepository(db),
	}
}
