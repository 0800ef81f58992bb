package filestore

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"tracker/internal/model"
	"tracker/internal/repository"
)

type taskStore struct {
	s *Store
}

var _ repository.TaskStore = (*taskStore)(nil)

func (t *taskStore) List(_ context.Context, filter model.TaskFilter) ([]model.Task, error) {
	var out []model.Task
	err := t.s.read(func(doc *document) error {
		out = make([]model.Task, 0, len(doc.Tasks))
		for _, task := range doc.Tasks {
			if filter.Match(task) {
				out = append(out, cloneTask(task))
			}
		}
		return nil
	})
	sortTasks(out)
	return out, err
}

func (t *taskStore) GetByID(_ context.Context, id uuid.UUID) (*model.Task, error) {
	var out *model.Task
	err := t.s.read(func(doc *document) error {
		i := findTask(doc, id)
		if i < 0 {
			return repository.ErrTaskNotFound
		}
		task := cloneTask(doc.Tasks[i])
		out = &task
		return nil
	})
	return out, err
}

func (t *taskStore) Create(_ context.Context, task *model.Task) error {
	return t.s.write(func(doc *document) error {
		if findTask(doc, task.ID) >= 0 {
			return fmt.Errorf("task %s already exists", task.ID)
		}
		doc.Tasks = append(doc.Tasks, cloneTask(*task))
		return nil
	})
}

func (t *taskStore) Update(_ context.Context, task *model.Task) error {
	return t.s.write(func(doc *document) error {
		i := findTask(doc, task.ID)
		if i < 0 {
			return repository.ErrTaskNotFound
		}
		doc.Tasks[i] = cloneTask(*task)
		return nil
	})
}

func (t *taskStore) Delete(_ context.Context, id uuid.UUID) (model.Cascade, error) {
	var cascade model.Cascade
	err := t.s.write(func(doc *document) error {
		i := findTask(doc, id)
		if i < 0 {
			return repository.ErrTaskNotFound
		}
		doc.Tasks = append(doc.Tasks[:i], doc.Tasks[i+1:]...)
		cascade.Tasks = 1

		subtasks := doc.Subtasks[:0]
		for _, st := range doc.Subtasks {
			if st.TaskID == id {
				cascade.Subtasks++
				continue
			}
			subtasks = append(subtasks, st)
		}
		doc.Subtasks = subtasks
		return nil
	})
	if err != nil {
		return model.Cascade{}, err
	}
	return cascade, nil
}

func (t *taskStore) MaxOrder(_ context.Context, projectID uuid.UUID, status model.TaskStatus) (int, error) {
	highest := -1
	err := t.s.read(func(doc *document) error {
		for _, task := range doc.Tasks {
			if task.ProjectID == projectID && task.Status == status && task.Order > highest {
				highest = task.Order
			}
		}
		return nil
	})
	return highest, err
}

func (t *taskStore) BatchReorder(_ context.Context, updates []model.TaskReorder, at time.Time) (int, error) {
	applied := 0
	err := t.s.write(func(doc *document) error {
		for _, update := range updates {
			id, err := uuid.Parse(update.ID)
			if err != nil {
				continue
			}
			i := findTask(doc, id)
			if i < 0 {
				continue
			}
			if update.Status != nil {
				doc.Tasks[i].Status = *update.Status
			}
			if update.Order != nil {
				doc.Tasks[i].Order = *update.Order
			}
			doc.Tasks[i].UpdatedAt = at
			applied++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return applied, nil
}

func findTask(doc *document, id uuid.UUID) int {
	for i, task := range doc.Tasks {
		if task.ID == id {
			return i
		}
	}
	return -1
}
