package filestore

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"tracker/internal/model"
	"tracker/internal/repository"
)

type subtaskStore struct {
	s *Store
}

var _ repository.SubtaskStore = (*subtaskStore)(nil)

func (st *subtaskStore) List(_ context.Context, filter model.SubtaskFilter) ([]model.Subtask, error) {
	var out []model.Subtask
	err := st.s.read(func(doc *document) error {
		out = make([]model.Subtask, 0, len(doc.Subtasks))
		for _, subtask := range doc.Subtasks {
			if filter.Match(subtask) {
				out = append(out, cloneSubtask(subtask))
			}
		}
		return nil
	})
	sortSubtasks(out)
	return out, err
}

func (st *subtaskStore) GetByID(_ context.Context, id uuid.UUID) (*model.Subtask, error) {
	var out *model.Subtask
	err := st.s.read(func(doc *document) error {
		i := findSubtask(doc, id)
		if i < 0 {
			return repository.ErrSubtaskNotFound
		}
		subtask := cloneSubtask(doc.Subtasks[i])
		out = &subtask
		return nil
	})
	return out, err
}

func (st *subtaskStore) Create(_ context.Context, subtask *model.Subtask) error {
	return st.s.write(func(doc *document) error {
		if findSubtask(doc, subtask.ID) >= 0 {
			return fmt.Errorf("subtask %s already exists", subtask.ID)
		}
		doc.Subtasks = append(doc.Subtasks, cloneSubtask(*subtask))
		return nil
	})
}

func (st *subtaskStore) Update(_ context.Context, subtask *model.Subtask) error {
	return st.s.write(func(doc *document) error {
		i := findSubtask(doc, subtask.ID)
		if i < 0 {
			return repository.ErrSubtaskNotFound
		}
		doc.Subtasks[i] = cloneSubtask(*subtask)
		return nil
	})
}

func (st *subtaskStore) Delete(_ context.Context, id uuid.UUID) error {
	return st.s.write(func(doc *document) error {
		i := findSubtask(doc, id)
		if i < 0 {
			return repository.ErrSubtaskNotFound
		}
		doc.Subtasks = append(doc.Subtasks[:i], doc.Subtasks[i+1:]...)
		return nil
	})
}

func (st *subtaskStore) MaxOrder(_ context.Context, taskID uuid.UUID) (int, error) {
	highest := -1
	err := st.s.read(func(doc *document) error {
		for _, subtask := range doc.Subtasks {
			if subtask.TaskID == taskID && subtask.Order > highest {
				highest = subtask.Order
			}
		}
		return nil
	})
	return highest, err
}

func (st *subtaskStore) BatchReorder(_ context.Context, updates []model.SubtaskReorder, at time.Time) (int, error) {
	applied := 0
	err := st.s.write(func(doc *document) error {
		for _, update := range updates {
			id, err := uuid.Parse(update.ID)
			if err != nil {
				continue
			}
			i := findSubtask(doc, id)
			if i < 0 {
				continue
			}
			var taskID *uuid.UUID
			if update.TaskID != nil {
				parsed, err := uuid.Parse(*update.TaskID)
				if err != nil {
					continue
				}
				taskID = &parsed
			}

			if taskID != nil {
				doc.Subtasks[i].TaskID = *taskID
			}
			if update.Order != nil {
				doc.Subtasks[i].Order = *update.Order
			}
			doc.Subtasks[i].UpdatedAt = at
			applied++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return applied, nil
}

func findSubtask(doc *document, id uuid.UUID) int {
	for i, subtask := range doc.Subtasks {
		if subtask.ID == id {
			return i
		}
	}
	return -1
}
