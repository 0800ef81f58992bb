package reconciler

import (
	"github.com/google/uuid"

	"tracker/internal/model"
)

// applyTaskPatch mirrors the server's patch on the local copy. A task that is
// not held locally is left alone; the request still goes out.
func applyTaskPatch(tasks []model.Task, id uuid.UUID, patch model.TaskPatch) []model.Task {
	for i := range tasks {
		if tasks[i].ID == id {
			patch.Apply(&tasks[i])
			break
		}
	}
	return tasks
}

func applySubtaskPatch(subtasks []model.Subtask, id uuid.UUID, patch model.SubtaskPatch) []model.Subtask {
	for i := range subtasks {
		if subtasks[i].ID == id {
			patch.Apply(&subtasks[i])
			break
		}
	}
	return subtasks
}

// applyTaskReorders sets status and order from each record, skipping ids the
// collection does not hold, as the server does.
func applyTaskReorders(tasks []model.Task, updates []model.TaskReorder) []model.Task {
	index := make(map[uuid.UUID]int, len(tasks))
	for i, t := range tasks {
		index[t.ID] = i
	}
	for _, u := range updates {
		id, err := uuid.Parse(u.ID)
		if err != nil {
			continue
		}
		i, ok := index[id]
		if !ok {
			continue
		}
		if u.Status != nil {
			tasks[i].Status = *u.Status
		}
		if u.Order != nil {
			tasks[i].Order = *u.Order
		}
	}
	return tasks
}

func applySubtaskReorders(subtasks []model.Subtask, updates []model.SubtaskReorder) []model.Subtask {
	index := make(map[uuid.UUID]int, len(subtasks))
	for i, s := range subtasks {
		index[s.ID] = i
	}
	for _, u := range updates {
		id, err := uuid.Parse(u.ID)
		if err != nil {
			continue
		}
		i, ok := index[id]
		if !ok {
			continue
		}
		if u.TaskID != nil {
			taskID, err := uuid.Parse(*u.TaskID)
			if err != nil {
				continue
			}
			subtasks[i].TaskID = taskID
		}
		if u.Order != nil {
			subtasks[i].Order = *u.Order
		}
	}
	return subtasks
}
