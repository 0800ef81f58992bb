package ordering

import (
	"tracker/internal/model"

	"github.com/google/uuid"
)

// TaskItems lists the tasks of one project as items grouped by status.
func TaskItems(tasks []model.Task, projectID uuid.UUID) []Item {
	items := make([]Item, 0, len(tasks))
	for _, t := range tasks {
		if t.ProjectID != projectID {
			continue
		}
		items = append(items, Item{ID: t.ID, Group: string(t.Status), Order: t.Order})
	}
	return items
}

// SubtaskItems lists subtasks as items grouped by their parent task.
func SubtaskItems(subtasks []model.Subtask) []Item {
	items := make([]Item, len(subtasks))
	for i, s := range subtasks {
		items[i] = Item{ID: s.ID, Group: s.TaskID.String(), Order: s.Order}
	}
	return items
}

// PlanTaskMove runs a kanban drag over the tasks of the moved task's project.
func PlanTaskMove(tasks []model.Task, m model.TaskMove) ([]model.TaskReorder, error) {
	var projectID uuid.UUID
	var current model.TaskStatus
	found := false
	for _, t := range tasks {
		if t.ID == m.TaskID {
			projectID, current, found = t.ProjectID, t.Status, true
			break
		}
	}
	if !found {
		return nil, ErrItemNotFound
	}

	to := m.ToStatus
	if to == "" {
		to = current
	}
	if err := model.CheckTaskTransition(current, to, model.TriggerDrag); err != nil {
		return nil, err
	}

	updates, err := Plan(TaskItems(tasks, projectID), Move{
		ID:        m.TaskID,
		FromGroup: string(current),
		ToGroup:   string(to),
		FromIndex: m.FromIndex,
		ToIndex:   m.ToIndex,
	})
	if err != nil {
		return nil, err
	}

	reorders := make([]model.TaskReorder, len(updates))
	for i, u := range updates {
		status := model.TaskStatus(u.Group)
		order := u.Order
		reorders[i] = model.TaskReorder{ID: u.ID.String(), Status: &status, Order: &order}
	}
	return reorders, nil
}

// PlanSubtaskMove reorders a subtask within its task or onto another task.
func PlanSubtaskMove(subtasks []model.Subtask, m model.SubtaskMove) ([]model.SubtaskReorder, error) {
	var current uuid.UUID
	found := false
	for _, s := range subtasks {
		if s.ID == m.SubtaskID {
			current, found = s.TaskID, true
			break
		}
	}
	if !found {
		return nil, ErrItemNotFound
	}

	to := current
	if m.ToTaskID != nil {
		to = *m.ToTaskID
	}

	updates, err := Plan(SubtaskItems(subtasks), Move{
		ID:        m.SubtaskID,
		FromGroup: current.String(),
		ToGroup:   to.String(),
		FromIndex: m.FromIndex,
		ToIndex:   m.ToIndex,
	})
	if err != nil {
		return nil, err
	}

	reorders := make([]model.SubtaskReorder, len(updates))
	for i, u := range updates {
		taskID := u.Group
		order := u.Order
		reorders[i] = model.SubtaskReorder{ID: u.ID.String(), TaskID: &taskID, Order: &order}
	}
	return reorders, nil
}
