package model

import "fmt"

type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusDone       TaskStatus = "done"
	TaskStatusArchived   TaskStatus = "archived"
)

// KanbanColumns are the task statuses shown as board columns, left to right.
var KanbanColumns = []TaskStatus{TaskStatusTodo, TaskStatusInProgress, TaskStatusDone}

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusDone, TaskStatusArchived:
		return true
	}
	return false
}

// Active reports whether the status is one of the kanban columns.
func (s TaskStatus) Active() bool {
	return s.Valid() && s != TaskStatusArchived
}

type SubtaskStatus string

const (
	SubtaskStatusTodo SubtaskStatus = "todo"
	SubtaskStatusDone SubtaskStatus = "done"
)

func (s SubtaskStatus) Valid() bool {
	return s == SubtaskStatusTodo || s == SubtaskStatusDone
}

// Trigger says what caused a status change.
type Trigger int

const (
	// TriggerEdit is an explicit edit of the status field.
	TriggerEdit Trigger = iota
	// TriggerDrag is a drop into another kanban column.
	TriggerDrag
	// TriggerArchive is the dedicated archive action.
	TriggerArchive
	// TriggerRestore is the dedicated restore action.
	TriggerRestore
)

func (t Trigger) String() string {
	switch t {
	case TriggerEdit:
		return "edit"
	case TriggerDrag:
		return "drag"
	case TriggerArchive:
		return "archive"
	case TriggerRestore:
		return "restore"
	}
	return fmt.Sprintf("trigger(%d)", int(t))
}

// DefaultRestoreStatus is where a restored task lands when no status is chosen.
const DefaultRestoreStatus = TaskStatusDone

// CheckTaskTransition validates moving a task from one status to another.
//
// The kanban states may be switched freely in either direction by an edit or
// a drag. Archive is reachable from any active state and restore leads back to
// an active state. Drags never touch the archived state.
func CheckTaskTransition(from, to TaskStatus, trigger Trigger) error {
	if !to.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, to)
	}
	if !from.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, from)
	}

	switch trigger {
	case TriggerEdit:
		return nil
	case TriggerDrag:
		if from.Active() && to.Active() {
			return nil
		}
	case TriggerArchive:
		if to == TaskStatusArchived {
			return nil
		}
	case TriggerRestore:
		if from == TaskStatusArchived && to.Active() {
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s by %s", ErrInvalidTransition, from, to, trigger)
}

// RestoreTarget resolves the status a restored task moves to.
func RestoreTarget(requested *TaskStatus) (TaskStatus, error) {
	if requested == nil || *requested == "" {
		return DefaultRestoreStatus, nil
	}
	if !requested.Active() {
		return "", fmt.Errorf("%w: cannot restore to %q", ErrInvalidTransition, *requested)
	}
	return *requested, nil
}

// CheckSubtaskTransition validates a subtask status change. Subtasks toggle
// between todo and done and have no archived state.
func CheckSubtaskTransition(from, to SubtaskStatus) error {
	if !to.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, to)
	}
	if !from.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, from)
	}
	return nil
}
