package reconciler

import (
	"cmp"
	"slices"
	"sync"

	"github.com/google/uuid"

	"tracker/internal/model"
)

// State is the client-side copy of the task and subtask collections. Readers
// always get copies; only the Reconciler mutates it.
type State struct {
	mu sync.RWMutex

	tasks    []model.Task
	subtasks []model.Subtask

	// scopes remember the last fetch filters so a resync reloads the same view.
	taskScope    model.TaskFilter
	subtaskScope model.SubtaskFilter

	err error
}

func NewState() *State {
	return &State{
		tasks:    []model.Task{},
		subtasks: []model.Subtask{},
	}
}

func (s *State) Tasks() []model.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneTasks(s.tasks)
}

func (s *State) Subtasks() []model.Subtask {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneSubtasks(s.subtasks)
}

// TasksByStatus is one kanban column: the project's tasks in status, sorted
// by order with ties kept in collection order.
func (s *State) TasksByStatus(projectID uuid.UUID, status model.TaskStatus) []model.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var column []model.Task
	for _, t := range s.tasks {
		if t.ProjectID == projectID && t.Status == status {
			column = append(column, cloneTask(t))
		}
	}
	slices.SortStableFunc(column, func(a, b model.Task) int {
		return cmp.Compare(a.Order, b.Order)
	})
	return column
}

func (s *State) SubtasksByTask(taskID uuid.UUID) []model.Subtask {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var list []model.Subtask
	for _, st := range s.subtasks {
		if st.TaskID == taskID {
			list = append(list, cloneSubtask(st))
		}
	}
	slices.SortStableFunc(list, func(a, b model.Subtask) int {
		return cmp.Compare(a.Order, b.Order)
	})
	return list
}

// Err is the most recent persistence failure, if any.
func (s *State) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

func (s *State) setErr(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

func (s *State) replaceTasks(tasks []model.Task, scope model.TaskFilter) {
	s.mu.Lock()
	s.tasks = cloneTasks(tasks)
	s.taskScope = scope
	s.mu.Unlock()
}

func (s *State) replaceSubtasks(subtasks []model.Subtask, scope model.SubtaskFilter) {
	s.mu.Lock()
	s.subtasks = cloneSubtasks(subtasks)
	s.subtaskScope = scope
	s.mu.Unlock()
}

func (s *State) scopes() (model.TaskFilter, model.SubtaskFilter) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.taskScope, s.subtaskScope
}

// updateTasks swaps in fn's result. fn gets a private copy.
func (s *State) updateTasks(fn func([]model.Task) []model.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = fn(cloneTasks(s.tasks))
}

func (s *State) updateSubtasks(fn func([]model.Subtask) []model.Subtask) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subtasks = fn(cloneSubtasks(s.subtasks))
}

// tryUpdateTasks is updateTasks for fallible changes; on error the
// collection is left as it was.
func (s *State) tryUpdateTasks(fn func([]model.Task) ([]model.Task, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := fn(cloneTasks(s.tasks))
	if err != nil {
		return err
	}
	s.tasks = next
	return nil
}

func (s *State) tryUpdateSubtasks(fn func([]model.Subtask) ([]model.Subtask, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := fn(cloneSubtasks(s.subtasks))
	if err != nil {
		return err
	}
	s.subtasks = next
	return nil
}

func cloneTasks(tasks []model.Task) []model.Task {
	out := make([]model.Task, len(tasks))
	for i, t := range tasks {
		out[i] = cloneTask(t)
	}
	return out
}

func cloneTask(t model.Task) model.Task {
	t.StartDate = cloneString(t.StartDate)
	t.DueDate = cloneString(t.DueDate)
	return t
}

func cloneSubtasks(subtasks []model.Subtask) []model.Subtask {
	out := make([]model.Subtask, len(subtasks))
	for i, s := range subtasks {
		out[i] = cloneSubtask(s)
	}
	return out
}

func cloneSubtask(s model.Subtask) model.Subtask {
	s.StartDate = cloneString(s.StartDate)
	s.DueDate = cloneString(s.DueDate)
	return s
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
