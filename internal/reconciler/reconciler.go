// Package reconciler applies task and subtask edits to a local State right
// away and persists them in the background. When a request fails, the
// affected collection is refetched and replaces the local copy wholesale.
package reconciler

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"tracker/internal/model"
	"tracker/internal/ordering"
)

// Remote is the authoritative store. *client.Client satisfies it.
type Remote interface {
	ListTasks(ctx context.Context, filter model.TaskFilter) ([]model.Task, error)
	ListSubtasks(ctx context.Context, filter model.SubtaskFilter) ([]model.Subtask, error)
	PatchTask(ctx context.Context, id uuid.UUID, patch model.TaskPatch) (*model.Task, error)
	PatchSubtask(ctx context.Context, id uuid.UUID, patch model.SubtaskPatch) (*model.Subtask, error)
	BatchReorderTasks(ctx context.Context, updates []model.TaskReorder) error
	BatchReorderSubtasks(ctx context.Context, updates []model.SubtaskReorder) error
}

const (
	tasksKey    = "tasks"
	subtasksKey = "subtasks"
)

type Reconciler struct {
	remote Remote
	state  *State
	logger *zap.Logger

	resyncs  singleflight.Group
	inflight sync.WaitGroup
}

type Option func(*Reconciler)

func WithLogger(logger *zap.Logger) Option {
	return func(r *Reconciler) { r.logger = logger }
}

func New(remote Remote, state *State, opts ...Option) *Reconciler {
	r := &Reconciler{
		remote: remote,
		state:  state,
		logger: zap.L(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.Named("reconciler")
	return r
}

// Pending tracks one background persistence request.
type Pending struct {
	done chan struct{}
	err  error
}

func newPending() *Pending {
	return &Pending{done: make(chan struct{})}
}

func resolved(err error) *Pending {
	p := newPending()
	p.finish(err)
	return p
}

func (p *Pending) finish(err error) {
	p.err = err
	close(p.done)
}

// Done is closed once the request and any resync it triggered have finished.
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Err is nil until Done is closed, then the request's error, if any.
func (p *Pending) Err() error {
	select {
	case <-p.done:
		return p.err
	default:
		return nil
	}
}

// Wait blocks until the request resolves and returns its error.
func (p *Pending) Wait() error {
	<-p.done
	return p.err
}

// Wait blocks until every request started so far has resolved.
func (r *Reconciler) Wait() {
	r.inflight.Wait()
}

// FetchTasks loads the collection matching filter into the state. Later
// resyncs reload with the same filter.
func (r *Reconciler) FetchTasks(ctx context.Context, filter model.TaskFilter) error {
	tasks, err := r.remote.ListTasks(ctx, filter)
	if err != nil {
		return fmt.Errorf("fetch tasks: %w", err)
	}
	r.state.replaceTasks(tasks, filter)
	return nil
}

func (r *Reconciler) FetchSubtasks(ctx context.Context, filter model.SubtaskFilter) error {
	subtasks, err := r.remote.ListSubtasks(ctx, filter)
	if err != nil {
		return fmt.Errorf("fetch subtasks: %w", err)
	}
	r.state.replaceSubtasks(subtasks, filter)
	return nil
}

// PatchTask applies patch locally and sends it. An invalid patch is rejected
// without touching the state.
func (r *Reconciler) PatchTask(ctx context.Context, id uuid.UUID, patch model.TaskPatch) *Pending {
	if err := patch.Validate(); err != nil {
		return resolved(err)
	}
	r.state.updateTasks(func(tasks []model.Task) []model.Task {
		return applyTaskPatch(tasks, id, patch)
	})
	return r.send(ctx, tasksKey, func(ctx context.Context) error {
		_, err := r.remote.PatchTask(ctx, id, patch)
		return err
	})
}

func (r *Reconciler) PatchSubtask(ctx context.Context, id uuid.UUID, patch model.SubtaskPatch) *Pending {
	if err := patch.Validate(); err != nil {
		return resolved(err)
	}
	r.state.updateSubtasks(func(subtasks []model.Subtask) []model.Subtask {
		return applySubtaskPatch(subtasks, id, patch)
	})
	return r.send(ctx, subtasksKey, func(ctx context.Context) error {
		_, err := r.remote.PatchSubtask(ctx, id, patch)
		return err
	})
}

// ReorderTasks applies a batch of {id, status?, order?} records locally and
// sends it as one batch reorder request.
func (r *Reconciler) ReorderTasks(ctx context.Context, updates []model.TaskReorder) *Pending {
	if len(updates) == 0 {
		return resolved(nil)
	}
	r.state.updateTasks(func(tasks []model.Task) []model.Task {
		return applyTaskReorders(tasks, updates)
	})
	return r.sendTaskReorders(ctx, updates)
}

func (r *Reconciler) ReorderSubtasks(ctx context.Context, updates []model.SubtaskReorder) *Pending {
	if len(updates) == 0 {
		return resolved(nil)
	}
	r.state.updateSubtasks(func(subtasks []model.Subtask) []model.Subtask {
		return applySubtaskReorders(subtasks, updates)
	})
	return r.sendSubtaskReorders(ctx, updates)
}

// MoveTask plans a kanban drag against the local state, applies it and sends
// the resulting reorder. Planning errors are returned before anything changes.
// A drop back onto the same slot resolves immediately without a request.
func (r *Reconciler) MoveTask(ctx context.Context, move model.TaskMove) (*Pending, error) {
	var updates []model.TaskReorder
	err := r.state.tryUpdateTasks(func(tasks []model.Task) ([]model.Task, error) {
		planned, err := ordering.PlanTaskMove(tasks, move)
		if err != nil {
			return nil, err
		}
		updates = planned
		return applyTaskReorders(tasks, planned), nil
	})
	if err != nil {
		return nil, err
	}
	if len(updates) == 0 {
		return resolved(nil), nil
	}
	return r.sendTaskReorders(ctx, updates), nil
}

func (r *Reconciler) MoveSubtask(ctx context.Context, move model.SubtaskMove) (*Pending, error) {
	var updates []model.SubtaskReorder
	err := r.state.tryUpdateSubtasks(func(subtasks []model.Subtask) ([]model.Subtask, error) {
		planned, err := ordering.PlanSubtaskMove(subtasks, move)
		if err != nil {
			return nil, err
		}
		updates = planned
		return applySubtaskReorders(subtasks, planned), nil
	})
	if err != nil {
		return nil, err
	}
	if len(updates) == 0 {
		return resolved(nil), nil
	}
	return r.sendSubtaskReorders(ctx, updates), nil
}

func (r *Reconciler) sendTaskReorders(ctx context.Context, updates []model.TaskReorder) *Pending {
	return r.send(ctx, tasksKey, func(ctx context.Context) error {
		return r.remote.BatchReorderTasks(ctx, updates)
	})
}

func (r *Reconciler) sendSubtaskReorders(ctx context.Context, updates []model.SubtaskReorder) *Pending {
	return r.send(ctx, subtasksKey, func(ctx context.Context) error {
		return r.remote.BatchReorderSubtasks(ctx, updates)
	})
}

// send runs request in the background. Requests are not cancellable once
// issued, so ctx only contributes its values.
func (r *Reconciler) send(ctx context.Context, collection string, request func(context.Context) error) *Pending {
	p := newPending()
	ctx = context.WithoutCancel(ctx)

	r.inflight.Add(1)
	go func() {
		defer r.inflight.Done()

		err := request(ctx)
		if err != nil {
			err = r.resyncAfter(ctx, collection, err)
		}
		p.finish(err)
	}()
	return p
}

// resyncAfter replaces the local collection with a fresh fetch after a failed
// request and records the failure on the state.
func (r *Reconciler) resyncAfter(ctx context.Context, collection string, cause error) error {
	r.logger.Warn("persist failed, resyncing", zap.String("collection", collection), zap.Error(cause))

	err := fmt.Errorf("persist %s: %w", collection, cause)
	if resyncErr := r.resync(ctx, collection); resyncErr != nil {
		r.logger.Error("resync failed", zap.String("collection", collection), zap.Error(resyncErr))
		err = errors.Join(err, fmt.Errorf("resync %s: %w", collection, resyncErr))
	}
	r.state.setErr(err)
	return err
}

// resync collapses concurrent refetches of the same collection into one.
func (r *Reconciler) resync(ctx context.Context, collection string) error {
	_, err, _ := r.resyncs.Do(collection, func() (any, error) {
		taskScope, subtaskScope := r.state.scopes()
		switch collection {
		case tasksKey:
			tasks, err := r.remote.ListTasks(ctx, taskScope)
			if err != nil {
				return nil, err
			}
			r.state.replaceTasks(tasks, taskScope)
		case subtasksKey:
			subtasks, err := r.remote.ListSubtasks(ctx, subtaskScope)
			if err != nil {
				return nil, err
			}
			r.state.replaceSubtasks(subtasks, subtaskScope)
		}
		return nil, nil
	})
	return err
}
