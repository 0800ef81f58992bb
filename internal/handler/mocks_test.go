package handler_test

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"tracker/internal/model"
)

type MockProjectService struct {
	mock.Mock
}

func (m *MockProjectService) List(ctx context.Context, filter model.ProjectFilter) ([]model.Project, error) {
	args := m.Called(ctx, filter)
	projects, _ := args.Get(0).([]model.Project)
	return projects, args.Error(1)
}

func (m *MockProjectService) Get(ctx context.Context, id uuid.UUID) (*model.Project, error) {
	args := m.Called(ctx, id)
	project, _ := args.Get(0).(*model.Project)
	return project, args.Error(1)
}

func (m *MockProjectService) Create(ctx context.Context, in model.ProjectInput) (*model.Project, error) {
	args := m.Called(ctx, in)
	project, _ := args.Get(0).(*model.Project)
	return project, args.Error(1)
}

func (m *MockProjectService) Replace(ctx context.Context, id uuid.UUID, in model.ProjectInput) (*model.Project, error) {
	args := m.Called(ctx, id, in)
	project, _ := args.Get(0).(*model.Project)
	return project, args.Error(1)
}

func (m *MockProjectService) Patch(ctx context.Context, id uuid.UUID, patch model.ProjectPatch) (*model.Project, error) {
	args := m.Called(ctx, id, patch)
	project, _ := args.Get(0).(*model.Project)
	return project, args.Error(1)
}

func (m *MockProjectService) Archive(ctx context.Context, id uuid.UUID) (*model.Project, error) {
	args := m.Called(ctx, id)
	project, _ := args.Get(0).(*model.Project)
	return project, args.Error(1)
}

func (m *MockProjectService) Restore(ctx context.Context, id uuid.UUID) (*model.Project, error) {
	args := m.Called(ctx, id)
	project, _ := args.Get(0).(*model.Project)
	return project, args.Error(1)
}

func (m *MockProjectService) Delete(ctx context.Context, id uuid.UUID) (model.Cascade, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Cascade), args.Error(1)
}

type MockTaskService struct {
	mock.Mock
}

func (m *MockTaskService) List(ctx context.Context, filter model.TaskFilter) ([]model.Task, error) {
	args := m.Called(ctx, filter)
	tasks, _ := args.Get(0).([]model.Task)
	return tasks, args.Error(1)
}

func (m *MockTaskService) Get(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	args := m.Called(ctx, id)
	task, _ := args.Get(0).(*model.Task)
	return task, args.Error(1)
}

func (m *MockTaskService) Create(ctx context.Context, in model.TaskInput) (*model.Task, error) {
	args := m.Called(ctx, in)
	task, _ := args.Get(0).(*model.Task)
	return task, args.Error(1)
}

func (m *MockTaskService) Replace(ctx context.Context, id uuid.UUID, in model.TaskInput) (*model.Task, error) {
	args := m.Called(ctx, id, in)
	task, _ := args.Get(0).(*model.Task)
	return task, args.Error(1)
}

func (m *MockTaskService) Patch(ctx context.Context, id uuid.UUID, patch model.TaskPatch) (*model.Task, error) {
	args := m.Called(ctx, id, patch)
	task, _ := args.Get(0).(*model.Task)
	return task, args.Error(1)
}

func (m *MockTaskService) Archive(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	args := m.Called(ctx, id)
	task, _ := args.Get(0).(*model.Task)
	return task, args.Error(1)
}

func (m *MockTaskService) Restore(ctx context.Context, id uuid.UUID, requested *model.TaskStatus) (*model.Task, error) {
	args := m.Called(ctx, id, requested)
	task, _ := args.Get(0).(*model.Task)
	return task, args.Error(1)
}

func (m *MockTaskService) Delete(ctx context.Context, id uuid.UUID) (model.Cascade, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Cascade), args.Error(1)
}

func (m *MockTaskService) Move(ctx context.Context, move model.TaskMove) ([]model.TaskReorder, error) {
	args := m.Called(ctx, move)
	updates, _ := args.Get(0).([]model.TaskReorder)
	return updates, args.Error(1)
}

func (m *MockTaskService) BatchReorder(ctx context.Context, updates []model.TaskReorder) (int, error) {
	args := m.Called(ctx, updates)
	return args.Int(0), args.Error(1)
}

func (m *MockTaskService) Progress(ctx context.Context, id uuid.UUID) (model.Progress, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Progress), args.Error(1)
}

type MockSubtaskService struct {
	mock.Mock
}

func (m *MockSubtaskService) List(ctx context.Context, filter model.SubtaskFilter) ([]model.Subtask, error) {
	args := m.Called(ctx, filter)
	subtasks, _ := args.Get(0).([]model.Subtask)
	return subtasks, args.Error(1)
}

func (m *MockSubtaskService) Get(ctx context.Context, id uuid.UUID) (*model.Subtask, error) {
	args := m.Called(ctx, id)
	subtask, _ := args.Get(0).(*model.Subtask)
	return subtask, args.Error(1)
}

func (m *MockSubtaskService) Create(ctx context.Context, in model.SubtaskInput) (*model.Subtask, error) {
	args := m.Called(ctx, in)
	subtask, _ := args.Get(0).(*model.Subtask)
	return subtask, args.Error(1)
}

func (m *MockSubtaskService) Replace(ctx context.Context, id uuid.UUID, in model.SubtaskInput) (*model.Subtask, error) {
	args := m.Called(ctx, id, in)
	subtask, _ := args.Get(0).(*model.Subtask)
	return subtask, args.Error(1)
}

func (m *MockSubtaskService) Patch(ctx context.Context, id uuid.UUID, patch model.SubtaskPatch) (*model.Subtask, error) {
	args := m.Called(ctx, id, patch)
	subtask, _ := args.Get(0).(*model.Subtask)
	return subtask, args.Error(1)
}

func (m *MockSubtaskService) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockSubtaskService) Move(ctx context.Context, move model.SubtaskMove) ([]model.SubtaskReorder, error) {
	args := m.Called(ctx, move)
	updates, _ := args.Get(0).([]model.SubtaskReorder)
	return updates, args.Error(1)
}

func (m *MockSubtaskService) BatchReorder(ctx context.Context, updates []model.SubtaskReorder) (int, error) {
	args := m.Called(ctx, updates)
	return args.Int(0), args.Error(1)
}
