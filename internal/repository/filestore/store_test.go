package filestore_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"tracker/internal/model"
	"tracker/internal/repository"
	"tracker/internal/repository/filestore"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

func seed(t *testing.T, stores repository.Stores) (model.Project, []model.Task) {
	t.Helper()
	ctx := context.Background()

	project := model.Project{ID: uuid.New(), Name: "Website", Color: model.DefaultProjectColor, CreatedAt: t0, UpdatedAt: t0}
	require.NoError(t, stores.Projects.Create(ctx, &project))

	var tasks []model.Task
	for i, title := range []string{"A", "B", "C"} {
		task := model.Task{
			ID:        uuid.New(),
			ProjectID: project.ID,
			Title:     title,
			Status:    model.TaskStatusTodo,
			Order:     i,
			CreatedAt: t0,
			UpdatedAt: t0,
		}
		require.NoError(t, stores.Tasks.Create(ctx, &task))
		tasks = append(tasks, task)
	}
	return project, tasks
}

func TestOpen_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "db.json")

	_, err := filestore.Open(path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"projects":[],"tasks":[],"subtasks":[]}`, string(data))
}

func TestOpen_RejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := filestore.Open(path)
	assert.Error(t, err)
}

func TestOpen_RejectsSchemaViolations(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"projects not an array", `{"projects": {}}`},
		{"task without projectId", `{"tasks": [{"id": "t1", "status": "todo", "order": 0}]}`},
		{"unknown task status", `{"tasks": [{"id": "t1", "projectId": "p1", "status": "blocked"}]}`},
		{"archived subtask", `{"subtasks": [{"id": "s1", "taskId": "t1", "status": "archived"}]}`},
		{"fractional order", `{"tasks": [{"id": "t1", "projectId": "p1", "order": 1.5}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "db.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.body), 0o644))

			_, err := filestore.Open(path)
			assert.Error(t, err)
		})
	}
}

func TestOpen_AcceptsPartialDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"projects": []}`), 0o644))

	store, err := filestore.Open(path)
	require.NoError(t, err)

	tasks, err := store.Stores().Tasks.List(context.Background(), model.TaskFilter{})
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	store, err := filestore.Open(path)
	require.NoError(t, err)

	project, tasks := seed(t, store.Stores())
	due := "2024-06-01"
	tasks[1].DueDate = &due
	require.NoError(t, store.Stores().Tasks.Update(context.Background(), &tasks[1]))

	reopened, err := filestore.Open(path)
	require.NoError(t, err)

	got, err := reopened.Stores().Tasks.List(context.Background(), model.TaskFilter{ProjectID: &project.ID})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"A", "B", "C"}, []string{got[0].Title, got[1].Title, got[2].Title})
	require.NotNil(t, got[1].DueDate)
	assert.Equal(t, due, *got[1].DueDate)
	assert.True(t, t0.Equal(got[0].CreatedAt))
}

func TestStore_ListSortsByOrder(t *testing.T) {
	stores := filestore.NewMemory().Stores()
	ctx := context.Background()
	_, tasks := seed(t, stores)

	applied, err := stores.Tasks.BatchReorder(ctx, []model.TaskReorder{
		{ID: tasks[0].ID.String(), Order: ptr(2)},
		{ID: tasks[2].ID.String(), Order: ptr(0)},
	}, t0.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 2, applied)

	got, err := stores.Tasks.List(ctx, model.TaskFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"C", "B", "A"}, []string{got[0].Title, got[1].Title, got[2].Title})
	assert.True(t, got[0].UpdatedAt.Equal(t0.Add(time.Minute)))
	assert.True(t, got[1].UpdatedAt.Equal(t0))
}

func TestStore_BatchReorderSkipsUnknownIDs(t *testing.T) {
	stores := filestore.NewMemory().Stores()
	ctx := context.Background()
	_, tasks := seed(t, stores)

	applied, err := stores.Tasks.BatchReorder(ctx, []model.TaskReorder{
		{ID: "garbage", Order: ptr(9)},
		{ID: uuid.NewString(), Order: ptr(9)},
		{ID: tasks[0].ID.String(), Status: ptr(model.TaskStatusDone), Order: ptr(0)},
	}, t0)
	require.NoError(t, err)
	assert.Equal(t, 1, applied)

	task, err := stores.Tasks.GetByID(ctx, tasks[0].ID)
	require.NoError(t, err)
	assert.Equal(t, model.TaskStatusDone, task.Status)
}

func TestStore_MaxOrder(t *testing.T) {
	stores := filestore.NewMemory().Stores()
	ctx := context.Background()
	project, _ := seed(t, stores)

	got, err := stores.Tasks.MaxOrder(ctx, project.ID, model.TaskStatusTodo)
	require.NoError(t, err)
	assert.Equal(t, 2, got)

	got, err = stores.Tasks.MaxOrder(ctx, project.ID, model.TaskStatusDone)
	require.NoError(t, err)
	assert.Equal(t, -1, got)
}

func TestStore_DeleteProjectCascades(t *testing.T) {
	stores := filestore.NewMemory().Stores()
	ctx := context.Background()
	project, tasks := seed(t, stores)
	other, _ := seed(t, stores)

	for i := 0; i < 2; i++ {
		subtask := model.Subtask{ID: uuid.New(), TaskID: tasks[0].ID, Title: "step", Status: model.SubtaskStatusTodo, Order: i}
		require.NoError(t, stores.Subtasks.Create(ctx, &subtask))
	}

	cascade, err := stores.Projects.Delete(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, model.Cascade{Projects: 1, Tasks: 3, Subtasks: 2}, cascade)

	_, err = stores.Projects.GetByID(ctx, project.ID)
	assert.ErrorIs(t, err, repository.ErrProjectNotFound)

	remaining, err := stores.Tasks.List(ctx, model.TaskFilter{})
	require.NoError(t, err)
	assert.Len(t, remaining, 3)
	for _, task := range remaining {
		assert.Equal(t, other.ID, task.ProjectID)
	}

	subtasks, err := stores.Subtasks.List(ctx, model.SubtaskFilter{})
	require.NoError(t, err)
	assert.Empty(t, subtasks)
}

func TestStore_DeleteTaskCascades(t *testing.T) {
	stores := filestore.NewMemory().Stores()
	ctx := context.Background()
	_, tasks := seed(t, stores)

	keep := model.Subtask{ID: uuid.New(), TaskID: tasks[1].ID, Title: "keep", Status: model.SubtaskStatusTodo}
	drop := model.Subtask{ID: uuid.New(), TaskID: tasks[0].ID, Title: "drop", Status: model.SubtaskStatusDone}
	require.NoError(t, stores.Subtasks.Create(ctx, &keep))
	require.NoError(t, stores.Subtasks.Create(ctx, &drop))

	cascade, err := stores.Tasks.Delete(ctx, tasks[0].ID)
	require.NoError(t, err)
	assert.Equal(t, model.Cascade{Tasks: 1, Subtasks: 1}, cascade)

	subtasks, err := stores.Subtasks.List(ctx, model.SubtaskFilter{})
	require.NoError(t, err)
	require.Len(t, subtasks, 1)
	assert.Equal(t, keep.ID, subtasks[0].ID)

	_, err = stores.Tasks.Delete(ctx, tasks[0].ID)
	assert.ErrorIs(t, err, repository.ErrTaskNotFound)
}

func TestStore_SubtaskBatchReorderMovesParent(t *testing.T) {
	stores := filestore.NewMemory().Stores()
	ctx := context.Background()
	_, tasks := seed(t, stores)

	subtask := model.Subtask{ID: uuid.New(), TaskID: tasks[0].ID, Title: "s", Status: model.SubtaskStatusTodo}
	require.NoError(t, stores.Subtasks.Create(ctx, &subtask))

	applied, err := stores.Subtasks.BatchReorder(ctx, []model.SubtaskReorder{
		{ID: subtask.ID.String(), TaskID: ptr("not-a-uuid"), Order: ptr(3)},
	}, t0)
	require.NoError(t, err)
	assert.Zero(t, applied)

	applied, err = stores.Subtasks.BatchReorder(ctx, []model.SubtaskReorder{
		{ID: subtask.ID.String(), TaskID: ptr(tasks[2].ID.String()), Order: ptr(0)},
	}, t0)
	require.NoError(t, err)
	assert.Equal(t, 1, applied)

	got, err := stores.Subtasks.List(ctx, model.SubtaskFilter{TaskID: &tasks[2].ID})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, subtask.ID, got[0].ID)
}

func TestStore_ReturnsCopies(t *testing.T) {
	stores := filestore.NewMemory().Stores()
	ctx := context.Background()
	_, tasks := seed(t, stores)

	got, err := stores.Tasks.GetByID(ctx, tasks[0].ID)
	require.NoError(t, err)
	got.Title = "mutated"

	again, err := stores.Tasks.GetByID(ctx, tasks[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "A", again.Title)
}

func TestStore_UpdateMissing(t *testing.T) {
	stores := filestore.NewMemory().Stores()
	ctx := context.Background()

	err := stores.Projects.Update(ctx, &model.Project{ID: uuid.New()})
	assert.ErrorIs(t, err, repository.ErrProjectNotFound)

	err = stores.Subtasks.Update(ctx, &model.Subtask{ID: uuid.New()})
	assert.ErrorIs(t, err, repository.ErrSubtaskNotFound)
}

func TestStore_ListProjectsFiltersArchived(t *testing.T) {
	stores := filestore.NewMemory().Stores()
	ctx := context.Background()

	live := model.Project{ID: uuid.New(), Name: "live", CreatedAt: t0}
	old := model.Project{ID: uuid.New(), Name: "old", Archived: true, CreatedAt: t0.Add(-time.Hour)}
	require.NoError(t, stores.Projects.Create(ctx, &live))
	require.NoError(t, stores.Projects.Create(ctx, &old))

	all, err := stores.Projects.List(ctx, model.ProjectFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "old", all[0].Name)

	archived, err := stores.Projects.List(ctx, model.ProjectFilter{Archived: ptr(true)})
	require.NoError(t, err)
	require.Len(t, archived, 1)
	assert.Equal(t, old.ID, archived[0].ID)
}
