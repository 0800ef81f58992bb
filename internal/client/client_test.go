package client_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tracker/internal/client"
	"tracker/internal/config"
	"tracker/internal/model"
	"tracker/internal/repository/filestore"
	"tracker/internal/server"
)

func setupClient(t *testing.T) *client.Client {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := server.NewRouter(filestore.NewMemory().Stores(), &config.Config{}, zap.NewNop())
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return client.New(srv.URL + "/")
}

func TestClient_TaskLifecycle(t *testing.T) {
	ctx := context.Background()
	c := setupClient(t)

	project, err := c.CreateProject(ctx, model.ProjectInput{Name: "Home"})
	require.NoError(t, err)

	task, err := c.CreateTask(ctx, model.TaskInput{ProjectID: project.ID, Title: "Paint fence"})
	require.NoError(t, err)
	assert.Equal(t, model.TaskStatusTodo, task.Status)
	assert.Equal(t, 0, task.Order)

	title := "Paint the fence"
	due := "2024-06-01"
	patched, err := c.PatchTask(ctx, task.ID, model.TaskPatch{Title: &title, DueDate: &due, DueDateSet: true})
	require.NoError(t, err)
	assert.Equal(t, title, patched.Title)
	require.NotNil(t, patched.DueDate)
	assert.Equal(t, due, *patched.DueDate)

	patched, err = c.PatchTask(ctx, task.ID, model.TaskPatch{DueDateSet: true})
	require.NoError(t, err)
	assert.Nil(t, patched.DueDate)

	got, err := c.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, title, got.Title)
}

func TestClient_NotFound(t *testing.T) {
	c := setupClient(t)

	_, err := c.GetTask(context.Background(), uuid.New())

	require.Error(t, err)
	assert.True(t, client.IsNotFound(err))
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Task not found", apiErr.Message)
}

func TestClient_BatchReorderSkipsUnknown(t *testing.T) {
	ctx := context.Background()
	c := setupClient(t)
	project, err := c.CreateProject(ctx, model.ProjectInput{})
	require.NoError(t, err)
	a, err := c.CreateTask(ctx, model.TaskInput{ProjectID: project.ID, Title: "A"})
	require.NoError(t, err)

	done := model.TaskStatusDone
	order := 4
	err = c.BatchReorderTasks(ctx, []model.TaskReorder{
		{ID: a.ID.String(), Status: &done, Order: &order},
		{ID: uuid.NewString(), Order: &order},
	})
	require.NoError(t, err)

	got, err := c.GetTask(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, model.TaskStatusDone, got.Status)
	assert.Equal(t, 4, got.Order)
}

func TestClient_MoveAcrossColumns(t *testing.T) {
	ctx := context.Background()
	c := setupClient(t)
	project, err := c.CreateProject(ctx, model.ProjectInput{})
	require.NoError(t, err)

	a, err := c.CreateTask(ctx, model.TaskInput{ProjectID: project.ID, Title: "A"})
	require.NoError(t, err)
	for _, title := range []string{"X", "Y"} {
		_, err := c.CreateTask(ctx, model.TaskInput{ProjectID: project.ID, Title: title, Status: model.TaskStatusDone})
		require.NoError(t, err)
	}

	updates, err := c.MoveTask(ctx, model.TaskMove{
		TaskID: a.ID, FromStatus: model.TaskStatusTodo, ToStatus: model.TaskStatusDone, FromIndex: 0, ToIndex: 1,
	})
	require.NoError(t, err)
	assert.Len(t, updates, 3)

	done := model.TaskStatusDone
	tasks, err := c.ListTasks(ctx, model.TaskFilter{ProjectID: &project.ID, Status: &done})
	require.NoError(t, err)
	require.Len(t, tasks, 3)
	assert.Equal(t, []string{"X", "A", "Y"}, []string{tasks[0].Title, tasks[1].Title, tasks[2].Title})
}

func TestClient_ListTasksActiveOnly(t *testing.T) {
	ctx := context.Background()
	c := setupClient(t)
	project, err := c.CreateProject(ctx, model.ProjectInput{})
	require.NoError(t, err)
	_, err = c.CreateTask(ctx, model.TaskInput{ProjectID: project.ID, Title: "open"})
	require.NoError(t, err)
	_, err = c.CreateTask(ctx, model.TaskInput{ProjectID: project.ID, Title: "old", Status: model.TaskStatusArchived})
	require.NoError(t, err)

	all, err := c.ListTasks(ctx, model.TaskFilter{})
	require.NoError(t, err)
	active, err := c.ListTasks(ctx, model.TaskFilter{ActiveOnly: true})
	require.NoError(t, err)

	assert.Len(t, all, 2)
	require.Len(t, active, 1)
	assert.Equal(t, "open", active[0].Title)
}

func TestClient_SubtasksAndCascade(t *testing.T) {
	ctx := context.Background()
	c := setupClient(t)
	project, err := c.CreateProject(ctx, model.ProjectInput{})
	require.NoError(t, err)
	task, err := c.CreateTask(ctx, model.TaskInput{ProjectID: project.ID})
	require.NoError(t, err)

	sub, err := c.CreateSubtask(ctx, model.SubtaskInput{TaskID: task.ID, Title: "step"})
	require.NoError(t, err)
	done := model.SubtaskStatusDone
	sub, err = c.PatchSubtask(ctx, sub.ID, model.SubtaskPatch{Status: &done})
	require.NoError(t, err)
	assert.Equal(t, model.SubtaskStatusDone, sub.Status)

	require.NoError(t, c.DeleteProject(ctx, project.ID))

	subtasks, err := c.ListSubtasks(ctx, model.SubtaskFilter{})
	require.NoError(t, err)
	assert.Empty(t, subtasks)
}

func TestClient_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"Internal server error"}`))
	}))
	defer srv.Close()

	err := client.New(srv.URL).BatchReorderTasks(context.Background(), nil)

	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.False(t, client.IsNotFound(err))
}
