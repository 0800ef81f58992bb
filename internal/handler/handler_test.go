package handler_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"tracker/internal/handler"
	"tracker/internal/model"
	"tracker/internal/repository"
)

type mocks struct {
	projects *MockProjectService
	tasks    *MockTaskService
	subtasks *MockSubtaskService
}

func setupTest() (*gin.Engine, *mocks) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	m := &mocks{
		projects: new(MockProjectService),
		tasks:    new(MockTaskService),
		subtasks: new(MockSubtaskService),
	}

	projectHandler := handler.NewProjectHandler(m.projects)
	taskHandler := handler.NewTaskHandler(m.tasks)
	subtaskHandler := handler.NewSubtaskHandler(m.subtasks)

	api := r.Group("/api")
	api.GET("/projects", projectHandler.List)
	api.GET("/projects/:id", projectHandler.Get)
	api.POST("/projects", projectHandler.Create)
	api.PATCH("/projects/:id", projectHandler.Patch)
	api.POST("/projects/:id/archive", projectHandler.Archive)
	api.DELETE("/projects/:id", projectHandler.Delete)

	api.GET("/tasks", taskHandler.List)
	api.POST("/tasks", taskHandler.Create)
	api.POST("/tasks/move", taskHandler.Move)
	api.PATCH("/tasks/batch/reorder", taskHandler.BatchReorder)
	api.GET("/tasks/:id", taskHandler.Get)
	api.PUT("/tasks/:id", taskHandler.Replace)
	api.PATCH("/tasks/:id", taskHandler.Patch)
	api.POST("/tasks/:id/restore", taskHandler.Restore)
	api.DELETE("/tasks/:id", taskHandler.Delete)
	api.GET("/tasks/:id/progress", taskHandler.Progress)

	api.POST("/subtasks", subtaskHandler.Create)
	api.POST("/subtasks/move", subtaskHandler.Move)
	api.PATCH("/subtasks/batch/reorder", subtaskHandler.BatchReorder)

	return r, m
}

func doRequest(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func errorBody(t *testing.T, resp *httptest.ResponseRecorder) string {
	t.Helper()
	var body handler.ErrorResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	return body.Error
}

func TestProjectCreate_Success(t *testing.T) {
	// Arrange
	router, m := setupTest()
	project := &model.Project{ID: uuid.New(), Name: "Garden", Color: "#10B981"}
	m.projects.On("Create", mock.Anything, model.ProjectInput{Name: "Garden", Color: "#10B981"}).Return(project, nil)

	// Act
	resp := doRequest(router, http.MethodPost, "/api/projects", `{"name":"Garden","color":"#10B981"}`)

	// Assert
	assert.Equal(t, http.StatusCreated, resp.Code)
	var got model.Project
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &got))
	assert.Equal(t, project.ID, got.ID)
	m.projects.AssertExpectations(t)
}

func TestProjectCreate_InvalidColor(t *testing.T) {
	router, m := setupTest()

	resp := doRequest(router, http.MethodPost, "/api/projects", `{"name":"Garden","color":"green"}`)

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	m.projects.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestProjectGet_InvalidID(t *testing.T) {
	router, _ := setupTest()

	resp := doRequest(router, http.MethodGet, "/api/projects/not-a-uuid", "")

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "Invalid ID format", errorBody(t, resp))
}

func TestProjectGet_NotFound(t *testing.T) {
	router, m := setupTest()
	id := uuid.New()
	m.projects.On("Get", mock.Anything, id).Return(nil, repository.ErrProjectNotFound)

	resp := doRequest(router, http.MethodGet, "/api/projects/"+id.String(), "")

	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, "Project not found", errorBody(t, resp))
}

func TestProjectList_ArchivedFilter(t *testing.T) {
	router, m := setupTest()
	archived := true
	m.projects.On("List", mock.Anything, model.ProjectFilter{Archived: &archived}).Return([]model.Project{}, nil)

	resp := doRequest(router, http.MethodGet, "/api/projects?archived=true", "")
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `[]`, resp.Body.String())

	resp = doRequest(router, http.MethodGet, "/api/projects?archived=maybe", "")
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	m.projects.AssertNumberOfCalls(t, "List", 1)
}

func TestProjectPatch_UnknownFieldRejected(t *testing.T) {
	router, m := setupTest()

	resp := doRequest(router, http.MethodPatch, "/api/projects/"+uuid.NewString(), `{"owner":"someone"}`)

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Contains(t, errorBody(t, resp), "unknown field")
	m.projects.AssertNotCalled(t, "Patch", mock.Anything, mock.Anything, mock.Anything)
}

func TestProjectDelete_NoContent(t *testing.T) {
	router, m := setupTest()
	id := uuid.New()
	m.projects.On("Delete", mock.Anything, id).Return(model.Cascade{Projects: 1, Tasks: 4}, nil)

	resp := doRequest(router, http.MethodDelete, "/api/projects/"+id.String(), "")

	assert.Equal(t, http.StatusNoContent, resp.Code)
	assert.Empty(t, resp.Body.String())
	m.projects.AssertExpectations(t)
}

func TestTaskCreate_Success(t *testing.T) {
	router, m := setupTest()
	projectID := uuid.New()
	due := "2024-07-01"
	task := &model.Task{ID: uuid.New(), ProjectID: projectID, Title: "Plant", Status: model.TaskStatusTodo, DueDate: &due}
	m.tasks.On("Create", mock.Anything, mock.MatchedBy(func(in model.TaskInput) bool {
		return in.ProjectID == projectID && in.Title == "Plant" && in.DueDate != nil && *in.DueDate == due
	})).Return(task, nil)

	resp := doRequest(router, http.MethodPost, "/api/tasks", `{"projectId":"`+projectID.String()+`","title":"Plant","dueDate":"2024-07-01"}`)

	assert.Equal(t, http.StatusCreated, resp.Code)
	m.tasks.AssertExpectations(t)
}

func TestTaskCreate_MissingProject(t *testing.T) {
	router, m := setupTest()

	resp := doRequest(router, http.MethodPost, "/api/tasks", `{"title":"Orphan"}`)
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	projectID := uuid.New()
	m.tasks.On("Create", mock.Anything, mock.Anything).Return(nil, repository.ErrProjectNotFound)
	resp = doRequest(router, http.MethodPost, "/api/tasks", `{"projectId":"`+projectID.String()+`"}`)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestTaskCreate_BadStatus(t *testing.T) {
	router, m := setupTest()

	resp := doRequest(router, http.MethodPost, "/api/tasks", `{"projectId":"`+uuid.NewString()+`","status":"blocked"}`)

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	m.tasks.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestTaskList_Filters(t *testing.T) {
	router, m := setupTest()
	projectID := uuid.New()
	status := model.TaskStatusDone
	m.tasks.On("List", mock.Anything, model.TaskFilter{ProjectID: &projectID, Status: &status, ActiveOnly: true}).
		Return([]model.Task{{ID: uuid.New(), ProjectID: projectID, Status: status}}, nil)

	resp := doRequest(router, http.MethodGet, "/api/tasks?projectId="+projectID.String()+"&status=done&includeArchived=false", "")

	assert.Equal(t, http.StatusOK, resp.Code)
	var got []model.Task
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &got))
	assert.Len(t, got, 1)
	m.tasks.AssertExpectations(t)
}

func TestTaskList_InvalidStatus(t *testing.T) {
	router, _ := setupTest()

	resp := doRequest(router, http.MethodGet, "/api/tasks?status=someday", "")

	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestTaskPatch_NullClearsDueDate(t *testing.T) {
	router, m := setupTest()
	id := uuid.New()
	m.tasks.On("Patch", mock.Anything, id, mock.MatchedBy(func(p model.TaskPatch) bool {
		return p.DueDateSet && p.DueDate == nil && p.Title != nil && *p.Title == "Renamed"
	})).Return(&model.Task{ID: id, Title: "Renamed"}, nil)

	resp := doRequest(router, http.MethodPatch, "/api/tasks/"+id.String(), `{"title":"Renamed","dueDate":null}`)

	assert.Equal(t, http.StatusOK, resp.Code)
	m.tasks.AssertExpectations(t)
}

func TestTaskPatch_RejectsShape(t *testing.T) {
	router, m := setupTest()
	id := uuid.New()

	cases := map[string]string{
		"empty":      `{}`,
		"array":      `[]`,
		"unknown":    `{"createdAt":"2024-01-01"}`,
		"bad date":   `{"dueDate":"soon"}`,
		"bad status": `{"status":"blocked"}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			resp := doRequest(router, http.MethodPatch, "/api/tasks/"+id.String(), body)
			assert.Equal(t, http.StatusBadRequest, resp.Code)
		})
	}
	m.tasks.AssertNotCalled(t, "Patch", mock.Anything, mock.Anything, mock.Anything)
}

func TestTaskPatch_InvalidTransition(t *testing.T) {
	router, m := setupTest()
	id := uuid.New()
	m.tasks.On("Patch", mock.Anything, id, mock.Anything).Return(nil, model.ErrInvalidTransition)

	resp := doRequest(router, http.MethodPatch, "/api/tasks/"+id.String(), `{"status":"done"}`)

	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestTaskRestore_DefaultAndChosen(t *testing.T) {
	router, m := setupTest()
	id := uuid.New()
	todo := model.TaskStatusTodo
	m.tasks.On("Restore", mock.Anything, id, (*model.TaskStatus)(nil)).Return(&model.Task{ID: id, Status: model.TaskStatusDone}, nil).Once()
	m.tasks.On("Restore", mock.Anything, id, &todo).Return(&model.Task{ID: id, Status: todo}, nil).Once()

	resp := doRequest(router, http.MethodPost, "/api/tasks/"+id.String()+"/restore", "")
	assert.Equal(t, http.StatusOK, resp.Code)

	resp = doRequest(router, http.MethodPost, "/api/tasks/"+id.String()+"/restore", `{"status":"todo"}`)
	assert.Equal(t, http.StatusOK, resp.Code)
	var got model.Task
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &got))
	assert.Equal(t, todo, got.Status)

	m.tasks.AssertExpectations(t)
}

func TestTaskDelete_StorageError(t *testing.T) {
	router, m := setupTest()
	id := uuid.New()
	m.tasks.On("Delete", mock.Anything, id).Return(model.Cascade{}, errors.New("disk full"))

	resp := doRequest(router, http.MethodDelete, "/api/tasks/"+id.String(), "")

	assert.Equal(t, http.StatusInternalServerError, resp.Code)
	assert.Equal(t, "Internal server error", errorBody(t, resp))
}

func TestTaskMove_Success(t *testing.T) {
	router, m := setupTest()
	taskID := uuid.New()
	order := 0
	status := model.TaskStatusDone
	updates := []model.TaskReorder{{ID: taskID.String(), Status: &status, Order: &order}}
	m.tasks.On("Move", mock.Anything, model.TaskMove{
		TaskID:     taskID,
		FromStatus: model.TaskStatusTodo,
		ToStatus:   model.TaskStatusDone,
		FromIndex:  2,
		ToIndex:    0,
	}).Return(updates, nil)

	resp := doRequest(router, http.MethodPost, "/api/tasks/move",
		`{"taskId":"`+taskID.String()+`","fromStatus":"todo","toStatus":"done","fromIndex":2,"toIndex":0}`)

	assert.Equal(t, http.StatusOK, resp.Code)
	var got handler.MoveResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &got))
	assert.True(t, got.Success)
	assert.Equal(t, updates, got.Updates)
}

func TestTaskMove_NegativeIndex(t *testing.T) {
	router, m := setupTest()

	resp := doRequest(router, http.MethodPost, "/api/tasks/move", `{"taskId":"`+uuid.NewString()+`","toStatus":"done","toIndex":-1}`)

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	m.tasks.AssertNotCalled(t, "Move", mock.Anything, mock.Anything)
}

func TestTaskBatchReorder_Success(t *testing.T) {
	router, m := setupTest()
	known := uuid.NewString()
	m.tasks.On("BatchReorder", mock.Anything, mock.MatchedBy(func(updates []model.TaskReorder) bool {
		return len(updates) == 2 && updates[0].ID == known && *updates[0].Order == 0 && updates[1].ID == "missing"
	})).Return(1, nil)

	resp := doRequest(router, http.MethodPatch, "/api/tasks/batch/reorder",
		`[{"id":"`+known+`","status":"in_progress","order":0},{"id":"missing","order":1}]`)

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `{"success":true}`, resp.Body.String())
	m.tasks.AssertExpectations(t)
}

func TestTaskBatchReorder_RejectsNonArray(t *testing.T) {
	router, m := setupTest()

	for _, body := range []string{`{"id":"x"}`, `null`, `"reorder"`, ``} {
		resp := doRequest(router, http.MethodPatch, "/api/tasks/batch/reorder", body)
		assert.Equal(t, http.StatusBadRequest, resp.Code, body)
		assert.Equal(t, "Expected an array of updates", errorBody(t, resp), body)
	}
	m.tasks.AssertNotCalled(t, "BatchReorder", mock.Anything, mock.Anything)
}

func TestTaskBatchReorder_RejectsInvalidRecord(t *testing.T) {
	router, m := setupTest()

	for _, body := range []string{`[{"order":1}]`, `[{"id":"a","status":"blocked"}]`, `[{"id":"a","order":-3}]`} {
		resp := doRequest(router, http.MethodPatch, "/api/tasks/batch/reorder", body)
		assert.Equal(t, http.StatusBadRequest, resp.Code, body)
	}
	m.tasks.AssertNotCalled(t, "BatchReorder", mock.Anything, mock.Anything)
}

func TestTaskBatchReorder_EmptyArray(t *testing.T) {
	router, m := setupTest()
	m.tasks.On("BatchReorder", mock.Anything, []model.TaskReorder{}).Return(0, nil)

	resp := doRequest(router, http.MethodPatch, "/api/tasks/batch/reorder", `[]`)

	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestTaskProgress(t *testing.T) {
	router, m := setupTest()
	id := uuid.New()
	m.tasks.On("Progress", mock.Anything, id).Return(model.Progress{Done: 1, Total: 4}, nil)

	resp := doRequest(router, http.MethodGet, "/api/tasks/"+id.String()+"/progress", "")

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `{"done":1,"total":4}`, resp.Body.String())
}

func TestTaskGet_SerializesDates(t *testing.T) {
	router, m := setupTest()
	id := uuid.New()
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	m.tasks.On("Get", mock.Anything, id).Return(&model.Task{ID: id, Title: "t", Status: model.TaskStatusTodo, CreatedAt: created, UpdatedAt: created}, nil)

	resp := doRequest(router, http.MethodGet, "/api/tasks/"+id.String(), "")

	require.Equal(t, http.StatusOK, resp.Code)
	var raw map[string]any
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &raw))
	assert.Nil(t, raw["dueDate"])
	assert.Equal(t, "2024-01-02T03:04:05Z", raw["createdAt"])
	assert.Equal(t, float64(0), raw["order"])
}

func TestSubtaskCreate_Validation(t *testing.T) {
	router, m := setupTest()

	resp := doRequest(router, http.MethodPost, "/api/subtasks", `{"taskId":"`+uuid.NewString()+`","status":"archived"}`)
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	taskID := uuid.New()
	m.subtasks.On("Create", mock.Anything, mock.MatchedBy(func(in model.SubtaskInput) bool { return in.TaskID == taskID })).
		Return(nil, repository.ErrTaskNotFound)
	resp = doRequest(router, http.MethodPost, "/api/subtasks", `{"taskId":"`+taskID.String()+`"}`)
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, "Task not found", errorBody(t, resp))
}

func TestSubtaskMove_ToAnotherTask(t *testing.T) {
	router, m := setupTest()
	subtaskID := uuid.New()
	toTask := uuid.New()
	m.subtasks.On("Move", mock.Anything, model.SubtaskMove{SubtaskID: subtaskID, ToTaskID: &toTask, ToIndex: 1}).
		Return([]model.SubtaskReorder{}, nil)

	resp := doRequest(router, http.MethodPost, "/api/subtasks/move",
		`{"subtaskId":"`+subtaskID.String()+`","toTaskId":"`+toTask.String()+`","toIndex":1}`)

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `{"success":true,"updates":[]}`, resp.Body.String())
	m.subtasks.AssertExpectations(t)
}

func TestSubtaskBatchReorder(t *testing.T) {
	router, m := setupTest()
	m.subtasks.On("BatchReorder", mock.Anything, mock.Anything).Return(2, nil)

	resp := doRequest(router, http.MethodPatch, "/api/subtasks/batch/reorder", `[{"id":"a","order":0},{"id":"b","taskId":"`+uuid.NewString()+`"}]`)
	assert.Equal(t, http.StatusOK, resp.Code)

	resp = doRequest(router, http.MethodPatch, "/api/subtasks/batch/reorder", `[{"id":"a","taskId":"nope"}]`)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	m.subtasks.AssertNumberOfCalls(t, "BatchReorder", 1)
}

func TestSubtaskBatchReorder_UnknownParentTask(t *testing.T) {
	router, m := setupTest()
	m.subtasks.On("BatchReorder", mock.Anything, mock.Anything).Return(0, repository.ErrTaskNotFound)

	resp := doRequest(router, http.MethodPatch, "/api/subtasks/batch/reorder", `[{"id":"a","taskId":"`+uuid.NewString()+`"}]`)

	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, "Task not found", errorBody(t, resp))
}
