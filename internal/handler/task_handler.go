package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"tracker/internal/model"
)

type TaskHandler struct {
	tasks TaskService
}

func NewTaskHandler(tasks TaskService) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

// TaskRequest is the body of task create and replace
type TaskRequest struct {
	ProjectID string           `json:"projectId" binding:"required,uuid"`
	Title     string           `json:"title"`
	Notes     string           `json:"notes"`
	Status    model.TaskStatus `json:"status" binding:"omitempty,oneof=todo in_progress done archived"`
	Assignee  string           `json:"assignee"`
	StartDate *string          `json:"startDate"`
	DueDate   *string          `json:"dueDate"`
	Order     *int             `json:"order" binding:"omitempty,min=0"`
}

func (r TaskRequest) input() model.TaskInput {
	return model.TaskInput{
		ProjectID: uuid.MustParse(r.ProjectID),
		Title:     r.Title,
		Notes:     r.Notes,
		Status:    r.Status,
		Assignee:  r.Assignee,
		StartDate: r.StartDate,
		DueDate:   r.DueDate,
		Order:     r.Order,
	}
}

// RestoreRequest optionally names the column a restored task returns to
type RestoreRequest struct {
	Status *model.TaskStatus `json:"status"`
}

// TaskMoveRequest describes a kanban drag
type TaskMoveRequest struct {
	TaskID     string           `json:"taskId" binding:"required,uuid"`
	FromStatus model.TaskStatus `json:"fromStatus" binding:"omitempty,oneof=todo in_progress done archived"`
	ToStatus   model.TaskStatus `json:"toStatus" binding:"omitempty,oneof=todo in_progress done archived"`
	FromIndex  int              `json:"fromIndex" binding:"min=0"`
	ToIndex    int              `json:"toIndex" binding:"min=0"`
}

// MoveResponse lists the records the move wrote
type MoveResponse struct {
	Success bool                `json:"success"`
	Updates []model.TaskReorder `json:"updates"`
}

// List godoc
// @Summary List tasks
// @Description List tasks, optionally for one project or status. includeArchived=false applies the active-view filter.
// @Tags tasks
// @Produce json
// @Param projectId query string false "Project ID"
// @Param status query string false "Status"
// @Param includeArchived query bool false "Include archived tasks (default true)"
// @Success 200 {array} model.Task
// @Failure 400 {object} ErrorResponse
// @Router /api/tasks [get]
func (h *TaskHandler) List(c *gin.Context) {
	var filter model.TaskFilter

	projectID, err := optionalUUID(c.Query("projectId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project ID format"})
		return
	}
	filter.ProjectID = projectID

	if raw := c.Query("status"); raw != "" {
		status := model.TaskStatus(raw)
		if !status.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
			return
		}
		filter.Status = &status
	}

	if raw := c.Query("includeArchived"); raw != "" {
		include, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid includeArchived filter"})
			return
		}
		filter.ActiveOnly = !include
	}

	tasks, err := h.tasks.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

// Get godoc
// @Summary Get a task
// @Tags tasks
// @Produce json
// @Param id path string true "Task ID"
// @Success 200 {object} model.Task
// @Failure 404 {object} ErrorResponse
// @Router /api/tasks/{id} [get]
func (h *TaskHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	task, err := h.tasks.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// Create godoc
// @Summary Create a task
// @Description Create a task at the end of its column
// @Tags tasks
// @Accept json
// @Produce json
// @Param request body TaskRequest true "Task data"
// @Success 201 {object} model.Task
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/tasks [post]
func (h *TaskHandler) Create(c *gin.Context) {
	var req TaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	task, err := h.tasks.Create(c.Request.Context(), req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

// Replace godoc
// @Summary Replace a task
// @Tags tasks
// @Accept json
// @Produce json
// @Param id path string true "Task ID"
// @Param request body TaskRequest true "Task data"
// @Success 200 {object} model.Task
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/tasks/{id} [put]
func (h *TaskHandler) Replace(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req TaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	task, err := h.tasks.Replace(c.Request.Context(), id, req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// Patch godoc
// @Summary Patch a task
// @Description Apply a partial update. Unknown fields are rejected and null clears dates.
// @Tags tasks
// @Accept json
// @Produce json
// @Param id path string true "Task ID"
// @Success 200 {object} model.Task
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/tasks/{id} [patch]
func (h *TaskHandler) Patch(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var patch model.TaskPatch
	if !readPatch(c, &patch) {
		return
	}

	task, err := h.tasks.Patch(c.Request.Context(), id, patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) Archive(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	task, err := h.tasks.Archive(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// Restore accepts an empty body or {"status": "..."}
func (h *TaskHandler) Restore(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req RestoreRequest
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
	}

	task, err := h.tasks.Restore(c.Request.Context(), id, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// Delete removes the task and its subtasks
func (h *TaskHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if _, err := h.tasks.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Move godoc
// @Summary Move a task
// @Description Drag a task to an index of a column, renumbering the touched columns
// @Tags tasks
// @Accept json
// @Produce json
// @Param request body TaskMoveRequest true "Move"
// @Success 200 {object} MoveResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/tasks/move [post]
func (h *TaskHandler) Move(c *gin.Context) {
	var req TaskMoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	updates, err := h.tasks.Move(c.Request.Context(), model.TaskMove{
		TaskID:     uuid.MustParse(req.TaskID),
		FromStatus: req.FromStatus,
		ToStatus:   req.ToStatus,
		FromIndex:  req.FromIndex,
		ToIndex:    req.ToIndex,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	if updates == nil {
		updates = []model.TaskReorder{}
	}
	c.JSON(http.StatusOK, MoveResponse{Success: true, Updates: updates})
}

// BatchReorder godoc
// @Summary Batch reorder tasks
// @Description Apply {id, status?, order?} records. Unknown ids are skipped.
// @Tags tasks
// @Accept json
// @Produce json
// @Param request body []model.TaskReorder true "Updates"
// @Success 200 {object} map[string]bool
// @Failure 400 {object} ErrorResponse
// @Router /api/tasks/batch/reorder [patch]
func (h *TaskHandler) BatchReorder(c *gin.Context) {
	var updates []model.TaskReorder
	if !bindUpdates(c, &updates) {
		return
	}

	if _, err := h.tasks.BatchReorder(c.Request.Context(), updates); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Progress godoc
// @Summary Subtask progress
// @Tags tasks
// @Produce json
// @Param id path string true "Task ID"
// @Success 200 {object} model.Progress
// @Failure 404 {object} ErrorResponse
// @Router /api/tasks/{id}/progress [get]
func (h *TaskHandler) Progress(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	progress, err := h.tasks.Progress(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, progress)
}

// bindUpdates decodes a batch body. Anything but a JSON array is rejected
// before the service sees it.
func bindUpdates[T any](c *gin.Context, updates *[]T) bool {
	err := c.ShouldBindJSON(updates)

	var fieldErrs validator.ValidationErrors
	var sliceErrs binding.SliceValidationError
	switch {
	case errors.As(err, &sliceErrs), errors.As(err, &fieldErrs):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid update: " + err.Error()})
		return false
	case err != nil, *updates == nil:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Expected an array of updates"})
		return false
	}
	return true
}
