package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"tracker/internal/model"
)

type SubtaskHandler struct {
	subtasks SubtaskService
}

func NewSubtaskHandler(subtasks SubtaskService) *SubtaskHandler {
	return &SubtaskHandler{subtasks: subtasks}
}

type SubtaskRequest struct {
	TaskID    string              `json:"taskId" binding:"required,uuid"`
	Title     string              `json:"title"`
	Notes     string              `json:"notes"`
	Status    model.SubtaskStatus `json:"status" binding:"omitempty,oneof=todo done"`
	Assignee  string              `json:"assignee"`
	StartDate *string             `json:"startDate"`
	DueDate   *string             `json:"dueDate"`
	Order     *int                `json:"order" binding:"omitempty,min=0"`
}

func (r SubtaskRequest) input() model.SubtaskInput {
	return model.SubtaskInput{
		TaskID:    uuid.MustParse(r.TaskID),
		Title:     r.Title,
		Notes:     r.Notes,
		Status:    r.Status,
		Assignee:  r.Assignee,
		StartDate: r.StartDate,
		DueDate:   r.DueDate,
		Order:     r.Order,
	}
}

type SubtaskMoveRequest struct {
	SubtaskID string  `json:"subtaskId" binding:"required,uuid"`
	ToTaskID  *string `json:"toTaskId" binding:"omitempty,uuid"`
	FromIndex int     `json:"fromIndex" binding:"min=0"`
	ToIndex   int     `json:"toIndex" binding:"min=0"`
}

func (h *SubtaskHandler) List(c *gin.Context) {
	taskID, err := optionalUUID(c.Query("taskId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid task ID format"})
		return
	}

	subtasks, err := h.subtasks.List(c.Request.Context(), model.SubtaskFilter{TaskID: taskID})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, subtasks)
}

func (h *SubtaskHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	subtask, err := h.subtasks.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, subtask)
}

func (h *SubtaskHandler) Create(c *gin.Context) {
	var req SubtaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	subtask, err := h.subtasks.Create(c.Request.Context(), req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, subtask)
}

func (h *SubtaskHandler) Replace(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req SubtaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	subtask, err := h.subtasks.Replace(c.Request.Context(), id, req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, subtask)
}

func (h *SubtaskHandler) Patch(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var patch model.SubtaskPatch
	if !readPatch(c, &patch) {
		return
	}

	subtask, err := h.subtasks.Patch(c.Request.Context(), id, patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, subtask)
}

func (h *SubtaskHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.subtasks.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *SubtaskHandler) Move(c *gin.Context) {
	var req SubtaskMoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	move := model.SubtaskMove{
		SubtaskID: uuid.MustParse(req.SubtaskID),
		FromIndex: req.FromIndex,
		ToIndex:   req.ToIndex,
	}
	if req.ToTaskID != nil {
		to := uuid.MustParse(*req.ToTaskID)
		move.ToTaskID = &to
	}

	updates, err := h.subtasks.Move(c.Request.Context(), move)
	if err != nil {
		respondError(c, err)
		return
	}
	if updates == nil {
		updates = []model.SubtaskReorder{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "updates": updates})
}

func (h *SubtaskHandler) BatchReorder(c *gin.Context) {
	var updates []model.SubtaskReorder
	if !bindUpdates(c, &updates) {
		return
	}

	if _, err := h.subtasks.BatchReorder(c.Request.Context(), updates); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
