package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"tracker/internal/model"
	"tracker/internal/ordering"
	"tracker/internal/repository"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError maps service errors onto status codes. Anything unknown is
// a storage failure: it is attached to the context for the request logger
// and reported without detail.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrProjectNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
	case errors.Is(err, repository.ErrTaskNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
	case errors.Is(err, repository.ErrSubtaskNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Subtask not found"})
	case errors.Is(err, ordering.ErrItemNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, model.ErrInvalidStatus),
		errors.Is(err, model.ErrInvalidTransition),
		errors.Is(err, model.ErrInvalidDate),
		errors.Is(err, model.ErrInvalidField),
		errors.Is(err, model.ErrEmptyPatch),
		errors.Is(err, model.ErrUnknownField),
		errors.Is(err, ordering.ErrIndexOutOfRange):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// parseID reads the :id path parameter, answering 400 itself when it is
// not a UUID.
func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return uuid.Nil, false
	}
	return id, true
}

// readPatch decodes a raw PATCH body into one of the model patch types,
// which reject unknown and empty payloads themselves.
func readPatch(c *gin.Context, patch json.Unmarshaler) bool {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return false
	}
	if err := patch.UnmarshalJSON(body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}

func optionalUUID(raw string) (*uuid.UUID, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
