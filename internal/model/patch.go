package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/google/uuid"
)

// TaskPatch is a partial update of a task. Nil fields are left untouched.
// The *Set flags tell an explicit null (clear the date) from an absent key.
type TaskPatch struct {
	ProjectID    *uuid.UUID
	Title        *string
	Notes        *string
	Status       *TaskStatus
	Assignee     *string
	StartDate    *string
	StartDateSet bool
	DueDate      *string
	DueDateSet   bool
	Order        *int
}

var taskPatchFields = []string{"projectId", "title", "notes", "status", "assignee", "startDate", "dueDate", "order"}

func (p TaskPatch) Validate() error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return fmt.Errorf("%w: title", ErrInvalidField)
	}
	if p.Status != nil && !p.Status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, *p.Status)
	}
	if p.ProjectID != nil && *p.ProjectID == uuid.Nil {
		return fmt.Errorf("%w: projectId", ErrInvalidField)
	}
	if err := validateOptionalDate(p.StartDate); err != nil {
		return err
	}
	if err := validateOptionalDate(p.DueDate); err != nil {
		return err
	}
	if p.Order != nil && *p.Order < 0 {
		return fmt.Errorf("%w: order", ErrInvalidField)
	}
	return nil
}

// Apply copies the present fields onto t. Timestamps are left to the caller.
func (p TaskPatch) Apply(t *Task) {
	if p.ProjectID != nil {
		t.ProjectID = *p.ProjectID
	}
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Notes != nil {
		t.Notes = *p.Notes
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Assignee != nil {
		t.Assignee = *p.Assignee
	}
	if p.StartDateSet {
		t.StartDate = cloneString(p.StartDate)
	}
	if p.DueDateSet {
		t.DueDate = cloneString(p.DueDate)
	}
	if p.Order != nil {
		t.Order = *p.Order
	}
}

func (p TaskPatch) MarshalJSON() ([]byte, error) {
	out := map[string]any{}
	if p.ProjectID != nil {
		out["projectId"] = *p.ProjectID
	}
	if p.Title != nil {
		out["title"] = *p.Title
	}
	if p.Notes != nil {
		out["notes"] = *p.Notes
	}
	if p.Status != nil {
		out["status"] = *p.Status
	}
	if p.Assignee != nil {
		out["assignee"] = *p.Assignee
	}
	if p.StartDateSet {
		out["startDate"] = p.StartDate
	}
	if p.DueDateSet {
		out["dueDate"] = p.DueDate
	}
	if p.Order != nil {
		out["order"] = *p.Order
	}
	return json.Marshal(out)
}

func (p *TaskPatch) UnmarshalJSON(data []byte) error {
	raw, err := decodePatchObject(data, taskPatchFields)
	if err != nil {
		return err
	}

	var out TaskPatch
	if out.ProjectID, err = requiredField[uuid.UUID](raw, "projectId"); err != nil {
		return err
	}
	if out.Title, err = requiredField[string](raw, "title"); err != nil {
		return err
	}
	if out.Notes, err = requiredField[string](raw, "notes"); err != nil {
		return err
	}
	if out.Status, err = requiredField[TaskStatus](raw, "status"); err != nil {
		return err
	}
	if out.Assignee, err = clearableString(raw, "assignee"); err != nil {
		return err
	}
	if out.StartDate, out.StartDateSet, err = nullableField[string](raw, "startDate"); err != nil {
		return err
	}
	if out.DueDate, out.DueDateSet, err = nullableField[string](raw, "dueDate"); err != nil {
		return err
	}
	if out.Order, err = requiredField[int](raw, "order"); err != nil {
		return err
	}

	if err := out.Validate(); err != nil {
		return err
	}
	*p = out
	return nil
}

// SubtaskPatch is a partial update of a subtask.
type SubtaskPatch struct {
	TaskID       *uuid.UUID
	Title        *string
	Notes        *string
	Status       *SubtaskStatus
	Assignee     *string
	StartDate    *string
	StartDateSet bool
	DueDate      *string
	DueDateSet   bool
	Order        *int
}

var subtaskPatchFields = []string{"taskId", "title", "notes", "status", "assignee", "startDate", "dueDate", "order"}

func (p SubtaskPatch) Validate() error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return fmt.Errorf("%w: title", ErrInvalidField)
	}
	if p.Status != nil && !p.Status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, *p.Status)
	}
	if p.TaskID != nil && *p.TaskID == uuid.Nil {
		return fmt.Errorf("%w: taskId", ErrInvalidField)
	}
	if err := validateOptionalDate(p.StartDate); err != nil {
		return err
	}
	if err := validateOptionalDate(p.DueDate); err != nil {
		return err
	}
	if p.Order != nil && *p.Order < 0 {
		return fmt.Errorf("%w: order", ErrInvalidField)
	}
	return nil
}

func (p SubtaskPatch) Apply(s *Subtask) {
	if p.TaskID != nil {
		s.TaskID = *p.TaskID
	}
	if p.Title != nil {
		s.Title = *p.Title
	}
	if p.Notes != nil {
		s.Notes = *p.Notes
	}
	if p.Status != nil {
		s.Status = *p.Status
	}
	if p.Assignee != nil {
		s.Assignee = *p.Assignee
	}
	if p.StartDateSet {
		s.StartDate = cloneString(p.StartDate)
	}
	if p.DueDateSet {
		s.DueDate = cloneString(p.DueDate)
	}
	if p.Order != nil {
		s.Order = *p.Order
	}
}

func (p SubtaskPatch) MarshalJSON() ([]byte, error) {
	out := map[string]any{}
	if p.TaskID != nil {
		out["taskId"] = *p.TaskID
	}
	if p.Title != nil {
		out["title"] = *p.Title
	}
	if p.Notes != nil {
		out["notes"] = *p.Notes
	}
	if p.Status != nil {
		out["status"] = *p.Status
	}
	if p.Assignee != nil {
		out["assignee"] = *p.Assignee
	}
	if p.StartDateSet {
		out["startDate"] = p.StartDate
	}
	if p.DueDateSet {
		out["dueDate"] = p.DueDate
	}
	if p.Order != nil {
		out["order"] = *p.Order
	}
	return json.Marshal(out)
}

func (p *SubtaskPatch) UnmarshalJSON(data []byte) error {
	raw, err := decodePatchObject(data, subtaskPatchFields)
	if err != nil {
		return err
	}

	var out SubtaskPatch
	if out.TaskID, err = requiredField[uuid.UUID](raw, "taskId"); err != nil {
		return err
	}
	if out.Title, err = requiredField[string](raw, "title"); err != nil {
		return err
	}
	if out.Notes, err = requiredField[string](raw, "notes"); err != nil {
		return err
	}
	if out.Status, err = requiredField[SubtaskStatus](raw, "status"); err != nil {
		return err
	}
	if out.Assignee, err = clearableString(raw, "assignee"); err != nil {
		return err
	}
	if out.StartDate, out.StartDateSet, err = nullableField[string](raw, "startDate"); err != nil {
		return err
	}
	if out.DueDate, out.DueDateSet, err = nullableField[string](raw, "dueDate"); err != nil {
		return err
	}
	if out.Order, err = requiredField[int](raw, "order"); err != nil {
		return err
	}

	if err := out.Validate(); err != nil {
		return err
	}
	*p = out
	return nil
}

// ProjectPatch is a partial update of a project.
type ProjectPatch struct {
	Name        *string
	Description *string
	Color       *string
	Archived    *bool
}

var projectPatchFields = []string{"name", "description", "color", "archived"}

func (p ProjectPatch) Validate() error {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return fmt.Errorf("%w: name", ErrInvalidField)
	}
	if p.Color != nil && !ValidColor(*p.Color) {
		return fmt.Errorf("%w: color", ErrInvalidField)
	}
	return nil
}

func (p ProjectPatch) Apply(pr *Project) {
	if p.Name != nil {
		pr.Name = *p.Name
	}
	if p.Description != nil {
		pr.Description = *p.Description
	}
	if p.Color != nil {
		pr.Color = *p.Color
	}
	if p.Archived != nil {
		pr.Archived = *p.Archived
	}
}

func (p ProjectPatch) MarshalJSON() ([]byte, error) {
	out := map[string]any{}
	if p.Name != nil {
		out["name"] = *p.Name
	}
	if p.Description != nil {
		out["description"] = *p.Description
	}
	if p.Color != nil {
		out["color"] = *p.Color
	}
	if p.Archived != nil {
		out["archived"] = *p.Archived
	}
	return json.Marshal(out)
}

func (p *ProjectPatch) UnmarshalJSON(data []byte) error {
	raw, err := decodePatchObject(data, projectPatchFields)
	if err != nil {
		return err
	}

	var out ProjectPatch
	if out.Name, err = requiredField[string](raw, "name"); err != nil {
		return err
	}
	if out.Description, err = requiredField[string](raw, "description"); err != nil {
		return err
	}
	if out.Color, err = requiredField[string](raw, "color"); err != nil {
		return err
	}
	if out.Archived, err = requiredField[bool](raw, "archived"); err != nil {
		return err
	}

	if err := out.Validate(); err != nil {
		return err
	}
	*p = out
	return nil
}

// ValidColor accepts #RGB and #RRGGBB hex colors.
func ValidColor(color string) bool {
	if len(color) != 4 && len(color) != 7 {
		return false
	}
	if color[0] != '#' {
		return false
	}
	for _, r := range color[1:] {
		if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
			return false
		}
	}
	return true
}

func decodePatchObject(data []byte, allowed []string) (map[string]json.RawMessage, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: patch must be a JSON object", ErrInvalidField)
	}
	if len(raw) == 0 {
		return nil, ErrEmptyPatch
	}
	for _, key := range slices.Sorted(maps.Keys(raw)) {
		if !slices.Contains(allowed, key) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownField, key)
		}
	}
	return raw, nil
}

// requiredField decodes a key that may be absent but must not be null.
func requiredField[T any](raw map[string]json.RawMessage, key string) (*T, error) {
	value, set, err := nullableField[T](raw, key)
	if err != nil {
		return nil, err
	}
	if set && value == nil {
		return nil, fmt.Errorf("%w: %s cannot be null", ErrInvalidField, key)
	}
	return value, nil
}

func nullableField[T any](raw map[string]json.RawMessage, key string) (*T, bool, error) {
	value, ok := raw[key]
	if !ok {
		return nil, false, nil
	}
	if isJSONNull(value) {
		return nil, true, nil
	}
	var out T
	if err := json.Unmarshal(value, &out); err != nil {
		return nil, true, fmt.Errorf("%w: %s", ErrInvalidField, key)
	}
	return &out, true, nil
}

// clearableString maps an explicit null to the empty string.
func clearableString(raw map[string]json.RawMessage, key string) (*string, error) {
	value, set, err := nullableField[string](raw, key)
	if err != nil {
		return nil, err
	}
	if set && value == nil {
		empty := ""
		return &empty, nil
	}
	return value, nil
}

func isJSONNull(value json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(value), []byte("null"))
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
