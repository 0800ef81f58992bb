// Package client talks to the tracker REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"tracker/internal/model"
)

// APIError is a non-2xx response. Message is the server's {"error": ...} text.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("tracker api: status %d", e.StatusCode)
	}
	return fmt.Sprintf("tracker api: status %d: %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) ListProjects(ctx context.Context, filter model.ProjectFilter) ([]model.Project, error) {
	q := url.Values{}
	if filter.Archived != nil {
		q.Set("archived", strconv.FormatBool(*filter.Archived))
	}
	var out []model.Project
	err := c.do(ctx, http.MethodGet, "/api/projects", q, nil, &out)
	return out, err
}

func (c *Client) CreateProject(ctx context.Context, in model.ProjectInput) (*model.Project, error) {
	var out model.Project
	if err := c.do(ctx, http.MethodPost, "/api/projects", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteProject(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/api/projects/"+id.String(), nil, nil, nil)
}

// ListTasks returns every task matching filter, archived ones included unless
// filter.ActiveOnly is set.
func (c *Client) ListTasks(ctx context.Context, filter model.TaskFilter) ([]model.Task, error) {
	q := url.Values{}
	if filter.ProjectID != nil {
		q.Set("projectId", filter.ProjectID.String())
	}
	if filter.Status != nil {
		q.Set("status", string(*filter.Status))
	}
	if filter.ActiveOnly {
		q.Set("includeArchived", "false")
	}
	var out []model.Task
	err := c.do(ctx, http.MethodGet, "/api/tasks", q, nil, &out)
	return out, err
}

func (c *Client) GetTask(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	var out model.Task
	if err := c.do(ctx, http.MethodGet, "/api/tasks/"+id.String(), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateTask(ctx context.Context, in model.TaskInput) (*model.Task, error) {
	var out model.Task
	if err := c.do(ctx, http.MethodPost, "/api/tasks", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) PatchTask(ctx context.Context, id uuid.UUID, patch model.TaskPatch) (*model.Task, error) {
	var out model.Task
	if err := c.do(ctx, http.MethodPatch, "/api/tasks/"+id.String(), nil, patch, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteTask(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/api/tasks/"+id.String(), nil, nil, nil)
}

func (c *Client) BatchReorderTasks(ctx context.Context, updates []model.TaskReorder) error {
	if updates == nil {
		updates = []model.TaskReorder{}
	}
	return c.do(ctx, http.MethodPatch, "/api/tasks/batch/reorder", nil, updates, nil)
}

func (c *Client) MoveTask(ctx context.Context, move model.TaskMove) ([]model.TaskReorder, error) {
	var out struct {
		Updates []model.TaskReorder `json:"updates"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/tasks/move", nil, move, &out); err != nil {
		return nil, err
	}
	return out.Updates, nil
}

func (c *Client) ListSubtasks(ctx context.Context, filter model.SubtaskFilter) ([]model.Subtask, error) {
	q := url.Values{}
	if filter.TaskID != nil {
		q.Set("taskId", filter.TaskID.String())
	}
	var out []model.Subtask
	err := c.do(ctx, http.MethodGet, "/api/subtasks", q, nil, &out)
	return out, err
}

func (c *Client) CreateSubtask(ctx context.Context, in model.SubtaskInput) (*model.Subtask, error) {
	var out model.Subtask
	if err := c.do(ctx, http.MethodPost, "/api/subtasks", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) PatchSubtask(ctx context.Context, id uuid.UUID, patch model.SubtaskPatch) (*model.Subtask, error) {
	var out model.Subtask
	if err := c.do(ctx, http.MethodPatch, "/api/subtasks/"+id.String(), nil, patch, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) BatchReorderSubtasks(ctx context.Context, updates []model.SubtaskReorder) error {
	if updates == nil {
		updates = []model.SubtaskReorder{}
	}
	return c.do(ctx, http.MethodPatch, "/api/subtasks/batch/reorder", nil, updates, nil)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var payload struct {
			Error string `json:"error"`
		}
		if data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16)); err == nil && json.Unmarshal(data, &payload) == nil {
			apiErr.Message = payload.Error
		}
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
