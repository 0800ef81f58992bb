// Package docs registers the swagger document served at /swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health": {
            "get": {
                "tags": ["health"],
                "summary": "Liveness probe",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/projects": {
            "get": {
                "tags": ["projects"],
                "summary": "List projects",
                "parameters": [
                    {"type": "boolean", "name": "archived", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/model.Project"}}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            },
            "post": {
                "tags": ["projects"],
                "summary": "Create a project",
                "parameters": [
                    {"name": "project", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.ProjectRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/model.Project"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/api/projects/{id}": {
            "get": {
                "tags": ["projects"],
                "summary": "Get a project",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.Project"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            },
            "put": {
                "tags": ["projects"],
                "summary": "Replace a project",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"name": "project", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.ProjectRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.Project"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            },
            "patch": {
                "tags": ["projects"],
                "summary": "Patch a project",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"name": "patch", "in": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.Project"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            },
            "delete": {
                "tags": ["projects"],
                "summary": "Delete a project with its tasks and subtasks",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/api/tasks": {
            "get": {
                "tags": ["tasks"],
                "summary": "List tasks",
                "parameters": [
                    {"type": "string", "name": "projectId", "in": "query"},
                    {"type": "string", "name": "status", "in": "query"},
                    {"type": "boolean", "name": "includeArchived", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/model.Task"}}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            },
            "post": {
                "tags": ["tasks"],
                "summary": "Create a task",
                "parameters": [
                    {"name": "task", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.TaskRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/model.Task"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/api/tasks/move": {
            "post": {
                "tags": ["tasks"],
                "summary": "Move a task",
                "parameters": [
                    {"name": "move", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.TaskMoveRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.MoveResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/api/tasks/batch/reorder": {
            "patch": {
                "tags": ["tasks"],
                "summary": "Batch reorder tasks",
                "parameters": [
                    {"name": "updates", "in": "body", "required": true, "schema": {"type": "array", "items": {"$ref": "#/definitions/model.TaskReorder"}}}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/api/tasks/{id}": {
            "get": {
                "tags": ["tasks"],
                "summary": "Get a task",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.Task"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            },
            "put": {
                "tags": ["tasks"],
                "summary": "Replace a task",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"name": "task", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.TaskRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.Task"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            },
            "patch": {
                "tags": ["tasks"],
                "summary": "Patch a task",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"name": "patch", "in": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.Task"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            },
            "delete": {
                "tags": ["tasks"],
                "summary": "Delete a task with its subtasks",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/api/tasks/{id}/archive": {
            "post": {
                "tags": ["tasks"],
                "summary": "Archive a task",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.Task"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/api/tasks/{id}/restore": {
            "post": {
                "tags": ["tasks"],
                "summary": "Restore an archived task",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"name": "restore", "in": "body", "schema": {"$ref": "#/definitions/handler.RestoreRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.Task"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/api/tasks/{id}/progress": {
            "get": {
                "tags": ["tasks"],
                "summary": "Subtask progress",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.Progress"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/api/subtasks": {
            "get": {
                "tags": ["subtasks"],
                "summary": "List subtasks",
                "parameters": [{"type": "string", "name": "taskId", "in": "query"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/model.Subtask"}}}
                }
            },
            "post": {
                "tags": ["subtasks"],
                "summary": "Create a subtask",
                "parameters": [
                    {"name": "subtask", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.SubtaskRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/model.Subtask"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/api/subtasks/move": {
            "post": {
                "tags": ["subtasks"],
                "summary": "Move a subtask",
                "parameters": [
                    {"name": "move", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.SubtaskMoveRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/api/subtasks/batch/reorder": {
            "patch": {
                "tags": ["subtasks"],
                "summary": "Batch reorder subtasks",
                "parameters": [
                    {"name": "updates", "in": "body", "required": true, "schema": {"type": "array", "items": {"$ref": "#/definitions/model.SubtaskReorder"}}}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "handler.ErrorResponse": {
            "type": "object",
            "properties": {"error": {"type": "string"}}
        },
        "handler.ProjectRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "description": {"type": "string"},
                "color": {"type": "string", "example": "#8B5CF6"},
                "archived": {"type": "boolean"}
            }
        },
        "handler.TaskRequest": {
            "type": "object",
            "required": ["projectId"],
            "properties": {
                "projectId": {"type": "string"},
                "title": {"type": "string"},
                "notes": {"type": "string"},
                "status": {"type": "string", "enum": ["todo", "in_progress", "done", "archived"]},
                "assignee": {"type": "string"},
                "startDate": {"type": "string"},
                "dueDate": {"type": "string"},
                "order": {"type": "integer"}
            }
        },
        "handler.RestoreRequest": {
            "type": "object",
            "properties": {"status": {"type": "string", "enum": ["todo", "in_progress", "done"]}}
        },
        "handler.TaskMoveRequest": {
            "type": "object",
            "required": ["taskId"],
            "properties": {
                "taskId": {"type": "string"},
                "fromStatus": {"type": "string"},
                "toStatus": {"type": "string"},
                "fromIndex": {"type": "integer"},
                "toIndex": {"type": "integer"}
            }
        },
        "handler.MoveResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "updates": {"type": "array", "items": {"$ref": "#/definitions/model.TaskReorder"}}
            }
        },
        "handler.SubtaskRequest": {
            "type": "object",
            "required": ["taskId"],
            "properties": {
                "taskId": {"type": "string"},
                "title": {"type": "string"},
                "notes": {"type": "string"},
                "status": {"type": "string", "enum": ["todo", "done"]},
                "assignee": {"type": "string"},
                "startDate": {"type": "string"},
                "dueDate": {"type": "string"},
                "order": {"type": "integer"}
            }
        },
        "handler.SubtaskMoveRequest": {
            "type": "object",
            "required": ["subtaskId"],
            "properties": {
                "subtaskId": {"type": "string"},
                "toTaskId": {"type": "string"},
                "fromIndex": {"type": "integer"},
                "toIndex": {"type": "integer"}
            }
        },
        "model.Project": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "description": {"type": "string"},
                "color": {"type": "string"},
                "archived": {"type": "boolean"},
                "createdAt": {"type": "string"},
                "updatedAt": {"type": "string"}
            }
        },
        "model.Task": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "projectId": {"type": "string"},
                "title": {"type": "string"},
                "notes": {"type": "string"},
                "status": {"type": "string"},
                "assignee": {"type": "string"},
                "startDate": {"type": "string"},
                "dueDate": {"type": "string"},
                "order": {"type": "integer"},
                "createdAt": {"type": "string"},
                "updatedAt": {"type": "string"}
            }
        },
        "model.Subtask": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "taskId": {"type": "string"},
                "title": {"type": "string"},
                "notes": {"type": "string"},
                "status": {"type": "string"},
                "assignee": {"type": "string"},
                "startDate": {"type": "string"},
                "dueDate": {"type": "string"},
                "order": {"type": "integer"},
                "createdAt": {"type": "string"},
                "updatedAt": {"type": "string"}
            }
        },
        "model.TaskReorder": {
            "type": "object",
            "required": ["id"],
            "properties": {
                "id": {"type": "string"},
                "status": {"type": "string"},
                "order": {"type": "integer"}
            }
        },
        "model.SubtaskReorder": {
            "type": "object",
            "required": ["id"],
            "properties": {
                "id": {"type": "string"},
                "taskId": {"type": "string"},
                "order": {"type": "integer"}
            }
        },
        "model.Progress": {
            "type": "object",
            "properties": {
                "done": {"type": "integer"},
                "total": {"type": "integer"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "Tracker API",
	Description:      "Projects, tasks and subtasks with drag-to-reorder ordering.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
