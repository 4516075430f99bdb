// Package docs holds the Swagger description of the tasklist API.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "schemes": {{ marshal .Schemes }},
    "paths": {
        "/health": {
            "get": {
                "tags": ["Health"],
                "summary": "Health Check",
                "description": "Check if server is running",
                "responses": {
                    "200": {
                        "description": "Server is healthy"
                    }
                }
            }
        },
        "/ready": {
            "get": {
                "tags": ["Health"],
                "summary": "Readiness Check",
                "description": "Check that the task list file is readable",
                "responses": {
                    "200": {
                        "description": "Task list is readable"
                    },
                    "503": {
                        "description": "Task list is missing or unreadable"
                    }
                }
            }
        },
        "/tasks": {
            "get": {
                "tags": ["Tasks"],
                "summary": "Fetch the task document",
                "produces": ["application/json"],
                "responses": {
                    "200": {
                        "description": "Full task document",
                        "schema": {"$ref": "#/definitions/entities.Document"}
                    },
                    "500": {
                        "description": "Task list unreadable or malformed",
                        "schema": {"$ref": "#/definitions/http.ErrorResponse"}
                    }
                }
            },
            "put": {
                "tags": ["Tasks"],
                "summary": "Replace the task document",
                "description": "The body is written to disk verbatim. No schema validation is performed.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {
                        "in": "body",
                        "name": "document",
                        "required": true,
                        "schema": {"$ref": "#/definitions/entities.Document"}
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Document saved",
                        "schema": {"$ref": "#/definitions/http.MessageResponse"}
                    },
                    "500": {
                        "description": "Write failed",
                        "schema": {"$ref": "#/definitions/http.ErrorResponse"}
                    }
                }
            }
        }
    },
    "definitions": {
        "entities.Document": {
            "type": "object",
            "properties": {
                "lastModified": {"type": "integer"},
                "categories": {
                    "type": "object",
                    "additionalProperties": {"type": "string"}
                },
                "tasks": {
                    "type": "object",
                    "additionalProperties": {"$ref": "#/definitions/entities.Task"}
                }
            }
        },
        "entities.Task": {
            "type": "object",
            "properties": {
                "taskCreationTime": {"type": "integer"},
                "taskName": {"type": "string"},
                "taskCategory": {"type": "string"},
                "taskPriority": {"type": "integer"},
                "taskDueTime": {"type": "integer", "x-nullable": true},
                "taskCompletionTime": {"type": "integer"},
                "taskNotes": {"type": "string"},
                "daysToResurrect": {"type": "integer"}
            }
        },
        "http.MessageResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"}
            }
        },
        "http.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:3000",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "tasklist API",
	Description:      "Whole-document task list storage",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
