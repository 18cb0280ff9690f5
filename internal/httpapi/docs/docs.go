//go:build swagger

// Package docs holds the OpenAPI document served under /swagger/ when the
// binary is built with -tags=swagger. Keep it in sync with the handler
// annotations in internal/httpapi.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/healthz": {"get": {"tags": ["health"], "summary": "Liveness probe", "produces": ["text/plain"], "responses": {"200": {"description": "ok"}}}},
        "/readyz": {"get": {"tags": ["health"], "summary": "Readiness probe", "produces": ["text/plain"], "responses": {"200": {"description": "ready"}, "503": {"description": "closed"}}}},
        "/status": {"get": {"tags": ["status"], "summary": "Scheduler, model and cache statistics", "produces": ["application/json"], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/types.StatusResponse"}}}}},
        "/models": {"get": {"tags": ["models"], "summary": "List the model catalog", "produces": ["application/json"], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/types.ModelsResponse"}}}}},
        "/models/warmup": {"post": {
            "tags": ["models"], "summary": "Load several models in parallel",
            "consumes": ["application/json"], "produces": ["application/json"],
            "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/types.WarmupRequest"}}],
            "responses": {
                "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.WarmupResponse"}},
                "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                "415": {"description": "Unsupported Media Type", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
            }}},
        "/models/{name}/load": {"post": {
            "tags": ["models"], "summary": "Load a model, optionally forcing a reload", "produces": ["application/json"],
            "parameters": [
                {"type": "string", "name": "name", "in": "path", "required": true},
                {"type": "boolean", "name": "force", "in": "query"}
            ],
            "responses": {
                "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.LoadResponse"}},
                "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
            }}},
        "/models/{name}": {"delete": {
            "tags": ["models"], "summary": "Unload a resident model", "produces": ["application/json"],
            "parameters": [{"type": "string", "name": "name", "in": "path", "required": true}],
            "responses": {
                "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.LoadResponse"}},
                "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
            }}},
        "/tasks/{category}": {"post": {
            "tags": ["tasks"], "summary": "Run a task and wait for its result",
            "consumes": ["application/json"], "produces": ["application/json"],
            "parameters": [
                {"type": "string", "name": "category", "in": "path", "required": true},
                {"in": "body", "name": "body", "required": true, "schema": {"type": "object"}}
            ],
            "responses": {
                "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.TaskResponse"}},
                "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                "415": {"description": "Unsupported Media Type", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
            }}},
        "/cache/{namespace}": {"delete": {
            "tags": ["cache"], "summary": "Clear one cache namespace",
            "parameters": [{"type": "string", "name": "namespace", "in": "path", "required": true}],
            "responses": {
                "204": {"description": "No Content"},
                "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
            }}}
    },
    "definitions": {
        "types.ErrorResponse": {"type": "object", "properties": {"code": {"type": "integer", "example": 400}, "error": {"type": "string", "example": "invalid JSON body"}}},
        "types.ModelSpec": {"type": "object", "properties": {
            "name": {"type": "string", "example": "disease-classifier"},
            "path": {"type": "string"},
            "input_shape": {"type": "array", "items": {"type": "integer"}},
            "output_size": {"type": "integer", "example": 38},
            "priority": {"type": "integer", "example": 1},
            "quantized": {"type": "boolean"}
        }},
        "types.ModelsResponse": {"type": "object", "properties": {"models": {"type": "array", "items": {"$ref": "#/definitions/types.ModelSpec"}}}},
        "types.WarmupRequest": {"type": "object", "properties": {"models": {"type": "array", "items": {"type": "string"}}}},
        "types.WarmupResponse": {"type": "object", "properties": {"requested": {"type": "integer"}, "loaded": {"type": "integer"}}},
        "types.LoadResponse": {"type": "object", "properties": {"model": {"type": "string"}, "loaded": {"type": "boolean"}, "degraded": {"type": "boolean"}}},
        "types.TaskResponse": {"type": "object", "properties": {
            "id": {"type": "string"},
            "category": {"type": "string", "example": "model-inference"},
            "result": {},
            "duration_ms": {"type": "integer"}
        }},
        "types.StatusResponse": {"type": "object", "properties": {
            "scheduler": {"type": "object"},
            "models": {"type": "object"},
            "cache": {"type": "object"},
            "uptime_seconds": {"type": "integer"},
            "server_time_unix": {"type": "integer"}
        }}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "0.1",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "servecore API",
	Description:      "Task scheduling, model lifecycle and result caching for AI serving.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
