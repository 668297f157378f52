// Package docs holds the OpenAPI description of the console API served at
// /swagger/*. Keep it in sync with the handler annotations (swag init).
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
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Liveness probe",
                "responses": {"200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}}
            }
        },
        "/health/ready": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Readiness probe",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.readinessResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/handler.readinessResponse"}}
                }
            }
        },
        "/api/session": {
            "get": {
                "produces": ["application/json"],
                "tags": ["session"],
                "summary": "Session status",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.Response"}}}
            }
        },
        "/api/session/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["session"],
                "summary": "Login",
                "parameters": [{"description": "Login credentials", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/domain.Credentials"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.Response"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.Response"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/handler.Response"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/handler.Response"}}
                }
            }
        },
        "/api/session/register": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["session"],
                "summary": "Register",
                "parameters": [{"description": "New account", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/domain.Registration"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.Response"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/handler.Response"}}
                }
            }
        },
        "/api/session/logout": {
            "post": {
                "produces": ["application/json"],
                "tags": ["session"],
                "summary": "Logout",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.Response"}}}
            }
        },
        "/api/users": {
            "get": {
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "List or search users",
                "parameters": [
                    {"type": "string", "description": "Search term", "name": "search", "in": "query"},
                    {"type": "boolean", "description": "Reload from the backend", "name": "refresh", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.Response"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.Response"}}
                }
            },
            "post": {
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Add a user",
                "parameters": [
                    {"type": "string", "name": "firstName", "in": "formData", "required": true},
                    {"type": "string", "name": "lastName", "in": "formData", "required": true},
                    {"type": "string", "name": "username", "in": "formData", "required": true},
                    {"type": "string", "name": "email", "in": "formData", "required": true},
                    {"type": "string", "name": "role", "in": "formData", "required": true},
                    {"type": "boolean", "name": "isActive", "in": "formData"},
                    {"type": "boolean", "name": "isNotLocked", "in": "formData"},
                    {"type": "file", "name": "profileImage", "in": "formData"}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.Response"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/handler.Response"}}
                }
            }
        },
        "/api/users/update": {
            "post": {
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Update a user",
                "parameters": [
                    {"type": "string", "name": "currentUsername", "in": "formData"},
                    {"type": "string", "name": "firstName", "in": "formData", "required": true},
                    {"type": "string", "name": "lastName", "in": "formData", "required": true},
                    {"type": "string", "name": "username", "in": "formData", "required": true},
                    {"type": "string", "name": "email", "in": "formData", "required": true},
                    {"type": "string", "name": "role", "in": "formData", "required": true},
                    {"type": "boolean", "name": "isActive", "in": "formData"},
                    {"type": "boolean", "name": "isNotLocked", "in": "formData"},
                    {"type": "file", "name": "profileImage", "in": "formData"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.Response"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/handler.Response"}}
                }
            }
        },
        "/api/users/{username}": {
            "delete": {
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Delete a user",
                "parameters": [{"type": "string", "name": "username", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.Response"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.Response"}}
                }
            }
        },
        "/api/users/reset-password/{email}": {
            "post": {
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Reset a user's password",
                "parameters": [{"type": "string", "name": "email", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.Response"}}}
            }
        },
        "/api/users/profile-image": {
            "post": {
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Upload a profile image",
                "parameters": [
                    {"type": "string", "name": "username", "in": "formData", "required": true},
                    {"type": "file", "name": "profileImage", "in": "formData", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.Response"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/handler.Response"}}
                }
            }
        }
    },
    "definitions": {
        "domain.Credentials": {
            "type": "object",
            "required": ["username", "password"],
            "properties": {
                "username": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "domain.Registration": {
            "type": "object",
            "required": ["firstName", "lastName", "username", "email"],
            "properties": {
                "firstName": {"type": "string"},
                "lastName": {"type": "string"},
                "username": {"type": "string"},
                "email": {"type": "string"}
            }
        },
        "domain.Notification": {
            "type": "object",
            "properties": {
                "type": {"type": "string", "enum": ["default", "info", "success", "warning", "error"]},
                "message": {"type": "string"}
            }
        },
        "handler.Response": {
            "type": "object",
            "properties": {
                "route": {"type": "string"},
                "data": {},
                "notifications": {"type": "array", "items": {"$ref": "#/definitions/domain.Notification"}}
            }
        },
        "handler.dependencyStatus": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "error": {"type": "string"}
            }
        },
        "handler.readinessResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "dependencies": {"type": "object", "additionalProperties": {"$ref": "#/definitions/handler.dependencyStatus"}}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "User management console API",
	Description:      "Admin console over the user-management backend.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
