package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "SMA Odoo Sync API",
        "description": "Offline-aware gateway over the school's Odoo server",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Authentication", "description": "Odoo session lifecycle"},
        {"name": "Lists", "description": "Cached, searchable, paginated entity lists"},
        {"name": "Attendance", "description": "Class attendance registration"},
        {"name": "Observability", "description": "Health and sync counters"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Sign in against Odoo",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "Signed in", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid payload", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Rejected credentials or missing role", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "503": {"description": "Server unreachable", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Sign out",
                "responses": {"204": {"description": "Signed out"}}
            }
        },
        "/auth/session": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Current session and remaining lifetime",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "No session", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/lists": {
            "get": {
                "tags": ["Lists"],
                "summary": "Registered lists",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/{entity}": {
            "get": {
                "tags": ["Lists"],
                "summary": "List state",
                "description": "Loads the list on first use, then applies the optional search and page. meta.offline and meta.notice report cached answers.",
                "parameters": [
                    {"name": "entity", "in": "path", "required": true, "type": "string"},
                    {"name": "q", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown list", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Lists"],
                "summary": "Create a record and refresh the list",
                "parameters": [
                    {"name": "entity", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "405": {"description": "List is read-only", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Rejected by the server", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/{entity}/refresh": {
            "post": {
                "tags": ["Lists"],
                "summary": "Reload a list from the server",
                "parameters": [{"name": "entity", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/{entity}/search": {
            "delete": {
                "tags": ["Lists"],
                "summary": "Leave search mode",
                "parameters": [{"name": "entity", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/{entity}/export": {
            "get": {
                "tags": ["Lists"],
                "summary": "Download the loaded list",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "entity", "in": "path", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {"200": {"description": "File", "schema": {"type": "file"}}}
            }
        },
        "/{entity}/{id}": {
            "put": {
                "tags": ["Lists"],
                "summary": "Update a record and refresh the list",
                "parameters": [
                    {"name": "entity", "in": "path", "required": true, "type": "string"},
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "405": {"description": "List is read-only", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Rejected by the server", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Lists"],
                "summary": "Delete a record and refresh the list",
                "parameters": [
                    {"name": "entity", "in": "path", "required": true, "type": "string"},
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "Deleted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Rejected by the server", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "503": {"description": "Offline", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/{entity}/{id}/delete-plan": {
            "get": {
                "tags": ["Lists"],
                "summary": "Decide which dialog to show before deleting",
                "parameters": [
                    {"name": "entity", "in": "path", "required": true, "type": "string"},
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/{entity}/{id}/confirm": {
            "post": {
                "tags": ["Lists"],
                "summary": "Confirm a draft enrollment",
                "parameters": [
                    {"name": "entity", "in": "path", "required": true, "type": "string"},
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "405": {"description": "List has no confirm step", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/attendance/bulk": {
            "post": {
                "tags": ["Attendance"],
                "summary": "Register attendance for every student of a schedule slot",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/BulkStudentAttendance"}}
                ],
                "responses": {
                    "201": {"description": "Registered", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Rejected", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/metrics/summary": {
            "get": {
                "tags": ["Observability"],
                "summary": "Cache, RPC and offline counters",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "required": ["username", "password"],
            "properties": {
                "username": {"type": "string", "minLength": 3},
                "password": {"type": "string"}
            }
        },
        "StudentAttendanceRow": {
            "type": "object",
            "required": ["student_id", "state"],
            "properties": {
                "student_id": {"type": "integer"},
                "state": {"type": "string", "enum": ["present", "absent", "late", "permission"]},
                "check_in_time": {"type": "number"},
                "check_out_time": {"type": "number"},
                "observations": {"type": "string"}
            }
        },
        "BulkStudentAttendance": {
            "type": "object",
            "required": ["schedule_id", "date", "students"],
            "properties": {
                "schedule_id": {"type": "integer"},
                "date": {"type": "string", "format": "date"},
                "students": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/StudentAttendanceRow"}
                }
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
