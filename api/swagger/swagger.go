package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Study Planner API",
        "description": "Assigns study dates to plan items under weekly time budgets",
        "version": "0.1.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "security": [{"BearerAuth": []}],
    "tags": [
        {"name": "Schedule", "description": "Date assignment runs and schedule views"}
    ],
    "paths": {
        "/schedule/run": {
            "post": {
                "tags": ["Schedule"],
                "summary": "Assign dates to the caller's incomplete plan items",
                "parameters": [
                    {"name": "async", "in": "query", "type": "boolean", "description": "Queue the run and return a job id"}
                ],
                "responses": {
                    "200": {"description": "Run finished", "schema": {"$ref": "#/definitions/RunSummaryEnvelope"}},
                    "202": {"description": "Run queued", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "User not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Run already in progress", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Subject has no study day", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedule/jobs/{id}": {
            "get": {
                "tags": ["Schedule"],
                "summary": "Status of an asynchronous run",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown job", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedule/preview": {
            "post": {
                "tags": ["Schedule"],
                "summary": "Compute a schedule without saving it",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/PreviewScheduleRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid payload", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedule/last-run": {
            "get": {
                "tags": ["Schedule"],
                "summary": "Summary of the caller's most recent run",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/RunSummaryEnvelope"}},
                    "404": {"description": "No run recorded", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedule": {
            "get": {
                "tags": ["Schedule"],
                "summary": "Scheduled items per day in a date range",
                "parameters": [
                    {"name": "from", "in": "query", "required": true, "type": "string", "format": "date"},
                    {"name": "to", "in": "query", "required": true, "type": "string", "format": "date"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid range", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedule/today": {
            "get": {
                "tags": ["Schedule"],
                "summary": "Scheduled items of one day",
                "parameters": [
                    {"name": "date", "in": "query", "type": "string", "format": "date"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedule/export": {
            "get": {
                "tags": ["Schedule"],
                "summary": "Download the schedule of a date range",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "from", "in": "query", "required": true, "type": "string", "format": "date"},
                    {"name": "to", "in": "query", "required": true, "type": "string", "format": "date"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "File", "schema": {"type": "file"}},
                    "400": {"description": "Invalid query", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "WeekdayBudget": {
            "type": "object",
            "properties": {
                "mon": {"type": "integer"},
                "tue": {"type": "integer"},
                "wed": {"type": "integer"},
                "thu": {"type": "integer"},
                "fri": {"type": "integer"},
                "sat": {"type": "integer"},
                "sun": {"type": "integer"}
            }
        },
        "SubjectWindow": {
            "type": "object",
            "required": ["subject_id", "start_date", "end_date"],
            "properties": {
                "subject_id": {"type": "integer"},
                "start_date": {"type": "string", "format": "date"},
                "end_date": {"type": "string", "format": "date"}
            }
        },
        "PlanItemInput": {
            "type": "object",
            "required": ["item_id", "subject_id", "duration_minutes"],
            "properties": {
                "item_id": {"type": "integer"},
                "subject_id": {"type": "integer"},
                "duration_minutes": {"type": "integer"},
                "name": {"type": "string"}
            }
        },
        "PreviewScheduleRequest": {
            "type": "object",
            "properties": {
                "user_id": {"type": "integer"},
                "weekday_budget": {"$ref": "#/definitions/WeekdayBudget"},
                "subjects": {"type": "array", "items": {"$ref": "#/definitions/SubjectWindow"}},
                "items": {"type": "array", "items": {"$ref": "#/definitions/PlanItemInput"}}
            }
        },
        "RunAssignment": {
            "type": "object",
            "properties": {
                "item_id": {"type": "integer"},
                "subject_id": {"type": "integer"},
                "date": {"type": "string", "format": "date"},
                "minutes": {"type": "integer"},
                "overflow": {"type": "boolean"}
            }
        },
        "RunSummary": {
            "type": "object",
            "properties": {
                "user_id": {"type": "integer"},
                "status": {"type": "string", "enum": ["ok", "infeasible", "warning"]},
                "updated_count": {"type": "integer"},
                "changed_count": {"type": "integer"},
                "unchanged_count": {"type": "integer"},
                "overflow_count": {"type": "integer"},
                "excluded_count": {"type": "integer"},
                "assignments": {"type": "array", "items": {"$ref": "#/definitions/RunAssignment"}},
                "warning": {"type": "string"},
                "subject_id": {"type": "integer"},
                "started_at": {"type": "string", "format": "date-time"},
                "duration_ms": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"},
                "details": {"type": "object"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "meta": {"type": "object"}
            }
        },
        "RunSummaryEnvelope": {
            "type": "object",
            "properties": {
                "data": {"$ref": "#/definitions/RunSummary"},
                "error": {"$ref": "#/definitions/APIError"}
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
