package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Course Scheduler API",
        "description": "Greedy semester schedule generation for university departments",
        "version": "0.1.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Scheduler", "description": "Schedule generation, persistence and conflict detection"}
    ],
    "paths": {
        "/schedules/generate": {
            "post": {
                "tags": ["Scheduler"],
                "summary": "Generate a schedule proposal for a semester and department",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/GenerateScheduleRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Generation already running for the semester"}
                }
            }
        },
        "/schedules/save": {
            "post": {
                "tags": ["Scheduler"],
                "summary": "Persist a schedule proposal, replacing the semester's prior schedule",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SaveScheduleRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedules/conflicts": {
            "post": {
                "tags": ["Scheduler"],
                "summary": "Detect conflicts for a proposed batch",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/DetectConflictsRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedules": {
            "get": {
                "tags": ["Scheduler"],
                "summary": "List the persisted schedule for a semester",
                "parameters": [
                    {"name": "semesterId", "in": "query", "required": true, "type": "integer"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "pageSize", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "TimeSlot": {
            "type": "object",
            "properties": {
                "dayOfWeek": {"type": "integer", "minimum": 1, "maximum": 6},
                "startMinute": {"type": "integer"},
                "endMinute": {"type": "integer"}
            }
        },
        "GenerationConstraints": {
            "type": "object",
            "properties": {
                "respectFacultyAvailability": {"type": "boolean"},
                "respectRoomCapacity": {"type": "boolean"},
                "avoidCourseConflicts": {"type": "boolean"}
            }
        },
        "GenerateScheduleRequest": {
            "type": "object",
            "properties": {
                "semesterId": {"type": "integer"},
                "departmentId": {"type": "integer"},
                "maxSectionsPerCourse": {"type": "integer"},
                "yearLevel": {"type": "integer"},
                "constraints": {"$ref": "#/definitions/GenerationConstraints"}
            },
            "required": ["semesterId", "departmentId"]
        },
        "ProposedEntry": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "offeringId": {"type": "integer"},
                "courseId": {"type": "integer"},
                "facultyId": {"type": "integer"},
                "roomId": {"type": "integer"},
                "sectionId": {"type": "integer"},
                "forced": {"type": "boolean"},
                "slots": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/TimeSlot"}
                }
            }
        },
        "SaveScheduleRequest": {
            "type": "object",
            "properties": {
                "semesterId": {"type": "integer"},
                "entries": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/ProposedEntry"}
                }
            },
            "required": ["semesterId", "entries"]
        },
        "DetectConflictsRequest": {
            "type": "object",
            "properties": {
                "semesterId": {"type": "integer"},
                "departmentId": {"type": "integer"},
                "entries": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/ProposedEntry"}
                }
            },
            "required": ["semesterId", "entries"]
        },
        "Conflict": {
            "type": "object",
            "properties": {
                "type": {"type": "string", "enum": ["FACULTY", "ROOM"]},
                "message": {"type": "string"},
                "entryA": {"type": "string"},
                "entryB": {"type": "string"},
                "slotA": {"$ref": "#/definitions/TimeSlot"},
                "slotB": {"$ref": "#/definitions/TimeSlot"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "pageSize": {"type": "integer"},
                "totalItems": {"type": "integer"},
                "totalPages": {"type": "integer"}
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
