package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Compani course API",
        "description": "Course membership ledger, attendance reconciliation and course authorization",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http",
        "https"
    ],
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "tags": [
        {
            "name": "CourseHistories",
            "description": "Append-only course ledger"
        },
        {
            "name": "Attendances",
            "description": "Attendance recording and reconciliation"
        },
        {
            "name": "Courses",
            "description": "Course membership and lifecycle"
        },
        {
            "name": "CourseSlots",
            "description": "Course slot scheduling"
        }
    ],
    "paths": {
        "/courses/{id}/histories": {
            "get": {
                "tags": [
                    "CourseHistories"
                ],
                "summary": "List a course history, newest first",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Course ID"
                    },
                    {
                        "name": "before",
                        "in": "query",
                        "required": false,
                        "type": "string",
                        "description": "RFC3339 cursor, exclusive"
                    },
                    {
                        "name": "before_id",
                        "in": "query",
                        "required": false,
                        "type": "string",
                        "description": "Entry ID breaking ties on before"
                    },
                    {
                        "name": "limit",
                        "in": "query",
                        "required": false,
                        "type": "integer",
                        "description": "Page size (max 100)"
                    },
                    {
                        "name": "actions",
                        "in": "query",
                        "required": false,
                        "type": "string",
                        "description": "Comma separated actions"
                    },
                    {
                        "name": "trainee",
                        "in": "query",
                        "required": false,
                        "type": "string",
                        "description": "Trainee ID"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Invalid request"
                    },
                    "403": {
                        "description": "Denied"
                    },
                    "404": {
                        "description": "Not found"
                    },
                    "409": {
                        "description": "Conflict"
                    }
                }
            }
        },
        "/courses/{id}": {
            "put": {
                "tags": [
                    "Courses"
                ],
                "summary": "Update course fields",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Course ID"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/UpdateCourseRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Invalid request"
                    },
                    "403": {
                        "description": "Denied"
                    },
                    "404": {
                        "description": "Not found"
                    },
                    "409": {
                        "description": "Conflict"
                    }
                }
            }
        },
        "/courses/{id}/trainees": {
            "post": {
                "tags": [
                    "Courses"
                ],
                "summary": "Enroll a trainee in a course",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Course ID"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/AddTraineeRequest"
                        }
                    }
                ],
                "responses": {
                    "204": {
                        "description": "Enrolled"
                    },
                    "400": {
                        "description": "Invalid request"
                    },
                    "403": {
                        "description": "Denied"
                    },
                    "404": {
                        "description": "Not found"
                    },
                    "409": {
                        "description": "Conflict"
                    }
                }
            }
        },
        "/courses/{id}/trainees/{traineeId}": {
            "delete": {
                "tags": [
                    "Courses"
                ],
                "summary": "Remove a trainee from a course",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Course ID"
                    },
                    {
                        "name": "traineeId",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Trainee ID"
                    }
                ],
                "responses": {
                    "204": {
                        "description": "Removed"
                    },
                    "400": {
                        "description": "Invalid request"
                    },
                    "403": {
                        "description": "Denied"
                    },
                    "404": {
                        "description": "Not found"
                    },
                    "409": {
                        "description": "Conflict"
                    }
                }
            }
        },
        "/courses/{id}/companies": {
            "post": {
                "tags": [
                    "Courses"
                ],
                "summary": "Attach a company to a course",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Course ID"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/AddCompanyRequest"
                        }
                    }
                ],
                "responses": {
                    "204": {
                        "description": "Attached"
                    },
                    "400": {
                        "description": "Invalid request"
                    },
                    "403": {
                        "description": "Denied"
                    },
                    "404": {
                        "description": "Not found"
                    },
                    "409": {
                        "description": "Conflict"
                    }
                }
            }
        },
        "/courses/{id}/companies/{companyId}": {
            "delete": {
                "tags": [
                    "Courses"
                ],
                "summary": "Detach a company from a course",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Course ID"
                    },
                    {
                        "name": "companyId",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Company ID"
                    }
                ],
                "responses": {
                    "204": {
                        "description": "Detached"
                    },
                    "400": {
                        "description": "Invalid request"
                    },
                    "403": {
                        "description": "Denied"
                    },
                    "404": {
                        "description": "Not found"
                    },
                    "409": {
                        "description": "Conflict"
                    }
                }
            }
        },
        "/courses/{id}/slots": {
            "post": {
                "tags": [
                    "CourseSlots"
                ],
                "summary": "Add a slot to a course",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Course ID"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/SlotRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Invalid request"
                    },
                    "403": {
                        "description": "Denied"
                    },
                    "404": {
                        "description": "Not found"
                    },
                    "409": {
                        "description": "Conflict"
                    }
                }
            }
        },
        "/courses/{id}/archive": {
            "post": {
                "tags": [
                    "Courses"
                ],
                "summary": "Archive a course",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Course ID"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Invalid request"
                    },
                    "403": {
                        "description": "Denied"
                    },
                    "404": {
                        "description": "Not found"
                    },
                    "409": {
                        "description": "Conflict"
                    }
                }
            }
        },
        "/courses/{id}/unarchive": {
            "post": {
                "tags": [
                    "Courses"
                ],
                "summary": "Unarchive a course",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Course ID"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Invalid request"
                    },
                    "403": {
                        "description": "Denied"
                    },
                    "404": {
                        "description": "Not found"
                    },
                    "409": {
                        "description": "Conflict"
                    }
                }
            }
        },
        "/courseslots/{id}": {
            "put": {
                "tags": [
                    "CourseSlots"
                ],
                "summary": "Replace the dates and location of a slot",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Slot ID"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/SlotRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Invalid request"
                    },
                    "403": {
                        "description": "Denied"
                    },
                    "404": {
                        "description": "Not found"
                    },
                    "409": {
                        "description": "Conflict"
                    }
                }
            },
            "delete": {
                "tags": [
                    "CourseSlots"
                ],
                "summary": "Delete a slot",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Slot ID"
                    }
                ],
                "responses": {
                    "204": {
                        "description": "Deleted"
                    },
                    "400": {
                        "description": "Invalid request"
                    },
                    "403": {
                        "description": "Denied"
                    },
                    "404": {
                        "description": "Not found"
                    },
                    "409": {
                        "description": "Conflict"
                    }
                }
            }
        },
        "/attendances": {
            "post": {
                "tags": [
                    "Attendances"
                ],
                "summary": "Record attendances on a course slot",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/CreateAttendanceRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Invalid request"
                    },
                    "403": {
                        "description": "Denied"
                    },
                    "404": {
                        "description": "Not found"
                    },
                    "409": {
                        "description": "Conflict"
                    }
                }
            },
            "get": {
                "tags": [
                    "Attendances"
                ],
                "summary": "List attendances of course slots visible to the caller",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "course_slot",
                        "in": "query",
                        "required": true,
                        "type": "string",
                        "description": "Course slot IDs"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Invalid request"
                    },
                    "403": {
                        "description": "Denied"
                    },
                    "404": {
                        "description": "Not found"
                    },
                    "409": {
                        "description": "Conflict"
                    }
                }
            },
            "delete": {
                "tags": [
                    "Attendances"
                ],
                "summary": "Delete one attendance, or the slot's attendances of enrolled trainees",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "course_slot",
                        "in": "query",
                        "required": true,
                        "type": "string",
                        "description": "Course slot ID"
                    },
                    {
                        "name": "trainee",
                        "in": "query",
                        "required": false,
                        "type": "string",
                        "description": "Trainee ID"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Invalid request"
                    },
                    "403": {
                        "description": "Denied"
                    },
                    "404": {
                        "description": "Not found"
                    },
                    "409": {
                        "description": "Conflict"
                    }
                }
            }
        },
        "/attendances/unsubscribed": {
            "get": {
                "tags": [
                    "Attendances"
                ],
                "summary": "List attendances of trainees not enrolled in the course",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "course",
                        "in": "query",
                        "required": true,
                        "type": "string",
                        "description": "Course ID"
                    },
                    {
                        "name": "trainee",
                        "in": "query",
                        "required": false,
                        "type": "string",
                        "description": "Trainee ID"
                    },
                    {
                        "name": "company",
                        "in": "query",
                        "required": false,
                        "type": "string",
                        "description": "Company ID"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Invalid request"
                    },
                    "403": {
                        "description": "Denied"
                    },
                    "404": {
                        "description": "Not found"
                    },
                    "409": {
                        "description": "Conflict"
                    }
                }
            }
        },
        "/trainees/{id}/unsubscribed-attendances": {
            "get": {
                "tags": [
                    "Attendances"
                ],
                "summary": "List a trainee's attendances on courses they are not enrolled in",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Trainee ID"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Invalid request"
                    },
                    "403": {
                        "description": "Denied"
                    },
                    "404": {
                        "description": "Not found"
                    },
                    "409": {
                        "description": "Conflict"
                    }
                }
            }
        },
        "/health": {
            "get": {
                "summary": "Store health",
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "503": {
                        "description": "A store is down"
                    }
                }
            }
        },
        "/metrics": {
            "get": {
                "summary": "Prometheus metrics",
                "produces": [
                    "text/plain"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        }
    },
    "definitions": {
        "AddTraineeRequest": {
            "type": "object",
            "required": [
                "trainee"
            ],
            "properties": {
                "trainee": {
                    "type": "string"
                }
            }
        },
        "AddCompanyRequest": {
            "type": "object",
            "required": [
                "company"
            ],
            "properties": {
                "company": {
                    "type": "string"
                }
            }
        },
        "UpdateCourseRequest": {
            "type": "object",
            "properties": {
                "misc": {
                    "type": "string"
                },
                "expected_bills_count": {
                    "type": "integer"
                },
                "max_trainees": {
                    "type": "integer"
                },
                "sales_representative": {
                    "type": "string"
                }
            }
        },
        "SlotRequest": {
            "type": "object",
            "properties": {
                "start_date": {
                    "type": "string",
                    "format": "date-time"
                },
                "end_date": {
                    "type": "string",
                    "format": "date-time"
                },
                "address": {
                    "type": "string"
                },
                "meeting_link": {
                    "type": "string"
                }
            }
        },
        "CreateAttendanceRequest": {
            "type": "object",
            "required": [
                "course_slot"
            ],
            "properties": {
                "course_slot": {
                    "type": "string"
                },
                "trainee": {
                    "type": "string"
                }
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "limit": {
                    "type": "integer"
                },
                "next_before": {
                    "type": "string",
                    "format": "date-time"
                }
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {
                    "type": "string"
                },
                "message": {
                    "type": "string"
                },
                "status": {
                    "type": "integer"
                }
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {
                    "type": "object"
                },
                "error": {
                    "$ref": "#/definitions/APIError"
                },
                "pagination": {
                    "$ref": "#/definitions/Pagination"
                },
                "meta": {
                    "type": "object"
                }
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
