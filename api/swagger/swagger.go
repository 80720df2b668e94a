package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "LearnHub API",
        "description": "Online learning platform backend: courses, instructors, students, enrollment",
        "version": "1.0.0"
    },
    "basePath": "/api",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Courses", "description": "Course catalog management"},
        {"name": "Instructors", "description": "Instructor roster and course ownership"},
        {"name": "Students", "description": "Student registration, enrollment and progress"}
    ],
    "paths": {
        "/courses": {
            "get": {
                "tags": ["Courses"],
                "summary": "List courses with instructor info",
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "tags": ["Courses"],
                "summary": "Create a course owned by an existing instructor",
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Validation error"},
                    "404": {"description": "Instructor not found"}
                }
            }
        },
        "/courses/name/{name}": {
            "get": {
                "tags": ["Courses"],
                "summary": "Get a course by name",
                "parameters": [{"name": "name", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}
            }
        },
        "/courses/courseId/{courseId}": {
            "get": {
                "tags": ["Courses"],
                "summary": "Get a course by business key",
                "parameters": [{"name": "courseId", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}
            },
            "put": {
                "tags": ["Courses"],
                "summary": "Update a course by business key",
                "parameters": [{"name": "courseId", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}
            },
            "delete": {
                "tags": ["Courses"],
                "summary": "Delete a course and unlink its instructor back-reference",
                "parameters": [{"name": "courseId", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}
            }
        },
        "/instructors": {
            "get": {
                "tags": ["Instructors"],
                "summary": "List instructors with created courses",
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "tags": ["Instructors"],
                "summary": "Create an instructor",
                "responses": {"201": {"description": "Created"}, "400": {"description": "Validation error"}}
            }
        },
        "/instructors/{id}": {
            "get": {
                "tags": ["Instructors"],
                "summary": "Get an instructor",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}
            },
            "put": {
                "tags": ["Instructors"],
                "summary": "Update an instructor",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}
            },
            "delete": {
                "tags": ["Instructors"],
                "summary": "Delete an instructor and cascade-delete their courses",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}
            }
        },
        "/students": {
            "get": {
                "tags": ["Students"],
                "summary": "List students with enrolled courses",
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "tags": ["Students"],
                "summary": "Register a student",
                "responses": {"201": {"description": "Created"}, "400": {"description": "Validation error"}}
            }
        },
        "/students/{id}": {
            "get": {
                "tags": ["Students"],
                "summary": "Get a student",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}
            },
            "put": {
                "tags": ["Students"],
                "summary": "Update a student",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}
            },
            "delete": {
                "tags": ["Students"],
                "summary": "Delete a student",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}
            }
        },
        "/students/{id}/enroll": {
            "post": {
                "tags": ["Students"],
                "summary": "Enroll a student in a course",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "Enrolled; response carries recommendations"},
                    "404": {"description": "Student or course not found"},
                    "409": {"description": "Already enrolled"}
                }
            }
        },
        "/students/{id}/progress": {
            "put": {
                "tags": ["Students"],
                "summary": "Upsert per-course progress",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}
            }
        }
    },
    "definitions": {
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
