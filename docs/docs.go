// Package docs holds the Swagger spec served at /swagger. Regenerate with `swag init`.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "API Support",
            "email": "support@example.com"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/cvs/upload": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["cvs"],
                "summary": "Upload a CV",
                "parameters": [
                    {"type": "file", "description": "CV file", "name": "file", "in": "formData", "required": true},
                    {"type": "string", "format": "uuid", "description": "Owner of the CV", "name": "userId", "in": "formData", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.UploadCVResponse"}},
                    "400": {"description": "Missing file or userId, unsupported type, too large", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "403": {"description": "Uploading for another user", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "429": {"description": "Daily upload quota reached", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/cvs/{id}/deactivate": {
            "patch": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["cvs"],
                "summary": "Deactivate a CV",
                "parameters": [{"type": "string", "format": "uuid", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.CV"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/user/cvs": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["cvs"],
                "summary": "List my CVs",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.CV"}}}
                }
            }
        },
        "/employer/company": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["employer"],
                "summary": "Get the caller's company",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Company"}},
                    "404": {"description": "Caller is not a member of any company", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/employer/jobs": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["employer"],
                "summary": "List the company's jobs",
                "parameters": [{"enum": ["applications"], "type": "string", "name": "include", "in": "query"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.Job"}}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["employer"],
                "summary": "Create a job posting",
                "parameters": [{"name": "job", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.CreateJobRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Job"}},
                    "400": {"description": "Missing title, description or location", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/employer/jobs/{id}": {
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["employer"],
                "summary": "Delete a job",
                "parameters": [{"type": "string", "format": "uuid", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "204": {"description": "Job deleted"},
                    "409": {"description": "Job has applications", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/employer/jobs/{id}/status": {
            "patch": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["employer"],
                "summary": "Open or close a job",
                "parameters": [
                    {"type": "string", "format": "uuid", "name": "id", "in": "path", "required": true},
                    {"name": "status", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.UpdateJobStatusRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Job"}}
                }
            }
        },
        "/employer/applications/{id}": {
            "patch": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["employer"],
                "summary": "Review an application",
                "parameters": [
                    {"type": "string", "format": "uuid", "name": "id", "in": "path", "required": true},
                    {"name": "status", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.UpdateApplicationStatusRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.JobApplication"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/jobs": {
            "get": {
                "produces": ["application/json"],
                "tags": ["jobs"],
                "summary": "Browse open jobs",
                "parameters": [
                    {"type": "integer", "default": 20, "name": "limit", "in": "query"},
                    {"type": "integer", "default": 0, "name": "offset", "in": "query"},
                    {"type": "string", "name": "location", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.Job"}}}
                }
            }
        },
        "/jobs/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["jobs"],
                "summary": "Get a job by ID",
                "parameters": [{"type": "string", "format": "uuid", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Job"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/jobs/apply": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["applications"],
                "summary": "Apply to a job",
                "parameters": [{"name": "application", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.ApplyToJobRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.JobApplication"}},
                    "400": {"description": "Missing fields or already applied", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "404": {"description": "Job or active CV not found", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/applications/my": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["applications"],
                "summary": "List my applications",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.JobApplication"}}}
                }
            }
        },
        "/applications/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["applications"],
                "summary": "Get an application",
                "parameters": [{"type": "string", "format": "uuid", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.JobApplication"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "dto.ErrorResponse": {
            "type": "object",
            "properties": {"error": {"type": "string"}, "code": {"type": "string"}}
        },
        "dto.UploadCVResponse": {
            "type": "object",
            "properties": {"message": {"type": "string"}, "cv": {"$ref": "#/definitions/models.CV"}}
        },
        "dto.CreateJobRequest": {
            "type": "object",
            "required": ["title", "description", "location"],
            "properties": {
                "title": {"type": "string"},
                "description": {"type": "string"},
                "location": {"type": "string"},
                "requirements": {"type": "string"},
                "salary": {"type": "string"}
            }
        },
        "dto.UpdateJobStatusRequest": {
            "type": "object",
            "required": ["status"],
            "properties": {"status": {"type": "string", "enum": ["OPEN", "CLOSED"]}}
        },
        "dto.ApplyToJobRequest": {
            "type": "object",
            "required": ["jobId", "cvId"],
            "properties": {"jobId": {"type": "string", "format": "uuid"}, "cvId": {"type": "string", "format": "uuid"}}
        },
        "dto.UpdateApplicationStatusRequest": {
            "type": "object",
            "required": ["status"],
            "properties": {"status": {"type": "string", "enum": ["PENDING", "REVIEWING", "ACCEPTED", "REJECTED"]}}
        },
        "models.Company": {
            "type": "object",
            "properties": {"id": {"type": "string"}, "name": {"type": "string"}, "createdAt": {"type": "string"}}
        },
        "models.Job": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "companyId": {"type": "string"},
                "title": {"type": "string"},
                "description": {"type": "string"},
                "requirements": {"type": "string"},
                "location": {"type": "string"},
                "salary": {"type": "string"},
                "status": {"type": "string", "enum": ["OPEN", "CLOSED"]},
                "createdAt": {"type": "string"},
                "updatedAt": {"type": "string"}
            }
        },
        "models.CV": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "userId": {"type": "string"},
                "fileName": {"type": "string"},
                "fileUrl": {"type": "string"},
                "status": {"type": "string", "enum": ["ACTIVE", "INACTIVE"]},
                "createdAt": {"type": "string"}
            }
        },
        "models.JobApplication": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "jobId": {"type": "string"},
                "userId": {"type": "string"},
                "cvId": {"type": "string"},
                "status": {"type": "string", "enum": ["PENDING", "REVIEWING", "ACCEPTED", "REJECTED"]},
                "createdAt": {"type": "string"},
                "updatedAt": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and JWT token.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{"http", "https"},
	Title:            "Job Board API",
	Description:      "Job postings, CV uploads and the application workflow between job seekers and employers.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
