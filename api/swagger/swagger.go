package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Curriculum Equivalence API",
        "description": "Compares student transcripts against a base curriculum and stores equivalence reports",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": ["http", "https"],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Analysis", "description": "PDF upload and equivalence analysis"},
        {"name": "Reports", "description": "Stored analysis reports"},
        {"name": "Authentication", "description": "Accounts and access tokens"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Liveness check",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check (database ping)",
                "responses": {
                    "200": {"description": "Ready"},
                    "503": {"description": "Database unavailable"}
                }
            }
        },
        "/metrics": {
            "get": {
                "summary": "Prometheus metrics",
                "produces": ["text/plain"],
                "responses": {"200": {"description": "Metrics in text exposition format"}}
            }
        },
        "/api/analyze": {
            "post": {
                "tags": ["Analysis"],
                "summary": "Run an equivalence analysis",
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "pdf_aluno", "in": "formData", "type": "file", "required": true, "description": "Student transcript"},
                    {"name": "pdf_opcionais", "in": "formData", "type": "file", "required": true, "description": "Base curriculum"},
                    {"name": "pdf_certificacoes", "in": "formData", "type": "file", "required": false, "description": "Certificates"},
                    {"name": "studentName", "in": "formData", "type": "string", "required": true},
                    {"name": "registration", "in": "formData", "type": "string", "required": true},
                    {"name": "currentCourse", "in": "formData", "type": "string", "required": true},
                    {"name": "targetCourse", "in": "formData", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "Analysis stored", "schema": {"$ref": "#/definitions/AnalysisResult"}},
                    "400": {"description": "Missing files or fields", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "413": {"description": "Upload too large", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "500": {"description": "Extraction, analyzer or storage failure", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/api/reports": {
            "get": {
                "tags": ["Reports"],
                "summary": "List reports, newest first",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ReportList"}}
                }
            }
        },
        "/api/reports/{id}": {
            "get": {
                "tags": ["Reports"],
                "summary": "Get a report with its parsed analysis",
                "produces": ["application/json"],
                "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ReportDetail"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            },
            "delete": {
                "tags": ["Reports"],
                "summary": "Delete a report",
                "produces": ["application/json"],
                "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
                "responses": {
                    "200": {"description": "Deleted", "schema": {"$ref": "#/definitions/DeleteReportResponse"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/api/reports/{id}/export": {
            "get": {
                "tags": ["Reports"],
                "summary": "Download a report as CSV or PDF",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"], "default": "csv"}
                ],
                "responses": {
                    "200": {"description": "File", "schema": {"type": "file"}},
                    "400": {"description": "Unknown format", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/api/auth/register": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Register user",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RegisterRequest"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/AuthResponse"}},
                    "400": {"description": "Invalid payload", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "409": {"description": "Email already registered", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/api/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate user",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/AuthResponse"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/api/auth/profile": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Current user",
                "produces": ["application/json"],
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ProfileResponse"}},
                    "401": {"description": "Missing or invalid token", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        }
    },
    "definitions": {
        "ErrorBody": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "code": {"type": "string"}
            }
        },
        "AnalysisResult": {
            "type": "object",
            "properties": {
                "analysis_result": {"type": "string"},
                "report_id": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "SubjectRecord": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "workload": {"type": "integer"},
                "equivalentTo": {"type": "string", "x-nullable": true},
                "status": {"type": "string", "enum": ["EQUIVALENT", "PENDING"]},
                "needsReview": {"type": "boolean"}
            }
        },
        "AnalysisSummary": {
            "type": "object",
            "properties": {
                "equivalentCount": {"type": "integer"},
                "pendingCount": {"type": "integer"},
                "workloadCount": {"type": "integer"},
                "reviewCount": {"type": "integer"},
                "equivalentSubjects": {"type": "array", "items": {"$ref": "#/definitions/SubjectRecord"}},
                "pendingSubjects": {"type": "array", "items": {"$ref": "#/definitions/SubjectRecord"}},
                "notes": {"type": "string"},
                "rawContent": {"type": "string"}
            }
        },
        "Generator": {
            "type": "object",
            "x-nullable": true,
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "email": {"type": "string"}
            }
        },
        "ReportListItem": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "studentName": {"type": "string"},
                "registration": {"type": "string"},
                "studentActualCourse": {"type": "string"},
                "studentTargetCourse": {"type": "string"},
                "createdAt": {"type": "string", "format": "date-time"},
                "updatedAt": {"type": "string", "format": "date-time"},
                "generator": {"$ref": "#/definitions/Generator"},
                "contentPreview": {"type": "string"}
            }
        },
        "ReportList": {
            "type": "object",
            "properties": {
                "reports": {"type": "array", "items": {"$ref": "#/definitions/ReportListItem"}},
                "total": {"type": "integer"}
            }
        },
        "ReportDetail": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "studentName": {"type": "string"},
                "registration": {"type": "string"},
                "studentActualCourse": {"type": "string"},
                "studentTargetCourse": {"type": "string"},
                "createdAt": {"type": "string", "format": "date-time"},
                "updatedAt": {"type": "string", "format": "date-time"},
                "generator": {"$ref": "#/definitions/Generator"},
                "analysis": {"$ref": "#/definitions/AnalysisSummary"}
            }
        },
        "DeleteReportResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "deletedId": {"type": "string"}
            }
        },
        "RegisterRequest": {
            "type": "object",
            "required": ["name", "email", "password"],
            "properties": {
                "name": {"type": "string"},
                "email": {"type": "string", "format": "email"},
                "password": {"type": "string", "minLength": 6}
            }
        },
        "LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string", "format": "email"},
                "password": {"type": "string"}
            }
        },
        "UserInfo": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "email": {"type": "string"}
            }
        },
        "AuthResponse": {
            "type": "object",
            "properties": {
                "token": {"type": "string"},
                "user": {"$ref": "#/definitions/UserInfo"}
            }
        },
        "ProfileResponse": {
            "type": "object",
            "properties": {
                "user": {"$ref": "#/definitions/UserInfo"}
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
