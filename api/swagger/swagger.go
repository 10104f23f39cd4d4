package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "RemUI Admin Listings API",
        "description": "Searchable, paginated admin listings with type-ahead suggestions",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Listings", "description": "Admin listing pages and their AJAX actions"},
        {"name": "Observability", "description": "Health, readiness and metrics"}
    ],
    "paths": {
        "/health": {
            "get": {
                "tags": ["Observability"],
                "summary": "Health check with a metrics snapshot",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "tags": ["Observability"],
                "summary": "Readiness of the record store and cache",
                "responses": {
                    "200": {"description": "Ready"},
                    "503": {"description": "A dependency failed its check"}
                }
            }
        },
        "/metrics": {
            "get": {
                "tags": ["Observability"],
                "summary": "Prometheus metrics",
                "produces": ["text/plain"],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/admin/pages": {
            "get": {
                "tags": ["Listings"],
                "summary": "List configured listing pages",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/{page}": {
            "get": {
                "tags": ["Listings"],
                "summary": "Listing page and its AJAX actions",
                "description": "Without action renders the HTML listing. action=search_suggestions returns type-ahead rows, action=list or get_<items> returns one page as JSON, action=export downloads CSV or PDF. AJAX actions always answer 200 and report failures in the error field.",
                "produces": ["text/html", "application/json", "text/csv", "application/pdf"],
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "page", "in": "path", "required": true, "type": "string", "description": "Page slug, optionally with .php"},
                    {"name": "action", "in": "query", "type": "string"},
                    {"name": "q", "in": "query", "type": "string", "description": "Suggestion text"},
                    {"name": "limit", "in": "query", "type": "integer", "description": "Suggestion limit"},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "sort", "in": "query", "type": "string"},
                    {"name": "order", "in": "query", "type": "string", "enum": ["ASC", "DESC"]},
                    {"name": "page", "in": "query", "type": "integer", "description": "0-based page"},
                    {"name": "perpage", "in": "query", "type": "integer"},
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ListPayload"}},
                    "404": {"description": "Unknown page", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "SuggestionPayload": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "suggestions": {"type": "array", "items": {"type": "object"}},
                "error": {"type": "string"}
            }
        },
        "ListPayload": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "items": {"type": "array", "items": {"type": "object"}},
                "total_count": {"type": "integer"},
                "current_page": {"type": "integer"},
                "per_page": {"type": "integer"},
                "total_pages": {"type": "integer"},
                "search": {"type": "string"},
                "filters": {"type": "object"},
                "sort": {"type": "string"},
                "order": {"type": "string"},
                "statistics": {"type": "object"},
                "error": {"type": "string"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "current_page": {"type": "integer"},
                "per_page": {"type": "integer"},
                "total_count": {"type": "integer"},
                "total_pages": {"type": "integer"},
                "has_prev": {"type": "boolean"},
                "has_next": {"type": "boolean"}
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
