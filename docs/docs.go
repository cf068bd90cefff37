// Package docs provides the swagger spec served at /openapi.json and /swagger.
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
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header",
            "description": "Auth0 JWT, prefixed with \"Bearer \""
        }
    },
    "paths": {
        "/periods": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["periods"],
                "summary": "List accounting periods",
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["periods"],
                "summary": "Open an accounting period",
                "responses": {
                    "201": {"description": "Created"},
                    "409": {"description": "Period already exists"}
                }
            }
        },
        "/periods/{id}/close": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["periods"],
                "summary": "Close an accounting period",
                "responses": {
                    "200": {"description": "OK"},
                    "409": {"description": "Cannot close the only open period"}
                }
            }
        },
        "/periods/{id}/reopen": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["periods"],
                "summary": "Reopen a closed accounting period",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/budgets": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["budgets"],
                "summary": "Create an original budget",
                "responses": {
                    "201": {"description": "Created"},
                    "409": {"description": "Accounting period is closed"}
                }
            }
        },
        "/budgets/{id}/finalize": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["budgets"],
                "summary": "Finalize an original budget",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/budgets/{id}/lines": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["budgets"],
                "summary": "List budget lines",
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["budgets"],
                "summary": "Add a budget line",
                "responses": {
                    "201": {"description": "Created"},
                    "423": {"description": "Budget is locked"}
                }
            }
        },
        "/budgets/{id}/amounts": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["reports"],
                "summary": "Budget amounts (original, revised, change)",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/change-orders": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["change-orders"],
                "summary": "Create an internal change order with its revised budget",
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/eco-lines": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["change-orders"],
                "summary": "Record an external change order line",
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/projects/{id}/budget-report": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["reports"],
                "summary": "Project current budget amount",
                "responses": {"200": {"description": "OK"}}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "CrewCost API",
	Description:      "Construction project budgeting and accounting period back office",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
