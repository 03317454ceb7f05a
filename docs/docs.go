// Package docs registers the OpenAPI document served at /swagger/.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/events": {
            "get": {
                "produces": ["application/json"],
                "tags": ["events"],
                "summary": "List published events",
                "parameters": [
                    {"type": "string", "enum": ["olymp", "contest", "conference"], "name": "type", "in": "query"},
                    {"type": "boolean", "name": "featured", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}
            }
        },
        "/events/{slug}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["events"],
                "summary": "Get a published event by slug",
                "parameters": [{"type": "string", "name": "slug", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            }
        },
        "/events/{slug}/registrations": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["registrations"],
                "summary": "Register for an event",
                "parameters": [{"type": "string", "name": "slug", "in": "path", "required": true}],
                "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}, "404": {"description": "Not Found"}}
            }
        },
        "/pay/start/{registrationID}": {
            "post": {
                "produces": ["application/json"],
                "tags": ["payments"],
                "summary": "Create a gateway payment for a registration",
                "parameters": [{"type": "string", "name": "registrationID", "in": "path", "required": true}],
                "responses": {"201": {"description": "Created"}, "403": {"description": "Forbidden"}, "404": {"description": "Not Found"}, "502": {"description": "Bad Gateway"}}
            }
        },
        "/pay/return": {
            "get": {
                "produces": ["application/json"],
                "tags": ["payments"],
                "summary": "Reconcile a payment after the browser returns from checkout",
                "parameters": [
                    {"type": "string", "name": "registration", "in": "query", "required": true},
                    {"type": "integer", "name": "retry", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            }
        },
        "/pay/webhook": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["payments"],
                "summary": "Receive a gateway payment notification",
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}
            }
        },
        "/test/{registrationID}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["test"],
                "summary": "Get the olympiad test for a paid registration",
                "parameters": [{"type": "string", "name": "registrationID", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}, "404": {"description": "Not Found"}}
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["test"],
                "summary": "Submit olympiad test answers",
                "parameters": [{"type": "string", "name": "registrationID", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "201": {"description": "Created"}, "403": {"description": "Forbidden"}, "404": {"description": "Not Found"}}
            }
        },
        "/admin/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "Obtain an admin token",
                "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}
            }
        },
        "/admin/export/csv": {
            "get": {
                "produces": ["text/csv"],
                "tags": ["admin"],
                "summary": "Export registrations as CSV",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Event Registry API",
	Description:      "Event registrations with gateway payments, olympiad tests, and admin export.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
