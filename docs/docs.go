// Package docs registers the OpenAPI description of the admin API with swag.
// Regenerate with: swag init -g cmd/main.go
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
    "paths": {
        "/api/v1/admin/pages/{pageID}/sections": {
            "get": {"tags": ["page-sections"], "summary": "List page sections", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}},
            "post": {"tags": ["page-sections"], "summary": "Create page section", "consumes": ["multipart/form-data"], "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Created"}, "422": {"description": "Unprocessable Entity"}}}
        },
        "/api/v1/admin/pages/{pageID}/sections/{id}": {
            "get": {"tags": ["page-sections"], "summary": "Get page section", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}},
            "put": {"tags": ["page-sections"], "summary": "Update page section", "consumes": ["multipart/form-data"], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}, "422": {"description": "Unprocessable Entity"}}},
            "delete": {"tags": ["page-sections"], "summary": "Delete page section", "security": [{"BearerAuth": []}], "responses": {"204": {"description": "No Content"}}}
        },
        "/api/v1/admin/pages/{pageID}/sections/{id}/media": {
            "delete": {"tags": ["page-sections"], "summary": "Remove section media", "security": [{"BearerAuth": []}], "responses": {"204": {"description": "No Content"}}}
        },
        "/api/v1/admin/pages/{pageID}/sections/order": {
            "post": {"tags": ["page-sections"], "summary": "Reorder page sections", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}
        },
        "/api/v1/admin/banners/order": {
            "post": {"tags": ["order"], "summary": "Reorder banners", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}
        },
        "/api/v1/admin/pages/order/{type}": {
            "post": {"tags": ["order"], "summary": "Reorder pages", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}
        },
        "/api/v1/admin/navigations/order": {
            "post": {"tags": ["order"], "summary": "Reorder navigation items", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}
        },
        "/api/v1/admin/photos/order": {
            "post": {"tags": ["order"], "summary": "Reorder photos of a gallery", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}
        },
        "/api/v1/admin/videos/order": {
            "post": {"tags": ["order"], "summary": "Reorder videos of a gallery", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}
        },
        "/api/v1/admin/photos": {
            "get": {"tags": ["photos"], "summary": "List gallery photos", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}
        },
        "/api/v1/admin/photos/upload": {
            "post": {"tags": ["photos"], "summary": "Upload gallery photos", "consumes": ["multipart/form-data"], "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Created"}, "422": {"description": "Unprocessable Entity"}}}
        },
        "/api/v1/admin/photos/{id}/name": {
            "patch": {"tags": ["photos"], "summary": "Rename photo", "security": [{"BearerAuth": []}], "responses": {"204": {"description": "No Content"}}}
        },
        "/api/v1/admin/photos/{id}/cover": {
            "post": {"tags": ["photos"], "summary": "Make photo the gallery cover", "security": [{"BearerAuth": []}], "responses": {"204": {"description": "No Content"}}}
        },
        "/api/v1/admin/photos/{id}": {
            "delete": {"tags": ["photos"], "summary": "Delete photo", "security": [{"BearerAuth": []}], "responses": {"204": {"description": "No Content"}}}
        },
        "/uploads/{directory}/{filename}": {
            "get": {"tags": ["uploads"], "summary": "Download stored image", "responses": {"200": {"description": "File content"}, "206": {"description": "Partial file content"}, "404": {"description": "Not Found"}}}
        },
        "/health": {
            "get": {"tags": ["health"], "summary": "Health check", "responses": {"200": {"description": "OK"}, "503": {"description": "Service Unavailable"}}}
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Admin access token: Bearer {token}",
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
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Sitepanel Admin API",
	Description:      "Admin API for page sections, galleries and ordered collections",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
