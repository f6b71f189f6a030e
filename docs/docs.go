// Package docs holds the swagger spec for the HTTP API. It is written
// by hand in the shape swaggo/swag generates; keep it in step with the
// @-annotations in handlers and main.
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
        "/health": {
            "get": {
                "tags": ["System"],
                "summary": "Health Check",
                "responses": {
                    "200": { "description": "Service is healthy" }
                }
            }
        },
        "/capacity": {
            "post": {
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["Steganography"],
                "summary": "Calculate Embedding Capacity",
                "parameters": [
                    { "type": "file", "name": "cover", "in": "formData", "required": true },
                    { "type": "string", "name": "container_kind", "in": "formData" }
                ],
                "responses": {
                    "200": { "description": "OK" },
                    "400": { "description": "Bad Request" }
                }
            }
        },
        "/embed": {
            "post": {
                "consumes": ["multipart/form-data"],
                "produces": ["application/octet-stream"],
                "tags": ["Steganography"],
                "summary": "Embed secret file into a cover file",
                "parameters": [
                    { "type": "file", "name": "cover", "in": "formData", "required": true },
                    { "type": "file", "name": "secret", "in": "formData", "required": true },
                    { "type": "string", "name": "container_kind", "in": "formData" },
                    { "type": "boolean", "name": "encrypt", "in": "formData" },
                    { "type": "file", "name": "key", "in": "formData" }
                ],
                "responses": {
                    "200": { "description": "OK" },
                    "400": { "description": "Bad Request" }
                }
            }
        },
        "/extract": {
            "post": {
                "consumes": ["multipart/form-data"],
                "produces": ["application/octet-stream"],
                "tags": ["Steganography"],
                "summary": "Extract secret file from a carrier file",
                "parameters": [
                    { "type": "file", "name": "carrier", "in": "formData", "required": true },
                    { "type": "string", "name": "container_kind", "in": "formData" },
                    { "type": "file", "name": "key", "in": "formData" }
                ],
                "responses": {
                    "200": { "description": "OK" },
                    "400": { "description": "Bad Request" }
                }
            }
        },
        "/analyze": {
            "post": {
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["Steganography"],
                "summary": "Analyze a carrier's header",
                "parameters": [
                    { "type": "file", "name": "carrier", "in": "formData", "required": true },
                    { "type": "string", "name": "container_kind", "in": "formData" }
                ],
                "responses": {
                    "200": { "description": "OK" }
                }
            }
        },
        "/plugins": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Plugins"],
                "summary": "List carrier plugins",
                "responses": {
                    "200": { "description": "OK" }
                }
            }
        },
        "/plugins/{name}": {
            "post": {
                "produces": ["application/json"],
                "tags": ["Plugins"],
                "summary": "Toggle a carrier plugin",
                "parameters": [
                    { "type": "string", "name": "name", "in": "path", "required": true },
                    { "type": "boolean", "name": "enabled", "in": "formData", "required": true }
                ],
                "responses": {
                    "204": { "description": "No Content" }
                }
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Steganographic Codec API",
	Description:      "Hides and recovers an arbitrary payload inside PNG/WAV carriers via a framed, encrypted, compressed low-bit codec.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
