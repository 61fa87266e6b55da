// Package docs registers the API description served at /swagger/doc.json.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "{{.Title}}",
        "description": "{{escape .Description}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "schemes": {{ marshal .Schemes }},
    "paths": {
        "/health": {
            "get": {
                "summary": "Model load status",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "loading or ok"},
                    "503": {"description": "model failed to load"}
                }
            }
        },
        "/predict": {
            "post": {
                "summary": "Score one accident description",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/PredictRequest"}}
                ],
                "responses": {
                    "200": {"description": "prediction", "schema": {"$ref": "#/definitions/PredictionResult"}},
                    "422": {"description": "missing or invalid fields", "schema": {"$ref": "#/definitions/ValidationError"}},
                    "503": {"description": "model not ready"},
                    "504": {"description": "prediction timed out"}
                }
            }
        },
        "/v1/schema": {
            "get": {"summary": "Form pages and fields", "responses": {"200": {"description": "schema"}}}
        },
        "/v1/catalog/{field}": {
            "get": {
                "summary": "Reference options of a field",
                "parameters": [{"in": "path", "name": "field", "type": "string", "required": true}],
                "responses": {"200": {"description": "options"}, "404": {"description": "unknown field"}}
            }
        },
        "/v1/stats": {
            "get": {"summary": "Prediction outcome counters", "responses": {"200": {"description": "counters"}}}
        },
        "/v1/sessions": {
            "post": {"summary": "Start a form session", "responses": {"201": {"description": "session id, token and view"}}}
        },
        "/v1/session": {
            "get": {"summary": "Current form state", "security": [{"Bearer": []}], "responses": {"200": {"description": "view"}}},
            "delete": {"summary": "End the session", "security": [{"Bearer": []}], "responses": {"204": {"description": "ended"}}}
        },
        "/v1/session/fields/{field}": {
            "put": {
                "summary": "Set a field by value or by option selection",
                "security": [{"Bearer": []}],
                "parameters": [
                    {"in": "path", "name": "field", "type": "string", "required": true},
                    {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/SetFieldRequest"}}
                ],
                "responses": {"200": {"description": "view"}, "404": {"description": "unknown field"}}
            }
        },
        "/v1/session/next": {"post": {"summary": "Next page", "security": [{"Bearer": []}], "responses": {"200": {"description": "view"}}}},
        "/v1/session/previous": {"post": {"summary": "Previous page", "security": [{"Bearer": []}], "responses": {"200": {"description": "view"}}}},
        "/v1/session/reset": {"post": {"summary": "Clear all inputs", "security": [{"Bearer": []}], "responses": {"200": {"description": "view"}}}},
        "/v1/session/page/{page}": {
            "post": {
                "summary": "Jump to a page",
                "security": [{"Bearer": []}],
                "parameters": [{"in": "path", "name": "page", "type": "integer", "required": true}],
                "responses": {"200": {"description": "view"}}
            }
        },
        "/v1/session/recap": {
            "get": {
                "summary": "Recap of the entered values",
                "security": [{"Bearer": []}],
                "parameters": [{"in": "query", "name": "format", "type": "string", "enum": ["json", "html"]}],
                "responses": {"200": {"description": "recap"}}
            }
        },
        "/v1/session/submit": {
            "post": {
                "summary": "Score the completed form",
                "security": [{"Bearer": []}],
                "responses": {
                    "200": {"description": "session result"},
                    "409": {"description": "form incomplete"},
                    "422": {"description": "invalid fields", "schema": {"$ref": "#/definitions/ValidationError"}}
                }
            }
        },
        "/v1/session/history": {"get": {"summary": "Recent predictions of the session", "security": [{"Bearer": []}], "responses": {"200": {"description": "records"}}}},
        "/v1/session/token": {"post": {"summary": "Renew the session token", "security": [{"Bearer": []}], "responses": {"200": {"description": "token"}}}}
    },
    "securityDefinitions": {
        "Bearer": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "definitions": {
        "PredictRequest": {
            "type": "object",
            "properties": {"data": {"type": "object", "additionalProperties": true}}
        },
        "PredictionResult": {
            "type": "object",
            "properties": {
                "probability": {"type": "number"},
                "pred_class": {"type": "integer"},
                "label": {"type": "string", "enum": ["grave", "non_grave"]},
                "threshold": {"type": "number"}
            }
        },
        "SetFieldRequest": {
            "type": "object",
            "properties": {"value": {}, "selection": {"type": "string"}}
        },
        "ValidationError": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "missing_fields": {"type": "array", "items": {"type": "string"}},
                "field": {"type": "string"},
                "value": {},
                "hint": {"type": "string"},
                "detail": {"type": "array", "items": {"type": "object"}}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Accident Severity API",
	Description:      "Guided accident form and severity prediction",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}

// Read returns the rendered API description
func Read() (string, error) {
	return swag.ReadDoc(SwaggerInfo.InstanceName())
}
