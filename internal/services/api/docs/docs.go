// Package docs registers the OpenAPI document served by swaggerkit
// keep it in step with the swagger annotations on the handlers
package docs

import "github.com/swaggo/swag/v2"

const docTemplate = `{
  "openapi": "3.0.3",
  "info": {
    "title": "{{.Title}}",
    "description": "{{.Description}}",
    "version": "{{.Version}}"
  },
  "paths": {
    "/diff/{id}/left": {
      "put": {
        "tags": ["diff"],
        "summary": "Upload the left side",
        "security": [{"BearerAuth": []}],
        "parameters": [{"$ref": "#/components/parameters/ComparisonID"}],
        "requestBody": {"$ref": "#/components/requestBodies/Side"},
        "responses": {
          "200": {"$ref": "#/components/responses/Upsert"},
          "201": {"$ref": "#/components/responses/Upsert"},
          "401": {"$ref": "#/components/responses/Error"}
        }
      }
    },
    "/diff/{id}/right": {
      "put": {
        "tags": ["diff"],
        "summary": "Upload the right side",
        "security": [{"BearerAuth": []}],
        "parameters": [{"$ref": "#/components/parameters/ComparisonID"}],
        "requestBody": {"$ref": "#/components/requestBodies/Side"},
        "responses": {
          "200": {"$ref": "#/components/responses/Upsert"},
          "201": {"$ref": "#/components/responses/Upsert"},
          "401": {"$ref": "#/components/responses/Error"}
        }
      }
    },
    "/diff/{id}": {
      "get": {
        "tags": ["diff"],
        "summary": "Compare both sides",
        "security": [{"BearerAuth": []}],
        "parameters": [{"$ref": "#/components/parameters/ComparisonID"}],
        "responses": {
          "200": {
            "description": "ok",
            "content": {"application/json": {"schema": {"$ref": "#/components/schemas/ResultEnvelope"}}}
          },
          "404": {"$ref": "#/components/responses/Error"}
        }
      },
      "delete": {
        "tags": ["diff"],
        "summary": "Delete a comparison",
        "security": [{"BearerAuth": []}],
        "parameters": [{"$ref": "#/components/parameters/ComparisonID"}],
        "responses": {
          "204": {"description": "deleted"},
          "404": {"$ref": "#/components/responses/Error"}
        }
      }
    },
    "/diff/{id}/status": {
      "get": {
        "tags": ["diff"],
        "summary": "Comparison status",
        "security": [{"BearerAuth": []}],
        "parameters": [{"$ref": "#/components/parameters/ComparisonID"}],
        "responses": {
          "200": {
            "description": "ok",
            "content": {"application/json": {"schema": {"$ref": "#/components/schemas/StatusEnvelope"}}}
          },
          "404": {"$ref": "#/components/responses/Error"}
        }
      }
    },
    "/meta/health": {"get": {"tags": ["Meta"], "summary": "Health check", "responses": {"200": {"description": "ok"}}}},
    "/meta/ready": {"get": {"tags": ["Meta"], "summary": "Readiness with dependency checks", "responses": {"200": {"description": "ok"}, "503": {"description": "a dependency failed"}}}},
    "/meta/version": {"get": {"tags": ["Meta"], "summary": "Build and version info", "responses": {"200": {"description": "ok"}}}},
    "/meta/service": {"get": {"tags": ["Meta"], "summary": "Service info and uptime", "responses": {"200": {"description": "ok"}}}}
  },
  "components": {
    "securitySchemes": {
      "BearerAuth": {"type": "http", "scheme": "bearer", "bearerFormat": "JWT"}
    },
    "parameters": {
      "ComparisonID": {
        "name": "id", "in": "path", "required": true,
        "schema": {"type": "string", "maxLength": 128, "pattern": "^[A-Za-z0-9._~-]+$"}
      }
    },
    "requestBodies": {
      "Side": {
        "required": true,
        "content": {
          "text/plain": {"schema": {"type": "string", "format": "byte"}, "example": "AQIDBA=="},
          "application/json": {"schema": {"$ref": "#/components/schemas/SideInput"}}
        }
      }
    },
    "responses": {
      "Upsert": {
        "description": "side stored",
        "content": {"application/json": {"schema": {"$ref": "#/components/schemas/UpsertEnvelope"}}}
      },
      "Error": {
        "description": "error",
        "content": {"application/json": {"schema": {"$ref": "#/components/schemas/ErrorResponse"}}}
      }
    },
    "schemas": {
      "SideInput": {
        "type": "object",
        "properties": {"data": {"type": "string", "format": "byte", "example": "AQIDBA=="}}
      },
      "Span": {
        "type": "object",
        "properties": {"offset": {"type": "integer", "example": 0}, "length": {"type": "integer", "example": 1}}
      },
      "Result": {
        "type": "object",
        "properties": {
          "status": {"type": "string", "enum": ["EQUAL", "EQUAL_LENGTH", "DIFFERENT_LENGTH"]},
          "differences": {"type": "array", "items": {"$ref": "#/components/schemas/Span"}}
        }
      },
      "UpsertResponse": {
        "type": "object",
        "properties": {
          "userId": {"type": "string", "example": "alice"},
          "cmpId": {"type": "string", "example": "42"},
          "side": {"type": "string", "enum": ["left", "right"]}
        }
      },
      "StatusView": {
        "type": "object",
        "properties": {
          "userId": {"type": "string"},
          "cmpId": {"type": "string"},
          "version": {"type": "integer", "format": "int64"},
          "lhsReady": {"type": "boolean"},
          "rhsReady": {"type": "boolean"},
          "result": {"$ref": "#/components/schemas/Result"}
        }
      },
      "ResultEnvelope": {"$ref": "#/components/schemas/Envelope", "x-data": "Result"},
      "StatusEnvelope": {"$ref": "#/components/schemas/Envelope", "x-data": "StatusView"},
      "UpsertEnvelope": {"$ref": "#/components/schemas/Envelope", "x-data": "UpsertResponse"},
      "Envelope": {
        "type": "object",
        "properties": {
          "status_code": {"type": "integer"},
          "status": {"type": "string"},
          "request_id": {"type": "string"},
          "data": {"type": "object"}
        }
      }
    }
  }
}`

// SwaggerInfo holds the exported document metadata
var SwaggerInfo = &swag.Spec{
	Version:          "0.1.0",
	Title:            "wta API",
	Description:      "Versioned base64 comparisons",
	BasePath:         "/api/v1",
	InfoInstanceName: "api",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
