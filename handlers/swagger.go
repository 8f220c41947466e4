package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints for the backend.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(rg *gin.Engine) {
	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(swaggerHTML))
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json", []byte(swaggerJSON))
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>scavhunt-backend - Swagger</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@4/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/swagger/doc.json',
        dom_id: '#swagger-ui',
      })
    </script>
  </body>
</html>`

const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "scavhunt-backend", "version": "v0.1.0" },
  "components": {
    "securitySchemes": { "bearer": { "type": "http", "scheme": "bearer", "bearerFormat": "JWT" } },
    "schemas": {
      "UserProfile": {
        "type": "object",
        "required": ["userId", "displayName", "createdAt", "updatedAt"],
        "properties": {
          "userId": { "type": "string" },
          "displayName": { "type": "string" },
          "email": { "type": "string" },
          "avatarUrl": { "type": "string" },
          "createdAt": { "type": "string", "format": "date-time" },
          "updatedAt": { "type": "string", "format": "date-time" }
        }
      },
      "Message": { "type": "object", "properties": { "message": { "type": "string" } } }
    }
  },
  "paths": {
    "/health": { "get": { "summary": "Liveness", "responses": { "200": { "description": "OK" } } } },
    "/ready": { "get": { "summary": "Readiness", "responses": { "200": { "description": "Ready" }, "503": { "description": "Not ready" } } } },
    "/api/v1/me": {
      "get": {
        "summary": "Current user's profile, created or refreshed from token claims",
        "security": [{ "bearer": [] }],
        "responses": {
          "200": { "description": "Profile", "content": { "application/json": { "schema": { "$ref": "#/components/schemas/UserProfile" } } } },
          "401": { "description": "Unauthorized", "content": { "application/json": { "schema": { "$ref": "#/components/schemas/Message" } } } }
        }
      }
    },
    "/api/v1/me/avatar": {
      "put": {
        "summary": "Upload avatar image (jpeg, png or webp)",
        "security": [{ "bearer": [] }],
        "requestBody": { "content": { "image/png": {}, "image/jpeg": {}, "image/webp": {} } },
        "responses": {
          "200": { "description": "Updated profile", "content": { "application/json": { "schema": { "$ref": "#/components/schemas/UserProfile" } } } },
          "401": { "description": "Unauthorized" },
          "413": { "description": "Too large" },
          "415": { "description": "Unsupported type" }
        }
      }
    },
    "/api/v1/logout": {
      "post": {
        "summary": "Revoke the presented access token",
        "security": [{ "bearer": [] }],
        "responses": { "204": { "description": "Revoked" }, "401": { "description": "Unauthorized" } }
      }
    }
  }
}`
