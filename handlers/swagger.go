package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints for the collections API.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(rg gin.IRouter) {
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
    <title>collections - Swagger</title>
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

// OpenAPI document for the JSON API and ops endpoints.
const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "collections", "version": "v0.1.0" },
  "components": {
    "schemas": {
      "Collection": {"type":"object","properties":{"id":{"type":"integer","format":"int64"},"userId":{"type":"integer","format":"int64","nullable":true},"title":{"type":"string"},"tag":{"type":"string"},"description":{"type":"string"},"createdAt":{"type":"string","format":"date-time"},"updatedAt":{"type":"string","format":"date-time"},"itemCount":{"type":"integer"},"version":{"type":"integer"}}},
      "Draft": {"type":"object","properties":{"title":{"type":"string"},"tag":{"type":"string"},"description":{"type":"string"},"version":{"type":"integer","description":"expected version; omit to skip the conflict check"}}},
      "Error": {"type":"object","properties":{"error":{"type":"string"},"field":{"type":"string"}}}
    }
  },
  "paths": {
    "/api/session": {
      "get": { "summary": "Current session", "responses": { "200": { "description": "{loggedIn, user}" } } }
    },
    "/api/collections": {
      "get": {
        "summary": "Filtered and sorted dashboard cards",
        "parameters": [
          {"name":"tab","in":"query","schema":{"type":"string","enum":["all","mine"]}},
          {"name":"q","in":"query","schema":{"type":"string"}},
          {"name":"sort","in":"query","schema":{"type":"string","enum":["recent","oldest","az"]}}
        ],
        "responses": { "200": { "description": "page model with cards and empty flag" } }
      },
      "post": {
        "summary": "Create a collection owned by the session user",
        "requestBody": { "content": { "application/json": { "schema": {"$ref":"#/components/schemas/Draft"} } } },
        "responses": { "201": { "description": "created" }, "401": { "description": "sign in required" }, "422": { "description": "title is required" } }
      }
    },
    "/api/collections/{id}": {
      "get": { "summary": "One collection", "responses": { "200": { "description": "collection" }, "404": { "description": "not found" } } },
      "put": {
        "summary": "Merge the supplied fields into a collection",
        "requestBody": { "content": { "application/json": { "schema": {"$ref":"#/components/schemas/Draft"} } } },
        "responses": { "200": { "description": "updated" }, "403": { "description": "not the owner" }, "404": { "description": "not found" }, "409": { "description": "version conflict" }, "422": { "description": "title is required" } }
      },
      "delete": { "summary": "Delete a collection", "responses": { "204": { "description": "deleted" }, "403": { "description": "not the owner" }, "404": { "description": "not found" } } }
    },
    "/health": { "get": { "summary": "Liveness", "responses": { "200": { "description": "ok" } } } },
    "/ready": { "get": { "summary": "Storage engine reachable", "responses": { "200": { "description": "ready" }, "503": { "description": "engine unreachable" } } } },
    "/metrics": { "get": { "summary": "Prometheus metrics", "responses": { "200": { "description": "metrics" } } } }
  }
}`
