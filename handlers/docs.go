package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterAPIDoc registers minimal Swagger/OpenAPI endpoints for the CMS service.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterAPIDoc(rg *gin.Engine) {
	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, apiDocHTML)
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Header("Content-Type", "application/json")
		c.String(http.StatusOK, apiDocJSON)
	})
}

const apiDocHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>vedicroots-cms Swagger</title>
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

// Minimal OpenAPI document describing the content and auth endpoints.
const apiDocJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "vedicroots-cms", "version": "v0.1.0" },
  "paths": {
    "/api/cms/content/{domain}": {
      "get": { "summary": "Fetch a full content document", "responses": { "200": { "description": "document" }, "404": { "description": "unknown domain" } } },
      "put": { "summary": "Replace all sections of a document (auth required)", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"sections":{"type":"object"},"version":{"type":"integer"}}}}}}, "responses": { "200": { "description": "updated document" }, "400": { "description": "invalid section name" }, "409": { "description": "version conflict" } } }
    },
    "/api/cms/content/{domain}/section": {
      "put": { "summary": "Update one named section (auth required)", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"section":{"type":"string"},"data":{},"version":{"type":"integer"}}}}}}, "responses": { "200": { "description": "updated document" }, "400": { "description": "invalid section name" } } }
    },
    "/api/cms/content/{domain}/reset": {
      "post": { "summary": "Reset a document to its bundled defaults (auth required)", "responses": { "200": { "description": "default document" } } }
    },
    "/api/cms/auth/login": {
      "post": { "summary": "Authenticate and receive an access token", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"email":{"type":"string"},"password":{"type":"string"}}}}}}, "responses": { "200": { "description": "access token and user" }, "401": { "description": "invalid credentials" }, "403": { "description": "account inactive" } } }
    },
    "/api/cms/auth/refresh": {
      "post": { "summary": "Rotate the refresh token and mint a new access token", "responses": { "200": { "description": "new access token" }, "401": { "description": "invalid refresh token" } } }
    },
    "/api/cms/auth/logout": {
      "post": { "summary": "Invalidate the session and clear cookies", "responses": { "200": { "description": "logged out" } } }
    },
    "/api/auth/change-password": {
      "post": { "summary": "Change the current user's password (auth required)", "responses": { "200": { "description": "password updated" }, "400": { "description": "update rejected" } } }
    },
    "/api/auth/me": {
      "get": { "summary": "Current user profile with enrollments (auth required)", "responses": { "200": { "description": "user" }, "401": { "description": "missing or invalid token" } } }
    }
  }
}`
