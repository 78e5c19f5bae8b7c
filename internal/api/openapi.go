package api

// buildOpenAPIDoc returns an OpenAPI 3.1 document describing the public and
// admin routes.
func buildOpenAPIDoc() map[string]any {
	formatParam := map[string]any{
		"name":     "format",
		"in":       "query",
		"required": false,
		"schema":   map[string]any{"type": "string", "enum": []string{"html", "pdf"}, "default": "html"},
	}
	page := func(id, summary string) map[string]any {
		return map[string]any{"get": map[string]any{
			"operationId": id,
			"summary":     summary,
			"parameters":  []any{formatParam},
			"responses": map[string]any{
				"200": map[string]any{"description": "Rendered page", "content": map[string]any{
					"text/html":       map[string]any{},
					"application/pdf": map[string]any{},
				}},
				"400": map[string]any{"description": "Unknown format"},
				"500": map[string]any{"description": "Render failure"},
			},
		}}
	}
	text := func(desc string) map[string]any {
		return map[string]any{
			"description": desc,
			"content":     map[string]any{"text/plain": map[string]any{"schema": map[string]any{"type": "string"}}},
		}
	}
	bearer := []any{map[string]any{"BearerAuth": []string{}}}

	article := page("getArticle", "Article")
	article["get"].(map[string]any)["responses"].(map[string]any)["304"] = map[string]any{"description": "Not modified"}

	return map[string]any{
		"openapi": "3.1.0",
		"info": map[string]any{
			"title":   "folio",
			"version": "1.0",
		},
		"paths": map[string]any{
			"/":  page("getSite", "Landing page"),
			"/w": article,
			"/healthz": map[string]any{"get": map[string]any{
				"operationId": "healthz",
				"responses":   map[string]any{"200": map[string]any{"description": "Service health"}},
			}},
			"/api/hooks": map[string]any{
				"get": map[string]any{
					"operationId": "hooksLiveness",
					"responses":   map[string]any{"200": text("Hello there!")},
				},
				"post": map[string]any{
					"operationId": "hooksReceive",
					"parameters": []any{
						map[string]any{"name": "x-signature-256", "in": "header", "schema": map[string]any{"type": "string"}},
						map[string]any{"name": "x-hub-signature-256", "in": "header", "schema": map[string]any{"type": "string"}},
					},
					"responses": map[string]any{
						"200": text("Authorised!"),
						"401": text("Unauthorised"),
					},
				},
			},
			"/api/services/{id}": map[string]any{"get": map[string]any{
				"operationId": "serviceStatus",
				"parameters": []any{
					map[string]any{"name": "id", "in": "path", "required": true, "schema": map[string]any{"type": "string"}},
				},
				"responses": map[string]any{
					"200": text("OK"),
					"503": text("Unavailable"),
				},
			}},
			"/admin/events": map[string]any{"get": map[string]any{
				"operationId": "adminEvents",
				"security":    bearer,
				"responses": map[string]any{
					"200": map[string]any{"description": "Event stream", "content": map[string]any{"text/event-stream": map[string]any{}}},
					"401": map[string]any{"description": "Missing or invalid token"},
				},
			}},
			"/admin/deliveries": map[string]any{"get": map[string]any{
				"operationId": "adminDeliveries",
				"security":    bearer,
				"parameters": []any{
					map[string]any{"name": "limit", "in": "query", "schema": map[string]any{"type": "integer", "minimum": 1, "maximum": maxDeliveriesLimit}},
				},
				"responses": map[string]any{
					"200": map[string]any{"description": "Recent deliveries"},
					"401": map[string]any{"description": "Missing or invalid token"},
				},
			}},
		},
		"components": map[string]any{
			"securitySchemes": map[string]any{
				"BearerAuth": map[string]any{
					"type":   "http",
					"scheme": "bearer",
				},
			},
		},
	}
}
