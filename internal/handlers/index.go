package handlers

import "net/http"

// Index handles GET /, describing the API surface.
func Index(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"name":    "assistant-backend",
		"version": "1.0",
		"endpoints": []string{
			"POST /api/parse",
			"GET|POST /api/{collection}",
			"GET|DELETE /api/{collection}/{id}",
			"GET /healthz",
		},
	})
}
