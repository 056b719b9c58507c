package app

import (
	"net/http"
)

// healthHandler handles health check requests
func (a *Application) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set(ContentTypeHeader, ContentTypeJSON)
	w.WriteHeader(http.StatusOK)

	response := map[string]any{
		"status": "healthy",
		"models": len(a.registry.ListModels()),
	}
	_ = wireJSON.NewEncoder(w).Encode(response)
}
