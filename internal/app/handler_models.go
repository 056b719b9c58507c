package app

import (
	"net/http"
)

// modelsHandler lists registered models in the OpenAI list shape.
func (a *Application) modelsHandler(w http.ResponseWriter, r *http.Request) {
	ids := a.registry.ListModels()

	data := make([]wireModel, 0, len(ids))
	for _, id := range ids {
		data = append(data, wireModel{
			ID:      id,
			Object:  "model",
			OwnedBy: "hearth",
		})
	}

	w.Header().Set(ContentTypeHeader, ContentTypeJSON)
	w.WriteHeader(http.StatusOK)
	_ = wireJSON.NewEncoder(w).Encode(modelListResponse{
		Object: "list",
		Data:   data,
	})
}
