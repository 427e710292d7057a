package httpapi

import "net/http"

type HealthHandler struct{}

func (h HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]any{"ok": true})
}
