package webutil

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

func WriteJson(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(payload)
	if err != nil {
		slog.Error("failed to encode json response", "err", err)
	}
}

// WriteError sends a generic message to the caller. The underlying
// error, if any, belongs in the server log, not in the response.
func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJson(w, status, map[string]string{"error": message})
}

func WriteSuccess(w http.ResponseWriter) {
	WriteJson(w, http.StatusOK, map[string]bool{"success": true})
}
