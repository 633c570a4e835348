package web

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
)

func RespondJSON(w http.ResponseWriter, logger *slog.Logger, status int, payload any) {
	// Handle nil payload
	if payload == nil {
		w.WriteHeader(status)
		return
	}

	response, err := json.Marshal(payload)
	if err != nil {
		logger.Error("Error encoding response to JSON", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(response)
}

func RespondError(w http.ResponseWriter, logger *slog.Logger, status int, message string) {
	RespondJSON(w, logger, status, map[string]string{"error": message})
}

// ParseKey extracts a non-empty identifier from the request path. Returns the key and a boolean indicating success.
func ParseKey(w http.ResponseWriter, r *http.Request, logger *slog.Logger, name string) (string, bool) {
	key := r.PathValue(name)
	if key == "" {
		RespondError(w, logger, http.StatusBadRequest, fmt.Sprintf("Missing %s in request path", name))
		return "", false
	}
	return key, true
}
