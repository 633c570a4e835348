package web

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
)

// ParseIntInRange reads an optional integer query parameter. A missing parameter
// yields the default value; a malformed or out-of-range value is rejected with 400.
// Returns the value and a boolean indicating success.
func ParseIntInRange(r *http.Request, w http.ResponseWriter, logger *slog.Logger, key string, def, min, max int) (int, bool) {
	value := r.URL.Query().Get(key)
	if value == "" {
		return def, true
	}
	intValue, err := strconv.Atoi(value)
	if err != nil || intValue < min || intValue > max {
		RespondError(w, logger, http.StatusBadRequest, fmt.Sprintf("Invalid %s number: %s", key, value))
		return 0, false
	}
	return intValue, true
}

// ParseOptionalFloat reads an optional decimal query parameter.
// Returns nil when the parameter is absent; a malformed value is rejected with 400.
func ParseOptionalFloat(r *http.Request, w http.ResponseWriter, logger *slog.Logger, key string) (*float64, bool) {
	value := r.URL.Query().Get(key)
	if value == "" {
		return nil, true
	}
	floatValue, err := strconv.ParseFloat(value, 64)
	if err != nil {
		RespondError(w, logger, http.StatusBadRequest, fmt.Sprintf("Invalid %s number: %s", key, value))
		return nil, false
	}
	return &floatValue, true
}
