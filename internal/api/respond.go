package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"shareit/internal/apperror"
	"shareit/internal/models"
)

const userIDHeader = models.HeaderUserID

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

// actingUser reads the id of the user the request is made on behalf of.
func actingUser(r *http.Request) (int64, error) {
	raw := strings.TrimSpace(r.Header.Get(userIDHeader))
	if raw == "" {
		return 0, apperror.InvalidArgument("Missing required header %s", userIDHeader)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, apperror.InvalidArgument("Invalid %s header: %s", userIDHeader, raw)
	}
	return id, nil
}

func pathID(r *http.Request) (int64, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, apperror.InvalidArgument("Invalid id: %s", raw)
	}
	return id, nil
}

// pageParams parses the from/size query pair. Absent values take the defaults.
func pageParams(r *http.Request) (models.Page, error) {
	q := r.URL.Query()

	from, err := intParam(q.Get("from"), 0)
	if err != nil || from < 0 {
		return models.Page{}, apperror.InvalidArgument("from must be a non-negative integer")
	}
	size, err := intParam(q.Get("size"), models.DefaultPageSize)
	if err != nil || size < 1 {
		return models.Page{}, apperror.InvalidArgument("size must be a positive integer")
	}
	return models.NewPage(from, size), nil
}

func intParam(raw string, def int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperror.InvalidArgument("invalid JSON body")
	}
	return nil
}
