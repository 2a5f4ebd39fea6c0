package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/markdave123-py/Docuchat/internal/core"
	"github.com/markdave123-py/Docuchat/internal/models"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps the typed pipeline errors onto HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	var vErr *core.ValidationError
	var uErr *core.UnsupportedTypeError
	switch {
	case errors.As(err, &vErr):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": vErr.Error()})
	case errors.As(err, &uErr):
		writeJSON(w, http.StatusUnsupportedMediaType, map[string]string{"error": uErr.Error()})
	case errors.Is(err, core.ErrStoreNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	case errors.Is(err, core.ErrUnauthorizedScope):
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "forbidden"})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

// scopeFromRequest resolves the owner scope for an authenticated
// request. A group_id (form field or query parameter) selects the group
// scope; group membership is enforced upstream of this service.
func scopeFromRequest(r *http.Request, userID string) models.Scope {
	groupID := r.FormValue("group_id")
	if groupID == "" {
		groupID = r.URL.Query().Get("group_id")
	}
	if groupID != "" {
		return models.GroupScope(groupID)
	}
	return models.UserScope(userID)
}
