package handlers

import (
	"encoding/json"
	"net/http"

	middleware "github.com/markdave123-py/Docuchat/internal/api/middlewares"
	"github.com/markdave123-py/Docuchat/internal/models"
	"github.com/markdave123-py/Docuchat/internal/services"
)

type SearchHandler struct {
	search *services.SearchService
}

func NewSearchHandler(search *services.SearchService) *SearchHandler {
	return &SearchHandler{search: search}
}

type searchRequest struct {
	Query      string `json:"query"`
	DocumentID string `json:"document_id,omitempty"`
	GroupID    string `json:"group_id,omitempty"`
	TopN       int    `json:"top_n,omitempty"`
}

type searchResponse struct {
	Results []models.SearchHit `json:"results"`
}

// Search runs one hybrid query over the caller's scope and returns
// ranked chunks with citation metadata.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	scope := models.UserScope(userID)
	if req.GroupID != "" {
		scope = models.GroupScope(req.GroupID)
	}

	hits, err := h.search.Search(r.Context(), scope, req.DocumentID, req.Query, req.TopN)
	if err != nil {
		writeError(w, err)
		return
	}
	if hits == nil {
		hits = []models.SearchHit{}
	}
	writeJSON(w, http.StatusOK, searchResponse{Results: hits})
}
