package handlers

import (
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"

	middleware "github.com/markdave123-py/Docuchat/internal/api/middlewares"
	"github.com/markdave123-py/Docuchat/internal/config"
	"github.com/markdave123-py/Docuchat/internal/services"
)

type DocumentHandler struct {
	docs *services.DocumentService
	cfg  *config.Config
}

func NewDocumentHandler(docs *services.DocumentService, cfg *config.Config) *DocumentHandler {
	return &DocumentHandler{docs: docs, cfg: cfg}
}

// UploadDocument accepts a multipart upload and kicks off background
// ingestion. The response is the Queued document record including the
// version number it was assigned, so clients can poll it immediately.
func (h *DocumentHandler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		http.Error(w, "upload too large or malformed", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "invalid file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	scope := scopeFromRequest(r, userID)
	fileName := filepath.Base(header.Filename)

	doc, err := h.docs.StartIngestion(r.Context(), scope, fileName, file)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, doc)
}

// GetDocument returns one record; clients poll this for status and
// percentage_complete during ingestion.
func (h *DocumentHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	doc, err := h.docs.Get(r.Context(), scopeFromRequest(r, userID), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// ListDocuments returns the latest version of every document in scope.
func (h *DocumentHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	docs, err := h.docs.List(r.Context(), scopeFromRequest(r, userID))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, docs)
}

// ListVersions returns the whole version chain for a file name, newest
// first.
func (h *DocumentHandler) ListVersions(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	fileName := r.URL.Query().Get("file_name")
	if fileName == "" {
		http.Error(w, "file_name required", http.StatusBadRequest)
		return
	}

	versions, err := h.docs.ListVersions(r.Context(), scopeFromRequest(r, userID), fileName)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, versions)
}

// DeleteDocument removes one version, or every version of the file
// when ?all=true.
func (h *DocumentHandler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	all := r.URL.Query().Get("all") == "true"
	if err := h.docs.Delete(r.Context(), scopeFromRequest(r, userID), chi.URLParam(r, "id"), all); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
