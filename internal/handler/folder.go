package handler

import (
	"log/slog"
	"net/http"

	"studyaid/internal/domain/services"
	"studyaid/internal/httputil"
)

// FolderHandler handles folder HTTP requests
type FolderHandler struct {
	hierarchy services.HierarchyService
	logger    *slog.Logger
}

// NewFolderHandler creates a new folder handler
func NewFolderHandler(hierarchy services.HierarchyService, logger *slog.Logger) *FolderHandler {
	return &FolderHandler{hierarchy: hierarchy, logger: logger}
}

// CreateFolder creates a new folder
// POST /api/folders
func (h *FolderHandler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	var req services.CreateFolderRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.OwnerID = httputil.GetUserID(r)

	folder, err := h.hierarchy.CreateFolder(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, folder)
}

// UpdateFolder renames a folder or changes its icon
// PATCH /api/folders/{id}
func (h *FolderHandler) UpdateFolder(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "folder id is required")
		return
	}

	var req services.RenameFolderRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.OwnerID = httputil.GetUserID(r)
	req.FolderID = id

	folder, err := h.hierarchy.RenameFolder(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, folder)
}

// DeleteFolder deletes an empty folder
// DELETE /api/folders/{id}
func (h *FolderHandler) DeleteFolder(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "folder id is required")
		return
	}

	item := services.ItemRef{ID: id, Type: services.ItemTypeFolder}
	if err := h.hierarchy.DeleteItem(r.Context(), httputil.GetUserID(r), item); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
