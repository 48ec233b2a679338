package handler

import (
	"log/slog"
	"net/http"

	"studyaid/internal/domain/models"
	"studyaid/internal/domain/services"
	"studyaid/internal/httputil"
)

// TreeHandler handles forest-wide HTTP requests: tree retrieval, recursive
// collection and the move/delete operations that span item kinds.
type TreeHandler struct {
	hierarchy services.HierarchyService
	logger    *slog.Logger
}

// NewTreeHandler creates a new tree handler
func NewTreeHandler(hierarchy services.HierarchyService, logger *slog.Logger) *TreeHandler {
	return &TreeHandler{hierarchy: hierarchy, logger: logger}
}

// GetTree returns the owner's folder forest
// GET /api/tree?root_id=...&root_id=...
func (h *TreeHandler) GetTree(w http.ResponseWriter, r *http.Request) {
	rootIDs := r.URL.Query()["root_id"]

	tree, err := h.hierarchy.BuildTree(r.Context(), httputil.GetUserID(r), rootIDs)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, tree)
}

type collectRequest struct {
	FolderIDs []string `json:"folder_ids"`
}

// CollectFlashcards gathers flashcards from folders and their descendants
// POST /api/tree/collect
func (h *TreeHandler) CollectFlashcards(w http.ResponseWriter, r *http.Request) {
	var req collectRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cards, err := h.hierarchy.CollectFlashcards(r.Context(), httputil.GetUserID(r), req.FolderIDs)
	if err != nil {
		handleError(w, err)
		return
	}
	if cards == nil {
		cards = []models.Flashcard{}
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{"flashcards": cards})
}

type moveRequest struct {
	Item           services.ItemRef `json:"item"`
	TargetFolderID *string          `json:"target_folder_id"`
}

// MoveItem re-files a flashcard or re-parents a folder
// POST /api/tree/move
func (h *TreeHandler) MoveItem(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := h.hierarchy.MoveItem(r.Context(), httputil.GetUserID(r), req.Item, req.TargetFolderID)
	if err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type bulkMoveRequest struct {
	Items          []services.ItemRef `json:"items"`
	TargetFolderID *string            `json:"target_folder_id"`
}

// MoveItemsBulk moves a batch of items all-or-nothing
// POST /api/tree/move/bulk
func (h *TreeHandler) MoveItemsBulk(w http.ResponseWriter, r *http.Request) {
	var req bulkMoveRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := h.hierarchy.MoveItemsBulk(r.Context(), httputil.GetUserID(r), req.Items, req.TargetFolderID)
	if err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type bulkDeleteRequest struct {
	Items []services.ItemRef `json:"items"`
}

// DeleteItemsBulk deletes a batch of items all-or-nothing
// POST /api/tree/delete/bulk
func (h *TreeHandler) DeleteItemsBulk(w http.ResponseWriter, r *http.Request) {
	var req bulkDeleteRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := h.hierarchy.DeleteItemsBulk(r.Context(), httputil.GetUserID(r), req.Items)
	if err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
