package handler

import (
	"log/slog"
	"net/http"

	"studyaid/internal/domain/services"
	"studyaid/internal/httputil"
)

// FlashcardHandler handles flashcard HTTP requests
type FlashcardHandler struct {
	hierarchy services.HierarchyService
	logger    *slog.Logger
}

// NewFlashcardHandler creates a new flashcard handler
func NewFlashcardHandler(hierarchy services.HierarchyService, logger *slog.Logger) *FlashcardHandler {
	return &FlashcardHandler{hierarchy: hierarchy, logger: logger}
}

// CreateFlashcard creates a flashcard by hand
// POST /api/flashcards
func (h *FlashcardHandler) CreateFlashcard(w http.ResponseWriter, r *http.Request) {
	var req services.CreateFlashcardRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.OwnerID = httputil.GetUserID(r)

	card, err := h.hierarchy.CreateFlashcard(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, card)
}

// UpdateFlashcard edits a flashcard
// PATCH /api/flashcards/{id}
func (h *FlashcardHandler) UpdateFlashcard(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "flashcard id is required")
		return
	}

	var req services.UpdateFlashcardRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.OwnerID = httputil.GetUserID(r)
	req.FlashcardID = id

	card, err := h.hierarchy.UpdateFlashcard(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, card)
}

// DeleteFlashcard deletes a flashcard
// DELETE /api/flashcards/{id}
func (h *FlashcardHandler) DeleteFlashcard(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "flashcard id is required")
		return
	}

	item := services.ItemRef{ID: id, Type: services.ItemTypeFlashcard}
	if err := h.hierarchy.DeleteItem(r.Context(), httputil.GetUserID(r), item); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
