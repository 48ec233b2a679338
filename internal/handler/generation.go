package handler

import (
	"log/slog"
	"net/http"

	"studyaid/internal/domain/models"
	"studyaid/internal/domain/services"
	"studyaid/internal/httputil"
)

// GenerationHandler handles generation and exam HTTP requests
type GenerationHandler struct {
	generation services.GenerationService
	logger     *slog.Logger
}

// NewGenerationHandler creates a new generation handler
func NewGenerationHandler(generation services.GenerationService, logger *slog.Logger) *GenerationHandler {
	return &GenerationHandler{generation: generation, logger: logger}
}

// GenerateFlashcards generates and persists a flashcard batch
// POST /api/generate/flashcards
func (h *GenerationHandler) GenerateFlashcards(w http.ResponseWriter, r *http.Request) {
	var req services.GenerateFlashcardsRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.OwnerID = httputil.GetUserID(r)

	cards, err := h.generation.GenerateFlashcards(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, map[string]interface{}{"flashcards": cards})
}

// GenerateExam generates and persists a mock exam
// POST /api/generate/exam
func (h *GenerationHandler) GenerateExam(w http.ResponseWriter, r *http.Request) {
	var req services.GenerateExamRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.OwnerID = httputil.GetUserID(r)

	exam, err := h.generation.GenerateExam(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, exam)
}

// GetExam retrieves an exam with its questions
// GET /api/exams/{id}
func (h *GenerationHandler) GetExam(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "exam id is required")
		return
	}

	exam, err := h.generation.GetExam(r.Context(), id, httputil.GetUserID(r))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, exam)
}

// ListExams lists the owner's exams, newest first
// GET /api/exams
func (h *GenerationHandler) ListExams(w http.ResponseWriter, r *http.Request) {
	exams, err := h.generation.ListExams(r.Context(), httputil.GetUserID(r))
	if err != nil {
		handleError(w, err)
		return
	}
	if exams == nil {
		exams = []models.Exam{}
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{"exams": exams})
}

// DeleteExam deletes an exam and its questions
// DELETE /api/exams/{id}
func (h *GenerationHandler) DeleteExam(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "exam id is required")
		return
	}

	if err := h.generation.DeleteExam(r.Context(), id, httputil.GetUserID(r)); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
