package handler

import (
	"errors"
	"net/http"

	"studyaid/internal/domain"
	"studyaid/internal/httputil"
	"studyaid/internal/llm"
)

// handleError maps domain errors to RFC 7807 responses. Structural
// violations carry extras naming the offending item so bulk callers can
// tell which entry sank the batch.
func handleError(w http.ResponseWriter, err error) {
	var notEmpty *domain.FolderNotEmptyError
	var cyclic *domain.CyclicMoveError
	var schema *domain.SchemaViolationError

	switch {
	case errors.As(err, &notEmpty):
		httputil.RespondErrorWithExtras(w, http.StatusConflict, err.Error(), map[string]interface{}{
			"folder_id":   notEmpty.FolderID,
			"folder_name": notEmpty.Name,
			"subfolders":  notEmpty.Subfolders,
			"flashcards":  notEmpty.Flashcards,
		})
	case errors.As(err, &cyclic):
		httputil.RespondErrorWithExtras(w, http.StatusConflict, err.Error(), map[string]interface{}{
			"folder_id": cyclic.FolderID,
			"target_id": cyclic.TargetID,
		})
	case errors.As(err, &schema):
		httputil.RespondErrorWithExtras(w, http.StatusUnprocessableEntity, err.Error(), map[string]interface{}{
			"field": schema.Field,
		})
	case errors.Is(err, domain.ErrValidation):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		httputil.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrConflict):
		httputil.RespondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		httputil.RespondError(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, domain.ErrNoPayload),
		errors.Is(err, domain.ErrMalformedPayload),
		errors.Is(err, domain.ErrEmptyResult):
		httputil.RespondError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, domain.ErrTransport), errors.Is(err, llm.ErrUnavailable):
		httputil.RespondError(w, http.StatusBadGateway, "completion provider unavailable")
	default:
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}
