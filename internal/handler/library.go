package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/vivaply/recommendation-service/internal/domain"
)

// POST /users/{userID}/library
func (h *Handler) AddLibraryItem(w http.ResponseWriter, r *http.Request) {
	userIDStr := chi.URLParam(r, "userID")
	userID, err := strconv.ParseInt(userIDStr, 10, 64)
	if err != nil || userID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_parameter", "Invalid user_id parameter")
		return
	}

	var req AddLibraryItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "Invalid request body")
		return
	}

	mediaType, err := domain.ParseMediaType(req.MediaType)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_parameter", "media_type must be tv or movie")
		return
	}
	status, err := domain.ParseWatchStatus(req.Status)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_parameter", "Invalid status value")
		return
	}
	if req.ExternalID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_parameter", "external_id must be positive")
		return
	}

	if err := h.service.AddLibraryItem(r.Context(), userID, mediaType, req.ExternalID, status); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "user_not_found",
				fmt.Sprintf("User with ID %d does not exist", userID))
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
