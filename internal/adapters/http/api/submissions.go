// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"errors"
	"io"
	"net/http"
	"strings"
)

// SubmissionsHandler handles submission requests.
type SubmissionsHandler struct {
	deps           Dependencies
	maxUploadBytes int64
}

// NewSubmissionsHandler creates a new submissions handler.
func NewSubmissionsHandler(deps Dependencies, maxUploadBytes int64) *SubmissionsHandler {
	return &SubmissionsHandler{deps: deps, maxUploadBytes: maxUploadBytes}
}

// HandlePostSubmission handles POST /tasks/{id}/submissions requests.
//
// The request body is the raw CSV file. The submitting user comes from the
// X-User-ID header (identity itself is delegated to the outer platform);
// X-User-Name optionally carries a display name for the leaderboard.
func (h *SubmissionsHandler) HandlePostSubmission(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_submission"

	taskID := r.PathValue("id")
	userID := strings.TrimSpace(r.Header.Get("X-User-ID"))
	if userID == "" {
		writeError(w, http.StatusBadRequest, "bad_request",
			WrapKind(op, ErrBadRequest, errors.New("missing X-User-ID header")))
		return
	}
	userName := strings.TrimSpace(r.Header.Get("X-User-Name"))

	body := http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	fileBytes, err := io.ReadAll(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "too_large", WrapKind(op, ErrBadRequest, err))
			return
		}
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if len(fileBytes) == 0 {
		writeError(w, http.StatusBadRequest, "bad_request",
			WrapKind(op, ErrBadRequest, errors.New("empty body")))
		return
	}

	receipt, err := h.deps.Submit(r.Context(), taskID, userID, userName, fileBytes)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, receipt)
}
