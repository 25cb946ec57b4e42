package handlers

import (
	"net/http"
	"strings"

	"github.com/moredevelopers26/chattest/internal/models"
)

// CallRequest represents a new call log entry.
type CallRequest struct {
	Name            string `json:"name"`
	Direction       string `json:"type"`
	At              int64  `json:"at,omitempty"`
	DurationSeconds int    `json:"durationSeconds"`
	Missed          bool   `json:"missed"`
}

// CallResponse carries a recorded call.
type CallResponse struct {
	Call    models.CallRecord `json:"call"`
	Storage StorageResponse   `json:"storage"`
}

// ListCalls returns the call log, newest first.
func (h *Handler) ListCalls(w http.ResponseWriter, r *http.Request) {
	h.JSON(w, http.StatusOK, h.chat.ListCalls())
}

// RecordCall appends a call to the log.
func (h *Handler) RecordCall(w http.ResponseWriter, r *http.Request) {
	var req CallRequest
	if err := decode(r, &req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	name := sanitizeName(req.Name)
	if name == "" {
		h.Error(w, http.StatusBadRequest, "name is required")
		return
	}
	dir := strings.ToLower(strings.TrimSpace(req.Direction))
	if dir != models.CallIncoming && dir != models.CallOutgoing {
		h.Error(w, http.StatusBadRequest, "type must be incoming or outgoing")
		return
	}
	if req.DurationSeconds < 0 {
		h.Error(w, http.StatusBadRequest, "durationSeconds cannot be negative")
		return
	}

	c, res := h.chat.RecordCall(r.Context(), models.CallRecord{
		Name:            name,
		Direction:       dir,
		At:              req.At,
		DurationSeconds: req.DurationSeconds,
		Missed:          req.Missed,
	})
	h.JSON(w, http.StatusCreated, CallResponse{Call: c, Storage: res})
}
