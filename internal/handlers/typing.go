package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/moredevelopers26/chattest/internal/api/middleware"
)

// TypingRequest flags the session user as typing or not.
type TypingRequest struct {
	Typing bool `json:"typing"`
}

// TypingResponse lists who is typing in a room.
type TypingResponse struct {
	RoomID string   `json:"room_id"`
	Users  []string `json:"users"`
}

// SetTyping records a keystroke. Each call pushes back the moment the flag
// clears by itself.
func (h *Handler) SetTyping(w http.ResponseWriter, r *http.Request) {
	me := middleware.GetUserFromContext(r.Context())
	roomID := chi.URLParam(r, "id")

	req := TypingRequest{Typing: true}
	if err := decode(r, &req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	h.typingFor(roomID, me.ID, req.Typing)
	w.WriteHeader(http.StatusNoContent)
}

// GetTyping returns the names of users typing in a room.
func (h *Handler) GetTyping(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "id")
	users := h.chat.TypingUsers(roomID)
	h.JSON(w, http.StatusOK, TypingResponse{RoomID: roomID, Users: users})
}

func (h *Handler) typingFor(roomID, userID string, typing bool) {
	key := roomID + "|" + userID

	h.mu.Lock()
	defer h.mu.Unlock()

	if t, ok := h.typing[key]; ok {
		t.Stop()
		delete(h.typing, key)
	}
	h.chat.SetTyping(roomID, userID, typing)
	if !typing {
		return
	}

	var t *time.Timer
	t = time.AfterFunc(h.opts.TypingIdle, func() {
		h.mu.Lock()
		if h.typing[key] != t {
			h.mu.Unlock()
			return
		}
		delete(h.typing, key)
		h.mu.Unlock()
		h.chat.SetTyping(roomID, userID, false)
	})
	h.typing[key] = t
}
