package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/moredevelopers26/chattest/internal/api/middleware"
	"github.com/moredevelopers26/chattest/internal/chat"
	"github.com/moredevelopers26/chattest/internal/models"
)

// StatusRequest represents the presence update body.
type StatusRequest struct {
	Status string `json:"status"`
}

// UserResponse carries an updated user.
type UserResponse struct {
	User    models.User     `json:"user"`
	Storage StorageResponse `json:"storage"`
}

// PrivateRoomResponse names the private room between two users.
type PrivateRoomResponse struct {
	RoomID string              `json:"room_id"`
	Room   models.RoomMetadata `json:"room"`
}

// ListUsers returns the roster.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	h.JSON(w, http.StatusOK, h.chat.Users())
}

// GetUser handles user profile lookup.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	u, err := h.chat.User(chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, err)
		return
	}
	h.JSON(w, http.StatusOK, u)
}

// UpdateStatus sets a user's presence.
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req StatusRequest
	if err := decode(r, &req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	u, res, err := h.chat.UpdateStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.JSON(w, http.StatusOK, UserResponse{User: u, Storage: res})
}

// UpdateProfile edits the fields present in the body.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req models.ProfileUpdate
	if err := decode(r, &req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Name != nil {
		name := sanitizeName(*req.Name)
		if name == "" {
			h.Error(w, http.StatusBadRequest, "name cannot be empty")
			return
		}
		req.Name = &name
	}
	if req.Email != nil && !isValidEmail(*req.Email) {
		h.Error(w, http.StatusBadRequest, "invalid email format")
		return
	}

	u, res, err := h.chat.UpdateProfile(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.JSON(w, http.StatusOK, UserResponse{User: u, Storage: res})
}

// PrivateRoom resolves the private room shared with another user.
func (h *Handler) PrivateRoom(w http.ResponseWriter, r *http.Request) {
	me := middleware.GetUserFromContext(r.Context())
	other, err := h.chat.User(chi.URLParam(r, "userId"))
	if err != nil {
		h.fail(w, err)
		return
	}

	id := chat.PrivateRoomID(me.ID, other.ID)
	h.JSON(w, http.StatusOK, PrivateRoomResponse{
		RoomID: id,
		Room:   h.chat.RoomMetadata(id, me.ID),
	})
}
