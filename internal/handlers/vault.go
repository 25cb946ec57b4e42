package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/moredevelopers26/chattest/internal/models"
)

// SaveRequest identifies the message to keep.
type SaveRequest struct {
	RoomID    string `json:"room_id"`
	MessageID string `json:"message_id"`
}

// VaultItemResponse carries a saved item.
type VaultItemResponse struct {
	Item    models.VaultItem `json:"item"`
	Storage StorageResponse  `json:"storage"`
}

// GetVault lists saved items, most recent first.
func (h *Handler) GetVault(w http.ResponseWriter, r *http.Request) {
	items := h.chat.VaultItems()
	if items == nil {
		items = []models.VaultItem{}
	}
	h.JSON(w, http.StatusOK, items)
}

// SaveToVault stores a copy of a message. Saving it again returns the
// existing item.
func (h *Handler) SaveToVault(w http.ResponseWriter, r *http.Request) {
	var req SaveRequest
	if err := decode(r, &req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.RoomID) == "" || strings.TrimSpace(req.MessageID) == "" {
		h.Error(w, http.StatusBadRequest, "room_id and message_id are required")
		return
	}

	existed := h.chat.IsSaved(req.MessageID)
	item, res, err := h.chat.SaveMessageToVault(r.Context(), req.RoomID, req.MessageID)
	if err != nil {
		h.fail(w, err)
		return
	}

	status := http.StatusCreated
	if existed {
		status = http.StatusOK
	}
	h.JSON(w, status, VaultItemResponse{Item: item, Storage: res})
}

// RemoveFromVault deletes one saved item.
func (h *Handler) RemoveFromVault(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !h.chat.IsSaved(id) {
		h.Error(w, http.StatusNotFound, "vault item not found")
		return
	}
	if !h.confirmed(w, r) {
		return
	}
	res := h.chat.RemoveFromVault(r.Context(), id)
	h.JSON(w, http.StatusOK, MutationResponse{Storage: res})
}

// ClearVault deletes every saved item.
func (h *Handler) ClearVault(w http.ResponseWriter, r *http.Request) {
	if !h.confirmed(w, r) {
		return
	}
	res := h.chat.ClearVault(r.Context())
	h.JSON(w, http.StatusOK, MutationResponse{Storage: res})
}
