package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/moredevelopers26/chattest/internal/api/middleware"
	"github.com/moredevelopers26/chattest/internal/models"
)

// maxTextLen bounds text messages; media payloads travel as data URIs and
// are bounded by the body size limit instead.
const maxTextLen = 4096

// PostMessageRequest represents the send message body.
type PostMessageRequest struct {
	Text     string `json:"text"`
	Type     string `json:"type,omitempty"`
	FileName string `json:"fileName,omitempty"`
	FileSize string `json:"fileSize,omitempty"`
	ReplyTo  string `json:"replyTo,omitempty"` // id of a message in the same room
}

// EditMessageRequest represents the edit body.
type EditMessageRequest struct {
	Text string `json:"text"`
}

// ForwardRequest names the destination room.
type ForwardRequest struct {
	RoomID string `json:"room_id"`
}

// MessageResponse carries a stored message.
type MessageResponse struct {
	Message models.Message  `json:"message"`
	Storage StorageResponse `json:"storage"`
}

// RoomMessagesResponse represents the list messages response.
type RoomMessagesResponse struct {
	RoomID   string           `json:"room_id"`
	Query    string           `json:"query,omitempty"`
	Messages []models.Message `json:"messages"`
}

// UnreadResponse reports a room's unread count.
type UnreadResponse struct {
	RoomID string `json:"room_id"`
	Unread int    `json:"unread"`
}

// GetRoom returns the metadata of a room as seen by the session user.
func (h *Handler) GetRoom(w http.ResponseWriter, r *http.Request) {
	me := ""
	if u := middleware.GetUserFromContext(r.Context()); u != nil {
		me = u.ID
	}
	h.JSON(w, http.StatusOK, h.chat.RoomMetadata(chi.URLParam(r, "id"), me))
}

// GetRoomMessages lists a room's messages, or searches them when q is set.
func (h *Handler) GetRoomMessages(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "id")
	q := strings.TrimSpace(r.URL.Query().Get("q"))

	var msgs []models.Message
	if q != "" {
		msgs = h.chat.Search(roomID, q)
	} else {
		msgs = h.chat.ListMessages(roomID)
	}
	if msgs == nil {
		msgs = []models.Message{}
	}

	h.JSON(w, http.StatusOK, RoomMessagesResponse{RoomID: roomID, Query: q, Messages: msgs})
}

// PostMessage sends a message as the session user.
func (h *Handler) PostMessage(w http.ResponseWriter, r *http.Request) {
	me := middleware.GetUserFromContext(r.Context())
	roomID := chi.URLParam(r, "id")

	var req PostMessageRequest
	if err := decode(r, &req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if req.Type == "" {
		req.Type = models.TypeText
	}
	if !models.ValidType(req.Type) || req.Type == models.TypeAI {
		h.Error(w, http.StatusBadRequest, "type must be text, image, audio, video or document")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		h.Error(w, http.StatusBadRequest, "text is required")
		return
	}
	if req.Type == models.TypeText && len(req.Text) > maxTextLen {
		h.Error(w, http.StatusUnprocessableEntity, "text too long (max 4096 bytes)")
		return
	}

	draft := models.Draft{
		Text:       req.Text,
		SenderID:   me.ID,
		SenderName: me.Name,
		Type:       req.Type,
		FileName:   req.FileName,
		FileSize:   req.FileSize,
	}
	if req.ReplyTo != "" {
		ref, err := h.chat.ReplyTo(roomID, req.ReplyTo)
		if err != nil {
			h.Error(w, http.StatusUnprocessableEntity, "replied message not found in this room")
			return
		}
		draft.ReplyTo = ref
	}

	msg, res := h.chat.Send(r.Context(), roomID, draft)
	h.react(roomID, msg)

	h.JSON(w, http.StatusCreated, MessageResponse{Message: msg, Storage: res})
}

// EditMessage replaces a message's text.
func (h *Handler) EditMessage(w http.ResponseWriter, r *http.Request) {
	roomID, mid := chi.URLParam(r, "id"), chi.URLParam(r, "mid")

	var req EditMessageRequest
	if err := decode(r, &req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		h.Error(w, http.StatusBadRequest, "text is required")
		return
	}
	if _, err := h.chat.Message(roomID, mid); err != nil {
		h.fail(w, err)
		return
	}

	res := h.chat.Edit(r.Context(), roomID, mid, req.Text)
	m, err := h.chat.Message(roomID, mid)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.JSON(w, http.StatusOK, MessageResponse{Message: m, Storage: res})
}

// DeleteMessage removes a single message.
func (h *Handler) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	roomID, mid := chi.URLParam(r, "id"), chi.URLParam(r, "mid")
	if _, err := h.chat.Message(roomID, mid); err != nil {
		h.fail(w, err)
		return
	}
	if !h.confirmed(w, r) {
		return
	}
	res := h.chat.DeleteMessage(r.Context(), roomID, mid)
	h.JSON(w, http.StatusOK, MutationResponse{Storage: res})
}

// ForwardMessage copies a message into another room as the session user.
func (h *Handler) ForwardMessage(w http.ResponseWriter, r *http.Request) {
	me := middleware.GetUserFromContext(r.Context())

	var req ForwardRequest
	if err := decode(r, &req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.RoomID) == "" {
		h.Error(w, http.StatusBadRequest, "room_id is required")
		return
	}

	msg, res, err := h.chat.Forward(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "mid"), req.RoomID, *me)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.react(req.RoomID, msg)
	h.JSON(w, http.StatusCreated, MessageResponse{Message: msg, Storage: res})
}

// DeleteConversation wipes a room and hides it from the chat list.
func (h *Handler) DeleteConversation(w http.ResponseWriter, r *http.Request) {
	if !h.confirmed(w, r) {
		return
	}
	res := h.chat.DeleteConversation(r.Context(), chi.URLParam(r, "id"))
	h.JSON(w, http.StatusOK, MutationResponse{Storage: res})
}

// ClearMessages empties every room.
func (h *Handler) ClearMessages(w http.ResponseWriter, r *http.Request) {
	if !h.confirmed(w, r) {
		return
	}
	res := h.chat.ClearAllMessages(r.Context())
	h.JSON(w, http.StatusOK, MutationResponse{Storage: res})
}

// MarkRead moves the room's read cursor to now.
func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	res := h.chat.MarkRead(r.Context(), chi.URLParam(r, "id"))
	h.JSON(w, http.StatusOK, MutationResponse{Storage: res})
}

// Unread returns the unread count of a room.
func (h *Handler) Unread(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "id")
	h.JSON(w, http.StatusOK, UnreadResponse{RoomID: roomID, Unread: h.chat.UnreadCount(roomID)})
}

// ListChats returns the visible chat list of the session user.
func (h *Handler) ListChats(w http.ResponseWriter, r *http.Request) {
	chats := h.chat.ListVisibleChats()
	if chats == nil {
		chats = []models.ChatSummary{}
	}
	h.JSON(w, http.StatusOK, chats)
}
