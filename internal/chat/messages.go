package chat

import (
	"context"
	"strings"

	"github.com/moredevelopers26/chattest/internal/ids"
	"github.com/moredevelopers26/chattest/internal/metrics"
	"github.com/moredevelopers26/chattest/internal/models"
	"github.com/moredevelopers26/chattest/internal/store"
)

// ListMessages returns a copy of a room's messages in append order.
// Unknown rooms yield an empty list.
func (s *Service) ListMessages(roomID string) []models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyMessages(s.messages[roomID])
}

// Message looks up one message.
func (s *Service) Message(roomID, messageID string) (models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(roomID, messageID)
	if i < 0 {
		return models.Message{}, &NotFoundError{Kind: KindMessage, ID: messageID}
	}
	return copyMessages(s.messages[roomID][i : i+1])[0], nil
}

// Send appends a new message to roomID and unhides the room. The message
// gets a fresh id, the current time and the "enviado" delivery state.
func (s *Service) Send(ctx context.Context, roomID string, d models.Draft) (models.Message, store.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg, res := s.send(ctx, roomID, d)
	s.notify()
	return msg, res
}

func (s *Service) send(ctx context.Context, roomID string, d models.Draft) (models.Message, store.Result) {
	ts := s.nowMillis()
	msgs := s.messages[roomID]
	// keep timestamps non-decreasing within a room
	if n := len(msgs); n > 0 && msgs[n-1].Timestamp > ts {
		ts = msgs[n-1].Timestamp
	}

	typ := d.Type
	if typ == "" {
		typ = models.TypeText
	}

	msg := models.Message{
		ID:           ids.NewMessageID(ts),
		Text:         d.Text,
		SenderID:     d.SenderID,
		SenderName:   d.SenderName,
		Timestamp:    ts,
		Type:         typ,
		FileName:     d.FileName,
		FileSize:     d.FileSize,
		Status:       models.DeliverySent,
		IsAIResponse: d.IsAIResponse,
	}
	if d.ReplyTo != nil {
		ref := *d.ReplyTo
		msg.ReplyTo = &ref
	}

	s.messages[roomID] = append(msgs, msg)
	metrics.MessagesSent.WithLabelValues(KindOf(roomID).String()).Inc()

	res := s.unhide(ctx, roomID)
	res = res.Merge(s.saveMessages(ctx))

	s.log.Debug().
		Str("room", roomID).
		Str("message_id", msg.ID).
		Str("type", msg.Type).
		Str("outcome", res.Outcome.String()).
		Msg("message sent")

	// callers get their own ReplyTo
	return copyMessages([]models.Message{msg})[0], res
}

// Edit replaces the text of a message. Missing rooms or messages are a
// no-op reported as Unchanged.
func (s *Service) Edit(ctx context.Context, roomID, messageID, text string) store.Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(roomID, messageID)
	if i < 0 {
		return store.Result{}
	}
	s.messages[roomID][i].Text = text
	res := s.saveMessages(ctx)
	s.notify()
	return res
}

// DeleteMessage removes one message. Missing rooms or messages are a no-op.
func (s *Service) DeleteMessage(ctx context.Context, roomID, messageID string) store.Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(roomID, messageID)
	if i < 0 {
		return store.Result{}
	}
	msgs := s.messages[roomID]
	s.messages[roomID] = append(msgs[:i:i], msgs[i+1:]...)
	res := s.saveMessages(ctx)
	s.notify()
	return res
}

// DeleteConversation drops every message of a room and hides it.
func (s *Service) DeleteConversation(ctx context.Context, roomID string) store.Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	var res store.Result
	if _, ok := s.messages[roomID]; ok {
		delete(s.messages, roomID)
		res = res.Merge(s.saveMessages(ctx))
	}
	if !s.isHidden(roomID) {
		s.hidden = append(s.hidden, roomID)
		res = res.Merge(s.saveHidden(ctx))
	}
	s.notify()
	return res
}

// Forward copies a message into another room as sent by sender. The copy
// does not keep the original's reply reference.
func (s *Service) Forward(ctx context.Context, fromRoom, messageID, toRoom string, sender models.User) (models.Message, store.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.messages[fromRoom]; !ok {
		return models.Message{}, store.Result{}, &NotFoundError{Kind: KindRoom, ID: fromRoom}
	}
	i := s.indexOf(fromRoom, messageID)
	if i < 0 {
		return models.Message{}, store.Result{}, &NotFoundError{Kind: KindMessage, ID: messageID}
	}
	src := s.messages[fromRoom][i]

	msg, res := s.send(ctx, toRoom, models.Draft{
		Text:         src.Text,
		SenderID:     sender.ID,
		SenderName:   sender.Name,
		Type:         src.Type,
		FileName:     src.FileName,
		FileSize:     src.FileSize,
		IsAIResponse: src.IsAIResponse,
	})
	s.notify()
	return msg, res, nil
}

// Search returns the messages of a room whose text (text and ai types only)
// or sender name contains query, ignoring case.
func (s *Service) Search(roomID, query string) []models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	metrics.SearchQueries.Inc()
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return copyMessages(s.messages[roomID])
	}

	var out []models.Message
	for _, m := range s.messages[roomID] {
		if (m.IsTextual() && strings.Contains(strings.ToLower(m.Text), q)) ||
			strings.Contains(strings.ToLower(m.SenderName), q) {
			out = append(out, m)
		}
	}
	return copyMessages(out)
}

// ReplyRefFor builds the quoted snapshot of m shown above a reply.
func ReplyRefFor(m models.Message) *models.ReplyRef {
	text := m.Text
	switch m.Type {
	case models.TypeAudio:
		text = "Mensaje de voz"
	case models.TypeImage:
		text = "Imagen"
	case models.TypeVideo:
		text = "Video"
	case models.TypeDocument:
		text = m.FileName
		if text == "" {
			text = "Archivo"
		}
	}
	return &models.ReplyRef{ID: m.ID, Text: text, SenderName: m.SenderName}
}

// ReplyTo builds the reply snapshot for a stored message.
func (s *Service) ReplyTo(roomID, messageID string) (*models.ReplyRef, error) {
	m, err := s.Message(roomID, messageID)
	if err != nil {
		return nil, err
	}
	return ReplyRefFor(m), nil
}

// ClearAllMessages empties every room. Hidden rooms stay hidden.
func (s *Service) ClearAllMessages(ctx context.Context) store.Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.messages = make(map[string][]models.Message)
	res := s.saveMessages(ctx)
	s.notify()
	return res
}

func (s *Service) indexOf(roomID, messageID string) int {
	for i, m := range s.messages[roomID] {
		if m.ID == messageID {
			return i
		}
	}
	return -1
}
