package chat

import (
	"context"
	"sort"
	"strings"

	"github.com/moredevelopers26/chattest/internal/models"
	"github.com/moredevelopers26/chattest/internal/store"
)

// MarkRead moves the room's read cursor to now and unhides it.
func (s *Service) MarkRead(ctx context.Context, roomID string) store.Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	ts := s.nowMillis()
	if msgs := s.messages[roomID]; len(msgs) > 0 && msgs[len(msgs)-1].Timestamp > ts {
		ts = msgs[len(msgs)-1].Timestamp
	}
	s.lastSeen[roomID] = ts

	res := s.store.Save(ctx, KeyLastSeen, s.lastSeen)
	res = res.Merge(s.unhide(ctx, roomID))
	s.notify()
	return res
}

// UnreadCount counts the messages of a room newer than its read cursor and
// not sent by the current user.
func (s *Service) UnreadCount(roomID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unreadCount(roomID)
}

func (s *Service) unreadCount(roomID string) int {
	seen := s.lastSeen[roomID]
	me := s.currentID()
	n := 0
	for _, m := range s.messages[roomID] {
		if m.Timestamp > seen && m.SenderID != me {
			n++
		}
	}
	return n
}

// ListVisibleChats returns the chat list of the current user, newest first.
// It holds every well-known channel and every room with messages that the
// user takes part in, minus hidden rooms.
func (s *Service) ListVisibleChats() []models.ChatSummary {
	s.mu.Lock()
	defer s.mu.Unlock()

	me := s.currentID()

	candidates := make([]string, 0, len(s.messages)+len(channels))
	seen := make(map[string]bool)
	rooms := make([]string, 0, len(s.messages))
	for room, msgs := range s.messages {
		if len(msgs) > 0 {
			rooms = append(rooms, room)
		}
	}
	sort.Strings(rooms)
	for _, room := range rooms {
		candidates = append(candidates, room)
		seen[room] = true
	}
	for _, c := range channels {
		if !seen[c.id] {
			candidates = append(candidates, c.id)
		}
	}

	out := make([]models.ChatSummary, 0, len(candidates))
	for _, room := range candidates {
		if s.isHidden(room) {
			continue
		}
		switch KindOf(room) {
		case RoomPrivate:
			if !participatesIn(room, me) {
				continue
			}
		case RoomAdHoc:
			continue
		}
		out = append(out, s.summary(room, me))
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp > out[j].Timestamp
	})
	return out
}

func (s *Service) summary(roomID, me string) models.ChatSummary {
	meta := s.roomMetadata(roomID, me)
	sum := models.ChatSummary{
		ID:           roomID,
		RoomMetadata: meta,
		LastMessage:  meta.Description,
		UnreadCount:  s.unreadCount(roomID),
	}
	if msgs := s.messages[roomID]; len(msgs) > 0 {
		last := msgs[len(msgs)-1]
		sum.Timestamp = last.Timestamp
		sum.LastMessage = Preview(last)
	}
	return sum
}

// Preview is the one-line summary of a message in the chat list: the text
// for text and ai messages, the bracketed type otherwise.
func Preview(m models.Message) string {
	if m.IsTextual() {
		return m.Text
	}
	return "[" + strings.ToUpper(m.Type) + "]"
}

func (s *Service) isHidden(roomID string) bool {
	for _, id := range s.hidden {
		if id == roomID {
			return true
		}
	}
	return false
}

func (s *Service) unhide(ctx context.Context, roomID string) store.Result {
	if !s.isHidden(roomID) {
		return store.Result{}
	}
	kept := s.hidden[:0:0]
	for _, id := range s.hidden {
		if id != roomID {
			kept = append(kept, id)
		}
	}
	s.hidden = kept
	return s.saveHidden(ctx)
}

// HiddenRooms returns the hidden room keys.
func (s *Service) HiddenRooms() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.hidden...)
}
