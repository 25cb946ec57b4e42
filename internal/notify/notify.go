// Package notify turns snapshots into message-arrival notifications.
package notify

import (
	"sort"
	"sync"

	"github.com/moredevelopers26/chattest/internal/models"
)

// Notification announces a message from someone else.
type Notification struct {
	Title     string `json:"title"`
	Body      string `json:"body"`
	RoomID    string `json:"roomId"`
	SenderID  string `json:"senderId"`
	MessageID string `json:"messageId"`
}

// Tracker remembers which messages each room held in the last snapshot and
// reports the ones that arrived since, even when a prune or delete shrank
// the room in the same snapshot. The first snapshot only sets the baseline.
type Tracker struct {
	mu         sync.Mutex
	seen       map[string]map[string]struct{}
	primed     bool
	foreground string
	disabled   bool
}

// NewTracker creates a Tracker with no foreground room.
func NewTracker() *Tracker {
	return &Tracker{seen: make(map[string]map[string]struct{})}
}

// SetForeground marks roomID as the room on screen. Its messages are not
// announced. An empty id clears it.
func (t *Tracker) SetForeground(roomID string) {
	t.mu.Lock()
	t.foreground = roomID
	t.mu.Unlock()
}

// SetEnabled turns notifications on or off. The baseline keeps updating
// either way.
func (t *Tracker) SetEnabled(on bool) {
	t.mu.Lock()
	t.disabled = !on
	t.mu.Unlock()
}

// Observe consumes a snapshot and returns notifications for new messages,
// ordered by timestamp.
func (t *Tracker) Observe(s models.Snapshot) []Notification {
	t.mu.Lock()
	defer t.mu.Unlock()

	me := ""
	if s.CurrentUser != nil {
		me = s.CurrentUser.ID
	}

	var fresh []models.Message
	var rooms []string
	seen := make(map[string]map[string]struct{}, len(s.Messages))
	for room, msgs := range s.Messages {
		prev := t.seen[room]
		ids := make(map[string]struct{}, len(msgs))
		for _, m := range msgs {
			ids[m.ID] = struct{}{}
			if !t.primed {
				continue
			}
			if _, ok := prev[m.ID]; ok {
				continue
			}
			if m.SenderID == me || room == t.foreground {
				continue
			}
			fresh = append(fresh, m)
			rooms = append(rooms, room)
		}
		seen[room] = ids
	}
	t.seen = seen

	if !t.primed {
		t.primed = true
		return nil
	}
	if t.disabled || len(fresh) == 0 {
		return nil
	}

	out := make([]Notification, len(fresh))
	for i, m := range fresh {
		out[i] = Notification{
			Title:     "Mensaje de " + m.SenderName,
			Body:      Body(m),
			RoomID:    rooms[i],
			SenderID:  m.SenderID,
			MessageID: m.ID,
		}
	}
	ts := make(map[string]int64, len(fresh))
	for _, m := range fresh {
		ts[m.ID] = m.Timestamp
	}
	sort.SliceStable(out, func(i, j int) bool {
		return ts[out[i].MessageID] < ts[out[j].MessageID]
	})
	return out
}

// Body is the preview line of a notification.
func Body(m models.Message) string {
	switch m.Type {
	case models.TypeImage:
		return "📷 Foto"
	case models.TypeAudio:
		return "🎙️ Mensaje de voz"
	case models.TypeVideo:
		return "🎬 Video"
	case models.TypeDocument:
		return "📄 Documento"
	default:
		return m.Text
	}
}
