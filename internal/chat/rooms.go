package chat

import (
	"sort"
	"strings"

	"github.com/moredevelopers26/chattest/internal/models"
)

// Well-known channels.
const (
	RoomGlobal = "global"
	RoomAILab  = "ai-lab"
	RoomTest   = "test-channel"
)

const privatePrefix = "private"

type channel struct {
	id   string
	meta models.RoomMetadata
}

// channels is the closed registry of well-known rooms, in list order.
var channels = []channel{
	{RoomGlobal, models.RoomMetadata{Name: "Chat Global", Icon: "fa-globe", Description: "Con todos"}},
	{RoomAILab, models.RoomMetadata{Name: "Laboratorio AI", Icon: "fa-robot", Description: "Gemini Playground"}},
	{RoomTest, models.RoomMetadata{Name: "Pruebas", Icon: "fa-flask", Description: "Canal interno"}},
}

// RoomKind classifies a room key.
type RoomKind int

const (
	RoomAdHoc RoomKind = iota
	RoomChannel
	RoomPrivate
)

func (k RoomKind) String() string {
	switch k {
	case RoomChannel:
		return "channel"
	case RoomPrivate:
		return "private"
	default:
		return "adhoc"
	}
}

// KindOf derives the category of a room from its key.
func KindOf(roomID string) RoomKind {
	if _, ok := channelMeta(roomID); ok {
		return RoomChannel
	}
	if strings.HasPrefix(roomID, privatePrefix+"_") {
		return RoomPrivate
	}
	return RoomAdHoc
}

// IsChannel reports whether roomID is a well-known channel.
func IsChannel(roomID string) bool {
	return KindOf(roomID) == RoomChannel
}

func channelMeta(roomID string) (models.RoomMetadata, bool) {
	for _, c := range channels {
		if c.id == roomID {
			return c.meta, true
		}
	}
	return models.RoomMetadata{}, false
}

// PrivateRoomID returns the room key shared by two users. The result does
// not depend on argument order.
func PrivateRoomID(a, b string) string {
	ids := []string{a, b}
	sort.Strings(ids)
	return privatePrefix + "_" + ids[0] + "_" + ids[1]
}

// participants returns the user ids encoded in a private room key.
func participants(roomID string) []string {
	parts := strings.Split(roomID, "_")
	out := parts[:0:0]
	for _, p := range parts {
		if p != privatePrefix && p != "" {
			out = append(out, p)
		}
	}
	return out
}

func participatesIn(roomID, userID string) bool {
	if userID == "" {
		return false
	}
	for _, p := range participants(roomID) {
		if p == userID {
			return true
		}
	}
	return false
}

// RoomMetadata derives the display name, icon and description of a room as
// seen by currentUserID. Unknown private partners fall back to a generic
// label.
func (s *Service) RoomMetadata(roomID, currentUserID string) models.RoomMetadata {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roomMetadata(roomID, currentUserID)
}

func (s *Service) roomMetadata(roomID, currentUserID string) models.RoomMetadata {
	if meta, ok := channelMeta(roomID); ok {
		return meta
	}

	if KindOf(roomID) != RoomPrivate {
		return models.RoomMetadata{Name: "Chat", Icon: "fa-comment"}
	}

	meta := models.RoomMetadata{
		Name:        "Chat Privado",
		Icon:        "fa-user",
		Description: "Chat privado",
		IsPrivate:   true,
	}
	for _, id := range participants(roomID) {
		if id == currentUserID {
			continue
		}
		if u := s.findUser(id); u != nil {
			meta.Name = u.Name
			meta.Avatar = u.Avatar
			if u.Status == models.StatusOnline {
				meta.Description = "En línea"
			}
		}
		break
	}
	return meta
}
