package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moredevelopers26/chattest/internal/models"
)

func snap(me string, rooms map[string][]models.Message) models.Snapshot {
	s := models.Snapshot{Messages: rooms}
	if me != "" {
		s.CurrentUser = &models.User{ID: me}
	}
	return s
}

func msg(id, sender, typ, text string, ts int64) models.Message {
	return models.Message{ID: id, SenderID: sender, SenderName: sender + "-name", Type: typ, Text: text, Timestamp: ts}
}

func TestFirstSnapshotOnlyPrimes(t *testing.T) {
	tr := NewTracker()
	got := tr.Observe(snap("user-1", map[string][]models.Message{
		"global": {msg("a", "user-2", models.TypeText, "old", 1)},
	}))
	assert.Empty(t, got)
}

func TestAnnouncesNewMessagesFromOthers(t *testing.T) {
	tr := NewTracker()
	base := []models.Message{msg("a", "user-2", models.TypeText, "old", 1)}
	tr.Observe(snap("user-1", map[string][]models.Message{"global": base}))

	got := tr.Observe(snap("user-1", map[string][]models.Message{
		"global": append(base,
			msg("b", "user-1", models.TypeText, "mine", 2),
			msg("c", "user-2", models.TypeImage, "data:", 3),
		),
		"private_user-1_user-2": {msg("d", "user-2", models.TypeText, "psst", 4)},
	}))

	require.Len(t, got, 2)
	assert.Equal(t, Notification{
		Title:     "Mensaje de user-2-name",
		Body:      "📷 Foto",
		RoomID:    "global",
		SenderID:  "user-2",
		MessageID: "c",
	}, got[0])
	assert.Equal(t, "psst", got[1].Body)
	assert.Equal(t, "private_user-1_user-2", got[1].RoomID)
}

func TestForegroundRoomIsSilent(t *testing.T) {
	tr := NewTracker()
	tr.SetForeground("global")
	tr.Observe(snap("user-1", map[string][]models.Message{}))

	got := tr.Observe(snap("user-1", map[string][]models.Message{
		"global": {msg("a", "user-2", models.TypeText, "hi", 1)},
	}))
	assert.Empty(t, got)

	tr.SetForeground("")
	got = tr.Observe(snap("user-1", map[string][]models.Message{
		"global": {msg("a", "user-2", models.TypeText, "hi", 1), msg("b", "user-2", models.TypeText, "again", 2)},
	}))
	require.Len(t, got, 1)
	assert.Equal(t, "again", got[0].Body)
}

func TestDisabledAndShrinkingRooms(t *testing.T) {
	tr := NewTracker()
	two := []models.Message{msg("a", "user-2", models.TypeText, "1", 1), msg("b", "user-2", models.TypeText, "2", 2)}
	tr.Observe(snap("user-1", map[string][]models.Message{"global": two}))

	// deletes and prunes shrink rooms without announcing anything
	assert.Empty(t, tr.Observe(snap("user-1", map[string][]models.Message{"global": two[:1]})))

	tr.SetEnabled(false)
	assert.Empty(t, tr.Observe(snap("user-1", map[string][]models.Message{"global": two})))

	tr.SetEnabled(true)
	three := append(append([]models.Message(nil), two...), msg("c", "user-2", models.TypeAudio, "", 3))
	got := tr.Observe(snap("user-1", map[string][]models.Message{"global": three}))
	require.Len(t, got, 1)
	assert.Equal(t, "🎙️ Mensaje de voz", got[0].Body)
}

func TestNewMessageSurvivesPruneInSameSnapshot(t *testing.T) {
	tr := NewTracker()
	tr.Observe(snap("user-1", map[string][]models.Message{"global": {
		msg("a", "user-2", models.TypeImage, "data:", 1),
		msg("b", "user-2", models.TypeImage, "data:", 2),
	}}))

	// both images pruned while a new text arrives: the room shrinks from 2 to 1
	got := tr.Observe(snap("user-1", map[string][]models.Message{"global": {
		msg("c", "user-2", models.TypeText, "sigues ahí?", 3),
	}}))
	require.Len(t, got, 1)
	assert.Equal(t, "c", got[0].MessageID)
	assert.Equal(t, "sigues ahí?", got[0].Body)
}

func TestBody(t *testing.T) {
	assert.Equal(t, "hola", Body(models.Message{Type: models.TypeAI, Text: "hola"}))
	assert.Equal(t, "🎬 Video", Body(models.Message{Type: models.TypeVideo}))
	assert.Equal(t, "📄 Documento", Body(models.Message{Type: models.TypeDocument, FileName: "a.pdf"}))
}
