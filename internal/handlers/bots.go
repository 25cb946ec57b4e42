package handlers

import (
	"context"
	"time"

	"github.com/moredevelopers26/chattest/internal/assistant"
	"github.com/moredevelopers26/chattest/internal/chat"
	"github.com/moredevelopers26/chattest/internal/models"
)

// Test channel bot identity.
const (
	TestBotID   = "test-bot"
	TestBotName = "Test Bot"
)

// react schedules the automatic answers a message triggers.
func (h *Handler) react(roomID string, msg models.Message) {
	switch roomID {
	case chat.RoomTest:
		if msg.SenderID == TestBotID {
			return
		}
		h.later(h.opts.EchoDelay, func(ctx context.Context) {
			h.chat.Send(ctx, roomID, models.Draft{
				Text:       echoText(msg),
				SenderID:   TestBotID,
				SenderName: TestBotName,
			})
		})

	case chat.RoomAILab:
		if msg.SenderID == chat.AssistantID || msg.IsAIResponse {
			return
		}
		if msg.Type != models.TypeText && msg.Type != models.TypeAudio {
			return
		}
		h.later(0, func(ctx context.Context) {
			h.answer(ctx, roomID, msg)
		})
	}
}

// answer asks the assistant about msg and posts its reply.
func (h *Handler) answer(ctx context.Context, roomID string, msg models.Message) {
	all := h.chat.ListMessages(roomID)
	prior := all
	for i, m := range all {
		if m.ID == msg.ID {
			prior = all[:i]
			break
		}
	}

	h.chat.SetTyping(roomID, chat.AssistantID, true)
	text := h.assistant.Reply(ctx, assistant.RequestFor(prior, msg))
	h.chat.SetTyping(roomID, chat.AssistantID, false)

	if ctx.Err() != nil {
		return
	}
	h.chat.Send(ctx, roomID, models.Draft{
		Text:         text,
		SenderID:     chat.AssistantID,
		SenderName:   chat.AssistantName,
		Type:         models.TypeAI,
		IsAIResponse: true,
	})
}

// later runs fn after d unless the handler is closed first.
func (h *Handler) later(d time.Duration, fn func(ctx context.Context)) {
	h.bots.Add(1)
	go func() {
		defer h.bots.Done()
		if d > 0 {
			t := time.NewTimer(d)
			defer t.Stop()
			select {
			case <-h.ctx.Done():
				return
			case <-t.C:
			}
		}
		if h.ctx.Err() != nil {
			return
		}
		fn(h.ctx)
	}()
}

func echoText(m models.Message) string {
	if m.Type == models.TypeText {
		return "Echo: " + m.Text
	}
	return "He recibido tu " + m.Type + " en el área de testeo."
}
