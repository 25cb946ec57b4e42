// Package assistant produces AI chat replies. Failures never reach the
// caller: Responder always returns displayable text.
package assistant

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/moredevelopers26/chattest/internal/metrics"
	"github.com/moredevelopers26/chattest/internal/models"
)

// Fallback replies.
const (
	ErrorReply = "Error communicating with Gemini. Please try again later."
	EmptyReply = "I'm sorry, I couldn't process that."
)

// DefaultVoicePrompt accompanies audio sent without text.
const DefaultVoicePrompt = "He grabado este mensaje de voz para ti."

// Conversation roles.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// Turn is one earlier message of the conversation.
type Turn struct {
	Role string
	Text string
}

// Audio is an inline audio payload.
type Audio struct {
	Data     []byte
	MIMEType string
}

// Request is everything a Generator needs for one reply.
type Request struct {
	Prompt  string
	History []Turn
	Audio   *Audio
}

// Generator produces a reply for a request.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// Responder wraps a Generator with the fallback policy.
type Responder struct {
	gen     Generator
	log     zerolog.Logger
	timeout time.Duration
}

// NewResponder creates a Responder. A nil gen always yields ErrorReply.
func NewResponder(gen Generator, log zerolog.Logger) *Responder {
	return &Responder{
		gen:     gen,
		log:     log.With().Str("component", "assistant").Logger(),
		timeout: 30 * time.Second,
	}
}

// Reply returns the generated text, or a fallback string when generation
// fails or comes back empty.
func (r *Responder) Reply(ctx context.Context, req Request) string {
	if r.gen == nil {
		metrics.AssistantReplies.WithLabelValues("error").Inc()
		return ErrorReply
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	text, err := r.gen.Generate(ctx, req)
	if err != nil {
		r.log.Error().Err(err).Msg("generation failed")
		metrics.AssistantReplies.WithLabelValues("error").Inc()
		return ErrorReply
	}
	if strings.TrimSpace(text) == "" {
		metrics.AssistantReplies.WithLabelValues("empty").Inc()
		return EmptyReply
	}
	metrics.AssistantReplies.WithLabelValues("ok").Inc()
	return text
}

// RequestFor builds the request answering msg, given the room's messages
// that preceded it. Only text and ai messages enter the history.
func RequestFor(prior []models.Message, msg models.Message) Request {
	req := Request{Prompt: msg.Text}
	for _, m := range prior {
		if !m.IsTextual() {
			continue
		}
		role := RoleUser
		if m.IsAIResponse || m.Type == models.TypeAI {
			role = RoleModel
		}
		req.History = append(req.History, Turn{Role: role, Text: m.Text})
	}

	if msg.Type == models.TypeAudio {
		req.Prompt = ""
		if a, err := ParseDataURI(msg.Text); err == nil {
			req.Audio = a
		}
	}
	if req.Prompt == "" {
		req.Prompt = DefaultVoicePrompt
	}
	return req
}

// ParseDataURI decodes a base64 "data:<mime>;base64,<payload>" URI.
func ParseDataURI(uri string) (*Audio, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return nil, errors.New("not a data URI")
	}
	header, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, errors.New("data URI without payload")
	}
	mime, isB64 := strings.CutSuffix(header, ";base64")
	if !isB64 {
		return nil, errors.New("data URI is not base64")
	}
	// drop parameters such as ;codecs=opus
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = mime[:i]
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, err
	}
	return &Audio{Data: data, MIMEType: mime}, nil
}
