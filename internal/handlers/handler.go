package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/rs/zerolog"

	"github.com/moredevelopers26/chattest/internal/assistant"
	"github.com/moredevelopers26/chattest/internal/chat"
	"github.com/moredevelopers26/chattest/internal/store"
)

// emailRegex validates email addresses per RFC 5322 (simplified).
var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Options tunes the timers owned by the HTTP layer.
type Options struct {
	TypingIdle time.Duration // typing flag clears after this much silence
	EchoDelay  time.Duration // test-channel bot answer delay
}

// Handler contains shared dependencies for all HTTP handlers.
type Handler struct {
	chat      *chat.Service
	assistant *assistant.Responder
	log       zerolog.Logger
	opts      Options

	ctx    context.Context
	cancel context.CancelFunc
	bots   sync.WaitGroup

	mu     sync.Mutex
	typing map[string]*time.Timer
}

// NewHandler creates a new Handler. A nil responder makes the ai-lab
// assistant answer with its error fallback.
func NewHandler(svc *chat.Service, resp *assistant.Responder, log zerolog.Logger, opts Options) *Handler {
	if resp == nil {
		resp = assistant.NewResponder(nil, log)
	}
	if opts.TypingIdle <= 0 {
		opts.TypingIdle = 1500 * time.Millisecond
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Handler{
		chat:      svc,
		assistant: resp,
		log:       log.With().Str("component", "http").Logger(),
		opts:      opts,
		ctx:       ctx,
		cancel:    cancel,
		typing:    make(map[string]*time.Timer),
	}
}

// Wait blocks until every scheduled bot reply has been posted.
func (h *Handler) Wait() {
	h.bots.Wait()
}

// Close cancels pending bot replies and typing timers and waits for
// running ones to finish.
func (h *Handler) Close() {
	h.cancel()
	h.mu.Lock()
	for key, t := range h.typing {
		t.Stop()
		delete(h.typing, key)
	}
	h.mu.Unlock()
	h.bots.Wait()
}

// JSON sends a JSON response with the given status code.
func (h *Handler) JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// Error sends a JSON error response with the given status code.
func (h *Handler) Error(w http.ResponseWriter, status int, message string) {
	h.JSON(w, status, map[string]string{"error": message})
}

// fail maps service errors onto HTTP statuses.
func (h *Handler) fail(w http.ResponseWriter, err error) {
	var nf *chat.NotFoundError
	switch {
	case errors.As(err, &nf):
		h.Error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, chat.ErrInvalidStatus):
		h.Error(w, http.StatusBadRequest, "status must be online, offline or away")
	case errors.Is(err, chat.ErrNoSession):
		h.Error(w, http.StatusUnauthorized, "login required")
	default:
		h.log.Error().Err(err).Msg("request failed")
		h.Error(w, http.StatusInternalServerError, "internal error")
	}
}

// confirmed guards destructive routes behind ?confirm=true.
func (h *Handler) confirmed(w http.ResponseWriter, r *http.Request) bool {
	if r.URL.Query().Get("confirm") == "true" {
		return true
	}
	h.Error(w, http.StatusPreconditionRequired, "add ?confirm=true to proceed")
	return false
}

// StorageResponse is the persistence report attached to every mutation.
type StorageResponse = store.Result

// MutationResponse is the body of mutations that return no entity.
type MutationResponse struct {
	Storage StorageResponse `json:"storage"`
}

// decode reads a JSON body; an empty body leaves dst untouched.
func decode(r *http.Request, dst any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	return json.NewDecoder(r.Body).Decode(dst)
}

// sanitizeName trims and limits name to 100 characters, removing control characters.
func sanitizeName(name string) string {
	name = strings.TrimSpace(name)

	// Remove control characters
	name = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, name)

	// Limit to 100 runes
	if runes := []rune(name); len(runes) > 100 {
		name = string(runes[:100])
	}

	return name
}

// isValidEmail validates email addresses using RFC 5322 pattern.
func isValidEmail(email string) bool {
	if email == "" || len(email) > 254 {
		return false
	}
	return emailRegex.MatchString(email)
}
