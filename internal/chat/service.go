// Package chat is the local messaging backend: rooms and messages, read
// cursors and hidden rooms, the vault, the user directory, typing flags and
// the call log. All state lives in memory, is mirrored to a store.Adapter,
// and is broadcast as a full Snapshot after every mutation.
package chat

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/moredevelopers26/chattest/internal/bus"
	"github.com/moredevelopers26/chattest/internal/models"
	"github.com/moredevelopers26/chattest/internal/store"
)

// Storage keys.
const (
	KeyUsers       = "chat_users"
	KeyMessages    = "chat_messages"
	KeyVault       = "chat_vault"
	KeyCurrentUser = "chat_current_user"
	KeyHiddenRooms = "chat_hidden_rooms"
	KeyLastSeen    = "chat_last_seen"
	KeyCalls       = "chat_calls"
)

// Keys lists every storage key the Service owns.
func Keys() []string {
	return []string{KeyUsers, KeyMessages, KeyVault, KeyCurrentUser, KeyHiddenRooms, KeyLastSeen, KeyCalls}
}

// Service owns the whole chat state. Every exported method is serialized
// by one mutex. Observers are called while that mutex is held and must not
// call back into the Service.
type Service struct {
	mu    sync.Mutex
	store *store.Adapter
	bus   *bus.Bus[models.Snapshot]
	log   zerolog.Logger
	now   func() time.Time

	users    []models.User
	current  *models.User
	messages map[string][]models.Message
	vault    []models.VaultItem
	hidden   []string
	lastSeen map[string]int64
	typing   map[string]map[string]bool
	calls    []models.CallRecord
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New hydrates a Service from st, seeding the roster and call log on first
// run, and installs the media pruner as st's quota recovery hook.
func New(ctx context.Context, st *store.Adapter, log zerolog.Logger, opts ...Option) *Service {
	s := &Service{
		store:    st,
		bus:      bus.New[models.Snapshot](),
		log:      log.With().Str("component", "chat").Logger(),
		now:      time.Now,
		messages: make(map[string][]models.Message),
		lastSeen: make(map[string]int64),
		typing:   make(map[string]map[string]bool),
	}
	for _, opt := range opts {
		opt(s)
	}

	st.SetPruner(s.pruneMedia)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.hydrate(ctx)
	return s
}

func (s *Service) hydrate(ctx context.Context) {
	s.store.Load(ctx, KeyUsers, &s.users)
	s.store.Load(ctx, KeyMessages, &s.messages)
	s.store.Load(ctx, KeyVault, &s.vault)
	s.store.Load(ctx, KeyHiddenRooms, &s.hidden)
	s.store.Load(ctx, KeyLastSeen, &s.lastSeen)
	s.store.Load(ctx, KeyCalls, &s.calls)

	var cur models.User
	if s.store.Load(ctx, KeyCurrentUser, &cur) && cur.ID != "" {
		s.current = &cur
	}

	// a stored JSON null decodes to a nil map
	if s.messages == nil {
		s.messages = make(map[string][]models.Message)
	}
	if s.lastSeen == nil {
		s.lastSeen = make(map[string]int64)
	}

	if len(s.users) == 0 {
		s.users = seedUsers(s.nowMillis())
		s.store.Save(ctx, KeyUsers, s.users)
	}
	if len(s.calls) == 0 {
		s.calls = seedCalls(s.nowMillis())
		s.store.Save(ctx, KeyCalls, s.calls)
	}

	s.log.Info().
		Int("users", len(s.users)).
		Int("rooms", len(s.messages)).
		Int("vault", len(s.vault)).
		Bool("session", s.current != nil).
		Msg("chat state loaded")
}

// Subscribe registers fn to receive a Snapshot after every mutation.
func (s *Service) Subscribe(fn func(models.Snapshot)) (unsubscribe func()) {
	return s.bus.Subscribe(fn)
}

// Snapshot returns a deep copy of the current state.
func (s *Service) Snapshot() models.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// StorageUsage reports bytes used and the budget, when the store tracks them.
func (s *Service) StorageUsage() (used, budget int, ok bool) {
	return s.store.Usage()
}

// Ping checks the underlying store.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func (s *Service) nowMillis() int64 {
	return s.now().UnixMilli()
}

func (s *Service) notify() {
	s.bus.Publish(s.snapshot())
}

func (s *Service) snapshot() models.Snapshot {
	snap := models.Snapshot{
		Messages:    make(map[string][]models.Message, len(s.messages)),
		Typing:      make(map[string]map[string]bool, len(s.typing)),
		Users:       append([]models.User(nil), s.users...),
		Vault:       append([]models.VaultItem(nil), s.vault...),
		Calls:       append([]models.CallRecord(nil), s.calls...),
		LastSeen:    make(map[string]int64, len(s.lastSeen)),
		HiddenRooms: append([]string(nil), s.hidden...),
	}
	for room, msgs := range s.messages {
		snap.Messages[room] = copyMessages(msgs)
	}
	for room, flags := range s.typing {
		m := make(map[string]bool, len(flags))
		for id, v := range flags {
			m[id] = v
		}
		snap.Typing[room] = m
	}
	for room, ts := range s.lastSeen {
		snap.LastSeen[room] = ts
	}
	if s.current != nil {
		cur := *s.current
		snap.CurrentUser = &cur
	}
	return snap
}

func copyMessages(msgs []models.Message) []models.Message {
	out := make([]models.Message, len(msgs))
	copy(out, msgs)
	for i := range out {
		if out[i].ReplyTo != nil {
			ref := *out[i].ReplyTo
			out[i].ReplyTo = &ref
		}
	}
	return out
}

func (s *Service) currentID() string {
	if s.current == nil {
		return ""
	}
	return s.current.ID
}

func (s *Service) saveMessages(ctx context.Context) store.Result {
	return s.store.Save(ctx, KeyMessages, s.messages)
}

func (s *Service) saveHidden(ctx context.Context) store.Result {
	return s.store.Save(ctx, KeyHiddenRooms, s.hidden)
}
